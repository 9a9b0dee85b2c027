package mailer

import (
	"context"
	"fmt"
	netmail "net/mail"
	"time"

	"reminder_relay/internal/domain/mail"

	gomail "gopkg.in/mail.v2"
)

const defaultDialTimeout = 30 * time.Second

type dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTPSender sends plain-text mail over an authenticated STARTTLS session.
type SMTPSender struct {
	from   string
	dialer dialer
}

// NewSMTPSender creates a sender for the given endpoint. The username doubles as the From address.
func NewSMTPSender(host string, port int, username, password string) *SMTPSender {
	d := gomail.NewDialer(host, port, username, password)
	d.StartTLSPolicy = gomail.MandatoryStartTLS
	d.Timeout = defaultDialTimeout

	return &SMTPSender{from: username, dialer: d}
}

// Send implements mail.Sender. It opens one session per message.
func (s *SMTPSender) Send(_ context.Context, msg mail.Message) error {
	recipients, err := netmail.ParseAddressList(msg.Recipient)
	if err != nil {
		return fmt.Errorf("invalid recipient %q: %w", msg.Recipient, err)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	to := make([]string, 0, len(recipients))
	for _, r := range recipients {
		to = append(to, r.Address)
	}
	m.SetHeader("To", to...)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/plain", msg.Body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}
