package mailer

import (
	"context"
	"errors"
	"testing"

	"reminder_relay/internal/domain/mail"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gomail "gopkg.in/mail.v2"
)

type fakeDialer struct {
	sent []*gomail.Message
	err  error
}

func (f *fakeDialer) DialAndSend(m ...*gomail.Message) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, m...)
	return nil
}

func TestNewSMTPSender_DialerSettings(t *testing.T) {
	s := NewSMTPSender("smtp.gmail.com", 587, "relay@example.com", "secret")

	d, ok := s.dialer.(*gomail.Dialer)
	require.True(t, ok)
	assert.Equal(t, "smtp.gmail.com", d.Host)
	assert.Equal(t, 587, d.Port)
	assert.Equal(t, "relay@example.com", d.Username)
	assert.Equal(t, gomail.MandatoryStartTLS, d.StartTLSPolicy)
	assert.Equal(t, "relay@example.com", s.from)
}

func TestSMTPSender_Send(t *testing.T) {
	fd := &fakeDialer{}
	s := &SMTPSender{from: "relay@example.com", dialer: fd}

	err := s.Send(context.Background(), mail.Message{
		Recipient: "a@b.com",
		Subject:   "Reminder: Pay rent",
		Body:      "Due today",
	})
	require.NoError(t, err)
	require.Len(t, fd.sent, 1)

	m := fd.sent[0]
	assert.Equal(t, []string{"relay@example.com"}, m.GetHeader("From"))
	assert.Equal(t, []string{"a@b.com"}, m.GetHeader("To"))
	assert.Equal(t, []string{"Reminder: Pay rent"}, m.GetHeader("Subject"))
}

func TestSMTPSender_SendMalformedRecipient(t *testing.T) {
	fd := &fakeDialer{}
	s := &SMTPSender{from: "relay@example.com", dialer: fd}

	err := s.Send(context.Background(), mail.Message{Recipient: "not an address"})
	require.Error(t, err)
	assert.Empty(t, fd.sent)
}

func TestSMTPSender_SendTransportError(t *testing.T) {
	fd := &fakeDialer{err: errors.New("535 authentication failed")}
	s := &SMTPSender{from: "relay@example.com", dialer: fd}

	err := s.Send(context.Background(), mail.Message{Recipient: "a@b.com"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "authentication failed")
}
