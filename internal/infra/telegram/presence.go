package telegram

import (
	"context"
	"fmt"

	domainTelegram "reminder_relay/internal/domain/telegram"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

// Presence announces background reschedule runs to the admin chat.
type Presence struct {
	client  domainTelegram.Client
	adminID int64
	logger  *logrus.Entry
}

func NewPresence(client domainTelegram.Client, adminID int64, logger *logrus.Entry) *Presence {
	return &Presence{client: client, adminID: adminID, logger: logger}
}

// Announce implements app.Presence. Delivery failures are only logged.
func (p *Presence) Announce(_ context.Context, title, text string) {
	msg := fmt.Sprintf("*%s*\n%s", title, text)
	err := p.client.SendMessage(p.adminID, msg, &telebot.SendOptions{ParseMode: telebot.ModeMarkdown})
	if err != nil {
		p.logger.WithError(err).Warn("Failed to announce presence via Telegram")
		return
	}
	p.logger.WithField("presence", title).Info(text)
}
