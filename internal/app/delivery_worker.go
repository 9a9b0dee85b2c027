// internal/app/delivery_worker.go
package app

import (
	"context"
	"strings"

	"reminder_relay/internal/domain/mail"
	"reminder_relay/internal/domain/relay"
	"reminder_relay/internal/domain/settings"

	"github.com/sirupsen/logrus"
)

// SnoozePrefix marks snooze notifications, which are never emailed.
const SnoozePrefix = "Snooze - "

type mailConfigReader interface {
	GetMailConfig(ctx context.Context) (settings.MailConfig, error)
}

// DeliveryWorker decides whether an email intent becomes an email.
// Every skip or failure is logged and swallowed.
type DeliveryWorker struct {
	settings mailConfigReader
	mailer   mail.Submitter
	logger   *logrus.Entry
}

func NewDeliveryWorker(s mailConfigReader, m mail.Submitter, logger *logrus.Entry) *DeliveryWorker {
	return &DeliveryWorker{settings: s, mailer: m, logger: logger}
}

// HandleEmailIntent has the relay.Handler signature.
func (w *DeliveryWorker) HandleEmailIntent(ctx context.Context, ev relay.NotificationEvent) {
	logCtx := w.logger.WithField("event_id", ev.ID)

	// Read on every event; preferences may change between notifications.
	cfg, err := w.settings.GetMailConfig(ctx)
	if err != nil {
		logCtx.WithError(err).Warn("Mail configuration unavailable, skipping email")
		return
	}
	if !cfg.Deliverable() {
		logCtx.Debug("Email relay disabled in settings, skipping email")
		return
	}
	if strings.HasPrefix(ev.Title, SnoozePrefix) {
		logCtx.Debug("Snooze notification, skipping email")
		return
	}

	msg := mail.NewMessage(cfg.RecipientAddress, ev.Title, ev.Description)
	logCtx = logCtx.WithField("recipient", msg.Recipient)

	err = w.mailer.Submit(msg, func(res mail.Result) {
		if res.Err != nil {
			logCtx.WithError(res.Err).Warn("Email for notification was not delivered")
			return
		}
		logCtx.Info("Email for notification delivered")
	})
	if err != nil {
		logCtx.WithError(err).Error("Failed to queue email")
		return
	}
	logCtx.Debug("Email queued")
}
