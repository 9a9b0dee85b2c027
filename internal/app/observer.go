// internal/app/observer.go
package app

import (
	"time"

	"reminder_relay/internal/domain/relay"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// EmailIntentPublisher hands NotificationEvents to the relay.
type EmailIntentPublisher interface {
	Publish(ev relay.NotificationEvent) (int, error)
}

// NotificationObserver turns the application's own posted notifications into email intents.
type NotificationObserver struct {
	owningPackage string
	publisher     EmailIntentPublisher
	logger        *logrus.Entry
	now           func() time.Time
}

func NewNotificationObserver(owningPackage string, publisher EmailIntentPublisher, logger *logrus.Entry) *NotificationObserver {
	return &NotificationObserver{
		owningPackage: owningPackage,
		publisher:     publisher,
		logger:        logger,
		now:           time.Now,
	}
}

// OnNotificationPosted relays n if it belongs to the owning package and reports whether it did.
// Foreign notifications are ignored without error.
func (o *NotificationObserver) OnNotificationPosted(n relay.PostedNotification) bool {
	logCtx := o.logger.WithField("package", n.Package)
	logCtx.Debug("Notification posted")

	if n.Package != o.owningPackage {
		return false
	}

	ev := relay.NotificationEvent{
		ID:          uuid.NewString(),
		Title:       relay.PlaceholderTitle,
		Description: relay.PlaceholderDescription,
		PostedAt:    o.now(),
	}
	if n.Title != nil {
		ev.Title = *n.Title
	}
	if n.Description != nil {
		ev.Description = *n.Description
	}

	logCtx = logCtx.WithFields(logrus.Fields{
		"event_id": ev.ID,
		"channel":  relay.EmailIntentChannel,
		"title":    ev.Title,
	})

	delivered, err := o.publisher.Publish(ev)
	if err != nil {
		logCtx.WithError(err).Error("Failed to relay notification")
		return false
	}
	logCtx.WithField("subscribers", delivered).Info("Notification relayed for email")
	return true
}

// OnNotificationRemoved only logs.
func (o *NotificationObserver) OnNotificationRemoved(pkg string) {
	o.logger.WithField("package", pkg).Debug("Notification removed")
}
