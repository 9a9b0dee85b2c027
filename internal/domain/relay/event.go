// internal/domain/relay/event.go
package relay

import "time"

// EmailIntentChannel names the relay channel that carries email requests.
// It is kept for log correlation with the application side.
const EmailIntentChannel = "com.example.notifications.EMAIL_INTENT"

// Placeholders substituted by the observer when a notification lacks a field.
const (
	PlaceholderTitle       = "No Title"
	PlaceholderDescription = "No Description"
)

// NotificationEvent is a reminder notification observed on the device.
// It is consumed once by the dispatcher and never persisted.
type NotificationEvent struct {
	ID          string
	Title       string
	Description string
	PostedAt    time.Time
}

// PostedNotification is the payload of a notification-posted callback.
// Nil fields were absent from the notification extras.
type PostedNotification struct {
	Package     string
	Title       *string
	Description *string
}
