// internal/app/method_channel.go
package app

import (
	"context"
	"time"

	"reminder_relay/internal/domain/channel"
	"reminder_relay/internal/domain/relay"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// MethodChannelHandler serves inbound calls on the email intent channel.
type MethodChannelHandler struct {
	publisher EmailIntentPublisher
	logger    *logrus.Entry
	now       func() time.Time
}

func NewMethodChannelHandler(publisher EmailIntentPublisher, logger *logrus.Entry) *MethodChannelHandler {
	return &MethodChannelHandler{publisher: publisher, logger: logger, now: time.Now}
}

// HandleMethodCall dispatches call. It returns channel.ErrNotImplemented for unknown
// methods and *channel.MethodError for rejected calls.
func (h *MethodChannelHandler) HandleMethodCall(ctx context.Context, call channel.MethodCall) (any, error) {
	logCtx := h.logger.WithField("method", call.Method)
	logCtx.Debug("Method call received")

	switch call.Method {
	case channel.MethodSendEmail:
		return nil, h.sendEmail(ctx, call, logCtx)
	default:
		logCtx.Warn("Method not implemented")
		return nil, channel.ErrNotImplemented
	}
}

func (h *MethodChannelHandler) sendEmail(_ context.Context, call channel.MethodCall, logCtx *logrus.Entry) error {
	title, okTitle := call.StringArg("title")
	description, okDesc := call.StringArg("description")
	if !okTitle || !okDesc {
		logCtx.Warn("Null values received for title or description")
		return &channel.MethodError{Code: channel.CodeNullArguments, Message: "Title or description is null"}
	}

	ev := relay.NotificationEvent{
		ID:          uuid.NewString(),
		Title:       title,
		Description: description,
		PostedAt:    h.now(),
	}
	logCtx = logCtx.WithField("event_id", ev.ID)

	if _, err := h.publisher.Publish(ev); err != nil {
		logCtx.WithError(err).Error("Failed to publish email request")
		return &channel.MethodError{Code: channel.CodeEmailSendFailed, Message: "Failed to send email request"}
	}

	logCtx.Info("Email request published")
	return nil
}
