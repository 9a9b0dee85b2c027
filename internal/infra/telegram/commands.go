// internal/infra/telegram/commands.go
package telegram

import (
	"context"
	"errors"
	"strings"

	"reminder_relay/internal/app"
	"reminder_relay/internal/domain/channel"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

type methodHandler interface {
	HandleMethodCall(ctx context.Context, call channel.MethodCall) (any, error)
}

type bootTrigger interface {
	HandleBootCompleted(ctx context.Context, action string) bool
}

const helpText = "Available commands:\n\n" +
	"`/send_email <title> | <description>`\n - Relay an email through the reminder settings.\n\n" +
	"`/reschedule`\n - Ask the app to re-arm all pending reminders.\n\n" +
	"`/help`\n - Show this message."

// commandHandler holds the command logic; RegisterCommands adapts it to telebot.
type commandHandler struct {
	methods methodHandler
	boot    bootTrigger
	adminID int64
	logger  *logrus.Entry
}

// RegisterCommands registers the admin command surface on b.
func RegisterCommands(ctx context.Context, b *telebot.Bot, methods methodHandler, boot bootTrigger, adminID int64, baseLogger *logrus.Entry) {
	h := &commandHandler{methods: methods, boot: boot, adminID: adminID, logger: baseLogger.WithField("handler_group", "commands")}

	b.Handle("/start", func(c telebot.Context) error {
		return c.Send(h.help(c.Sender().ID), &telebot.SendOptions{ParseMode: telebot.ModeMarkdown})
	})
	b.Handle("/help", func(c telebot.Context) error {
		return c.Send(h.help(c.Sender().ID), &telebot.SendOptions{ParseMode: telebot.ModeMarkdown})
	})
	b.Handle("/send_email", func(c telebot.Context) error {
		return c.Send(h.sendEmail(ctx, c.Sender().ID, c.Message().Payload))
	})
	b.Handle("/reschedule", func(c telebot.Context) error {
		return c.Send(h.reschedule(ctx, c.Sender().ID))
	})
}

func (h *commandHandler) authorized(senderID int64, command string) bool {
	if senderID == h.adminID {
		return true
	}
	h.logger.WithFields(logrus.Fields{"command": command, "sender_id": senderID}).Warn("Unauthorized access attempt")
	return false
}

func (h *commandHandler) help(senderID int64) string {
	if !h.authorized(senderID, "/help") {
		return "No commands are available to you."
	}
	return helpText
}

func (h *commandHandler) sendEmail(ctx context.Context, senderID int64, payload string) string {
	if !h.authorized(senderID, "/send_email") {
		return "Error: you are not allowed to run this command."
	}

	title, description, ok := parseSendEmailPayload(payload)
	if !ok {
		return "Invalid format. Use: /send_email <title> | <description>"
	}

	_, err := h.methods.HandleMethodCall(ctx, channel.MethodCall{
		Method: channel.MethodSendEmail,
		Args:   map[string]any{"title": title, "description": description},
	})
	if err != nil {
		var methodErr *channel.MethodError
		if errors.As(err, &methodErr) {
			return "Email request rejected: " + methodErr.Code
		}
		h.logger.WithError(err).Error("send_email failed")
		return "Email request failed."
	}
	return "Email request accepted."
}

func (h *commandHandler) reschedule(ctx context.Context, senderID int64) string {
	if !h.authorized(senderID, "/reschedule") {
		return "Error: you are not allowed to run this command."
	}
	if !h.boot.HandleBootCompleted(ctx, app.ActionBootCompleted) {
		return "Reschedule was not started."
	}
	return "Reschedule started."
}

// parseSendEmailPayload splits "title | description". Both parts must be non-empty.
func parseSendEmailPayload(payload string) (title, description string, ok bool) {
	title, description, found := strings.Cut(payload, "|")
	if !found {
		return "", "", false
	}
	title = strings.TrimSpace(title)
	description = strings.TrimSpace(description)
	if title == "" || description == "" {
		return "", "", false
	}
	return title, description, true
}
