package httpapi

import (
	"errors"
	"net/http"

	"reminder_relay/internal/domain/channel"
	"reminder_relay/internal/domain/relay"
	"reminder_relay/internal/domain/settings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type handler struct {
	deps   Deps
	logger *logrus.Entry
}

type postedRequest struct {
	Package string  `json:"package" binding:"required"`
	Title   *string `json:"title"`
	Text    *string `json:"text"`
}

type removedRequest struct {
	Package string `json:"package" binding:"required"`
}

type systemEventRequest struct {
	Action string `json:"action" binding:"required"`
}

type methodRequest struct {
	Args map[string]any `json:"args"`
}

// methodReply mirrors the runtime's method-channel reply format.
type methodReply struct {
	Status  string `json:"status"`
	Result  any    `json:"result,omitempty"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

type mailSettingsBody struct {
	EmailEnabled   *bool  `json:"email_enabled" binding:"required"`
	RecipientEmail string `json:"recipient_email"`
}

func (h *handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *handler) notificationPosted(c *gin.Context) {
	var req postedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	relayed := h.deps.Observer.OnNotificationPosted(relay.PostedNotification{
		Package:     req.Package,
		Title:       req.Title,
		Description: req.Text,
	})
	c.JSON(http.StatusAccepted, gin.H{"relayed": relayed})
}

func (h *handler) notificationRemoved(c *gin.Context) {
	var req removedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.deps.Observer.OnNotificationRemoved(req.Package)
	c.Status(http.StatusNoContent)
}

func (h *handler) systemEvent(c *gin.Context) {
	var req systemEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	started := h.deps.SystemEvents.HandleBootCompleted(c.Request.Context(), req.Action)
	if started {
		c.JSON(http.StatusAccepted, gin.H{"started": true})
		return
	}
	c.JSON(http.StatusOK, gin.H{"started": false})
}

func (h *handler) invokeMethod(c *gin.Context) {
	var req methodRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	result, err := h.deps.Methods.HandleMethodCall(c.Request.Context(), channel.MethodCall{
		Method: c.Param("method"),
		Args:   req.Args,
	})

	var methodErr *channel.MethodError
	switch {
	case err == nil:
		c.JSON(http.StatusOK, methodReply{Status: "success", Result: result})
	case errors.Is(err, channel.ErrNotImplemented):
		c.JSON(http.StatusNotImplemented, methodReply{Status: "notImplemented"})
	case errors.As(err, &methodErr):
		c.JSON(http.StatusOK, methodReply{Status: "error", Code: methodErr.Code, Message: methodErr.Message})
	default:
		h.logger.WithError(err).Error("Method call failed unexpectedly")
		c.JSON(http.StatusInternalServerError, methodReply{Status: "error", Code: "INTERNAL", Message: err.Error()})
	}
}

func (h *handler) getMailSettings(c *gin.Context) {
	cfg, err := h.deps.Settings.GetMailConfig(c.Request.Context())
	if err != nil {
		h.logger.WithError(err).Error("Failed to read mail settings")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "settings unavailable"})
		return
	}
	enabled := cfg.EmailEnabled
	c.JSON(http.StatusOK, mailSettingsBody{EmailEnabled: &enabled, RecipientEmail: cfg.RecipientAddress})
}

func (h *handler) putMailSettings(c *gin.Context) {
	var body mailSettingsBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cfg := settings.MailConfig{EmailEnabled: *body.EmailEnabled, RecipientAddress: body.RecipientEmail}
	if err := h.deps.Settings.SaveMailConfig(c.Request.Context(), cfg); err != nil {
		h.logger.WithError(err).Error("Failed to save mail settings")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "settings unavailable"})
		return
	}
	c.JSON(http.StatusOK, body)
}
