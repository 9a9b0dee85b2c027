// Package httpapi exposes the relay's event and method-channel surface over HTTP.
package httpapi

import (
	"context"
	"time"

	"reminder_relay/internal/domain/channel"
	"reminder_relay/internal/domain/relay"
	"reminder_relay/internal/domain/settings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type notificationObserver interface {
	OnNotificationPosted(n relay.PostedNotification) bool
	OnNotificationRemoved(pkg string)
}

type methodHandler interface {
	HandleMethodCall(ctx context.Context, call channel.MethodCall) (any, error)
}

type systemEventHandler interface {
	HandleBootCompleted(ctx context.Context, action string) bool
}

// Deps are the application components served by the router.
type Deps struct {
	Observer     notificationObserver
	Methods      methodHandler
	SystemEvents systemEventHandler
	Settings     settings.Repository
}

// NewRouter builds the gin engine with every route registered.
func NewRouter(deps Deps, logger *logrus.Entry) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(logger))

	h := &handler{deps: deps, logger: logger}

	r.GET("/healthz", h.health)

	v1 := r.Group("/api/v1")
	{
		v1.POST("/notifications/posted", h.notificationPosted)
		v1.POST("/notifications/removed", h.notificationRemoved)
		v1.POST("/system/events", h.systemEvent)
		v1.POST("/channels/email_intent/methods/:method", h.invokeMethod)
		v1.GET("/settings/mail", h.getMailSettings)
		v1.PUT("/settings/mail", h.putMailSettings)
	}

	return r
}

func requestLogger(logger *logrus.Entry) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.WithFields(logrus.Fields{
			"method":   c.Request.Method,
			"path":     c.FullPath(),
			"status":   c.Writer.Status(),
			"duration": time.Since(start).String(),
		}).Debug("HTTP request served")
	}
}
