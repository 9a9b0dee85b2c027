// internal/domain/channel/channel.go
package channel

import (
	"context"
	"errors"
	"fmt"
)

// Channel and method names shared with the application runtime.
const (
	EmailIntentChannel = "com.example.notifications/email_intent"

	MethodSendEmail               = "sendEmail"
	MethodRescheduleNotifications = "rescheduleNotifications"
)

// Error codes returned on the email intent channel.
const (
	CodeNullArguments   = "NULL_ARGUMENTS"
	CodeEmailSendFailed = "EMAIL_SEND_FAILED"
)

// ErrNotImplemented is returned when the peer has no handler for a method.
var ErrNotImplemented = errors.New("method not implemented")

// MethodCall is a single method-channel invocation.
type MethodCall struct {
	Method string
	Args   map[string]any
}

// StringArg returns the named argument if it is a string.
func (c MethodCall) StringArg(name string) (string, bool) {
	v, ok := c.Args[name]
	if !ok || v == nil {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// MethodError is an error reply from the other side of a channel.
type MethodError struct {
	Code    string
	Message string
}

func (e *MethodError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Invoker issues outbound calls to the application runtime.
// The result is nil on success, ErrNotImplemented, a *MethodError, or a transport error.
type Invoker interface {
	Invoke(ctx context.Context, method string, args map[string]any) (any, error)
}
