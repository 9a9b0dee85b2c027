// internal/domain/settings/settings.go
package settings

import (
	"context"
	"strings"
)

// Keys as written by the application's preference layer, before any prefix.
const (
	KeyEmailEnabled   = "email_enabled"
	KeyRecipientEmail = "recipient_email"
)

// MailConfig is the user's email relay preference.
type MailConfig struct {
	EmailEnabled     bool
	RecipientAddress string
}

// disabledSentinels mark the recipient as "feature off".
var disabledSentinels = map[string]struct{}{
	"":         {},
	"none":     {},
	"disabled": {},
}

// Deliverable reports whether mail should be sent under this configuration.
func (c MailConfig) Deliverable() bool {
	if !c.EmailEnabled {
		return false
	}
	_, off := disabledSentinels[strings.ToLower(strings.TrimSpace(c.RecipientAddress))]
	return !off
}

// Repository reads and writes the persisted key-value configuration.
type Repository interface {
	GetMailConfig(ctx context.Context) (MailConfig, error)
	SaveMailConfig(ctx context.Context, cfg MailConfig) error
}
