// internal/infra/database/settings_repository.go
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"reminder_relay/internal/domain/settings"

	"github.com/jmoiron/sqlx"
)

var ErrSettingNotFound = fmt.Errorf("setting not found")

// SettingsRepository stores the application's preferences as key-value rows.
// Keys are namespaced by prefix, mirroring the application's preference store.
type SettingsRepository struct {
	db     *sqlx.DB
	prefix string
}

func NewSettingsRepository(db *sqlx.DB, prefix string) *SettingsRepository {
	return &SettingsRepository{db: db, prefix: prefix}
}

// GetString returns the raw value stored under key.
func (r *SettingsRepository) GetString(ctx context.Context, key string) (string, error) {
	var value string
	query := r.db.Rebind(`SELECT setting_value FROM settings WHERE setting_key = ?`)
	err := r.db.GetContext(ctx, &value, query, r.prefix+key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrSettingNotFound
		}
		return "", fmt.Errorf("error getting setting %q: %w", key, err)
	}
	return value, nil
}

// SetString upserts key.
func (r *SettingsRepository) SetString(ctx context.Context, key, value string) error {
	return setString(ctx, r.db, r.prefix+key, value)
}

// GetMailConfig reads the email preferences. Missing keys fall back to "disabled".
func (r *SettingsRepository) GetMailConfig(ctx context.Context) (settings.MailConfig, error) {
	cfg := settings.MailConfig{}

	enabled, err := r.GetString(ctx, settings.KeyEmailEnabled)
	switch {
	case errors.Is(err, ErrSettingNotFound):
		return cfg, nil
	case err != nil:
		return cfg, err
	}
	cfg.EmailEnabled, err = strconv.ParseBool(enabled)
	if err != nil {
		return cfg, fmt.Errorf("malformed %s value %q: %w", settings.KeyEmailEnabled, enabled, err)
	}

	cfg.RecipientAddress, err = r.GetString(ctx, settings.KeyRecipientEmail)
	if err != nil && !errors.Is(err, ErrSettingNotFound) {
		return cfg, err
	}

	return cfg, nil
}

// SaveMailConfig writes both email preferences atomically.
func (r *SettingsRepository) SaveMailConfig(ctx context.Context, cfg settings.MailConfig) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := setString(ctx, tx, r.prefix+settings.KeyEmailEnabled, strconv.FormatBool(cfg.EmailEnabled)); err != nil {
		return err
	}
	if err := setString(ctx, tx, r.prefix+settings.KeyRecipientEmail, cfg.RecipientAddress); err != nil {
		return err
	}

	return tx.Commit()
}

type execer interface {
	sqlx.ExecerContext
	Rebind(query string) string
}

func setString(ctx context.Context, db execer, key, value string) error {
	query := db.Rebind(`INSERT INTO settings (setting_key, setting_value) VALUES (?, ?)
		ON CONFLICT (setting_key) DO UPDATE SET setting_value = excluded.setting_value`)
	if _, err := db.ExecContext(ctx, query, key, value); err != nil {
		return fmt.Errorf("error saving setting %q: %w", key, err)
	}
	return nil
}
