package database

import (
	"context"
	"testing"

	"reminder_relay/internal/domain/settings"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettingsRepository_MissingKeysMeanDisabled(t *testing.T) {
	repo := NewSettingsRepository(newTestDB(t), "flutter.")

	cfg, err := repo.GetMailConfig(context.Background())
	require.NoError(t, err)
	assert.False(t, cfg.EmailEnabled)
	assert.False(t, cfg.Deliverable())
}

func TestSettingsRepository_SaveAndLoad(t *testing.T) {
	ctx := context.Background()
	repo := NewSettingsRepository(newTestDB(t), "flutter.")

	want := settings.MailConfig{EmailEnabled: true, RecipientAddress: "a@b.com"}
	require.NoError(t, repo.SaveMailConfig(ctx, want))

	got, err := repo.GetMailConfig(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	// Overwrite.
	require.NoError(t, repo.SaveMailConfig(ctx, settings.MailConfig{EmailEnabled: false, RecipientAddress: "none"}))
	got, err = repo.GetMailConfig(ctx)
	require.NoError(t, err)
	assert.Equal(t, settings.MailConfig{EmailEnabled: false, RecipientAddress: "none"}, got)
}

func TestSettingsRepository_KeysArePrefixed(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewSettingsRepository(db, "flutter.")

	require.NoError(t, repo.SetString(ctx, settings.KeyRecipientEmail, "a@b.com"))

	var value string
	require.NoError(t, db.Get(&value, `SELECT setting_value FROM settings WHERE setting_key = 'flutter.recipient_email'`))
	assert.Equal(t, "a@b.com", value)

	_, err := NewSettingsRepository(db, "").GetString(ctx, settings.KeyRecipientEmail)
	assert.ErrorIs(t, err, ErrSettingNotFound)
}

func TestSettingsRepository_MalformedFlag(t *testing.T) {
	ctx := context.Background()
	repo := NewSettingsRepository(newTestDB(t), "")

	require.NoError(t, repo.SetString(ctx, settings.KeyEmailEnabled, "sometimes"))

	_, err := repo.GetMailConfig(ctx)
	assert.Error(t, err)
}
