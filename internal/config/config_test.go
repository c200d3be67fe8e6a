package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, Weights{ShoutoutSent: 5, ReactionReceived: 2, CommentReceived: 2, ReactionGiven: 1}, cfg.Weights)
	assert.Equal(t, 3000, cfg.CommentMaxLength)
	assert.Equal(t, time.UTC.String(), cfg.FeedTimezone.String())
	assert.Equal(t, 24*time.Hour, cfg.JWTTTL)
	assert.Equal(t, 30*24*time.Hour, cfg.NotificationRetention)
	assert.Equal(t, "0 3 * * *", cfg.NotificationCleanupCron)
}

func TestLoadEmptyCleanupCron(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("NOTIFICATION_CLEANUP_CRON", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Empty(t, cfg.NotificationCleanupCron)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("WEIGHT_SHOUTOUT_SENT", "10")
	t.Setenv("FEED_TIMEZONE", "Asia/Jakarta")
	t.Setenv("RATE_LIMIT_COMMENT", "30s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 10, cfg.Weights.ShoutoutSent)
	assert.Equal(t, "Asia/Jakarta", cfg.FeedTimezone.String())
	assert.Equal(t, 30*time.Second, cfg.RateLimitComment)
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"negative weight", "WEIGHT_REACTION_GIVEN", "-1"},
		{"non numeric weight", "WEIGHT_COMMENT_RECEIVED", "two"},
		{"unknown timezone", "FEED_TIMEZONE", "Mars/Olympus"},
		{"bad duration", "RATE_LIMIT_POST", "soon"},
		{"zero comment length", "COMMENT_MAX_LENGTH", "0"},
		{"negative retention", "NOTIFICATION_RETENTION", "-1h"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("JWT_SECRET", "secret")
			t.Setenv(tt.key, tt.val)

			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestLoadRequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadGoogleSignIn(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("GOOGLE_CLIENT_ID", "client")

	_, err := Load()
	assert.ErrorContains(t, err, "GOOGLE_CLIENT_SECRET")

	t.Setenv("GOOGLE_CLIENT_SECRET", "shh")
	t.Setenv("GOOGLE_REDIRECT_URL", "http://localhost:8080/api/auth/google/callback")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "client", cfg.GoogleClientID)
	assert.Equal(t, "http://localhost:3000", cfg.FrontendURL)
}
