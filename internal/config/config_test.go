package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("SESSION_TTL", "")
	t.Setenv("RESEND_API_KEY", "")
	t.Setenv("TWILIO_ACCOUNT_SID", "")

	cfg := Load()
	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, "submissions.json", cfg.SubmissionsPath)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
	assert.Equal(t, 10, cfg.ApplyRatePerMinute)
	assert.False(t, cfg.Mail.Enabled())
	assert.False(t, cfg.Twilio.Enabled())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("SESSION_TTL", "30m")
	t.Setenv("APPLY_RATE_PER_MINUTE", "3")
	t.Setenv("RESEND_API_KEY", "re_test")
	t.Setenv("MAIL_TO", "hiring@example.com")
	t.Setenv("SUBMIT_ENDPOINT", "https://apply.example.com")

	cfg := Load()
	assert.Equal(t, "9090", cfg.HTTPPort)
	assert.Equal(t, 30*time.Minute, cfg.SessionTTL)
	assert.Equal(t, 3, cfg.ApplyRatePerMinute)
	assert.True(t, cfg.Mail.Enabled())
	assert.Equal(t, "https://apply.example.com", cfg.SubmitEndpoint)
}

func TestLoadInvalidNumbersFallBack(t *testing.T) {
	t.Setenv("SESSION_TTL", "forever")
	t.Setenv("APPLY_RATE_PER_MINUTE", "lots")

	cfg := Load()
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
	assert.Equal(t, 10, cfg.ApplyRatePerMinute)
}
