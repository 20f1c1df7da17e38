package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromViper_Defaults(t *testing.T) {
	cfg, err := FromViper(newViper())
	require.NoError(t, err)

	assert.Equal(t, "dev", cfg.AppEnv)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, 24*time.Hour, cfg.TempPasswordTTL)
	assert.Equal(t, 15*time.Minute, cfg.JWTAccessTTL)
	assert.Equal(t, MailDriverLog, cfg.MailDriver)
	assert.False(t, cfg.IsProduction())
}

func TestFromViper_ProdRequiresSecretAndSMTP(t *testing.T) {
	v := newViper()
	v.Set("APP_ENV", "production")

	_, err := FromViper(v)
	assert.ErrorContains(t, err, "JWT_SECRET")

	v.Set("JWT_SECRET", "a-real-secret")
	_, err = FromViper(v)
	assert.ErrorContains(t, err, "MAIL_DRIVER")

	v.Set("MAIL_DRIVER", "smtp")
	v.Set("SMTP_HOST", "smtp.example.com")
	v.Set("SMTP_FROM", "noreply@adbond.io")
	cfg, err := FromViper(v)
	require.NoError(t, err)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, 587, cfg.SMTP.Port)
}

func TestFromViper_InvalidDuration(t *testing.T) {
	v := newViper()
	v.Set("TEMP_PASSWORD_TTL", "tomorrow")

	_, err := FromViper(v)
	assert.ErrorContains(t, err, "TEMP_PASSWORD_TTL")
}

func TestFromViper_CORSOrigins(t *testing.T) {
	v := newViper()
	v.Set("CORS_ALLOWED_ORIGINS", "https://app.adbond.io, https://admin.adbond.io,")

	cfg, err := FromViper(v)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://app.adbond.io", "https://admin.adbond.io"}, cfg.CORSAllowedOrigins)
}

func TestFromViper_SMTPTLSPolicy(t *testing.T) {
	v := newViper()
	v.Set("MAIL_DRIVER", "smtp")
	v.Set("SMTP_HOST", "smtp.example.com")
	v.Set("SMTP_FROM", "noreply@adbond.io")
	v.Set("SMTP_PORT", 465)
	v.Set("SMTP_TLS_POLICY", "SSL")

	cfg, err := FromViper(v)
	require.NoError(t, err)
	assert.Equal(t, "ssl", cfg.SMTP.TLSPolicy)

	v.Set("SMTP_TLS_POLICY", "sometimes")
	_, err = FromViper(v)
	assert.ErrorContains(t, err, "SMTP_TLS_POLICY")
}
