package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, 7*24*time.Hour, cfg.AccessTTL)
	assert.Equal(t, 5*time.Minute, cfg.ResetPasswordTTL)
	assert.Equal(t, 12, cfg.BcryptCost)
	assert.NotEqual(t, cfg.JWTSecret, cfg.ResetPasswordSecret)
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("BCRYPT_COST", "twelve")
	t.Setenv("RESET_PASSWORD_TTL", "soon")
	t.Setenv("COOKIE_SECURE", "maybe")

	cfg := Load()

	assert.Equal(t, 12, cfg.BcryptCost)
	assert.Equal(t, 5*time.Minute, cfg.ResetPasswordTTL)
	assert.False(t, cfg.CookieSecure)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("JWT_ACCESS_TTL", "24h")
	t.Setenv("DB_USER", "app")
	t.Setenv("DB_PASSWORD", "pw")
	t.Setenv("DB_NAME", "places")

	cfg := Load()

	assert.Equal(t, 24*time.Hour, cfg.AccessTTL)
	assert.Equal(t, "postgres://app:pw@localhost:5432/places?sslmode=disable", cfg.PostgresDSN())
}

func TestCORSOrigins_SkipsBlanks(t *testing.T) {
	cfg := &Config{CORSAllowedOrigins: " http://a.test , ,http://b.test"}
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSOrigins())
}

func TestResetPasswordLink(t *testing.T) {
	cfg := &Config{AppURL: "https://onde-ir.app/"}
	assert.Equal(t, "https://onde-ir.app/auth/reset-password/abc", cfg.ResetPasswordLink("abc"))
}

func TestPostgresDSN_EscapesCredentials(t *testing.T) {
	cfg := &Config{DBUser: "app", DBPassword: "p@ss/word", DBHost: "db", DBPort: "5432", DBName: "places", DBSSLMode: "require"}
	assert.Equal(t, "postgres://app:p%40ss%2Fword@db:5432/places?sslmode=require", cfg.PostgresDSN())
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{Env: "production", JWTSecret: "s1", ResetPasswordSecret: "s2", BcryptCost: 12, CookieSecure: true}
	}

	assert.NoError(t, base().Validate())

	same := base()
	same.ResetPasswordSecret = "s1"
	assert.Error(t, same.Validate())

	cost := base()
	cost.BcryptCost = 99
	assert.Error(t, cost.Validate())

	dev := base()
	dev.JWTSecret = devSessionSecret
	assert.Error(t, dev.Validate())

	insecure := base()
	insecure.CookieSecure = false
	assert.Error(t, insecure.Validate())

	local := Load()
	assert.NoError(t, local.Validate())
}
