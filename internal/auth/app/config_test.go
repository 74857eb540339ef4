package app

import (
	"os"
	"testing"
	"time"

	"github.com/aussiebroadwan/gatekeeper/internal/auth/service"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"AUTH_ISSUER", "AUTH_SIGNING_KEY", "AUTH_SIGNING_KEY_FILE", "AUTH_ACCESS_TTL",
		"AUTH_REFRESH_TTL", "AUTH_DATABASE_DRIVER", "AUTH_DATABASE_FILE", "AUTH_DATABASE_URL",
		"AUTH_TOTP_ISSUER", "AUTH_2FA_LABEL", "AUTH_2FA_REQUIRE_SESSION", "AUTH_BCRYPT_COST",
		"AUTH_BOOTSTRAP_EMAIL", "AUTH_BOOTSTRAP_PASSWORD", "PORT", "SHUTDOWN_GRACE_PERIOD",
	} {
		t.Setenv(k, "")
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir()) // no .env

	cfg := LoadConfig()
	require.Equal(t, "gatekeeper", cfg.Issuer)
	require.Equal(t, 5*time.Minute, cfg.AccessTTL)
	require.Equal(t, 24*time.Hour, cfg.RefreshTTL)
	require.Equal(t, DriverSQLite, cfg.DatabaseDriver)
	require.Equal(t, "AuthProject", cfg.TOTPIssuer)
	require.Equal(t, service.LabelUserID, cfg.TwoFactorLabel)
	require.False(t, cfg.RequireSession)
	require.Equal(t, 10, cfg.BcryptCost)
	require.Equal(t, 8080, cfg.Port)
	require.NoError(t, cfg.Validate())
}

func TestLoadConfig_FromEnv(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())

	t.Setenv("AUTH_ACCESS_TTL", "90s")
	t.Setenv("AUTH_REFRESH_TTL", "60") // minutes
	t.Setenv("AUTH_DATABASE_DRIVER", "Postgres")
	t.Setenv("AUTH_DATABASE_URL", "postgres://u:p@localhost/auth")
	t.Setenv("AUTH_2FA_LABEL", "email")
	t.Setenv("AUTH_2FA_REQUIRE_SESSION", "true")
	t.Setenv("PORT", "not-a-number")

	cfg := LoadConfig()
	require.Equal(t, 90*time.Second, cfg.AccessTTL)
	require.Equal(t, time.Hour, cfg.RefreshTTL)
	require.Equal(t, DriverPostgres, cfg.DatabaseDriver)
	require.Equal(t, service.LabelEmail, cfg.TwoFactorLabel)
	require.True(t, cfg.RequireSession)
	require.Equal(t, 8080, cfg.Port)
	require.NoError(t, cfg.Validate())
}

func TestLoadConfig_DotEnv(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	t.Chdir(dir)
	writeFile(t, dir+"/.env", "AUTH_TOTP_ISSUER=FromDotEnv\nAUTH_ISSUER=dotenv-issuer\n")

	// godotenv skips keys that exist, even when empty.
	require.NoError(t, os.Unsetenv("AUTH_TOTP_ISSUER"))

	// Real environment wins over .env.
	t.Setenv("AUTH_ISSUER", "env-issuer")

	cfg := LoadConfig()
	require.Equal(t, "FromDotEnv", cfg.TOTPIssuer)
	require.Equal(t, "env-issuer", cfg.Issuer)
}

func TestConfigValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			SigningKeyFile: "signing.key",
			AccessTTL:      time.Minute,
			RefreshTTL:     time.Hour,
			DatabaseDriver: DriverSQLite,
			DatabaseFile:   "auth.db",
			TwoFactorLabel: service.LabelUserID,
			BcryptCost:     10,
			Port:           8080,
		}
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"unknown driver", func(c *Config) { c.DatabaseDriver = "mysql" }, "AUTH_DATABASE_DRIVER"},
		{"postgres without url", func(c *Config) { c.DatabaseDriver = DriverPostgres }, "AUTH_DATABASE_URL"},
		{"unknown label", func(c *Config) { c.TwoFactorLabel = "nickname" }, "AUTH_2FA_LABEL"},
		{"no key source", func(c *Config) { c.SigningKeyFile = "" }, "AUTH_SIGNING_KEY"},
		{"zero ttl", func(c *Config) { c.AccessTTL = 0 }, "TTL"},
		{"bcrypt cost", func(c *Config) { c.BcryptCost = 99 }, "AUTH_BCRYPT_COST"},
		{"half bootstrap", func(c *Config) { c.BootstrapEmail = "ops@example.com" }, "bootstrap"},
		{"bad port", func(c *Config) { c.Port = 0 }, "PORT"},
	}

	require.NoError(t, valid().Validate())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.errMsg)
		})
	}
}
