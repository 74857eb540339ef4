package app

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/aussiebroadwan/gatekeeper/internal/auth/service"
	"github.com/aussiebroadwan/gatekeeper/pkg/jwtx"
	"github.com/aussiebroadwan/gatekeeper/pkg/totpx"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Config struct {
	Issuer         string        // Optional: iss claim for tokens (default: gatekeeper)
	SigningKey     string        // Optional: HS256 secret, takes precedence over SigningKeyFile
	SigningKeyFile string        // Optional: file holding the HS256 secret, created when missing (default: ./signing.key)
	AccessTTL      time.Duration // Optional: access token lifetime (default: 5m)
	RefreshTTL     time.Duration // Optional: refresh token lifetime (default: 24h)

	DatabaseDriver string // Optional: sqlite or postgres (default: sqlite)
	DatabaseFile   string // Optional: SQLite database file (default: ./auth.db)
	DatabaseURL    string // Required for postgres: connection string

	TOTPIssuer     string              // Optional: issuer shown in authenticator apps (default: AuthProject)
	TwoFactorLabel service.LabelPolicy // Optional: user_id or email (default: user_id)
	RequireSession bool                // Optional: bearer token required for 2FA activate/disable (default: false)
	BcryptCost     int                 // Optional: bcrypt work factor for new hashes (default: 10)

	BootstrapEmail    string // Optional: operator account created when the user table is empty
	BootstrapPassword string // Optional: password for the operator account

	Env                 string        // Environment (dev, staging, prod) (default: dev)
	LogLevel            string        // Log level (debug, info, warn, error) (default: info)
	LogFormat           string        // Log format (json, text) (default: json)
	Port                int           // HTTP server port (default: 8080)
	ShutdownGracePeriod time.Duration // Graceful shutdown timeout (default: 10s)
}

// LoadConfig reads the environment. A .env file in the working directory is
// loaded first if present; real environment variables win over it.
func LoadConfig() Config {
	_ = godotenv.Load()

	return Config{
		Issuer:         getEnvOrDefault("AUTH_ISSUER", "gatekeeper"),
		SigningKey:     os.Getenv("AUTH_SIGNING_KEY"),
		SigningKeyFile: getEnvOrDefault("AUTH_SIGNING_KEY_FILE", "signing.key"),
		AccessTTL:      getEnvDurationOrDefault("AUTH_ACCESS_TTL", jwtx.DefaultAccessTokenTTL),
		RefreshTTL:     getEnvDurationOrDefault("AUTH_REFRESH_TTL", jwtx.DefaultRefreshTokenTTL),

		DatabaseDriver: strings.ToLower(getEnvOrDefault("AUTH_DATABASE_DRIVER", DriverSQLite)),
		DatabaseFile:   getEnvOrDefault("AUTH_DATABASE_FILE", "auth.db"),
		DatabaseURL:    os.Getenv("AUTH_DATABASE_URL"),

		TOTPIssuer:     getEnvOrDefault("AUTH_TOTP_ISSUER", totpx.DefaultIssuer),
		TwoFactorLabel: service.LabelPolicy(strings.ToLower(getEnvOrDefault("AUTH_2FA_LABEL", string(service.LabelUserID)))),
		RequireSession: getEnvBoolOrDefault("AUTH_2FA_REQUIRE_SESSION", false),
		BcryptCost:     getEnvIntOrDefault("AUTH_BCRYPT_COST", bcrypt.DefaultCost),

		BootstrapEmail:    os.Getenv("AUTH_BOOTSTRAP_EMAIL"),
		BootstrapPassword: os.Getenv("AUTH_BOOTSTRAP_PASSWORD"),

		Env:                 getEnvOrDefault("ENV", "dev"),
		LogLevel:            getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:           getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod: getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
	}
}

// Validate reports every problem at once so a bad deployment fails with the
// full list.
func (c Config) Validate() error {
	var errs []error

	switch c.DatabaseDriver {
	case DriverSQLite:
		if c.DatabaseFile == "" {
			errs = append(errs, errors.New("AUTH_DATABASE_FILE must not be empty"))
		}
	case DriverPostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("AUTH_DATABASE_URL is required for the postgres driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown AUTH_DATABASE_DRIVER %q", c.DatabaseDriver))
	}

	switch c.TwoFactorLabel {
	case service.LabelUserID, service.LabelEmail:
	default:
		errs = append(errs, fmt.Errorf("unknown AUTH_2FA_LABEL %q", c.TwoFactorLabel))
	}

	if c.SigningKey == "" && c.SigningKeyFile == "" {
		errs = append(errs, errors.New("one of AUTH_SIGNING_KEY or AUTH_SIGNING_KEY_FILE is required"))
	}
	if c.AccessTTL <= 0 || c.RefreshTTL <= 0 {
		errs = append(errs, errors.New("token TTLs must be positive"))
	}
	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		errs = append(errs, fmt.Errorf("AUTH_BCRYPT_COST must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost))
	}
	if (c.BootstrapEmail == "") != (c.BootstrapPassword == "") {
		errs = append(errs, service.ErrBootstrapIncomplete)
	}
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("invalid PORT %d", c.Port))
	}

	return errors.Join(errs...)
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if b, err := strconv.ParseBool(value); err == nil {
		return b
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Try parsing as duration (e.g., "1h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Try parsing as integer minutes (for backwards compatibility)
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}
