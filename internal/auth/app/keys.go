package app

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/aussiebroadwan/gatekeeper/pkg/cryptox"
	"github.com/aussiebroadwan/gatekeeper/pkg/jwtx"
)

// signingKeyID is put in the kid header. There is only ever one key.
const signingKeyID = "hs256-1"

// LoadSigningKey returns the HS256 secret.
//
// Sources, in order:
//   - AUTH_SIGNING_KEY, used verbatim.
//   - AUTH_SIGNING_KEY_FILE, read if it exists.
//   - A fresh 512-bit key written to AUTH_SIGNING_KEY_FILE with 0600 permissions.
//
// Tokens survive restarts as long as the file does.
func LoadSigningKey(cfg Config, logger *slog.Logger) ([]byte, error) {
	if cfg.SigningKey != "" {
		logger.Info("using signing key from environment")
		return []byte(cfg.SigningKey), nil
	}

	raw, err := os.ReadFile(cfg.SigningKeyFile)
	switch {
	case err == nil:
		key := strings.TrimSpace(string(raw))
		if key == "" {
			return nil, fmt.Errorf("signing key file %s is empty", cfg.SigningKeyFile)
		}
		logger.Info("loaded signing key", "path", cfg.SigningKeyFile)
		return []byte(key), nil

	case errors.Is(err, fs.ErrNotExist):
		key, err := cryptox.GenerateToken(cryptox.TokenSize512)
		if err != nil {
			return nil, err
		}
		if dir := filepath.Dir(cfg.SigningKeyFile); dir != "." {
			if err := os.MkdirAll(dir, 0o700); err != nil {
				return nil, fmt.Errorf("create signing key dir: %w", err)
			}
		}
		if err := os.WriteFile(cfg.SigningKeyFile, []byte(key+"\n"), 0o600); err != nil {
			return nil, fmt.Errorf("write signing key: %w", err)
		}
		logger.Warn("generated new signing key, previously issued tokens are invalid", "path", cfg.SigningKeyFile)
		return []byte(key), nil

	default:
		return nil, fmt.Errorf("read signing key: %w", err)
	}
}

// InitSigner builds the HS256 signer and the access token verifier that
// shares its key.
func InitSigner(cfg Config, logger *slog.Logger) (jwtx.Signer, jwtx.Verifier, error) {
	key, err := LoadSigningKey(cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	signer, err := jwtx.NewSignerHS256(signingKeyID, key)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid signing key: %w", err)
	}

	return signer, jwtx.NewCommonHS256(key, cfg.Issuer, nil), nil
}
