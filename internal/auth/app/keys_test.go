package app

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aussiebroadwan/gatekeeper/pkg/jwtx"
	"github.com/aussiebroadwan/gatekeeper/pkg/slogx"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestLoadSigningKey_FromEnv(t *testing.T) {
	key, err := LoadSigningKey(Config{SigningKey: "env-secret", SigningKeyFile: "/nonexistent/x"}, slogx.Discard())
	require.NoError(t, err)
	require.Equal(t, []byte("env-secret"), key)
}

func TestLoadSigningKey_GeneratesAndPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keys", "signing.key")
	cfg := Config{SigningKeyFile: path}

	first, err := LoadSigningKey(cfg, slogx.Discard())
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(first), jwtx.MinHS256KeySize)

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	second, err := LoadSigningKey(cfg, slogx.Discard())
	require.NoError(t, err)
	require.Equal(t, first, second, "key is reused across restarts")
}

func TestLoadSigningKey_EmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "signing.key")
	writeFile(t, path, "  \n")

	_, err := LoadSigningKey(Config{SigningKeyFile: path}, slogx.Discard())
	require.Error(t, err)
}

func TestInitSigner(t *testing.T) {
	cfg := Config{Issuer: "gatekeeper", SigningKey: strings.Repeat("x", 32)}

	signer, verifier, err := InitSigner(cfg, slogx.Discard())
	require.NoError(t, err)
	require.NoError(t, signer.Validate())

	claims := jwtx.NewClaims("7", jwtx.TokenTypeAccess, nil, jwtx.DefaultAccessTokenTTL, "gatekeeper", nil, time.Now())
	tok, err := signer.Sign(claims)
	require.NoError(t, err)

	got, err := verifier.Verify(tok)
	require.NoError(t, err)
	require.Equal(t, "7", got.Subject)
}

func TestInitSigner_WeakKey(t *testing.T) {
	_, _, err := InitSigner(Config{SigningKey: "short"}, slogx.Discard())
	require.ErrorIs(t, err, jwtx.ErrWeakKey)
}
