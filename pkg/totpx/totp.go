// Package totpx wraps pquerna/otp with the settings used for two-factor
// enrollment: secret generation, provisioning URIs and code verification.
package totpx

import (
	"encoding/base32"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aussiebroadwan/gatekeeper/pkg/cryptox"
	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

// Defaults follow RFC 6238 and what every authenticator app expects.
const (
	DefaultPeriod     = 30
	DefaultSkew       = 1
	DefaultSecretSize = 20 // 160 bits, the RFC 4226 recommended key length
	DefaultIssuer     = "AuthProject"

	minSecretSize = 16 // 128 bits
)

var (
	ErrEmptySecret   = errors.New("totpx: empty secret")
	ErrInvalidSecret = errors.New("totpx: secret is not valid base32")
	ErrEmptyLabel    = errors.New("totpx: empty account label")
)

var b32NoPadding = base32.StdEncoding.WithPadding(base32.NoPadding)

// Engine generates and verifies time based one-time passwords. The zero
// value is usable and falls back to the defaults above.
type Engine struct {
	Issuer     string        // issuer shown in authenticator apps
	Period     uint          // step length in seconds
	Skew       uint          // accepted steps either side of the current one
	Digits     otp.Digits    // code length
	Algorithm  otp.Algorithm // HMAC algorithm
	SecretSize uint          // raw secret length in bytes
}

// NewEngine returns an Engine with default settings and the given issuer.
func NewEngine(issuer string) *Engine {
	return &Engine{
		Issuer:     issuer,
		Period:     DefaultPeriod,
		Skew:       DefaultSkew,
		Digits:     otp.DigitsSix,
		Algorithm:  otp.AlgorithmSHA1,
		SecretSize: DefaultSecretSize,
	}
}

// GenerateSecret returns a new random shared secret encoded as unpadded
// RFC 4648 base32, the alphabet authenticator apps accept.
func (e *Engine) GenerateSecret() (string, error) {
	size := e.secretSize()
	raw, err := cryptox.RandomBytes(int(size)) // #nosec G115 - bounded by secretSize
	if err != nil {
		return "", fmt.Errorf("totpx: generate secret: %w", err)
	}
	return b32NoPadding.EncodeToString(raw), nil
}

// ProvisioningURI builds the otpauth://totp/ URI for secret, labelled with
// accountLabel and the engine's issuer. It is what gets rendered as a QR code.
func (e *Engine) ProvisioningURI(secret, accountLabel string) (string, error) {
	raw, err := decodeSecret(secret)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(accountLabel) == "" {
		return "", ErrEmptyLabel
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      e.issuer(),
		AccountName: accountLabel,
		Period:      e.period(),
		Secret:      raw,
		Digits:      e.digits(),
		Algorithm:   e.Algorithm,
	})
	if err != nil {
		return "", fmt.Errorf("totpx: build provisioning uri: %w", err)
	}
	return key.URL(), nil
}

// Verify reports whether code is valid for secret at now, allowing Skew steps
// of drift either way. Comparison is constant time. Empty or malformed
// secrets and codes fail closed.
func (e *Engine) Verify(secret, code string, now time.Time) bool {
	if _, err := decodeSecret(secret); err != nil {
		return false
	}
	code = strings.TrimSpace(code)
	if code == "" {
		return false
	}

	valid, err := totp.ValidateCustom(code, normalizeSecret(secret), now.UTC(), e.validateOpts())
	if err != nil {
		return false
	}
	return valid
}

// GenerateCode returns the code for secret at t.
func (e *Engine) GenerateCode(secret string, t time.Time) (string, error) {
	if _, err := decodeSecret(secret); err != nil {
		return "", err
	}
	return totp.GenerateCodeCustom(normalizeSecret(secret), t.UTC(), e.validateOpts())
}

func (e *Engine) validateOpts() totp.ValidateOpts {
	return totp.ValidateOpts{
		Period:    e.period(),
		Skew:      e.Skew,
		Digits:    e.digits(),
		Algorithm: e.Algorithm,
	}
}

func (e *Engine) issuer() string {
	if e.Issuer == "" {
		return DefaultIssuer
	}
	return e.Issuer
}

func (e *Engine) period() uint {
	if e.Period == 0 {
		return DefaultPeriod
	}
	return e.Period
}

func (e *Engine) digits() otp.Digits {
	if e.Digits == 0 {
		return otp.DigitsSix
	}
	return e.Digits
}

func (e *Engine) secretSize() uint {
	if e.SecretSize < minSecretSize {
		return DefaultSecretSize
	}
	return e.SecretSize
}

func normalizeSecret(secret string) string {
	return strings.ToUpper(strings.TrimSpace(secret))
}

// decodeSecret rejects the inputs otp would otherwise accept silently: an
// empty secret decodes to an empty HMAC key.
func decodeSecret(secret string) ([]byte, error) {
	secret = normalizeSecret(secret)
	if secret == "" {
		return nil, ErrEmptySecret
	}
	raw, err := b32NoPadding.DecodeString(strings.TrimRight(secret, "="))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSecret, err)
	}
	if len(raw) == 0 {
		return nil, ErrEmptySecret
	}
	return raw, nil
}
