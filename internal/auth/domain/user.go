package domain

import "time"

type User struct {
	ID               int64
	Email            string // matched exactly, never normalised
	PasswordHash     string // bcrypt, or argon2id PHC for older rows
	TwoFactorEnabled bool
	TwoFactorSecret  *string // base32 TOTP secret, nil when never activated or disabled
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// HasTwoFactorSecret reports whether a usable secret is stored.
func (u *User) HasTwoFactorSecret() bool {
	return u.TwoFactorSecret != nil && *u.TwoFactorSecret != ""
}
