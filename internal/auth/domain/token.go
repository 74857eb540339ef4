package domain

import "time"

// TokenPair is what a completed login hands back: a short lived access token
// and a longer lived refresh token. Neither is persisted.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	TokenType    string        // always "Bearer"
	ExpiresIn    time.Duration // access token lifetime
}
