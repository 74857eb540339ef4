package domain

// LoginState is where a login attempt ended up.
type LoginState string

const (
	// LoginAuthenticated means tokens were issued.
	LoginAuthenticated LoginState = "AUTHENTICATED"

	// LoginTwoFactorPending means the password matched but a TOTP code is
	// still required before tokens are issued.
	LoginTwoFactorPending LoginState = "TWO_FACTOR_PENDING"
)

// LoginResult is the outcome of a successful password check. Tokens is nil
// unless State is LoginAuthenticated.
type LoginResult struct {
	State  LoginState
	UserID int64
	Tokens *TokenPair
}

// TwoFactorActivation is returned once, when a new secret is provisioned.
type TwoFactorActivation struct {
	Secret          string // base32, no padding
	ProvisioningURI string // otpauth://totp/...
	QRCodePNG       []byte // PNG rendering of ProvisioningURI
}
