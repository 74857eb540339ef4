package authsdk

// LoginStatusTwoFactorRequired is the status returned with 202 when the
// password was correct but a TOTP code is still needed.
const LoginStatusTwoFactorRequired = "2FA_REQUIRED"

// ErrorResponse is the JSON body of every error response.
type ErrorResponse struct {
	// Error is a machine readable reason code such as "invalid_credentials".
	Error string `json:"error" example:"invalid_credentials"`

	// Message is generic human readable text. It never carries internal detail.
	Message string `json:"message" example:"Invalid credentials"`
}

// LoginRequest is the body of POST /v1/login.
type LoginRequest struct {
	Email    string `json:"email" example:"alice@example.com"`
	Password string `json:"password" example:"hunter2"`
}

// TokenResponse is returned by a successful login or 2FA verification.
type TokenResponse struct {
	UserID       int64  `json:"userId" example:"42"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`

	// TokenType is always "Bearer".
	TokenType string `json:"tokenType,omitempty" example:"Bearer"`

	// ExpiresIn is the access token lifetime in seconds.
	ExpiresIn int `json:"expiresIn,omitempty" example:"300"`
}

// TwoFactorRequiredResponse is returned with 202 from POST /v1/login.
type TwoFactorRequiredResponse struct {
	UserID int64  `json:"userId" example:"42"`
	Status string `json:"status" example:"2FA_REQUIRED"`
}

// ActivateTwoFactorRequest is the body of POST /v1/2fa/activate.
type ActivateTwoFactorRequest struct {
	UserID int64 `json:"userId" example:"42"`
}

// ActivateTwoFactorResponse carries the freshly provisioned TOTP secret.
type ActivateTwoFactorResponse struct {
	// QRCodeImageBase64 is a base64 encoded PNG of the provisioning URI.
	QRCodeImageBase64 string `json:"qrCodeImageBase64"`

	// SecretKey is the base32 shared secret for manual entry.
	SecretKey string `json:"secretKey" example:"JBSWY3DPEHPK3PXPJBSWY3DPEHPK3PXP"`

	ProvisioningURI string `json:"provisioningUri" example:"otpauth://totp/AuthProject:user_id_42?issuer=AuthProject&secret=JBSWY3DPEHPK3PXP"`
}

// VerifyTwoFactorRequest is the body of POST /v1/2fa/verify.
type VerifyTwoFactorRequest struct {
	UserID   int64  `json:"userId" example:"42"`
	TOTPCode string `json:"totpCode" example:"123456"`
}

// DisableTwoFactorRequest is the body of POST /v1/2fa/disable.
type DisableTwoFactorRequest struct {
	UserID int64 `json:"userId" example:"42"`
}

// MessageResponse is a plain acknowledgement.
type MessageResponse struct {
	Message string `json:"message" example:"2FA disabled successfully"`
}

// HealthResponse is returned by /livez and /readyz.
type HealthResponse struct {
	Status  string        `json:"status" example:"ok"`
	Uptime  string        `json:"uptime" example:"1h2m3s"`
	Version string        `json:"version" example:"dev"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks reports the state of each dependency checked by /readyz.
type HealthChecks struct {
	Database string `json:"database" example:"ok"`
	Signer   string `json:"signer" example:"ok"`
}
