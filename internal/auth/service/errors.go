package service

import "errors"

// Every failure the orchestrator reports is one of these, possibly wrapped
// with the underlying cause. Match with errors.Is.
var (
	ErrInvalidCredentials  = errors.New("invalid_credentials")
	ErrTwoFactorNotEnabled = errors.New("two_factor_not_enabled")
	ErrInvalidTOTPCode     = errors.New("invalid_totp_code")
	ErrInconsistentState   = errors.New("inconsistent_state")
	ErrActivationFailed    = errors.New("activation_failed")
	ErrStoreFailure        = errors.New("store_failure")
)
