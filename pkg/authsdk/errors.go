package authsdk

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/aussiebroadwan/gatekeeper/pkg/httpx"
)

// Reason codes carried in the "error" field of error responses.
const (
	ErrorCodeInvalidRequest      = "invalid_request"
	ErrorCodeInvalidCredentials  = "invalid_credentials"
	ErrorCodeTwoFactorNotEnabled = "two_factor_not_enabled"
	ErrorCodeNotFound            = "not_found"
	ErrorCodeInvalidTOTPCode     = "invalid_totp_code"
	ErrorCodeInconsistentState   = "inconsistent_state"
	ErrorCodeActivationFailed    = "activation_failed"
	ErrorCodeServerError         = "server_error"
	ErrorCodeInvalidToken        = "invalid_token"
	ErrorCodeForbidden           = "forbidden"
	ErrorCodeMethodNotAllowed    = "method_not_allowed"
)

// APIError is an error response from the service. Handlers write it and the
// client decodes it, so both sides agree on the wire shape.
type APIError struct {
	// StatusCode is the HTTP status code for this error
	StatusCode int `json:"-"`

	Code    string `json:"error"`
	Message string `json:"message"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Is matches on status and reason code, so a decoded client error compares
// equal to the predefined value.
func (e *APIError) Is(target error) bool {
	t, ok := target.(*APIError)
	if !ok {
		return false
	}
	return e.StatusCode == t.StatusCode && e.Code == t.Code
}

// WriteError writes this APIError to an HTTP response writer.
func (e *APIError) WriteError(w http.ResponseWriter) {
	httpx.WriteError(w, e.StatusCode, e.Code, e.Message)
}

var (
	ErrInvalidRequest = &APIError{
		StatusCode: http.StatusBadRequest,
		Code:       ErrorCodeInvalidRequest,
		Message:    "The request is malformed or missing required fields",
	}

	// ErrInvalidCredentials covers both an unknown email and a wrong password.
	ErrInvalidCredentials = &APIError{
		StatusCode: http.StatusUnauthorized,
		Code:       ErrorCodeInvalidCredentials,
		Message:    "Invalid credentials",
	}

	ErrTwoFactorNotEnabled = &APIError{
		StatusCode: http.StatusNotFound,
		Code:       ErrorCodeTwoFactorNotEnabled,
		Message:    "2FA is not enabled for this user",
	}

	ErrNotFound = &APIError{
		StatusCode: http.StatusNotFound,
		Code:       ErrorCodeNotFound,
		Message:    "User not found",
	}

	ErrInvalidTOTPCode = &APIError{
		StatusCode: http.StatusUnauthorized,
		Code:       ErrorCodeInvalidTOTPCode,
		Message:    "Invalid 2FA code",
	}

	ErrInconsistentState = &APIError{
		StatusCode: http.StatusInternalServerError,
		Code:       ErrorCodeInconsistentState,
		Message:    "2FA is in an inconsistent state for this user",
	}

	ErrActivationFailed = &APIError{
		StatusCode: http.StatusInternalServerError,
		Code:       ErrorCodeActivationFailed,
		Message:    "Failed to activate 2FA",
	}

	ErrServerError = &APIError{
		StatusCode: http.StatusInternalServerError,
		Code:       ErrorCodeServerError,
		Message:    "Internal server error",
	}

	ErrInvalidToken = &APIError{
		StatusCode: http.StatusUnauthorized,
		Code:       ErrorCodeInvalidToken,
		Message:    "Authentication required",
	}

	ErrForbidden = &APIError{
		StatusCode: http.StatusForbidden,
		Code:       ErrorCodeForbidden,
		Message:    "Not allowed to act on this user",
	}

	ErrMethodNotAllowed = &APIError{
		StatusCode: http.StatusMethodNotAllowed,
		Code:       ErrorCodeMethodNotAllowed,
		Message:    "Method not allowed",
	}
)

// TwoFactorRequiredError is returned by Client.Login when the password was
// accepted but the account has 2FA enabled. Finish with VerifyTwoFactor.
type TwoFactorRequiredError struct {
	UserID int64
}

func (e *TwoFactorRequiredError) Error() string {
	return fmt.Sprintf("2FA required for user %d", e.UserID)
}

// parseErrorResponse turns a non-success response into a typed error.
func parseErrorResponse(resp *http.Response, body []byte) error {
	var errResp ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && (errResp.Error != "" || errResp.Message != "") {
		code := errResp.Error
		if code == "" {
			code = ErrorCodeServerError
		}
		return &APIError{
			StatusCode: resp.StatusCode,
			Code:       code,
			Message:    errResp.Message,
		}
	}

	return &APIError{
		StatusCode: resp.StatusCode,
		Code:       ErrorCodeServerError,
		Message:    fmt.Sprintf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode)),
	}
}
