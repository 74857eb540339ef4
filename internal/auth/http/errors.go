package http

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/gatekeeper/internal/auth/service"
	"github.com/aussiebroadwan/gatekeeper/pkg/authsdk"
	"github.com/aussiebroadwan/gatekeeper/pkg/slogx"
)

// writeServiceError maps a service error onto its response. Unexpected
// errors are logged and reported as a bare server_error.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		authsdk.ErrInvalidCredentials.WriteError(w)
	case errors.Is(err, service.ErrTwoFactorNotEnabled):
		authsdk.ErrTwoFactorNotEnabled.WriteError(w)
	case errors.Is(err, service.ErrInvalidTOTPCode):
		authsdk.ErrInvalidTOTPCode.WriteError(w)
	case errors.Is(err, service.ErrInconsistentState):
		authsdk.ErrInconsistentState.WriteError(w)
	case errors.Is(err, service.ErrActivationFailed):
		authsdk.ErrActivationFailed.WriteError(w)
	default:
		slogx.FromContext(r.Context()).Error("request failed", "err", err)
		authsdk.ErrServerError.WriteError(w)
	}
}

// MethodNotAllowed answers any method a route does not serve.
func MethodNotAllowed(allow string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Allow", allow)
		authsdk.ErrMethodNotAllowed.WriteError(w)
	}
}
