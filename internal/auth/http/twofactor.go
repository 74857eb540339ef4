package http

import (
	"encoding/base64"
	"net/http"
	"strconv"
	"strings"

	"github.com/aussiebroadwan/gatekeeper/internal/auth/service"
	"github.com/aussiebroadwan/gatekeeper/pkg/authsdk"
	"github.com/aussiebroadwan/gatekeeper/pkg/httpx"
	"github.com/aussiebroadwan/gatekeeper/pkg/slogx"
)

// TwoFactorHandler serves the /v1/2fa endpoints.
type TwoFactorHandler struct {
	TwoFactorService *service.TwoFactorService

	// RequireSession makes activate and disable act only on the user named
	// by the bearer token. The router installs AuthnMiddleware when set.
	RequireSession bool
}

// HandleActivate handles POST /v1/2fa/activate
//
//	@Summary		Activate TOTP 2FA
//	@Description	Generates a new TOTP secret, stores it and enables 2FA. Calling again replaces the secret.
//	@Tags			2FA
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.ActivateTwoFactorRequest	true	"User"
//	@Success		200		{object}	authsdk.ActivateTwoFactorResponse	"Secret, provisioning URI and QR code"
//	@Failure		400		{object}	authsdk.ErrorResponse				"Malformed request"
//	@Failure		401		{object}	authsdk.ErrorResponse				"Missing or invalid bearer token"
//	@Failure		403		{object}	authsdk.ErrorResponse				"Token belongs to another user"
//	@Failure		500		{object}	authsdk.ErrorResponse				"Activation failed, including unknown users"
//	@Router			/v1/2fa/activate [post].
func (h *TwoFactorHandler) HandleActivate(w http.ResponseWriter, r *http.Request) {
	var req authsdk.ActivateTwoFactorRequest
	if !decodeUserRequest(w, r, &req, &req.UserID) {
		return
	}
	if !h.allowed(w, r, req.UserID) {
		return
	}

	act, err := h.TwoFactorService.Activate(r.Context(), req.UserID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.ActivateTwoFactorResponse{
		QRCodeImageBase64: base64.StdEncoding.EncodeToString(act.QRCodePNG),
		SecretKey:         act.Secret,
		ProvisioningURI:   act.ProvisioningURI,
	})
}

// HandleVerify handles POST /v1/2fa/verify
//
//	@Summary		Verify a TOTP code
//	@Description	Completes a pending login by checking the current TOTP code and issues tokens.
//	@Tags			2FA
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.VerifyTwoFactorRequest	true	"User and code"
//	@Success		200		{object}	authsdk.TokenResponse			"Authenticated"
//	@Failure		400		{object}	authsdk.ErrorResponse			"Malformed request"
//	@Failure		401		{object}	authsdk.ErrorResponse			"Invalid 2FA code"
//	@Failure		404		{object}	authsdk.ErrorResponse			"2FA not enabled"
//	@Failure		500		{object}	authsdk.ErrorResponse			"Inconsistent 2FA state"
//	@Router			/v1/2fa/verify [post].
func (h *TwoFactorHandler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	var req authsdk.VerifyTwoFactorRequest
	if !decodeUserRequest(w, r, &req, &req.UserID) {
		return
	}
	if strings.TrimSpace(req.TOTPCode) == "" {
		authsdk.ErrInvalidRequest.WriteError(w)
		return
	}

	pair, err := h.TwoFactorService.Verify(r.Context(), req.UserID, req.TOTPCode)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, tokenResponse(req.UserID, pair))
}

// HandleDisable handles POST /v1/2fa/disable
//
//	@Summary		Disable 2FA
//	@Description	Clears the TOTP secret and disables 2FA. Disabling twice, or for an unknown id, succeeds.
//	@Tags			2FA
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.DisableTwoFactorRequest	true	"User"
//	@Success		200		{object}	authsdk.MessageResponse			"2FA disabled"
//	@Failure		400		{object}	authsdk.ErrorResponse			"Malformed request"
//	@Failure		401		{object}	authsdk.ErrorResponse			"Missing or invalid bearer token"
//	@Failure		403		{object}	authsdk.ErrorResponse			"Token belongs to another user"
//	@Failure		500		{object}	authsdk.ErrorResponse			"Internal server error"
//	@Router			/v1/2fa/disable [post].
func (h *TwoFactorHandler) HandleDisable(w http.ResponseWriter, r *http.Request) {
	var req authsdk.DisableTwoFactorRequest
	if !decodeUserRequest(w, r, &req, &req.UserID) {
		return
	}
	if !h.allowed(w, r, req.UserID) {
		return
	}

	if err := h.TwoFactorService.Disable(r.Context(), req.UserID); err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.MessageResponse{Message: "2FA disabled successfully"})
}

// allowed enforces the session policy: the bearer subject must be userID.
func (h *TwoFactorHandler) allowed(w http.ResponseWriter, r *http.Request, userID int64) bool {
	if !h.RequireSession {
		return true
	}

	sub, ok := httpx.SubjectFromContext(r.Context())
	if !ok {
		authsdk.ErrInvalidToken.WriteError(w)
		return false
	}
	if sub != strconv.FormatInt(userID, 10) {
		slogx.FromContext(r.Context()).Warn("2fa change for another user refused",
			"subject", sub, "user_id", userID)
		authsdk.ErrForbidden.WriteError(w)
		return false
	}
	return true
}

// decodeUserRequest decodes the body into dst and checks the user id it
// carries. It writes the 400 itself and reports whether to continue.
func decodeUserRequest(w http.ResponseWriter, r *http.Request, dst any, userID *int64) bool {
	if err := httpx.DecodeJSON(r, dst); err != nil {
		slogx.FromContext(r.Context()).Debug("bad request body", "err", err)
		authsdk.ErrInvalidRequest.WriteError(w)
		return false
	}
	if *userID <= 0 {
		authsdk.ErrInvalidRequest.WriteError(w)
		return false
	}
	return true
}
