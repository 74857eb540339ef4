package http

import (
	"net/http"
	"strings"

	"github.com/aussiebroadwan/gatekeeper/internal/auth/domain"
	"github.com/aussiebroadwan/gatekeeper/internal/auth/service"
	"github.com/aussiebroadwan/gatekeeper/pkg/authsdk"
	"github.com/aussiebroadwan/gatekeeper/pkg/httpx"
	"github.com/aussiebroadwan/gatekeeper/pkg/slogx"
)

// LoginHandler serves the password step.
type LoginHandler struct {
	AuthService *service.AuthService
}

// ServeHTTP handles POST /v1/login
//
//	@Summary		Log in with email and password
//	@Description	Checks the password. Accounts without 2FA receive tokens (200). Accounts with 2FA receive 202 and must call /v1/2fa/verify.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.LoginRequest				true	"Credentials"
//	@Success		200		{object}	authsdk.TokenResponse				"Authenticated"
//	@Success		202		{object}	authsdk.TwoFactorRequiredResponse	"2FA code required"
//	@Failure		400		{object}	authsdk.ErrorResponse				"Malformed request"
//	@Failure		401		{object}	authsdk.ErrorResponse				"Invalid credentials"
//	@Failure		500		{object}	authsdk.ErrorResponse				"Internal server error"
//	@Router			/v1/login [post].
func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req authsdk.LoginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		slogx.FromContext(ctx).Debug("bad login body", "err", err)
		authsdk.ErrInvalidRequest.WriteError(w)
		return
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		authsdk.ErrInvalidRequest.WriteError(w)
		return
	}

	res, err := h.AuthService.Login(ctx, req.Email, req.Password)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	if res.State == domain.LoginTwoFactorPending {
		httpx.WriteJSON(w, http.StatusAccepted, authsdk.TwoFactorRequiredResponse{
			UserID: res.UserID,
			Status: authsdk.LoginStatusTwoFactorRequired,
		})
		return
	}

	httpx.WriteJSON(w, http.StatusOK, tokenResponse(res.UserID, *res.Tokens))
}

func tokenResponse(userID int64, pair domain.TokenPair) authsdk.TokenResponse {
	return authsdk.TokenResponse{
		UserID:       userID,
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    pair.TokenType,
		ExpiresIn:    int(pair.ExpiresIn.Seconds()),
	}
}
