package authsdk

import (
	"context"
	"net/http"
)

// ActivateTwoFactor provisions a new TOTP secret for userID. Calling it again
// replaces the previous secret.
func (c *Client) ActivateTwoFactor(ctx context.Context, userID int64) (*ActivateTwoFactorResponse, error) {
	resp, err := c.doJSON(ctx, http.MethodPost, "/v1/2fa/activate", ActivateTwoFactorRequest{UserID: userID})
	if err != nil {
		return nil, err
	}

	var out ActivateTwoFactorResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// VerifyTwoFactor completes a login by submitting the current TOTP code.
func (c *Client) VerifyTwoFactor(ctx context.Context, userID int64, code string) (*TokenResponse, error) {
	resp, err := c.doJSON(ctx, http.MethodPost, "/v1/2fa/verify", VerifyTwoFactorRequest{
		UserID:   userID,
		TOTPCode: code,
	})
	if err != nil {
		return nil, err
	}

	var out TokenResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// DisableTwoFactor clears the user's secret and turns 2FA off.
func (c *Client) DisableTwoFactor(ctx context.Context, userID int64) (*MessageResponse, error) {
	resp, err := c.doJSON(ctx, http.MethodPost, "/v1/2fa/disable", DisableTwoFactorRequest{UserID: userID})
	if err != nil {
		return nil, err
	}

	var out MessageResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}
