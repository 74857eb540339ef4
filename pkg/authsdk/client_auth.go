package authsdk

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// Login authenticates with email and password.
//
// On success it returns the issued tokens. When the account has 2FA enabled
// it returns a *TwoFactorRequiredError carrying the user id; finish the login
// with VerifyTwoFactor.
func (c *Client) Login(ctx context.Context, email, password string) (*TokenResponse, error) {
	resp, err := c.doJSON(ctx, http.MethodPost, "/v1/login", LoginRequest{
		Email:    email,
		Password: password,
	})
	if err != nil {
		return nil, err
	}

	body, err := readBody(resp)
	if err != nil {
		return nil, err
	}

	switch resp.StatusCode {
	case http.StatusOK:
		var tokens TokenResponse
		if err := json.Unmarshal(body, &tokens); err != nil {
			return nil, fmt.Errorf("failed to decode response: %w", err)
		}
		return &tokens, nil

	case http.StatusAccepted:
		var pending TwoFactorRequiredResponse
		if err := json.Unmarshal(body, &pending); err != nil {
			return nil, fmt.Errorf("failed to decode response: %w", err)
		}
		return nil, &TwoFactorRequiredError{UserID: pending.UserID}

	default:
		return nil, parseErrorResponse(resp, body)
	}
}
