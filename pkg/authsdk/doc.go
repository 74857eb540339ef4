/*
Package authsdk is a Go client for the gatekeeper authentication service and
the home of the JSON types exchanged with it.

	client := authsdk.NewClient("http://localhost:8080")

	tokens, err := client.Login(ctx, "alice@example.com", "hunter2")
	var pending *authsdk.TwoFactorRequiredError
	if errors.As(err, &pending) {
		tokens, err = client.VerifyTwoFactor(ctx, pending.UserID, code)
	}

Error responses decode to *APIError and compare equal, via errors.Is, to the
predefined values such as ErrInvalidCredentials or ErrInvalidTOTPCode:

	if errors.Is(err, authsdk.ErrInvalidTOTPCode) {
		// ask for the code again
	}

Servers that run with the session policy require a bearer access token on
activate and disable:

	authed := client.WithAccessToken(tokens.AccessToken)
	activation, err := authed.ActivateTwoFactor(ctx, tokens.UserID)
*/
package authsdk
