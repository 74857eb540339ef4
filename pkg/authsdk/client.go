package authsdk

import (
	"net/http"
	"strings"
	"time"
)

// Client talks to the gatekeeper authentication service.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client

	// AccessToken, when set, is sent as a bearer token. Servers running with
	// the session policy require it on activate and disable.
	AccessToken string
}

// NewClient creates a client for the service at baseURL.
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// WithAccessToken returns a copy of c that authenticates with token.
func (c *Client) WithAccessToken(token string) *Client {
	cp := *c
	cp.AccessToken = token
	return &cp
}
