// Package oauth exchanges an authorization code for a provider access token.
// The engine treats the token as opaque; it only passes it on to the worker
// that talks to the provider.
package oauth

import (
	"fmt"

	"github.com/go-resty/resty/v2"
)

type TokenClient struct {
	client       *resty.Client
	tokenURL     string
	clientID     string
	clientSecret string
	redirectURI  string
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

type tokenError struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

func NewTokenClient(tokenURL, clientID, clientSecret, redirectURI string) *TokenClient {
	return &TokenClient{
		client:       resty.New(),
		tokenURL:     tokenURL,
		clientID:     clientID,
		clientSecret: clientSecret,
		redirectURI:  redirectURI,
	}
}

// ExchangeCode runs the authorization-code grant and returns the access
// token.
func (c *TokenClient) ExchangeCode(code string) (string, error) {
	var (
		token    tokenResponse
		tokenErr tokenError
	)

	resp, err := c.client.R().
		SetFormData(map[string]string{
			"grant_type":    "authorization_code",
			"code":          code,
			"client_id":     c.clientID,
			"client_secret": c.clientSecret,
			"redirect_uri":  c.redirectURI,
		}).
		SetResult(&token).
		SetError(&tokenErr).
		Post(c.tokenURL)

	if err != nil {
		return "", err
	}

	if resp.IsError() {
		return "", fmt.Errorf("token exchange failed (%d): %s %s", resp.StatusCode(), tokenErr.Error, tokenErr.ErrorDescription)
	}

	if token.AccessToken == "" {
		return "", fmt.Errorf("token exchange returned no access_token")
	}

	return token.AccessToken, nil
}
