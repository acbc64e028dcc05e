// Package net provides the HTTP clients used to talk to GitHub.
package net

import (
	"context"
	"net/http"
	"time"

	"golang.org/x/oauth2"
)

const clientTimeout = 30 * time.Second

// GetOAuthClient returns an HTTP client that sends the given token on
// every request.
func GetOAuthClient(ctx context.Context, token string) *http.Client {
	ts := oauth2.StaticTokenSource(
		&oauth2.Token{
			TokenType:   "token",
			AccessToken: token,
		},
	)
	return oauth2.NewClient(ctx, ts)
}

// GetHTTPClient returns a plain HTTP client with a sane timeout.
func GetHTTPClient() *http.Client {
	return &http.Client{
		Timeout: clientTimeout,
	}
}
