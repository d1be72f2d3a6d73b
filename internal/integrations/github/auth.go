// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/Kavirubc
// Created: 2026-03-04
// Last Modified: 2026-03-08

package github

import (
	"context"
	"net/http"

	"github.com/google/go-github/v60/github"
	"golang.org/x/oauth2"
)

// NewClient creates a GitHub client for the given repository using the
// provided token. If token is empty, it returns an unauthenticated client
// (good enough for read-only smoke tests, not for imports).
func NewClient(ctx context.Context, token, org, repo, lockReason string) *Client {
	var tc *http.Client

	if token != "" {
		ts := oauth2.StaticTokenSource(
			&oauth2.Token{AccessToken: token},
		)
		tc = oauth2.NewClient(ctx, ts)
	}

	client := github.NewClient(tc)

	return &Client{
		client:     client,
		org:        org,
		repo:       repo,
		lockReason: lockReason,
	}
}
