// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/Kavirubc
// Created: 2026-03-05
// Last Modified: 2026-03-12

package github

import (
	"errors"
	"fmt"

	"github.com/google/go-github/v60/github"

	"github.com/similigh/bugport/internal/core/migrate"
)

// classify maps a go-github error onto the engine's failure kinds using
// typed checking rather than string matching:
//   - HTTP 404 becomes migrate.ErrNotFound (a control signal, not a failure).
//   - Rate-limit errors, HTTP 408/429/5xx, and transport-level failures
//     (timeouts, resets) become migrate.ErrTransient.
//   - Other API errors (401, 403, 422, ...) stay fatal as-is.
func classify(desc string, err error) error {
	if err == nil {
		return nil
	}

	var rateErr *github.RateLimitError
	if errors.As(err, &rateErr) {
		return fmt.Errorf("%s: %v: %w", desc, err, migrate.ErrTransient)
	}
	var abuseErr *github.AbuseRateLimitError
	if errors.As(err, &abuseErr) {
		return fmt.Errorf("%s: %v: %w", desc, err, migrate.ErrTransient)
	}

	var ghErr *github.ErrorResponse
	if errors.As(err, &ghErr) && ghErr.Response != nil {
		code := ghErr.Response.StatusCode
		switch {
		case code == 404:
			return fmt.Errorf("%s: %w", desc, migrate.ErrNotFound)
		case code == 408 || code == 429 || code >= 500:
			return fmt.Errorf("%s: %v: %w", desc, err, migrate.ErrTransient)
		default:
			return fmt.Errorf("%s: %w", desc, err)
		}
	}

	// No structured API response: a transport-level failure, worth retrying.
	return fmt.Errorf("%s: %v: %w", desc, err, migrate.ErrTransient)
}
