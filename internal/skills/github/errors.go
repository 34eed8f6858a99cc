package github

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/google/go-github/v75/github"
)

var (
	// ErrNotFound is returned for 404 responses.
	ErrNotFound = errors.New("github: not found")
	// ErrRateLimited is returned for primary or secondary rate limit
	// responses and for any other 403.
	ErrRateLimited = errors.New("github: rate limit exceeded")
	// ErrMalformedContent is returned when a file exists but cannot be decoded.
	ErrMalformedContent = errors.New("github: malformed content")
)

// RateLimitHint is printed when the run aborts on ErrRateLimited.
const RateLimitHint = "Rate limit exceeded. Set GITHUB_TOKEN environment variable."

func classify(err error, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	var rle *github.RateLimitError
	var arle *github.AbuseRateLimitError
	if errors.As(err, &rle) || errors.As(err, &arle) {
		return fmt.Errorf("%s: %w: %v", msg, ErrRateLimited, err)
	}
	var er *github.ErrorResponse
	if errors.As(err, &er) && er.Response != nil {
		switch er.Response.StatusCode {
		case http.StatusNotFound:
			return fmt.Errorf("%s: %w", msg, ErrNotFound)
		case http.StatusForbidden, http.StatusTooManyRequests:
			return fmt.Errorf("%s: %w: %v", msg, ErrRateLimited, err)
		}
	}
	return fmt.Errorf("%s: %w", msg, err)
}
