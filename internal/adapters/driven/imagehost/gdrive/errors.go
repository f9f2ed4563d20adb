package gdrive

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"google.golang.org/api/googleapi"
)

// Drive API errors.
var (
	// ErrUnauthorized indicates invalid or expired credentials.
	ErrUnauthorized = errors.New("gdrive: unauthorised (invalid credentials)")

	// ErrForbidden indicates insufficient permissions on the folder.
	ErrForbidden = errors.New("gdrive: forbidden (insufficient permissions)")

	// ErrRateLimited indicates the API rate limit was exceeded.
	ErrRateLimited = errors.New("gdrive: rate limit exceeded")
)

// classify maps a Drive API error onto the package errors. The second
// return value is the server-requested backoff, if any.
func classify(err error) (error, time.Duration) {
	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		return err, 0
	}
	switch gerr.Code {
	case http.StatusUnauthorized:
		return errors.Join(ErrUnauthorized, err), 0
	case http.StatusForbidden:
		for _, item := range gerr.Errors {
			if item.Reason == "rateLimitExceeded" || item.Reason == "userRateLimitExceeded" {
				return errors.Join(ErrRateLimited, err), retryAfter(gerr.Header)
			}
		}
		return errors.Join(ErrForbidden, err), 0
	case http.StatusTooManyRequests:
		return errors.Join(ErrRateLimited, err), retryAfter(gerr.Header)
	default:
		return err, 0
	}
}

func retryAfter(h http.Header) time.Duration {
	if h == nil {
		return 0
	}
	secs, err := strconv.Atoi(h.Get("Retry-After"))
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}

func isRateLimited(err error) bool {
	return errors.Is(err, ErrRateLimited)
}
