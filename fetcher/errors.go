package fetcher

import (
	"errors"
	"fmt"

	"google.golang.org/api/googleapi"
)

const maxErrorBody = 200

var (
	ErrRateLimited     = errors.New("youtube api rate limited")
	ErrChannelNotFound = errors.New("channel not found")
)

var rateLimitReasons = map[string]bool{
	"quotaExceeded":         true,
	"rateLimitExceeded":     true,
	"dailyLimitExceeded":    true,
	"userRateLimitExceeded": true,
}

// UpstreamError is a failed YouTube Data API call. Status is 0 when no
// response was received.
type UpstreamError struct {
	Call        string
	Status      int
	Body        string
	RateLimited bool
	Err         error
}

func (e *UpstreamError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("%s failed: %v", e.Call, e.Err)
	}
	return fmt.Sprintf("%s failed with status %d: %s", e.Call, e.Status, e.Body)
}

func (e *UpstreamError) Unwrap() []error {
	if e.RateLimited {
		return []error{ErrRateLimited, e.Err}
	}
	return []error{e.Err}
}

func upstreamError(call string, err error) *UpstreamError {
	ue := &UpstreamError{
		Call: call,
		Err:  err,
	}

	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		ue.Body = truncate(err.Error())
		return ue
	}

	ue.Status = gerr.Code
	ue.Body = gerr.Body
	if ue.Body == "" {
		ue.Body = gerr.Message
	}
	ue.Body = truncate(ue.Body)

	switch gerr.Code {
	case 429:
		ue.RateLimited = true
	case 403:
		for _, item := range gerr.Errors {
			if rateLimitReasons[item.Reason] {
				ue.RateLimited = true
				break
			}
		}
	}

	return ue
}

func truncate(s string) string {
	r := []rune(s)
	if len(r) <= maxErrorBody {
		return s
	}
	return string(r[:maxErrorBody])
}
