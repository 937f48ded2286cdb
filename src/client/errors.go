package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/g8rswimmer/go-twitter/v2"

	"tweet-sentiment/src/retry"
)

// ErrNoTrendPlace is returned when no trend location is near the geocoded point
var ErrNoTrendPlace = errors.New("no trend location near point")

// ErrUserNotFound is returned when the configured user cannot be resolved
var ErrUserNotFound = errors.New("twitter user not found")

// APIError is a non-2xx response from an endpoint we call directly
type APIError struct {
	Endpoint   string
	StatusCode int
	Status     string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Endpoint, e.Status)
}

// StatusCode extracts the HTTP status from an API error, or 0 if err is not one
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	var twErr *twitter.ErrorResponse
	if errors.As(err, &twErr) {
		return twErr.StatusCode
	}
	// non-JSON error bodies (HTML rate limit pages, XML 404s)
	var httpErr *twitter.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode
	}
	return 0
}

// Classify maps API errors onto retry actions: 429 waits for the rate limit
// window, 5xx and transport errors retry, every other status is permanent.
func Classify(err error) retry.Action {
	status := StatusCode(err)
	switch {
	case status == http.StatusTooManyRequests:
		return retry.After
	case status >= 500:
		return retry.Retry
	case status == 0:
		var syntaxErr *json.SyntaxError
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
			return retry.Stop
		}
		if errors.Is(err, ErrUserNotFound) || errors.Is(err, ErrNoTrendPlace) ||
			errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return retry.Stop
		}
		return retry.Retry
	default:
		return retry.Stop
	}
}
