package client

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/g8rswimmer/go-twitter/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tweet-sentiment/src/retry"
)

// pagedSource serves ints in pages, recording the sizes requested
type pagedSource struct {
	total     int
	requested []int
	failFirst int
	failErr   error
}

func (s *pagedSource) fetch(_ context.Context, token string, max int) (Page[int], error) {
	s.requested = append(s.requested, max)
	if s.failFirst > 0 {
		s.failFirst--
		return Page[int]{}, s.failErr
	}
	start := 0
	if token != "" {
		fmt.Sscanf(token, "%d", &start)
	}
	var items []int
	for i := start; i < s.total && len(items) < max; i++ {
		items = append(items, i)
	}
	next := ""
	if start+len(items) < s.total {
		next = fmt.Sprintf("%d", start+len(items))
	}
	return Page[int]{Items: items, NextToken: next}, nil
}

func TestCursorItemsStopsAtN(t *testing.T) {
	src := &pagedSource{total: 250}
	c := NewCursor(src.fetch, CursorOptions{Endpoint: "test", MaxPageSize: 100})

	items, err := c.Items(context.Background(), 120)
	require.NoError(t, err)
	assert.Len(t, items, 120)
	assert.Equal(t, 119, items[119])
	assert.Equal(t, []int{100, 20}, src.requested)
}

func TestCursorItemsAllPages(t *testing.T) {
	src := &pagedSource{total: 250}
	c := NewCursor(src.fetch, CursorOptions{Endpoint: "test", MaxPageSize: 100})

	items, err := c.Items(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, items, 250)
	assert.Len(t, src.requested, 3)
}

func TestCursorRespectsMinPageSize(t *testing.T) {
	src := &pagedSource{total: 50}
	c := NewCursor(src.fetch, CursorOptions{Endpoint: "test", MinPageSize: 5, MaxPageSize: 100})

	items, err := c.Items(context.Background(), 2)
	require.NoError(t, err)
	assert.Len(t, items, 2, "extra items from the minimum page must be trimmed")
	assert.Equal(t, []int{5}, src.requested)
}

func TestCursorRetriesTransientErrors(t *testing.T) {
	src := &pagedSource{total: 10, failFirst: 1, failErr: &APIError{Endpoint: "test", StatusCode: 503, Status: "503 Service Unavailable"}}
	c := NewCursor(src.fetch, CursorOptions{
		Endpoint: "test",
		Retry:    retry.Policy{MaxAttempts: 2, InitialBackoff: time.Millisecond},
	})

	items, err := c.Items(context.Background(), 10)
	require.NoError(t, err)
	assert.Len(t, items, 10)
}

func TestCursorStopsOnPermanentError(t *testing.T) {
	src := &pagedSource{total: 10, failFirst: 1, failErr: &APIError{Endpoint: "test", StatusCode: 401, Status: "401 Unauthorized"}}
	c := NewCursor(src.fetch, CursorOptions{
		Endpoint: "test",
		Retry:    retry.Policy{MaxAttempts: 3, InitialBackoff: time.Millisecond},
	})

	_, err := c.Items(context.Background(), 10)
	require.Error(t, err)
	assert.Equal(t, 401, StatusCode(err))
	assert.Len(t, src.requested, 1)
}

func TestCursorCountsRequests(t *testing.T) {
	src := &pagedSource{total: 30}
	var calls []string
	c := NewCursor(src.fetch, CursorOptions{
		Endpoint:    "following",
		MaxPageSize: 10,
		OnRequest:   func(endpoint string) { calls = append(calls, endpoint) },
	})

	_, err := c.Items(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"following", "following", "following"}, calls)
}

func TestClassify(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want retry.Action
	}{
		{"rate limited", &APIError{StatusCode: 429}, retry.After},
		{"server error", &APIError{StatusCode: 502}, retry.Retry},
		{"unauthorized", &APIError{StatusCode: 401}, retry.Stop},
		{"transport", errors.New("connection reset"), retry.Retry},
		{"cancelled", fmt.Errorf("wrapped: %w", context.Canceled), retry.Stop},
		{"unknown user", ErrUserNotFound, retry.Stop},
		{"sdk rate limited", &twitter.ErrorResponse{StatusCode: 429}, retry.After},
		{"sdk non-json rate limited", &twitter.HTTPError{StatusCode: 429, Status: "429 Too Many Requests"}, retry.After},
		{"sdk non-json server error", fmt.Errorf("stream: %w", &twitter.HTTPError{StatusCode: 503}), retry.Retry},
		{"sdk non-json not found", &twitter.HTTPError{StatusCode: 404}, retry.Stop},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Classify(tc.err))
		})
	}
}

func TestStatusCodeHTTPError(t *testing.T) {
	assert.Equal(t, 420, StatusCode(fmt.Errorf("connect: %w", &twitter.HTTPError{StatusCode: 420})))
	assert.Equal(t, 0, StatusCode(errors.New("plain")))
}
