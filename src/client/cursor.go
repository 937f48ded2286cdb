package client

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"tweet-sentiment/src/retry"
)

// Page is one page of a paginated endpoint
type Page[T any] struct {
	Items     []T
	NextToken string
}

// PageFunc fetches the page identified by token; an empty token is the first page.
// max is the number of items requested for this page.
type PageFunc[T any] func(ctx context.Context, token string, max int) (Page[T], error)

// CursorOptions configures paging for one endpoint
type CursorOptions struct {
	Endpoint    string
	MinPageSize int // smallest max_results the endpoint accepts
	MaxPageSize int // largest max_results the endpoint accepts
	Limiter     *rate.Limiter
	Retry       retry.Policy
	OnRequest   func(endpoint string)
}

// Cursor walks a paginated endpoint page by page
type Cursor[T any] struct {
	fetch PageFunc[T]
	opts  CursorOptions
}

// NewCursor creates a cursor over fetch
func NewCursor[T any](fetch PageFunc[T], opts CursorOptions) *Cursor[T] {
	if opts.MaxPageSize <= 0 {
		opts.MaxPageSize = 100
	}
	if opts.MinPageSize <= 0 {
		opts.MinPageSize = 1
	}
	if opts.MinPageSize > opts.MaxPageSize {
		opts.MinPageSize = opts.MaxPageSize
	}
	return &Cursor[T]{fetch: fetch, opts: opts}
}

// Items collects up to n items, following next tokens until the endpoint runs out.
// n <= 0 collects every page.
func (c *Cursor[T]) Items(ctx context.Context, n int) ([]T, error) {
	var items []T
	err := c.Pages(ctx, func(p Page[T]) bool {
		items = append(items, p.Items...)
		return n <= 0 || len(items) < n
	}, n)
	if n > 0 && len(items) > n {
		items = items[:n]
	}
	return items, err
}

// Pages calls fn for each page until fn returns false or there are no more pages.
// limit sizes the page requests; pass 0 for full pages.
func (c *Cursor[T]) Pages(ctx context.Context, fn func(Page[T]) bool, limit int) error {
	token := ""
	seen := 0
	for pageNum := 1; ; pageNum++ {
		size := c.pageSize(limit, seen)

		if c.opts.Limiter != nil {
			if err := c.opts.Limiter.Wait(ctx); err != nil {
				return fmt.Errorf("%s: waiting for rate limiter: %w", c.opts.Endpoint, err)
			}
		}

		page, err := retry.Do(ctx, c.policy(), Classify, func() (Page[T], error) {
			if c.opts.OnRequest != nil {
				c.opts.OnRequest(c.opts.Endpoint)
			}
			return c.fetch(ctx, token, size)
		})
		if err != nil {
			return fmt.Errorf("%s page %d: %w", c.opts.Endpoint, pageNum, err)
		}

		seen += len(page.Items)
		slog.Debug("Fetched page", "endpoint", c.opts.Endpoint, "page", pageNum, "items", len(page.Items), "total", seen)

		if !fn(page) || page.NextToken == "" || len(page.Items) == 0 {
			return nil
		}
		token = page.NextToken
	}
}

func (c *Cursor[T]) pageSize(limit, seen int) int {
	size := c.opts.MaxPageSize
	if limit > 0 {
		if remaining := limit - seen; remaining < size {
			size = remaining
		}
	}
	if size < c.opts.MinPageSize {
		size = c.opts.MinPageSize
	}
	return size
}

func (c *Cursor[T]) policy() retry.Policy {
	p := c.opts.Retry
	if p.MaxAttempts == 0 {
		p.MaxAttempts = 1
	}
	if p.OnRetry == nil {
		endpoint := c.opts.Endpoint
		p.OnRetry = func(attempt int, err error, backoff time.Duration) {
			slog.Warn("Retrying request", "endpoint", endpoint, "attempt", attempt, "backoff", backoff, "error", err)
		}
	}
	return p
}
