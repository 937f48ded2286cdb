package client

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/g8rswimmer/go-twitter/v2"
	"golang.org/x/time/rate"

	"tweet-sentiment/src/geocode"
	"tweet-sentiment/src/metrics"
	"tweet-sentiment/src/retry"
	"tweet-sentiment/src/tweets"
)

// DefaultHost is the production API host
const DefaultHost = "https://api.twitter.com"

// Options configures a TwitterClient
type Options struct {
	Host              string
	TwitterUser       string // numeric id or username; empty means the authenticated user
	RequestsPerWindow int
	Window            time.Duration
	Retry             retry.Policy
	Geocoder          geocode.Geocoder
	Metrics           *metrics.Metrics
}

// TwitterClient wraps the v2 API client for the configured user
type TwitterClient struct {
	api     *twitter.Client
	http    *http.Client
	host    string
	user    string
	limiter *rate.Limiter
	retry   retry.Policy
	geo     geocode.Geocoder
	metrics *metrics.Metrics

	userMu sync.Mutex
	userID string
}

// authorizer is a no-op: the oauth1 http.Client signs requests itself
type authorizer struct{}

func (authorizer) Add(*http.Request) {}

// New creates a TwitterClient on top of an already-signed http.Client
func New(httpClient *http.Client, opts Options) *TwitterClient {
	if opts.Host == "" {
		opts.Host = DefaultHost
	}
	opts.Host = strings.TrimRight(opts.Host, "/")

	limiter := rate.NewLimiter(rate.Inf, 1)
	if opts.RequestsPerWindow > 0 && opts.Window > 0 {
		limiter = rate.NewLimiter(rate.Every(opts.Window/time.Duration(opts.RequestsPerWindow)), opts.RequestsPerWindow)
	}

	return &TwitterClient{
		api: &twitter.Client{
			Authorizer: authorizer{},
			Client:     httpClient,
			Host:       opts.Host,
		},
		http:    httpClient,
		host:    opts.Host,
		user:    opts.TwitterUser,
		limiter: limiter,
		retry:   opts.Retry,
		geo:     opts.Geocoder,
		metrics: opts.Metrics,
	}
}

// API returns the underlying v2 client for calls this wrapper does not cover
func (c *TwitterClient) API() *twitter.Client {
	return c.api
}

var tweetFields = []twitter.TweetField{
	twitter.TweetFieldCreatedAt,
	twitter.TweetFieldAuthorID,
	twitter.TweetFieldPublicMetrics,
}

// GetUserTimelineTweets returns up to n of the user's most recent tweets
func (c *TwitterClient) GetUserTimelineTweets(ctx context.Context, n int) ([]tweets.Tweet, error) {
	userID, err := c.resolveUserID(ctx)
	if err != nil {
		return nil, err
	}
	cursor := NewCursor(func(ctx context.Context, token string, max int) (Page[tweets.Tweet], error) {
		resp, err := c.api.UserTweetTimeline(ctx, userID, twitter.UserTweetTimelineOpts{
			TweetFields:     tweetFields,
			MaxResults:      max,
			PaginationToken: token,
		})
		if err != nil {
			return Page[tweets.Tweet]{}, err
		}
		page := Page[tweets.Tweet]{}
		if resp.Raw != nil {
			page.Items = convertTweets(resp.Raw.Tweets)
		}
		if resp.Meta != nil {
			page.NextToken = resp.Meta.NextToken
		}
		return page, nil
	}, c.cursorOptions("user_timeline", 5, 100))
	return cursor.Items(ctx, n)
}

// GetHomeTimelineTweets returns up to n tweets from the user's reverse-chronological home timeline
func (c *TwitterClient) GetHomeTimelineTweets(ctx context.Context, n int) ([]tweets.Tweet, error) {
	userID, err := c.resolveUserID(ctx)
	if err != nil {
		return nil, err
	}
	cursor := NewCursor(func(ctx context.Context, token string, max int) (Page[tweets.Tweet], error) {
		resp, err := c.api.UserTweetReverseChronologicalTimeline(ctx, userID, twitter.UserTweetReverseChronologicalTimelineOpts{
			TweetFields:     tweetFields,
			MaxResults:      max,
			PaginationToken: token,
		})
		if err != nil {
			return Page[tweets.Tweet]{}, err
		}
		page := Page[tweets.Tweet]{}
		if resp.Raw != nil {
			page.Items = convertTweets(resp.Raw.Tweets)
		}
		if resp.Meta != nil {
			page.NextToken = resp.Meta.NextToken
		}
		return page, nil
	}, c.cursorOptions("home_timeline", 1, 100))
	return cursor.Items(ctx, n)
}

// GetFriendList returns up to n accounts the user follows
func (c *TwitterClient) GetFriendList(ctx context.Context, n int) ([]tweets.User, error) {
	userID, err := c.resolveUserID(ctx)
	if err != nil {
		return nil, err
	}
	cursor := NewCursor(func(ctx context.Context, token string, max int) (Page[tweets.User], error) {
		resp, err := c.api.UserFollowingLookup(ctx, userID, twitter.UserFollowingLookupOpts{
			MaxResults:      max,
			PaginationToken: token,
		})
		if err != nil {
			return Page[tweets.User]{}, err
		}
		page := Page[tweets.User]{}
		if resp.Raw != nil {
			page.Items = convertUsers(resp.Raw.Users)
		}
		if resp.Meta != nil {
			page.NextToken = resp.Meta.NextToken
		}
		return page, nil
	}, c.cursorOptions("following", 1, 1000))
	return cursor.Items(ctx, n)
}

func (c *TwitterClient) cursorOptions(endpoint string, minPage, maxPage int) CursorOptions {
	return CursorOptions{
		Endpoint:    endpoint,
		MinPageSize: minPage,
		MaxPageSize: maxPage,
		Limiter:     c.limiter,
		Retry:       c.retry,
		OnRequest:   c.metrics.ObserveAPIRequest,
	}
}

// resolveUserID returns the numeric id of the configured user, looking it up once
func (c *TwitterClient) resolveUserID(ctx context.Context) (string, error) {
	c.userMu.Lock()
	defer c.userMu.Unlock()

	if c.userID != "" {
		return c.userID, nil
	}
	if isNumeric(c.user) {
		c.userID = c.user
		return c.userID, nil
	}

	id, err := retry.Do(ctx, c.retry, Classify, func() (string, error) {
		var (
			resp *twitter.UserLookupResponse
			err  error
		)
		if c.user == "" {
			c.metrics.ObserveAPIRequest("users_me")
			resp, err = c.api.AuthUserLookup(ctx, twitter.UserLookupOpts{})
		} else {
			c.metrics.ObserveAPIRequest("users_by_username")
			resp, err = c.api.UserNameLookup(ctx, []string{strings.TrimPrefix(c.user, "@")}, twitter.UserLookupOpts{})
		}
		if err != nil {
			return "", err
		}
		if resp.Raw == nil || len(resp.Raw.Users) == 0 || resp.Raw.Users[0] == nil {
			return "", fmt.Errorf("%w: %q", ErrUserNotFound, c.user)
		}
		return resp.Raw.Users[0].ID, nil
	})
	if err != nil {
		return "", fmt.Errorf("resolve user %q: %w", c.user, err)
	}

	slog.Info("Resolved twitter user", "user", c.user, "id", id)
	c.userID = id
	return id, nil
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
