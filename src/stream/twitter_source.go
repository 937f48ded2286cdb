package stream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/g8rswimmer/go-twitter/v2"

	"tweet-sentiment/src/client"
)

const (
	// DefaultLivenessInterval is how often the connection is checked for a stall
	DefaultLivenessInterval = 5 * time.Second
	// DefaultStallTimeout is the longest silence tolerated; the platform sends a
	// keep-alive every 20 seconds
	DefaultStallTimeout = 30 * time.Second
	// drainGrace bounds how long frames read just before EOF are waited for
	drainGrace = 100 * time.Millisecond
)

var errConnectionLost = errors.New("stream connection lost")

// TwitterSource adapts the v2 filtered stream of a go-twitter client.
// The stream and its rules endpoints take app-only (bearer) auth.
type TwitterSource struct {
	api *twitter.Client
	// Buffer is the event channel capacity
	Buffer int
	// LivenessInterval is how often the keep-alive state is checked
	LivenessInterval time.Duration
	// StallTimeout is how long the body may go without data before the stream is dropped
	StallTimeout time.Duration
}

// NewTwitterSource returns a Source talking to host. authorizer signs every
// request; the transport of httpClient, if any, carries them. The stream has
// no overall request timeout, so httpClient.Timeout is ignored.
func NewTwitterSource(host string, authorizer twitter.Authorizer, httpClient *http.Client) *TwitterSource {
	if host == "" {
		host = client.DefaultHost
	}
	host = strings.TrimRight(host, "/")
	base := http.DefaultTransport
	if httpClient != nil && httpClient.Transport != nil {
		base = httpClient.Transport
	}
	return &TwitterSource{
		api: &twitter.Client{
			Authorizer: authorizer,
			Client:     &http.Client{Transport: &watchTransport{base: base}},
			Host:       host,
		},
		Buffer:           64,
		LivenessInterval: DefaultLivenessInterval,
		StallTimeout:     DefaultStallTimeout,
	}
}

// SetRules deletes every existing rule and adds rules
func (s *TwitterSource) SetRules(ctx context.Context, rules []string) error {
	existing, err := s.api.TweetSearchStreamRules(ctx, []twitter.TweetSearchStreamRuleID{})
	if err != nil {
		return fmt.Errorf("list rules: %w", err)
	}
	if len(existing.Rules) > 0 {
		ids := make([]twitter.TweetSearchStreamRuleID, 0, len(existing.Rules))
		for _, r := range existing.Rules {
			ids = append(ids, r.ID)
		}
		if _, err := s.api.TweetSearchStreamDeleteRuleByID(ctx, ids, false); err != nil {
			return fmt.Errorf("delete %d rules: %w", len(ids), err)
		}
		slog.Info("Deleted stream rules", "count", len(ids))
	}

	add := make([]twitter.TweetSearchStreamRule, 0, len(rules))
	for _, r := range rules {
		add = append(add, twitter.TweetSearchStreamRule{Value: r})
	}
	if _, err := s.api.TweetSearchStreamAddRule(ctx, add, false); err != nil {
		return fmt.Errorf("add %d rules: %w", len(add), err)
	}
	return nil
}

// Open connects the filtered stream. Every tweet is re-encoded as a JSON
// object so listeners see the same raw shape regardless of the SDK.
// The event channel carries an Err when the body ends or keep-alives stop.
func (s *TwitterSource) Open(ctx context.Context) (<-chan Event, func(), error) {
	watch := newBodyWatch()
	connCtx, cancel := context.WithCancel(context.WithValue(ctx, watchKey{}, watch))
	ts, err := s.api.TweetSearchStream(connCtx, twitter.TweetSearchStreamOpts{
		TweetFields: []twitter.TweetField{
			twitter.TweetFieldCreatedAt,
			twitter.TweetFieldAuthorID,
			twitter.TweetFieldPublicMetrics,
		},
	})
	if err != nil {
		cancel()
		return nil, nil, err
	}

	interval := s.LivenessInterval
	if interval <= 0 {
		interval = DefaultLivenessInterval
	}
	stall := s.StallTimeout
	if stall <= 0 {
		stall = DefaultStallTimeout
	}

	events := make(chan Event, s.Buffer)
	done := make(chan struct{})
	go func() {
		defer close(events)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		send := func(ev Event) bool {
			select {
			case events <- ev:
				return true
			case <-done:
				return false
			case <-ctx.Done():
				return false
			}
		}
		forward := func(msg *twitter.TweetMessage) bool {
			if msg == nil || msg.Raw == nil {
				return true
			}
			for _, tw := range msg.Raw.Tweets {
				raw, err := json.Marshal(tw)
				if err != nil {
					slog.Error("Error on_data", "error", err)
					continue
				}
				if !send(Event{Data: raw}) {
					return false
				}
			}
			return true
		}
		// frames parsed before the final read may still be in flight
		drain := func() bool {
			grace := time.NewTimer(drainGrace)
			defer grace.Stop()
			for {
				select {
				case msg, ok := <-ts.Tweets():
					if !ok {
						return true
					}
					if !forward(msg) {
						return false
					}
				case <-grace.C:
					return true
				case <-done:
					return false
				}
			}
		}

		for {
			select {
			case <-done:
				return
			case <-ctx.Done():
				return
			case <-watch.ended:
				if drain() {
					send(Event{Err: fmt.Errorf("%w: response body ended", errConnectionLost)})
				}
				return
			case <-ticker.C:
				// the SDK only updates Connection between frames, so the
				// body's own read time catches a reader blocked on silence
				if !ts.Connection() || watch.idle() > stall {
					send(Event{Err: fmt.Errorf("%w: no keep-alive within %s", errConnectionLost, stall)})
					return
				}
			case msg, ok := <-ts.Tweets():
				if !ok {
					return
				}
				if !forward(msg) {
					return
				}
			case sm, ok := <-ts.SystemMessages():
				if !ok {
					return
				}
				for typ, m := range sm {
					slog.Info("Stream system message", "type", typ, "message", m.Message)
				}
			case de := <-ts.DisconnectionError():
				send(Event{Err: fmt.Errorf("disconnection: %v", de)})
				return
			case err, ok := <-ts.Err():
				if !ok {
					return
				}
				// a single malformed frame
				slog.Error("Error on_data", "error", err)
			}
		}
	}()

	var once sync.Once
	closeConn := func() {
		once.Do(func() {
			close(done)
			// unblocks the SDK reader so Close can be received
			cancel()
			ts.Close()
		})
	}
	return events, closeConn, nil
}

type watchKey struct{}

// bodyWatch tracks one stream response body: when it last delivered data and
// whether it has ended.
type bodyWatch struct {
	ended    chan struct{}
	once     sync.Once
	lastRead atomic.Int64
}

func newBodyWatch() *bodyWatch {
	w := &bodyWatch{ended: make(chan struct{})}
	w.lastRead.Store(time.Now().UnixNano())
	return w
}

func (w *bodyWatch) idle() time.Duration {
	return time.Since(time.Unix(0, w.lastRead.Load()))
}

// watchTransport wraps response bodies of requests whose context carries a
// bodyWatch.
type watchTransport struct {
	base http.RoundTripper
}

func (t *watchTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	if w, ok := req.Context().Value(watchKey{}).(*bodyWatch); ok {
		resp.Body = &watchedBody{ReadCloser: resp.Body, watch: w}
	}
	return resp, nil
}

type watchedBody struct {
	io.ReadCloser
	watch *bodyWatch
}

func (b *watchedBody) Read(p []byte) (int, error) {
	n, err := b.ReadCloser.Read(p)
	if n > 0 {
		b.watch.lastRead.Store(time.Now().UnixNano())
	}
	if err != nil {
		b.watch.once.Do(func() { close(b.watch.ended) })
	}
	return n, err
}
