package stream

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"tweet-sentiment/src/client"
	"tweet-sentiment/src/retry"
)

// Event is one item from a stream connection: a raw message, an error status,
// or a disconnect cause.
type Event struct {
	Data   []byte
	Status int
	Err    error
}

// Source is a filtered stream connection
type Source interface {
	// SetRules replaces the stream's rules with rules
	SetRules(ctx context.Context, rules []string) error
	// Open connects and returns the event channel and a func that closes the connection
	Open(ctx context.Context) (<-chan Event, func(), error)
}

var (
	errDisconnected = errors.New("stream disconnected")
	// errResume marks a disconnect after a healthy session; the retry budget starts over
	errResume = errors.New("stream disconnected after delivering data")
)

// Streamer connects a Source to a fresh Listener per call
type Streamer struct {
	Source Source
	Retry  retry.Policy
	// NewListener builds the listener for a fetched-tweets file; nil means NewFileListener to stdout
	NewListener func(filename string) Listener
}

// StreamTweets streams tweets carrying any of hashtags into filename
func (s *Streamer) StreamTweets(ctx context.Context, filename string, hashtags []string) error {
	rules, err := BuildRules(HashtagTerms(hashtags), MaxRuleLength)
	if err != nil {
		return fmt.Errorf("hashtag rules: %w", err)
	}
	return s.run(ctx, filename, rules)
}

// StreamUserTweets streams tweets posted by any of userIDs into filename
func (s *Streamer) StreamUserTweets(ctx context.Context, filename string, userIDs []string) error {
	rules, err := BuildRules(FromTerms(userIDs), MaxRuleLength)
	if err != nil {
		return fmt.Errorf("user rules: %w", err)
	}
	return s.run(ctx, filename, rules)
}

func (s *Streamer) run(ctx context.Context, filename string, rules []string) error {
	if err := s.Source.SetRules(ctx, rules); err != nil {
		return fmt.Errorf("set stream rules: %w", err)
	}
	slog.Info("Stream rules set", "rules", len(rules), "output", filename)

	l := s.listener(filename)
	for {
		err := retry.DoVoid(ctx, s.Retry, classifyStream, func() error {
			return s.pump(ctx, l)
		})
		if errors.Is(err, errResume) {
			slog.Info("Reconnecting stream")
			continue
		}
		return err
	}
}

func (s *Streamer) listener(filename string) Listener {
	if s.NewListener != nil {
		return s.NewListener(filename)
	}
	return NewFileListener(filename, os.Stdout)
}

// pump runs one connection. It returns nil when ctx ends or the listener stops the stream.
func (s *Streamer) pump(ctx context.Context, l Listener) error {
	events, closeConn, err := s.Source.Open(ctx)
	if err != nil {
		if status := client.StatusCode(err); status != 0 && !l.OnError(status) {
			return nil
		}
		return fmt.Errorf("connect stream: %w", err)
	}
	defer closeConn()

	delivered := false
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			switch {
			case !ok:
				return disconnect(delivered, nil)
			case ev.Err != nil:
				return disconnect(delivered, ev.Err)
			case ev.Status != 0:
				if !l.OnError(ev.Status) {
					return nil
				}
			default:
				delivered = true
				if !l.OnData(ev.Data) {
					return nil
				}
			}
		}
	}
}

func disconnect(delivered bool, cause error) error {
	slog.Warn("Stream disconnected", "delivered", delivered, "error", cause)
	if delivered {
		return errResume
	}
	if cause != nil {
		return fmt.Errorf("%w: %w", errDisconnected, cause)
	}
	return errDisconnected
}

func classifyStream(err error) retry.Action {
	switch {
	case errors.Is(err, errResume):
		return retry.Stop
	case errors.Is(err, errDisconnected):
		return retry.Retry
	}
	return client.Classify(err)
}
