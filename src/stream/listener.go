package stream

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"tweet-sentiment/src/metrics"
	"tweet-sentiment/src/tweets"
)

// statusEnhanceYourCalm is the legacy rate limit status of the streaming API
const statusEnhanceYourCalm = 420

// Listener receives stream messages. Returning false from either method stops the stream.
type Listener interface {
	OnData(raw []byte) bool
	OnError(status int) bool
}

// Sink receives every decoded, non-duplicate tweet
type Sink interface {
	Write(t tweets.Tweet) error
}

// TwitterListener echoes each message to Out and hands the decoded tweet to its sinks
type TwitterListener struct {
	Out     io.Writer
	Sinks   []Sink
	Dedup   *Deduplicator // nil disables de-duplication
	Metrics *metrics.Metrics
}

// NewFileListener returns a listener that appends every tweet to filename
func NewFileListener(filename string, out io.Writer) *TwitterListener {
	return &TwitterListener{
		Out:   out,
		Sinks: []Sink{&FileSink{Path: filename}},
	}
}

// OnData decodes one message. Errors are logged and never stop the stream.
func (l *TwitterListener) OnData(raw []byte) bool {
	tw, err := DecodeTweet(raw)
	if err != nil {
		slog.Error("Error on_data", "error", err)
		l.Metrics.ObserveStreamMessage(metrics.ResultError)
		return true
	}

	if l.Dedup != nil && l.Dedup.Seen(tw.IDStr) {
		slog.Debug("Dropping duplicate tweet", "id", tw.IDStr)
		l.Metrics.ObserveStreamMessage(metrics.ResultDuplicate)
		return true
	}

	fmt.Fprintln(l.Out, string(raw))
	for _, sink := range l.Sinks {
		if err := sink.Write(tw); err != nil {
			slog.Error("Error on_data", "id", tw.IDStr, "error", err)
			l.Metrics.ObserveStreamMessage(metrics.ResultError)
			return true
		}
	}
	l.Metrics.ObserveStreamMessage(metrics.ResultWritten)
	return true
}

// OnError stops the stream on rate limiting and prints every other status
func (l *TwitterListener) OnError(status int) bool {
	l.Metrics.ObserveStreamError(strconv.Itoa(status))
	if status == statusEnhanceYourCalm || status == http.StatusTooManyRequests {
		slog.Warn("Stream rate limited, stopping", "status", status)
		return false
	}
	fmt.Fprintln(l.Out, status)
	return true
}

type streamTweet struct {
	ID            string `json:"id"`
	IDStr         string `json:"id_str"`
	CreatedAt     string `json:"created_at"`
	Text          string `json:"text"`
	AuthorID      string `json:"author_id"`
	PublicMetrics struct {
		Likes    int `json:"like_count"`
		Retweets int `json:"retweet_count"`
	} `json:"public_metrics"`
}

type streamEnvelope struct {
	Data *streamTweet `json:"data"`
	streamTweet
}

// DecodeTweet parses a stream message. Both bare tweet objects and
// {"data": {...}} envelopes are accepted; id, created_at and text are required.
func DecodeTweet(raw []byte) (tweets.Tweet, error) {
	var env streamEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return tweets.Tweet{}, fmt.Errorf("decode stream message: %w", err)
	}
	st := env.streamTweet
	if env.Data != nil {
		st = *env.Data
	}

	id := st.ID
	if id == "" {
		id = st.IDStr
	}
	switch {
	case id == "":
		return tweets.Tweet{}, errors.New("stream message has no id")
	case st.CreatedAt == "":
		return tweets.Tweet{}, errors.New("stream message has no created_at")
	}

	createdAt, err := parseCreatedAt(st.CreatedAt)
	if err != nil {
		return tweets.Tweet{}, err
	}

	tw := tweets.Tweet{
		IDStr:        id,
		UserIDStr:    st.AuthorID,
		Text:         st.Text,
		LikeCount:    st.PublicMetrics.Likes,
		RetweetCount: st.PublicMetrics.Retweets,
	}
	tw.SetCreatedAt(createdAt)
	return tw, nil
}

func parseCreatedAt(s string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts, nil
	}
	ts, err := time.Parse(tweets.ClassicTimeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse created_at %q: %w", s, err)
	}
	return ts, nil
}
