package stream

import (
	"context"
	"fmt"
	"os"
	"time"

	"tweet-sentiment/src/tweets"
)

// FileSink appends FormatLine for each tweet to Path.
// The file is opened for every write so it can be rotated or removed while streaming.
type FileSink struct {
	Path string
}

func (s *FileSink) Write(t tweets.Tweet) error {
	f, err := os.OpenFile(s.Path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open %s: %w", s.Path, err)
	}
	if _, err := f.WriteString(tweets.FormatLine(t)); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", s.Path, err)
	}
	return f.Close()
}

// Publisher is the queue side of QueueSink; *mq.RabbitMQ satisfies it
type Publisher interface {
	Publish(ctx context.Context, body []byte) error
}

// QueueSink publishes each tweet as one CSV row
type QueueSink struct {
	Publisher Publisher
	Timeout   time.Duration // per publish; zero means 5s
}

func (s *QueueSink) Write(t tweets.Tweet) error {
	row, err := tweets.EncodeCSV(t)
	if err != nil {
		return fmt.Errorf("encode tweet %s: %w", t.IDStr, err)
	}
	timeout := s.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return s.Publisher.Publish(ctx, []byte(row))
}
