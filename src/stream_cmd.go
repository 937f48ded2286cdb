package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"tweet-sentiment/src/analyzer"
	"tweet-sentiment/src/metrics"
	"tweet-sentiment/src/mq"
	"tweet-sentiment/src/stream"
	"tweet-sentiment/src/tweets"
)

func streamCmd(a *app) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "stream HASHTAG...",
		Short: "Stream tweets carrying any of the hashtags into a file",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runStream(cmd, out, func(ctx context.Context, s *stream.Streamer, filename string) error {
				return s.StreamTweets(ctx, filename, args)
			})
		},
	}
	cmd.Flags().StringVar(&out, "out", "", "Fetched tweets file (default: output from config)")
	return cmd
}

func streamUsersCmd(a *app) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "stream-users USER_ID...",
		Short: "Stream tweets posted by any of the users into a file",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runStream(cmd, out, func(ctx context.Context, s *stream.Streamer, filename string) error {
				return s.StreamUserTweets(ctx, filename, args)
			})
		},
	}
	cmd.Flags().StringVar(&out, "out", "", "Fetched tweets file (default: output from config)")
	return cmd
}

func (a *app) runStream(cmd *cobra.Command, out string, run func(context.Context, *stream.Streamer, string) error) error {
	ctx := cmd.Context()
	if out == "" {
		out = a.cfg.Output
	}

	src, err := a.streamSource()
	if err != nil {
		return err
	}

	var publisher *mq.RabbitMQ
	if a.cfg.MQ.Enabled {
		publisher, err = mq.NewRabbitMQ(a.cfg.MQ)
		if err != nil {
			return err
		}
		defer publisher.Close()
	}

	stopMetrics := serveMetrics(a.cfg.Metrics.Listen, metrics.Handler(a.registry))
	defer stopMetrics()

	policy := a.cfg.Retry.policy()
	policy.OnRetry = func(attempt int, err error, backoff time.Duration) {
		slog.Warn("Reconnecting stream", "attempt", attempt, "backoff", backoff, "error", err)
	}

	s := &stream.Streamer{
		Source: src,
		Retry:  policy,
		NewListener: func(filename string) stream.Listener {
			l := stream.NewFileListener(filename, cmd.OutOrStdout())
			l.Metrics = a.metrics
			if a.cfg.Dedup.Enabled {
				l.Dedup = stream.NewDeduplicator(a.cfg.Dedup.ExpectedItems, a.cfg.Dedup.FalsePositiveRate)
			}
			if publisher != nil {
				l.Sinks = append(l.Sinks, &stream.QueueSink{Publisher: publisher})
			}
			return l
		},
	}

	slog.Info("Starting stream", "output", out, "terms", len(cmd.Flags().Args()), "mq", publisher != nil)
	err = run(ctx, s, out)
	if interrupted(ctx, err) {
		slog.Info("Stream stopped", "reason", ctx.Err())
		return nil
	}
	return err
}

func consumeCmd(a *app) *cobra.Command {
	var top int
	cmd := &cobra.Command{
		Use:   "consume",
		Short: "Score tweets read from the RabbitMQ queue",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			an, err := a.analyzer()
			if err != nil {
				return err
			}
			rmq, err := mq.NewRabbitMQ(a.cfg.MQ)
			if err != nil {
				return err
			}
			defer rmq.Close()
			if info, err := rmq.GetQueueInfo(); err != nil {
				slog.Warn("Queue info unavailable", "queue", a.cfg.MQ.Queue, "error", err)
			} else {
				slog.Info("Queue info", "queue", info.Name, "messages", info.Messages, "consumers", info.Consumers)
			}

			stopMetrics := serveMetrics(a.cfg.Metrics.Listen, metrics.Handler(a.registry))
			defer stopMetrics()

			c := &consumer{out: cmd.OutOrStdout(), analyzer: an}
			err = rmq.Consume(ctx, c.handle)
			c.finish(top)
			if serr := a.saveCounts(an); serr != nil {
				return serr
			}
			if interrupted(ctx, err) {
				return nil
			}
			return err
		},
	}
	cmd.Flags().IntVar(&top, "top", 10, "Most common words to print on exit (0 = none)")
	return cmd
}

// consumer scores each queued CSV row and prints "<id>\t<label>\t<text>"
type consumer struct {
	out      io.Writer
	analyzer *analyzer.TweetAnalyzer
	summary  analyzer.SentimentSummary
}

func (c *consumer) handle(body []byte) error {
	tw, err := tweets.DecodeCSV(string(body))
	if err != nil {
		return fmt.Errorf("parse queued tweet: %w", err)
	}
	label := c.analyzer.AnalyzeSentiment(tw.Text)
	c.summary.Add(label)
	c.analyzer.CountTokens([]tweets.Tweet{*tw})
	fmt.Fprintf(c.out, "%s\t%s\t%s\n", tw.IDStr, analyzer.LabelName(label), tw.Text)
	return nil
}

func (c *consumer) finish(top int) {
	printSummary(c.out, c.summary)
	if top <= 0 {
		return
	}
	printTopTokens(c.out, c.analyzer.TopTokens(top))
}

// serveMetrics serves /metrics on listen until the returned func is called; empty listen is a no-op
func serveMetrics(listen string, handler http.Handler) func() {
	if listen == "" {
		return func() {}
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", handler)
	srv := &http.Server{Addr: listen, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		slog.Info("Serving metrics", "addr", listen)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Metrics server failed", "error", err)
		}
	}()
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	}
}
