package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"tweet-sentiment/src/analyzer"
	"tweet-sentiment/src/auth"
	"tweet-sentiment/src/client"
	"tweet-sentiment/src/filter"
	"tweet-sentiment/src/geocode"
	"tweet-sentiment/src/metrics"
	"tweet-sentiment/src/pipeline"
	"tweet-sentiment/src/stream"
)

const defaultConfigPath = "config.yaml"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// app is the state shared by every subcommand, built in PersistentPreRunE
type app struct {
	configPath string
	envFile    string

	cfg      *Config
	logFile  io.Closer
	registry *prometheus.Registry
	metrics  *metrics.Metrics
}

func rootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:          "tweet-sentiment",
		Short:        "Fetch, stream and score tweets",
		Long:         "Retrieves timelines, trends and filtered streams from the Twitter API and scores tweet sentiment.",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd.Flags().Changed("config"))
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.close()
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", defaultConfigPath, "Path to YAML config file")
	root.PersistentFlags().StringVar(&a.envFile, "env-file", ".env", "Path to .env file with TWITTER_* credentials")

	root.AddCommand(
		timelineCmd(a),
		homeCmd(a),
		friendsCmd(a),
		trendsCmd(a),
		streamCmd(a),
		streamUsersCmd(a),
		consumeCmd(a),
		analyzeCmd(a),
		countsCmd(a),
	)
	return root
}

// init loads the config and installs the logger. A missing default config file
// falls back to the built-in defaults; an explicit --config must exist.
func (a *app) init(explicitConfig bool) error {
	cfg, err := loadConfig(a.configPath)
	switch {
	case err == nil:
	case errors.Is(err, os.ErrNotExist) && !explicitConfig:
		cfg = defaultConfig()
	default:
		return fmt.Errorf("failed to load config: %w", err)
	}
	a.cfg = cfg

	logger, logFile, err := setupLogger(cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}
	slog.SetDefault(logger)
	a.logFile = logFile

	a.registry = metrics.NewRegistry()
	a.metrics = metrics.New(a.registry)
	return nil
}

func (a *app) close() error {
	if a.logFile == nil {
		return nil
	}
	return a.logFile.Close()
}

// twitterClient authenticates and builds the API client
func (a *app) twitterClient(ctx context.Context, user string) (*client.TwitterClient, error) {
	creds, err := auth.LoadCredentials(a.envFile)
	if err != nil {
		return nil, err
	}
	httpClient, err := auth.NewAuthenticator(creds).AuthenticateTwitterApp(ctx)
	if err != nil {
		return nil, err
	}
	if user == "" {
		user = a.cfg.TwitterUser
	}
	return client.New(httpClient, client.Options{
		Host:              a.cfg.APIHost,
		TwitterUser:       user,
		RequestsPerWindow: a.cfg.RateLimit.Requests,
		Window:            a.cfg.RateLimit.window(),
		Retry:             a.cfg.Retry.policy(),
		Geocoder:          geocode.NewNominatim(a.cfg.Geocoder.BaseURL, a.cfg.Geocoder.UserAgent),
		Metrics:           a.metrics,
	}), nil
}

// streamSource builds the filtered stream source. The stream takes the
// app-only bearer token, not the user context the other commands sign with.
func (a *app) streamSource() (*stream.TwitterSource, error) {
	creds, err := auth.LoadCredentials(a.envFile)
	if err != nil {
		return nil, err
	}
	authorizer, err := auth.NewAuthenticator(creds).AppOnlyAuthorizer()
	if err != nil {
		return nil, err
	}
	return stream.NewTwitterSource(a.cfg.APIHost, authorizer, &http.Client{}), nil
}

// analyzer builds a TweetAnalyzer with the configured stop words and the saved token counts
func (a *app) analyzer() (*analyzer.TweetAnalyzer, error) {
	wf := filter.NewWordFilter()
	if a.cfg.Filter.Enabled {
		wf = filter.NewDefaultWordFilter()
		if a.cfg.Filter.FilterFile != "" {
			if err := wf.LoadFromFile(a.cfg.Filter.FilterFile); err != nil {
				return nil, err
			}
			slog.Info("Loaded word filter", "file", a.cfg.Filter.FilterFile, "words", wf.GetFilteredCount())
		}
	}

	counter := pipeline.NewTokenCounter()
	if a.cfg.CountsFile != "" {
		err := counter.LoadFromFile(a.cfg.CountsFile)
		switch {
		case err == nil:
			slog.Info("Loaded token counts", "file", a.cfg.CountsFile, "distinct", counter.Distinct())
		case errors.Is(err, os.ErrNotExist):
		default:
			return nil, fmt.Errorf("load token counts: %w", err)
		}
	}

	return analyzer.New(analyzer.Options{
		Filter:  wf,
		Counter: counter,
		Metrics: a.metrics,
	}), nil
}

// saveCounts persists the analyzer's token counts when counts_file is set
func (a *app) saveCounts(an *analyzer.TweetAnalyzer) error {
	if a.cfg.CountsFile == "" {
		return nil
	}
	if err := an.Counter().SaveToFile(a.cfg.CountsFile); err != nil {
		return fmt.Errorf("save token counts: %w", err)
	}
	slog.Info("Saved token counts", "file", a.cfg.CountsFile, "total", an.Counter().GetTotalTokens())
	return nil
}
