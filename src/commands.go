package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/spf13/cobra"

	"tweet-sentiment/src/analyzer"
	"tweet-sentiment/src/pipeline"
	"tweet-sentiment/src/tweets"
)

// reportOptions controls what timeline and home print after fetching
type reportOptions struct {
	count   int
	head    int
	top     int
	csvPath string
}

func (o *reportOptions) register(cmd *cobra.Command, defaultCount int) {
	cmd.Flags().IntVar(&o.count, "count", defaultCount, "Number of tweets to fetch (0 = all available)")
	cmd.Flags().IntVar(&o.head, "head", 10, "Rows of the data frame to print")
	cmd.Flags().IntVar(&o.top, "top", 10, "Most common words to print (0 = none)")
	cmd.Flags().StringVar(&o.csvPath, "csv", "", "Write the full data frame to this CSV file")
}

func timelineCmd(a *app) *cobra.Command {
	var (
		user string
		opts reportOptions
	)
	cmd := &cobra.Command{
		Use:   "timeline",
		Short: "Fetch a user's timeline and score its sentiment",
		RunE: func(cmd *cobra.Command, args []string) error {
			tc, err := a.twitterClient(cmd.Context(), user)
			if err != nil {
				return err
			}
			ts, err := tc.GetUserTimelineTweets(cmd.Context(), opts.count)
			if err != nil {
				return err
			}
			return a.report(cmd.OutOrStdout(), ts, opts)
		},
	}
	cmd.Flags().StringVar(&user, "user", "", "User id or username (default: twitter_user from config)")
	opts.register(cmd, 200)
	return cmd
}

func homeCmd(a *app) *cobra.Command {
	var opts reportOptions
	cmd := &cobra.Command{
		Use:   "home",
		Short: "Fetch the home timeline and score its sentiment",
		RunE: func(cmd *cobra.Command, args []string) error {
			tc, err := a.twitterClient(cmd.Context(), "")
			if err != nil {
				return err
			}
			ts, err := tc.GetHomeTimelineTweets(cmd.Context(), opts.count)
			if err != nil {
				return err
			}
			return a.report(cmd.OutOrStdout(), ts, opts)
		},
	}
	opts.register(cmd, 20)
	return cmd
}

func friendsCmd(a *app) *cobra.Command {
	var count int
	cmd := &cobra.Command{
		Use:   "friends",
		Short: "List the accounts the user follows",
		RunE: func(cmd *cobra.Command, args []string) error {
			tc, err := a.twitterClient(cmd.Context(), "")
			if err != nil {
				return err
			}
			users, err := tc.GetFriendList(cmd.Context(), count)
			if err != nil {
				return err
			}
			printFriends(cmd.OutOrStdout(), users)
			return nil
		},
	}
	cmd.Flags().IntVar(&count, "count", 100, "Number of accounts to list (0 = all)")
	return cmd
}

func trendsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "trends LOCATION",
		Short: "Show trending topics near a place",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tc, err := a.twitterClient(cmd.Context(), "")
			if err != nil {
				return err
			}
			trends, err := tc.GetTrends(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			printTrends(cmd.OutOrStdout(), trends)
			return nil
		},
	}
}

// report prints the head of the data frame, the sentiment summary and the top words
func (a *app) report(w io.Writer, ts []tweets.Tweet, opts reportOptions) error {
	an, err := a.analyzer()
	if err != nil {
		return err
	}
	if err := writeReport(w, an, ts, opts); err != nil {
		return err
	}
	return a.saveCounts(an)
}

func writeReport(w io.Writer, an *analyzer.TweetAnalyzer, ts []tweets.Tweet, opts reportOptions) error {
	df := an.TweetsToDataFrame(ts)
	fmt.Fprintln(w, analyzer.Head(df, opts.head))
	printSummary(w, an.Summary(ts))

	if opts.top > 0 {
		an.CountTokens(ts)
		printTopTokens(w, an.TopTokens(opts.top))
	}

	if opts.csvPath != "" {
		if err := writeCSV(opts.csvPath, df); err != nil {
			return err
		}
		fmt.Fprintf(w, "Wrote %d rows to %s\n", df.Nrow(), opts.csvPath)
	}
	return nil
}

func writeCSV(path string, df dataframe.DataFrame) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := df.WriteCSV(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

func printSummary(w io.Writer, s analyzer.SentimentSummary) {
	fmt.Fprintf(w, "Sentiment over %d tweets: positive=%d neutral=%d negative=%d\n",
		s.Total(), s.Positive, s.Neutral, s.Negative)
}

func printTopTokens(w io.Writer, top []pipeline.TokenCount) {
	fmt.Fprintln(w, "Top words:")
	for _, tc := range top {
		fmt.Fprintf(w, "  %-20s %d\n", tc.Token, tc.Count)
	}
}

func printFriends(w io.Writer, users []tweets.User) {
	for _, u := range users {
		fmt.Fprintf(w, "@%s\t%s\t%s\n", u.Username, u.Name, u.IDStr)
	}
}

func printTrends(w io.Writer, trends []tweets.Trend) {
	for _, t := range trends {
		fmt.Fprintf(w, "Name: \t%s\n", t.Name)
		fmt.Fprintf(w, "Tweet Volume: \t%d\n", t.TweetVolume)
		fmt.Fprintf(w, "Tweet Query: \t%s\n", t.Query)
		fmt.Fprintln(w)
		fmt.Fprintln(w)
	}
}

// interrupted reports whether err only reflects the command being stopped
func interrupted(ctx context.Context, err error) bool {
	return err != nil && ctx.Err() != nil
}
