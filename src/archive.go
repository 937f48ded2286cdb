package main

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"tweet-sentiment/src/pipeline"
	"tweet-sentiment/src/tweets"
)

func analyzeCmd(a *app) *cobra.Command {
	var opts reportOptions
	cmd := &cobra.Command{
		Use:   "analyze PATH...",
		Short: "Score tweets from queue-format CSV files or directories of them",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			files, err := collectCSVFiles(args)
			if err != nil {
				return err
			}
			var all []tweets.Tweet
			for _, file := range files {
				ts, err := readTweetCSVFile(file)
				if err != nil {
					return err
				}
				all = append(all, ts...)
			}
			if opts.count > 0 && len(all) > opts.count {
				all = all[:opts.count]
			}
			return a.report(cmd.OutOrStdout(), all, opts)
		},
	}
	opts.register(cmd, 0)
	return cmd
}

func countsCmd(a *app) *cobra.Command {
	var (
		file  string
		top   int
		reset bool
	)
	cmd := &cobra.Command{
		Use:   "counts",
		Short: "Show or reset the saved word counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			if file == "" {
				file = a.cfg.CountsFile
			}
			if file == "" {
				return fmt.Errorf("no counts file: set counts_file in the config or pass --file")
			}
			tc := pipeline.NewTokenCounter()
			if err := tc.LoadFromFile(file); err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if reset {
				cleared := tc.GetTotalTokens()
				tc.Clear()
				if err := tc.SaveToFile(file); err != nil {
					return err
				}
				slog.Info("Word counts reset", "file", file, "tokens", cleared)
				fmt.Fprintf(w, "Cleared %d tokens from %s\n", cleared, file)
				return nil
			}
			fmt.Fprintf(w, "Counts file: %s\n", file)
			fmt.Fprintf(w, "Total tokens: %d\n", tc.GetTotalTokens())
			fmt.Fprintf(w, "Distinct tokens: %d\n", tc.Distinct())
			printTopTokens(w, tc.TopTokens(top))
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "Counts file (default: counts_file from config)")
	cmd.Flags().IntVar(&top, "top", 20, "Number of words to show")
	cmd.Flags().BoolVar(&reset, "reset", false, "Clear the saved counts instead of showing them")
	return cmd
}

// collectCSVFiles expands directories to the .csv files directly inside them, sorted by name
func collectCSVFiles(paths []string) ([]string, error) {
	var files []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			files = append(files, p)
			continue
		}
		entries, err := os.ReadDir(p)
		if err != nil {
			return nil, err
		}
		var found []string
		for _, entry := range entries {
			if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".csv") {
				found = append(found, filepath.Join(p, entry.Name()))
			}
		}
		if len(found) == 0 {
			return nil, fmt.Errorf("no CSV files found in directory: %s", p)
		}
		sort.Strings(found)
		files = append(files, found...)
	}
	return files, nil
}

func readTweetCSVFile(path string) ([]tweets.Tweet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	ts, skipped, err := readTweetCSV(bufio.NewReader(f))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	slog.Info("Read tweet file", "file", path, "tweets", len(ts), "skipped", skipped)
	return ts, nil
}

// readTweetCSV parses queue-format rows. Header and malformed rows are skipped and counted.
func readTweetCSV(r io.Reader) ([]tweets.Tweet, int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var (
		ts      []tweets.Tweet
		skipped int
	)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			return ts, skipped, nil
		}
		if err != nil {
			return nil, skipped, err
		}
		tw, err := tweets.ParseCSVRecord(record)
		if err != nil {
			slog.Debug("Skipping row", "error", err)
			skipped++
			continue
		}
		ts = append(ts, *tw)
	}
}
