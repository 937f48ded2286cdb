package tweets

import (
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ClassicTimeLayout is the created_at layout of the queue CSV rows
const ClassicTimeLayout = "Mon Jan 2 15:04:05 -0700 2006"

// CSVColumns is the header of the queue wire format
var CSVColumns = []string{
	"id_str",
	"created_at",
	"user_id_str",
	"retweet_count",
	"like_count",
	"text",
}

// FormatLine renders the fetched-tweets file line "<id>. <created_at>, <text>".
// No newline is appended and the text is not escaped.
func FormatLine(t Tweet) string {
	return fmt.Sprintf("%s. %s, %s", t.IDStr, t.CreatedAt.UTC().Format(StreamTimeLayout), t.Text)
}

// ToCSVRecord converts a tweet to a queue CSV record
func ToCSVRecord(t Tweet) []string {
	return []string{
		t.IDStr,
		t.CreatedAt.Format(ClassicTimeLayout),
		t.UserIDStr,
		strconv.Itoa(t.RetweetCount),
		strconv.Itoa(t.LikeCount),
		t.Text,
	}
}

// EncodeCSV renders a single tweet as one CSV row (without trailing newline)
func EncodeCSV(t Tweet) (string, error) {
	var sb strings.Builder
	w := csv.NewWriter(&sb)
	if err := w.Write(ToCSVRecord(t)); err != nil {
		return "", err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}
	return strings.TrimRight(sb.String(), "\n"), nil
}

// DecodeCSV parses a single CSV row string into a Tweet
func DecodeCSV(row string) (*Tweet, error) {
	reader := csv.NewReader(strings.NewReader(row))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	record, err := reader.Read()
	if err != nil {
		return nil, err
	}
	return ParseCSVRecord(record)
}

// ParseCSVRecord parses a queue CSV record into a Tweet.
// Header rows and short rows are rejected.
func ParseCSVRecord(record []string) (*Tweet, error) {
	if len(record) < len(CSVColumns) {
		return nil, fmt.Errorf("expected at least %d fields, got %d", len(CSVColumns), len(record))
	}
	// Skip header rows
	if record[0] == "id_str" || record[1] == "created_at" {
		return nil, fmt.Errorf("header row detected, skipping")
	}

	createdAt, err := time.Parse(ClassicTimeLayout, normalizeWhitespace(record[1]))
	if err != nil {
		return nil, fmt.Errorf("failed to parse CreatedAt: %w", err)
	}
	retweets, err := parseCount(record[3])
	if err != nil {
		return nil, fmt.Errorf("failed to parse retweet_count: %w", err)
	}
	likes, err := parseCount(record[4])
	if err != nil {
		return nil, fmt.Errorf("failed to parse like_count: %w", err)
	}

	tweet := &Tweet{
		IDStr:        record[0],
		UserIDStr:    record[2],
		RetweetCount: retweets,
		LikeCount:    likes,
		Text:         record[5],
	}
	tweet.SetCreatedAt(createdAt)
	return tweet, nil
}

func parseCount(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}

// Normalize all whitespace to a single space
func normalizeWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
