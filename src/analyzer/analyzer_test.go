package analyzer

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tweet-sentiment/src/tweets"
)

// fixedScorer returns a preset polarity per cleaned text
type fixedScorer map[string]float64

func (f fixedScorer) Polarity(text string) float64 { return f[text] }

func TestCleanTweet(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"mention punctuation and link", "@bob Check this out! https://t.co/xyz #fun", "Check this out fun"},
		{"apostrophe splits words", "it's", "it s"},
		{"tabs and newlines collapse", "a\t\tb\n\nc", "a b c"},
		{"link inside parens", "(see http://example.com/a?b=1)", "see"},
		{"mention with underscore keeps tail", "@first_last hi", "last hi"},
		{"non ascii removed", "café ☕ time", "caf time"},
		{"only noise", "@a @b !!!", ""},
		{"empty", "", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, CleanTweet(tc.in))
		})
	}
}

func TestTokenize(t *testing.T) {
	assert.Equal(t, []string{"the", "pm", "said", "yes"}, Tokenize("The PM said: YES! @speaker"))
}

func TestLabel(t *testing.T) {
	assert.Equal(t, Positive, Label(0.0001))
	assert.Equal(t, Neutral, Label(0))
	assert.Equal(t, Negative, Label(-0.5))
	assert.Equal(t, "positive", LabelName(Positive))
	assert.Equal(t, "neutral", LabelName(Neutral))
	assert.Equal(t, "negative", LabelName(Negative))
}

func TestAnalyzeSentimentScoresCleanedText(t *testing.T) {
	a := New(Options{Scorer: fixedScorer{"great day": 0.6, "bad day": -0.4}})

	assert.Equal(t, Positive, a.AnalyzeSentiment("@x great day! http://t.co/1"))
	assert.Equal(t, Negative, a.AnalyzeSentiment("bad day..."))
	assert.Equal(t, Neutral, a.AnalyzeSentiment("unscored"))
}

func TestVaderScorer(t *testing.T) {
	a := New(Options{})

	assert.Equal(t, Positive, a.AnalyzeSentiment("I love this, it is wonderful and amazing"))
	assert.Equal(t, Negative, a.AnalyzeSentiment("This is terrible, awful and horrible"))
	assert.Equal(t, Neutral, a.AnalyzeSentiment(""))
}

func TestSummary(t *testing.T) {
	a := New(Options{Scorer: fixedScorer{"up": 1, "down": -1}})
	s := a.Summary([]tweets.Tweet{{Text: "up"}, {Text: "up"}, {Text: "down"}, {Text: "meh"}})

	assert.Equal(t, SentimentSummary{Positive: 2, Neutral: 1, Negative: 1}, s)
	assert.Equal(t, 4, s.Total())
}

func TestCountTokensDropsStopWords(t *testing.T) {
	a := New(Options{Scorer: fixedScorer{}})
	ts := []tweets.Tweet{
		{Text: "The vote is on Tuesday"},
		{Text: "RT @mp: vote vote #vote"},
	}
	a.CountTokens(ts)

	assert.Equal(t, []string{"vote", "tuesday"}, ts[0].Tokens)
	top := a.TopTokens(1)
	require.Len(t, top, 1)
	assert.Equal(t, "vote", top[0].Token)
	assert.Equal(t, 4, top[0].Count)
}

func TestTweetsToDataFrame(t *testing.T) {
	a := New(Options{Scorer: fixedScorer{"good": 0.5, "bad": -0.5}})
	ts := make([]tweets.Tweet, 3)
	texts := []string{"good", "bad", "plain"}
	for i := range ts {
		ts[i] = tweets.Tweet{IDStr: string(rune('1' + i)), Text: texts[i], LikeCount: 10 * i, RetweetCount: i}
		ts[i].SetCreatedAt(time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC))
	}

	df := a.TweetsToDataFrame(ts)
	require.NoError(t, df.Err)
	assert.Equal(t, []string{ColTweets, ColTweetID, ColDate, ColLikes, ColRetweets, ColSentiment}, df.Names())
	assert.Equal(t, 3, df.Nrow())

	sentiment, err := df.Col(ColSentiment).Int()
	require.NoError(t, err)
	assert.Equal(t, []int{1, -1, 0}, sentiment)

	likes, err := df.Col(ColLikes).Int()
	require.NoError(t, err)
	assert.Equal(t, []int{0, 10, 20}, likes)

	assert.Equal(t, []string{"1", "2", "3"}, df.Col(ColTweetID).Records())
	assert.Equal(t, "2020-01-02 03:04:05", df.Col(ColDate).Records()[0])
}

func TestHead(t *testing.T) {
	a := New(Options{Scorer: fixedScorer{}})
	ts := make([]tweets.Tweet, 15)
	for i := range ts {
		ts[i] = tweets.Tweet{IDStr: strings.Repeat("9", i+1), Text: "x"}
	}
	df := a.TweetsToDataFrame(ts)

	assert.Equal(t, 10, Head(df, 10).Nrow())
	assert.Equal(t, 15, Head(df, 50).Nrow())
	assert.Equal(t, "9", Head(df, 10).Col(ColTweetID).Records()[0])
}

func TestDataFrameWritesCSV(t *testing.T) {
	a := New(Options{Scorer: fixedScorer{}})
	df := a.TweetsToDataFrame([]tweets.Tweet{{IDStr: "7", Text: "hello", LikeCount: 1}})

	var buf bytes.Buffer
	require.NoError(t, df.WriteCSV(&buf))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "tweets,tweet_id,date,likes,retweets,sentiment", lines[0])
}
