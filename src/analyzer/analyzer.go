package analyzer

import (
	"tweet-sentiment/src/filter"
	"tweet-sentiment/src/metrics"
	"tweet-sentiment/src/pipeline"
	"tweet-sentiment/src/tweets"
)

// Options configures a TweetAnalyzer. Zero values pick the defaults:
// VADER scoring, the built-in stop words, and a fresh token counter.
type Options struct {
	Scorer  Scorer
	Filter  *filter.WordFilter
	Counter *pipeline.TokenCounter
	Metrics *metrics.Metrics
}

// TweetAnalyzer cleans, scores and tabulates tweets
type TweetAnalyzer struct {
	scorer  Scorer
	filter  *filter.WordFilter
	counter *pipeline.TokenCounter
	metrics *metrics.Metrics
}

// SentimentSummary counts tweets per label
type SentimentSummary struct {
	Positive int
	Neutral  int
	Negative int
}

// Total is the number of tweets summarized
func (s SentimentSummary) Total() int {
	return s.Positive + s.Neutral + s.Negative
}

// Add counts one label
func (s *SentimentSummary) Add(label int) {
	switch label {
	case Positive:
		s.Positive++
	case Neutral:
		s.Neutral++
	default:
		s.Negative++
	}
}

// New creates a TweetAnalyzer
func New(opts Options) *TweetAnalyzer {
	if opts.Scorer == nil {
		opts.Scorer = NewVaderScorer()
	}
	if opts.Filter == nil {
		opts.Filter = filter.NewDefaultWordFilter()
	}
	if opts.Counter == nil {
		opts.Counter = pipeline.NewTokenCounter()
	}
	return &TweetAnalyzer{
		scorer:  opts.Scorer,
		filter:  opts.Filter,
		counter: opts.Counter,
		metrics: opts.Metrics,
	}
}

// CleanTweet strips mentions, punctuation and links from text
func (a *TweetAnalyzer) CleanTweet(text string) string {
	return CleanTweet(text)
}

// Polarity scores the cleaned text
func (a *TweetAnalyzer) Polarity(text string) float64 {
	p := a.scorer.Polarity(CleanTweet(text))
	a.metrics.ObservePolarity(p)
	return p
}

// AnalyzeSentiment returns 1, 0 or -1 for positive, neutral or negative text
func (a *TweetAnalyzer) AnalyzeSentiment(text string) int {
	return Label(a.Polarity(text))
}

// Summary labels every tweet and counts the results
func (a *TweetAnalyzer) Summary(ts []tweets.Tweet) SentimentSummary {
	var s SentimentSummary
	for _, t := range ts {
		s.Add(a.AnalyzeSentiment(t.Text))
	}
	return s
}

// CountTokens tokenizes each tweet, drops stop words, stores the tokens on the
// tweet and adds them to the word counter.
func (a *TweetAnalyzer) CountTokens(ts []tweets.Tweet) {
	for i := range ts {
		tokens := a.filter.Apply(Tokenize(ts[i].Text))
		ts[i].Tokens = tokens
		a.counter.IncrementTokens(tokens)
	}
}

// TopTokens returns the n most common words counted so far
func (a *TweetAnalyzer) TopTokens(n int) []pipeline.TokenCount {
	return a.counter.TopTokens(n)
}

// Counter exposes the word counter for persistence
func (a *TweetAnalyzer) Counter() *pipeline.TokenCounter {
	return a.counter
}
