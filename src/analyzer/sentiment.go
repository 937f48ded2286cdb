package analyzer

import "github.com/jonreiter/govader"

// Sentiment labels returned by AnalyzeSentiment
const (
	Negative = -1
	Neutral  = 0
	Positive = 1
)

// Scorer produces a polarity in [-1, 1] for a piece of text
type Scorer interface {
	Polarity(text string) float64
}

// VaderScorer scores text with the VADER lexicon; the score is the compound
// (normalized, weighted composite) value.
type VaderScorer struct {
	sia *govader.SentimentIntensityAnalyzer
}

// NewVaderScorer loads the embedded VADER lexicons
func NewVaderScorer() *VaderScorer {
	return &VaderScorer{sia: govader.NewSentimentIntensityAnalyzer()}
}

// Polarity returns the VADER compound score of text
func (v *VaderScorer) Polarity(text string) float64 {
	return v.sia.PolarityScores(text).Compound
}

// Label classifies a polarity by its sign
func Label(polarity float64) int {
	switch {
	case polarity > 0:
		return Positive
	case polarity == 0:
		return Neutral
	default:
		return Negative
	}
}

// LabelName is the human-readable form of a label
func LabelName(label int) string {
	switch label {
	case Positive:
		return "positive"
	case Neutral:
		return "neutral"
	default:
		return "negative"
	}
}
