package analyzer

import (
	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"tweet-sentiment/src/tweets"
)

// Column names of the tweets data frame, in order
const (
	ColTweets    = "tweets"
	ColTweetID   = "tweet_id"
	ColDate      = "date"
	ColLikes     = "likes"
	ColRetweets  = "retweets"
	ColSentiment = "sentiment"
)

const dateLayout = "2006-01-02 15:04:05"

// TweetsToDataFrame builds one row per tweet with its text, id, timestamp,
// like and retweet counts and sentiment label.
func (a *TweetAnalyzer) TweetsToDataFrame(ts []tweets.Tweet) dataframe.DataFrame {
	texts := make([]string, len(ts))
	ids := make([]string, len(ts))
	dates := make([]string, len(ts))
	likes := make([]int, len(ts))
	retweets := make([]int, len(ts))
	sentiment := make([]int, len(ts))

	for i, t := range ts {
		texts[i] = t.Text
		ids[i] = t.IDStr
		if !t.CreatedAt.IsZero() {
			dates[i] = t.CreatedAt.UTC().Format(dateLayout)
		}
		likes[i] = t.LikeCount
		retweets[i] = t.RetweetCount
		sentiment[i] = a.AnalyzeSentiment(t.Text)
	}

	return dataframe.New(
		series.New(texts, series.String, ColTweets),
		series.New(ids, series.String, ColTweetID),
		series.New(dates, series.String, ColDate),
		series.New(likes, series.Int, ColLikes),
		series.New(retweets, series.Int, ColRetweets),
		series.New(sentiment, series.Int, ColSentiment),
	)
}

// Head returns the first n rows of df
func Head(df dataframe.DataFrame, n int) dataframe.DataFrame {
	if n <= 0 || n >= df.Nrow() {
		return df
	}
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	return df.Subset(idx)
}
