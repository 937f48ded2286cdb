package client

import (
	"time"

	"github.com/g8rswimmer/go-twitter/v2"

	"tweet-sentiment/src/tweets"
)

// ConvertTweet maps a v2 tweet object onto our model.
// An unparseable created_at leaves the timestamp zero.
func ConvertTweet(obj *twitter.TweetObj) tweets.Tweet {
	t := tweets.Tweet{
		IDStr:     obj.ID,
		UserIDStr: obj.AuthorID,
		Text:      obj.Text,
	}
	if ts, err := time.Parse(time.RFC3339, obj.CreatedAt); err == nil {
		t.SetCreatedAt(ts)
	}
	if obj.PublicMetrics != nil {
		t.LikeCount = obj.PublicMetrics.Likes
		t.RetweetCount = obj.PublicMetrics.Retweets
	}
	return t
}

func convertTweets(objs []*twitter.TweetObj) []tweets.Tweet {
	out := make([]tweets.Tweet, 0, len(objs))
	for _, obj := range objs {
		if obj == nil {
			continue
		}
		out = append(out, ConvertTweet(obj))
	}
	return out
}

func convertUsers(objs []*twitter.UserObj) []tweets.User {
	out := make([]tweets.User, 0, len(objs))
	for _, obj := range objs {
		if obj == nil {
			continue
		}
		out = append(out, tweets.User{IDStr: obj.ID, Username: obj.UserName, Name: obj.Name})
	}
	return out
}
