package tweets

import "time"

// StreamTimeLayout is the timestamp layout the v2 API uses for created_at.
const StreamTimeLayout = "2006-01-02T15:04:05.000Z07:00"

// Tweet represents a retrieved or streamed tweet with the fields we analyze
type Tweet struct {
	IDStr        string    `json:"id_str"`
	CreatedAt    time.Time `json:"created_at"`
	Unix         int64     `json:"unix"`
	UserIDStr    string    `json:"user_id_str"`
	Text         string    `json:"text"`
	Tokens       []string  `json:"tokens,omitempty"`
	LikeCount    int       `json:"like_count"`
	RetweetCount int       `json:"retweet_count"`
}

// User is an account returned by the following lookup
type User struct {
	IDStr    string `json:"id_str"`
	Username string `json:"username"`
	Name     string `json:"name"`
}

// Trend is one trending topic for a place
type Trend struct {
	Name        string `json:"name"`
	URL         string `json:"url"`
	Query       string `json:"query"`
	TweetVolume int    `json:"tweet_volume"` // 0 when the platform reports null
}

// Location is a geocoded place name
type Location struct {
	Name string
	Lat  float64
	Lng  float64
}

// Place is a trend location identified by its Yahoo! Where On Earth ID
type Place struct {
	WOEID   int    `json:"woeid"`
	Name    string `json:"name"`
	Country string `json:"country"`
}

// SetCreatedAt sets both the timestamp and its unix seconds.
func (t *Tweet) SetCreatedAt(ts time.Time) {
	t.CreatedAt = ts
	t.Unix = ts.Unix()
}
