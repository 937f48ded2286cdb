package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"tweet-sentiment/src/retry"
	"tweet-sentiment/src/tweets"
)

// The v2 client has no trends support; these are the v1.1 REST endpoints.
const (
	trendsClosestPath = "/1.1/trends/closest.json"
	trendsPlacePath   = "/1.1/trends/place.json"
)

// GetTrends geocodes location, finds the closest trend place and returns its trends
func (c *TwitterClient) GetTrends(ctx context.Context, location string) ([]tweets.Trend, error) {
	if c.geo == nil {
		return nil, fmt.Errorf("get trends: no geocoder configured")
	}
	loc, err := c.geo.Geocode(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("get trends: %w", err)
	}

	places, err := c.TrendsClosest(ctx, loc.Lat, loc.Lng)
	if err != nil {
		return nil, err
	}
	if len(places) == 0 {
		return nil, fmt.Errorf("get trends for %q: %w", location, ErrNoTrendPlace)
	}
	return c.TrendsPlace(ctx, places[0].WOEID)
}

// TrendsClosest returns the trend locations nearest to a point
func (c *TwitterClient) TrendsClosest(ctx context.Context, lat, lng float64) ([]tweets.Place, error) {
	params := url.Values{}
	params.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	params.Set("long", strconv.FormatFloat(lng, 'f', -1, 64))

	var places []tweets.Place
	if err := c.getJSON(ctx, "trends_closest", trendsClosestPath, params, &places); err != nil {
		return nil, err
	}
	return places, nil
}

type placeTrends struct {
	Trends []struct {
		Name        string `json:"name"`
		URL         string `json:"url"`
		Query       string `json:"query"`
		TweetVolume *int   `json:"tweet_volume"`
	} `json:"trends"`
}

// TrendsPlace returns the current trends for a WOEID
func (c *TwitterClient) TrendsPlace(ctx context.Context, woeid int) ([]tweets.Trend, error) {
	params := url.Values{}
	params.Set("id", strconv.Itoa(woeid))

	var body []placeTrends
	if err := c.getJSON(ctx, "trends_place", trendsPlacePath, params, &body); err != nil {
		return nil, err
	}

	var out []tweets.Trend
	for _, p := range body {
		for _, tr := range p.Trends {
			trend := tweets.Trend{Name: tr.Name, URL: tr.URL, Query: tr.Query}
			if tr.TweetVolume != nil {
				trend.TweetVolume = *tr.TweetVolume
			}
			out = append(out, trend)
		}
	}
	return out, nil
}

func (c *TwitterClient) getJSON(ctx context.Context, endpoint, path string, params url.Values, v any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%s: waiting for rate limiter: %w", endpoint, err)
	}
	return retry.DoVoid(ctx, c.retry, Classify, func() error {
		c.metrics.ObserveAPIRequest(endpoint)

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.host+path+"?"+params.Encode(), nil)
		if err != nil {
			return err
		}
		resp, err := c.http.Do(req)
		if err != nil {
			return fmt.Errorf("%s: %w", endpoint, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return &APIError{Endpoint: endpoint, StatusCode: resp.StatusCode, Status: resp.Status}
		}
		if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
			return fmt.Errorf("%s: decode: %w", endpoint, err)
		}
		return nil
	})
}
