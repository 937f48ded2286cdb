package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"tweet-sentiment/src/tweets"
)

// DefaultBaseURL is the public OpenStreetMap Nominatim instance
const DefaultBaseURL = "https://nominatim.openstreetmap.org"

// ErrNotFound is returned when the query matches no place
var ErrNotFound = errors.New("location not found")

// Geocoder resolves a free-form place name to coordinates
type Geocoder interface {
	Geocode(ctx context.Context, query string) (tweets.Location, error)
}

// Nominatim geocodes against an OpenStreetMap Nominatim search endpoint
type Nominatim struct {
	BaseURL   string
	UserAgent string // required by the Nominatim usage policy
	Client    *http.Client
}

// NewNominatim creates a Nominatim geocoder
func NewNominatim(baseURL, userAgent string) *Nominatim {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Nominatim{BaseURL: baseURL, UserAgent: userAgent, Client: http.DefaultClient}
}

type searchResult struct {
	DisplayName string `json:"display_name"`
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
}

// Geocode returns the best match for query
func (n *Nominatim) Geocode(ctx context.Context, query string) (tweets.Location, error) {
	if n.UserAgent == "" {
		return tweets.Location{}, errors.New("nominatim requires a user agent")
	}
	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "json")
	params.Set("limit", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, n.BaseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return tweets.Location{}, err
	}
	req.Header.Set("User-Agent", n.UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := n.Client.Do(req)
	if err != nil {
		return tweets.Location{}, fmt.Errorf("geocode %q: %w", query, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return tweets.Location{}, fmt.Errorf("geocode %q: nominatim returned %s", query, resp.Status)
	}

	var results []searchResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return tweets.Location{}, fmt.Errorf("geocode %q: decode: %w", query, err)
	}
	if len(results) == 0 {
		return tweets.Location{}, fmt.Errorf("%w: %s", ErrNotFound, query)
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return tweets.Location{}, fmt.Errorf("geocode %q: bad lat: %w", query, err)
	}
	lng, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return tweets.Location{}, fmt.Errorf("geocode %q: bad lon: %w", query, err)
	}
	return tweets.Location{Name: results[0].DisplayName, Lat: lat, Lng: lng}, nil
}
