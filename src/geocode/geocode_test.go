package geocode

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNominatimGeocode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "England", r.URL.Query().Get("q"))
		assert.Equal(t, "json", r.URL.Query().Get("format"))
		assert.Equal(t, "test-agent", r.Header.Get("User-Agent"))
		w.Write([]byte(`[{"display_name":"England, United Kingdom","lat":"52.5310","lon":"-1.2649"}]`))
	}))
	defer srv.Close()

	loc, err := NewNominatim(srv.URL, "test-agent").Geocode(context.Background(), "England")
	require.NoError(t, err)
	assert.Equal(t, "England, United Kingdom", loc.Name)
	assert.InDelta(t, 52.5310, loc.Lat, 1e-9)
	assert.InDelta(t, -1.2649, loc.Lng, 1e-9)
}

func TestNominatimNoResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	_, err := NewNominatim(srv.URL, "test-agent").Geocode(context.Background(), "Atlantis")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestNominatimHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := NewNominatim(srv.URL, "test-agent").Geocode(context.Background(), "England")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestNominatimRequiresUserAgent(t *testing.T) {
	_, err := NewNominatim("http://unused", "").Geocode(context.Background(), "England")
	assert.Error(t, err)
}
