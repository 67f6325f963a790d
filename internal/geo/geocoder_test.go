package geo

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestGeocoder(baseURL string) *Geocoder {
	return NewGeocoder(baseURL, "test-agent/1.0", time.Millisecond, zap.NewNop().Sugar())
}

func TestNormalizePostalCode(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"M5V2T6", "M5V 2T6"},
		{"m5v2t6", "M5V 2T6"},
		{"M5V 2T6", "M5V 2T6"},
		{"  m5v 2t6  ", "M5V 2T6"},
		{"Toronto", "TORONTO"},
		{"  downtown  ", "DOWNTOWN"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizePostalCode(tt.in), "input %q", tt.in)
	}
}

func TestIsPostalCode(t *testing.T) {
	assert.True(t, IsPostalCode("M5V2T6"))
	assert.True(t, IsPostalCode("m5v 2t6"))
	assert.True(t, IsPostalCode(" K1A0A6 "))
	assert.False(t, IsPostalCode("Toronto"))
	assert.False(t, IsPostalCode("M5V"))
	assert.False(t, IsPostalCode("12345"))
}

func TestResolvePostalCodeUsesStaticTable(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		fmt.Fprint(w, `[]`)
	}))
	defer srv.Close()

	g := newTestGeocoder(srv.URL)

	coords := g.ResolvePostalCode(context.Background(), "M5V2T6")
	require.NotNil(t, coords)
	assert.InDelta(t, 43.64, coords.Lat, 0.1)
	assert.Equal(t, int32(0), atomic.LoadInt32(&calls), "table hit must not touch the network")
}

func TestResolvePostalCodeFallsBackToNetwork(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		assert.Equal(t, "ca", r.URL.Query().Get("countrycodes"))
		assert.Equal(t, "1", r.URL.Query().Get("limit"))
		fmt.Fprint(w, `[{"lat":"45.07","lon":"-77.88"}]`)
	}))
	defer srv.Close()

	g := newTestGeocoder(srv.URL)

	// Valid grammar, but an FSA the table does not cover
	coords := g.ResolvePostalCode(context.Background(), "K0L1A0")
	require.NotNil(t, coords)
	assert.InDelta(t, 45.07, coords.Lat, 0.01)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestResolvePlaceCachesResult(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		assert.Equal(t, "Toronto, Ontario, Canada", r.URL.Query().Get("q"))
		assert.Equal(t, "test-agent/1.0", r.Header.Get("User-Agent"))
		fmt.Fprint(w, `[{"lat":"43.6532","lon":"-79.3832"}]`)
	}))
	defer srv.Close()

	g := newTestGeocoder(srv.URL)
	ctx := context.Background()

	first := g.ResolvePlace(ctx, "Toronto")
	require.NotNil(t, first)
	assert.InDelta(t, 43.6532, first.Lat, 0.0001)

	// Casing and whitespace variants share one cache entry
	second := g.ResolvePlace(ctx, "  TORONTO ")
	require.NotNil(t, second)
	assert.Equal(t, *first, *second)

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestResolvePlaceCachesMiss(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		fmt.Fprint(w, `[]`)
	}))
	defer srv.Close()

	g := newTestGeocoder(srv.URL)
	ctx := context.Background()

	assert.Nil(t, g.ResolvePlace(ctx, "Nowhereville"))
	assert.Nil(t, g.ResolvePlace(ctx, "nowhereville"))
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "a known miss must not be retried")
}

func TestResolvePlaceServerFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	g := newTestGeocoder(srv.URL)
	assert.Nil(t, g.ResolvePlace(context.Background(), "Toronto"))
}

func TestResolvePlaceMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"not":"an array"}`)
	}))
	defer srv.Close()

	g := newTestGeocoder(srv.URL)
	assert.Nil(t, g.ResolvePlace(context.Background(), "Toronto"))
}

func TestResolveAll(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		fmt.Fprint(w, `[{"lat":"44.0","lon":"-79.0"}]`)
	}))
	defer srv.Close()

	g := newTestGeocoder(srv.URL)
	g.SeedPlaces(map[string]Coordinates{"Barrie": {44.39, -79.69}})

	var persisted []string
	resolved, err := g.ResolveAll(context.Background(), []string{"Barrie", "Orillia", "Midland"}, func(name string, coords Coordinates) error {
		persisted = append(persisted, name)
		return nil
	})
	require.NoError(t, err)

	// Barrie was seeded; only the two new names hit the network
	assert.Equal(t, 2, resolved)
	assert.Equal(t, []string{"Orillia", "Midland"}, persisted)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestSeedPlacesNormalizesKeys(t *testing.T) {
	g := newTestGeocoder("http://unused.invalid")
	g.SeedPlaces(map[string]Coordinates{"  Thunder Bay ": {48.41, -89.26}})

	coords := g.CachedPlace("thunder bay")
	require.NotNil(t, coords)
	assert.InDelta(t, 48.41, coords.Lat, 0.001)
}
