package geo

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/jmorris/officiantfinder/internal/telemetry"
)

const (
	// Nominatim asks for a descriptive User-Agent and at most one request
	// per second.
	defaultTimeout = 15 * time.Second

	// placeQualifier disambiguates same-named places in other provinces
	// and countries.
	placeQualifier = ", Ontario, Canada"

	countryCodes = "ca"
)

var postalCodeRe = regexp.MustCompile(`^[A-Za-z]\d[A-Za-z] ?\d[A-Za-z]\d$`)

// IsPostalCode reports whether the input matches the Canadian postal code
// grammar (with or without the inner space).
func IsPostalCode(s string) bool {
	return postalCodeRe.MatchString(strings.TrimSpace(s))
}

// NormalizePostalCode canonicalizes a postal code to "ANA NAN" form.
// Input that does not match the grammar is returned trimmed and uppercased.
func NormalizePostalCode(s string) string {
	trimmed := strings.TrimSpace(s)
	if !postalCodeRe.MatchString(trimmed) {
		return strings.ToUpper(trimmed)
	}
	compact := strings.ToUpper(strings.ReplaceAll(trimmed, " ", ""))
	return compact[:3] + " " + compact[3:]
}

// Resolver resolves free-text locations to coordinates. A nil result means
// "no coordinates"; resolution never fails with an error.
type Resolver interface {
	ResolvePlace(ctx context.Context, name string) *Coordinates
	ResolvePostalCode(ctx context.Context, code string) *Coordinates
}

// Geocoder resolves place names and postal codes via a static FSA table and
// Nominatim, memoizing every outcome (including misses) in process.
type Geocoder struct {
	baseURL   string
	userAgent string
	client    *http.Client
	limiter   *rate.Limiter
	log       *zap.SugaredLogger

	mu    sync.Mutex
	cache map[string]*Coordinates // nil value = cached "no result"
}

// NewGeocoder creates a Geocoder. delay is the minimum spacing between
// external calls on the batch path.
func NewGeocoder(baseURL, userAgent string, delay time.Duration, log *zap.SugaredLogger) *Geocoder {
	return &Geocoder{
		baseURL:   baseURL,
		userAgent: userAgent,
		client:    &http.Client{Timeout: defaultTimeout},
		limiter:   rate.NewLimiter(rate.Every(delay), 1),
		log:       log,
		cache:     map[string]*Coordinates{},
	}
}

// ResolvePlace resolves a municipality or place name. The cache key is the
// lower-cased trimmed name, so casing and spacing variants share one entry.
func (g *Geocoder) ResolvePlace(ctx context.Context, name string) *Coordinates {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return nil
	}

	if coords, ok := g.cached(key); ok {
		return coords
	}

	coords := g.query(ctx, strings.TrimSpace(name)+placeQualifier)
	g.store(key, coords)
	return coords
}

// ResolvePostalCode resolves a postal code, preferring the static FSA table
// over the network.
func (g *Geocoder) ResolvePostalCode(ctx context.Context, code string) *Coordinates {
	key := NormalizePostalCode(code)
	if key == "" {
		return nil
	}

	if coords, ok := g.cached(key); ok {
		return coords
	}

	if postalCodeRe.MatchString(key) {
		if c, ok := LookupFSA(key[:3]); ok {
			coords := c
			g.store(key, &coords)
			return &coords
		}
	}

	coords := g.query(ctx, key+placeQualifier)
	g.store(key, coords)
	return coords
}

// ResolveAll resolves a batch of place names, spacing external calls by the
// configured delay. Names already cached resolve immediately without
// throttling. onResolved is invoked for each newly resolved name; a non-nil
// return aborts the batch.
func (g *Geocoder) ResolveAll(ctx context.Context, names []string, onResolved func(name string, coords Coordinates) error) (int, error) {
	resolved := 0
	for _, name := range names {
		key := strings.ToLower(strings.TrimSpace(name))
		if key == "" {
			continue
		}
		if _, ok := g.cached(key); ok {
			continue
		}

		if err := g.limiter.Wait(ctx); err != nil {
			return resolved, err
		}

		coords := g.ResolvePlace(ctx, name)
		if coords == nil {
			continue
		}

		resolved++
		if onResolved != nil {
			if err := onResolved(name, *coords); err != nil {
				return resolved, err
			}
		}
	}
	return resolved, nil
}

// SeedPlaces primes the cache with previously resolved place names, keyed by
// lower-cased trimmed name.
func (g *Geocoder) SeedPlaces(places map[string]Coordinates) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for name, coords := range places {
		c := coords
		g.cache[strings.ToLower(strings.TrimSpace(name))] = &c
	}
}

// CachedPlace returns the cached coordinates for a place name without
// triggering resolution.
func (g *Geocoder) CachedPlace(name string) *Coordinates {
	coords, _ := g.cached(strings.ToLower(strings.TrimSpace(name)))
	return coords
}

func (g *Geocoder) cached(key string) (*Coordinates, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	coords, ok := g.cache[key]
	return coords, ok
}

func (g *Geocoder) store(key string, coords *Coordinates) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.cache[key] = coords
}

// nominatimResult is the wire shape of one Nominatim search result.
// Coordinates arrive as strings.
type nominatimResult struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

// query performs one Nominatim lookup. Every failure mode (transport error,
// non-2xx, malformed body, empty result) collapses to nil so callers can
// treat it as a cacheable miss.
func (g *Geocoder) query(ctx context.Context, q string) *Coordinates {
	params := url.Values{}
	params.Set("q", q)
	params.Set("format", "json")
	params.Set("limit", "1")
	params.Set("countrycodes", countryCodes)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil
	}
	req.Header.Set("User-Agent", g.userAgent)

	resp, err := g.client.Do(req)
	if err != nil {
		g.log.Warnw("geocode request failed", "query", q, "error", err)
		telemetry.GeocodeRequests.WithLabelValues("error").Inc()
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		g.log.Warnw("geocode request rejected", "query", q, "status", resp.StatusCode)
		telemetry.GeocodeRequests.WithLabelValues("error").Inc()
		return nil
	}

	var results []nominatimResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		g.log.Warnw("geocode response malformed", "query", q, "error", err)
		telemetry.GeocodeRequests.WithLabelValues("error").Inc()
		return nil
	}
	if len(results) == 0 {
		telemetry.GeocodeRequests.WithLabelValues("miss").Inc()
		return nil
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return nil
	}
	lng, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return nil
	}

	telemetry.GeocodeRequests.WithLabelValues("hit").Inc()
	return &Coordinates{Lat: lat, Lng: lng}
}
