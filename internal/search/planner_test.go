package search

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jmorris/officiantfinder/internal/geo"
	"github.com/jmorris/officiantfinder/internal/model"
	"github.com/jmorris/officiantfinder/internal/store"
)

type fakeListings struct {
	officiants []model.Officiant

	lastFilter store.Filter
	lastLimit  int
	lastOffset int
	listCalls  int
}

func (f *fakeListings) List(ctx context.Context, filter store.Filter, limit, offset int) ([]model.Officiant, error) {
	f.lastFilter = filter
	f.lastLimit = limit
	f.lastOffset = offset
	f.listCalls++

	rows := f.officiants
	if limit > 0 {
		if offset >= len(rows) {
			return nil, nil
		}
		rows = rows[offset:]
		if len(rows) > limit {
			rows = rows[:limit]
		}
	}
	return rows, nil
}

func (f *fakeListings) Count(ctx context.Context, filter store.Filter) (int, error) {
	return len(f.officiants), nil
}

type fakeFeatured struct {
	ids   []int
	calls int
}

func (f *fakeFeatured) ActiveFeaturedIDs(ctx context.Context, municipality, affiliation, slotType string) ([]int, error) {
	f.calls++
	return f.ids, nil
}

type fakeResolver struct {
	places      map[string]*geo.Coordinates
	postals     map[string]*geo.Coordinates
	placeCalls  int
	postalCalls int
}

func (f *fakeResolver) ResolvePlace(ctx context.Context, name string) *geo.Coordinates {
	f.placeCalls++
	return f.places[name]
}

func (f *fakeResolver) ResolvePostalCode(ctx context.Context, code string) *geo.Coordinates {
	f.postalCalls++
	return f.postals[code]
}

func officiant(id int, municipality string, lat, lng float64) model.Officiant {
	return model.Officiant{
		ID:           id,
		Municipality: municipality,
		Lat:          sql.NullFloat64{Float64: lat, Valid: true},
		Lng:          sql.NullFloat64{Float64: lng, Valid: true},
	}
}

func officiantNoCoords(id int, municipality string) model.Officiant {
	return model.Officiant{ID: id, Municipality: municipality}
}

func newTestPlanner(listings *fakeListings, featured *fakeFeatured, resolver *fakeResolver) *Planner {
	if featured == nil {
		featured = &fakeFeatured{}
	}
	if resolver == nil {
		resolver = &fakeResolver{}
	}
	return NewPlanner(listings, featured, resolver, zap.NewNop().Sugar())
}

func TestAttributeSearchPushesDownPagination(t *testing.T) {
	listings := &fakeListings{officiants: []model.Officiant{
		officiant(1, "Toronto", 43.6, -79.4),
		officiant(2, "Ottawa", 45.4, -75.7),
		officiant(3, "Hamilton", 43.2, -79.9),
	}}
	p := newTestPlanner(listings, nil, nil)

	result, err := p.Search(context.Background(), Request{
		Affiliation: "Catholic",
		Limit:       2,
		Offset:      1,
	})
	require.NoError(t, err)

	assert.Equal(t, 2, listings.lastLimit)
	assert.Equal(t, 1, listings.lastOffset)
	assert.Equal(t, "Catholic", listings.lastFilter.Affiliation)
	assert.Equal(t, 3, result.Total, "total comes from the store count, not the page")
}

func TestAttributeSearchUnfiltered(t *testing.T) {
	listings := &fakeListings{officiants: []model.Officiant{
		officiant(1, "Toronto", 43.6, -79.4),
		officiant(2, "Ottawa", 45.4, -75.7),
	}}
	p := newTestPlanner(listings, nil, nil)

	result, err := p.Search(context.Background(), Request{})
	require.NoError(t, err)

	assert.Equal(t, store.Filter{}, listings.lastFilter)
	assert.Len(t, result.Results, 2)
	assert.Equal(t, 2, result.Total)
}

func TestUnresolvedLocationDegradesToMunicipalityFilter(t *testing.T) {
	listings := &fakeListings{}
	resolver := &fakeResolver{} // resolves nothing
	p := newTestPlanner(listings, nil, resolver)

	_, err := p.Search(context.Background(), Request{Location: "Tiny Township", RadiusKm: 50})
	require.NoError(t, err)

	assert.Equal(t, 1, resolver.placeCalls)
	assert.Equal(t, "Tiny Township", listings.lastFilter.Municipality)
	assert.Greater(t, listings.lastLimit, 0, "unresolved location stays an attribute search")
}

func TestPostalLocationRoutedToPostalResolver(t *testing.T) {
	listings := &fakeListings{}
	resolver := &fakeResolver{postals: map[string]*geo.Coordinates{
		"M5V2T6": {Lat: 43.64, Lng: -79.40},
	}}
	p := newTestPlanner(listings, nil, resolver)

	_, err := p.Search(context.Background(), Request{Location: "M5V2T6", RadiusKm: 25})
	require.NoError(t, err)

	assert.Equal(t, 1, resolver.postalCalls)
	assert.Equal(t, 0, resolver.placeCalls)
	assert.Equal(t, 0, listings.lastLimit, "radius search fetches the full candidate set")
}

func TestRadiusSearchFiltersSortsAndPaginates(t *testing.T) {
	// Origin is downtown Toronto; Hamilton ~60 km, Ottawa ~350 km away
	listings := &fakeListings{officiants: []model.Officiant{
		officiant(1, "Ottawa", 45.4215, -75.6972),
		officiant(2, "Hamilton", 43.2557, -79.8711),
		officiant(3, "Toronto", 43.6532, -79.3832),
		officiant(4, "Mississauga", 43.5890, -79.6441),
		officiantNoCoords(5, "Toronto"),
	}}
	p := newTestPlanner(listings, nil, nil)

	lat, lng := 43.6532, -79.3832
	result, err := p.Search(context.Background(), Request{
		Lat:      &lat,
		Lng:      &lng,
		RadiusKm: 100,
		Limit:    10,
	})
	require.NoError(t, err)

	// Ottawa is out of radius, the null-coordinate row is invisible
	require.Len(t, result.Results, 3)
	assert.Equal(t, 3, result.Total)
	for i, r := range result.Results {
		require.NotNil(t, r.DistanceKm)
		assert.LessOrEqual(t, *r.DistanceKm, 100.0)
		if i > 0 {
			assert.GreaterOrEqual(t, *r.DistanceKm, *result.Results[i-1].DistanceKm)
		}
	}
	assert.Equal(t, 3, result.Results[0].ID, "closest listing first")
}

func TestRadiusSearchPaginatesAfterFiltering(t *testing.T) {
	listings := &fakeListings{officiants: []model.Officiant{
		officiant(1, "Toronto", 43.6532, -79.3832),
		officiant(2, "Toronto", 43.6540, -79.3840),
		officiant(3, "Toronto", 43.6550, -79.3850),
	}}
	p := newTestPlanner(listings, nil, nil)

	lat, lng := 43.6532, -79.3832
	result, err := p.Search(context.Background(), Request{
		Lat:      &lat,
		Lng:      &lng,
		RadiusKm: 25,
		Limit:    2,
		Offset:   2,
	})
	require.NoError(t, err)

	assert.Len(t, result.Results, 1)
	assert.Equal(t, 3, result.Total, "total reflects the filtered set, not the page")
}

func TestRadiusSearchNoMatches(t *testing.T) {
	listings := &fakeListings{officiants: []model.Officiant{
		officiant(1, "Thunder Bay", 48.41, -89.26),
	}}
	p := newTestPlanner(listings, nil, nil)

	lat, lng := 43.6532, -79.3832
	result, err := p.Search(context.Background(), Request{Lat: &lat, Lng: &lng, RadiusKm: 25})
	require.NoError(t, err)

	assert.Empty(t, result.Results)
	assert.Equal(t, 0, result.Total)
}

func TestFeaturedAppliedOnFirstPageOnly(t *testing.T) {
	listings := &fakeListings{officiants: []model.Officiant{
		officiant(1, "Toronto", 43.6, -79.4),
		officiant(2, "Toronto", 43.6, -79.4),
		officiant(3, "Toronto", 43.6, -79.4),
	}}
	featured := &fakeFeatured{ids: []int{3}}
	p := newTestPlanner(listings, featured, nil)

	first, err := p.Search(context.Background(), Request{Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 3, first.Results[0].ID)
	assert.True(t, first.Results[0].Featured)

	listings2 := &fakeListings{officiants: listings.officiants}
	featured2 := &fakeFeatured{ids: []int{3}}
	p2 := newTestPlanner(listings2, featured2, nil)

	second, err := p2.Search(context.Background(), Request{Limit: 2, Offset: 1})
	require.NoError(t, err)
	assert.Equal(t, 0, featured2.calls, "featured lookup is skipped past page one")
	assert.Equal(t, 2, second.Results[0].ID, "order unchanged past page one")
}

func TestExplicitCoordinatesBypassGeocoding(t *testing.T) {
	listings := &fakeListings{}
	resolver := &fakeResolver{}
	p := newTestPlanner(listings, nil, resolver)

	lat, lng := 43.6, -79.4
	_, err := p.Search(context.Background(), Request{
		Location: "Toronto",
		Lat:      &lat,
		Lng:      &lng,
		RadiusKm: 25,
	})
	require.NoError(t, err)

	assert.Equal(t, 0, resolver.placeCalls)
	assert.Equal(t, 0, resolver.postalCalls)
}
