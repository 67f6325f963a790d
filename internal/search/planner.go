package search

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/jmorris/officiantfinder/internal/geo"
	"github.com/jmorris/officiantfinder/internal/model"
	"github.com/jmorris/officiantfinder/internal/store"
	"github.com/jmorris/officiantfinder/internal/telemetry"
)

const (
	// SlotTypeSearchTop is the placement shown at the top of search results
	SlotTypeSearchTop = "search_top"

	defaultLimit = 50
)

// ListingSource is the data-store surface the planner needs
type ListingSource interface {
	List(ctx context.Context, f store.Filter, limit, offset int) ([]model.Officiant, error)
	Count(ctx context.Context, f store.Filter) (int, error)
}

// FeaturedProvider supplies active sponsored listing ids, pre-scoped by
// municipality/affiliation and time window
type FeaturedProvider interface {
	ActiveFeaturedIDs(ctx context.Context, municipality, affiliation, slotType string) ([]int, error)
}

// Request holds normalized search parameters. Lat/Lng, when set, bypass
// geocoding of Location.
type Request struct {
	Location    string
	Lat         *float64
	Lng         *float64
	Affiliation string
	Query       string
	RadiusKm    float64
	Limit       int
	Offset      int
}

// Result is one page of search results plus the total match count
type Result struct {
	Results []model.SearchResult `json:"results"`
	Total   int                  `json:"total"`
}

// Planner executes searches, choosing between a pushed-down attribute query
// and an in-memory radius search.
type Planner struct {
	listings ListingSource
	featured FeaturedProvider
	resolver geo.Resolver
	log      *zap.SugaredLogger
}

// NewPlanner creates a Planner
func NewPlanner(listings ListingSource, featured FeaturedProvider, resolver geo.Resolver, log *zap.SugaredLogger) *Planner {
	return &Planner{
		listings: listings,
		featured: featured,
		resolver: resolver,
		log:      log,
	}
}

// Search runs one search. Location text is classified as postal code or
// place name and resolved to coordinates; a failed resolution degrades the
// search to attribute filtering rather than erroring.
func (p *Planner) Search(ctx context.Context, req Request) (*Result, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	offset := req.Offset
	if offset < 0 {
		offset = 0
	}

	var coords *geo.Coordinates
	if req.Lat != nil && req.Lng != nil {
		coords = &geo.Coordinates{Lat: *req.Lat, Lng: *req.Lng}
	} else if req.Location != "" {
		if geo.IsPostalCode(req.Location) {
			coords = p.resolver.ResolvePostalCode(ctx, req.Location)
		} else {
			coords = p.resolver.ResolvePlace(ctx, req.Location)
		}
	}

	radiusSearch := coords != nil && req.RadiusKm > 0

	filter := store.Filter{
		Affiliation: req.Affiliation,
		Query:       req.Query,
	}
	if !radiusSearch && coords == nil && req.Location != "" {
		filter.Municipality = req.Location
	}

	var result *Result
	var err error
	if radiusSearch {
		telemetry.SearchRequests.WithLabelValues("radius").Inc()
		result, err = p.radiusSearch(ctx, filter, *coords, req.RadiusKm, limit, offset)
	} else {
		telemetry.SearchRequests.WithLabelValues("attribute").Inc()
		result, err = p.attributeSearch(ctx, filter, limit, offset)
	}
	if err != nil {
		return nil, err
	}

	// Sponsored placement applies to the first page only
	if offset == 0 {
		p.promoteFeatured(ctx, req, result)
	}

	return result, nil
}

// attributeSearch pushes pagination down to the store and takes the total
// from a count of the same filter
func (p *Planner) attributeSearch(ctx context.Context, filter store.Filter, limit, offset int) (*Result, error) {
	officiants, err := p.listings.List(ctx, filter, limit, offset)
	if err != nil {
		return nil, err
	}

	total, err := p.listings.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	results := make([]model.SearchResult, 0, len(officiants))
	for _, o := range officiants {
		results = append(results, toSearchResult(o, nil))
	}

	return &Result{Results: results, Total: total}, nil
}

// radiusSearch fetches the full filtered candidate set, scores it by
// distance, and paginates in memory. Listings without coordinates are
// invisible here.
func (p *Planner) radiusSearch(ctx context.Context, filter store.Filter, origin geo.Coordinates, radiusKm float64, limit, offset int) (*Result, error) {
	officiants, err := p.listings.List(ctx, filter, 0, 0)
	if err != nil {
		return nil, err
	}

	var within []model.SearchResult
	for _, o := range officiants {
		if !o.Lat.Valid || !o.Lng.Valid {
			continue
		}
		d := geo.Distance(origin.Lat, origin.Lng, o.Lat.Float64, o.Lng.Float64)
		if d > radiusKm {
			continue
		}
		within = append(within, toSearchResult(o, &d))
	}

	// Ascending by distance, id as the deterministic tie-break
	sort.Slice(within, func(i, j int) bool {
		if *within[i].DistanceKm != *within[j].DistanceKm {
			return *within[i].DistanceKm < *within[j].DistanceKm
		}
		return within[i].ID < within[j].ID
	})

	total := len(within)

	if offset >= len(within) {
		within = []model.SearchResult{}
	} else {
		within = within[offset:]
	}
	if len(within) > limit {
		within = within[:limit]
	}

	return &Result{Results: within, Total: total}, nil
}

// promoteFeatured moves sponsored listings to the front of the page.
// A provider failure downgrades to unsponsored ordering.
func (p *Planner) promoteFeatured(ctx context.Context, req Request, result *Result) {
	ids, err := p.featured.ActiveFeaturedIDs(ctx, req.Location, req.Affiliation, SlotTypeSearchTop)
	if err != nil {
		p.log.Warnw("featured lookup failed", "error", err)
		return
	}
	if len(ids) == 0 {
		return
	}

	result.Results = applyFeatured(result.Results, ids)
}

func toSearchResult(o model.Officiant, distance *float64) model.SearchResult {
	r := model.SearchResult{
		ID:           o.ID,
		FirstName:    o.FirstName,
		LastName:     o.LastName,
		Municipality: o.Municipality,
		Affiliation:  o.Affiliation,
	}
	if o.Lat.Valid {
		lat := o.Lat.Float64
		r.Lat = &lat
	}
	if o.Lng.Valid {
		lng := o.Lng.Float64
		r.Lng = &lng
	}
	if distance != nil {
		d := *distance
		r.DistanceKm = &d
	}
	return r
}
