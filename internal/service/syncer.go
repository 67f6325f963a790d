package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/jmorris/officiantfinder/internal/geo"
	"github.com/jmorris/officiantfinder/internal/model"
	"github.com/jmorris/officiantfinder/internal/telemetry"
)

const upsertBatchSize = 500

// ErrSyncRunning signals that a sync run is already in progress. It is a
// caller condition, not a system failure.
var ErrSyncRunning = errors.New("sync already running")

// SyncStats tracks the outcome of one sync run
type SyncStats struct {
	TotalFetched  int           `json:"totalFetched"`
	TotalInserted int           `json:"totalInserted"`
	TotalUpdated  int           `json:"totalUpdated"`
	Geocoded      int           `json:"geocodedCount"`
	Duration      time.Duration `json:"-"`
}

// registryFetcher pulls the full upstream registry
type registryFetcher interface {
	FetchAll(ctx context.Context, onPage func(fetched, total int)) ([]model.RegistryRecord, error)
}

// listingStore is the officiant-table surface sync needs
type listingStore interface {
	ExistingOntarioIDs(ctx context.Context) (map[int]bool, error)
	UpsertBatch(ctx context.Context, officiants []model.Officiant) error
	DistinctAffiliations(ctx context.Context) ([]string, error)
	DistinctMunicipalities(ctx context.Context) ([]string, error)
}

// geocodeStore is the durable geocode cache
type geocodeStore interface {
	LoadAll(ctx context.Context) (map[string]geo.Coordinates, error)
	Upsert(ctx context.Context, name string, coords geo.Coordinates) error
}

// lookupStore refreshes the denormalized autocomplete tables
type lookupStore interface {
	ReplaceAffiliations(ctx context.Context, names []string) error
	ReplaceMunicipalities(ctx context.Context, names []string) error
}

// runLedger records sync run outcomes
type runLedger interface {
	CreateRun(ctx context.Context) (int, error)
	CompleteRun(ctx context.Context, id, fetched, inserted, updated int) error
	FailRun(ctx context.Context, id int, message string) error
	LatestRunning(ctx context.Context) (*model.SyncRun, error)
}

// batchResolver is the geocoder surface sync needs
type batchResolver interface {
	SeedPlaces(places map[string]geo.Coordinates)
	CachedPlace(name string) *geo.Coordinates
	ResolveAll(ctx context.Context, names []string, onResolved func(name string, coords geo.Coordinates) error) (int, error)
}

// Progress is an optional observer invoked as sync stages advance. The
// orchestrator has no behavioral dependency on it.
type Progress func(stage string, done, total int)

// Syncer orchestrates the full registry re-pull: fetch, geocode, upsert,
// refresh lookups, and record the run on the ledger.
type Syncer struct {
	registry    registryFetcher
	listings    listingStore
	geocodes    geocodeStore
	lookups     lookupStore
	ledger      runLedger
	resolver    batchResolver
	staleAfter  time.Duration
	log         *zap.SugaredLogger
	progress    Progress
	skipGeocode bool
}

// NewSyncer creates a Syncer. staleAfter is how long a "running" ledger row
// is trusted before readers treat it as abandoned.
func NewSyncer(registry registryFetcher, listings listingStore, geocodes geocodeStore, lookups lookupStore, ledger runLedger, resolver batchResolver, staleAfter time.Duration, log *zap.SugaredLogger) *Syncer {
	return &Syncer{
		registry:   registry,
		listings:   listings,
		geocodes:   geocodes,
		lookups:    lookups,
		ledger:     ledger,
		resolver:   resolver,
		staleAfter: staleAfter,
		log:        log,
	}
}

// WithProgress sets the progress observer
func (s *Syncer) WithProgress(p Progress) *Syncer {
	s.progress = p
	return s
}

// WithSkipGeocode disables external geocoding for the run. Coordinates
// already in the durable cache are still attached.
func (s *Syncer) WithSkipGeocode(skip bool) *Syncer {
	s.skipGeocode = skip
	return s
}

// Run executes one full sync. Row-level idempotent: re-running with
// unchanged upstream data rewrites the same rows. Returns ErrSyncRunning if
// the ledger shows a live run.
func (s *Syncer) Run(ctx context.Context) (*SyncStats, error) {
	running, err := s.IsSyncRunning(ctx)
	if err != nil {
		return nil, err
	}
	if running {
		return nil, ErrSyncRunning
	}

	runID, err := s.ledger.CreateRun(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create sync run: %w", err)
	}

	start := time.Now()
	stats, err := s.run(ctx)
	if err != nil {
		if failErr := s.ledger.FailRun(ctx, runID, err.Error()); failErr != nil {
			s.log.Errorw("failed to record sync failure", "run", runID, "error", failErr)
		}
		telemetry.SyncRuns.WithLabelValues(model.SyncStatusFailed).Inc()
		return nil, err
	}

	stats.Duration = time.Since(start)
	if err := s.ledger.CompleteRun(ctx, runID, stats.TotalFetched, stats.TotalInserted, stats.TotalUpdated); err != nil {
		return nil, fmt.Errorf("failed to complete sync run: %w", err)
	}
	telemetry.SyncRuns.WithLabelValues(model.SyncStatusCompleted).Inc()

	s.log.Infow("sync completed",
		"fetched", stats.TotalFetched,
		"inserted", stats.TotalInserted,
		"updated", stats.TotalUpdated,
		"geocoded", stats.Geocoded,
		"duration", stats.Duration)

	return stats, nil
}

func (s *Syncer) run(ctx context.Context) (*SyncStats, error) {
	stats := &SyncStats{}

	// Fetch the entire registry
	s.log.Info("fetching registry...")
	records, err := s.registry.FetchAll(ctx, func(fetched, total int) {
		s.report("fetch", fetched, total)
	})
	if err != nil {
		return nil, fmt.Errorf("registry fetch failed: %w", err)
	}
	stats.TotalFetched = len(records)
	s.log.Infow("registry fetched", "records", len(records))

	// Distinct municipalities across the fetched set
	municipalities := distinctMunicipalities(records)

	// Warm the resolver from the durable cache
	cached, err := s.geocodes.LoadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load geocode cache: %w", err)
	}
	s.resolver.SeedPlaces(cached)

	// Resolve what the cache does not cover, persisting each success
	if s.skipGeocode {
		s.log.Info("skipping geocoding")
	} else {
		s.log.Infow("geocoding municipalities", "distinct", len(municipalities), "cached", len(cached))
		resolved, err := s.resolver.ResolveAll(ctx, municipalities, func(name string, coords geo.Coordinates) error {
			return s.geocodes.Upsert(ctx, name, coords)
		})
		if err != nil {
			return nil, fmt.Errorf("geocoding failed: %w", err)
		}
		s.log.Infow("geocoding done", "newly_resolved", resolved)
	}

	// Attach coordinates and build listing rows
	officiants := make([]model.Officiant, len(records))
	for i, r := range records {
		o := model.Officiant{
			OntarioID:    r.OntarioID,
			FirstName:    r.FirstName,
			LastName:     r.LastName,
			Municipality: r.Municipality,
			Affiliation:  r.Affiliation,
		}
		if coords := s.resolver.CachedPlace(r.Municipality); coords != nil {
			o.Lat = sql.NullFloat64{Float64: coords.Lat, Valid: true}
			o.Lng = sql.NullFloat64{Float64: coords.Lng, Valid: true}
			stats.Geocoded++
		}
		officiants[i] = o
	}

	// Upsert in batches, counting inserts vs updates against the
	// pre-existing id set
	existing, err := s.listings.ExistingOntarioIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load existing ids: %w", err)
	}

	for i := 0; i < len(officiants); i += upsertBatchSize {
		end := i + upsertBatchSize
		if end > len(officiants) {
			end = len(officiants)
		}
		batch := officiants[i:end]

		for _, o := range batch {
			if existing[o.OntarioID] {
				stats.TotalUpdated++
			} else {
				stats.TotalInserted++
			}
		}

		if err := s.listings.UpsertBatch(ctx, batch); err != nil {
			return nil, fmt.Errorf("upsert failed: %w", err)
		}
		telemetry.ListingsUpserted.Add(float64(len(batch)))

		s.report("upsert", end, len(officiants))
	}

	// Refresh the denormalized lookup tables from the final listing set
	if err := s.refreshLookups(ctx); err != nil {
		return nil, err
	}

	return stats, nil
}

func (s *Syncer) refreshLookups(ctx context.Context) error {
	affiliations, err := s.listings.DistinctAffiliations(ctx)
	if err != nil {
		return fmt.Errorf("failed to read affiliations: %w", err)
	}
	if err := s.lookups.ReplaceAffiliations(ctx, affiliations); err != nil {
		return fmt.Errorf("failed to refresh affiliations: %w", err)
	}

	municipalities, err := s.listings.DistinctMunicipalities(ctx)
	if err != nil {
		return fmt.Errorf("failed to read municipalities: %w", err)
	}
	if err := s.lookups.ReplaceMunicipalities(ctx, municipalities); err != nil {
		return fmt.Errorf("failed to refresh municipalities: %w", err)
	}

	return nil
}

// IsSyncRunning reports whether a live run exists. A run older than the
// staleness threshold is reclassified as failed and reported not-running,
// so a crashed process cannot block future runs.
func (s *Syncer) IsSyncRunning(ctx context.Context) (bool, error) {
	run, err := s.ledger.LatestRunning(ctx)
	if err != nil {
		return false, err
	}
	if run == nil {
		return false, nil
	}

	if time.Since(run.StartedAt) > s.staleAfter {
		msg := fmt.Sprintf("sync timed out (exceeded %s)", s.staleAfter)
		if err := s.ledger.FailRun(ctx, run.ID, msg); err != nil {
			s.log.Errorw("failed to reclassify stale run", "run", run.ID, "error", err)
		}
		return false, nil
	}

	return true, nil
}

func (s *Syncer) report(stage string, done, total int) {
	if s.progress != nil {
		s.progress(stage, done, total)
	}
}

// distinctMunicipalities returns the unique non-blank municipality strings
// in first-seen order
func distinctMunicipalities(records []model.RegistryRecord) []string {
	seen := make(map[string]bool)
	var names []string
	for _, r := range records {
		if r.Municipality == "" || seen[r.Municipality] {
			continue
		}
		seen[r.Municipality] = true
		names = append(names, r.Municipality)
	}
	return names
}
