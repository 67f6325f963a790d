package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jmorris/officiantfinder/internal/config"
	"github.com/jmorris/officiantfinder/internal/geo"
	"github.com/jmorris/officiantfinder/internal/logging"
	"github.com/jmorris/officiantfinder/internal/service"
	"github.com/jmorris/officiantfinder/internal/store"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Sync officiant data from the Ontario registry",
	Long: `Sync downloads the full registry of wedding officiants from the
Ontario Data Catalogue, geocodes any newly-seen municipalities (one
Nominatim request per second), and upserts everything into PostgreSQL.

The run is recorded in the sync ledger and is safe to re-run: rows are
upserted by their registry id.

Examples:
  # Run a full sync
  ./officiantfinder sync

  # Sync listing data without calling the geocoder
  ./officiantfinder sync --skip-geocode`,
	Run: runSync,
}

var skipGeocode bool

func init() {
	rootCmd.AddCommand(syncCmd)
	syncCmd.Flags().BoolVar(&skipGeocode, "skip-geocode", false, "Skip external geocoding (cached coordinates are still used)")
}

func runSync(cmd *cobra.Command, args []string) {
	cfg := config.Load()
	logger := logging.New()
	defer logger.Sync()
	log := logger.Sugar()

	// Set up context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle interrupt signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Info("received interrupt signal, shutting down...")
		cancel()
	}()

	log.Info("connecting to database...")
	db, err := store.NewDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer db.Close()

	// Create dependencies
	registry := service.NewRegistryClient(cfg.RegistryBaseURL, cfg.RegistryResource, cfg.RegistryPageSize)
	geocoder := geo.NewGeocoder(cfg.NominatimBaseURL, cfg.NominatimUserAgent, cfg.GeocodeDelay, log.Named("geocoder"))
	syncer := service.NewSyncer(
		registry,
		store.NewOfficiantStore(db),
		store.NewMunicipalityStore(db),
		store.NewLookupStore(db),
		store.NewSyncRunStore(db),
		geocoder,
		cfg.SyncStaleAfter,
		log.Named("sync"),
	).WithProgress(func(stage string, done, total int) {
		log.Infof("[%s] %d/%d", stage, done, total)
	}).WithSkipGeocode(skipGeocode)

	stats, err := syncer.Run(ctx)
	if err != nil {
		if errors.Is(err, service.ErrSyncRunning) {
			log.Warn("a sync is already running, exiting")
			os.Exit(1)
		}
		if ctx.Err() != nil {
			log.Warn("sync cancelled")
			os.Exit(1)
		}
		log.Fatalw("sync failed", "error", err)
	}

	log.Info("=== Sync Summary ===")
	log.Infof("Fetched:   %d", stats.TotalFetched)
	log.Infof("Inserted:  %d", stats.TotalInserted)
	log.Infof("Updated:   %d", stats.TotalUpdated)
	log.Infof("Geocoded:  %d", stats.Geocoded)
	log.Infof("Duration:  %s", stats.Duration)
}
