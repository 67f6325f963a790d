package cmd

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/jmorris/officiantfinder/internal/config"
	"github.com/jmorris/officiantfinder/internal/geo"
	"github.com/jmorris/officiantfinder/internal/handlers"
	"github.com/jmorris/officiantfinder/internal/logging"
	"github.com/jmorris/officiantfinder/internal/search"
	"github.com/jmorris/officiantfinder/internal/service"
	"github.com/jmorris/officiantfinder/internal/store"
)

var port string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the officiant search API server",
	Long:  `Start the web server that serves the officiant search and admin API.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := config.Load()
		logger := logging.New()
		defer logger.Sync()
		log := logger.Sugar()

		if port == "" {
			port = cfg.Port
		}

		db, err := store.NewDB(cfg.DatabaseURL)
		if err != nil {
			log.Fatalw("failed to connect to database", "error", err)
		}
		defer db.Close()

		// Stores
		officiantStore := store.NewOfficiantStore(db)
		municipalityStore := store.NewMunicipalityStore(db)
		lookupStore := store.NewLookupStore(db)
		syncRunStore := store.NewSyncRunStore(db)
		featuredStore := store.NewFeaturedStore(db)

		// Services
		geocoder := geo.NewGeocoder(cfg.NominatimBaseURL, cfg.NominatimUserAgent, cfg.GeocodeDelay, log.Named("geocoder"))
		planner := search.NewPlanner(officiantStore, featuredStore, geocoder, log.Named("search"))
		registry := service.NewRegistryClient(cfg.RegistryBaseURL, cfg.RegistryResource, cfg.RegistryPageSize)
		syncer := service.NewSyncer(registry, officiantStore, municipalityStore, lookupStore, syncRunStore, geocoder, cfg.SyncStaleAfter, log.Named("sync"))
		statsService := service.NewStatsService(db)

		app := fiber.New(fiber.Config{
			AppName: "Officiant Finder",
		})

		app.Use(recover.New())
		app.Use(fiberlogger.New())

		// Public API
		app.Get("/api/search", handlers.SearchHandler(planner))
		app.Get("/api/officiants/:id", handlers.OfficiantHandler(officiantStore))
		app.Get("/api/affiliations", handlers.AffiliationsHandler(lookupStore))
		app.Get("/api/municipalities", handlers.MunicipalitiesHandler(lookupStore))

		// Admin API
		app.Post("/api/admin/sync", handlers.SyncTriggerHandler(syncer))
		app.Get("/api/admin/sync", handlers.SyncStatusHandler(syncRunStore, syncer))
		app.Get("/api/admin/analytics", handlers.AnalyticsHandler(statsService))

		// Operational endpoints
		app.Get("/healthz", handlers.HealthHandler(db))
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

		log.Infow("starting server", "port", port)
		if err := app.Listen(":" + port); err != nil {
			log.Fatalw("failed to start server", "error", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVarP(&port, "port", "p", "", "Port to run the server on (defaults to PORT env)")
}
