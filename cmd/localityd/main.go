// Command localityd serves the crowdsourced locality platform REST API.
package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/healthsites/localityd/internal/api"
	"github.com/healthsites/localityd/internal/config"
	"github.com/healthsites/localityd/internal/db"
	"github.com/healthsites/localityd/internal/db/migrations"
	"github.com/healthsites/localityd/internal/dbpool"
	"github.com/healthsites/localityd/internal/geocode"
	"github.com/healthsites/localityd/internal/service"
	"github.com/healthsites/localityd/internal/store"
	"github.com/healthsites/localityd/internal/ws"
)

const shutdownTimeout = 10 * time.Second

func main() {
	godotenv.Load() //nolint:errcheck // missing .env is fine.

	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("loading configuration")
	}

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.WithError(err).Warn("invalid log level, using info")
		level = logrus.InfoLevel
	}
	log.SetLevel(level)

	if err := run(log, cfg); err != nil {
		log.WithError(err).Fatal("localityd exited")
	}
}

func run(log *logrus.Logger, cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := dbpool.NewPool(ctx, cfg.DatabaseURL.Value())
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := db.RunMigrations(ctx, pool, log, migrations.FS); err != nil {
		return err
	}

	base := store.Base{Pool: pool, Log: log}
	localityStore := store.NewLocalityStore(base)
	schemaStore := store.NewSchemaStore(base)
	countryStore := store.NewCountryStore(base)
	statsStore := store.NewStatsStore(base)
	historyStore := store.NewHistoryStore(base)

	var geocoder geocode.Geocoder = geocode.Noop{}
	if cfg.GeocoderURL != "" {
		geocoder = geocode.NewHTTPGeocoder(cfg.GeocoderURL)
	}

	hub := ws.NewHub(log)
	go hub.Run(ctx)

	auditWorker := service.NewAuditWorker(log, cfg.AuditQueueSize)
	go auditWorker.Run(ctx)

	localitySvc := service.NewLocalityService(localityStore, schemaStore, countryStore, auditWorker, hub, cfg.DefaultDomain, log)
	schemaSvc := service.NewSchemaService(schemaStore, auditWorker, cfg.DefaultDomain, log)
	statsSvc := service.NewStatsService(statsStore, schemaStore, countryStore, geocoder, cfg.DefaultDomain, log)
	historySvc := service.NewHistoryService(historyStore)

	router := api.NewRouter(ctx, &api.RouterDeps{
		Log:         log,
		Pool:        pool,
		Hub:         hub,
		Localities:  localitySvc,
		Stats:       statsSvc,
		Schema:      schemaSvc,
		History:     historySvc,
		ActorLookup: &base,
		CORSOrigins: cfg.CORSOrigins,
		Version:     config.Version,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)

	go func() {
		log.WithFields(logrus.Fields{"addr": cfg.Addr(), "version": config.Version}).Info("localityd listening")

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("http server shutdown")
	}

	hub.Shutdown()

	return nil
}
