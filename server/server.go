package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/Aman-ydav/CareSync-sub000/config"
	"github.com/Aman-ydav/CareSync-sub000/config/db"
	redisx "github.com/Aman-ydav/CareSync-sub000/config/redis"
	"github.com/Aman-ydav/CareSync-sub000/logger"
	"github.com/Aman-ydav/CareSync-sub000/metrics"
	"github.com/Aman-ydav/CareSync-sub000/repository"
	"github.com/Aman-ydav/CareSync-sub000/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/mongo"
)

// Options toggles the parts of the process Start brings up.
type Options struct {
	Config *config.Config

	MongoEnabled     bool
	CacheEnabled     bool
	WebServerEnabled bool

	MigrationEnabled bool
	MigrationHandler func(ctx context.Context, deps *Deps) error

	JobsEnabled bool
	// JobsHandler starts background jobs and returns the func that stops them.
	JobsHandler func(deps *Deps) (stop func(ctx context.Context), err error)

	WebServerPreHandler func(r *gin.Engine, deps *Deps)
}

// Deps are the connections and services built during startup.
type Deps struct {
	Config   *config.Config
	Database *mongo.Database
	Cache    *redisx.Client
	Metrics  *metrics.Metrics
	Services *services.Services
}

func GetDefaultOptions(cfg *config.Config) Options {
	return Options{
		Config:           cfg,
		MongoEnabled:     true,
		CacheEnabled:     cfg.RedisEnabled,
		WebServerEnabled: true,
		MigrationEnabled: cfg.MigrationsEnabled,
		JobsEnabled:      cfg.JobsEnabled,
	}
}

/*
* Connect Mongo and, when enabled, Redis
* Build the services and run migrations
* Start jobs, then serve HTTP until SIGINT/SIGTERM
* Shut everything down within the configured timeout
 */
func Start(opts Options) error {
	cfg := opts.Config
	if cfg == nil {
		return errors.New("server: config is required")
	}
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	deps := &Deps{Config: cfg, Metrics: NewMetrics()}

	var mongoClient *mongo.Client
	if opts.MongoEnabled {
		client, database, err := db.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase, cfg.MongoTimeout)
		if err != nil {
			return err
		}
		mongoClient, deps.Database = client, database
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		db.Disconnect(shutdownCtx, mongoClient)
	}()

	if opts.CacheEnabled {
		cache, err := redisx.Connect(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.CacheTTL)
		if err != nil {
			return err
		}
		deps.Cache = cache
		defer func() {
			if err := cache.Close(); err != nil {
				log.Error().Err(err).Msg("Error while closing Redis")
			}
		}()
	}

	closeAssistant, err := BuildServices(ctx, deps)
	if err != nil {
		return err
	}
	defer closeAssistant()

	if opts.MigrationEnabled && opts.MigrationHandler != nil {
		if err := opts.MigrationHandler(ctx, deps); err != nil {
			return fmt.Errorf("migrations: %w", err)
		}
	}

	if !opts.WebServerEnabled {
		return nil
	}

	if opts.JobsEnabled && opts.JobsHandler != nil {
		stopJobs, err := opts.JobsHandler(deps)
		if err != nil {
			return fmt.Errorf("jobs: %w", err)
		}
		defer func() {
			jobsCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
			defer cancel()
			stopJobs(jobsCtx)
		}()
	}

	engine := NewEngine(cfg, deps.Metrics)
	if opts.WebServerPreHandler != nil {
		opts.WebServerPreHandler(engine, deps)
	}
	return serve(ctx, cfg, engine)
}

// BuildServices wires the repository, cache, slot locker and assistant into deps.Services.
func BuildServices(ctx context.Context, deps *Deps) (closeAssistant func(), err error) {
	cfg := deps.Config
	closeAssistant = func() {}

	opts := services.Options{
		Recorder:           deps.Metrics,
		EnforceHoursForAll: cfg.EnforceHoursForAll,
		AssistantTimeout:   cfg.AssistantRequestTimeout,
	}
	if deps.Cache != nil {
		opts.Cache = deps.Cache
		opts.Locker = redisx.NewLocker(deps.Cache.Redis(), cfg.SlotLockTTL, cfg.SlotLockWait)
	}
	if cfg.AssistantEnabled() {
		gemini, err := services.NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			return closeAssistant, fmt.Errorf("assistant: %w", err)
		}
		opts.Assistant = gemini
		closeAssistant = func() {
			if err := gemini.Close(); err != nil {
				log.Error().Err(err).Msg("Error while closing the assistant client")
			}
		}
	} else {
		log.Info().Msg("GEMINI_API_KEY not set, assistant endpoints are disabled")
	}

	var stores services.Stores
	if deps.Database != nil {
		repo := repository.New(deps.Database)
		stores = services.Stores{
			Users:         repo,
			Appointments:  repo,
			HealthRecords: repo,
			Hospitals:     repo,
			Stats:         repo,
		}
	}
	deps.Services = services.New(stores, opts)
	return closeAssistant, nil
}

func NewMetrics() *metrics.Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return metrics.New(reg)
}

// NewEngine builds the gin engine with recovery, access logging, metrics and CORS.
func NewEngine(cfg *config.Config, m *metrics.Metrics) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), logger.RequestLogger(), m.Middleware())
	r.Use(cors.New(corsConfig(cfg.CORSOrigins)))
	return r
}

func corsConfig(origins []string) cors.Config {
	c := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", logger.RequestIDHeader},
		ExposeHeaders: []string{logger.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		c.AllowAllOrigins = true
		return c
	}
	c.AllowOrigins = origins
	c.AllowCredentials = true
	return c
}

func serve(ctx context.Context, cfg *config.Config, handler http.Handler) error {
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
