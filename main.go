package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"municipal-statements/internal/audit"
	"municipal-statements/internal/config"
	"municipal-statements/internal/observability/metrics"
	"municipal-statements/internal/statement/application"
	statement "municipal-statements/internal/statement/domain"
	"municipal-statements/internal/statement/infrastructure/assets"
	"municipal-statements/internal/statement/infrastructure/memory"
	"municipal-statements/internal/statement/infrastructure/pdf"
	"municipal-statements/internal/statement/infrastructure/postgres"
	"municipal-statements/internal/statement/interfaces"
	"municipal-statements/internal/statement/layout"
	"municipal-statements/internal/statement/payment"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}
	logger := cfg.NewLogger()
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("statements service stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ref, err := config.LoadReference(cfg.ReferenceFile)
	if err != nil {
		return err
	}

	var (
		db          *sql.DB
		store       application.DocumentStore
		auditLogger audit.Logger = audit.NopLogger{}
	)
	if cfg.UsesDatabase() {
		db, err = sql.Open("pgx", cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("db open: %w", err)
		}
		defer db.Close()
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err = db.PingContext(pingCtx)
		cancel()
		if err != nil {
			return fmt.Errorf("db ping: %w", err)
		}
		pgStore, err := postgres.NewDocumentStore(db, postgres.WithTable(cfg.DocumentsTable))
		if err != nil {
			return err
		}
		store = pgStore
		auditLogger = audit.NewRepository(db)
	} else {
		memStore, err := loadMemoryStore(cfg.FixtureFile)
		if err != nil {
			return err
		}
		logger.Warn("DATABASE_URL not set; serving documents from memory", "documents", memStore.Len())
		store = memStore
	}

	metrics.Init(db, cfg.DocumentsTable, logger)

	readers, err := application.NewSourceReaders(store, ref.Collections)
	if err != nil {
		return err
	}
	logger.Info("statement sources configured", "collections", readers.Collections())
	resolver, err := payment.NewResolver(cfg.PortalOrigin)
	if err != nil {
		return err
	}
	assetProvider := buildAssets(ctx, cfg, ref, logger)
	surfaces := func(model statement.StatementModel) layout.Surface {
		return pdf.NewSurface(
			pdf.WithCreationDate(model.GeneratedAt),
			pdf.WithMetadata("Statement "+model.AccountNumber, "Tax invoice "+model.TaxInvoiceNumber, ref.Municipality.Name),
		)
	}
	generator, err := application.NewGenerator(readers, resolver, surfaces,
		application.WithAssets(assetProvider),
		application.WithBranding(ref.Branding()),
		application.WithLogger(logger),
	)
	if err != nil {
		return err
	}
	statementHandler, err := interfaces.NewStatementHandler(generator, auditLogger,
		interfaces.WithRateLimit(cfg.RateLimitRequests, cfg.RateLimitWindow),
		interfaces.WithHandlerLogger(logger),
	)
	if err != nil {
		return err
	}

	router := chi.NewRouter()
	router.Use(
		middleware.RealIP,
		middleware.RequestID,
		interfaces.LoggingMiddleware(logger),
		middleware.Recoverer,
		middleware.Timeout(cfg.RequestTimeout),
	)
	statementHandler.MountRoutes(router)
	router.Handle("/metrics", promhttp.Handler())
	router.Get("/healthz", interfaces.HealthHandler)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("http listening", "addr", cfg.HTTPAddr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	logger.Info("shutting down")
	return server.Shutdown(shutdownCtx)
}

func loadMemoryStore(fixture string) (*memory.DocumentStore, error) {
	if fixture == "" {
		return memory.NewDocumentStore(), nil
	}
	return memory.LoadFixtureFile(fixture)
}

// buildAssets returns the logo provider chain, or nil when no source is
// usable so every logo renders as a placeholder.
func buildAssets(ctx context.Context, cfg *config.Config, ref config.Reference, logger *slog.Logger) application.AssetProvider {
	var provider assets.Provider
	if cfg.AssetBaseURL != "" {
		httpProvider, err := assets.NewHTTPProvider(cfg.AssetBaseURL, cfg.AssetTimeout)
		if err != nil {
			logger.Warn("asset http provider disabled", "error", err)
			return nil
		}
		provider = httpProvider
	} else {
		dirProvider, err := assets.NewDirProvider(cfg.AssetDir)
		if err != nil {
			logger.Warn("asset directory unavailable; logos render as placeholders", "dir", cfg.AssetDir, "error", err)
			return nil
		}
		provider = dirProvider
	}

	if cfg.RedisAddr == "" {
		return provider
	}
	client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	cache, err := assets.NewRedisCache(client, provider, cfg.AssetCacheTTL, logger)
	if err != nil {
		logger.Warn("asset cache disabled", "error", err)
		return provider
	}
	refreshCachedLogos(ctx, cache, ref, logger)
	return cache
}

// refreshCachedLogos drops cached copies of the logos named by the reference
// data so replaced files are served from the first request after a restart.
func refreshCachedLogos(ctx context.Context, cache *assets.RedisCache, ref config.Reference, logger *slog.Logger) {
	names := ref.AssetNames()
	if err := cache.Invalidate(ctx, names...); err != nil {
		logger.Warn("asset cache refresh failed", "assets", len(names), "error", err)
	}
}
