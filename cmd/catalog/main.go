package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	_ "time/tzdata"

	"go.uber.org/zap"

	"finitefield.org/podcast-catalog/internal/dateutil"
	"finitefield.org/podcast-catalog/internal/httpserver"
	"finitefield.org/podcast-catalog/internal/platform/config"
	"finitefield.org/podcast-catalog/internal/platform/observability"
	"finitefield.org/podcast-catalog/internal/podcasts"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load(ctx)
	if err != nil {
		var invalid *config.ValidationError
		if errors.As(err, &invalid) {
			fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", invalid.Fields())
		} else {
			fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		}
		os.Exit(1)
	}

	level := cfg.Log.Level
	if cfg.Dev {
		level = "debug"
	}
	baseLogger, err := observability.NewLogger(level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialise logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = baseLogger.Sync()
	}()
	logger := baseLogger.Named("catalog")

	service, err := loadCatalog(cfg.Catalog)
	if err != nil {
		logger.Fatal("failed to load podcast catalog", zap.Error(err))
	}

	dates, err := dateutil.New(
		dateutil.WithLocale(cfg.Dates.Locale),
		dateutil.WithTimeZone(cfg.Dates.TimeZone),
		dateutil.WithPrefix(cfg.Dates.Prefix),
	)
	if err != nil {
		logger.Fatal("failed to configure date formatting", zap.Error(err))
	}

	intro, err := loadIntro(cfg.Catalog.IntroFile)
	if err != nil {
		logger.Fatal("failed to read intro", zap.Error(err))
	}

	srv, err := httpserver.New(httpserver.Config{
		Address:       cfg.Server.Address,
		ReadTimeout:   cfg.Server.ReadTimeout,
		WriteTimeout:  cfg.Server.WriteTimeout,
		IdleTimeout:   cfg.Server.IdleTimeout,
		Service:       service,
		Title:         "Podcasts",
		IntroMarkdown: intro,
		HTMXSrc:       cfg.Server.HTMXSrc,
		Variant:       cfg.Catalog.CardVariant,
		Dates:         dates,
		Logger:        logger,
	})
	if err != nil {
		logger.Fatal("failed to build http server", zap.Error(err))
	}

	sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("http server failed", zap.Error(err))
		}
	}()

	logger.Info("catalog server listening",
		zap.String("addr", cfg.Server.Address),
		zap.String("card_variant", cfg.Catalog.CardVariant),
		zap.Bool("dev", cfg.Dev),
	)

	<-sigCtx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
		cancel()
		stop()
		os.Exit(1)
	}
	logger.Info("catalog server stopped")
}

func loadCatalog(cfg config.CatalogConfig) (*podcasts.StaticService, error) {
	if cfg.DatasetFile == "" {
		return podcasts.NewStaticService()
	}
	return podcasts.LoadStaticService(cfg.DatasetFile)
}

// loadIntro returns nil when no file is configured so the built-in intro is used.
func loadIntro(path string) ([]byte, error) {
	if path == "" {
		return nil, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read intro %s: %w", path, err)
	}
	return raw, nil
}
