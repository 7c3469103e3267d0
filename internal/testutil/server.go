package testutil

import (
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"finitefield.org/podcast-catalog/internal/httpserver"
	"finitefield.org/podcast-catalog/internal/podcasts"
)

// ServerOption customises the HTTP server configuration for tests.
type ServerOption func(*httpserver.Config)

// WithService overrides the podcast catalog.
func WithService(service podcasts.Service) ServerOption {
	return func(cfg *httpserver.Config) {
		cfg.Service = service
	}
}

// WithVariant selects the card element used by the grid.
func WithVariant(tag string) ServerOption {
	return func(cfg *httpserver.Config) {
		cfg.Variant = tag
	}
}

// WithLogger routes server logs to logger.
func WithLogger(logger *zap.Logger) ServerOption {
	return func(cfg *httpserver.Config) {
		cfg.Logger = logger
	}
}

// NewServer constructs an httptest server running the catalog HTTP stack with the embedded
// dataset.
func NewServer(t testing.TB, opts ...ServerOption) *httptest.Server {
	t.Helper()

	svc, err := podcasts.NewStaticService()
	if err != nil {
		t.Fatalf("static service: %v", err)
	}

	cfg := httpserver.Config{
		Address: ":0",
		Title:   "Podcasts",
		Service: svc,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	srv, err := httpserver.New(cfg)
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	ts := httptest.NewServer(srv.Handler)
	t.Cleanup(ts.Close)
	return ts
}
