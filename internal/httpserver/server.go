package httpserver

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"finitefield.org/podcast-catalog/internal/catalog"
	"finitefield.org/podcast-catalog/internal/dateutil"
	custommw "finitefield.org/podcast-catalog/internal/httpserver/middleware"
	"finitefield.org/podcast-catalog/internal/httpserver/ui"
	"finitefield.org/podcast-catalog/internal/platform/observability"
	"finitefield.org/podcast-catalog/internal/podcasts"
	"finitefield.org/podcast-catalog/internal/templates"
	"finitefield.org/podcast-catalog/public"
)

const (
	defaultReadTimeout  = 10 * time.Second
	defaultWriteTimeout = 30 * time.Second
	defaultIdleTimeout  = 60 * time.Second

	stylesheetURL = "/public/static/app.css"
)

// Config holds runtime options for the catalog HTTP server.
type Config struct {
	Address      string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	Service podcasts.Service
	Title   string
	// IntroMarkdown is rendered above the grid; nil uses the built-in intro.
	IntroMarkdown []byte
	HTMXSrc       string
	// Variant is the card tag used by the grid.
	Variant string
	Dates   *dateutil.Formatter
	Logger  *zap.Logger
}

// New constructs the HTTP server with middleware stack and embedded assets.
func New(cfg Config) (*http.Server, error) {
	if cfg.Service == nil {
		return nil, errors.New("httpserver: podcast service is required")
	}
	logger := observability.OrNop(cfg.Logger)

	intro := cfg.IntroMarkdown
	if intro == nil {
		intro = templates.DefaultIntro()
	}
	introHTML, err := templates.RenderIntro(intro)
	if err != nil {
		return nil, err
	}
	shell, err := templates.RenderShell(templates.ShellData{
		Title:         cfg.Title,
		StylesheetURL: stylesheetURL,
		HTMXSrc:       cfg.HTMXSrc,
		CloseURL:      ui.CloseFragmentPath,
		Intro:         introHTML,
	})
	if err != nil {
		return nil, err
	}

	factory, err := catalog.NewFactory(catalog.Config{
		Service:  cfg.Service,
		Shell:    shell,
		Variant:  cfg.Variant,
		Dates:    cfg.Dates,
		Decorate: ui.DecorateCard,
		Logger:   logger,
	})
	if err != nil {
		return nil, err
	}

	staticContent, err := public.StaticFS()
	if err != nil {
		return nil, fmt.Errorf("httpserver: embed static: %w", err)
	}

	router := chi.NewRouter()
	router.Use(chimw.RequestID)
	router.Use(chimw.RealIP)
	router.Use(observability.InjectLoggerMiddleware(logger))
	router.Use(observability.RequestLoggerMiddleware())
	router.Use(observability.RecoveryMiddleware(logger))
	router.Use(chimw.Timeout(60 * time.Second))

	router.Get("/healthz", ui.Healthz)
	router.Handle("/public/static/*", http.StripPrefix("/public/static/", custommw.StaticAssets(staticContent)))

	mountCatalogRoutes(router, ui.NewHandlers(factory))

	return &http.Server{
		Addr:         cfg.Address,
		Handler:      router,
		ReadTimeout:  durationOr(cfg.ReadTimeout, defaultReadTimeout),
		WriteTimeout: durationOr(cfg.WriteTimeout, defaultWriteTimeout),
		IdleTimeout:  durationOr(cfg.IdleTimeout, defaultIdleTimeout),
	}, nil
}

func mountCatalogRoutes(router chi.Router, h *ui.Handlers) {
	router.Group(func(r chi.Router) {
		r.Use(custommw.HTMX())
		r.Use(custommw.NoStore())

		r.Get("/", h.Page)
		RegisterFragment(r, ui.PodcastFragmentPattern, h.PodcastFragment)
		RegisterFragment(r, ui.CloseFragmentPath, h.CloseFragment)
	})
}

// RegisterFragment registers a GET handler intended for htmx fragment rendering.
func RegisterFragment(r chi.Router, pattern string, handler http.HandlerFunc) {
	r.With(custommw.RequireHTMX()).Get(pattern, handler)
}

func durationOr(value, fallback time.Duration) time.Duration {
	if value <= 0 {
		return fallback
	}
	return value
}
