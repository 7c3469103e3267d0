// Package catalog wires the grid, cards and modal of one page together.
package catalog

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"finitefield.org/podcast-catalog/internal/components/preview"
	"finitefield.org/podcast-catalog/internal/dateutil"
	"finitefield.org/podcast-catalog/internal/dom"
	"finitefield.org/podcast-catalog/internal/genres"
	"finitefield.org/podcast-catalog/internal/grid"
	"finitefield.org/podcast-catalog/internal/modal"
	"finitefield.org/podcast-catalog/internal/platform/observability"
	"finitefield.org/podcast-catalog/internal/podcasts"
)

// Config holds the startup-time inputs shared by every App built by a Factory.
type Config struct {
	Service podcasts.Service
	// Shell is the rendered page markup containing the grid container and modal anchors.
	Shell []byte
	// Variant is the card tag, preview.TagPreview when empty.
	Variant string
	Dates   *dateutil.Formatter
	// Decorate runs for every card before it is attached.
	Decorate grid.Decorator
	Logger   *zap.Logger
}

// Factory builds one App per page view. It defines the custom elements once and is safe for
// concurrent use.
type Factory struct {
	cfg      Config
	registry *dom.Registry
}

// NewFactory validates cfg and defines the card elements. Defining twice is a startup error.
func NewFactory(cfg Config) (*Factory, error) {
	if cfg.Service == nil {
		return nil, errors.New("catalog: podcast service is required")
	}
	if len(bytes.TrimSpace(cfg.Shell)) == 0 {
		return nil, errors.New("catalog: page shell is required")
	}
	if cfg.Variant == "" {
		cfg.Variant = preview.TagPreview
	}
	if !preview.IsVariant(cfg.Variant) {
		return nil, fmt.Errorf("catalog: unknown card variant %q", cfg.Variant)
	}
	if cfg.Dates == nil {
		cfg.Dates = dateutil.Default()
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	registry := dom.NewRegistry()
	if err := preview.Define(registry, preview.WithDateFormatter(cfg.Dates)); err != nil {
		return nil, fmt.Errorf("catalog: define card elements: %w", err)
	}
	return &Factory{cfg: cfg, registry: registry}, nil
}

// ErrNotRendered reports a podcast that exists in the catalog but has no card on the page.
var ErrNotRendered = errors.New("catalog: podcast card not rendered")

// App is the state of a single page: its document, grid and modal. An App is used by one
// goroutine at a time.
type App struct {
	doc      *dom.Document
	grid     *grid.Grid
	modal    *modal.Modal
	podcasts []podcasts.Podcast
	service  podcasts.Service
	logger   *zap.Logger
}

// New parses the shell, renders the full catalog into the grid and connects selection to the
// modal. The logger is taken from ctx when present.
func (f *Factory) New(ctx context.Context) (*App, error) {
	logger := f.cfg.Logger
	if fromCtx, ok := observability.LoggerFromContext(ctx); ok {
		logger = fromCtx
	}

	list, err := f.cfg.Service.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("catalog: list podcasts: %w", err)
	}
	genreList, err := f.cfg.Service.Genres(ctx)
	if err != nil {
		return nil, fmt.Errorf("catalog: list genres: %w", err)
	}

	doc, err := dom.Parse(bytes.NewReader(f.cfg.Shell), f.registry, dom.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("catalog: parse shell: %w", err)
	}

	genreService := genres.NewService(genreList)
	app := &App{doc: doc, podcasts: list, service: f.cfg.Service, logger: logger}
	app.modal = modal.New(doc, genreService, f.cfg.Dates)
	app.grid = grid.New(doc, grid.DefaultContainerID, genreService, f.cfg.Dates, app.modal.Open,
		grid.WithVariant(f.cfg.Variant),
		grid.WithDecorator(f.cfg.Decorate),
	)
	app.grid.Render(list)
	return app, nil
}

// Document returns the page document.
func (a *App) Document() *dom.Document { return a.doc }

// Grid returns the page grid.
func (a *App) Grid() *grid.Grid { return a.grid }

// Modal returns the page modal.
func (a *App) Modal() *modal.Modal { return a.modal }

// Podcasts returns the records rendered into the grid, in dataset order.
func (a *App) Podcasts() []podcasts.Podcast { return a.podcasts }

// Select clicks the card for id, which opens the modal through the grid's selection handler.
// An id missing from the grid is looked up in the catalog: unknown ids yield
// podcasts.ErrPodcastNotFound, known ones ErrNotRendered.
func (a *App) Select(ctx context.Context, id string) error {
	card, ok := a.grid.Card(id)
	if !ok {
		if _, err := a.service.Get(ctx, id); err != nil {
			return fmt.Errorf("catalog: select %s: %w", id, err)
		}
		a.logger.Warn("podcast has no card", zap.String("podcast_id", id))
		return fmt.Errorf("%w: %s", ErrNotRendered, id)
	}
	card.Click()
	a.logger.Debug("podcast selected", zap.String("podcast_id", id))
	if !a.modal.IsOpen() {
		return fmt.Errorf("catalog: modal did not open for %s", id)
	}
	return nil
}

// Close closes the modal.
func (a *App) Close() {
	a.modal.Close()
}
