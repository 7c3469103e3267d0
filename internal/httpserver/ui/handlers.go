package ui

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.uber.org/zap"

	"finitefield.org/podcast-catalog/internal/catalog"
	"finitefield.org/podcast-catalog/internal/components/preview"
	"finitefield.org/podcast-catalog/internal/dom"
	custommw "finitefield.org/podcast-catalog/internal/httpserver/middleware"
	"finitefield.org/podcast-catalog/internal/modal"
	"finitefield.org/podcast-catalog/internal/platform/observability"
	"finitefield.org/podcast-catalog/internal/podcasts"
	"finitefield.org/podcast-catalog/internal/templates"
)

// Routes used by the page and its htmx attributes.
const (
	PodcastFragmentPattern = "/fragments/podcasts/{id}"
	CloseFragmentPath      = "/fragments/modal/close"
	SelectQueryParam       = "podcast"
)

const meterName = "finitefield.org/podcast-catalog/internal/httpserver/ui"

// Handlers exposes the page and fragment handlers. Each request gets its own catalog.App.
type Handlers struct {
	factory    *catalog.Factory
	selections metric.Int64Counter
}

// NewHandlers wires the handler set. Selections are counted on the global meter provider.
func NewHandlers(factory *catalog.Factory) *Handlers {
	selections, err := otel.Meter(meterName).Int64Counter(
		"catalog.podcast.selections",
		metric.WithDescription("Podcasts opened in the detail modal."),
	)
	if err != nil {
		selections = noop.Int64Counter{}
	}
	return &Handlers{factory: factory, selections: selections}
}

// PodcastFragmentPath returns the fragment URL that opens the modal for id.
func PodcastFragmentPath(id string) string {
	return strings.Replace(PodcastFragmentPattern, "{id}", url.PathEscape(id), 1)
}

// PageURL returns the deep link that renders the page with id selected.
func PageURL(id string) string {
	if id == "" {
		return "/"
	}
	return "/?" + url.Values{SelectQueryParam: {id}}.Encode()
}

// DecorateCard makes a card host request the modal fragment when clicked.
func DecorateCard(card *preview.Card, p podcasts.Podcast) {
	host := card.Host()
	dom.SetAttr(host, "role", "button")
	dom.SetAttr(host, "tabindex", "0")
	dom.SetAttr(host, "hx-get", PodcastFragmentPath(p.ID))
	dom.SetAttr(host, "hx-trigger", "click, keyup[key=='Enter']")
	dom.SetAttr(host, "hx-target", "#"+modal.IDRoot)
	dom.SetAttr(host, "hx-swap", "outerHTML")
	dom.SetAttr(host, "hx-push-url", PageURL(p.ID))
}

// Page renders the catalog. A ?podcast=<id> query opens the modal for that podcast; an
// unknown id renders the closed page with 404. An htmx request aimed at the modal gets only
// the modal, except for history restores, which always need the full page.
func (h *Handlers) Page(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := observability.FromContext(ctx)
	info := custommw.HTMXInfoFromContext(ctx)
	w.Header().Add("Vary", "HX-Request")

	app, err := h.factory.New(ctx)
	if err != nil {
		logger.Error("build catalog page", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	status := http.StatusOK
	if id := strings.TrimSpace(r.URL.Query().Get(SelectQueryParam)); id != "" {
		switch err := app.Select(ctx, id); {
		case err == nil:
			h.countSelection(r, id, "deep_link")
		case errors.Is(err, podcasts.ErrPodcastNotFound):
			logger.Warn("select podcast from query", zap.String("podcast_id", id), zap.Error(err))
			status = http.StatusNotFound
		default:
			logger.Error("select podcast from query", zap.String("podcast_id", id), zap.Error(err))
			status = http.StatusInternalServerError
		}
	}

	if info.IsHTMX && !info.HistoryRestore && info.Target == modal.IDRoot {
		templ.Handler(templates.Fragment(app.Modal().Root()), templ.WithStatus(status)).ServeHTTP(w, r)
		return
	}
	templ.Handler(templates.Document(app.Document()), templ.WithStatus(status)).ServeHTTP(w, r)
}

// PodcastFragment returns the modal opened for the podcast in the path.
func (h *Handlers) PodcastFragment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := observability.FromContext(ctx)
	id := chi.URLParam(r, "id")

	app, err := h.factory.New(ctx)
	if err != nil {
		logger.Error("build catalog page", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	if err := app.Select(ctx, id); err != nil {
		if errors.Is(err, podcasts.ErrPodcastNotFound) {
			http.NotFound(w, r)
			return
		}
		logger.Error("select podcast", zap.String("podcast_id", id), zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	h.countSelection(r, id, "fragment")
	templ.Handler(templates.Fragment(app.Modal().Root())).ServeHTTP(w, r)
}

func (h *Handlers) countSelection(r *http.Request, id, source string) {
	h.selections.Add(r.Context(), 1, metric.WithAttributes(
		attribute.String("podcast.id", id),
		attribute.String("source", source),
	))
}

// CloseFragment returns the modal in its closed state and resets the pushed URL.
func (h *Handlers) CloseFragment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	app, err := h.factory.New(ctx)
	if err != nil {
		observability.FromContext(ctx).Error("build catalog page", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	app.Close()

	w.Header().Set("HX-Push-Url", PageURL(""))
	templ.Handler(templates.Fragment(app.Modal().Root())).ServeHTTP(w, r)
}

// Healthz reports liveness.
func Healthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}
