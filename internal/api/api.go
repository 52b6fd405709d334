// Package api implements the dashboard's JSON HTTP API.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/couchcryptid/soacha-risk-dashboard/internal/alerting"
	"github.com/couchcryptid/soacha-risk-dashboard/internal/geolayers"
	"github.com/couchcryptid/soacha-risk-dashboard/internal/photos"
	"github.com/couchcryptid/soacha-risk-dashboard/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

// maxJSONBody caps request bodies on the JSON endpoints.
const maxJSONBody = 1 << 20

var (
	errNotFound   = errors.New("not found")
	errBadRequest = errors.New("bad request")
)

// Deps are the collaborators the handlers serve from.
type Deps struct {
	Repo           *store.Repository
	Alerts         *alerting.Service
	Photos         *photos.Library
	Layers         *geolayers.Catalog
	InfografiasDir string
	Logger         *slog.Logger
}

// API holds the handlers.
type API struct {
	repo           *store.Repository
	alerts         *alerting.Service
	photos         *photos.Library
	layers         *geolayers.Catalog
	infografiasDir string
	validate       *validator.Validate
	logger         *slog.Logger
}

// New creates the API handlers.
func New(deps Deps) *API {
	return &API{
		repo:           deps.Repo,
		alerts:         deps.Alerts,
		photos:         deps.Photos,
		layers:         deps.Layers,
		infografiasDir: deps.InfografiasDir,
		validate:       validator.New(),
		logger:         deps.Logger,
	}
}

// RegisterRoutes mounts every endpoint onto r.
func (a *API) RegisterRoutes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Get("/reports", a.listReports)
		r.Post("/reports", a.createReport)
		r.Get("/reports/{id}", a.getReport)
		r.Put("/reports/{id}", a.updateReport)
		r.Delete("/reports/{id}", a.deleteReport)
		r.Get("/reports-export", a.exportReports)

		r.Get("/alerts", a.listAlerts)
		r.Post("/alerts", a.createAlert)
		r.Get("/weather", a.weather)
		r.Get("/predictive-alerts", a.predictiveAlerts)

		r.Get("/dashboard/layout", a.getLayout)
		r.Post("/dashboard/layout", a.saveLayout)
		r.Get("/analytics/summary", a.summary)
		r.Get("/vulnerability", a.vulnerability)
		r.Get("/population-stats", a.populationStats)

		r.Get("/geolayers", a.geoLayers)
		r.Get("/layers/{name}", a.layer)
		r.Get("/infografias", a.listInfografias)

		r.Route("/photos", a.registerPhotoRoutes)
	})
	r.Get("/infografias/*", a.serveInfografia)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // client went away
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// fail maps err to a status code. Internal errors are logged and reported
// with a generic message.
func (a *API) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, errNotFound), errors.Is(err, photos.ErrNotFound), errors.Is(err, geolayers.ErrLayerNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, errBadRequest), errors.Is(err, photos.ErrInvalidFile),
		errors.Is(err, photos.ErrTooLarge), errors.Is(err, photos.ErrInvalidEdit):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		a.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// decodeJSON reads a size-limited JSON body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	body := http.MaxBytesReader(w, r.Body, maxJSONBody)
	data, err := io.ReadAll(body)
	if err != nil {
		return fmt.Errorf("%w: read body: %v", errBadRequest, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: invalid JSON: %v", errBadRequest, err)
	}
	return nil
}

func (a *API) validateStruct(v any) error {
	if err := a.validate.Struct(v); err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return nil
}
