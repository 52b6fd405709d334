package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/couchcryptid/soacha-risk-dashboard/internal/domain"
)

func (a *API) getLayout(w http.ResponseWriter, r *http.Request) {
	doc, err := a.repo.View(r.Context())
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, doc.DashboardLayout)
}

// saveLayout replaces the stored layout. The body is kept verbatim but must
// be a JSON object.
func (a *API) saveLayout(w http.ResponseWriter, r *http.Request) {
	var layout json.RawMessage
	if err := decodeJSON(w, r, &layout); err != nil {
		a.fail(w, r, err)
		return
	}
	if trimmed := bytes.TrimSpace(layout); len(trimmed) == 0 || trimmed[0] != '{' {
		a.fail(w, r, fmt.Errorf("%w: layout must be a JSON object", errBadRequest))
		return
	}

	_, err := a.repo.Update(r.Context(), func(doc *domain.Document) error {
		doc.DashboardLayout = layout
		return nil
	})
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, layout)
}

func (a *API) summary(w http.ResponseWriter, r *http.Request) {
	doc, err := a.repo.View(r.Context())
	if err != nil {
		a.fail(w, r, err)
		return
	}
	s := domain.Summarize(doc, a.alerts.Zones(), a.alerts.Now())
	snapshot, _ := a.alerts.CurrentConditions(r.Context())
	s.CurrentWeather = &snapshot
	writeJSON(w, http.StatusOK, s)
}

func (a *API) vulnerability(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, domain.AnalyzeVulnerability(a.alerts.Zones()))
}

func (a *API) populationStats(w http.ResponseWriter, r *http.Request) {
	doc, err := a.repo.View(r.Context())
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, domain.ComputePopulationStats(doc.Reports, a.alerts.Zones()))
}
