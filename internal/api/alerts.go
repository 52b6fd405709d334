package api

import (
	"net/http"

	"github.com/couchcryptid/soacha-risk-dashboard/internal/domain"
)

func (a *API) listAlerts(w http.ResponseWriter, r *http.Request) {
	doc, err := a.repo.View(r.Context())
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, doc.Alerts)
}

// createAlert records a manually issued alert. The id and timestamp are
// always assigned here, whatever the body carries.
func (a *API) createAlert(w http.ResponseWriter, r *http.Request) {
	var alert domain.Alert
	if err := decodeJSON(w, r, &alert); err != nil {
		a.fail(w, r, err)
		return
	}
	if err := a.validateStruct(alert); err != nil {
		a.fail(w, r, err)
		return
	}

	now := domain.NewTimestamp(a.alerts.Now())
	_, err := a.repo.Update(r.Context(), func(doc *domain.Document) error {
		alert.ID = doc.NextAlertID()
		alert.Timestamp = now
		delete(alert.Extra, "timestamp")
		doc.Alerts = append(doc.Alerts, alert)
		return nil
	})
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.logger.Info("manual alert created", "id", alert.ID, "type", alert.Type)
	writeJSON(w, http.StatusCreated, alert)
}

// weather runs one evaluation cycle: fetch, generate, deduplicate, persist.
func (a *API) weather(w http.ResponseWriter, r *http.Request) {
	report, err := a.alerts.Evaluate(r.Context())
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (a *API) predictiveAlerts(w http.ResponseWriter, r *http.Request) {
	report, err := a.alerts.PredictiveAlerts(r.Context())
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}
