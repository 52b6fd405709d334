package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"slices"
	"strconv"

	"github.com/couchcryptid/soacha-risk-dashboard/internal/domain"
	"github.com/couchcryptid/soacha-risk-dashboard/internal/geolayers"
	"github.com/go-chi/chi/v5"
)

func reportID(r *http.Request) (int, error) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		return 0, fmt.Errorf("%w: report not found", errNotFound)
	}
	return id, nil
}

func (a *API) listReports(w http.ResponseWriter, r *http.Request) {
	doc, err := a.repo.View(r.Context())
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, doc.Reports)
}

func (a *API) createReport(w http.ResponseWriter, r *http.Request) {
	var report domain.Report
	if err := decodeJSON(w, r, &report); err != nil {
		a.fail(w, r, err)
		return
	}
	if err := a.validateStruct(report); err != nil {
		a.fail(w, r, err)
		return
	}

	now := domain.NewTimestamp(a.alerts.Now())
	_, err := a.repo.Update(r.Context(), func(doc *domain.Document) error {
		report.ID = doc.NextReportID()
		report.Timestamp = now
		delete(report.Extra, "timestamp")
		doc.Reports = append(doc.Reports, report)
		return nil
	})
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.logger.Info("report created", "id", report.ID, "event_type", report.EventType)
	writeJSON(w, http.StatusCreated, report)
}

func (a *API) getReport(w http.ResponseWriter, r *http.Request) {
	id, err := reportID(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	doc, err := a.repo.View(r.Context())
	if err != nil {
		a.fail(w, r, err)
		return
	}
	i := doc.ReportIndex(id)
	if i < 0 {
		writeError(w, http.StatusNotFound, "report not found")
		return
	}
	writeJSON(w, http.StatusOK, doc.Reports[i])
}

func (a *API) updateReport(w http.ResponseWriter, r *http.Request) {
	id, err := reportID(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	var patch map[string]json.RawMessage
	if err := decodeJSON(w, r, &patch); err != nil {
		a.fail(w, r, err)
		return
	}

	var updated domain.Report
	_, err = a.repo.Update(r.Context(), func(doc *domain.Document) error {
		i := doc.ReportIndex(id)
		if i < 0 {
			return fmt.Errorf("%w: report not found", errNotFound)
		}
		merged, err := doc.Reports[i].Merge(patch)
		if err != nil {
			return fmt.Errorf("%w: %v", errBadRequest, err)
		}
		if err := a.validateStruct(merged); err != nil {
			return err
		}
		doc.Reports[i] = merged
		updated = merged
		return nil
	})
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (a *API) deleteReport(w http.ResponseWriter, r *http.Request) {
	id, err := reportID(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	_, err = a.repo.Update(r.Context(), func(doc *domain.Document) error {
		i := doc.ReportIndex(id)
		if i < 0 {
			return fmt.Errorf("%w: report not found", errNotFound)
		}
		doc.Reports = slices.Delete(doc.Reports, i, i+1)
		return nil
	})
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Report deleted"})
}

// exportReports serves the located reports as GeoJSON, or every report as a
// spreadsheet with ?format=xlsx.
func (a *API) exportReports(w http.ResponseWriter, r *http.Request) {
	doc, err := a.repo.View(r.Context())
	if err != nil {
		a.fail(w, r, err)
		return
	}

	switch format := r.URL.Query().Get("format"); format {
	case "", "geojson":
		writeJSON(w, http.StatusOK, geolayers.Reports(doc.Reports, a.alerts.Now()))
	case "xlsx":
		var buf bytes.Buffer
		if err := geolayers.WriteReportsXLSX(&buf, doc.Reports); err != nil {
			a.fail(w, r, err)
			return
		}
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", `attachment; filename="reportes.xlsx"`)
		w.Write(buf.Bytes()) //nolint:errcheck // client went away
	default:
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unsupported format %q", format))
	}
}
