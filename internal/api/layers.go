package api

import (
	"errors"
	"io/fs"
	"net/http"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/couchcryptid/soacha-risk-dashboard/internal/geolayers"
	"github.com/go-chi/chi/v5"
)

func (a *API) geoLayers(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"geospatial_layers":   a.layers.Layers(),
		"vulnerability_zones": geolayers.VulnerabilityZones(a.alerts.Zones()),
	})
}

func (a *API) layer(w http.ResponseWriter, r *http.Request) {
	fc, err := a.layers.Layer(chi.URLParam(r, "name"))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, fc)
}

type infografia struct {
	File      string `json:"file"`
	Path      string `json:"path"`
	SizeBytes int64  `json:"size_bytes"`
}

// listInfografias lists the PDF files in the infographics directory.
func (a *API) listInfografias(w http.ResponseWriter, r *http.Request) {
	items := []infografia{}

	entries, err := os.ReadDir(a.infografiasDir)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		a.fail(w, r, err)
		return
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(strings.ToLower(e.Name()), ".pdf") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		items = append(items, infografia{
			File:      e.Name(),
			Path:      "/infografias/" + e.Name(),
			SizeBytes: info.Size(),
		})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].File < items[j].File })

	writeJSON(w, http.StatusOK, map[string]any{"count": len(items), "items": items})
}

func (a *API) serveInfografia(w http.ResponseWriter, r *http.Request) {
	name := path.Clean(chi.URLParam(r, "*"))
	if !fs.ValidPath(name) || name == "." {
		writeError(w, http.StatusNotFound, "file not found")
		return
	}
	fsys := os.DirFS(a.infografiasDir)
	if info, err := fs.Stat(fsys, name); err != nil || info.IsDir() {
		writeError(w, http.StatusNotFound, "file not found")
		return
	}
	http.ServeFileFS(w, r, fsys, name)
}
