package api

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/couchcryptid/soacha-risk-dashboard/internal/domain"
	"github.com/couchcryptid/soacha-risk-dashboard/internal/photos"
	"github.com/go-chi/chi/v5"
)

// multipartOverhead is the form-field allowance on top of the file limit.
const multipartOverhead = 1 << 20

func (a *API) registerPhotoRoutes(r chi.Router) {
	r.Post("/upload", a.uploadPhoto)
	r.Get("/", a.listPhotos)
	r.Get("/geojson", a.photosGeoJSON)
	r.Get("/stats", a.photoStats)
	r.Get("/image/{id}", a.servePhoto)
	r.Get("/thumbnail/{id}", a.serveThumbnail)
	r.Get("/{id}", a.getPhoto)
	r.Put("/{id}", a.updatePhoto)
	r.Delete("/{id}", a.deletePhoto)
}

func (a *API) uploadPhoto(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, a.photos.MaxBytes()+multipartOverhead)
	if err := r.ParseMultipartForm(multipartOverhead); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			a.fail(w, r, fmt.Errorf("%w: max size %d MB", photos.ErrTooLarge, a.photos.MaxBytes()>>20))
			return
		}
		a.fail(w, r, fmt.Errorf("%w: invalid multipart form: %v", errBadRequest, err))
		return
	}
	defer r.MultipartForm.RemoveAll() //nolint:errcheck // temp files

	file, header, err := r.FormFile("file")
	if err != nil {
		a.fail(w, r, fmt.Errorf("%w: no file provided", errBadRequest))
		return
	}
	defer file.Close()

	photo, err := a.photos.Add(photos.Upload{
		Filename:     header.Filename,
		Body:         file,
		Description:  r.FormValue("description"),
		EventType:    r.FormValue("event_type"),
		LocationName: r.FormValue("location_name"),
		Tags:         r.FormValue("tags"),
		UploadedBy:   r.FormValue("uploaded_by"),
		Latitude:     r.FormValue("latitude"),
		Longitude:    r.FormValue("longitude"),
	})
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"photo":   photo,
		"message": "Photo uploaded successfully",
	})
}

// parsePhotoFilter reads the list filters from the query string. A date_to
// without a time of day includes that whole day.
func parsePhotoFilter(q url.Values) (photos.Filter, error) {
	f := photos.Filter{
		EventType: q.Get("event_type"),
		Location:  q.Get("location"),
	}
	if s := q.Get("date_from"); s != "" {
		ts, err := domain.ParseTimestamp(s)
		if err != nil {
			return f, fmt.Errorf("%w: date_from: %v", errBadRequest, err)
		}
		f.DateFrom = ts.Time
	}
	if s := q.Get("date_to"); s != "" {
		ts, err := domain.ParseTimestamp(s)
		if err != nil {
			return f, fmt.Errorf("%w: date_to: %v", errBadRequest, err)
		}
		f.DateTo = ts.Time
		if len(s) == len("2006-01-02") {
			f.DateTo = f.DateTo.Add(24 * time.Hour)
		} else {
			f.DateTo = f.DateTo.Add(time.Nanosecond)
		}
	}
	switch q.Get("georeferenced") {
	case "true":
		v := true
		f.Georeferenced = &v
	case "false":
		v := false
		f.Georeferenced = &v
	}
	if s := q.Get("tags"); s != "" {
		f.Tags = photos.SplitTags(s)
	}
	return f, nil
}

func (a *API) listPhotos(w http.ResponseWriter, r *http.Request) {
	f, err := parsePhotoFilter(r.URL.Query())
	if err != nil {
		a.fail(w, r, err)
		return
	}
	list, err := a.photos.List(f)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"total": len(list), "photos": list})
}

func (a *API) photosGeoJSON(w http.ResponseWriter, r *http.Request) {
	f, err := parsePhotoFilter(r.URL.Query())
	if err != nil {
		a.fail(w, r, err)
		return
	}
	f.Georeferenced = nil
	f.Tags = nil
	fc, err := a.photos.GeoJSON(f)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, fc)
}

func (a *API) photoStats(w http.ResponseWriter, r *http.Request) {
	stats, err := a.photos.Stats()
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (a *API) getPhoto(w http.ResponseWriter, r *http.Request) {
	photo, err := a.photos.Get(chi.URLParam(r, "id"))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, photo)
}

func (a *API) updatePhoto(w http.ResponseWriter, r *http.Request) {
	var patch photos.Patch
	if err := decodeJSON(w, r, &patch); err != nil {
		a.fail(w, r, err)
		return
	}
	photo, err := a.photos.Update(chi.URLParam(r, "id"), patch)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "photo": photo})
}

func (a *API) deletePhoto(w http.ResponseWriter, r *http.Request) {
	if err := a.photos.Delete(chi.URLParam(r, "id")); err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Photo deleted successfully"})
}

func (a *API) servePhoto(w http.ResponseWriter, r *http.Request) {
	path, err := a.photos.ImagePath(chi.URLParam(r, "id"))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	http.ServeFile(w, r, path)
}

func (a *API) serveThumbnail(w http.ResponseWriter, r *http.Request) {
	path, err := a.photos.ThumbnailPath(chi.URLParam(r, "id"))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "image/jpeg")
	http.ServeFile(w, r, path)
}
