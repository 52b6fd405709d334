// Package photos manages the reference photo library: uploads with EXIF
// georeferencing, JPEG thumbnails, filtered listing and GeoJSON export.
package photos

import (
	"errors"
	"strings"
	"time"

	"github.com/couchcryptid/soacha-risk-dashboard/internal/domain"
)

// Georeference sources.
const (
	SourceExif   = "exif"
	SourceManual = "manual"
)

var (
	ErrNotFound    = errors.New("photo not found")
	ErrInvalidFile = errors.New("invalid photo file")
	ErrTooLarge    = errors.New("photo too large")
	ErrInvalidEdit = errors.New("invalid photo update")
)

// ExifData is the subset of EXIF metadata kept for a photo.
type ExifData struct {
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
	DateTime  string   `json:"datetime"`
	Make      string   `json:"make"`
	Model     string   `json:"model"`
}

// Photo is one entry in metadata.json.
type Photo struct {
	ID                 string            `json:"id"`
	Filename           string            `json:"filename"`
	OriginalFilename   string            `json:"original_filename"`
	UploadDate         domain.Timestamp  `json:"upload_date"`
	UpdatedDate        *domain.Timestamp `json:"updated_date,omitempty"`
	Description        string            `json:"description"`
	EventType          string            `json:"event_type"`
	LocationName       string            `json:"location_name"`
	Tags               []string          `json:"tags"`
	UploadedBy         string            `json:"uploaded_by"`
	Exif               ExifData          `json:"exif"`
	Latitude           *float64          `json:"latitude,omitempty"`
	Longitude          *float64          `json:"longitude,omitempty"`
	GeoreferenceSource string            `json:"georeference_source,omitempty"`
	Thumbnail          string            `json:"thumbnail,omitempty"`
}

// Georeferenced reports whether the photo has both coordinates.
func (p Photo) Georeferenced() bool {
	return p.Latitude != nil && p.Longitude != nil
}

// ImageURL is the route serving the original file.
func (p Photo) ImageURL() string {
	return "/api/photos/image/" + p.ID
}

// ThumbnailURL is the route serving the thumbnail.
func ThumbnailURL(id string) string {
	return "/api/photos/thumbnail/" + id
}

type metadataFile struct {
	Photos []Photo `json:"photos"`
}

// Filter selects photos for List and GeoJSON. Zero fields match everything.
type Filter struct {
	EventType     string
	Location      string // case-insensitive substring of location_name
	DateFrom      time.Time
	DateTo        time.Time // exclusive
	Georeferenced *bool
	Tags          []string // any match, case-insensitive
}

// Match reports whether p passes every set criterion.
func (f Filter) Match(p Photo) bool {
	if f.EventType != "" && p.EventType != f.EventType {
		return false
	}
	if f.Location != "" && !strings.Contains(strings.ToLower(p.LocationName), strings.ToLower(f.Location)) {
		return false
	}
	if !f.DateFrom.IsZero() && p.UploadDate.Before(f.DateFrom) {
		return false
	}
	if !f.DateTo.IsZero() && !p.UploadDate.Before(f.DateTo) {
		return false
	}
	if f.Georeferenced != nil && p.Georeferenced() != *f.Georeferenced {
		return false
	}
	if len(f.Tags) > 0 && !anyTag(p.Tags, f.Tags) {
		return false
	}
	return true
}

func anyTag(have, want []string) bool {
	for _, w := range want {
		for _, h := range have {
			if strings.EqualFold(h, w) {
				return true
			}
		}
	}
	return false
}

// Stats summarizes the library.
type Stats struct {
	TotalPhotos      int            `json:"total_photos"`
	Georeferenced    int            `json:"georeferenced"`
	NotGeoreferenced int            `json:"not_georeferenced"`
	ByEventType      map[string]int `json:"by_event_type"`
	ByMonth          map[string]int `json:"by_month"`
	TotalTags        int            `json:"total_tags"`
}

func computeStats(photos []Photo) Stats {
	s := Stats{
		TotalPhotos: len(photos),
		ByEventType: map[string]int{},
		ByMonth:     map[string]int{},
	}
	tags := map[string]struct{}{}
	for _, p := range photos {
		evt := p.EventType
		if evt == "" {
			evt = "unknown"
		}
		s.ByEventType[evt]++
		if p.Georeferenced() {
			s.Georeferenced++
		}
		if !p.UploadDate.IsZero() {
			s.ByMonth[p.UploadDate.UTC().Format("2006-01")]++
		}
		for _, t := range p.Tags {
			tags[t] = struct{}{}
		}
	}
	s.NotGeoreferenced = s.TotalPhotos - s.Georeferenced
	s.TotalTags = len(tags)
	return s
}

// SplitTags parses a comma-separated tag list, dropping blanks.
func SplitTags(s string) []string {
	tags := []string{}
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}
