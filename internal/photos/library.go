package photos

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/couchcryptid/soacha-risk-dashboard/internal/domain"
	"github.com/couchcryptid/soacha-risk-dashboard/internal/observability"
	"github.com/couchcryptid/soacha-risk-dashboard/internal/store"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

// AllowedExtensions lists the accepted upload types.
var AllowedExtensions = []string{"png", "jpg", "jpeg", "gif", "webp", "bmp"}

// DefaultMaxBytes is the upload limit when none is configured.
const DefaultMaxBytes int64 = 10 << 20

const (
	metadataName = "metadata.json"
	thumbDirName = "thumbnails"
)

// Library stores photos and their metadata under one directory.
type Library struct {
	dir      string
	maxBytes int64
	clock    clockwork.Clock
	logger   *slog.Logger
	metrics  *observability.Metrics
	mu       sync.Mutex
}

// NewLibrary creates the directory layout if needed.
func NewLibrary(dir string, maxBytes int64, clock clockwork.Clock, logger *slog.Logger, metrics *observability.Metrics) (*Library, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	if err := os.MkdirAll(filepath.Join(dir, thumbDirName), 0o755); err != nil {
		return nil, fmt.Errorf("create photo dirs: %w", err)
	}
	return &Library{
		dir:      dir,
		maxBytes: maxBytes,
		clock:    domain.ClockOrReal(clock),
		logger:   logger,
		metrics:  metrics,
	}, nil
}

// MaxBytes is the largest accepted upload.
func (l *Library) MaxBytes() int64 {
	return l.maxBytes
}

// Upload is one photo submission.
type Upload struct {
	Filename     string
	Body         io.Reader
	Description  string
	EventType    string
	LocationName string
	Tags         string // comma-separated
	UploadedBy   string
	Latitude     string // used when the file carries no GPS position
	Longitude    string
}

// Add stores an uploaded photo, georeferences it and renders its thumbnail.
func (l *Library) Add(u Upload) (Photo, error) {
	if u.Filename == "" {
		return Photo{}, fmt.Errorf("%w: empty filename", ErrInvalidFile)
	}
	ext := extension(u.Filename)
	if !slices.Contains(AllowedExtensions, ext) {
		return Photo{}, fmt.Errorf("%w: file type not allowed, use: %s", ErrInvalidFile, strings.Join(AllowedExtensions, ", "))
	}

	id := uuid.NewString()
	filename := id + "." + ext
	path := filepath.Join(l.dir, filename)
	if err := l.writeLimited(path, u.Body); err != nil {
		return Photo{}, err
	}

	photo := Photo{
		ID:               id,
		Filename:         filename,
		OriginalFilename: secureFilename(u.Filename),
		UploadDate:       domain.NewTimestamp(l.clock.Now()),
		Description:      u.Description,
		EventType:        orDefault(u.EventType, "general"),
		LocationName:     u.LocationName,
		Tags:             SplitTags(u.Tags),
		UploadedBy:       orDefault(u.UploadedBy, "anonymous"),
		Exif:             readExif(path),
	}
	georeference(&photo, u.Latitude, u.Longitude)

	if err := makeThumbnail(path, l.thumbnailFile(id)); err != nil {
		l.logger.Warn("thumbnail failed", "photo", id, "error", err)
	} else {
		photo.Thumbnail = ThumbnailURL(id)
	}

	err := l.update(func(meta *metadataFile) error {
		meta.Photos = append(meta.Photos, photo)
		return nil
	})
	if err != nil {
		_ = os.Remove(path)
		_ = os.Remove(l.thumbnailFile(id))
		return Photo{}, err
	}

	l.metrics.PhotosUploaded.Inc()
	l.logger.Info("photo uploaded", "photo", id, "georeference", photo.GeoreferenceSource)
	return photo, nil
}

func georeference(p *Photo, lat, lon string) {
	if p.Exif.Latitude != nil && p.Exif.Longitude != nil {
		p.Latitude = p.Exif.Latitude
		p.Longitude = p.Exif.Longitude
		p.GeoreferenceSource = SourceExif
		return
	}
	if lat == "" || lon == "" {
		return
	}
	la, errLat := strconv.ParseFloat(strings.TrimSpace(lat), 64)
	lo, errLon := strconv.ParseFloat(strings.TrimSpace(lon), 64)
	if errLat != nil || errLon != nil || la < -90 || la > 90 || lo < -180 || lo > 180 {
		return
	}
	p.Latitude = &la
	p.Longitude = &lo
	p.GeoreferenceSource = SourceManual
}

func (l *Library) writeLimited(path string, body io.Reader) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("create photo file: %w", err)
	}
	n, err := io.Copy(f, io.LimitReader(body, l.maxBytes+1))
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err == nil && n > l.maxBytes {
		err = fmt.Errorf("%w: max size %d MB", ErrTooLarge, l.maxBytes>>20)
	}
	if err != nil {
		_ = os.Remove(path)
		if errors.Is(err, ErrTooLarge) {
			return err
		}
		return fmt.Errorf("write photo file: %w", err)
	}
	return nil
}

// List returns the photos matching f in upload order.
func (l *Library) List(f Filter) ([]Photo, error) {
	meta, err := l.load()
	if err != nil {
		return nil, err
	}
	out := []Photo{}
	for _, p := range meta.Photos {
		if f.Match(p) {
			out = append(out, p)
		}
	}
	return out, nil
}

// Get returns one photo's metadata.
func (l *Library) Get(id string) (Photo, error) {
	meta, err := l.load()
	if err != nil {
		return Photo{}, err
	}
	i := indexOf(meta.Photos, id)
	if i < 0 {
		return Photo{}, ErrNotFound
	}
	return meta.Photos[i], nil
}

// Patch holds editable photo fields. Nil fields are left unchanged.
type Patch struct {
	Description  *string   `json:"description"`
	EventType    *string   `json:"event_type"`
	LocationName *string   `json:"location_name"`
	Tags         *[]string `json:"tags"`
	Latitude     *float64  `json:"latitude"`
	Longitude    *float64  `json:"longitude"`
}

// Update applies patch and stamps updated_date. Editing either coordinate
// marks the georeference as manual.
func (l *Library) Update(id string, patch Patch) (Photo, error) {
	if patch.Latitude != nil && (*patch.Latitude < -90 || *patch.Latitude > 90) {
		return Photo{}, fmt.Errorf("%w: latitude out of range", ErrInvalidEdit)
	}
	if patch.Longitude != nil && (*patch.Longitude < -180 || *patch.Longitude > 180) {
		return Photo{}, fmt.Errorf("%w: longitude out of range", ErrInvalidEdit)
	}

	var updated Photo
	err := l.update(func(meta *metadataFile) error {
		i := indexOf(meta.Photos, id)
		if i < 0 {
			return ErrNotFound
		}
		p := meta.Photos[i]
		if patch.Description != nil {
			p.Description = *patch.Description
		}
		if patch.EventType != nil {
			p.EventType = *patch.EventType
		}
		if patch.LocationName != nil {
			p.LocationName = *patch.LocationName
		}
		if patch.Tags != nil {
			p.Tags = slices.Clone(*patch.Tags)
		}
		if patch.Latitude != nil {
			p.Latitude = patch.Latitude
			p.GeoreferenceSource = SourceManual
		}
		if patch.Longitude != nil {
			p.Longitude = patch.Longitude
			p.GeoreferenceSource = SourceManual
		}
		now := domain.NewTimestamp(l.clock.Now())
		p.UpdatedDate = &now
		meta.Photos[i] = p
		updated = p
		return nil
	})
	return updated, err
}

// Delete removes a photo, its thumbnail and its metadata entry.
func (l *Library) Delete(id string) error {
	var removed Photo
	err := l.update(func(meta *metadataFile) error {
		i := indexOf(meta.Photos, id)
		if i < 0 {
			return ErrNotFound
		}
		removed = meta.Photos[i]
		meta.Photos = slices.Delete(meta.Photos, i, i+1)
		return nil
	})
	if err != nil {
		return err
	}
	for _, path := range []string{filepath.Join(l.dir, removed.Filename), l.thumbnailFile(id)} {
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			l.logger.Warn("remove photo file failed", "path", path, "error", err)
		}
	}
	return nil
}

// ImagePath returns the path of the original file.
func (l *Library) ImagePath(id string) (string, error) {
	p, err := l.Get(id)
	if err != nil {
		return "", err
	}
	path := filepath.Join(l.dir, p.Filename)
	if _, err := os.Stat(path); err != nil {
		return "", ErrNotFound
	}
	return path, nil
}

// ThumbnailPath returns the thumbnail path, rendering it first if it is
// missing.
func (l *Library) ThumbnailPath(id string) (string, error) {
	if _, err := l.Get(id); err != nil {
		return "", err
	}
	thumb := l.thumbnailFile(id)
	if _, err := os.Stat(thumb); err == nil {
		return thumb, nil
	}
	src, err := l.ImagePath(id)
	if err != nil {
		return "", err
	}
	if err := makeThumbnail(src, thumb); err != nil {
		l.logger.Warn("thumbnail regeneration failed", "photo", id, "error", err)
		return "", ErrNotFound
	}
	return thumb, nil
}

// Stats summarizes the whole library.
func (l *Library) Stats() (Stats, error) {
	meta, err := l.load()
	if err != nil {
		return Stats{}, err
	}
	return computeStats(meta.Photos), nil
}

func (l *Library) thumbnailFile(id string) string {
	return filepath.Join(l.dir, thumbDirName, id+"_thumb.jpg")
}

func (l *Library) metadataPath() string {
	return filepath.Join(l.dir, metadataName)
}

func (l *Library) load() (metadataFile, error) {
	meta := metadataFile{Photos: []Photo{}}
	data, err := os.ReadFile(l.metadataPath())
	if errors.Is(err, fs.ErrNotExist) {
		return meta, nil
	}
	if err != nil {
		return meta, fmt.Errorf("read photo metadata: %w", err)
	}
	if err := json.Unmarshal(data, &meta); err != nil {
		return meta, fmt.Errorf("decode photo metadata: %w", err)
	}
	if meta.Photos == nil {
		meta.Photos = []Photo{}
	}
	return meta, nil
}

func (l *Library) update(fn func(meta *metadataFile) error) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	meta, err := l.load()
	if err != nil {
		return err
	}
	if err := fn(&meta); err != nil {
		return err
	}
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("encode photo metadata: %w", err)
	}
	return store.WriteFileAtomic(l.metadataPath(), data)
}

func indexOf(photos []Photo, id string) int {
	return slices.IndexFunc(photos, func(p Photo) bool { return p.ID == id })
}

func extension(name string) string {
	ext := filepath.Ext(name)
	if ext == "" {
		return ""
	}
	return strings.ToLower(ext[1:])
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// secureFilename reduces a client-supplied name to a safe base name.
func secureFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		case r == ' ':
			b.WriteRune('_')
		}
	}
	return strings.Trim(b.String(), "._")
}
