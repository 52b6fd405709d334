package store

import (
	"context"
	"errors"
	"sync"

	"github.com/couchcryptid/soacha-risk-dashboard/internal/domain"
	"github.com/couchcryptid/soacha-risk-dashboard/internal/observability"
)

// ErrUnchanged may be returned by an Update callback to skip the save. The
// update then succeeds and returns the document as loaded.
var ErrUnchanged = errors.New("document unchanged")

// Repository serializes document updates made through one process.
type Repository struct {
	store   Store
	metrics *observability.Metrics
	mu      sync.Mutex
}

// NewRepository wraps s.
func NewRepository(s Store, metrics *observability.Metrics) *Repository {
	return &Repository{store: s, metrics: metrics}
}

// View loads the current document.
func (r *Repository) View(ctx context.Context) (domain.Document, error) {
	doc, err := r.store.Load(ctx)
	if err != nil {
		r.metrics.StoreErrors.WithLabelValues("load").Inc()
		return domain.Document{}, err
	}
	return doc, nil
}

// Update loads the document, applies fn to a private copy and saves the
// result. When fn or the save fails, the stored document is unchanged and
// the error is returned.
func (r *Repository) Update(ctx context.Context, fn func(doc *domain.Document) error) (domain.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.View(ctx)
	if err != nil {
		return domain.Document{}, err
	}

	working := doc.Clone()
	if err := fn(&working); err != nil {
		if errors.Is(err, ErrUnchanged) {
			return doc, nil
		}
		return domain.Document{}, err
	}

	if err := r.store.Save(ctx, working); err != nil {
		r.metrics.StoreErrors.WithLabelValues("save").Inc()
		return domain.Document{}, err
	}
	return working, nil
}

// CheckReadiness reports whether the document can be loaded.
func (r *Repository) CheckReadiness(ctx context.Context) error {
	_, err := r.View(ctx)
	return err
}
