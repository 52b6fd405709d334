// Package store persists the dashboard document. Every backend loads and
// replaces the whole document at once; Repository serializes the
// read-modify-write cycles of concurrent requests on top of that.
package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/couchcryptid/soacha-risk-dashboard/internal/domain"
)

// Store loads and saves the whole dashboard document.
type Store interface {
	Load(ctx context.Context) (domain.Document, error)
	Save(ctx context.Context, doc domain.Document) error
}

// Backend names accepted by the STORE_BACKEND setting.
const (
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

func decodeDocument(data []byte) (domain.Document, error) {
	if len(data) == 0 {
		return domain.NewDocument(), nil
	}
	var doc domain.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return domain.Document{}, fmt.Errorf("decode document: %w", err)
	}
	doc.Normalize()
	return doc, nil
}

func encodeDocument(doc domain.Document) ([]byte, error) {
	doc.Normalize()
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return data, nil
}
