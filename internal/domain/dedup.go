package domain

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// DefaultDedupWindow is how long an alert suppresses identical candidates.
const DefaultDedupWindow = time.Hour

// DedupKey derives the identity two alerts are compared by.
type DedupKey func(Alert) string

// MessageKey treats alerts with the same message text as duplicates.
func MessageKey(a Alert) string {
	return a.Message
}

// SemanticKey treats alerts with the same type, severity and zone set as
// duplicates, regardless of the reading quoted in the message.
func SemanticKey(a Alert) string {
	zones := slices.Clone(a.AffectedZones)
	slices.Sort(zones)
	return string(a.Type) + "|" + string(a.Severity) + "|" + strings.Join(zones, ",")
}

// Dedup key names accepted by DedupKeyByName.
const (
	DedupByMessage  = "message"
	DedupBySemantic = "semantic"
)

// DedupKeyByName resolves a configured key name.
func DedupKeyByName(name string) (DedupKey, error) {
	switch name {
	case "", DedupByMessage:
		return MessageKey, nil
	case DedupBySemantic:
		return SemanticKey, nil
	default:
		return nil, fmt.Errorf("unknown dedup key %q", name)
	}
}

// Deduplicator merges candidate alerts into a persisted alert log.
type Deduplicator struct {
	Window time.Duration
	Key    DedupKey
}

// NewDeduplicator returns a Deduplicator, substituting the defaults for a
// non-positive window or nil key.
func NewDeduplicator(window time.Duration, key DedupKey) Deduplicator {
	if window <= 0 {
		window = DefaultDedupWindow
	}
	if key == nil {
		key = MessageKey
	}
	return Deduplicator{Window: window, Key: key}
}

// Reconcile returns the log with every non-duplicate candidate appended, and
// the appended alerts. A candidate is a duplicate when the log (including
// alerts appended earlier in the same call) holds an alert with the same key
// stamped less than Window before now. Appended alerts get the next id and
// are stamped with now. existing is not modified.
func (d Deduplicator) Reconcile(existing, candidates []Alert, now time.Time) (merged, added []Alert) {
	merged = slices.Clone(existing)
	if merged == nil {
		merged = []Alert{}
	}
	nextID := nextAlertID(existing)

	for _, candidate := range candidates {
		if d.isRecentDuplicate(merged, candidate, now) {
			continue
		}
		candidate.ID = nextID
		candidate.Timestamp = NewTimestamp(now)
		nextID++
		merged = append(merged, candidate)
		added = append(added, candidate)
	}
	return merged, added
}

func (d Deduplicator) isRecentDuplicate(log []Alert, candidate Alert, now time.Time) bool {
	key := d.Key(candidate)
	for i := len(log) - 1; i >= 0; i-- {
		existing := log[i]
		if d.Key(existing) != key || existing.Timestamp.IsZero() {
			continue
		}
		if now.Sub(existing.Timestamp.Time) < d.Window {
			return true
		}
	}
	return false
}
