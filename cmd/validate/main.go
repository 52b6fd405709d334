// Command validate performs data integrity checks on a dashboard document and,
// optionally, on the geospatial layer directory. It verifies id uniqueness,
// coordinate ranges, timestamps, and that the rule-generated alert log holds
// no duplicates inside the deduplication window.
//
// Usage:
//
//	go run ./cmd/validate \
//	  -data dashboard_data.json \
//	  -layers assets/layers \
//	  -tz America/Bogota
package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/couchcryptid/soacha-risk-dashboard/internal/domain"
	"github.com/couchcryptid/soacha-risk-dashboard/internal/store"
	"github.com/paulmach/orb/geojson"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	dataFile := flag.String("data", "", "path to the dashboard document")
	layersDir := flag.String("layers", "", "directory of .geojson layers (optional)")
	window := flag.Duration("window", domain.DefaultDedupWindow, "alert deduplication window")
	tz := flag.String("tz", "America/Bogota", "zone of timestamps stored without an offset")
	flag.Parse()

	if *dataFile == "" {
		flag.Usage()
		os.Exit(1)
	}
	loc, err := time.LoadLocation(*tz)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: -tz: %v\n", err)
		os.Exit(1)
	}
	domain.SetSiteLocation(loc)

	if code := run(*dataFile, *layersDir, *window); code != 0 {
		os.Exit(code)
	}
}

func run(dataFile, layersDir string, window time.Duration) int {
	fmt.Println("=== Dashboard Data Integrity Validation ===")
	fmt.Println()

	doc, err := store.NewFileStore(dataFile).Load(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load document: %v\n", err)
		return 1
	}

	phases := []*phase{
		validateReports(doc.Reports),
		validateAlerts(doc.Alerts),
		validateDedup(doc.Alerts, domain.NewDeduplicator(window, domain.MessageKey)),
		validateLayout(doc),
	}
	if layersDir != "" {
		phases = append(phases, validateLayers(layersDir))
	}

	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Records: %d reports, %d alerts\n", len(doc.Reports), len(doc.Alerts))

	// Print detailed errors.
	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

// ── Phases ──

func validateReports(reports []domain.Report) *phase {
	p := &phase{name: "Phase 1: Community reports"}
	fmt.Println("Phase 1: Validating community reports...")

	seen := make(map[int]bool, len(reports))
	for i, r := range reports {
		label := fmt.Sprintf("report[%d] id=%d", i, r.ID)
		if r.ID <= 0 {
			p.errorf("%s: id must be positive", label)
		}
		if seen[r.ID] {
			p.errorf("%s: duplicate id", label)
		}
		seen[r.ID] = true

		if r.AffectedPopulation < 0 {
			p.errorf("%s: negative affected_population %d", label, r.AffectedPopulation)
		}
		if (r.Latitude == nil) != (r.Longitude == nil) {
			p.errorf("%s: only one coordinate set", label)
		}
		if r.Latitude != nil && (*r.Latitude < -90 || *r.Latitude > 90) {
			p.errorf("%s: latitude %g out of range", label, *r.Latitude)
		}
		if r.Longitude != nil && (*r.Longitude < -180 || *r.Longitude > 180) {
			p.errorf("%s: longitude %g out of range", label, *r.Longitude)
		}
		if raw, ok := r.Extra["timestamp"]; ok {
			p.errorf("%s: unparseable timestamp %s", label, raw)
		} else if r.Timestamp.IsZero() {
			p.errorf("%s: missing timestamp", label)
		}
	}

	fmt.Printf("  %d reports checked\n", len(reports))
	return p
}

func validateAlerts(alerts []domain.Alert) *phase {
	p := &phase{name: "Phase 2: Alert log"}
	fmt.Println("Phase 2: Validating alert log...")

	seen := make(map[int]bool, len(alerts))
	for i, a := range alerts {
		label := fmt.Sprintf("alert[%d] id=%d", i, a.ID)
		if a.ID <= 0 {
			p.errorf("%s: id must be positive", label)
		}
		if seen[a.ID] {
			p.errorf("%s: duplicate id", label)
		}
		seen[a.ID] = true

		switch a.Severity {
		case domain.SeverityLow, domain.SeverityMedium, domain.SeverityHigh, "":
		default:
			p.errorf("%s: unknown severity %q", label, a.Severity)
		}
		if strings.TrimSpace(a.Message) == "" {
			p.errorf("%s: empty message", label)
		}
		if raw, ok := a.Extra["timestamp"]; ok {
			p.errorf("%s: unparseable timestamp %s", label, raw)
		} else if a.Timestamp.IsZero() {
			p.errorf("%s: missing timestamp", label)
		}
		if a.Type == domain.AlertPatternDetected || a.Type == domain.AlertShortTermForecast {
			p.errorf("%s: predictive advisory persisted in the log", label)
		}
	}

	fmt.Printf("  %d alerts checked\n", len(alerts))
	return p
}

// validateDedup checks that no two rule-generated alerts with the same key
// were stamped closer together than the window.
func validateDedup(alerts []domain.Alert, dedup domain.Deduplicator) *phase {
	p := &phase{name: "Phase 3: Alert deduplication window"}
	fmt.Println("Phase 3: Validating deduplication window...")

	byKey := map[string][]domain.Alert{}
	for _, a := range alerts {
		if !generatedByRules(a.Type) || a.Timestamp.IsZero() {
			continue
		}
		k := dedup.Key(a)
		byKey[k] = append(byKey[k], a)
	}

	for _, group := range byKey {
		sort.Slice(group, func(i, j int) bool { return group[i].Timestamp.Before(group[j].Timestamp.Time) })
		for i := 1; i < len(group); i++ {
			gap := group[i].Timestamp.Sub(group[i-1].Timestamp.Time)
			if gap < dedup.Window {
				p.errorf("alerts %d and %d: %q repeated after %s", group[i-1].ID, group[i].ID, group[i].Message, gap)
			}
		}
	}

	fmt.Printf("  %d distinct alert keys checked\n", len(byKey))
	return p
}

func generatedByRules(t domain.AlertType) bool {
	switch t {
	case domain.AlertHeatwave, domain.AlertFloodRisk, domain.AlertFloodWarning, domain.AlertHumidityHigh:
		return true
	}
	return false
}

func validateLayout(doc domain.Document) *phase {
	p := &phase{name: "Phase 4: Document sections"}
	fmt.Println("Phase 4: Validating document sections...")

	sections := map[string][]byte{
		"dashboard_layout": doc.DashboardLayout,
		"population_stats": doc.PopulationStats,
		"geolayers":        doc.GeoLayers,
	}
	for name, raw := range sections {
		if trimmed := bytes.TrimSpace(raw); len(trimmed) == 0 || trimmed[0] != '{' {
			p.errorf("%s: must be a JSON object", name)
		}
	}
	return p
}

func validateLayers(dir string) *phase {
	p := &phase{name: "Phase 5: Geospatial layers"}
	fmt.Println("Phase 5: Validating geospatial layers...")

	paths, err := filepath.Glob(filepath.Join(dir, "*.geojson"))
	if err != nil {
		p.errorf("glob %s: %v", dir, err)
		return p
	}
	if len(paths) == 0 {
		p.errorf("no .geojson files in %s", dir)
	}
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			p.errorf("%s: %v", path, err)
			continue
		}
		fc, err := geojson.UnmarshalFeatureCollection(data)
		if err != nil {
			p.errorf("%s: %v", filepath.Base(path), err)
			continue
		}
		for i, f := range fc.Features {
			if f.Geometry == nil {
				p.errorf("%s: feature %d has no geometry", filepath.Base(path), i)
			}
		}
		fmt.Printf("  %s: %d features\n", filepath.Base(path), len(fc.Features))
	}
	return p
}
