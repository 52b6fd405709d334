// Command seed writes a reproducible sample dashboard document: citizen
// reports spread across the Soacha zones and the alert log a week of weather
// readings produces. Alerts are generated and deduplicated by the domain
// package so the fixture matches what the running service would store.
//
// Usage:
//
//	go run ./cmd/seed -out dashboard_data.json
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/couchcryptid/soacha-risk-dashboard/internal/domain"
	"github.com/couchcryptid/soacha-risk-dashboard/internal/store"
	"github.com/jonboulle/clockwork"
)

var baseDate = time.Date(2024, time.April, 20, 6, 0, 0, 0, time.UTC)

func ptr(v float64) *float64 { return &v }

// sampleReports are filed one every six hours starting at baseDate.
var sampleReports = []domain.Report{
	{EventType: "inundacion", AffectedPopulation: 45, Latitude: ptr(4.5712), Longitude: ptr(-74.2195), Zone: "danubio", Description: "Desbordamiento del río Soacha en El Danubio"},
	{EventType: "deslizamiento", AffectedPopulation: 12, Latitude: ptr(4.5920), Longitude: ptr(-74.1985), Zone: "zona_2", Description: "Deslizamiento en ladera tras lluvias"},
	{EventType: "inundacion", AffectedPopulation: 30, Latitude: ptr(4.6011), Longitude: ptr(-74.1902), Zone: "maria", Description: "Calles anegadas en La María"},
	{EventType: "incendio", AffectedPopulation: 4, Latitude: ptr(4.5805), Longitude: ptr(-74.2110), Zone: "zona_1", Description: "Incendio forestal menor"},
	{EventType: "inundacion", AffectedPopulation: 60, Zone: "danubio", Description: "Viviendas afectadas por crecida"},
	{EventType: "vendaval", AffectedPopulation: 8, Latitude: ptr(4.5850), Longitude: ptr(-74.2150), Description: "Techos levantados en zona_1"},
	{EventType: "inundacion", AffectedPopulation: 22, Latitude: ptr(4.5730), Longitude: ptr(-74.2230), Zone: "danubio", Description: "Alcantarillado colapsado"},
	{EventType: "Inundación", AffectedPopulation: 18, Latitude: ptr(4.6002), Longitude: ptr(-74.1920), Zone: "maria", Description: "Nivel del agua sube en La María"},
}

// sampleReadings are evaluated one every four hours starting at baseDate.
var sampleReadings = []domain.WeatherSnapshot{
	{Temperature: 19.5, Humidity: 72, Precipitation: 0.0, Condition: "Clouds"},
	{Temperature: 18.2, Humidity: 88, Precipitation: 6.5, Condition: "Rain"},
	{Temperature: 18.0, Humidity: 91, Precipitation: 7.1, Condition: "Rain"},
	{Temperature: 17.4, Humidity: 93, Precipitation: 21.3, Condition: "Thunderstorm"},
	{Temperature: 17.9, Humidity: 90, Precipitation: 16.0, Condition: "Rain"},
	{Temperature: 21.0, Humidity: 70, Precipitation: 0.4, Condition: "Clouds"},
	{Temperature: 33.8, Humidity: 40, Precipitation: 0.0, Condition: "Clear"},
	{Temperature: 34.1, Humidity: 38, Precipitation: 0.0, Condition: "Clear"},
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "", "output path for the dashboard document")
	flag.Parse()

	if *out == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -out")
	}

	// Set a fixed clock for reproducible ids and timestamps.
	clock := clockwork.NewFakeClockAt(baseDate)
	doc := build(clock)

	if err := store.NewFileStore(*out).Save(context.Background(), doc); err != nil {
		return fmt.Errorf("writing document: %w", err)
	}
	log.Printf("wrote %d reports and %d alerts to %s", len(doc.Reports), len(doc.Alerts), *out)

	printStats(doc, clock.Now())
	return nil
}

func build(clock *clockwork.FakeClock) domain.Document {
	doc := domain.NewDocument()

	for i, r := range sampleReports {
		r.ID = doc.NextReportID()
		r.Timestamp = domain.NewTimestamp(baseDate.Add(time.Duration(i) * 6 * time.Hour))
		r.Date = r.Timestamp.Format("2006-01-02")
		doc.Reports = append(doc.Reports, r)
	}

	dedup := domain.NewDeduplicator(domain.DefaultDedupWindow, domain.MessageKey)
	for _, reading := range sampleReadings {
		reading.ObservedAt = domain.NewTimestamp(clock.Now())
		candidates := domain.GenerateAlerts(&reading, domain.SoachaZones)
		var added []domain.Alert
		doc.Alerts, added = dedup.Reconcile(doc.Alerts, candidates, clock.Now())
		log.Printf("%s: %.1f°C %.1fmm, %d new alerts",
			clock.Now().Format(time.RFC3339), reading.Temperature, reading.Precipitation, len(added))
		clock.Advance(4 * time.Hour)
	}

	return doc
}

type typeCount struct {
	name  string
	count int
}

func printStats(doc domain.Document, now time.Time) {
	summary := domain.Summarize(doc, domain.SoachaZones, now)

	fmt.Println("\n=== Stats for updating test assertions ===")
	fmt.Printf("Reports: %d, alerts: %d\n", summary.TotalReports, summary.TotalAlerts)
	fmt.Printf("Affected population: %d\n", summary.TotalAffectedPopulation)
	fmt.Printf("Active zones: %d of %d\n", summary.ActiveZones, len(domain.SoachaZones))

	events := make([]typeCount, 0, len(summary.EventDistribution))
	for name, n := range summary.EventDistribution {
		events = append(events, typeCount{name, n})
	}
	sort.Slice(events, func(i, j int) bool {
		if events[i].count != events[j].count {
			return events[i].count > events[j].count
		}
		return events[i].name < events[j].name
	})
	fmt.Print("By event type:")
	for _, e := range events {
		fmt.Printf(" %s=%d", e.name, e.count)
	}
	fmt.Println()

	alertTypes := map[domain.AlertType]int{}
	for _, a := range doc.Alerts {
		alertTypes[a.Type]++
	}
	fmt.Printf("By alert type: heatwave=%d, flood_risk=%d, flood_warning=%d, humidity_high=%d\n",
		alertTypes[domain.AlertHeatwave], alertTypes[domain.AlertFloodRisk],
		alertTypes[domain.AlertFloodWarning], alertTypes[domain.AlertHumidityHigh])

	patterns := domain.DetectPatterns(doc.Reports, nil, now)
	fmt.Printf("Predictive patterns at %s: %d\n", now.Format(time.RFC3339), len(patterns))
}
