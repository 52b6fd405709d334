// Package alerting runs the weather alert cycle: fetch conditions, evaluate
// the alert rules, merge the results into the persisted alert log, and
// publish what was added. It also serves the on-demand predictive
// advisories.
package alerting

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/soacha-risk-dashboard/internal/domain"
	"github.com/couchcryptid/soacha-risk-dashboard/internal/observability"
	"github.com/couchcryptid/soacha-risk-dashboard/internal/store"
	"github.com/jonboulle/clockwork"
)

// AlertPublisher forwards newly persisted alerts to downstream consumers.
type AlertPublisher interface {
	PublishAlerts(ctx context.Context, alerts []domain.Alert) error
}

// RecentAlertCount is how many alerts the weather view returns.
const RecentAlertCount = 5

// Settings tunes a Service. Zero values select the defaults.
type Settings struct {
	Zones    domain.ZoneRegistry
	Dedup    domain.Deduplicator
	Clock    clockwork.Clock
	Interval time.Duration // background evaluation period; 0 disables
}

// Service orchestrates alert generation over the document repository.
type Service struct {
	repo      *store.Repository
	weather   domain.WeatherProvider
	publisher AlertPublisher
	zones     domain.ZoneRegistry
	dedup     domain.Deduplicator
	clock     clockwork.Clock
	interval  time.Duration
	logger    *slog.Logger
	metrics   *observability.Metrics
	evaluated atomic.Bool
}

// New creates a Service. weather and publisher may be nil: without a
// provider every evaluation uses the fallback conditions, and without a
// publisher persisted alerts are not forwarded.
func New(repo *store.Repository, weather domain.WeatherProvider, publisher AlertPublisher, settings Settings, logger *slog.Logger, metrics *observability.Metrics) *Service {
	zones := settings.Zones
	if zones == nil {
		zones = domain.SoachaZones
	}
	dedup := settings.Dedup
	if dedup.Key == nil || dedup.Window <= 0 {
		dedup = domain.NewDeduplicator(dedup.Window, dedup.Key)
	}
	return &Service{
		repo:      repo,
		weather:   weather,
		publisher: publisher,
		zones:     zones,
		dedup:     dedup,
		clock:     domain.ClockOrReal(settings.Clock),
		interval:  settings.Interval,
		logger:    logger,
		metrics:   metrics,
	}
}

// WeatherReport is the result of one evaluation.
type WeatherReport struct {
	CurrentWeather domain.WeatherSnapshot `json:"current_weather"`
	RecentAlerts   []domain.Alert         `json:"recent_alerts"`
	WeatherSource  string                 `json:"weather_source"`
	NewAlerts      int                    `json:"new_alerts"`
}

// PredictiveReport holds on-demand advisories. They are not persisted.
type PredictiveReport struct {
	PredictiveAlerts []domain.Alert   `json:"predictive_alerts"`
	GeneratedAt      domain.Timestamp `json:"generated_at"`
}

// Zones returns the registry the service evaluates against.
func (s *Service) Zones() domain.ZoneRegistry {
	return s.zones
}

// Now returns the service clock's current time.
func (s *Service) Now() time.Time {
	return s.clock.Now()
}

// CurrentConditions returns the current weather, substituting the fallback
// snapshot when it cannot be fetched, and which of the two was used.
func (s *Service) CurrentConditions(ctx context.Context) (domain.WeatherSnapshot, string) {
	snapshot, source := domain.ResolveWeather(ctx, s.weather, s.clock.Now(), s.logger)
	if source == domain.WeatherSourceFallback {
		s.metrics.WeatherRequests.WithLabelValues("fallback").Inc()
	}
	return snapshot, source
}

// Evaluate runs one full cycle and returns the conditions used with the
// most recent alerts. It fails only when the alert log cannot be read or
// written.
func (s *Service) Evaluate(ctx context.Context) (WeatherReport, error) {
	snapshot, source := s.CurrentConditions(ctx)

	candidates := domain.GenerateAlerts(&snapshot, s.zones)
	for _, c := range candidates {
		s.metrics.AlertsGenerated.WithLabelValues(string(c.Type)).Inc()
	}

	doc, added, err := s.ReconcileAndPersist(ctx, candidates)
	if err != nil {
		return WeatherReport{}, err
	}
	s.evaluated.Store(true)

	return WeatherReport{
		CurrentWeather: snapshot,
		RecentAlerts:   doc.RecentAlerts(RecentAlertCount),
		WeatherSource:  source,
		NewAlerts:      len(added),
	}, nil
}

// ReconcileAndPersist merges candidates into the alert log, saves the
// document once and publishes the alerts that were added. When the save
// fails, nothing is added and the error is returned.
func (s *Service) ReconcileAndPersist(ctx context.Context, candidates []domain.Alert) (domain.Document, []domain.Alert, error) {
	now := s.clock.Now()
	var added []domain.Alert

	doc, err := s.repo.Update(ctx, func(doc *domain.Document) error {
		merged, appended := s.dedup.Reconcile(doc.Alerts, candidates, now)
		if len(appended) == 0 {
			return store.ErrUnchanged
		}
		doc.Alerts = merged
		added = appended
		return nil
	})
	if err != nil {
		s.logger.Error("persist alerts failed", "error", err, "candidates", len(candidates))
		return domain.Document{}, nil, err
	}

	s.metrics.AlertsSuppressed.Add(float64(len(candidates) - len(added)))
	s.metrics.AlertsPersisted.Add(float64(len(added)))
	if len(added) > 0 {
		s.logger.Info("alerts persisted", "added", len(added), "suppressed", len(candidates)-len(added))
		s.publish(ctx, added)
	}
	return doc, added, nil
}

// PredictiveAlerts evaluates the pattern detector against stored reports
// and current conditions.
func (s *Service) PredictiveAlerts(ctx context.Context) (PredictiveReport, error) {
	doc, err := s.repo.View(ctx)
	if err != nil {
		return PredictiveReport{}, err
	}
	snapshot, _ := s.CurrentConditions(ctx)
	now := s.clock.Now()

	alerts := domain.DetectPatterns(doc.Reports, &snapshot, now)
	if alerts == nil {
		alerts = []domain.Alert{}
	}
	for _, a := range alerts {
		s.metrics.PredictiveAlerts.WithLabelValues(string(a.Type)).Inc()
	}
	return PredictiveReport{PredictiveAlerts: alerts, GeneratedAt: domain.NewTimestamp(now)}, nil
}

func (s *Service) publish(ctx context.Context, alerts []domain.Alert) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishAlerts(ctx, alerts); err != nil {
		s.metrics.PublishErrors.Inc()
		s.logger.Warn("publish alerts failed", "error", err, "count", len(alerts))
		return
	}
	s.metrics.AlertsPublished.Add(float64(len(alerts)))
}

// CheckReadiness returns nil when the document store can be read.
func (s *Service) CheckReadiness(ctx context.Context) error {
	return s.repo.CheckReadiness(ctx)
}

// Evaluated reports whether at least one evaluation has completed.
func (s *Service) Evaluated() bool {
	return s.evaluated.Load()
}

// Run evaluates on a fixed interval until the context is cancelled. A failed
// evaluation is retried with exponential backoff before the next tick. Run
// returns immediately when no interval is configured.
func (s *Service) Run(ctx context.Context) error {
	if s.interval <= 0 {
		s.logger.Info("background alert evaluation disabled")
		return nil
	}

	s.logger.Info("background alert evaluation started", "interval", s.interval)
	s.metrics.EvaluationRunning.Set(1)
	defer s.metrics.EvaluationRunning.Set(0)

	ticker := s.clock.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		if !s.evaluateWithRetry(ctx) {
			return nil
		}
		select {
		case <-ctx.Done():
			s.logger.Info("background alert evaluation stopping", "reason", ctx.Err())
			return nil
		case <-ticker.Chan():
		}
	}
}

// evaluateWithRetry runs one evaluation, backing off between failures
// (200ms doubling to 5s). Returns false if the context was cancelled.
func (s *Service) evaluateWithRetry(ctx context.Context) bool {
	backoff := 200 * time.Millisecond
	maxBackoff := 5 * time.Second

	for {
		if ctx.Err() != nil {
			return false
		}
		if _, err := s.Evaluate(ctx); err == nil {
			return true
		}
		if !s.sleepWithContext(ctx, backoff) {
			return false
		}
		backoff = nextBackoff(backoff, maxBackoff)
	}
}

func nextBackoff(current, maxBackoff time.Duration) time.Duration {
	next := current * 2
	if next > maxBackoff {
		return maxBackoff
	}
	return next
}

func (s *Service) sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}

	timer := s.clock.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.Chan():
		return true
	}
}
