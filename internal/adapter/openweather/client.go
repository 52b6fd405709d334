package openweather

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/couchcryptid/soacha-risk-dashboard/internal/domain"
	"github.com/couchcryptid/soacha-risk-dashboard/internal/observability"
	"github.com/go-resty/resty/v2"
	"github.com/sony/gobreaker/v2"
)

// DefaultBaseURL is the OpenWeatherMap 2.5 API root.
const DefaultBaseURL = "https://api.openweathermap.org/data/2.5"

// Client implements domain.WeatherProvider using the OpenWeatherMap current
// weather endpoint for a single fixed location.
type Client struct {
	http    *resty.Client
	breaker *gobreaker.CircuitBreaker[*resty.Response]
	apiKey  string
	lat     float64
	lon     float64
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewClient creates a client for the location at lat, lon. Requests fail
// after timeout and are never retried.
func NewClient(baseURL, apiKey string, lat, lon float64, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		http: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(timeout).
			SetHeader("Accept", "application/json"),
		breaker: newBreaker(),
		apiKey:  apiKey,
		lat:     lat,
		lon:     lon,
		metrics: metrics,
		logger:  logger,
	}
}

// newBreaker stops calling the API after repeated failures so requests fall
// back immediately instead of each waiting out the timeout.
func newBreaker() *gobreaker.CircuitBreaker[*resty.Response] {
	return gobreaker.NewCircuitBreaker[*resty.Response](gobreaker.Settings{
		Name:        "openweathermap",
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 5
		},
	})
}

// Key identifies the client's location for caching.
func (c *Client) Key() string {
	return fmt.Sprintf("%.4f,%.4f", c.lat, c.lon)
}

// CurrentWeather fetches current conditions.
func (c *Client) CurrentWeather(ctx context.Context) (domain.WeatherSnapshot, error) {
	start := time.Now()
	var body response

	_, err := c.breaker.Execute(func() (*resty.Response, error) {
		resp, err := c.http.R().
			SetContext(ctx).
			SetQueryParams(map[string]string{
				"lat":   strconv.FormatFloat(c.lat, 'f', -1, 64),
				"lon":   strconv.FormatFloat(c.lon, 'f', -1, 64),
				"appid": c.apiKey,
				"units": "metric",
			}).
			SetResult(&body).
			Get("/weather")
		if err != nil {
			return nil, err
		}
		if resp.IsError() {
			return resp, fmt.Errorf("openweathermap API error: status %d: %s", resp.StatusCode(), resp.String())
		}
		return resp, nil
	})
	c.metrics.WeatherAPIDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		c.metrics.WeatherRequests.WithLabelValues("error").Inc()
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			c.logger.Debug("weather circuit open, skipping request")
		}
		return domain.WeatherSnapshot{}, fmt.Errorf("current weather request: %w", err)
	}

	snapshot, err := body.snapshot()
	if err != nil {
		c.metrics.WeatherRequests.WithLabelValues("error").Inc()
		return domain.WeatherSnapshot{}, err
	}
	c.metrics.WeatherRequests.WithLabelValues("success").Inc()
	return snapshot, nil
}

// OpenWeatherMap API response types.

type response struct {
	Main *struct {
		Temp     float64 `json:"temp"`
		Humidity int     `json:"humidity"`
	} `json:"main"`
	Rain *struct {
		OneHour float64 `json:"1h"`
	} `json:"rain"`
	Weather []struct {
		Main        string `json:"main"`
		Description string `json:"description"`
	} `json:"weather"`
	Dt int64 `json:"dt"` // unix seconds
}

func (r response) snapshot() (domain.WeatherSnapshot, error) {
	if r.Main == nil || len(r.Weather) == 0 {
		return domain.WeatherSnapshot{}, errors.New("malformed weather response: missing main or weather")
	}
	s := domain.WeatherSnapshot{
		Temperature: r.Main.Temp,
		Humidity:    r.Main.Humidity,
		Condition:   r.Weather[0].Main,
	}
	if r.Rain != nil {
		s.Precipitation = r.Rain.OneHour
	}
	if r.Dt > 0 {
		s.ObservedAt = domain.NewTimestamp(time.Unix(r.Dt, 0).UTC())
	}
	return s, nil
}
