package poller

import (
	"context"
	"errors"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/metpoll/met-sensor-poller/internal/forecast"
	"github.com/metpoll/met-sensor-poller/internal/scheduler"
	"github.com/metpoll/met-sensor-poller/internal/sensor"
)

const (
	// RefreshInterval is the regular fetch cadence after a success.
	RefreshInterval = time.Hour

	// FetchTimeout bounds a single request to the remote feed.
	FetchTimeout = 10 * time.Second

	retryFloorMinutes  = 15
	retryJitterMinutes = 6
)

// Config wires a Poller.
type Config struct {
	// Endpoint overrides the adapter's default endpoint when non-empty.
	Endpoint string
	Adapter  forecast.SchemaAdapter

	Latitude  float64
	Longitude float64
	Elevation int

	// ForecastOffset is added to now to obtain the target forecast time.
	ForecastOffset time.Duration

	Client    *http.Client
	Scheduler scheduler.Scheduler
	Sensors   *sensor.Set
	Logger    *zap.Logger

	// Registry receives the fetch metrics; nil disables them.
	Registry prometheus.Registerer
}

// Poller owns the current forecast series, the fetch/retry loop and the
// hourly sensor-update cadence. The series is replaced wholesale on every
// successful fetch and retained untouched across failures, so the sensors
// keep serving stale data until a fetch eventually succeeds.
type Poller struct {
	endpoint string
	params   url.Values
	adapter  forecast.SchemaAdapter
	client   *http.Client
	breaker  *gobreaker.CircuitBreaker
	sched    scheduler.Scheduler
	sensors  *sensor.Set
	offset   time.Duration
	log      *zap.Logger

	fetches  *prometheus.CounterVec
	failures *prometheus.CounterVec

	// test seams
	now  func() time.Time
	intN func(n int) int

	mu         sync.RWMutex
	series     forecast.Series
	haveSeries bool
}

// New creates a Poller. Call Start to kick off the loop.
func New(cfg Config) *Poller {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = cfg.Adapter.Endpoint()
	}
	client := cfg.Client
	if client == nil {
		client = &http.Client{Timeout: FetchTimeout}
	}

	p := &Poller{
		endpoint: endpoint,
		params:   cfg.Adapter.QueryParams(cfg.Latitude, cfg.Longitude, cfg.Elevation),
		adapter:  cfg.Adapter,
		client:   client,
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "locationforecast",
			MaxRequests: 1,
			Interval:    10 * time.Minute,
			Timeout:     10 * time.Minute,
		}),
		sched:   cfg.Scheduler,
		sensors: cfg.Sensors,
		offset:  cfg.ForecastOffset,
		log:     cfg.Logger,
		now:     time.Now,
		intN:    rand.Intn,
	}

	if cfg.Registry != nil {
		p.fetches = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "met_fetch_total",
			Help: "Forecast fetch attempts by outcome.",
		}, []string{"outcome"})
		p.failures = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "met_fetch_failures_total",
			Help: "Forecast fetch failures by reason.",
		}, []string{"reason"})
		cfg.Registry.MustRegister(p.fetches, p.failures)
	}

	return p
}

// Start registers the hourly sensor-update cadence at a randomly chosen
// minute offset, then performs the initial fetch. The offset spreads load
// across independently started instances.
func (p *Poller) Start() error {
	minute := p.intN(60)
	if err := p.sched.HourlyAt(minute, p.UpdateSensors); err != nil {
		return err
	}
	p.log.Info("hourly sensor update scheduled", zap.Int("minute", minute))

	p.Refresh()
	return nil
}

// Refresh fetches the feed, replaces the stored series, updates the sensors
// and schedules the next refresh. On failure the stored series is left as it
// was and a jittered retry is scheduled instead; the loop never gives up.
func (p *Poller) Refresh() {
	ctx, cancel := context.WithTimeout(context.Background(), FetchTimeout)
	defer cancel()

	series, err := p.fetch(ctx)
	if err != nil {
		p.count(p.fetches, "failure")
		p.count(p.failures, forecast.Reason(err))
		p.tryAgain(err)
		return
	}
	p.count(p.fetches, "success")

	p.mu.Lock()
	p.series = series
	p.haveSeries = true
	p.mu.Unlock()

	p.UpdateSensors()
	p.sched.CallLater(RefreshInterval, p.Refresh)
}

// tryAgain schedules the next fetch after 15 to 20 minutes, chosen uniformly
// in whole minutes. The jitter avoids synchronized retry storms after an
// outage. All failure kinds take the same path.
func (p *Poller) tryAgain(err error) {
	minutes := retryFloorMinutes + p.intN(retryJitterMinutes)
	p.log.Error("forecast fetch failed, retrying",
		zap.Int("retryMinutes", minutes),
		zap.String("reason", forecast.Reason(err)),
		zap.Error(err),
	)
	p.sched.CallLater(time.Duration(minutes)*time.Minute, p.Refresh)
}

// UpdateSensors re-runs selection and extraction against the stored series
// without fetching. The selected entry advances as the clock does, so this
// also runs on the hourly cadence between fetches. With no stored series, or
// none of its entries still eligible, sensor values are left untouched.
func (p *Poller) UpdateSensors() {
	p.mu.RLock()
	series, ok := p.series, p.haveSeries
	p.mu.RUnlock()
	if !ok {
		return
	}

	candidates := forecast.Candidates(series, p.now(), p.offset)
	p.sensors.Apply(context.Background(), candidates)
}

// CandidatesAt exposes the selection algorithm for an arbitrary clock value,
// for the read API.
func (p *Poller) CandidatesAt(now time.Time) []forecast.TimeEntry {
	p.mu.RLock()
	series, ok := p.series, p.haveSeries
	p.mu.RUnlock()
	if !ok {
		return nil
	}
	return forecast.Candidates(series, now, p.offset)
}

// ForecastOffset returns the configured horizon.
func (p *Poller) ForecastOffset() time.Duration { return p.offset }

func (p *Poller) fetch(ctx context.Context) (forecast.Series, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.endpoint+"?"+p.params.Encode(), nil)
	if err != nil {
		return forecast.Series{}, &forecast.TransportError{Err: err}
	}

	result, err := p.breaker.Execute(func() (interface{}, error) {
		resp, err := p.client.Do(req)
		if err != nil {
			return nil, &forecast.TransportError{Err: err}
		}
		defer resp.Body.Close()

		if resp.StatusCode >= http.StatusBadRequest {
			return nil, &forecast.RemoteStatusError{URL: p.endpoint, StatusCode: resp.StatusCode}
		}

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, &forecast.TransportError{Err: err}
		}
		return body, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return forecast.Series{}, &forecast.TransportError{Err: err}
		}
		return forecast.Series{}, err
	}

	return p.adapter.Parse(result.([]byte))
}

func (p *Poller) count(c *prometheus.CounterVec, label string) {
	if c != nil {
		c.WithLabelValues(label).Inc()
	}
}
