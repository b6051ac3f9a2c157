package ports

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/quentinrf/darkwatt/internal/domain"
)

const (
	// DefaultInterval is the target spacing between cycle starts.
	DefaultInterval = time.Second
	// DefaultRetention is how long samples are kept.
	DefaultRetention = 30 * 24 * time.Hour

	cleanupEvery = 24 * time.Hour
)

// ErrRecorderRunning is returned when Start is called on a running recorder.
var ErrRecorderRunning = errors.New("recorder already running")

// Recorder is the sampling loop: it runs one sample cycle at a time, stores
// the result and schedules the next cycle one interval after the start of the
// previous one.
type Recorder struct {
	sampler   *Sampler
	repo      domain.SampleRepository
	interval  atomic.Int64
	retention time.Duration

	clock     Clock
	loc       *time.Location
	state     *State
	reporter  Reporter
	savings   domain.SavingsStore
	estimator LuminanceEstimator
	themes    ThemeLookup
	cpu       CPUMonitor

	running     atomic.Bool
	ledger      *domain.SavingsLedger
	last        time.Time
	lastCleanup time.Time
}

// RecorderOption is a functional option for configuring the Recorder.
type RecorderOption func(*Recorder)

// WithClock replaces the wall clock, mostly for tests.
func WithClock(c Clock) RecorderOption {
	return func(r *Recorder) {
		r.clock = c
	}
}

// WithLocation sets the zone whose midnights and Mondays reset the savings
// counters. Defaults to time.Local.
func WithLocation(loc *time.Location) RecorderOption {
	return func(r *Recorder) {
		if loc != nil {
			r.loc = loc
		}
	}
}

// WithState makes the recorder write its observations into s.
func WithState(s *State) RecorderOption {
	return func(r *Recorder) {
		r.state = s
	}
}

// WithReporter publishes a Changes delta after every stored sample.
func WithReporter(rep Reporter) RecorderOption {
	return func(r *Recorder) {
		r.reporter = rep
	}
}

// WithSavings enables savings accrual for surfaces whose theme is light.
func WithSavings(store domain.SavingsStore, estimator LuminanceEstimator, themes ThemeLookup) RecorderOption {
	return func(r *Recorder) {
		r.savings = store
		r.estimator = estimator
		r.themes = themes
	}
}

// WithCPUMonitor attaches host CPU usage to each published delta.
func WithCPUMonitor(m CPUMonitor) RecorderOption {
	return func(r *Recorder) {
		r.cpu = m
	}
}

// WithRetention sets how long samples are kept. Zero disables cleanup.
func WithRetention(d time.Duration) RecorderOption {
	return func(r *Recorder) {
		r.retention = d
	}
}

// NewRecorder creates a new background recorder
func NewRecorder(sampler *Sampler, repo domain.SampleRepository, interval time.Duration, opts ...RecorderOption) *Recorder {
	r := &Recorder{
		sampler:   sampler,
		repo:      repo,
		retention: DefaultRetention,
		clock:     SystemClock{},
		loc:       time.Local,
		state:     NewState(),
	}
	if interval <= 0 {
		interval = DefaultInterval
	}
	r.interval.Store(int64(interval))

	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Interval returns the current target interval.
func (r *Recorder) Interval() time.Duration {
	return time.Duration(r.interval.Load())
}

// SetInterval changes the interval; the next wait uses the new value.
// Non-positive values are ignored.
func (r *Recorder) SetInterval(d time.Duration) {
	if d <= 0 {
		return
	}
	r.interval.Store(int64(d))
	log.Info().Dur("interval", d).Msg("sampling interval updated")
}

// State returns the cache the recorder writes to.
func (r *Recorder) State() *State {
	return r.state
}

// Start runs the loop until ctx is cancelled. Only one loop may run per
// recorder.
func (r *Recorder) Start(ctx context.Context) error {
	if !r.running.CompareAndSwap(false, true) {
		return ErrRecorderRunning
	}
	defer r.running.Store(false)

	log.Info().
		Dur("interval", r.Interval()).
		Dur("retention", r.retention).
		Msg("starting background recorder")

	r.lastCleanup = r.clock.Now()

	for {
		if ctx.Err() != nil {
			log.Info().Msg("stopping background recorder")
			return nil
		}

		t0 := r.clock.Now()
		r.recordOnce(ctx)
		r.cleanup(ctx)

		wait := NextWait(r.Interval(), r.clock.Now().Sub(t0))
		log.Trace().Dur("wait", wait).Msg("next sample scheduled")

		select {
		case <-ctx.Done():
			log.Info().Msg("stopping background recorder")
			return nil
		case <-r.clock.After(wait):
		}
	}
}

// recordOnce samples and stores. Every step after sampling is best effort.
func (r *Recorder) recordOnce(ctx context.Context) {
	obs := r.sampler.SampleOnce(ctx)
	if obs == nil {
		return
	}

	defer func() {
		if p := recover(); p != nil {
			log.Error().Str("cycle", obs.Cycle).Interface("panic", p).Msg("failed to record sample")
		}
	}()

	ts := r.clock.Now()
	if ts.Before(r.last) {
		ts = r.last
	}
	r.last = ts

	sample, err := domain.NewLuminanceSample(obs.Luminance, obs.Surface.Identity, ts)
	if err != nil {
		log.Warn().Err(err).Str("cycle", obs.Cycle).Float64("luminance", obs.Luminance).Msg("failed to create sample")
		return
	}

	r.state.setObservation(sample, obs)

	if err := r.repo.Append(ctx, sample); err != nil {
		log.Error().Err(err).Str("cycle", obs.Cycle).Msg("failed to save sample")
	}

	changes := domain.Changes{
		Source:           sample.Source,
		CurrentLuminance: &sample.Value,
	}

	if n, err := r.repo.CountDistinctSources(ctx); err != nil {
		log.Error().Err(err).Msg("failed to count tracked sites")
	} else {
		r.state.setTrackedSites(n)
		changes.TotalTrackedSites = &n
	}

	if summary, ok := r.accrue(ctx, obs, sample, ts.In(r.loc)); ok {
		r.state.setSavings(summary)
		changes.Savings = &summary
	}

	if r.cpu != nil {
		if pct, err := r.cpu.CPUPercent(ctx); err != nil {
			log.Debug().Err(err).Msg("failed to read cpu usage")
		} else {
			r.state.setCPU(pct)
			changes.CPUUsage = &pct
		}
	}

	if r.reporter != nil {
		r.reporter.Publish(changes)
	}

	log.Debug().
		Str("cycle", obs.Cycle).
		Str("source", sample.Source).
		Float64("luminance", sample.Value).
		Str("brightness", sample.Brightness()).
		Msg("recorded luminance sample")
}

// accrue adds this cycle's savings to the ledger when the surface is light.
// Dark surfaces add nothing but still report the current summary. now is in
// the recorder's location so counters reset at local midnight.
func (r *Recorder) accrue(ctx context.Context, obs *Observation, sample *domain.LuminanceSample, now time.Time) (domain.SavingsSummary, bool) {
	if r.savings == nil {
		return domain.SavingsSummary{}, false
	}

	if r.ledger == nil {
		ledger, err := r.savings.LoadLedger(ctx, now)
		if err != nil {
			log.Error().Err(err).Msg("failed to load savings ledger")
			return domain.SavingsSummary{}, false
		}
		r.ledger = ledger
	}

	if r.themes == nil || !r.themes.Theme(sample.Source).IsDark() {
		d := obs.Surface.Display
		wh, err := r.estimator.EstimateEnergySavings(d.WidthPx, d.HeightPx, r.Interval().Hours(), d.Tech, obs.Payload)
		if err != nil {
			log.Warn().Err(err).Str("cycle", obs.Cycle).Msg("failed to estimate savings")
		} else {
			r.ledger.Add(now, sample.Source, wh)
			if err := r.savings.SaveLedger(ctx, r.ledger); err != nil {
				log.Error().Err(err).Msg("failed to save savings ledger")
			}
		}
	}

	return r.ledger.Summary(now, sample.Source), true
}

// cleanup deletes samples past retention once per day.
func (r *Recorder) cleanup(ctx context.Context) {
	if r.retention <= 0 {
		return
	}
	now := r.clock.Now()
	if now.Sub(r.lastCleanup) < cleanupEvery {
		return
	}
	r.lastCleanup = now

	cutoff := now.Add(-r.retention)
	if err := r.repo.DeleteOlderThan(ctx, cutoff); err != nil {
		log.Error().Err(err).Msg("failed to delete old samples")
		return
	}
	log.Info().Time("cutoff", cutoff).Msg("deleted samples past retention")
}
