package messaging

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/quentinrf/darkwatt/internal/colorscheme"
	"github.com/quentinrf/darkwatt/internal/domain"
	"github.com/quentinrf/darkwatt/internal/ports"
)

var (
	// ErrUnknownRequest is returned for anything outside the request set
	ErrUnknownRequest = errors.New("unknown request")
	// ErrInvalidRequest wraps malformed request fields
	ErrInvalidRequest = errors.New("invalid request")
)

// DefaultSavingsHours is the horizon of the potential-savings estimate.
const DefaultSavingsHours = 1.0

// SurfaceRegistry records focus and theme reports.
// *ports.SurfaceTracker implements it.
type SurfaceRegistry interface {
	Focus(source string)
	SetTheme(source string, mode domain.ThemeMode)
	Theme(source string) domain.ThemeMode
	Display() domain.DisplayInfo
}

// DocumentParser turns raw HTML into a classifiable viewport.
type DocumentParser func(html string, width, height int) (colorscheme.Viewport, error)

// Config wires the dispatcher's collaborators. Reporter, Estimator, Parse
// and Reload are optional.
type Config struct {
	Repo         domain.SampleRepository
	State        ports.StateReader
	Surfaces     SurfaceRegistry
	Estimator    ports.LuminanceEstimator
	Reporter     ports.Reporter
	Parse        DocumentParser
	Reload       func(ctx context.Context) error
	SavingsHours float64
	Location     *time.Location
}

// Dispatcher routes each request variant to its handler.
type Dispatcher struct {
	cfg Config

	mu        sync.Mutex
	potential float64
}

// NewDispatcher creates a dispatcher; unset hours and location get defaults.
func NewDispatcher(cfg Config) *Dispatcher {
	if cfg.SavingsHours <= 0 {
		cfg.SavingsHours = DefaultSavingsHours
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	return &Dispatcher{cfg: cfg}
}

// Dispatch handles one request. The switch is the only place requests are
// interpreted; a request type without a case is rejected.
func (d *Dispatcher) Dispatch(ctx context.Context, req Request) (Response, error) {
	switch r := req.(type) {
	case GetData:
		return d.getData(ctx)
	case GetLatest:
		return d.getLatest(ctx)
	case GetRangeAverage:
		return d.rangeAverage(ctx, r.Start, r.End)
	case GetDayAverage:
		return d.dayAverage(ctx, r.Date)
	case GetHistory:
		return d.history(ctx, r.Start, r.End)
	case GetTotalTrackedSites:
		n, err := d.cfg.Repo.CountDistinctSources(ctx)
		if err != nil {
			return nil, err
		}
		return CountResponse{Count: n}, nil
	case FocusChanged:
		return d.focusChanged(r)
	case ReportTheme:
		return d.reportTheme(r.Source, r.Mode)
	case ClassifyDocument:
		return d.classify(r)
	case LoadConfig:
		return d.loadConfig(ctx)
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnknownRequest, req)
	}
}

func (d *Dispatcher) getData(ctx context.Context) (Response, error) {
	snap := d.cfg.State.Snapshot()

	resp := DataResponse{
		TotalTrackedSites: snap.TotalTrackedSites,
		Savings:           snap.Savings,
		PotentialSavingWh: d.potentialSaving(),
		Display:           d.cfg.Surfaces.Display(),
		CPUUsage:          snap.CPUUsage,
	}
	if snap.Sample != nil {
		v := snap.Sample.Value
		resp.CurrentLuminance = &v
		resp.Source = snap.Sample.Source
	}

	if n, err := d.cfg.Repo.CountDistinctSources(ctx); err != nil {
		log.Warn().Err(err).Msg("failed to count tracked sites, using cached value")
	} else {
		resp.TotalTrackedSites = n
	}
	return resp, nil
}

func (d *Dispatcher) getLatest(ctx context.Context) (Response, error) {
	sample, err := d.cfg.Repo.Latest(ctx)
	if errors.Is(err, domain.ErrSampleNotFound) {
		return LatestResponse{}, nil
	}
	if err != nil {
		return nil, err
	}
	return LatestResponse{Sample: sample}, nil
}

func (d *Dispatcher) rangeAverage(ctx context.Context, start, end time.Time) (Response, error) {
	avg, err := d.cfg.Repo.RangeAverage(ctx, start, end)
	if err != nil {
		return nil, err
	}
	return AverageResponse{Average: avg}, nil
}

func (d *Dispatcher) dayAverage(ctx context.Context, date string) (Response, error) {
	day, err := time.ParseInLocation(DateLayout, date, d.cfg.Location)
	if err != nil {
		return nil, fmt.Errorf("%w: date %q: %v", ErrInvalidRequest, date, err)
	}
	return d.rangeAverage(ctx, domain.StartOfDay(day), domain.NextMidnight(day))
}

func (d *Dispatcher) history(ctx context.Context, start, end time.Time) (Response, error) {
	samples, err := d.cfg.Repo.SamplesInRange(ctx, start, end)
	if err != nil {
		return nil, err
	}

	stats := calculateStatistics(samples)
	return HistoryResponse{
		Samples: samples,
		Average: stats.average,
		Min:     stats.min,
		Max:     stats.max,
	}, nil
}

func (d *Dispatcher) focusChanged(r FocusChanged) (Response, error) {
	d.cfg.Surfaces.Focus(r.Source)
	log.Debug().Str("source", r.Source).Msg("focus changed")

	if r.Source != "" {
		mode := d.cfg.Surfaces.Theme(r.Source)
		d.publish(domain.Changes{Source: r.Source, Theme: &mode})
	}
	return Ack{}, nil
}

// reportTheme records a verdict. For a light page it also estimates what a
// dark rendering of the last capture of that page would save.
func (d *Dispatcher) reportTheme(source string, mode domain.ThemeMode) (Response, error) {
	d.cfg.Surfaces.SetTheme(source, mode)
	log.Debug().Str("source", source).Stringer("theme", mode).Msg("theme reported")

	changes := domain.Changes{Source: source, Theme: &mode}

	var potential float64
	if !mode.IsDark() {
		potential = d.estimatePotential(source)
	}
	d.mu.Lock()
	d.potential = potential
	d.mu.Unlock()
	changes.PotentialSavingWh = &potential

	d.publish(changes)
	return Ack{}, nil
}

func (d *Dispatcher) estimatePotential(source string) float64 {
	if d.cfg.Estimator == nil {
		return 0
	}
	snap := d.cfg.State.Snapshot()
	if snap.Payload.Empty() || snap.Surface.Identity != source {
		return 0
	}

	display := d.cfg.Surfaces.Display()
	wh, err := d.cfg.Estimator.EstimateEnergySavings(display.WidthPx, display.HeightPx, d.cfg.SavingsHours, display.Tech, snap.Payload)
	if err != nil {
		log.Warn().Err(err).Str("source", source).Msg("failed to estimate potential savings")
		return 0
	}
	return wh
}

func (d *Dispatcher) classify(r ClassifyDocument) (Response, error) {
	if d.cfg.Parse == nil {
		return nil, fmt.Errorf("%w: document classification is not available", ErrInvalidRequest)
	}
	view, err := d.cfg.Parse(r.HTML, r.Width, r.Height)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	verdict := colorscheme.Detect(view)
	resp := ThemeResponse{
		Mode:        verdict.Mode,
		Signal:      verdict.Signal,
		DefinedDark: colorscheme.HasDefinedDarkTheme(view),
	}

	if r.Source != "" {
		if _, err := d.reportTheme(r.Source, verdict.Mode); err != nil {
			return nil, err
		}
	}
	return resp, nil
}

func (d *Dispatcher) loadConfig(ctx context.Context) (Response, error) {
	if d.cfg.Reload == nil {
		return Ack{}, nil
	}
	if err := d.cfg.Reload(ctx); err != nil {
		return nil, fmt.Errorf("failed to reload config: %w", err)
	}
	return Ack{}, nil
}

func (d *Dispatcher) potentialSaving() float64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.potential
}

func (d *Dispatcher) publish(changes domain.Changes) {
	if d.cfg.Reporter != nil {
		d.cfg.Reporter.Publish(changes)
	}
}

// statistics holds calculated statistics
type statistics struct {
	average float64
	min     float64
	max     float64
}

// calculateStatistics computes stats for a set of samples
func calculateStatistics(samples []*domain.LuminanceSample) statistics {
	if len(samples) == 0 {
		return statistics{}
	}

	var sum float64
	lo := samples[0].Value
	hi := samples[0].Value

	for _, s := range samples {
		sum += s.Value
		if s.Value < lo {
			lo = s.Value
		}
		if s.Value > hi {
			hi = s.Value
		}
	}

	return statistics{
		average: sum / float64(len(samples)),
		min:     lo,
		max:     hi,
	}
}
