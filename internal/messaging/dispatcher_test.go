package messaging

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quentinrf/darkwatt/internal/adapters/htmldoc"
	"github.com/quentinrf/darkwatt/internal/adapters/memory"
	"github.com/quentinrf/darkwatt/internal/colorscheme"
	"github.com/quentinrf/darkwatt/internal/domain"
	"github.com/quentinrf/darkwatt/internal/ports"
)

type fixedState struct {
	snap ports.Snapshot
}

func (s fixedState) Snapshot() ports.Snapshot { return s.snap }

type fixedEstimator struct {
	wh float64
}

func (fixedEstimator) EstimateLuminance(ports.ImagePayload) (float64, error) { return 0, nil }

func (e fixedEstimator) EstimateEnergySavings(int, int, float64, domain.DisplayTech, ports.ImagePayload) (float64, error) {
	return e.wh, nil
}

type collectingReporter struct {
	changes []domain.Changes
}

func (r *collectingReporter) Publish(c domain.Changes) { r.changes = append(r.changes, c) }

type bogusRequest struct{}

func (bogusRequest) isRequest() {}

type fixture struct {
	d        *Dispatcher
	repo     *memory.SampleRepository
	tracker  *ports.SurfaceTracker
	reporter *collectingReporter
}

func newFixture(t *testing.T, snap ports.Snapshot) fixture {
	t.Helper()
	repo := memory.NewSampleRepository()
	tracker := ports.NewSurfaceTracker(domain.DisplayInfo{WidthPx: 1920, HeightPx: 1080, ScaleFactor: 1, Tech: domain.DisplayLCD})
	reporter := &collectingReporter{}

	d := NewDispatcher(Config{
		Repo:      repo,
		State:     fixedState{snap: snap},
		Surfaces:  tracker,
		Estimator: fixedEstimator{wh: 0.25},
		Reporter:  reporter,
		Parse:     htmldoc.ParseViewport,
		Location:  time.UTC,
	})
	return fixture{d: d, repo: repo, tracker: tracker, reporter: reporter}
}

func seed(t *testing.T, repo *memory.SampleRepository, values map[time.Time]float64, source string) {
	t.Helper()
	for ts, v := range values {
		s, err := domain.NewLuminanceSample(v, source, ts)
		require.NoError(t, err)
		require.NoError(t, repo.Append(context.Background(), s))
	}
}

func TestDispatch_UnknownRequest(t *testing.T) {
	f := newFixture(t, ports.Snapshot{})

	_, err := f.d.Dispatch(context.Background(), bogusRequest{})
	assert.ErrorIs(t, err, ErrUnknownRequest)

	_, err = f.d.Dispatch(context.Background(), nil)
	assert.ErrorIs(t, err, ErrUnknownRequest)
}

func TestDispatch_GetData_NoSamples(t *testing.T) {
	f := newFixture(t, ports.Snapshot{})

	resp, err := f.d.Dispatch(context.Background(), GetData{})
	require.NoError(t, err)

	data := resp.(DataResponse)
	assert.Nil(t, data.CurrentLuminance)
	assert.Equal(t, 0, data.TotalTrackedSites)
	assert.Equal(t, 1920, data.Display.WidthPx)
}

func TestDispatch_GetData(t *testing.T) {
	sample, err := domain.NewLuminanceSample(140, "https://example.com", time.Now())
	require.NoError(t, err)
	f := newFixture(t, ports.Snapshot{
		Sample:  sample,
		Savings: domain.SavingsSummary{Today: 2, Total: 5},
	})
	seed(t, f.repo, map[time.Time]float64{time.Now(): 140}, "https://example.com")

	resp, err := f.d.Dispatch(context.Background(), GetData{})
	require.NoError(t, err)

	data := resp.(DataResponse)
	require.NotNil(t, data.CurrentLuminance)
	assert.Equal(t, 140.0, *data.CurrentLuminance)
	assert.Equal(t, 1, data.TotalTrackedSites)
	assert.Equal(t, 5.0, data.Savings.Total)
	assert.Equal(t, "https://example.com", data.Source)
}

func TestDispatch_GetLatest(t *testing.T) {
	f := newFixture(t, ports.Snapshot{})
	ctx := context.Background()

	resp, err := f.d.Dispatch(ctx, GetLatest{})
	require.NoError(t, err)
	assert.Nil(t, resp.(LatestResponse).Sample)

	now := time.Now()
	seed(t, f.repo, map[time.Time]float64{now.Add(-time.Minute): 10, now: 20}, "")

	resp, err = f.d.Dispatch(ctx, GetLatest{})
	require.NoError(t, err)
	require.NotNil(t, resp.(LatestResponse).Sample)
	assert.Equal(t, 20.0, resp.(LatestResponse).Sample.Value)
}

func TestDispatch_Averages(t *testing.T) {
	f := newFixture(t, ports.Snapshot{})
	ctx := context.Background()

	day := time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)
	seed(t, f.repo, map[time.Time]float64{
		day.Add(-time.Minute):   500,
		day:                     100,
		day.Add(23 * time.Hour): 300,
		day.Add(24 * time.Hour): 900,
	}, "https://example.com")

	tests := []struct {
		name string
		req  Request
		want float64
	}{
		{"day", GetDayAverage{Date: "2026-10-19"}, 200},
		{"empty day", GetDayAverage{Date: "2026-10-01"}, 0},
		{"range", GetRangeAverage{Start: day.Add(-time.Hour), End: day.Add(time.Hour)}, 300},
		{"empty range", GetRangeAverage{Start: day.Add(48 * time.Hour), End: day.Add(49 * time.Hour)}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := f.d.Dispatch(ctx, tt.req)
			require.NoError(t, err)
			assert.Equal(t, tt.want, resp.(AverageResponse).Average)
		})
	}

	_, err := f.d.Dispatch(ctx, GetDayAverage{Date: "19/10/2026"})
	assert.ErrorIs(t, err, ErrInvalidRequest)

	_, err = f.d.Dispatch(ctx, GetRangeAverage{Start: day, End: day.Add(-time.Hour)})
	assert.ErrorIs(t, err, domain.ErrInvalidRange)
}

func TestDispatch_GetHistory(t *testing.T) {
	f := newFixture(t, ports.Snapshot{})
	ctx := context.Background()

	base := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	seed(t, f.repo, map[time.Time]float64{
		base:                      50,
		base.Add(time.Minute):     150,
		base.Add(2 * time.Minute): 100,
	}, "")

	resp, err := f.d.Dispatch(ctx, GetHistory{Start: base, End: base.Add(time.Hour)})
	require.NoError(t, err)

	h := resp.(HistoryResponse)
	require.Len(t, h.Samples, 3)
	assert.Equal(t, 50.0, h.Samples[0].Value)
	assert.Equal(t, 100.0, h.Average)
	assert.Equal(t, 50.0, h.Min)
	assert.Equal(t, 150.0, h.Max)

	resp, err = f.d.Dispatch(ctx, GetHistory{Start: base.Add(time.Hour), End: base.Add(2 * time.Hour)})
	require.NoError(t, err)
	assert.Equal(t, HistoryResponse{}, resp.(HistoryResponse))
}

func TestDispatch_TotalTrackedSites(t *testing.T) {
	f := newFixture(t, ports.Snapshot{})
	now := time.Now()
	seed(t, f.repo, map[time.Time]float64{now: 1}, "https://a.example")
	seed(t, f.repo, map[time.Time]float64{now: 1}, "https://b.example")
	seed(t, f.repo, map[time.Time]float64{now: 1}, "")

	resp, err := f.d.Dispatch(context.Background(), GetTotalTrackedSites{})
	require.NoError(t, err)
	assert.Equal(t, CountResponse{Count: 2}, resp)
}

func TestDispatch_FocusChanged(t *testing.T) {
	f := newFixture(t, ports.Snapshot{})
	ctx := context.Background()

	resp, err := f.d.Dispatch(ctx, FocusChanged{Source: "https://example.com"})
	require.NoError(t, err)
	assert.Equal(t, Ack{}, resp)

	active, ok := f.tracker.Active()
	assert.True(t, ok)
	assert.Equal(t, "https://example.com", active)
	require.Len(t, f.reporter.changes, 1)

	_, err = f.d.Dispatch(ctx, FocusChanged{})
	require.NoError(t, err)
	_, ok = f.tracker.Active()
	assert.False(t, ok)
	assert.Len(t, f.reporter.changes, 1)
}

func TestDispatch_ReportTheme(t *testing.T) {
	payload := ports.ImagePayload{MIMEType: ports.MIMETypePNG, Data: []byte("\x89PNG\r\n\x1a\n")}
	f := newFixture(t, ports.Snapshot{
		Surface: ports.Surface{Identity: "https://example.com"},
		Payload: payload,
	})
	ctx := context.Background()

	_, err := f.d.Dispatch(ctx, ReportTheme{Source: "https://example.com", Mode: domain.ThemeLight})
	require.NoError(t, err)

	require.Len(t, f.reporter.changes, 1)
	c := f.reporter.changes[0]
	require.NotNil(t, c.PotentialSavingWh)
	assert.Equal(t, 0.25, *c.PotentialSavingWh)
	require.NotNil(t, c.Theme)
	assert.Equal(t, domain.ThemeLight, *c.Theme)

	resp, _ := f.d.Dispatch(ctx, GetData{})
	assert.Equal(t, 0.25, resp.(DataResponse).PotentialSavingWh)

	_, err = f.d.Dispatch(ctx, ReportTheme{Source: "https://example.com", Mode: domain.ThemeDark})
	require.NoError(t, err)
	assert.Equal(t, domain.ThemeDark, f.tracker.Theme("https://example.com"))
	assert.Equal(t, 0.0, *f.reporter.changes[1].PotentialSavingWh)

	// a verdict for another page has no capture to estimate from
	_, err = f.d.Dispatch(ctx, ReportTheme{Source: "https://other.example", Mode: domain.ThemeLight})
	require.NoError(t, err)
	assert.Equal(t, 0.0, *f.reporter.changes[2].PotentialSavingWh)
}

func TestDispatch_ClassifyDocument(t *testing.T) {
	f := newFixture(t, ports.Snapshot{})
	ctx := context.Background()

	resp, err := f.d.Dispatch(ctx, ClassifyDocument{
		Source: "https://example.com",
		HTML:   `<html class="dark-mode"><body></body></html>`,
	})
	require.NoError(t, err)

	theme := resp.(ThemeResponse)
	assert.Equal(t, domain.ThemeDark, theme.Mode)
	assert.Equal(t, colorscheme.SignalClass, theme.Signal)
	assert.Equal(t, domain.ThemeDark, f.tracker.Theme("https://example.com"))

	resp, err = f.d.Dispatch(ctx, ClassifyDocument{
		HTML: `<html><head><style>html { background: #101010 } body { color: #eee }</style></head><body></body></html>`,
	})
	require.NoError(t, err)
	theme = resp.(ThemeResponse)
	assert.Equal(t, domain.ThemeDark, theme.Mode)
	assert.True(t, theme.DefinedDark)
}

func TestDispatch_LoadConfig(t *testing.T) {
	f := newFixture(t, ports.Snapshot{})

	resp, err := f.d.Dispatch(context.Background(), LoadConfig{})
	require.NoError(t, err)
	assert.Equal(t, Ack{}, resp)

	calls := 0
	f.d.cfg.Reload = func(context.Context) error {
		calls++
		return errors.New("bad file")
	}
	_, err = f.d.Dispatch(context.Background(), LoadConfig{})
	assert.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestCalculateStatistics_Empty(t *testing.T) {
	assert.Equal(t, statistics{}, calculateStatistics(nil))
}
