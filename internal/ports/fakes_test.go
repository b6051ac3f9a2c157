package ports

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"sync"
	"testing"
	"time"

	"github.com/quentinrf/darkwatt/internal/domain"
)

var errCaptureFailed = errors.New("capture failed")

// fakeClock advances instantly: After moves time forward by d and fires.
type fakeClock struct {
	mu      sync.Mutex
	now     time.Time
	waits   []time.Duration
	onAfter func(n int)
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func (c *fakeClock) After(d time.Duration) <-chan time.Time {
	c.mu.Lock()
	c.waits = append(c.waits, d)
	c.now = c.now.Add(d)
	n, now, hook := len(c.waits), c.now, c.onAfter
	c.mu.Unlock()

	if hook != nil {
		hook(n)
	}
	ch := make(chan time.Time, 1)
	ch <- now
	return ch
}

func (c *fakeClock) Waits() []time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]time.Duration(nil), c.waits...)
}

type fixedSurface struct {
	surface Surface
	ok      bool
	err     error
}

func (f fixedSurface) ActiveSurface(ctx context.Context) (Surface, bool, error) {
	return f.surface, f.ok, f.err
}

// funcSource delegates Capture to fn, counting calls.
type funcSource struct {
	mu    sync.Mutex
	calls int
	fn    func(n int) (ImagePayload, error)
}

func (s *funcSource) Capture(ctx context.Context) (ImagePayload, error) {
	s.mu.Lock()
	s.calls++
	n := s.calls
	s.mu.Unlock()
	return s.fn(n)
}

func (s *funcSource) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func (s *funcSource) Close() error { return nil }

type stubEstimator struct {
	nits    float64
	wh      float64
	err     error
	panicOn bool
}

func (e stubEstimator) EstimateLuminance(img ImagePayload) (float64, error) {
	if e.panicOn {
		panic("kernel exploded")
	}
	return e.nits, e.err
}

func (e stubEstimator) EstimateEnergySavings(w, h int, hours float64, tech domain.DisplayTech, img ImagePayload) (float64, error) {
	return e.wh, e.err
}

type recordingReporter struct {
	mu      sync.Mutex
	changes []domain.Changes
}

func (r *recordingReporter) Publish(c domain.Changes) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.changes = append(r.changes, c)
}

func (r *recordingReporter) All() []domain.Changes {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.Changes(nil), r.changes...)
}

func whitePNG(t *testing.T, size int) ImagePayload {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			img.Set(x, y, color.White)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode failed: %v", err)
	}
	return ImagePayload{MIMEType: MIMETypePNG, Data: buf.Bytes()}
}

func exampleSurface() Surface {
	return Surface{
		Identity: "https://example.com",
		Display:  domain.DisplayInfo{WidthPx: 1920, HeightPx: 1080, ScaleFactor: 1, Tech: domain.DisplayLCD},
	}
}
