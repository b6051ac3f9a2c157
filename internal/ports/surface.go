package ports

import (
	"context"
	"sync"

	"github.com/quentinrf/darkwatt/internal/domain"
)

// SurfaceTracker holds the focus and theme reports sent by the page side.
// It implements SurfaceResolver and ThemeLookup.
type SurfaceTracker struct {
	mu      sync.RWMutex
	active  string
	themes  map[string]domain.ThemeMode
	display domain.DisplayInfo
}

// NewSurfaceTracker creates a tracker with nothing focused.
func NewSurfaceTracker(display domain.DisplayInfo) *SurfaceTracker {
	return &SurfaceTracker{
		themes:  make(map[string]domain.ThemeMode),
		display: display,
	}
}

// Focus marks source as the active surface. An empty source clears it.
func (t *SurfaceTracker) Focus(source string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.active = source
}

// Active returns the focused source.
func (t *SurfaceTracker) Active() (string, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.active, t.active != ""
}

// SetTheme records the verdict for a source.
func (t *SurfaceTracker) SetTheme(source string, mode domain.ThemeMode) {
	if source == "" {
		source = domain.UnknownSource
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.themes[source] = mode
}

// Theme returns the last verdict for source; unknown sources are light.
func (t *SurfaceTracker) Theme(source string) domain.ThemeMode {
	if source == "" {
		source = domain.UnknownSource
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.themes[source]
}

// SetDisplay replaces the display geometry, e.g. after a monitor change.
func (t *SurfaceTracker) SetDisplay(d domain.DisplayInfo) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.display = d
}

// Display returns the current display geometry.
func (t *SurfaceTracker) Display() domain.DisplayInfo {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.display
}

// ActiveSurface implements SurfaceResolver.
func (t *SurfaceTracker) ActiveSurface(ctx context.Context) (Surface, bool, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.active == "" {
		return Surface{}, false, nil
	}
	return Surface{Identity: t.active, Display: t.display}, true, nil
}
