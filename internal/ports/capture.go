package ports

import (
	"bytes"
	"context"
	"fmt"

	"github.com/quentinrf/darkwatt/internal/domain"
)

// MIMETypePNG is the only encoding the estimator accepts.
const MIMETypePNG = "image/png"

var pngSignature = []byte("\x89PNG\r\n\x1a\n")

// ImagePayload is an encoded screenshot.
type ImagePayload struct {
	MIMEType string
	Data     []byte
}

// Empty reports whether the payload carries no image.
func (p ImagePayload) Empty() bool {
	return len(p.Data) == 0
}

// Validate checks the declared encoding and the PNG signature.
func (p ImagePayload) Validate(expected string) error {
	if p.MIMEType != expected {
		return fmt.Errorf("%w: got %q, want %q", domain.ErrMalformedCapture, p.MIMEType, expected)
	}
	if expected == MIMETypePNG && !bytes.HasPrefix(p.Data, pngSignature) {
		return fmt.Errorf("%w: missing png signature", domain.ErrMalformedCapture)
	}
	return nil
}

// Surface is the thing currently being looked at: a browser tab reported by
// the page side or a whole display.
type Surface struct {
	Identity string
	Display  domain.DisplayInfo
}

// SurfaceResolver answers which surface is active.
// This is a PORT - the focus tracker and the screen adapter implement it
type SurfaceResolver interface {
	// ActiveSurface returns ok=false when nothing is focused.
	ActiveSurface(ctx context.Context) (Surface, bool, error)
}

// ScreenshotSource captures the visible part of the active surface.
type ScreenshotSource interface {
	Capture(ctx context.Context) (ImagePayload, error)

	// Close releases any resources
	Close() error
}

// LuminanceEstimator turns a screenshot into nits and energy figures.
type LuminanceEstimator interface {
	EstimateLuminance(img ImagePayload) (float64, error)

	// EstimateEnergySavings returns the Wh a dark rendering of img would
	// save over the given hours on a display of the given size and kind.
	EstimateEnergySavings(widthPx, heightPx int, hours float64, tech domain.DisplayTech, img ImagePayload) (float64, error)
}

// Reporter pushes state deltas to observers. Delivery is best effort.
type Reporter interface {
	Publish(changes domain.Changes)
}

// CPUMonitor reports host CPU usage in percent.
type CPUMonitor interface {
	CPUPercent(ctx context.Context) (float64, error)
}

// ThemeLookup returns the last known theme verdict for a source.
type ThemeLookup interface {
	Theme(source string) domain.ThemeMode
}
