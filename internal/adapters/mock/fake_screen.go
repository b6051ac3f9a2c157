package mock

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math/rand"

	"github.com/quentinrf/darkwatt/internal/ports"
)

// FakeScreen simulates screenshots for development
// This implements the ports.ScreenshotSource interface
type FakeScreen struct {
	width     int
	height    int
	baseLevel float64
	variation float64
}

// NewFakeScreen creates a source of uniform grey frames.
// baseLevel: average grey level 0-255 (e.g., 230 for a typical light page)
// variation: +/- range per frame (e.g., 20 means 210-250)
func NewFakeScreen(width, height int, baseLevel, variation float64) *FakeScreen {
	return &FakeScreen{
		width:     width,
		height:    height,
		baseLevel: baseLevel,
		variation: variation,
	}
}

// Capture returns a PNG frame whose grey level wanders around the base
func (s *FakeScreen) Capture(ctx context.Context) (ports.ImagePayload, error) {
	if err := ctx.Err(); err != nil {
		return ports.ImagePayload{}, err
	}

	variance := (rand.Float64() - 0.5) * 2 * s.variation
	level := s.baseLevel + variance
	if level < 0 {
		level = 0
	}
	if level > 255 {
		level = 255
	}

	img := image.NewGray(image.Rect(0, 0, s.width, s.height))
	grey := color.Gray{Y: uint8(level)}
	for y := 0; y < s.height; y++ {
		for x := 0; x < s.width; x++ {
			img.SetGray(x, y, grey)
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return ports.ImagePayload{}, fmt.Errorf("failed to encode frame: %w", err)
	}
	return ports.ImagePayload{MIMEType: ports.MIMETypePNG, Data: buf.Bytes()}, nil
}

// Close is a no-op for fake screen
func (s *FakeScreen) Close() error {
	return nil
}
