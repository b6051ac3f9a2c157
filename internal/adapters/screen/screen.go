// Package screen captures a physical display with kbinani/screenshot.
package screen

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"sync"

	"github.com/kbinani/screenshot"

	"github.com/quentinrf/darkwatt/internal/domain"
	"github.com/quentinrf/darkwatt/internal/ports"
)

// Screen is both a ScreenshotSource and a SurfaceResolver for one display.
type Screen struct {
	index int
	scale float64
	tech  domain.DisplayTech

	encMu sync.Mutex
	enc   png.Encoder
}

// New returns a capturer for the display at index.
func New(index int, scale float64, tech domain.DisplayTech) *Screen {
	if scale <= 0 {
		scale = 1
	}
	return &Screen{
		index: index,
		scale: scale,
		tech:  tech,
		enc:   png.Encoder{CompressionLevel: png.BestSpeed},
	}
}

// Identity names the display surface.
func (s *Screen) Identity() string {
	return fmt.Sprintf("display:%d", s.index)
}

func (s *Screen) bounds() (image.Rectangle, error) {
	n := screenshot.NumActiveDisplays()
	if n <= s.index {
		return image.Rectangle{}, fmt.Errorf("%w: display %d of %d", domain.ErrCaptureUnavailable, s.index, n)
	}
	return screenshot.GetDisplayBounds(s.index), nil
}

// DisplayInfo reports the geometry of the captured display.
func (s *Screen) DisplayInfo() (domain.DisplayInfo, error) {
	b, err := s.bounds()
	if err != nil {
		return domain.DisplayInfo{}, err
	}
	return displayInfo(b, s.scale, s.tech), nil
}

// ActiveSurface implements ports.SurfaceResolver. The display is always
// active while it is connected; a disconnected display is no surface.
func (s *Screen) ActiveSurface(ctx context.Context) (ports.Surface, bool, error) {
	info, err := s.DisplayInfo()
	if errors.Is(err, domain.ErrCaptureUnavailable) {
		return ports.Surface{}, false, nil
	}
	if err != nil {
		return ports.Surface{}, false, err
	}
	return ports.Surface{Identity: s.Identity(), Display: info}, true, nil
}

// Capture implements ports.ScreenshotSource.
func (s *Screen) Capture(ctx context.Context) (ports.ImagePayload, error) {
	if err := ctx.Err(); err != nil {
		return ports.ImagePayload{}, err
	}
	b, err := s.bounds()
	if err != nil {
		return ports.ImagePayload{}, err
	}
	img, err := screenshot.CaptureRect(b)
	if err != nil {
		return ports.ImagePayload{}, fmt.Errorf("%w: %v", domain.ErrCaptureUnavailable, err)
	}
	return s.encode(img)
}

func (s *Screen) encode(img image.Image) (ports.ImagePayload, error) {
	s.encMu.Lock()
	defer s.encMu.Unlock()

	var buf bytes.Buffer
	if err := s.enc.Encode(&buf, img); err != nil {
		return ports.ImagePayload{}, fmt.Errorf("failed to encode capture: %w", err)
	}
	return ports.ImagePayload{MIMEType: ports.MIMETypePNG, Data: buf.Bytes()}, nil
}

// Close is a no-op; captures hold no resources between calls.
func (s *Screen) Close() error {
	return nil
}

func displayInfo(b image.Rectangle, scale float64, tech domain.DisplayTech) domain.DisplayInfo {
	return domain.DisplayInfo{
		WidthPx:     b.Dx(),
		HeightPx:    b.Dy(),
		ScaleFactor: scale,
		Tech:        tech,
	}
}
