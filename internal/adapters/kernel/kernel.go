// Package kernel estimates screen luminance and dark-theme energy savings
// from PNG screenshots.
package kernel

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/quentinrf/darkwatt/internal/domain"
	"github.com/quentinrf/darkwatt/internal/ports"
)

const (
	// DefaultPeakNits is the white-level luminance of a typical laptop panel.
	DefaultPeakNits = 250.0

	targetSamples = 10000
)

// DefaultCoefficients are panel power densities at full white, in W/m².
var DefaultCoefficients = map[domain.DisplayTech]float64{
	domain.DisplayOLED: 350,
	domain.DisplayLCD:  30,
}

// linear maps an 8-bit sRGB channel to linear light.
var linear [256]float64

func init() {
	for i := range linear {
		v := float64(i) / 255
		l, _, _ := colorful.Color{R: v, G: v, B: v}.LinearRgb()
		linear[i] = l
	}
}

// Config tunes the estimator.
type Config struct {
	PeakNits     float64
	ScaleFactor  float64
	Coefficients map[domain.DisplayTech]float64
}

// Estimator implements ports.LuminanceEstimator.
type Estimator struct {
	peakNits     float64
	scaleFactor  float64
	coefficients map[domain.DisplayTech]float64
}

// NewEstimator fills unset config fields with defaults.
func NewEstimator(cfg Config) *Estimator {
	e := &Estimator{
		peakNits:     cfg.PeakNits,
		scaleFactor:  cfg.ScaleFactor,
		coefficients: cfg.Coefficients,
	}
	if e.peakNits <= 0 {
		e.peakNits = DefaultPeakNits
	}
	if e.scaleFactor <= 0 {
		e.scaleFactor = 1
	}
	if e.coefficients == nil {
		e.coefficients = DefaultCoefficients
	}
	return e
}

// EstimateLuminance returns the average luminance of the frame in nits.
func (e *Estimator) EstimateLuminance(img ports.ImagePayload) (float64, error) {
	rel, err := e.relative(img)
	if err != nil {
		return 0, err
	}
	return rel * e.peakNits, nil
}

// EstimateEnergySavings returns the Wh saved over hours if the frame were
// rendered dark. Frames already darker than mid grey save nothing.
func (e *Estimator) EstimateEnergySavings(widthPx, heightPx int, hours float64, tech domain.DisplayTech, img ports.ImagePayload) (float64, error) {
	if widthPx <= 0 || heightPx <= 0 {
		return 0, fmt.Errorf("invalid display size %dx%d", widthPx, heightPx)
	}
	if hours < 0 || math.IsNaN(hours) {
		return 0, fmt.Errorf("invalid duration %v hours", hours)
	}
	coeff, ok := e.coefficients[tech]
	if !ok {
		return 0, fmt.Errorf("no power coefficient for display technology %q", tech)
	}

	rel, err := e.relative(img)
	if err != nil {
		return 0, err
	}

	area := domain.DisplayInfo{WidthPx: widthPx, HeightPx: heightPx, ScaleFactor: e.scaleFactor}.AreaSquareMeters()
	gain := math.Max(0, rel-(1-rel))
	return area * coeff * gain * hours, nil
}

// relative decodes the frame and returns its mean relative luminance in [0,1].
func (e *Estimator) relative(img ports.ImagePayload) (float64, error) {
	if err := img.Validate(ports.MIMETypePNG); err != nil {
		return 0, err
	}
	decoded, err := png.Decode(bytes.NewReader(img.Data))
	if err != nil {
		return 0, fmt.Errorf("%w: %v", domain.ErrMalformedCapture, err)
	}
	return AverageRelativeLuminance(toRGBA(decoded)), nil
}

// AverageRelativeLuminance samples about ten thousand pixels at a fixed
// stride and averages their relative luminance.
func AverageRelativeLuminance(img *image.RGBA) float64 {
	w := img.Rect.Dx()
	h := img.Rect.Dy()
	pixels := w * h
	if pixels == 0 {
		return 0
	}

	step := pixels / targetSamples
	if step < 1 {
		step = 1
	}

	var sum float64
	var count int

	pix := img.Pix
	stride := img.Stride
	for i := 0; i < pixels; i += step {
		off := (i/w)*stride + (i%w)*4
		sum += 0.2126*linear[pix[off]] + 0.7152*linear[pix[off+1]] + 0.0722*linear[pix[off+2]]
		count++
	}

	return sum / float64(count)
}

func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba
	}
	b := img.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), img, b.Min, draw.Src)
	return out
}
