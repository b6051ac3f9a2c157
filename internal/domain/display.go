package domain

import (
	"fmt"
	"strings"
)

// cssDPI is the reference pixel density used to turn CSS pixels into inches.
const cssDPI = 96.0

const metersPerInch = 0.0254

// DisplayTech is the panel technology; it decides how luminance maps to power.
type DisplayTech string

const (
	DisplayLCD  DisplayTech = "lcd"
	DisplayOLED DisplayTech = "oled"
)

// ParseDisplayTech accepts "lcd" or "oled" in any case.
func ParseDisplayTech(s string) (DisplayTech, error) {
	switch DisplayTech(strings.ToLower(strings.TrimSpace(s))) {
	case DisplayLCD, "":
		return DisplayLCD, nil
	case DisplayOLED:
		return DisplayOLED, nil
	default:
		return DisplayLCD, fmt.Errorf("unknown display technology %q", s)
	}
}

// DisplayInfo describes the primary display's work area.
type DisplayInfo struct {
	WidthPx     int         `json:"widthPx"`
	HeightPx    int         `json:"heightPx"`
	ScaleFactor float64     `json:"scaleFactor"`
	Tech        DisplayTech `json:"tech"`
}

// Inches returns the physical work-area size assuming CSS pixel density.
func (d DisplayInfo) Inches() (width, height float64) {
	scale := d.ScaleFactor
	if scale <= 0 {
		scale = 1
	}
	return float64(d.WidthPx) / scale / cssDPI, float64(d.HeightPx) / scale / cssDPI
}

// AreaSquareMeters returns the physical work-area surface.
func (d DisplayInfo) AreaSquareMeters() float64 {
	w, h := d.Inches()
	return (w * metersPerInch) * (h * metersPerInch)
}
