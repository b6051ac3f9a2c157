package domain

import (
	"math"
	"time"
)

// UnknownSource identifies samples whose surface did not report an identity.
const UnknownSource = "<NO_SITE>"

// LuminanceSample is one observation of the active surface.
// Samples are immutable once created and only ever appended to a store.
type LuminanceSample struct {
	ID        int64     `json:"id,omitempty"`
	Value     float64   `json:"value"`
	Source    string    `json:"source"`
	Timestamp time.Time `json:"timestamp"`
}

// NewLuminanceSample validates the value and fills in the source sentinel.
func NewLuminanceSample(value float64, source string, ts time.Time) (*LuminanceSample, error) {
	// Luminance is a physical quantity: never negative, never NaN
	if value < 0 || math.IsNaN(value) || math.IsInf(value, 0) {
		return nil, ErrInvalidLuminance
	}
	if source == "" {
		source = UnknownSource
	}

	return &LuminanceSample{
		Value:     value,
		Source:    source,
		Timestamp: ts.UTC(),
	}, nil
}

// HasSource reports whether the sample carries a real surface identity.
func (s *LuminanceSample) HasSource() bool {
	return s.Source != "" && s.Source != UnknownSource
}

// ISOTimestamp returns the capture time in ISO-8601 form.
func (s *LuminanceSample) ISOTimestamp() string {
	return s.Timestamp.UTC().Format(time.RFC3339Nano)
}

// Brightness buckets a sample for display purposes.
// Thresholds are in nits: < 80 dim, < 200 moderate, otherwise bright.
func (s *LuminanceSample) Brightness() string {
	switch {
	case s.Value < 80:
		return "Dim"
	case s.Value < 200:
		return "Moderate"
	default:
		return "Bright"
	}
}
