package domain

import (
	"math"
	"testing"
	"time"
)

func TestNewLuminanceSample(t *testing.T) {
	tests := []struct {
		name       string
		value      float64
		source     string
		wantSource string
		wantErr    bool
	}{
		{
			name:       "valid sample",
			value:      120.0,
			source:     "https://example.com",
			wantSource: "https://example.com",
		},
		{
			name:       "zero luminance is valid",
			value:      0.0,
			source:     "https://example.com",
			wantSource: "https://example.com",
		},
		{
			name:       "missing source gets sentinel",
			value:      50.0,
			source:     "",
			wantSource: UnknownSource,
		},
		{
			name:    "negative luminance is invalid",
			value:   -1.0,
			wantErr: true,
		},
		{
			name:    "NaN is invalid",
			value:   math.NaN(),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sample, err := NewLuminanceSample(tt.value, tt.source, time.Now())

			if tt.wantErr {
				if err != ErrInvalidLuminance {
					t.Errorf("expected ErrInvalidLuminance, got %v", err)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if sample.Value != tt.value {
				t.Errorf("expected value %v, got %v", tt.value, sample.Value)
			}
			if sample.Source != tt.wantSource {
				t.Errorf("expected source %q, got %q", tt.wantSource, sample.Source)
			}
		})
	}
}

func TestLuminanceSample_TimestampIsUTC(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	ts := time.Date(2026, 3, 1, 10, 0, 0, 0, loc)

	sample, err := NewLuminanceSample(10, "a", ts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := sample.ISOTimestamp(); got != "2026-03-01T08:00:00Z" {
		t.Errorf("ISOTimestamp() = %q", got)
	}
}

func TestLuminanceSample_Brightness(t *testing.T) {
	tests := []struct {
		value float64
		want  string
	}{
		{value: 10, want: "Dim"},
		{value: 79.9, want: "Dim"},
		{value: 80, want: "Moderate"},
		{value: 250, want: "Bright"},
	}

	for _, tt := range tests {
		t.Run("", func(t *testing.T) {
			sample, _ := NewLuminanceSample(tt.value, "", time.Now())
			if got := sample.Brightness(); got != tt.want {
				t.Errorf("Brightness() = %v, want %v for value %v", got, tt.want, tt.value)
			}
		})
	}
}

func TestParseThemeMode(t *testing.T) {
	tests := []struct {
		in      string
		want    ThemeMode
		wantErr bool
	}{
		{in: "dark", want: ThemeDark},
		{in: " DARK ", want: ThemeDark},
		{in: "light", want: ThemeLight},
		{in: "", want: ThemeLight},
		{in: "unknown", want: ThemeLight, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseThemeMode(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseThemeMode(%q) error = %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseThemeMode(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestDisplayInfo_Inches(t *testing.T) {
	d := DisplayInfo{WidthPx: 1920, HeightPx: 960, ScaleFactor: 2}

	w, h := d.Inches()
	if w != 10 || h != 5 {
		t.Errorf("Inches() = %v x %v, want 10 x 5", w, h)
	}

	want := (10 * 0.0254) * (5 * 0.0254)
	if got := d.AreaSquareMeters(); math.Abs(got-want) > 1e-12 {
		t.Errorf("AreaSquareMeters() = %v, want %v", got, want)
	}
}
