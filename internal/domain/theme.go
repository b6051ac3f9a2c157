package domain

import (
	"fmt"
	"strings"
)

// ThemeMode is the binary verdict on a page's visual scheme.
// The zero value is light: absence of signal never reads as dark.
type ThemeMode int

const (
	ThemeLight ThemeMode = iota
	ThemeDark
)

func (m ThemeMode) String() string {
	if m == ThemeDark {
		return "dark"
	}
	return "light"
}

// IsDark reports whether the mode is dark.
func (m ThemeMode) IsDark() bool {
	return m == ThemeDark
}

// ParseThemeMode accepts "dark" or "light" in any case.
func ParseThemeMode(s string) (ThemeMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "dark":
		return ThemeDark, nil
	case "light", "":
		return ThemeLight, nil
	default:
		return ThemeLight, fmt.Errorf("unknown theme mode %q", s)
	}
}

func (m ThemeMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *ThemeMode) UnmarshalText(b []byte) error {
	parsed, err := ParseThemeMode(string(b))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
