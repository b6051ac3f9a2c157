package colorscheme

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"

	"github.com/quentinrf/darkwatt/internal/domain"
)

// darkLuminanceThreshold is the relative luminance below which a background reads as dark.
const darkLuminanceThreshold = 0.2

// darkClassNames are conventional marker classes for an author-applied dark theme.
var darkClassNames = []string{
	"dark",
	"dark-mode",
	"theme-dark",
	"mode-dark",
	"night",
	"darktheme",
	"dark_background",
}

// themeAttrNames are attributes that commonly carry the active theme.
var themeAttrNames = []string{
	"data-theme",
	"theme",
	"data-color-mode",
	"color-scheme",
}

// Signal names the rule that produced a verdict.
type Signal string

const (
	SignalNone       Signal = "none"
	SignalMeta       Signal = "meta"
	SignalCSS        Signal = "css"
	SignalClass      Signal = "class"
	SignalAttribute  Signal = "attribute"
	SignalBackground Signal = "background"
)

// Verdict is a theme decision plus the signal that decided it.
type Verdict struct {
	Mode   domain.ThemeMode
	Signal Signal
}

// DetectPageTheme classifies a document as dark or light.
func DetectPageTheme(doc Document) domain.ThemeMode {
	return Detect(doc).Mode
}

// Detect applies the signals in strict precedence, stopping at the first match:
// color-scheme meta, computed color-scheme, marker class, theme attribute,
// then background luminance of body and root.
func Detect(doc Document) Verdict {
	if doc == nil {
		return Verdict{Mode: domain.ThemeLight, Signal: SignalNone}
	}
	root, body := doc.Root(), doc.Body()

	if content, ok := doc.Meta("color-scheme"); ok && declaresDarkOnly(content) {
		return Verdict{Mode: domain.ThemeDark, Signal: SignalMeta}
	}
	if hasDarkColorScheme(root) || hasDarkColorScheme(body) {
		return Verdict{Mode: domain.ThemeDark, Signal: SignalCSS}
	}
	if hasDarkClass(root) || hasDarkClass(body) {
		return Verdict{Mode: domain.ThemeDark, Signal: SignalClass}
	}
	if hasDarkAttribute(root) || hasDarkAttribute(body) {
		return Verdict{Mode: domain.ThemeDark, Signal: SignalAttribute}
	}
	if ClassifyElement(body).IsDark() || ClassifyElement(root).IsDark() {
		return Verdict{Mode: domain.ThemeDark, Signal: SignalBackground}
	}

	return Verdict{Mode: domain.ThemeLight, Signal: SignalNone}
}

// ClassifyElement reads the element's background (falling back to its
// foreground color) and reports dark iff its relative luminance is below 0.2.
// Missing, unparseable or fully transparent colors carry no signal: light.
func ClassifyElement(el Element) domain.ThemeMode {
	if el == nil {
		return domain.ThemeLight
	}

	value := el.Style("background-color")
	if value == "" {
		value = el.Style("color")
	}

	c, ok := ParseColor(value)
	if !ok || c.Transparent() {
		return domain.ThemeLight
	}
	if RelativeLuminance(c.R, c.G, c.B) < darkLuminanceThreshold {
		return domain.ThemeDark
	}
	return domain.ThemeLight
}

// declaresDarkOnly reports whether a color-scheme value commits to dark.
// "dark light" supports both and is not a commitment.
func declaresDarkOnly(value string) bool {
	tokens := strings.FieldsFunc(strings.ToLower(value), func(r rune) bool {
		return unicode.IsSpace(r) || r == ','
	})

	var dark, light bool
	for _, t := range tokens {
		switch t {
		case "dark":
			dark = true
		case "light":
			light = true
		}
	}
	return dark && !light
}

func hasDarkColorScheme(el Element) bool {
	if el == nil {
		return false
	}
	return declaresDarkOnly(el.Style("color-scheme"))
}

func hasDarkClass(el Element) bool {
	if el == nil {
		return false
	}
	for _, name := range darkClassNames {
		if el.HasClass(name) {
			return true
		}
	}
	return false
}

func hasDarkAttribute(el Element) bool {
	if el == nil {
		return false
	}
	fold := cases.Fold()
	for _, name := range themeAttrNames {
		v, ok := el.Attr(name)
		if ok && strings.Contains(fold.String(v), "dark") {
			return true
		}
	}
	return false
}
