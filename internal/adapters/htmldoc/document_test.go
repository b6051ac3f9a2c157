package htmldoc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quentinrf/darkwatt/internal/colorscheme"
	"github.com/quentinrf/darkwatt/internal/domain"
)

func TestParse_ComputedDefaults(t *testing.T) {
	doc, err := ParseString(`<html><body><p>hello</p></body></html>`, Options{})
	require.NoError(t, err)

	assert.Equal(t, DefaultWidth, doc.Width)
	assert.Equal(t, DefaultHeight, doc.Height)
	require.NotNil(t, doc.BodyNode)
	assert.Equal(t, "rgba(0, 0, 0, 0)", doc.BodyNode.Style("background-color"))
	assert.Equal(t, "rgb(0, 0, 0)", doc.BodyNode.Style("color"))

	assert.Equal(t, domain.ThemeLight, colorscheme.DetectPageTheme(doc))
	assert.False(t, colorscheme.HasDefinedDarkTheme(doc))
}

func TestParse_Signals(t *testing.T) {
	tests := []struct {
		name       string
		html       string
		wantMode   domain.ThemeMode
		wantSignal colorscheme.Signal
	}{
		{
			name:       "meta color-scheme dark",
			html:       `<html><head><meta name="color-scheme" content="dark"></head><body></body></html>`,
			wantMode:   domain.ThemeDark,
			wantSignal: colorscheme.SignalMeta,
		},
		{
			name:       "meta color-scheme both",
			html:       `<html><head><meta name="Color-Scheme" content="dark light"></head><body></body></html>`,
			wantMode:   domain.ThemeLight,
			wantSignal: colorscheme.SignalNone,
		},
		{
			name:       "stylesheet color-scheme on root",
			html:       `<html><head><style>:root { color-scheme: dark; }</style></head><body></body></html>`,
			wantMode:   domain.ThemeDark,
			wantSignal: colorscheme.SignalCSS,
		},
		{
			name:       "marker class on html",
			html:       `<html class="js dark"><body style="background: #fff"></body></html>`,
			wantMode:   domain.ThemeDark,
			wantSignal: colorscheme.SignalClass,
		},
		{
			name:       "theme attribute on body",
			html:       `<html><body data-theme="Dark-High-Contrast"></body></html>`,
			wantMode:   domain.ThemeDark,
			wantSignal: colorscheme.SignalAttribute,
		},
		{
			name:       "stylesheet body background",
			html:       `<html><head><style>body { background-color: rgb(10, 10, 10); color: #eee }</style></head><body></body></html>`,
			wantMode:   domain.ThemeDark,
			wantSignal: colorscheme.SignalBackground,
		},
		{
			name:       "inline style overrides stylesheet",
			html:       `<html><head><style>body { background: #111 }</style></head><body style="background-color: #fafafa"></body></html>`,
			wantMode:   domain.ThemeLight,
			wantSignal: colorscheme.SignalNone,
		},
		{
			name:       "media query ignored",
			html:       `<html><head><style>@media (prefers-color-scheme: dark) { body { background: #000 } }</style></head><body></body></html>`,
			wantMode:   domain.ThemeLight,
			wantSignal: colorscheme.SignalNone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := ParseString(tt.html, Options{})
			require.NoError(t, err)

			v := colorscheme.Detect(doc)
			assert.Equal(t, tt.wantMode, v.Mode)
			assert.Equal(t, tt.wantSignal, v.Signal)
		})
	}
}

func TestParse_DefinedDarkTheme(t *testing.T) {
	page := `<html>
<head><style>
  html { background: #121212 }
  body { color: rgb(230, 230, 230) }
</style></head>
<body><main>text</main></body>
</html>`

	doc, err := ParseString(page, Options{Width: 1024, Height: 768})
	require.NoError(t, err)
	assert.Equal(t, 1024, doc.Width)
	assert.True(t, colorscheme.HasDefinedDarkTheme(doc))
}

func TestParse_FirstMetaWins(t *testing.T) {
	doc, err := ParseString(`<html><head>
<meta name="color-scheme" content="dark">
<meta name="color-scheme" content="light">
</head></html>`, Options{})
	require.NoError(t, err)

	v, ok := doc.Meta("color-scheme")
	require.True(t, ok)
	assert.Equal(t, "dark", v)
}

func TestParse_ClassesAndAttributes(t *testing.T) {
	doc, err := ParseString(`<html lang="en" class=" a  b "><body DATA-THEME="night"></body></html>`, Options{})
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b"}, doc.RootNode.Classes)
	theme, ok := doc.BodyNode.Attr("data-theme")
	require.True(t, ok)
	assert.Equal(t, "night", theme)
}
