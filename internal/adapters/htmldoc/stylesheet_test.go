package htmldoc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quentinrf/darkwatt/internal/colorscheme"
)

func TestParseDeclarations(t *testing.T) {
	decls := ParseDeclarations(`Background-Color: rgba(0, 0, 0, 0.5) !important; color:#fff;
		/* comment */ --accent: #000; -webkit-filter: none; filter: invert(1)`)

	assert.Equal(t, []Declaration{
		{Property: "background-color", Value: "rgba(0, 0, 0, 0.5)"},
		{Property: "color", Value: "#fff"},
		{Property: "filter", Value: "invert(1)"},
	}, decls)
}

func TestParseStylesheet(t *testing.T) {
	rules := ParseStylesheet(`
@import url("x.css");
html, body.dark { background: #000 }
div > p { color: red }
:root { color-scheme: dark }
@media print { body { background: white } }
body:hover { color: blue }
`)

	require.Len(t, rules, 2)
	assert.Equal(t, []Selector{{Tag: "html"}, {Tag: "body", Classes: []string{"dark"}}}, rules[0].Selectors)
	assert.Equal(t, []Declaration{{Property: "background", Value: "#000"}}, rules[0].Declarations)
	assert.Equal(t, []Selector{{Root: true}}, rules[1].Selectors)
}

func TestRuleMatches(t *testing.T) {
	body := &colorscheme.Node{Tag: "body", Classes: []string{"dark"}}
	plain := &colorscheme.Node{Tag: "body"}

	rule := Rule{Selectors: []Selector{{Tag: "body", Classes: []string{"dark"}}}}
	assert.True(t, rule.Matches(body, "body"))
	assert.False(t, rule.Matches(plain, "body"))
	assert.False(t, rule.Matches(body, "html", ":root"))

	root := Rule{Selectors: []Selector{{Root: true}}}
	assert.True(t, root.Matches(plain, "html", ":root"))
	assert.False(t, root.Matches(plain, "body"))
}

func TestBackgroundShorthand(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{in: "#000", want: "#000", ok: true},
		{in: `url("a.png") no-repeat rgb(1, 2, 3)`, want: "rgb(1, 2, 3)", ok: true},
		{in: "none", ok: false},
	}
	for _, tt := range tests {
		got, ok := backgroundColor(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}
