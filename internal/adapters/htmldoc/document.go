// Package htmldoc builds a classifiable document from raw HTML.
//
// There is no layout engine: the resulting viewport hit-tests every point to
// the body (or the root when the page has no body), which is enough for the
// grid detector to judge single-surface pages. Styles come from <style>
// blocks targeting html, :root and body, overridden by inline style
// attributes, on top of the browser's computed defaults.
package htmldoc

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/quentinrf/darkwatt/internal/colorscheme"
)

// Default viewport used when the caller does not know the real one.
const (
	DefaultWidth  = 1280
	DefaultHeight = 800
)

// computed values a browser reports for an unstyled element
var computedDefaults = map[string]string{
	"background-color": "rgba(0, 0, 0, 0)",
	"color":            "rgb(0, 0, 0)",
}

// Options tunes Parse.
type Options struct {
	Width  int
	Height int
}

// Parse reads an HTML document and resolves the signals the classifier needs.
func Parse(r io.Reader, opts Options) (*colorscheme.StaticDocument, error) {
	tree, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse html: %w", err)
	}

	doc := &colorscheme.StaticDocument{
		MetaTags: make(map[string]string),
		Width:    opts.Width,
		Height:   opts.Height,
	}
	if doc.Width <= 0 {
		doc.Width = DefaultWidth
	}
	if doc.Height <= 0 {
		doc.Height = DefaultHeight
	}

	var (
		sheet              strings.Builder
		rootElem, bodyElem *html.Node
	)

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.DataAtom {
			case atom.Html:
				if rootElem == nil {
					rootElem = n
				}
			case atom.Body:
				if bodyElem == nil {
					bodyElem = n
				}
			case atom.Meta:
				name := strings.ToLower(attr(n, "name"))
				if name != "" {
					if _, seen := doc.MetaTags[name]; !seen {
						doc.MetaTags[name] = attr(n, "content")
					}
				}
			case atom.Style:
				for c := n.FirstChild; c != nil; c = c.NextSibling {
					if c.Type == html.TextNode {
						sheet.WriteString(c.Data)
						sheet.WriteByte('\n')
					}
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(tree)

	rules := ParseStylesheet(sheet.String())
	if rootElem != nil {
		doc.RootNode = resolve(rootElem, rules, "html", ":root")
	}
	if bodyElem != nil {
		doc.BodyNode = resolve(bodyElem, rules, "body")
	}

	return doc, nil
}

// ParseString is Parse over an in-memory document.
func ParseString(s string, opts Options) (*colorscheme.StaticDocument, error) {
	return Parse(strings.NewReader(s), opts)
}

// ParseViewport adapts ParseString to the classifier's Viewport interface.
func ParseViewport(s string, width, height int) (colorscheme.Viewport, error) {
	doc, err := ParseString(s, Options{Width: width, Height: height})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

func resolve(n *html.Node, rules []Rule, tags ...string) *colorscheme.Node {
	node := &colorscheme.Node{
		Tag:    n.Data,
		Attrs:  make(map[string]string, len(n.Attr)),
		Styles: make(map[string]string, len(computedDefaults)),
	}
	for _, a := range n.Attr {
		key := strings.ToLower(a.Key)
		node.Attrs[key] = a.Val
		if key == "class" {
			node.Classes = strings.Fields(a.Val)
		}
	}
	for k, v := range computedDefaults {
		node.Styles[k] = v
	}

	for _, rule := range rules {
		if rule.Matches(node, tags...) {
			applyDeclarations(node.Styles, rule.Declarations)
		}
	}
	if inline, ok := node.Attrs["style"]; ok {
		applyDeclarations(node.Styles, ParseDeclarations(inline))
	}
	return node
}

func applyDeclarations(styles map[string]string, decls []Declaration) {
	for _, d := range decls {
		switch d.Property {
		case "background":
			if c, ok := backgroundColor(d.Value); ok {
				styles["background-color"] = c
			}
		default:
			styles[d.Property] = d.Value
		}
	}
}

// backgroundColor picks the color layer out of a background shorthand.
func backgroundColor(value string) (string, bool) {
	if _, ok := colorscheme.ParseColor(value); ok {
		return value, true
	}
	for _, part := range splitTopLevel(value) {
		if _, ok := colorscheme.ParseColor(part); ok {
			return part, true
		}
	}
	return "", false
}

// splitTopLevel splits on whitespace outside parentheses.
func splitTopLevel(s string) []string {
	var (
		parts []string
		depth int
		start = -1
	)
	for i, r := range s {
		switch {
		case r == '(':
			depth++
		case r == ')':
			if depth > 0 {
				depth--
			}
		case (r == ' ' || r == '\t' || r == '\n') && depth == 0:
			if start >= 0 {
				parts = append(parts, s[start:i])
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		parts = append(parts, s[start:])
	}
	return parts
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, key) {
			return a.Val
		}
	}
	return ""
}
