package colorscheme

import (
	"image"
	"strings"
)

// Element is a rendered element as seen by the classifier.
// Implementations must be comparable (typically pointers): the grid detector
// uses them as map keys to inspect each element once.
type Element interface {
	HasClass(name string) bool
	Attr(name string) (string, bool)
	// Style returns the resolved value of a CSS property, "" when unknown.
	Style(property string) string
}

// Document exposes the page-level signals the classifier reads.
// Root and Body may return nil.
type Document interface {
	Root() Element
	Body() Element
	// Meta returns the content of the first <meta name=...> tag.
	Meta(name string) (string, bool)
}

// Viewport is a laid-out Document that can answer hit tests.
type Viewport interface {
	Document
	Size() (width, height int)
	// ElementAt returns the topmost element at a viewport point, or nil.
	ElementAt(x, y int) Element
}

// Node is a plain in-memory Element.
type Node struct {
	Tag     string
	Classes []string
	Attrs   map[string]string
	Styles  map[string]string
}

// HasClass implements Element.
func (n *Node) HasClass(name string) bool {
	if n == nil {
		return false
	}
	for _, c := range n.Classes {
		if c == name {
			return true
		}
	}
	return false
}

// Attr implements Element.
func (n *Node) Attr(name string) (string, bool) {
	if n == nil || n.Attrs == nil {
		return "", false
	}
	v, ok := n.Attrs[strings.ToLower(name)]
	return v, ok
}

// Style implements Element.
func (n *Node) Style(property string) string {
	if n == nil || n.Styles == nil {
		return ""
	}
	return n.Styles[strings.ToLower(property)]
}

// Region places a node over a rectangle of the viewport.
type Region struct {
	Bounds image.Rectangle
	Node   *Node
}

// StaticDocument is an in-memory Viewport. Regions are stacked in order, the
// last one containing a point being topmost; points covered by no region hit
// the body, then the root.
type StaticDocument struct {
	RootNode *Node
	BodyNode *Node
	MetaTags map[string]string
	Width    int
	Height   int
	Regions  []Region
}

// Root implements Document.
func (d *StaticDocument) Root() Element {
	if d.RootNode == nil {
		return nil
	}
	return d.RootNode
}

// Body implements Document.
func (d *StaticDocument) Body() Element {
	if d.BodyNode == nil {
		return nil
	}
	return d.BodyNode
}

// Meta implements Document.
func (d *StaticDocument) Meta(name string) (string, bool) {
	if d.MetaTags == nil {
		return "", false
	}
	v, ok := d.MetaTags[strings.ToLower(name)]
	return v, ok
}

// Size implements Viewport.
func (d *StaticDocument) Size() (int, int) {
	return d.Width, d.Height
}

// ElementAt implements Viewport.
func (d *StaticDocument) ElementAt(x, y int) Element {
	pt := image.Pt(x, y)
	for i := len(d.Regions) - 1; i >= 0; i-- {
		r := d.Regions[i]
		if r.Node != nil && pt.In(r.Bounds) {
			return r.Node
		}
	}
	if body := d.Body(); body != nil {
		return body
	}
	return d.Root()
}
