package htmldoc

import (
	"strings"

	"github.com/gorilla/css/scanner"

	"github.com/quentinrf/darkwatt/internal/colorscheme"
)

// Declaration is one "property: value" pair. Property is lowercased and
// !important is stripped from Value.
type Declaration struct {
	Property string
	Value    string
}

// Selector is a compound selector limited to what can match the root or the
// body: an optional tag, an optional :root and any number of classes.
type Selector struct {
	Tag     string
	Root    bool
	Classes []string
}

// Rule is a style rule whose prelude contained at least one usable selector.
type Rule struct {
	Selectors    []Selector
	Declarations []Declaration
}

// Matches reports whether any selector targets node, which is known by the
// given tag names (":root" included for the document element).
func (r Rule) Matches(node *colorscheme.Node, tags ...string) bool {
	for _, sel := range r.Selectors {
		if sel.matches(node, tags) {
			return true
		}
	}
	return false
}

func (s Selector) matches(node *colorscheme.Node, tags []string) bool {
	if s.Tag != "" && !contains(tags, s.Tag) {
		return false
	}
	if s.Root && !contains(tags, ":root") {
		return false
	}
	if s.Tag == "" && !s.Root && len(s.Classes) == 0 {
		return false
	}
	for _, c := range s.Classes {
		if !node.HasClass(c) {
			return false
		}
	}
	return true
}

// ParseStylesheet extracts top-level style rules. At-rules, including
// @media blocks, are skipped.
func ParseStylesheet(css string) []Rule {
	var (
		rules   []Rule
		prelude strings.Builder
		s       = scanner.New(css)
	)

	for {
		tok := s.Next()
		switch {
		case tok.Type == scanner.TokenEOF || tok.Type == scanner.TokenError:
			return rules
		case tok.Type == scanner.TokenComment:
		case tok.Type == scanner.TokenAtKeyword:
			skipAtRule(s)
			prelude.Reset()
		case isChar(tok, "{"):
			body := readBlock(s)
			if sels := parseSelectors(prelude.String()); len(sels) > 0 {
				rules = append(rules, Rule{
					Selectors:    sels,
					Declarations: ParseDeclarations(body),
				})
			}
			prelude.Reset()
		default:
			prelude.WriteString(tok.Value)
		}
	}
}

// ParseDeclarations parses the body of a rule or an inline style attribute.
// Custom and vendor-prefixed properties are dropped.
func ParseDeclarations(text string) []Declaration {
	var (
		decls    []Declaration
		property string
		value    strings.Builder
		inValue  bool
		custom   bool
		depth    int
		s        = scanner.New(text)
	)

	flush := func() {
		if property != "" && !custom && !strings.HasPrefix(property, "-") {
			v := strings.TrimSpace(value.String())
			if i := strings.LastIndex(strings.ToLower(v), "!important"); i >= 0 {
				v = strings.TrimSpace(v[:i])
			}
			if v != "" {
				decls = append(decls, Declaration{Property: strings.ToLower(property), Value: v})
			}
		}
		property = ""
		value.Reset()
		inValue = false
		custom = false
		depth = 0
	}

	for {
		tok := s.Next()
		if tok.Type == scanner.TokenEOF || tok.Type == scanner.TokenError {
			flush()
			return decls
		}
		if tok.Type == scanner.TokenComment {
			continue
		}

		if !inValue {
			switch {
			case isChar(tok, "-") && property == "":
				custom = true
			case tok.Type == scanner.TokenIdent && property == "":
				property = tok.Value
			case isChar(tok, ":") && property != "":
				inValue = true
			case isChar(tok, ";"):
				flush()
			}
			continue
		}

		switch {
		case isChar(tok, ";") && depth == 0:
			flush()
		case tok.Type == scanner.TokenFunction:
			depth++
			value.WriteString(tok.Value)
		case isChar(tok, ")"):
			if depth > 0 {
				depth--
			}
			value.WriteString(tok.Value)
		case tok.Type == scanner.TokenS:
			value.WriteByte(' ')
		default:
			value.WriteString(tok.Value)
		}
	}
}

// readBlock returns the raw text up to the "}" closing an already opened block.
func readBlock(s *scanner.Scanner) string {
	var (
		b     strings.Builder
		depth = 1
	)
	for {
		tok := s.Next()
		switch {
		case tok.Type == scanner.TokenEOF || tok.Type == scanner.TokenError:
			return b.String()
		case isChar(tok, "{"):
			depth++
		case isChar(tok, "}"):
			depth--
			if depth == 0 {
				return b.String()
			}
		}
		b.WriteString(tok.Value)
	}
}

// skipAtRule consumes an at-rule: either a statement ending in ";" or a block.
func skipAtRule(s *scanner.Scanner) {
	for {
		tok := s.Next()
		switch {
		case tok.Type == scanner.TokenEOF || tok.Type == scanner.TokenError:
			return
		case isChar(tok, ";"):
			return
		case isChar(tok, "{"):
			readBlock(s)
			return
		}
	}
}

func parseSelectors(prelude string) []Selector {
	var sels []Selector
	for _, part := range strings.Split(prelude, ",") {
		if sel, ok := parseSelector(strings.TrimSpace(part)); ok {
			sels = append(sels, sel)
		}
	}
	return sels
}

// parseSelector accepts tag, :root and .class compounds; anything involving
// combinators, ids, attributes or other pseudo-classes is rejected.
func parseSelector(text string) (Selector, bool) {
	if text == "" || strings.ContainsAny(text, " \t\n>+~[#*") {
		return Selector{}, false
	}

	var sel Selector
	i := strings.IndexAny(text, ".:")
	if i < 0 {
		sel.Tag = strings.ToLower(text)
		return sel, true
	}
	sel.Tag = strings.ToLower(text[:i])
	rest := text[i:]

	for rest != "" {
		marker := rest[0]
		rest = rest[1:]
		end := strings.IndexAny(rest, ".:")
		if end < 0 {
			end = len(rest)
		}
		name := rest[:end]
		rest = rest[end:]
		if name == "" {
			return Selector{}, false
		}

		switch marker {
		case '.':
			sel.Classes = append(sel.Classes, name)
		case ':':
			if !strings.EqualFold(name, "root") {
				return Selector{}, false
			}
			sel.Root = true
		}
	}
	return sel, true
}

func isChar(tok *scanner.Token, c string) bool {
	return tok.Type == scanner.TokenChar && tok.Value == c
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
