package html

import (
	"bytes"
	"fmt"
	"strings"

	xhtml "golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/custodia-labs/pipewrench/internal/core/domain"
	"github.com/custodia-labs/pipewrench/internal/core/ports/driven"
)

var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser handles HTML documents, e.g. pages exported from a wiki.
type Normaliser struct{}

func New() *Normaliser {
	return &Normaliser{}
}

func (n *Normaliser) SupportedExtensions() []string {
	return []string{".html", ".htm", ".xhtml"}
}

// Normalise parses the page and keeps its visible text, one block element
// per line. The title comes from <title>, else the first <h1>, else the
// file name.
func (n *Normaliser) Normalise(name string, raw []byte) (*domain.NormalisedText, error) {
	doc, err := xhtml.Parse(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", name, err)
	}

	title := collapse(textOf(find(doc, atom.Title)))
	if title == "" {
		title = collapse(textOf(find(doc, atom.H1)))
	}
	if title == "" {
		title = domain.TitleFromFileName(name)
	}

	return &domain.NormalisedText{
		Title:   title,
		Content: visibleText(doc),
		Format:  "html",
	}, nil
}

// hidden elements contribute no text.
var hidden = map[atom.Atom]bool{
	atom.Head: true, atom.Script: true, atom.Style: true, atom.Noscript: true,
	atom.Svg: true, atom.Template: true, atom.Iframe: true,
}

// block elements start and end a line.
var block = map[atom.Atom]bool{
	atom.P: true, atom.Div: true, atom.Section: true, atom.Article: true,
	atom.Header: true, atom.Footer: true, atom.Nav: true, atom.Main: true, atom.Aside: true,
	atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true, atom.H5: true, atom.H6: true,
	atom.Ul: true, atom.Ol: true, atom.Li: true, atom.Dl: true, atom.Dt: true, atom.Dd: true,
	atom.Table: true, atom.Tr: true, atom.Blockquote: true, atom.Pre: true,
	atom.Figure: true, atom.Figcaption: true,
}

func visibleText(doc *xhtml.Node) string {
	var b strings.Builder
	var walk func(n *xhtml.Node, pre bool)
	walk = func(n *xhtml.Node, pre bool) {
		switch n.Type {
		case xhtml.TextNode:
			if pre {
				b.WriteString(n.Data)
				return
			}
			// Runs of whitespace, newlines included, render as one space.
			text := collapse(n.Data)
			if text == "" || n.Data[0] <= ' ' {
				b.WriteByte(' ')
			}
			b.WriteString(text)
			if text != "" && n.Data[len(n.Data)-1] <= ' ' {
				b.WriteByte(' ')
			}
			return
		case xhtml.CommentNode:
			return
		case xhtml.ElementNode:
			if hidden[n.DataAtom] {
				return
			}
			switch n.DataAtom {
			case atom.Br, atom.Hr:
				b.WriteByte('\n')
				return
			case atom.Td, atom.Th:
				defer b.WriteByte(' ')
			case atom.Pre:
				pre = true
			}
		}

		isBlock := n.Type == xhtml.ElementNode && block[n.DataAtom]
		if isBlock {
			b.WriteByte('\n')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c, pre)
		}
		if isBlock {
			b.WriteByte('\n')
		}
	}
	walk(doc, false)

	var lines []string
	for line := range strings.SplitSeq(b.String(), "\n") {
		if line = collapse(line); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}

// find returns the first element with the given tag, depth first.
func find(n *xhtml.Node, tag atom.Atom) *xhtml.Node {
	if n.Type == xhtml.ElementNode && n.DataAtom == tag {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := find(c, tag); found != nil {
			return found
		}
	}
	return nil
}

func textOf(n *xhtml.Node) string {
	if n == nil {
		return ""
	}
	if n.Type == xhtml.TextNode {
		return n.Data
	}
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		b.WriteString(textOf(c))
	}
	return b.String()
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
