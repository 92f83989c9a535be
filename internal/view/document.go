// Package view renders the gallery page as an HTML node tree: a navigation
// region listing categories and a content region listing one category's
// examples.
package view

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

//go:embed shell.html
var shell []byte

// Region ids in the page shell.
const (
	NavID     = "nav"
	ContentID = "content"
)

// Document is one parsed copy of the page shell. Its two regions are located
// once at parse time.
type Document struct {
	root    *html.Node
	nav     *html.Node
	content *html.Node
}

// NewDocument parses a fresh copy of the embedded shell.
func NewDocument() (*Document, error) {
	return ParseDocument(bytes.NewReader(shell))
}

// ParseDocument parses a page shell that must contain elements with ids
// "nav" and "content".
func ParseDocument(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing page shell: %w", err)
	}
	d := &Document{root: root, nav: findByID(root, NavID), content: findByID(root, ContentID)}
	if d.nav == nil || d.content == nil {
		return nil, fmt.Errorf("page shell is missing #%s or #%s", NavID, ContentID)
	}
	return d, nil
}

// Nav returns the navigation region.
func (d *Document) Nav() *html.Node { return d.nav }

// Content returns the content region.
func (d *Document) Content() *html.Node { return d.content }

// Render writes the whole page.
func (d *Document) Render(w io.Writer) error {
	return html.Render(w, d.root)
}

// RenderContent writes the children of the content region.
func (d *Document) RenderContent(w io.Writer) error {
	for c := d.content.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(w, c); err != nil {
			return err
		}
	}
	return nil
}

func findByID(n *html.Node, id string) *html.Node {
	if n.Type == html.ElementNode && attr(n, "id") == id {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findByID(c, id); found != nil {
			return found
		}
	}
	return nil
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// element creates an element node. attrs are key/value pairs.
func element(a atom.Atom, attrs ...string) *html.Node {
	n := &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String()}
	for i := 0; i+1 < len(attrs); i += 2 {
		n.Attr = append(n.Attr, html.Attribute{Key: attrs[i], Val: attrs[i+1]})
	}
	return n
}

// textElement creates an element holding a single text node.
func textElement(a atom.Atom, text string, attrs ...string) *html.Node {
	n := element(a, attrs...)
	n.AppendChild(&html.Node{Type: html.TextNode, Data: text})
	return n
}

func clearChildren(n *html.Node) {
	for c := n.FirstChild; c != nil; c = n.FirstChild {
		n.RemoveChild(c)
	}
}
