package view

import (
	"net/url"
	"strconv"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/ziadkadry99/puter-gallery/internal/catalog"
)

// Renderer draws a catalog into a Document. Both render operations clear
// their region first, so repeating a call yields the same tree.
type Renderer struct {
	catalog *catalog.Catalog
	doc     *Document
}

// NewRenderer binds a renderer to one document.
func NewRenderer(c *catalog.Catalog, doc *Document) *Renderer {
	return &Renderer{catalog: c, doc: doc}
}

// Document returns the document being drawn into.
func (r *Renderer) Document() *Document { return r.doc }

// Href returns the fragment link for a category.
func Href(category string) string {
	return "#" + url.PathEscape(category)
}

// RenderNavigation rebuilds the navigation list, one link per category in
// catalog order.
func (r *Renderer) RenderNavigation() {
	nav := r.doc.Nav()
	clearChildren(nav)
	ul := element(atom.Ul)
	for _, name := range r.catalog.Names() {
		li := element(atom.Li)
		li.AppendChild(textElement(atom.A, name, "href", Href(name)))
		ul.AppendChild(li)
	}
	nav.AppendChild(ul)
}

// RenderCategory replaces the content region with a heading and one section
// per example of the named category. An unknown name renders the heading
// alone.
func (r *Renderer) RenderCategory(name string) {
	content := r.doc.Content()
	clearChildren(content)
	content.AppendChild(textElement(atom.H1, name))

	examples, _ := r.catalog.Examples(name)
	for i, ex := range examples {
		content.AppendChild(exampleSection(name, i, ex))
	}
}

func exampleSection(category string, index int, ex catalog.Example) *html.Node {
	section := element(atom.Section, "class", "example")
	section.AppendChild(textElement(atom.H2, ex.Title))
	section.AppendChild(textElement(atom.P, ex.Description))
	section.AppendChild(textElement(atom.Button, "Run",
		"type", "button",
		"class", "run",
		"data-category", category,
		"data-index", strconv.Itoa(index),
	))
	section.AppendChild(element(atom.Pre, "class", "output"))
	return section
}
