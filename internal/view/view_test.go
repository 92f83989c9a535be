package view

import (
	"context"
	"strings"
	"testing"

	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/ziadkadry99/puter-gallery/internal/catalog"
)

func noop(context.Context, catalog.Section) {}

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	c, err := catalog.New(
		catalog.Entry{Name: "File System", Examples: catalog.List{
			{Title: "Write File", Description: "Writes <b>hello</b>", Action: noop},
			{Title: "Read File", Description: "Reads it back", Action: noop},
		}},
		catalog.Entry{Name: "AI", Examples: catalog.List{
			{Title: "Chat", Description: "Asks a question", Action: noop},
		}},
		catalog.Entry{Name: "Empty"},
	)
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func setup(t *testing.T) (*Renderer, *Router) {
	t.Helper()
	doc, err := NewDocument()
	if err != nil {
		t.Fatalf("NewDocument: %v", err)
	}
	r := NewRenderer(testCatalog(t), doc)
	return r, NewRouter(r, zap.NewNop())
}

func findAll(n *html.Node, tag string) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == tag {
			out = append(out, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return out
}

func text(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

func render(t *testing.T, n *html.Node) string {
	t.Helper()
	var b strings.Builder
	if err := html.Render(&b, n); err != nil {
		t.Fatal(err)
	}
	return b.String()
}

func TestParseDocumentRequiresRegions(t *testing.T) {
	if _, err := ParseDocument(strings.NewReader(`<html><body><div id="nav"></div></body></html>`)); err == nil {
		t.Error("expected error for shell without #content")
	}
}

func TestRenderNavigation(t *testing.T) {
	r, _ := setup(t)
	r.RenderNavigation()

	links := findAll(r.Document().Nav(), "a")
	want := []struct{ text, href string }{
		{"File System", "#File%20System"},
		{"AI", "#AI"},
		{"Empty", "#Empty"},
	}
	if len(links) != len(want) {
		t.Fatalf("got %d links, want %d", len(links), len(want))
	}
	for i, w := range want {
		if text(links[i]) != w.text || attr(links[i], "href") != w.href {
			t.Errorf("link %d = %q %q, want %q %q", i, text(links[i]), attr(links[i], "href"), w.text, w.href)
		}
	}
}

func TestRenderNavigationIdempotent(t *testing.T) {
	r, _ := setup(t)
	r.RenderNavigation()
	first := render(t, r.Document().Nav())
	r.RenderNavigation()
	if second := render(t, r.Document().Nav()); first != second {
		t.Errorf("second render differs:\n%s\n%s", first, second)
	}
}

func TestRenderCategory(t *testing.T) {
	r, _ := setup(t)
	r.RenderCategory("File System")
	content := r.Document().Content()

	if h1 := findAll(content, "h1"); len(h1) != 1 || text(h1[0]) != "File System" {
		t.Errorf("heading = %v", h1)
	}
	sections := findAll(content, "section")
	if len(sections) != 2 {
		t.Fatalf("got %d sections, want 2", len(sections))
	}
	if got := text(findAll(sections[0], "h2")[0]); got != "Write File" {
		t.Errorf("title = %q", got)
	}
	if got := text(findAll(sections[0], "p")[0]); got != "Writes <b>hello</b>" {
		t.Errorf("description = %q", got)
	}
	button := findAll(sections[1], "button")[0]
	if attr(button, "data-category") != "File System" || attr(button, "data-index") != "1" {
		t.Errorf("button attrs = %v", button.Attr)
	}
	if pre := findAll(sections[1], "pre"); len(pre) != 1 || pre[0].FirstChild != nil {
		t.Error("output area should be a single empty pre")
	}

	var b strings.Builder
	if err := r.Document().RenderContent(&b); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(b.String(), "Writes &lt;b&gt;hello&lt;/b&gt;") {
		t.Errorf("description not escaped: %s", b.String())
	}
}

func TestRenderCategoryReplaces(t *testing.T) {
	r, _ := setup(t)
	r.RenderCategory("File System")
	r.RenderCategory("AI")
	once := render(t, r.Document().Content())

	content := r.Document().Content()
	if n := len(findAll(content, "section")); n != 1 {
		t.Errorf("got %d sections after switching, want 1", n)
	}
	r.RenderCategory("AI")
	if again := render(t, content); again != once {
		t.Error("repeated RenderCategory changed the tree")
	}
}

func TestRouterSelect(t *testing.T) {
	_, router := setup(t)
	tests := []struct {
		fragment, want string
	}{
		{"", "File System"},
		{"#", "File System"},
		{"#AI", "AI"},
		{"#File%20System", "File System"},
		{"File%20System", "File System"},
		{"#Nope", "Nope"},
	}
	for _, tt := range tests {
		if got := router.Select(tt.fragment); got != tt.want {
			t.Errorf("Select(%q) = %q, want %q", tt.fragment, got, tt.want)
		}
	}
}

func TestNavigateUnknownRendersHeadingOnly(t *testing.T) {
	r, router := setup(t)
	router.Navigate("#File%20System")
	router.Navigate("#Nope")
	content := r.Document().Content()
	if h1 := findAll(content, "h1"); len(h1) != 1 || text(h1[0]) != "Nope" {
		t.Errorf("heading = %q", text(content))
	}
	if n := len(findAll(content, "section")); n != 0 {
		t.Errorf("got %d sections, want 0", n)
	}
}

func TestNavigateEmptyCategory(t *testing.T) {
	r, router := setup(t)
	if got := router.Navigate("#Empty"); got != "Empty" {
		t.Errorf("Navigate = %q", got)
	}
	if n := len(findAll(r.Document().Content(), "section")); n != 0 {
		t.Errorf("got %d sections", n)
	}
}

func TestDocumentRender(t *testing.T) {
	r, router := setup(t)
	r.RenderNavigation()
	router.Navigate("")

	var b strings.Builder
	if err := r.Document().Render(&b); err != nil {
		t.Fatal(err)
	}
	page := b.String()
	for _, want := range []string{`<nav id="nav">`, `href="#AI"`, "<h1>File System</h1>", `src="/static/gallery.js"`} {
		if !strings.Contains(page, want) {
			t.Errorf("page missing %q", want)
		}
	}
}
