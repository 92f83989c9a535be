package hosting

import (
	"bytes"
	"html/template"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"go.uber.org/zap"
)

var markdown = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,
		highlighting.NewHighlighting(
			highlighting.WithStyle("github"),
		),
	),
	goldmark.WithParserOptions(
		parser.WithAutoHeadingID(),
	),
)

var markdownPage = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>{{.Title}}</title>
</head>
<body>
{{.Content}}
</body>
</html>
`))

// RegisterRoutes mounts the hosted site routes. Sites are public; the
// management API runs behind requireUser.
func RegisterRoutes(r chi.Router, svc *Service, requireUser func(http.Handler) http.Handler) {
	r.Get("/sites/{subdomain}", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, r.URL.Path+"/", http.StatusMovedPermanently)
	})
	r.Get("/sites/{subdomain}/*", svc.handleSite)

	r.With(requireUser).Route("/api/sites", func(r chi.Router) {
		r.Get("/", svc.handleList)
		r.Delete("/{subdomain}", svc.handleDelete)
	})
}

func (s *Service) handleSite(w http.ResponseWriter, r *http.Request) {
	rec, err := s.lookup(r.Context(), chi.URLParam(r, "subdomain"))
	if err != nil {
		s.logger.Error("site lookup", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if rec == nil {
		http.NotFound(w, r)
		return
	}

	root, err := s.files.Resolve(rec.UserID, rec.Site.RootDir)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	rel := path.Clean("/" + chi.URLParam(r, "*"))
	abs := filepath.Join(root, filepath.FromSlash(rel))

	info, err := os.Stat(abs)
	if err == nil && info.IsDir() {
		abs = filepath.Join(abs, "index.html")
		info, err = os.Stat(abs)
	}
	if err != nil || info.IsDir() {
		http.NotFound(w, r)
		return
	}

	if strings.EqualFold(filepath.Ext(abs), ".md") {
		s.serveMarkdown(w, abs)
		return
	}

	f, err := os.Open(abs)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	defer f.Close()
	http.ServeContent(w, r, info.Name(), info.ModTime(), f)
}

// serveMarkdown renders a markdown file to a standalone HTML page.
func (s *Service) serveMarkdown(w http.ResponseWriter, abs string) {
	src, err := os.ReadFile(abs)
	if err != nil {
		http.Error(w, "reading file", http.StatusInternalServerError)
		return
	}

	var body bytes.Buffer
	if err := markdown.Convert(src, &body); err != nil {
		s.logger.Warn("rendering markdown", zap.String("file", abs), zap.Error(err))
		http.Error(w, "rendering markdown", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	markdownPage.Execute(w, struct {
		Title   string
		Content template.HTML
	}{
		Title:   markdownTitle(string(src), abs),
		Content: template.HTML(body.String()),
	})
}

// markdownTitle pulls the first # heading from markdown content, or falls back to the filename.
func markdownTitle(content, file string) string {
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "# ") {
			return strings.TrimPrefix(line, "# ")
		}
	}
	return strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
}
