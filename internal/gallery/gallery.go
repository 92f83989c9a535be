// Package gallery serves the example gallery: the rendered page, JSON
// endpoints for the catalog and runs, and a live WebSocket session that
// drives navigation and runs from the page script.
package gallery

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/ziadkadry99/puter-gallery/internal/auth"
	"github.com/ziadkadry99/puter-gallery/internal/catalog"
	"github.com/ziadkadry99/puter-gallery/internal/runner"
	"github.com/ziadkadry99/puter-gallery/internal/view"
)

//go:embed static
var staticFS embed.FS

// Gallery wires the catalog, runner and view together over HTTP.
type Gallery struct {
	catalog    *catalog.Catalog
	runner     *runner.Runner
	cookieName string
	logger     *zap.Logger
}

// New creates a Gallery. cookieName is the session cookie set when a run
// signs the caller in.
func New(c *catalog.Catalog, r *runner.Runner, cookieName string, logger *zap.Logger) *Gallery {
	return &Gallery{catalog: c, runner: r, cookieName: cookieName, logger: logger}
}

// RegisterRoutes mounts the gallery onto r.
func (g *Gallery) RegisterRoutes(r chi.Router) {
	r.Get("/", g.handleIndex)
	r.Get("/api/content", g.handleContent)
	r.Get("/api/catalog", g.handleCatalog)
	r.Post("/api/run", g.handleRun)
	r.Get("/ws/gallery", g.handleWebSocket)
	r.Handle("/static/*", http.FileServerFS(staticFS))
}

// page is one request's view state.
type page struct {
	doc      *view.Document
	renderer *view.Renderer
	router   *view.Router
}

func (g *Gallery) newPage() (*page, error) {
	doc, err := view.NewDocument()
	if err != nil {
		return nil, err
	}
	renderer := view.NewRenderer(g.catalog, doc)
	renderer.RenderNavigation()
	return &page{doc: doc, renderer: renderer, router: view.NewRouter(renderer, g.logger)}, nil
}

func (g *Gallery) handleIndex(w http.ResponseWriter, r *http.Request) {
	p, err := g.newPage()
	if err != nil {
		g.logger.Error("building page", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	// The fragment never reaches the server; the script navigates after load.
	p.router.Navigate("")

	var buf bytes.Buffer
	if err := p.doc.Render(&buf); err != nil {
		g.logger.Error("rendering page", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}

func (g *Gallery) handleContent(w http.ResponseWriter, r *http.Request) {
	p, err := g.newPage()
	if err != nil {
		g.logger.Error("building page", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	name := p.router.Navigate(r.URL.Query().Get("fragment"))

	var buf bytes.Buffer
	if err := p.doc.RenderContent(&buf); err != nil {
		g.logger.Error("rendering content", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("X-Gallery-Category", name)
	w.Write(buf.Bytes())
}

func (g *Gallery) handleCatalog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, g.catalog.Summary())
}

type runRequest struct {
	Category string `json:"category"`
	Index    int    `json:"index"`
}

type runResponse struct {
	Outcome runner.Outcome `json:"outcome"`
	Output  string         `json:"output"`
}

func (g *Gallery) handleRun(w http.ResponseWriter, r *http.Request) {
	var req runRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	ex, ok := g.catalog.Lookup(req.Category, req.Index)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown example"})
		return
	}

	// Runs carry no local deadline, so the request timeout must not reach the
	// capability calls.
	out := catalog.NewOutput()
	outcome := g.runner.Run(context.WithoutCancel(r.Context()), req.Category, ex, out)
	auth.SetCookie(w, r, g.cookieName)
	writeJSON(w, http.StatusOK, runResponse{Outcome: outcome, Output: out.String()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
