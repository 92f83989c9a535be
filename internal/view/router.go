package view

import (
	"net/url"
	"strings"

	"go.uber.org/zap"
)

// Router maps a location fragment to a category and renders it.
type Router struct {
	renderer *Renderer
	logger   *zap.Logger
}

// NewRouter creates a Router drawing through renderer.
func NewRouter(renderer *Renderer, logger *zap.Logger) *Router {
	return &Router{renderer: renderer, logger: logger}
}

// Select resolves a fragment such as "#File%20System" to a category name.
// The empty fragment selects the first category. Names that are not in the
// catalog are returned unchanged.
func (r *Router) Select(fragment string) string {
	name := strings.TrimPrefix(fragment, "#")
	if decoded, err := url.PathUnescape(name); err == nil {
		name = decoded
	}
	c := r.renderer.catalog
	if name == "" {
		return c.First()
	}
	if _, ok := c.Examples(name); !ok {
		r.logger.Warn("unknown category in fragment", zap.String("fragment", fragment))
	}
	return name
}

// Navigate selects the category for fragment and renders it into the
// content region. It returns the selected name.
func (r *Router) Navigate(fragment string) string {
	name := r.Select(fragment)
	r.renderer.RenderCategory(name)
	return name
}
