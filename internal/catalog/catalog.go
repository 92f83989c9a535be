// Package catalog holds the static, ordered registry of runnable examples.
package catalog

import (
	"context"
	"fmt"
	"slices"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Section is the rendering target an action writes its outcome into.
type Section interface {
	Write(text string)
}

// Action backs an Example. It must report every outcome, including failures,
// by writing to section; it never returns an error.
type Action func(ctx context.Context, section Section)

// Example is one titled, described, runnable demonstration.
type Example struct {
	Title       string
	Description string
	Action      Action
}

// CategoryExamples is the shape a category's examples are declared in:
// either List or Keyed.
type CategoryExamples interface {
	normalize() []Example
}

// List declares examples as an ordered slice.
type List []Example

func (l List) normalize() []Example {
	return slices.Clone(l)
}

// Keyed declares examples as named entries in insertion order. An entry's
// key becomes its Title when the Example leaves Title empty.
type Keyed struct {
	m *orderedmap.OrderedMap[string, Example]
}

// NewKeyed wraps an ordered map of examples.
func NewKeyed(m *orderedmap.OrderedMap[string, Example]) Keyed {
	return Keyed{m: m}
}

func (k Keyed) normalize() []Example {
	if k.m == nil {
		return nil
	}
	out := make([]Example, 0, k.m.Len())
	for pair := k.m.Oldest(); pair != nil; pair = pair.Next() {
		ex := pair.Value
		if ex.Title == "" {
			ex.Title = pair.Key
		}
		out = append(out, ex)
	}
	return out
}

// Entry declares one category for New.
type Entry struct {
	Name     string
	Examples CategoryExamples
}

// Category is a normalized category: a name plus examples in display order.
type Category struct {
	Name     string
	Examples []Example
}

// Catalog maps category names to examples, preserving declaration order.
// It is read-only after New.
type Catalog struct {
	categories []Category
	index      map[string]int
}

// New builds a catalog from entries, normalizing every category to an
// ordered example list.
func New(entries ...Entry) (*Catalog, error) {
	c := &Catalog{index: make(map[string]int, len(entries))}
	for _, e := range entries {
		if e.Name == "" {
			return nil, fmt.Errorf("category name is required")
		}
		if _, dup := c.index[e.Name]; dup {
			return nil, fmt.Errorf("duplicate category %q", e.Name)
		}
		var examples []Example
		if e.Examples != nil {
			examples = e.Examples.normalize()
		}
		for i, ex := range examples {
			if ex.Action == nil {
				return nil, fmt.Errorf("category %q: example %d (%q) has no action", e.Name, i, ex.Title)
			}
		}
		c.index[e.Name] = len(c.categories)
		c.categories = append(c.categories, Category{Name: e.Name, Examples: examples})
	}
	return c, nil
}

// Len returns the number of categories.
func (c *Catalog) Len() int { return len(c.categories) }

// Names returns the category names in catalog order.
func (c *Catalog) Names() []string {
	names := make([]string, len(c.categories))
	for i, cat := range c.categories {
		names[i] = cat.Name
	}
	return names
}

// First returns the first category name, or "" for an empty catalog.
func (c *Catalog) First() string {
	if len(c.categories) == 0 {
		return ""
	}
	return c.categories[0].Name
}

// Categories returns every category in order.
func (c *Catalog) Categories() []Category {
	return slices.Clone(c.categories)
}

// Examples returns the examples of a category.
func (c *Catalog) Examples(name string) ([]Example, bool) {
	i, ok := c.index[name]
	if !ok {
		return nil, false
	}
	return c.categories[i].Examples, true
}

// Lookup returns the example at position index within a category.
func (c *Catalog) Lookup(name string, index int) (Example, bool) {
	examples, ok := c.Examples(name)
	if !ok || index < 0 || index >= len(examples) {
		return Example{}, false
	}
	return examples[index], true
}

// Find returns the example with the given title within a category.
func (c *Catalog) Find(name, title string) (Example, int, bool) {
	examples, ok := c.Examples(name)
	if !ok {
		return Example{}, -1, false
	}
	for i, ex := range examples {
		if ex.Title == title {
			return ex, i, true
		}
	}
	return Example{}, -1, false
}

// ExampleSummary is an Example without its action.
type ExampleSummary struct {
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description" yaml:"description"`
}

// CategorySummary lists a category's examples without their actions.
type CategorySummary struct {
	Name     string           `json:"name" yaml:"name"`
	Examples []ExampleSummary `json:"examples" yaml:"examples"`
}

// Summary describes the whole catalog in order.
func (c *Catalog) Summary() []CategorySummary {
	out := make([]CategorySummary, 0, len(c.categories))
	for _, cat := range c.categories {
		cs := CategorySummary{Name: cat.Name, Examples: make([]ExampleSummary, 0, len(cat.Examples))}
		for _, ex := range cat.Examples {
			cs.Examples = append(cs.Examples, ExampleSummary{Title: ex.Title, Description: ex.Description})
		}
		out = append(out, cs)
	}
	return out
}
