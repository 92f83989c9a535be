package catalog

import (
	"strings"
	"sync"
)

// Output is an append-only text sink attached to one rendered section.
// Once detached, further writes are dropped.
type Output struct {
	mu       sync.Mutex
	lines    []string
	detached bool
	dropped  int
}

// NewOutput returns an empty, attached output.
func NewOutput() *Output {
	return &Output{}
}

// Write appends text.
func (o *Output) Write(text string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.detached {
		o.dropped++
		return
	}
	o.lines = append(o.lines, text)
}

// String returns everything written so far, one write per line.
func (o *Output) String() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return strings.Join(o.lines, "\n")
}

// Detach marks the section as replaced; later writes are discarded.
func (o *Output) Detach() {
	o.mu.Lock()
	o.detached = true
	o.mu.Unlock()
}

// Detached reports whether Detach was called.
func (o *Output) Detached() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.detached
}

// Dropped returns how many writes arrived after Detach.
func (o *Output) Dropped() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.dropped
}
