package surface

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/yaklabco/mdedit/pkg/mdast"
	"github.com/yaklabco/mdedit/pkg/theme"
)

// TreeProvider turns document text into a tree. Implementations must not
// retain text.
type TreeProvider interface {
	Parse(ctx context.Context, text []byte) (*mdast.Document, error)
}

// TreeConsumer receives every published tree.
type TreeConsumer interface {
	UpdateTree(doc *mdast.Document)
}

// ThemeConsumer receives theme changes.
type ThemeConsumer interface {
	OnThemeChanged(th *theme.Theme)
}

// TreeHandle holds the current tree. Each published tree gets the next
// generation number, so generations only grow.
type TreeHandle struct {
	mu      sync.Mutex
	last    uint64
	current atomic.Pointer[mdast.Document]
}

// Publish stamps doc with the next generation, makes it current and returns
// the stamped tree. doc itself is not modified.
func (h *TreeHandle) Publish(doc *mdast.Document) *mdast.Document {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.last++
	published := doc.WithGeneration(h.last)
	h.current.Store(published)
	return published
}

// Current returns the latest published tree, or nil before the first.
func (h *TreeHandle) Current() *mdast.Document {
	return h.current.Load()
}

// Generation returns the generation of the current tree, or 0.
func (h *TreeHandle) Generation() uint64 {
	if doc := h.current.Load(); doc != nil {
		return doc.Generation
	}
	return 0
}
