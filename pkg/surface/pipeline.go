package surface

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/yaklabco/mdedit/pkg/mdast"
	"github.com/yaklabco/mdedit/pkg/theme"
)

// AlertTreeFailed prefixes the notification sent when a parse fails.
const AlertTreeFailed = "Abstract Syntax Tree generation failed"

// ErrProviderPanic is returned when a tree provider panics.
var ErrProviderPanic = errors.New("tree provider panicked")

// Notifier shows non-fatal messages to the user.
type Notifier interface {
	Alert(msg string)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(msg string)

// Alert calls f(msg).
func (f NotifierFunc) Alert(msg string) { f(msg) }

// LogNotifier writes alerts to a logger at error level.
type LogNotifier struct {
	Logger *log.Logger
}

// Alert logs msg.
func (n LogNotifier) Alert(msg string) {
	logger := n.Logger
	if logger == nil {
		logger = log.Default()
	}
	logger.Error(msg)
}

// Redrawer repaints the whole view.
type Redrawer interface {
	Redraw()
}

// PipelineOptions wires a Pipeline.
type PipelineOptions struct {
	// Consumers receive each published tree in order.
	Consumers []TreeConsumer

	// Redraw is asked for a full repaint after the consumers are updated.
	Redraw Redrawer

	// Notifier receives parse failures. Nil logs them.
	Notifier Notifier
}

// Pipeline regenerates the tree on every text change and hands it to the
// render consumers. Regenerations and theme changes are serialized, and
// Read observes the consumers between two of them, never in the middle.
type Pipeline struct {
	mu sync.RWMutex

	provider  TreeProvider
	handle    *TreeHandle
	consumers []TreeConsumer
	redraw    Redrawer
	notifier  Notifier
}

// NewPipeline creates a pipeline publishing trees from provider into handle.
func NewPipeline(provider TreeProvider, handle *TreeHandle, opts PipelineOptions) *Pipeline {
	notifier := opts.Notifier
	if notifier == nil {
		notifier = LogNotifier{}
	}
	if handle == nil {
		handle = &TreeHandle{}
	}

	return &Pipeline{
		provider:  provider,
		handle:    handle,
		consumers: append([]TreeConsumer(nil), opts.Consumers...),
		redraw:    opts.Redraw,
		notifier:  notifier,
	}
}

// Handle returns the tree handle the pipeline publishes to.
func (p *Pipeline) Handle() *TreeHandle {
	return p.handle
}

// Regenerate parses text and publishes the result. On failure the current
// tree stays in place, consumers are not touched and the notifier is told.
// The error is returned for callers that care; it is never fatal.
func (p *Pipeline) Regenerate(ctx context.Context, text []byte) (*mdast.Document, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	doc, err := p.parse(ctx, text)
	if err == nil && doc == nil {
		err = fmt.Errorf("%w: provider returned no tree", ErrProviderPanic)
	}
	if err != nil {
		p.notifier.Alert(fmt.Sprintf("%s: %v", AlertTreeFailed, err))
		return nil, err
	}

	published := p.handle.Publish(doc)
	for _, c := range p.consumers {
		c.UpdateTree(published)
	}
	if p.redraw != nil {
		p.redraw.Redraw()
	}

	return published, nil
}

func (p *Pipeline) parse(ctx context.Context, text []byte) (doc *mdast.Document, err error) {
	defer func() {
		if r := recover(); r != nil {
			doc = nil
			err = fmt.Errorf("%w: %v", ErrProviderPanic, r)
		}
	}()
	return p.provider.Parse(ctx, text)
}

// SetTheme passes th to every consumer that implements ThemeConsumer and
// requests a redraw.
func (p *Pipeline) SetTheme(th *theme.Theme) {
	if th == nil {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	for _, c := range p.consumers {
		if tc, ok := c.(ThemeConsumer); ok {
			tc.OnThemeChanged(th)
		}
	}
	if p.redraw != nil {
		p.redraw.Redraw()
	}
}

// Read runs fn with the current tree while no regeneration is in progress.
func (p *Pipeline) Read(fn func(doc *mdast.Document)) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	fn(p.handle.Current())
}
