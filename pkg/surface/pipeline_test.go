package surface_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/mdedit/pkg/mdast"
	"github.com/yaklabco/mdedit/pkg/parser/goldmark"
	"github.com/yaklabco/mdedit/pkg/surface"
	"github.com/yaklabco/mdedit/pkg/theme"
)

type providerFunc func(ctx context.Context, text []byte) (*mdast.Document, error)

func (f providerFunc) Parse(ctx context.Context, text []byte) (*mdast.Document, error) {
	return f(ctx, text)
}

// recorder logs every call it receives into a shared journal.
type recorder struct {
	name    string
	journal *[]string
	gens    []uint64
	themes  []*theme.Theme
}

func (r *recorder) UpdateTree(doc *mdast.Document) {
	*r.journal = append(*r.journal, r.name)
	r.gens = append(r.gens, doc.Generation)
}

func (r *recorder) OnThemeChanged(th *theme.Theme) {
	r.themes = append(r.themes, th)
}

type redrawRecorder struct {
	journal *[]string
}

func (r redrawRecorder) Redraw() {
	*r.journal = append(*r.journal, "redraw")
}

type alerts struct {
	mu   sync.Mutex
	msgs []string
}

func (a *alerts) Alert(msg string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.msgs = append(a.msgs, msg)
}

func newPipeline(provider surface.TreeProvider, notifier surface.Notifier) (*surface.Pipeline, *recorder, *recorder, *[]string) {
	journal := &[]string{}
	colorizer := &recorder{name: "colorizer", journal: journal}
	bands := &recorder{name: "background", journal: journal}
	p := surface.NewPipeline(provider, nil, surface.PipelineOptions{
		Consumers: []surface.TreeConsumer{colorizer, bands},
		Redraw:    redrawRecorder{journal: journal},
		Notifier:  notifier,
	})
	return p, colorizer, bands, journal
}

func TestPipeline_RegenerateOrder(t *testing.T) {
	t.Parallel()

	p, colorizer, bands, journal := newPipeline(goldmark.New(goldmark.FlavorGFM), &alerts{})

	doc, err := p.Regenerate(context.Background(), []byte("# Title\n"))
	require.NoError(t, err)
	assert.Equal(t, uint64(1), doc.Generation)
	assert.Same(t, doc, p.Handle().Current())

	_, err = p.Regenerate(context.Background(), []byte("text\n"))
	require.NoError(t, err)

	assert.Equal(t, []string{
		"colorizer", "background", "redraw",
		"colorizer", "background", "redraw",
	}, *journal)
	assert.Equal(t, []uint64{1, 2}, colorizer.gens)
	assert.Equal(t, colorizer.gens, bands.gens)
	assert.Equal(t, uint64(2), p.Handle().Generation())
}

func TestPipeline_FailureKeepsTree(t *testing.T) {
	t.Parallel()

	fail := false
	parser := goldmark.New(goldmark.FlavorCommonMark)
	provider := providerFunc(func(ctx context.Context, text []byte) (*mdast.Document, error) {
		if fail {
			return nil, errors.New("boom")
		}
		return parser.Parse(ctx, text)
	})

	notes := &alerts{}
	p, colorizer, _, journal := newPipeline(provider, notes)

	first, err := p.Regenerate(context.Background(), []byte("# Title\n"))
	require.NoError(t, err)

	fail = true
	_, err = p.Regenerate(context.Background(), []byte("changed\n"))
	require.Error(t, err)

	assert.Same(t, first, p.Handle().Current())
	assert.Equal(t, []uint64{1}, colorizer.gens)
	assert.Len(t, *journal, 3)
	require.Len(t, notes.msgs, 1)
	assert.Equal(t, "Abstract Syntax Tree generation failed: boom", notes.msgs[0])

	fail = false
	next, err := p.Regenerate(context.Background(), []byte("again\n"))
	require.NoError(t, err)
	assert.Equal(t, uint64(2), next.Generation)
}

func TestPipeline_RecoversProviderPanic(t *testing.T) {
	t.Parallel()

	provider := providerFunc(func(context.Context, []byte) (*mdast.Document, error) {
		panic("bad input")
	})
	notes := &alerts{}
	p, _, _, journal := newPipeline(provider, notes)

	_, err := p.Regenerate(context.Background(), []byte("x"))
	require.ErrorIs(t, err, surface.ErrProviderPanic)
	assert.Nil(t, p.Handle().Current())
	assert.Empty(t, *journal)
	require.Len(t, notes.msgs, 1)
	assert.Contains(t, notes.msgs[0], surface.AlertTreeFailed)
}

func TestPipeline_NilTreeIsFailure(t *testing.T) {
	t.Parallel()

	provider := providerFunc(func(context.Context, []byte) (*mdast.Document, error) {
		return nil, nil //nolint:nilnil // Exercising a misbehaving provider.
	})
	notes := &alerts{}
	p, _, _, _ := newPipeline(provider, notes)

	_, err := p.Regenerate(context.Background(), []byte("x"))
	require.Error(t, err)
	assert.Len(t, notes.msgs, 1)
}

func TestPipeline_SetTheme(t *testing.T) {
	t.Parallel()

	p, colorizer, bands, journal := newPipeline(goldmark.New(""), &alerts{})

	light := theme.Light()
	p.SetTheme(light)
	p.SetTheme(nil)

	assert.Equal(t, []*theme.Theme{light}, colorizer.themes)
	assert.Equal(t, []*theme.Theme{light}, bands.themes)
	assert.Equal(t, []string{"redraw"}, *journal)
}

func TestPipeline_ConcurrentRegenerate(t *testing.T) {
	t.Parallel()

	p, colorizer, bands, _ := newPipeline(goldmark.New(goldmark.FlavorGFM), &alerts{})

	var wg sync.WaitGroup
	for i := range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = p.Regenerate(context.Background(), []byte("# doc\n\n"+string(rune('a'+i))))
		}()
	}
	wg.Wait()

	p.Read(func(doc *mdast.Document) {
		require.NotNil(t, doc)
		assert.Equal(t, uint64(16), doc.Generation)
	})

	require.Len(t, colorizer.gens, 16)
	for i, gen := range colorizer.gens {
		assert.Equal(t, uint64(i+1), gen)
	}
	assert.Equal(t, colorizer.gens, bands.gens)
}

func TestTreeHandle_Publish(t *testing.T) {
	t.Parallel()

	var h surface.TreeHandle
	assert.Nil(t, h.Current())
	assert.Equal(t, uint64(0), h.Generation())

	doc := mdast.NewDocument([]byte("x"))
	first := h.Publish(doc)
	second := h.Publish(doc)

	assert.Equal(t, uint64(0), doc.Generation)
	assert.Equal(t, uint64(1), first.Generation)
	assert.Equal(t, uint64(2), second.Generation)
	assert.Same(t, second, h.Current())
}
