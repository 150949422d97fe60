package view

import (
	"fmt"
	"io"

	"github.com/cespare/xxhash/v2"
	"github.com/delaneyj/signalgraph/reactive"
	"github.com/valyala/bytebufferpool"
)

// RenderFunc writes a fragment. Signals and deriveds read while it runs
// become the fragment's dependencies.
type RenderFunc func(w io.Writer) error

// Binding keeps one fragment of a Surface in sync with the reactive state it
// renders. Re-running a binding whose inputs produce the same output does
// not commit again.
type Binding struct {
	fragment string
	surface  Surface
	render   RenderFunc
	effect   *reactive.Effect

	digest    uint64
	committed bool
	commits   int
}

// Bind renders fragment once and commits it, then re-renders whenever
// something the render read changes. The binding is owned by the active
// scope of rs.
func Bind(rs *reactive.System, surface Surface, fragment string, render RenderFunc, opts ...reactive.NodeOption) (*Binding, error) {
	b := &Binding{
		fragment: fragment,
		surface:  surface,
		render:   render,
	}
	opts = append([]reactive.NodeOption{reactive.WithLabel("view:" + fragment)}, opts...)

	var err error
	b.effect, err = reactive.NewEffect(rs, b.update, opts...)
	return b, err
}

func (b *Binding) update() error {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	if err := b.render(buf); err != nil {
		return fmt.Errorf("render %s: %w", b.fragment, err)
	}

	digest := xxhash.Sum64(buf.B)
	if b.committed && digest == b.digest {
		return nil
	}
	if err := b.surface.Commit(b.fragment, buf.String()); err != nil {
		return fmt.Errorf("commit %s: %w", b.fragment, err)
	}
	b.digest = digest
	b.committed = true
	b.commits++
	return nil
}

func (b *Binding) ID() reactive.NodeID {
	return b.effect.ID()
}

func (b *Binding) Fragment() string {
	return b.fragment
}

// Renders reports how many times the fragment was rendered.
func (b *Binding) Renders() int {
	return b.effect.Runs()
}

// Commits reports how many renders produced new output.
func (b *Binding) Commits() int {
	return b.commits
}

// Digest returns the xxhash of the last committed output.
func (b *Binding) Digest() uint64 {
	return b.digest
}

func (b *Binding) Dispose() {
	b.effect.Dispose()
}
