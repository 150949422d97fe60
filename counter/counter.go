// Package counter is the canonical signal graph: a count, its double, a click
// handler and one view fragment per value.
package counter

import (
	"io"

	"github.com/delaneyj/signalgraph/counter/templates"
	"github.com/delaneyj/signalgraph/reactive"
	"github.com/delaneyj/signalgraph/view"
)

// Fragment names committed by Mount.
const (
	ButtonFragment = "button"
	DoubleFragment = "double"
)

type App struct {
	rs     *reactive.System
	scope  *reactive.Scope
	count  *reactive.Signal[int]
	double *reactive.Derived[int]

	bindings []*view.Binding
}

// New builds the counter graph inside its own scope of rs.
func New(rs *reactive.System, initial int) (*App, error) {
	a := &App{rs: rs}
	scope, err := rs.NewScope("counter", func() error {
		a.count = reactive.NewSignal(rs, initial, reactive.WithLabel("count"))
		a.double = reactive.NewDerived(rs, func() (int, error) {
			return a.count.Value() * 2, nil
		}, reactive.WithLabel("double"))
		return nil
	})
	a.scope = scope
	if err != nil {
		return nil, err
	}
	return a, nil
}

// Mount binds the button and double fragments to surface.
func (a *App) Mount(surface view.Surface) error {
	return a.scope.Run(func() error {
		button, err := view.Bind(a.rs, surface, ButtonFragment, func(w io.Writer) error {
			templates.WriteButton(w, a.count.Value())
			return nil
		})
		if err != nil {
			return err
		}
		double, err := view.Bind(a.rs, surface, DoubleFragment, func(w io.Writer) error {
			templates.WriteDoubleCount(w, a.double.Value())
			return nil
		})
		if err != nil {
			return err
		}
		a.bindings = append(a.bindings, button, double)
		return nil
	})
}

// Click increments the count. The fragments update on the next flush.
func (a *App) Click() error {
	return a.count.Update(func(n int) int { return n + 1 })
}

// Set overwrites the count.
func (a *App) Set(n int) error {
	return a.count.Write(n)
}

func (a *App) Count() (int, error) {
	return a.count.Peek()
}

func (a *App) Double() (int, error) {
	return a.double.Get()
}

// Page renders the full document for the current state.
func (a *App) Page(w io.Writer) error {
	count, err := a.Count()
	if err != nil {
		return err
	}
	double, err := a.Double()
	if err != nil {
		return err
	}
	templates.WritePage(w, count, double)
	return nil
}

// Bindings returns the fragments mounted so far.
func (a *App) Bindings() []*view.Binding {
	return a.bindings
}

// Dispose tears down the graph and every mounted binding.
func (a *App) Dispose() {
	a.scope.Dispose()
}
