package reactive

import (
	"slices"

	mapset "github.com/deckarep/golang-set/v2"
)

// Scope owns the signals, deriveds, effects and child scopes created while
// it is active. Disposing a scope tears all of them down: they are removed
// from every subscriber list and any pending run is dropped.
type Scope struct {
	rs       *System
	id       NodeID
	label    string
	parent   *Scope
	children []*Scope
	nodes    mapset.Set[NodeID]
	cleanups []func()
	disposed bool

	// owner is the effect whose runs this scope collects, if any.
	owner *node
}

func newScope(rs *System, parent *Scope, label string) *Scope {
	s := &Scope{
		rs:     rs,
		id:     rs.nextID(),
		label:  label,
		parent: parent,
		nodes:  mapset.NewThreadUnsafeSet[NodeID](),
	}
	if parent != nil && parent.disposed {
		s.disposed = true
		return s
	}
	if parent != nil {
		parent.children = append(parent.children, s)
	}
	rs.scopes[s.id] = s
	return s
}

// NewScope creates a child of the active scope and runs fn with it active.
// The scope is returned even when fn fails so the caller can dispose it.
func (rs *System) NewScope(label string, fn func() error) (*Scope, error) {
	s := newScope(rs, rs.activeScope, label)
	if fn == nil {
		return s, nil
	}
	return s, s.Run(fn)
}

// OnCleanup registers fn on the active scope. Inside an effect it runs before
// the effect's next run and when the effect is disposed.
func OnCleanup(rs *System, fn func()) {
	rs.activeScope.OnCleanup(fn)
}

func (s *Scope) ID() NodeID {
	return s.id
}

func (s *Scope) Label() string {
	return s.label
}

func (s *Scope) Disposed() bool {
	return s.disposed
}

// Run makes s the active scope for the duration of fn. Reads inside fn are
// not tracked by any enclosing dependent.
func (s *Scope) Run(fn func() error) (err error) {
	if s.disposed {
		return &UseAfterDisposeError{Node: "scope#" + s.label, Op: "run"}
	}
	prev := s.rs.activeScope
	s.rs.activeScope = s
	s.rs.tracker.push(0, true)
	defer func() {
		s.rs.tracker.pop()
		s.rs.activeScope = prev
	}()
	return fn()
}

// OnCleanup registers fn to run when s is disposed. On a disposed scope fn
// runs immediately.
func (s *Scope) OnCleanup(fn func()) {
	if s.disposed {
		fn()
		return
	}
	s.cleanups = append(s.cleanups, fn)
}

// Dispose tears down everything s owns and detaches s from its parent.
func (s *Scope) Dispose() {
	if s.disposed {
		return
	}
	s.reset()
	s.disposed = true
	delete(s.rs.scopes, s.id)
	if s.parent != nil {
		s.parent.removeChild(s)
	}
}

// reset disposes everything owned by s but keeps s usable: child scopes
// first, then cleanups in reverse registration order, then nodes newest
// first so dependents leave the graph before their sources.
func (s *Scope) reset() {
	children := s.children
	s.children = nil
	for i := len(children) - 1; i >= 0; i-- {
		children[i].parent = nil
		children[i].Dispose()
	}

	cleanups := s.cleanups
	s.cleanups = nil
	for i := len(cleanups) - 1; i >= 0; i-- {
		cleanups[i]()
	}

	ids := s.nodes.ToSlice()
	slices.Sort(ids)
	for _, id := range slices.Backward(ids) {
		n, ok := s.rs.nodes[id]
		if !ok {
			continue
		}
		s.rs.disposeNode(n)
	}
	s.nodes.Clear()
}

// ownerEffect returns the closest effect that owns s or one of its parents.
func (s *Scope) ownerEffect() *node {
	for sc := s; sc != nil; sc = sc.parent {
		if sc.owner != nil {
			return sc.owner
		}
	}
	return nil
}

func (s *Scope) removeChild(child *Scope) {
	for i, c := range s.children {
		if c == child {
			s.children = append(s.children[:i], s.children[i+1:]...)
			return
		}
	}
}
