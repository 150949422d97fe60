package reactive

// Derived is a memoized computation over signals and other deriveds.
//
// Invalidation is eager and recomputation is lazy: a write marks the
// derived (and transitively its subscribers) as stale right away, but fn
// only runs again the next time the value is read.
type Derived[T any] struct {
	rs          *System
	n           *node
	fn          func() (T, error)
	value       T
	initialized bool
	equals      func(a, b T) bool
}

// NewDerived creates a derived computation owned by the active scope. fn is
// not called until the first read.
func NewDerived[T any](rs *System, fn func() (T, error), opts ...NodeOption) *Derived[T] {
	c := buildNodeConfig(opts)
	d := &Derived[T]{
		rs:     rs,
		n:      rs.register(kindDerived, c),
		fn:     fn,
		equals: resolveEquals[T](c),
	}
	d.n.update = d.recompute
	return d
}

// CreateDerived returns the read-only accessor of a new derived computation.
func CreateDerived[T any](rs *System, fn func() (T, error), opts ...NodeOption) Getter[T] {
	return NewDerived(rs, fn, opts...).Value
}

func (d *Derived[T]) ID() NodeID {
	return d.n.id
}

func (d *Derived[T]) String() string {
	return d.n.String()
}

// Get returns the cached value, recomputing first if a source changed, and
// subscribes the active dependent. When fn fails the previous value is kept,
// the derived stays dirty and the error is returned.
func (d *Derived[T]) Get() (T, error) {
	if d.n.disposed {
		return d.value, &UseAfterDisposeError{Node: d.n.String(), Op: "read"}
	}
	_, err := d.rs.refresh(d.n)
	d.rs.track(d.n)
	if d.rs.cfg.autoFlush {
		d.rs.autoFlush()
	}
	return d.value, err
}

// Value is Get for use inside other derived computations and effects.
func (d *Derived[T]) Value() T {
	v, err := d.Get()
	if err != nil {
		panic(err)
	}
	return v
}

// Dirty reports whether the next read will recompute or check sources.
func (d *Derived[T]) Dirty() bool {
	return d.n.state != stateClean
}

// Dispose removes the derived from the graph.
func (d *Derived[T]) Dispose() {
	d.rs.disposeNode(d.n)
}

func (d *Derived[T]) recompute() (changed bool, err error) {
	var next T
	_, err = d.rs.runTracked(d.n, func() error {
		v, err := d.fn()
		if err != nil {
			return err
		}
		next = v
		return nil
	})
	if err != nil {
		return false, err
	}
	if d.initialized && d.equals(d.value, next) {
		return false, nil
	}
	d.value = next
	d.initialized = true
	return true, nil
}
