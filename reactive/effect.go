package reactive

// Effect re-runs a side-effecting function whenever something it read on its
// previous run changes. Re-runs happen during a flush, never inside Write.
type Effect struct {
	rs    *System
	n     *node
	fn    func() error
	owned *Scope
	runs  int
}

// NewEffect creates an effect owned by the active scope and runs it once
// immediately. An error from that first run is returned alongside the
// effect, which stays alive and is retried on the next relevant write.
func NewEffect(rs *System, fn func() error, opts ...NodeOption) (*Effect, error) {
	c := buildNodeConfig(opts)
	e := &Effect{
		rs: rs,
		n:  rs.register(kindEffect, c),
		fn: fn,
	}
	if e.n.disposed {
		return e, &UseAfterDisposeError{Node: e.n.String(), Op: "create"}
	}
	e.owned = newScope(rs, e.n.scope, e.n.String())
	e.owned.owner = e.n
	e.n.update = e.execute
	e.n.onDispose = e.owned.Dispose
	err := rs.run(e.n)
	if rs.cfg.autoFlush {
		// writes made by the first run were deferred while it was tracking
		rs.autoFlush()
	}
	return e, err
}

// CreateEffect is NewEffect returning only the disposer.
func CreateEffect(rs *System, fn func() error, opts ...NodeOption) (Disposer, error) {
	e, err := NewEffect(rs, fn, opts...)
	return e.Dispose, err
}

func (e *Effect) ID() NodeID {
	return e.n.id
}

func (e *Effect) String() string {
	return e.n.String()
}

// Runs reports how many times the effect function has been called.
func (e *Effect) Runs() int {
	return e.runs
}

// Disposed reports whether the effect was torn down.
func (e *Effect) Disposed() bool {
	return e.n.disposed
}

// Dispose stops the effect, runs its cleanups and drops any pending run.
func (e *Effect) Dispose() {
	e.rs.disposeNode(e.n)
}

// execute tears down whatever the previous run created, then runs fn with
// the effect's own scope active so nested signals, effects and cleanups
// belong to this run.
func (e *Effect) execute() (bool, error) {
	// drop edges first so disposing what the last run created does not
	// re-dirty this effect
	e.rs.unlink(e.n)
	e.owned.reset()
	e.runs++

	prev := e.rs.activeScope
	e.rs.activeScope = e.owned
	defer func() { e.rs.activeScope = prev }()

	_, err := e.rs.runTracked(e.n, e.fn)
	return true, err
}
