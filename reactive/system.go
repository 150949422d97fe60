package reactive

import (
	"errors"
	"reflect"

	"go.opentelemetry.io/otel/trace"
)

// System owns one reactive graph: its node table, tracking stack, pending
// set and root scope. A System is not safe for concurrent use; confine it to
// one goroutine (see host.Loop). Independent Systems never interact.
type System struct {
	cfg     config
	metrics *metrics
	tracer  trace.Tracer

	lastID      NodeID
	nodes       map[NodeID]*node
	scopes      map[NodeID]*Scope
	root        *Scope
	activeScope *Scope

	tracker tracker
	sched   scheduler

	batchDepth int
	flushing   bool

	stats Stats
}

// Stats is a point in time snapshot of a System's counters.
type Stats struct {
	Nodes    int
	Pending  int
	Flushes  uint64
	Passes   uint64
	Runs     uint64
	Failures uint64
	Dropped  uint64
	Cycles   uint64
}

// New creates a System with an empty root scope.
func New(opts ...Option) *System {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	rs := &System{
		cfg:     cfg,
		metrics: newMetrics(cfg),
		tracer:  cfg.resolveTracer(),
		nodes:   map[NodeID]*node{},
		scopes:  map[NodeID]*Scope{},
		sched:   newScheduler(),
	}
	rs.root = newScope(rs, nil, "root")
	rs.activeScope = rs.root
	return rs
}

// Root returns the scope that owns everything created outside other scopes.
func (rs *System) Root() *Scope {
	return rs.root
}

// Stats returns a snapshot of the System's counters.
func (rs *System) Stats() Stats {
	s := rs.stats
	s.Nodes = len(rs.nodes)
	s.Pending = rs.sched.pending.Cardinality()
	return s
}

// Batch runs fn with flushes deferred, then flushes once when the outermost
// batch returns. Writes inside fn are observed together by every effect.
func (rs *System) Batch(fn func() error) error {
	rs.batchDepth++
	err := func() error {
		defer func() { rs.batchDepth-- }()
		return fn()
	}()
	if rs.batchDepth > 0 {
		return err
	}
	return errors.Join(err, rs.Flush())
}

// Untrack runs fn without subscribing the active dependent to anything fn
// reads.
func (rs *System) Untrack(fn func()) {
	rs.tracker.push(0, true)
	defer rs.tracker.pop()
	fn()
}

// Dispose tears down a signal, derived computation, effect or scope.
func (rs *System) Dispose(target Disposable) {
	if target != nil {
		target.Dispose()
	}
}

// DisposeID tears down the signal, derived computation, effect or scope
// with the given id. It reports false when nothing live has that id.
func (rs *System) DisposeID(id NodeID) bool {
	if n, ok := rs.nodes[id]; ok {
		rs.disposeNode(n)
		return true
	}
	if s, ok := rs.scopes[id]; ok {
		s.Dispose()
		return true
	}
	return false
}

func (rs *System) nextID() NodeID {
	rs.lastID++
	return rs.lastID
}

// register creates a node owned by the active scope. Nodes created inside a
// disposed scope are born disposed.
func (rs *System) register(kind nodeKind, c nodeConfig) *node {
	n := newNode(rs.nextID(), kind, c.label)
	scope := rs.activeScope
	n.scope = scope
	if scope.disposed {
		n.disposed = true
		return n
	}
	rs.nodes[n.id] = n
	scope.nodes.Add(n.id)
	return n
}

// track subscribes the innermost tracked dependent to src.
func (rs *System) track(src *node) {
	id, ok := rs.tracker.active()
	if !ok || id == src.id {
		return
	}
	dep, ok := rs.nodes[id]
	if !ok {
		return
	}
	if dep.deps.Add(src.id) {
		dep.depOrder = append(dep.depOrder, src.id)
		src.subs.Add(dep.id)
	}
}

// unlink drops every dependency edge of n; runTracked calls it before a run
// so that edges always reflect the latest run only.
func (rs *System) unlink(n *node) {
	for _, id := range n.depOrder {
		if src, ok := rs.nodes[id]; ok {
			src.subs.Remove(n.id)
		}
	}
	n.deps.Clear()
	n.depOrder = nil
}

// notify is called after a signal's value changed.
func (rs *System) notify(src *node) {
	for _, id := range src.subs.ToSlice() {
		if sub, ok := rs.nodes[id]; ok {
			rs.stale(sub, stateDirty, src.id)
		}
	}
	if rs.cfg.autoFlush {
		rs.autoFlush()
	}
}

// stale raises n to at least state, schedules it if it is an effect and
// marks its subscribers for checking. Failed dependents are always
// re-triggered so they get retried.
func (rs *System) stale(n *node, state cacheState, trigger NodeID) {
	if n.disposed || (n.state >= state && !n.failed) {
		return
	}
	wasClean := n.state == stateClean || n.failed
	n.failed = false
	if state > n.state {
		n.state = state
	}
	if n.kind == kindEffect {
		rs.sched.schedule(n.id, trigger)
	}
	if !wasClean {
		return
	}
	for _, id := range n.subs.ToSlice() {
		if sub, ok := rs.nodes[id]; ok {
			rs.stale(sub, stateCheck, n.id)
		}
	}
}

// refresh brings a dependent up to date: a check node refreshes its derived
// sources in read order and only runs if one of them changed.
func (rs *System) refresh(n *node) (ran bool, err error) {
	if rs.tracker.contains(n.id) {
		return false, rs.reentrant(n)
	}
	if n.state == stateCheck {
		for _, id := range n.depOrder {
			src, ok := rs.nodes[id]
			if !ok {
				// disposed source: run again so the read reports it
				n.state = stateDirty
				break
			}
			if src.kind != kindDerived {
				continue
			}
			if _, err := rs.refresh(src); err != nil {
				n.state = stateDirty
				n.failed = true
				return false, &DependentError{ID: n.id, Node: n.String(), Err: err}
			}
			if n.state == stateDirty {
				// Stop here so a source the next run no longer reads is
				// not recomputed needlessly.
				break
			}
		}
	}
	if n.state == stateDirty {
		return true, rs.run(n)
	}
	n.state = stateClean
	return false, nil
}

func (rs *System) run(n *node) error {
	n.state = stateClean
	rs.stats.Runs++
	rs.metrics.ran(n.kind)

	changed, err := n.update()
	if err != nil {
		n.state = stateDirty
		n.failed = true
		rs.stats.Failures++
		rs.metrics.failed(n.kind)
		var de *DependentError
		if errors.As(err, &de) && de.ID == n.id {
			return err
		}
		return &DependentError{ID: n.id, Node: n.String(), Err: err}
	}
	n.failed = false

	if changed {
		for _, id := range n.subs.ToSlice() {
			if sub, ok := rs.nodes[id]; ok && sub.state == stateCheck {
				sub.state = stateDirty
			}
		}
	}
	return nil
}

func (rs *System) disposeNode(n *node) {
	if n.disposed {
		return
	}
	n.disposed = true
	for _, id := range n.depOrder {
		if src, ok := rs.nodes[id]; ok {
			src.subs.Remove(n.id)
		}
	}
	subs := n.subs.ToSlice()
	n.subs.Clear()
	delete(rs.nodes, n.id)
	for _, id := range subs {
		if sub, ok := rs.nodes[id]; ok {
			sub.deps.Remove(n.id)
			rs.stale(sub, stateDirty, n.id)
		}
	}
	if n.scope != nil {
		n.scope.nodes.Remove(n.id)
	}
	if n.onDispose != nil {
		n.onDispose()
	}
}

func (rs *System) autoFlush() {
	if rs.batchDepth > 0 || rs.flushing || rs.tracker.evaluating() {
		return
	}
	if err := rs.Flush(); err != nil {
		rs.reportError(err)
	}
}

func (rs *System) reportError(err error) {
	if rs.cfg.onError != nil {
		rs.cfg.onError(err)
		return
	}
	rs.cfg.logger.Error("unhandled reactive error", "system", rs.cfg.name, "error", err)
}

func defaultEquals[T any](a, b T) bool {
	switch av := any(a).(type) {
	case int:
		bv, ok := any(b).(int)
		return ok && av == bv
	case int64:
		bv, ok := any(b).(int64)
		return ok && av == bv
	case float64:
		bv, ok := any(b).(float64)
		return ok && av == bv
	case string:
		bv, ok := any(b).(string)
		return ok && av == bv
	case bool:
		bv, ok := any(b).(bool)
		return ok && av == bv
	default:
		return reflect.DeepEqual(a, b)
	}
}
