package reactive

import (
	"fmt"

	mapset "github.com/deckarep/golang-set/v2"
)

// NodeID identifies a signal, derived computation, effect or scope within a
// System. IDs are never reused by the System that issued them.
type NodeID uint64

type nodeKind uint8

const (
	kindSignal nodeKind = iota + 1
	kindDerived
	kindEffect
)

func (k nodeKind) String() string {
	switch k {
	case kindSignal:
		return "signal"
	case kindDerived:
		return "derived"
	case kindEffect:
		return "effect"
	default:
		return "unknown"
	}
}

type cacheState uint8

const (
	stateClean cacheState = iota // value is valid
	stateCheck                   // a source might have changed, check sources before trusting the value
	stateDirty                   // a source changed, value must be recomputed
)

// node is the type-erased graph vertex shared by every reactive primitive.
// Edges are stored as ID sets on both ends and resolved through
// System.nodes, so a node never owns its neighbours.
type node struct {
	id    NodeID
	kind  nodeKind
	label string
	scope *Scope

	state    cacheState
	failed   bool
	disposed bool
	height   int

	subs     mapset.Set[NodeID]
	deps     mapset.Set[NodeID]
	depOrder []NodeID

	// update recomputes a derived (reporting whether its value changed) or
	// runs an effect. nil for signals.
	update func() (changed bool, err error)
	// onDispose runs once after the node left the graph.
	onDispose func()
}

func newNode(id NodeID, kind nodeKind, label string) *node {
	n := &node{
		id:    id,
		kind:  kind,
		label: label,
		subs:  mapset.NewThreadUnsafeSet[NodeID](),
	}
	if kind != kindSignal {
		n.deps = mapset.NewThreadUnsafeSet[NodeID]()
		n.state = stateDirty
	}
	return n
}

func (n *node) isDependent() bool {
	return n.kind == kindDerived || n.kind == kindEffect
}

func (n *node) String() string {
	if n.label != "" {
		return fmt.Sprintf("%s#%d(%s)", n.kind, n.id, n.label)
	}
	return fmt.Sprintf("%s#%d", n.kind, n.id)
}

// Disposable is implemented by everything System.Dispose can tear down.
type Disposable interface {
	ID() NodeID
	Dispose()
}

// Getter reads a value, subscribing the active dependent.
type Getter[T any] func() T

// Setter writes a value and schedules dependents.
type Setter[T any] func(value T)

// Disposer tears down the effect or scope it was returned for.
type Disposer func()
