package reactive

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUseAfterDispose is matched by errors from reading or writing a
	// node whose owning scope was torn down.
	ErrUseAfterDispose = errors.New("reactive: use after dispose")

	// ErrCyclicUpdate is matched by *CyclicUpdateError.
	ErrCyclicUpdate = errors.New("reactive: cyclic update")

	// ErrReentrantTracking is matched by *ReentrantTrackingError.
	ErrReentrantTracking = errors.New("reactive: reentrant tracking")
)

// UseAfterDisposeError reports an access to a disposed node.
type UseAfterDisposeError struct {
	Node string
	Op   string
}

func (e *UseAfterDisposeError) Error() string {
	return fmt.Sprintf("reactive: %s on disposed %s", e.Op, e.Node)
}

func (e *UseAfterDisposeError) Is(target error) bool {
	return target == ErrUseAfterDispose
}

// ReentrantTrackingError is returned when a dependent starts tracking while
// it is already on the tracking stack, i.e. it reads itself.
type ReentrantTrackingError struct {
	Node  string
	Stack []string
}

func (e *ReentrantTrackingError) Error() string {
	return fmt.Sprintf("reactive: %s is already being tracked (stack: %s)",
		e.Node, strings.Join(e.Stack, " -> "))
}

func (e *ReentrantTrackingError) Is(target error) bool {
	return target == ErrReentrantTracking
}

// CycleLink names a dependent still pending when a flush gave up, and the
// node whose write last marked it.
type CycleLink struct {
	Dependent string
	Trigger   string
}

// CyclicUpdateError is returned by Flush when dependents keep re-dirtying
// each other past the configured pass limit.
type CyclicUpdateError struct {
	Passes int
	Chain  []CycleLink
}

func (e *CyclicUpdateError) Error() string {
	sb := strings.Builder{}
	fmt.Fprintf(&sb, "reactive: cyclic update, still pending after %d passes", e.Passes)
	for i, l := range e.Chain {
		if i == 0 {
			sb.WriteString(": ")
		} else {
			sb.WriteString(", ")
		}
		if l.Trigger != "" {
			fmt.Fprintf(&sb, "%s <- %s", l.Dependent, l.Trigger)
		} else {
			sb.WriteString(l.Dependent)
		}
	}
	return sb.String()
}

func (e *CyclicUpdateError) Is(target error) bool {
	return target == ErrCyclicUpdate
}

// DependentError wraps an error returned (or panicked) by the function of a
// derived computation or effect.
type DependentError struct {
	ID   NodeID
	Node string
	Err  error
}

func (e *DependentError) Error() string {
	return fmt.Sprintf("reactive: %s failed: %v", e.Node, e.Err)
}

func (e *DependentError) Unwrap() error {
	return e.Err
}

// PanicError carries a value recovered from a panicking user function.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// recovered converts a recovered panic value into an error. Errors raised by
// Value() accessors are passed through so callers can match them.
func recovered(r any) error {
	if err, ok := r.(error); ok {
		var (
			uad *UseAfterDisposeError
			rte *ReentrantTrackingError
			de  *DependentError
		)
		if errors.As(err, &uad) || errors.As(err, &rte) || errors.As(err, &de) {
			return err
		}
	}
	return &PanicError{Value: r}
}
