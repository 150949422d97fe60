package reactive

// Signal is a reactive cell holding a value of type T.
type Signal[T any] struct {
	rs     *System
	n      *node
	value  T
	equals func(a, b T) bool
}

// NewSignal creates a signal owned by the active scope.
func NewSignal[T any](rs *System, initial T, opts ...NodeOption) *Signal[T] {
	c := buildNodeConfig(opts)
	return &Signal[T]{
		rs:     rs,
		n:      rs.register(kindSignal, c),
		value:  initial,
		equals: resolveEquals[T](c),
	}
}

// CreateSignal returns the read/write pair for a new signal. Both functions
// panic with ErrUseAfterDispose once the owning scope is gone; inside a
// derived computation or effect that panic becomes the dependent's error.
func CreateSignal[T any](rs *System, initial T, opts ...NodeOption) (Getter[T], Setter[T]) {
	s := NewSignal(rs, initial, opts...)
	return s.Value, s.Set
}

func (s *Signal[T]) ID() NodeID {
	return s.n.id
}

func (s *Signal[T]) String() string {
	return s.n.String()
}

// Read returns the current value and subscribes the active dependent.
func (s *Signal[T]) Read() (T, error) {
	if s.n.disposed {
		var zero T
		return zero, &UseAfterDisposeError{Node: s.n.String(), Op: "read"}
	}
	s.rs.track(s.n)
	return s.value, nil
}

// Value is Read for use inside derived computations and effects.
func (s *Signal[T]) Value() T {
	v, err := s.Read()
	if err != nil {
		panic(err)
	}
	return v
}

// Peek returns the current value without subscribing anything.
func (s *Signal[T]) Peek() (T, error) {
	if s.n.disposed {
		var zero T
		return zero, &UseAfterDisposeError{Node: s.n.String(), Op: "peek"}
	}
	return s.value, nil
}

// Write replaces the value. Subscribers are marked and scheduled when the
// new value differs from the old one under the signal's equality predicate.
// Effects do not run until the next flush.
func (s *Signal[T]) Write(value T) error {
	if s.n.disposed {
		return &UseAfterDisposeError{Node: s.n.String(), Op: "write"}
	}
	old := s.value
	s.value = value
	if !s.equals(old, value) {
		s.rs.notify(s.n)
	}
	return nil
}

// Set is Write for callers that treat use after dispose as a bug.
func (s *Signal[T]) Set(value T) {
	if err := s.Write(value); err != nil {
		panic(err)
	}
}

// Update writes fn applied to the current value, without subscribing.
func (s *Signal[T]) Update(fn func(T) T) error {
	if s.n.disposed {
		return &UseAfterDisposeError{Node: s.n.String(), Op: "update"}
	}
	return s.Write(fn(s.value))
}

// Dispose removes the signal from the graph.
func (s *Signal[T]) Dispose() {
	s.rs.disposeNode(s.n)
}
