package reactive

type frame struct {
	id        NodeID
	untracked bool
}

// tracker is the stack of dependents currently being evaluated. Only the
// innermost frame receives subscriptions.
type tracker struct {
	stack []frame
}

func (t *tracker) push(id NodeID, untracked bool) {
	t.stack = append(t.stack, frame{id: id, untracked: untracked})
}

func (t *tracker) pop() {
	t.stack = t.stack[:len(t.stack)-1]
}

// evaluating reports whether a dependent is currently running.
func (t *tracker) evaluating() bool {
	for _, f := range t.stack {
		if !f.untracked {
			return true
		}
	}
	return false
}

// active returns the dependent that reads should subscribe, if any.
func (t *tracker) active() (NodeID, bool) {
	if len(t.stack) == 0 {
		return 0, false
	}
	top := t.stack[len(t.stack)-1]
	if top.untracked {
		return 0, false
	}
	return top.id, true
}

func (t *tracker) contains(id NodeID) bool {
	for _, f := range t.stack {
		if !f.untracked && f.id == id {
			return true
		}
	}
	return false
}

func (rs *System) reentrant(n *node) error {
	stack := make([]string, 0, len(rs.tracker.stack)+1)
	for _, f := range rs.tracker.stack {
		if f.untracked {
			continue
		}
		if sn, ok := rs.nodes[f.id]; ok {
			stack = append(stack, sn.String())
		}
	}
	stack = append(stack, n.String())
	return &ReentrantTrackingError{Node: n.String(), Stack: stack}
}

// runTracked clears n's previous dependency edges, evaluates fn with n as the
// active dependent and returns the ids read during fn, in read order. Panics
// in fn are returned as errors.
func (rs *System) runTracked(n *node, fn func() error) (deps []NodeID, err error) {
	if rs.tracker.contains(n.id) {
		return nil, rs.reentrant(n)
	}

	rs.unlink(n)
	rs.tracker.push(n.id, false)
	defer func() {
		if r := recover(); r != nil {
			err = recovered(r)
		}
		rs.tracker.pop()

		height := 0
		for _, id := range n.depOrder {
			if src, ok := rs.nodes[id]; ok && src.height > height {
				height = src.height
			}
		}
		n.height = height + 1
		deps = append([]NodeID(nil), n.depOrder...)
	}()

	return nil, fn()
}
