package reactive

import (
	"cmp"
	"context"
	"errors"
	"slices"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// scheduler holds the dependents waiting for the next flush pass and, for
// diagnostics, the node whose change last enqueued each of them.
type scheduler struct {
	pending  mapset.Set[NodeID]
	triggers map[NodeID]NodeID
}

func newScheduler() scheduler {
	return scheduler{
		pending:  mapset.NewThreadUnsafeSet[NodeID](),
		triggers: map[NodeID]NodeID{},
	}
}

func (s *scheduler) schedule(id, trigger NodeID) {
	s.pending.Add(id)
	if trigger != 0 {
		s.triggers[id] = trigger
	}
}

func (s *scheduler) remove(id NodeID) {
	s.pending.Remove(id)
	delete(s.triggers, id)
}

func (s *scheduler) clear() {
	s.pending.Clear()
	clear(s.triggers)
}

// ScheduleDirty marks a derived computation or effect dirty and adds it to
// the pending set for the next flush. Unknown or disposed ids are ignored.
func (rs *System) ScheduleDirty(id NodeID) {
	n, ok := rs.nodes[id]
	if !ok || !n.isDependent() {
		return
	}
	rs.stale(n, stateDirty, 0)
	rs.sched.schedule(id, 0)
}

// order returns the pending ids sorted so that every dependent comes after
// the dependents it reads from and after the effect that created it: by
// rank, then by creation order.
func (rs *System) order() []NodeID {
	ids := rs.sched.pending.ToSlice()
	ranks := make(map[NodeID]int, len(ids))
	for _, id := range ids {
		if n, ok := rs.nodes[id]; ok {
			ranks[id] = rank(n)
		}
	}
	slices.SortFunc(ids, func(a, b NodeID) int {
		if ra, rb := ranks[a], ranks[b]; ra != rb {
			return ra - rb
		}
		return cmp.Compare(a, b)
	})
	return ids
}

// rank is the node's height, raised above the rank of its owning effect so
// an owner always re-runs (and possibly disposes what it owns) first.
func rank(n *node) int {
	r := n.height
	if n.scope == nil {
		return r
	}
	if owner := n.scope.ownerEffect(); owner != nil && !owner.disposed {
		if ownerRank := rank(owner) + 1; ownerRank > r {
			r = ownerRank
		}
	}
	return r
}

// Flush is FlushContext with a background context.
func (rs *System) Flush() error {
	return rs.FlushContext(context.Background())
}

// FlushContext runs every pending dependent. Each pass runs a dependent at
// most once; work scheduled during a pass is picked up by the next pass.
// Flushing from inside a batch or from inside a running dependent is a no-op,
// the enclosing flush handles the work.
//
// Failures are isolated: the remaining dependents still run and the errors
// are returned joined. If work is still pending after the configured number
// of passes the flush stops with a *CyclicUpdateError.
func (rs *System) FlushContext(ctx context.Context) error {
	if rs.flushing || rs.batchDepth > 0 || rs.tracker.evaluating() {
		return nil
	}
	pendingAtStart := rs.sched.pending.Cardinality()
	if pendingAtStart == 0 {
		return nil
	}

	rs.flushing = true
	defer func() { rs.flushing = false }()

	ctx, span := rs.tracer.Start(ctx, "reactive.flush", trace.WithAttributes(
		attribute.String("reactive.system", rs.cfg.name),
		attribute.Int("reactive.pending", pendingAtStart),
	))
	defer span.End()

	start := time.Now()
	var (
		errs   []error
		passes int
		runs   int
	)
	for rs.sched.pending.Cardinality() > 0 {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		if passes == rs.cfg.maxPasses {
			cerr := rs.abortCycle(passes)
			rs.cfg.logger.Error("flush aborted", "system", rs.cfg.name, "error", cerr)
			errs = append(errs, cerr)
			break
		}
		passes++

		for _, id := range rs.order() {
			if !rs.sched.pending.Contains(id) {
				continue
			}
			rs.sched.remove(id)
			n, ok := rs.nodes[id]
			if !ok {
				rs.stats.Dropped++
				rs.metrics.dropped()
				continue
			}
			ran, err := rs.refresh(n)
			if ran {
				runs++
			}
			if err != nil {
				rs.cfg.logger.Warn("dependent failed", "system", rs.cfg.name, "node", n.String(), "error", err)
				errs = append(errs, err)
			}
		}
	}

	rs.stats.Flushes++
	rs.stats.Passes += uint64(passes)
	rs.metrics.flushed(passes, pendingAtStart)
	span.SetAttributes(attribute.Int("reactive.passes", passes), attribute.Int("reactive.runs", runs))
	rs.cfg.logger.Debug("flushed",
		"system", rs.cfg.name,
		"pending", pendingAtStart,
		"passes", passes,
		"runs", runs,
		"duration", time.Since(start),
	)

	err := errors.Join(errs...)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

// abortCycle builds the diagnostic for the dependents still pending and
// drops them. They are left dirty and failed so the next write to one of
// their sources retries them.
func (rs *System) abortCycle(passes int) *CyclicUpdateError {
	cerr := &CyclicUpdateError{Passes: passes}
	for _, id := range rs.order() {
		n, ok := rs.nodes[id]
		if !ok {
			continue
		}
		n.state = stateDirty
		n.failed = true
		link := CycleLink{Dependent: n.String()}
		if trigger, ok := rs.nodes[rs.sched.triggers[id]]; ok {
			link.Trigger = trigger.String()
		}
		cerr.Chain = append(cerr.Chain, link)
	}
	rs.sched.clear()
	rs.stats.Cycles++
	rs.metrics.cycle()
	return cerr
}
