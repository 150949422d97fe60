package reactive_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/delaneyj/signalgraph/reactive"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
)

// incrementer reads and writes the same signal, so every run re-dirties
// itself.
func incrementer(t *testing.T, rs *reactive.System, a *reactive.Signal[int]) *reactive.Effect {
	t.Helper()
	e, err := reactive.NewEffect(rs, func() error {
		return a.Write(a.Value() + 1)
	}, reactive.WithLabel("incrementer"))
	require.NoError(t, err)
	return e
}

func TestFlushDetectsCycle(t *testing.T) {
	rs := reactive.New()
	a := reactive.NewSignal(rs, 0, reactive.WithLabel("a"))
	e := incrementer(t, rs, a)

	err := rs.Flush()
	require.Error(t, err)
	assert.ErrorIs(t, err, reactive.ErrCyclicUpdate)

	var cerr *reactive.CyclicUpdateError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, reactive.DefaultMaxFlushPasses, cerr.Passes)
	require.Len(t, cerr.Chain, 1)
	assert.Contains(t, cerr.Chain[0].Dependent, "(incrementer)")
	assert.Contains(t, cerr.Chain[0].Trigger, "(a)")
	assert.Contains(t, cerr.Error(), "(incrementer)")

	assert.Equal(t, reactive.DefaultMaxFlushPasses+1, e.Runs())
	stats := rs.Stats()
	assert.Zero(t, stats.Pending)
	assert.EqualValues(t, 1, stats.Cycles)
}

func TestFlushMaxPassesOption(t *testing.T) {
	rs := reactive.New(reactive.WithMaxFlushPasses(10))
	a := reactive.NewSignal(rs, 0)
	e := incrementer(t, rs, a)

	err := rs.Flush()
	assert.ErrorIs(t, err, reactive.ErrCyclicUpdate)
	assert.Equal(t, 11, e.Runs())

	v, err := a.Peek()
	require.NoError(t, err)
	assert.Equal(t, 11, v)
}

func TestFlushWriteDuringFlushRunsNextPass(t *testing.T) {
	rs := reactive.New()
	a := reactive.NewSignal(rs, 0)
	b := reactive.NewSignal(rs, 0)

	_, err := reactive.NewEffect(rs, func() error {
		return b.Write(a.Value() * 2)
	})
	require.NoError(t, err)

	var seen []int
	_, err = reactive.NewEffect(rs, func() error {
		seen = append(seen, b.Value())
		return nil
	})
	require.NoError(t, err)

	a.Set(1)
	require.NoError(t, rs.Flush())
	assert.Equal(t, []int{0, 2}, seen)
	assert.EqualValues(t, 2, rs.Stats().Passes)
}

func TestFlushOrdersByHeight(t *testing.T) {
	rs := reactive.New()
	a := reactive.NewSignal(rs, 0)
	double := reactive.NewDerived(rs, func() (int, error) {
		return a.Value() * 2, nil
	})

	var order []string
	// created first, but sits deeper in the graph
	_, err := reactive.NewEffect(rs, func() error {
		double.Value()
		order = append(order, "deep")
		return nil
	})
	require.NoError(t, err)
	_, err = reactive.NewEffect(rs, func() error {
		a.Value()
		order = append(order, "shallow")
		return nil
	})
	require.NoError(t, err)

	order = nil
	a.Set(1)
	require.NoError(t, rs.Flush())
	assert.Equal(t, []string{"shallow", "deep"}, order)
}

func TestFlushEqualityCutoff(t *testing.T) {
	rs := reactive.New()
	a := reactive.NewSignal(rs, 1)
	positive := reactive.NewDerived(rs, func() (bool, error) {
		return a.Value() > 0, nil
	})
	e, err := reactive.NewEffect(rs, func() error {
		positive.Value()
		return nil
	})
	require.NoError(t, err)

	a.Set(2)
	require.NoError(t, rs.Flush())
	assert.Equal(t, 1, e.Runs())

	a.Set(-1)
	require.NoError(t, rs.Flush())
	assert.Equal(t, 2, e.Runs())
}

func TestFlushInsideEffectIsNoop(t *testing.T) {
	rs := reactive.New()
	a := reactive.NewSignal(rs, 0)
	b := reactive.NewSignal(rs, 0)
	var inner error
	_, err := reactive.NewEffect(rs, func() error {
		if err := b.Write(a.Value()); err != nil {
			return err
		}
		inner = rs.Flush()
		return nil
	})
	require.NoError(t, err)

	var seen []int
	_, err = reactive.NewEffect(rs, func() error {
		seen = append(seen, b.Value())
		return nil
	})
	require.NoError(t, err)

	a.Set(3)
	require.NoError(t, rs.Flush())
	assert.NoError(t, inner)
	assert.Equal(t, []int{0, 3}, seen)
}

func TestFlushContextCanceled(t *testing.T) {
	rs := reactive.New()
	a := reactive.NewSignal(rs, 0)
	e, err := reactive.NewEffect(rs, func() error {
		a.Value()
		return nil
	})
	require.NoError(t, err)

	a.Set(1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, rs.FlushContext(ctx), context.Canceled)
	assert.Equal(t, 1, e.Runs())
	assert.Equal(t, 1, rs.Stats().Pending)

	require.NoError(t, rs.Flush())
	assert.Equal(t, 2, e.Runs())
}

func TestAutoFlush(t *testing.T) {
	var reported []error
	rs := reactive.New(
		reactive.WithAutoFlush(),
		reactive.WithOnError(func(err error) { reported = append(reported, err) }),
	)
	a := reactive.NewSignal(rs, 0)
	var seen []int
	_, err := reactive.NewEffect(rs, func() error {
		v := a.Value()
		seen = append(seen, v)
		if v < 0 {
			return errors.New("negative")
		}
		return nil
	})
	require.NoError(t, err)

	a.Set(1)
	assert.Equal(t, []int{0, 1}, seen)

	require.NoError(t, rs.Batch(func() error {
		a.Set(2)
		a.Set(3)
		return nil
	}))
	assert.Equal(t, []int{0, 1, 3}, seen)

	a.Set(-1)
	require.Len(t, reported, 1)
	assert.ErrorContains(t, reported[0], "negative")
}

func TestAutoFlushAfterFirstRunWrites(t *testing.T) {
	rs := reactive.New(reactive.WithAutoFlush())
	src := reactive.NewSignal(rs, 0)
	mirror := reactive.NewSignal(rs, 0)

	var seen []int
	_, err := reactive.NewEffect(rs, func() error {
		seen = append(seen, mirror.Value())
		return nil
	})
	require.NoError(t, err)

	_, err = reactive.NewEffect(rs, func() error {
		return mirror.Write(src.Value() + 10)
	})
	require.NoError(t, err)
	assert.Equal(t, []int{0, 10}, seen)
	assert.Zero(t, rs.Stats().Pending)

	// same for a write made while a derived is first read
	d := reactive.NewDerived(rs, func() (bool, error) {
		return true, mirror.Write(20)
	})
	_, err = d.Get()
	require.NoError(t, err)
	assert.Equal(t, []int{0, 10, 20}, seen)
	assert.Zero(t, rs.Stats().Pending)
}

func TestEffectRerunsInLaterPassOfSameFlush(t *testing.T) {
	rs := reactive.New()
	a := reactive.NewSignal(rs, 0)
	x := reactive.NewSignal(rs, 0)

	first, err := reactive.NewEffect(rs, func() error {
		a.Value()
		x.Value()
		return nil
	})
	require.NoError(t, err)
	_, err = reactive.NewEffect(rs, func() error {
		return x.Write(a.Value() * 10)
	})
	require.NoError(t, err)

	a.Set(1)
	require.NoError(t, rs.Flush())
	// once per pass: the second pass picks up the write to x
	assert.Equal(t, 3, first.Runs())
	assert.EqualValues(t, 2, rs.Stats().Passes)
}

func TestFlushLogsFailures(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	rs := reactive.New(
		reactive.WithName("logged"),
		reactive.WithLogger(logger),
		reactive.WithTracer(noop.NewTracerProvider().Tracer("test")),
	)
	a := reactive.NewSignal(rs, 0)
	_, err := reactive.NewEffect(rs, func() error {
		if a.Value() > 0 {
			return errors.New("boom")
		}
		return nil
	}, reactive.WithLabel("fragile"))
	require.NoError(t, err)

	a.Set(1)
	require.Error(t, rs.Flush())

	out := buf.String()
	assert.Contains(t, out, "dependent failed")
	assert.Contains(t, out, "system=logged")
	assert.Contains(t, out, "(fragile)")
	assert.Contains(t, out, "msg=flushed")
}
