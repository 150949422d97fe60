package reactive_test

import (
	"testing"

	"github.com/delaneyj/signalgraph/reactive"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShouldOnlyUpdateEverySignalOnceDiamondTail(t *testing.T) {
	rs := reactive.New()

	// "E" will be likely updated twice if our mark+sweep logic is buggy.
	//     A
	//   /   \
	//  B     C
	//   \   /
	//     D
	//     |
	//     E
	a := reactive.NewSignal(rs, "a")
	b := reactive.NewDerived(rs, func() (string, error) { return a.Value(), nil })
	c := reactive.NewDerived(rs, func() (string, error) { return a.Value(), nil })
	d := reactive.NewDerived(rs, func() (string, error) {
		return b.Value() + " " + c.Value(), nil
	})

	eCallCount := 0
	e := reactive.NewDerived(rs, func() (string, error) {
		eCallCount++
		return d.Value(), nil
	})

	assert.Equal(t, "a a", mustGet(t, e))
	assert.Equal(t, 1, eCallCount)

	a.Set("aa")
	assert.Equal(t, "aa aa", mustGet(t, e))
	assert.Equal(t, 2, eCallCount)
}

func TestShouldOnlyUpdateEverySignalOnceJaggedDiamondTails(t *testing.T) {
	rs := reactive.New()

	// "F" and "G" will be likely updated twice if our mark+sweep logic is buggy.
	//     A
	//   /   \
	//  B     C
	//  |     |
	//  |     D
	//   \   /
	//     E
	//   /   \
	//  F     G
	a := reactive.NewSignal(rs, "a")
	b := reactive.NewDerived(rs, func() (string, error) { return a.Value(), nil })
	c := reactive.NewDerived(rs, func() (string, error) { return a.Value(), nil })
	d := reactive.NewDerived(rs, func() (string, error) { return c.Value(), nil })

	var order []string
	eCallCount := 0
	e := reactive.NewDerived(rs, func() (string, error) {
		eV := b.Value() + " " + d.Value()
		eCallCount++
		order = append(order, "e")
		return eV, nil
	})
	fCallCount := 0
	f := reactive.NewDerived(rs, func() (string, error) {
		ev := e.Value()
		fCallCount++
		order = append(order, "f")
		return ev, nil
	})
	gCallCount := 0
	g := reactive.NewDerived(rs, func() (string, error) {
		ev := e.Value()
		gCallCount++
		order = append(order, "g")
		return ev, nil
	})

	require.Equal(t, "a a", mustGet(t, f))
	require.Equal(t, 1, fCallCount)
	require.Equal(t, "a a", mustGet(t, g))
	require.Equal(t, 1, gCallCount)

	for _, v := range []string{"b", "c"} {
		eCallCount, fCallCount, gCallCount = 0, 0, 0
		order = nil

		a.Set(v)
		want := v + " " + v
		require.Equal(t, want, mustGet(t, e))
		require.Equal(t, 1, eCallCount)
		require.Equal(t, want, mustGet(t, f))
		require.Equal(t, 1, fCallCount)
		require.Equal(t, want, mustGet(t, g))
		require.Equal(t, 1, gCallCount)

		// top to bottom, left to right
		assert.Equal(t, []string{"e", "f", "g"}, order)
	}
}

func TestShouldOnlySubscribeToSignalsListenedTo(t *testing.T) {
	rs := reactive.New()

	// Here both "B" and "C" are active in the beginning, but
	// "B" becomes inactive later. At that point it should
	// not receive any updates anymore.
	//    *A
	//   /   \
	// *B     D <- we don't listen to C
	//  |
	// *C
	a := reactive.NewSignal(rs, "a")
	bCallCount := 0
	b := reactive.NewDerived(rs, func() (string, error) {
		bCallCount++
		return a.Value(), nil
	})
	cCallCount := 0
	c := reactive.NewDerived(rs, func() (string, error) {
		cCallCount++
		return b.Value(), nil
	})
	d := reactive.NewDerived(rs, func() (string, error) {
		return a.Value(), nil
	})

	result := ""
	unsub, err := reactive.CreateEffect(rs, func() error {
		result = c.Value()
		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, "a", result)
	assert.Equal(t, "a", mustGet(t, d))

	bCallCount, cCallCount = 0, 0
	unsub()

	a.Set("aa")
	require.NoError(t, rs.Flush())
	assert.Equal(t, 0, bCallCount)
	assert.Equal(t, 0, cCallCount)
	assert.Equal(t, "aa", mustGet(t, d))
}

func TestShouldEnsureSubsUpdate(t *testing.T) {
	// In this scenario "C" always returns the same value. When "A"
	// changes, "B" will update, then "C" at which point its update
	// to "D" will be unmarked. But "D" must still update because
	// "B" marked it. If "D" isn't updated, then we have a bug.
	//     A
	//   /   \
	//  B     *C <- returns same value every time
	//   \   /
	//     D
	rs := reactive.New()
	a := reactive.NewSignal(rs, "a")
	b := reactive.NewDerived(rs, func() (string, error) { return a.Value(), nil })
	c := reactive.NewDerived(rs, func() (string, error) {
		a.Value()
		return "c", nil
	})
	dCallCount := 0
	d := reactive.NewDerived(rs, func() (string, error) {
		dCallCount++
		return b.Value() + " " + c.Value(), nil
	})

	assert.Equal(t, "a c", mustGet(t, d))
	assert.Equal(t, 1, dCallCount)

	a.Set("aa")
	assert.Equal(t, "aa c", mustGet(t, d))
	assert.Equal(t, 2, dCallCount)
}

func TestShouldEnsureSubsUpdateEvenIfTwoDepsUnmarkIt(t *testing.T) {
	// In this scenario both "C" and "D" always return the same
	// value. But "E" must still update because "A" marked it.
	//     A
	//   / | \
	//  B *C *D
	//   \ | /
	//     E
	rs := reactive.New()
	a := reactive.NewSignal(rs, "a")
	b := reactive.NewDerived(rs, func() (string, error) { return a.Value(), nil })
	c := reactive.NewDerived(rs, func() (string, error) {
		a.Value()
		return "c", nil
	})
	d := reactive.NewDerived(rs, func() (string, error) {
		a.Value()
		return "d", nil
	})
	eCallCount := 0
	e := reactive.NewDerived(rs, func() (string, error) {
		eCallCount++
		return b.Value() + " " + c.Value() + " " + d.Value(), nil
	})

	assert.Equal(t, "a c d", mustGet(t, e))
	assert.Equal(t, 1, eCallCount)

	a.Set("aa")
	assert.Equal(t, "aa c d", mustGet(t, e))
	assert.Equal(t, 2, eCallCount)
}

func TestShouldEnsureSubsUpdateEvenIfAllDepsUnmarkIt(t *testing.T) {
	// In this scenario "B" and "C" always return the same value. When "A"
	// changes, "D" should not update.
	//     A
	//   /   \
	// *B     *C
	//   \   /
	//     D
	rs := reactive.New()
	a := reactive.NewSignal(rs, "a")
	b := reactive.NewDerived(rs, func() (string, error) {
		a.Value()
		return "b", nil
	})
	c := reactive.NewDerived(rs, func() (string, error) {
		a.Value()
		return "c", nil
	})
	dCallCount := 0
	d := reactive.NewDerived(rs, func() (string, error) {
		dCallCount++
		return b.Value() + " " + c.Value(), nil
	})

	assert.Equal(t, "b c", mustGet(t, d))
	assert.Equal(t, 1, dCallCount)
	dCallCount = 0

	a.Set("aa")
	assert.Equal(t, "b c", mustGet(t, d))
	assert.Equal(t, 0, dCallCount)
}

func TestShouldKeepGraphConsistentOnComputedErrors(t *testing.T) {
	rs := reactive.New()
	a := reactive.NewSignal(rs, 0)
	b := reactive.NewDerived(rs, func() (int, error) {
		panic("fail")
	})
	c := reactive.NewDerived(rs, func() (int, error) {
		return a.Value(), nil
	})

	_, err := b.Get()
	assert.Error(t, err)

	a.Set(1)
	assert.Equal(t, 1, mustGet(t, c))
}

func TestWriteInsideDerived(t *testing.T) {
	rs := reactive.New()
	s := reactive.NewSignal(rs, 1)
	a := reactive.NewDerived(rs, func() (bool, error) {
		return true, s.Write(2)
	})
	l := reactive.NewDerived(rs, func() (int, error) {
		return s.Value() + 100, nil
	})

	mustGet(t, a)
	assert.Equal(t, 102, mustGet(t, l))
}

func TestShouldNotRunUntrackedInnerEffect(t *testing.T) {
	rs := reactive.New()
	a := reactive.NewSignal(rs, 3)
	b := reactive.NewDerived(rs, func() (bool, error) {
		return a.Value() > 0, nil
	})

	_, err := reactive.NewEffect(rs, func() error {
		if !b.Value() {
			return nil
		}
		_, err := reactive.NewEffect(rs, func() error {
			if a.Value() == 0 {
				assert.Fail(t, "inner effect ran after its owner stopped creating it")
			}
			return nil
		})
		return err
	})
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		require.NoError(t, a.Update(func(v int) int { return v - 1 }))
		require.NoError(t, rs.Flush())
	}
}

func TestShouldRunOuterEffectFirst(t *testing.T) {
	rs := reactive.New()
	a := reactive.NewSignal(rs, 1)
	b := reactive.NewSignal(rs, 1)

	_, err := reactive.NewEffect(rs, func() error {
		if a.Value() == 0 {
			return nil
		}
		_, err := reactive.NewEffect(rs, func() error {
			aV := a.Value()
			b.Value()
			if aV == 0 {
				assert.Fail(t, "inner effect ran before its owner")
			}
			return nil
		})
		return err
	})
	require.NoError(t, err)

	require.NoError(t, rs.Batch(func() error {
		a.Set(0)
		b.Set(0)
		return nil
	}))
}

func TestShouldNotTriggerInnerEffectWhenResolveMaybeDirty(t *testing.T) {
	rs := reactive.New()
	a := reactive.NewSignal(rs, 0)
	b := reactive.NewDerived(rs, func() (bool, error) {
		return a.Value()%2 == 0, nil
	})

	innerTriggerTimes := 0
	_, err := reactive.NewEffect(rs, func() error {
		_, err := reactive.NewEffect(rs, func() error {
			b.Value()
			innerTriggerTimes++
			return nil
		})
		return err
	})
	require.NoError(t, err)

	a.Set(2)
	require.NoError(t, rs.Flush())
	assert.Equal(t, 1, innerTriggerTimes)
}
