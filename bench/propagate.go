// Package bench builds signal graphs of configurable shape and measures how
// fast writes propagate through them.
package bench

import (
	"fmt"
	"time"

	"github.com/delaneyj/signalgraph/reactive"
	"github.com/jamiealquiza/tachymeter"
)

// Propagation is the latency distribution of one w×h grid.
type Propagation struct {
	Width, Height int
	Metrics       *tachymeter.Metrics
}

func (p Propagation) Name() string {
	return fmt.Sprintf("propagate: %d * %d", p.Width, p.Height)
}

// Propagate builds w chains of h derived computations hanging off a single
// source, each chain ending in an effect, then times iters write+flush
// rounds.
func Propagate(w, h, iters int, opts ...reactive.Option) (Propagation, error) {
	rs := reactive.New(opts...)
	src := reactive.NewSignal(rs, 1, reactive.WithLabel("src"))

	leaves := make([]int, w)
	for i := 0; i < w; i++ {
		var last func() int = src.Value
		for j := 0; j < h; j++ {
			prev := last
			last = reactive.NewDerived(rs, func() (int, error) {
				return prev() + 1, nil
			}).Value
		}

		leaf := &leaves[i]
		if _, err := reactive.NewEffect(rs, func() error {
			*leaf = last()
			return nil
		}); err != nil {
			return Propagation{}, err
		}
	}

	tach := tachymeter.New(&tachymeter.Config{Size: iters})
	for i := 0; i < iters; i++ {
		start := time.Now()
		if err := src.Update(addOne); err != nil {
			return Propagation{}, err
		}
		if err := rs.Flush(); err != nil {
			return Propagation{}, err
		}
		tach.AddTime(time.Since(start))
	}

	want, err := src.Peek()
	if err != nil {
		return Propagation{}, err
	}
	want += h
	for i, got := range leaves {
		if got != want {
			return Propagation{}, fmt.Errorf("chain %d: leaf is %d, want %d", i, got, want)
		}
	}

	return Propagation{Width: w, Height: h, Metrics: tach.Calc()}, nil
}

func addOne(oldValue int) int {
	return oldValue + 1
}
