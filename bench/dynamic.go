package bench

import (
	"fmt"
	"math"
	"math/rand"
	"strings"
	"time"

	"github.com/delaneyj/signalgraph/reactive"
)

// DynamicConfig describes a layered graph where some nodes change which
// sources they read depending on the values they see.
type DynamicConfig struct {
	Name           string  // friendly name for the test, should be unique
	Width          int     // width of dependency graph to construct
	TotalLayers    int     // depth of dependency graph to construct
	StaticFraction float64 // fraction of nodes that always read all their sources
	NSources       int     // number of sources read by each node
	ReadFraction   float64 // fraction of the last layer read in each iteration
	Iterations     int     // number of write+read iterations
}

// Title summarises the shape of the graph.
func (cfg DynamicConfig) Title() string {
	sb := strings.Builder{}
	sb.WriteString(fmt.Sprintf("%dx%d %d sources", cfg.Width, cfg.TotalLayers, cfg.NSources))
	if cfg.StaticFraction < 1 {
		sb.WriteString(" dynamic")
	}
	if cfg.ReadFraction < 1 {
		sb.WriteString(fmt.Sprintf(" read %0.2f%%", 100*cfg.ReadFraction))
	}
	return sb.String()
}

var DynamicConfigs = []DynamicConfig{
	{
		Name:           "simple component",
		Width:          10,
		StaticFraction: 1,
		NSources:       2,
		TotalLayers:    5,
		ReadFraction:   0.2,
		Iterations:     600000,
	},
	{
		Name:           "dynamic component",
		Width:          10,
		TotalLayers:    10,
		StaticFraction: 0.75,
		NSources:       6,
		ReadFraction:   0.2,
		Iterations:     15000,
	},
	{
		Name:           "large web app",
		Width:          1000,
		TotalLayers:    12,
		StaticFraction: 0.95,
		NSources:       4,
		ReadFraction:   1,
		Iterations:     7000,
	},
	{
		Name:           "wide dense",
		Width:          1000,
		TotalLayers:    5,
		StaticFraction: 1,
		NSources:       25,
		ReadFraction:   1,
		Iterations:     3000,
	},
	{
		Name:           "deep",
		Width:          5,
		TotalLayers:    500,
		StaticFraction: 1,
		NSources:       3,
		ReadFraction:   1,
		Iterations:     500,
	},
	{
		Name:           "very dynamic",
		Width:          100,
		TotalLayers:    15,
		StaticFraction: 0.5,
		NSources:       6,
		ReadFraction:   1,
		Iterations:     2000,
	},
}

// Graph is a layered dynamic graph built by MakeGraph.
type Graph struct {
	rs        *reactive.System
	Sources   []*reactive.Signal[int]
	Layers    [][]*reactive.Derived[int]
	IsDynamic [][]bool

	computations int64
}

// Computations reports how many times any node of the graph recomputed.
func (g *Graph) Computations() int64 {
	return g.computations
}

func (g *Graph) ResetComputations() {
	g.computations = 0
}

// MakeGraph builds the graph for cfg. The node kinds are chosen with a fixed
// seed so the same config always yields the same graph.
func MakeGraph(cfg DynamicConfig, opts ...reactive.Option) *Graph {
	g := &Graph{rs: reactive.New(opts...)}
	g.Sources = make([]*reactive.Signal[int], cfg.Width)
	for i := range g.Sources {
		g.Sources[i] = reactive.NewSignal(g.rs, i)
	}

	prevRow := make([]func() int, len(g.Sources))
	for i, s := range g.Sources {
		prevRow[i] = s.Value
	}

	random := rand.New(rand.NewSource(0))
	for l := 0; l < cfg.TotalLayers-1; l++ {
		row, isDynamic := g.makeRow(prevRow, cfg, random)
		g.Layers = append(g.Layers, row)
		g.IsDynamic = append(g.IsDynamic, isDynamic)

		prevRow = make([]func() int, len(row))
		for i, d := range row {
			prevRow[i] = d.Value
		}
	}
	return g
}

func (g *Graph) makeRow(sources []func() int, cfg DynamicConfig, random *rand.Rand) ([]*reactive.Derived[int], []bool) {
	row := make([]*reactive.Derived[int], len(sources))
	isDynamic := make([]bool, len(sources))

	for myDex := range sources {
		mySources := make([]func() int, 0, cfg.NSources)
		for sourceDex := 0; sourceDex < cfg.NSources; sourceDex++ {
			mySources = append(mySources, sources[(myDex+sourceDex)%len(sources)])
		}

		if random.Float64() < cfg.StaticFraction {
			row[myDex] = reactive.NewDerived(g.rs, func() (int, error) {
				g.computations++
				sum := 0
				for _, source := range mySources {
					sum += source()
				}
				return sum, nil
			})
			continue
		}

		first := mySources[0]
		tail := mySources[1:]
		row[myDex] = reactive.NewDerived(g.rs, func() (int, error) {
			g.computations++
			return dynamicSum(first(), tail), nil
		})
		isDynamic[myDex] = true
	}
	return row, isDynamic
}

// dynamicSum skips one of the tail sources when the first value is odd.
func dynamicSum(sum int, tail []func() int) int {
	if len(tail) == 0 {
		return sum
	}
	shouldDrop := sum&0x1 > 0
	dropDex := sum % len(tail)
	if dropDex < 0 {
		dropDex += len(tail)
	}
	for i := 0; i < len(tail); i++ {
		if shouldDrop && i == dropDex {
			continue
		}
		sum += tail[i]()
	}
	return sum
}

// Run writes one source per iteration and reads a fixed random subset of
// the leaves, returning the sum of the subset after the last iteration.
func (g *Graph) Run(cfg DynamicConfig) (int, error) {
	random := rand.New(rand.NewSource(0))
	leaves := g.Layers[len(g.Layers)-1]
	skipCount := int(math.Round(float64(len(leaves)) * (1 - cfg.ReadFraction)))
	readLeaves := removeElems(leaves, skipCount, random)

	for i := 0; i < cfg.Iterations; i++ {
		err := g.rs.Batch(func() error {
			sourceDex := i % len(g.Sources)
			return g.Sources[sourceDex].Write(i + sourceDex)
		})
		if err != nil {
			return 0, err
		}

		for _, leaf := range readLeaves {
			if _, err := leaf.Get(); err != nil {
				return 0, err
			}
		}
	}

	sum := 0
	for _, leaf := range readLeaves {
		v, err := leaf.Get()
		if err != nil {
			return 0, err
		}
		sum += v
	}
	return sum, nil
}

func removeElems[T any](src []T, rmCount int, random *rand.Rand) []T {
	copyWithRemovals := make([]T, len(src))
	copy(copyWithRemovals, src)
	for i := 0; i < rmCount; i++ {
		rmDex := random.Intn(len(copyWithRemovals))
		copyWithRemovals[rmDex] = copyWithRemovals[len(copyWithRemovals)-1]
		copyWithRemovals = copyWithRemovals[:len(copyWithRemovals)-1]
	}
	return copyWithRemovals
}

// DynamicResult is the best of several runs of one config.
type DynamicResult struct {
	Config       DynamicConfig
	Sum          int
	Computations int64
	Duration     time.Duration
}

// UpdateRate is recomputations per millisecond.
func (r DynamicResult) UpdateRate() float64 {
	return float64(r.Computations) / (float64(r.Duration) / float64(time.Millisecond))
}

// RunDynamic builds the graph for cfg, warms it up once and keeps the
// fastest of repeats timed runs.
func RunDynamic(cfg DynamicConfig, repeats int, opts ...reactive.Option) (DynamicResult, error) {
	g := MakeGraph(cfg, opts...)
	if _, err := g.Run(cfg); err != nil {
		return DynamicResult{}, err
	}

	best := DynamicResult{Config: cfg, Duration: time.Hour}
	for i := 0; i < repeats; i++ {
		g.ResetComputations()
		start := time.Now()
		sum, err := g.Run(cfg)
		if err != nil {
			return DynamicResult{}, err
		}
		duration := time.Since(start)
		if duration < best.Duration {
			best.Duration = duration
			best.Sum = sum
			best.Computations = g.computations
		}
	}
	return best, nil
}
