package bench

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPropagate(t *testing.T) {
	p, err := Propagate(3, 4, 20)
	require.NoError(t, err)
	assert.Equal(t, "propagate: 3 * 4", p.Name())
	assert.Equal(t, 20, p.Metrics.Count)
	assert.LessOrEqual(t, p.Metrics.Time.Min, p.Metrics.Time.Max)
}

// expectedLeaves evaluates the graph without any caching.
func expectedLeaves(t *testing.T, g *Graph, cfg DynamicConfig) []int {
	t.Helper()
	prev := make([]int, len(g.Sources))
	for i, s := range g.Sources {
		v, err := s.Peek()
		require.NoError(t, err)
		prev[i] = v
	}

	for l := range g.Layers {
		row := make([]int, len(prev))
		for i := range row {
			sources := make([]func() int, 0, cfg.NSources)
			for k := 0; k < cfg.NSources; k++ {
				v := prev[(i+k)%len(prev)]
				sources = append(sources, func() int { return v })
			}
			if g.IsDynamic[l][i] {
				row[i] = dynamicSum(sources[0](), sources[1:])
				continue
			}
			for _, s := range sources {
				row[i] += s()
			}
		}
		prev = row
	}
	return prev
}

func TestDynamicGraphMatchesUncachedEvaluation(t *testing.T) {
	for _, cfg := range []DynamicConfig{
		{Name: "static", Width: 6, TotalLayers: 4, StaticFraction: 1, NSources: 2, ReadFraction: 1, Iterations: 50},
		{Name: "dynamic", Width: 8, TotalLayers: 6, StaticFraction: 0.5, NSources: 4, ReadFraction: 1, Iterations: 50},
		{Name: "partial read", Width: 8, TotalLayers: 5, StaticFraction: 0.25, NSources: 3, ReadFraction: 0.5, Iterations: 40},
	} {
		t.Run(cfg.Name, func(t *testing.T) {
			g := MakeGraph(cfg)
			require.Len(t, g.Layers, cfg.TotalLayers-1)

			_, err := g.Run(cfg)
			require.NoError(t, err)
			assert.Positive(t, g.Computations())

			want := expectedLeaves(t, g, cfg)
			leaves := g.Layers[len(g.Layers)-1]
			for i, leaf := range leaves {
				got, err := leaf.Get()
				require.NoError(t, err)
				assert.Equal(t, want[i], got, "leaf %d", i)
			}
		})
	}
}

func TestDynamicGraphIsDeterministic(t *testing.T) {
	cfg := DynamicConfig{Width: 10, TotalLayers: 5, StaticFraction: 0.5, NSources: 3, ReadFraction: 0.5, Iterations: 30}
	a, err := MakeGraph(cfg).Run(cfg)
	require.NoError(t, err)
	b, err := MakeGraph(cfg).Run(cfg)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestRunDynamic(t *testing.T) {
	cfg := DynamicConfig{Name: "tiny", Width: 4, TotalLayers: 3, StaticFraction: 0.5, NSources: 2, ReadFraction: 1, Iterations: 20}
	res, err := RunDynamic(cfg, 2)
	require.NoError(t, err)
	assert.Equal(t, "tiny", res.Config.Name)
	assert.Positive(t, res.Computations)
	assert.Positive(t, res.UpdateRate())
}

func TestDynamicConfigTitle(t *testing.T) {
	assert.Equal(t, "10x5 2 sources read 20.00%", DynamicConfigs[0].Title())
	assert.Equal(t, "10x10 6 sources dynamic read 20.00%", DynamicConfigs[1].Title())
	assert.Equal(t, "1000x5 25 sources", DynamicConfigs[3].Title())
}

func TestRemoveElems(t *testing.T) {
	src := []int{1, 2, 3, 4, 5}
	out := removeElems(src, 2, rand.New(rand.NewSource(1)))
	assert.Len(t, out, 3)
	assert.Subset(t, src, out)
	assert.Equal(t, []int{1, 2, 3, 4, 5}, src)
}
