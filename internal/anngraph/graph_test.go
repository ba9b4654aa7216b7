package anngraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cortexmark/cortexmark/internal/config"
)

func defsOf(edges map[string][]string, names ...string) []*config.Annotation {
	var defs []*config.Annotation
	for _, name := range names {
		ann := &config.Annotation{Name: name, Kind: config.KindContour}
		if deps := edges[name]; len(deps) > 0 {
			ann.FixedHead = &config.FixedPoint{Requires: deps, Calculate: "Calc"}
		}
		defs = append(defs, ann)
	}
	return defs
}

func TestBuild_OrderRespectsDependencies(t *testing.T) {
	defs := defsOf(map[string][]string{
		"V2": {"V1"},
		"V3": {"V2", "V1"},
	}, "V3", "V2", "V1")

	g, err := Build(defs)
	require.NoError(t, err)

	order := g.Order()
	require.Len(t, order, 3)
	pos := make(map[string]int, len(order))
	for i, name := range order {
		pos[name] = i
	}
	assert.Less(t, pos["V1"], pos["V2"])
	assert.Less(t, pos["V2"], pos["V3"])
}

func TestBuild_OrderIsDeterministic(t *testing.T) {
	defs := defsOf(nil, "c", "a", "b")

	g, err := Build(defs)
	require.NoError(t, err)
	// Independent annotations order by name.
	assert.Equal(t, []string{"a", "b", "c"}, g.Order())
}

func TestBuild_CycleIsRejected(t *testing.T) {
	defs := defsOf(map[string][]string{
		"A": {"B"},
		"B": {"C"},
		"C": {"A"},
	}, "A", "B", "C")

	_, err := Build(defs)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "annotation dependency cycle")
	// The message names the full cycle path.
	assert.Contains(t, err.Error(), "A")
	assert.Contains(t, err.Error(), "B")
	assert.Contains(t, err.Error(), "C")
}

func TestBuild_SelfCycle(t *testing.T) {
	// Config validation rejects self references earlier, but the graph must
	// not loop forever if handed one.
	defs := defsOf(map[string][]string{"A": {"A"}}, "A")
	_, err := Build(defs)
	require.Error(t, err)
}

func TestBuild_InactiveDependenciesAreDropped(t *testing.T) {
	// V2 requires V1, but V1 is not in the active set. The edge vanishes;
	// whether the dependency is satisfiable is decided at endpoint
	// resolution.
	defs := defsOf(map[string][]string{"V2": {"V1"}}, "V2")

	g, err := Build(defs)
	require.NoError(t, err)
	assert.Equal(t, []string{"V2"}, g.Order())
}

func TestDependents(t *testing.T) {
	defs := defsOf(map[string][]string{
		"V2": {"V1"},
		"V3": {"V1"},
	}, "V1", "V2", "V3")

	g, err := Build(defs)
	require.NoError(t, err)
	assert.Equal(t, []string{"V2", "V3"}, g.Dependents("V1"))
	assert.Empty(t, g.Dependents("V2"))
}
