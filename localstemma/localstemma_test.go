package localstemma_test

import (
	"testing"

	"github.com/open-cbgm/cbgm-go/localstemma"
	"github.com/stretchr/testify/require"
)

// S1: Closure collapse.
func TestTrivialCollapse(t *testing.T) {
	vertices := []string{"a", "b", "bf", "c", "co"}
	edges := []localstemma.Edge{
		{Prior: "a", Posterior: "b"},
		{Prior: "a", Posterior: "c"},
		{Prior: "b", Posterior: "bf"},
		{Prior: "c", Posterior: "co"},
	}
	collapse := map[string]string{"bf": "b", "co": "c"}

	ls, err := localstemma.Build("S1", vertices, edges, collapse, nil, nil)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"a", "b", "c"}, ls.Vertices())

	require.True(t, ls.IsEqualOrPrior("a", "b"))
	require.False(t, ls.IsEqualOrPrior("b", "c"))
	require.True(t, ls.IsEqualOrPrior("a", "a"))
}

// S2: Split merge.
func TestSplitMerge(t *testing.T) {
	vertices := []string{"a", "c1", "c2"}
	ls, err := localstemma.Build("S2", vertices, nil, nil, [][2]string{{"c1", "c2"}}, nil)
	require.NoError(t, err)

	require.True(t, ls.IsEqualOrPrior("c1", "c2"))
	require.True(t, ls.IsEqualOrPrior("c2", "c1"))
}

func TestReflexiveForEveryNonDroppedVertex(t *testing.T) {
	vertices := []string{"a", "b", "c"}
	edges := []localstemma.Edge{{Prior: "a", Posterior: "b"}, {Prior: "b", Posterior: "c"}}
	ls, err := localstemma.Build("reflexive", vertices, edges, nil, nil, nil)
	require.NoError(t, err)
	for _, v := range vertices {
		require.True(t, ls.IsEqualOrPrior(v, v))
	}
}

func TestTransitivity(t *testing.T) {
	vertices := []string{"a", "b", "c"}
	edges := []localstemma.Edge{{Prior: "a", Posterior: "b"}, {Prior: "b", Posterior: "c"}}
	ls, err := localstemma.Build("transitive", vertices, edges, nil, nil, nil)
	require.NoError(t, err)
	require.True(t, ls.IsEqualOrPrior("a", "b"))
	require.True(t, ls.IsEqualOrPrior("b", "c"))
	require.True(t, ls.IsEqualOrPrior("a", "c"))
}

func TestDroppedReadingsExcludedFromClosure(t *testing.T) {
	vertices := []string{"a", "b", "amb"}
	edges := []localstemma.Edge{{Prior: "a", Posterior: "amb"}}
	dropped := map[string]struct{}{"amb": {}}
	ls, err := localstemma.Build("dropped", vertices, edges, nil, nil, dropped)
	require.NoError(t, err)
	require.True(t, ls.IsDropped("amb"))
	require.NotContains(t, ls.Vertices(), "amb")
	require.False(t, ls.IsEqualOrPrior("a", "amb"))
}

func TestUnknownVertexInEdge(t *testing.T) {
	_, err := localstemma.Build("bad", []string{"a"}, []localstemma.Edge{{Prior: "a", Posterior: "z"}}, nil, nil, nil)
	require.ErrorIs(t, err, localstemma.ErrUnknownVertex)
}
