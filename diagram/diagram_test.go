package diagram_test

import (
	"testing"

	"github.com/open-cbgm/cbgm-go/apparatus"
	"github.com/open-cbgm/cbgm-go/collation"
	"github.com/open-cbgm/cbgm-go/config"
	"github.com/open-cbgm/cbgm-go/diagram"
	"github.com/open-cbgm/cbgm-go/globalstemma"
	"github.com/open-cbgm/cbgm-go/localstemma"
	"github.com/open-cbgm/cbgm-go/textualflow"
	"github.com/open-cbgm/cbgm-go/witness"
	"github.com/stretchr/testify/require"
)

func buildStemma(t *testing.T) *localstemma.LocalStemma {
	t.Helper()
	ls, err := localstemma.Build(
		"1 word",
		[]string{"a", "b", "c"},
		[]localstemma.Edge{{Prior: "a", Posterior: "b"}, {Prior: "a", Posterior: "c"}},
		nil, nil,
		map[string]struct{}{"c": {}},
	)
	require.NoError(t, err)
	return ls
}

func TestLocalStemmaDOTOmitsDroppedReadings(t *testing.T) {
	ls := buildStemma(t)
	dot := diagram.LocalStemmaDOT(ls)

	require.Contains(t, dot, "digraph local_stemma")
	require.Contains(t, dot, `"a" -> "b"`)
	require.NotContains(t, dot, `"a" -> "c"`) // c dropped, edges to it discarded
	require.NotContains(t, dot, `"c" [`)      // and no vertex is drawn for it
	require.Contains(t, dot, `"a" [label="a"]`)
}

func buildFlowFixture(t *testing.T) (*apparatus.VariationUnit, map[string]*witness.Witness, []string) {
	t.Helper()
	listWit := []string{"W", "V1", "V2"}
	in := collation.ApparatusInput{
		ListWit: listWit,
		Units: []collation.UnitInput{
			{
				ID:           "1",
				Connectivity: 10,
				Readings: []collation.Reading{
					{RID: "a", Witnesses: []string{"V1"}},
					{RID: "b", Witnesses: []string{"W", "V2"}},
				},
				StemmaEdges: []collation.StemmaEdge{{Prior: "a", Posterior: "b"}},
			},
		},
	}
	app, err := apparatus.Build(in, config.New())
	require.NoError(t, err)

	witnesses := make(map[string]*witness.Witness)
	for _, wid := range listWit {
		w, err := witness.Build(wid, app)
		require.NoError(t, err)
		witnesses[wid] = w
	}

	unit, err := app.FindUnit("1")
	require.NoError(t, err)
	return unit, witnesses, listWit
}

func TestTextualFlowDOTStructure(t *testing.T) {
	unit, witnesses, listWit := buildFlowFixture(t)
	g, err := textualflow.Build(unit, witnesses, listWit)
	require.NoError(t, err)

	dot := diagram.TextualFlowDOT(g, unit.Label(), unit.Connectivity())
	require.Contains(t, dot, "digraph textual_flow")
	require.Contains(t, dot, "Con=10")
	require.Contains(t, dot, `"W"`)
	require.Contains(t, dot, `"V1"`)
	require.Contains(t, dot, `"V2"`)
}

func TestGlobalStemmaDOTRendersEdges(t *testing.T) {
	app := simpleAppForDiagram(t)
	witnesses := make(map[string]*witness.Witness)
	for _, wid := range app.ListWit() {
		w, err := witness.Build(wid, app)
		require.NoError(t, err)
		witnesses[wid] = w
	}
	witnesses["B"].SetStemmaAncestors([]string{"A"})

	g, err := globalstemma.Build(app.ListWit(), witnesses)
	require.NoError(t, err)

	dot := diagram.GlobalStemmaDOT(g)
	require.Contains(t, dot, "digraph global_stemma")
	require.Contains(t, dot, `"A" -> "B"`)
}

func simpleAppForDiagram(t *testing.T) *apparatus.Apparatus {
	t.Helper()
	in := collation.ApparatusInput{
		ListWit: []string{"A", "B"},
		Units: []collation.UnitInput{
			{
				ID: "1",
				Readings: []collation.Reading{
					{RID: "a", Witnesses: []string{"A"}},
					{RID: "b", Witnesses: []string{"B"}},
				},
				StemmaEdges: []collation.StemmaEdge{{Prior: "a", Posterior: "b"}},
			},
		},
	}
	app, err := apparatus.Build(in, config.New())
	require.NoError(t, err)
	return app
}
