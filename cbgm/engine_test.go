package cbgm_test

import (
	"context"
	"testing"

	"github.com/open-cbgm/cbgm-go/cbgm"
	"github.com/open-cbgm/cbgm-go/collation"
	"github.com/open-cbgm/cbgm-go/config"
	"github.com/stretchr/testify/require"
)

func threeWitnessInput() collation.ApparatusInput {
	return collation.ApparatusInput{
		ListWit: []string{"A", "B", "C"},
		Units: []collation.UnitInput{
			{
				ID: "1",
				Readings: []collation.Reading{
					{RID: "a", Witnesses: []string{"A"}},
					{RID: "b", Witnesses: []string{"B", "C"}},
				},
				StemmaEdges: []collation.StemmaEdge{{Prior: "a", Posterior: "b"}},
			},
		},
	}
}

func TestBuildAssemblesGlobalStemma(t *testing.T) {
	e, warnings, err := cbgm.Build(context.Background(), threeWitnessInput(), config.New())
	require.NoError(t, err)
	require.Empty(t, warnings)
	require.Equal(t, []string{"A", "B", "C"}, e.IncludedWitnesses())

	g, err := e.GlobalStemma()
	require.NoError(t, err)

	edges := g.Edges()
	require.Len(t, edges, 2)
	require.Equal(t, "A", edges[0].From)
	require.Equal(t, "B", edges[0].To)
	require.Equal(t, "A", edges[1].From)
	require.Equal(t, "C", edges[1].To)
}

func TestComparisonReportColumns(t *testing.T) {
	e, _, err := cbgm.Build(context.Background(), threeWitnessInput(), config.New())
	require.NoError(t, err)

	rows, err := e.ComparisonReport("B", "1")
	require.NoError(t, err)
	require.Len(t, rows, 2)

	byWID := make(map[string]cbgm.ComparisonRow, len(rows))
	for _, r := range rows {
		byWID[r.WID] = r
	}

	a := byWID["A"]
	require.Equal(t, "ANCESTOR", a.Direction)
	require.Equal(t, 0, a.Rank)
	require.Equal(t, []string{"a"}, a.Attested)
	require.Equal(t, 1, a.Pass)
	require.Equal(t, 0, a.Eq)
	require.Equal(t, 1, a.Posterior)
	require.Equal(t, 0, a.Prior)
	require.InDelta(t, 0.0, a.Perc, 0.0001)

	c := byWID["C"]
	require.Equal(t, "NOREL", c.Direction)
	require.Equal(t, -1, c.Rank)
	require.Equal(t, []string{"b"}, c.Attested)
	require.Equal(t, 1, c.Eq)
	require.InDelta(t, 100.0, c.Perc, 0.0001)
}

func TestTextualFlowBuildsGraph(t *testing.T) {
	e, _, err := cbgm.Build(context.Background(), threeWitnessInput(), config.New())
	require.NoError(t, err)

	g, err := e.TextualFlow("1")
	require.NoError(t, err)
	require.Len(t, g.Vertices(), 3)
}

func TestUnknownSelectorError(t *testing.T) {
	e, _, err := cbgm.Build(context.Background(), threeWitnessInput(), config.New())
	require.NoError(t, err)

	_, err = e.TextualFlow("nonexistent")
	require.Error(t, err)
	var cerr *cbgm.Error
	require.ErrorAs(t, err, &cerr)
	require.Equal(t, cbgm.UnknownSelector, cerr.Kind)

	_, err = e.ComparisonReport("Z", "1")
	require.ErrorAs(t, err, &cerr)
	require.Equal(t, cbgm.UnknownSelector, cerr.Kind)
}

func TestThresholdExcludesSubject(t *testing.T) {
	cfg := config.New(config.WithExtancyThreshold(2))
	e, _, err := cbgm.Build(context.Background(), threeWitnessInput(), cfg)
	require.NoError(t, err)
	require.Empty(t, e.IncludedWitnesses())

	_, err = e.ComparisonReport("B", "1")
	require.Error(t, err)
	var cerr *cbgm.Error
	require.ErrorAs(t, err, &cerr)
	require.Equal(t, cbgm.ThresholdExcludesSubject, cerr.Kind)
}

func TestInputMalformedWraps(t *testing.T) {
	bad := collation.ApparatusInput{
		ListWit: []string{"A"},
		Units: []collation.UnitInput{
			{Readings: []collation.Reading{{RID: "a", Witnesses: []string{"A"}}}}, // missing ID
		},
	}
	_, _, err := cbgm.Build(context.Background(), bad, config.New())
	require.Error(t, err)
	var cerr *cbgm.Error
	require.ErrorAs(t, err, &cerr)
	require.Equal(t, cbgm.InputMalformed, cerr.Kind)
}
