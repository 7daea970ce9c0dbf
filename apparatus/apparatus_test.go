package apparatus_test

import (
	"testing"

	"github.com/open-cbgm/cbgm-go/apparatus"
	"github.com/open-cbgm/cbgm-go/collation"
	"github.com/open-cbgm/cbgm-go/config"
	"github.com/stretchr/testify/require"
)

func sampleInput() collation.ApparatusInput {
	return collation.ApparatusInput{
		ListWit: []string{"A", "B", "C"},
		Units: []collation.UnitInput{
			{
				ID: "1",
				Readings: []collation.Reading{
					{RID: "a", Witnesses: []string{"A", "B"}},
					{RID: "b", Witnesses: []string{"C"}},
				},
				StemmaEdges: []collation.StemmaEdge{{Prior: "a", Posterior: "b"}},
			},
			{
				ID: "2",
				Readings: []collation.Reading{
					{RID: "a", Witnesses: []string{"A"}},
					{RID: "b", Witnesses: []string{"B", "C"}},
				},
				StemmaEdges: []collation.StemmaEdge{{Prior: "a", Posterior: "b"}},
			},
		},
	}
}

func TestBuildAndIndex(t *testing.T) {
	cfg := config.New()
	a, err := apparatus.Build(sampleInput(), cfg)
	require.NoError(t, err)
	require.Equal(t, 2, a.Len())
	require.Equal(t, []string{"A", "B", "C"}, a.ListWit())

	u, ok := a.Unit(0)
	require.True(t, ok)
	require.Equal(t, "1", u.ID())
	require.Equal(t, 0, u.Index())
}

func TestExtantCount(t *testing.T) {
	a, err := apparatus.Build(sampleInput(), config.New())
	require.NoError(t, err)
	require.Equal(t, 2, a.ExtantCount("A"))
	require.Equal(t, 2, a.ExtantCount("B"))
	require.Equal(t, 2, a.ExtantCount("C"))
}

func TestFindUnitByIDLabelIndex(t *testing.T) {
	in := sampleInput()
	in.Units[1].Label = "second"
	a, err := apparatus.Build(in, config.New())
	require.NoError(t, err)

	u, err := a.FindUnit("1")
	require.NoError(t, err)
	require.Equal(t, 0, u.Index())

	u, err = a.FindUnit("2")
	require.NoError(t, err)
	require.Equal(t, 1, u.Index())

	u, err = a.FindUnit("second")
	require.NoError(t, err)
	require.Equal(t, 1, u.Index())

	u, err = a.FindUnit("0") // no unit has id or label "0": decimal VUI
	require.NoError(t, err)
	require.Equal(t, 0, u.Index())

	_, err = a.FindUnit("nope")
	require.ErrorIs(t, err, apparatus.ErrUnknownSelector)
}

func TestMissingID(t *testing.T) {
	in := collation.ApparatusInput{ListWit: []string{"A"}, Units: []collation.UnitInput{{Readings: []collation.Reading{{RID: "a", Witnesses: []string{"A"}}}}}}
	_, err := apparatus.Build(in, config.New())
	require.ErrorIs(t, err, apparatus.ErrMissingID)
}

func TestDuplicateUnitID(t *testing.T) {
	in := sampleInput()
	in.Units[1].ID = "1"
	_, err := apparatus.Build(in, config.New())
	require.ErrorIs(t, err, apparatus.ErrDuplicateUnitID)
}

func TestDropAmbiguousMakesWitnessLacunose(t *testing.T) {
	in := collation.ApparatusInput{
		ListWit: []string{"A", "B"},
		Units: []collation.UnitInput{
			{
				ID: "1",
				Readings: []collation.Reading{
					{RID: "a", Witnesses: []string{"A"}},
					{RID: "amb", Witnesses: []string{"B"}, Types: []collation.ReadingType{collation.TypeAmbiguous}},
				},
			},
		},
	}
	cfg := config.New(config.WithDropAmbiguous(true))
	a, err := apparatus.Build(in, cfg)
	require.NoError(t, err)
	u, _ := a.Unit(0)
	_, extant := u.SupportFor("B")
	require.False(t, extant)
}
