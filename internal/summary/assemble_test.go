package summary

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"

	"github.com/fairdistricts/mapmetrics/internal/model"
	"github.com/fairdistricts/mapmetrics/internal/seed"
	"github.com/fairdistricts/mapmetrics/internal/store"
)

func squareShape(t *testing.T, district string) model.DistrictShape {
	t.Helper()
	p := geom.NewPolygon(geom.XY)
	_, err := p.SetCoords([][]geom.Coord{{
		{0, 0}, {1, 0}, {1, 1}, {0, 1}, {0, 0},
	}})
	require.NoError(t, err)
	return model.DistrictShape{District: district, Geom: p}
}

func TestSummarize_AllDatasetsPresent(t *testing.T) {
	st := store.NewMem()
	st.Pop["IL"] = []model.DistrictPopulation{
		{District: "01", Population: 100000},
		{District: "02", Population: 100000},
		{District: "03", Population: 200000},
	}
	st.Votes["IL"] = []model.DistrictVotes{
		{District: "01", DemVotes: 600, RepVotes: 400},
		{District: "02", DemVotes: 400, RepVotes: 600},
		{District: "03", DemVotes: 500, RepVotes: 500},
	}
	st.Shapes["IL"] = &model.GeometrySet{Shapes: []model.DistrictShape{
		squareShape(t, "01"),
	}}

	got, err := New(st, seed.Static()).Summarize(context.Background(), "IL")
	require.NoError(t, err)

	assert.Equal(t, model.ClassFair, got.Classification)
	assert.InDelta(t, -25.0, got.Summary.PopVariancePct.Min, 0.005)
	assert.InDelta(t, 50.0, got.Summary.PopVariancePct.Max, 0.005)
	assert.InDelta(t, 0.0, got.Summary.PopVariancePct.Mean, 0.005)
	assert.Equal(t, model.Seats{Dem: 1, Rep: 1}, got.Summary.ExpectedSeats)
	require.NotNil(t, got.Summary.Compactness.MeanPolsbyPopper)
	assert.InDelta(t, 0.785, *got.Summary.Compactness.MeanPolsbyPopper, 0.01)
	assert.Empty(t, got.Summary.Notes)
}

func TestSummarize_PopulationOnly(t *testing.T) {
	st := store.NewMem()
	st.Pop["OH"] = []model.DistrictPopulation{
		{District: "01", Population: 90000},
		{District: "02", Population: 110000},
	}

	got, err := New(st, seed.Static()).Summarize(context.Background(), "OH")
	require.NoError(t, err)

	// Partial data never falls through to the seed tier.
	assert.Equal(t, model.ClassUnknown, got.Classification)
	assert.Equal(t, model.Seats{}, got.Summary.ExpectedSeats)
	assert.Nil(t, got.Summary.Compactness.MeanPolsbyPopper)
	require.Len(t, got.Summary.Notes, 2)
	assert.Equal(t, NoteElectionMissing, got.Summary.Notes[0])
	assert.Equal(t, NoteGeometryMissing, got.Summary.Notes[1])
}

func TestSummarize_ElectionOnly(t *testing.T) {
	st := store.NewMem()
	st.Votes["GA"] = []model.DistrictVotes{
		{District: "01", DemVotes: 700, RepVotes: 300},
		{District: "02", DemVotes: 650, RepVotes: 350},
	}

	got, err := New(st, nil).Summarize(context.Background(), "GA")
	require.NoError(t, err)

	assert.Equal(t, model.ClassFavorsDem, got.Classification)
	assert.Equal(t, model.Seats{Dem: 2}, got.Summary.ExpectedSeats)
	assert.Equal(t, model.Deviation{}, got.Summary.PopVariancePct)
	require.Len(t, got.Summary.Notes, 2)
	assert.Equal(t, NotePopulationMissing, got.Summary.Notes[0])
	assert.Equal(t, NoteGeometryMissing, got.Summary.Notes[1])
}

func TestSummarize_SeedFallback(t *testing.T) {
	st := store.NewMem()

	got, err := New(st, seed.Static()).Summarize(context.Background(), "CA")
	require.NoError(t, err)

	assert.Equal(t, model.ClassFavorsDem, got.Classification)
	assert.Equal(t, model.Seats{Dem: 42, Rep: 10}, got.Summary.ExpectedSeats)
}

func TestSummarize_NeutralFallback(t *testing.T) {
	st := store.NewMem()

	got, err := New(st, seed.Static()).Summarize(context.Background(), "ZZ")
	require.NoError(t, err)

	assert.Equal(t, model.ClassUnknown, got.Classification)
	assert.Equal(t, model.Deviation{}, got.Summary.PopVariancePct)
	assert.Nil(t, got.Summary.Compactness.MeanPolsbyPopper)
	assert.Equal(t, model.Seats{}, got.Summary.ExpectedSeats)
	assert.Equal(t, []string{NoteNoData}, got.Summary.Notes)
}

func TestSummarize_NoSeedProvider(t *testing.T) {
	got, err := New(store.NewMem(), nil).Summarize(context.Background(), "CA")
	require.NoError(t, err)
	assert.Equal(t, model.ClassUnknown, got.Classification)
	assert.Equal(t, []string{NoteNoData}, got.Summary.Notes)
}

func TestSummarize_EmptyGeometryDocCountsAsAbsent(t *testing.T) {
	st := store.NewMem()
	st.Pop["NV"] = []model.DistrictPopulation{{District: "01", Population: 50}}
	st.Shapes["NV"] = &model.GeometrySet{} // parsed fine, zero features

	got, err := New(st, nil).Summarize(context.Background(), "NV")
	require.NoError(t, err)

	assert.Nil(t, got.Summary.Compactness.MeanPolsbyPopper)
	assert.Contains(t, got.Summary.Notes, NoteGeometryMissing)
}

func TestSummarizeAll(t *testing.T) {
	st := store.NewMem()
	st.Votes["WI"] = []model.DistrictVotes{
		{District: "01", DemVotes: 100, RepVotes: 200},
	}

	got, err := New(st, seed.Static()).SummarizeAll(context.Background(), []string{"WI", "TX", "ZZ"})
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, model.ClassFavorsRep, got["WI"].Classification)
	assert.Equal(t, model.ClassFavorsRep, got["TX"].Classification) // seed tier
	assert.Equal(t, model.ClassUnknown, got["ZZ"].Classification)  // neutral tier
}
