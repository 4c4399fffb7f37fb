package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"

	"github.com/fairdistricts/mapmetrics/internal/model"
)

func newTestSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	st, err := NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

func TestSQLite_PopulationRoundTrip(t *testing.T) {
	st := newTestSQLite(t)
	ctx := context.Background()

	in := []model.DistrictPopulation{
		{District: "01", Population: 100000},
		{District: "02", Population: 120000},
	}
	require.NoError(t, st.PutPopulation(ctx, "co", in))

	out, err := st.PopulationRecords(ctx, "CO")
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestSQLite_PutReplacesDataset(t *testing.T) {
	st := newTestSQLite(t)
	ctx := context.Background()

	require.NoError(t, st.PutPopulation(ctx, "CO", []model.DistrictPopulation{
		{District: "01", Population: 1},
		{District: "02", Population: 2},
	}))
	require.NoError(t, st.PutPopulation(ctx, "CO", []model.DistrictPopulation{
		{District: "01", Population: 9},
	}))

	out, err := st.PopulationRecords(ctx, "CO")
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, int64(9), out[0].Population)
}

func TestSQLite_ElectionTotalDerivedOnRead(t *testing.T) {
	st := newTestSQLite(t)
	ctx := context.Background()

	require.NoError(t, st.PutElections(ctx, "MI", []model.DistrictVotes{
		{District: "01", DemVotes: 300, RepVotes: 200},
	}))

	out, err := st.ElectionRecords(ctx, "MI")
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, float64(500), out[0].TotalVotes)
}

func TestSQLite_AbsentStateIsEmpty(t *testing.T) {
	st := newTestSQLite(t)
	ctx := context.Background()

	pop, err := st.PopulationRecords(ctx, "AK")
	require.NoError(t, err)
	assert.Empty(t, pop)

	geo, err := st.Geometry(ctx, "AK")
	require.NoError(t, err)
	assert.Nil(t, geo)
}

func TestSQLite_GeometryRoundTrip(t *testing.T) {
	st := newTestSQLite(t)
	ctx := context.Background()

	p := geom.NewPolygon(geom.XY)
	_, err := p.SetCoords([][]geom.Coord{{
		{0, 0}, {1, 0}, {1, 1}, {0, 1}, {0, 0},
	}})
	require.NoError(t, err)

	require.NoError(t, st.PutShapes(ctx, "MD", []model.DistrictShape{
		{District: "01", Geom: p},
	}))

	set, err := st.Geometry(ctx, "MD")
	require.NoError(t, err)
	require.NotNil(t, set)
	require.Len(t, set.Shapes, 1)
	assert.Equal(t, "01", set.Shapes[0].District)

	poly, ok := set.Shapes[0].Geom.(*geom.Polygon)
	require.True(t, ok)
	assert.Equal(t, 1, poly.NumLinearRings())
}
