package store

import (
	"context"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"

	"github.com/fairdistricts/mapmetrics/internal/model"
)

func TestPostgres_PopulationRecords(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("SELECT district, population FROM district_population").
		WithArgs("CO").
		WillReturnRows(
			pgxmock.NewRows([]string{"district", "population"}).
				AddRow("01", int64(100000)).
				AddRow("02", int64(120000)),
		)

	st := NewPostgresFromPool(mock)
	records, err := st.PopulationRecords(context.Background(), "co")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "01", records[0].District)
	assert.Equal(t, int64(120000), records[1].Population)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_ElectionTotalDerivedOnRead(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("SELECT district, dem_votes, rep_votes, total_votes FROM district_votes").
		WithArgs("MI").
		WillReturnRows(
			pgxmock.NewRows([]string{"district", "dem_votes", "rep_votes", "total_votes"}).
				AddRow("01", float64(300), float64(200), float64(0)),
		)

	st := NewPostgresFromPool(mock)
	records, err := st.ElectionRecords(context.Background(), "MI")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, float64(500), records[0].TotalVotes)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_GeometrySkipsUnparseableShape(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("SELECT district, geojson FROM district_shapes").
		WithArgs("MD").
		WillReturnRows(
			pgxmock.NewRows([]string{"district", "geojson"}).
				AddRow("01", `{"type":"Polygon","coordinates":[[[0,0],[1,0],[1,1],[0,1],[0,0]]]}`).
				AddRow("02", `{broken`),
		)

	st := NewPostgresFromPool(mock)
	set, err := st.Geometry(context.Background(), "MD")
	require.NoError(t, err)
	require.NotNil(t, set)
	require.Len(t, set.Shapes, 1)

	_, ok := set.Shapes[0].Geom.(*geom.Polygon)
	assert.True(t, ok)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_AbsentStateIsNilGeometry(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("SELECT district, geojson FROM district_shapes").
		WithArgs("AK").
		WillReturnRows(pgxmock.NewRows([]string{"district", "geojson"}))

	st := NewPostgresFromPool(mock)
	set, err := st.Geometry(context.Background(), "AK")
	require.NoError(t, err)
	assert.Nil(t, set)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_QueryErrorPropagates(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("SELECT district, population FROM district_population").
		WithArgs("CO").
		WillReturnError(assert.AnError)

	st := NewPostgresFromPool(mock)
	_, err = st.PopulationRecords(context.Background(), "CO")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "query population")
}

func TestPostgres_PutPopulation(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec("DELETE FROM district_population").
		WithArgs("NE").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectExec("INSERT INTO district_population").
		WithArgs("NE", "01", int64(55000)).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	st := NewPostgresFromPool(mock)
	err = st.PutPopulation(context.Background(), "ne", []model.DistrictPopulation{
		{District: "01", Population: 55000},
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
