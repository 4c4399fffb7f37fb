package store

import (
	"context"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
	"go.uber.org/zap"

	"github.com/fairdistricts/mapmetrics/internal/db"
	"github.com/fairdistricts/mapmetrics/internal/model"
)

// PostgresStore implements Store using a pgx pool.
type PostgresStore struct {
	pool db.Pool
	log  *zap.Logger
}

// NewPostgres creates a PostgresStore connected to the given URL.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	pool, err := db.Connect(ctx, connString)
	if err != nil {
		return nil, err
	}
	return NewPostgresFromPool(pool), nil
}

// NewPostgresFromPool wraps an existing pool; tests inject pgxmock here.
func NewPostgresFromPool(pool db.Pool) *PostgresStore {
	return &PostgresStore{
		pool: pool,
		log:  zap.L().With(zap.String("component", "store.postgres")),
	}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS district_population (
	state      TEXT NOT NULL,
	district   TEXT NOT NULL,
	population BIGINT NOT NULL DEFAULT 0,
	PRIMARY KEY (state, district)
);

CREATE TABLE IF NOT EXISTS district_votes (
	state       TEXT NOT NULL,
	district    TEXT NOT NULL,
	dem_votes   DOUBLE PRECISION NOT NULL DEFAULT 0,
	rep_votes   DOUBLE PRECISION NOT NULL DEFAULT 0,
	total_votes DOUBLE PRECISION NOT NULL DEFAULT 0,
	PRIMARY KEY (state, district)
);

CREATE TABLE IF NOT EXISTS district_shapes (
	state    TEXT NOT NULL,
	district TEXT NOT NULL,
	geojson  TEXT NOT NULL,
	PRIMARY KEY (state, district)
);
`

// Migrate creates the dataset tables.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

// Close releases the connection pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}

func (s *PostgresStore) PopulationRecords(ctx context.Context, state string) ([]model.DistrictPopulation, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT district, population FROM district_population WHERE state = $1 ORDER BY district`,
		normalizeState(state),
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: query population")
	}
	defer rows.Close()

	var records []model.DistrictPopulation
	for rows.Next() {
		var r model.DistrictPopulation
		if err := rows.Scan(&r.District, &r.Population); err != nil {
			return nil, eris.Wrap(err, "postgres: scan population row")
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "postgres: iterate population rows")
	}
	return records, nil
}

func (s *PostgresStore) ElectionRecords(ctx context.Context, state string) ([]model.DistrictVotes, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT district, dem_votes, rep_votes, total_votes FROM district_votes WHERE state = $1 ORDER BY district`,
		normalizeState(state),
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: query votes")
	}
	defer rows.Close()

	var records []model.DistrictVotes
	for rows.Next() {
		var r model.DistrictVotes
		if err := rows.Scan(&r.District, &r.DemVotes, &r.RepVotes, &r.TotalVotes); err != nil {
			return nil, eris.Wrap(err, "postgres: scan votes row")
		}
		if r.TotalVotes == 0 {
			r.TotalVotes = r.DemVotes + r.RepVotes
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "postgres: iterate votes rows")
	}
	return records, nil
}

func (s *PostgresStore) Geometry(ctx context.Context, state string) (*model.GeometrySet, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT district, geojson FROM district_shapes WHERE state = $1 ORDER BY district`,
		normalizeState(state),
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: query shapes")
	}
	defer rows.Close()

	var set *model.GeometrySet
	for rows.Next() {
		var district, doc string
		if err := rows.Scan(&district, &doc); err != nil {
			return nil, eris.Wrap(err, "postgres: scan shape row")
		}
		if set == nil {
			set = &model.GeometrySet{}
		}
		var g geom.T
		if err := geojson.Unmarshal([]byte(doc), &g); err != nil {
			s.log.Debug("skipping unparseable stored shape",
				zap.String("state", state), zap.String("district", district), zap.Error(err))
			continue
		}
		set.Shapes = append(set.Shapes, model.DistrictShape{District: district, Geom: g})
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "postgres: iterate shape rows")
	}
	return set, nil
}

// PutPopulation replaces a state's population dataset.
func (s *PostgresStore) PutPopulation(ctx context.Context, state string, records []model.DistrictPopulation) error {
	code := normalizeState(state)
	if _, err := s.pool.Exec(ctx, `DELETE FROM district_population WHERE state = $1`, code); err != nil {
		return eris.Wrap(err, "postgres: clear population")
	}
	for _, r := range records {
		_, err := s.pool.Exec(ctx,
			`INSERT INTO district_population (state, district, population) VALUES ($1, $2, $3)`,
			code, r.District, r.Population,
		)
		if err != nil {
			return eris.Wrapf(err, "postgres: insert population %s", r.District)
		}
	}
	return nil
}

// PutElections replaces a state's election dataset.
func (s *PostgresStore) PutElections(ctx context.Context, state string, records []model.DistrictVotes) error {
	code := normalizeState(state)
	if _, err := s.pool.Exec(ctx, `DELETE FROM district_votes WHERE state = $1`, code); err != nil {
		return eris.Wrap(err, "postgres: clear votes")
	}
	for _, r := range records {
		total := r.TotalVotes
		if total == 0 {
			total = r.DemVotes + r.RepVotes
		}
		_, err := s.pool.Exec(ctx,
			`INSERT INTO district_votes (state, district, dem_votes, rep_votes, total_votes) VALUES ($1, $2, $3, $4, $5)`,
			code, r.District, r.DemVotes, r.RepVotes, total,
		)
		if err != nil {
			return eris.Wrapf(err, "postgres: insert votes %s", r.District)
		}
	}
	return nil
}

// PutShapes replaces a state's geometry dataset.
func (s *PostgresStore) PutShapes(ctx context.Context, state string, shapes []model.DistrictShape) error {
	code := normalizeState(state)
	if _, err := s.pool.Exec(ctx, `DELETE FROM district_shapes WHERE state = $1`, code); err != nil {
		return eris.Wrap(err, "postgres: clear shapes")
	}
	for _, sh := range shapes {
		data, err := geojson.Marshal(sh.Geom)
		if err != nil {
			return eris.Wrapf(err, "postgres: encode shape %s", sh.District)
		}
		_, err = s.pool.Exec(ctx,
			`INSERT INTO district_shapes (state, district, geojson) VALUES ($1, $2, $3)`,
			code, sh.District, string(data),
		)
		if err != nil {
			return eris.Wrapf(err, "postgres: insert shape %s", sh.District)
		}
	}
	return nil
}
