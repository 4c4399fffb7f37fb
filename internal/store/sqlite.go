package store

import (
	"context"
	"database/sql"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/fairdistricts/mapmetrics/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite. District shapes are
// stored as GeoJSON geometry text per district.
type SQLiteStore struct {
	db  *sql.DB
	log *zap.Logger
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{
		db:  db,
		log: zap.L().With(zap.String("component", "store.sqlite")),
	}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS district_population (
	state      TEXT NOT NULL,
	district   TEXT NOT NULL,
	population INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY (state, district)
);

CREATE TABLE IF NOT EXISTS district_votes (
	state       TEXT NOT NULL,
	district    TEXT NOT NULL,
	dem_votes   REAL NOT NULL DEFAULT 0,
	rep_votes   REAL NOT NULL DEFAULT 0,
	total_votes REAL NOT NULL DEFAULT 0,
	PRIMARY KEY (state, district)
);

CREATE TABLE IF NOT EXISTS district_shapes (
	state    TEXT NOT NULL,
	district TEXT NOT NULL,
	geojson  TEXT NOT NULL,
	PRIMARY KEY (state, district)
);

CREATE INDEX IF NOT EXISTS idx_district_population_state ON district_population(state);
CREATE INDEX IF NOT EXISTS idx_district_votes_state ON district_votes(state);
CREATE INDEX IF NOT EXISTS idx_district_shapes_state ON district_shapes(state);
`

// Migrate creates the dataset tables.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) PopulationRecords(ctx context.Context, state string) ([]model.DistrictPopulation, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT district, population FROM district_population WHERE state = ? ORDER BY district`,
		normalizeState(state),
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: query population")
	}
	defer rows.Close() //nolint:errcheck

	var records []model.DistrictPopulation
	for rows.Next() {
		var r model.DistrictPopulation
		if err := rows.Scan(&r.District, &r.Population); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan population row")
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "sqlite: iterate population rows")
	}
	return records, nil
}

func (s *SQLiteStore) ElectionRecords(ctx context.Context, state string) ([]model.DistrictVotes, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT district, dem_votes, rep_votes, total_votes FROM district_votes WHERE state = ? ORDER BY district`,
		normalizeState(state),
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: query votes")
	}
	defer rows.Close() //nolint:errcheck

	var records []model.DistrictVotes
	for rows.Next() {
		var r model.DistrictVotes
		if err := rows.Scan(&r.District, &r.DemVotes, &r.RepVotes, &r.TotalVotes); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan votes row")
		}
		if r.TotalVotes == 0 {
			r.TotalVotes = r.DemVotes + r.RepVotes
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "sqlite: iterate votes rows")
	}
	return records, nil
}

func (s *SQLiteStore) Geometry(ctx context.Context, state string) (*model.GeometrySet, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT district, geojson FROM district_shapes WHERE state = ? ORDER BY district`,
		normalizeState(state),
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: query shapes")
	}
	defer rows.Close() //nolint:errcheck

	var set *model.GeometrySet
	for rows.Next() {
		var district, doc string
		if err := rows.Scan(&district, &doc); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan shape row")
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
		return nil, eris.Wrap(err, "sqlite: iterate shape rows")
	}
	return set, nil
}

// PutPopulation replaces a state's population dataset.
func (s *SQLiteStore) PutPopulation(ctx context.Context, state string, records []model.DistrictPopulation) error {
	return s.replace(ctx, normalizeState(state), "district_population",
		`INSERT INTO district_population (state, district, population) VALUES (?, ?, ?)`,
		len(records), func(i int) []any {
			return []any{normalizeState(state), records[i].District, records[i].Population}
		})
}

// PutElections replaces a state's election dataset.
func (s *SQLiteStore) PutElections(ctx context.Context, state string, records []model.DistrictVotes) error {
	return s.replace(ctx, normalizeState(state), "district_votes",
		`INSERT INTO district_votes (state, district, dem_votes, rep_votes, total_votes) VALUES (?, ?, ?, ?, ?)`,
		len(records), func(i int) []any {
			r := records[i]
			if r.TotalVotes == 0 {
				r.TotalVotes = r.DemVotes + r.RepVotes
			}
			return []any{normalizeState(state), r.District, r.DemVotes, r.RepVotes, r.TotalVotes}
		})
}

// PutShapes replaces a state's geometry dataset.
func (s *SQLiteStore) PutShapes(ctx context.Context, state string, shapes []model.DistrictShape) error {
	encoded := make([][]any, 0, len(shapes))
	for _, sh := range shapes {
		data, err := geojson.Marshal(sh.Geom)
		if err != nil {
			return eris.Wrapf(err, "sqlite: encode shape %s", sh.District)
		}
		encoded = append(encoded, []any{normalizeState(state), sh.District, string(data)})
	}
	return s.replace(ctx, normalizeState(state), "district_shapes",
		`INSERT INTO district_shapes (state, district, geojson) VALUES (?, ?, ?)`,
		len(encoded), func(i int) []any { return encoded[i] })
}

// replace deletes a state's rows from a table and inserts the new set in one
// transaction.
func (s *SQLiteStore) replace(ctx context.Context, state, table, insertSQL string, n int, args func(int) []any) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin tx")
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE state = ?`, state); err != nil {
		return eris.Wrapf(err, "sqlite: clear %s", table)
	}
	for i := 0; i < n; i++ {
		if _, err := tx.ExecContext(ctx, insertSQL, args(i)...); err != nil {
			return eris.Wrapf(err, "sqlite: insert into %s", table)
		}
	}
	return eris.Wrap(tx.Commit(), "sqlite: commit")
}
