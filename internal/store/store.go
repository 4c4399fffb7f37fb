// Package store provides district dataset access behind a capability
// interface with file-, sqlite-, postgres-, and memory-backed adapters.
//
// The three datasets are independently optional: a missing or unreadable
// dataset degrades to an empty (or nil, for geometry) result rather than an
// error. Errors are reserved for transport-level failures such as an
// unreachable database.
package store

import (
	"context"

	"github.com/fairdistricts/mapmetrics/internal/model"
)

// Store reads the three per-state district datasets.
type Store interface {
	// PopulationRecords returns the population dataset for a state.
	// An absent dataset yields an empty slice, not an error.
	PopulationRecords(ctx context.Context, state string) ([]model.DistrictPopulation, error)

	// ElectionRecords returns the election dataset for a state.
	// An absent dataset yields an empty slice, not an error.
	ElectionRecords(ctx context.Context, state string) ([]model.DistrictVotes, error)

	// Geometry returns the district boundary set for a state, or nil when
	// the geometry dataset is absent or unparseable as a document.
	Geometry(ctx context.Context, state string) (*model.GeometrySet, error)
}
