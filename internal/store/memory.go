package store

import (
	"context"

	"github.com/fairdistricts/mapmetrics/internal/model"
)

// MemStore is an in-memory Store adapter for tests and embedding.
type MemStore struct {
	Pop    map[string][]model.DistrictPopulation
	Votes  map[string][]model.DistrictVotes
	Shapes map[string]*model.GeometrySet
}

// NewMem creates an empty in-memory store.
func NewMem() *MemStore {
	return &MemStore{
		Pop:    map[string][]model.DistrictPopulation{},
		Votes:  map[string][]model.DistrictVotes{},
		Shapes: map[string]*model.GeometrySet{},
	}
}

func (m *MemStore) PopulationRecords(_ context.Context, state string) ([]model.DistrictPopulation, error) {
	return m.Pop[normalizeState(state)], nil
}

func (m *MemStore) ElectionRecords(_ context.Context, state string) ([]model.DistrictVotes, error) {
	return m.Votes[normalizeState(state)], nil
}

func (m *MemStore) Geometry(_ context.Context, state string) (*model.GeometrySet, error) {
	return m.Shapes[normalizeState(state)], nil
}
