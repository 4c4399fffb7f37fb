// Package seed provides the fallback summary provider used when a state has
// no real datasets at all. The provider is injectable so the hand-curated
// table can be swapped for a file-backed one without touching the engine.
package seed

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/fairdistricts/mapmetrics/internal/model"
)

// Provider resolves a fallback summary for a state code.
type Provider interface {
	// Lookup returns the seed summary for a state, or false when the state
	// has no seed entry.
	Lookup(state string) (*model.StateSummary, bool)
}

// Table is a Provider backed by a map keyed by uppercase state code.
type Table map[string]model.StateSummary

func (t Table) Lookup(state string) (*model.StateSummary, bool) {
	s, ok := t[state]
	if !ok {
		return nil, false
	}
	return &s, true
}

func f(v float64) *float64 { return &v }

// Static returns the built-in seed table. Values are hand-curated demo
// figures for the states the original dashboard shipped with.
func Static() Provider {
	return Table{
		"CA": {
			Classification: model.ClassFavorsDem,
			Summary: model.SummaryBody{
				PopVariancePct: model.Deviation{Min: -0.9, Max: 1.1, Mean: 0.0},
				Compactness:    model.Compactness{MeanPolsbyPopper: f(0.284)},
				ExpectedSeats:  model.Seats{Dem: 42, Rep: 10},
				Notes:          []string{"seeded demo metrics, not derived from datasets"},
			},
		},
		"TX": {
			Classification: model.ClassFavorsRep,
			Summary: model.SummaryBody{
				PopVariancePct: model.Deviation{Min: -1.4, Max: 1.8, Mean: 0.1},
				Compactness:    model.Compactness{MeanPolsbyPopper: f(0.231)},
				ExpectedSeats:  model.Seats{Dem: 13, Rep: 25},
				Notes:          []string{"seeded demo metrics, not derived from datasets"},
			},
		},
		"FL": {
			Classification: model.ClassFavorsRep,
			Summary: model.SummaryBody{
				PopVariancePct: model.Deviation{Min: -0.6, Max: 0.8, Mean: 0.0},
				Compactness:    model.Compactness{MeanPolsbyPopper: f(0.317)},
				ExpectedSeats:  model.Seats{Dem: 8, Rep: 20},
				Notes:          []string{"seeded demo metrics, not derived from datasets"},
			},
		},
	}
}

// FromYAML loads a seed table from a YAML file mapping state codes to
// summaries.
func FromYAML(path string) (Provider, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "seed: read file")
	}
	var table Table
	if err := yaml.Unmarshal(data, &table); err != nil {
		return nil, eris.Wrap(err, "seed: parse yaml")
	}
	return table, nil
}
