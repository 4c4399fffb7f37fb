// Package model defines the district records and summary types shared across
// the metrics engine.
package model

import "github.com/twpayne/go-geom"

// DistrictPopulation is one district's population count within a state.
type DistrictPopulation struct {
	District   string `json:"district"`
	Population int64  `json:"population"`
}

// DistrictVotes holds one district's two-party election result. TotalVotes is
// derived as DemVotes+RepVotes when the source does not supply it.
type DistrictVotes struct {
	District   string  `json:"district"`
	DemVotes   float64 `json:"dem_votes"`
	RepVotes   float64 `json:"rep_votes"`
	TotalVotes float64 `json:"total_votes"`
}

// DistrictShape associates a district id with its polygon or multipolygon
// boundary in a planar/projected coordinate space.
type DistrictShape struct {
	District string
	Geom     geom.T
}

// GeometrySet is a state's district boundary collection. A nil *GeometrySet
// means the geometry dataset is absent, which is distinct from a set with
// zero shapes.
type GeometrySet struct {
	Shapes []DistrictShape
}

// Deviation summarizes per-district population deviation from the state's
// ideal equal-population target, as percentages.
type Deviation struct {
	Min  float64 `json:"min" yaml:"min"`
	Max  float64 `json:"max" yaml:"max"`
	Mean float64 `json:"mean" yaml:"mean"`
}

// Seats is the projected seat count per party under plurality-per-district.
// Tied districts count for neither side.
type Seats struct {
	Dem int `json:"dem" yaml:"dem"`
	Rep int `json:"rep" yaml:"rep"`
}

// Compactness carries the mean Polsby-Popper score. A nil pointer serializes
// as JSON null and means no score could be computed.
type Compactness struct {
	MeanPolsbyPopper *float64 `json:"mean_polsby_popper" yaml:"mean_polsby_popper"`
}

// Classification is the qualitative fairness label for a map.
type Classification string

// Classification labels, derived from projected seat counts.
const (
	ClassUnknown   Classification = "unknown"
	ClassFair      Classification = "fair"
	ClassFavorsDem Classification = "favors_democrats"
	ClassFavorsRep Classification = "favors_republicans"
)

// SummaryBody is the nested metrics block of a StateSummary. Field names and
// nesting are a stable contract consumed by dashboards; do not rename.
type SummaryBody struct {
	PopVariancePct Deviation   `json:"pop_variance_pct" yaml:"pop_variance_pct"`
	Compactness    Compactness `json:"compactness" yaml:"compactness"`
	ExpectedSeats  Seats       `json:"expected_seats" yaml:"expected_seats"`
	Notes          []string    `json:"notes" yaml:"notes"`
}

// StateSummary is the assembled per-state output of the metrics engine.
type StateSummary struct {
	Classification Classification `json:"classification" yaml:"classification"`
	Summary        SummaryBody    `json:"summary" yaml:"summary"`
}

// NeutralSummary returns the all-defaults summary body used when a dataset
// tier provides nothing to compute from.
func NeutralSummary(notes ...string) SummaryBody {
	if notes == nil {
		notes = []string{}
	}
	return SummaryBody{
		PopVariancePct: Deviation{},
		Compactness:    Compactness{},
		ExpectedSeats:  Seats{},
		Notes:          notes,
	}
}
