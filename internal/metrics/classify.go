package metrics

import "github.com/fairdistricts/mapmetrics/internal/model"

// Classify maps a projected seat count to a qualitative label.
// Rules, in priority order:
//   - unknown: both counts are zero (nothing was projected)
//   - fair: counts are equal
//   - favors_democrats / favors_republicans: higher count wins
//
// This is a first-pass heuristic on seat count alone. A stricter rule would
// compare seat share against statewide vote share; that refinement is
// deliberately not implemented.
func Classify(seats model.Seats) model.Classification {
	switch {
	case seats.Dem == 0 && seats.Rep == 0:
		return model.ClassUnknown
	case seats.Dem == seats.Rep:
		return model.ClassFair
	case seats.Dem > seats.Rep:
		return model.ClassFavorsDem
	default:
		return model.ClassFavorsRep
	}
}
