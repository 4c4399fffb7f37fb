// Package metrics computes fairness and compactness metrics from district
// population, election, and geometry data.
package metrics

import (
	"math"

	"github.com/fairdistricts/mapmetrics/internal/model"
)

// DeviationSummary computes min/max/mean percentage deviation from the
// state's own ideal equal-population target (total population / districts).
// An empty input yields the neutral {0,0,0}. When every district has zero
// population the target is zero and every deviation is defined as 0 rather
// than dividing by zero.
func DeviationSummary(records []model.DistrictPopulation) model.Deviation {
	if len(records) == 0 {
		return model.Deviation{}
	}

	var total float64
	for _, r := range records {
		total += float64(r.Population)
	}
	target := total / float64(len(records))
	if target == 0 {
		return model.Deviation{}
	}

	min := math.Inf(1)
	max := math.Inf(-1)
	var sum float64
	for _, r := range records {
		pct := (float64(r.Population) - target) / target * 100
		if pct < min {
			min = pct
		}
		if pct > max {
			max = pct
		}
		sum += pct
	}

	return model.Deviation{
		Min:  round2(min),
		Max:  round2(max),
		Mean: round2(sum / float64(len(records))),
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
