package metrics

import "github.com/fairdistricts/mapmetrics/internal/model"

// ProjectSeats counts the districts each party would win under a plurality
// rule. A district with strictly more Democratic votes adds a Dem seat, one
// with strictly more Republican votes adds a Rep seat, and an exact tie adds
// neither, so Dem+Rep never exceeds the district count.
func ProjectSeats(records []model.DistrictVotes) model.Seats {
	var seats model.Seats
	for _, r := range records {
		switch {
		case r.DemVotes > r.RepVotes:
			seats.Dem++
		case r.RepVotes > r.DemVotes:
			seats.Rep++
		}
	}
	return seats
}
