// Package summary assembles per-state metrics summaries from the district
// datasets, with seed and neutral fallbacks for states that have no data.
package summary

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/fairdistricts/mapmetrics/internal/metrics"
	"github.com/fairdistricts/mapmetrics/internal/model"
	"github.com/fairdistricts/mapmetrics/internal/seed"
	"github.com/fairdistricts/mapmetrics/internal/store"
)

// Diagnostic notes, appended in fixed dataset order for whichever inputs were
// absent. Dashboards display these verbatim.
const (
	NotePopulationMissing = "population dataset unavailable; deviation defaults applied"
	NoteElectionMissing   = "election dataset unavailable; expected seats default to zero"
	NoteGeometryMissing   = "geometry dataset unavailable; compactness not computed"
	NoteNoData            = "no district datasets available for this state"
)

// Assembler computes StateSummary values from a Store, falling back to the
// seed provider and then to a neutral default when a state has no data.
type Assembler struct {
	store store.Store
	seeds seed.Provider
	log   *zap.Logger
}

// New creates an Assembler. A nil seed provider disables the seed tier.
func New(st store.Store, seeds seed.Provider) *Assembler {
	return &Assembler{
		store: st,
		seeds: seeds,
		log:   zap.L().With(zap.String("component", "summary")),
	}
}

// Summarize computes the metrics summary for one state. Missing datasets
// degrade to per-analyzer defaults and a diagnostic note; a state with no
// datasets at all resolves through the seed table, then the neutral-unknown
// default. Only transport-level store failures return an error.
func (a *Assembler) Summarize(ctx context.Context, state string) (*model.StateSummary, error) {
	pop, err := a.store.PopulationRecords(ctx, state)
	if err != nil {
		return nil, err
	}
	votes, err := a.store.ElectionRecords(ctx, state)
	if err != nil {
		return nil, err
	}
	geo, err := a.store.Geometry(ctx, state)
	if err != nil {
		return nil, err
	}

	hasPop := len(pop) > 0
	hasVotes := len(votes) > 0
	hasGeo := geo != nil && len(geo.Shapes) > 0

	if !hasPop && !hasVotes && !hasGeo {
		if a.seeds != nil {
			if seeded, ok := a.seeds.Lookup(state); ok {
				a.log.Debug("serving seed summary", zap.String("state", state))
				return seeded, nil
			}
		}
		return &model.StateSummary{
			Classification: model.ClassUnknown,
			Summary:        model.NeutralSummary(NoteNoData),
		}, nil
	}

	seats := metrics.ProjectSeats(votes)
	body := model.SummaryBody{
		PopVariancePct: metrics.DeviationSummary(pop),
		Compactness:    model.Compactness{MeanPolsbyPopper: metrics.MeanPolsbyPopper(geo)},
		ExpectedSeats:  seats,
		Notes:          []string{},
	}
	if !hasPop {
		body.Notes = append(body.Notes, NotePopulationMissing)
	}
	if !hasVotes {
		body.Notes = append(body.Notes, NoteElectionMissing)
	}
	if !hasGeo {
		body.Notes = append(body.Notes, NoteGeometryMissing)
	}

	return &model.StateSummary{
		Classification: metrics.Classify(seats),
		Summary:        body,
	}, nil
}

// SummarizeAll computes summaries for every code in parallel. Each state is
// an independent computation; the first store failure cancels the rest.
func (a *Assembler) SummarizeAll(ctx context.Context, codes []string) (map[string]model.StateSummary, error) {
	results := make(map[string]model.StateSummary, len(codes))
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for _, code := range codes {
		g.Go(func() error {
			s, err := a.Summarize(ctx, code)
			if err != nil {
				return err
			}
			mu.Lock()
			results[code] = *s
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
