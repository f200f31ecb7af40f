package stepwise

import (
	"context"
	"sort"

	statglm "coursemetry/adapters/stats/glm"
	"coursemetry/domain/dataset"
	domglm "coursemetry/domain/glm"
	"coursemetry/internal"

	"golang.org/x/sync/errgroup"
)

// Selector performs bidirectional stepwise predictor selection driven by AIC.
// The search is greedy and local: it follows the conventional stepwise
// procedure and does not chase the global minimum over all predictor subsets.
type Selector struct {
	fitter *statglm.Fitter
	logger *internal.Logger
}

// NewSelector creates a selector around the given fitter.
func NewSelector(fitter *statglm.Fitter) *Selector {
	return &Selector{
		fitter: fitter,
		logger: internal.DefaultLogger,
	}
}

// candidate is one single-change move away from the current model.
type candidate struct {
	predictors []string
	model      *domglm.FittedModel
	err        error
}

// Select runs the greedy bidirectional search from the start model. At each
// step every single predictor addition and removal is fitted; the lowest-AIC
// candidate wins, with exact ties broken toward the smaller model (then
// lexicographic predictor order, for determinism). The search stops when no
// candidate improves on the current AIC.
//
// Candidate fits within one step run concurrently; selection over the
// finished step is deterministic, so the result matches the sequential
// procedure exactly.
func (s *Selector) Select(ctx context.Context, ds *dataset.Dataset, start *domglm.FittedModel, universe []string) (*domglm.FittedModel, error) {
	current := start

	for step := 1; ; step++ {
		candidates := s.proposeMoves(current.Formula.Predictors, universe)
		if len(candidates) == 0 {
			break
		}

		g, _ := errgroup.WithContext(ctx)
		for i := range candidates {
			c := &candidates[i]
			g.Go(func() error {
				formula := domglm.Formula{Target: current.Formula.Target, Predictors: c.predictors}
				c.model, c.err = s.fitter.Fit(ds, formula)
				// A candidate that separates or fails to converge is
				// skipped, not fatal: the move is simply unavailable.
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}

		best := pickBest(candidates)
		if best == nil || !improves(best.model, current) {
			break
		}

		s.logger.Debug("[Stepwise] step %d: %s (AIC %.4f -> %.4f)",
			step, best.model.Formula.String(), current.AIC, best.model.AIC)
		current = best.model
	}

	return current, nil
}

// proposeMoves enumerates every single add and single drop, each with a
// deterministic predictor ordering.
func (s *Selector) proposeMoves(used, universe []string) []candidate {
	inUse := make(map[string]bool, len(used))
	for _, p := range used {
		inUse[p] = true
	}

	var moves []candidate

	// Drops, preserving the remaining order.
	for i := range used {
		reduced := make([]string, 0, len(used)-1)
		reduced = append(reduced, used[:i]...)
		reduced = append(reduced, used[i+1:]...)
		moves = append(moves, candidate{predictors: reduced})
	}

	// Additions, appended in universe order.
	for _, p := range universe {
		if inUse[p] {
			continue
		}
		extended := make([]string, 0, len(used)+1)
		extended = append(extended, used...)
		extended = append(extended, p)
		moves = append(moves, candidate{predictors: extended})
	}

	return moves
}

// pickBest returns the lowest-AIC successful candidate; exact ties prefer
// fewer predictors, then lexicographic predictor order.
func pickBest(candidates []candidate) *candidate {
	var best *candidate
	for i := range candidates {
		c := &candidates[i]
		if c.err != nil || c.model == nil {
			continue
		}
		if best == nil || betterThan(c.model, best.model) {
			best = c
		}
	}
	return best
}

func betterThan(a, b *domglm.FittedModel) bool {
	if a.AIC != b.AIC {
		return a.AIC < b.AIC
	}
	if len(a.Formula.Predictors) != len(b.Formula.Predictors) {
		return len(a.Formula.Predictors) < len(b.Formula.Predictors)
	}
	return a.Formula.String() < b.Formula.String()
}

// improves applies the stopping rule: accept only strict AIC improvement,
// except that an exact tie with fewer predictors still wins.
func improves(candidate, current *domglm.FittedModel) bool {
	if candidate.AIC < current.AIC {
		return true
	}
	return candidate.AIC == current.AIC &&
		len(candidate.Formula.Predictors) < len(current.Formula.Predictors)
}

// Compare ranks candidate models ascending by AIC.
func Compare(models []*domglm.FittedModel) []domglm.ComparisonRow {
	rows := make([]domglm.ComparisonRow, 0, len(models))
	for _, m := range models {
		if m == nil {
			continue
		}
		rows = append(rows, domglm.ComparisonRow{
			Formula:       m.Formula.String(),
			DF:            m.DegreesOfFreedom(),
			LogLikelihood: m.LogLikelihood,
			AIC:           m.AIC,
			BIC:           m.BIC,
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].AIC != rows[j].AIC {
			return rows[i].AIC < rows[j].AIC
		}
		return rows[i].DF < rows[j].DF
	})
	return rows
}
