package highs

import (
	"math"

	"github.com/pkg/errors"
)

// solve: the dispatcher that hands a loaded context to one of the solver
// bindings and assesses the quality of whatever solution came back. The
// choice between the simplex and interior-point bindings follows the solver
// option; "choose" selects simplex, which is the binding that certifies the
// unscaled status directly.

//==============================================================================

// runLpSolver dispatches the context's model to the configured solver
// binding and fills in the context's solution parameters afterwards.
// In case of failure, function returns an error.
func runLpSolver(ctx *solveContext, opts *Options, warmStart bool) error {

	if ctx.model == nil {
		return errors.Errorf("no model loaded in context %s", ctx.name)
	}

	solver := opts.Solver
	if solver == OptionChoose {
		solver = SolverSimplex
	}

	var err error
	switch solver {
	case SolverSimplex:
		err = solveSimplex(ctx, opts, warmStart)
	case SolverIpm:
		err = solveIpm(ctx, opts)
	default:
		return errors.Errorf("unknown solver %q", solver)
	}
	if err != nil {
		ctx.scaledStatus = ModelStatusSolveError
		ctx.unscaledStatus = ModelStatusSolveError
		return errors.Wrapf(err, "solver %s failed on %s", solver, ctx.name)
	}

	computeSolutionParams(ctx, opts)
	return nil
}

//==============================================================================

// computeSolutionParams measures the context's solution against the primal
// and dual feasibility tolerances and records the objective value and the
// infeasibility counts, maxima and sums.
func computeSolutionParams(ctx *solveContext, opts *Options) {

	p := &ctx.params
	p.numPrimalInfeasibility = 0
	p.maxPrimalInfeasibility = 0
	p.sumPrimalInfeasibility = 0
	p.numDualInfeasibility = 0
	p.maxDualInfeasibility = 0
	p.sumDualInfeasibility = 0
	p.primalStatus = SolutionStatusNotSet
	p.dualStatus = SolutionStatusNotSet
	p.objective = 0

	m := ctx.model
	sol := &ctx.solution
	if m == nil || len(sol.ColValue) != m.NumCol {
		p.primalStatus = SolutionStatusNoSolution
		p.dualStatus = SolutionStatusNoSolution
		return
	}

	p.objective = objectiveValue(m, sol.ColValue)

	for j := 0; j < m.NumCol; j++ {
		accumulatePrimal(p, sol.ColValue[j], m.ColLower[j], m.ColUpper[j])
	}
	if len(sol.RowValue) == m.NumRow {
		for i := 0; i < m.NumRow; i++ {
			accumulatePrimal(p, sol.RowValue[i], m.RowLower[i], m.RowUpper[i])
		}
	}
	if p.maxPrimalInfeasibility > opts.PrimalFeasibilityTolerance {
		p.primalStatus = SolutionStatusInfeasiblePoint
	} else {
		p.primalStatus = SolutionStatusFeasiblePoint
		p.numPrimalInfeasibility = 0
		p.maxPrimalInfeasibility = 0
		p.sumPrimalInfeasibility = 0
	}

	if len(sol.ColDual) != m.NumCol {
		p.dualStatus = SolutionStatusNoSolution
		return
	}
	// Dual feasibility: a reduced cost pointing into the feasible region of
	// a variable that can still move that way is a dual infeasibility. The
	// sign convention follows the objective sense. Fixed columns and equality
	// rows carry a free-signed dual and are skipped, as in simplex pricing.
	sigma := float64(m.Sense)
	for j := 0; j < m.NumCol; j++ {
		if m.ColLower[j] == m.ColUpper[j] {
			continue
		}
		atLower := ctx.basis.Valid && ctx.basis.ColStatus[j] == BasisStatusLower
		atUpper := ctx.basis.Valid && ctx.basis.ColStatus[j] == BasisStatusUpper
		accumulateDual(p, sigma*sol.ColDual[j], atLower, atUpper)
	}
	if len(sol.RowDual) == m.NumRow && ctx.basis.Valid {
		for i := 0; i < m.NumRow; i++ {
			if m.RowLower[i] == m.RowUpper[i] {
				continue
			}
			atLower := ctx.basis.RowStatus[i] == BasisStatusLower
			atUpper := ctx.basis.RowStatus[i] == BasisStatusUpper
			accumulateDual(p, sigma*sol.RowDual[i], atLower, atUpper)
		}
	}
	if p.maxDualInfeasibility > opts.DualFeasibilityTolerance {
		p.dualStatus = SolutionStatusInfeasiblePoint
	} else {
		p.dualStatus = SolutionStatusFeasiblePoint
		p.numDualInfeasibility = 0
		p.maxDualInfeasibility = 0
		p.sumDualInfeasibility = 0
	}
}

//==============================================================================

// accumulatePrimal folds one value's bound violation into the primal
// infeasibility measures.
func accumulatePrimal(p *solutionParams, value, lower, upper float64) {
	infeas := 0.0
	if value < lower {
		infeas = lower - value
	} else if value > upper {
		infeas = value - upper
	}
	if infeas > 0 {
		p.numPrimalInfeasibility++
		p.sumPrimalInfeasibility += infeas
		if infeas > p.maxPrimalInfeasibility {
			p.maxPrimalInfeasibility = infeas
		}
	}
}

//==============================================================================

// accumulateDual folds one reduced cost into the dual infeasibility
// measures. A variable resting at its lower bound must not have a negative
// minimization reduced cost, one at its upper bound must not have a positive
// one, and a free or basic variable must have a reduced cost of zero.
func accumulateDual(p *solutionParams, dual float64, atLower, atUpper bool) {
	infeas := 0.0
	switch {
	case atLower:
		if dual < 0 {
			infeas = -dual
		}
	case atUpper:
		if dual > 0 {
			infeas = dual
		}
	default:
		infeas = math.Abs(dual)
	}
	if infeas > 0 {
		p.numDualInfeasibility++
		p.sumDualInfeasibility += infeas
		if infeas > p.maxDualInfeasibility {
			p.maxDualInfeasibility = infeas
		}
	}
}
