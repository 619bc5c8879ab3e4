package highs

import (
	"math"

	"github.com/pkg/errors"
)

// run: the Run orchestrator. One call moves the loaded problem through
// presolve, the configured solver, postsolve and a hot-started clean-up
// re-solve, harvests the winning context into the retained solution state,
// and applies the finalization rules before returning. The presolve outcome
// branch is exhaustive: every PresolveStatus value has a decided path.

//==============================================================================

// Run solves the loaded model under the current options.
// In case of failure, function returns an error alongside the status.
func (s *Solver) Run() (Status, error) {

	start := timeNow()
	defer func() {
		s.runTime += timeNow().Sub(start).Seconds()
	}()

	if err := checkOptions(&s.options); err != nil {
		s.modelStatus = ModelStatusLoadError
		s.scaledModelStatus = ModelStatusLoadError
		return s.beforeReturnFromRun(StatusError), errors.Wrap(err, "Run rejected the options")
	}
	SetLogLevel(s.options.MessageLevel)

	if s.lp == nil && s.options.ModelFile != "" {
		if st, err := s.ReadModel(s.options.ModelFile); err != nil {
			return s.beforeReturnFromRun(st), err
		}
	}
	if s.lp == nil {
		s.modelStatus = ModelStatusLoadError
		s.scaledModelStatus = ModelStatusLoadError
		return s.beforeReturnFromRun(StatusError), errors.Errorf("Run called with no model")
	}

	// A problem with no columns is solved by definition.
	if s.lp.NumCol == 0 {
		s.modelStatus = ModelStatusModelEmpty
		s.scaledModelStatus = ModelStatusModelEmpty
		return s.beforeReturnFromRun(StatusOK), nil
	}

	ctx := s.originalContext()
	ctx.resetStatus()
	if s.basis.Valid {
		ctx.basis = copyBasis(&s.basis)
	}

	var presolveTime, solveTime, reducedSolveTime, postsolveTime float64
	markStart := timeNow()

	status, err := s.runPipeline(ctx, &presolveTime, &solveTime, &reducedSolveTime, &postsolveTime)

	// Harvest the original context into the retained state.
	s.scaledModelStatus = ctx.scaledStatus
	s.modelStatus = ctx.unscaledStatus
	if s.modelStatus == ModelStatusNotSet {
		s.modelStatus = s.scaledModelStatus
	}
	s.harvestInfo(ctx)
	s.solution = copySolution(&ctx.solution)
	s.basis = copyBasis(&ctx.basis)

	wall := timeNow().Sub(markStart).Seconds()
	accounted := presolveTime + solveTime + reducedSolveTime + postsolveTime
	if wall > 0.01 && math.Abs(wall-accounted) > 0.1*wall {
		log(pWARN, "Run timing: %.3fs wall but %.3fs accounted (presolve %.3f, reduced solve %.3f, postsolve %.3f, solve %.3f)",
			wall, accounted, presolveTime, reducedSolveTime, postsolveTime, solveTime)
	}

	return s.beforeReturnFromRun(status), err
}

//==============================================================================

// runPipeline decides whether to presolve, dispatches the solves, and leaves
// the outcome in the original context. The four stage accumulators are kept
// independent: solves on the original problem and on the reduced one are
// charged to separate spans.
// In case of failure, function returns an error alongside the status.
func (s *Solver) runPipeline(ctx *solveContext, presolveTime, solveTime, reducedSolveTime, postsolveTime *float64) (Status, error) {

	opts := &s.options

	// A usable basis makes a hot start more attractive than presolving.
	usePresolve := opts.Presolve != OptionOff && !ctx.basis.Valid
	if !usePresolve {
		t := timeNow()
		err := runLpSolver(ctx, opts, ctx.basis.Valid)
		*solveTime += timeNow().Sub(t).Seconds()
		if err != nil {
			return StatusError, errors.Wrap(err, "Run failed")
		}
		return s.reconcileStatus(ctx, true), nil
	}

	t := timeNow()
	s.presolve = newPresolveSession(ctx.model, opts)
	presolveStatus := s.presolve.run()
	*presolveTime += timeNow().Sub(t).Seconds()

	switch presolveStatus {

	case PresolveStatusNotPresolved, PresolveStatusNotReduced:
		t = timeNow()
		err := runLpSolver(ctx, opts, false)
		*solveTime += timeNow().Sub(t).Seconds()
		if err != nil {
			return StatusError, errors.Wrap(err, "Run failed")
		}
		return s.reconcileStatus(ctx, true), nil

	case PresolveStatusReduced:
		return s.solveReduced(ctx, solveTime, reducedSolveTime, postsolveTime)

	case PresolveStatusReducedToEmpty:
		redSol, redBasis := s.presolve.emptyReducedSolution()
		return s.installPostsolved(ctx, &redSol, &redBasis, solveTime, postsolveTime)

	case PresolveStatusInfeasible:
		ctx.scaledStatus = ModelStatusPrimalInfeasible
		ctx.unscaledStatus = ModelStatusPrimalInfeasible
		return StatusOK, nil

	case PresolveStatusUnbounded:
		ctx.scaledStatus = ModelStatusPrimalUnbounded
		ctx.unscaledStatus = ModelStatusPrimalUnbounded
		return StatusOK, nil

	case PresolveStatusTimeout, PresolveStatusOptionsError:
		// Presolve gave up without harming the model; the run ends with a
		// presolve-error status but only a warning.
		ctx.scaledStatus = ModelStatusPresolveError
		ctx.unscaledStatus = ModelStatusPresolveError
		return StatusWarning, nil
	}

	ctx.scaledStatus = ModelStatusPresolveError
	ctx.unscaledStatus = ModelStatusPresolveError
	return StatusError, errors.Errorf("presolve failed with status %s", presolveStatus)
}

//==============================================================================

// solveReduced handles the Reduced outcome: a transient context solves the
// reduced problem with the dual objective cutoff suspended, the solution is
// postsolved into the original context, and a hot-started simplex re-solve
// certifies it there.
// In case of failure, function returns an error alongside the status.
func (s *Solver) solveReduced(ctx *solveContext, solveTime, reducedSolveTime, postsolveTime *float64) (Status, error) {

	opts := &s.options

	red, err := s.presolve.reducedModel()
	if err != nil {
		ctx.scaledStatus = ModelStatusPresolveError
		ctx.unscaledStatus = ModelStatusPresolveError
		return StatusError, errors.Wrap(err, "Run failed")
	}

	rctx := newSolveContext(red, "presolved")
	s.contexts = append(s.contexts, rctx)

	// The reduced problem is solved in minimization form; for a maximization
	// model its objective is negated here and the column duals are flipped
	// around postsolve.
	maximize := ctx.model.Sense == ObjSenseMaximize
	if maximize {
		negateReducedCosts(rctx.model)
	}

	// The dual objective cutoff refers to the original problem and is
	// suspended while the reduced one is solved.
	savedCutoff := opts.DualObjectiveValueUpperBound
	savedCrossover := opts.RunCrossover
	opts.DualObjectiveValueUpperBound = Infinity
	if opts.Solver == SolverIpm && !opts.RunCrossover {
		// Postsolve needs a basis to seed the clean-up re-solve.
		log(pWARN, "Crossover forced on to postsolve a presolved problem")
		opts.RunCrossover = true
	}
	t := timeNow()
	err = runLpSolver(rctx, opts, false)
	*reducedSolveTime += timeNow().Sub(t).Seconds()
	opts.DualObjectiveValueUpperBound = savedCutoff
	opts.RunCrossover = savedCrossover

	ctx.iters.simplex += rctx.iters.simplex
	ctx.iters.ipm += rctx.iters.ipm
	ctx.iters.crossover += rctx.iters.crossover

	if err != nil {
		ctx.scaledStatus = rctx.scaledStatus
		ctx.unscaledStatus = rctx.unscaledStatus
		return StatusError, errors.Wrap(err, "Run failed on the presolved problem")
	}

	if rctx.scaledStatus != ModelStatusOptimal {
		// Infeasibility, unboundedness and limits on the reduced problem
		// hold for the original one.
		ctx.scaledStatus = rctx.scaledStatus
		ctx.unscaledStatus = rctx.unscaledStatus
		return statusFromModelStatus(rctx.scaledStatus), nil
	}

	if maximize {
		negateColDuals(&rctx.solution)
	}
	return s.installPostsolved(ctx, &rctx.solution, &rctx.basis, solveTime, postsolveTime)
}

//==============================================================================

// installPostsolved lifts a reduced-space solution into the original context
// and certifies it there with a hot-started, single-threaded simplex
// re-solve under the caller's other options. The reverse replay is charged
// to the postsolve span and the re-solve to the solve span.
// In case of failure, function returns an error alongside the status.
func (s *Solver) installPostsolved(ctx *solveContext, redSol *Solution, redBasis *Basis, solveTime, postsolveTime *float64) (Status, error) {

	opts := &s.options

	t := timeNow()
	sol, basis, pst := s.presolve.postsolve(redSol, redBasis)
	*postsolveTime += timeNow().Sub(t).Seconds()
	if pst != PostsolveStatusSolutionRecovered {
		ctx.scaledStatus = ModelStatusPostsolveError
		ctx.unscaledStatus = ModelStatusPostsolveError
		return StatusError, errors.Errorf("postsolve failed with status %s", pst)
	}
	if ctx.model.Sense == ObjSenseMaximize {
		negateColDuals(&sol)
	}
	ctx.solution = sol
	ctx.basis = basis
	ctx.demote(stateLoaded)

	log(pINFO, "Postsolve recovered a full solution, re-solving from its basis")

	savedSolver := opts.Solver
	savedMin, savedMax := opts.MinThreads, opts.MaxThreads
	opts.Solver = SolverSimplex
	opts.MinThreads, opts.MaxThreads = 1, 1
	t = timeNow()
	err := runLpSolver(ctx, opts, ctx.basis.Valid)
	*solveTime += timeNow().Sub(t).Seconds()
	opts.Solver = savedSolver
	opts.MinThreads, opts.MaxThreads = savedMin, savedMax
	if err != nil {
		return StatusError, errors.Wrap(err, "clean-up re-solve failed")
	}

	if ctx.iters.simplex > 0 {
		log(pINFO, "Clean-up re-solve took %d simplex iterations", ctx.iters.simplex)
	}
	return s.reconcileStatus(ctx, true), nil
}

//==============================================================================

// reconcileStatus settles the scaled and unscaled status pair of a solved
// context. When the solver certified optimality only in its own view, the
// solution is checked against the unscaled tolerances; if that check fails
// and a re-run is still allowed, the context is solved once more from a
// logical basis with presolve out of the way.
func (s *Solver) reconcileStatus(ctx *solveContext, allowRerun bool) Status {

	if ctx.unscaledStatus != ModelStatusNotSet {
		return statusFromModelStatus(ctx.unscaledStatus)
	}

	if ctx.scaledStatus != ModelStatusOptimal {
		ctx.unscaledStatus = ctx.scaledStatus
		return statusFromModelStatus(ctx.unscaledStatus)
	}

	if ctx.params.primalStatus == SolutionStatusFeasiblePoint &&
		ctx.params.dualStatus == SolutionStatusFeasiblePoint {
		ctx.unscaledStatus = ModelStatusOptimal
		return StatusOK
	}

	if !allowRerun {
		log(pWARN, "Solver claims optimality but the solution fails the tolerances")
		ctx.unscaledStatus = ModelStatusNotSet
		return StatusWarning
	}

	// One forced re-run from a logical basis settles the disagreement.
	log(pINFO, "Re-solving %s to certify optimality", ctx.name)
	ctx.basis.clear()
	ctx.demote(stateLoaded)
	ctx.resetStatus()
	savedSolver := s.options.Solver
	s.options.Solver = SolverSimplex
	err := runLpSolver(ctx, &s.options, false)
	s.options.Solver = savedSolver
	if err != nil {
		ctx.scaledStatus = ModelStatusSolveError
		ctx.unscaledStatus = ModelStatusSolveError
		return StatusError
	}
	return s.reconcileStatus(ctx, false)
}

//==============================================================================

// harvestInfo fills the retained Info from a solved context and the presolve
// session of this run.
func (s *Solver) harvestInfo(ctx *solveContext) {

	s.info.clear()
	s.info.PrimalStatus = ctx.params.primalStatus
	s.info.DualStatus = ctx.params.dualStatus
	s.info.SimplexIterationCount = ctx.iters.simplex
	s.info.IpmIterationCount = ctx.iters.ipm
	s.info.CrossoverIterationCount = ctx.iters.crossover

	if len(ctx.solution.ColValue) == ctx.model.NumCol {
		s.info.ObjectiveFunctionValue = objectiveValue(ctx.model, ctx.solution.ColValue)
	}
	s.info.NumPrimalInfeasibilities = ctx.params.numPrimalInfeasibility
	s.info.MaxPrimalInfeasibility = ctx.params.maxPrimalInfeasibility
	s.info.SumPrimalInfeasibilities = ctx.params.sumPrimalInfeasibility
	s.info.NumDualInfeasibilities = ctx.params.numDualInfeasibility
	s.info.MaxDualInfeasibility = ctx.params.maxDualInfeasibility
	s.info.SumDualInfeasibilities = ctx.params.sumDualInfeasibility

	if s.presolve != nil {
		rows, cols, nz := s.presolve.reductionCounts()
		s.info.PresolveRowsRemoved = rows
		s.info.PresolveColsRemoved = cols
		s.info.PresolveNzRemoved = nz
	}
}
