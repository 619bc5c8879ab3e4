package highs

// finalize: the rules applied on every path out of Run. All exits funnel
// through beforeReturnFromRun, which prunes the context pool back to the
// original problem and decides, from the final model status alone, which of
// the retained solution, basis and info survive the return. The mapping is
// total over the model status enumeration.

//==============================================================================

// beforeReturnFromRun applies the retention rules for the final model status
// and merges the resulting status with the one the run produced. Transient
// contexts created during the run are discarded here.
func (s *Solver) beforeReturnFromRun(runStatus Status) Status {

	if len(s.contexts) > 1 {
		s.contexts = s.contexts[:1]
	}

	var mapped Status
	switch s.modelStatus {

	case ModelStatusNotSet,
		ModelStatusLoadError,
		ModelStatusModelError,
		ModelStatusSolveError,
		ModelStatusPostsolveError:
		s.clearSolution()
		s.clearBasis()
		s.clearInfo()
		mapped = StatusError

	case ModelStatusPresolveError:
		// A presolve failure retains nothing, but its severity comes from
		// the run: a timeout or options problem ends as a Warning, a genuine
		// engine failure carries an Error in the run status.
		s.clearSolution()
		s.clearBasis()
		s.clearInfo()
		mapped = StatusWarning

	case ModelStatusModelEmpty:
		s.clearSolution()
		s.clearBasis()
		s.clearInfo()
		mapped = StatusOK

	case ModelStatusPrimalInfeasible:
		// The basis and the infeasibility measures document the proof of
		// infeasibility; only the solution values are meaningless.
		s.clearSolution()
		mapped = StatusOK

	case ModelStatusPrimalUnbounded:
		// The basis shows the unbounded ray's starting point, but no finite
		// objective or feasibility measures exist.
		s.clearSolution()
		s.clearInfo()
		mapped = StatusOK

	case ModelStatusReachedDualObjectiveUpperBound:
		s.clearSolution()
		s.clearBasis()
		s.clearInfo()
		mapped = StatusOK

	case ModelStatusOptimal:
		mapped = StatusOK

	case ModelStatusReachedTimeLimit,
		ModelStatusReachedIterationLimit:
		s.clearSolution()
		s.clearBasis()
		s.clearInfo()
		mapped = StatusWarning

	default:
		s.clearSolution()
		s.clearBasis()
		s.clearInfo()
		mapped = StatusError
	}

	if s.lp != nil {
		// Whatever survived must be dimensioned for the original problem.
		if !isSolutionConsistent(s.lp, &s.solution) {
			s.clearSolution()
		}
		if s.basis.Valid && !isBasisConsistent(s.lp, &s.basis) {
			s.basis.clear()
		}
	}

	return combineStatus(mapped, runStatus)
}
