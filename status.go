package highs

// status: status enumerations shared by the run orchestrator, the solver
// dispatcher, and the presolve engine, together with the rules for combining
// them into the aggregate tri-state result returned by public calls.

//==============================================================================

// Status is the aggregate return code of a public call. Per-stage codes are
// combined by combineStatus under a "worst wins" rule, so a Warning from one
// stage can never mask an Error from another.
type Status int

const (
	StatusOK Status = iota
	StatusWarning
	StatusError
)

//==============================================================================

// String returns the printable name of the aggregate status.
func (s Status) String() string {
	switch s {
	case StatusOK:
		return "OK"
	case StatusWarning:
		return "Warning"
	case StatusError:
		return "Error"
	}
	return "Unknown"
}

//==============================================================================

// combineStatus merges the status of a secondary call into the status
// accumulated so far. Error dominates Warning, which dominates OK.
func combineStatus(callStatus, returnStatus Status) Status {
	if callStatus > returnStatus {
		return callStatus
	}
	return returnStatus
}

//==============================================================================

// ModelStatus describes the outcome of solving (or failing to solve) a model.
// A run always records two of these: the status seen by whichever solver last
// ran, possibly on a scaled or reduced problem, and the status that holds for
// the caller's original problem. The two are reconciled before Run returns.
type ModelStatus int

const (
	ModelStatusNotSet ModelStatus = iota
	ModelStatusLoadError
	ModelStatusModelError
	ModelStatusPresolveError
	ModelStatusSolveError
	ModelStatusPostsolveError
	ModelStatusModelEmpty
	ModelStatusPrimalInfeasible
	ModelStatusPrimalUnbounded
	ModelStatusOptimal
	ModelStatusReachedDualObjectiveUpperBound
	ModelStatusReachedTimeLimit
	ModelStatusReachedIterationLimit
)

// numModelStatus bounds the enumeration for totality checks in tests.
const numModelStatus = int(ModelStatusReachedIterationLimit) + 1

//==============================================================================

// String returns the printable name of the model status.
func (ms ModelStatus) String() string {
	switch ms {
	case ModelStatusNotSet:
		return "Not set"
	case ModelStatusLoadError:
		return "Load error"
	case ModelStatusModelError:
		return "Model error"
	case ModelStatusPresolveError:
		return "Presolve error"
	case ModelStatusSolveError:
		return "Solve error"
	case ModelStatusPostsolveError:
		return "Postsolve error"
	case ModelStatusModelEmpty:
		return "Model empty"
	case ModelStatusPrimalInfeasible:
		return "Primal infeasible"
	case ModelStatusPrimalUnbounded:
		return "Primal unbounded"
	case ModelStatusOptimal:
		return "Optimal"
	case ModelStatusReachedDualObjectiveUpperBound:
		return "Reached dual objective upper bound"
	case ModelStatusReachedTimeLimit:
		return "Reached time limit"
	case ModelStatusReachedIterationLimit:
		return "Reached iteration limit"
	}
	return "Unknown"
}

//==============================================================================

// statusFromModelStatus maps a model status to the aggregate status that a
// run finishing in that state must report. The mapping is total: every value
// of the enumeration is assigned a rule, and an unknown value is an Error.
func statusFromModelStatus(ms ModelStatus) Status {
	switch ms {
	case ModelStatusNotSet,
		ModelStatusLoadError,
		ModelStatusModelError,
		ModelStatusPresolveError,
		ModelStatusSolveError,
		ModelStatusPostsolveError:
		return StatusError

	case ModelStatusModelEmpty,
		ModelStatusPrimalInfeasible,
		ModelStatusPrimalUnbounded,
		ModelStatusOptimal,
		ModelStatusReachedDualObjectiveUpperBound:
		return StatusOK

	case ModelStatusReachedTimeLimit,
		ModelStatusReachedIterationLimit:
		return StatusWarning
	}
	return StatusError
}

//==============================================================================

// PresolveStatus is the outcome reported by the presolve engine. The run
// orchestrator branches exhaustively on these values.
type PresolveStatus int

const (
	PresolveStatusNotPresolved PresolveStatus = iota
	PresolveStatusNotReduced
	PresolveStatusReduced
	PresolveStatusReducedToEmpty
	PresolveStatusInfeasible
	PresolveStatusUnbounded
	PresolveStatusTimeout
	PresolveStatusOptionsError
	PresolveStatusNullError
	PresolveStatusError
)

//==============================================================================

// String returns the printable name of the presolve status.
func (ps PresolveStatus) String() string {
	switch ps {
	case PresolveStatusNotPresolved:
		return "Not presolved"
	case PresolveStatusNotReduced:
		return "Not reduced"
	case PresolveStatusReduced:
		return "Reduced"
	case PresolveStatusReducedToEmpty:
		return "Reduced to empty"
	case PresolveStatusInfeasible:
		return "Infeasible"
	case PresolveStatusUnbounded:
		return "Unbounded"
	case PresolveStatusTimeout:
		return "Timeout"
	case PresolveStatusOptionsError:
		return "Options error"
	case PresolveStatusNullError:
		return "Null error"
	case PresolveStatusError:
		return "Error"
	}
	return "Unknown"
}

//==============================================================================

// PostsolveStatus is the outcome reported by the postsolve operation.
type PostsolveStatus int

const (
	PostsolveStatusSolutionRecovered PostsolveStatus = iota
	PostsolveStatusReducedSolutionDimensionError
	PostsolveStatusNoPostsolve
	PostsolveStatusError
)

//==============================================================================

// String returns the printable name of the postsolve status.
func (pt PostsolveStatus) String() string {
	switch pt {
	case PostsolveStatusSolutionRecovered:
		return "Solution recovered"
	case PostsolveStatusReducedSolutionDimensionError:
		return "Reduced solution dimension error"
	case PostsolveStatusNoPostsolve:
		return "No postsolve"
	case PostsolveStatusError:
		return "Error"
	}
	return "Unknown"
}

//==============================================================================

// solveState tracks how far a solve context has progressed. States are
// ordered, and a context may only be promoted one step at a time by the
// component that did the work; edits demote the state as appropriate.
type solveState int

const (
	stateEmpty solveState = iota
	stateLoaded
	stateFactorized
	stateSolved
)

//==============================================================================

// String returns the printable name of the context state.
func (st solveState) String() string {
	switch st {
	case stateEmpty:
		return "empty"
	case stateLoaded:
		return "loaded"
	case stateFactorized:
		return "factorized"
	case stateSolved:
		return "solved"
	}
	return "unknown"
}
