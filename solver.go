package highs

import (
	"time"

	"github.com/pkg/errors"

	"github.com/zeta1999/HiGHS/mps"
)

// solver: the Solver type and its model, solution and basis management
// calls. Run itself lives in run.go; the finalization rules it applies
// before returning live in finalize.go.

//==============================================================================

// Solver holds one problem together with its options, its retained solution
// state and the solve context pool. A zero Solver is not usable; construct
// one with New.
type Solver struct {
	lp       *Model          // the problem in original dimensions, nil if none
	options  Options         // live option values
	contexts []*solveContext // pool; index 0 holds the original problem

	solution Solution // retained solution in original dimensions
	basis    Basis    // retained basis in original dimensions
	info     Info     // retained solution information

	modelStatus       ModelStatus // status holding for the original problem
	scaledModelStatus ModelStatus // status seen by the solver that last ran

	presolve *presolveSession // session of the last presolved Run, if any

	runTime float64 // seconds spent inside Run calls
}

//==============================================================================

// New returns a Solver with default options and no model.
func New() *Solver {
	return &Solver{
		options:           defaultOptions(),
		modelStatus:       ModelStatusNotSet,
		scaledModelStatus: ModelStatusNotSet,
	}
}

//==============================================================================

// PassModel copies a model into the solver, replacing whatever model was
// held before. The model is validated and its bounds are normalized; all
// retained solution state is cleared.
// In case of failure, function returns an error and the solver keeps no model.
func (s *Solver) PassModel(m *Model) (Status, error) {

	work := copyModel(m)
	if err := assessModel(work); err != nil {
		s.lp = nil
		s.contexts = nil
		s.clearSolver()
		s.modelStatus = ModelStatusLoadError
		s.scaledModelStatus = ModelStatusLoadError
		return StatusError, errors.Wrap(err, "PassModel rejected the model")
	}

	s.lp = work
	ctx := newSolveContext(work, "original")
	ctx.model = work // context 0 shares the original problem with the solver
	s.contexts = []*solveContext{ctx}
	s.clearSolver()
	s.presolve = nil
	return StatusOK, nil
}

//==============================================================================

// ReadModel reads a model from an MPS file and passes it to the solver. The
// model name is taken from the file path.
// In case of failure, function returns an error.
func (s *Solver) ReadModel(path string) (Status, error) {

	prob, err := mps.Read(path)
	if err != nil {
		s.modelStatus = ModelStatusLoadError
		return StatusError, errors.Wrapf(err, "failed to read model from %s", path)
	}

	return s.PassModel(modelFromMps(prob))
}

//==============================================================================

// WriteModel writes the solver's model to an MPS file.
// In case of failure, function returns an error.
func (s *Solver) WriteModel(path string) (Status, error) {

	if s.lp == nil {
		return StatusError, errors.Errorf("no model to write")
	}

	if err := mps.Write(path, mpsFromModel(s.lp)); err != nil {
		return StatusError, errors.Wrapf(err, "failed to write model to %s", path)
	}
	return StatusOK, nil
}

//==============================================================================

// ClearModel removes the model and all retained solution state. Options are
// kept.
func (s *Solver) ClearModel() Status {
	s.lp = nil
	s.contexts = nil
	s.presolve = nil
	s.clearSolver()
	return StatusOK
}

//==============================================================================

// Reset restores the solver to its as-constructed state, clearing the model
// and resetting all options to their defaults.
func (s *Solver) Reset() Status {
	s.ClearModel()
	s.options = defaultOptions()
	s.runTime = 0
	return StatusOK
}

//==============================================================================
// ACCESSORS
//==============================================================================

// Lp returns the solver's model, or nil if none is loaded. The returned
// model is live; use the editor calls to modify it.
func (s *Solver) Lp() *Model {
	return s.lp
}

// Solution returns the retained solution. Its arrays are empty unless the
// last Run left a solution behind.
func (s *Solver) Solution() *Solution {
	return &s.solution
}

// Basis returns the retained basis. Check Valid before using the statuses.
func (s *Solver) Basis() *Basis {
	return &s.basis
}

// Info returns the retained solution information.
func (s *Solver) Info() *Info {
	return &s.info
}

// ModelStatus returns the status holding for the original problem, or, when
// scaled is true, the status seen by whichever solver last ran.
func (s *Solver) ModelStatus(scaled bool) ModelStatus {
	if scaled {
		return s.scaledModelStatus
	}
	return s.modelStatus
}

// RunTime returns the seconds spent inside Run calls since the solver was
// constructed or Reset.
func (s *Solver) RunTime() float64 {
	return s.runTime
}

// GetPresolveReductionCounts reports the rows, columns and nonzeros removed
// by presolve in the last Run, or zeros if presolve did not run.
func (s *Solver) GetPresolveReductionCounts() (rows, cols, nz int) {
	if s.presolve == nil {
		return 0, 0, 0
	}
	return s.presolve.reductionCounts()
}

//==============================================================================
// SOLUTION AND BASIS MANAGEMENT
//==============================================================================

// SetBasis installs a caller-supplied basis as the retained basis and hands
// it to the original context for the next Run to warm-start from. The basis
// must be dimensioned exactly for the current model.
// In case of failure, function returns an error and the basis is unchanged.
func (s *Solver) SetBasis(b *Basis) (Status, error) {

	if s.lp == nil {
		return StatusError, errors.Errorf("no model loaded")
	}
	if len(b.ColStatus) != s.lp.NumCol || len(b.RowStatus) != s.lp.NumRow {
		return StatusError, errors.Errorf(
			"basis dimensions %dx%d do not match model %dx%d",
			len(b.ColStatus), len(b.RowStatus), s.lp.NumCol, s.lp.NumRow)
	}

	s.basis = copyBasis(b)
	s.basis.Valid = true
	if len(s.contexts) > 0 {
		s.contexts[0].basis = copyBasis(&s.basis)
		s.contexts[0].demote(stateLoaded)
	}
	return StatusOK, nil
}

//==============================================================================

// ClearBasis invalidates the retained basis, forcing the next Run to start
// cold (and consider presolve again).
func (s *Solver) ClearBasis() Status {
	s.basis.clear()
	if len(s.contexts) > 0 {
		s.contexts[0].basis.clear()
		s.contexts[0].demote(stateLoaded)
	}
	return StatusOK
}

//==============================================================================

// SetSolution installs a caller-supplied solution as the retained solution.
// Column values must be complete; row values are recomputed from them, and
// missing dual arrays are left empty.
// In case of failure, function returns an error and the solution is unchanged.
func (s *Solver) SetSolution(sol *Solution) (Status, error) {

	if s.lp == nil {
		return StatusError, errors.Errorf("no model loaded")
	}
	if len(sol.ColValue) != s.lp.NumCol {
		return StatusError, errors.Errorf(
			"solution has %d column values, model has %d columns",
			len(sol.ColValue), s.lp.NumCol)
	}

	s.solution = copySolution(sol)
	s.solution.RowValue = rowActivities(s.lp, s.solution.ColValue)
	if len(s.solution.ColDual) != 0 && len(s.solution.ColDual) != s.lp.NumCol {
		return StatusError, errors.Errorf("solution has malformed column duals")
	}
	if len(s.solution.RowDual) != 0 && len(s.solution.RowDual) != s.lp.NumRow {
		return StatusError, errors.Errorf("solution has malformed row duals")
	}
	return StatusOK, nil
}

//==============================================================================

// WriteSolution writes the retained solution in a readable form.
// In case of failure, function returns an error.
func (s *Solver) WriteSolution(path string) (Status, error) {

	if s.lp == nil {
		return StatusError, errors.Errorf("no model loaded")
	}
	err := mps.WriteSolution(path, s.lp.Name, s.modelStatus.String(),
		s.info.ObjectiveFunctionValue,
		s.solution.ColValue, s.solution.ColDual,
		s.solution.RowValue, s.solution.RowDual)
	if err != nil {
		return StatusError, errors.Wrapf(err, "failed to write solution to %s", path)
	}
	return StatusOK, nil
}

//==============================================================================
// INTERNAL CLEARING HELPERS
//==============================================================================

// clearSolver drops all retained solution state: solution, basis, info and
// the model status pair.
func (s *Solver) clearSolver() {
	s.clearSolution()
	s.clearBasis()
	s.clearInfo()
	s.clearModelStatus()
}

func (s *Solver) clearSolution() {
	s.solution.clear()
}

func (s *Solver) clearBasis() {
	s.basis.clear()
}

func (s *Solver) clearInfo() {
	s.info.clear()
}

func (s *Solver) clearModelStatus() {
	s.modelStatus = ModelStatusNotSet
	s.scaledModelStatus = ModelStatusNotSet
}

//==============================================================================

// originalContext returns context 0, creating it from the model if the pool
// is empty.
func (s *Solver) originalContext() *solveContext {
	if len(s.contexts) == 0 {
		if s.lp == nil {
			return nil
		}
		ctx := newSolveContext(s.lp, "original")
		ctx.model = s.lp
		s.contexts = []*solveContext{ctx}
	}
	return s.contexts[0]
}

//==============================================================================

// timeNow is a seam for tests that need deterministic timing.
var timeNow = time.Now
