package highs

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// context: the solve context pool. Each context owns a working copy of a
// model (original or reduced) together with its basis, solution, status pair
// and solver-readiness state. Context 0 always holds the original problem;
// any further context is transient within a single Run. The structural-edit
// methods on a context form the solver-facing interface used by the
// incremental editor: each either succeeds completely or leaves the context
// untouched, and on success demotes the context state as appropriate.

//==============================================================================

// solveContext is one entry of the pool.
type solveContext struct {
	model          *Model          // problem data owned by this context
	basis          Basis           // basis for this context's model
	solution       Solution        // solution for this context's model
	scaledStatus   ModelStatus     // status seen by the solver that last ran
	unscaledStatus ModelStatus     // status holding for this context's model
	state          solveState      // readiness, guarded transitions only
	iters          iterationCounts // solver effort spent on this context
	params         solutionParams  // feasibility measures of the last solve
	lu             *mat.LU         // factorization of the final basis matrix
	basicIndex     []int           // basic variable per row; >= NumCol means slack
	name           string          // label used in log output
}

// solutionParams captures the feasibility measures harvested into Info.
type solutionParams struct {
	primalStatus            int
	dualStatus              int
	objective               float64
	numPrimalInfeasibility  int
	maxPrimalInfeasibility  float64
	sumPrimalInfeasibility  float64
	numDualInfeasibility    int
	maxDualInfeasibility    float64
	sumDualInfeasibility    float64
}

//==============================================================================

// newSolveContext wraps a model copy in a fresh context.
func newSolveContext(m *Model, name string) *solveContext {
	return &solveContext{
		model:          copyModel(m),
		scaledStatus:   ModelStatusNotSet,
		unscaledStatus: ModelStatusNotSet,
		state:          stateLoaded,
		name:           name,
	}
}

//==============================================================================

// demote lowers the context state to at most the given state, discarding the
// factorization whenever the context drops below stateFactorized.
func (ctx *solveContext) demote(to solveState) {
	if ctx.state > to {
		ctx.state = to
	}
	if ctx.state < stateFactorized {
		ctx.lu = nil
		ctx.basicIndex = nil
	}
}

//==============================================================================

// resetStatus clears the status pair and solution parameters ahead of a
// fresh solve of this context.
func (ctx *solveContext) resetStatus() {
	ctx.scaledStatus = ModelStatusNotSet
	ctx.unscaledStatus = ModelStatusNotSet
	ctx.params = solutionParams{
		primalStatus: SolutionStatusNotSet,
		dualStatus:   SolutionStatusNotSet,
	}
}

//==============================================================================
// SOLVER-FACING STRUCTURAL-EDIT INTERFACE
//==============================================================================

// ctxAddCols appends columns to the context model. New columns enter the
// basis as nonbasic at their preferred bound, so a valid basis stays valid.
// In case of failure, function returns an error with no state change.
func (ctx *solveContext) ctxAddCols(costs, lowers, uppers []float64,
	starts, indices []int, values []float64) error {

	m := ctx.model
	numNew := len(costs)
	if len(lowers) != numNew || len(uppers) != numNew {
		return errors.Errorf("addCols received %d costs but %d/%d bounds",
			numNew, len(lowers), len(uppers))
	}
	if len(starts) != numNew {
		return errors.Errorf("addCols received %d columns but %d starts", numNew, len(starts))
	}
	if len(indices) != len(values) {
		return errors.Errorf("addCols received %d indices but %d values",
			len(indices), len(values))
	}

	// Validate the new nonzeros before touching the model.
	for k := 0; k < numNew; k++ {
		end := len(indices)
		if k+1 < numNew {
			end = starts[k+1]
		}
		if starts[k] < 0 || starts[k] > end {
			return errors.Errorf("addCols has malformed start %d for column %d", starts[k], k)
		}
		for el := starts[k]; el < end; el++ {
			if indices[el] < 0 || indices[el] >= m.NumRow {
				return errors.Errorf("addCols row index %d out of range [0, %d)",
					indices[el], m.NumRow)
			}
		}
	}
	for k := 0; k < numNew; k++ {
		if lowers[k] > uppers[k] {
			return errors.Errorf("addCols column %d has lower bound above upper bound", k)
		}
	}

	for k := 0; k < numNew; k++ {
		end := len(indices)
		if k+1 < numNew {
			end = starts[k+1]
		}
		m.ColCost = append(m.ColCost, costs[k])
		m.ColLower = append(m.ColLower, clampBound(lowers[k]))
		m.ColUpper = append(m.ColUpper, clampBound(uppers[k]))
		for el := starts[k]; el < end; el++ {
			m.AIndex = append(m.AIndex, indices[el])
			m.AValue = append(m.AValue, values[el])
		}
		m.AStart = append(m.AStart, len(m.AIndex))
		if ctx.basis.Valid {
			ctx.basis.ColStatus = append(ctx.basis.ColStatus,
				nonbasicStatusFor(m.ColLower[m.NumCol], m.ColUpper[m.NumCol]))
		}
		m.NumCol++
	}

	// Nonbasic additions leave the basis matrix untouched, so any
	// factorization survives; the solved solution does not.
	ctx.demote(stateFactorized)
	return nil
}

//==============================================================================

// ctxAddRows appends rows to the context model. Row nonzeros arrive row-wise
// and are merged into the column-wise matrix. New rows enter the basis with
// their logical (slack) variable basic, so a valid basis stays valid, but
// the factorization no longer matches and is discarded.
// In case of failure, function returns an error with no state change.
func (ctx *solveContext) ctxAddRows(lowers, uppers []float64,
	starts, indices []int, values []float64) error {

	m := ctx.model
	numNew := len(lowers)
	if len(uppers) != numNew {
		return errors.Errorf("addRows received %d lower but %d upper bounds",
			numNew, len(uppers))
	}
	if len(starts) != numNew {
		return errors.Errorf("addRows received %d rows but %d starts", numNew, len(starts))
	}
	if len(indices) != len(values) {
		return errors.Errorf("addRows received %d indices but %d values",
			len(indices), len(values))
	}
	for k := 0; k < numNew; k++ {
		if lowers[k] > uppers[k] {
			return errors.Errorf("addRows row %d has lower bound above upper bound", k)
		}
		end := len(indices)
		if k+1 < numNew {
			end = starts[k+1]
		}
		if starts[k] < 0 || starts[k] > end {
			return errors.Errorf("addRows has malformed start %d for row %d", starts[k], k)
		}
		for el := starts[k]; el < end; el++ {
			if indices[el] < 0 || indices[el] >= m.NumCol {
				return errors.Errorf("addRows column index %d out of range [0, %d)",
					indices[el], m.NumCol)
			}
		}
	}

	// Collect the new entries per column, then rebuild the CSC arrays with
	// the appended rows spliced into place.
	perCol := make([][]int, m.NumCol)    // positions into indices/values
	for k := 0; k < numNew; k++ {
		end := len(indices)
		if k+1 < numNew {
			end = starts[k+1]
		}
		for el := starts[k]; el < end; el++ {
			perCol[indices[el]] = append(perCol[indices[el]], el)
		}
	}
	rowOf := make([]int, len(indices))
	for k := 0; k < numNew; k++ {
		end := len(indices)
		if k+1 < numNew {
			end = starts[k+1]
		}
		for el := starts[k]; el < end; el++ {
			rowOf[el] = m.NumRow + k
		}
	}

	newStart := make([]int, m.NumCol+1)
	newIndex := make([]int, 0, len(m.AIndex)+len(indices))
	newValue := make([]float64, 0, len(m.AValue)+len(values))
	for j := 0; j < m.NumCol; j++ {
		newStart[j] = len(newIndex)
		for el := m.AStart[j]; el < m.AStart[j+1]; el++ {
			newIndex = append(newIndex, m.AIndex[el])
			newValue = append(newValue, m.AValue[el])
		}
		for _, el := range perCol[j] {
			newIndex = append(newIndex, rowOf[el])
			newValue = append(newValue, values[el])
		}
	}
	newStart[m.NumCol] = len(newIndex)

	m.AStart = newStart
	m.AIndex = newIndex
	m.AValue = newValue
	for k := 0; k < numNew; k++ {
		m.RowLower = append(m.RowLower, clampBound(lowers[k]))
		m.RowUpper = append(m.RowUpper, clampBound(uppers[k]))
		if ctx.basis.Valid {
			ctx.basis.RowStatus = append(ctx.basis.RowStatus, BasisStatusBasic)
		}
	}
	m.NumRow += numNew

	ctx.demote(stateLoaded)
	return nil
}

//==============================================================================

// ctxDeleteCols removes the columns selected by the keep mask (true keeps).
// If every deleted column was nonbasic the basis survives; deleting a basic
// column invalidates it. In case of failure, function returns an error.
func (ctx *solveContext) ctxDeleteCols(keep []bool) error {

	m := ctx.model
	if len(keep) != m.NumCol {
		return errors.Errorf("deleteCols mask has length %d, want %d", len(keep), m.NumCol)
	}

	basisSurvives := ctx.basis.Valid
	if ctx.basis.Valid {
		for j := 0; j < m.NumCol; j++ {
			if !keep[j] && ctx.basis.ColStatus[j] == BasisStatusBasic {
				basisSurvives = false
				break
			}
		}
	}

	newStart := make([]int, 0, m.NumCol+1)
	newIndex := make([]int, 0, len(m.AIndex))
	newValue := make([]float64, 0, len(m.AValue))
	newCost := make([]float64, 0, m.NumCol)
	newLower := make([]float64, 0, m.NumCol)
	newUpper := make([]float64, 0, m.NumCol)
	newColStatus := make([]BasisStatus, 0, m.NumCol)

	for j := 0; j < m.NumCol; j++ {
		if !keep[j] {
			continue
		}
		newStart = append(newStart, len(newIndex))
		for el := m.AStart[j]; el < m.AStart[j+1]; el++ {
			newIndex = append(newIndex, m.AIndex[el])
			newValue = append(newValue, m.AValue[el])
		}
		newCost = append(newCost, m.ColCost[j])
		newLower = append(newLower, m.ColLower[j])
		newUpper = append(newUpper, m.ColUpper[j])
		if basisSurvives {
			newColStatus = append(newColStatus, ctx.basis.ColStatus[j])
		}
	}
	newStart = append(newStart, len(newIndex))

	m.NumCol = len(newCost)
	m.ColCost = newCost
	m.ColLower = newLower
	m.ColUpper = newUpper
	m.AStart = newStart
	m.AIndex = newIndex
	m.AValue = newValue

	if basisSurvives {
		ctx.basis.ColStatus = newColStatus
	} else {
		ctx.basis.clear()
	}
	ctx.demote(stateLoaded)
	return nil
}

//==============================================================================

// ctxDeleteRows removes the rows selected by the keep mask (true keeps).
// If every deleted row had a basic logical variable the basis survives;
// otherwise it is invalidated. In case of failure, function returns an error.
func (ctx *solveContext) ctxDeleteRows(keep []bool) error {

	m := ctx.model
	if len(keep) != m.NumRow {
		return errors.Errorf("deleteRows mask has length %d, want %d", len(keep), m.NumRow)
	}

	basisSurvives := ctx.basis.Valid
	if ctx.basis.Valid {
		for i := 0; i < m.NumRow; i++ {
			if !keep[i] && ctx.basis.RowStatus[i] != BasisStatusBasic {
				basisSurvives = false
				break
			}
		}
	}

	// Old-to-new row index map.
	rowMap := make([]int, m.NumRow)
	numKept := 0
	for i := 0; i < m.NumRow; i++ {
		if keep[i] {
			rowMap[i] = numKept
			numKept++
		} else {
			rowMap[i] = -1
		}
	}

	newStart := make([]int, 0, m.NumCol+1)
	newIndex := make([]int, 0, len(m.AIndex))
	newValue := make([]float64, 0, len(m.AValue))
	for j := 0; j < m.NumCol; j++ {
		newStart = append(newStart, len(newIndex))
		for el := m.AStart[j]; el < m.AStart[j+1]; el++ {
			ni := rowMap[m.AIndex[el]]
			if ni < 0 {
				continue
			}
			newIndex = append(newIndex, ni)
			newValue = append(newValue, m.AValue[el])
		}
	}
	newStart = append(newStart, len(newIndex))

	newLower := make([]float64, 0, numKept)
	newUpper := make([]float64, 0, numKept)
	newRowStatus := make([]BasisStatus, 0, numKept)
	for i := 0; i < m.NumRow; i++ {
		if !keep[i] {
			continue
		}
		newLower = append(newLower, m.RowLower[i])
		newUpper = append(newUpper, m.RowUpper[i])
		if basisSurvives {
			newRowStatus = append(newRowStatus, ctx.basis.RowStatus[i])
		}
	}

	m.NumRow = numKept
	m.RowLower = newLower
	m.RowUpper = newUpper
	m.AStart = newStart
	m.AIndex = newIndex
	m.AValue = newValue

	if basisSurvives {
		ctx.basis.RowStatus = newRowStatus
	} else {
		ctx.basis.clear()
	}
	ctx.demote(stateLoaded)
	return nil
}

//==============================================================================

// ctxChangeCosts updates the objective coefficients of the selected columns.
// In case of failure, function returns an error with no state change.
func (ctx *solveContext) ctxChangeCosts(set []int, costs []float64) error {

	m := ctx.model
	if len(set) != len(costs) {
		return errors.Errorf("changeCosts received %d indices but %d costs",
			len(set), len(costs))
	}
	for _, j := range set {
		if j < 0 || j >= m.NumCol {
			return errors.Errorf("changeCosts column %d out of range [0, %d)", j, m.NumCol)
		}
	}
	for k, j := range set {
		m.ColCost[j] = costs[k]
	}
	ctx.demote(stateFactorized)
	return nil
}

//==============================================================================

// ctxChangeColBounds updates the bounds of the selected columns.
// In case of failure, function returns an error with no state change.
func (ctx *solveContext) ctxChangeColBounds(set []int, lowers, uppers []float64) error {

	m := ctx.model
	if len(set) != len(lowers) || len(set) != len(uppers) {
		return errors.Errorf("changeColBounds received %d indices but %d/%d bounds",
			len(set), len(lowers), len(uppers))
	}
	for k, j := range set {
		if j < 0 || j >= m.NumCol {
			return errors.Errorf("changeColBounds column %d out of range [0, %d)", j, m.NumCol)
		}
		if lowers[k] > uppers[k] {
			return errors.Errorf("changeColBounds column %d lower bound above upper bound", j)
		}
	}
	for k, j := range set {
		m.ColLower[j] = clampBound(lowers[k])
		m.ColUpper[j] = clampBound(uppers[k])
	}
	ctx.demote(stateFactorized)
	return nil
}

//==============================================================================

// ctxChangeRowBounds updates the bounds of the selected rows.
// In case of failure, function returns an error with no state change.
func (ctx *solveContext) ctxChangeRowBounds(set []int, lowers, uppers []float64) error {

	m := ctx.model
	if len(set) != len(lowers) || len(set) != len(uppers) {
		return errors.Errorf("changeRowBounds received %d indices but %d/%d bounds",
			len(set), len(lowers), len(uppers))
	}
	for k, i := range set {
		if i < 0 || i >= m.NumRow {
			return errors.Errorf("changeRowBounds row %d out of range [0, %d)", i, m.NumRow)
		}
		if lowers[k] > uppers[k] {
			return errors.Errorf("changeRowBounds row %d lower bound above upper bound", i)
		}
	}
	for k, i := range set {
		m.RowLower[i] = clampBound(lowers[k])
		m.RowUpper[i] = clampBound(uppers[k])
	}
	ctx.demote(stateFactorized)
	return nil
}

//==============================================================================

// ctxChangeCoeff sets a single matrix coefficient, inserting or removing the
// element as needed. A zero value removes the element.
// In case of failure, function returns an error with no state change.
func (ctx *solveContext) ctxChangeCoeff(row, col int, value float64) error {

	m := ctx.model
	if row < 0 || row >= m.NumRow {
		return errors.Errorf("changeCoeff row %d out of range [0, %d)", row, m.NumRow)
	}
	if col < 0 || col >= m.NumCol {
		return errors.Errorf("changeCoeff column %d out of range [0, %d)", col, m.NumCol)
	}

	pos := -1
	for el := m.AStart[col]; el < m.AStart[col+1]; el++ {
		if m.AIndex[el] == row {
			pos = el
			break
		}
	}

	switch {
	case pos >= 0 && value != 0:
		m.AValue[pos] = value

	case pos >= 0 && value == 0:
		m.AIndex = append(m.AIndex[:pos], m.AIndex[pos+1:]...)
		m.AValue = append(m.AValue[:pos], m.AValue[pos+1:]...)
		for j := col + 1; j <= m.NumCol; j++ {
			m.AStart[j]--
		}

	case pos < 0 && value != 0:
		pos = m.AStart[col+1]
		m.AIndex = append(m.AIndex, 0)
		copy(m.AIndex[pos+1:], m.AIndex[pos:])
		m.AIndex[pos] = row
		m.AValue = append(m.AValue, 0)
		copy(m.AValue[pos+1:], m.AValue[pos:])
		m.AValue[pos] = value
		for j := col + 1; j <= m.NumCol; j++ {
			m.AStart[j]++
		}
	}

	ctx.demote(stateLoaded)
	return nil
}

//==============================================================================

// ctxChangeObjectiveSense flips the optimization direction.
func (ctx *solveContext) ctxChangeObjectiveSense(sense ObjSense) error {
	if sense != ObjSenseMinimize && sense != ObjSenseMaximize {
		return errors.Errorf("illegal objective sense %d", sense)
	}
	ctx.model.Sense = sense
	ctx.demote(stateFactorized)
	return nil
}

//==============================================================================

// nonbasicStatusFor chooses the nonbasic basis status natural for a variable
// with the given bounds.
func nonbasicStatusFor(lower, upper float64) BasisStatus {
	switch {
	case isFinite(lower):
		return BasisStatusLower
	case isFinite(upper):
		return BasisStatusUpper
	default:
		return BasisStatusZero
	}
}
