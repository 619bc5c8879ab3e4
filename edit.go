package highs

import (
	"github.com/pkg/errors"
)

// edit: the incremental editing interface of the solver. Every call
// validates its arguments completely before mutating anything, so a failed
// edit leaves the model, the retained solution and the basis exactly as they
// were. Successful edits keep the retained solution arrays sized for the new
// dimensions, adopt the context's view of the basis (which survives exactly
// the edits that cannot disturb it) and drop the model status, which no
// longer describes the edited problem.

//==============================================================================

// AddCol appends one column with the given cost, bounds and nonzeros.
// In case of failure, function returns an error.
func (s *Solver) AddCol(cost, lower, upper float64, indices []int, values []float64) (Status, error) {
	return s.AddCols([]float64{cost}, []float64{lower}, []float64{upper},
		[]int{0}, indices, values)
}

//==============================================================================

// AddCols appends columns in compressed form: starts[k] is the offset of
// column k's nonzeros in indices/values.
// In case of failure, function returns an error.
func (s *Solver) AddCols(costs, lowers, uppers []float64,
	starts, indices []int, values []float64) (Status, error) {

	ctx, err := s.editContext()
	if err != nil {
		return StatusError, err
	}
	if err := ctx.ctxAddCols(costs, lowers, uppers, starts, indices, values); err != nil {
		return StatusError, errors.Wrap(err, "AddCols failed")
	}
	s.afterEdit(ctx)
	return StatusOK, nil
}

//==============================================================================

// AddRow appends one row with the given bounds and nonzeros.
// In case of failure, function returns an error.
func (s *Solver) AddRow(lower, upper float64, indices []int, values []float64) (Status, error) {
	return s.AddRows([]float64{lower}, []float64{upper}, []int{0}, indices, values)
}

//==============================================================================

// AddRows appends rows in compressed row-wise form: starts[k] is the offset
// of row k's nonzeros in indices/values.
// In case of failure, function returns an error.
func (s *Solver) AddRows(lowers, uppers []float64,
	starts, indices []int, values []float64) (Status, error) {

	ctx, err := s.editContext()
	if err != nil {
		return StatusError, err
	}
	if err := ctx.ctxAddRows(lowers, uppers, starts, indices, values); err != nil {
		return StatusError, errors.Wrap(err, "AddRows failed")
	}
	s.afterEdit(ctx)
	return StatusOK, nil
}

//==============================================================================

// DeleteColsByRange removes the columns in [from, to] inclusive.
// In case of failure, function returns an error.
func (s *Solver) DeleteColsByRange(from, to int) (Status, error) {

	ctx, err := s.editContext()
	if err != nil {
		return StatusError, err
	}
	keep, err := keepMaskFromRange(ctx.model.NumCol, from, to)
	if err != nil {
		return StatusError, errors.Wrap(err, "DeleteColsByRange failed")
	}
	if err := ctx.ctxDeleteCols(keep); err != nil {
		return StatusError, errors.Wrap(err, "DeleteColsByRange failed")
	}
	s.afterEdit(ctx)
	return StatusOK, nil
}

//==============================================================================

// DeleteColsBySet removes the columns listed in set.
// In case of failure, function returns an error.
func (s *Solver) DeleteColsBySet(set []int) (Status, error) {

	ctx, err := s.editContext()
	if err != nil {
		return StatusError, err
	}
	keep, err := keepMaskFromSet(ctx.model.NumCol, set)
	if err != nil {
		return StatusError, errors.Wrap(err, "DeleteColsBySet failed")
	}
	if err := ctx.ctxDeleteCols(keep); err != nil {
		return StatusError, errors.Wrap(err, "DeleteColsBySet failed")
	}
	s.afterEdit(ctx)
	return StatusOK, nil
}

//==============================================================================

// DeleteColsByMask removes the columns with a true entry in the mask.
// In case of failure, function returns an error.
func (s *Solver) DeleteColsByMask(mask []bool) (Status, error) {

	ctx, err := s.editContext()
	if err != nil {
		return StatusError, err
	}
	keep, err := keepMaskFromMask(ctx.model.NumCol, mask)
	if err != nil {
		return StatusError, errors.Wrap(err, "DeleteColsByMask failed")
	}
	if err := ctx.ctxDeleteCols(keep); err != nil {
		return StatusError, errors.Wrap(err, "DeleteColsByMask failed")
	}
	s.afterEdit(ctx)
	return StatusOK, nil
}

//==============================================================================

// DeleteRowsByRange removes the rows in [from, to] inclusive.
// In case of failure, function returns an error.
func (s *Solver) DeleteRowsByRange(from, to int) (Status, error) {

	ctx, err := s.editContext()
	if err != nil {
		return StatusError, err
	}
	keep, err := keepMaskFromRange(ctx.model.NumRow, from, to)
	if err != nil {
		return StatusError, errors.Wrap(err, "DeleteRowsByRange failed")
	}
	if err := ctx.ctxDeleteRows(keep); err != nil {
		return StatusError, errors.Wrap(err, "DeleteRowsByRange failed")
	}
	s.afterEdit(ctx)
	return StatusOK, nil
}

//==============================================================================

// DeleteRowsBySet removes the rows listed in set.
// In case of failure, function returns an error.
func (s *Solver) DeleteRowsBySet(set []int) (Status, error) {

	ctx, err := s.editContext()
	if err != nil {
		return StatusError, err
	}
	keep, err := keepMaskFromSet(ctx.model.NumRow, set)
	if err != nil {
		return StatusError, errors.Wrap(err, "DeleteRowsBySet failed")
	}
	if err := ctx.ctxDeleteRows(keep); err != nil {
		return StatusError, errors.Wrap(err, "DeleteRowsBySet failed")
	}
	s.afterEdit(ctx)
	return StatusOK, nil
}

//==============================================================================

// DeleteRowsByMask removes the rows with a true entry in the mask.
// In case of failure, function returns an error.
func (s *Solver) DeleteRowsByMask(mask []bool) (Status, error) {

	ctx, err := s.editContext()
	if err != nil {
		return StatusError, err
	}
	keep, err := keepMaskFromMask(ctx.model.NumRow, mask)
	if err != nil {
		return StatusError, errors.Wrap(err, "DeleteRowsByMask failed")
	}
	if err := ctx.ctxDeleteRows(keep); err != nil {
		return StatusError, errors.Wrap(err, "DeleteRowsByMask failed")
	}
	s.afterEdit(ctx)
	return StatusOK, nil
}

//==============================================================================

// ChangeObjectiveSense switches between minimization and maximization.
// In case of failure, function returns an error.
func (s *Solver) ChangeObjectiveSense(sense ObjSense) (Status, error) {

	ctx, err := s.editContext()
	if err != nil {
		return StatusError, err
	}
	if err := ctx.ctxChangeObjectiveSense(sense); err != nil {
		return StatusError, errors.Wrap(err, "ChangeObjectiveSense failed")
	}
	s.afterEdit(ctx)
	return StatusOK, nil
}

//==============================================================================

// ChangeColCost sets the objective coefficient of one column.
// In case of failure, function returns an error.
func (s *Solver) ChangeColCost(col int, cost float64) (Status, error) {
	return s.ChangeColsCostBySet([]int{col}, []float64{cost})
}

//==============================================================================

// ChangeColsCostBySet sets the objective coefficients of the listed columns.
// In case of failure, function returns an error.
func (s *Solver) ChangeColsCostBySet(set []int, costs []float64) (Status, error) {

	ctx, err := s.editContext()
	if err != nil {
		return StatusError, err
	}
	if err := ctx.ctxChangeCosts(set, costs); err != nil {
		return StatusError, errors.Wrap(err, "ChangeColsCostBySet failed")
	}
	s.afterEdit(ctx)
	return StatusOK, nil
}

//==============================================================================

// ChangeColBounds sets the bounds of one column.
// In case of failure, function returns an error.
func (s *Solver) ChangeColBounds(col int, lower, upper float64) (Status, error) {
	return s.ChangeColsBoundsBySet([]int{col}, []float64{lower}, []float64{upper})
}

//==============================================================================

// ChangeColsBoundsBySet sets the bounds of the listed columns.
// In case of failure, function returns an error.
func (s *Solver) ChangeColsBoundsBySet(set []int, lowers, uppers []float64) (Status, error) {

	ctx, err := s.editContext()
	if err != nil {
		return StatusError, err
	}
	if err := ctx.ctxChangeColBounds(set, lowers, uppers); err != nil {
		return StatusError, errors.Wrap(err, "ChangeColsBoundsBySet failed")
	}
	s.afterEdit(ctx)
	return StatusOK, nil
}

//==============================================================================

// ChangeRowBounds sets the bounds of one row.
// In case of failure, function returns an error.
func (s *Solver) ChangeRowBounds(row int, lower, upper float64) (Status, error) {
	return s.ChangeRowsBoundsBySet([]int{row}, []float64{lower}, []float64{upper})
}

//==============================================================================

// ChangeRowsBoundsBySet sets the bounds of the listed rows.
// In case of failure, function returns an error.
func (s *Solver) ChangeRowsBoundsBySet(set []int, lowers, uppers []float64) (Status, error) {

	ctx, err := s.editContext()
	if err != nil {
		return StatusError, err
	}
	if err := ctx.ctxChangeRowBounds(set, lowers, uppers); err != nil {
		return StatusError, errors.Wrap(err, "ChangeRowsBoundsBySet failed")
	}
	s.afterEdit(ctx)
	return StatusOK, nil
}

//==============================================================================

// ChangeCoeff sets a single constraint matrix coefficient. Setting it to
// zero removes the element.
// In case of failure, function returns an error.
func (s *Solver) ChangeCoeff(row, col int, value float64) (Status, error) {

	ctx, err := s.editContext()
	if err != nil {
		return StatusError, err
	}
	if err := ctx.ctxChangeCoeff(row, col, value); err != nil {
		return StatusError, errors.Wrap(err, "ChangeCoeff failed")
	}
	s.afterEdit(ctx)
	return StatusOK, nil
}

//==============================================================================
// READ-ONLY QUERIES
//==============================================================================

// GetCols returns the costs, bounds and nonzeros of the columns in
// [from, to] inclusive, in the same compressed form AddCols accepts.
// In case of failure, function returns an error.
func (s *Solver) GetCols(from, to int) (costs, lowers, uppers []float64,
	starts, indices []int, values []float64, err error) {

	if s.lp == nil {
		return nil, nil, nil, nil, nil, nil, errors.Errorf("no model loaded")
	}
	m := s.lp
	if from < 0 || to >= m.NumCol || from > to {
		return nil, nil, nil, nil, nil, nil,
			errors.Errorf("column range [%d, %d] out of range [0, %d)", from, to, m.NumCol)
	}
	for j := from; j <= to; j++ {
		costs = append(costs, m.ColCost[j])
		lowers = append(lowers, m.ColLower[j])
		uppers = append(uppers, m.ColUpper[j])
		starts = append(starts, len(indices))
		for el := m.AStart[j]; el < m.AStart[j+1]; el++ {
			indices = append(indices, m.AIndex[el])
			values = append(values, m.AValue[el])
		}
	}
	return costs, lowers, uppers, starts, indices, values, nil
}

//==============================================================================

// GetRows returns the bounds and nonzeros of the rows in [from, to]
// inclusive, in the compressed row-wise form AddRows accepts.
// In case of failure, function returns an error.
func (s *Solver) GetRows(from, to int) (lowers, uppers []float64,
	starts, indices []int, values []float64, err error) {

	if s.lp == nil {
		return nil, nil, nil, nil, nil, errors.Errorf("no model loaded")
	}
	m := s.lp
	if from < 0 || to >= m.NumRow || from > to {
		return nil, nil, nil, nil, nil,
			errors.Errorf("row range [%d, %d] out of range [0, %d)", from, to, m.NumRow)
	}

	perRow := make([][]int, m.NumRow)
	for j := 0; j < m.NumCol; j++ {
		for el := m.AStart[j]; el < m.AStart[j+1]; el++ {
			perRow[m.AIndex[el]] = append(perRow[m.AIndex[el]], el)
		}
	}
	colOf := make([]int, m.NumNz())
	for j := 0; j < m.NumCol; j++ {
		for el := m.AStart[j]; el < m.AStart[j+1]; el++ {
			colOf[el] = j
		}
	}

	for i := from; i <= to; i++ {
		lowers = append(lowers, m.RowLower[i])
		uppers = append(uppers, m.RowUpper[i])
		starts = append(starts, len(indices))
		for _, el := range perRow[i] {
			indices = append(indices, colOf[el])
			values = append(values, m.AValue[el])
		}
	}
	return lowers, uppers, starts, indices, values, nil
}

//==============================================================================

// GetCoeff returns a single constraint matrix coefficient, which is zero for
// a structural position without an element.
// In case of failure, function returns an error.
func (s *Solver) GetCoeff(row, col int) (float64, error) {

	if s.lp == nil {
		return 0, errors.Errorf("no model loaded")
	}
	m := s.lp
	if row < 0 || row >= m.NumRow || col < 0 || col >= m.NumCol {
		return 0, errors.Errorf("coefficient (%d, %d) out of range", row, col)
	}
	for el := m.AStart[col]; el < m.AStart[col+1]; el++ {
		if m.AIndex[el] == row {
			return m.AValue[el], nil
		}
	}
	return 0, nil
}

//==============================================================================
// INTERNAL HELPERS
//==============================================================================

// editContext returns the original context for an edit.
// In case of failure, function returns an error.
func (s *Solver) editContext() (*solveContext, error) {
	if s.lp == nil {
		return nil, errors.Errorf("no model loaded")
	}
	ctx := s.originalContext()
	if ctx == nil {
		return nil, errors.Errorf("no solve context available")
	}
	return ctx, nil
}

//==============================================================================

// afterEdit propagates the consequences of a successful edit into the
// retained state: solution arrays follow the new dimensions, the visible
// basis mirrors the context's, and the model status is reset.
func (s *Solver) afterEdit(ctx *solveContext) {
	resizeSolution(s.lp, &s.solution)
	s.basis = copyBasis(&ctx.basis)
	if !s.basis.Valid {
		// An invalidated basis still tracks the new dimensions.
		s.basis.ColStatus = make([]BasisStatus, s.lp.NumCol)
		s.basis.RowStatus = make([]BasisStatus, s.lp.NumRow)
	}
	s.clearModelStatus()
}

//==============================================================================

// keepMaskFromRange builds a keep mask deleting [from, to] inclusive.
// In case of failure, function returns an error.
func keepMaskFromRange(n, from, to int) ([]bool, error) {
	if from < 0 || to >= n || from > to {
		return nil, errors.Errorf("range [%d, %d] out of range [0, %d)", from, to, n)
	}
	keep := make([]bool, n)
	for i := 0; i < n; i++ {
		keep[i] = i < from || i > to
	}
	return keep, nil
}

// keepMaskFromSet builds a keep mask deleting the listed indices.
// In case of failure, function returns an error.
func keepMaskFromSet(n int, set []int) ([]bool, error) {
	keep := make([]bool, n)
	for i := range keep {
		keep[i] = true
	}
	for _, i := range set {
		if i < 0 || i >= n {
			return nil, errors.Errorf("index %d out of range [0, %d)", i, n)
		}
		keep[i] = false
	}
	return keep, nil
}

// keepMaskFromMask inverts a delete mask into a keep mask.
// In case of failure, function returns an error.
func keepMaskFromMask(n int, mask []bool) ([]bool, error) {
	if len(mask) != n {
		return nil, errors.Errorf("mask has length %d, want %d", len(mask), n)
	}
	keep := make([]bool, n)
	for i := range keep {
		keep[i] = !mask[i]
	}
	return keep, nil
}
