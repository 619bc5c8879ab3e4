package highs

import (
	"github.com/pkg/errors"
)

// basisquery: queries against the factorized basis matrix of the original
// problem. All of them require a solved (or at least factorized) context;
// edits demote the context and make these calls fail until the next Run.
//
// The basis matrix B is taken over the augmented form A x - s = 0, so its
// columns are structural columns of A and negated unit columns for basic
// logical (slack) variables.

//==============================================================================

// GetBasicVariables reports the basic variable of each row. A nonnegative
// entry is a structural column index; a negative entry -(1+i) is the logical
// variable of row i.
// In case of failure, function returns an error.
func (s *Solver) GetBasicVariables() ([]int, error) {

	ctx, err := s.factorizedContext()
	if err != nil {
		return nil, err
	}

	n := ctx.model.NumCol
	out := make([]int, len(ctx.basicIndex))
	for p, v := range ctx.basicIndex {
		if v < n {
			out[p] = v
		} else {
			out[p] = -(1 + (v - n))
		}
	}
	return out, nil
}

//==============================================================================

// GetBasisInverseRow returns row r of the basis inverse.
// In case of failure, function returns an error.
func (s *Solver) GetBasisInverseRow(r int) ([]float64, error) {

	ctx, err := s.factorizedContext()
	if err != nil {
		return nil, err
	}
	nr := ctx.model.NumRow
	if r < 0 || r >= nr {
		return nil, errors.Errorf("row %d out of range [0, %d)", r, nr)
	}

	rhs := make([]float64, nr)
	rhs[r] = 1
	row, err := luSolve(ctx.lu, rhs, true)
	if err != nil {
		return nil, errors.Wrap(err, "GetBasisInverseRow failed")
	}
	return row, nil
}

//==============================================================================

// GetBasisInverseCol returns column c of the basis inverse.
// In case of failure, function returns an error.
func (s *Solver) GetBasisInverseCol(c int) ([]float64, error) {

	ctx, err := s.factorizedContext()
	if err != nil {
		return nil, err
	}
	nr := ctx.model.NumRow
	if c < 0 || c >= nr {
		return nil, errors.Errorf("column %d out of range [0, %d)", c, nr)
	}

	rhs := make([]float64, nr)
	rhs[c] = 1
	col, err := luSolve(ctx.lu, rhs, false)
	if err != nil {
		return nil, errors.Wrap(err, "GetBasisInverseCol failed")
	}
	return col, nil
}

//==============================================================================

// GetBasisSolve solves B x = rhs against the factorized basis.
// In case of failure, function returns an error.
func (s *Solver) GetBasisSolve(rhs []float64) ([]float64, error) {

	ctx, err := s.factorizedContext()
	if err != nil {
		return nil, err
	}
	if len(rhs) != ctx.model.NumRow {
		return nil, errors.Errorf("rhs has length %d, want %d", len(rhs), ctx.model.NumRow)
	}
	x, err := luSolve(ctx.lu, rhs, false)
	if err != nil {
		return nil, errors.Wrap(err, "GetBasisSolve failed")
	}
	return x, nil
}

//==============================================================================

// GetBasisTransposeSolve solves B^T x = rhs against the factorized basis.
// In case of failure, function returns an error.
func (s *Solver) GetBasisTransposeSolve(rhs []float64) ([]float64, error) {

	ctx, err := s.factorizedContext()
	if err != nil {
		return nil, err
	}
	if len(rhs) != ctx.model.NumRow {
		return nil, errors.Errorf("rhs has length %d, want %d", len(rhs), ctx.model.NumRow)
	}
	x, err := luSolve(ctx.lu, rhs, true)
	if err != nil {
		return nil, errors.Wrap(err, "GetBasisTransposeSolve failed")
	}
	return x, nil
}

//==============================================================================

// GetReducedRow returns row r of B^-1 A, with one entry per structural
// column. In case of failure, function returns an error.
func (s *Solver) GetReducedRow(r int) ([]float64, error) {

	y, err := s.GetBasisInverseRow(r)
	if err != nil {
		return nil, errors.Wrap(err, "GetReducedRow failed")
	}

	m := s.contexts[0].model
	out := make([]float64, m.NumCol)
	for j := 0; j < m.NumCol; j++ {
		sum := 0.0
		for el := m.AStart[j]; el < m.AStart[j+1]; el++ {
			sum += m.AValue[el] * y[m.AIndex[el]]
		}
		out[j] = sum
	}
	return out, nil
}

//==============================================================================

// GetReducedColumn returns column c of B^-1 A.
// In case of failure, function returns an error.
func (s *Solver) GetReducedColumn(c int) ([]float64, error) {

	ctx, err := s.factorizedContext()
	if err != nil {
		return nil, err
	}
	m := ctx.model
	if c < 0 || c >= m.NumCol {
		return nil, errors.Errorf("column %d out of range [0, %d)", c, m.NumCol)
	}

	rhs := make([]float64, m.NumRow)
	for el := m.AStart[c]; el < m.AStart[c+1]; el++ {
		rhs[m.AIndex[el]] = m.AValue[el]
	}
	col, err := luSolve(ctx.lu, rhs, false)
	if err != nil {
		return nil, errors.Wrap(err, "GetReducedColumn failed")
	}
	return col, nil
}

//==============================================================================

// factorizedContext returns the original context if it still holds a usable
// factorization. In case of failure, function returns an error.
func (s *Solver) factorizedContext() (*solveContext, error) {
	if s.lp == nil || len(s.contexts) == 0 {
		return nil, errors.Errorf("no model loaded")
	}
	ctx := s.contexts[0]
	if ctx.state < stateFactorized || ctx.lu == nil || len(ctx.basicIndex) != ctx.model.NumRow {
		return nil, errors.Errorf("no basis factorization available, run the solver first")
	}
	return ctx, nil
}
