package highs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBasisQueriesRequireFactorization(t *testing.T) {
	s := New()
	_, err := s.GetBasicVariables()
	assert.Error(t, err)

	_, err = s.PassModel(boundedMaxModel())
	require.NoError(t, err)
	_, err = s.GetBasicVariables()
	assert.Error(t, err)
	_, err = s.GetBasisSolve([]float64{1})
	assert.Error(t, err)
}

//==============================================================================

func TestBasisQueriesAfterSolve(t *testing.T) {
	s := solveModel(t, boundedMaxModel(), nil)
	require.Equal(t, ModelStatusOptimal, s.ModelStatus(false))

	vars, err := s.GetBasicVariables()
	require.NoError(t, err)
	require.Len(t, vars, 1)

	// At the optimum a structural column carries the binding row.
	assert.GreaterOrEqual(t, vars[0], 0)
	assert.Less(t, vars[0], 2)

	// The basis matrix is the single structural column, so a basis solve is
	// a division by its coefficient, which is 1.
	x, err := s.GetBasisSolve([]float64{2})
	require.NoError(t, err)
	require.Len(t, x, 1)
	assert.InDelta(t, 2.0, x[0], 1e-12)

	xt, err := s.GetBasisTransposeSolve([]float64{3})
	require.NoError(t, err)
	assert.InDelta(t, 3.0, xt[0], 1e-12)

	row, err := s.GetBasisInverseRow(0)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, row[0], 1e-12)

	col, err := s.GetBasisInverseCol(0)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, col[0], 1e-12)

	// B^-1 A has one entry per structural column; both columns of the row
	// have coefficient 1.
	red, err := s.GetReducedRow(0)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 1}, red)

	redCol, err := s.GetReducedColumn(0)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, redCol[0], 1e-12)
}

//==============================================================================

func TestBasisQueriesRejectBadIndices(t *testing.T) {
	s := solveModel(t, boundedMaxModel(), nil)

	_, err := s.GetBasisInverseRow(-1)
	assert.Error(t, err)
	_, err = s.GetBasisInverseRow(1)
	assert.Error(t, err)
	_, err = s.GetBasisInverseCol(5)
	assert.Error(t, err)
	_, err = s.GetReducedColumn(2)
	assert.Error(t, err)
	_, err = s.GetBasisSolve([]float64{1, 2})
	assert.Error(t, err)
}

//==============================================================================

func TestBasisSlackEncoding(t *testing.T) {
	// A loose row leaves its slack basic, which the query reports as -(1+i).
	m := &Model{
		NumCol:   1,
		NumRow:   1,
		ColCost:  []float64{1},
		ColLower: []float64{0},
		ColUpper: []float64{5},
		RowLower: []float64{-Infinity},
		RowUpper: []float64{100},
		AStart:   []int{0, 1},
		AIndex:   []int{0},
		AValue:   []float64{1},
		Sense:    ObjSenseMinimize,
	}
	s := solveModel(t, m, func(s *Solver) {
		require.NoError(t, s.SetStringOption("presolve", OptionOff))
	})
	require.Equal(t, ModelStatusOptimal, s.ModelStatus(false))

	vars, err := s.GetBasicVariables()
	require.NoError(t, err)
	assert.Equal(t, []int{-1}, vars)
}

//==============================================================================

func TestBasisQueriesFailAfterEdit(t *testing.T) {
	s := solveModel(t, boundedMaxModel(), nil)
	_, err := s.GetBasicVariables()
	require.NoError(t, err)

	_, err = s.ChangeCoeff(0, 0, 2)
	require.NoError(t, err)

	_, err = s.GetBasicVariables()
	assert.Error(t, err)
}
