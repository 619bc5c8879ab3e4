package highs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

//==============================================================================

func TestPresolveReducesToEmpty(t *testing.T) {
	// One fixed column, one free-to-move column, and a row that can never
	// bind: everything is substituted or fixed away.
	//
	//	min -y
	//	s.t. x + y <= 10,  x in [3, 3],  y in [0, 1]
	m := &Model{
		NumCol:   2,
		NumRow:   1,
		ColCost:  []float64{0, -1},
		ColLower: []float64{3, 0},
		ColUpper: []float64{3, 1},
		RowLower: []float64{-Infinity},
		RowUpper: []float64{10},
		AStart:   []int{0, 1, 2},
		AIndex:   []int{0, 0},
		AValue:   []float64{1, 1},
		Sense:    ObjSenseMinimize,
	}
	opts := defaultOptions()
	ps := newPresolveSession(m, &opts)

	require.Equal(t, PresolveStatusReducedToEmpty, ps.run())

	rows, cols, nz := ps.reductionCounts()
	assert.Equal(t, 1, rows)
	assert.Equal(t, 2, cols)
	assert.Equal(t, 2, nz)

	// The reduced problem exists and has no dimensions left.
	red, err := ps.reducedModel()
	require.NoError(t, err)
	assert.Equal(t, 0, red.NumCol)
	assert.Equal(t, 0, red.NumRow)

	// Postsolve of the empty solution recovers the full point.
	redSol, redBasis := ps.emptyReducedSolution()
	sol, basis, pst := ps.postsolve(&redSol, &redBasis)
	require.Equal(t, PostsolveStatusSolutionRecovered, pst)

	assert.InDelta(t, 3.0, sol.ColValue[0], 1e-12)
	assert.InDelta(t, 1.0, sol.ColValue[1], 1e-12)
	assert.InDelta(t, 4.0, sol.RowValue[0], 1e-12)
	assert.InDelta(t, 0.0, sol.RowDual[0], 1e-12)

	// The cost of the free column flows into its reduced cost unchanged.
	assert.InDelta(t, 0.0, sol.ColDual[0], 1e-12)
	assert.InDelta(t, -1.0, sol.ColDual[1], 1e-12)

	require.True(t, basis.Valid)
	assert.Equal(t, BasisStatusBasic, basis.RowStatus[0])
	assert.Equal(t, BasisStatusLower, basis.ColStatus[0])
	assert.Equal(t, BasisStatusUpper, basis.ColStatus[1])
}

//==============================================================================

func TestPresolveEqualityRowSingleton(t *testing.T) {
	m := reducibleMaxModel()
	opts := defaultOptions()
	ps := newPresolveSession(m, &opts)

	require.Equal(t, PresolveStatusReduced, ps.run())

	red, err := ps.reducedModel()
	require.NoError(t, err)
	assert.Equal(t, 2, red.NumCol)
	assert.Equal(t, 1, red.NumRow)

	// The fixed column's cost moved into the offset: z = 2 with cost 1.
	assert.InDelta(t, 2.0, red.Offset, 1e-12)
	assert.Equal(t, ObjSenseMaximize, red.Sense)

	// The surviving row is untouched by the substitution (z is not in it).
	assert.InDelta(t, -Infinity, red.RowLower[0], 1e-12)
	assert.InDelta(t, 10.0, red.RowUpper[0], 1e-12)

	rows, cols, nz := ps.reductionCounts()
	assert.Equal(t, 1, rows)
	assert.Equal(t, 1, cols)
	assert.Equal(t, 1, nz)
}

//==============================================================================

func TestPostsolveRestoresRowSingletonBasic(t *testing.T) {
	m := reducibleMaxModel()
	opts := defaultOptions()
	ps := newPresolveSession(m, &opts)
	require.Equal(t, PresolveStatusReduced, ps.run())
	_, err := ps.reducedModel()
	require.NoError(t, err)

	redSol := Solution{
		ColValue: []float64{8, 2},
		ColDual:  []float64{0, 0},
		RowValue: []float64{10},
		RowDual:  []float64{1},
	}
	redBasis := Basis{
		ColStatus: []BasisStatus{BasisStatusUpper, BasisStatusBasic},
		RowStatus: []BasisStatus{BasisStatusUpper},
		Valid:     true,
	}

	sol, basis, pst := ps.postsolve(&redSol, &redBasis)
	require.Equal(t, PostsolveStatusSolutionRecovered, pst)

	assert.InDelta(t, 8.0, sol.ColValue[0], 1e-12)
	assert.InDelta(t, 2.0, sol.ColValue[1], 1e-12)
	assert.InDelta(t, 2.0, sol.ColValue[2], 1e-12)
	assert.InDelta(t, 2.0, sol.RowValue[0], 1e-12)
	assert.InDelta(t, 10.0, sol.RowValue[1], 1e-12)

	// The restored column lies strictly inside [0, 5], so it must come back
	// basic with its row nonbasic to keep the basic count at the row count.
	require.True(t, basis.Valid)
	assert.Equal(t, BasisStatusBasic, basis.ColStatus[2])
	assert.Equal(t, BasisStatusLower, basis.RowStatus[0])
	assert.InDelta(t, 0.0, sol.RowDual[0], 1e-12)

	numBasic := 0
	for _, st := range basis.ColStatus {
		if st == BasisStatusBasic {
			numBasic++
		}
	}
	for _, st := range basis.RowStatus {
		if st == BasisStatusBasic {
			numBasic++
		}
	}
	assert.Equal(t, m.NumRow, numBasic)
}

//==============================================================================

func TestPresolveInfeasibleEmptyRow(t *testing.T) {
	m := &Model{
		NumCol:   1,
		NumRow:   1,
		ColCost:  []float64{0},
		ColLower: []float64{0},
		ColUpper: []float64{1},
		RowLower: []float64{1},
		RowUpper: []float64{2},
		AStart:   []int{0, 0},
		Sense:    ObjSenseMinimize,
	}
	opts := defaultOptions()
	ps := newPresolveSession(m, &opts)

	assert.Equal(t, PresolveStatusInfeasible, ps.run())
}

//==============================================================================

func TestPresolveInfeasibleRowSingleton(t *testing.T) {
	// The equality forces x = 5 against bounds [0, 1].
	m := &Model{
		NumCol:   1,
		NumRow:   1,
		ColCost:  []float64{1},
		ColLower: []float64{0},
		ColUpper: []float64{1},
		RowLower: []float64{5},
		RowUpper: []float64{5},
		AStart:   []int{0, 1},
		AIndex:   []int{0},
		AValue:   []float64{1},
		Sense:    ObjSenseMinimize,
	}
	opts := defaultOptions()
	ps := newPresolveSession(m, &opts)

	assert.Equal(t, PresolveStatusInfeasible, ps.run())
}

//==============================================================================

func TestPresolveUnboundedEmptyCol(t *testing.T) {
	m := &Model{
		NumCol:   1,
		NumRow:   0,
		ColCost:  []float64{1},
		ColLower: []float64{0},
		ColUpper: []float64{Infinity},
		AStart:   []int{0, 0},
		Sense:    ObjSenseMaximize,
	}
	opts := defaultOptions()
	ps := newPresolveSession(m, &opts)

	assert.Equal(t, PresolveStatusUnbounded, ps.run())
}

//==============================================================================

func TestPresolveNotReduced(t *testing.T) {
	opts := defaultOptions()
	ps := newPresolveSession(boundedMaxModel(), &opts)

	assert.Equal(t, PresolveStatusNotReduced, ps.run())
	rows, cols, nz := ps.reductionCounts()
	assert.Zero(t, rows+cols+nz)

	_, err := ps.reducedModel()
	assert.Error(t, err)
}

//==============================================================================

func TestPresolveNullModel(t *testing.T) {
	opts := defaultOptions()
	ps := &presolveSession{maxPasses: opts.PresolveMaxPasses}
	assert.Equal(t, PresolveStatusNullError, ps.run())
}

//==============================================================================

func TestPostsolveWithoutReductionReportsNoPostsolve(t *testing.T) {
	m := boundedMaxModel()
	opts := defaultOptions()
	ps := newPresolveSession(m, &opts)
	require.Equal(t, PresolveStatusNotReduced, ps.run())

	redSol := Solution{
		ColValue: make([]float64, m.NumCol),
		ColDual:  make([]float64, m.NumCol),
		RowValue: make([]float64, m.NumRow),
		RowDual:  make([]float64, m.NumRow),
	}
	_, _, pst := ps.postsolve(&redSol, &Basis{})
	assert.Equal(t, PostsolveStatusNoPostsolve, pst)
}

//==============================================================================

func TestPostsolveRejectsWrongDimensions(t *testing.T) {
	m := reducibleMaxModel()
	opts := defaultOptions()
	ps := newPresolveSession(m, &opts)
	require.Equal(t, PresolveStatusReduced, ps.run())
	_, err := ps.reducedModel()
	require.NoError(t, err)

	redSol := Solution{
		ColValue: []float64{8},
		ColDual:  []float64{0},
		RowValue: []float64{8},
		RowDual:  []float64{0},
	}
	redBasis := Basis{Valid: false}

	_, _, pst := ps.postsolve(&redSol, &redBasis)
	assert.Equal(t, PostsolveStatusReducedSolutionDimensionError, pst)
}

//==============================================================================

func TestAddBoundedSaturates(t *testing.T) {
	assert.Equal(t, Infinity, addBounded(1, Infinity))
	assert.Equal(t, -Infinity, addBounded(1, -Infinity))
	assert.Equal(t, Infinity, addBounded(Infinity, -5))
	assert.InDelta(t, 3.0, addBounded(1, 2), 1e-15)
}
