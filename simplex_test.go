package highs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// simplexContext wraps a model in a fresh solve context for direct solver
// tests.
func simplexContext(m *Model) *solveContext {
	return newSolveContext(m, "test")
}

//==============================================================================

func TestSimplexOptimal(t *testing.T) {
	m := &Model{
		NumCol:   2,
		NumRow:   1,
		ColCost:  []float64{-1, -1},
		ColLower: []float64{0, 0},
		ColUpper: []float64{3, 3},
		RowLower: []float64{-Infinity},
		RowUpper: []float64{4},
		AStart:   []int{0, 1, 2},
		AIndex:   []int{0, 0},
		AValue:   []float64{1, 1},
		Sense:    ObjSenseMinimize,
	}
	ctx := simplexContext(m)
	opts := defaultOptions()

	require.NoError(t, solveSimplex(ctx, &opts, false))
	assert.Equal(t, ModelStatusOptimal, ctx.scaledStatus)
	assert.Equal(t, stateSolved, ctx.state)

	obj := objectiveValue(m, ctx.solution.ColValue)
	assert.InDelta(t, -4.0, obj, 1e-9)
	assert.InDelta(t, 4.0, ctx.solution.RowValue[0], 1e-9)
	assert.True(t, ctx.basis.Valid)
	assert.NotNil(t, ctx.lu)
	assert.Len(t, ctx.basicIndex, 1)
}

//==============================================================================

func TestSimplexPrimalInfeasible(t *testing.T) {
	m := &Model{
		NumCol:   2,
		NumRow:   1,
		ColCost:  []float64{1, 1},
		ColLower: []float64{0, 0},
		ColUpper: []float64{1, 1},
		RowLower: []float64{5},
		RowUpper: []float64{Infinity},
		AStart:   []int{0, 1, 2},
		AIndex:   []int{0, 0},
		AValue:   []float64{1, 1},
		Sense:    ObjSenseMinimize,
	}
	ctx := simplexContext(m)
	opts := defaultOptions()

	require.NoError(t, solveSimplex(ctx, &opts, false))
	assert.Equal(t, ModelStatusPrimalInfeasible, ctx.scaledStatus)
	assert.Equal(t, ModelStatusPrimalInfeasible, ctx.unscaledStatus)
}

//==============================================================================

func TestSimplexUnbounded(t *testing.T) {
	m := &Model{
		NumCol:   1,
		NumRow:   1,
		ColCost:  []float64{-1},
		ColLower: []float64{0},
		ColUpper: []float64{Infinity},
		RowLower: []float64{0},
		RowUpper: []float64{Infinity},
		AStart:   []int{0, 1},
		AIndex:   []int{0},
		AValue:   []float64{1},
		Sense:    ObjSenseMinimize,
	}
	ctx := simplexContext(m)
	opts := defaultOptions()

	require.NoError(t, solveSimplex(ctx, &opts, false))
	assert.Equal(t, ModelStatusPrimalUnbounded, ctx.scaledStatus)
	assert.Equal(t, ModelStatusPrimalUnbounded, ctx.unscaledStatus)
	assert.True(t, ctx.basis.Valid)
}

//==============================================================================

func TestSimplexIterationLimit(t *testing.T) {
	m := &Model{
		NumCol:   2,
		NumRow:   1,
		ColCost:  []float64{-1, -1},
		ColLower: []float64{0, 0},
		ColUpper: []float64{3, 3},
		RowLower: []float64{-Infinity},
		RowUpper: []float64{4},
		AStart:   []int{0, 1, 2},
		AIndex:   []int{0, 0},
		AValue:   []float64{1, 1},
		Sense:    ObjSenseMinimize,
	}
	ctx := simplexContext(m)
	opts := defaultOptions()
	opts.IterationLimit = 1

	require.NoError(t, solveSimplex(ctx, &opts, false))
	assert.Equal(t, ModelStatusReachedIterationLimit, ctx.scaledStatus)
	assert.Equal(t, 1, ctx.iters.simplex)
}

//==============================================================================

func TestSimplexWarmStartFromOptimalBasis(t *testing.T) {
	m := &Model{
		NumCol:   2,
		NumRow:   1,
		ColCost:  []float64{-1, -1},
		ColLower: []float64{0, 0},
		ColUpper: []float64{3, 3},
		RowLower: []float64{-Infinity},
		RowUpper: []float64{4},
		AStart:   []int{0, 1, 2},
		AIndex:   []int{0, 0},
		AValue:   []float64{1, 1},
		Sense:    ObjSenseMinimize,
	}
	ctx := simplexContext(m)
	opts := defaultOptions()

	require.NoError(t, solveSimplex(ctx, &opts, false))
	require.Equal(t, ModelStatusOptimal, ctx.scaledStatus)
	cold := ctx.iters.simplex
	assert.Greater(t, cold, 0)

	// Restarting from the optimal basis confirms without pivoting.
	ctx.resetStatus()
	require.NoError(t, solveSimplex(ctx, &opts, true))
	assert.Equal(t, ModelStatusOptimal, ctx.scaledStatus)
	assert.Equal(t, cold, ctx.iters.simplex)
}

//==============================================================================

func TestSimplexMaximization(t *testing.T) {
	ctx := simplexContext(boundedMaxModel())
	opts := defaultOptions()

	require.NoError(t, solveSimplex(ctx, &opts, false))
	assert.Equal(t, ModelStatusOptimal, ctx.scaledStatus)
	obj := objectiveValue(ctx.model, ctx.solution.ColValue)
	assert.InDelta(t, 10.0, obj, 1e-9)
}

//==============================================================================

func TestSimplexNoRows(t *testing.T) {
	m := &Model{
		NumCol:   1,
		NumRow:   0,
		ColCost:  []float64{1},
		ColLower: []float64{2},
		ColUpper: []float64{5},
		AStart:   []int{0, 0},
		Sense:    ObjSenseMinimize,
	}
	ctx := simplexContext(m)
	opts := defaultOptions()

	require.NoError(t, solveSimplex(ctx, &opts, false))
	assert.Equal(t, ModelStatusOptimal, ctx.scaledStatus)
	assert.InDelta(t, 2.0, ctx.solution.ColValue[0], 1e-9)
	assert.True(t, ctx.basis.Valid)
	assert.Empty(t, ctx.basis.RowStatus)
}
