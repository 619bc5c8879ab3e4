package highs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	SetLogLevel(pNONE)
}

//==============================================================================

// boundedMaxModel is a two-column maximization with one row:
//
//	max  x + y
//	s.t. x + y <= 10,  0 <= x <= 8,  0 <= y <= 6
//
// The optimum is 10.
func boundedMaxModel() *Model {
	return &Model{
		NumCol:   2,
		NumRow:   1,
		ColCost:  []float64{1, 1},
		ColLower: []float64{0, 0},
		ColUpper: []float64{8, 6},
		RowLower: []float64{-Infinity},
		RowUpper: []float64{10},
		AStart:   []int{0, 1, 2},
		AIndex:   []int{0, 0},
		AValue:   []float64{1, 1},
		Sense:    ObjSenseMaximize,
		Name:     "boundedMax",
	}
}

// reducibleMaxModel adds a column fixed by an equality singleton row, so
// presolve removes one row and one column and a genuine reduced problem
// remains:
//
//	max  x + y + z
//	s.t. z = 2,  x + y <= 10,  0 <= x <= 8,  0 <= y <= 6,  0 <= z <= 5
//
// The optimum is 12.
func reducibleMaxModel() *Model {
	return &Model{
		NumCol:   3,
		NumRow:   2,
		ColCost:  []float64{1, 1, 1},
		ColLower: []float64{0, 0, 0},
		ColUpper: []float64{8, 6, 5},
		RowLower: []float64{2, -Infinity},
		RowUpper: []float64{2, 10},
		AStart:   []int{0, 1, 2, 3},
		AIndex:   []int{1, 1, 0},
		AValue:   []float64{1, 1, 1},
		Sense:    ObjSenseMaximize,
		Name:     "reducibleMax",
	}
}

func solveModel(t *testing.T, m *Model, setup func(*Solver)) *Solver {
	t.Helper()
	s := New()
	_, err := s.PassModel(m)
	require.NoError(t, err)
	if setup != nil {
		setup(s)
	}
	status, err := s.Run()
	require.NoError(t, err)
	require.NotEqual(t, StatusError, status)
	return s
}

//==============================================================================

func TestRunNoModel(t *testing.T) {
	s := New()
	status, err := s.Run()
	assert.Error(t, err)
	assert.Equal(t, StatusError, status)
	assert.Equal(t, ModelStatusLoadError, s.ModelStatus(false))
}

func TestRunEmptyModel(t *testing.T) {
	s := New()
	_, err := s.PassModel(&Model{Name: "empty"})
	require.NoError(t, err)

	status, err := s.Run()
	require.NoError(t, err)
	assert.Equal(t, StatusOK, status)
	assert.Equal(t, ModelStatusModelEmpty, s.ModelStatus(false))
	assert.Empty(t, s.Solution().ColValue)
	assert.False(t, s.Basis().Valid)
}

//==============================================================================

func TestRunBoundedMax(t *testing.T) {
	for _, presolve := range []string{OptionOn, OptionOff} {
		t.Run("presolve_"+presolve, func(t *testing.T) {
			s := solveModel(t, boundedMaxModel(), func(s *Solver) {
				require.NoError(t, s.SetStringOption("presolve", presolve))
			})
			assert.Equal(t, ModelStatusOptimal, s.ModelStatus(false))
			assert.InDelta(t, 10.0, s.Info().ObjectiveFunctionValue, 1e-6)

			sol := s.Solution()
			require.Len(t, sol.ColValue, 2)
			assert.InDelta(t, 10.0, sol.ColValue[0]+sol.ColValue[1], 1e-7)
			assert.True(t, s.Basis().Valid)
			assert.Len(t, s.Basis().ColStatus, 2)
			assert.Len(t, s.Basis().RowStatus, 1)
		})
	}
}

func TestRunPresolveAgreesWithDirectSolve(t *testing.T) {
	on := solveModel(t, reducibleMaxModel(), func(s *Solver) {
		require.NoError(t, s.SetStringOption("presolve", OptionOn))
	})
	off := solveModel(t, reducibleMaxModel(), func(s *Solver) {
		require.NoError(t, s.SetStringOption("presolve", OptionOff))
	})

	assert.Equal(t, ModelStatusOptimal, on.ModelStatus(false))
	assert.Equal(t, ModelStatusOptimal, off.ModelStatus(false))
	assert.InDelta(t, off.Info().ObjectiveFunctionValue,
		on.Info().ObjectiveFunctionValue, 1e-6)
	assert.InDelta(t, 12.0, on.Info().ObjectiveFunctionValue, 1e-6)

	// The reduction removed the singleton row and its column.
	rows, cols, _ := on.GetPresolveReductionCounts()
	assert.Equal(t, 1, rows)
	assert.Equal(t, 1, cols)

	// The fixed column came back at the value the equality dictates.
	assert.InDelta(t, 2.0, on.Solution().ColValue[2], 1e-7)
}

//==============================================================================

func TestRunEqualityRowDualIsFree(t *testing.T) {
	// The equality row's dual may take either sign at the optimum; the
	// solution must still certify as dual feasible and the run as OK.
	for _, presolve := range []string{OptionOn, OptionOff} {
		t.Run("presolve_"+presolve, func(t *testing.T) {
			s := New()
			_, err := s.PassModel(reducibleMaxModel())
			require.NoError(t, err)
			require.NoError(t, s.SetStringOption("presolve", presolve))

			status, err := s.Run()
			require.NoError(t, err)
			assert.Equal(t, StatusOK, status)
			assert.Equal(t, ModelStatusOptimal, s.ModelStatus(false))
			assert.Equal(t, SolutionStatusFeasiblePoint, s.Info().DualStatus)
			assert.Zero(t, s.Info().NumDualInfeasibilities)
			assert.InDelta(t, 12.0, s.Info().ObjectiveFunctionValue, 1e-6)
		})
	}
}

//==============================================================================

func TestRunPresolveTimeoutReportsWarning(t *testing.T) {
	s := New()
	_, err := s.PassModel(reducibleMaxModel())
	require.NoError(t, err)
	require.NoError(t, s.SetIntOption("message_level", pNONE))
	require.NoError(t, s.SetFloatOption("time_limit", 1e-9))

	status, err := s.Run()
	require.NoError(t, err)
	assert.Equal(t, StatusWarning, status)
	assert.Equal(t, ModelStatusPresolveError, s.ModelStatus(false))
	assert.Empty(t, s.Solution().ColValue)
	assert.False(t, s.Basis().Valid)
}

//==============================================================================

func TestRunPipelineTimesStagesIndependently(t *testing.T) {
	saved := timeNow
	defer func() { timeNow = saved }()
	now := time.Unix(0, 0)
	timeNow = func() time.Time {
		now = now.Add(10 * time.Millisecond)
		return now
	}

	s := New()
	_, err := s.PassModel(reducibleMaxModel())
	require.NoError(t, err)
	ctx := s.originalContext()
	ctx.resetStatus()

	var pre, solve, redSolve, post float64
	status, err := s.runPipeline(ctx, &pre, &solve, &redSolve, &post)
	require.NoError(t, err)
	require.Equal(t, StatusOK, status)

	// Each stage runs exactly once and is charged to its own span; in
	// particular the clean-up re-solve lands in the solve span, not the
	// postsolve one.
	assert.InDelta(t, 0.01, pre, 1e-9)
	assert.InDelta(t, 0.01, redSolve, 1e-9)
	assert.InDelta(t, 0.01, post, 1e-9)
	assert.InDelta(t, 0.01, solve, 1e-9)
}

//==============================================================================

func TestRunPresolveDetectsInfeasibility(t *testing.T) {
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
		Name:     "infeasibleSingleton",
	}

	s := solveModel(t, m, nil)
	assert.Equal(t, ModelStatusPrimalInfeasible, s.ModelStatus(false))

	// Presolve short-circuited: the solver itself never ran.
	assert.Equal(t, 0, s.Info().SimplexIterationCount)
	assert.Empty(t, s.Solution().ColValue)
}

func TestRunPresolveDetectsUnboundedness(t *testing.T) {
	m := &Model{
		NumCol:   1,
		NumRow:   0,
		ColCost:  []float64{1},
		ColLower: []float64{0},
		ColUpper: []float64{Infinity},
		Sense:    ObjSenseMaximize,
		Name:     "unboundedEmptyCol",
	}

	s := solveModel(t, m, nil)
	assert.Equal(t, ModelStatusPrimalUnbounded, s.ModelStatus(false))
	assert.Equal(t, 0, s.Info().SimplexIterationCount)
	assert.Empty(t, s.Solution().ColValue)
}

//==============================================================================

func TestRunHotStartsFromRetainedBasis(t *testing.T) {
	s := solveModel(t, boundedMaxModel(), nil)
	require.Equal(t, ModelStatusOptimal, s.ModelStatus(false))
	require.True(t, s.Basis().Valid)

	// A second run starts from the optimal basis and confirms immediately.
	status, err := s.Run()
	require.NoError(t, err)
	assert.Equal(t, StatusOK, status)
	assert.Equal(t, ModelStatusOptimal, s.ModelStatus(false))
	assert.InDelta(t, 10.0, s.Info().ObjectiveFunctionValue, 1e-6)
}

//==============================================================================

func TestRunDualObjectiveCutoff(t *testing.T) {
	m := &Model{
		NumCol:   1,
		NumRow:   1,
		ColCost:  []float64{1},
		ColLower: []float64{2},
		ColUpper: []float64{5},
		RowLower: []float64{-Infinity},
		RowUpper: []float64{100},
		AStart:   []int{0, 1},
		AIndex:   []int{0},
		AValue:   []float64{1},
		Sense:    ObjSenseMinimize,
		Name:     "cutoff",
	}

	s := New()
	_, err := s.PassModel(m)
	require.NoError(t, err)
	require.NoError(t, s.SetStringOption("presolve", OptionOff))
	require.NoError(t, s.SetFloatOption("dual_objective_value_upper_bound", 1.0))

	status, err := s.Run()
	require.NoError(t, err)
	assert.Equal(t, StatusOK, status)
	assert.Equal(t, ModelStatusReachedDualObjectiveUpperBound, s.ModelStatus(false))

	// The cutoff retains nothing.
	assert.Empty(t, s.Solution().ColValue)
	assert.False(t, s.Basis().Valid)
}

//==============================================================================

func TestRunIterationLimit(t *testing.T) {
	s := New()
	_, err := s.PassModel(boundedMaxModel())
	require.NoError(t, err)
	require.NoError(t, s.SetStringOption("presolve", OptionOff))
	require.NoError(t, s.SetIntOption("iteration_limit", 1))

	status, err := s.Run()
	require.NoError(t, err)
	assert.Equal(t, StatusWarning, status)
	assert.Equal(t, ModelStatusReachedIterationLimit, s.ModelStatus(false))
	assert.Empty(t, s.Solution().ColValue)
	assert.False(t, s.Basis().Valid)
}

//==============================================================================

func TestRunIpmWithCrossover(t *testing.T) {
	s := solveModel(t, boundedMaxModel(), func(s *Solver) {
		require.NoError(t, s.SetStringOption("presolve", OptionOff))
		require.NoError(t, s.SetStringOption("solver", SolverIpm))
	})
	assert.Equal(t, ModelStatusOptimal, s.ModelStatus(false))
	assert.InDelta(t, 10.0, s.Info().ObjectiveFunctionValue, 1e-6)
	assert.True(t, s.Basis().Valid)
}

//==============================================================================

func TestRunTimeAccumulates(t *testing.T) {
	s := solveModel(t, boundedMaxModel(), nil)
	first := s.RunTime()
	assert.GreaterOrEqual(t, first, 0.0)

	_, err := s.Run()
	require.NoError(t, err)
	assert.GreaterOrEqual(t, s.RunTime(), first)
}
