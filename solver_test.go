package highs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPassModelRejectsMalformed(t *testing.T) {
	s := New()

	st, err := s.PassModel(&Model{NumCol: 2, ColCost: []float64{1}})
	assert.Error(t, err)
	assert.Equal(t, StatusError, st)
	assert.Nil(t, s.Lp())
	assert.Equal(t, ModelStatusLoadError, s.ModelStatus(false))

	st, err = s.PassModel(&Model{
		NumCol:   1,
		ColCost:  []float64{1},
		ColLower: []float64{2},
		ColUpper: []float64{1},
		AStart:   []int{0, 0},
	})
	assert.Error(t, err)
	assert.Equal(t, StatusError, st)
}

//==============================================================================

func TestPassModelCopiesInput(t *testing.T) {
	m := boundedMaxModel()
	s := New()
	_, err := s.PassModel(m)
	require.NoError(t, err)

	// Mutating the caller's model must not reach the solver's copy.
	m.ColCost[0] = 99
	assert.InDelta(t, 1.0, s.Lp().ColCost[0], 1e-15)
}

//==============================================================================

func TestClearModel(t *testing.T) {
	s := solveModel(t, boundedMaxModel(), nil)
	require.NotNil(t, s.Lp())

	assert.Equal(t, StatusOK, s.ClearModel())
	assert.Nil(t, s.Lp())
	assert.Empty(t, s.Solution().ColValue)
	assert.False(t, s.Basis().Valid)
	assert.Equal(t, ModelStatusNotSet, s.ModelStatus(false))

	// Options survive a model clear.
	assert.Equal(t, OptionChoose, s.Options().Presolve)
}

//==============================================================================

func TestWriteAndReadModel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.mps")

	src := New()
	_, err := src.PassModel(boundedMaxModel())
	require.NoError(t, err)
	_, err = src.WriteModel(path)
	require.NoError(t, err)

	dst := New()
	_, err = dst.ReadModel(path)
	require.NoError(t, err)

	m := dst.Lp()
	require.NotNil(t, m)
	assert.Equal(t, 2, m.NumCol)
	assert.Equal(t, 1, m.NumRow)
	assert.Equal(t, ObjSenseMaximize, m.Sense)
	assert.Equal(t, []float64{1, 1}, m.ColCost)
	assert.InDelta(t, 8.0, m.ColUpper[0], 1e-12)
	assert.InDelta(t, 10.0, m.RowUpper[0], 1e-12)

	// The round-tripped model solves to the same optimum.
	status, err := dst.Run()
	require.NoError(t, err)
	assert.Equal(t, StatusOK, status)
	assert.InDelta(t, 10.0, dst.Info().ObjectiveFunctionValue, 1e-6)
}

//==============================================================================

func TestReadModelMissingFile(t *testing.T) {
	s := New()
	st, err := s.ReadModel(filepath.Join(t.TempDir(), "missing.mps"))
	assert.Error(t, err)
	assert.Equal(t, StatusError, st)
	assert.Equal(t, ModelStatusLoadError, s.ModelStatus(false))
}

//==============================================================================

func TestRunLoadsModelFileOption(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.mps")
	src := New()
	_, err := src.PassModel(boundedMaxModel())
	require.NoError(t, err)
	_, err = src.WriteModel(path)
	require.NoError(t, err)

	s := New()
	require.NoError(t, s.SetStringOption("model_file", path))
	status, err := s.Run()
	require.NoError(t, err)
	assert.Equal(t, StatusOK, status)
	assert.Equal(t, ModelStatusOptimal, s.ModelStatus(false))
}

//==============================================================================

func TestSetBasis(t *testing.T) {
	s := New()
	_, err := s.PassModel(boundedMaxModel())
	require.NoError(t, err)

	st, err := s.SetBasis(&Basis{
		ColStatus: []BasisStatus{BasisStatusUpper, BasisStatusBasic},
		RowStatus: []BasisStatus{BasisStatusUpper},
	})
	require.NoError(t, err)
	assert.Equal(t, StatusOK, st)
	assert.True(t, s.Basis().Valid)

	// The supplied basis feeds the next Run's hot start, skipping presolve.
	status, err := s.Run()
	require.NoError(t, err)
	assert.Equal(t, StatusOK, status)
	assert.Equal(t, ModelStatusOptimal, s.ModelStatus(false))
	rows, cols, nz := s.GetPresolveReductionCounts()
	assert.Zero(t, rows+cols+nz)

	// Wrong dimensions are rejected.
	st, err = s.SetBasis(&Basis{
		ColStatus: []BasisStatus{BasisStatusLower},
		RowStatus: []BasisStatus{BasisStatusBasic},
	})
	assert.Error(t, err)
	assert.Equal(t, StatusError, st)
}

//==============================================================================

func TestSetSolution(t *testing.T) {
	s := New()
	_, err := s.PassModel(boundedMaxModel())
	require.NoError(t, err)

	st, err := s.SetSolution(&Solution{ColValue: []float64{8, 2}})
	require.NoError(t, err)
	assert.Equal(t, StatusOK, st)
	assert.InDelta(t, 10.0, s.Solution().RowValue[0], 1e-12)

	st, err = s.SetSolution(&Solution{ColValue: []float64{8}})
	assert.Error(t, err)
	assert.Equal(t, StatusError, st)
}

//==============================================================================

func TestWriteSolutionFile(t *testing.T) {
	s := solveModel(t, boundedMaxModel(), nil)

	path := filepath.Join(t.TempDir(), "solution.txt")
	st, err := s.WriteSolution(path)
	require.NoError(t, err)
	assert.Equal(t, StatusOK, st)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Status:    Optimal")
	assert.Contains(t, string(data), "Objective: 10")
}

//==============================================================================

func TestModelConversionRoundTrip(t *testing.T) {
	m := boundedMaxModel()
	back := modelFromMps(mpsFromModel(m))

	assert.Equal(t, m.NumCol, back.NumCol)
	assert.Equal(t, m.NumRow, back.NumRow)
	assert.Equal(t, m.Sense, back.Sense)
	assert.Equal(t, m.ColCost, back.ColCost)
	assert.Equal(t, m.ColLower, back.ColLower)
	assert.Equal(t, m.ColUpper, back.ColUpper)
	assert.Equal(t, m.RowLower, back.RowLower)
	assert.Equal(t, m.RowUpper, back.RowUpper)
	assert.Equal(t, m.AStart, back.AStart)
	assert.Equal(t, m.AIndex, back.AIndex)
	assert.Equal(t, m.AValue, back.AValue)
	assert.Equal(t, m.Name, back.Name)
}
