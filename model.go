package highs

import (
	"math"

	"github.com/pkg/errors"
)

// model: the LP problem data in compressed sparse column form, together with
// the structural validation applied whenever a model enters the system.

// Infinity is the value used to represent an absent bound.
const Infinity = 1e30

//==============================================================================

// ObjSense selects between minimization and maximization of the objective.
type ObjSense int

const (
	ObjSenseMinimize ObjSense = 1
	ObjSenseMaximize ObjSense = -1
)

//==============================================================================

// Model holds an LP of the form
//
//	optimize  ColCost . x + Offset
//	such that RowLower <= A x <= RowUpper
//	and       ColLower <=  x  <= ColUpper
//
// where A is stored column-wise: the nonzeros of column j occupy positions
// AStart[j] to AStart[j+1]-1 of AIndex (row numbers) and AValue.
type Model struct {
	NumCol   int        // number of columns (variables)
	NumRow   int        // number of rows (constraints)
	ColCost  []float64  // objective coefficient per column
	ColLower []float64  // lower bound per column
	ColUpper []float64  // upper bound per column
	RowLower []float64  // lower bound per row
	RowUpper []float64  // upper bound per row
	AStart   []int      // column start offsets, length NumCol+1
	AIndex   []int      // row index per nonzero
	AValue   []float64  // value per nonzero
	Sense    ObjSense   // objective sense, minimize by default
	Offset   float64    // constant term of the objective
	Name     string     // model name, derived from file path when read
}

//==============================================================================

// NumNz returns the number of nonzeros in the constraint matrix.
func (m *Model) NumNz() int {
	if len(m.AStart) == m.NumCol+1 {
		return m.AStart[m.NumCol]
	}
	return len(m.AValue)
}

//==============================================================================

// copyModel returns a deep copy of the model so that a solve context can own
// its problem data without aliasing the caller-visible model.
func copyModel(src *Model) *Model {
	dst := &Model{
		NumCol: src.NumCol,
		NumRow: src.NumRow,
		Sense:  src.Sense,
		Offset: src.Offset,
		Name:   src.Name,
	}
	dst.ColCost = append([]float64(nil), src.ColCost...)
	dst.ColLower = append([]float64(nil), src.ColLower...)
	dst.ColUpper = append([]float64(nil), src.ColUpper...)
	dst.RowLower = append([]float64(nil), src.RowLower...)
	dst.RowUpper = append([]float64(nil), src.RowUpper...)
	dst.AStart = append([]int(nil), src.AStart...)
	dst.AIndex = append([]int(nil), src.AIndex...)
	dst.AValue = append([]float64(nil), src.AValue...)
	return dst
}

//==============================================================================

// assessModel checks the structural validity of a model: consistent array
// lengths, a well-formed CSC start vector, row indices in range, and lower
// bounds not exceeding upper bounds. Infinite values are normalised onto
// [-Infinity, Infinity]. In case of failure, function returns an error.
func assessModel(m *Model) error {

	if m.NumCol < 0 || m.NumRow < 0 {
		return errors.Errorf("model has negative dimensions (%d x %d)", m.NumRow, m.NumCol)
	}

	if len(m.ColCost) != m.NumCol || len(m.ColLower) != m.NumCol ||
		len(m.ColUpper) != m.NumCol {
		return errors.Errorf("model column arrays inconsistent with NumCol = %d", m.NumCol)
	}

	if len(m.RowLower) != m.NumRow || len(m.RowUpper) != m.NumRow {
		return errors.Errorf("model row arrays inconsistent with NumRow = %d", m.NumRow)
	}

	if m.Sense == 0 {
		m.Sense = ObjSenseMinimize
	}
	if m.Sense != ObjSenseMinimize && m.Sense != ObjSenseMaximize {
		return errors.Errorf("model has illegal objective sense %d", m.Sense)
	}

	// An empty matrix may be represented by a nil start vector; normalise it
	// so the CSC invariant len(AStart) == NumCol+1 holds from here on.
	if len(m.AStart) == 0 && len(m.AIndex) == 0 {
		m.AStart = make([]int, m.NumCol+1)
	}

	if len(m.AStart) != m.NumCol+1 {
		return errors.Errorf("model AStart has length %d, want %d", len(m.AStart), m.NumCol+1)
	}

	if m.AStart[0] != 0 {
		return errors.Errorf("model AStart[0] = %d, want 0", m.AStart[0])
	}

	for j := 0; j < m.NumCol; j++ {
		if m.AStart[j+1] < m.AStart[j] {
			return errors.Errorf("model AStart decreases at column %d", j)
		}
	}

	numNz := m.AStart[m.NumCol]
	if len(m.AIndex) != numNz || len(m.AValue) != numNz {
		return errors.Errorf("model has %d nonzeros but %d indices and %d values",
			numNz, len(m.AIndex), len(m.AValue))
	}

	for el := 0; el < numNz; el++ {
		if m.AIndex[el] < 0 || m.AIndex[el] >= m.NumRow {
			return errors.Errorf("model row index %d of element %d out of range [0, %d)",
				m.AIndex[el], el, m.NumRow)
		}
	}

	for j := 0; j < m.NumCol; j++ {
		m.ColLower[j] = clampBound(m.ColLower[j])
		m.ColUpper[j] = clampBound(m.ColUpper[j])
		if m.ColLower[j] > m.ColUpper[j] {
			return errors.Errorf("column %d has lower bound %g above upper bound %g",
				j, m.ColLower[j], m.ColUpper[j])
		}
	}

	for i := 0; i < m.NumRow; i++ {
		m.RowLower[i] = clampBound(m.RowLower[i])
		m.RowUpper[i] = clampBound(m.RowUpper[i])
		if m.RowLower[i] > m.RowUpper[i] {
			return errors.Errorf("row %d has lower bound %g above upper bound %g",
				i, m.RowLower[i], m.RowUpper[i])
		}
	}

	return nil
}

//==============================================================================

// clampBound maps IEEE infinities and very large magnitudes onto the finite
// Infinity sentinel used throughout the package.
func clampBound(v float64) float64 {
	if math.IsInf(v, 1) || v > Infinity {
		return Infinity
	}
	if math.IsInf(v, -1) || v < -Infinity {
		return -Infinity
	}
	return v
}

//==============================================================================

// isFinite reports whether a bound is an actual bound rather than the
// Infinity sentinel.
func isFinite(v float64) bool {
	return v > -Infinity && v < Infinity
}

//==============================================================================

// rowActivities returns A x for the given column values.
func rowActivities(m *Model, colValue []float64) []float64 {
	act := make([]float64, m.NumRow)
	for j := 0; j < m.NumCol; j++ {
		xj := colValue[j]
		if xj == 0 {
			continue
		}
		for el := m.AStart[j]; el < m.AStart[j+1]; el++ {
			act[m.AIndex[el]] += m.AValue[el] * xj
		}
	}
	return act
}

//==============================================================================

// objectiveValue returns ColCost . x + Offset for the given column values.
func objectiveValue(m *Model, colValue []float64) float64 {
	obj := m.Offset
	for j := 0; j < m.NumCol; j++ {
		obj += m.ColCost[j] * colValue[j]
	}
	return obj
}
