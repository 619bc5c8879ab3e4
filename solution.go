package highs

// solution: the caller-visible solution and basis types, and the consistency
// checks that tie their dimensions to a model. A solution array is either
// empty or exactly sized to the model; partially-filled arrays are forbidden.

//==============================================================================

// BasisStatus describes the state of a single column or row in a basis.
type BasisStatus int

const (
	BasisStatusLower BasisStatus = iota // nonbasic at lower bound
	BasisStatusBasic                    // basic
	BasisStatusUpper                    // nonbasic at upper bound
	BasisStatusZero                     // nonbasic free variable, held at zero
	BasisStatusNonbasic                 // nonbasic, bound unspecified
)

//==============================================================================

// String returns the printable name of the basis status.
func (bs BasisStatus) String() string {
	switch bs {
	case BasisStatusLower:
		return "at lower"
	case BasisStatusBasic:
		return "basic"
	case BasisStatusUpper:
		return "at upper"
	case BasisStatusZero:
		return "free at zero"
	case BasisStatusNonbasic:
		return "nonbasic"
	}
	return "unknown"
}

//==============================================================================

// Solution holds primal and dual values for the columns and rows of a model.
type Solution struct {
	ColValue []float64 // primal value per column
	ColDual  []float64 // dual value (reduced cost) per column
	RowValue []float64 // primal activity per row
	RowDual  []float64 // dual value per row
}

//==============================================================================

// Basis holds the basis status of every column and row of a model. The
// status arrays are meaningful only while Valid is true.
type Basis struct {
	ColStatus []BasisStatus
	RowStatus []BasisStatus
	Valid     bool
}

//==============================================================================

// clear empties the solution arrays.
func (s *Solution) clear() {
	s.ColValue = s.ColValue[:0]
	s.ColDual = s.ColDual[:0]
	s.RowValue = s.RowValue[:0]
	s.RowDual = s.RowDual[:0]
}

//==============================================================================

// clear invalidates the basis and empties its status arrays.
func (b *Basis) clear() {
	b.Valid = false
	b.ColStatus = b.ColStatus[:0]
	b.RowStatus = b.RowStatus[:0]
}

//==============================================================================

// copySolution returns a deep copy of a solution.
func copySolution(src *Solution) Solution {
	return Solution{
		ColValue: append([]float64(nil), src.ColValue...),
		ColDual:  append([]float64(nil), src.ColDual...),
		RowValue: append([]float64(nil), src.RowValue...),
		RowDual:  append([]float64(nil), src.RowDual...),
	}
}

//==============================================================================

// copyBasis returns a deep copy of a basis.
func copyBasis(src *Basis) Basis {
	return Basis{
		ColStatus: append([]BasisStatus(nil), src.ColStatus...),
		RowStatus: append([]BasisStatus(nil), src.RowStatus...),
		Valid:     src.Valid,
	}
}

//==============================================================================

// isSolutionConsistent reports whether every array of the solution is either
// empty or exactly sized to the model's dimensions.
func isSolutionConsistent(m *Model, s *Solution) bool {
	if len(s.ColValue) != 0 && len(s.ColValue) != m.NumCol {
		return false
	}
	if len(s.ColDual) != 0 && len(s.ColDual) != m.NumCol {
		return false
	}
	if len(s.RowValue) != 0 && len(s.RowValue) != m.NumRow {
		return false
	}
	if len(s.RowDual) != 0 && len(s.RowDual) != m.NumRow {
		return false
	}
	return true
}

//==============================================================================

// isBasisConsistent reports whether a basis claiming validity has status
// arrays exactly sized to the model's dimensions.
func isBasisConsistent(m *Model, b *Basis) bool {
	if !b.Valid {
		return true
	}
	return len(b.ColStatus) == m.NumCol && len(b.RowStatus) == m.NumRow
}

//==============================================================================

// resizeSolution grows or shrinks the solution arrays to the dimensions of
// the model. Entries beyond the previous dimension are indeterminate; the
// caller must not read them before a subsequent solve.
func resizeSolution(m *Model, s *Solution) {
	s.ColValue = resizeFloats(s.ColValue, m.NumCol)
	s.ColDual = resizeFloats(s.ColDual, m.NumCol)
	s.RowValue = resizeFloats(s.RowValue, m.NumRow)
	s.RowDual = resizeFloats(s.RowDual, m.NumRow)
}

//==============================================================================

// resizeFloats adjusts a float slice to the requested length, retaining the
// prefix that survives.
func resizeFloats(v []float64, n int) []float64 {
	if n <= cap(v) {
		return v[:n]
	}
	grown := make([]float64, n)
	copy(grown, v)
	return grown
}

//==============================================================================

// resizeStatuses adjusts a basis status slice to the requested length.
func resizeStatuses(v []BasisStatus, n int) []BasisStatus {
	if n <= cap(v) {
		return v[:n]
	}
	grown := make([]BasisStatus, n)
	copy(grown, v)
	return grown
}
