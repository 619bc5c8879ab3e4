package highs

import (
	"math"
	"time"

	"github.com/pkg/errors"
)

// presolve: the reduction engine applied before the solver proper, following
// the Andersen and Andersen (1993) catalogue of safe reductions. Rules are
// applied in sweeps until a sweep removes nothing, the pass limit is hit or
// the time budget runs out. Every removal is recorded on an operation stack
// which postsolve replays in reverse to recover a full-dimension solution
// and a heuristic basis from the reduced ones.

// Operation kinds recorded on the presolve stack.
const (
	opEmptyRow     = iota // row with no surviving coefficients
	opRedundantRow        // row whose implied activity range cannot bind
	opRowSingleton        // equality row with one coefficient, fixes its column
	opFixedCol            // column with equal bounds, substituted out
	opEmptyCol            // column with no surviving coefficients, fixed at a bound
)

// presolveOp records one reduction so that postsolve can undo it. The
// original model is never mutated, so coefficient values are read back from
// it rather than stored here.
type presolveOp struct {
	kind  int     // one of the op* constants
	row   int     // original row index, -1 if no row was removed
	col   int     // original column index, -1 if no column was removed
	value float64 // value the removed column was fixed at
}

//==============================================================================

// presolveSession holds the working state of one presolve/postsolve cycle.
// The session keeps the original model intact and operates on copies of the
// bounds and costs; reductions mark rows and columns dead and push an
// operation for each removal.
type presolveSession struct {
	orig *Model // untouched original problem

	colLower []float64 // working column bounds, tightened by reductions
	colUpper []float64
	rowLower []float64 // working row bounds, shifted by substitutions
	rowUpper []float64
	colCost  []float64
	offset   float64

	rowEntries [][]int // per row, surviving element positions into orig.AIndex/AValue
	colCount   []int   // surviving coefficient count per column
	colOf      []int   // element position to column, fixed for the session

	rowAlive []bool
	colAlive []bool

	ops    []presolveOp
	status PresolveStatus

	rowsRemoved int
	colsRemoved int
	nzRemoved   int

	colMap []int // reduced column index to original column index
	rowMap []int // reduced row index to original row index

	maxPasses int
	deadline  time.Time
	tol       float64
}

//==============================================================================

// newPresolveSession prepares a session for the given model. Run must be
// called before the reduced problem or the reduction counts are meaningful.
func newPresolveSession(m *Model, opts *Options) *presolveSession {

	ps := &presolveSession{
		orig:      m,
		colLower:  append([]float64(nil), m.ColLower...),
		colUpper:  append([]float64(nil), m.ColUpper...),
		rowLower:  append([]float64(nil), m.RowLower...),
		rowUpper:  append([]float64(nil), m.RowUpper...),
		colCost:   append([]float64(nil), m.ColCost...),
		offset:    m.Offset,
		rowAlive:  make([]bool, m.NumRow),
		colAlive:  make([]bool, m.NumCol),
		colCount:  make([]int, m.NumCol),
		colOf:     make([]int, m.NumNz()),
		status:    PresolveStatusNotPresolved,
		maxPasses: opts.PresolveMaxPasses,
		tol:       opts.PrimalFeasibilityTolerance,
	}
	if opts.TimeLimit < Infinity {
		ps.deadline = time.Now().Add(time.Duration(opts.TimeLimit * float64(time.Second)))
	}

	ps.rowEntries = make([][]int, m.NumRow)
	for j := 0; j < m.NumCol; j++ {
		ps.colAlive[j] = true
		ps.colCount[j] = m.AStart[j+1] - m.AStart[j]
		for el := m.AStart[j]; el < m.AStart[j+1]; el++ {
			ps.colOf[el] = j
			ps.rowEntries[m.AIndex[el]] = append(ps.rowEntries[m.AIndex[el]], el)
		}
	}
	for i := 0; i < m.NumRow; i++ {
		ps.rowAlive[i] = true
	}
	return ps
}

//==============================================================================

// run performs the reduction sweeps and returns the presolve status. The
// special outcomes Infeasible, Unbounded and Timeout abort the sweeps at the
// point of detection.
func (ps *presolveSession) run() PresolveStatus {

	if ps.orig == nil {
		ps.status = PresolveStatusNullError
		return ps.status
	}

	for pass := 1; pass <= ps.maxPasses; pass++ {

		if !ps.deadline.IsZero() && time.Now().After(ps.deadline) {
			log(pWARN, "Presolve ran out of time in pass %d", pass)
			ps.status = PresolveStatusTimeout
			return ps.status
		}

		removed := ps.rowsRemoved + ps.colsRemoved

		log(pVERB, "Presolve pass %d: %d rows, %d cols alive",
			pass, ps.aliveRows(), ps.aliveCols())

		for _, rule := range []func() bool{
			ps.removeEmptyRows,
			ps.removeRedundantRows,
			ps.removeRowSingletons,
			ps.removeFixedCols,
			ps.removeEmptyCols,
		} {
			if !rule() {
				return ps.status
			}
		}

		if ps.rowsRemoved+ps.colsRemoved == removed {
			break
		}
	}

	switch {
	case ps.rowsRemoved == 0 && ps.colsRemoved == 0:
		ps.status = PresolveStatusNotReduced
	case ps.aliveCols() == 0:
		// Any remaining rows must be empty and feasible; clear them so the
		// reduced problem truly is empty.
		if !ps.removeEmptyRows() {
			return ps.status
		}
		ps.status = PresolveStatusReducedToEmpty
	default:
		ps.status = PresolveStatusReduced
	}

	if ps.status == PresolveStatusReduced || ps.status == PresolveStatusReducedToEmpty {
		log(pINFO, "Presolve removed %d rows, %d cols, %d nonzeros",
			ps.rowsRemoved, ps.colsRemoved, ps.nzRemoved)
	}
	return ps.status
}

//==============================================================================

func (ps *presolveSession) aliveRows() int {
	n := 0
	for _, a := range ps.rowAlive {
		if a {
			n++
		}
	}
	return n
}

func (ps *presolveSession) aliveCols() int {
	n := 0
	for _, a := range ps.colAlive {
		if a {
			n++
		}
	}
	return n
}

//==============================================================================

// killRow marks a row dead and detaches its surviving coefficients from
// their columns.
func (ps *presolveSession) killRow(i int) {
	ps.rowAlive[i] = false
	ps.rowsRemoved++
	for _, el := range ps.rowEntries[i] {
		j := ps.colOf[el]
		if ps.colAlive[j] {
			ps.colCount[j]--
			ps.nzRemoved++
		}
	}
	ps.rowEntries[i] = nil
}

// killCol marks a column dead and detaches its surviving coefficients from
// their rows.
func (ps *presolveSession) killCol(j int) {
	ps.colAlive[j] = false
	ps.colsRemoved++
	m := ps.orig
	for el := m.AStart[j]; el < m.AStart[j+1]; el++ {
		i := m.AIndex[el]
		if !ps.rowAlive[i] {
			continue
		}
		entries := ps.rowEntries[i][:0]
		for _, e := range ps.rowEntries[i] {
			if e != el {
				entries = append(entries, e)
			}
		}
		ps.rowEntries[i] = entries
		ps.nzRemoved++
	}
	ps.colCount[j] = 0
}

//==============================================================================

// removeEmptyRows deletes rows with no surviving coefficients. An empty row
// whose bounds exclude zero makes the problem infeasible. Returns false when
// a terminal status was set.
func (ps *presolveSession) removeEmptyRows() bool {
	for i := 0; i < ps.orig.NumRow; i++ {
		if !ps.rowAlive[i] || len(ps.rowEntries[i]) > 0 {
			continue
		}
		if ps.rowLower[i] > ps.tol || ps.rowUpper[i] < -ps.tol {
			log(pINFO, "Empty row %d has bounds [%g, %g], infeasible",
				i, ps.rowLower[i], ps.rowUpper[i])
			ps.status = PresolveStatusInfeasible
			return false
		}
		ps.killRow(i)
		ps.ops = append(ps.ops, presolveOp{kind: opEmptyRow, row: i, col: -1})
	}
	return true
}

//==============================================================================

// removeRedundantRows deletes rows whose implied activity range, computed
// from the working column bounds, can never violate the row bounds. A row
// whose implied range lies entirely outside its bounds is infeasible.
// Returns false when a terminal status was set.
func (ps *presolveSession) removeRedundantRows() bool {
	for i := 0; i < ps.orig.NumRow; i++ {
		if !ps.rowAlive[i] || len(ps.rowEntries[i]) == 0 {
			continue
		}

		minAct, maxAct := ps.impliedActivity(i)

		if minAct > ps.rowUpper[i]+ps.tol || maxAct < ps.rowLower[i]-ps.tol {
			log(pINFO, "Row %d implied activity [%g, %g] outside bounds [%g, %g]",
				i, minAct, maxAct, ps.rowLower[i], ps.rowUpper[i])
			ps.status = PresolveStatusInfeasible
			return false
		}

		if minAct >= ps.rowLower[i]-ps.tol && maxAct <= ps.rowUpper[i]+ps.tol {
			ps.killRow(i)
			ps.ops = append(ps.ops, presolveOp{kind: opRedundantRow, row: i, col: -1})
		}
	}
	return true
}

//==============================================================================

// impliedActivity returns the range the activity of row i can take given the
// working column bounds. Either end may be infinite.
func (ps *presolveSession) impliedActivity(i int) (minAct, maxAct float64) {
	m := ps.orig
	for _, el := range ps.rowEntries[i] {
		j := ps.colOf[el]
		v := m.AValue[el]
		lo, up := ps.colLower[j], ps.colUpper[j]
		if v > 0 {
			minAct = addBounded(minAct, v*lo)
			maxAct = addBounded(maxAct, v*up)
		} else {
			minAct = addBounded(minAct, v*up)
			maxAct = addBounded(maxAct, v*lo)
		}
	}
	return minAct, maxAct
}

// addBounded adds a term to a running activity bound, saturating at the
// infinity sentinel.
func addBounded(sum, term float64) float64 {
	if !isFinite(sum) || !isFinite(term) {
		if term >= Infinity || sum >= Infinity {
			return Infinity
		}
		return -Infinity
	}
	return sum + term
}

//==============================================================================

// removeRowSingletons handles rows with exactly one surviving coefficient.
// An equality singleton fixes its column, which is then substituted out
// together with the row. An inequality singleton only tightens the column
// bounds and deletes the row. Returns false when a terminal status was set.
func (ps *presolveSession) removeRowSingletons() bool {
	m := ps.orig
	for i := 0; i < m.NumRow; i++ {
		if !ps.rowAlive[i] || len(ps.rowEntries[i]) != 1 {
			continue
		}
		el := ps.rowEntries[i][0]
		j := ps.colOf[el]
		coef := m.AValue[el]
		if coef == 0 {
			continue
		}

		lo, up := ps.rowLower[i], ps.rowUpper[i]
		newLo, newUp := ps.colLower[j], ps.colUpper[j]
		if coef > 0 {
			if isFinite(lo) && lo/coef > newLo {
				newLo = lo / coef
			}
			if isFinite(up) && up/coef < newUp {
				newUp = up / coef
			}
		} else {
			if isFinite(up) && up/coef > newLo {
				newLo = up / coef
			}
			if isFinite(lo) && lo/coef < newUp {
				newUp = lo / coef
			}
		}

		if newLo > newUp+ps.tol {
			log(pINFO, "Row singleton %d forces column %d into empty range [%g, %g]",
				i, j, newLo, newUp)
			ps.status = PresolveStatusInfeasible
			return false
		}
		ps.colLower[j] = newLo
		ps.colUpper[j] = math.Max(newUp, newLo)

		if lo == up {
			// Equality: the column value is decided here, substitute it out.
			value := lo / coef
			ps.killRow(i)
			ps.substituteCol(j, value)
			ps.ops = append(ps.ops, presolveOp{kind: opRowSingleton, row: i, col: j, value: value})
		} else {
			ps.killRow(i)
			ps.ops = append(ps.ops, presolveOp{kind: opRedundantRow, row: i, col: -1})
		}
	}
	return true
}

//==============================================================================

// substituteCol removes column j from the working problem with its value
// known, shifting the bounds of every row it appears in and folding its cost
// into the objective offset.
func (ps *presolveSession) substituteCol(j int, value float64) {
	m := ps.orig
	for el := m.AStart[j]; el < m.AStart[j+1]; el++ {
		i := m.AIndex[el]
		if !ps.rowAlive[i] {
			continue
		}
		v := m.AValue[el]
		if isFinite(ps.rowLower[i]) {
			ps.rowLower[i] -= v * value
		}
		if isFinite(ps.rowUpper[i]) {
			ps.rowUpper[i] -= v * value
		}
	}
	ps.offset += ps.colCost[j] * value
	ps.killCol(j)
}

//==============================================================================

// removeFixedCols substitutes out columns whose working bounds coincide.
// Always returns true; fixing a column cannot fail.
func (ps *presolveSession) removeFixedCols() bool {
	for j := 0; j < ps.orig.NumCol; j++ {
		if !ps.colAlive[j] || ps.colLower[j] != ps.colUpper[j] {
			continue
		}
		value := ps.colLower[j]
		ps.substituteCol(j, value)
		ps.ops = append(ps.ops, presolveOp{kind: opFixedCol, row: -1, col: j, value: value})
	}
	return true
}

//==============================================================================

// removeEmptyCols fixes columns with no surviving coefficients at whichever
// bound the objective prefers. A cost pushing an unbounded direction makes
// the problem unbounded. Returns false when a terminal status was set.
func (ps *presolveSession) removeEmptyCols() bool {
	sigma := float64(ps.orig.Sense)
	for j := 0; j < ps.orig.NumCol; j++ {
		if !ps.colAlive[j] || ps.colCount[j] != 0 {
			continue
		}
		cost := sigma * ps.colCost[j]
		var value float64
		switch {
		case cost > 0:
			if !isFinite(ps.colLower[j]) {
				log(pINFO, "Empty column %d is unbounded below with cost %g", j, ps.colCost[j])
				ps.status = PresolveStatusUnbounded
				return false
			}
			value = ps.colLower[j]
		case cost < 0:
			if !isFinite(ps.colUpper[j]) {
				log(pINFO, "Empty column %d is unbounded above with cost %g", j, ps.colCost[j])
				ps.status = PresolveStatusUnbounded
				return false
			}
			value = ps.colUpper[j]
		default:
			switch {
			case isFinite(ps.colLower[j]):
				value = ps.colLower[j]
			case isFinite(ps.colUpper[j]):
				value = ps.colUpper[j]
			default:
				value = 0
			}
		}
		ps.offset += ps.colCost[j] * value
		ps.killCol(j)
		ps.ops = append(ps.ops, presolveOp{kind: opEmptyCol, row: -1, col: j, value: value})
	}
	return true
}

//==============================================================================

// reducedModel builds the reduced problem from the surviving rows and
// columns and records the index maps needed by postsolve. The reduced model
// keeps the original objective sense; sign handling for maximization is the
// orchestrator's concern.
// In case of failure, function returns an error.
func (ps *presolveSession) reducedModel() (*Model, error) {

	if ps.status != PresolveStatusReduced && ps.status != PresolveStatusReducedToEmpty {
		return nil, errors.Errorf("no reduced problem in presolve status %s", ps.status)
	}

	m := ps.orig
	ps.colMap = ps.colMap[:0]
	ps.rowMap = ps.rowMap[:0]
	rowTo := make([]int, m.NumRow)
	for i := 0; i < m.NumRow; i++ {
		rowTo[i] = -1
		if ps.rowAlive[i] {
			rowTo[i] = len(ps.rowMap)
			ps.rowMap = append(ps.rowMap, i)
		}
	}
	for j := 0; j < m.NumCol; j++ {
		if ps.colAlive[j] {
			ps.colMap = append(ps.colMap, j)
		}
	}

	red := &Model{
		NumCol: len(ps.colMap),
		NumRow: len(ps.rowMap),
		Sense:  m.Sense,
		Offset: ps.offset,
		Name:   m.Name + ".reduced",
	}
	red.AStart = make([]int, red.NumCol+1)
	for rj, j := range ps.colMap {
		red.ColCost = append(red.ColCost, ps.colCost[j])
		red.ColLower = append(red.ColLower, ps.colLower[j])
		red.ColUpper = append(red.ColUpper, ps.colUpper[j])
		for el := m.AStart[j]; el < m.AStart[j+1]; el++ {
			if ri := rowTo[m.AIndex[el]]; ri >= 0 {
				red.AIndex = append(red.AIndex, ri)
				red.AValue = append(red.AValue, m.AValue[el])
			}
		}
		red.AStart[rj+1] = len(red.AIndex)
	}
	for _, i := range ps.rowMap {
		red.RowLower = append(red.RowLower, ps.rowLower[i])
		red.RowUpper = append(red.RowUpper, ps.rowUpper[i])
	}
	return red, nil
}

//==============================================================================

// negateReducedCosts flips the objective of a reduced problem so that a
// maximization model can be solved in minimization form. Applying it twice
// restores the original objective.
func negateReducedCosts(m *Model) {
	for j := range m.ColCost {
		m.ColCost[j] = -m.ColCost[j]
	}
	m.Offset = -m.Offset
	if m.Sense == ObjSenseMaximize {
		m.Sense = ObjSenseMinimize
	} else {
		m.Sense = ObjSenseMaximize
	}
}

// negateColDuals flips the sign of every column dual in a solution.
func negateColDuals(sol *Solution) {
	for j := range sol.ColDual {
		sol.ColDual[j] = -sol.ColDual[j]
	}
}

//==============================================================================

// postsolve lifts a reduced-space solution and basis back to the original
// dimensions by replaying the operation stack in reverse. Deleted rows come
// back with a zero dual and a basic slack; deleted columns come back
// nonbasic at their fixed value with a reduced cost computed from the
// recovered row duals. Row activities are recomputed from scratch.
func (ps *presolveSession) postsolve(redSol *Solution, redBasis *Basis) (Solution, Basis, PostsolveStatus) {

	var sol Solution
	var basis Basis

	if ps.status != PresolveStatusReduced && ps.status != PresolveStatusReducedToEmpty {
		// Nothing was removed, so there is nothing to lift back.
		return sol, basis, PostsolveStatusNoPostsolve
	}

	m := ps.orig
	nRed := len(ps.colMap)
	mRed := len(ps.rowMap)
	if len(redSol.ColValue) != nRed || len(redSol.ColDual) != nRed ||
		len(redSol.RowDual) != mRed {
		return sol, basis, PostsolveStatusReducedSolutionDimensionError
	}

	sol.ColValue = make([]float64, m.NumCol)
	sol.ColDual = make([]float64, m.NumCol)
	sol.RowValue = make([]float64, m.NumRow)
	sol.RowDual = make([]float64, m.NumRow)
	basis.ColStatus = make([]BasisStatus, m.NumCol)
	basis.RowStatus = make([]BasisStatus, m.NumRow)
	basis.Valid = redBasis.Valid

	restoredCol := make([]bool, m.NumCol)
	for rj, j := range ps.colMap {
		sol.ColValue[j] = redSol.ColValue[rj]
		sol.ColDual[j] = redSol.ColDual[rj]
		restoredCol[j] = true
		if redBasis.Valid {
			basis.ColStatus[j] = redBasis.ColStatus[rj]
		}
	}
	for ri, i := range ps.rowMap {
		sol.RowDual[i] = redSol.RowDual[ri]
		if redBasis.Valid {
			basis.RowStatus[i] = redBasis.RowStatus[ri]
		}
	}

	sigma := float64(m.Sense)
	for k := len(ps.ops) - 1; k >= 0; k-- {
		op := ps.ops[k]
		switch op.kind {

		case opEmptyRow, opRedundantRow:
			// The row constrains nothing at the solution; its slack is basic
			// and its dual is zero.
			sol.RowDual[op.row] = 0
			basis.RowStatus[op.row] = BasisStatusBasic

		case opRowSingleton:
			// The column takes the value the equality row dictates, which
			// may lie strictly between its bounds; it comes back basic with
			// the row nonbasic, keeping the basic count at the row count.
			sol.ColValue[op.col] = op.value
			sol.RowDual[op.row] = 0
			basis.RowStatus[op.row] = BasisStatusLower
			basis.ColStatus[op.col] = BasisStatusBasic
			restoredCol[op.col] = true

		case opFixedCol, opEmptyCol:
			sol.ColValue[op.col] = op.value
			basis.ColStatus[op.col] = statusForValue(op.value,
				m.ColLower[op.col], m.ColUpper[op.col])
			restoredCol[op.col] = true
		}
	}

	for j := 0; j < m.NumCol; j++ {
		if !restoredCol[j] {
			return sol, basis, PostsolveStatusError
		}
	}

	// Reduced costs of restored columns follow from the recovered row duals.
	for k := len(ps.ops) - 1; k >= 0; k-- {
		op := ps.ops[k]
		if op.col < 0 {
			continue
		}
		d := sigma * m.ColCost[op.col]
		for el := m.AStart[op.col]; el < m.AStart[op.col+1]; el++ {
			d -= m.AValue[el] * sol.RowDual[m.AIndex[el]]
		}
		sol.ColDual[op.col] = d
	}

	copy(sol.RowValue, rowActivities(m, sol.ColValue))

	return sol, basis, PostsolveStatusSolutionRecovered
}

//==============================================================================

// statusForValue chooses the nonbasic status matching a restored column's
// value, falling back to the bound-preference rule when the value rests at
// neither bound.
func statusForValue(value, lower, upper float64) BasisStatus {
	switch {
	case value == lower:
		return BasisStatusLower
	case value == upper:
		return BasisStatusUpper
	}
	return nonbasicStatusFor(lower, upper)
}

//==============================================================================

// emptyReducedSolution returns the zero-dimension solution and basis fed to
// postsolve when presolve reduced the problem to nothing.
func (ps *presolveSession) emptyReducedSolution() (Solution, Basis) {
	sol := Solution{
		ColValue: []float64{},
		ColDual:  []float64{},
		RowValue: []float64{},
		RowDual:  []float64{},
	}
	basis := Basis{
		ColStatus: []BasisStatus{},
		RowStatus: []BasisStatus{},
		Valid:     true,
	}
	return sol, basis
}

//==============================================================================

// reductionCounts reports how many rows, columns and nonzeros presolve
// removed.
func (ps *presolveSession) reductionCounts() (rows, cols, nz int) {
	return ps.rowsRemoved, ps.colsRemoved, ps.nzRemoved
}
