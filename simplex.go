package highs

import (
	"math"
	"time"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// simplex: the default binding of the LP solver contract. A dense
// bounded-variable revised simplex over the augmented system
//
//	A x - s = 0,  l <= x <= u,  L <= s <= U
//
// where s carries the row activities, so a row's basis status is exactly its
// logical variable's status. Infeasible starts are handled by a phase-1
// minimization over artificial variables on the violated rows. The basis
// matrix is refactorized with an LU decomposition every iteration; problem
// sizes this package is used for make the simplicity worth the extra solves.

// Pivot and ratio-test tolerance.
const pivotTol = 1e-10

// Result of one simplex phase.
type phaseResult int

const (
	phaseOptimal phaseResult = iota
	phaseUnbounded
	phaseIterationLimit
	phaseTimeLimit
	phaseSingular
)

//==============================================================================

// simplexInstance is the working state of one simplex solve.
type simplexInstance struct {
	model  *Model
	numCol int // structural columns
	numRow int
	numVar int // structurals + slacks + artificials

	sigma float64 // +1 to minimize, -1 to maximize

	lower []float64 // per-variable lower bound
	upper []float64 // per-variable upper bound
	cost  []float64 // phase-2 cost, sigma * ColCost on structurals

	artSign []float64 // coefficient of each artificial in its row

	value    []float64     // current value per variable
	status   []BasisStatus // current status per variable
	basicIdx []int         // basic variable per row

	lu *mat.LU // factorization of the current basis matrix

	iterations int
	deadline   time.Time // zero when no time limit applies
	iterLimit  int
}

//==============================================================================

// newSimplexInstance builds the augmented bounded form for a model.
func newSimplexInstance(m *Model) *simplexInstance {
	n := m.NumCol
	nr := m.NumRow
	inst := &simplexInstance{
		model:   m,
		numCol:  n,
		numRow:  nr,
		numVar:  n + 2*nr,
		sigma:   float64(m.Sense),
		lower:   make([]float64, n+2*nr),
		upper:   make([]float64, n+2*nr),
		cost:    make([]float64, n+2*nr),
		artSign: make([]float64, nr),
		value:   make([]float64, n+2*nr),
		status:  make([]BasisStatus, n+2*nr),
	}
	for j := 0; j < n; j++ {
		inst.lower[j] = m.ColLower[j]
		inst.upper[j] = m.ColUpper[j]
		inst.cost[j] = inst.sigma * m.ColCost[j]
	}
	for i := 0; i < nr; i++ {
		inst.lower[n+i] = m.RowLower[i]
		inst.upper[n+i] = m.RowUpper[i]
		// Artificials are fixed at zero unless phase 1 releases them.
		inst.lower[n+nr+i] = 0
		inst.upper[n+nr+i] = 0
		inst.artSign[i] = -1
	}
	return inst
}

//==============================================================================

// column accumulates y . W_k for variable k against a dense vector.
func (inst *simplexInstance) columnDot(y []float64, k int) float64 {
	switch {
	case k < inst.numCol:
		m := inst.model
		dot := 0.0
		for el := m.AStart[k]; el < m.AStart[k+1]; el++ {
			dot += m.AValue[el] * y[m.AIndex[el]]
		}
		return dot
	case k < inst.numCol+inst.numRow:
		return -y[k-inst.numCol]
	default:
		i := k - inst.numCol - inst.numRow
		return inst.artSign[i] * y[i]
	}
}

//==============================================================================

// addColumnTo adds z_k * W_k into a dense vector.
func (inst *simplexInstance) addColumnTo(dst []float64, k int, scale float64) {
	if scale == 0 {
		return
	}
	switch {
	case k < inst.numCol:
		m := inst.model
		for el := m.AStart[k]; el < m.AStart[k+1]; el++ {
			dst[m.AIndex[el]] += m.AValue[el] * scale
		}
	case k < inst.numCol+inst.numRow:
		dst[k-inst.numCol] -= scale
	default:
		i := k - inst.numCol - inst.numRow
		dst[i] += inst.artSign[i] * scale
	}
}

//==============================================================================

// factorize rebuilds and factorizes the basis matrix from basicIdx. A
// singular basis is only detected when the factorization is first used.
// In case of failure, function returns an error.
func (inst *simplexInstance) factorize() error {
	nr := inst.numRow
	if nr == 0 {
		inst.lu = nil
		return nil
	}
	b := mat.NewDense(nr, nr, nil)
	unit := make([]float64, nr)
	for p, k := range inst.basicIdx {
		for i := range unit {
			unit[i] = 0
		}
		inst.addColumnTo(unit, k, 1)
		for i := 0; i < nr; i++ {
			b.Set(i, p, unit[i])
		}
	}
	var lu mat.LU
	lu.Factorize(b)
	inst.lu = &lu
	return nil
}

//==============================================================================

// solveB solves B q = rhs (or B^T q = rhs when trans is set). An
// ill-conditioned but usable factorization is accepted; an effectively
// singular one is not. In case of failure, function returns an error.
func (inst *simplexInstance) solveB(rhs []float64, trans bool) ([]float64, error) {
	if inst.numRow == 0 {
		return nil, nil
	}
	out, err := luSolve(inst.lu, rhs, trans)
	if err != nil {
		return nil, errors.Wrap(err, "basis solve failed")
	}
	return out, nil
}

//==============================================================================

// luSolve runs one dense solve against a factorization, mapping gonum's
// condition-number report onto a hard failure only when the matrix is
// numerically singular. In case of failure, function returns an error.
func luSolve(lu *mat.LU, rhs []float64, trans bool) ([]float64, error) {
	nr := len(rhs)
	out := mat.NewVecDense(nr, nil)
	err := lu.SolveVecTo(out, trans, mat.NewVecDense(nr, append([]float64(nil), rhs...)))
	if err != nil {
		cond, ok := err.(mat.Condition)
		if !ok || math.IsInf(float64(cond), 1) {
			return nil, errors.Wrap(err, "singular matrix")
		}
	}
	res := make([]float64, nr)
	for i := 0; i < nr; i++ {
		res[i] = out.AtVec(i)
	}
	return res, nil
}

//==============================================================================

// computeBasicValues recomputes the values of the basic variables from the
// nonbasic values. In case of failure, function returns an error.
func (inst *simplexInstance) computeBasicValues() error {
	if inst.numRow == 0 {
		return nil
	}
	rhs := make([]float64, inst.numRow)
	inBasis := make([]bool, inst.numVar)
	for _, k := range inst.basicIdx {
		inBasis[k] = true
	}
	for k := 0; k < inst.numVar; k++ {
		if !inBasis[k] {
			inst.addColumnTo(rhs, k, -inst.value[k])
		}
	}
	xb, err := inst.solveB(rhs, false)
	if err != nil {
		return err
	}
	for p, k := range inst.basicIdx {
		inst.value[k] = xb[p]
		inst.status[k] = BasisStatusBasic
	}
	return nil
}

//==============================================================================

// nonbasicRestingValue places a nonbasic variable on the bound its status
// names, falling back to a finite bound (or zero for a free variable).
func (inst *simplexInstance) nonbasicRestingValue(k int) float64 {
	switch inst.status[k] {
	case BasisStatusLower:
		if isFinite(inst.lower[k]) {
			return inst.lower[k]
		}
	case BasisStatusUpper:
		if isFinite(inst.upper[k]) {
			return inst.upper[k]
		}
	}
	if isFinite(inst.lower[k]) {
		return inst.lower[k]
	}
	if isFinite(inst.upper[k]) {
		return inst.upper[k]
	}
	return 0
}

//==============================================================================

// initLogical sets up the cold-start point: structurals nonbasic at their
// preferred bound, slacks basic where the initial activity is within the row
// bounds, and a phase-1 artificial made basic on every violated row.
// It returns the number of basic artificials.
func (inst *simplexInstance) initLogical() int {
	n, nr := inst.numCol, inst.numRow

	for j := 0; j < n; j++ {
		inst.status[j] = nonbasicStatusFor(inst.lower[j], inst.upper[j])
		inst.value[j] = inst.nonbasicRestingValue(j)
	}

	activity := rowActivities(inst.model, inst.value[:n])
	inst.basicIdx = make([]int, nr)
	numArtificial := 0

	for i := 0; i < nr; i++ {
		slack := n + i
		art := n + nr + i
		g := activity[i]
		if g >= inst.lower[slack]-pivotTol && g <= inst.upper[slack]+pivotTol {
			// Row satisfied: slack basic at the activity.
			inst.basicIdx[i] = slack
			inst.status[slack] = BasisStatusBasic
			inst.value[slack] = g
			inst.status[art] = BasisStatusLower
			inst.value[art] = 0
			continue
		}
		// Row violated: slack rests at the violated bound, artificial
		// carries the residual.
		if g < inst.lower[slack] {
			inst.status[slack] = BasisStatusLower
		} else {
			inst.status[slack] = BasisStatusUpper
		}
		inst.value[slack] = inst.nonbasicRestingValue(slack)
		resid := g - inst.value[slack]
		if resid > 0 {
			inst.artSign[i] = -1
		} else {
			inst.artSign[i] = 1
		}
		inst.basicIdx[i] = art
		inst.status[art] = BasisStatusBasic
		inst.value[art] = resid / -inst.artSign[i]
		inst.upper[art] = Infinity
		numArtificial++
	}
	return numArtificial
}

//==============================================================================

// initFromBasis attempts a warm start from the given basis. It reports
// whether the basis produced a usable, primal-feasible starting point.
func (inst *simplexInstance) initFromBasis(basis *Basis) bool {
	n, nr := inst.numCol, inst.numRow
	if !basis.Valid || len(basis.ColStatus) != n || len(basis.RowStatus) != nr {
		return false
	}

	inst.basicIdx = inst.basicIdx[:0]
	for j := 0; j < n; j++ {
		inst.status[j] = basis.ColStatus[j]
		if basis.ColStatus[j] == BasisStatusBasic {
			inst.basicIdx = append(inst.basicIdx, j)
		} else {
			inst.value[j] = inst.nonbasicRestingValue(j)
		}
	}
	for i := 0; i < nr; i++ {
		slack := n + i
		inst.status[slack] = basis.RowStatus[i]
		if basis.RowStatus[i] == BasisStatusBasic {
			inst.basicIdx = append(inst.basicIdx, slack)
		} else {
			inst.value[slack] = inst.nonbasicRestingValue(slack)
		}
	}
	for i := 0; i < nr; i++ {
		art := n + nr + i
		inst.status[art] = BasisStatusLower
		inst.value[art] = 0
	}

	if len(inst.basicIdx) != nr {
		return false
	}
	if err := inst.factorize(); err != nil {
		return false
	}
	if err := inst.computeBasicValues(); err != nil {
		return false
	}
	// Reject a warm start that is not primal feasible; the caller falls
	// back to the cold start.
	for _, k := range inst.basicIdx {
		if inst.value[k] < inst.lower[k]-1e-7 || inst.value[k] > inst.upper[k]+1e-7 {
			return false
		}
	}
	return true
}

//==============================================================================

// runPhase iterates the bounded simplex with the given cost vector until
// optimality, unboundedness, or a limit. Bland's rule keeps the iteration
// finite under degeneracy. In case of failure, function returns an error.
func (inst *simplexInstance) runPhase(cost []float64, dualTol float64) (phaseResult, error) {

	n := inst.numVar
	nr := inst.numRow
	inBasis := make([]bool, n)

	for {
		if inst.iterations >= inst.iterLimit {
			return phaseIterationLimit, nil
		}
		if !inst.deadline.IsZero() && time.Now().After(inst.deadline) {
			return phaseTimeLimit, nil
		}

		if err := inst.factorize(); err != nil {
			return phaseSingular, err
		}
		if err := inst.computeBasicValues(); err != nil {
			return phaseSingular, err
		}

		// Dual values for the current basis.
		cb := make([]float64, nr)
		for p, k := range inst.basicIdx {
			cb[p] = cost[k]
		}
		y, err := inst.solveB(cb, true)
		if err != nil {
			return phaseSingular, err
		}

		for k := range inBasis {
			inBasis[k] = false
		}
		for _, k := range inst.basicIdx {
			inBasis[k] = true
		}

		// Pricing under Bland's rule: the entering variable is the lowest
		// numbered one whose reduced cost allows improvement.
		entering := -1
		direction := 1.0
		for k := 0; k < n; k++ {
			if inBasis[k] || inst.lower[k] == inst.upper[k] {
				continue
			}
			d := cost[k] - inst.columnDot(y, k)
			switch inst.status[k] {
			case BasisStatusLower:
				if d < -dualTol {
					entering, direction = k, 1
				}
			case BasisStatusUpper:
				if d > dualTol {
					entering, direction = k, -1
				}
			case BasisStatusZero:
				if d < -dualTol {
					entering, direction = k, 1
				} else if d > dualTol {
					entering, direction = k, -1
				}
			}
			if entering >= 0 {
				break
			}
		}
		if entering < 0 {
			return phaseOptimal, nil
		}

		// Direction of change of the basic variables when the entering
		// variable moves by +direction.
		col := make([]float64, nr)
		inst.addColumnTo(col, entering, 1)
		w, err := inst.solveB(col, false)
		if err != nil {
			return phaseSingular, err
		}

		// Ratio test: the entering variable moves until it reaches its own
		// opposite bound or a basic variable reaches one of its bounds.
		step := Infinity
		if isFinite(inst.lower[entering]) && isFinite(inst.upper[entering]) {
			step = inst.upper[entering] - inst.lower[entering]
		}
		leavingPos := -1
		leavingToUpper := false
		for p, k := range inst.basicIdx {
			rate := -direction * w[p] // change of basic k per unit step
			if rate > pivotTol {
				if isFinite(inst.upper[k]) {
					t := (inst.upper[k] - inst.value[k]) / rate
					if t < step {
						step, leavingPos, leavingToUpper = t, p, true
					}
				}
			} else if rate < -pivotTol {
				if isFinite(inst.lower[k]) {
					t := (inst.lower[k] - inst.value[k]) / rate
					if t < step {
						step, leavingPos, leavingToUpper = t, p, false
					}
				}
			}
		}

		if !isFinite(step) {
			return phaseUnbounded, nil
		}
		if step < 0 {
			step = 0
		}

		inst.iterations++

		if leavingPos < 0 {
			// Bound flip: the entering variable crosses to its opposite
			// bound without any basis change.
			if direction > 0 {
				inst.status[entering] = BasisStatusUpper
			} else {
				inst.status[entering] = BasisStatusLower
			}
			inst.value[entering] = inst.nonbasicRestingValue(entering)
			continue
		}

		// Pivot: entering becomes basic, the blocking variable leaves to
		// the bound it reached.
		leaving := inst.basicIdx[leavingPos]
		inst.value[entering] += direction * step
		inst.status[entering] = BasisStatusBasic
		if leavingToUpper {
			inst.status[leaving] = BasisStatusUpper
		} else {
			inst.status[leaving] = BasisStatusLower
		}
		inst.value[leaving] = inst.nonbasicRestingValue(leaving)
		inst.basicIdx[leavingPos] = entering
	}
}

//==============================================================================

// dropArtificials relabels any artificial still basic (necessarily at zero)
// as its row's logical variable, so that the reported basis mentions only
// structural and logical variables.
func (inst *simplexInstance) dropArtificials() {
	n, nr := inst.numCol, inst.numRow
	for p, k := range inst.basicIdx {
		if k < n+nr {
			continue
		}
		i := k - n - nr
		slack := n + i
		inst.basicIdx[p] = slack
		// Relabelling keeps the point: the slack keeps its resting value
		// and simply becomes (degenerately) basic.
		inst.status[slack] = BasisStatusBasic
		inst.status[k] = BasisStatusLower
		inst.value[k] = 0
	}
}

//==============================================================================

// solveSimplex runs the two-phase bounded simplex on a context's model,
// optionally warm-started from the context basis, and fills the context's
// solution, basis, factorization and status.
// In case of failure, function returns an error.
func solveSimplex(ctx *solveContext, opts *Options, warmStart bool) error {

	m := ctx.model
	inst := newSimplexInstance(m)
	inst.iterLimit = opts.IterationLimit
	if isFinite(opts.TimeLimit) && opts.TimeLimit > 0 {
		inst.deadline = time.Now().Add(time.Duration(opts.TimeLimit * float64(time.Second)))
	}

	warmed := false
	if warmStart && ctx.basis.Valid {
		warmed = inst.initFromBasis(&ctx.basis)
		if !warmed {
			log(pINFO, "Warm basis unusable for %s, falling back to cold start", ctx.name)
		}
	}

	needPhase1 := 0
	if !warmed {
		needPhase1 = inst.initLogical()
	}

	// Phase 1: drive the artificials on violated rows to zero.
	if needPhase1 > 0 {
		phase1Cost := make([]float64, inst.numVar)
		for i := 0; i < inst.numRow; i++ {
			phase1Cost[inst.numCol+inst.numRow+i] = 1
		}
		res, err := inst.runPhase(phase1Cost, 1e-9)
		if err != nil {
			ctx.scaledStatus = ModelStatusSolveError
			return errors.Wrapf(err, "phase 1 failed on %s", ctx.name)
		}
		switch res {
		case phaseIterationLimit:
			ctx.scaledStatus = ModelStatusReachedIterationLimit
			ctx.iters.simplex += inst.iterations
			return nil
		case phaseTimeLimit:
			ctx.scaledStatus = ModelStatusReachedTimeLimit
			ctx.iters.simplex += inst.iterations
			return nil
		case phaseUnbounded, phaseSingular:
			ctx.scaledStatus = ModelStatusSolveError
			return errors.Errorf("phase 1 terminated abnormally on %s", ctx.name)
		}
		infeasibility := 0.0
		for i := 0; i < inst.numRow; i++ {
			infeasibility += inst.value[inst.numCol+inst.numRow+i]
		}
		if infeasibility > opts.PrimalFeasibilityTolerance {
			ctx.scaledStatus = ModelStatusPrimalInfeasible
			ctx.unscaledStatus = ModelStatusPrimalInfeasible
			ctx.iters.simplex += inst.iterations
			ctx.state = stateLoaded
			return nil
		}
		// Pin the artificials back to zero for phase 2.
		for i := 0; i < inst.numRow; i++ {
			inst.upper[inst.numCol+inst.numRow+i] = 0
		}
	}

	// Phase 2: the true objective.
	res, err := inst.runPhase(inst.cost, opts.DualFeasibilityTolerance)
	if err != nil {
		ctx.scaledStatus = ModelStatusSolveError
		return errors.Wrapf(err, "phase 2 failed on %s", ctx.name)
	}
	ctx.iters.simplex += inst.iterations

	switch res {
	case phaseIterationLimit:
		ctx.scaledStatus = ModelStatusReachedIterationLimit
		return nil
	case phaseTimeLimit:
		ctx.scaledStatus = ModelStatusReachedTimeLimit
		return nil
	case phaseSingular:
		ctx.scaledStatus = ModelStatusSolveError
		return errors.Errorf("phase 2 met a singular basis on %s", ctx.name)
	case phaseUnbounded:
		ctx.scaledStatus = ModelStatusPrimalUnbounded
		ctx.unscaledStatus = ModelStatusPrimalUnbounded
		extractBasis(inst, ctx)
		return nil
	}

	inst.dropArtificials()
	if err := inst.factorize(); err != nil {
		ctx.scaledStatus = ModelStatusSolveError
		return errors.Wrap(err, "refactorization after cleanup failed")
	}
	if err := inst.computeBasicValues(); err != nil {
		ctx.scaledStatus = ModelStatusSolveError
		return errors.Wrap(err, "final basic values unavailable")
	}

	extractSolution(inst, ctx)
	extractBasis(inst, ctx)
	ctx.lu = inst.lu
	ctx.basicIndex = append([]int(nil), inst.basicIdx...)
	ctx.state = stateSolved

	// The dual objective cutoff is assessed on the certified objective; a
	// minimization finishing above the bound reports the cutoff status.
	obj := objectiveValue(m, ctx.solution.ColValue)
	if isFinite(opts.DualObjectiveValueUpperBound) &&
		inst.sigma*obj > opts.DualObjectiveValueUpperBound {
		ctx.scaledStatus = ModelStatusReachedDualObjectiveUpperBound
		ctx.unscaledStatus = ModelStatusReachedDualObjectiveUpperBound
		return nil
	}

	ctx.scaledStatus = ModelStatusOptimal
	return nil
}

//==============================================================================

// extractSolution writes the instance's primal and dual values into the
// context solution, with duals reported in the sense of the model.
func extractSolution(inst *simplexInstance, ctx *solveContext) {
	n, nr := inst.numCol, inst.numRow

	ctx.solution.ColValue = append(ctx.solution.ColValue[:0], inst.value[:n]...)
	ctx.solution.RowValue = append(ctx.solution.RowValue[:0], inst.value[n:n+nr]...)

	cb := make([]float64, nr)
	for p, k := range inst.basicIdx {
		cb[p] = inst.cost[k]
	}
	y, err := inst.solveB(cb, true)
	if err != nil {
		log(pWARN, "Dual values unavailable: %v", err)
		y = make([]float64, nr)
	}

	ctx.solution.RowDual = resizeFloats(ctx.solution.RowDual, nr)
	for i := 0; i < nr; i++ {
		ctx.solution.RowDual[i] = inst.sigma * y[i]
	}
	ctx.solution.ColDual = resizeFloats(ctx.solution.ColDual, n)
	for j := 0; j < n; j++ {
		d := inst.cost[j] - inst.columnDot(y, j)
		ctx.solution.ColDual[j] = inst.sigma * d
	}
}

//==============================================================================

// extractBasis writes the instance's basis statuses into the context basis.
func extractBasis(inst *simplexInstance, ctx *solveContext) {
	n, nr := inst.numCol, inst.numRow
	ctx.basis.ColStatus = resizeStatuses(ctx.basis.ColStatus, n)
	copy(ctx.basis.ColStatus, inst.status[:n])
	ctx.basis.RowStatus = resizeStatuses(ctx.basis.RowStatus, nr)
	copy(ctx.basis.RowStatus, inst.status[n:n+nr])
	ctx.basis.Valid = true
}
