package highs

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// ipm: the interior-point binding of the LP solver contract. A primal
// log-barrier method with damped Newton steps drives the iterate towards the
// analytic center of the optimal face; crossover then converts the interior
// point into a basic (vertex) solution by snapping it to a basis guess and
// hot-starting the simplex solver. Without crossover the interior point is
// reported as-is, with no basis, leaving the unscaled status to be settled
// by the reconciliation path.

const (
	ipmInitialMu    = 1.0
	ipmMuShrink     = 0.2
	ipmOuterSteps   = 10
	ipmNewtonSteps  = 20
	ipmGradientTol  = 1e-8
	ipmSnapTol      = 1e-6
	ipmRegularizing = 1e-10
)

//==============================================================================

// solveIpm runs the barrier method on a context's model and, when crossover
// is enabled, finishes with a simplex cleanup that certifies optimality and
// produces the basis. In case of failure, function returns an error.
func solveIpm(ctx *solveContext, opts *Options) error {

	m := ctx.model
	x, ipmIters, interior := barrierSolve(m, opts)
	ctx.iters.ipm += ipmIters

	if !opts.RunCrossover {
		if !interior {
			// No strictly interior point was found; nothing trustworthy
			// to report without the crossover cleanup.
			ctx.scaledStatus = ModelStatusReachedIterationLimit
			return nil
		}
		ctx.solution.ColValue = append(ctx.solution.ColValue[:0], x...)
		ctx.solution.RowValue = append(ctx.solution.RowValue[:0], rowActivities(m, x)...)
		ctx.solution.ColDual = resizeFloats(ctx.solution.ColDual, m.NumCol)
		ctx.solution.RowDual = resizeFloats(ctx.solution.RowDual, m.NumRow)
		ctx.basis.clear()
		// Optimality of the interior point is only certified in the
		// solver's own (scaled) view; the unscaled status is left unset
		// for the reconciliation pass to settle.
		ctx.scaledStatus = ModelStatusOptimal
		ctx.state = stateLoaded
		return nil
	}

	if interior {
		ctx.basis = basisFromPoint(m, x)
	} else {
		ctx.basis.clear()
	}

	before := ctx.iters.simplex
	if err := solveSimplex(ctx, opts, ctx.basis.Valid); err != nil {
		return errors.Wrap(err, "crossover failed")
	}
	ctx.iters.crossover += ctx.iters.simplex - before
	ctx.iters.simplex = before
	return nil
}

//==============================================================================

// barrierSolve minimizes the objective plus a logarithmic barrier over all
// finite column and row bounds, shrinking the barrier weight geometrically.
// It returns the final iterate, the Newton iteration count, and whether the
// iterate is strictly interior.
func barrierSolve(m *Model, opts *Options) ([]float64, int, bool) {

	n := m.NumCol
	x := interiorStart(m)
	if !strictlyInterior(m, x) {
		log(pWARN, "No strictly interior starting point for %s", m.Name)
		return x, 0, false
	}

	iterations := 0
	mu := ipmInitialMu
	sigma := float64(m.Sense)

	grad := make([]float64, n)
	for outer := 0; outer < ipmOuterSteps; outer++ {
		for inner := 0; inner < ipmNewtonSteps; inner++ {
			act := rowActivities(m, x)
			gradNorm := barrierGradient(m, x, act, mu, sigma, grad)
			if gradNorm < ipmGradientTol {
				break
			}

			step, ok := newtonStep(m, x, act, mu, grad)
			if !ok {
				return x, iterations, true
			}

			// Backtrack until the step keeps the iterate strictly interior
			// and does not increase the barrier objective.
			alpha := 1.0
			improved := false
			base := barrierObjective(m, x, mu, sigma)
			for t := 0; t < 40; t++ {
				trial := make([]float64, n)
				for j := 0; j < n; j++ {
					trial[j] = x[j] + alpha*step[j]
				}
				if strictlyInterior(m, trial) &&
					barrierObjective(m, trial, mu, sigma) < base {
					x = trial
					improved = true
					break
				}
				alpha *= 0.5
			}
			iterations++
			if !improved {
				break
			}
		}
		mu *= ipmMuShrink
	}
	return x, iterations, true
}

//==============================================================================

// interiorStart picks a point strictly inside the column bounds.
func interiorStart(m *Model) []float64 {
	x := make([]float64, m.NumCol)
	for j := 0; j < m.NumCol; j++ {
		l, u := m.ColLower[j], m.ColUpper[j]
		switch {
		case isFinite(l) && isFinite(u):
			x[j] = (l + u) / 2
		case isFinite(l):
			x[j] = l + 1
		case isFinite(u):
			x[j] = u - 1
		default:
			x[j] = 0
		}
	}
	return x
}

//==============================================================================

// strictlyInterior reports whether x keeps a positive margin to every finite
// column and row bound.
func strictlyInterior(m *Model, x []float64) bool {
	const margin = 1e-12
	for j := 0; j < m.NumCol; j++ {
		l, u := m.ColLower[j], m.ColUpper[j]
		if l == u {
			// Fixed columns carry no barrier term; hold them exactly.
			if x[j] != l {
				return false
			}
			continue
		}
		if isFinite(l) && x[j]-l <= margin {
			return false
		}
		if isFinite(u) && u-x[j] <= margin {
			return false
		}
	}
	act := rowActivities(m, x)
	for i := 0; i < m.NumRow; i++ {
		lo, up := m.RowLower[i], m.RowUpper[i]
		if lo == up {
			// Equality rows cannot hold a strict interior; tolerate them
			// within the primal tolerance and leave the rest to crossover.
			if math.Abs(act[i]-lo) > 1e-7 {
				return false
			}
			continue
		}
		if isFinite(lo) && act[i]-lo <= margin {
			return false
		}
		if isFinite(up) && up-act[i] <= margin {
			return false
		}
	}
	return true
}

//==============================================================================

// barrierObjective evaluates the barrier-augmented objective at x.
func barrierObjective(m *Model, x []float64, mu, sigma float64) float64 {
	obj := 0.0
	for j := 0; j < m.NumCol; j++ {
		obj += sigma * m.ColCost[j] * x[j]
		l, u := m.ColLower[j], m.ColUpper[j]
		if l == u {
			continue
		}
		if isFinite(l) {
			obj -= mu * math.Log(x[j]-l)
		}
		if isFinite(u) {
			obj -= mu * math.Log(u-x[j])
		}
	}
	act := rowActivities(m, x)
	for i := 0; i < m.NumRow; i++ {
		lo, up := m.RowLower[i], m.RowUpper[i]
		if lo == up {
			continue
		}
		if isFinite(lo) {
			obj -= mu * math.Log(act[i]-lo)
		}
		if isFinite(up) {
			obj -= mu * math.Log(up-act[i])
		}
	}
	return obj
}

//==============================================================================

// barrierGradient fills grad with the gradient of the barrier objective and
// returns its infinity norm.
func barrierGradient(m *Model, x, act []float64, mu, sigma float64, grad []float64) float64 {
	rowTerm := make([]float64, m.NumRow)
	for i := 0; i < m.NumRow; i++ {
		lo, up := m.RowLower[i], m.RowUpper[i]
		if lo == up {
			continue
		}
		if isFinite(lo) {
			rowTerm[i] -= mu / (act[i] - lo)
		}
		if isFinite(up) {
			rowTerm[i] += mu / (up - act[i])
		}
	}
	norm := 0.0
	for j := 0; j < m.NumCol; j++ {
		g := sigma * m.ColCost[j]
		l, u := m.ColLower[j], m.ColUpper[j]
		if l != u {
			if isFinite(l) {
				g -= mu / (x[j] - l)
			}
			if isFinite(u) {
				g += mu / (u - x[j])
			}
		}
		for el := m.AStart[j]; el < m.AStart[j+1]; el++ {
			g += m.AValue[el] * rowTerm[m.AIndex[el]]
		}
		grad[j] = g
		if a := math.Abs(g); a > norm {
			norm = a
		}
	}
	return norm
}

//==============================================================================

// newtonStep solves H step = -grad for the barrier Hessian
// H = Dcol + A^T Drow A plus a small regularization, reporting failure when
// the system cannot be solved.
func newtonStep(m *Model, x, act []float64, mu float64, grad []float64) ([]float64, bool) {
	n := m.NumCol

	dRow := make([]float64, m.NumRow)
	for i := 0; i < m.NumRow; i++ {
		lo, up := m.RowLower[i], m.RowUpper[i]
		if lo == up {
			continue
		}
		if isFinite(lo) {
			d := act[i] - lo
			dRow[i] += mu / (d * d)
		}
		if isFinite(up) {
			d := up - act[i]
			dRow[i] += mu / (d * d)
		}
	}

	h := mat.NewSymDense(n, nil)
	for j := 0; j < n; j++ {
		diag := ipmRegularizing
		l, u := m.ColLower[j], m.ColUpper[j]
		if l != u {
			if isFinite(l) {
				d := x[j] - l
				diag += mu / (d * d)
			}
			if isFinite(u) {
				d := u - x[j]
				diag += mu / (d * d)
			}
		}
		h.SetSym(j, j, diag)
	}
	// A^T Drow A, accumulated column against column.
	for j := 0; j < n; j++ {
		for k := j; k < n; k++ {
			sum := 0.0
			for el := m.AStart[j]; el < m.AStart[j+1]; el++ {
				ri := m.AIndex[el]
				if dRow[ri] == 0 {
					continue
				}
				for el2 := m.AStart[k]; el2 < m.AStart[k+1]; el2++ {
					if m.AIndex[el2] == ri {
						sum += m.AValue[el] * dRow[ri] * m.AValue[el2]
					}
				}
			}
			if sum != 0 {
				h.SetSym(j, k, h.At(j, k)+sum)
			}
		}
	}

	var chol mat.Cholesky
	if !chol.Factorize(h) {
		return nil, false
	}
	rhs := mat.NewVecDense(n, nil)
	for j := 0; j < n; j++ {
		rhs.SetVec(j, -grad[j])
	}
	out := mat.NewVecDense(n, nil)
	if err := chol.SolveVecTo(out, rhs); err != nil {
		return nil, false
	}
	step := make([]float64, n)
	for j := 0; j < n; j++ {
		step[j] = out.AtVec(j)
	}
	return step, true
}

//==============================================================================

// basisFromPoint guesses a basis from an interior iterate by snapping
// variables and row activities onto the bounds they have (nearly) reached.
// The guess is only a hot-start seed: if it is unusable the simplex solver
// falls back to its cold start.
func basisFromPoint(m *Model, x []float64) Basis {
	b := Basis{
		ColStatus: make([]BasisStatus, m.NumCol),
		RowStatus: make([]BasisStatus, m.NumRow),
		Valid:     true,
	}
	numBasic := 0
	for j := 0; j < m.NumCol; j++ {
		l, u := m.ColLower[j], m.ColUpper[j]
		switch {
		case isFinite(l) && x[j]-l <= ipmSnapTol:
			b.ColStatus[j] = BasisStatusLower
		case isFinite(u) && u-x[j] <= ipmSnapTol:
			b.ColStatus[j] = BasisStatusUpper
		default:
			b.ColStatus[j] = BasisStatusBasic
			numBasic++
		}
	}
	act := rowActivities(m, x)
	for i := 0; i < m.NumRow; i++ {
		lo, up := m.RowLower[i], m.RowUpper[i]
		switch {
		case isFinite(lo) && act[i]-lo <= ipmSnapTol:
			b.RowStatus[i] = BasisStatusLower
		case isFinite(up) && up-act[i] <= ipmSnapTol:
			b.RowStatus[i] = BasisStatusUpper
		default:
			b.RowStatus[i] = BasisStatusBasic
			numBasic++
		}
	}
	if numBasic != m.NumRow {
		// Not a vertex-shaped guess; let the cold start take over.
		b.Valid = false
	}
	return b
}
