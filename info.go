package highs

// info: solve statistics harvested from the last run. The finalizer decides,
// per model status, whether these survive the return from Run.

//==============================================================================

// Primal/dual solution status codes reported in Info.
const (
	SolutionStatusNotSet = iota
	SolutionStatusNoSolution
	SolutionStatusUnknown
	SolutionStatusInfeasiblePoint
	SolutionStatusFeasiblePoint
)

//==============================================================================

// Info carries the statistics of the most recent run.
type Info struct {
	PrimalStatus              int     // solution status code for the primal point
	DualStatus                int     // solution status code for the dual point
	ObjectiveFunctionValue    float64 // objective at the reported solution
	NumPrimalInfeasibilities  int     // count of primal bound violations
	MaxPrimalInfeasibility    float64 // largest primal bound violation
	SumPrimalInfeasibilities  float64 // total primal bound violation
	NumDualInfeasibilities    int     // count of dual feasibility violations
	MaxDualInfeasibility      float64 // largest dual feasibility violation
	SumDualInfeasibilities    float64 // total dual feasibility violation
	SimplexIterationCount     int     // simplex iterations over all solves
	IpmIterationCount         int     // interior-point iterations
	CrossoverIterationCount   int     // simplex iterations spent in crossover
	PresolveRowsRemoved       int     // rows removed by the last presolve
	PresolveColsRemoved       int     // columns removed by the last presolve
	PresolveNzRemoved         int     // matrix nonzeros removed by the last presolve
}

//==============================================================================

// clear resets the info to its initial state, retaining nothing from any
// previous run.
func (inf *Info) clear() {
	*inf = Info{
		PrimalStatus: SolutionStatusNotSet,
		DualStatus:   SolutionStatusNotSet,
	}
}

//==============================================================================

// iterationCounts is the per-context record of solver effort, merged into
// the top-level Info when a context has been solved.
type iterationCounts struct {
	simplex   int
	ipm       int
	crossover int
}
