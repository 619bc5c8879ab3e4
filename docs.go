/*
Package highs provides a pure Go solver for Linear Programming (LP)
problems. It centres on a Solver object that holds one problem together
with its options, solution, basis and status, and a Run call that moves
the problem through presolve, an LP solver and postsolve, retaining
whatever solution state the outcome justifies.

Some of the main capabilities include:
  - passing models directly or reading and writing them in MPS format
  - model presolving with full postsolve recovery of the solution
  - a bounded-variable revised simplex solver and a barrier (interior
    point) solver with crossover
  - incremental model editing with basis-aware invalidation
  - queries against the factorized basis matrix

# Solving

A model is passed to the solver and solved under the current options:

	s := highs.New()
	if _, err := s.PassModel(model); err != nil {
		return err
	}
	status, err := s.Run()

After Run, ModelStatus reports how the solve ended, Solution and Basis
return whatever was retained for that outcome, and Info carries the
objective value, feasibility measures and iteration counts. A second Run
hot-starts from the retained basis when one survived.

# Presolving

Before solving, the problem size is reduced using techniques described
by Andersen and Andersen
(https://www.researchgate.net/publication/220589130_Presolving_in_linear_programming).
The reductions applied are:

  - removing empty rows
  - removing non-binding (redundant) rows
  - removing row singletons (constraints with a single variable)
  - removing fixed variables (upper bound equals the lower bound)
  - removing empty columns

Presolve runs when the "presolve" option allows it and no usable basis
makes a hot start more attractive. When presolve detects infeasibility
or unboundedness the solver is skipped entirely. Otherwise the reduced
problem is solved, the solution is lifted back to the original
dimensions by postsolve, and a short clean-up re-solve certifies it
there. GetPresolveReductionCounts reports how much was removed.

# Editing

The model held by the solver can be edited in place: columns and rows
can be added or deleted, costs, bounds and individual coefficients
changed, and the objective sense flipped. Each edit either succeeds
completely or leaves the solver untouched. A basis kept from a previous
solve survives exactly those edits that cannot disturb it, so the next
Run can still hot-start after, for example, adding a nonbasic column.

# Options

Options are set through typed setters or loaded from a TOML file:

	s.SetStringOption("solver", "ipm")
	s.SetFloatOption("time_limit", 30.0)
	err := s.LoadOptionsFile("options.toml")

Logging goes through an injectable zerolog logger; SetLogger and
SetLogLevel control where and how much is written.

# Command

The hrun command wraps the package for command-line use: it reads an
MPS model, applies an options file, solves and writes a solution report.
*/
package highs
