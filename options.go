package highs

import (
	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
)

// options: the option registry consumed by the run orchestrator and the
// solver dispatcher. Options may be set programmatically through the typed
// setters or loaded from a TOML options file.

// Recognised values for the Presolve and Solver options.
const (
	OptionOff    = "off"
	OptionOn     = "on"
	OptionChoose = "choose"

	SolverSimplex = "simplex"
	SolverIpm     = "ipm"
)

//==============================================================================

// Options collects the configuration consumed by Run and the editor. The
// orchestrator temporarily overrides some values (thread counts during the
// hot-start re-solve, the dual objective cutoff while solving a reduced
// problem) and always restores the caller's settings before returning.
type Options struct {
	Presolve                     string  `toml:"presolve"`             // "off", "on" or "choose"
	Solver                       string  `toml:"solver"`               // "simplex", "ipm" or "choose"
	RunCrossover                 bool    `toml:"run_crossover"`        // convert interior point to a vertex
	TimeLimit                    float64 `toml:"time_limit"`           // seconds, Infinity for none
	DualObjectiveValueUpperBound float64 `toml:"dual_objective_value_upper_bound"`
	IterationLimit               int     `toml:"iteration_limit"`      // simplex iteration limit
	MinThreads                   int     `toml:"min_threads"`          // lower bound on solver worker threads
	MaxThreads                   int     `toml:"max_threads"`          // upper bound on solver worker threads
	PresolveMaxPasses            int     `toml:"presolve_max_passes"`  // reduction sweeps before giving up
	PrimalFeasibilityTolerance   float64 `toml:"primal_feasibility_tolerance"`
	DualFeasibilityTolerance     float64 `toml:"dual_feasibility_tolerance"`
	SmallMatrixValue             float64 `toml:"small_matrix_value"`   // magnitudes below this are dropped
	ModelFile                    string  `toml:"model_file"`           // model to load if none was passed
	MessageLevel                 int     `toml:"message_level"`        // package log level, see SetLogLevel
}

//==============================================================================

// defaultOptions returns the options in their documented default state.
func defaultOptions() Options {
	return Options{
		Presolve:                     OptionChoose,
		Solver:                       OptionChoose,
		RunCrossover:                 true,
		TimeLimit:                    Infinity,
		DualObjectiveValueUpperBound: Infinity,
		IterationLimit:               100000,
		MinThreads:                   1,
		MaxThreads:                   8,
		PresolveMaxPasses:            16,
		PrimalFeasibilityTolerance:   1e-7,
		DualFeasibilityTolerance:     1e-7,
		SmallMatrixValue:             1e-9,
		ModelFile:                    "",
		MessageLevel:                 pWARN,
	}
}

//==============================================================================

// checkOptions validates the option values that the presolve engine and the
// dispatcher depend on. In case of failure, function returns an error.
func checkOptions(opts *Options) error {

	switch opts.Presolve {
	case OptionOff, OptionOn, OptionChoose:
	default:
		return errors.Errorf("illegal presolve option %q", opts.Presolve)
	}

	switch opts.Solver {
	case SolverSimplex, SolverIpm, OptionChoose:
	default:
		return errors.Errorf("illegal solver option %q", opts.Solver)
	}

	if opts.PresolveMaxPasses <= 0 {
		return errors.Errorf("presolve_max_passes must be positive, got %d", opts.PresolveMaxPasses)
	}

	if opts.PrimalFeasibilityTolerance <= 0 || opts.DualFeasibilityTolerance <= 0 {
		return errors.Errorf("feasibility tolerances must be positive")
	}

	if opts.MinThreads < 1 || opts.MaxThreads < opts.MinThreads {
		return errors.Errorf("illegal thread bounds [%d, %d]", opts.MinThreads, opts.MaxThreads)
	}

	if opts.IterationLimit <= 0 {
		return errors.Errorf("iteration_limit must be positive, got %d", opts.IterationLimit)
	}

	return nil
}

//==============================================================================

// LoadOptionsFile reads option values from a TOML file into the solver's
// options, leaving unnamed options at their current values.
// In case of failure, function returns an error.
func (s *Solver) LoadOptionsFile(path string) error {

	if path == "" {
		return errors.Errorf("empty options file name")
	}

	if _, err := toml.DecodeFile(path, &s.options); err != nil {
		return errors.Wrapf(err, "failed to decode options file %s", path)
	}

	if err := checkOptions(&s.options); err != nil {
		return errors.Wrapf(err, "options file %s", path)
	}

	SetLogLevel(s.options.MessageLevel)
	return nil
}

//==============================================================================

// Options returns a pointer to the solver's live option values.
func (s *Solver) Options() *Options {
	return &s.options
}

//==============================================================================

// SetBoolOption sets a boolean option by name.
// In case of failure, function returns an error.
func (s *Solver) SetBoolOption(name string, value bool) error {
	switch name {
	case "run_crossover":
		s.options.RunCrossover = value
	default:
		return errors.Errorf("unknown bool option %q", name)
	}
	return nil
}

//==============================================================================

// SetIntOption sets an integer option by name.
// In case of failure, function returns an error.
func (s *Solver) SetIntOption(name string, value int) error {
	switch name {
	case "iteration_limit":
		s.options.IterationLimit = value
	case "min_threads":
		s.options.MinThreads = value
	case "max_threads":
		s.options.MaxThreads = value
	case "presolve_max_passes":
		s.options.PresolveMaxPasses = value
	case "message_level":
		s.options.MessageLevel = value
		SetLogLevel(value)
	default:
		return errors.Errorf("unknown int option %q", name)
	}
	return nil
}

//==============================================================================

// SetFloatOption sets a floating-point option by name.
// In case of failure, function returns an error.
func (s *Solver) SetFloatOption(name string, value float64) error {
	switch name {
	case "time_limit":
		s.options.TimeLimit = value
	case "dual_objective_value_upper_bound":
		s.options.DualObjectiveValueUpperBound = value
	case "primal_feasibility_tolerance":
		s.options.PrimalFeasibilityTolerance = value
	case "dual_feasibility_tolerance":
		s.options.DualFeasibilityTolerance = value
	case "small_matrix_value":
		s.options.SmallMatrixValue = value
	default:
		return errors.Errorf("unknown float option %q", name)
	}
	return nil
}

//==============================================================================

// SetStringOption sets a string option by name.
// In case of failure, function returns an error.
func (s *Solver) SetStringOption(name, value string) error {
	switch name {
	case "presolve":
		s.options.Presolve = value
	case "solver":
		s.options.Solver = value
	case "model_file":
		s.options.ModelFile = value
	default:
		return errors.Errorf("unknown string option %q", name)
	}
	return checkOptions(&s.options)
}
