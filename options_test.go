package highs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultOptions(t *testing.T) {
	opts := defaultOptions()
	assert.Equal(t, OptionChoose, opts.Presolve)
	assert.Equal(t, OptionChoose, opts.Solver)
	assert.True(t, opts.RunCrossover)
	assert.Equal(t, Infinity, opts.TimeLimit)
	assert.Equal(t, Infinity, opts.DualObjectiveValueUpperBound)
	assert.Equal(t, 100000, opts.IterationLimit)
	assert.InDelta(t, 1e-7, opts.PrimalFeasibilityTolerance, 1e-15)
	require.NoError(t, checkOptions(&opts))
}

//==============================================================================

func TestTypedSetters(t *testing.T) {
	s := New()

	require.NoError(t, s.SetStringOption("presolve", OptionOff))
	assert.Equal(t, OptionOff, s.Options().Presolve)

	require.NoError(t, s.SetStringOption("solver", SolverIpm))
	assert.Equal(t, SolverIpm, s.Options().Solver)

	require.NoError(t, s.SetIntOption("iteration_limit", 500))
	assert.Equal(t, 500, s.Options().IterationLimit)

	require.NoError(t, s.SetFloatOption("time_limit", 12.5))
	assert.InDelta(t, 12.5, s.Options().TimeLimit, 1e-15)

	require.NoError(t, s.SetBoolOption("run_crossover", false))
	assert.False(t, s.Options().RunCrossover)
}

//==============================================================================

func TestSettersRejectUnknownNames(t *testing.T) {
	s := New()
	assert.Error(t, s.SetStringOption("no_such_option", "x"))
	assert.Error(t, s.SetIntOption("no_such_option", 1))
	assert.Error(t, s.SetFloatOption("no_such_option", 1))
	assert.Error(t, s.SetBoolOption("no_such_option", true))
}

//==============================================================================

func TestSetStringOptionValidatesValue(t *testing.T) {
	s := New()
	assert.Error(t, s.SetStringOption("presolve", "maybe"))
	assert.Error(t, s.SetStringOption("solver", "quantum"))
}

//==============================================================================

func TestCheckOptionsFailures(t *testing.T) {
	bad := func(mutate func(*Options)) *Options {
		opts := defaultOptions()
		mutate(&opts)
		return &opts
	}

	assert.Error(t, checkOptions(bad(func(o *Options) { o.Presolve = "sometimes" })))
	assert.Error(t, checkOptions(bad(func(o *Options) { o.Solver = "barrier" })))
	assert.Error(t, checkOptions(bad(func(o *Options) { o.PresolveMaxPasses = 0 })))
	assert.Error(t, checkOptions(bad(func(o *Options) { o.PrimalFeasibilityTolerance = 0 })))
	assert.Error(t, checkOptions(bad(func(o *Options) { o.MinThreads = 0 })))
	assert.Error(t, checkOptions(bad(func(o *Options) { o.MaxThreads = 0 })))
	assert.Error(t, checkOptions(bad(func(o *Options) { o.IterationLimit = -1 })))
}

//==============================================================================

func TestRunRejectsBadOptions(t *testing.T) {
	s := New()
	_, err := s.PassModel(boundedMaxModel())
	require.NoError(t, err)
	require.NoError(t, s.SetIntOption("iteration_limit", -5))

	status, err := s.Run()
	assert.Error(t, err)
	assert.Equal(t, StatusError, status)
	assert.Equal(t, ModelStatusLoadError, s.ModelStatus(false))
}

//==============================================================================

func TestLoadOptionsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "options.toml")
	content := `
presolve = "off"
solver = "ipm"
time_limit = 30.0
iteration_limit = 2500
run_crossover = false
message_level = 0
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	s := New()
	require.NoError(t, s.LoadOptionsFile(path))

	assert.Equal(t, OptionOff, s.Options().Presolve)
	assert.Equal(t, SolverIpm, s.Options().Solver)
	assert.InDelta(t, 30.0, s.Options().TimeLimit, 1e-15)
	assert.Equal(t, 2500, s.Options().IterationLimit)
	assert.False(t, s.Options().RunCrossover)

	// Unnamed options keep their previous values.
	assert.Equal(t, 16, s.Options().PresolveMaxPasses)
}

//==============================================================================

func TestLoadOptionsFileFailures(t *testing.T) {
	s := New()
	assert.Error(t, s.LoadOptionsFile(""))
	assert.Error(t, s.LoadOptionsFile(filepath.Join(t.TempDir(), "missing.toml")))

	path := filepath.Join(t.TempDir(), "bad.toml")
	require.NoError(t, os.WriteFile(path, []byte(`presolve = "sometimes"`), 0644))
	assert.Error(t, s.LoadOptionsFile(path))
}

//==============================================================================

func TestResetRestoresDefaults(t *testing.T) {
	s := New()
	_, err := s.PassModel(boundedMaxModel())
	require.NoError(t, err)
	require.NoError(t, s.SetStringOption("presolve", OptionOff))

	s.Reset()
	assert.Nil(t, s.Lp())
	assert.Equal(t, OptionChoose, s.Options().Presolve)
	assert.Zero(t, s.RunTime())
}
