package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	highs "github.com/zeta1999/HiGHS"
)

//==============================================================================

func main() {
	os.Exit(run())
}

//==============================================================================

// run parses the flags, drives one solve and reports the result. It returns
// the process exit code.
func run() int {

	var (
		modelFile    = flag.String("model", "", "MPS model file to solve")
		optionsFile  = flag.String("options", "", "TOML options file")
		solutionFile = flag.String("solution", "", "write the solution to this file")
		writeModel   = flag.String("write-model", "", "write the loaded model back to this MPS file")
		presolve     = flag.String("presolve", "", "presolve: on, off or choose")
		solver       = flag.String("solver", "", "solver: simplex, ipm or choose")
		timeLimit    = flag.Float64("time-limit", 0, "time limit in seconds, 0 for none")
		verbosity    = flag.Int("v", 2, "message level: 0 none, 1 errors, 2 warnings, 3 info, 4 verbose")
	)
	flag.Parse()

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	highs.SetLogger(logger)
	highs.SetLogLevel(*verbosity)

	s := highs.New()

	if *optionsFile != "" {
		if err := s.LoadOptionsFile(*optionsFile); err != nil {
			fmt.Fprintf(os.Stderr, "hrun: %v\n", err)
			return 2
		}
	}
	if *presolve != "" {
		if err := s.SetStringOption("presolve", *presolve); err != nil {
			fmt.Fprintf(os.Stderr, "hrun: %v\n", err)
			return 2
		}
	}
	if *solver != "" {
		if err := s.SetStringOption("solver", *solver); err != nil {
			fmt.Fprintf(os.Stderr, "hrun: %v\n", err)
			return 2
		}
	}
	if *timeLimit > 0 {
		if err := s.SetFloatOption("time_limit", *timeLimit); err != nil {
			fmt.Fprintf(os.Stderr, "hrun: %v\n", err)
			return 2
		}
	}

	if *modelFile == "" && s.Options().ModelFile == "" {
		fmt.Fprintln(os.Stderr, "hrun: no model file given, use -model or the options file")
		flag.Usage()
		return 2
	}
	if *modelFile != "" {
		if _, err := s.ReadModel(*modelFile); err != nil {
			fmt.Fprintf(os.Stderr, "hrun: %v\n", err)
			return 2
		}
	}

	if *writeModel != "" {
		if _, err := s.WriteModel(*writeModel); err != nil {
			fmt.Fprintf(os.Stderr, "hrun: %v\n", err)
			return 2
		}
	}

	status, err := s.Run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "hrun: %v\n", err)
	}

	report(s, status)

	if *solutionFile != "" {
		if _, err := s.WriteSolution(*solutionFile); err != nil {
			fmt.Fprintf(os.Stderr, "hrun: %v\n", err)
			return 2
		}
	}

	switch status {
	case highs.StatusOK:
		return 0
	case highs.StatusWarning:
		return 1
	}
	return 2
}

//==============================================================================

// report prints a summary of the run to standard output.
func report(s *highs.Solver, status highs.Status) {

	info := s.Info()

	fmt.Printf("Status:            %s\n", status)
	fmt.Printf("Model status:      %s\n", s.ModelStatus(false))
	fmt.Printf("Objective:         %.10g\n", info.ObjectiveFunctionValue)
	fmt.Printf("Simplex iterations: %d\n", info.SimplexIterationCount)
	if info.IpmIterationCount > 0 {
		fmt.Printf("IPM iterations:     %d\n", info.IpmIterationCount)
		fmt.Printf("Crossover iterations: %d\n", info.CrossoverIterationCount)
	}
	if rows, cols, nz := s.GetPresolveReductionCounts(); rows+cols+nz > 0 {
		fmt.Printf("Presolve removed:  %d rows, %d cols, %d nonzeros\n", rows, cols, nz)
	}
	fmt.Printf("Run time:          %.3fs\n", s.RunTime())
}
