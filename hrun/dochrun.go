// hrun is a small command-line driver for the highs package. It reads a
// linear program from an MPS file, optionally loads solver options from a
// TOML file, runs the solver and reports the outcome. It exists both as a
// usable tool and as a demonstration of how the package is driven.
//
// Usage:
//
//	hrun -model problem.mps [-options options.toml] [-solution out.txt]
//	     [-presolve on|off|choose] [-solver simplex|ipm|choose] [-v level]
//
// The exit code is 0 when the run finished with an OK status, 1 on a
// warning and 2 on an error.
package main
