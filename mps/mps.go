// Package mps reads and writes linear programs in MPS form, and writes
// solution reports in a plain readable form. The package is self-contained:
// it exposes its own Problem representation, which the solver converts to
// and from its internal model.
package mps

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Infinity is the bound magnitude treated as infinite, matching the solver's
// sentinel.
const Infinity = 1e30

// Objective senses of a problem.
const (
	Minimize = 1
	Maximize = -1
)

//==============================================================================

// Problem is an LP in the column-wise form the solver consumes. Row and
// column names are carried for writing; readers generate names when the file
// does not provide usable ones.
type Problem struct {
	Name   string
	Sense  int
	Offset float64

	NumCol int
	NumRow int

	ColNames []string
	ColCost  []float64
	ColLower []float64
	ColUpper []float64

	RowNames []string
	RowLower []float64
	RowUpper []float64

	AStart []int
	AIndex []int
	AValue []float64
}

//==============================================================================

// rowRecord carries one ROWS entry until the bounds can be finalized.
type rowRecord struct {
	name     string
	kind     byte // N, L, G or E
	rhs      float64
	hasRhs   bool
	rng      float64
	hasRange bool
}

// colRecord accumulates one column's data across the COLUMNS section.
type colRecord struct {
	name   string
	cost   float64
	lower  float64
	upper  float64
	loSet  bool
	upSet  bool
	rows   []int
	values []float64
}

//==============================================================================

// Read parses an MPS file. The problem name defaults to the file name when
// the NAME record carries none.
// In case of failure, function returns an error.
func Read(path string) (*Problem, error) {

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open %s", path)
	}
	defer f.Close()

	var rows []rowRecord
	var cols []*colRecord
	rowIndex := map[string]int{}
	colIndex := map[string]int{}
	objRow := ""
	sense := Minimize
	offset := 0.0
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	section := ""
	lineNum := 0
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for sc.Scan() {
		lineNum++
		line := sc.Text()
		if line == "" || line[0] == '*' {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		// Section headers start in column one.
		if line[0] != ' ' && line[0] != '\t' {
			section = strings.ToUpper(fields[0])
			switch section {
			case "NAME":
				if len(fields) > 1 {
					name = fields[1]
				}
			case "OBJSENSE":
				// Free-form files put the sense on the same line.
				if len(fields) > 1 {
					if s, err := parseObjSense(fields[1]); err == nil {
						sense = s
					}
				}
			case "ENDATA":
				return assemble(name, sense, offset, rows, cols, objRow)
			case "ROWS", "COLUMNS", "RHS", "RANGES", "BOUNDS":
			default:
				return nil, errors.Errorf("%s:%d: unknown section %q", path, lineNum, section)
			}
			continue
		}

		switch section {

		case "OBJSENSE":
			if s, err := parseObjSense(fields[0]); err == nil {
				sense = s
			} else {
				return nil, errors.Wrapf(err, "%s:%d", path, lineNum)
			}

		case "ROWS":
			if len(fields) < 2 {
				return nil, errors.Errorf("%s:%d: malformed ROWS entry", path, lineNum)
			}
			kind := byte(strings.ToUpper(fields[0])[0])
			rname := fields[1]
			switch kind {
			case 'N':
				if objRow == "" {
					objRow = rname
					continue
				}
				// Further free rows carry no constraint; keep them out of
				// the row list entirely.
				continue
			case 'L', 'G', 'E':
			default:
				return nil, errors.Errorf("%s:%d: unknown row type %q", path, lineNum, fields[0])
			}
			if _, dup := rowIndex[rname]; dup {
				return nil, errors.Errorf("%s:%d: duplicate row %s", path, lineNum, rname)
			}
			rowIndex[rname] = len(rows)
			rows = append(rows, rowRecord{name: rname, kind: kind})

		case "COLUMNS":
			if len(fields) >= 3 && strings.Contains(fields[1], "MARKER") {
				// Integer markers are accepted and ignored; every column is
				// treated as continuous.
				continue
			}
			if len(fields) < 3 || len(fields)%2 == 0 {
				return nil, errors.Errorf("%s:%d: malformed COLUMNS entry", path, lineNum)
			}
			cname := fields[0]
			ci, ok := colIndex[cname]
			if !ok {
				ci = len(cols)
				colIndex[cname] = ci
				cols = append(cols, &colRecord{name: cname})
			}
			col := cols[ci]
			for k := 1; k+1 < len(fields); k += 2 {
				v, err := strconv.ParseFloat(fields[k+1], 64)
				if err != nil {
					return nil, errors.Wrapf(err, "%s:%d: bad value %q", path, lineNum, fields[k+1])
				}
				if fields[k] == objRow {
					col.cost += v
					continue
				}
				ri, ok := rowIndex[fields[k]]
				if !ok {
					return nil, errors.Errorf("%s:%d: unknown row %s", path, lineNum, fields[k])
				}
				col.rows = append(col.rows, ri)
				col.values = append(col.values, v)
			}

		case "RHS":
			if len(fields) < 3 || len(fields)%2 == 0 {
				return nil, errors.Errorf("%s:%d: malformed RHS entry", path, lineNum)
			}
			for k := 1; k+1 < len(fields); k += 2 {
				v, err := strconv.ParseFloat(fields[k+1], 64)
				if err != nil {
					return nil, errors.Wrapf(err, "%s:%d: bad value %q", path, lineNum, fields[k+1])
				}
				if fields[k] == objRow {
					// An RHS on the objective row is a negated constant term.
					offset = -v
					continue
				}
				ri, ok := rowIndex[fields[k]]
				if !ok {
					return nil, errors.Errorf("%s:%d: unknown row %s", path, lineNum, fields[k])
				}
				rows[ri].rhs = v
				rows[ri].hasRhs = true
			}

		case "RANGES":
			if len(fields) < 3 || len(fields)%2 == 0 {
				return nil, errors.Errorf("%s:%d: malformed RANGES entry", path, lineNum)
			}
			for k := 1; k+1 < len(fields); k += 2 {
				v, err := strconv.ParseFloat(fields[k+1], 64)
				if err != nil {
					return nil, errors.Wrapf(err, "%s:%d: bad value %q", path, lineNum, fields[k+1])
				}
				ri, ok := rowIndex[fields[k]]
				if !ok {
					return nil, errors.Errorf("%s:%d: unknown row %s", path, lineNum, fields[k])
				}
				rows[ri].rng = v
				rows[ri].hasRange = true
			}

		case "BOUNDS":
			if len(fields) < 3 {
				return nil, errors.Errorf("%s:%d: malformed BOUNDS entry", path, lineNum)
			}
			kind := strings.ToUpper(fields[0])
			cname := fields[2]
			ci, ok := colIndex[cname]
			if !ok {
				return nil, errors.Errorf("%s:%d: bound on unknown column %s", path, lineNum, cname)
			}
			col := cols[ci]
			var v float64
			if len(fields) > 3 {
				if v, err = strconv.ParseFloat(fields[3], 64); err != nil {
					return nil, errors.Wrapf(err, "%s:%d: bad bound %q", path, lineNum, fields[3])
				}
			}
			switch kind {
			case "LO":
				col.lower, col.loSet = v, true
			case "UP":
				col.upper, col.upSet = v, true
				// An upper bound below zero with no explicit lower bound
				// drops the default lower bound to minus infinity.
				if v < 0 && !col.loSet {
					col.lower, col.loSet = -Infinity, true
				}
			case "FX":
				col.lower, col.loSet = v, true
				col.upper, col.upSet = v, true
			case "FR":
				col.lower, col.loSet = -Infinity, true
				col.upper, col.upSet = Infinity, true
			case "MI":
				col.lower, col.loSet = -Infinity, true
			case "PL":
				col.upper, col.upSet = Infinity, true
			case "BV":
				col.lower, col.loSet = 0, true
				col.upper, col.upSet = 1, true
			default:
				return nil, errors.Errorf("%s:%d: unknown bound type %q", path, lineNum, kind)
			}

		case "":
			return nil, errors.Errorf("%s:%d: data before any section header", path, lineNum)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", path)
	}

	return assemble(name, sense, offset, rows, cols, objRow)
}

//==============================================================================

// parseObjSense maps an OBJSENSE keyword to a sense value.
// In case of failure, function returns an error.
func parseObjSense(word string) (int, error) {
	switch strings.ToUpper(word) {
	case "MIN", "MINIMIZE":
		return Minimize, nil
	case "MAX", "MAXIMIZE":
		return Maximize, nil
	}
	return 0, errors.Errorf("unknown objective sense %q", word)
}

//==============================================================================

// assemble builds the Problem from the parsed sections, turning row types
// and RHS/RANGES entries into lower and upper row bounds.
// In case of failure, function returns an error.
func assemble(name string, sense int, offset float64,
	rows []rowRecord, cols []*colRecord, objRow string) (*Problem, error) {

	p := &Problem{
		Name:   name,
		Sense:  sense,
		Offset: offset,
		NumCol: len(cols),
		NumRow: len(rows),
	}

	for _, r := range rows {
		lo, up := -Infinity, Infinity
		rhs := 0.0
		if r.hasRhs {
			rhs = r.rhs
		}
		switch r.kind {
		case 'L':
			up = rhs
		case 'G':
			lo = rhs
		case 'E':
			lo, up = rhs, rhs
		}
		if r.hasRange {
			switch r.kind {
			case 'L':
				lo = up - abs(r.rng)
			case 'G':
				up = lo + abs(r.rng)
			case 'E':
				if r.rng >= 0 {
					up = lo + r.rng
				} else {
					lo = up + r.rng
				}
			}
		}
		p.RowNames = append(p.RowNames, r.name)
		p.RowLower = append(p.RowLower, lo)
		p.RowUpper = append(p.RowUpper, up)
	}

	p.AStart = make([]int, p.NumCol+1)
	for j, col := range cols {
		lo, up := 0.0, Infinity
		if col.loSet {
			lo = col.lower
		}
		if col.upSet {
			up = col.upper
		}
		if lo > up {
			return nil, errors.Errorf("column %s has crossing bounds [%g, %g]", col.name, lo, up)
		}
		p.ColNames = append(p.ColNames, col.name)
		p.ColCost = append(p.ColCost, col.cost)
		p.ColLower = append(p.ColLower, lo)
		p.ColUpper = append(p.ColUpper, up)
		p.AIndex = append(p.AIndex, col.rows...)
		p.AValue = append(p.AValue, col.values...)
		p.AStart[j+1] = len(p.AIndex)
	}

	return p, nil
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

//==============================================================================

// Write writes a problem as a fixed-section MPS file. Generated names are
// substituted for any row or column the problem does not name.
// In case of failure, function returns an error.
func Write(path string, p *Problem) error {

	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "failed to create %s", path)
	}
	defer f.Close()

	w := bufio.NewWriter(f)

	rowName := func(i int) string {
		if i < len(p.RowNames) && p.RowNames[i] != "" {
			return p.RowNames[i]
		}
		return fmt.Sprintf("R%d", i)
	}
	colName := func(j int) string {
		if j < len(p.ColNames) && p.ColNames[j] != "" {
			return p.ColNames[j]
		}
		return fmt.Sprintf("C%d", j)
	}

	fmt.Fprintf(w, "NAME          %s\n", p.Name)
	if p.Sense == Maximize {
		fmt.Fprintf(w, "OBJSENSE\n    MAX\n")
	}

	fmt.Fprintf(w, "ROWS\n N  COST\n")
	for i := 0; i < p.NumRow; i++ {
		lo, up := p.RowLower[i], p.RowUpper[i]
		switch {
		case lo == up:
			fmt.Fprintf(w, " E  %s\n", rowName(i))
		case lo > -Infinity && up < Infinity:
			// Doubly bounded rows are written as L rows with a RANGES entry.
			fmt.Fprintf(w, " L  %s\n", rowName(i))
		case up < Infinity:
			fmt.Fprintf(w, " L  %s\n", rowName(i))
		case lo > -Infinity:
			fmt.Fprintf(w, " G  %s\n", rowName(i))
		default:
			fmt.Fprintf(w, " N  %s\n", rowName(i))
		}
	}

	fmt.Fprintf(w, "COLUMNS\n")
	for j := 0; j < p.NumCol; j++ {
		if p.ColCost[j] != 0 {
			fmt.Fprintf(w, "    %-10s %-10s %.15g\n", colName(j), "COST", p.ColCost[j])
		}
		for el := p.AStart[j]; el < p.AStart[j+1]; el++ {
			fmt.Fprintf(w, "    %-10s %-10s %.15g\n", colName(j), rowName(p.AIndex[el]), p.AValue[el])
		}
	}

	fmt.Fprintf(w, "RHS\n")
	if p.Offset != 0 {
		fmt.Fprintf(w, "    %-10s %-10s %.15g\n", "RHS", "COST", -p.Offset)
	}
	for i := 0; i < p.NumRow; i++ {
		lo, up := p.RowLower[i], p.RowUpper[i]
		var rhs float64
		switch {
		case lo == up:
			rhs = lo
		case up < Infinity:
			rhs = up
		case lo > -Infinity:
			rhs = lo
		default:
			continue
		}
		if rhs != 0 {
			fmt.Fprintf(w, "    %-10s %-10s %.15g\n", "RHS", rowName(i), rhs)
		}
	}

	wroteRanges := false
	for i := 0; i < p.NumRow; i++ {
		lo, up := p.RowLower[i], p.RowUpper[i]
		if lo == up || lo <= -Infinity || up >= Infinity {
			continue
		}
		if !wroteRanges {
			fmt.Fprintf(w, "RANGES\n")
			wroteRanges = true
		}
		fmt.Fprintf(w, "    %-10s %-10s %.15g\n", "RNG", rowName(i), up-lo)
	}

	wroteBounds := false
	boundLine := func(kind, col string, v float64, withValue bool) {
		if !wroteBounds {
			fmt.Fprintf(w, "BOUNDS\n")
			wroteBounds = true
		}
		if withValue {
			fmt.Fprintf(w, " %s %-8s %-10s %.15g\n", kind, "BND", col, v)
		} else {
			fmt.Fprintf(w, " %s %-8s %-10s\n", kind, "BND", col)
		}
	}
	for j := 0; j < p.NumCol; j++ {
		lo, up := p.ColLower[j], p.ColUpper[j]
		switch {
		case lo == up:
			boundLine("FX", colName(j), lo, true)
		case lo <= -Infinity && up >= Infinity:
			boundLine("FR", colName(j), 0, false)
		default:
			if lo != 0 {
				if lo <= -Infinity {
					boundLine("MI", colName(j), 0, false)
				} else {
					boundLine("LO", colName(j), lo, true)
				}
			}
			if up < Infinity {
				boundLine("UP", colName(j), up, true)
			}
		}
	}

	fmt.Fprintf(w, "ENDATA\n")

	if err := w.Flush(); err != nil {
		return errors.Wrapf(err, "failed to write %s", path)
	}
	return nil
}

//==============================================================================

// WriteSolution writes a readable solution report: the model status and
// objective followed by one line per column and per row. Dual arrays may be
// empty, in which case the dual field is omitted.
// In case of failure, function returns an error.
func WriteSolution(path, modelName, status string, objective float64,
	colValue, colDual, rowValue, rowDual []float64) error {

	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "failed to create %s", path)
	}
	defer f.Close()

	w := bufio.NewWriter(f)

	fmt.Fprintf(w, "Model:     %s\n", modelName)
	fmt.Fprintf(w, "Status:    %s\n", status)
	fmt.Fprintf(w, "Objective: %.15g\n", objective)

	fmt.Fprintf(w, "\nColumns (%d)\n", len(colValue))
	for j := range colValue {
		if j < len(colDual) {
			fmt.Fprintf(w, "C%-9d %18.10g %18.10g\n", j, colValue[j], colDual[j])
		} else {
			fmt.Fprintf(w, "C%-9d %18.10g\n", j, colValue[j])
		}
	}

	fmt.Fprintf(w, "\nRows (%d)\n", len(rowValue))
	for i := range rowValue {
		if i < len(rowDual) {
			fmt.Fprintf(w, "R%-9d %18.10g %18.10g\n", i, rowValue[i], rowDual[i])
		} else {
			fmt.Fprintf(w, "R%-9d %18.10g\n", i, rowValue[i])
		}
	}

	if err := w.Flush(); err != nil {
		return errors.Wrapf(err, "failed to write %s", path)
	}
	return nil
}
