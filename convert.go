package highs

import (
	"github.com/zeta1999/HiGHS/mps"
)

// convert: translation between the solver's Model and the mps package's
// Problem. Row and column names are not kept on the Model; writers generate
// positional names instead.

//==============================================================================

// modelFromMps builds a Model from a parsed MPS problem.
func modelFromMps(p *mps.Problem) *Model {
	m := &Model{
		NumCol:   p.NumCol,
		NumRow:   p.NumRow,
		ColCost:  append([]float64(nil), p.ColCost...),
		ColLower: append([]float64(nil), p.ColLower...),
		ColUpper: append([]float64(nil), p.ColUpper...),
		RowLower: append([]float64(nil), p.RowLower...),
		RowUpper: append([]float64(nil), p.RowUpper...),
		AStart:   append([]int(nil), p.AStart...),
		AIndex:   append([]int(nil), p.AIndex...),
		AValue:   append([]float64(nil), p.AValue...),
		Offset:   p.Offset,
		Name:     p.Name,
	}
	if p.Sense == mps.Maximize {
		m.Sense = ObjSenseMaximize
	} else {
		m.Sense = ObjSenseMinimize
	}
	return m
}

//==============================================================================

// mpsFromModel builds an MPS problem from a Model.
func mpsFromModel(m *Model) *mps.Problem {
	p := &mps.Problem{
		Name:     m.Name,
		Offset:   m.Offset,
		NumCol:   m.NumCol,
		NumRow:   m.NumRow,
		ColCost:  append([]float64(nil), m.ColCost...),
		ColLower: append([]float64(nil), m.ColLower...),
		ColUpper: append([]float64(nil), m.ColUpper...),
		RowLower: append([]float64(nil), m.RowLower...),
		RowUpper: append([]float64(nil), m.RowUpper...),
		AStart:   append([]int(nil), m.AStart...),
		AIndex:   append([]int(nil), m.AIndex...),
		AValue:   append([]float64(nil), m.AValue...),
	}
	if m.Sense == ObjSenseMaximize {
		p.Sense = mps.Maximize
	} else {
		p.Sense = mps.Minimize
	}
	return p
}
