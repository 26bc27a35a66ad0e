package passes

import (
	"minic/internal/analysis"
	"minic/internal/ssa"
)

// DomInfoPass recomputes the dominator tree of every function each sweep.
// A pure analysis: it never reports a change.
type DomInfoPass struct {
	pm   *PassManager
	info map[*ssa.Value]*analysis.Dominance
}

func newDomInfoPass(pm *PassManager) any {
	return &DomInfoPass{pm: pm, info: make(map[*ssa.Value]*analysis.Dominance)}
}

func (p *DomInfoPass) RunOnFunction(f *ssa.Value) bool {
	p.info[f] = analysis.ComputeDominance(f)
	return false
}

// Dominance returns the tree computed for f in the current sweep.
func (p *DomInfoPass) Dominance(f *ssa.Value) *analysis.Dominance {
	return p.info[f]
}
