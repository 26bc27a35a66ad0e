package passes

import (
	"minic/internal/analysis"
	"minic/internal/ssa"
)

// LoopInfoPass redetects the natural loops of every function each sweep,
// innermost-first. A pure analysis: it never reports a change. The
// loop-normalization pass fills the Preheader fields of its records.
type LoopInfoPass struct {
	pm    *PassManager
	loops map[*ssa.Value][]*analysis.LoopInfo
}

func newLoopInfoPass(pm *PassManager) any {
	return &LoopInfoPass{pm: pm, loops: make(map[*ssa.Value][]*analysis.LoopInfo)}
}

func (p *LoopInfoPass) RunOnFunction(f *ssa.Value) bool {
	dom := GetPass[*DomInfoPass](p.pm, "dom_info").Dominance(f)
	p.loops[f] = analysis.FindLoops(f, dom)
	return false
}

// Loops returns the loop records of f for the current sweep.
func (p *LoopInfoPass) Loops(f *ssa.Value) []*analysis.LoopInfo {
	return p.loops[f]
}
