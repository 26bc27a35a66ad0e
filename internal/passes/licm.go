package passes

import (
	"minic/internal/analysis"
	"minic/internal/ssa"
)

// LICMPass performs loop-invariant code motion: for every loop, innermost
// first, it discovers the pointers stored inside the loop, grows the set
// of invariant instructions to a fixpoint and moves them to the loop's
// pre-header.
type LICMPass struct {
	pm *PassManager

	parent   *analysis.ParentMap
	dom      *analysis.Dominance
	loop     *analysis.LoopInfo
	curBlock *ssa.Value

	marked map[*ssa.Value]bool
	invs   []*ssa.Value

	stored    map[*ssa.Value]bool
	argStored bool // a store hit a parameter; all pointer args alias
}

func newLICMPass(pm *PassManager) any {
	return &LICMPass{pm: pm}
}

func (p *LICMPass) RunOnFunction(f *ssa.Value) bool {
	if f.IsDecl() {
		return false
	}
	// a freshly normalized CFG means stale dominance and loop records;
	// the sweep repeats anyway, pick the function up then
	if GetPass[*LoopNormPass](p.pm, "loop_norm").Touched(f) {
		return false
	}
	p.dom = GetPass[*DomInfoPass](p.pm, "dom_info").Dominance(f)
	loops := GetPass[*LoopInfoPass](p.pm, "loop_info").Loops(f)

	changed := false
	for _, loop := range loops {
		p.loop = loop
		// hoisting moves instructions, so rescan parents per loop
		p.parent = analysis.ScanParents(f)
		if p.processLoop(f) {
			changed = true
		}
	}
	return changed
}

// processLoop runs the store scan, the invariant fixpoint and the hoist
// for one loop. Reports whether anything moved.
func (p *LICMPass) processLoop(f *ssa.Value) bool {
	p.processStores(f)

	p.marked = make(map[*ssa.Value]bool)
	p.invs = p.invs[:0]
	lastSize := -1
	for len(p.marked) != lastSize {
		lastSize = len(p.marked)
		for _, bu := range f.Blocks() {
			b := bu.Value()
			if !p.loop.Contains(b) {
				continue
			}
			p.curBlock = b
			for _, inst := range b.Insts {
				if !p.marked[inst] {
					p.visit(inst)
				}
			}
		}
	}
	if len(p.invs) == 0 {
		return false
	}

	pre := p.loop.Preheader
	if pre == nil {
		return false // not normalized; nothing safe to do
	}
	for _, inst := range p.invs {
		if parent := p.parent.Parent(inst); parent != nil {
			parent.RemoveInst(inst)
		}
	}
	pre.InsertBeforeTerm(p.invs...)
	return true
}

// visit considers one instruction for invariance. Only side-effect-free,
// hoistable kinds qualify; loads additionally require their base pointer
// to be unwritten inside the loop.
func (p *LICMPass) visit(inst *ssa.Value) {
	switch inst.Kind {
	case ssa.KindAccess, ssa.KindBinary, ssa.KindUnary, ssa.KindCast, ssa.KindSelect:
		p.logInvariant(inst)
	case ssa.KindLoad:
		base := p.basePointer(inst.Operand(0))
		if p.stored[base] {
			return
		}
		if p.argStored && base.Kind == ssa.KindArgRef {
			return
		}
		p.logInvariant(inst)
	}
}

// logInvariant marks inst invariant when every operand is invariant and
// its block dominates every in-loop user. Use-free instructions are
// marked but never moved; dependents may still hoist past them.
func (p *LICMPass) logInvariant(inst *ssa.Value) {
	for _, u := range inst.Operands() {
		if !p.isInvariant(u.Value()) {
			return
		}
	}
	for u := inst.Uses(); u != nil; u = u.Next() {
		parent := p.parent.Parent(u.User())
		if parent == nil || !p.loop.Contains(parent) {
			continue
		}
		if !p.dom.Dominates(p.curBlock, parent) {
			return
		}
	}
	p.marked[inst] = true
	if inst.HasUses() {
		p.invs = append(p.invs, inst)
	}
}

// isInvariant reports whether a value cannot change across iterations of
// the current loop.
func (p *LICMPass) isInvariant(v *ssa.Value) bool {
	if v == nil || v.IsConst() || v.IsUndef() {
		return true
	}
	if v.Kind == ssa.KindArgRef || v.Kind == ssa.KindGlobalVar {
		return true
	}
	if !p.loop.Contains(p.parent.Parent(v)) {
		return true
	}
	return p.marked[v]
}

// basePointer peels Access and Cast wrappers off a pointer. A phi is
// followed only when exactly one incoming value does not feed back
// through the phi's own users; an ambiguous phi is its own base, which
// is sound but blocks fewer loads than a real underlying-object analysis
// would.
func (p *LICMPass) basePointer(ptr *ssa.Value) *ssa.Value {
	for {
		switch ptr.Kind {
		case ssa.KindAccess, ssa.KindCast:
			ptr = ptr.Operand(0)
		case ssa.KindPhi:
			users := make(map[*ssa.Value]bool)
			for u := ptr.Uses(); u != nil; u = u.Next() {
				users[u.User()] = true
			}
			var forward *ssa.Value
			count := 0
			for i := 0; i < ptr.NumOperands(); i++ {
				opr := ptr.Operand(i)
				if in := opr.Operand(0); !users[in] {
					forward = in
					count++
				}
			}
			if count != 1 {
				return ptr
			}
			ptr = forward
		default:
			return ptr
		}
	}
}

// processStores collects the base pointers written anywhere in the loop.
// A store through a parameter conservatively aliases every pointer
// parameter; there is no precise alias analysis.
func (p *LICMPass) processStores(f *ssa.Value) {
	p.stored = make(map[*ssa.Value]bool)
	p.argStored = false
	for _, bu := range f.Blocks() {
		b := bu.Value()
		if !p.loop.Contains(b) {
			continue
		}
		for _, inst := range b.Insts {
			if inst.Kind != ssa.KindStore {
				continue
			}
			base := p.basePointer(inst.Operand(1))
			if base.Kind == ssa.KindArgRef {
				p.argStored = true
			}
			p.stored[base] = true
		}
	}
}
