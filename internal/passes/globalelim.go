package passes

import "minic/internal/ssa"

// GlobalElimPass drops internal globals and functions that nothing uses.
// Runs at module granularity over the variable list and the function
// list in turn.
type GlobalElimPass struct {
	pm *PassManager
}

func newGlobalElimPass(pm *PassManager) any {
	return &GlobalElimPass{pm: pm}
}

func (p *GlobalElimPass) RunOnModule(values *[]*ssa.Value) bool {
	changed := false
	kept := (*values)[:0]
	for _, v := range *values {
		if removableGlobal(v) {
			detach(v)
			changed = true
			continue
		}
		kept = append(kept, v)
	}
	*values = kept
	return changed
}

func removableGlobal(v *ssa.Value) bool {
	if v.Link != ssa.LinkInternal || v.HasUses() {
		return false
	}
	switch v.Kind {
	case ssa.KindGlobalVar:
		return true
	case ssa.KindFunction:
		return true
	}
	return false
}

// detach unlinks every operand edge reachable from v so no dangling use
// remains in the surviving IR.
func detach(v *ssa.Value) {
	if v.Kind == ssa.KindFunction {
		for _, bu := range v.Blocks() {
			b := bu.Value()
			for _, inst := range b.Insts {
				for i := 0; i < inst.NumOperands(); i++ {
					if opr := inst.Operand(i); opr != nil && opr.Kind == ssa.KindPhiOperand {
						opr.ClearOperands()
					}
				}
				inst.ClearOperands()
			}
			b.Insts = nil
			b.ClearOperands()
		}
	}
	v.ClearOperands()
}
