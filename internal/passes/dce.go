package passes

import "minic/internal/ssa"

// DCEPass deletes side-effect-free instructions with no uses, cascading
// until the function is clean.
type DCEPass struct {
	pm *PassManager
}

func newDCEPass(pm *PassManager) any {
	return &DCEPass{pm: pm}
}

func isRemovable(v *ssa.Value) bool {
	switch v.Kind {
	case ssa.KindLoad, ssa.KindAlloca, ssa.KindAccess, ssa.KindBinary,
		ssa.KindUnary, ssa.KindCast, ssa.KindSelect:
		return true
	}
	return false
}

func (p *DCEPass) RunOnFunction(f *ssa.Value) bool {
	changed := false
	removedAny := true
	for removedAny {
		removedAny = false
		for _, bu := range f.Blocks() {
			b := bu.Value()
			for i := 0; i < len(b.Insts); {
				inst := b.Insts[i]
				if isRemovable(inst) && !inst.HasUses() {
					inst.ClearOperands()
					b.RemoveInst(inst)
					removedAny = true
					changed = true
					continue
				}
				i++
			}
		}
	}
	return changed
}
