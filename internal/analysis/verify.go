package analysis

import (
	"errors"
	"fmt"

	"minic/internal/ssa"
)

// VerifyDominance checks that every instruction operand which is itself an
// instruction is defined in a block dominating its user (with in-block
// definition order for same-block pairs). Valid between sealing and the
// first transform; phis are exempt, their operands flow along edges.
func VerifyDominance(f *ssa.Value) error {
	if f.IsDecl() {
		return nil
	}
	pm := ScanParents(f)
	dom := ComputeDominance(f)

	pos := make(map[*ssa.Value]int)
	for _, bu := range f.Blocks() {
		for i, inst := range bu.Value().Insts {
			pos[inst] = i
		}
	}

	var errs []error
	for bi, bu := range f.Blocks() {
		b := bu.Value()
		for ii, inst := range b.Insts {
			if inst.Kind == ssa.KindPhi {
				continue
			}
			for oi := 0; oi < inst.NumOperands(); oi++ {
				opr := inst.Operand(oi)
				if opr == nil || !opr.IsInstruction() {
					continue
				}
				ob := pm.Parent(opr)
				if ob == nil {
					continue // constant cast or detached value
				}
				if ob == b {
					if pos[opr] > pos[inst] {
						errs = append(errs, fmt.Errorf(
							"block %d instr %d: uses a later definition", bi, ii))
					}
				} else if !dom.Dominates(ob, b) {
					errs = append(errs, fmt.Errorf(
						"block %d instr %d: operand %d does not dominate the use", bi, ii, oi))
				}
			}
		}
	}
	return errors.Join(errs...)
}
