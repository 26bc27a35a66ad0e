package passes

import (
	"minic/internal/analysis"
	"minic/internal/ssa"
	"minic/internal/types"
)

// LoopNormPass guarantees every natural loop a pre-header: a block with
// the loop header as its only successor, sitting outside the loop, that
// hoisting passes can append to. An existing sole out-of-loop jump
// predecessor is reused; otherwise the header's out-of-loop edges are
// split into a fresh block.
type LoopNormPass struct {
	pm *PassManager
	// functions whose CFG this pass edited in the current sweep; loop
	// passes later in the sweep skip them and pick the function up again
	// once the analyses are fresh
	touched map[*ssa.Value]bool
}

func newLoopNormPass(pm *PassManager) any {
	return &LoopNormPass{pm: pm, touched: make(map[*ssa.Value]bool)}
}

// Touched reports whether f's CFG changed in the current sweep.
func (p *LoopNormPass) Touched(f *ssa.Value) bool { return p.touched[f] }

func (p *LoopNormPass) RunOnFunction(f *ssa.Value) bool {
	delete(p.touched, f)
	if f.IsDecl() {
		return false
	}
	loops := GetPass[*LoopInfoPass](p.pm, "loop_info").Loops(f)
	changed := false
	for _, loop := range loops {
		if p.ensurePreheader(f, loop) {
			changed = true
		}
	}
	if changed {
		p.touched[f] = true
	}
	return changed
}

func (p *LoopNormPass) ensurePreheader(f *ssa.Value, loop *analysis.LoopInfo) bool {
	header := loop.Header

	var outPreds []*ssa.Value
	for _, pu := range header.Preds() {
		if !loop.Contains(pu.Value()) {
			outPreds = append(outPreds, pu.Value())
		}
	}
	if len(outPreds) == 1 {
		pred := outPreds[0]
		if term := pred.Terminator(); term != nil && term.Kind == ssa.KindJump {
			loop.Preheader = pred
			return false
		}
	}

	// split the out-of-loop edges into a fresh pre-header
	pre := ssa.NewValue(ssa.KindBlock)
	pre.SetParent(f)
	f.AddOperand(pre)

	for _, pred := range outPreds {
		term := pred.Terminator()
		for i := 0; i < term.NumOperands(); i++ {
			if term.Operand(i) == header {
				term.SetOperand(i, pre)
			}
		}
		// move the predecessor edge from the header to the pre-header
		for i, pu := range header.Preds() {
			if pu.Value() == pred {
				header.RemoveOperand(i)
				break
			}
		}
		pre.AddOperand(pred)
	}

	p.retargetPhis(header, outPreds, pre)

	jump := ssa.NewValue(ssa.KindJump)
	jump.AddOperand(header)
	jump.SetTypes(types.NoTypeID)
	pre.AppendInst(jump)
	header.AddOperand(pre)

	loop.Preheader = pre
	return true
}

// retargetPhis rewires header phis whose incoming edges came from the
// moved predecessors. A single moved edge is renamed to the pre-header;
// several are merged through a new phi in the pre-header.
func (p *LoopNormPass) retargetPhis(header *ssa.Value, outPreds []*ssa.Value, pre *ssa.Value) {
	moved := make(map[*ssa.Value]bool, len(outPreds))
	for _, pred := range outPreds {
		moved[pred] = true
	}
	for _, inst := range header.Insts {
		if inst.Kind != ssa.KindPhi {
			continue
		}
		var outside []int
		for i := 0; i < inst.NumOperands(); i++ {
			if opr := inst.Operand(i); opr != nil && moved[opr.Operand(1)] {
				outside = append(outside, i)
			}
		}
		switch len(outside) {
		case 0:
		case 1:
			inst.Operand(outside[0]).SetOperand(1, pre)
		default:
			merge := ssa.NewPhi(inst.Type(), pre)
			for _, i := range outside {
				opr := inst.Operand(i)
				ssa.AddPhiOperand(merge, opr.Operand(0), opr.Operand(1))
			}
			// drop the moved operands back-to-front, then add the merged one
			for k := len(outside) - 1; k >= 0; k-- {
				i := outside[k]
				inst.Operand(i).ClearOperands()
				inst.RemoveOperand(i)
			}
			ssa.AddPhiOperand(inst, merge, pre)
		}
	}
}
