package ssa

import (
	"errors"
	"fmt"

	"minic/internal/types"
)

// Verify checks the module-wide IR invariants. Returns an error joining
// every violation found; nil means the IR is well-formed.
func Verify(m *Module) error {
	if m == nil {
		return nil
	}
	m.SealGlobalCtor()
	var errs []error
	for _, f := range m.funcs {
		if err := VerifyFunction(m.Types, f); err != nil {
			errs = append(errs, fmt.Errorf("function %s: %w", f.Name, err))
		}
	}
	return errors.Join(errs...)
}

// VerifyFunction checks the per-function invariants: terminator placement,
// predecessor/successor symmetry, phi shape and use-edge integrity.
func VerifyFunction(in *types.Interner, f *Value) error {
	if f == nil || f.IsDecl() {
		return nil
	}

	var errs []error

	if err := verifyTerminators(f); err != nil {
		errs = append(errs, err)
	}
	if err := verifyPredecessors(f); err != nil {
		errs = append(errs, err)
	}
	if err := verifyPhis(in, f); err != nil {
		errs = append(errs, err)
	}
	if err := verifyUseEdges(f); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// verifyTerminators checks that every non-empty block ends with exactly
// one terminator and that no terminator appears earlier.
func verifyTerminators(f *Value) error {
	var errs []error
	for bi, bu := range f.Blocks() {
		b := bu.Value()
		if len(b.Insts) == 0 {
			continue
		}
		if !b.Insts[len(b.Insts)-1].IsTerminator() {
			errs = append(errs, fmt.Errorf("block %d: missing terminator", bi))
		}
		for ii, inst := range b.Insts[:len(b.Insts)-1] {
			if inst.IsTerminator() {
				errs = append(errs, fmt.Errorf("block %d: terminator at position %d", bi, ii))
			}
		}
	}
	return errors.Join(errs...)
}

// verifyPredecessors checks successor/predecessor symmetry: for every
// terminator with successor S, S's predecessor list holds the terminator's
// block exactly once, and every predecessor edge is backed by a terminator.
func verifyPredecessors(f *Value) error {
	var errs []error

	succs := func(b *Value) []*Value {
		term := b.Terminator()
		if term == nil {
			return nil
		}
		switch term.Kind {
		case KindJump:
			return []*Value{term.Operand(0)}
		case KindBranch:
			return []*Value{term.Operand(1), term.Operand(2)}
		}
		return nil
	}

	for bi, bu := range f.Blocks() {
		b := bu.Value()
		for _, s := range succs(b) {
			count := 0
			for _, pu := range s.Preds() {
				if pu.Value() == b {
					count++
				}
			}
			if count != 1 {
				errs = append(errs, fmt.Errorf(
					"block %d: successor lists it as predecessor %d times", bi, count))
			}
		}
		for _, pu := range b.Preds() {
			p := pu.Value()
			found := false
			for _, s := range succs(p) {
				if s == b {
					found = true
				}
			}
			if !found {
				errs = append(errs, fmt.Errorf(
					"block %d: predecessor edge without matching terminator", bi))
			}
		}
	}
	return errors.Join(errs...)
}

// verifyPhis checks that each phi has one operand per predecessor, each
// naming a distinct predecessor block, with matching types.
func verifyPhis(in *types.Interner, f *Value) error {
	var errs []error
	for bi, bu := range f.Blocks() {
		b := bu.Value()
		for _, inst := range b.Insts {
			if inst.Kind != KindPhi {
				continue
			}
			if inst.NumOperands() != len(b.Preds()) {
				errs = append(errs, fmt.Errorf(
					"block %d: phi has %d operands for %d predecessors",
					bi, inst.NumOperands(), len(b.Preds())))
				continue
			}
			seen := make(map[*Value]bool)
			for oi := 0; oi < inst.NumOperands(); oi++ {
				opr := inst.Operand(oi)
				if opr == nil || opr.Kind != KindPhiOperand {
					errs = append(errs, fmt.Errorf("block %d: phi operand %d malformed", bi, oi))
					continue
				}
				if in != nil && !in.IsIdentical(opr.Type(), inst.Type()) {
					errs = append(errs, fmt.Errorf(
						"block %d: phi operand %d type differs from the phi", bi, oi))
				}
				blk := opr.Operand(1)
				isPred := false
				for _, pu := range b.Preds() {
					if pu.Value() == blk {
						isPred = true
					}
				}
				if !isPred {
					errs = append(errs, fmt.Errorf(
						"block %d: phi operand %d names a non-predecessor", bi, oi))
				}
				if seen[blk] {
					errs = append(errs, fmt.Errorf(
						"block %d: phi has duplicate operand for one predecessor", bi))
				}
				seen[blk] = true
			}
		}
	}
	return errors.Join(errs...)
}

// verifyUseEdges checks that every operand edge is linked into its value's
// def-use list and owned by its user.
func verifyUseEdges(f *Value) error {
	var errs []error
	check := func(v *Value, where string) {
		for oi, u := range v.Operands() {
			if u.User() != v {
				errs = append(errs, fmt.Errorf("%s: operand %d has a foreign user", where, oi))
			}
			target := u.Value()
			if target == nil {
				continue
			}
			linked := false
			for cur := target.Uses(); cur != nil; cur = cur.Next() {
				if cur == u {
					linked = true
				}
			}
			if !linked {
				errs = append(errs, fmt.Errorf("%s: operand %d missing from use-list", where, oi))
			}
		}
	}
	for bi, bu := range f.Blocks() {
		b := bu.Value()
		for ii, inst := range b.Insts {
			check(inst, fmt.Sprintf("block %d instr %d", bi, ii))
			if inst.Kind == KindPhi {
				for oi := 0; oi < inst.NumOperands(); oi++ {
					if opr := inst.Operand(oi); opr != nil {
						check(opr, fmt.Sprintf("block %d instr %d phi-opr %d", bi, ii, oi))
					}
				}
			}
		}
	}
	return errors.Join(errs...)
}
