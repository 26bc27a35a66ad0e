// Package analysis provides pure readers over the IR: parent scanning,
// dominance and natural-loop detection. Results go stale after any
// transform that moves instructions or edits the CFG and must be
// recomputed.
package analysis

import "minic/internal/ssa"

// ParentMap maps every instruction of a function to its containing block.
type ParentMap struct {
	parents map[*ssa.Value]*ssa.Value
}

// ScanParents builds the parent map with one pass over f's blocks.
func ScanParents(f *ssa.Value) *ParentMap {
	pm := &ParentMap{parents: make(map[*ssa.Value]*ssa.Value)}
	for _, bu := range f.Blocks() {
		b := bu.Value()
		for _, inst := range b.Insts {
			pm.parents[inst] = b
		}
	}
	return pm
}

// Parent returns the block containing v, or nil when v is not an
// instruction of the scanned function.
func (pm *ParentMap) Parent(v *ssa.Value) *ssa.Value {
	return pm.parents[v]
}
