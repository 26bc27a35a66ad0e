package analysis

import "minic/internal/ssa"

// Dominance answers dominance queries for one function. Computed with the
// iterative algorithm over a reverse-postorder walk.
type Dominance struct {
	entry *ssa.Value
	idom  map[*ssa.Value]*ssa.Value
	order map[*ssa.Value]int // postorder number
}

// ComputeDominance builds the immediate-dominator tree of f.
func ComputeDominance(f *ssa.Value) *Dominance {
	d := &Dominance{
		idom:  make(map[*ssa.Value]*ssa.Value),
		order: make(map[*ssa.Value]int),
	}
	if f.IsDecl() {
		return d
	}
	d.entry = f.Entry()

	// postorder over successor edges
	var postorder []*ssa.Value
	seen := make(map[*ssa.Value]bool)
	var walk func(b *ssa.Value)
	walk = func(b *ssa.Value) {
		if b == nil || seen[b] {
			return
		}
		seen[b] = true
		for _, s := range b.Succs() {
			walk(s)
		}
		d.order[b] = len(postorder)
		postorder = append(postorder, b)
	}
	walk(d.entry)

	d.idom[d.entry] = d.entry
	changed := true
	for changed {
		changed = false
		// reverse postorder, entry skipped
		for i := len(postorder) - 2; i >= 0; i-- {
			b := postorder[i]
			var newIdom *ssa.Value
			for _, pu := range b.Preds() {
				p := pu.Value()
				if d.idom[p] == nil {
					continue // unprocessed or unreachable
				}
				if newIdom == nil {
					newIdom = p
				} else {
					newIdom = d.intersect(p, newIdom)
				}
			}
			if newIdom != nil && d.idom[b] != newIdom {
				d.idom[b] = newIdom
				changed = true
			}
		}
	}
	return d
}

func (d *Dominance) intersect(a, b *ssa.Value) *ssa.Value {
	for a != b {
		for d.order[a] < d.order[b] {
			a = d.idom[a]
		}
		for d.order[b] < d.order[a] {
			b = d.idom[b]
		}
	}
	return a
}

// Idom returns the immediate dominator of b (entry maps to itself).
func (d *Dominance) Idom(b *ssa.Value) *ssa.Value { return d.idom[b] }

// Dominates reports whether a dominates b. Reflexive; unreachable blocks
// dominate nothing and are dominated by nothing.
func (d *Dominance) Dominates(a, b *ssa.Value) bool {
	if a == b {
		return d.idom[a] != nil
	}
	cur := b
	for {
		next := d.idom[cur]
		if next == nil || next == cur {
			return false
		}
		if next == a {
			return true
		}
		cur = next
	}
}
