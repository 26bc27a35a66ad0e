package analysis

import (
	"sort"

	"minic/internal/ssa"
)

// LoopInfo describes one natural loop.
type LoopInfo struct {
	// Header is the single entry block of the loop.
	Header *ssa.Value
	// Body holds every block of the loop, the header included.
	Body map[*ssa.Value]bool
	// Preheader is the hoisting destination; populated by the
	// loop-normalization pass, nil before it runs.
	Preheader *ssa.Value
	// Tails are the sources of the back edges into Header.
	Tails []*ssa.Value
}

// Contains reports whether b belongs to the loop.
func (li *LoopInfo) Contains(b *ssa.Value) bool { return li.Body[b] }

// FindLoops detects the natural loops of f via back edges, merging loops
// that share a header. The result is ordered innermost-first so that
// hoisting targets the innermost available pre-header.
func FindLoops(f *ssa.Value, dom *Dominance) []*LoopInfo {
	if f.IsDecl() {
		return nil
	}
	byHeader := make(map[*ssa.Value]*LoopInfo)
	var headers []*ssa.Value

	for _, bu := range f.Blocks() {
		b := bu.Value()
		if !dom.Dominates(b, b) {
			continue // unreachable
		}
		for _, s := range b.Succs() {
			if !dom.Dominates(s, b) {
				continue // not a back edge
			}
			li := byHeader[s]
			if li == nil {
				li = &LoopInfo{Header: s, Body: map[*ssa.Value]bool{s: true}}
				byHeader[s] = li
				headers = append(headers, s)
			}
			li.Tails = append(li.Tails, b)
			collectBody(li, b)
		}
	}

	loops := make([]*LoopInfo, 0, len(headers))
	for _, h := range headers {
		loops = append(loops, byHeader[h])
	}
	// nested loops have strictly smaller bodies than the loops around
	// them, so ascending body size yields innermost-first
	sort.SliceStable(loops, func(i, j int) bool {
		return len(loops[i].Body) < len(loops[j].Body)
	})
	return loops
}

// collectBody adds every block that reaches tail without passing through
// the header (the classic natural-loop walk over predecessors).
func collectBody(li *LoopInfo, tail *ssa.Value) {
	if li.Body[tail] {
		return
	}
	li.Body[tail] = true
	stack := []*ssa.Value{tail}
	for len(stack) > 0 {
		b := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, pu := range b.Preds() {
			p := pu.Value()
			if !li.Body[p] {
				li.Body[p] = true
				stack = append(stack, p)
			}
		}
	}
}
