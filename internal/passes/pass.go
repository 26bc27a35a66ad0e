// Package passes holds the pass registry, the fixed-point pass manager and
// the optimization passes of the middle-end.
package passes

import "minic/internal/ssa"

// PassKind selects the granularity a pass runs at.
type PassKind uint8

const (
	// KindModule passes see the global-variable and function lists.
	KindModule PassKind = iota
	// KindFunction passes run once per function.
	KindFunction
	// KindBlock passes run once per basic block.
	KindBlock
)

func (k PassKind) String() string {
	switch k {
	case KindModule:
		return "module"
	case KindFunction:
		return "function"
	case KindBlock:
		return "block"
	default:
		return "unknown"
	}
}

// PassStage positions a pass in the pipeline.
type PassStage uint8

const (
	StagePreOpt PassStage = iota
	StageOpt
	StagePostOpt
)

// ModulePass transforms a top-level value list (globals, then functions).
// It reports whether it changed anything.
type ModulePass interface {
	RunOnModule(values *[]*ssa.Value) bool
}

// FunctionPass transforms one function at a time.
type FunctionPass interface {
	RunOnFunction(f *ssa.Value) bool
}

// BlockPass transforms one basic block at a time.
type BlockPass interface {
	RunOnBlock(b *ssa.Value) bool
}

// PassInfo describes one registered pass.
type PassInfo struct {
	Name        string
	Kind        PassKind
	MinOptLevel int
	Stage       PassStage
	Requires    []string
	// Factory builds the pass instance bound to its manager.
	Factory func(pm *PassManager) any
}
