package passes

import "sync"

var registerOnce sync.Once

// RegisterAllPasses registers the built-in passes in their pipeline
// order. Explicit registration instead of init side-effects keeps the
// order independent of file layout. Idempotent.
func RegisterAllPasses() {
	registerOnce.Do(func() {
		Register(&PassInfo{
			Name:        "dom_info",
			Kind:        KindFunction,
			MinOptLevel: 1,
			Stage:       StagePreOpt,
			Factory:     newDomInfoPass,
		})
		Register(&PassInfo{
			Name:        "loop_info",
			Kind:        KindFunction,
			MinOptLevel: 2,
			Stage:       StagePreOpt,
			Requires:    []string{"dom_info"},
			Factory:     newLoopInfoPass,
		})
		Register(&PassInfo{
			Name:        "loop_norm",
			Kind:        KindFunction,
			MinOptLevel: 2,
			Stage:       StageOpt,
			Requires:    []string{"loop_info"},
			Factory:     newLoopNormPass,
		})
		Register(&PassInfo{
			Name:        "licm",
			Kind:        KindFunction,
			MinOptLevel: 2,
			Stage:       StageOpt,
			Requires:    []string{"dom_info", "loop_info", "loop_norm"},
			Factory:     newLICMPass,
		})
		Register(&PassInfo{
			Name:        "constfold",
			Kind:        KindBlock,
			MinOptLevel: 1,
			Stage:       StageOpt,
			Factory:     newConstFoldPass,
		})
		Register(&PassInfo{
			Name:        "dce",
			Kind:        KindFunction,
			MinOptLevel: 1,
			Stage:       StageOpt,
			Factory:     newDCEPass,
		})
		Register(&PassInfo{
			Name:        "globalelim",
			Kind:        KindModule,
			MinOptLevel: 2,
			Stage:       StagePostOpt,
			Factory:     newGlobalElimPass,
		})
	})
}
