package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"minic/internal/observ"
	"minic/internal/passes"
	"minic/internal/snapshot"
	"minic/internal/ssa"
	"minic/internal/types"
)

var selfcheckCmd = &cobra.Command{
	Use:   "selfcheck",
	Short: "Build a demonstration module, optimize it and dump the IR",
	Long: `selfcheck drives the whole middle-end in-process: it constructs a
small module through the builder API, verifies the IR invariants, runs
the pass pipeline at the selected optimization level and dumps the
resulting IR. Useful as a smoke test and as a showcase of the textual
format.`,
	RunE: runSelfcheck,
}

func init() {
	selfcheckCmd.Flags().Bool("emit-before", false, "also dump the IR before optimization")
	selfcheckCmd.Flags().Bool("verbose", false, "narrate pass activity")
}

func runSelfcheck(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	mod := buildDemoModule()
	if err := ssa.Verify(mod); err != nil {
		return fmt.Errorf("selfcheck: invalid IR out of the builder: %w", err)
	}

	if before, _ := cmd.Flags().GetBool("emit-before"); before {
		color.New(color.Bold).Println("; before optimization")
		if err := mod.Dump(os.Stdout); err != nil {
			return err
		}
		fmt.Println()
	}

	passes.RegisterAllPasses()
	pm := passes.NewPassManager(optLevel(cmd, cfg))
	pm.Disabled = disabledSet(cfg)
	pm.MaxSweeps = cfg.Opt.MaxSweeps

	verbose, _ := cmd.Flags().GetBool("verbose")
	obs := &pipelineObserver{mod: mod, verbose: verbose}
	if cfg.Snapshot.Enable {
		dir := cfg.Snapshot.Dir
		if dir == "" {
			dir = ".minic-snapshots"
		}
		store, err := snapshot.Open(dir)
		if err != nil {
			return err
		}
		obs.store = store
	}
	pm.Observer = obs

	timings, _ := cmd.Root().PersistentFlags().GetBool("timings")
	if timings {
		pm.Timer = observ.NewTimer()
	}

	mod.RunPasses(pm)

	if err := ssa.Verify(mod); err != nil {
		return fmt.Errorf("selfcheck: invalid IR out of the pipeline: %w", err)
	}

	color.New(color.Bold).Printf("; after optimization at -O%d\n", pm.OptLevel)
	if err := mod.Dump(os.Stdout); err != nil {
		return err
	}
	if pm.Timer != nil {
		fmt.Print(pm.Timer.Summary())
	}
	return nil
}

// buildDemoModule lowers, by hand, the equivalent of
//
//	int base = 3;
//	int scaled = base * 7;
//	int sum(int n, int x, int y) {
//	    int s = 0;
//	    for (int i = 0; i < n; i++) s += x * y;
//	    return s;
//	}
//
// exercising globals, the constructor protocol, control flow and a
// hoistable loop body.
func buildDemoModule() *ssa.Module {
	mod := ssa.NewModule()
	in := mod.Types
	i32 := in.Builtins().Int32

	base := mod.CreateGlobalVar(ssa.LinkExternal, true, "base", i32, mod.GetInt32(3))

	// scaled's initializer is not a compile-time constant: lower it into
	// the global constructor
	scaled := mod.CreateGlobalVar(ssa.LinkExternal, true, "scaled", i32, nil)
	leave := mod.EnterGlobalCtor()
	loaded := mod.CreateLoad(base, false)
	product := mod.CreateMul(loaded, mod.GetInt32(7))
	mod.CreateStore(product, scaled)
	leave()

	fnType := in.MakeFunc([]types.TypeID{i32, i32, i32}, i32, false)
	fn := mod.CreateFunction(ssa.LinkExternal, "sum", fnType)
	n := mod.CreateArgRef(fn, 0)
	x := mod.CreateArgRef(fn, 1)
	y := mod.CreateArgRef(fn, 2)

	entry := mod.CreateBlock(fn, "entry")
	cond := mod.CreateBlock(fn, "cond")
	body := mod.CreateBlock(fn, "body")
	exit := mod.CreateBlock(fn, "exit")

	mod.SetInsertPoint(entry)
	s := mod.CreateAlloca(i32)
	i := mod.CreateAlloca(i32)
	mod.CreateStore(mod.GetInt32(0), s)
	mod.CreateStore(mod.GetInt32(0), i)
	mod.CreateJump(cond)

	mod.SetInsertPoint(cond)
	iv := mod.CreateLoad(i, false)
	mod.CreateBranch(mod.CreateLess(iv, n), body, exit)

	mod.SetInsertPoint(body)
	sv := mod.CreateLoad(s, false)
	prod := mod.CreateMul(x, y)
	mod.CreateStore(mod.CreateAdd(sv, prod), s)
	iv2 := mod.CreateLoad(i, false)
	mod.CreateStore(mod.CreateAdd(iv2, mod.GetInt32(1)), i)
	mod.CreateJump(cond)

	mod.SetInsertPoint(exit)
	mod.CreateReturn(mod.CreateLoad(s, false))

	return mod
}
