package passes

import (
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/fatih/color"

	"minic/internal/observ"
	"minic/internal/ssa"
	"minic/internal/types"
)

// Observer is notified as the manager works. The driver hooks snapshots
// and narration here; the zero observer is silent.
type Observer interface {
	AfterPass(sweep int, pass string, changed bool)
	AfterSweep(sweep int, changed bool)
	Bailout(sweeps int)
}

// NopObserver ignores every event.
type NopObserver struct{}

func (NopObserver) AfterPass(int, string, bool) {}

func (NopObserver) AfterSweep(int, bool) {}

func (NopObserver) Bailout(int) {}

var (
	registryMu sync.Mutex
	registry   []*PassInfo
)

// Register appends a pass to the global registry. Passes run in
// registration order inside every sweep.
func Register(info *PassInfo) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry = append(registry, info)
}

// Registry returns the registered passes in order.
func Registry() []*PassInfo {
	registryMu.Lock()
	defer registryMu.Unlock()
	return append([]*PassInfo(nil), registry...)
}

type registeredPass struct {
	info     *PassInfo
	instance any
}

// PassManager drives every registered pass over a module's value lists
// until a full sweep reports no change.
type PassManager struct {
	OptLevel  int
	MaxSweeps int // 0 means the computed default
	Observer  Observer
	Timer     *observ.Timer
	Disabled  map[string]bool

	in     *types.Interner
	vars   *[]*ssa.Value
	funcs  *[]*ssa.Value
	passes []*registeredPass
	byName map[string]*registeredPass
}

// NewPassManager instantiates every registered pass at the given
// optimization level.
func NewPassManager(optLevel int) *PassManager {
	pm := &PassManager{
		OptLevel: optLevel,
		Observer: NopObserver{},
		byName:   make(map[string]*registeredPass),
	}
	for _, info := range Registry() {
		rp := &registeredPass{info: info}
		rp.instance = info.Factory(pm)
		pm.passes = append(pm.passes, rp)
		pm.byName[info.Name] = rp
	}
	return pm
}

// Types returns the module's type interner; valid during RunPasses.
func (pm *PassManager) Types() *types.Interner { return pm.in }

// Funcs returns the module's function list; valid during RunPasses.
func (pm *PassManager) Funcs() []*ssa.Value { return *pm.funcs }

// GetPass looks a pass instance up by registry name.
func GetPass[T any](pm *PassManager, name string) T {
	rp := pm.byName[name]
	if rp == nil {
		panic(fmt.Sprintf("passes: unknown pass %q", name))
	}
	inst, ok := rp.instance.(T)
	if !ok {
		panic(fmt.Sprintf("passes: pass %q has unexpected type", name))
	}
	return inst
}

func (pm *PassManager) maxSweeps() int {
	if pm.MaxSweeps > 0 {
		return pm.MaxSweeps
	}
	return 8 + 4*len(pm.passes)
}

func (pm *PassManager) enabled(info *PassInfo) bool {
	if info.MinOptLevel > pm.OptLevel {
		return false
	}
	return !pm.Disabled[info.Name]
}

// RunPasses implements ssa.PassDriver: it sweeps the registered passes in
// order until a full sweep changes nothing, bounded defensively so a
// non-converging pass cannot loop forever (the last IR is kept).
func (pm *PassManager) RunPasses(in *types.Interner, vars, funcs *[]*ssa.Value) {
	pm.in = in
	pm.vars = vars
	pm.funcs = funcs

	limit := pm.maxSweeps()
	changed := true
	sweep := 0
	for changed {
		if sweep >= limit {
			pm.Observer.Bailout(sweep)
			return
		}
		changed = false
		for _, rp := range pm.passes {
			if !pm.enabled(rp.info) {
				continue
			}
			if pm.runOne(rp, sweep) {
				changed = true
			}
		}
		pm.Observer.AfterSweep(sweep, changed)
		sweep++
	}
}

func (pm *PassManager) runOne(rp *registeredPass, sweep int) bool {
	var timing int
	if pm.Timer != nil {
		timing = pm.Timer.Begin(rp.info.Name)
	}
	changed := false
	switch pass := rp.instance.(type) {
	case ModulePass:
		if pass.RunOnModule(pm.vars) {
			changed = true
		}
		if pass.RunOnModule(pm.funcs) {
			changed = true
		}
	case FunctionPass:
		for _, f := range *pm.funcs {
			if pass.RunOnFunction(f) {
				changed = true
			}
		}
	case BlockPass:
		for _, f := range *pm.funcs {
			for _, bu := range f.Blocks() {
				if pass.RunOnBlock(bu.Value()) {
					changed = true
				}
			}
		}
	default:
		panic(fmt.Sprintf("passes: %q implements no pass interface", rp.info.Name))
	}
	if pm.Timer != nil {
		pm.Timer.End(timing)
	}
	pm.Observer.AfterPass(sweep, rp.info.Name, changed)
	return changed
}

// ShowInfo prints the registry and the set enabled at the current level.
func (pm *PassManager) ShowInfo(w io.Writer) {
	heading := color.New(color.Bold)
	heading.Fprintf(w, "current optimization level: %d\n\n", pm.OptLevel)

	heading.Fprintln(w, "registered passes:")
	if len(pm.passes) == 0 {
		fmt.Fprintln(w, "  <none>")
		return
	}
	names := make([]string, 0, len(pm.passes))
	for _, rp := range pm.passes {
		names = append(names, rp.info.Name)
	}
	sort.Strings(names)
	for _, name := range names {
		info := pm.byName[name].info
		state := color.GreenString("enabled")
		if !pm.enabled(info) {
			state = color.HiBlackString("disabled")
		}
		fmt.Fprintf(w, "  %-16s %-8s min_opt_level=%d  %s\n",
			info.Name, info.Kind, info.MinOptLevel, state)
	}
}
