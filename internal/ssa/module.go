package ssa

import (
	"io"

	"minic/internal/diag"
	"minic/internal/types"
)

// CtorName is the synthetic function holding non-constant global
// variable initializers.
const CtorName = "_$ctor"

// PassDriver runs optimization passes over the module's value lists.
// The concrete driver lives in internal/passes; the module only hands it
// exclusive access to its globals and functions.
type PassDriver interface {
	RunPasses(in *types.Interner, vars, funcs *[]*Value)
}

// Module owns the IR of one translation unit: the ordered global variable
// and function lists, the builder insert point and the synthetic global
// constructor. All values are created through its builder API.
type Module struct {
	Types *types.Interner

	vars  []*Value
	funcs []*Value

	insertPoint *Value

	globalCtor *Value
	ctorEntry  *Value
	ctorExit   *Value
	ctorSealed bool

	reporters []diag.Reporter
}

// NewModule creates an empty module over a fresh type interner.
func NewModule() *Module {
	return &Module{Types: types.NewInterner()}
}

// Vars returns the global variable list in insertion order.
func (m *Module) Vars() []*Value { return m.vars }

// Funcs returns the function list in insertion order.
func (m *Module) Funcs() []*Value { return m.funcs }

// InsertPoint returns the block new instructions are appended to.
func (m *Module) InsertPoint() *Value { return m.insertPoint }

// SetInsertPoint moves the builder to block b.
func (m *Module) SetInsertPoint(b *Value) {
	assertf(b == nil || b.Kind == KindBlock, "insert point must be a block")
	m.insertPoint = b
}

// SetContext pushes a diagnostic reporter and returns a release func that
// must run on every exit path (defer it).
func (m *Module) SetContext(r diag.Reporter) func() {
	m.reporters = append(m.reporters, r)
	return func() {
		m.reporters = m.reporters[:len(m.reporters)-1]
	}
}

// Reporter returns the innermost diagnostic reporter.
func (m *Module) Reporter() diag.Reporter {
	if len(m.reporters) == 0 {
		return diag.NopReporter{}
	}
	return m.reporters[len(m.reporters)-1]
}

// EnterGlobalCtor switches the insert point to the global constructor's
// entry block, creating the constructor on first use. The returned release
// func restores the previous insert point.
func (m *Module) EnterGlobalCtor() func() {
	cur := m.insertPoint
	if m.globalCtor == nil {
		void := m.Types.Builtins().Void
		ty := m.Types.MakeFunc(nil, void, true)
		m.globalCtor = m.CreateFunction(LinkGlobalCtor, CtorName, ty)
		m.ctorEntry = m.CreateBlock(m.globalCtor, "entry")
		m.ctorExit = m.CreateBlock(m.globalCtor, "exit")
		m.insertPoint = m.ctorExit
		m.CreateReturn(nil)
		m.ctorSealed = false
	}
	m.insertPoint = m.ctorEntry
	return func() { m.insertPoint = cur }
}

// SealGlobalCtor links the constructor's entry block to its exit block.
// Idempotent; must precede any traversal that assumes closed CFGs.
func (m *Module) SealGlobalCtor() {
	if m.globalCtor != nil && !m.ctorSealed {
		m.insertPoint = m.ctorEntry
		m.CreateJump(m.ctorExit)
		m.ctorSealed = true
	}
}

// Dump writes the module's textual IR to w.
func (m *Module) Dump(w io.Writer) error {
	m.SealGlobalCtor()
	return dumpModule(w, m)
}

// RunPasses hands the module's value lists to the pass driver.
func (m *Module) RunPasses(d PassDriver) {
	m.SealGlobalCtor()
	d.RunPasses(m.Types, &m.vars, &m.funcs)
}

// GenerateCode walks globals then functions in insertion order and drives
// the backend.
func (m *Module) GenerateCode(gen Generator) error {
	m.SealGlobalCtor()
	for _, v := range m.vars {
		if err := gen.GenerateOn(v); err != nil {
			return err
		}
	}
	for _, f := range m.funcs {
		if err := gen.GenerateOn(f); err != nil {
			return err
		}
	}
	return nil
}
