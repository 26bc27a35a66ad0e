package passes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"minic/internal/ssa"
	"minic/internal/types"
)

type sweepCounter struct {
	sweeps   int
	bailouts int
}

func (c *sweepCounter) AfterPass(int, string, bool) {}

func (c *sweepCounter) AfterSweep(int, bool) { c.sweeps++ }

func (c *sweepCounter) Bailout(int) { c.bailouts++ }

func newTestManager(t *testing.T, level int) (*PassManager, *sweepCounter) {
	t.Helper()
	RegisterAllPasses()
	pm := NewPassManager(level)
	counter := &sweepCounter{}
	pm.Observer = counter
	return pm, counter
}

// hoistModule lowers
//
//	void f(int n) {
//	    int a[16]; int x=2, y=3, c=4;
//	    for (int i = 0; i < n; i++) a[i] = x*y + c;
//	}
type hoistModule struct {
	mod                 *ssa.Module
	entry, cond, body   *ssa.Value
	mul, add, acc, incr *ssa.Value
}

func buildHoistModule(t *testing.T) *hoistModule {
	t.Helper()
	m := ssa.NewModule()
	bt := m.Types.Builtins()
	i32 := bt.Int32

	fnType := m.Types.MakeFunc([]types.TypeID{i32}, bt.Void, false)
	fn := m.CreateFunction(ssa.LinkExternal, "f", fnType)
	n := m.CreateArgRef(fn, 0)

	entry := m.CreateBlock(fn, "entry")
	cond := m.CreateBlock(fn, "cond")
	body := m.CreateBlock(fn, "body")
	exit := m.CreateBlock(fn, "exit")

	m.SetInsertPoint(entry)
	arrType := m.Types.Intern(types.MakeArray(i32, 16))
	a := m.CreateAlloca(arrType)
	x := m.CreateAlloca(i32)
	y := m.CreateAlloca(i32)
	c := m.CreateAlloca(i32)
	i := m.CreateAlloca(i32)
	m.CreateStore(m.GetInt32(2), x)
	m.CreateStore(m.GetInt32(3), y)
	m.CreateStore(m.GetInt32(4), c)
	m.CreateStore(m.GetInt32(0), i)
	m.CreateJump(cond)

	m.SetInsertPoint(cond)
	iv := m.CreateLoad(i, false)
	m.CreateBranch(m.CreateLess(iv, n), body, exit)

	m.SetInsertPoint(body)
	xv := m.CreateLoad(x, false)
	yv := m.CreateLoad(y, false)
	mul := m.CreateMul(xv, yv)
	cv := m.CreateLoad(c, false)
	add := m.CreateAdd(mul, cv)
	iv2 := m.CreateLoad(i, false)
	acc := m.CreateElemAccess(a, iv2, i32)
	m.CreateStore(add, acc)
	iv3 := m.CreateLoad(i, false)
	incr := m.CreateAdd(iv3, m.GetInt32(1))
	m.CreateStore(incr, i)
	m.CreateJump(cond)

	m.SetInsertPoint(exit)
	m.CreateReturn(nil)

	require.NoError(t, ssa.Verify(m))
	return &hoistModule{
		mod: m, entry: entry, cond: cond, body: body,
		mul: mul, add: add, acc: acc, incr: incr,
	}
}

func TestLICMHoistsInvariants(t *testing.T) {
	h := buildHoistModule(t)
	pm, _ := newTestManager(t, 2)
	h.mod.RunPasses(pm)
	require.NoError(t, ssa.Verify(h.mod))

	// the invariant mul and add moved into the pre-header (entry: its
	// jump makes it the loop's sole out-of-loop predecessor)
	assert.Same(t, h.entry, h.mul.Parent())
	assert.Same(t, h.entry, h.add.Parent())

	// the address computation, the store and the induction update stay
	assert.Same(t, h.body, h.acc.Parent())
	assert.Same(t, h.body, h.incr.Parent())

	// hoisted code sits before the pre-header terminator
	term := h.entry.Terminator()
	require.NotNil(t, term)
	assert.Equal(t, ssa.KindJump, term.Kind)
	assert.Same(t, term, h.entry.Insts[len(h.entry.Insts)-1])
}

func TestLICMSecondRunIsClean(t *testing.T) {
	h := buildHoistModule(t)
	pm, _ := newTestManager(t, 2)
	h.mod.RunPasses(pm)

	pm2, counter2 := newTestManager(t, 2)
	h.mod.RunPasses(pm2)
	assert.Equal(t, 1, counter2.sweeps, "second pipeline run must converge immediately")
	assert.Same(t, h.entry, h.mul.Parent())
}

// TestLICMStoreSetGuard lowers
//
//	void g(int *p, int *q, int n) {
//	    int t;
//	    for (int i = 0; i < n; i++) { *p = i; t = *q; }
//	}
func TestLICMStoreSetGuard(t *testing.T) {
	m := ssa.NewModule()
	bt := m.Types.Builtins()
	i32 := bt.Int32
	ptrType := m.Types.Intern(types.MakePointer(i32))

	fnType := m.Types.MakeFunc([]types.TypeID{ptrType, ptrType, i32}, bt.Void, false)
	fn := m.CreateFunction(ssa.LinkExternal, "g", fnType)
	p := m.CreateArgRef(fn, 0)
	q := m.CreateArgRef(fn, 1)
	n := m.CreateArgRef(fn, 2)

	entry := m.CreateBlock(fn, "entry")
	cond := m.CreateBlock(fn, "cond")
	body := m.CreateBlock(fn, "body")
	exit := m.CreateBlock(fn, "exit")

	m.SetInsertPoint(entry)
	tvar := m.CreateAlloca(i32)
	i := m.CreateAlloca(i32)
	m.CreateStore(m.GetInt32(0), i)
	m.CreateJump(cond)

	m.SetInsertPoint(cond)
	iv := m.CreateLoad(i, false)
	m.CreateBranch(m.CreateLess(iv, n), body, exit)

	m.SetInsertPoint(body)
	iv2 := m.CreateLoad(i, false)
	m.CreateStore(iv2, p)
	qv := m.CreateLoad(q, false)
	m.CreateStore(qv, tvar)
	iv3 := m.CreateLoad(i, false)
	m.CreateStore(m.CreateAdd(iv3, m.GetInt32(1)), i)
	m.CreateJump(cond)

	m.SetInsertPoint(exit)
	m.CreateReturn(nil)

	require.NoError(t, ssa.Verify(m))

	pm, _ := newTestManager(t, 2)
	m.RunPasses(pm)
	require.NoError(t, ssa.Verify(m))

	// the store through p poisons every pointer parameter: *q stays put
	assert.Same(t, body, qv.Parent())
}

// TestLICMNestedLoops lowers
//
//	void h(int n) {
//	    int s=0, x=2, y=3;
//	    for (int i = 0; i < n; i++)
//	        for (int j = 0; j < n; j++) s += x*y;
//	}
func TestLICMNestedLoops(t *testing.T) {
	m := ssa.NewModule()
	bt := m.Types.Builtins()
	i32 := bt.Int32

	fnType := m.Types.MakeFunc([]types.TypeID{i32}, bt.Void, false)
	fn := m.CreateFunction(ssa.LinkExternal, "h", fnType)
	n := m.CreateArgRef(fn, 0)

	entry := m.CreateBlock(fn, "entry")
	ocond := m.CreateBlock(fn, "ocond")
	obody := m.CreateBlock(fn, "obody")
	icond := m.CreateBlock(fn, "icond")
	ibody := m.CreateBlock(fn, "ibody")
	olatch := m.CreateBlock(fn, "olatch")
	exit := m.CreateBlock(fn, "exit")

	m.SetInsertPoint(entry)
	s := m.CreateAlloca(i32)
	x := m.CreateAlloca(i32)
	y := m.CreateAlloca(i32)
	i := m.CreateAlloca(i32)
	j := m.CreateAlloca(i32)
	m.CreateStore(m.GetInt32(0), s)
	m.CreateStore(m.GetInt32(2), x)
	m.CreateStore(m.GetInt32(3), y)
	m.CreateStore(m.GetInt32(0), i)
	m.CreateJump(ocond)

	m.SetInsertPoint(ocond)
	iv := m.CreateLoad(i, false)
	m.CreateBranch(m.CreateLess(iv, n), obody, exit)

	m.SetInsertPoint(obody)
	m.CreateStore(m.GetInt32(0), j)
	m.CreateJump(icond)

	m.SetInsertPoint(icond)
	jv := m.CreateLoad(j, false)
	m.CreateBranch(m.CreateLess(jv, n), ibody, olatch)

	m.SetInsertPoint(ibody)
	xv := m.CreateLoad(x, false)
	yv := m.CreateLoad(y, false)
	mul := m.CreateMul(xv, yv)
	sv := m.CreateLoad(s, false)
	m.CreateStore(m.CreateAdd(sv, mul), s)
	jv2 := m.CreateLoad(j, false)
	m.CreateStore(m.CreateAdd(jv2, m.GetInt32(1)), j)
	m.CreateJump(icond)

	m.SetInsertPoint(olatch)
	iv2 := m.CreateLoad(i, false)
	m.CreateStore(m.CreateAdd(iv2, m.GetInt32(1)), i)
	m.CreateJump(ocond)

	m.SetInsertPoint(exit)
	m.CreateReturn(nil)

	require.NoError(t, ssa.Verify(m))

	pm, _ := newTestManager(t, 2)
	m.RunPasses(pm)
	require.NoError(t, ssa.Verify(m))

	// the multiply escapes both loops: first into the inner pre-header,
	// then out through the outer one
	assert.Same(t, entry, mul.Parent())
	assert.Same(t, entry, xv.Parent())
	assert.Same(t, entry, yv.Parent())

	// the accumulation depends on a stored pointer and stays inside
	assert.Same(t, ibody, sv.Parent())
}

func TestLICMDisabledAtLowLevels(t *testing.T) {
	h := buildHoistModule(t)
	pm, _ := newTestManager(t, 1)
	h.mod.RunPasses(pm)
	assert.Same(t, h.body, h.mul.Parent(), "licm needs -O2")
}
