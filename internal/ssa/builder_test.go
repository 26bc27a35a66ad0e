package ssa

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"minic/internal/types"
)

func testFunc(m *Module, name string, params []types.TypeID, ret types.TypeID) (*Value, *Value) {
	fnType := m.Types.MakeFunc(params, ret, false)
	fn := m.CreateFunction(LinkExternal, name, fnType)
	entry := m.CreateBlock(fn, "entry")
	m.SetInsertPoint(entry)
	return fn, entry
}

func countKind(b *Value, kind ValueKind) int {
	n := 0
	for _, inst := range b.Insts {
		if inst.Kind == kind {
			n++
		}
	}
	return n
}

func TestSimpleArithmetic(t *testing.T) {
	m := NewModule()
	i32 := m.Types.Builtins().Int32
	fn, entry := testFunc(m, "f", []types.TypeID{i32, i32}, i32)

	a := m.CreateArgRef(fn, 0)
	b := m.CreateArgRef(fn, 1)
	mul := m.CreateMul(b, m.GetInt32(2))
	add := m.CreateAdd(a, mul)
	m.CreateReturn(add)

	require.Len(t, entry.Insts, 3)
	assert.Equal(t, KindBinary, entry.Insts[0].Kind)
	assert.Equal(t, OpMul, entry.Insts[0].Op)
	assert.Equal(t, KindBinary, entry.Insts[1].Kind)
	assert.Equal(t, OpAdd, entry.Insts[1].Op)
	assert.Equal(t, KindReturn, entry.Insts[2].Kind)
	assert.Same(t, mul, add.Operand(1))

	require.NoError(t, Verify(m))
}

func TestStoreInsertsImplicitCast(t *testing.T) {
	m := NewModule()
	bt := m.Types.Builtins()
	_, entry := testFunc(m, "f", nil, bt.Void)

	dst := m.CreateAlloca(bt.Int32)
	src := m.CreateAlloca(bt.Int8)
	loaded := m.CreateLoad(src, false)
	store := m.CreateStore(loaded, dst)

	// exactly one cast, sitting before the store
	require.Equal(t, 1, countKind(entry, KindCast))
	last := entry.Insts[len(entry.Insts)-1]
	assert.Same(t, store, last)
	cast := entry.Insts[len(entry.Insts)-2]
	assert.Equal(t, KindCast, cast.Kind)
	assert.Same(t, cast, store.Operand(0))
	assert.Same(t, loaded, cast.Operand(0))
	assert.Equal(t, bt.Int32, cast.Type())
}

func TestStoreIdenticalTypesNoCast(t *testing.T) {
	m := NewModule()
	bt := m.Types.Builtins()
	_, entry := testFunc(m, "f", nil, bt.Void)

	dst := m.CreateAlloca(bt.Int32)
	m.CreateStore(m.GetInt32(7), dst)
	assert.Equal(t, 0, countKind(entry, KindCast))
}

func TestStoreReAddressesLoadedValue(t *testing.T) {
	m := NewModule()
	bt := m.Types.Builtins()
	testFunc(m, "f", nil, bt.Void)

	p := m.CreateAlloca(bt.Int32)
	lv := m.CreateLoad(p, false)
	store := m.CreateStore(m.GetInt32(42), lv)

	// lv is not a pointer, so the store walks back to p
	assert.Same(t, p, store.Operand(1))
}

func TestCallCoercesArguments(t *testing.T) {
	m := NewModule()
	bt := m.Types.Builtins()

	calleeType := m.Types.MakeFunc([]types.TypeID{bt.Int32, bt.Int8}, bt.Void, false)
	callee := m.CreateFunction(LinkExternal, "g", calleeType)

	_, entry := testFunc(m, "f", nil, bt.Void)
	narrow := m.CreateAlloca(bt.Int8)
	a1 := m.CreateLoad(narrow, false)
	a2 := m.CreateLoad(narrow, false)
	call := m.CreateCall(callee, []*Value{a1, a2})

	// one cast for the widened first argument, none for the exact second
	require.Equal(t, 1, countKind(entry, KindCast))
	assert.Equal(t, KindCast, call.Operand(1).Kind)
	assert.Same(t, a2, call.Operand(2))
	assert.Equal(t, bt.Void, call.Type())
}

func TestCastIdentityReturnsInput(t *testing.T) {
	m := NewModule()
	bt := m.Types.Builtins()
	_, entry := testFunc(m, "f", nil, bt.Void)

	v := m.CreateAlloca(bt.Int32)
	loaded := m.CreateLoad(v, false)
	before := len(entry.Insts)
	out := m.CreateCast(loaded, bt.Int32)
	assert.Same(t, loaded, out)
	assert.Len(t, entry.Insts, before)
}

func TestLoadRef(t *testing.T) {
	m := NewModule()
	bt := m.Types.Builtins()
	testFunc(m, "f", nil, bt.Void)

	inner := m.Types.Intern(types.MakePointer(bt.Int32))
	cell := m.CreateAlloca(inner) // i32**
	out := m.CreateLoad(cell, true)

	// the ref load dereferences twice
	assert.Equal(t, bt.Int32, out.Type())
	assert.Equal(t, KindLoad, out.Operand(0).Kind)
}

func TestBranchAndPredecessors(t *testing.T) {
	m := NewModule()
	bt := m.Types.Builtins()
	fn, entry := testFunc(m, "f", []types.TypeID{bt.Int32}, bt.Void)

	thenB := m.CreateBlock(fn, "then")
	elseB := m.CreateBlock(fn, "else")

	cond := m.CreateArgRef(fn, 0)
	m.CreateBranch(cond, thenB, elseB)

	require.Len(t, thenB.Preds(), 1)
	assert.Same(t, entry, thenB.Preds()[0].Value())
	require.Len(t, elseB.Preds(), 1)
	assert.Same(t, entry, elseB.Preds()[0].Value())

	m.SetInsertPoint(thenB)
	m.CreateReturn(nil)
	m.SetInsertPoint(elseB)
	m.CreateReturn(nil)
	require.NoError(t, Verify(m))
}

func TestRelopSignSelection(t *testing.T) {
	m := NewModule()
	bt := m.Types.Builtins()
	testFunc(m, "f", nil, bt.Void)

	su := m.CreateAlloca(bt.UInt32)
	ss := m.CreateAlloca(bt.Int32)
	lu1 := m.CreateLoad(su, false)
	lu2 := m.CreateLoad(su, false)
	ls1 := m.CreateLoad(ss, false)
	ls2 := m.CreateLoad(ss, false)

	assert.Equal(t, OpULess, m.CreateLess(lu1, lu2).Op)
	assert.Equal(t, OpSLess, m.CreateLess(ls1, ls2).Op)
	assert.Equal(t, OpUDiv, m.CreateDiv(lu1, lu2).Op)
	assert.Equal(t, OpSDiv, m.CreateDiv(ls1, ls2).Op)
	assert.Equal(t, OpLShr, m.CreateShr(lu1, lu2).Op)
	assert.Equal(t, OpAShr, m.CreateShr(ls1, ls2).Op)

	// relational results are carried as i32
	assert.Equal(t, bt.Int32, m.CreateLess(lu1, lu2).Type())
}

func TestElemAccessAddressesAggregate(t *testing.T) {
	m := NewModule()
	bt := m.Types.Builtins()
	testFunc(m, "f", nil, bt.Void)

	arrType := m.Types.Intern(types.MakeArray(bt.Int32, 4))
	arr := m.CreateAlloca(arrType)
	acc := m.CreateElemAccess(arr, m.GetInt32(2), bt.Int32)

	assert.Equal(t, AccessElement, acc.Access)
	assert.True(t, m.Types.IsPointer(acc.Type()))
	elem, _ := m.Types.Deref(acc.Type())
	assert.Equal(t, bt.Int32, elem)
}

func TestGlobalVarTypes(t *testing.T) {
	m := NewModule()
	bt := m.Types.Builtins()

	g := m.CreateGlobalVar(LinkInternal, true, "g", bt.Int32, m.GetInt32(1))
	require.True(t, m.Types.IsPointer(g.Type()))
	elem, _ := m.Types.Deref(g.Type())
	assert.Equal(t, bt.Int32, elem)

	tt := m.Types.MustLookup(g.Type())
	assert.False(t, tt.Mutable)
}

func TestContractViolationPanics(t *testing.T) {
	m := NewModule()
	bt := m.Types.Builtins()
	testFunc(m, "f", nil, bt.Void)

	assert.Panics(t, func() { m.CreateAlloca(bt.Void) })

	ptr := m.CreateAlloca(bt.Int32)
	loaded := m.CreateLoad(ptr, false)
	assert.Panics(t, func() { m.CreateLoad(loaded, false) })
	assert.Panics(t, func() { m.CreateAdd(loaded, m.CreateLoad(ptr, true)) })
}

func TestVoidReturnContract(t *testing.T) {
	m := NewModule()
	bt := m.Types.Builtins()
	testFunc(m, "f", nil, bt.Void)
	assert.Panics(t, func() { m.CreateReturn(m.GetInt32(0)) })

	m2 := NewModule()
	bt2 := m2.Types.Builtins()
	testFunc(m2, "g", nil, bt2.Int32)
	assert.Panics(t, func() { m2.CreateReturn(nil) })
}
