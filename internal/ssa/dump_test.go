package ssa

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"minic/internal/types"
)

func dumpToString(t *testing.T, m *Module) string {
	t.Helper()
	var sb strings.Builder
	require.NoError(t, m.Dump(&sb))
	return sb.String()
}

func TestDumpSimpleArithmetic(t *testing.T) {
	m := NewModule()
	i32 := m.Types.Builtins().Int32
	fnType := m.Types.MakeFunc([]types.TypeID{i32, i32}, i32, false)
	fn := m.CreateFunction(LinkExternal, "f", fnType)
	entry := m.CreateBlock(fn, "")
	m.SetInsertPoint(entry)

	a := m.CreateArgRef(fn, 0)
	b := m.CreateArgRef(fn, 1)
	mul := m.CreateMul(b, m.GetInt32(2))
	m.CreateReturn(m.CreateAdd(a, mul))

	out := dumpToString(t, m)
	assert.Contains(t, out, "define external i32(i32, i32) @f {")
	assert.Contains(t, out, "  %1 = mul i32 arg 1, constant i32 2\n")
	assert.Contains(t, out, "  %2 = add i32 arg 0, %1\n")
	assert.Contains(t, out, "  ret i32 %2\n")
}

func TestDumpGlobalCtorSealing(t *testing.T) {
	m := NewModule()
	i32 := m.Types.Builtins().Int32

	g1 := m.CreateGlobalVar(LinkExternal, true, "g1", i32, nil)
	g2 := m.CreateGlobalVar(LinkExternal, true, "g2", i32, nil)

	leave := m.EnterGlobalCtor()
	m.CreateStore(m.GetInt32(11), g1)
	leave()
	leave = m.EnterGlobalCtor()
	m.CreateStore(m.GetInt32(22), g2)
	leave()

	first := dumpToString(t, m)
	second := dumpToString(t, m)
	assert.Equal(t, first, second, "sealing must be idempotent")

	assert.Contains(t, first, "define global_ctor void(...) @_$ctor {")
	assert.Contains(t, first, "%entry:\n")
	assert.Contains(t, first, "  jump %exit\n")
	assert.Contains(t, first, "%exit: ; preds: %entry\n")
	assert.Contains(t, first, "  ret void\n")

	// both stores sit in the entry block, before the sealing jump
	entryPart := first[strings.Index(first, "%entry:"):strings.Index(first, "%exit:")]
	assert.Contains(t, entryPart, "store i32 constant i32 11, i32* @g1")
	assert.Contains(t, entryPart, "store i32 constant i32 22, i32* @g2")
	jumpAt := strings.Index(entryPart, "jump %exit")
	storeAt := strings.LastIndex(entryPart, "store ")
	assert.Less(t, storeAt, jumpAt, "stores must precede the sealing jump")
}

func TestDumpDeclaration(t *testing.T) {
	m := NewModule()
	bt := m.Types.Builtins()
	fnType := m.Types.MakeFunc([]types.TypeID{bt.Int32}, bt.Void, false)
	m.CreateFunction(LinkExternal, "putint", fnType)

	out := dumpToString(t, m)
	assert.Contains(t, out, "declare external void(i32) @putint\n")
	assert.NotContains(t, out, "{")
}

func TestDumpGlobalVar(t *testing.T) {
	m := NewModule()
	i32 := m.Types.Builtins().Int32

	m.CreateGlobalVar(LinkInternal, true, "counter", i32, m.GetInt32(5))
	ct := m.Types.WithQual(i32, true, false)
	m.CreateGlobalVar(LinkExternal, false, "limit", ct, m.GetInt32(100))

	out := dumpToString(t, m)
	assert.Contains(t, out, "@counter = internal global var i32*, constant i32 5\n")
	assert.Contains(t, out, "@limit = external global const i32*, constant i32 100\n")
}

func TestDumpBranchAndPreds(t *testing.T) {
	m := NewModule()
	bt := m.Types.Builtins()
	fnType := m.Types.MakeFunc([]types.TypeID{bt.Int32}, bt.Int32, false)
	fn := m.CreateFunction(LinkExternal, "pick", fnType)
	entry := m.CreateBlock(fn, "entry")
	thenB := m.CreateBlock(fn, "then")
	elseB := m.CreateBlock(fn, "else")

	m.SetInsertPoint(entry)
	cond := m.CreateArgRef(fn, 0)
	m.CreateBranch(cond, thenB, elseB)
	m.SetInsertPoint(thenB)
	m.CreateReturn(m.GetInt32(1))
	m.SetInsertPoint(elseB)
	m.CreateReturn(m.GetInt32(0))

	out := dumpToString(t, m)
	assert.Contains(t, out, "  br arg 0, %then, %else\n")
	assert.Contains(t, out, "%then: ; preds: %entry\n")
	assert.Contains(t, out, "%else: ; preds: %entry\n")
	assert.Contains(t, out, "  ret i32 constant i32 1\n")
}

func TestDumpStringEscapes(t *testing.T) {
	m := NewModule()
	bt := m.Types.Builtins()
	strType := m.Types.Intern(types.MakePointer(bt.Int8))

	s := m.GetString("hi\n\"x\"", strType)
	m.CreateGlobalVar(LinkInternal, false, "msg", strType, s)

	out := dumpToString(t, m)
	assert.Contains(t, out, `constant i8* "hi\n\"x\""`)
}
