package ssa

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUseListLinking(t *testing.T) {
	m := NewModule()
	a := m.GetInt32(1)
	b := m.GetInt32(2)

	u1 := NewValue(KindBinary)
	u1.AddOperand(a)
	u1.AddOperand(b)
	u2 := NewValue(KindUnary)
	u2.AddOperand(a)

	assert.Equal(t, 2, a.NumUses())
	assert.Equal(t, 1, b.NumUses())

	// every use in a's list belongs to a
	for u := a.Uses(); u != nil; u = u.Next() {
		assert.Same(t, a, u.Value())
	}

	u1.SetOperand(0, b)
	assert.Equal(t, 1, a.NumUses())
	assert.Equal(t, 2, b.NumUses())

	u2.ClearOperands()
	assert.Equal(t, 0, a.NumUses())
	assert.False(t, a.HasUses())
}

func TestReplaceAllUsesWith(t *testing.T) {
	m := NewModule()
	old := m.GetInt32(10)
	nv := m.GetInt32(20)

	users := make([]*Value, 3)
	for i := range users {
		users[i] = NewValue(KindBinary)
		users[i].AddOperand(old)
		users[i].AddOperand(old)
	}
	require.Equal(t, 6, old.NumUses())

	old.ReplaceAllUsesWith(nv)

	assert.False(t, old.HasUses())
	assert.Equal(t, 6, nv.NumUses())
	for _, u := range users {
		assert.Same(t, nv, u.Operand(0))
		assert.Same(t, nv, u.Operand(1))
	}

	// replacing with itself is a no-op
	nv.ReplaceAllUsesWith(nv)
	assert.Equal(t, 6, nv.NumUses())
}

func TestInsertBeforeTerm(t *testing.T) {
	m := NewModule()
	i32 := m.Types.Builtins().Int32
	fnType := m.Types.MakeFunc(nil, m.Types.Builtins().Void, false)
	fn := m.CreateFunction(LinkInternal, "f", fnType)
	b := m.CreateBlock(fn, "entry")

	m.SetInsertPoint(b)
	m.CreateReturn(nil)

	one := m.GetInt32(1)
	extra := NewValue(KindBinary)
	extra.AddOperand(one)
	extra.AddOperand(one)
	extra.SetTypes(i32)
	b.InsertBeforeTerm(extra)

	require.Len(t, b.Insts, 2)
	assert.Same(t, extra, b.Insts[0])
	assert.Equal(t, KindReturn, b.Insts[1].Kind)
	assert.Same(t, b, extra.Parent())
}

func TestConstCastIsConst(t *testing.T) {
	m := NewModule()
	bt := m.Types.Builtins()

	c := m.GetInt(200, bt.Int8)
	cast := m.CreateCast(c, bt.Int32)
	require.Equal(t, KindCast, cast.Kind)
	assert.True(t, cast.IsConst())
	assert.Nil(t, cast.Parent())
}
