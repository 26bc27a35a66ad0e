package ssa

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"minic/internal/diag"
)

func TestEnterGlobalCtorRestoresInsertPoint(t *testing.T) {
	m := NewModule()
	bt := m.Types.Builtins()
	_, entry := testFunc(m, "f", nil, bt.Void)

	leave := m.EnterGlobalCtor()
	assert.NotSame(t, entry, m.InsertPoint())
	leave()
	assert.Same(t, entry, m.InsertPoint())

	// re-entering reuses the same constructor
	ctor := m.Funcs()[len(m.Funcs())-1]
	leave = m.EnterGlobalCtor()
	leave()
	assert.Same(t, ctor, m.Funcs()[len(m.Funcs())-1])
	assert.Equal(t, CtorName, ctor.Name)
	assert.Equal(t, LinkGlobalCtor, ctor.Link)
}

func TestSealGlobalCtorIdempotent(t *testing.T) {
	m := NewModule()
	i32 := m.Types.Builtins().Int32
	g := m.CreateGlobalVar(LinkExternal, true, "g", i32, nil)

	leave := m.EnterGlobalCtor()
	m.CreateStore(m.GetInt32(1), g)
	leave()

	m.SealGlobalCtor()
	m.SealGlobalCtor()

	ctor := m.Funcs()[0]
	entry := ctor.Blocks()[0].Value()
	jumps := 0
	for _, inst := range entry.Insts {
		if inst.Kind == KindJump {
			jumps++
		}
	}
	assert.Equal(t, 1, jumps, "sealing twice must not add a second jump")
	require.NoError(t, Verify(m))
}

func TestReporterStack(t *testing.T) {
	m := NewModule()

	bag := diag.NewBag(8)
	release := m.SetContext(diag.BagReporter{Bag: bag})
	inner := diag.NewBag(8)
	releaseInner := m.SetContext(diag.BagReporter{Bag: inner})

	m.Reporter().Report(diag.CodeLowering, diag.SevError, "f", "inner scope")
	releaseInner()
	m.Reporter().Report(diag.CodeLowering, diag.SevWarning, "f", "outer scope")
	release()

	assert.Equal(t, 1, inner.Len())
	assert.Equal(t, 1, bag.Len())
	assert.True(t, inner.HasErrors())
	assert.False(t, bag.HasErrors())

	// empty stack falls back to a nop reporter
	m.Reporter().Report(diag.CodeLowering, diag.SevError, "f", "dropped")
	assert.Equal(t, 1, bag.Len())
}
