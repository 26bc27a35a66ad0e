package ssa

import (
	"fmt"

	"minic/internal/types"
)

// ValueKind enumerates every node kind in the IR value graph.
type ValueKind uint8

const (
	KindInvalid ValueKind = iota
	// instructions
	KindLoad
	KindStore
	KindAlloca
	KindAccess
	KindBinary
	KindUnary
	KindCast
	KindCall
	KindBranch
	KindJump
	KindReturn
	KindPhi
	KindPhiOperand
	KindSelect
	// containers
	KindBlock
	KindFunction
	KindGlobalVar
	// leaves
	KindArgRef
	KindConstInt
	KindConstStr
	KindConstStruct
	KindConstArray
	KindConstZero
	KindUndef
)

// Linkage describes the visibility of a top-level symbol.
type Linkage uint8

const (
	LinkInternal Linkage = iota
	LinkInline
	LinkExternal
	LinkGlobalCtor
	LinkGlobalDtor
)

var linkNames = [...]string{
	"internal", "inline", "external", "global_ctor", "global_dtor",
}

func (l Linkage) String() string {
	if int(l) < len(linkNames) {
		return linkNames[l]
	}
	return fmt.Sprintf("Linkage(%d)", uint8(l))
}

// BinaryOp enumerates binary opcodes.
type BinaryOp uint8

const (
	OpAdd BinaryOp = iota
	OpSub
	OpMul
	OpUDiv
	OpSDiv
	OpURem
	OpSRem
	OpEqual
	OpNotEq
	OpULess
	OpSLess
	OpULessEq
	OpSLessEq
	OpUGreat
	OpSGreat
	OpUGreatEq
	OpSGreatEq
	OpAnd
	OpOr
	OpXor
	OpShl
	OpLShr
	OpAShr
)

var binOpNames = [...]string{
	"add", "sub", "mul", "udiv", "sdiv", "urem", "srem", "eq", "neq",
	"ult", "slt", "ule", "sle", "ugt", "sgt", "uge", "sge",
	"and", "or", "xor", "shl", "lshr", "ashr",
}

func (op BinaryOp) String() string {
	if int(op) < len(binOpNames) {
		return binOpNames[op]
	}
	return fmt.Sprintf("BinaryOp(%d)", uint8(op))
}

// UnaryOp enumerates unary opcodes.
type UnaryOp uint8

const (
	OpNeg UnaryOp = iota
	OpLogicNot
	OpNot
)

var unaOpNames = [...]string{"neg", "lnot", "not"}

func (op UnaryOp) String() string {
	if int(op) < len(unaOpNames) {
		return unaOpNames[op]
	}
	return fmt.Sprintf("UnaryOp(%d)", uint8(op))
}

// AccessKind distinguishes the two address-computation forms.
type AccessKind uint8

const (
	// AccessPointer offsets a pointer by index * sizeof(pointee).
	AccessPointer AccessKind = iota
	// AccessElement addresses an element of an aggregate.
	AccessElement
)

// Use is a directed edge from a user value to the value it consumes.
// Each value chains the uses that target it in an intrusive doubly-linked
// list so that operand rewriting stays O(1).
type Use struct {
	value *Value
	user  *Value
	prev  *Use
	next  *Use
}

// Value returns the value this edge points at.
func (u *Use) Value() *Value { return u.value }

// User returns the value that owns this edge.
func (u *Use) User() *Value { return u.user }

// Next returns the following use of the same value.
func (u *Use) Next() *Use { return u.next }

// SetValue retargets the edge, keeping both use-lists consistent.
func (u *Use) SetValue(v *Value) {
	if u.value == v {
		return
	}
	if u.value != nil {
		u.value.removeUse(u)
	}
	u.value = v
	if v != nil {
		v.addUse(u)
	}
}

// Value is a node of the SSA value graph. The kind tag selects which of
// the payload fields are meaningful; operands are uniform Use edges.
type Value struct {
	Kind ValueKind

	typ types.TypeID // primary type (post-coercion view)
	org types.TypeID // original type (carries reference/const)

	ops  []*Use
	uses *Use // head of the def-use list

	// payload, by kind
	Op     BinaryOp   // Binary
	UOp    UnaryOp    // Unary
	Access AccessKind // Access
	Link   Linkage    // Function, GlobalVar
	Name   string     // Function, GlobalVar, Block
	IntVal uint32     // ConstInt
	StrVal string     // ConstStr
	Index  int        // ArgRef
	Mut    bool       // GlobalVar is-variable flag

	parent *Value   // instruction -> block, block -> function
	Insts  []*Value // Block instruction sequence
}

// NewValue constructs a bare node of the given kind. It is exported for
// transform passes that build nodes without a module, tests and backends.
func NewValue(kind ValueKind) *Value {
	return &Value{Kind: kind}
}

// Type returns the primary type.
func (v *Value) Type() types.TypeID { return v.typ }

// OrigType returns the original (qualifier-carrying) type.
func (v *Value) OrigType() types.TypeID { return v.org }

// SetType sets the primary type only.
func (v *Value) SetType(t types.TypeID) { v.typ = t }

// SetOrigType sets the original type only.
func (v *Value) SetOrigType(t types.TypeID) { v.org = t }

// SetTypes sets both views to the same type.
func (v *Value) SetTypes(t types.TypeID) {
	v.typ = t
	v.org = t
}

// Parent returns the containing block of an instruction, or the containing
// function of a block.
func (v *Value) Parent() *Value { return v.parent }

// SetParent updates the weak parent back-link.
func (v *Value) SetParent(p *Value) { v.parent = p }

// NumOperands returns the operand count.
func (v *Value) NumOperands() int { return len(v.ops) }

// Operand returns the i-th operand value (nil for a vacant slot).
func (v *Value) Operand(i int) *Value {
	if u := v.ops[i]; u != nil {
		return u.value
	}
	return nil
}

// OperandUse returns the i-th operand edge.
func (v *Value) OperandUse(i int) *Use { return v.ops[i] }

// Operands returns the operand edges in order.
func (v *Value) Operands() []*Use { return v.ops }

// AddOperand appends a new operand edge targeting val.
func (v *Value) AddOperand(val *Value) {
	u := &Use{user: v}
	v.ops = append(v.ops, u)
	u.SetValue(val)
}

// SetOperand retargets the i-th operand edge.
func (v *Value) SetOperand(i int, val *Value) {
	v.ops[i].SetValue(val)
}

// RemoveOperand unlinks and drops the i-th operand edge.
func (v *Value) RemoveOperand(i int) {
	v.ops[i].SetValue(nil)
	v.ops = append(v.ops[:i], v.ops[i+1:]...)
}

// ClearOperands unlinks every operand edge.
func (v *Value) ClearOperands() {
	for _, u := range v.ops {
		u.SetValue(nil)
	}
	v.ops = v.ops[:0]
}

func (v *Value) addUse(u *Use) {
	u.prev = nil
	u.next = v.uses
	if v.uses != nil {
		v.uses.prev = u
	}
	v.uses = u
}

func (v *Value) removeUse(u *Use) {
	if u.prev != nil {
		u.prev.next = u.next
	} else {
		v.uses = u.next
	}
	if u.next != nil {
		u.next.prev = u.prev
	}
	u.prev = nil
	u.next = nil
}

// Uses returns the head of the def-use list; iterate with Next.
func (v *Value) Uses() *Use { return v.uses }

// HasUses reports whether any use edge targets v.
func (v *Value) HasUses() bool { return v.uses != nil }

// NumUses counts the use edges targeting v.
func (v *Value) NumUses() int {
	n := 0
	for u := v.uses; u != nil; u = u.next {
		n++
	}
	return n
}

// ReplaceAllUsesWith retargets every use of v to nv.
func (v *Value) ReplaceAllUsesWith(nv *Value) {
	if v == nv {
		return
	}
	for v.uses != nil {
		v.uses.SetValue(nv)
	}
}

// IsConst reports whether v is a compile-time constant. A cast of a
// constant is itself constant (it is materialized outside any block).
func (v *Value) IsConst() bool {
	switch v.Kind {
	case KindConstInt, KindConstStr, KindConstStruct, KindConstArray, KindConstZero:
		return true
	case KindCast:
		return v.parent == nil && v.Operand(0).IsConst()
	}
	return false
}

// IsUndef reports whether v is the undefined value.
func (v *Value) IsUndef() bool { return v.Kind == KindUndef }

// IsInstruction reports whether v lives in a block's instruction list.
func (v *Value) IsInstruction() bool {
	switch v.Kind {
	case KindLoad, KindStore, KindAlloca, KindAccess, KindBinary, KindUnary,
		KindCast, KindCall, KindBranch, KindJump, KindReturn,
		KindPhi, KindPhiOperand, KindSelect:
		return true
	}
	return false
}

// IsTerminator reports whether v ends a block.
func (v *Value) IsTerminator() bool {
	switch v.Kind {
	case KindJump, KindBranch, KindReturn:
		return true
	}
	return false
}

// Addr returns the address this value was loaded from, when it has one.
// Only loads expose an address; the builder relies on this to re-address
// reference-typed locals.
func (v *Value) Addr() *Value {
	if v.Kind == KindLoad {
		return v.Operand(0)
	}
	return nil
}

// Block helpers --------------------------------------------------------------

// AppendInst appends an instruction to block b and sets its parent link.
func (b *Value) AppendInst(inst *Value) {
	inst.parent = b
	b.Insts = append(b.Insts, inst)
}

// InsertBeforeTerm inserts instructions immediately before b's terminator.
func (b *Value) InsertBeforeTerm(insts ...*Value) {
	if len(insts) == 0 {
		return
	}
	for _, inst := range insts {
		inst.parent = b
	}
	n := len(b.Insts)
	pos := n
	if n > 0 && b.Insts[n-1].IsTerminator() {
		pos = n - 1
	}
	out := make([]*Value, 0, n+len(insts))
	out = append(out, b.Insts[:pos]...)
	out = append(out, insts...)
	out = append(out, b.Insts[pos:]...)
	b.Insts = out
}

// RemoveInst removes an instruction from b's sequence. The instruction's
// operand edges stay intact; callers moving it elsewhere re-parent it.
func (b *Value) RemoveInst(inst *Value) bool {
	for i, cur := range b.Insts {
		if cur == inst {
			b.Insts = append(b.Insts[:i], b.Insts[i+1:]...)
			return true
		}
	}
	return false
}

// Terminator returns the trailing terminator of b, or nil.
func (b *Value) Terminator() *Value {
	if len(b.Insts) == 0 {
		return nil
	}
	if last := b.Insts[len(b.Insts)-1]; last.IsTerminator() {
		return last
	}
	return nil
}

// Preds iterates block b's predecessor blocks in operand order.
func (b *Value) Preds() []*Use { return b.ops }

// Succs returns block b's successor blocks, taken from its terminator.
func (b *Value) Succs() []*Value {
	term := b.Terminator()
	if term == nil {
		return nil
	}
	switch term.Kind {
	case KindJump:
		return []*Value{term.Operand(0)}
	case KindBranch:
		return []*Value{term.Operand(1), term.Operand(2)}
	}
	return nil
}

// Function helpers -----------------------------------------------------------

// IsDecl reports whether function f has no body.
func (f *Value) IsDecl() bool {
	return f.Kind == KindFunction && len(f.ops) == 0
}

// Blocks returns function f's block edges in order.
func (f *Value) Blocks() []*Use { return f.ops }

// Entry returns the entry block of f, or nil for a declaration.
func (f *Value) Entry() *Value {
	if len(f.ops) == 0 {
		return nil
	}
	return f.ops[0].value
}

// assertf panics when a builder or transform contract is violated.
// Malformed IR is an implementation bug, never a recoverable condition.
func assertf(cond bool, format string, args ...any) {
	if !cond {
		panic(fmt.Sprintf("ssa: "+format, args...))
	}
}
