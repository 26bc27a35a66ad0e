package ssa

import "minic/internal/types"

// addInst creates an instruction of the given kind with the given operands
// and appends it at the insert point.
func (m *Module) addInst(kind ValueKind, operands ...*Value) *Value {
	assertf(m.insertPoint != nil, "no insert point for %d", kind)
	v := &Value{Kind: kind}
	for _, op := range operands {
		v.AddOperand(op)
	}
	m.insertPoint.AppendInst(v)
	return v
}

// CreateFunction appends a new function to the module.
func (m *Module) CreateFunction(link Linkage, name string, ty types.TypeID) *Value {
	assertf(m.Types.IsFunction(ty), "function type expected for %q", name)
	f := &Value{Kind: KindFunction, Link: link, Name: name}
	f.SetTypes(ty)
	m.funcs = append(m.funcs, f)
	return f
}

// CreateBlock appends a new block to parent. The insert point is left
// untouched.
func (m *Module) CreateBlock(parent *Value, name string) *Value {
	assertf(parent != nil && m.Types.IsFunction(parent.Type()),
		"block parent must be a function")
	b := &Value{Kind: KindBlock, Name: name}
	b.SetParent(parent)
	parent.AddOperand(b)
	return b
}

// CreateArgRef materializes a reference to parameter index of fn.
func (m *Module) CreateArgRef(fn *Value, index int) *Value {
	params, ok := m.Types.Params(fn.Type())
	assertf(ok && index < len(params), "argument index %d out of range", index)
	a := &Value{Kind: KindArgRef, Index: index}
	a.AddOperand(fn)
	a.SetTypes(params[index])
	return a
}

// CreateAlloca reserves stack storage for one value of the given type.
func (m *Module) CreateAlloca(ty types.TypeID) *Value {
	assertf(!m.Types.IsVoid(ty), "cannot allocate void")
	alloca := m.addInst(KindAlloca)
	alloca.SetTypes(m.Types.Intern(types.MakePointer(ty)))
	return alloca
}

// CreateLoad reads through ptr. With isRef the loaded value is itself a
// reference materialized as a pointer, so it is loaded once more; when the
// first load does not yield a pointer, the second load panics as a
// contract violation.
func (m *Module) CreateLoad(ptr *Value, isRef bool) *Value {
	assertf(m.Types.IsPointer(ptr.Type()), "load requires a pointer operand")
	load := m.addInst(KindLoad, ptr)
	elem, _ := m.Types.Deref(ptr.Type())
	load.SetType(elem)
	if orgElem, ok := m.Types.Deref(ptr.OrigType()); ok {
		load.SetOrigType(orgElem)
	} else {
		load.SetOrigType(elem)
	}
	if isRef {
		return m.CreateLoad(load, false)
	}
	return load
}

// CreateStore writes value through pointer, re-addressing reference-typed
// locals and inserting an implicit cast when the pointee accepts but does
// not equal the value's type.
func (m *Module) CreateStore(value, pointer *Value) *Value {
	ptr, val := pointer, value
	for {
		elem, ok := m.Types.Deref(ptr.Type())
		if ok && m.Types.CanAccept(elem, val.Type()) {
			break
		}
		ptr = ptr.Addr()
		assertf(ptr != nil, "store target cannot accept value")
	}
	target, _ := m.Types.Deref(ptr.Type())
	if !m.Types.IsIdentical(val.Type(), target) {
		val = m.CreateCast(val, target)
	}
	store := m.addInst(KindStore, val, ptr)
	store.SetTypes(types.NoTypeID)
	return store
}

// CreateInit stores an initializer; reference initializers bind to the
// address of the value instead of its contents.
func (m *Module) CreateInit(value, pointer *Value, isRef bool) *Value {
	val := value
	if isRef {
		val = val.Addr()
		assertf(val != nil, "reference initializer has no address")
	}
	return m.CreateStore(val, pointer)
}

// CreateJump ends the current block with an unconditional jump and records
// it as a predecessor of target.
func (m *Module) CreateJump(target *Value) *Value {
	assertf(target != nil && target.Kind == KindBlock, "jump target must be a block")
	jump := m.addInst(KindJump, target)
	jump.SetTypes(types.NoTypeID)
	target.AddOperand(m.insertPoint)
	return jump
}

// CreateBranch ends the current block with a conditional branch and records
// it as a predecessor of both successors.
func (m *Module) CreateBranch(cond, trueBlock, falseBlock *Value) *Value {
	assertf(m.Types.IsInteger(cond.Type()), "branch condition must be integer")
	branch := m.addInst(KindBranch, cond, trueBlock, falseBlock)
	branch.SetTypes(types.NoTypeID)
	trueBlock.AddOperand(m.insertPoint)
	falseBlock.AddOperand(m.insertPoint)
	return branch
}

// CreateReturn ends the current block. value must be nil exactly when the
// enclosing function returns void.
func (m *Module) CreateReturn(value *Value) *Value {
	fn := m.insertPoint.Parent()
	retType, ok := m.Types.Result(fn.OrigType())
	assertf(ok, "return outside a function body")
	if m.Types.IsVoid(retType) {
		assertf(value == nil, "void function cannot return a value")
	} else {
		assertf(value != nil &&
			m.Types.IsIdentical(m.Types.TrivialType(retType), value.Type()),
			"return value type mismatch")
	}
	ret := m.addInst(KindReturn, value)
	ret.SetTypes(types.NoTypeID)
	return ret
}

// CreateCall invokes callee. Each argument is coerced to the trivialized
// parameter type with an implicit cast when necessary.
func (m *Module) CreateCall(callee *Value, args []*Value) *Value {
	assertf(m.Types.IsFunction(callee.Type()), "call target must be a function")
	params, _ := m.Types.Params(callee.OrigType())
	assertf(len(params) == len(args), "call arity mismatch: want %d, got %d",
		len(params), len(args))
	casted := make([]*Value, 0, len(args)+1)
	casted = append(casted, callee)
	for i, param := range params {
		arg := args[i]
		argTy := m.Types.TrivialType(param)
		if !m.Types.IsIdentical(arg.Type(), argTy) {
			arg = m.CreateCast(arg, argTy)
		}
		casted = append(casted, arg)
	}
	call := m.addInst(KindCall, casted...)
	retType, _ := m.Types.Result(callee.OrigType())
	call.SetTypes(retType)
	return call
}

// CreatePtrAccess offsets ptr by index elements of its pointee.
func (m *Module) CreatePtrAccess(ptr, index *Value) *Value {
	assertf(m.Types.IsPointer(ptr.Type()) && m.Types.IsInteger(index.Type()),
		"pointer access requires pointer and integer operands")
	access := m.addInst(KindAccess, ptr, index)
	access.Access = AccessPointer
	access.SetType(ptr.Type())
	access.SetOrigType(ptr.OrigType())
	return access
}

// CreateElemAccess addresses element index of an aggregate, yielding a
// pointer to elemType. A non-pointer aggregate is addressed first.
func (m *Module) CreateElemAccess(ptr, index *Value, elemType types.TypeID) *Value {
	pointer := ptr
	if !m.Types.IsPointer(pointer.Type()) {
		pointer = pointer.Addr()
		assertf(pointer != nil, "element access target has no address")
	}
	pointee, _ := m.Types.Deref(pointer.Type())
	_, hasLen := m.Types.Length(pointee)
	assertf(hasLen && m.Types.IsInteger(index.Type()),
		"element access requires an aggregate pointee and integer index")
	access := m.addInst(KindAccess, pointer, index)
	access.Access = AccessElement
	access.SetTypes(m.Types.Intern(types.MakePointer(elemType)))
	return access
}

// CreateBinary is the low-level binary factory; both operands must already
// have the same type.
func (m *Module) CreateBinary(op BinaryOp, lhs, rhs *Value, ty types.TypeID) *Value {
	assertf(m.Types.IsIdentical(lhs.Type(), rhs.Type()),
		"binary operand type mismatch")
	binary := m.addInst(KindBinary, lhs, rhs)
	binary.Op = op
	binary.SetTypes(ty)
	return binary
}

// CreateUnary is the low-level unary factory.
func (m *Module) CreateUnary(op UnaryOp, opr *Value, ty types.TypeID) *Value {
	unary := m.addInst(KindUnary, opr)
	unary.UOp = op
	unary.SetTypes(ty)
	return unary
}

// CreateSelect picks between two same-typed values on an integer condition.
func (m *Module) CreateSelect(cond, trueVal, falseVal *Value) *Value {
	assertf(m.Types.IsInteger(cond.Type()), "select condition must be integer")
	assertf(m.Types.IsIdentical(trueVal.Type(), falseVal.Type()),
		"select arm type mismatch")
	sel := m.addInst(KindSelect, cond, trueVal, falseVal)
	sel.SetTypes(trueVal.Type())
	return sel
}

func (m *Module) boolType() types.TypeID {
	return m.Types.Builtins().Int32
}

func (m *Module) createArith(op BinaryOp, lhs, rhs *Value) *Value {
	ty := lhs.Type()
	assertf(m.Types.IsInteger(ty), "%s requires integer operands", op)
	return m.CreateBinary(op, lhs, rhs, ty)
}

func (m *Module) createRelop(signedOp, unsignedOp BinaryOp, lhs, rhs *Value) *Value {
	ty := lhs.Type()
	assertf(m.Types.IsInteger(ty) || m.Types.IsPointer(ty),
		"relational operands must be integer or pointer")
	op := signedOp
	if m.Types.IsUnsigned(ty) || m.Types.IsPointer(ty) {
		op = unsignedOp
	}
	return m.CreateBinary(op, lhs, rhs, m.boolType())
}

// CreateAdd builds an integer addition.
func (m *Module) CreateAdd(lhs, rhs *Value) *Value { return m.createArith(OpAdd, lhs, rhs) }

// CreateSub builds an integer subtraction.
func (m *Module) CreateSub(lhs, rhs *Value) *Value { return m.createArith(OpSub, lhs, rhs) }

// CreateMul builds an integer multiplication.
func (m *Module) CreateMul(lhs, rhs *Value) *Value { return m.createArith(OpMul, lhs, rhs) }

// CreateDiv builds a division, signed or unsigned after the left operand.
func (m *Module) CreateDiv(lhs, rhs *Value) *Value {
	ty := lhs.Type()
	assertf(m.Types.IsInteger(ty), "div requires integer operands")
	op := OpSDiv
	if m.Types.IsUnsigned(ty) {
		op = OpUDiv
	}
	return m.CreateBinary(op, lhs, rhs, ty)
}

// CreateRem builds a remainder, signed or unsigned after the left operand.
func (m *Module) CreateRem(lhs, rhs *Value) *Value {
	ty := lhs.Type()
	assertf(m.Types.IsInteger(ty), "rem requires integer operands")
	op := OpSRem
	if m.Types.IsUnsigned(ty) {
		op = OpURem
	}
	return m.CreateBinary(op, lhs, rhs, ty)
}

// CreateEqual compares two integers, pointers or functions for equality.
func (m *Module) CreateEqual(lhs, rhs *Value) *Value {
	ty := lhs.Type()
	assertf(m.Types.IsInteger(ty) || m.Types.IsFunction(ty) || m.Types.IsPointer(ty),
		"eq operands must be integer, function or pointer")
	return m.CreateBinary(OpEqual, lhs, rhs, m.boolType())
}

// CreateNotEq compares two integers, pointers or functions for inequality.
func (m *Module) CreateNotEq(lhs, rhs *Value) *Value {
	ty := lhs.Type()
	assertf(m.Types.IsInteger(ty) || m.Types.IsFunction(ty) || m.Types.IsPointer(ty),
		"neq operands must be integer, function or pointer")
	return m.CreateBinary(OpNotEq, lhs, rhs, m.boolType())
}

// CreateLess builds a less-than comparison.
func (m *Module) CreateLess(lhs, rhs *Value) *Value {
	return m.createRelop(OpSLess, OpULess, lhs, rhs)
}

// CreateLessEq builds a less-or-equal comparison.
func (m *Module) CreateLessEq(lhs, rhs *Value) *Value {
	return m.createRelop(OpSLessEq, OpULessEq, lhs, rhs)
}

// CreateGreat builds a greater-than comparison.
func (m *Module) CreateGreat(lhs, rhs *Value) *Value {
	return m.createRelop(OpSGreat, OpUGreat, lhs, rhs)
}

// CreateGreatEq builds a greater-or-equal comparison.
func (m *Module) CreateGreatEq(lhs, rhs *Value) *Value {
	return m.createRelop(OpSGreatEq, OpUGreatEq, lhs, rhs)
}

// CreateAnd builds a bitwise and.
func (m *Module) CreateAnd(lhs, rhs *Value) *Value { return m.createArith(OpAnd, lhs, rhs) }

// CreateOr builds a bitwise or.
func (m *Module) CreateOr(lhs, rhs *Value) *Value { return m.createArith(OpOr, lhs, rhs) }

// CreateXor builds a bitwise xor.
func (m *Module) CreateXor(lhs, rhs *Value) *Value { return m.createArith(OpXor, lhs, rhs) }

// CreateShl builds a left shift.
func (m *Module) CreateShl(lhs, rhs *Value) *Value { return m.createArith(OpShl, lhs, rhs) }

// CreateShr builds a right shift, arithmetic for signed left operands.
func (m *Module) CreateShr(lhs, rhs *Value) *Value {
	ty := lhs.Type()
	assertf(m.Types.IsInteger(ty), "shr requires integer operands")
	op := OpAShr
	if m.Types.IsUnsigned(ty) {
		op = OpLShr
	}
	return m.CreateBinary(op, lhs, rhs, ty)
}

// CreateNeg builds an integer negation.
func (m *Module) CreateNeg(opr *Value) *Value {
	ty := opr.Type()
	assertf(m.Types.IsInteger(ty), "neg requires an integer operand")
	return m.CreateUnary(OpNeg, opr, ty)
}

// CreateNot builds a bitwise complement.
func (m *Module) CreateNot(opr *Value) *Value {
	ty := opr.Type()
	assertf(m.Types.IsInteger(ty), "not requires an integer operand")
	return m.CreateUnary(OpNot, opr, ty)
}

// CreateLogicNot builds a logical negation carried as i32.
func (m *Module) CreateLogicNot(opr *Value) *Value {
	assertf(m.Types.IsInteger(opr.Type()), "lnot requires an integer operand")
	return m.CreateUnary(OpLogicNot, opr, m.boolType())
}

// CreateCast converts opr to the trivialized target type. An identical
// source is returned unchanged; array operands are addressed first; a
// constant operand yields a constant cast node that is not inserted into
// any block.
func (m *Module) CreateCast(opr *Value, ty types.TypeID) *Value {
	target := m.Types.TrivialType(ty)
	assertf(m.Types.CanCastTo(opr.Type(), target), "invalid cast")
	if m.Types.IsIdentical(opr.Type(), target) {
		return opr
	}
	operand := opr
	if m.Types.IsArray(operand.Type()) {
		operand = operand.Addr()
		assertf(operand != nil, "array cast operand has no address")
	}
	var cast *Value
	if operand.IsConst() {
		cast = &Value{Kind: KindCast}
		cast.AddOperand(operand)
	} else {
		cast = m.addInst(KindCast, operand)
	}
	cast.SetType(target)
	cast.SetOrigType(ty)
	return cast
}

// CreateGlobalVar appends a global variable. init, when present, must be a
// constant of the trivialized type.
func (m *Module) CreateGlobalVar(link Linkage, isVar bool, name string,
	ty types.TypeID, init *Value) *Value {
	assertf(!m.Types.IsVoid(ty), "global variable cannot be void")
	varType := m.Types.TrivialType(ty)
	assertf(init == nil || m.Types.IsIdentical(varType, init.Type()),
		"global initializer type mismatch for %q", name)
	assertf(init == nil || init.IsConst(),
		"global initializer must be constant for %q", name)
	g := &Value{Kind: KindGlobalVar, Link: link, Mut: isVar, Name: name}
	g.AddOperand(init)
	g.SetType(m.Types.Intern(types.MakePointerTo(varType, false)))
	g.SetOrigType(m.Types.Intern(types.MakePointer(ty)))
	m.vars = append(m.vars, g)
	return g
}

// NewPhi constructs an empty phi of the given type, inserted at the head
// of block b. Phi operands are attached with AddPhiOperand. Package-level
// because transform passes build phis without a module at hand.
func NewPhi(ty types.TypeID, b *Value) *Value {
	phi := &Value{Kind: KindPhi}
	phi.SetTypes(ty)
	phi.SetParent(b)
	b.Insts = append([]*Value{phi}, b.Insts...)
	return phi
}

// AddPhiOperand attaches an incoming (value, block) pair to phi.
func AddPhiOperand(phi, value, block *Value) *Value {
	assertf(phi.Kind == KindPhi, "phi expected")
	assertf(block.Kind == KindBlock, "phi operand block expected")
	opr := &Value{Kind: KindPhiOperand}
	opr.AddOperand(value)
	opr.AddOperand(block)
	opr.SetTypes(value.Type())
	opr.SetParent(phi.Parent())
	phi.AddOperand(opr)
	return opr
}
