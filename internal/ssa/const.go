package ssa

import "minic/internal/types"

// GetZero returns a zero-initializer constant for a basic, struct or
// array type.
func (m *Module) GetZero(ty types.TypeID) *Value {
	assertf(m.Types.IsBasic(ty) || m.Types.IsStruct(ty) || m.Types.IsArray(ty),
		"zero constant requires a basic, struct or array type")
	zero := &Value{Kind: KindConstZero}
	zero.SetTypes(ty)
	return zero
}

// GetInt returns an integer constant of the given integer or enum type.
func (m *Module) GetInt(value uint32, ty types.TypeID) *Value {
	assertf(m.Types.IsInteger(ty) || m.Types.IsEnum(ty),
		"integer constant requires an integer or enum type")
	c := &Value{Kind: KindConstInt, IntVal: value}
	c.SetTypes(ty)
	return c
}

// GetInt32 returns a signed 32-bit integer constant.
func (m *Module) GetInt32(value uint32) *Value {
	return m.GetInt(value, m.Types.Builtins().Int32)
}

// GetBool returns a boolean constant carried as i32.
func (m *Module) GetBool(value bool) *Value {
	if value {
		return m.GetInt32(1)
	}
	return m.GetInt32(0)
}

// GetString returns a string constant of the given character-pointer type.
func (m *Module) GetString(str string, ty types.TypeID) *Value {
	elem, ok := m.Types.Deref(ty)
	assertf(ok && m.Types.IsInteger(elem) && m.Types.SizeOf(elem) == 1,
		"string constant requires a byte-pointer type")
	c := &Value{Kind: KindConstStr, StrVal: str}
	c.SetTypes(ty)
	return c
}

// GetStruct returns a constant struct; every field must be a constant of
// the matching field type.
func (m *Module) GetStruct(elems []*Value, ty types.TypeID) *Value {
	length, ok := m.Types.Length(ty)
	assertf(m.Types.IsStruct(ty) && ok && int(length) == len(elems),
		"struct constant shape mismatch")
	structTy := m.Types.TrivialType(ty)
	for i, e := range elems {
		assertf(e.IsConst(), "struct constant field %d is not constant", i)
		fieldTy, _ := m.Types.Elem(structTy, i)
		assertf(m.Types.IsIdentical(fieldTy, e.Type()),
			"struct constant field %d type mismatch", i)
	}
	c := &Value{Kind: KindConstStruct}
	for _, e := range elems {
		c.AddOperand(e)
	}
	c.SetType(structTy)
	c.SetOrigType(ty)
	return c
}

// GetArray returns a constant array; every element must be a constant of
// the element type.
func (m *Module) GetArray(elems []*Value, ty types.TypeID) *Value {
	length, ok := m.Types.Length(ty)
	assertf(m.Types.IsArray(ty) && ok && int(length) == len(elems),
		"array constant shape mismatch")
	arrayTy := m.Types.TrivialType(ty)
	elemTy, _ := m.Types.Deref(arrayTy)
	for i, e := range elems {
		assertf(e.IsConst(), "array constant element %d is not constant", i)
		assertf(m.Types.IsIdentical(elemTy, e.Type()),
			"array constant element %d type mismatch", i)
	}
	c := &Value{Kind: KindConstArray}
	for _, e := range elems {
		c.AddOperand(e)
	}
	c.SetType(arrayTy)
	c.SetOrigType(ty)
	return c
}

// GetUndef returns an undefined value of the given type.
func (m *Module) GetUndef(ty types.TypeID) *Value {
	u := &Value{Kind: KindUndef}
	u.SetTypes(ty)
	return u
}
