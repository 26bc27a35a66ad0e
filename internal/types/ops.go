package types

import (
	"fmt"
	"strings"
)

// Target data layout: 32-bit machine, 4-byte pointers and words.
const (
	pointerSize = 4
	wordAlign   = 4
)

// IsVoid reports whether id is the void type.
func (in *Interner) IsVoid(id TypeID) bool {
	tt, ok := in.Lookup(id)
	return ok && tt.Kind == KindVoid
}

// IsInteger reports whether id is an integer type (bool included, it is
// carried as an integer in the IR).
func (in *Interner) IsInteger(id TypeID) bool {
	tt, ok := in.Lookup(id)
	if !ok {
		return false
	}
	switch tt.Kind {
	case KindInt8, KindInt32, KindBool:
		return true
	}
	return false
}

// IsUnsigned reports whether id is an unsigned integer type.
func (in *Interner) IsUnsigned(id TypeID) bool {
	tt, ok := in.Lookup(id)
	if !ok {
		return false
	}
	switch tt.Kind {
	case KindInt8, KindInt32:
		return !tt.Signed
	case KindBool:
		return true
	}
	return false
}

// IsPointer reports whether id is a pointer type.
func (in *Interner) IsPointer(id TypeID) bool {
	tt, ok := in.Lookup(id)
	return ok && tt.Kind == KindPointer
}

// IsArray reports whether id is an array type.
func (in *Interner) IsArray(id TypeID) bool {
	tt, ok := in.Lookup(id)
	return ok && tt.Kind == KindArray
}

// IsStruct reports whether id is a struct type.
func (in *Interner) IsStruct(id TypeID) bool {
	tt, ok := in.Lookup(id)
	return ok && tt.Kind == KindStruct
}

// IsFunction reports whether id is a function type.
func (in *Interner) IsFunction(id TypeID) bool {
	tt, ok := in.Lookup(id)
	return ok && tt.Kind == KindFunc
}

// IsEnum reports whether id is an enum type.
func (in *Interner) IsEnum(id TypeID) bool {
	tt, ok := in.Lookup(id)
	return ok && tt.Kind == KindEnum
}

// IsBasic reports whether id is a primitive other than void.
func (in *Interner) IsBasic(id TypeID) bool {
	tt, ok := in.Lookup(id)
	if !ok {
		return false
	}
	switch tt.Kind {
	case KindInt8, KindInt32, KindBool:
		return true
	}
	return false
}

// Deref returns the element type of a pointer or array.
func (in *Interner) Deref(id TypeID) (TypeID, bool) {
	tt, ok := in.Lookup(id)
	if !ok {
		return NoTypeID, false
	}
	switch tt.Kind {
	case KindPointer, KindArray:
		return tt.Elem, true
	}
	return NoTypeID, false
}

// Length returns the element count of an array or the field count of a
// struct. The second result is false for every other kind.
func (in *Interner) Length(id TypeID) (uint32, bool) {
	tt, ok := in.Lookup(id)
	if !ok {
		return 0, false
	}
	switch tt.Kind {
	case KindArray:
		return tt.Count, true
	case KindStruct:
		info, ok := in.StructInfo(id)
		if !ok {
			return 0, false
		}
		return uint32(len(info.Fields)), true
	}
	return 0, false
}

// Elem returns the i-th field type of a struct.
func (in *Interner) Elem(id TypeID, i int) (TypeID, bool) {
	info, ok := in.StructInfo(id)
	if !ok || i < 0 || i >= len(info.Fields) {
		return NoTypeID, false
	}
	return info.Fields[i], true
}

// Params returns the parameter types of a function type.
func (in *Interner) Params(id TypeID) ([]TypeID, bool) {
	info, ok := in.FnInfo(id)
	if !ok {
		return nil, false
	}
	return info.Params, true
}

// Result returns the return type of a function type.
func (in *Interner) Result(id TypeID) (TypeID, bool) {
	info, ok := in.FnInfo(id)
	if !ok {
		return NoTypeID, false
	}
	return info.Result, true
}

// SizeOf returns the storage size of a type in bytes.
func (in *Interner) SizeOf(id TypeID) uint32 {
	tt, ok := in.Lookup(id)
	if !ok {
		return 0
	}
	switch tt.Kind {
	case KindVoid:
		return 0
	case KindInt8, KindBool:
		return 1
	case KindInt32:
		return 4
	case KindPointer, KindFunc:
		return pointerSize
	case KindEnum:
		return in.SizeOf(tt.Elem)
	case KindArray:
		return tt.Count * in.SizeOf(tt.Elem)
	case KindStruct:
		info, ok := in.StructInfo(id)
		if !ok {
			return 0
		}
		var size uint32
		for _, f := range info.Fields {
			align := in.AlignOf(f)
			if align != 0 && size%align != 0 {
				size += align - size%align
			}
			size += in.SizeOf(f)
		}
		align := in.AlignOf(id)
		if align != 0 && size%align != 0 {
			size += align - size%align
		}
		return size
	}
	return 0
}

// AlignOf returns the natural alignment of a type in bytes.
func (in *Interner) AlignOf(id TypeID) uint32 {
	tt, ok := in.Lookup(id)
	if !ok {
		return 1
	}
	switch tt.Kind {
	case KindInt8, KindBool:
		return 1
	case KindInt32:
		return 4
	case KindPointer, KindFunc:
		return wordAlign
	case KindEnum:
		return in.AlignOf(tt.Elem)
	case KindArray:
		return in.AlignOf(tt.Elem)
	case KindStruct:
		info, ok := in.StructInfo(id)
		if !ok {
			return 1
		}
		var align uint32 = 1
		for _, f := range info.Fields {
			if a := in.AlignOf(f); a > align {
				align = a
			}
		}
		return align
	}
	return 1
}

// TrivialType strips the reference and const qualifiers from id.
func (in *Interner) TrivialType(id TypeID) TypeID {
	tt, ok := in.Lookup(id)
	if !ok {
		return id
	}
	if !tt.Const && !tt.Ref {
		return id
	}
	tt.Const = false
	tt.Ref = false
	return in.Intern(tt)
}

// IsReference reports whether id carries the reference qualifier.
func (in *Interner) IsReference(id TypeID) bool {
	tt, ok := in.Lookup(id)
	return ok && tt.Ref
}

// IsIdentical reports structural equality of two types, ignoring the
// const/reference qualifiers and pointer mutability.
func (in *Interner) IsIdentical(a, b TypeID) bool {
	if a == b {
		return true
	}
	ta, oka := in.Lookup(a)
	tb, okb := in.Lookup(b)
	if !oka || !okb || ta.Kind != tb.Kind {
		return false
	}
	switch ta.Kind {
	case KindVoid, KindBool:
		return true
	case KindInt8, KindInt32:
		return ta.Signed == tb.Signed
	case KindPointer, KindEnum:
		return in.IsIdentical(ta.Elem, tb.Elem)
	case KindArray:
		return ta.Count == tb.Count && in.IsIdentical(ta.Elem, tb.Elem)
	case KindStruct:
		ia, _ := in.StructInfo(a)
		ib, _ := in.StructInfo(b)
		if len(ia.Fields) != len(ib.Fields) {
			return false
		}
		for i := range ia.Fields {
			if !in.IsIdentical(ia.Fields[i], ib.Fields[i]) {
				return false
			}
		}
		return true
	case KindFunc:
		ia, _ := in.FnInfo(a)
		ib, _ := in.FnInfo(b)
		if len(ia.Params) != len(ib.Params) || ia.Variadic != ib.Variadic {
			return false
		}
		for i := range ia.Params {
			if !in.IsIdentical(ia.Params[i], ib.Params[i]) {
				return false
			}
		}
		return in.IsIdentical(ia.Result, ib.Result)
	}
	return false
}

// CanAccept reports whether src is implicitly convertible to dst.
// Integers widen and sign-convert freely; arrays decay to a pointer to
// their element; pointers match when the pointees are identical or one
// side is a void pointer; everything else requires identity.
func (in *Interner) CanAccept(dst, src TypeID) bool {
	dst = in.TrivialType(dst)
	src = in.TrivialType(src)
	if in.IsIdentical(dst, src) {
		return true
	}
	intLike := func(id TypeID) bool { return in.IsInteger(id) || in.IsEnum(id) }
	if intLike(dst) && intLike(src) {
		return true
	}
	td, okd := in.Lookup(dst)
	if !okd {
		return false
	}
	if td.Kind == KindPointer {
		ts, oks := in.Lookup(src)
		if !oks {
			return false
		}
		switch ts.Kind {
		case KindArray:
			return in.IsIdentical(td.Elem, ts.Elem)
		case KindPointer:
			if in.IsIdentical(td.Elem, ts.Elem) {
				return true
			}
			// a void-style pointer on either side accepts anything
			return in.IsVoid(td.Elem) || in.IsVoid(ts.Elem)
		}
	}
	return false
}

// CanCastTo reports whether src is explicitly convertible to dst. On top
// of CanAccept it permits int<->pointer and narrowing conversions.
func (in *Interner) CanCastTo(src, dst TypeID) bool {
	if in.CanAccept(dst, src) {
		return true
	}
	castable := func(id TypeID) bool {
		return in.IsInteger(id) || in.IsEnum(id) || in.IsPointer(id)
	}
	if castable(src) && castable(dst) {
		return true
	}
	// arrays decay before casting
	if in.IsArray(src) && in.IsPointer(dst) {
		return true
	}
	return false
}

// String renders a compact, stable spelling of a type for dumps.
func (in *Interner) String(id TypeID) string {
	tt, ok := in.Lookup(id)
	if !ok {
		return "<?>"
	}
	switch tt.Kind {
	case KindVoid:
		return "void"
	case KindBool:
		return "i1"
	case KindInt8:
		if tt.Signed {
			return "i8"
		}
		return "u8"
	case KindInt32:
		if tt.Signed {
			return "i32"
		}
		return "u32"
	case KindPointer:
		return in.String(tt.Elem) + "*"
	case KindArray:
		return fmt.Sprintf("[%d x %s]", tt.Count, in.String(tt.Elem))
	case KindEnum:
		return "enum " + in.String(tt.Elem)
	case KindStruct:
		info, _ := in.StructInfo(id)
		parts := make([]string, len(info.Fields))
		for i, f := range info.Fields {
			parts[i] = in.String(f)
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case KindFunc:
		info, _ := in.FnInfo(id)
		parts := make([]string, len(info.Params))
		for i, p := range info.Params {
			parts[i] = in.String(p)
		}
		if info.Variadic {
			parts = append(parts, "...")
		}
		return in.String(info.Result) + "(" + strings.Join(parts, ", ") + ")"
	}
	return "<?>"
}
