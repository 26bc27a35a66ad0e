package types

import (
	"fmt"

	"fortio.org/safecast"
)

// Builtins stores TypeIDs for common primitive types.
type Builtins struct {
	Invalid TypeID
	Void    TypeID
	Int8    TypeID
	UInt8   TypeID
	Int32   TypeID
	UInt32  TypeID
	Bool    TypeID
}

// StructInfo stores the field list of a struct type.
type StructInfo struct {
	Fields []TypeID
}

// FnInfo stores the signature of a function type.
type FnInfo struct {
	Params   []TypeID
	Result   TypeID
	Variadic bool
}

// Interner provides stable TypeIDs by hashing structural descriptors.
// Structs and functions are registered rather than hashed; IsIdentical
// compares them structurally through the side tables.
type Interner struct {
	types    []Type
	index    map[Type]TypeID
	builtins Builtins
	structs  []StructInfo
	fns      []FnInfo
}

// NewInterner constructs an interner seeded with built-in primitives.
func NewInterner() *Interner {
	in := &Interner{
		index: make(map[Type]TypeID, 64),
	}
	in.structs = append(in.structs, StructInfo{}) // reserve 0 as invalid sentinel
	in.fns = append(in.fns, FnInfo{})
	in.builtins.Invalid = in.internRaw(Type{Kind: KindInvalid})
	in.builtins.Void = in.Intern(MakeVoid())
	in.builtins.Int8 = in.Intern(MakeInt8(true))
	in.builtins.UInt8 = in.Intern(MakeInt8(false))
	in.builtins.Int32 = in.Intern(MakeInt32(true))
	in.builtins.UInt32 = in.Intern(MakeInt32(false))
	in.builtins.Bool = in.Intern(MakeBool())
	return in
}

// Builtins returns TypeIDs for primitive types.
func (in *Interner) Builtins() Builtins {
	return in.builtins
}

// Intern ensures the provided descriptor has a stable TypeID.
func (in *Interner) Intern(t Type) TypeID {
	if t.Kind == KindInvalid {
		return NoTypeID
	}
	if id, ok := in.index[t]; ok {
		return id
	}
	return in.internRaw(t)
}

// internRaw adds the descriptor to the storage without consulting the map.
func (in *Interner) internRaw(t Type) TypeID {
	lenTypes, err := safecast.Conv[uint32](len(in.types))
	if err != nil {
		panic(fmt.Errorf("len(types) overflow: %w", err))
	}
	id := TypeID(lenTypes)
	in.types = append(in.types, t)
	in.index[t] = id
	return id
}

// Lookup returns the descriptor for a TypeID.
func (in *Interner) Lookup(id TypeID) (Type, bool) {
	if id == NoTypeID || int(id) >= len(in.types) {
		return Type{}, false
	}
	return in.types[id], true
}

// MustLookup panics when id is invalid.
func (in *Interner) MustLookup(id TypeID) Type {
	tt, ok := in.Lookup(id)
	if !ok {
		panic("types: invalid TypeID")
	}
	return tt
}

// MakeStruct registers a struct type with the given field types.
func (in *Interner) MakeStruct(fields []TypeID) TypeID {
	payload, err := safecast.Conv[uint32](len(in.structs))
	if err != nil {
		panic(fmt.Errorf("len(structs) overflow: %w", err))
	}
	in.structs = append(in.structs, StructInfo{Fields: append([]TypeID(nil), fields...)})
	return in.internRaw(Type{Kind: KindStruct, Payload: payload})
}

// StructInfo returns the field table for a struct TypeID.
func (in *Interner) StructInfo(id TypeID) (StructInfo, bool) {
	tt, ok := in.Lookup(id)
	if !ok || tt.Kind != KindStruct || int(tt.Payload) >= len(in.structs) {
		return StructInfo{}, false
	}
	return in.structs[tt.Payload], true
}

// MakeFunc registers a function type.
func (in *Interner) MakeFunc(params []TypeID, result TypeID, variadic bool) TypeID {
	payload, err := safecast.Conv[uint32](len(in.fns))
	if err != nil {
		panic(fmt.Errorf("len(fns) overflow: %w", err))
	}
	in.fns = append(in.fns, FnInfo{
		Params:   append([]TypeID(nil), params...),
		Result:   result,
		Variadic: variadic,
	})
	return in.internRaw(Type{Kind: KindFunc, Payload: payload})
}

// FnInfo returns the signature for a function TypeID.
func (in *Interner) FnInfo(id TypeID) (FnInfo, bool) {
	tt, ok := in.Lookup(id)
	if !ok || tt.Kind != KindFunc || int(tt.Payload) >= len(in.fns) {
		return FnInfo{}, false
	}
	return in.fns[tt.Payload], true
}

// WithQual returns id with the given const/reference qualifier bits set.
func (in *Interner) WithQual(id TypeID, isConst, isRef bool) TypeID {
	tt := in.MustLookup(id)
	tt.Const = isConst
	tt.Ref = isRef
	return in.Intern(tt)
}
