// Package schema defines the language-independent type model the codec
// encodes against: primitives, options, sequences, maps, structs with
// lexically ordered fields, unions with lexically ordered cases, and
// frameless wrapper types.
//
// Field and case order is the wire contract. Struct fields and union
// cases are sorted by name at construction time, and two independently
// evolving definitions stay compatible only while new names sort after
// every existing one.
package schema

import "sort"

// Kind identifies the shape of a type.
type Kind string

const (
	KindBool     Kind = "bool"
	KindInt      Kind = "int"   // zigzag varint, Bits 8/16/32/64
	KindUint     Kind = "uint"  // varint, Bits 8/16/32/64
	KindFloat    Kind = "float" // raw little-endian, Bits 32/64
	KindUnit     Kind = "unit"
	KindString   Kind = "string"
	KindBytes    Kind = "bytes"
	KindOption   Kind = "option"   // Elem
	KindSequence Kind = "sequence" // Elem
	KindMap      Kind = "map"      // Key, Value
	KindWrapper  Kind = "wrapper"  // Elem, no framing of its own
	KindNamed    Kind = "named"    // Ref, resolved to a struct or union
)

// Type describes a single value shape. Exactly the fields relevant to
// the Kind are set.
type Type struct {
	Kind  Kind
	Bits  int    // int/uint/float width
	Elem  *Type  // option/sequence/wrapper element
	Key   *Type  // map key
	Value *Type  // map value
	Ref   string // named struct or union
}

// Constructors for the common shapes.

func Bool() *Type    { return &Type{Kind: KindBool} }
func Unit() *Type    { return &Type{Kind: KindUnit} }
func String() *Type  { return &Type{Kind: KindString} }
func Bytes() *Type   { return &Type{Kind: KindBytes} }
func Int8() *Type    { return &Type{Kind: KindInt, Bits: 8} }
func Int16() *Type   { return &Type{Kind: KindInt, Bits: 16} }
func Int32() *Type   { return &Type{Kind: KindInt, Bits: 32} }
func Int64() *Type   { return &Type{Kind: KindInt, Bits: 64} }
func Uint8() *Type   { return &Type{Kind: KindUint, Bits: 8} }
func Uint16() *Type  { return &Type{Kind: KindUint, Bits: 16} }
func Uint32() *Type  { return &Type{Kind: KindUint, Bits: 32} }
func Uint64() *Type  { return &Type{Kind: KindUint, Bits: 64} }
func Float32() *Type { return &Type{Kind: KindFloat, Bits: 32} }
func Float64() *Type { return &Type{Kind: KindFloat, Bits: 64} }

func OptionOf(elem *Type) *Type   { return &Type{Kind: KindOption, Elem: elem} }
func SequenceOf(elem *Type) *Type { return &Type{Kind: KindSequence, Elem: elem} }
func WrapperOf(elem *Type) *Type  { return &Type{Kind: KindWrapper, Elem: elem} }
func Named(ref string) *Type      { return &Type{Kind: KindNamed, Ref: ref} }

func MapOf(key, value *Type) *Type {
	return &Type{Kind: KindMap, Key: key, Value: value}
}

// Field is a named struct member.
type Field struct {
	Name string
	Type *Type
}

// Struct is a named product type. On the wire it is a plain sequence
// of field values in the order held here; the codec never sees field
// names.
type Struct struct {
	Name   string
	Fields []*Field
}

// NewStruct builds a struct definition, sorting the fields lexically
// by name. Fields added in later versions of a type must sort after
// all existing ones to keep old streams decodable.
func NewStruct(name string, fields ...*Field) *Struct {
	sorted := make([]*Field, len(fields))
	copy(sorted, fields)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Name < sorted[j].Name
	})
	return &Struct{Name: name, Fields: sorted}
}

// FieldIndex returns the position of the named field, or -1.
func (s *Struct) FieldIndex(name string) int {
	for i, f := range s.Fields {
		if f.Name == name {
			return i
		}
	}
	return -1
}

// Case is a single union alternative. A nil Type marks a case without
// payload; its inner value is the unit value.
type Case struct {
	Name string
	Type *Type
}

// Union is a named sum type. The wire discriminator is a case's
// position in the sorted case list, so the same append-only evolution
// rule applies as for struct fields.
type Union struct {
	Name  string
	Cases []*Case

	// Exhaustive opts out of the opaque unknown-variant fallback:
	// decoding a discriminator past the case list fails instead of
	// yielding raw bytes.
	Exhaustive bool
}

// NewUnion builds a union definition, sorting the cases lexically by
// name.
func NewUnion(name string, cases ...*Case) *Union {
	sorted := make([]*Case, len(cases))
	copy(sorted, cases)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Name < sorted[j].Name
	})
	return &Union{Name: name, Cases: sorted}
}

// CaseIndex returns the discriminator for the named case, or -1.
func (u *Union) CaseIndex(name string) int {
	for i, c := range u.Cases {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// Resolver looks up named types during encode and decode. The registry
// package provides the standard implementation.
type Resolver interface {
	Struct(name string) (*Struct, error)
	Union(name string) (*Union, error)
}
