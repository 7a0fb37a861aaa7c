// Package value holds the runtime values manipulated by the evaluator and
// their static type descriptors.
package value

import (
	"fmt"
	"strings"
)

// Type is the static type of a value.
type Type interface {
	fmt.Stringer
	// Code is the type code used to address methods of this type.
	Code() byte
	isType()
}

// PrimType is a type without type parameters.
type PrimType byte

// Primitive type codes.
const (
	TBoolean      PrimType = 1
	TByte         PrimType = 2
	TShort        PrimType = 3
	TInt          PrimType = 4
	TLong         PrimType = 5
	TBigInt       PrimType = 6
	TGroupElement PrimType = 7
	TSigmaProp    PrimType = 8
	TAny          PrimType = 97
	TUnit         PrimType = 98
	TBox          PrimType = 99
	TContext      PrimType = 101
	THeader       PrimType = 104
	TPreHeader    PrimType = 105
	TGlobal       PrimType = 106
)

// Codes of the parameterized types.
const (
	CollCode   byte = 12
	OptionCode byte = 36
	TupleCode  byte = 96
	FuncCode   byte = 112
)

var primNames = map[PrimType]string{
	TBoolean:      "Boolean",
	TByte:         "Byte",
	TShort:        "Short",
	TInt:          "Int",
	TLong:         "Long",
	TBigInt:       "BigInt",
	TGroupElement: "GroupElement",
	TSigmaProp:    "SigmaProp",
	TAny:          "Any",
	TUnit:         "Unit",
	TBox:          "Box",
	TContext:      "Context",
	THeader:       "Header",
	TPreHeader:    "PreHeader",
	TGlobal:       "Global",
}

func (p PrimType) String() string {
	if n, ok := primNames[p]; ok {
		return n
	}
	return fmt.Sprintf("PrimType(%d)", byte(p))
}

// Code implements Type.
func (p PrimType) Code() byte { return byte(p) }

// IsNumeric reports whether p is one of the integer types.
func (p PrimType) IsNumeric() bool {
	return p >= TByte && p <= TBigInt
}

// CollType is the type of a collection with elements of type Elem.
type CollType struct {
	Elem Type
}

// OptionType is the type of an optional value of type Elem.
type OptionType struct {
	Elem Type
}

// TupleType is the type of a fixed size heterogeneous tuple.
type TupleType struct {
	Items []Type
}

// FuncType is the type of a function from Dom to Range.
type FuncType struct {
	Dom   []Type
	Range Type
}

func (PrimType) isType()   {}
func (CollType) isType()   {}
func (OptionType) isType() {}
func (TupleType) isType()  {}
func (FuncType) isType()   {}

func (c CollType) String() string   { return "Coll[" + c.Elem.String() + "]" }
func (o OptionType) String() string { return "Option[" + o.Elem.String() + "]" }
func (t TupleType) String() string  { return "(" + joinTypes(t.Items) + ")" }
func (f FuncType) String() string   { return "(" + joinTypes(f.Dom) + ") => " + f.Range.String() }

func (CollType) Code() byte   { return CollCode }
func (OptionType) Code() byte { return OptionCode }
func (TupleType) Code() byte  { return TupleCode }
func (FuncType) Code() byte   { return FuncCode }

func joinTypes(ts []Type) string {
	parts := make([]string, len(ts))
	for i, t := range ts {
		parts[i] = t.String()
	}
	return strings.Join(parts, ", ")
}

// ByteColl is the type of byte arrays.
var ByteColl = CollType{Elem: TByte}

// TypeEqual reports whether a and b denote the same type.
func TypeEqual(a, b Type) bool {
	switch x := a.(type) {
	case PrimType:
		y, ok := b.(PrimType)
		return ok && x == y
	case CollType:
		y, ok := b.(CollType)
		return ok && TypeEqual(x.Elem, y.Elem)
	case OptionType:
		y, ok := b.(OptionType)
		return ok && TypeEqual(x.Elem, y.Elem)
	case TupleType:
		y, ok := b.(TupleType)
		return ok && typesEqual(x.Items, y.Items)
	case FuncType:
		y, ok := b.(FuncType)
		return ok && typesEqual(x.Dom, y.Dom) && TypeEqual(x.Range, y.Range)
	default:
		return false
	}
}

func typesEqual(a, b []Type) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !TypeEqual(a[i], b[i]) {
			return false
		}
	}
	return true
}

// Conforms reports whether a value of type actual may be used where want is
// expected. Any accepts everything.
func Conforms(actual, want Type) bool {
	if want == TAny {
		return true
	}
	switch w := want.(type) {
	case CollType:
		a, ok := actual.(CollType)
		return ok && Conforms(a.Elem, w.Elem)
	case OptionType:
		a, ok := actual.(OptionType)
		return ok && Conforms(a.Elem, w.Elem)
	default:
		return TypeEqual(actual, want)
	}
}
