package value

import (
	"errors"
	"fmt"

	"github.com/drand/kyber"

	"github.com/zutxo/sigma/sigma"
)

var (
	// ErrArithmeticOverflow is returned when an integer operation does not fit its type.
	ErrArithmeticOverflow = errors.New("arithmetic overflow")
	// ErrDivisionByZero is returned on division or modulo by zero.
	ErrDivisionByZero = errors.New("division by zero")
)

// Value is a runtime value. Types outside this package (closures) may
// implement it.
type Value interface {
	Type() Type
}

// Bool is a Boolean value.
type Bool bool

// Byte is a signed 8-bit integer.
type Byte int8

// Short is a signed 16-bit integer.
type Short int16

// Int is a signed 32-bit integer.
type Int int32

// Long is a signed 64-bit integer.
type Long int64

// Unit is the only value of type Unit.
type Unit struct{}

// GroupElement is a point of the group propositions are stated in.
type GroupElement struct {
	P kyber.Point
}

// SigmaProp wraps a proposition produced by the evaluator.
type SigmaProp struct {
	Prop sigma.SigmaBoolean
}

// Coll is a homogeneous collection.
type Coll struct {
	Elem  Type
	Items []Value
}

// Tuple is a fixed size heterogeneous collection.
type Tuple []Value

// Option is an optional value; Val is nil for None.
type Option struct {
	Elem Type
	Val  Value
}

func (Bool) Type() Type         { return TBoolean }
func (Byte) Type() Type         { return TByte }
func (Short) Type() Type        { return TShort }
func (Int) Type() Type          { return TInt }
func (Long) Type() Type         { return TLong }
func (Unit) Type() Type         { return TUnit }
func (GroupElement) Type() Type { return TGroupElement }
func (SigmaProp) Type() Type    { return TSigmaProp }
func (c Coll) Type() Type       { return CollType{Elem: c.Elem} }
func (o Option) Type() Type     { return OptionType{Elem: o.Elem} }

func (t Tuple) Type() Type {
	items := make([]Type, len(t))
	for i, v := range t {
		items[i] = v.Type()
	}
	return TupleType{Items: items}
}

// Some builds a defined option.
func Some(v Value) Option {
	return Option{Elem: v.Type(), Val: v}
}

// None builds an empty option of type elem.
func None(elem Type) Option {
	return Option{Elem: elem}
}

// IsDefined reports whether o holds a value.
func (o Option) IsDefined() bool {
	return o.Val != nil
}

// Len returns the number of items in c.
func (c Coll) Len() int {
	return len(c.Items)
}

// NewColl builds a collection of elem values.
func NewColl(elem Type, items ...Value) Coll {
	if items == nil {
		items = []Value{}
	}
	return Coll{Elem: elem, Items: items}
}

// FromBytes builds a Coll[Byte] holding b.
func FromBytes(b []byte) Coll {
	items := make([]Value, len(b))
	for i, x := range b {
		items[i] = Byte(int8(x))
	}
	return Coll{Elem: TByte, Items: items}
}

// ToBytes returns the bytes of a Coll[Byte].
func ToBytes(v Value) ([]byte, error) {
	c, ok := v.(Coll)
	if !ok || c.Elem != TByte {
		return nil, fmt.Errorf("expected Coll[Byte], got %s", v.Type())
	}
	out := make([]byte, len(c.Items))
	for i, item := range c.Items {
		b, ok := item.(Byte)
		if !ok {
			return nil, fmt.Errorf("expected Byte item, got %s", item.Type())
		}
		out[i] = byte(b)
	}
	return out, nil
}

// Equal compares two values structurally. Values of different types are
// never equal.
func Equal(a, b Value) bool {
	switch x := a.(type) {
	case Bool, Byte, Short, Int, Long, Unit:
		return a == b
	case BigInt:
		y, ok := b.(BigInt)
		return ok && x.Cmp(y) == 0
	case GroupElement:
		y, ok := b.(GroupElement)
		return ok && x.P.Equal(y.P)
	case SigmaProp:
		y, ok := b.(SigmaProp)
		return ok && sigma.Equal(x.Prop, y.Prop)
	case Coll:
		y, ok := b.(Coll)
		if !ok || len(x.Items) != len(y.Items) {
			return false
		}
		for i := range x.Items {
			if !Equal(x.Items[i], y.Items[i]) {
				return false
			}
		}
		return true
	case Tuple:
		y, ok := b.(Tuple)
		if !ok || len(x) != len(y) {
			return false
		}
		for i := range x {
			if !Equal(x[i], y[i]) {
				return false
			}
		}
		return true
	case Option:
		y, ok := b.(Option)
		if !ok || x.IsDefined() != y.IsDefined() {
			return false
		}
		return !x.IsDefined() || Equal(x.Val, y.Val)
	case *Box:
		y, ok := b.(*Box)
		return ok && x.ID == y.ID
	case *Header:
		y, ok := b.(*Header)
		return ok && x.ID == y.ID
	case *PreHeader:
		y, ok := b.(*PreHeader)
		return ok && x.equal(y)
	default:
		return false
	}
}
