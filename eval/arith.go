package eval

import (
	"fmt"
	"math"

	"github.com/zutxo/sigma/ast"
	"github.com/zutxo/sigma/value"
)

// rank orders the numeric types by width.
var rank = map[value.PrimType]int{
	value.TByte:   1,
	value.TShort:  2,
	value.TInt:    3,
	value.TLong:   4,
	value.TBigInt: 5,
}

func asInt64(v value.Value) (int64, value.PrimType, bool) {
	switch x := v.(type) {
	case value.Byte:
		return int64(x), value.TByte, true
	case value.Short:
		return int64(x), value.TShort, true
	case value.Int:
		return int64(x), value.TInt, true
	case value.Long:
		return int64(x), value.TLong, true
	default:
		return 0, 0, false
	}
}

// fit converts x to t, failing if it is out of range.
func fit(t value.PrimType, x int64) (value.Value, error) {
	switch t {
	case value.TByte:
		if x < math.MinInt8 || x > math.MaxInt8 {
			return nil, fmt.Errorf("%w: %d as Byte", ErrArithmeticOverflow, x)
		}
		return value.Byte(x), nil
	case value.TShort:
		if x < math.MinInt16 || x > math.MaxInt16 {
			return nil, fmt.Errorf("%w: %d as Short", ErrArithmeticOverflow, x)
		}
		return value.Short(x), nil
	case value.TInt:
		if x < math.MinInt32 || x > math.MaxInt32 {
			return nil, fmt.Errorf("%w: %d as Int", ErrArithmeticOverflow, x)
		}
		return value.Int(x), nil
	case value.TLong:
		return value.Long(x), nil
	case value.TBigInt:
		return value.NewBigInt(x), nil
	default:
		return nil, fmt.Errorf("%w: %s is not numeric", ErrTypeMismatch, t)
	}
}

func add64(a, b int64) (int64, bool) {
	c := a + b
	return c, (c > a) == (b > 0)
}

func sub64(a, b int64) (int64, bool) {
	c := a - b
	return c, (c < a) == (b > 0)
}

func mul64(a, b int64) (int64, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	c := a * b
	if (a == -1 && b == math.MinInt64) || (b == -1 && a == math.MinInt64) {
		return 0, false
	}
	return c, c/b == a
}

func arith(kind ast.ArithKind, l, r value.Value) (value.Value, error) {
	if !value.TypeEqual(l.Type(), r.Type()) {
		return nil, fmt.Errorf("%w: %s %s %s", ErrTypeMismatch, l.Type(), kind, r.Type())
	}
	if lb, ok := l.(value.BigInt); ok {
		return arithBig(kind, lb, r.(value.BigInt))
	}
	a, t, ok := asInt64(l)
	if !ok {
		return nil, typeMismatch("arithmetic", l)
	}
	b, _, _ := asInt64(r)

	var res int64
	ok = true
	switch kind {
	case ast.Plus:
		res, ok = add64(a, b)
	case ast.Minus:
		res, ok = sub64(a, b)
	case ast.Multiply:
		res, ok = mul64(a, b)
	case ast.Division:
		if b == 0 {
			return nil, ErrDivisionByZero
		}
		if a == math.MinInt64 && b == -1 {
			return nil, ErrArithmeticOverflow
		}
		res = a / b
	case ast.Modulo:
		if b == 0 {
			return nil, ErrDivisionByZero
		}
		res = a % b
	case ast.Min:
		res = a
		if b < a {
			res = b
		}
	case ast.Max:
		res = a
		if b > a {
			res = b
		}
	default:
		return nil, fmt.Errorf("%w: arithmetic operator %d", ErrInvalidArgument, kind)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %d %s %d", ErrArithmeticOverflow, a, kind, b)
	}
	return fit(t, res)
}

func arithBig(kind ast.ArithKind, a, b value.BigInt) (value.Value, error) {
	var (
		r   value.BigInt
		err error
	)
	switch kind {
	case ast.Plus:
		r, err = a.Add(b)
	case ast.Minus:
		r, err = a.Sub(b)
	case ast.Multiply:
		r, err = a.Mul(b)
	case ast.Division:
		r, err = a.Div(b)
	case ast.Modulo:
		r, err = a.Mod(b)
	case ast.Min:
		r = a
		if b.Cmp(a) < 0 {
			r = b
		}
	case ast.Max:
		r = a
		if b.Cmp(a) > 0 {
			r = b
		}
	default:
		return nil, fmt.Errorf("%w: arithmetic operator %d", ErrInvalidArgument, kind)
	}
	if err != nil {
		return nil, err
	}
	return r, nil
}

func compareNumeric(l, r value.Value) (int, error) {
	if !value.TypeEqual(l.Type(), r.Type()) {
		return 0, fmt.Errorf("%w: comparing %s with %s", ErrTypeMismatch, l.Type(), r.Type())
	}
	if lb, ok := l.(value.BigInt); ok {
		return lb.Cmp(r.(value.BigInt)), nil
	}
	a, _, ok := asInt64(l)
	if !ok {
		return 0, typeMismatch("comparison", l)
	}
	b, _, _ := asInt64(r)
	switch {
	case a < b:
		return -1, nil
	case a > b:
		return 1, nil
	default:
		return 0, nil
	}
}

func negate(v value.Value) (value.Value, error) {
	if b, ok := v.(value.BigInt); ok {
		return b.Neg()
	}
	a, t, ok := asInt64(v)
	if !ok {
		return nil, typeMismatch("negation", v)
	}
	if a == math.MinInt64 {
		return nil, ErrArithmeticOverflow
	}
	return fit(t, -a)
}

func numericType(v value.Value) (value.PrimType, bool) {
	p, ok := v.Type().(value.PrimType)
	if !ok || !p.IsNumeric() {
		return 0, false
	}
	return p, true
}

func upcast(v value.Value, to value.PrimType) (value.Value, error) {
	from, ok := numericType(v)
	if !ok || !to.IsNumeric() {
		return nil, typeMismatch("upcast", v)
	}
	if rank[to] < rank[from] {
		return nil, fmt.Errorf("%w: cannot upcast %s to %s", ErrInvalidArgument, from, to)
	}
	if from == value.TBigInt {
		return v, nil
	}
	a, _, _ := asInt64(v)
	return fit(to, a)
}

func downcast(v value.Value, to value.PrimType) (value.Value, error) {
	from, ok := numericType(v)
	if !ok || !to.IsNumeric() {
		return nil, typeMismatch("downcast", v)
	}
	if rank[to] > rank[from] {
		return nil, fmt.Errorf("%w: cannot downcast %s to %s", ErrInvalidArgument, from, to)
	}
	if from == value.TBigInt {
		if to == value.TBigInt {
			return v, nil
		}
		x, ok := v.(value.BigInt).Int64()
		if !ok {
			return nil, fmt.Errorf("%w: %s as %s", ErrArithmeticOverflow, v.(value.BigInt), to)
		}
		return fit(to, x)
	}
	a, _, _ := asInt64(v)
	return fit(to, a)
}
