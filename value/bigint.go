package value

import (
	"fmt"
	"math/big"

	"github.com/holiman/uint256"
)

// BigIntSize is the maximal encoded size of a BigInt.
const BigIntSize = 32

// BigInt is a 256-bit signed integer in two's complement. Operations that
// leave the [-2^255, 2^255-1] range fail with ErrArithmeticOverflow.
type BigInt struct {
	v uint256.Int
}

var minBigInt = new(uint256.Int).Lsh(uint256.NewInt(1), 255)

// Type implements Value.
func (BigInt) Type() Type { return TBigInt }

// NewBigInt returns x as a BigInt.
func NewBigInt(x int64) BigInt {
	var b BigInt
	if x >= 0 {
		b.v.SetUint64(uint64(x))
	} else {
		b.v.SetUint64(uint64(-(x + 1)))
		b.v.Not(&b.v)
	}
	return b
}

// BigIntFromBig converts x, failing if it does not fit 256 signed bits.
func BigIntFromBig(x *big.Int) (BigInt, error) {
	var b BigInt
	abs := new(big.Int).Abs(x)
	if overflow := b.v.SetFromBig(abs); overflow {
		return b, ErrArithmeticOverflow
	}
	if x.Sign() < 0 {
		if b.v.Gt(minBigInt) {
			return b, ErrArithmeticOverflow
		}
		b.v.Neg(&b.v)
	} else if b.v.Sign() < 0 {
		return b, ErrArithmeticOverflow
	}
	return b, nil
}

// BigIntFromBytes decodes a big-endian two's complement integer of at most
// BigIntSize bytes.
func BigIntFromBytes(buf []byte) (BigInt, error) {
	var b BigInt
	if len(buf) == 0 {
		return b, fmt.Errorf("empty BigInt encoding")
	}
	if len(buf) > BigIntSize {
		return b, ErrArithmeticOverflow
	}
	var full [BigIntSize]byte
	if buf[0]&0x80 != 0 {
		for i := range full {
			full[i] = 0xff
		}
	}
	copy(full[BigIntSize-len(buf):], buf)
	b.v.SetBytes32(full[:])
	return b, nil
}

// Bytes returns the minimal big-endian two's complement encoding of b.
func (b BigInt) Bytes() []byte {
	full := b.v.Bytes32()
	neg := b.Sign() < 0
	i := 0
	for i < BigIntSize-1 {
		next := full[i+1]&0x80 != 0
		if (!neg && full[i] == 0 && !next) || (neg && full[i] == 0xff && next) {
			i++
			continue
		}
		break
	}
	return append([]byte(nil), full[i:]...)
}

// Sign returns -1, 0 or 1.
func (b BigInt) Sign() int {
	return b.v.Sign()
}

// Cmp compares b and o as signed integers.
func (b BigInt) Cmp(o BigInt) int {
	switch {
	case b.v.Slt(&o.v):
		return -1
	case b.v.Sgt(&o.v):
		return 1
	default:
		return 0
	}
}

// Big returns b as a math/big integer.
func (b BigInt) Big() *big.Int {
	if b.Sign() >= 0 {
		return b.v.ToBig()
	}
	var abs uint256.Int
	abs.Neg(&b.v)
	return new(big.Int).Neg(abs.ToBig())
}

// Int64 returns b if it fits 64 bits.
func (b BigInt) Int64() (int64, bool) {
	x := b.Big()
	if !x.IsInt64() {
		return 0, false
	}
	return x.Int64(), true
}

func (b BigInt) String() string {
	return b.Big().String()
}

// Add returns b + o.
func (b BigInt) Add(o BigInt) (BigInt, error) {
	var r BigInt
	r.v.Add(&b.v, &o.v)
	if (b.Sign() < 0) == (o.Sign() < 0) && (r.Sign() < 0) != (b.Sign() < 0) {
		return r, ErrArithmeticOverflow
	}
	return r, nil
}

// Sub returns b - o.
func (b BigInt) Sub(o BigInt) (BigInt, error) {
	var r BigInt
	r.v.Sub(&b.v, &o.v)
	if (b.Sign() < 0) != (o.Sign() < 0) && (r.Sign() < 0) != (b.Sign() < 0) {
		return r, ErrArithmeticOverflow
	}
	return r, nil
}

// Neg returns -b.
func (b BigInt) Neg() (BigInt, error) {
	if b.v.Eq(minBigInt) {
		return b, ErrArithmeticOverflow
	}
	var r BigInt
	r.v.Neg(&b.v)
	return r, nil
}

func (b BigInt) abs() uint256.Int {
	var a uint256.Int
	if b.Sign() < 0 {
		a.Neg(&b.v)
	} else {
		a.Set(&b.v)
	}
	return a
}

// Mul returns b * o.
func (b BigInt) Mul(o BigInt) (BigInt, error) {
	x, y := b.abs(), o.abs()
	var r BigInt
	if _, overflow := r.v.MulOverflow(&x, &y); overflow {
		return r, ErrArithmeticOverflow
	}
	if (b.Sign() < 0) != (o.Sign() < 0) {
		if r.v.Gt(minBigInt) {
			return r, ErrArithmeticOverflow
		}
		r.v.Neg(&r.v)
		return r, nil
	}
	if r.v.Sign() < 0 {
		return r, ErrArithmeticOverflow
	}
	return r, nil
}

// Div returns b / o truncated toward zero.
func (b BigInt) Div(o BigInt) (BigInt, error) {
	var r BigInt
	if o.v.IsZero() {
		return r, ErrDivisionByZero
	}
	if b.v.Eq(minBigInt) && o.Cmp(NewBigInt(-1)) == 0 {
		return r, ErrArithmeticOverflow
	}
	r.v.SDiv(&b.v, &o.v)
	return r, nil
}

// Mod returns the remainder of b / o; its sign follows b.
func (b BigInt) Mod(o BigInt) (BigInt, error) {
	var r BigInt
	if o.v.IsZero() {
		return r, ErrDivisionByZero
	}
	r.v.SMod(&b.v, &o.v)
	return r, nil
}
