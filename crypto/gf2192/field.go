// Package gf2192 implements arithmetic in the binary field GF(2^192), defined
// by the irreducible pentanomial x^192 + x^7 + x^2 + x + 1, together with the
// polynomials over it used to split threshold challenges.
//
// Elements are stored as three 64-bit words, least significant word first.
// The byte encoding is the little-endian serialization of those words, so
// byte 0 holds the coefficients of x^0..x^7.
package gf2192

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// Size is the byte length of an encoded element.
const Size = 24

// irred holds the low terms of the reduction polynomial: x^7 + x^2 + x + 1.
const irred uint64 = 0x87

// ErrZeroInverse is returned when inverting the zero element.
var ErrZeroInverse = errors.New("gf2192: zero has no inverse")

// Element is a field element.
type Element [3]uint64

// Zero and One are the neutral elements of addition and multiplication.
var (
	Zero = Element{}
	One  = Element{1, 0, 0}
)

// FromBytes decodes a 24 byte little-endian element.
func FromBytes(b []byte) (Element, error) {
	if len(b) != Size {
		return Zero, fmt.Errorf("gf2192: element must be %d bytes, got %d", Size, len(b))
	}
	return Element{
		binary.LittleEndian.Uint64(b[0:8]),
		binary.LittleEndian.Uint64(b[8:16]),
		binary.LittleEndian.Uint64(b[16:24]),
	}, nil
}

// FromByte returns the element whose low byte is b. Threshold evaluation
// points are small nonzero elements built this way.
func FromByte(b byte) Element {
	return Element{uint64(b), 0, 0}
}

// Bytes encodes e as 24 little-endian bytes.
func (e Element) Bytes() [Size]byte {
	var out [Size]byte
	binary.LittleEndian.PutUint64(out[0:8], e[0])
	binary.LittleEndian.PutUint64(out[8:16], e[1])
	binary.LittleEndian.PutUint64(out[16:24], e[2])
	return out
}

// IsZero reports whether e is the additive identity.
func (e Element) IsZero() bool {
	return e[0]|e[1]|e[2] == 0
}

// Equal reports whether e and o are the same element.
func (e Element) Equal(o Element) bool {
	return e == o
}

func (e Element) String() string {
	return fmt.Sprintf("%016x%016x%016x", e[2], e[1], e[0])
}

// Add returns a + b. Addition in characteristic two is XOR, so it is also
// subtraction.
func Add(a, b Element) Element {
	return Element{a[0] ^ b[0], a[1] ^ b[1], a[2] ^ b[2]}
}

// mulX returns a * x reduced modulo the field polynomial.
func mulX(a Element) Element {
	carry := a[2] >> 63
	a[2] = a[2]<<1 | a[1]>>63
	a[1] = a[1]<<1 | a[0]>>63
	a[0] = a[0]<<1 ^ (-carry & irred)
	return a
}

// Mul returns a * b. The loop runs a fixed 192 iterations and selects with
// masks rather than branches on the bits of b.
func Mul(a, b Element) Element {
	var r Element
	for w := 0; w < 3; w++ {
		word := b[w]
		for i := 0; i < 64; i++ {
			mask := -((word >> uint(i)) & 1)
			r[0] ^= a[0] & mask
			r[1] ^= a[1] & mask
			r[2] ^= a[2] & mask
			a = mulX(a)
		}
	}
	return r
}

// Square returns a * a.
func Square(a Element) Element {
	return Mul(a, a)
}

// Inv returns the multiplicative inverse of a, computed as a^(2^192 - 2).
// Since 2^192 - 2 = 2 + 4 + ... + 2^191, the inverse is the product of the
// successive squares a^2, a^4, ..., a^(2^191).
func Inv(a Element) (Element, error) {
	if a.IsZero() {
		return Zero, ErrZeroInverse
	}
	res := One
	t := a
	for i := 1; i < 192; i++ {
		t = Square(t)
		res = Mul(res, t)
	}
	return res, nil
}
