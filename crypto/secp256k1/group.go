// Package secp256k1 exposes the secp256k1 curve as a kyber.Group.
//
// Points are encoded in 33 byte SEC1 compressed form; the point at infinity
// is encoded as 33 zero bytes. Scalars are 32 byte big-endian integers
// smaller than the group order.
package secp256k1

import (
	"crypto/cipher"
	"encoding/hex"
	"errors"
	"io"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/secp256k1"
	"github.com/consensys/gnark-crypto/ecc/secp256k1/fp"
	"github.com/consensys/gnark-crypto/ecc/secp256k1/fr"
	"github.com/drand/kyber"
	"github.com/drand/kyber/util/random"
)

const (
	// ScalarSize is the byte length of an encoded scalar.
	ScalarSize = fr.Bytes
	// PointSize is the byte length of an encoded point.
	PointSize = fp.Bytes + 1
)

var (
	errScalarLength = errors.New("secp256k1: invalid scalar length")
	errScalarRange  = errors.New("secp256k1: scalar not reduced")
	errPointLength  = errors.New("secp256k1: invalid point length")
	errPointPrefix  = errors.New("secp256k1: invalid point prefix")
	errNotOnCurve   = errors.New("secp256k1: point not on curve")
	errEmbedLength  = errors.New("secp256k1: embedded data too long")
)

type group struct{}

// NewGroup returns the secp256k1 group.
func NewGroup() kyber.Group {
	return group{}
}

func (group) String() string { return "secp256k1" }

func (group) ScalarLen() int { return ScalarSize }

func (group) Scalar() kyber.Scalar { return &scalar{} }

func (group) PointLen() int { return PointSize }

func (group) Point() kyber.Point { return new(point).Null() }

type scalar struct {
	v fr.Element
}

func toScalar(s kyber.Scalar) *scalar {
	return s.(*scalar)
}

func (s *scalar) Equal(o kyber.Scalar) bool {
	return s.v.Equal(&toScalar(o).v)
}

func (s *scalar) Set(a kyber.Scalar) kyber.Scalar {
	s.v.Set(&toScalar(a).v)
	return s
}

func (s *scalar) Clone() kyber.Scalar {
	return &scalar{v: s.v}
}

func (s *scalar) SetInt64(v int64) kyber.Scalar {
	s.v.SetInt64(v)
	return s
}

func (s *scalar) Zero() kyber.Scalar {
	s.v.SetZero()
	return s
}

func (s *scalar) One() kyber.Scalar {
	s.v.SetOne()
	return s
}

func (s *scalar) Add(a, b kyber.Scalar) kyber.Scalar {
	s.v.Add(&toScalar(a).v, &toScalar(b).v)
	return s
}

func (s *scalar) Sub(a, b kyber.Scalar) kyber.Scalar {
	s.v.Sub(&toScalar(a).v, &toScalar(b).v)
	return s
}

func (s *scalar) Neg(a kyber.Scalar) kyber.Scalar {
	s.v.Neg(&toScalar(a).v)
	return s
}

func (s *scalar) Mul(a, b kyber.Scalar) kyber.Scalar {
	s.v.Mul(&toScalar(a).v, &toScalar(b).v)
	return s
}

func (s *scalar) Div(a, b kyber.Scalar) kyber.Scalar {
	s.v.Div(&toScalar(a).v, &toScalar(b).v)
	return s
}

func (s *scalar) Inv(a kyber.Scalar) kyber.Scalar {
	s.v.Inverse(&toScalar(a).v)
	return s
}

func (s *scalar) Pick(rand cipher.Stream) kyber.Scalar {
	s.v.SetBigInt(random.Int(fr.Modulus(), rand))
	return s
}

// SetBytes interprets buf as a big-endian integer reduced modulo the order.
func (s *scalar) SetBytes(buf []byte) kyber.Scalar {
	s.v.SetBigInt(new(big.Int).SetBytes(buf))
	return s
}

func (s *scalar) bigInt() *big.Int {
	return s.v.BigInt(new(big.Int))
}

func (s *scalar) MarshalBinary() ([]byte, error) {
	b := s.v.Bytes()
	return b[:], nil
}

func (s *scalar) UnmarshalBinary(buf []byte) error {
	if len(buf) != ScalarSize {
		return errScalarLength
	}
	n := new(big.Int).SetBytes(buf)
	if n.Cmp(fr.Modulus()) >= 0 {
		return errScalarRange
	}
	s.v.SetBigInt(n)
	return nil
}

func (s *scalar) MarshalSize() int { return ScalarSize }

func (s *scalar) MarshalTo(w io.Writer) (int, error) {
	buf, _ := s.MarshalBinary()
	return w.Write(buf)
}

func (s *scalar) UnmarshalFrom(r io.Reader) (int, error) {
	buf := make([]byte, ScalarSize)
	n, err := io.ReadFull(r, buf)
	if err != nil {
		return n, err
	}
	return n, s.UnmarshalBinary(buf)
}

func (s *scalar) String() string {
	buf, _ := s.MarshalBinary()
	return hex.EncodeToString(buf)
}

type point struct {
	p secp256k1.G1Jac
}

func toPoint(p kyber.Point) *point {
	return p.(*point)
}

func (p *point) affine() secp256k1.G1Affine {
	var a secp256k1.G1Affine
	a.FromJacobian(&p.p)
	return a
}

func (p *point) Equal(o kyber.Point) bool {
	a, b := p.affine(), toPoint(o).affine()
	if a.IsInfinity() || b.IsInfinity() {
		return a.IsInfinity() == b.IsInfinity()
	}
	return a.X.Equal(&b.X) && a.Y.Equal(&b.Y)
}

func (p *point) Null() kyber.Point {
	p.p.FromAffine(&secp256k1.G1Affine{})
	return p
}

func (p *point) Base() kyber.Point {
	g, _ := secp256k1.Generators()
	p.p.Set(&g)
	return p
}

func (p *point) Pick(rand cipher.Stream) kyber.Point {
	return p.Mul(new(scalar).Pick(rand), nil)
}

func (p *point) Set(o kyber.Point) kyber.Point {
	p.p.Set(&toPoint(o).p)
	return p
}

func (p *point) Clone() kyber.Point {
	c := new(point)
	c.p.Set(&p.p)
	return c
}

// EmbedLen leaves one byte for the length and two for the search counter.
func (p *point) EmbedLen() int {
	return fp.Bytes - 3
}

// Embed hides data in the x coordinate: byte 0 holds the length, the data
// follows, and the remaining bytes are random until x lands on the curve.
func (p *point) Embed(data []byte, rand cipher.Stream) kyber.Point {
	dl := len(data)
	if dl > p.EmbedLen() {
		dl = p.EmbedLen()
	}
	for {
		buf := make([]byte, fp.Bytes)
		rand.XORKeyStream(buf, buf)
		if data != nil {
			buf[0] = byte(dl)
			copy(buf[1:1+dl], data[:dl])
		} else {
			buf[0] = 0
		}
		x := new(big.Int).SetBytes(buf)
		if x.Cmp(fp.Modulus()) >= 0 {
			continue
		}
		var a secp256k1.G1Affine
		a.X.SetBigInt(x)
		if !solveY(&a, buf[fp.Bytes-1]&1 == 1) {
			continue
		}
		p.p.FromAffine(&a)
		return p
	}
}

func (p *point) Data() ([]byte, error) {
	a := p.affine()
	buf := a.X.Bytes()
	dl := int(buf[0])
	if dl > p.EmbedLen() {
		return nil, errEmbedLength
	}
	return append([]byte(nil), buf[1:1+dl]...), nil
}

func (p *point) Add(a, b kyber.Point) kyber.Point {
	sum := toPoint(a).p
	sum.AddAssign(&toPoint(b).p)
	p.p = sum
	return p
}

func (p *point) Sub(a, b kyber.Point) kyber.Point {
	diff := toPoint(a).p
	diff.SubAssign(&toPoint(b).p)
	p.p = diff
	return p
}

func (p *point) Neg(a kyber.Point) kyber.Point {
	p.p.Neg(&toPoint(a).p)
	return p
}

// Mul sets p to s * q, or s times the generator when q is nil.
func (p *point) Mul(s kyber.Scalar, q kyber.Point) kyber.Point {
	var base secp256k1.G1Jac
	if q == nil {
		base, _ = secp256k1.Generators()
	} else {
		base = toPoint(q).p
	}
	var res secp256k1.G1Jac
	res.ScalarMultiplication(&base, toScalar(s).bigInt())
	p.p = res
	return p
}

func (p *point) MarshalBinary() ([]byte, error) {
	out := make([]byte, PointSize)
	a := p.affine()
	if a.IsInfinity() {
		return out, nil
	}
	x := a.X.Bytes()
	y := a.Y.Bytes()
	out[0] = 0x02 | (y[fp.Bytes-1] & 1)
	copy(out[1:], x[:])
	return out, nil
}

func (p *point) UnmarshalBinary(buf []byte) error {
	if len(buf) != PointSize {
		return errPointLength
	}
	if isZero(buf) {
		p.Null()
		return nil
	}
	if buf[0] != 0x02 && buf[0] != 0x03 {
		return errPointPrefix
	}
	x := new(big.Int).SetBytes(buf[1:])
	if x.Cmp(fp.Modulus()) >= 0 {
		return errNotOnCurve
	}
	var a secp256k1.G1Affine
	a.X.SetBigInt(x)
	if !solveY(&a, buf[0] == 0x03) {
		return errNotOnCurve
	}
	p.p.FromAffine(&a)
	return nil
}

func (p *point) MarshalSize() int { return PointSize }

func (p *point) MarshalTo(w io.Writer) (int, error) {
	buf, _ := p.MarshalBinary()
	return w.Write(buf)
}

func (p *point) UnmarshalFrom(r io.Reader) (int, error) {
	buf := make([]byte, PointSize)
	n, err := io.ReadFull(r, buf)
	if err != nil {
		return n, err
	}
	return n, p.UnmarshalBinary(buf)
}

func (p *point) String() string {
	buf, _ := p.MarshalBinary()
	return hex.EncodeToString(buf)
}

// solveY completes a.X with the y coordinate of the requested parity using
// y^2 = x^3 + 7. It reports false when x is not the abscissa of a point.
func solveY(a *secp256k1.G1Affine, odd bool) bool {
	var rhs, seven fp.Element
	seven.SetUint64(7)
	rhs.Square(&a.X)
	rhs.Mul(&rhs, &a.X)
	rhs.Add(&rhs, &seven)
	if a.Y.Sqrt(&rhs) == nil {
		return false
	}
	y := a.Y.Bytes()
	if (y[fp.Bytes-1]&1 == 1) != odd {
		a.Y.Neg(&a.Y)
	}
	return a.IsOnCurve()
}

func isZero(buf []byte) bool {
	for _, b := range buf {
		if b != 0 {
			return false
		}
	}
	return true
}
