package gf2192

import (
	"crypto/cipher"
	"errors"
	"fmt"
)

// ErrDuplicatePoint is returned by Interpolate when two evaluation points
// coincide or a point equals zero.
var ErrDuplicatePoint = errors.New("gf2192: interpolation points must be distinct and nonzero")

// Poly is a polynomial over GF(2^192). Coeffs[i] is the coefficient of x^i.
type Poly struct {
	Coeffs []Element
}

// Degree returns the formal degree of p, that is len(Coeffs) - 1.
func (p *Poly) Degree() int {
	return len(p.Coeffs) - 1
}

// Eval evaluates p at x with Horner's rule.
func (p *Poly) Eval(x Element) Element {
	res := Zero
	for i := len(p.Coeffs) - 1; i >= 0; i-- {
		res = Add(Mul(res, x), p.Coeffs[i])
	}
	return res
}

// EvalByte evaluates p at the small point b.
func (p *Poly) EvalByte(b byte) Element {
	return p.Eval(FromByte(b))
}

// Constant returns the value of p at zero.
func (p *Poly) Constant() Element {
	if len(p.Coeffs) == 0 {
		return Zero
	}
	return p.Coeffs[0]
}

// NonConstantBytes encodes coefficients 1..degree, each in Size bytes. The
// constant term is omitted because it is always known to the reader.
func (p *Poly) NonConstantBytes() []byte {
	if len(p.Coeffs) < 2 {
		return nil
	}
	out := make([]byte, 0, (len(p.Coeffs)-1)*Size)
	for _, c := range p.Coeffs[1:] {
		b := c.Bytes()
		out = append(out, b[:]...)
	}
	return out
}

// FromNonConstantBytes rebuilds a polynomial of the given degree from its
// constant term and the encoding produced by NonConstantBytes.
func FromNonConstantBytes(degree int, constant Element, b []byte) (*Poly, error) {
	if degree < 0 {
		return nil, fmt.Errorf("gf2192: negative degree %d", degree)
	}
	if len(b) != degree*Size {
		return nil, fmt.Errorf("gf2192: degree %d polynomial needs %d bytes, got %d", degree, degree*Size, len(b))
	}
	coeffs := make([]Element, degree+1)
	coeffs[0] = constant
	for i := 1; i <= degree; i++ {
		e, err := FromBytes(b[(i-1)*Size : i*Size])
		if err != nil {
			return nil, err
		}
		coeffs[i] = e
	}
	return &Poly{Coeffs: coeffs}, nil
}

// RandomPoly returns a polynomial of the given degree with the prescribed
// constant term and coefficients read from rand.
func RandomPoly(degree int, constant Element, rand cipher.Stream) *Poly {
	coeffs := make([]Element, degree+1)
	coeffs[0] = constant
	buf := make([]byte, Size)
	for i := 1; i <= degree; i++ {
		for j := range buf {
			buf[j] = 0
		}
		rand.XORKeyStream(buf, buf)
		coeffs[i], _ = FromBytes(buf)
	}
	return &Poly{Coeffs: coeffs}
}

// Interpolate returns the unique polynomial of degree len(points) that takes
// valueAt0 at zero and values[i] at points[i]. Points must be distinct and
// nonzero.
func Interpolate(points []byte, values []Element, valueAt0 Element) (*Poly, error) {
	if len(points) != len(values) {
		return nil, fmt.Errorf("gf2192: %d points but %d values", len(points), len(values))
	}
	seen := make(map[byte]struct{}, len(points))
	for _, p := range points {
		if _, dup := seen[p]; dup || p == 0 {
			return nil, ErrDuplicatePoint
		}
		seen[p] = struct{}{}
	}

	xs := make([]Element, 0, len(points)+1)
	ys := make([]Element, 0, len(points)+1)
	xs = append(xs, Zero)
	ys = append(ys, valueAt0)
	for i, p := range points {
		xs = append(xs, FromByte(p))
		ys = append(ys, values[i])
	}

	n := len(xs)
	res := make([]Element, n)
	for i := 0; i < n; i++ {
		// basis polynomial prod_{j != i} (x - x_j) / (x_i - x_j)
		num := []Element{One}
		denom := One
		for j := 0; j < n; j++ {
			if j == i {
				continue
			}
			num = mulLinear(num, xs[j])
			denom = Mul(denom, Add(xs[i], xs[j]))
		}
		inv, err := Inv(denom)
		if err != nil {
			return nil, err
		}
		scale := Mul(ys[i], inv)
		for k := range num {
			res[k] = Add(res[k], Mul(num[k], scale))
		}
	}
	return &Poly{Coeffs: res}, nil
}

// mulLinear returns p * (x + c).
func mulLinear(p []Element, c Element) []Element {
	out := make([]Element, len(p)+1)
	for k, coeff := range p {
		out[k+1] = Add(out[k+1], coeff)
		out[k] = Add(out[k], Mul(coeff, c))
	}
	return out
}
