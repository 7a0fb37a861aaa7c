package proof

import (
	"crypto/cipher"

	"github.com/drand/kyber"

	"github.com/zutxo/sigma/sigma"
)

// Secret is the witness of one leaf proposition.
type Secret interface {
	// Image is the leaf proven with this secret.
	Image() sigma.SigmaBoolean
	// Witness is the discrete logarithm.
	Witness() kyber.Scalar
}

// DLogSecret is a discrete logarithm w of H = g^w.
type DLogSecret struct {
	W kyber.Scalar
	H kyber.Point
}

// NewDLogSecret returns the secret w with its public image.
func NewDLogSecret(g kyber.Group, w kyber.Scalar) *DLogSecret {
	return &DLogSecret{W: w, H: g.Point().Mul(w, nil)}
}

// RandomDLogSecret draws a fresh secret.
func RandomDLogSecret(g kyber.Group, rand cipher.Stream) *DLogSecret {
	return NewDLogSecret(g, g.Scalar().Pick(rand))
}

func (s *DLogSecret) Image() sigma.SigmaBoolean { return sigma.ProveDlog{H: s.H} }
func (s *DLogSecret) Witness() kyber.Scalar     { return s.W }

// DHTupleSecret is the common discrete logarithm w of U = G^w and V = H^w.
type DHTupleSecret struct {
	W          kyber.Scalar
	G, H, U, V kyber.Point
}

// NewDHTupleSecret returns the secret w over the bases gen and h.
func NewDHTupleSecret(g kyber.Group, w kyber.Scalar, gen, h kyber.Point) *DHTupleSecret {
	return &DHTupleSecret{
		W: w,
		G: gen,
		H: h,
		U: g.Point().Mul(w, gen),
		V: g.Point().Mul(w, h),
	}
}

// RandomDHTupleSecret draws a fresh secret over the group generator and a
// random second base.
func RandomDHTupleSecret(g kyber.Group, rand cipher.Stream) *DHTupleSecret {
	return NewDHTupleSecret(g, g.Scalar().Pick(rand), g.Point().Base(), g.Point().Pick(rand))
}

func (s *DHTupleSecret) Image() sigma.SigmaBoolean {
	return sigma.ProveDHTuple{G: s.G, H: s.H, U: s.U, V: s.V}
}

func (s *DHTupleSecret) Witness() kyber.Scalar { return s.W }

// leafKey identifies a leaf by its canonical bytes.
func leafKey(leaf sigma.SigmaBoolean) string {
	b, err := sigma.Bytes(leaf)
	if err != nil {
		return ""
	}
	return string(b)
}

type secretSet map[string]Secret

func newSecretSet(secrets []Secret) secretSet {
	s := make(secretSet, len(secrets))
	for _, sec := range secrets {
		s[leafKey(sec.Image())] = sec
	}
	return s
}

func (s secretSet) find(leaf sigma.SigmaBoolean) (Secret, bool) {
	sec, ok := s[leafKey(leaf)]
	return sec, ok
}
