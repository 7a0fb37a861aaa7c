package crypto

import (
	"crypto/cipher"
	"crypto/subtle"
	"encoding/hex"
	"fmt"

	"github.com/drand/kyber"

	"github.com/zutxo/sigma/crypto/gf2192"
)

// SoundnessBits is the bit length of a challenge. A cheating prover succeeds
// with probability 2^-SoundnessBits. It must stay below the bit length of the
// group order and equal to the width of the threshold field.
const SoundnessBits = 192

// ChallengeSize is the byte length of a challenge.
const ChallengeSize = SoundnessBits / 8

// Challenge is the verifier's message of a sigma protocol round.
type Challenge [ChallengeSize]byte

// ChallengeFromBytes copies b into a challenge.
func ChallengeFromBytes(b []byte) (Challenge, error) {
	var c Challenge
	if len(b) != ChallengeSize {
		return c, fmt.Errorf("challenge must be %d bytes, got %d", ChallengeSize, len(b))
	}
	copy(c[:], b)
	return c, nil
}

// FiatShamirChallenge derives the challenge from the transcript bytes: the
// first ChallengeSize bytes of their blake2b-256 digest.
func FiatShamirChallenge(transcript []byte) Challenge {
	digest := Blake2b256(transcript)
	var c Challenge
	copy(c[:], digest[:ChallengeSize])
	return c
}

// RandomChallenge draws a uniformly random challenge.
func RandomChallenge(rand cipher.Stream) Challenge {
	var c Challenge
	rand.XORKeyStream(c[:], c[:])
	return c
}

// Xor returns c XOR o.
func (c Challenge) Xor(o Challenge) Challenge {
	var r Challenge
	for i := range c {
		r[i] = c[i] ^ o[i]
	}
	return r
}

// Equal compares two challenges in constant time.
func (c Challenge) Equal(o Challenge) bool {
	return subtle.ConstantTimeCompare(c[:], o[:]) == 1
}

// Element maps the challenge to GF(2^192).
func (c Challenge) Element() gf2192.Element {
	e, _ := gf2192.FromBytes(c[:])
	return e
}

// ChallengeFromElement maps a field element back to a challenge.
func ChallengeFromElement(e gf2192.Element) Challenge {
	return Challenge(e.Bytes())
}

// Scalar interprets the challenge as a big-endian unsigned integer in the
// scalar field of g. Since SoundnessBits is smaller than the bit length of
// every supported group order, no reduction happens.
func (c Challenge) Scalar(g kyber.Group) kyber.Scalar {
	return ScalarFromBytes(g, c[:])
}

// ScalarFromBytes interprets b as a big-endian unsigned integer reduced
// modulo the order of g, whatever the byte order g uses for its own
// encoding.
func ScalarFromBytes(g kyber.Group, b []byte) kyber.Scalar {
	acc := g.Scalar().Zero()
	radix := g.Scalar().SetInt64(256)
	digit := g.Scalar()
	for _, x := range b {
		acc.Mul(acc, radix)
		acc.Add(acc, digit.SetInt64(int64(x)))
	}
	return acc
}

func (c Challenge) String() string {
	return hex.EncodeToString(c[:])
}
