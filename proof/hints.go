package proof

import (
	"github.com/drand/kyber"

	"github.com/zutxo/sigma/crypto"
	"github.com/zutxo/sigma/sigma"
)

// Commitment is the first message of a leaf protocol. B is only set for
// DH tuples.
type Commitment struct {
	A, B kyber.Point
}

// Bytes returns the encoding hashed into the Fiat-Shamir challenge.
func (c Commitment) Bytes() ([]byte, error) {
	out, err := c.A.MarshalBinary()
	if err != nil {
		return nil, err
	}
	if c.B != nil {
		b, err := c.B.MarshalBinary()
		if err != nil {
			return nil, err
		}
		out = append(out, b...)
	}
	return out, nil
}

// Target is the leaf a hint applies to and its position in the tree.
type Target struct {
	Image    sigma.SigmaBoolean
	Position sigma.Position
}

// HintTarget implements Hint.
func (t Target) HintTarget() Target { return t }

func (t Target) matches(key string, pos sigma.Position) bool {
	return leafKey(t.Image) == key && t.Position.Equal(pos)
}

// Hint is a piece of proving material supplied from outside the prover,
// typically by co-signers.
type Hint interface {
	HintTarget() Target
}

// OwnCommitment is a commitment together with its randomness. It must never
// leave the party that generated it.
type OwnCommitment struct {
	Target
	Randomness kyber.Scalar
	Commitment Commitment
}

// RealCommitment is the commitment of a co-signer for a leaf it proves.
type RealCommitment struct {
	Target
	Commitment Commitment
}

// SimulatedCommitment is the commitment of a simulated leaf.
type SimulatedCommitment struct {
	Target
	Commitment Commitment
}

// RealSecretProof is the transcript of a leaf proven by a co-signer.
type RealSecretProof struct {
	Target
	Challenge  crypto.Challenge
	Response   kyber.Scalar
	Commitment Commitment
}

// SimulatedSecretProof is the transcript of a simulated leaf.
type SimulatedSecretProof struct {
	Target
	Challenge  crypto.Challenge
	Response   kyber.Scalar
	Commitment Commitment
}

// HintsBag holds hints for one proving call. The zero value is empty and
// ready to use.
type HintsBag struct {
	Hints []Hint
}

// NewHintsBag returns a bag holding hints.
func NewHintsBag(hints ...Hint) *HintsBag {
	return &HintsBag{Hints: hints}
}

// Add appends hints to the bag.
func (b *HintsBag) Add(hints ...Hint) {
	b.Hints = append(b.Hints, hints...)
}

// Merge returns a bag with the hints of b followed by those of o.
func (b *HintsBag) Merge(o *HintsBag) *HintsBag {
	out := &HintsBag{}
	if b != nil {
		out.Hints = append(out.Hints, b.Hints...)
	}
	if o != nil {
		out.Hints = append(out.Hints, o.Hints...)
	}
	return out
}

// Len returns the number of hints.
func (b *HintsBag) Len() int {
	if b == nil {
		return 0
	}
	return len(b.Hints)
}

// Filter returns a bag of the hints for which keep returns true.
func (b *HintsBag) Filter(keep func(Hint) bool) *HintsBag {
	out := &HintsBag{}
	if b == nil {
		return out
	}
	for _, h := range b.Hints {
		if keep(h) {
			out.Hints = append(out.Hints, h)
		}
	}
	return out
}

// Public drops the hints that hold secret randomness so that the result
// can be sent to co-signers.
func (b *HintsBag) Public() *HintsBag {
	return b.Filter(func(h Hint) bool {
		_, own := h.(OwnCommitment)
		return !own
	})
}

// ForImage returns the hints about leaf, whatever their position.
func (b *HintsBag) ForImage(leaf sigma.SigmaBoolean) *HintsBag {
	key := leafKey(leaf)
	return b.Filter(func(h Hint) bool {
		return leafKey(h.HintTarget().Image) == key
	})
}

// realImages returns the keys of the leaves a co-signer is known to prove.
func (b *HintsBag) realImages() map[string]bool {
	out := make(map[string]bool)
	if b == nil {
		return out
	}
	for _, h := range b.Hints {
		switch h.(type) {
		case RealCommitment, RealSecretProof:
			out[leafKey(h.HintTarget().Image)] = true
		}
	}
	return out
}

func (b *HintsBag) ownCommitment(key string, pos sigma.Position) (OwnCommitment, bool) {
	if b == nil {
		return OwnCommitment{}, false
	}
	for _, h := range b.Hints {
		if c, ok := h.(OwnCommitment); ok && c.matches(key, pos) {
			return c, true
		}
	}
	return OwnCommitment{}, false
}

func (b *HintsBag) realCommitment(key string, pos sigma.Position) (RealCommitment, bool) {
	if b == nil {
		return RealCommitment{}, false
	}
	for _, h := range b.Hints {
		if c, ok := h.(RealCommitment); ok && c.matches(key, pos) {
			return c, true
		}
	}
	return RealCommitment{}, false
}

func (b *HintsBag) realProof(key string, pos sigma.Position) (RealSecretProof, bool) {
	if b == nil {
		return RealSecretProof{}, false
	}
	for _, h := range b.Hints {
		if p, ok := h.(RealSecretProof); ok && p.matches(key, pos) {
			return p, true
		}
	}
	return RealSecretProof{}, false
}

func (b *HintsBag) simulatedProof(key string, pos sigma.Position) (SimulatedSecretProof, bool) {
	if b == nil {
		return SimulatedSecretProof{}, false
	}
	for _, h := range b.Hints {
		if p, ok := h.(SimulatedSecretProof); ok && p.matches(key, pos) {
			return p, true
		}
	}
	return SimulatedSecretProof{}, false
}
