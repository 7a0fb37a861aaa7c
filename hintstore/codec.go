package hintstore

import (
	"errors"
	"fmt"

	"github.com/drand/kyber"
	json "github.com/nikkolasg/hexjson"

	"github.com/zutxo/sigma/crypto"
	"github.com/zutxo/sigma/proof"
	"github.com/zutxo/sigma/sigma"
)

// Hint type tags of the JSON encoding.
const (
	ownCommitment       = "own_commitment"
	realCommitment      = "real_commitment"
	simulatedCommitment = "simulated_commitment"
	realProof           = "real_proof"
	simulatedProof      = "simulated_proof"
)

// ErrUnknownHint is returned when decoding a hint of an unknown type.
var ErrUnknownHint = errors.New("unknown hint type")

// hintJSON is the JSON representation of a hint. Byte fields are hex
// encoded.
type hintJSON struct {
	Type       string `json:"type"`
	Image      []byte `json:"image"`
	Position   string `json:"position"`
	Challenge  []byte `json:"challenge,omitempty"`
	Response   []byte `json:"response,omitempty"`
	Randomness []byte `json:"randomness,omitempty"`
	A          []byte `json:"a"`
	B          []byte `json:"b,omitempty"`
}

type bagJSON struct {
	Hints []hintJSON `json:"hints"`
}

// MarshalBag returns the JSON encoding of bag.
func MarshalBag(bag *proof.HintsBag) ([]byte, error) {
	out := bagJSON{Hints: make([]hintJSON, 0, bag.Len())}
	if bag != nil {
		for _, h := range bag.Hints {
			hj, err := encodeHint(h)
			if err != nil {
				return nil, err
			}
			out.Hints = append(out.Hints, hj)
		}
	}
	return json.Marshal(out)
}

// UnmarshalBag decodes a bag written by MarshalBag. Points and scalars are
// decoded in g.
func UnmarshalBag(g kyber.Group, b []byte) (*proof.HintsBag, error) {
	var in bagJSON
	if err := json.Unmarshal(b, &in); err != nil {
		return nil, err
	}
	bag := proof.NewHintsBag()
	for i, hj := range in.Hints {
		h, err := decodeHint(g, hj)
		if err != nil {
			return nil, fmt.Errorf("hint %d: %w", i, err)
		}
		bag.Add(h)
	}
	return bag, nil
}

func encodeHint(h proof.Hint) (hintJSON, error) {
	t := h.HintTarget()
	img, err := sigma.Bytes(t.Image)
	if err != nil {
		return hintJSON{}, err
	}
	hj := hintJSON{Image: img, Position: t.Position.String()}
	var c proof.Commitment
	switch v := h.(type) {
	case proof.OwnCommitment:
		hj.Type = ownCommitment
		if hj.Randomness, err = v.Randomness.MarshalBinary(); err != nil {
			return hj, err
		}
		c = v.Commitment
	case proof.RealCommitment:
		hj.Type = realCommitment
		c = v.Commitment
	case proof.SimulatedCommitment:
		hj.Type = simulatedCommitment
		c = v.Commitment
	case proof.RealSecretProof:
		hj.Type = realProof
		hj.Challenge = v.Challenge[:]
		if hj.Response, err = v.Response.MarshalBinary(); err != nil {
			return hj, err
		}
		c = v.Commitment
	case proof.SimulatedSecretProof:
		hj.Type = simulatedProof
		hj.Challenge = v.Challenge[:]
		if hj.Response, err = v.Response.MarshalBinary(); err != nil {
			return hj, err
		}
		c = v.Commitment
	default:
		return hj, fmt.Errorf("%w: %T", ErrUnknownHint, h)
	}
	if hj.A, err = c.A.MarshalBinary(); err != nil {
		return hj, err
	}
	if c.B != nil {
		if hj.B, err = c.B.MarshalBinary(); err != nil {
			return hj, err
		}
	}
	return hj, nil
}

func decodeHint(g kyber.Group, hj hintJSON) (proof.Hint, error) {
	img, err := sigma.Parse(g, hj.Image)
	if err != nil {
		return nil, err
	}
	pos, err := sigma.ParsePosition(hj.Position)
	if err != nil {
		return nil, err
	}
	target := proof.Target{Image: img, Position: pos}

	var c proof.Commitment
	if c.A, err = point(g, hj.A); err != nil {
		return nil, fmt.Errorf("commitment: %w", err)
	}
	if len(hj.B) > 0 {
		if c.B, err = point(g, hj.B); err != nil {
			return nil, fmt.Errorf("commitment: %w", err)
		}
	}

	switch hj.Type {
	case ownCommitment:
		r, err := scalar(g, hj.Randomness)
		if err != nil {
			return nil, fmt.Errorf("randomness: %w", err)
		}
		return proof.OwnCommitment{Target: target, Randomness: r, Commitment: c}, nil
	case realCommitment:
		return proof.RealCommitment{Target: target, Commitment: c}, nil
	case simulatedCommitment:
		return proof.SimulatedCommitment{Target: target, Commitment: c}, nil
	case realProof, simulatedProof:
		ch, err := crypto.ChallengeFromBytes(hj.Challenge)
		if err != nil {
			return nil, err
		}
		z, err := scalar(g, hj.Response)
		if err != nil {
			return nil, fmt.Errorf("response: %w", err)
		}
		if hj.Type == realProof {
			return proof.RealSecretProof{Target: target, Challenge: ch, Response: z, Commitment: c}, nil
		}
		return proof.SimulatedSecretProof{Target: target, Challenge: ch, Response: z, Commitment: c}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownHint, hj.Type)
	}
}

func point(g kyber.Group, b []byte) (kyber.Point, error) {
	p := g.Point()
	return p, p.UnmarshalBinary(b)
}

func scalar(g kyber.Group, b []byte) (kyber.Scalar, error) {
	s := g.Scalar()
	return s, s.UnmarshalBinary(b)
}
