package proof

import (
	"bytes"
	"fmt"
	"io"

	"github.com/drand/kyber"

	"github.com/zutxo/sigma/crypto"
	"github.com/zutxo/sigma/crypto/gf2192"
	"github.com/zutxo/sigma/sigma"
)

// serialize writes the root challenge, then in pre-order: the challenge of
// every child of an OR but the last one, the non-constant coefficients of
// every threshold polynomial and the response of every leaf.
func (a *arena) serialize() ([]byte, error) {
	var buf bytes.Buffer
	root := a.root()
	buf.Write(root.challenge[:])
	for i := range a.nodes {
		n := &a.nodes[i]
		if i > 0 {
			p := &a.nodes[n.parent]
			if p.kind == kindOr && !a.lastChild(p, i) {
				buf.Write(n.challenge[:])
			}
		}
		switch {
		case n.kind == kindThreshold:
			if n.poly == nil {
				return nil, fmt.Errorf("threshold at %s has no polynomial", n.pos)
			}
			buf.Write(n.poly.NonConstantBytes())
		case n.isLeaf():
			if n.response == nil {
				return nil, fmt.Errorf("leaf at %s has no response", n.pos)
			}
			if _, err := n.response.MarshalTo(&buf); err != nil {
				return nil, err
			}
		}
	}
	return buf.Bytes(), nil
}

// parseProof reads b against sb and assigns every node its challenge and
// every leaf its response. Commitments are left to the caller.
func parseProof(g kyber.Group, sb sigma.SigmaBoolean, b []byte) (*arena, error) {
	a, err := newArena(g, sb)
	if err != nil {
		return nil, err
	}
	r := bytes.NewReader(b)
	readChallenge := func() (crypto.Challenge, error) {
		var c crypto.Challenge
		if _, err := io.ReadFull(r, c[:]); err != nil {
			return c, fmt.Errorf("%w: challenge: %v", ErrMalformedProof, err)
		}
		return c, nil
	}

	for i := range a.nodes {
		n := &a.nodes[i]
		if i == 0 {
			c, err := readChallenge()
			if err != nil {
				return nil, err
			}
			n.setChallenge(c)
		} else {
			p := &a.nodes[n.parent]
			switch p.kind {
			case kindAnd:
				n.setChallenge(p.challenge)
			case kindOr:
				if !a.lastChild(p, i) {
					c, err := readChallenge()
					if err != nil {
						return nil, err
					}
					n.setChallenge(c)
					break
				}
				c := p.challenge
				for _, s := range p.children[:len(p.children)-1] {
					c = c.Xor(a.nodes[s].challenge)
				}
				n.setChallenge(c)
			case kindThreshold:
				n.setChallenge(crypto.ChallengeFromElement(p.poly.EvalByte(byte(n.childIndex() + 1))))
			}
		}

		switch {
		case n.kind == kindThreshold:
			degree := len(n.children) - n.k
			coeffs := make([]byte, degree*gf2192.Size)
			if _, err := io.ReadFull(r, coeffs); err != nil {
				return nil, fmt.Errorf("%w: threshold polynomial at %s: %v", ErrMalformedProof, n.pos, err)
			}
			poly, err := gf2192.FromNonConstantBytes(degree, n.challenge.Element(), coeffs)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrMalformedProof, err)
			}
			n.poly = poly
		case n.isLeaf():
			z := g.Scalar()
			if _, err := z.UnmarshalFrom(r); err != nil {
				return nil, fmt.Errorf("%w: response at %s: %v", ErrMalformedProof, n.pos, err)
			}
			n.response = z
		}
	}
	if r.Len() != 0 {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrMalformedProof, r.Len())
	}
	return a, nil
}

// UncheckedLeaf is a leaf of a parsed proof.
type UncheckedLeaf struct {
	Image      sigma.SigmaBoolean
	Position   sigma.Position
	Challenge  crypto.Challenge
	Response   kyber.Scalar
	Commitment Commitment
}

// UncheckedTree is a parsed proof whose commitments have been recomputed
// but whose root challenge has not been checked.
type UncheckedTree struct {
	Challenge crypto.Challenge
	Leaves    []UncheckedLeaf
	arena     *arena
}

// ParseProof parses b as a proof of sb and recomputes the commitments of its
// leaves. Errors wrap ErrMalformedProof.
func ParseProof(g kyber.Group, sb sigma.SigmaBoolean, b []byte) (*UncheckedTree, error) {
	a, err := parseProof(g, sb, b)
	if err != nil {
		return nil, err
	}
	a.computeCommitments()
	t := &UncheckedTree{Challenge: a.root().challenge, arena: a}
	for i := range a.nodes {
		n := &a.nodes[i]
		if !n.isLeaf() {
			continue
		}
		t.Leaves = append(t.Leaves, UncheckedLeaf{
			Image:      n.prop,
			Position:   n.pos,
			Challenge:  n.challenge,
			Response:   n.response,
			Commitment: n.commitment,
		})
	}
	return t, nil
}

func (a *arena) computeCommitments() {
	for i := range a.nodes {
		n := &a.nodes[i]
		if n.isLeaf() {
			n.commitment = commitmentFromResponse(a.group, n.prop, n.challenge.Scalar(a.group), n.response)
		}
	}
}
