// Package proof implements the prover and the verifier of sigma propositions.
//
// A proposition is proven by rewriting it as an arena of nodes laid out in
// pre-order, so that a parent always precedes its children. Every pass over
// the tree is a loop over the arena: bottom-up passes iterate indices in
// descending order and top-down passes in ascending order. The prover
//
//  1. marks the nodes it can prove as real,
//  2. checks that the root is real,
//  3. polishes the marks so that a real OR has exactly one real child and a
//     real threshold exactly k,
//  4. assigns challenges to simulated nodes and commits at every leaf,
//  5. derives the root challenge from the Fiat-Shamir transcript,
//  6. propagates it to the real nodes and answers at the real leaves,
//  7. serializes what the verifier cannot recompute.
//
// The verifier parses the proof against the proposition, recomputes every
// commitment from its challenge and response and checks the root challenge
// against the transcript.
package proof

import (
	"fmt"

	"github.com/drand/kyber"

	"github.com/zutxo/sigma/crypto"
	"github.com/zutxo/sigma/crypto/gf2192"
	"github.com/zutxo/sigma/sigma"
)

type kind uint8

const (
	kindDlog kind = iota
	kindDHTuple
	kindAnd
	kindOr
	kindThreshold
)

// transcript type bytes of the connectives
func (k kind) connectiveByte() byte {
	switch k {
	case kindOr:
		return 1
	case kindThreshold:
		return 2
	default:
		return 0
	}
}

type node struct {
	prop     sigma.SigmaBoolean
	key      string
	kind     kind
	k        int
	parent   int
	children []int
	pos      sigma.Position

	real         bool
	challenge    crypto.Challenge
	hasChallenge bool
	poly         *gf2192.Poly

	randomness kyber.Scalar
	commitment Commitment
	response   kyber.Scalar
}

func (n *node) isLeaf() bool {
	return n.kind == kindDlog || n.kind == kindDHTuple
}

// childIndex is the rank of n among its siblings.
func (n *node) childIndex() int {
	return n.pos[len(n.pos)-1]
}

func (n *node) setChallenge(c crypto.Challenge) {
	n.challenge = c
	n.hasChallenge = true
}

type arena struct {
	group kyber.Group
	nodes []node
}

// newArena lays sb out in pre-order.
func newArena(g kyber.Group, sb sigma.SigmaBoolean) (*arena, error) {
	type frame struct {
		sb     sigma.SigmaBoolean
		parent int
		pos    sigma.Position
	}
	a := &arena{group: g}
	stack := []frame{{sb: sb, parent: -1, pos: sigma.RootPosition}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		n := node{prop: f.sb, parent: f.parent, pos: f.pos}
		switch p := f.sb.(type) {
		case sigma.ProveDlog:
			n.kind = kindDlog
		case sigma.ProveDHTuple:
			n.kind = kindDHTuple
		case sigma.CAnd:
			n.kind = kindAnd
		case sigma.COr:
			n.kind = kindOr
		case sigma.CThreshold:
			n.kind = kindThreshold
			n.k = p.K
		default:
			return nil, fmt.Errorf("%w: %s at %s", ErrUnsupportedProposition, f.sb, f.pos)
		}
		children := sigma.Children(f.sb)
		if n.isLeaf() {
			n.key = leafKey(f.sb)
			if n.key == "" {
				return nil, fmt.Errorf("%w: leaf at %s does not encode", ErrUnsupportedProposition, f.pos)
			}
		} else if len(children) == 0 {
			return nil, fmt.Errorf("%w: %v at %s", ErrUnsupportedProposition, sigma.ErrNoChildren, f.pos)
		}
		if n.kind == kindThreshold && (len(children) > sigma.MaxChildren || n.k < 1 || n.k > len(children)) {
			return nil, fmt.Errorf("%w: threshold %d of %d at %s", ErrUnsupportedProposition, n.k, len(children), f.pos)
		}

		idx := len(a.nodes)
		a.nodes = append(a.nodes, n)
		if f.parent >= 0 {
			a.nodes[f.parent].children = append(a.nodes[f.parent].children, idx)
		}
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, frame{sb: children[i], parent: idx, pos: f.pos.Child(i)})
		}
	}
	return a, nil
}

func (a *arena) root() *node { return &a.nodes[0] }

func (a *arena) lastChild(parent *node, idx int) bool {
	return parent.children[len(parent.children)-1] == idx
}

// commit returns the first message of a real leaf for randomness r.
func commit(g kyber.Group, leaf sigma.SigmaBoolean, r kyber.Scalar) Commitment {
	switch p := leaf.(type) {
	case sigma.ProveDHTuple:
		return Commitment{A: g.Point().Mul(r, p.G), B: g.Point().Mul(r, p.H)}
	default:
		return Commitment{A: g.Point().Mul(r, nil)}
	}
}

// respond returns z = r + e*w.
func respond(g kyber.Group, r, w, e kyber.Scalar) kyber.Scalar {
	ew := g.Scalar().Mul(e, w)
	return g.Scalar().Add(r, ew)
}

// commitmentFromResponse solves the verification equation of leaf for the
// commitment: a = g^z * h^-e for a discrete log, and the same over both
// bases for a DH tuple.
func commitmentFromResponse(g kyber.Group, leaf sigma.SigmaBoolean, e, z kyber.Scalar) Commitment {
	switch p := leaf.(type) {
	case sigma.ProveDHTuple:
		return Commitment{A: backward(g, p.G, p.U, e, z), B: backward(g, p.H, p.V, e, z)}
	case sigma.ProveDlog:
		return Commitment{A: backward(g, nil, p.H, e, z)}
	default:
		return Commitment{}
	}
}

func backward(g kyber.Group, base, image kyber.Point, e, z kyber.Scalar) kyber.Point {
	gz := g.Point().Mul(z, base)
	he := g.Point().Mul(e, image)
	return gz.Sub(gz, he)
}
