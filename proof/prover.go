package proof

import (
	"crypto/cipher"
	"fmt"

	"github.com/drand/kyber"
	"github.com/drand/kyber/util/random"

	"github.com/zutxo/sigma/common/log"
	"github.com/zutxo/sigma/crypto"
	"github.com/zutxo/sigma/crypto/gf2192"
	"github.com/zutxo/sigma/sigma"
)

// Prover proves propositions with the secrets it holds. A Prover only reads
// its fields once built and can be shared between goroutines as long as its
// randomness stream can.
type Prover struct {
	group   kyber.Group
	secrets secretSet
	rand    cipher.Stream
	log     log.Logger
}

// ProverOption configures a Prover.
type ProverOption func(*Prover)

// WithRandomness sets the stream nonces and simulated challenges are drawn
// from.
func WithRandomness(s cipher.Stream) ProverOption {
	return func(p *Prover) {
		p.rand = s
	}
}

// WithLogger sets the logger of the prover.
func WithLogger(l log.Logger) ProverOption {
	return func(p *Prover) {
		p.log = l
	}
}

// NewProver returns a prover over g holding secrets.
func NewProver(g kyber.Group, secrets []Secret, opts ...ProverOption) *Prover {
	p := &Prover{
		group:   g,
		secrets: newSecretSet(secrets),
		rand:    random.New(),
		log:     log.Nop(),
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Knows reports whether the prover holds the secret of leaf.
func (p *Prover) Knows(leaf sigma.SigmaBoolean) bool {
	_, ok := p.secrets.find(leaf)
	return ok
}

// Prove returns a proof of sb bound to msg. Hints complete the leaves whose
// secrets are held by other parties.
func (p *Prover) Prove(sb sigma.SigmaBoolean, msg []byte, hints *HintsBag) ([]byte, error) {
	if t, ok := sb.(sigma.TrivialProp); ok {
		if t.Value {
			return []byte{}, nil
		}
		return nil, ErrReducedToFalse
	}
	a, err := newArena(p.group, sb)
	if err != nil {
		return nil, err
	}
	p.markReal(a, hints)
	if !a.root().real {
		return nil, ErrTreeRootIsNotReal
	}
	a.polish()
	if err := p.simulateAndCommit(a, hints); err != nil {
		return nil, err
	}
	root, err := a.fiatShamir(msg)
	if err != nil {
		return nil, err
	}
	a.root().setChallenge(root)
	if err := p.proveReal(a, hints); err != nil {
		return nil, err
	}
	return a.serialize()
}

// GenerateCommitments draws a commitment for every leaf of sb the prover
// holds the secret of. The result holds an OwnCommitment to keep and a
// RealCommitment to share per leaf.
func (p *Prover) GenerateCommitments(sb sigma.SigmaBoolean) (*HintsBag, error) {
	bag := &HintsBag{}
	if _, ok := sb.(sigma.TrivialProp); ok {
		return bag, nil
	}
	a, err := newArena(p.group, sb)
	if err != nil {
		return nil, err
	}
	for i := range a.nodes {
		n := &a.nodes[i]
		if !n.isLeaf() {
			continue
		}
		if !p.Knows(n.prop) {
			continue
		}
		r := p.group.Scalar().Pick(p.rand)
		c := commit(p.group, n.prop, r)
		target := Target{Image: n.prop, Position: n.pos}
		bag.Add(
			OwnCommitment{Target: target, Randomness: r, Commitment: c},
			RealCommitment{Target: target, Commitment: c},
		)
	}
	return bag, nil
}

// markReal marks bottom-up the nodes that can be proven.
func (p *Prover) markReal(a *arena, hints *HintsBag) {
	fromHints := hints.realImages()
	for i := len(a.nodes) - 1; i >= 0; i-- {
		n := &a.nodes[i]
		if n.isLeaf() {
			n.real = p.Knows(n.prop) || fromHints[n.key]
			continue
		}
		count := 0
		for _, c := range n.children {
			if a.nodes[c].real {
				count++
			}
		}
		switch n.kind {
		case kindAnd:
			n.real = count == len(n.children)
		case kindOr:
			n.real = count > 0
		case kindThreshold:
			n.real = count >= n.k
		}
	}
}

// polish leaves exactly one real child under a real OR and exactly k under a
// real threshold, keeping the first ones. Children of simulated nodes are
// simulated.
func (a *arena) polish() {
	for i := range a.nodes {
		n := &a.nodes[i]
		if n.isLeaf() {
			continue
		}
		quota := 0
		if n.real {
			switch n.kind {
			case kindAnd:
				quota = len(n.children)
			case kindOr:
				quota = 1
			case kindThreshold:
				quota = n.k
			}
		}
		for _, c := range n.children {
			child := &a.nodes[c]
			if !child.real {
				continue
			}
			if quota > 0 {
				quota--
				continue
			}
			child.real = false
		}
	}
}

// simulateAndCommit assigns top-down the challenges of the simulated nodes
// and computes the commitment of every leaf.
func (p *Prover) simulateAndCommit(a *arena, hints *HintsBag) error {
	for i := range a.nodes {
		n := &a.nodes[i]
		switch {
		case n.isLeaf() && n.real:
			if err := p.commitReal(n, hints); err != nil {
				return err
			}
		case n.isLeaf():
			if err := p.simulateLeaf(n, hints); err != nil {
				return err
			}
		case n.real:
			if n.kind == kindAnd {
				continue
			}
			for _, c := range n.children {
				if child := &a.nodes[c]; !child.real {
					child.setChallenge(p.simulatedChallenge(child, hints))
				}
			}
		default:
			if err := p.simulateConnective(a, n, hints); err != nil {
				return err
			}
		}
	}
	return nil
}

func (p *Prover) simulateConnective(a *arena, n *node, hints *HintsBag) error {
	if !n.hasChallenge {
		return fmt.Errorf("%w: %s", ErrSimulatedLeafWithoutChallenge, n.pos)
	}
	switch n.kind {
	case kindAnd:
		for _, c := range n.children {
			a.nodes[c].setChallenge(n.challenge)
		}
	case kindOr:
		rest := n.challenge
		last := len(n.children) - 1
		for _, c := range n.children[:last] {
			child := &a.nodes[c]
			child.setChallenge(p.simulatedChallenge(child, hints))
			rest = rest.Xor(child.challenge)
		}
		a.nodes[n.children[last]].setChallenge(rest)
	case kindThreshold:
		n.poly = gf2192.RandomPoly(len(n.children)-n.k, n.challenge.Element(), p.rand)
		for _, c := range n.children {
			child := &a.nodes[c]
			child.setChallenge(crypto.ChallengeFromElement(n.poly.EvalByte(byte(child.childIndex() + 1))))
		}
	}
	return nil
}

// simulatedChallenge is the challenge a co-signer used for a simulated leaf,
// or a random one.
func (p *Prover) simulatedChallenge(n *node, hints *HintsBag) crypto.Challenge {
	if n.isLeaf() {
		if sp, ok := hints.simulatedProof(n.key, n.pos); ok {
			return sp.Challenge
		}
	}
	return crypto.RandomChallenge(p.rand)
}

func (p *Prover) simulateLeaf(n *node, hints *HintsBag) error {
	if !n.hasChallenge {
		return fmt.Errorf("%w: %s", ErrSimulatedLeafWithoutChallenge, n.pos)
	}
	if sp, ok := hints.simulatedProof(n.key, n.pos); ok && sp.Challenge.Equal(n.challenge) {
		n.response = sp.Response
	} else {
		n.response = p.group.Scalar().Pick(p.rand)
	}
	n.commitment = commitmentFromResponse(p.group, n.prop, n.challenge.Scalar(p.group), n.response)
	return nil
}

func (p *Prover) commitReal(n *node, hints *HintsBag) error {
	if rp, ok := hints.realProof(n.key, n.pos); ok {
		n.commitment = rp.Commitment
		return nil
	}
	if oc, ok := hints.ownCommitment(n.key, n.pos); ok {
		if oc.Randomness.Equal(p.group.Scalar().Zero()) {
			return fmt.Errorf("%w: %s at %s", ErrCommitmentConsumed, n.prop, n.pos)
		}
		n.randomness = oc.Randomness
		n.commitment = oc.Commitment
		return nil
	}
	if rc, ok := hints.realCommitment(n.key, n.pos); ok {
		n.commitment = rc.Commitment
		return nil
	}
	if !p.Knows(n.prop) {
		return fmt.Errorf("%w: %s at %s", ErrSecretNotFound, n.prop, n.pos)
	}
	n.randomness = p.group.Scalar().Pick(p.rand)
	n.commitment = commit(p.group, n.prop, n.randomness)
	return nil
}

// proveReal propagates the root challenge top-down through the real nodes
// and answers at the real leaves.
func (p *Prover) proveReal(a *arena, hints *HintsBag) error {
	for i := range a.nodes {
		n := &a.nodes[i]
		if !n.real {
			continue
		}
		if !n.hasChallenge {
			return fmt.Errorf("%w: %s", ErrRealUnprovenTreeWithoutChallenge, n.pos)
		}
		switch n.kind {
		case kindAnd:
			for _, c := range n.children {
				a.nodes[c].setChallenge(n.challenge)
			}
		case kindOr:
			rest := n.challenge
			var chosen *node
			for _, c := range n.children {
				child := &a.nodes[c]
				if child.real {
					chosen = child
					continue
				}
				rest = rest.Xor(child.challenge)
			}
			chosen.setChallenge(rest)
		case kindThreshold:
			if err := a.interpolate(n); err != nil {
				return err
			}
		default:
			if err := p.respondReal(n, hints); err != nil {
				return err
			}
		}
	}
	return nil
}

// interpolate fixes the polynomial of a real threshold from the challenges
// of its simulated children and hands out the challenges of the real ones.
func (a *arena) interpolate(n *node) error {
	var (
		points []byte
		values []gf2192.Element
	)
	for _, c := range n.children {
		child := &a.nodes[c]
		if !child.real {
			points = append(points, byte(child.childIndex()+1))
			values = append(values, child.challenge.Element())
		}
	}
	poly, err := gf2192.Interpolate(points, values, n.challenge.Element())
	if err != nil {
		return fmt.Errorf("threshold at %s: %w", n.pos, err)
	}
	n.poly = poly
	for _, c := range n.children {
		child := &a.nodes[c]
		if child.real {
			child.setChallenge(crypto.ChallengeFromElement(poly.EvalByte(byte(child.childIndex() + 1))))
		}
	}
	return nil
}

func (p *Prover) respondReal(n *node, hints *HintsBag) error {
	if rp, ok := hints.realProof(n.key, n.pos); ok {
		if !rp.Challenge.Equal(n.challenge) {
			p.log.Warnw("co-signer proof answers another challenge", "position", n.pos.String())
		}
		n.response = rp.Response
		return nil
	}
	if n.randomness == nil {
		// committed from a co-signer hint: the co-signer completes this leaf
		p.log.Debugw("partial proof", "position", n.pos.String())
		n.response = p.group.Scalar().Pick(p.rand)
		return nil
	}
	sec, ok := p.secrets.find(n.prop)
	if !ok {
		return fmt.Errorf("%w: %s at %s", ErrSecretNotFound, n.prop, n.pos)
	}
	n.response = respond(p.group, n.randomness, sec.Witness(), n.challenge.Scalar(p.group))
	// the nonce may come from an OwnCommitment: zeroing it here also spends
	// the hint so that it cannot answer a second challenge
	n.randomness.Zero()
	n.randomness = nil
	return nil
}
