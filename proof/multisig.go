package proof

import (
	"github.com/drand/kyber"

	"github.com/zutxo/sigma/sigma"
)

// BagForMultisig extracts from a partial proof of sb the hints a co-signer
// needs to complete it: the transcripts and commitments of the leaves in
// realLeaves, proven by other parties, and of the leaves in simulatedLeaves.
func BagForMultisig(g kyber.Group, sb sigma.SigmaBoolean, proof []byte, realLeaves, simulatedLeaves []sigma.SigmaBoolean) (*HintsBag, error) {
	bag := &HintsBag{}
	if _, ok := sb.(sigma.TrivialProp); ok {
		return bag, nil
	}
	t, err := ParseProof(g, sb, proof)
	if err != nil {
		return nil, err
	}
	realKeys := keySet(realLeaves)
	simKeys := keySet(simulatedLeaves)
	for _, l := range t.Leaves {
		key := leafKey(l.Image)
		target := Target{Image: l.Image, Position: l.Position}
		switch {
		case realKeys[key]:
			bag.Add(
				RealSecretProof{Target: target, Challenge: l.Challenge, Response: l.Response, Commitment: l.Commitment},
				RealCommitment{Target: target, Commitment: l.Commitment},
			)
		case simKeys[key]:
			bag.Add(
				SimulatedSecretProof{Target: target, Challenge: l.Challenge, Response: l.Response, Commitment: l.Commitment},
				SimulatedCommitment{Target: target, Commitment: l.Commitment},
			)
		}
	}
	return bag, nil
}

func keySet(leaves []sigma.SigmaBoolean) map[string]bool {
	out := make(map[string]bool, len(leaves))
	for _, l := range leaves {
		out[leafKey(l)] = true
	}
	return out
}
