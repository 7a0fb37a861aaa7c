package proof

import (
	"github.com/drand/kyber"

	"github.com/zutxo/sigma/sigma"
)

// Verify checks proof of sb for msg. A trivial proposition is decided
// without looking at the proof, and an empty proof of anything else is
// rejected. A proof that does not parse against sb returns an error wrapping
// ErrMalformedProof; a proof that parses but does not match returns false.
func Verify(g kyber.Group, sb sigma.SigmaBoolean, proof, msg []byte) (bool, error) {
	if t, ok := sb.(sigma.TrivialProp); ok {
		return t.Value, nil
	}
	if len(proof) == 0 {
		return false, nil
	}
	a, err := parseProof(g, sb, proof)
	if err != nil {
		return false, err
	}
	a.computeCommitments()
	expected, err := a.fiatShamir(msg)
	if err != nil {
		return false, err
	}
	return expected.Equal(a.root().challenge), nil
}
