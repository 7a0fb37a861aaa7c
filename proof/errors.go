package proof

import "errors"

var (
	// ErrReducedToFalse is returned when asked to prove a trivially false
	// proposition.
	ErrReducedToFalse = errors.New("proof: proposition reduced to false")
	// ErrTreeRootIsNotReal is returned when the known secrets and hints do not
	// satisfy the proposition.
	ErrTreeRootIsNotReal = errors.New("proof: tree root is not real")
	// ErrSecretNotFound is returned when a real leaf has neither a secret nor
	// a hint to complete it.
	ErrSecretNotFound = errors.New("proof: secret not found")
	// ErrSimulatedLeafWithoutChallenge reports a simulated node reached
	// before its challenge was assigned.
	ErrSimulatedLeafWithoutChallenge = errors.New("proof: simulated node without challenge")
	// ErrRealUnprovenTreeWithoutChallenge reports a real node reached before
	// its challenge was assigned.
	ErrRealUnprovenTreeWithoutChallenge = errors.New("proof: real node without challenge")
	// ErrMalformedProof is returned for proof bytes that do not parse against
	// the proposition. It is distinct from a proof that parses and fails.
	ErrMalformedProof = errors.New("proof: malformed proof")
	// ErrCommitmentConsumed is returned when an OwnCommitment whose nonce was
	// already used to answer a challenge is offered again.
	ErrCommitmentConsumed = errors.New("proof: own commitment already consumed")
	// ErrUnsupportedProposition is returned for trees holding a trivial
	// proposition below a connective.
	ErrUnsupportedProposition = errors.New("proof: unsupported proposition")
)
