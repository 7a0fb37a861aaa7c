// Package crypto selects the discrete-log group the sigma protocols run over
// and holds the hash and challenge primitives shared by prover and verifier.
package crypto

import (
	"crypto/cipher"
	"fmt"
	"hash"
	"os"

	"golang.org/x/crypto/blake2b"

	"github.com/drand/kyber"
	bls "github.com/drand/kyber-bls12381"
	"github.com/drand/kyber/group/edwards25519"
	"github.com/drand/kyber/util/random"

	"github.com/zutxo/sigma/crypto/secp256k1"
)

// Scheme represents a group usable by the sigma protocols. Every leaf
// statement (knowledge of a discrete log, equality of discrete logs) is
// expressed over Group, and proofs are only meaningful between a prover and a
// verifier sharing the same scheme.
//
// Note: Scheme is not meant to be marshaled directly. Instead use the SchemeFromName
type Scheme struct {
	// The name of the scheme
	Name string
	// Group is the prime order group holding public keys and commitments.
	Group kyber.Group
	// Hash is the hash function used for Fiat-Shamir and script hashing.
	Hash func() hash.Hash `toml:"-"`
}

func (s *Scheme) String() string {
	if s != nil {
		return s.Name
	}
	return ""
}

// RandomStream returns the randomness source used for nonces and simulated
// challenges.
func (s *Scheme) RandomStream() cipher.Stream {
	return random.New()
}

func blake2b256() hash.Hash {
	h, _ := blake2b.New256(nil)
	return h
}

// DefaultSchemeID is the default scheme ID.
const DefaultSchemeID = "secp256k1"

// NewSecp256k1Scheme instantiates the scheme over secp256k1 with 33 byte
// compressed points.
func NewSecp256k1Scheme() *Scheme {
	return &Scheme{
		Name:  DefaultSchemeID,
		Group: secp256k1.NewGroup(),
		Hash:  blake2b256,
	}
}

// Ed25519SchemeID is the scheme id of the edwards25519 group.
const Ed25519SchemeID = "ed25519"

// NewEd25519Scheme instantiates the scheme over the prime order subgroup of
// edwards25519.
func NewEd25519Scheme() *Scheme {
	return &Scheme{
		Name:  Ed25519SchemeID,
		Group: edwards25519.NewBlakeSHA256Ed25519(),
		Hash:  blake2b256,
	}
}

// BLS12381G1SchemeID is the scheme id of the G1 group of BLS12-381.
const BLS12381G1SchemeID = "bls12381-g1"

// NewBLS12381G1Scheme instantiates the scheme over G1 of BLS12-381. No
// pairing is used; G1 only serves as a prime order group.
func NewBLS12381G1Scheme() *Scheme {
	return &Scheme{
		Name:  BLS12381G1SchemeID,
		Group: bls.NewBLS12381Suite().G1(),
		Hash:  blake2b256,
	}
}

// SchemeFromName returns the scheme registered under schemeName.
func SchemeFromName(schemeName string) (*Scheme, error) {
	switch schemeName {
	case DefaultSchemeID:
		return NewSecp256k1Scheme(), nil
	case Ed25519SchemeID:
		return NewEd25519Scheme(), nil
	case BLS12381G1SchemeID:
		return NewBLS12381G1Scheme(), nil
	default:
		return nil, fmt.Errorf("invalid scheme name '%s'", schemeName)
	}
}

var schemeIDs = []string{DefaultSchemeID, Ed25519SchemeID, BLS12381G1SchemeID}

// ListSchemes will return a slice of valid scheme ids
func ListSchemes() []string {
	return schemeIDs
}

// GetSchemeByIDWithDefault returns the scheme with the given id, or the
// default scheme when id is empty.
func GetSchemeByIDWithDefault(id string) (*Scheme, error) {
	if id == "" {
		id = DefaultSchemeID
	}

	return SchemeFromName(id)
}

// GetSchemeFromEnv returns the scheme named by the SIGMA_SCHEME environment
// variable, or the default one.
func GetSchemeFromEnv() (*Scheme, error) {
	id := os.Getenv("SIGMA_SCHEME")

	return GetSchemeByIDWithDefault(id)
}

// Blake2b256 hashes the concatenation of the given slices.
func Blake2b256(data ...[]byte) [32]byte {
	h := blake2b256()
	for _, d := range data {
		_, _ = h.Write(d)
	}
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}
