// Package key holds the secrets a prover signs with and their public
// images, with their TOML representation and a file based store.
package key

import (
	"crypto/cipher"
	"errors"
	"fmt"

	"github.com/drand/kyber"

	"github.com/zutxo/sigma/crypto"
	"github.com/zutxo/sigma/proof"
	"github.com/zutxo/sigma/sigma"
)

// Kind names the leaf proposition a key proves.
type Kind string

const (
	// DLog keys prove knowledge of a discrete logarithm.
	DLog Kind = "dlog"
	// DHTuple keys prove equality of two discrete logarithms.
	DHTuple Kind = "dhtuple"
)

// ErrUnknownKind is returned when decoding a key of an unknown kind.
var ErrUnknownKind = errors.New("unknown key kind")

// Pair is a secret scalar with the scheme it lives in and, for DH tuples,
// the two bases it is the common logarithm over.
type Pair struct {
	Kind   Kind
	Scheme *crypto.Scheme
	Key    kyber.Scalar
	// G and H are set for DHTuple keys only.
	G, H kyber.Point
}

// NewDLogPair returns a freshly created discrete log key.
func NewDLogPair(sch *crypto.Scheme, rand cipher.Stream) *Pair {
	return &Pair{
		Kind:   DLog,
		Scheme: sch,
		Key:    sch.Group.Scalar().Pick(rand),
	}
}

// NewDHTuplePair returns a freshly created key over the group generator and
// a random second base.
func NewDHTuplePair(sch *crypto.Scheme, rand cipher.Stream) *Pair {
	g := sch.Group
	return &Pair{
		Kind:   DHTuple,
		Scheme: sch,
		Key:    g.Scalar().Pick(rand),
		G:      g.Point().Base(),
		H:      g.Point().Pick(rand),
	}
}

// Secret returns the prover secret of p.
func (p *Pair) Secret() proof.Secret {
	if p.Kind == DHTuple {
		return proof.NewDHTupleSecret(p.Scheme.Group, p.Key, p.G, p.H)
	}
	return proof.NewDLogSecret(p.Scheme.Group, p.Key)
}

// Public returns the public part of p.
func (p *Pair) Public() *Identity {
	return &Identity{Kind: p.Kind, Scheme: p.Scheme, Image: p.Secret().Image()}
}

// PairTOML is the TOML-able version of a private key
type PairTOML struct {
	Kind       string
	SchemeName string
	Key        string
	G          string `toml:",omitempty"`
	H          string `toml:",omitempty"`
}

// TOML returns a struct that can be marshalled using a TOML-encoding library
func (p *Pair) TOML() interface{} {
	t := &PairTOML{
		Kind:       string(p.Kind),
		SchemeName: p.Scheme.Name,
		Key:        ScalarToString(p.Key),
	}
	if p.Kind == DHTuple {
		t.G = PointToString(p.G)
		t.H = PointToString(p.H)
	}
	return t
}

// FromTOML constructs the private key from an unmarshalled structure from TOML
func (p *Pair) FromTOML(i interface{}) error {
	ptoml, ok := i.(*PairTOML)
	if !ok {
		return errors.New("private can't decode toml from non PairTOML struct")
	}
	sch, err := crypto.SchemeFromName(ptoml.SchemeName)
	if err != nil {
		return err
	}
	p.Scheme = sch
	p.Kind = Kind(ptoml.Kind)
	if p.Key, err = StringToScalar(sch.Group, ptoml.Key); err != nil {
		return fmt.Errorf("private key corrupted: %w", err)
	}
	switch p.Kind {
	case DLog:
		return nil
	case DHTuple:
		if p.G, err = StringToPoint(sch.Group, ptoml.G); err != nil {
			return fmt.Errorf("base G corrupted: %w", err)
		}
		if p.H, err = StringToPoint(sch.Group, ptoml.H); err != nil {
			return fmt.Errorf("base H corrupted: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownKind, ptoml.Kind)
	}
}

// TOMLValue returns an empty TOML-compatible interface value
func (p *Pair) TOMLValue() interface{} {
	return &PairTOML{}
}

// Identity is the public image of a Pair: the leaf proposition its secret
// proves.
type Identity struct {
	Kind   Kind
	Scheme *crypto.Scheme
	Image  sigma.SigmaBoolean
}

// Equal returns true if the public image of i equals the one of i2.
func (i *Identity) Equal(i2 *Identity) bool {
	return i.Scheme.Name == i2.Scheme.Name && sigma.Equal(i.Image, i2.Image)
}

// PublicTOML is the TOML-able version of a public key
type PublicTOML struct {
	Kind       string
	SchemeName string
	Image      string
}

// TOML returns a TOML-compatible version of the public key
func (i *Identity) TOML() interface{} {
	return &PublicTOML{
		Kind:       string(i.Kind),
		SchemeName: i.Scheme.Name,
		Image:      PropToString(i.Image),
	}
}

// FromTOML reads the TOML description of the public key
func (i *Identity) FromTOML(v interface{}) error {
	ptoml, ok := v.(*PublicTOML)
	if !ok {
		return errors.New("public can't decode from non PublicTOML struct")
	}
	sch, err := crypto.SchemeFromName(ptoml.SchemeName)
	if err != nil {
		return err
	}
	img, err := StringToProp(sch.Group, ptoml.Image)
	if err != nil {
		return err
	}
	switch img.(type) {
	case sigma.ProveDlog:
		i.Kind = DLog
	case sigma.ProveDHTuple:
		i.Kind = DHTuple
	default:
		return fmt.Errorf("%w: image %s is not a leaf", ErrUnknownKind, img)
	}
	if ptoml.Kind != string(i.Kind) {
		return fmt.Errorf("%w: %q holds a %s image", ErrUnknownKind, ptoml.Kind, i.Kind)
	}
	i.Scheme = sch
	i.Image = img
	return nil
}

// TOMLValue returns a TOML-compatible interface value
func (i *Identity) TOMLValue() interface{} {
	return &PublicTOML{}
}
