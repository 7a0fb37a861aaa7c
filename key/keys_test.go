package key

import (
	"bytes"
	"testing"

	"github.com/BurntSushi/toml"
	"github.com/drand/kyber/util/random"
	"github.com/stretchr/testify/require"

	"github.com/zutxo/sigma/crypto"
	"github.com/zutxo/sigma/proof"
	"github.com/zutxo/sigma/sigma"
)

func TestKeyPairTOML(t *testing.T) {
	for _, name := range crypto.ListSchemes() {
		sch, err := crypto.SchemeFromName(name)
		require.NoError(t, err)
		for _, kp := range []*Pair{NewDLogPair(sch, random.New()), NewDHTuplePair(sch, random.New())} {
			var writer bytes.Buffer
			require.NoError(t, toml.NewEncoder(&writer).Encode(kp.TOML()))

			ptoml := new(PairTOML)
			_, err := toml.DecodeReader(&writer, ptoml)
			require.NoError(t, err)
			p2 := new(Pair)
			require.NoError(t, p2.FromTOML(ptoml))

			require.Equal(t, kp.Kind, p2.Kind)
			require.Equal(t, sch.Name, p2.Scheme.Name)
			require.True(t, kp.Key.Equal(p2.Key))
			require.True(t, kp.Public().Equal(p2.Public()))
		}
	}
}

func TestKeyPublicTOML(t *testing.T) {
	sch := crypto.NewSecp256k1Scheme()
	kp := NewDHTuplePair(sch, random.New())
	pub := kp.Public()
	ptoml := pub.TOML().(*PublicTOML)
	require.Equal(t, "dhtuple", ptoml.Kind)

	var writer bytes.Buffer
	require.NoError(t, toml.NewEncoder(&writer).Encode(ptoml))
	p2toml := new(PublicTOML)
	_, err := toml.DecodeReader(&writer, p2toml)
	require.NoError(t, err)
	p2 := new(Identity)
	require.NoError(t, p2.FromTOML(p2toml))
	require.True(t, pub.Equal(p2))
	require.IsType(t, sigma.ProveDHTuple{}, p2.Image)

	p2toml.Kind = "dlog"
	require.ErrorIs(t, new(Identity).FromTOML(p2toml), ErrUnknownKind)
	require.Error(t, new(Pair).FromTOML(&PairTOML{Kind: "x", SchemeName: sch.Name, Key: ScalarToString(kp.Key)}))
	require.Error(t, new(Pair).FromTOML(&PairTOML{Kind: "dlog", SchemeName: "nope"}))
}

func TestPairSecretProves(t *testing.T) {
	sch := crypto.NewSecp256k1Scheme()
	a := NewDLogPair(sch, random.New())
	b := NewDHTuplePair(sch, random.New())
	prop := sigma.CAnd{Children: []sigma.SigmaBoolean{a.Public().Image, b.Public().Image}}

	p := proof.NewProver(sch.Group, []proof.Secret{a.Secret(), b.Secret()})
	pr, err := p.Prove(prop, []byte("msg"), nil)
	require.NoError(t, err)
	ok, err := proof.Verify(sch.Group, prop, pr, []byte("msg"))
	require.NoError(t, err)
	require.True(t, ok)
}
