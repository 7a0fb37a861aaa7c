package proof

import (
	"testing"

	"github.com/drand/kyber"
	"github.com/drand/kyber/util/random"
	"github.com/stretchr/testify/require"

	"github.com/zutxo/sigma/cost"
	"github.com/zutxo/sigma/crypto"
	"github.com/zutxo/sigma/internal/test/testlogger"
	"github.com/zutxo/sigma/sigma"
)

func dlogs(g kyber.Group, n int) []*DLogSecret {
	out := make([]*DLogSecret, n)
	for i := range out {
		out[i] = RandomDLogSecret(g, random.New())
	}
	return out
}

func secretsOf(in ...Secret) []Secret { return in }

func TestProveVerifyCompositions(t *testing.T) {
	msg := []byte("tx123")
	for _, name := range crypto.ListSchemes() {
		sch, err := crypto.SchemeFromName(name)
		require.NoError(t, err)
		g := sch.Group
		s := dlogs(g, 4)
		dht := RandomDHTupleSecret(g, random.New())
		a, b, c, d := s[0].Image(), s[1].Image(), s[2].Image(), s[3].Image()

		cases := []struct {
			name    string
			prop    sigma.SigmaBoolean
			secrets []Secret
		}{
			{"dlog", a, secretsOf(s[0])},
			{"dhtuple", dht.Image(), secretsOf(dht)},
			{"and", sigma.CAnd{Children: []sigma.SigmaBoolean{a, b}}, secretsOf(s[0], s[1])},
			{"or first", sigma.COr{Children: []sigma.SigmaBoolean{a, b}}, secretsOf(s[0])},
			{"or last", sigma.COr{Children: []sigma.SigmaBoolean{a, b, c}}, secretsOf(s[2])},
			{"or both", sigma.COr{Children: []sigma.SigmaBoolean{a, b}}, secretsOf(s[0], s[1])},
			{"threshold ab", sigma.CThreshold{K: 2, Children: []sigma.SigmaBoolean{a, b, c}}, secretsOf(s[0], s[1])},
			{"threshold ac", sigma.CThreshold{K: 2, Children: []sigma.SigmaBoolean{a, b, c}}, secretsOf(s[0], s[2])},
			{"threshold bc", sigma.CThreshold{K: 2, Children: []sigma.SigmaBoolean{a, b, c}}, secretsOf(s[1], s[2])},
			{"threshold all", sigma.CThreshold{K: 2, Children: []sigma.SigmaBoolean{a, b, c}}, secretsOf(s[0], s[1], s[2])},
			{"nested", sigma.COr{Children: []sigma.SigmaBoolean{
				sigma.CAnd{Children: []sigma.SigmaBoolean{a, b}},
				sigma.CThreshold{K: 2, Children: []sigma.SigmaBoolean{c, d, dht.Image()}},
			}}, secretsOf(s[3], dht)},
			{"and of or", sigma.CAnd{Children: []sigma.SigmaBoolean{
				sigma.COr{Children: []sigma.SigmaBoolean{a, b}},
				sigma.COr{Children: []sigma.SigmaBoolean{c, dht.Image()}},
			}}, secretsOf(s[1], s[2])},
		}
		for _, tc := range cases {
			t.Run(name+"/"+tc.name, func(t *testing.T) {
				p := NewProver(g, tc.secrets, WithLogger(testlogger.New(t)))
				pr, err := p.Prove(tc.prop, msg, nil)
				require.NoError(t, err)

				ok, err := Verify(g, tc.prop, pr, msg)
				require.NoError(t, err)
				require.True(t, ok)

				ok, err = Verify(g, tc.prop, pr, []byte("tx124"))
				require.NoError(t, err)
				require.False(t, ok)
			})
		}
	}
}

func TestAndScenario(t *testing.T) {
	g := crypto.NewSecp256k1Scheme().Group
	s := dlogs(g, 2)
	prop := sigma.NewAnd(s[0].Image(), s[1].Image())
	pr, err := NewProver(g, secretsOf(s[0], s[1])).Prove(prop, []byte("tx123"), nil)
	require.NoError(t, err)
	require.Len(t, pr, crypto.ChallengeSize+2*g.ScalarLen())

	ok, err := Verify(g, prop, pr, []byte("tx123"))
	require.NoError(t, err)
	require.True(t, ok)
	ok, err = Verify(g, prop, pr, []byte("tx124"))
	require.NoError(t, err)
	require.False(t, ok)
}

func TestProofLayout(t *testing.T) {
	g := crypto.NewSecp256k1Scheme().Group
	s := dlogs(g, 3)
	a, b, c := s[0].Image(), s[1].Image(), s[2].Image()
	p := NewProver(g, secretsOf(s[0], s[1]))

	or := sigma.COr{Children: []sigma.SigmaBoolean{a, b, c}}
	pr, err := p.Prove(or, nil, nil)
	require.NoError(t, err)
	// root, two explicit children challenges, three responses
	require.Len(t, pr, 3*crypto.ChallengeSize+3*g.ScalarLen())

	th := sigma.CThreshold{K: 2, Children: []sigma.SigmaBoolean{a, b, c}}
	pr, err = p.Prove(th, nil, nil)
	require.NoError(t, err)
	// root, one non-constant coefficient, three responses
	require.Len(t, pr, 2*crypto.ChallengeSize+3*g.ScalarLen())

	tree, err := ParseProof(g, th, pr)
	require.NoError(t, err)
	require.Len(t, tree.Leaves, 3)
	for i, l := range tree.Leaves {
		require.True(t, l.Position.Equal(sigma.RootPosition.Child(i)))
	}
}

func TestCrossRejection(t *testing.T) {
	g := crypto.NewSecp256k1Scheme().Group
	s := dlogs(g, 3)
	prop := sigma.COr{Children: []sigma.SigmaBoolean{s[0].Image(), s[1].Image()}}
	other := sigma.COr{Children: []sigma.SigmaBoolean{s[0].Image(), s[2].Image()}}
	pr, err := NewProver(g, secretsOf(s[0])).Prove(prop, []byte("m"), nil)
	require.NoError(t, err)

	ok, err := Verify(g, other, pr, []byte("m"))
	require.NoError(t, err)
	require.False(t, ok)

	ok, err = Verify(g, s[0].Image(), pr, []byte("m"))
	require.ErrorIs(t, err, ErrMalformedProof)
	require.False(t, ok)
}

func TestProverFailures(t *testing.T) {
	g := crypto.NewSecp256k1Scheme().Group
	s := dlogs(g, 3)
	a, b, c := s[0].Image(), s[1].Image(), s[2].Image()

	_, err := NewProver(g, nil).Prove(sigma.FalseProp, nil, nil)
	require.ErrorIs(t, err, ErrReducedToFalse)

	pr, err := NewProver(g, nil).Prove(sigma.TrueProp, nil, nil)
	require.NoError(t, err)
	require.Empty(t, pr)

	_, err = NewProver(g, nil).Prove(sigma.COr{Children: []sigma.SigmaBoolean{a, b}}, nil, nil)
	require.ErrorIs(t, err, ErrTreeRootIsNotReal)

	_, err = NewProver(g, secretsOf(s[0])).Prove(sigma.CThreshold{K: 2, Children: []sigma.SigmaBoolean{a, b, c}}, nil, nil)
	require.ErrorIs(t, err, ErrTreeRootIsNotReal)

	_, err = NewProver(g, secretsOf(s[0])).Prove(sigma.CAnd{Children: []sigma.SigmaBoolean{a, sigma.TrueProp}}, nil, nil)
	require.ErrorIs(t, err, ErrUnsupportedProposition)
}

func TestVerifyEdgeCases(t *testing.T) {
	g := crypto.NewSecp256k1Scheme().Group
	s := dlogs(g, 2)
	prop := sigma.CAnd{Children: []sigma.SigmaBoolean{s[0].Image(), s[1].Image()}}

	ok, err := Verify(g, sigma.TrueProp, nil, nil)
	require.NoError(t, err)
	require.True(t, ok)
	ok, err = Verify(g, sigma.FalseProp, []byte{1}, nil)
	require.NoError(t, err)
	require.False(t, ok)

	ok, err = Verify(g, prop, nil, nil)
	require.NoError(t, err)
	require.False(t, ok)

	pr, err := NewProver(g, secretsOf(s[0], s[1])).Prove(prop, nil, nil)
	require.NoError(t, err)

	_, err = Verify(g, prop, pr[:len(pr)-1], nil)
	require.ErrorIs(t, err, ErrMalformedProof)
	_, err = Verify(g, prop, append(append([]byte{}, pr...), 0), nil)
	require.ErrorIs(t, err, ErrMalformedProof)
	_, err = Verify(g, prop, pr[:10], nil)
	require.ErrorIs(t, err, ErrMalformedProof)

	flipped := append([]byte{}, pr...)
	flipped[0] ^= 1
	ok, err = Verify(g, prop, flipped, nil)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestDistributedAnd(t *testing.T) {
	g := crypto.NewSecp256k1Scheme().Group
	s := dlogs(g, 2)
	prop := sigma.CAnd{Children: []sigma.SigmaBoolean{s[0].Image(), s[1].Image()}}
	msg := []byte("shared tx")

	alice := NewProver(g, secretsOf(s[0]))
	bob := NewProver(g, secretsOf(s[1]))

	bobBag, err := bob.GenerateCommitments(prop)
	require.NoError(t, err)
	require.Equal(t, 2, bobBag.Len())
	require.Equal(t, 1, bobBag.Public().Len())

	_, err = alice.Prove(prop, msg, nil)
	require.ErrorIs(t, err, ErrTreeRootIsNotReal)

	partial, err := alice.Prove(prop, msg, bobBag.Public())
	require.NoError(t, err)
	ok, err := Verify(g, prop, partial, msg)
	require.NoError(t, err)
	require.False(t, ok)

	extracted, err := BagForMultisig(g, prop, partial, []sigma.SigmaBoolean{s[0].Image()}, nil)
	require.NoError(t, err)
	require.Equal(t, 2, extracted.Len())

	final, err := bob.Prove(prop, msg, bobBag.Merge(extracted))
	require.NoError(t, err)
	ok, err = Verify(g, prop, final, msg)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestOwnCommitmentIsSpent(t *testing.T) {
	g := crypto.NewSecp256k1Scheme().Group
	s := dlogs(g, 2)
	prop := sigma.CAnd{Children: []sigma.SigmaBoolean{s[0].Image(), s[1].Image()}}
	msg := []byte("spend once")
	alice := NewProver(g, secretsOf(s[0]))
	bob := NewProver(g, secretsOf(s[1]))
	require.True(t, bob.Knows(s[1].Image()))
	require.False(t, bob.Knows(s[0].Image()))

	bobBag, err := bob.GenerateCommitments(prop)
	require.NoError(t, err)
	own := bobBag.Hints[0].(OwnCommitment)
	require.False(t, own.Randomness.Equal(g.Scalar().Zero()))

	partial, err := alice.Prove(prop, msg, bobBag.Public())
	require.NoError(t, err)
	extracted, err := BagForMultisig(g, prop, partial, []sigma.SigmaBoolean{s[0].Image()}, nil)
	require.NoError(t, err)
	all := bobBag.Merge(extracted)
	final, err := bob.Prove(prop, msg, all)
	require.NoError(t, err)
	ok, err := Verify(g, prop, final, msg)
	require.NoError(t, err)
	require.True(t, ok)

	// the nonce was wiped once it answered the challenge
	require.True(t, own.Randomness.Equal(g.Scalar().Zero()))
	_, err = bob.Prove(prop, []byte("another message"), all)
	require.ErrorIs(t, err, ErrCommitmentConsumed)

	// nonces drawn by the prover itself are wiped too and leave the
	// prover reusable
	for i := 0; i < 2; i++ {
		pr, err := NewProver(g, secretsOf(s[0], s[1])).Prove(prop, msg, nil)
		require.NoError(t, err)
		ok, err := Verify(g, prop, pr, msg)
		require.NoError(t, err)
		require.True(t, ok)
	}
}

func TestDistributedThreshold(t *testing.T) {
	for _, name := range crypto.ListSchemes() {
		t.Run(name, func(t *testing.T) {
			sch, err := crypto.SchemeFromName(name)
			require.NoError(t, err)
			g := sch.Group
			s := dlogs(g, 3)
			a, b, c := s[0].Image(), s[1].Image(), s[2].Image()
			prop := sigma.CThreshold{K: 2, Children: []sigma.SigmaBoolean{a, b, c}}
			msg := []byte("2 of 3")

			alice := NewProver(g, secretsOf(s[0]))
			bob := NewProver(g, secretsOf(s[1]))

			bobBag, err := bob.GenerateCommitments(prop)
			require.NoError(t, err)
			partial, err := alice.Prove(prop, msg, bobBag.Public())
			require.NoError(t, err)

			extracted, err := BagForMultisig(g, prop, partial, []sigma.SigmaBoolean{a}, []sigma.SigmaBoolean{c})
			require.NoError(t, err)
			require.Equal(t, 4, extracted.Len())
			require.Equal(t, 2, extracted.ForImage(c).Len())

			final, err := bob.Prove(prop, msg, extracted.Merge(bobBag))
			require.NoError(t, err)
			ok, err := Verify(g, prop, final, msg)
			require.NoError(t, err)
			require.True(t, ok)
		})
	}
}

func TestGenerateCommitments(t *testing.T) {
	g := crypto.NewSecp256k1Scheme().Group
	s := dlogs(g, 2)
	dht := RandomDHTupleSecret(g, random.New())
	prop := sigma.COr{Children: []sigma.SigmaBoolean{s[0].Image(), s[1].Image(), dht.Image()}}

	bag, err := NewProver(g, secretsOf(s[1], dht)).GenerateCommitments(prop)
	require.NoError(t, err)
	require.Equal(t, 4, bag.Len())
	for _, h := range bag.Hints {
		switch c := h.(type) {
		case OwnCommitment:
			require.True(t, c.Commitment.A.Equal(commit(g, c.Image, c.Randomness).A))
		case RealCommitment:
			require.NotEqual(t, 0, c.Position[1])
		default:
			t.Fatalf("unexpected hint %T", h)
		}
	}
	dhtHints := bag.ForImage(dht.Image())
	require.Equal(t, 2, dhtHints.Len())
	own := dhtHints.Hints[0].(OwnCommitment)
	require.NotNil(t, own.Commitment.B)
	require.True(t, own.Position.Equal(sigma.Position{0, 2}))

	empty, err := NewProver(g, nil).GenerateCommitments(sigma.TrueProp)
	require.NoError(t, err)
	require.Zero(t, empty.Len())
}

func TestEstimateCost(t *testing.T) {
	g := crypto.NewSecp256k1Scheme().Group
	s := dlogs(g, 3)
	a, b, c := s[0].Image(), s[1].Image(), s[2].Image()

	zero, err := EstimateCost(sigma.TrueProp)
	require.NoError(t, err)
	require.Zero(t, zero)

	single, err := EstimateCost(a)
	require.NoError(t, err)
	// one leaf and a 72 byte transcript
	require.Equal(t, cost.JitCost(1840+20+7), single)

	and, err := EstimateCost(sigma.CAnd{Children: []sigma.SigmaBoolean{a, b}})
	require.NoError(t, err)
	require.Greater(t, and, 2*single-cost.JitCost(27))

	th, err := EstimateCost(sigma.CThreshold{K: 2, Children: []sigma.SigmaBoolean{a, b, c}})
	require.NoError(t, err)
	require.Greater(t, th, and)
}

func TestHintsBag(t *testing.T) {
	g := crypto.NewSecp256k1Scheme().Group
	s := dlogs(g, 2)
	t0 := Target{Image: s[0].Image(), Position: sigma.RootPosition.Child(0)}
	t1 := Target{Image: s[1].Image(), Position: sigma.RootPosition.Child(1)}
	c := Commitment{A: g.Point().Base()}

	var empty *HintsBag
	require.Zero(t, empty.Len())
	bag := NewHintsBag(OwnCommitment{Target: t0, Randomness: g.Scalar().One(), Commitment: c})
	bag.Add(RealCommitment{Target: t0, Commitment: c})
	merged := bag.Merge(NewHintsBag(SimulatedCommitment{Target: t1, Commitment: c}))
	require.Equal(t, 3, merged.Len())
	require.Equal(t, 2, bag.Len())
	require.Equal(t, 2, merged.Public().Len())
	require.Equal(t, 1, merged.ForImage(s[1].Image()).Len())

	key := leafKey(s[0].Image())
	_, ok := merged.ownCommitment(key, sigma.RootPosition.Child(0))
	require.True(t, ok)
	_, ok = merged.ownCommitment(key, sigma.RootPosition.Child(1))
	require.False(t, ok)
	require.True(t, merged.realImages()[key])
	require.False(t, merged.realImages()[leafKey(s[1].Image())])
}
