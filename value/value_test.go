package value

import (
	"math/big"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/require"

	"github.com/zutxo/sigma/crypto"
	"github.com/zutxo/sigma/sigma"
)

func TestTypeEquality(t *testing.T) {
	require.True(t, TypeEqual(CollType{Elem: TByte}, ByteColl))
	require.False(t, TypeEqual(CollType{Elem: TInt}, ByteColl))
	require.True(t, TypeEqual(TupleType{Items: []Type{TInt, TLong}}, TupleType{Items: []Type{TInt, TLong}}))
	require.False(t, TypeEqual(TupleType{Items: []Type{TInt}}, TupleType{Items: []Type{TInt, TLong}}))
	require.True(t, Conforms(TInt, TAny))
	require.True(t, Conforms(CollType{Elem: TInt}, CollType{Elem: TAny}))
	require.False(t, Conforms(TInt, TLong))
	require.Equal(t, "Coll[(Coll[Byte], Long)]", CollType{Elem: TokenType}.String())
	require.Equal(t, "(Int) => Boolean", FuncType{Dom: []Type{TInt}, Range: TBoolean}.String())
	require.True(t, TBigInt.IsNumeric())
	require.False(t, TBoolean.IsNumeric())
}

func TestValueEquality(t *testing.T) {
	g := crypto.NewSecp256k1Scheme().Group
	p := g.Point().Base()

	require.True(t, Equal(Int(3), Int(3)))
	require.False(t, Equal(Int(3), Long(3)))
	require.True(t, Equal(FromBytes([]byte{1, 2}), FromBytes([]byte{1, 2})))
	require.False(t, Equal(FromBytes([]byte{1, 2}), FromBytes([]byte{1})))
	require.True(t, Equal(Tuple{Int(1), Bool(true)}, Tuple{Int(1), Bool(true)}))
	require.True(t, Equal(Some(Int(1)), Some(Int(1))))
	require.False(t, Equal(Some(Int(1)), None(TInt)))
	require.True(t, Equal(None(TInt), None(TInt)))
	require.True(t, Equal(GroupElement{P: p}, GroupElement{P: g.Point().Base()}))
	require.True(t, Equal(SigmaProp{Prop: sigma.ProveDlog{H: p}}, SigmaProp{Prop: sigma.ProveDlog{H: p}}))
	require.True(t, Equal(NewBigInt(-5), NewBigInt(-5)))
	require.True(t, Equal(Unit{}, Unit{}))
}

func TestBytesConversion(t *testing.T) {
	in := []byte{0, 0x7f, 0x80, 0xff}
	c := FromBytes(in)
	require.Equal(t, Byte(-128), c.Items[2])
	out, err := ToBytes(c)
	require.NoError(t, err)
	require.Equal(t, in, out)

	_, err = ToBytes(NewColl(TInt, Int(1)))
	require.Error(t, err)
	_, err = ToBytes(Int(1))
	require.Error(t, err)
}

func TestBigIntEncoding(t *testing.T) {
	cases := []struct {
		v   int64
		enc []byte
	}{
		{0, []byte{0}},
		{1, []byte{1}},
		{-1, []byte{0xff}},
		{127, []byte{0x7f}},
		{128, []byte{0x00, 0x80}},
		{-128, []byte{0x80}},
		{-129, []byte{0xff, 0x7f}},
		{256, []byte{0x01, 0x00}},
	}
	for _, c := range cases {
		b := NewBigInt(c.v)
		require.Equal(t, c.enc, b.Bytes(), "%d", c.v)
		back, err := BigIntFromBytes(c.enc)
		require.NoError(t, err)
		require.Equal(t, 0, back.Cmp(b))
		got, ok := back.Int64()
		require.True(t, ok)
		require.Equal(t, c.v, got)
	}
	_, err := BigIntFromBytes(make([]byte, 33))
	require.ErrorIs(t, err, ErrArithmeticOverflow)
}

func TestBigIntOverflow(t *testing.T) {
	maxBig := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 255), big.NewInt(1))
	minBig := new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), 255))

	maxV, err := BigIntFromBig(maxBig)
	require.NoError(t, err)
	minV, err := BigIntFromBig(minBig)
	require.NoError(t, err)
	_, err = BigIntFromBig(new(big.Int).Add(maxBig, big.NewInt(1)))
	require.ErrorIs(t, err, ErrArithmeticOverflow)
	_, err = BigIntFromBig(new(big.Int).Sub(minBig, big.NewInt(1)))
	require.ErrorIs(t, err, ErrArithmeticOverflow)

	one := NewBigInt(1)
	_, err = maxV.Add(one)
	require.ErrorIs(t, err, ErrArithmeticOverflow)
	_, err = minV.Sub(one)
	require.ErrorIs(t, err, ErrArithmeticOverflow)
	_, err = minV.Neg()
	require.ErrorIs(t, err, ErrArithmeticOverflow)
	_, err = minV.Div(NewBigInt(-1))
	require.ErrorIs(t, err, ErrArithmeticOverflow)
	_, err = maxV.Mul(NewBigInt(2))
	require.ErrorIs(t, err, ErrArithmeticOverflow)
	_, err = minV.Mul(NewBigInt(-1))
	require.ErrorIs(t, err, ErrArithmeticOverflow)
	_, err = one.Div(NewBigInt(0))
	require.ErrorIs(t, err, ErrDivisionByZero)
	_, err = one.Mod(NewBigInt(0))
	require.ErrorIs(t, err, ErrDivisionByZero)

	r, err := minV.Mul(one)
	require.NoError(t, err)
	require.Equal(t, 0, r.Cmp(minV))
	require.Equal(t, minBig.String(), minV.String())
	require.Equal(t, 32, len(minV.Bytes()))
}

func TestBigIntMatchesBig(t *testing.T) {
	params := gopter.DefaultTestParameters()
	params.MinSuccessfulTests = 200
	properties := gopter.NewProperties(params)

	properties.Property("add, sub, mul, div, mod agree with math/big on int64 inputs", prop.ForAll(
		func(a, b int64) bool {
			x, y := NewBigInt(a), NewBigInt(b)
			ba, bb := big.NewInt(a), big.NewInt(b)

			sum, err := x.Add(y)
			if err != nil || sum.Big().Cmp(new(big.Int).Add(ba, bb)) != 0 {
				return false
			}
			diff, err := x.Sub(y)
			if err != nil || diff.Big().Cmp(new(big.Int).Sub(ba, bb)) != 0 {
				return false
			}
			prod, err := x.Mul(y)
			if err != nil || prod.Big().Cmp(new(big.Int).Mul(ba, bb)) != 0 {
				return false
			}
			if b == 0 {
				return true
			}
			quo, err := x.Div(y)
			if err != nil || quo.Big().Cmp(new(big.Int).Quo(ba, bb)) != 0 {
				return false
			}
			rem, err := x.Mod(y)
			return err == nil && rem.Big().Cmp(new(big.Int).Rem(ba, bb)) == 0
		},
		gen.Int64(), gen.Int64(),
	))
	properties.TestingRun(t)
}

func TestBoxRegisters(t *testing.T) {
	b := &Box{
		Value:            1000,
		PropositionBytes: []byte{0xcd},
		CreationHeight:   42,
		Index:            1,
		Tokens:           []Token{{Amount: 5}},
		Registers:        map[int]Value{4: Int(7)},
	}
	b.ID = b.ComputeID()

	v, ok := b.Register(0)
	require.True(t, ok)
	require.Equal(t, Long(1000), v)
	v, ok = b.Register(4)
	require.True(t, ok)
	require.Equal(t, Int(7), v)
	_, ok = b.Register(5)
	require.False(t, ok)
	_, ok = b.Register(10)
	require.False(t, ok)

	info := b.CreationInfo()
	require.Equal(t, Int(42), info[0])
	ref, err := ToBytes(info[1])
	require.NoError(t, err)
	require.Len(t, ref, DigestSize+2)
	require.Equal(t, byte(1), ref[DigestSize+1])

	other := *b
	other.Value = 1001
	require.NotEqual(t, b.ID, other.ComputeID())
	require.True(t, TypeEqual(CollType{Elem: TokenType}, b.TokensColl().Type()))
}
