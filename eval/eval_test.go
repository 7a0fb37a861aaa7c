package eval

import (
	"errors"
	"testing"

	"github.com/drand/kyber/util/random"
	"github.com/stretchr/testify/require"

	"github.com/zutxo/sigma/ast"
	"github.com/zutxo/sigma/cost"
	"github.com/zutxo/sigma/crypto"
	"github.com/zutxo/sigma/sigma"
	"github.com/zutxo/sigma/value"
)

func c(v value.Value) ast.Expr { return ast.Constant{Value: v} }

func intColl(xs ...int32) ast.Expr {
	items := make([]value.Value, len(xs))
	for i, x := range xs {
		items[i] = value.Int(x)
	}
	return c(value.NewColl(value.TInt, items...))
}

func lambda(id int, t value.Type, body ast.Expr) ast.FuncValue {
	return ast.FuncValue{Args: []ast.FuncArg{{ID: id, Type: t}}, Body: body}
}

func testContext() *TxContext {
	self := &value.Box{
		Value:            1000,
		PropositionBytes: []byte{0x10, 0x20},
		CreationHeight:   7,
		Registers:        map[int]value.Value{4: value.Int(42)},
	}
	self.ID = self.ComputeID()
	out := &value.Box{Value: 400}
	out.ID = out.ComputeID()
	return &TxContext{
		CurrentHeight: 100,
		SelfBox:       self,
		InputBoxes:    []*value.Box{self},
		OutputBoxes:   []*value.Box{out},
		Extension:     map[byte]value.Value{1: value.Long(5)},
	}
}

func run(t *testing.T, expr ast.Expr) (value.Value, *cost.Accumulator, error) {
	t.Helper()
	acc := cost.NewUnlimited(cost.WithTrace())
	v, err := New(testContext(), nil, acc).Eval(expr, nil)
	return v, acc, err
}

func mustRun(t *testing.T, expr ast.Expr) value.Value {
	t.Helper()
	v, _, err := run(t, expr)
	require.NoError(t, err)
	return v
}

func TestIfShortCircuits(t *testing.T) {
	divByZero := ast.ArithOp{Kind: ast.Division, Left: c(value.Int(1)), Right: c(value.Int(0))}
	expr := ast.If{Cond: c(value.Bool(true)), Then: c(value.Int(1)), Else: divByZero}
	v, acc, err := run(t, expr)
	require.NoError(t, err)
	require.Equal(t, value.Int(1), v)
	for _, item := range acc.Trace() {
		require.NotContains(t, item.Op, "ArithOp")
	}

	_, _, err = run(t, ast.If{Cond: c(value.Bool(false)), Then: c(value.Int(1)), Else: divByZero})
	require.ErrorIs(t, err, ErrDivisionByZero)
}

func TestDeterminism(t *testing.T) {
	expr := ast.Fold{
		Input: ast.MapCollection{
			Input:  intColl(1, 2, 3, 4, 5),
			Mapper: lambda(1, value.TInt, ast.ArithOp{Kind: ast.Multiply, Left: ast.ValUse{ID: 1}, Right: ast.ValUse{ID: 1}}),
		},
		Zero: c(value.Int(0)),
		Folder: lambda(2, value.TupleType{Items: []value.Type{value.TInt, value.TInt}},
			ast.ArithOp{Kind: ast.Plus,
				Left:  ast.SelectField{Input: ast.ValUse{ID: 2}, Index: 1},
				Right: ast.SelectField{Input: ast.ValUse{ID: 2}, Index: 2}}),
	}
	v1, acc1, err := run(t, expr)
	require.NoError(t, err)
	v2, acc2, err := run(t, expr)
	require.NoError(t, err)
	require.Equal(t, value.Int(55), v1)
	require.True(t, value.Equal(v1, v2))
	require.Equal(t, acc1.Total(), acc2.Total())
	require.Equal(t, acc1.Trace(), acc2.Trace())
}

func TestCostLimitAborts(t *testing.T) {
	expr := ast.MapCollection{
		Input:  intColl(1, 2, 3, 4, 5, 6, 7, 8),
		Mapper: lambda(1, value.TInt, ast.ArithOp{Kind: ast.Plus, Left: ast.ValUse{ID: 1}, Right: c(value.Int(1))}),
	}
	_, full, err := run(t, expr)
	require.NoError(t, err)

	limit := full.Total() - 1
	acc := cost.NewAccumulator(limit)
	_, err = New(testContext(), nil, acc).Eval(expr, nil)
	require.ErrorIs(t, err, cost.ErrCostLimitExceeded)
	var le *cost.LimitError
	require.True(t, errors.As(err, &le))
	// the failing charge is the largest single operation of this tree
	require.LessOrEqual(t, acc.Total(), limit+cost.JitCost(30))

	acc = cost.NewAccumulator(full.Total())
	_, err = New(testContext(), nil, acc).Eval(expr, nil)
	require.NoError(t, err)
}

func TestMapChargesPerChunk(t *testing.T) {
	items := make([]int32, 25)
	expr := ast.MapCollection{Input: intColl(items...), Mapper: lambda(1, value.TInt, ast.ValUse{ID: 1})}
	_, acc, err := run(t, expr)
	require.NoError(t, err)
	var found bool
	for _, item := range acc.Trace() {
		if item.Op == "MapCollection" {
			found = true
			require.Equal(t, 25, item.Items)
			require.Equal(t, cost.JitCost(20+3*1), item.Cost)
		}
	}
	require.True(t, found)
}

func TestLexicalScoping(t *testing.T) {
	// val x = 1; val f = { (y: Int) => x + y }; val x = 10; f(5)
	expr := ast.BlockValue{
		Items: []ast.ValDef{
			{ID: 1, RHS: c(value.Int(1))},
			{ID: 2, RHS: lambda(3, value.TInt, ast.ArithOp{Kind: ast.Plus, Left: ast.ValUse{ID: 1}, Right: ast.ValUse{ID: 3}})},
			{ID: 1, RHS: c(value.Int(10))},
		},
		Result: ast.Apply{Func: ast.ValUse{ID: 2}, Args: []ast.Expr{c(value.Int(5))}},
	}
	require.Equal(t, value.Int(6), mustRun(t, expr))

	// argument bindings are not visible at the call site
	leak := ast.BlockValue{
		Items:  []ast.ValDef{{ID: 2, RHS: lambda(3, value.TInt, ast.ValUse{ID: 3})}},
		Result: ast.Tuple{Items: []ast.Expr{ast.Apply{Func: ast.ValUse{ID: 2}, Args: []ast.Expr{c(value.Int(5))}}, ast.ValUse{ID: 3}}},
	}
	_, _, err := run(t, leak)
	require.ErrorIs(t, err, ErrUndefinedVariable)
}

func TestEnvIsPersistent(t *testing.T) {
	var root *Env
	a := root.Extend(1, value.Int(1))
	b := a.Extend(2, value.Int(2))
	shadow := b.Extend(1, value.Int(3))

	v, ok := a.Lookup(1)
	require.True(t, ok)
	require.Equal(t, value.Int(1), v)
	_, ok = a.Lookup(2)
	require.False(t, ok)
	v, _ = shadow.Lookup(1)
	require.Equal(t, value.Int(3), v)
	v, _ = b.Lookup(1)
	require.Equal(t, value.Int(1), v)
	require.Equal(t, 3, shadow.Len())
	_, ok = root.Lookup(1)
	require.False(t, ok)
}

func TestArithmetic(t *testing.T) {
	op := func(k ast.ArithKind, l, r value.Value) ast.Expr {
		return ast.ArithOp{Kind: k, Left: c(l), Right: c(r)}
	}
	require.Equal(t, value.Int(7), mustRun(t, op(ast.Plus, value.Int(3), value.Int(4))))
	require.Equal(t, value.Long(-1), mustRun(t, op(ast.Modulo, value.Long(-7), value.Long(3))))
	require.Equal(t, value.Short(2), mustRun(t, op(ast.Min, value.Short(2), value.Short(9))))
	require.Equal(t, value.Byte(-3), mustRun(t, op(ast.Division, value.Byte(-7), value.Byte(2))))

	big := mustRun(t, op(ast.Multiply, value.NewBigInt(1<<40), value.NewBigInt(1<<40)))
	require.Equal(t, "1208925819614629174706176", big.(value.BigInt).String())

	overflows := []ast.Expr{
		op(ast.Plus, value.Int(2147483647), value.Int(1)),
		op(ast.Minus, value.Long(-9223372036854775808), value.Long(1)),
		op(ast.Multiply, value.Byte(64), value.Byte(2)),
		op(ast.Division, value.Byte(-128), value.Byte(-1)),
		ast.Negation{Input: c(value.Short(-32768))},
		ast.Downcast{Input: c(value.Long(1 << 40)), To: value.TInt},
	}
	for _, e := range overflows {
		_, _, err := run(t, e)
		require.ErrorIs(t, err, ErrArithmeticOverflow, "%#v", e)
	}

	_, _, err := run(t, op(ast.Plus, value.Int(1), value.Long(1)))
	require.ErrorIs(t, err, ErrTypeMismatch)
	_, _, err = run(t, op(ast.Modulo, value.Int(1), value.Int(0)))
	require.ErrorIs(t, err, ErrDivisionByZero)
}

func TestCasts(t *testing.T) {
	require.Equal(t, value.Long(5), mustRun(t, ast.Upcast{Input: c(value.Byte(5)), To: value.TLong}))
	v := mustRun(t, ast.Upcast{Input: c(value.Int(-5)), To: value.TBigInt})
	require.Equal(t, 0, v.(value.BigInt).Cmp(value.NewBigInt(-5)))
	require.Equal(t, value.Short(300), mustRun(t, ast.Downcast{Input: c(value.NewBigInt(300)), To: value.TShort}))

	_, _, err := run(t, ast.Upcast{Input: c(value.Long(5)), To: value.TInt})
	require.ErrorIs(t, err, ErrInvalidArgument)
	_, _, err = run(t, ast.Downcast{Input: c(value.Byte(5)), To: value.TInt})
	require.ErrorIs(t, err, ErrInvalidArgument)
}

func TestRelationsAndBooleans(t *testing.T) {
	rel := func(k ast.RelationKind, l, r value.Value) ast.Expr {
		return ast.Relation{Kind: k, Left: c(l), Right: c(r)}
	}
	require.Equal(t, value.Bool(true), mustRun(t, rel(ast.LT, value.Int(1), value.Int(2))))
	require.Equal(t, value.Bool(false), mustRun(t, rel(ast.GE, value.Long(1), value.Long(2))))
	require.Equal(t, value.Bool(true), mustRun(t, rel(ast.GT, value.NewBigInt(3), value.NewBigInt(-3))))
	require.Equal(t, value.Bool(true), mustRun(t, rel(ast.EQ, value.FromBytes([]byte{1}), value.FromBytes([]byte{1}))))
	require.Equal(t, value.Bool(true), mustRun(t, rel(ast.NEQ, value.Int(1), value.Long(1))))

	boom := ast.ArithOp{Kind: ast.Division, Left: c(value.Int(1)), Right: c(value.Int(0))}
	lazyAnd := ast.BinAnd{Left: c(value.Bool(false)), Right: ast.Relation{Kind: ast.EQ, Left: boom, Right: boom}}
	require.Equal(t, value.Bool(false), mustRun(t, lazyAnd))
	lazyOr := ast.BinOr{Left: c(value.Bool(true)), Right: ast.Relation{Kind: ast.EQ, Left: boom, Right: boom}}
	require.Equal(t, value.Bool(true), mustRun(t, lazyOr))
	require.Equal(t, value.Bool(true), mustRun(t, ast.BinXor{Left: c(value.Bool(true)), Right: c(value.Bool(false))}))
	require.Equal(t, value.Bool(false), mustRun(t, ast.LogicalNot{Input: c(value.Bool(true))}))

	bools := c(value.NewColl(value.TBoolean, value.Bool(true), value.Bool(false)))
	require.Equal(t, value.Bool(false), mustRun(t, ast.LogicalAnd{Input: bools}))
	require.Equal(t, value.Bool(true), mustRun(t, ast.LogicalOr{Input: bools}))
}

func TestCollections(t *testing.T) {
	coll := intColl(1, 2, 3, 4)
	isEven := lambda(1, value.TInt, ast.Relation{Kind: ast.EQ,
		Left:  ast.ArithOp{Kind: ast.Modulo, Left: ast.ValUse{ID: 1}, Right: c(value.Int(2))},
		Right: c(value.Int(0))})

	filtered := mustRun(t, ast.Filter{Input: coll, Condition: isEven})
	require.True(t, value.Equal(filtered, value.NewColl(value.TInt, value.Int(2), value.Int(4))))

	require.Equal(t, value.Int(4), mustRun(t, ast.SizeOf{Input: coll}))
	require.Equal(t, value.Int(3), mustRun(t, ast.ByIndex{Input: coll, Index: c(value.Int(2))}))
	require.Equal(t, value.Int(-1), mustRun(t, ast.ByIndex{Input: coll, Index: c(value.Int(9)), Default: c(value.Int(-1))}))
	_, _, err := run(t, ast.ByIndex{Input: coll, Index: c(value.Int(4))})
	require.ErrorIs(t, err, ErrIndexOutOfBounds)

	sliced := mustRun(t, ast.Slice{Input: coll, From: c(value.Int(1)), Until: c(value.Int(10))})
	require.True(t, value.Equal(sliced, value.NewColl(value.TInt, value.Int(2), value.Int(3), value.Int(4))))
	empty := mustRun(t, ast.Slice{Input: coll, From: c(value.Int(3)), Until: c(value.Int(1))})
	require.Equal(t, 0, empty.(value.Coll).Len())

	appended := mustRun(t, ast.Append{Left: intColl(1), Right: intColl(2)})
	require.True(t, value.Equal(appended, value.NewColl(value.TInt, value.Int(1), value.Int(2))))

	dup := lambda(1, value.TInt, ast.ConcreteCollection{Elem: value.TInt, Items: []ast.Expr{ast.ValUse{ID: 1}, ast.ValUse{ID: 1}}})
	flat := mustRun(t, ast.FlatMap{Input: intColl(1, 2), Mapper: dup})
	require.True(t, value.Equal(flat, value.NewColl(value.TInt, value.Int(1), value.Int(1), value.Int(2), value.Int(2))))

	_, _, err = run(t, ast.ConcreteCollection{Elem: value.TInt, Items: []ast.Expr{c(value.Long(1))}})
	require.ErrorIs(t, err, ErrTypeMismatch)
	_, _, err = run(t, ast.SelectField{Input: ast.Tuple{Items: []ast.Expr{c(value.Int(1))}}, Index: 2})
	require.ErrorIs(t, err, ErrIndexOutOfBounds)
}

func TestQuantifiersChargeVisitedItems(t *testing.T) {
	coll := intColl(5, 1, 2, 3, 4, 6, 7, 8, 9, 10, 11, 12)
	gt4 := lambda(1, value.TInt, ast.Relation{Kind: ast.GT, Left: ast.ValUse{ID: 1}, Right: c(value.Int(4))})

	v, acc, err := run(t, ast.Exists{Input: coll, Condition: gt4})
	require.NoError(t, err)
	require.Equal(t, value.Bool(true), v)
	for _, item := range acc.Trace() {
		if item.Op == "Exists" {
			require.Equal(t, 1, item.Items)
		}
	}

	v, acc, err = run(t, ast.ForAll{Input: coll, Condition: gt4})
	require.NoError(t, err)
	require.Equal(t, value.Bool(false), v)
	for _, item := range acc.Trace() {
		if item.Op == "ForAll" {
			require.Equal(t, 2, item.Items)
		}
	}
}

func TestContextAccess(t *testing.T) {
	require.Equal(t, value.Int(100), mustRun(t, ast.Height{}))
	require.Equal(t, value.Long(1000), mustRun(t, ast.ExtractAmount{Input: ast.Self{}}))
	require.Equal(t, value.Int(1), mustRun(t, ast.SizeOf{Input: ast.Outputs{}}))

	reg := mustRun(t, ast.ExtractRegisterAs{Input: ast.Self{}, Register: 4, Type: value.TInt})
	require.True(t, value.Equal(reg, value.Some(value.Int(42))))
	missing := mustRun(t, ast.ExtractRegisterAs{Input: ast.Self{}, Register: 5, Type: value.TInt})
	require.False(t, missing.(value.Option).IsDefined())
	_, _, err := run(t, ast.ExtractRegisterAs{Input: ast.Self{}, Register: 4, Type: value.TLong})
	require.ErrorIs(t, err, ErrTypeMismatch)

	v := mustRun(t, ast.OptionGet{Input: ast.GetVar{ID: 1, Type: value.TLong}})
	require.Equal(t, value.Long(5), v)
	v = mustRun(t, ast.OptionGetOrElse{Input: ast.GetVar{ID: 9, Type: value.TLong}, Default: c(value.Long(0))})
	require.Equal(t, value.Long(0), v)
	_, _, err = run(t, ast.OptionGet{Input: ast.GetVar{ID: 9, Type: value.TLong}})
	require.ErrorIs(t, err, ErrNoneValue)

	info := mustRun(t, ast.SelectField{Input: ast.ExtractCreationInfo{Input: ast.Self{}}, Index: 1})
	require.Equal(t, value.Int(7), info)
}

func TestCryptoOps(t *testing.T) {
	g := crypto.NewSecp256k1Scheme().Group
	gen := mustRun(t, ast.GroupGenerator{})
	require.True(t, gen.(value.GroupElement).P.Equal(g.Point().Base()))

	three := mustRun(t, ast.Exponentiate{Left: ast.GroupGenerator{}, Right: c(value.NewBigInt(3))})
	require.True(t, three.(value.GroupElement).P.Equal(g.Point().Mul(g.Scalar().SetInt64(3), nil)))

	minus := mustRun(t, ast.Exponentiate{Left: ast.GroupGenerator{}, Right: c(value.NewBigInt(-1))})
	require.True(t, minus.(value.GroupElement).P.Equal(g.Point().Neg(g.Point().Base())))

	sum := mustRun(t, ast.MultiplyGroup{Left: ast.GroupGenerator{}, Right: ast.GroupGenerator{}})
	require.True(t, sum.(value.GroupElement).P.Equal(g.Point().Mul(g.Scalar().SetInt64(2), nil)))

	enc, err := g.Point().Base().MarshalBinary()
	require.NoError(t, err)
	dec := mustRun(t, ast.DecodePoint{Input: c(value.FromBytes(enc))})
	require.True(t, dec.(value.GroupElement).P.Equal(g.Point().Base()))
	_, _, err = run(t, ast.DecodePoint{Input: c(value.FromBytes([]byte{1, 2, 3}))})
	require.ErrorIs(t, err, ErrInvalidArgument)

	h := mustRun(t, ast.CalcBlake2b256{Input: c(value.FromBytes([]byte("abc")))})
	want := crypto.Blake2b256([]byte("abc"))
	require.True(t, value.Equal(h, value.FromBytes(want[:])))

	sha, err := value.ToBytes(mustRun(t, ast.CalcSha256{Input: c(value.FromBytes([]byte("abc")))}))
	require.NoError(t, err)
	require.Equal(t, byte(0xba), sha[0])

	x := mustRun(t, ast.Xor{Left: c(value.FromBytes([]byte{1, 2, 3})), Right: c(value.FromBytes([]byte{3, 2}))})
	require.True(t, value.Equal(x, value.FromBytes([]byte{2, 0})))

	l := mustRun(t, ast.ByteArrayToLong{Input: ast.LongToByteArray{Input: c(value.Long(-42))}})
	require.Equal(t, value.Long(-42), l)
	b := mustRun(t, ast.ByteArrayToBigInt{Input: c(value.FromBytes([]byte{0xff, 0x00}))})
	require.Equal(t, "-256", b.(value.BigInt).String())
}

func TestSigmaConstruction(t *testing.T) {
	g := crypto.NewSecp256k1Scheme().Group
	p1 := g.Point().Pick(random.New())
	p2 := g.Point().Pick(random.New())
	dlog := func(p value.Value) ast.Expr { return ast.CreateProveDlog{Value: c(p)} }

	and := mustRun(t, ast.SigmaAnd{Items: []ast.Expr{dlog(value.GroupElement{P: p1}), ast.BoolToSigmaProp{Input: c(value.Bool(true))}}})
	require.True(t, sigma.Equal(sigma.ProveDlog{H: p1}, and.(value.SigmaProp).Prop))

	props := ast.ConcreteCollection{Elem: value.TSigmaProp, Items: []ast.Expr{
		dlog(value.GroupElement{P: p1}), dlog(value.GroupElement{P: p2}), ast.BoolToSigmaProp{Input: c(value.Bool(false))},
	}}
	th := mustRun(t, ast.AtLeast{Bound: c(value.Int(2)), Input: props})
	require.True(t, sigma.Equal(sigma.CAnd{Children: []sigma.SigmaBoolean{sigma.ProveDlog{H: p1}, sigma.ProveDlog{H: p2}}}, th.(value.SigmaProp).Prop))

	pb, err := value.ToBytes(mustRun(t, ast.SigmaPropBytes{Input: dlog(value.GroupElement{P: p1})}))
	require.NoError(t, err)
	back, err := sigma.Parse(g, pb)
	require.NoError(t, err)
	require.True(t, sigma.Equal(back, sigma.ProveDlog{H: p1}))
}

func TestMethodCalls(t *testing.T) {
	coll := intColl(3, 4)
	require.Equal(t, value.Int(2), mustRun(t, ast.MethodCall{Receiver: coll, Method: "size"}))
	idx := mustRun(t, ast.MethodCall{Receiver: coll, Method: "indices"})
	require.True(t, value.Equal(idx, value.NewColl(value.TInt, value.Int(0), value.Int(1))))
	zipped := mustRun(t, ast.MethodCall{Receiver: coll, Method: "zip", Args: []ast.Expr{intColl(9)}})
	require.Equal(t, 1, zipped.(value.Coll).Len())
	require.Equal(t, value.Int(7), mustRun(t, ast.MethodCall{Receiver: coll, Method: "getOrElse", Args: []ast.Expr{c(value.Int(5)), c(value.Int(7))}}))
	require.Equal(t, value.Long(1000), mustRun(t, ast.MethodCall{Receiver: ast.Self{}, Method: "value"}))
	x := mustRun(t, ast.MethodCall{Method: "xor", Args: []ast.Expr{c(value.FromBytes([]byte{1})), c(value.FromBytes([]byte{1}))}})
	require.True(t, value.Equal(x, value.FromBytes([]byte{0})))

	_, _, err := run(t, ast.MethodCall{Receiver: coll, Method: "nope"})
	require.ErrorIs(t, err, ErrUnknownMethod)
	_, _, err = run(t, ast.MethodCall{Receiver: coll, Method: "zip"})
	require.ErrorIs(t, err, ErrInvalidArgument)
}

func TestEvalTree(t *testing.T) {
	ctx := testContext()

	tree := ast.NewTree(0, ast.Relation{Kind: ast.GT, Left: ast.Height{}, Right: ast.ConstantPlaceholder{Index: 0, Type: value.TInt}}, value.Int(50))
	sb, err := EvalTree(tree, ctx, cost.NewUnlimited())
	require.NoError(t, err)
	require.Equal(t, sigma.TrueProp, sb)

	_, err = EvalTree(ast.NewTree(0, c(value.Int(1))), ctx, cost.NewUnlimited())
	require.ErrorIs(t, err, ErrNotSigmaProp)

	_, err = EvalTree(ast.NewTree(0, ast.ConstantPlaceholder{Index: 3}), ctx, cost.NewUnlimited())
	require.ErrorIs(t, err, ErrIndexOutOfBounds)
}

func TestSoftForkConditions(t *testing.T) {
	ctx := testContext()

	_, err := EvalTree(ast.NewTree(0, ast.Unknown{OpCode: 0xf0}), ctx, cost.NewUnlimited())
	require.True(t, IsSoftFork(err))
	var sf *SoftForkError
	require.True(t, errors.As(err, &sf))
	require.Equal(t, byte(0xf0), sf.OpCode)

	_, err = EvalTree(ast.NewTree(ast.MaxSupportedScriptVersion+1, c(value.Bool(true))), ctx, cost.NewUnlimited())
	require.True(t, IsSoftFork(err))
	require.ErrorIs(t, err, ErrUnsupportedVersion)

	_, err = EvalTree(&ast.ErgoTree{Unparsed: []byte{1}}, ctx, cost.NewUnlimited())
	require.ErrorIs(t, err, ErrUnparsedTree)
	require.True(t, IsSoftFork(err))

	// an unknown node in an untaken branch is never reached
	lazy := ast.If{Cond: c(value.Bool(true)), Then: c(value.Bool(true)), Else: ast.Unknown{OpCode: 0xf0}}
	_, err = EvalTree(ast.NewTree(0, lazy), ctx, cost.NewUnlimited())
	require.NoError(t, err)

	_, _, err = run(t, ast.ArithOp{Kind: ast.Plus, Left: c(value.Int(1)), Right: c(value.Bool(true))})
	require.False(t, IsSoftFork(err))
}

func TestDepthGuard(t *testing.T) {
	var expr ast.Expr = c(value.Bool(true))
	for i := 0; i < 20; i++ {
		expr = ast.LogicalNot{Input: expr}
	}
	acc := cost.NewUnlimited()
	_, err := New(testContext(), nil, acc, WithMaxDepth(10)).Eval(expr, nil)
	require.ErrorIs(t, err, ErrTreeTooDeep)

	v, err := New(testContext(), nil, cost.NewUnlimited()).Eval(expr, nil)
	require.NoError(t, err)
	require.Equal(t, value.Bool(true), v)
}
