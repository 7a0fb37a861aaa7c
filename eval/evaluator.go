// Package eval reduces expression trees against a transaction context.
//
// Evaluation is a big-step interpreter over the closed set of ast nodes.
// Every node evaluates its operands left to right, charges its cost to the
// accumulator and then performs its operation. Evaluation is deterministic:
// the same tree and context always produce the same value and cost.
package eval

import (
	"errors"
	"fmt"

	"github.com/drand/kyber"

	"github.com/zutxo/sigma/ast"
	"github.com/zutxo/sigma/cost"
	"github.com/zutxo/sigma/crypto"
	"github.com/zutxo/sigma/sigma"
	"github.com/zutxo/sigma/value"
)

// DefaultMaxDepth bounds the nesting of evaluated expressions.
const DefaultMaxDepth = 110

// ErrUnsupportedVersion is wrapped in a *SoftForkError when a tree is newer
// than the evaluator.
var ErrUnsupportedVersion = errors.New("unsupported script version")

// Closure is the value of a lambda: its code and the environment it was
// defined in.
type Closure struct {
	Args []ast.FuncArg
	Body ast.Expr
	Env  *Env
}

// Type implements value.Value.
func (c *Closure) Type() value.Type {
	dom := make([]value.Type, len(c.Args))
	for i, a := range c.Args {
		dom[i] = a.Type
	}
	return value.FuncType{Dom: dom, Range: value.TAny}
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithGroup sets the group in which points are decoded.
func WithGroup(g kyber.Group) Option {
	return func(e *Evaluator) {
		e.group = g
	}
}

// WithMaxDepth sets the maximal expression nesting.
func WithMaxDepth(d int) Option {
	return func(e *Evaluator) {
		e.maxDepth = d
	}
}

// WithMaxScriptVersion sets the newest script version this evaluator accepts.
func WithMaxScriptVersion(v byte) Option {
	return func(e *Evaluator) {
		e.maxVersion = v
	}
}

// Evaluator evaluates expressions of one tree against one context. It holds
// the cost accumulator of the call and must not be shared between calls.
type Evaluator struct {
	ctx        Context
	constants  []value.Value
	acc        *cost.Accumulator
	group      kyber.Group
	maxDepth   int
	maxVersion byte
	version    byte
	depth      int
}

// New returns an evaluator over ctx. Placeholders are resolved in constants.
func New(ctx Context, constants []value.Value, acc *cost.Accumulator, opts ...Option) *Evaluator {
	e := &Evaluator{
		ctx:        ctx,
		constants:  constants,
		acc:        acc,
		maxDepth:   DefaultMaxDepth,
		maxVersion: ast.MaxSupportedScriptVersion,
	}
	for _, o := range opts {
		o(e)
	}
	if e.group == nil {
		e.group = crypto.NewSecp256k1Scheme().Group
	}
	return e
}

// EvalTree reduces tree to a sigma proposition. A boolean result is lifted
// to a trivial proposition; any other result fails with ErrNotSigmaProp.
func EvalTree(tree *ast.ErgoTree, ctx Context, acc *cost.Accumulator, opts ...Option) (sigma.SigmaBoolean, error) {
	e := New(ctx, tree.Constants, acc, opts...)
	e.version = tree.Version()
	if e.version > e.maxVersion {
		return nil, &SoftForkError{Version: e.version, Err: fmt.Errorf("%w: %d > %d", ErrUnsupportedVersion, e.version, e.maxVersion)}
	}
	if !tree.Parsed() {
		return nil, &SoftForkError{Version: e.version, Err: ErrUnparsedTree}
	}
	v, err := e.Eval(tree.Root, nil)
	if err != nil {
		return nil, err
	}
	switch r := v.(type) {
	case value.SigmaProp:
		return r.Prop, nil
	case value.Bool:
		return sigma.TrivialProp{Value: bool(r)}, nil
	default:
		return nil, fmt.Errorf("%w: got %s", ErrNotSigmaProp, v.Type())
	}
}

// Eval evaluates expr in env.
func (e *Evaluator) Eval(expr ast.Expr, env *Env) (value.Value, error) {
	e.depth++
	defer func() { e.depth-- }()
	if e.depth > e.maxDepth {
		return nil, ErrTreeTooDeep
	}

	switch n := expr.(type) {
	case ast.Constant:
		if err := e.acc.Charge(cost.Constant); err != nil {
			return nil, err
		}
		return n.Value, nil

	case ast.ConstantPlaceholder:
		if err := e.acc.Charge(cost.ConstantPlaceholder); err != nil {
			return nil, err
		}
		if n.Index < 0 || n.Index >= len(e.constants) {
			return nil, fmt.Errorf("%w: constant %d of %d", ErrIndexOutOfBounds, n.Index, len(e.constants))
		}
		return e.constants[n.Index], nil

	case ast.ValUse:
		if err := e.acc.Charge(cost.ValUse); err != nil {
			return nil, err
		}
		v, ok := env.Lookup(n.ID)
		if !ok {
			return nil, fmt.Errorf("%w: v%d", ErrUndefinedVariable, n.ID)
		}
		return v, nil

	case ast.ValDef:
		v, err := e.Eval(n.RHS, env)
		if err != nil {
			return nil, err
		}
		return v, e.acc.Charge(cost.ValDef)

	case ast.BlockValue:
		cur := env
		for _, d := range n.Items {
			v, err := e.Eval(d.RHS, cur)
			if err != nil {
				return nil, err
			}
			if err := e.acc.Charge(cost.ValDef); err != nil {
				return nil, err
			}
			cur = cur.Extend(d.ID, v)
		}
		if err := e.acc.ChargeItems(cost.BlockValue, len(n.Items)); err != nil {
			return nil, err
		}
		return e.Eval(n.Result, cur)

	case ast.FuncValue:
		if err := e.acc.Charge(cost.FuncValue); err != nil {
			return nil, err
		}
		return &Closure{Args: n.Args, Body: n.Body, Env: env}, nil

	case ast.Apply:
		f, err := e.evalClosure(n.Func, env)
		if err != nil {
			return nil, err
		}
		args, err := e.evalAll(n.Args, env)
		if err != nil {
			return nil, err
		}
		return e.apply(f, args...)

	case ast.If:
		cond, err := e.evalBool(n.Cond, env)
		if err != nil {
			return nil, err
		}
		if err := e.acc.Charge(cost.If); err != nil {
			return nil, err
		}
		if cond {
			return e.Eval(n.Then, env)
		}
		return e.Eval(n.Else, env)

	case ast.ArithOp:
		l, r, err := e.evalPair(n.Left, n.Right, env)
		if err != nil {
			return nil, err
		}
		op := cost.ArithPlusMinus
		switch n.Kind {
		case ast.Multiply, ast.Division, ast.Modulo:
			op = cost.ArithMulDiv
		case ast.Min, ast.Max:
			op = cost.ArithMinMax
		}
		if err := e.acc.ChargeType(op, l.Type()); err != nil {
			return nil, err
		}
		return arith(n.Kind, l, r)

	case ast.Relation:
		l, r, err := e.evalPair(n.Left, n.Right, env)
		if err != nil {
			return nil, err
		}
		if n.Kind == ast.EQ || n.Kind == ast.NEQ {
			if err := e.acc.ChargeItems(cost.Equals, dataSize(l)); err != nil {
				return nil, err
			}
			eq := value.Equal(l, r)
			return value.Bool(eq == (n.Kind == ast.EQ)), nil
		}
		if err := e.acc.ChargeType(cost.Compare, l.Type()); err != nil {
			return nil, err
		}
		c, err := compareNumeric(l, r)
		if err != nil {
			return nil, err
		}
		switch n.Kind {
		case ast.LT:
			return value.Bool(c < 0), nil
		case ast.LE:
			return value.Bool(c <= 0), nil
		case ast.GT:
			return value.Bool(c > 0), nil
		default:
			return value.Bool(c >= 0), nil
		}

	case ast.BinAnd:
		l, err := e.evalBool(n.Left, env)
		if err != nil {
			return nil, err
		}
		if err := e.acc.Charge(cost.BinAnd); err != nil {
			return nil, err
		}
		if !l {
			return value.Bool(false), nil
		}
		r, err := e.evalBool(n.Right, env)
		return value.Bool(r), err

	case ast.BinOr:
		l, err := e.evalBool(n.Left, env)
		if err != nil {
			return nil, err
		}
		if err := e.acc.Charge(cost.BinOr); err != nil {
			return nil, err
		}
		if l {
			return value.Bool(true), nil
		}
		r, err := e.evalBool(n.Right, env)
		return value.Bool(r), err

	case ast.BinXor:
		l, err := e.evalBool(n.Left, env)
		if err != nil {
			return nil, err
		}
		r, err := e.evalBool(n.Right, env)
		if err != nil {
			return nil, err
		}
		return value.Bool(l != r), e.acc.Charge(cost.BinXor)

	case ast.LogicalNot:
		b, err := e.evalBool(n.Input, env)
		if err != nil {
			return nil, err
		}
		return value.Bool(!b), e.acc.Charge(cost.LogicalNot)

	case ast.Negation:
		v, err := e.Eval(n.Input, env)
		if err != nil {
			return nil, err
		}
		if err := e.acc.ChargeType(cost.Negation, v.Type()); err != nil {
			return nil, err
		}
		return negate(v)

	case ast.Upcast:
		v, err := e.Eval(n.Input, env)
		if err != nil {
			return nil, err
		}
		if err := e.acc.Charge(cost.Upcast); err != nil {
			return nil, err
		}
		return upcast(v, n.To)

	case ast.Downcast:
		v, err := e.Eval(n.Input, env)
		if err != nil {
			return nil, err
		}
		if err := e.acc.Charge(cost.Downcast); err != nil {
			return nil, err
		}
		return downcast(v, n.To)

	case ast.LogicalAnd, ast.LogicalOr:
		return e.evalLogical(n, env)

	case ast.SigmaAnd:
		props, err := e.evalSigmas(n.Items, env)
		if err != nil {
			return nil, err
		}
		if err := e.acc.ChargeItems(cost.SigmaAnd, len(props)); err != nil {
			return nil, err
		}
		return value.SigmaProp{Prop: sigma.NewAnd(props...)}, nil

	case ast.SigmaOr:
		props, err := e.evalSigmas(n.Items, env)
		if err != nil {
			return nil, err
		}
		if err := e.acc.ChargeItems(cost.SigmaOr, len(props)); err != nil {
			return nil, err
		}
		return value.SigmaProp{Prop: sigma.NewOr(props...)}, nil

	case ast.AtLeast:
		return e.evalAtLeast(n, env)

	case ast.BoolToSigmaProp:
		b, err := e.evalBool(n.Input, env)
		if err != nil {
			return nil, err
		}
		return value.SigmaProp{Prop: sigma.TrivialProp{Value: b}}, e.acc.Charge(cost.BoolToSigmaProp)

	case ast.CreateProveDlog:
		p, err := e.evalGroup(n.Value, env)
		if err != nil {
			return nil, err
		}
		return value.SigmaProp{Prop: sigma.ProveDlog{H: p}}, e.acc.Charge(cost.CreateProveDlog)

	case ast.CreateProveDHTuple:
		pts := make([]kyber.Point, 4)
		for i, x := range []ast.Expr{n.G, n.H, n.U, n.V} {
			p, err := e.evalGroup(x, env)
			if err != nil {
				return nil, err
			}
			pts[i] = p
		}
		prop := sigma.ProveDHTuple{G: pts[0], H: pts[1], U: pts[2], V: pts[3]}
		return value.SigmaProp{Prop: prop}, e.acc.Charge(cost.CreateProveDHTuple)

	case ast.SigmaPropBytes:
		p, err := e.evalSigma(n.Input, env)
		if err != nil {
			return nil, err
		}
		if err := e.acc.ChargeItems(cost.SigmaPropBytes, len(sigma.Leaves(p))); err != nil {
			return nil, err
		}
		b, err := sigma.Bytes(p)
		if err != nil {
			return nil, err
		}
		return value.FromBytes(b), nil

	case ast.ConcreteCollection, ast.Tuple, ast.SelectField, ast.SizeOf, ast.ByIndex,
		ast.Slice, ast.Append, ast.MapCollection, ast.Filter, ast.Fold, ast.FlatMap,
		ast.Exists, ast.ForAll:
		return e.evalCollection(n, env)

	case ast.OptionGet:
		o, err := e.evalOption(n.Input, env)
		if err != nil {
			return nil, err
		}
		if err := e.acc.Charge(cost.OptionGet); err != nil {
			return nil, err
		}
		if !o.IsDefined() {
			return nil, ErrNoneValue
		}
		return o.Val, nil

	case ast.OptionIsDefined:
		o, err := e.evalOption(n.Input, env)
		if err != nil {
			return nil, err
		}
		return value.Bool(o.IsDefined()), e.acc.Charge(cost.OptionIsDefined)

	case ast.OptionGetOrElse:
		o, err := e.evalOption(n.Input, env)
		if err != nil {
			return nil, err
		}
		def, err := e.Eval(n.Default, env)
		if err != nil {
			return nil, err
		}
		if err := e.acc.Charge(cost.OptionGetOrElse); err != nil {
			return nil, err
		}
		if o.IsDefined() {
			return o.Val, nil
		}
		return def, nil

	case ast.Height, ast.Inputs, ast.Outputs, ast.Self, ast.DataInputs, ast.Headers,
		ast.PreHeader, ast.MinerPubKey, ast.GetVar:
		return e.evalContext(n)

	case ast.ExtractAmount, ast.ExtractScriptBytes, ast.ExtractID, ast.ExtractRegisterAs,
		ast.ExtractCreationInfo:
		return e.evalBoxAccess(n, env)

	case ast.CalcBlake2b256, ast.CalcSha256, ast.Exponentiate, ast.MultiplyGroup,
		ast.DecodePoint, ast.GroupGenerator, ast.Xor, ast.LongToByteArray,
		ast.ByteArrayToLong, ast.ByteArrayToBigInt:
		return e.evalCrypto(n, env)

	case ast.MethodCall:
		return e.evalMethodCall(n, env)

	case ast.Unknown:
		return nil, &SoftForkError{Version: e.version, OpCode: n.OpCode}

	case nil:
		return nil, fmt.Errorf("%w: nil expression", ErrInvalidArgument)

	default:
		return nil, fmt.Errorf("%w: unsupported node %T", ErrInvalidArgument, expr)
	}
}

// apply calls f with args in the environment f was defined in.
func (e *Evaluator) apply(f *Closure, args ...value.Value) (value.Value, error) {
	if err := e.acc.Charge(cost.Apply); err != nil {
		return nil, err
	}
	if len(args) != len(f.Args) {
		return nil, fmt.Errorf("%w: function of %d arguments applied to %d", ErrInvalidArgument, len(f.Args), len(args))
	}
	env := f.Env
	for i, a := range f.Args {
		env = env.Extend(a.ID, args[i])
	}
	return e.Eval(f.Body, env)
}

func (e *Evaluator) evalAll(xs []ast.Expr, env *Env) ([]value.Value, error) {
	out := make([]value.Value, len(xs))
	for i, x := range xs {
		v, err := e.Eval(x, env)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (e *Evaluator) evalPair(l, r ast.Expr, env *Env) (value.Value, value.Value, error) {
	lv, err := e.Eval(l, env)
	if err != nil {
		return nil, nil, err
	}
	rv, err := e.Eval(r, env)
	if err != nil {
		return nil, nil, err
	}
	return lv, rv, nil
}

func (e *Evaluator) evalBool(x ast.Expr, env *Env) (bool, error) {
	v, err := e.Eval(x, env)
	if err != nil {
		return false, err
	}
	b, ok := v.(value.Bool)
	if !ok {
		return false, typeMismatch("boolean operand", v)
	}
	return bool(b), nil
}

func (e *Evaluator) evalInt(x ast.Expr, env *Env) (int, error) {
	v, err := e.Eval(x, env)
	if err != nil {
		return 0, err
	}
	i, ok := v.(value.Int)
	if !ok {
		return 0, typeMismatch("index", v)
	}
	return int(i), nil
}

func (e *Evaluator) evalColl(x ast.Expr, env *Env) (value.Coll, error) {
	v, err := e.Eval(x, env)
	if err != nil {
		return value.Coll{}, err
	}
	c, ok := v.(value.Coll)
	if !ok {
		return value.Coll{}, typeMismatch("collection operation", v)
	}
	return c, nil
}

func (e *Evaluator) evalBytes(x ast.Expr, env *Env) ([]byte, error) {
	v, err := e.Eval(x, env)
	if err != nil {
		return nil, err
	}
	b, err := value.ToBytes(v)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTypeMismatch, err)
	}
	return b, nil
}

func (e *Evaluator) evalOption(x ast.Expr, env *Env) (value.Option, error) {
	v, err := e.Eval(x, env)
	if err != nil {
		return value.Option{}, err
	}
	o, ok := v.(value.Option)
	if !ok {
		return value.Option{}, typeMismatch("option operation", v)
	}
	return o, nil
}

func (e *Evaluator) evalGroup(x ast.Expr, env *Env) (kyber.Point, error) {
	v, err := e.Eval(x, env)
	if err != nil {
		return nil, err
	}
	g, ok := v.(value.GroupElement)
	if !ok {
		return nil, typeMismatch("group operation", v)
	}
	return g.P, nil
}

func (e *Evaluator) evalSigma(x ast.Expr, env *Env) (sigma.SigmaBoolean, error) {
	v, err := e.Eval(x, env)
	if err != nil {
		return nil, err
	}
	return asSigma(v)
}

func asSigma(v value.Value) (sigma.SigmaBoolean, error) {
	p, ok := v.(value.SigmaProp)
	if !ok {
		return nil, typeMismatch("sigma connective", v)
	}
	return p.Prop, nil
}

func (e *Evaluator) evalSigmas(xs []ast.Expr, env *Env) ([]sigma.SigmaBoolean, error) {
	out := make([]sigma.SigmaBoolean, len(xs))
	for i, x := range xs {
		p, err := e.evalSigma(x, env)
		if err != nil {
			return nil, err
		}
		out[i] = p
	}
	return out, nil
}

func (e *Evaluator) evalClosure(x ast.Expr, env *Env) (*Closure, error) {
	v, err := e.Eval(x, env)
	if err != nil {
		return nil, err
	}
	f, ok := v.(*Closure)
	if !ok {
		return nil, typeMismatch("application", v)
	}
	return f, nil
}

func (e *Evaluator) evalLogical(n ast.Expr, env *Env) (value.Value, error) {
	var input ast.Expr
	op, isAnd := cost.LogicalOr, false
	switch x := n.(type) {
	case ast.LogicalAnd:
		input, op, isAnd = x.Input, cost.LogicalAnd, true
	case ast.LogicalOr:
		input = x.Input
	}
	c, err := e.evalColl(input, env)
	if err != nil {
		return nil, err
	}
	if err := e.acc.ChargeItems(op, c.Len()); err != nil {
		return nil, err
	}
	for _, item := range c.Items {
		b, ok := item.(value.Bool)
		if !ok {
			return nil, typeMismatch("logical fold", item)
		}
		if bool(b) != isAnd {
			return value.Bool(!isAnd), nil
		}
	}
	return value.Bool(isAnd), nil
}

func (e *Evaluator) evalAtLeast(n ast.AtLeast, env *Env) (value.Value, error) {
	k, err := e.evalInt(n.Bound, env)
	if err != nil {
		return nil, err
	}
	c, err := e.evalColl(n.Input, env)
	if err != nil {
		return nil, err
	}
	if err := e.acc.ChargeItems(cost.AtLeast, c.Len()); err != nil {
		return nil, err
	}
	props := make([]sigma.SigmaBoolean, c.Len())
	for i, item := range c.Items {
		if props[i], err = asSigma(item); err != nil {
			return nil, err
		}
	}
	prop, err := sigma.NewThreshold(k, props...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	return value.SigmaProp{Prop: prop}, nil
}

func (e *Evaluator) evalContext(n ast.Expr) (value.Value, error) {
	switch x := n.(type) {
	case ast.Height:
		return value.Int(e.ctx.Height()), e.acc.Charge(cost.Height)
	case ast.Inputs:
		return boxColl(e.ctx.Inputs()), e.acc.Charge(cost.Inputs)
	case ast.Outputs:
		return boxColl(e.ctx.Outputs()), e.acc.Charge(cost.Outputs)
	case ast.DataInputs:
		return boxColl(e.ctx.DataInputs()), e.acc.Charge(cost.DataInputs)
	case ast.Headers:
		return headerColl(e.ctx.Headers()), e.acc.Charge(cost.Headers)
	case ast.Self:
		if err := e.acc.Charge(cost.Self); err != nil {
			return nil, err
		}
		b := e.ctx.Self()
		if b == nil {
			return nil, fmt.Errorf("%w: context has no self box", ErrInvalidArgument)
		}
		return b, nil
	case ast.PreHeader:
		if err := e.acc.Charge(cost.PreHeader); err != nil {
			return nil, err
		}
		p := e.ctx.PreHeader()
		if p == nil {
			return nil, fmt.Errorf("%w: context has no pre-header", ErrInvalidArgument)
		}
		return p, nil
	case ast.MinerPubKey:
		return value.FromBytes(e.ctx.MinerPubKey()), e.acc.Charge(cost.MinerPubKey)
	case ast.GetVar:
		if err := e.acc.Charge(cost.GetVar); err != nil {
			return nil, err
		}
		v, ok := e.ctx.Var(x.ID)
		if !ok {
			return value.None(x.Type), nil
		}
		if !value.Conforms(v.Type(), x.Type) {
			return nil, fmt.Errorf("%w: variable %d is %s, expected %s", ErrTypeMismatch, x.ID, v.Type(), x.Type)
		}
		return value.Option{Elem: x.Type, Val: v}, nil
	}
	return nil, fmt.Errorf("%w: %T", ErrInvalidArgument, n)
}

func (e *Evaluator) evalBoxAccess(n ast.Expr, env *Env) (value.Value, error) {
	var input ast.Expr
	var op *cost.Op
	switch x := n.(type) {
	case ast.ExtractAmount:
		input, op = x.Input, cost.ExtractAmount
	case ast.ExtractScriptBytes:
		input, op = x.Input, cost.ExtractScriptBytes
	case ast.ExtractID:
		input, op = x.Input, cost.ExtractID
	case ast.ExtractRegisterAs:
		input, op = x.Input, cost.ExtractRegisterAs
	case ast.ExtractCreationInfo:
		input, op = x.Input, cost.ExtractCreationInfo
	}
	v, err := e.Eval(input, env)
	if err != nil {
		return nil, err
	}
	b, ok := v.(*value.Box)
	if !ok {
		return nil, typeMismatch("box access", v)
	}
	if err := e.acc.Charge(op); err != nil {
		return nil, err
	}
	switch n.(type) {
	case ast.ExtractAmount:
		return value.Long(b.Value), nil
	case ast.ExtractScriptBytes:
		return value.FromBytes(b.PropositionBytes), nil
	case ast.ExtractID:
		return value.FromBytes(b.ID[:]), nil
	case ast.ExtractCreationInfo:
		return b.CreationInfo(), nil
	default:
		r := n.(ast.ExtractRegisterAs)
		if r.Register < 0 || r.Register > value.LastRegister {
			return nil, fmt.Errorf("%w: register R%d", ErrIndexOutOfBounds, r.Register)
		}
		reg, ok := b.Register(r.Register)
		if !ok {
			return value.None(r.Type), nil
		}
		if !value.Conforms(reg.Type(), r.Type) {
			return nil, fmt.Errorf("%w: R%d is %s, expected %s", ErrTypeMismatch, r.Register, reg.Type(), r.Type)
		}
		return value.Option{Elem: r.Type, Val: reg}, nil
	}
}

// dataSize is the number of primitive values in v, used to charge
// structural comparisons.
func dataSize(v value.Value) int {
	switch x := v.(type) {
	case value.Coll:
		n := 1
		for _, item := range x.Items {
			n += dataSize(item)
		}
		return n
	case value.Tuple:
		n := 1
		for _, item := range x {
			n += dataSize(item)
		}
		return n
	case value.Option:
		if x.IsDefined() {
			return 1 + dataSize(x.Val)
		}
		return 1
	default:
		return 1
	}
}
