package eval

import (
	"fmt"

	"github.com/zutxo/sigma/ast"
	"github.com/zutxo/sigma/cost"
	"github.com/zutxo/sigma/sigma"
	"github.com/zutxo/sigma/value"
)

type methodFunc func(e *Evaluator, recv value.Value, args []value.Value) (value.Value, error)

// method is the evaluation metadata of one method of a type.
type method struct {
	invoke methodFunc
	cost   *cost.Op
	// items, when set, gives the item count PerItem costs are charged for.
	items func(recv value.Value, args []value.Value) int
	arity int
}

type methodKey struct {
	typeCode byte
	name     string
}

// methodTable maps (receiver type, name) to a method.
type methodTable map[methodKey]*method

var methods = newMethodTable()

func collLen(recv value.Value, _ []value.Value) int {
	return recv.(value.Coll).Len()
}

func newMethodTable() methodTable {
	tbl := make(methodTable)
	coll, opt := value.CollCode, value.OptionCode
	box, hdr, pre := value.TBox.Code(), value.THeader.Code(), value.TPreHeader.Code()
	ge, sp, global := value.TGroupElement.Code(), value.TSigmaProp.Code(), value.TGlobal.Code()

	tbl[methodKey{coll, "size"}] = &method{invoke: collSize, cost: cost.Fixed("Coll.size", 14)}
	tbl[methodKey{coll, "isEmpty"}] = &method{invoke: collIsEmpty, cost: cost.Fixed("Coll.isEmpty", 14)}
	tbl[methodKey{coll, "indices"}] = &method{invoke: collIndices, cost: cost.PerItem("Coll.indices", 20, 2, 16), items: collLen}
	tbl[methodKey{coll, "zip"}] = &method{invoke: collZip, cost: cost.PerItem("Coll.zip", 10, 1, 10), items: collLen, arity: 1}
	tbl[methodKey{coll, "getOrElse"}] = &method{invoke: collGetOrElse, cost: cost.Fixed("Coll.getOrElse", 30), arity: 2}
	tbl[methodKey{coll, "reverse"}] = &method{invoke: collReverse, cost: cost.PerItem("Coll.reverse", 10, 1, 10), items: collLen}

	tbl[methodKey{opt, "isDefined"}] = &method{invoke: optIsDefined, cost: cost.Fixed("Option.isDefined", 10)}
	tbl[methodKey{opt, "get"}] = &method{invoke: optGet, cost: cost.Fixed("Option.get", 15)}
	tbl[methodKey{opt, "getOrElse"}] = &method{invoke: optGetOrElse, cost: cost.Fixed("Option.getOrElse", 20), arity: 1}

	tbl[methodKey{box, "value"}] = &method{invoke: boxValue, cost: cost.Fixed("Box.value", 8)}
	tbl[methodKey{box, "propositionBytes"}] = &method{invoke: boxScript, cost: cost.Fixed("Box.propositionBytes", 10)}
	tbl[methodKey{box, "id"}] = &method{invoke: boxID, cost: cost.Fixed("Box.id", 12)}
	tbl[methodKey{box, "tokens"}] = &method{invoke: boxTokens, cost: cost.Fixed("Box.tokens", 15)}
	tbl[methodKey{box, "creationInfo"}] = &method{invoke: boxCreationInfo, cost: cost.Fixed("Box.creationInfo", 16)}

	tbl[methodKey{hdr, "id"}] = &method{invoke: headerID, cost: cost.Fixed("Header.id", 10)}
	tbl[methodKey{hdr, "version"}] = &method{invoke: headerVersion, cost: cost.Fixed("Header.version", 10)}
	tbl[methodKey{hdr, "parentId"}] = &method{invoke: headerParentID, cost: cost.Fixed("Header.parentId", 10)}
	tbl[methodKey{hdr, "stateRoot"}] = &method{invoke: headerStateRoot, cost: cost.Fixed("Header.stateRoot", 10)}
	tbl[methodKey{hdr, "timestamp"}] = &method{invoke: headerTimestamp, cost: cost.Fixed("Header.timestamp", 10)}
	tbl[methodKey{hdr, "nBits"}] = &method{invoke: headerNBits, cost: cost.Fixed("Header.nBits", 10)}
	tbl[methodKey{hdr, "height"}] = &method{invoke: headerHeight, cost: cost.Fixed("Header.height", 10)}
	tbl[methodKey{hdr, "minerPk"}] = &method{invoke: headerMinerPK, cost: cost.Fixed("Header.minerPk", 10)}

	tbl[methodKey{pre, "version"}] = &method{invoke: preVersion, cost: cost.Fixed("PreHeader.version", 10)}
	tbl[methodKey{pre, "parentId"}] = &method{invoke: preParentID, cost: cost.Fixed("PreHeader.parentId", 10)}
	tbl[methodKey{pre, "timestamp"}] = &method{invoke: preTimestamp, cost: cost.Fixed("PreHeader.timestamp", 10)}
	tbl[methodKey{pre, "nBits"}] = &method{invoke: preNBits, cost: cost.Fixed("PreHeader.nBits", 10)}
	tbl[methodKey{pre, "height"}] = &method{invoke: preHeight, cost: cost.Fixed("PreHeader.height", 10)}
	tbl[methodKey{pre, "minerPk"}] = &method{invoke: preMinerPK, cost: cost.Fixed("PreHeader.minerPk", 10)}

	tbl[methodKey{ge, "getEncoded"}] = &method{invoke: geEncoded, cost: cost.Fixed("GroupElement.getEncoded", 250)}
	tbl[methodKey{ge, "negate"}] = &method{invoke: geNegate, cost: cost.Fixed("GroupElement.negate", 45)}
	tbl[methodKey{ge, "exp"}] = &method{invoke: geExp, cost: cost.Exponentiate, arity: 1}
	tbl[methodKey{ge, "multiply"}] = &method{invoke: geMultiply, cost: cost.MultiplyGroup, arity: 1}

	tbl[methodKey{sp, "propBytes"}] = &method{invoke: sigmaPropBytes, cost: cost.SigmaPropBytes,
		items: func(recv value.Value, _ []value.Value) int {
			return len(sigma.Leaves(recv.(value.SigmaProp).Prop))
		}}

	tbl[methodKey{global, "groupGenerator"}] = &method{invoke: globalGenerator, cost: cost.GroupGenerator}
	tbl[methodKey{global, "xor"}] = &method{invoke: globalXor, cost: cost.Xor, arity: 2,
		items: func(_ value.Value, args []value.Value) int {
			return args[0].(value.Coll).Len()
		}}
	return tbl
}

// globalObject is the receiver of methods called without a receiver.
type globalObject struct{}

func (globalObject) Type() value.Type { return value.TGlobal }

func (e *Evaluator) evalMethodCall(n ast.MethodCall, env *Env) (value.Value, error) {
	var recv value.Value = globalObject{}
	if n.Receiver != nil {
		v, err := e.Eval(n.Receiver, env)
		if err != nil {
			return nil, err
		}
		recv = v
	}
	args, err := e.evalAll(n.Args, env)
	if err != nil {
		return nil, err
	}
	m, ok := methods[methodKey{recv.Type().Code(), n.Method}]
	if !ok {
		return nil, fmt.Errorf("%w: %s.%s", ErrUnknownMethod, recv.Type(), n.Method)
	}
	if len(args) != m.arity {
		return nil, fmt.Errorf("%w: %s.%s takes %d arguments, got %d", ErrInvalidArgument, recv.Type(), n.Method, m.arity, len(args))
	}
	if m.items != nil {
		if err := checkItemArgs(n.Method, args); err != nil {
			return nil, err
		}
		err = e.acc.ChargeItems(m.cost, m.items(recv, args))
	} else {
		err = e.acc.Charge(m.cost)
	}
	if err != nil {
		return nil, err
	}
	return m.invoke(e, recv, args)
}

// checkItemArgs guards the item counters that read their arguments.
func checkItemArgs(name string, args []value.Value) error {
	if name == "xor" {
		if _, ok := args[0].(value.Coll); !ok {
			return typeMismatch("xor", args[0])
		}
	}
	return nil
}

func collSize(_ *Evaluator, recv value.Value, _ []value.Value) (value.Value, error) {
	return value.Int(recv.(value.Coll).Len()), nil
}

func collIsEmpty(_ *Evaluator, recv value.Value, _ []value.Value) (value.Value, error) {
	return value.Bool(recv.(value.Coll).Len() == 0), nil
}

func collIndices(_ *Evaluator, recv value.Value, _ []value.Value) (value.Value, error) {
	c := recv.(value.Coll)
	out := make([]value.Value, c.Len())
	for i := range out {
		out[i] = value.Int(i)
	}
	return value.NewColl(value.TInt, out...), nil
}

func collZip(_ *Evaluator, recv value.Value, args []value.Value) (value.Value, error) {
	l := recv.(value.Coll)
	r, ok := args[0].(value.Coll)
	if !ok {
		return nil, typeMismatch("zip", args[0])
	}
	n := l.Len()
	if r.Len() < n {
		n = r.Len()
	}
	out := make([]value.Value, n)
	for i := 0; i < n; i++ {
		out[i] = value.Tuple{l.Items[i], r.Items[i]}
	}
	return value.NewColl(value.TupleType{Items: []value.Type{l.Elem, r.Elem}}, out...), nil
}

func collGetOrElse(_ *Evaluator, recv value.Value, args []value.Value) (value.Value, error) {
	c := recv.(value.Coll)
	i, ok := args[0].(value.Int)
	if !ok {
		return nil, typeMismatch("getOrElse index", args[0])
	}
	if int(i) < 0 || int(i) >= c.Len() {
		return args[1], nil
	}
	return c.Items[i], nil
}

func collReverse(_ *Evaluator, recv value.Value, _ []value.Value) (value.Value, error) {
	c := recv.(value.Coll)
	out := make([]value.Value, c.Len())
	for i, item := range c.Items {
		out[c.Len()-1-i] = item
	}
	return value.NewColl(c.Elem, out...), nil
}

func optIsDefined(_ *Evaluator, recv value.Value, _ []value.Value) (value.Value, error) {
	return value.Bool(recv.(value.Option).IsDefined()), nil
}

func optGet(_ *Evaluator, recv value.Value, _ []value.Value) (value.Value, error) {
	o := recv.(value.Option)
	if !o.IsDefined() {
		return nil, ErrNoneValue
	}
	return o.Val, nil
}

func optGetOrElse(_ *Evaluator, recv value.Value, args []value.Value) (value.Value, error) {
	o := recv.(value.Option)
	if o.IsDefined() {
		return o.Val, nil
	}
	return args[0], nil
}

func boxValue(_ *Evaluator, recv value.Value, _ []value.Value) (value.Value, error) {
	return value.Long(recv.(*value.Box).Value), nil
}

func boxScript(_ *Evaluator, recv value.Value, _ []value.Value) (value.Value, error) {
	return value.FromBytes(recv.(*value.Box).PropositionBytes), nil
}

func boxID(_ *Evaluator, recv value.Value, _ []value.Value) (value.Value, error) {
	id := recv.(*value.Box).ID
	return value.FromBytes(id[:]), nil
}

func boxTokens(_ *Evaluator, recv value.Value, _ []value.Value) (value.Value, error) {
	return recv.(*value.Box).TokensColl(), nil
}

func boxCreationInfo(_ *Evaluator, recv value.Value, _ []value.Value) (value.Value, error) {
	return recv.(*value.Box).CreationInfo(), nil
}

func headerID(_ *Evaluator, recv value.Value, _ []value.Value) (value.Value, error) {
	id := recv.(*value.Header).ID
	return value.FromBytes(id[:]), nil
}

func headerVersion(_ *Evaluator, recv value.Value, _ []value.Value) (value.Value, error) {
	return value.Byte(recv.(*value.Header).Version), nil
}

func headerParentID(_ *Evaluator, recv value.Value, _ []value.Value) (value.Value, error) {
	id := recv.(*value.Header).ParentID
	return value.FromBytes(id[:]), nil
}

func headerStateRoot(_ *Evaluator, recv value.Value, _ []value.Value) (value.Value, error) {
	return value.FromBytes(recv.(*value.Header).StateRoot), nil
}

func headerTimestamp(_ *Evaluator, recv value.Value, _ []value.Value) (value.Value, error) {
	return value.Long(recv.(*value.Header).Timestamp), nil
}

func headerNBits(_ *Evaluator, recv value.Value, _ []value.Value) (value.Value, error) {
	return value.Long(recv.(*value.Header).NBits), nil
}

func headerHeight(_ *Evaluator, recv value.Value, _ []value.Value) (value.Value, error) {
	return value.Int(recv.(*value.Header).Height), nil
}

func headerMinerPK(_ *Evaluator, recv value.Value, _ []value.Value) (value.Value, error) {
	pk := recv.(*value.Header).MinerPK
	if pk == nil {
		return nil, fmt.Errorf("%w: header without miner key", ErrInvalidArgument)
	}
	return value.GroupElement{P: pk}, nil
}

func preVersion(_ *Evaluator, recv value.Value, _ []value.Value) (value.Value, error) {
	return value.Byte(recv.(*value.PreHeader).Version), nil
}

func preParentID(_ *Evaluator, recv value.Value, _ []value.Value) (value.Value, error) {
	id := recv.(*value.PreHeader).ParentID
	return value.FromBytes(id[:]), nil
}

func preTimestamp(_ *Evaluator, recv value.Value, _ []value.Value) (value.Value, error) {
	return value.Long(recv.(*value.PreHeader).Timestamp), nil
}

func preNBits(_ *Evaluator, recv value.Value, _ []value.Value) (value.Value, error) {
	return value.Long(recv.(*value.PreHeader).NBits), nil
}

func preHeight(_ *Evaluator, recv value.Value, _ []value.Value) (value.Value, error) {
	return value.Int(recv.(*value.PreHeader).Height), nil
}

func preMinerPK(_ *Evaluator, recv value.Value, _ []value.Value) (value.Value, error) {
	pk := recv.(*value.PreHeader).MinerPK
	if pk == nil {
		return nil, fmt.Errorf("%w: pre-header without miner key", ErrInvalidArgument)
	}
	return value.GroupElement{P: pk}, nil
}

func geEncoded(_ *Evaluator, recv value.Value, _ []value.Value) (value.Value, error) {
	b, err := recv.(value.GroupElement).P.MarshalBinary()
	if err != nil {
		return nil, err
	}
	return value.FromBytes(b), nil
}

func geNegate(e *Evaluator, recv value.Value, _ []value.Value) (value.Value, error) {
	return value.GroupElement{P: e.group.Point().Neg(recv.(value.GroupElement).P)}, nil
}

func geExp(e *Evaluator, recv value.Value, args []value.Value) (value.Value, error) {
	k, ok := args[0].(value.BigInt)
	if !ok {
		return nil, typeMismatch("exp", args[0])
	}
	return value.GroupElement{P: e.exp(recv.(value.GroupElement).P, k)}, nil
}

func geMultiply(e *Evaluator, recv value.Value, args []value.Value) (value.Value, error) {
	o, ok := args[0].(value.GroupElement)
	if !ok {
		return nil, typeMismatch("multiply", args[0])
	}
	return value.GroupElement{P: e.group.Point().Add(recv.(value.GroupElement).P, o.P)}, nil
}

func sigmaPropBytes(_ *Evaluator, recv value.Value, _ []value.Value) (value.Value, error) {
	b, err := sigma.Bytes(recv.(value.SigmaProp).Prop)
	if err != nil {
		return nil, err
	}
	return value.FromBytes(b), nil
}

func globalGenerator(e *Evaluator, _ value.Value, _ []value.Value) (value.Value, error) {
	return value.GroupElement{P: e.group.Point().Base()}, nil
}

func globalXor(_ *Evaluator, _ value.Value, args []value.Value) (value.Value, error) {
	l, err := value.ToBytes(args[0])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTypeMismatch, err)
	}
	r, err := value.ToBytes(args[1])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTypeMismatch, err)
	}
	return value.FromBytes(xorBytes(l, r)), nil
}
