package eval

import (
	"fmt"

	"github.com/zutxo/sigma/ast"
	"github.com/zutxo/sigma/cost"
	"github.com/zutxo/sigma/value"
)

func (e *Evaluator) evalCollection(n ast.Expr, env *Env) (value.Value, error) {
	switch x := n.(type) {
	case ast.ConcreteCollection:
		items, err := e.evalAll(x.Items, env)
		if err != nil {
			return nil, err
		}
		for _, item := range items {
			if !value.Conforms(item.Type(), x.Elem) {
				return nil, fmt.Errorf("%w: %s item in Coll[%s]", ErrTypeMismatch, item.Type(), x.Elem)
			}
		}
		return value.NewColl(x.Elem, items...), e.acc.ChargeItems(cost.ConcreteCollection, len(items))

	case ast.Tuple:
		items, err := e.evalAll(x.Items, env)
		if err != nil {
			return nil, err
		}
		return value.Tuple(items), e.acc.Charge(cost.Tuple)

	case ast.SelectField:
		v, err := e.Eval(x.Input, env)
		if err != nil {
			return nil, err
		}
		t, ok := v.(value.Tuple)
		if !ok {
			return nil, typeMismatch("field selection", v)
		}
		if err := e.acc.Charge(cost.SelectField); err != nil {
			return nil, err
		}
		if x.Index < 1 || x.Index > len(t) {
			return nil, fmt.Errorf("%w: field %d of %d", ErrIndexOutOfBounds, x.Index, len(t))
		}
		return t[x.Index-1], nil

	case ast.SizeOf:
		c, err := e.evalColl(x.Input, env)
		if err != nil {
			return nil, err
		}
		return value.Int(c.Len()), e.acc.Charge(cost.SizeOf)

	case ast.ByIndex:
		c, err := e.evalColl(x.Input, env)
		if err != nil {
			return nil, err
		}
		i, err := e.evalInt(x.Index, env)
		if err != nil {
			return nil, err
		}
		var def value.Value
		if x.Default != nil {
			if def, err = e.Eval(x.Default, env); err != nil {
				return nil, err
			}
		}
		if err := e.acc.Charge(cost.ByIndex); err != nil {
			return nil, err
		}
		if i < 0 || i >= c.Len() {
			if def != nil {
				return def, nil
			}
			return nil, fmt.Errorf("%w: index %d of %d", ErrIndexOutOfBounds, i, c.Len())
		}
		return c.Items[i], nil

	case ast.Slice:
		c, err := e.evalColl(x.Input, env)
		if err != nil {
			return nil, err
		}
		from, err := e.evalInt(x.From, env)
		if err != nil {
			return nil, err
		}
		until, err := e.evalInt(x.Until, env)
		if err != nil {
			return nil, err
		}
		if from < 0 {
			from = 0
		}
		if from > c.Len() {
			from = c.Len()
		}
		if until > c.Len() {
			until = c.Len()
		}
		if until < from {
			until = from
		}
		if err := e.acc.ChargeItems(cost.Slice, until-from); err != nil {
			return nil, err
		}
		return value.NewColl(c.Elem, c.Items[from:until:until]...), nil

	case ast.Append:
		l, err := e.evalColl(x.Left, env)
		if err != nil {
			return nil, err
		}
		r, err := e.evalColl(x.Right, env)
		if err != nil {
			return nil, err
		}
		if err := e.acc.ChargeItems(cost.Append, l.Len()+r.Len()); err != nil {
			return nil, err
		}
		items := make([]value.Value, 0, l.Len()+r.Len())
		items = append(items, l.Items...)
		items = append(items, r.Items...)
		return value.NewColl(l.Elem, items...), nil

	case ast.MapCollection:
		c, f, err := e.evalCollAndFunc(x.Input, x.Mapper, env)
		if err != nil {
			return nil, err
		}
		if err := e.acc.ChargeItems(cost.Map, c.Len()); err != nil {
			return nil, err
		}
		out := make([]value.Value, c.Len())
		elem := value.Type(value.TAny)
		for i, item := range c.Items {
			v, err := e.apply(f, item)
			if err != nil {
				return nil, err
			}
			out[i] = v
			if i == 0 {
				elem = v.Type()
			}
		}
		return value.NewColl(elem, out...), nil

	case ast.Filter:
		c, f, err := e.evalCollAndFunc(x.Input, x.Condition, env)
		if err != nil {
			return nil, err
		}
		if err := e.acc.ChargeItems(cost.Filter, c.Len()); err != nil {
			return nil, err
		}
		out := make([]value.Value, 0, c.Len())
		for _, item := range c.Items {
			keep, err := e.applyPredicate(f, item)
			if err != nil {
				return nil, err
			}
			if keep {
				out = append(out, item)
			}
		}
		return value.NewColl(c.Elem, out...), nil

	case ast.Fold:
		c, err := e.evalColl(x.Input, env)
		if err != nil {
			return nil, err
		}
		acc, err := e.Eval(x.Zero, env)
		if err != nil {
			return nil, err
		}
		f, err := e.evalClosure(x.Folder, env)
		if err != nil {
			return nil, err
		}
		if err := e.acc.ChargeItems(cost.Fold, c.Len()); err != nil {
			return nil, err
		}
		for _, item := range c.Items {
			if acc, err = e.apply(f, value.Tuple{acc, item}); err != nil {
				return nil, err
			}
		}
		return acc, nil

	case ast.FlatMap:
		c, f, err := e.evalCollAndFunc(x.Input, x.Mapper, env)
		if err != nil {
			return nil, err
		}
		if err := e.acc.ChargeItems(cost.FlatMap, c.Len()); err != nil {
			return nil, err
		}
		var out []value.Value
		elem := value.Type(value.TAny)
		for i, item := range c.Items {
			v, err := e.apply(f, item)
			if err != nil {
				return nil, err
			}
			inner, ok := v.(value.Coll)
			if !ok {
				return nil, typeMismatch("flatMap result", v)
			}
			if i == 0 {
				elem = inner.Elem
			}
			out = append(out, inner.Items...)
		}
		return value.NewColl(elem, out...), nil

	case ast.Exists:
		return e.evalQuantifier(x.Input, x.Condition, env, cost.Exists, true)

	case ast.ForAll:
		return e.evalQuantifier(x.Input, x.Condition, env, cost.ForAll, false)
	}
	return nil, fmt.Errorf("%w: %T", ErrInvalidArgument, n)
}

func (e *Evaluator) evalCollAndFunc(coll, fn ast.Expr, env *Env) (value.Coll, *Closure, error) {
	c, err := e.evalColl(coll, env)
	if err != nil {
		return value.Coll{}, nil, err
	}
	f, err := e.evalClosure(fn, env)
	if err != nil {
		return value.Coll{}, nil, err
	}
	return c, f, nil
}

func (e *Evaluator) applyPredicate(f *Closure, item value.Value) (bool, error) {
	v, err := e.apply(f, item)
	if err != nil {
		return false, err
	}
	b, ok := v.(value.Bool)
	if !ok {
		return false, typeMismatch("predicate result", v)
	}
	return bool(b), nil
}

// evalQuantifier implements Exists (stopOn true) and ForAll (stopOn false).
// Only the visited items are charged.
func (e *Evaluator) evalQuantifier(coll, fn ast.Expr, env *Env, op *cost.Op, stopOn bool) (value.Value, error) {
	c, f, err := e.evalCollAndFunc(coll, fn, env)
	if err != nil {
		return nil, err
	}
	visited := 0
	result := !stopOn
	for _, item := range c.Items {
		visited++
		b, err := e.applyPredicate(f, item)
		if err != nil {
			return nil, err
		}
		if b == stopOn {
			result = stopOn
			break
		}
	}
	return value.Bool(result), e.acc.ChargeItems(op, visited)
}
