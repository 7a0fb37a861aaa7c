package cost

import (
	"github.com/zutxo/sigma/value"
)

// TraceItem records one charge.
type TraceItem struct {
	Op    string
	Kind  string
	Items int
	Cost  JitCost
}

// Accumulator sums the cost of the operations of one call. It is not safe
// for concurrent use: every call owns its accumulator.
type Accumulator struct {
	total    JitCost
	limit    JitCost
	hasLimit bool
	err      error
	tracing  bool
	trace    []TraceItem
}

// AccumulatorOption configures an Accumulator.
type AccumulatorOption func(*Accumulator)

// WithTrace records every charge.
func WithTrace() AccumulatorOption {
	return func(a *Accumulator) {
		a.tracing = true
	}
}

// WithInitialCost starts the accumulator at c.
func WithInitialCost(c JitCost) AccumulatorOption {
	return func(a *Accumulator) {
		a.total = c
	}
}

// NewAccumulator returns an accumulator failing once its total exceeds limit.
func NewAccumulator(limit JitCost, opts ...AccumulatorOption) *Accumulator {
	a := &Accumulator{limit: limit, hasLimit: true}
	for _, o := range opts {
		o(a)
	}
	return a
}

// NewUnlimited returns an accumulator without limit. Overflow is still
// detected.
func NewUnlimited(opts ...AccumulatorOption) *Accumulator {
	a := &Accumulator{}
	for _, o := range opts {
		o(a)
	}
	return a
}

// Total returns the cost accumulated so far, including the charge that
// crossed the limit, if any.
func (a *Accumulator) Total() JitCost { return a.total }

// Limit returns the limit and whether there is one.
func (a *Accumulator) Limit() (JitCost, bool) { return a.limit, a.hasLimit }

// Err returns the error that stopped the accumulator, if any.
func (a *Accumulator) Err() error { return a.err }

// Trace returns the recorded charges.
func (a *Accumulator) Trace() []TraceItem { return a.trace }

// Add charges c on behalf of the operation named name.
func (a *Accumulator) Add(name string, c JitCost) error {
	return a.add(name, "Raw", 0, c)
}

// Charge charges a fixed cost operation. Operations of another kind are
// charged as if applied to a single item or to type Any.
func (a *Accumulator) Charge(op *Op) error {
	switch k := op.Kind.(type) {
	case FixedCost:
		return a.add(op.Name, op.Kind.String(), 0, k.Cost)
	case PerItemCost:
		return a.ChargeItems(op, 1)
	default:
		return a.ChargeType(op, value.TAny)
	}
}

// ChargeItems charges op for n items.
func (a *Accumulator) ChargeItems(op *Op, n int) error {
	k, ok := op.Kind.(PerItemCost)
	if !ok {
		return a.Charge(op)
	}
	c, err := k.Cost(n)
	if err != nil {
		return a.fail(err)
	}
	return a.add(op.Name, op.Kind.String(), n, c)
}

// ChargeType charges op for operands of type t.
func (a *Accumulator) ChargeType(op *Op, t value.Type) error {
	k, ok := op.Kind.(TypeBasedCost)
	if !ok {
		return a.Charge(op)
	}
	c, err := k.ByType(t)
	if err != nil {
		return a.fail(err)
	}
	return a.add(op.Name, op.Kind.String(), 0, c)
}

func (a *Accumulator) fail(err error) error {
	if a.err == nil {
		a.err = err
	}
	return a.err
}

func (a *Accumulator) add(name, kind string, n int, c JitCost) error {
	if a.err != nil {
		return a.err
	}
	total, err := a.total.Add(c)
	if err != nil {
		return a.fail(err)
	}
	a.total = total
	if a.tracing {
		a.trace = append(a.trace, TraceItem{Op: name, Kind: kind, Items: n, Cost: c})
	}
	if a.hasLimit && a.total > a.limit {
		return a.fail(&LimitError{Op: name, Total: a.total, Limit: a.limit})
	}
	return nil
}
