package eval

import (
	"github.com/zutxo/sigma/value"
)

// Context gives scripts read-only access to the transaction they guard.
// The evaluator never modifies it.
type Context interface {
	Height() int32
	Self() *value.Box
	Inputs() []*value.Box
	Outputs() []*value.Box
	DataInputs() []*value.Box
	Headers() []*value.Header
	PreHeader() *value.PreHeader
	MinerPubKey() []byte
	// Var returns the context extension variable id.
	Var(id byte) (value.Value, bool)
}

// TxContext is a Context built from plain fields.
type TxContext struct {
	CurrentHeight int32
	SelfBox       *value.Box
	InputBoxes    []*value.Box
	OutputBoxes   []*value.Box
	DataBoxes     []*value.Box
	LastHeaders   []*value.Header
	Pre           *value.PreHeader
	MinerPK       []byte
	Extension     map[byte]value.Value
}

var _ Context = (*TxContext)(nil)

func (c *TxContext) Height() int32               { return c.CurrentHeight }
func (c *TxContext) Self() *value.Box            { return c.SelfBox }
func (c *TxContext) Inputs() []*value.Box        { return c.InputBoxes }
func (c *TxContext) Outputs() []*value.Box       { return c.OutputBoxes }
func (c *TxContext) DataInputs() []*value.Box    { return c.DataBoxes }
func (c *TxContext) Headers() []*value.Header    { return c.LastHeaders }
func (c *TxContext) PreHeader() *value.PreHeader { return c.Pre }
func (c *TxContext) MinerPubKey() []byte         { return c.MinerPK }

func (c *TxContext) Var(id byte) (value.Value, bool) {
	v, ok := c.Extension[id]
	return v, ok
}

func boxColl(boxes []*value.Box) value.Coll {
	items := make([]value.Value, len(boxes))
	for i, b := range boxes {
		items[i] = b
	}
	return value.NewColl(value.TBox, items...)
}

func headerColl(headers []*value.Header) value.Coll {
	items := make([]value.Value, len(headers))
	for i, h := range headers {
		items[i] = h
	}
	return value.NewColl(value.THeader, items...)
}
