// Package cost accounts for the resources spent reducing and verifying
// scripts.
//
// Costs are expressed in JitCost, a unit ten times finer than the block cost
// billed to transactions. Every operation has a cost descriptor (Kind) and
// the evaluator charges an Accumulator after each operation; once the limit
// is crossed the accumulator fails and stays failed.
package cost

import (
	"errors"
	"fmt"
	"math"

	"github.com/zutxo/sigma/value"
)

// Scale is the number of JitCost units in one block cost unit.
const Scale = 10

var (
	// ErrCostLimitExceeded is wrapped by *LimitError.
	ErrCostLimitExceeded = errors.New("cost limit exceeded")
	// ErrCostOverflow is returned when cost arithmetic leaves the int64 range.
	ErrCostOverflow = errors.New("cost overflow")
	// ErrInvalidChunkSize is returned when a per-item cost has a chunk size
	// below one.
	ErrInvalidChunkSize = errors.New("invalid chunk size")
)

// JitCost is a cost in the evaluator's fine-grained unit.
type JitCost int64

// FromBlockCost converts a block cost to JitCost.
func FromBlockCost(c int64) (JitCost, error) {
	if c > math.MaxInt64/Scale || c < math.MinInt64/Scale {
		return 0, ErrCostOverflow
	}
	return JitCost(c * Scale), nil
}

// ToBlockCost converts c to block cost units, rounding down.
func (c JitCost) ToBlockCost() int64 {
	return int64(c) / Scale
}

// Add returns c + o.
func (c JitCost) Add(o JitCost) (JitCost, error) {
	r := c + o
	if (o > 0 && r < c) || (o < 0 && r > c) {
		return 0, ErrCostOverflow
	}
	return r, nil
}

// Mul returns c * n.
func (c JitCost) Mul(n int64) (JitCost, error) {
	if c == 0 || n == 0 {
		return 0, nil
	}
	r := int64(c) * n
	if r/n != int64(c) || (n == -1 && c == math.MinInt64) {
		return 0, ErrCostOverflow
	}
	return JitCost(r), nil
}

// LimitError reports the accumulated cost when the limit was crossed.
type LimitError struct {
	Op    string
	Total JitCost
	Limit JitCost
}

func (e *LimitError) Error() string {
	return fmt.Sprintf("%s: %d > %d at %s", ErrCostLimitExceeded, e.Total, e.Limit, e.Op)
}

func (e *LimitError) Unwrap() error {
	return ErrCostLimitExceeded
}

// Kind describes how the cost of an operation is computed.
type Kind interface {
	fmt.Stringer
	isKind()
}

// FixedCost is a constant cost.
type FixedCost struct {
	Cost JitCost
}

// PerItemCost charges Base plus PerChunk for every started chunk of
// ChunkSize items. Zero items count as one chunk.
type PerItemCost struct {
	Base      JitCost
	PerChunk  JitCost
	ChunkSize int
}

// TypeBasedCost depends on the type of the operands.
type TypeBasedCost struct {
	ByType func(t value.Type) (JitCost, error)
}

func (FixedCost) isKind()     {}
func (PerItemCost) isKind()   {}
func (TypeBasedCost) isKind() {}

func (f FixedCost) String() string { return fmt.Sprintf("Fixed(%d)", f.Cost) }

func (p PerItemCost) String() string {
	return fmt.Sprintf("PerItem(%d, %d, %d)", p.Base, p.PerChunk, p.ChunkSize)
}

func (TypeBasedCost) String() string { return "TypeBased" }

// Chunks returns the number of chunks charged for n items, or 0 when the
// chunk size is not positive.
func (p PerItemCost) Chunks(n int) int {
	if p.ChunkSize <= 0 {
		return 0
	}
	if n <= 0 {
		return 1
	}
	return (n-1)/p.ChunkSize + 1
}

// Cost returns Base + Chunks(n) * PerChunk.
func (p PerItemCost) Cost(n int) (JitCost, error) {
	if p.ChunkSize <= 0 {
		return 0, fmt.Errorf("%w: %s", ErrInvalidChunkSize, p)
	}
	perChunks, err := p.PerChunk.Mul(int64(p.Chunks(n)))
	if err != nil {
		return 0, err
	}
	return p.Base.Add(perChunks)
}

// Op is the cost descriptor of one operation.
type Op struct {
	Name string
	Kind Kind
}

// Fixed declares an operation with a constant cost.
func Fixed(name string, c JitCost) *Op {
	return &Op{Name: name, Kind: FixedCost{Cost: c}}
}

// PerItem declares an operation whose cost grows with a number of items.
func PerItem(name string, base, perChunk JitCost, chunkSize int) *Op {
	return &Op{Name: name, Kind: PerItemCost{Base: base, PerChunk: perChunk, ChunkSize: chunkSize}}
}

// TypeBased declares an operation whose cost depends on an operand type.
func TypeBased(name string, f func(value.Type) (JitCost, error)) *Op {
	return &Op{Name: name, Kind: TypeBasedCost{ByType: f}}
}
