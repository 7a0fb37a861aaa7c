package interpreter

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/hashicorp/go-multierror"
	"golang.org/x/sync/errgroup"

	"github.com/zutxo/sigma/ast"
	"github.com/zutxo/sigma/common/log"
	"github.com/zutxo/sigma/cost"
	"github.com/zutxo/sigma/eval"
	"github.com/zutxo/sigma/metrics"
)

var (
	// ErrUnknownTree is returned for an input naming a tree that is not cached.
	ErrUnknownTree = errors.New("tree not in cache")
	// ErrTreeTooLarge is returned for a tree with more nodes than the
	// configured bound.
	ErrTreeTooLarge = errors.New("tree too large")
)

// Input is one script to verify. When Tree is nil the tree is looked up in
// the interpreter cache under TreeID. An input with both a Tree and a
// TreeID adds the tree to the cache.
type Input struct {
	Tree    *ast.ErgoTree
	TreeID  TreeID
	Context eval.Context
	Proof   []byte
	Message []byte
	Limit   cost.JitCost
}

// Result is the outcome of verifying one input.
type Result struct {
	Index int
	Valid bool
	Cost  cost.JitCost
	Err   error
}

// BatchOption configures a BatchVerifier.
type BatchOption func(*BatchVerifier)

// WithBatchWorkers overrides the number of inputs verified in parallel.
func WithBatchWorkers(n int) BatchOption {
	return func(b *BatchVerifier) {
		if n > 0 {
			b.workers = n
		}
	}
}

// WithBatchLogger sets the logger of the batch verifier.
func WithBatchLogger(l log.Logger) BatchOption {
	return func(b *BatchVerifier) {
		b.log = l
	}
}

// BatchVerifier verifies independent inputs in parallel. Each input is
// reduced with its own accumulator so that no cost is shared between them.
type BatchVerifier struct {
	interp  *Interpreter
	workers int
	log     log.Logger
	last    atomic.Int64
}

// NewBatchVerifier returns a batch verifier running on interp.
func NewBatchVerifier(interp *Interpreter, opts ...BatchOption) *BatchVerifier {
	b := &BatchVerifier{
		interp:  interp,
		workers: interp.conf.workers,
		log:     interp.log.Named("batch"),
	}
	for _, o := range opts {
		o(b)
	}
	return b
}

// VerifyAll verifies every input and returns one result per input, in
// input order. The error aggregates the failures of all inputs; an input
// with a well-formed but invalid proof is not a failure. Inputs not started
// when ctx is done fail with the context error.
func (b *BatchVerifier) VerifyAll(ctx context.Context, inputs []Input) ([]Result, error) {
	clk := b.interp.conf.clock
	start := clk.Now()
	results := make([]Result, len(inputs))

	g := new(errgroup.Group)
	g.SetLimit(b.workers)
	for i := range inputs {
		i := i
		g.Go(func() error {
			results[i] = b.verifyOne(ctx, i, inputs[i])
			return nil
		})
	}
	// workers never return errors, failures are kept per result
	_ = g.Wait()

	elapsed := clk.Since(start)
	b.last.Store(int64(elapsed))
	metrics.BatchLatency.Observe(elapsed.Seconds())

	var merr *multierror.Error
	valid := 0
	for _, r := range results {
		if r.Err != nil {
			merr = multierror.Append(merr, fmt.Errorf("input %d: %w", r.Index, r.Err))
		}
		if r.Valid {
			valid++
		}
	}
	b.log.Debugw("batch verified", "inputs", len(inputs), "valid", valid, "elapsed", elapsed)
	return results, merr.ErrorOrNil()
}

// LastElapsed returns how long the last batch took, measured on the
// configured clock.
func (b *BatchVerifier) LastElapsed() time.Duration {
	return time.Duration(b.last.Load())
}

// checkShape rejects a tree from its static shape, before it is evaluated.
// The depth bound is the evaluation one: a tree nested deeper could only
// be reduced when its deep branches are not taken.
func (i *Interpreter) checkShape(st ast.Stats) error {
	if st.Depth > i.conf.maxDepth {
		return fmt.Errorf("%w: depth %d above %d", eval.ErrTreeTooDeep, st.Depth, i.conf.maxDepth)
	}
	if i.conf.maxNodes > 0 && st.Nodes > i.conf.maxNodes {
		return fmt.Errorf("%w: %d nodes above %d", ErrTreeTooLarge, st.Nodes, i.conf.maxNodes)
	}
	return nil
}

func (b *BatchVerifier) verifyOne(ctx context.Context, i int, in Input) Result {
	res := Result{Index: i}
	if err := ctx.Err(); err != nil {
		res.Err = err
		return res
	}
	metrics.BatchInFlight.Inc()
	defer metrics.BatchInFlight.Dec()

	tree := in.Tree
	var stats ast.Stats
	switch {
	case tree == nil:
		cached, st, ok := b.interp.cache.Get(in.TreeID)
		if !ok {
			res.Err = fmt.Errorf("%w: %x", ErrUnknownTree, in.TreeID[:])
			return res
		}
		tree, stats = cached, st
	case in.TreeID != (TreeID{}):
		stats = b.interp.cache.Add(in.TreeID, tree)
	default:
		stats = ast.Analyze(tree.Root)
	}
	if err := b.interp.checkShape(stats); err != nil {
		metrics.VerificationCounter.WithLabelValues("rejected").Inc()
		res.Err = err
		return res
	}
	res.Valid, res.Cost, res.Err = b.interp.Verify(tree, in.Context, in.Proof, in.Message, in.Limit)
	return res
}
