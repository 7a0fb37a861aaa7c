// Package interpreter ties script reduction to proving and verification.
//
// Every call takes its own cost limit and owns its accumulator, so an
// Interpreter can serve concurrent calls. Verification charges a structural
// estimate of the cryptographic work before doing any group operation.
package interpreter

import (
	"errors"
	"fmt"

	"github.com/zutxo/sigma/ast"
	"github.com/zutxo/sigma/common/log"
	"github.com/zutxo/sigma/cost"
	"github.com/zutxo/sigma/eval"
	"github.com/zutxo/sigma/metrics"
	"github.com/zutxo/sigma/proof"
	"github.com/zutxo/sigma/sigma"
)

// verifyOp is the name verification estimates are charged under.
const verifyOp = "VerifyProof"

// Interpreter reduces scripts and proves or verifies the resulting
// propositions.
type Interpreter struct {
	conf  *Config
	cache *TreeCache
	log   log.Logger
}

// New returns an interpreter configured by opts.
func New(opts ...ConfigOption) (*Interpreter, error) {
	conf := NewConfig(opts...)
	cache, err := NewTreeCache(conf.cacheSize)
	if err != nil {
		return nil, fmt.Errorf("tree cache: %w", err)
	}
	return &Interpreter{
		conf:  conf,
		cache: cache,
		log:   conf.logger.Named("interpreter"),
	}, nil
}

// Config returns the configuration of the interpreter.
func (i *Interpreter) Config() *Config {
	return i.conf
}

// Cache returns the tree cache.
func (i *Interpreter) Cache() *TreeCache {
	return i.cache
}

// NewProver returns a prover over the group of the interpreter.
func (i *Interpreter) NewProver(secrets ...proof.Secret) *proof.Prover {
	return proof.NewProver(i.conf.Group(), secrets,
		proof.WithRandomness(i.conf.rand),
		proof.WithLogger(i.log.Named("prover")))
}

// ReductionResult is a reduced script and the cost of reducing it.
type ReductionResult struct {
	Prop sigma.SigmaBoolean
	Cost cost.JitCost
}

// Reduce evaluates tree against ctx within limit.
func (i *Interpreter) Reduce(tree *ast.ErgoTree, ctx eval.Context, limit cost.JitCost) (ReductionResult, error) {
	acc := cost.NewAccumulator(limit)
	prop, err := eval.EvalTree(tree, ctx, acc, i.conf.evalOptions()...)
	res := ReductionResult{Prop: prop, Cost: acc.Total()}
	metrics.ReductionCounter.WithLabelValues(outcome(err)).Inc()
	if err != nil {
		i.log.Debugw("reduction failed", "cost", int64(res.Cost), "err", err)
		return res, err
	}
	metrics.CostHistogram.WithLabelValues("reduce").Observe(float64(res.Cost))
	i.log.Debugw("reduced", "prop", prop.String(), "cost", int64(res.Cost))
	return res, nil
}

// Prove reduces tree and proves the result for message. The returned cost
// is the one a verifier of the proof is charged.
func (i *Interpreter) Prove(tree *ast.ErgoTree, ctx eval.Context, message []byte, prover *proof.Prover, hints *proof.HintsBag, limit cost.JitCost) ([]byte, cost.JitCost, error) {
	res, err := i.Reduce(tree, ctx, limit)
	if err != nil {
		metrics.ProofCounter.WithLabelValues("error").Inc()
		return nil, res.Cost, err
	}
	total, err := i.chargeVerification(res, limit)
	if err != nil {
		metrics.ProofCounter.WithLabelValues("error").Inc()
		return nil, total, err
	}
	pr, err := prover.Prove(res.Prop, message, hints)
	if err != nil {
		metrics.ProofCounter.WithLabelValues("error").Inc()
		return nil, total, err
	}
	metrics.ProofCounter.WithLabelValues("ok").Inc()
	return pr, total, nil
}

// Verify reduces tree and checks proofBytes against the result for
// message. A script the interpreter does not support fails with a
// *eval.SoftForkError unless soft forks are accepted, in which case it is
// accepted. A proof that does not parse fails with proof.ErrMalformedProof.
func (i *Interpreter) Verify(tree *ast.ErgoTree, ctx eval.Context, proofBytes, message []byte, limit cost.JitCost) (bool, cost.JitCost, error) {
	res, err := i.Reduce(tree, ctx, limit)
	if err != nil {
		if eval.IsSoftFork(err) && i.conf.acceptSoftFork {
			i.log.Warnw("accepting script beyond supported version", "err", err)
			metrics.VerificationCounter.WithLabelValues("soft_fork").Inc()
			return true, res.Cost, nil
		}
		metrics.VerificationCounter.WithLabelValues(outcome(err)).Inc()
		return false, res.Cost, err
	}
	if t, ok := res.Prop.(sigma.TrivialProp); ok {
		metrics.VerificationCounter.WithLabelValues(validity(t.Value)).Inc()
		return t.Value, res.Cost, nil
	}
	total, err := i.chargeVerification(res, limit)
	if err != nil {
		metrics.VerificationCounter.WithLabelValues("cost").Inc()
		return false, total, err
	}
	ok, err := proof.Verify(i.conf.Group(), res.Prop, proofBytes, message)
	if err != nil {
		metrics.VerificationCounter.WithLabelValues("malformed").Inc()
		return false, total, err
	}
	metrics.VerificationCounter.WithLabelValues(validity(ok)).Inc()
	metrics.CostHistogram.WithLabelValues("verify").Observe(float64(total))
	return ok, total, nil
}

// chargeVerification adds the verification estimate of the reduced
// proposition to the reduction cost.
func (i *Interpreter) chargeVerification(res ReductionResult, limit cost.JitCost) (cost.JitCost, error) {
	est, err := proof.EstimateCost(res.Prop)
	if err != nil {
		return res.Cost, err
	}
	acc := cost.NewAccumulator(limit, cost.WithInitialCost(res.Cost))
	if err := acc.Add(verifyOp, est); err != nil {
		return acc.Total(), err
	}
	return acc.Total(), nil
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case eval.IsSoftFork(err):
		return "soft_fork"
	case errors.Is(err, cost.ErrCostLimitExceeded):
		return "cost"
	default:
		return "error"
	}
}

func validity(ok bool) string {
	if ok {
		return "valid"
	}
	return "invalid"
}
