package interpreter

import (
	"crypto/cipher"
	"runtime"

	"github.com/drand/kyber"
	"github.com/drand/kyber/util/random"
	"github.com/jonboulle/clockwork"

	"github.com/zutxo/sigma/ast"
	"github.com/zutxo/sigma/common/log"
	"github.com/zutxo/sigma/crypto"
	"github.com/zutxo/sigma/eval"
)

// DefaultCacheSize is the number of trees kept by the tree cache.
const DefaultCacheSize = 1024

// DefaultMaxTreeNodes bounds the number of nodes of a tree a batch accepts.
const DefaultMaxTreeNodes = 4096

// ConfigOption is a function that applies a specific setting to a Config.
type ConfigOption func(*Config)

// Config holds the settings of an Interpreter. Cost limits are not part of
// it: every call takes its own.
type Config struct {
	scheme         *crypto.Scheme
	logger         log.Logger
	maxDepth       int
	maxNodes       int
	maxVersion     byte
	acceptSoftFork bool
	cacheSize      int
	workers        int
	clock          clockwork.Clock
	rand           cipher.Stream
}

// NewConfig returns the default config updated by the given options.
func NewConfig(opts ...ConfigOption) *Config {
	c := &Config{
		scheme:     crypto.NewSecp256k1Scheme(),
		logger:     log.DefaultLogger(),
		maxDepth:   eval.DefaultMaxDepth,
		maxNodes:   DefaultMaxTreeNodes,
		maxVersion: ast.MaxSupportedScriptVersion,
		cacheSize:  DefaultCacheSize,
		workers:    runtime.NumCPU(),
		clock:      clockwork.NewRealClock(),
		rand:       random.New(),
	}
	for i := range opts {
		opts[i](c)
	}
	return c
}

// Group returns the group proofs are expressed in.
func (c *Config) Group() kyber.Group {
	return c.scheme.Group
}

// Scheme returns the scheme of the config.
func (c *Config) Scheme() *crypto.Scheme {
	return c.scheme
}

// Logger returns the logger associated with this config.
func (c *Config) Logger() log.Logger {
	return c.logger
}

// AcceptSoftFork reports whether scripts the interpreter cannot reduce for
// lack of support are accepted by Verify.
func (c *Config) AcceptSoftFork() bool {
	return c.acceptSoftFork
}

// Workers returns the number of inputs verified in parallel by a batch.
func (c *Config) Workers() int {
	return c.workers
}

// Clock returns the clock batches are timed with.
func (c *Config) Clock() clockwork.Clock {
	return c.clock
}

func (c *Config) evalOptions() []eval.Option {
	return []eval.Option{
		eval.WithGroup(c.scheme.Group),
		eval.WithMaxDepth(c.maxDepth),
		eval.WithMaxScriptVersion(c.maxVersion),
	}
}

// WithScheme sets the group of the interpreter.
func WithScheme(s *crypto.Scheme) ConfigOption {
	return func(c *Config) {
		c.scheme = s
	}
}

// WithLogger sets the logger.
func WithLogger(l log.Logger) ConfigOption {
	return func(c *Config) {
		c.logger = l
	}
}

// WithMaxDepth bounds the nesting of evaluated expressions.
func WithMaxDepth(d int) ConfigOption {
	return func(c *Config) {
		c.maxDepth = d
	}
}

// WithMaxTreeNodes bounds the size of the trees a batch verifies. A bound
// of zero or less disables the check.
func WithMaxTreeNodes(n int) ConfigOption {
	return func(c *Config) {
		c.maxNodes = n
	}
}

// WithMaxScriptVersion sets the newest script version that is reduced.
func WithMaxScriptVersion(v byte) ConfigOption {
	return func(c *Config) {
		c.maxVersion = v
	}
}

// WithSoftForkAcceptance makes Verify accept scripts newer than the
// interpreter instead of failing on them.
func WithSoftForkAcceptance(accept bool) ConfigOption {
	return func(c *Config) {
		c.acceptSoftFork = accept
	}
}

// WithCacheSize sets the number of trees kept by the tree cache.
func WithCacheSize(n int) ConfigOption {
	return func(c *Config) {
		c.cacheSize = n
	}
}

// WithWorkers sets the number of inputs a batch verifies in parallel.
func WithWorkers(n int) ConfigOption {
	return func(c *Config) {
		if n > 0 {
			c.workers = n
		}
	}
}

// WithClock sets the clock used to time batches.
func WithClock(clk clockwork.Clock) ConfigOption {
	return func(c *Config) {
		c.clock = clk
	}
}

// WithRandomness sets the stream provers built by the interpreter draw from.
func WithRandomness(s cipher.Stream) ConfigOption {
	return func(c *Config) {
		c.rand = s
	}
}
