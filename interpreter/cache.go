package interpreter

import (
	lru "github.com/hashicorp/golang-lru"

	"github.com/zutxo/sigma/ast"
	"github.com/zutxo/sigma/crypto"
	"github.com/zutxo/sigma/metrics"
)

// TreeID identifies a tree by the blake2b-256 digest of its serialized
// form.
type TreeID [32]byte

// TreeIDFromBytes returns the id of a tree serialized as script.
func TreeIDFromBytes(script []byte) TreeID {
	return crypto.Blake2b256(script)
}

type cachedTree struct {
	tree  *ast.ErgoTree
	stats ast.Stats
}

// TreeCache keeps recently used trees with their shape statistics. Cached
// trees are shared between concurrent calls and must not be modified.
type TreeCache struct {
	cache *lru.ARCCache
}

// NewTreeCache returns a cache holding up to size trees.
func NewTreeCache(size int) (*TreeCache, error) {
	cache, err := lru.NewARC(size)
	if err != nil {
		return nil, err
	}
	return &TreeCache{cache: cache}, nil
}

// Add stores tree under id and returns its statistics.
func (c *TreeCache) Add(id TreeID, tree *ast.ErgoTree) ast.Stats {
	entry := &cachedTree{tree: tree, stats: ast.Analyze(tree.Root)}
	c.cache.Add(id, entry)
	return entry.stats
}

// Get returns the tree stored under id.
func (c *TreeCache) Get(id TreeID) (*ast.ErgoTree, ast.Stats, bool) {
	v, ok := c.cache.Get(id)
	if !ok {
		metrics.TreeCacheCounter.WithLabelValues("miss").Inc()
		return nil, ast.Stats{}, false
	}
	metrics.TreeCacheCounter.WithLabelValues("hit").Inc()
	entry := v.(*cachedTree)
	return entry.tree, entry.stats, true
}

// Len returns the number of cached trees.
func (c *TreeCache) Len() int {
	return c.cache.Len()
}
