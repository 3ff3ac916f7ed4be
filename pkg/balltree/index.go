package balltree

import (
	"fmt"
	"math/rand"
	"sync/atomic"

	"github.com/bellorr/imagevec/pkg/envconfig"
	"github.com/bellorr/imagevec/pkg/feature"
	idxpkg "github.com/bellorr/imagevec/pkg/index"
)

// Index wraps a Tree and a branch-and-bound Searcher behind the common
// Buildable/Searchable contract. A build atomically publishes a new
// Tree via a single atomic.Pointer store.
type Index struct {
	tree     atomic.Pointer[Tree]
	leafSize int
	seed     int64
	searcher *Searcher
}

// New returns an empty, unbuilt ball-tree index. leafSize must be
// positive; callers wanting the default use NewDefault. seed drives the
// farthest-pair/degenerate-split RNG for reproducible builds.
func New(leafSize int, seed int64) (*Index, error) {
	if leafSize <= 0 {
		return nil, fmt.Errorf("%w: leaf size must be positive, got %d", idxpkg.ErrInvalidArgument, leafSize)
	}
	return &Index{leafSize: leafSize, seed: seed, searcher: NewSearcher()}, nil
}

// NewDefault returns an empty, unbuilt ball-tree index with
// DefaultLeafSize.
func NewDefault(seed int64) *Index {
	return &Index{leafSize: DefaultLeafSize, seed: seed, searcher: NewSearcher()}
}

// NewFromEnv is New with leafSize overridable by
// IMAGEVEC_BALLTREE_LEAF_SIZE.
func NewFromEnv(seed int64) (*Index, error) {
	return New(envconfig.Int("IMAGEVEC_BALLTREE_LEAF_SIZE", DefaultLeafSize), seed)
}

// Capabilities reports build and search support only.
func (idx *Index) Capabilities() idxpkg.Capabilities {
	return idxpkg.Capabilities{Buildable: true, Searchable: true}
}

// Build replaces the index's contents atomically.
func (idx *Index) Build(records []*feature.Record) error {
	rng := rand.New(rand.NewSource(idx.seed))
	tree, err := Build(records, idx.leafSize, rng)
	if err != nil {
		return err
	}
	idx.tree.Store(tree)
	return nil
}

// Query delegates to the branch-and-bound searcher against the most
// recently published tree.
func (idx *Index) Query(q []float64, k int) ([]*feature.Record, error) {
	return idx.searcher.Query(idx.tree.Load(), q, k)
}

// Size returns the number of records in the most recently built tree.
func (idx *Index) Size() int {
	t := idx.tree.Load()
	if t == nil {
		return 0
	}
	return t.Size
}
