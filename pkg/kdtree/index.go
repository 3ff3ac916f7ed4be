package kdtree

import (
	"sync/atomic"

	"github.com/bellorr/imagevec/pkg/feature"
	idxpkg "github.com/bellorr/imagevec/pkg/index"
)

// Index wraps a Tree and a BestBinFirst searcher behind the common
// Buildable/Searchable contract. A build atomically publishes a new
// Tree via a single atomic.Pointer store; concurrent queries observe
// either the old or the new tree in full, never a partial one.
type Index struct {
	tree   atomic.Pointer[Tree]
	search *BestBinFirst
}

// New returns an empty, unbuilt KD-tree index using the given searcher
// configuration. A nil searcher uses NewDefaultBestBinFirst(MetricCosine).
func New(search *BestBinFirst) *Index {
	if search == nil {
		search = NewDefaultBestBinFirst(MetricCosine)
	}
	return &Index{search: search}
}

// Capabilities reports build and search support, but not insert: the
// median splits are computed once at build time.
func (idx *Index) Capabilities() idxpkg.Capabilities {
	return idxpkg.Capabilities{Buildable: true, Searchable: true}
}

// Build replaces the index's contents atomically.
func (idx *Index) Build(records []*feature.Record) error {
	tree, err := Build(records)
	if err != nil {
		return err
	}
	idx.tree.Store(tree)
	return nil
}

// Query delegates to the configured BestBinFirst searcher against the
// most recently published tree.
func (idx *Index) Query(q []float64, k int) ([]*feature.Record, error) {
	return idx.search.Query(idx.tree.Load(), q, k)
}

// Size returns the number of records in the most recently built tree.
func (idx *Index) Size() int {
	t := idx.tree.Load()
	if t == nil {
		return 0
	}
	return t.Size
}
