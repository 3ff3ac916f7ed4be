package kdtree

import (
	"fmt"

	"github.com/bellorr/imagevec/internal/heap"
	"github.com/bellorr/imagevec/pkg/envconfig"
	"github.com/bellorr/imagevec/pkg/feature"
	"github.com/bellorr/imagevec/pkg/index"
	"github.com/bellorr/imagevec/pkg/vector"
)

// Metric selects the distance used by a BestBinFirst searcher.
type Metric int

const (
	// MetricCosine uses cosine distance. Because cosine distance is not
	// coordinate-additive, the far-child priority bound is always zero
	// under this metric: the search degrades toward an exhaustive
	// traversal bounded by MaxChecks rather than true geometric
	// pruning. Expected accuracy/performance trade-off, not a defect.
	MetricCosine Metric = iota
	// MetricEuclidean uses Euclidean distance. The far child is queued
	// with the squared coordinate gap as its priority, so nearer subtrees
	// are visited first; far subtrees are deferred, not discarded, and
	// MaxChecks is what bounds the work.
	MetricEuclidean
)

// DefaultMaxChecks is the default bound on nodes visited per query.
const DefaultMaxChecks = 1000

// BestBinFirst is a bounded priority-driven KD-tree searcher: it visits
// the most promising subtrees first and stops after MaxChecks nodes, so
// results are approximate with predictable per-query cost.
type BestBinFirst struct {
	MaxChecks int
	Metric    Metric
}

// NewBestBinFirst returns a searcher configured with maxChecks and the
// given metric. maxChecks must be positive; callers wanting the default
// budget use NewDefaultBestBinFirst.
func NewBestBinFirst(maxChecks int, metric Metric) (*BestBinFirst, error) {
	if maxChecks <= 0 {
		return nil, fmt.Errorf("%w: max checks must be positive, got %d", index.ErrInvalidArgument, maxChecks)
	}
	return &BestBinFirst{MaxChecks: maxChecks, Metric: metric}, nil
}

// NewDefaultBestBinFirst returns a searcher with DefaultMaxChecks and the
// given metric.
func NewDefaultBestBinFirst(metric Metric) *BestBinFirst {
	return &BestBinFirst{MaxChecks: DefaultMaxChecks, Metric: metric}
}

// NewBestBinFirstFromEnv is NewBestBinFirst with MaxChecks overridable by
// IMAGEVEC_KD_MAX_CHECKS.
func NewBestBinFirstFromEnv(metric Metric) (*BestBinFirst, error) {
	return NewBestBinFirst(envconfig.Int("IMAGEVEC_KD_MAX_CHECKS", DefaultMaxChecks), metric)
}

func (s *BestBinFirst) distance(a, b []float64) (float64, error) {
	if s.Metric == MetricEuclidean {
		return vector.EuclideanDistance(a, b)
	}
	return vector.CosineDistance(a, b)
}

// Query searches tree for up to k nearest records to q, visiting at most
// s.MaxChecks distinct nodes. A nil or empty tree returns ErrIndexNotReady.
func (s *BestBinFirst) Query(tree *Tree, q []float64, k int) ([]*feature.Record, error) {
	records, _, err := s.queryWithChecks(tree, q, k)
	return records, err
}

// queryWithChecks is the traversal behind Query; it also returns the
// number of distinct nodes visited, used by white-box tests to verify
// the MaxChecks bound.
func (s *BestBinFirst) queryWithChecks(tree *Tree, q []float64, k int) ([]*feature.Record, int, error) {
	if len(q) == 0 {
		return nil, 0, fmt.Errorf("%w: empty query vector", index.ErrInvalidArgument)
	}
	if k <= 0 {
		return nil, 0, fmt.Errorf("%w: k must be positive, got %d", index.ErrInvalidArgument, k)
	}
	if tree == nil || tree.Root == nil {
		return nil, 0, index.ErrIndexNotReady
	}
	if len(q) != tree.Dimensions {
		return nil, 0, fmt.Errorf("%w: query has %d dims, index has %d", index.ErrInvalidArgument, len(q), tree.Dimensions)
	}

	frontier := heap.NewFrontier()
	results := heap.NewBoundedResults(k)
	visited := make(map[*Node]bool)

	frontier.Push(heap.NodeItem{Payload: tree.Root, Priority: 0})

	checks := 0
	for frontier.Len() > 0 && checks < s.MaxChecks {
		item := frontier.Pop()
		node := item.Payload.(*Node)
		if visited[node] {
			continue
		}
		visited[node] = true
		checks++

		d, err := s.distance(q, node.Record.RawVector())
		if err != nil {
			return nil, checks, err
		}
		results.Offer(heap.ResultItem{Payload: node.Record, Distance: d})

		axisValue := node.Record.RawVector()[node.Axis]
		near, far := node.Left, node.Right
		if q[node.Axis] >= axisValue {
			near, far = node.Right, node.Left
		}
		if near != nil {
			frontier.Push(heap.NodeItem{Payload: near, Priority: 0})
		}
		if far != nil {
			priority := 0.0
			if s.Metric == MetricEuclidean {
				diff := q[node.Axis] - axisValue
				priority = diff * diff
			}
			frontier.Push(heap.NodeItem{Payload: far, Priority: priority})
		}
	}

	drained := results.Drain()
	out := make([]*feature.Record, len(drained))
	for i, item := range drained {
		out[i] = item.Payload.(*feature.Record)
	}
	return out, checks, nil
}
