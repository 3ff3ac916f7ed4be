package balltree

import (
	"fmt"

	"github.com/bellorr/imagevec/internal/heap"
	"github.com/bellorr/imagevec/pkg/feature"
	"github.com/bellorr/imagevec/pkg/index"
	"github.com/bellorr/imagevec/pkg/vector"
)

// Searcher performs branch-and-bound KNN search over a Tree. It is only
// valid for Euclidean distance: the pruning rule's correctness depends
// on the Euclidean triangle inequality.
type Searcher struct{}

// NewSearcher returns a ball-tree branch-and-bound searcher.
func NewSearcher() *Searcher {
	return &Searcher{}
}

func lowerBound(q []float64, n *Node) (float64, error) {
	d, err := vector.EuclideanDistance(q, n.Centroid)
	if err != nil {
		return 0, err
	}
	lb := d - n.Radius
	if lb < 0 {
		lb = 0
	}
	return lb, nil
}

// Query returns up to k records ascending by Euclidean distance to q. k
// is clamped to the tree's size. A nil or empty tree returns
// ErrIndexNotReady.
func (s *Searcher) Query(tree *Tree, q []float64, k int) ([]*feature.Record, error) {
	if len(q) == 0 {
		return nil, fmt.Errorf("%w: empty query vector", index.ErrInvalidArgument)
	}
	if k <= 0 {
		return nil, fmt.Errorf("%w: k must be positive, got %d", index.ErrInvalidArgument, k)
	}
	if tree == nil || tree.Root == nil {
		return nil, index.ErrIndexNotReady
	}
	if len(q) != tree.Dimensions {
		return nil, fmt.Errorf("%w: query has %d dims, index has %d", index.ErrInvalidArgument, len(q), tree.Dimensions)
	}

	if k > tree.Size {
		k = tree.Size
	}

	results := heap.NewBoundedResults(k)
	frontier := heap.NewFrontier()

	rootLB, err := lowerBound(q, tree.Root)
	if err != nil {
		return nil, err
	}
	frontier.Push(heap.NodeItem{Payload: tree.Root, Priority: rootLB})

	for frontier.Len() > 0 {
		item := frontier.Pop()
		node := item.Payload.(*Node)

		if results.Full() {
			maxDist, _ := results.MaxDistance()
			if item.Priority >= maxDist {
				break
			}
		}

		if node.IsLeaf() {
			for _, r := range node.Records {
				d, err := vector.EuclideanDistance(q, r.RawVector())
				if err != nil {
					return nil, err
				}
				results.Offer(heap.ResultItem{Payload: r, Distance: d})
			}
			continue
		}

		leftLB, err := lowerBound(q, node.Left)
		if err != nil {
			return nil, err
		}
		rightLB, err := lowerBound(q, node.Right)
		if err != nil {
			return nil, err
		}
		frontier.Push(heap.NodeItem{Payload: node.Left, Priority: leftLB})
		frontier.Push(heap.NodeItem{Payload: node.Right, Priority: rightLB})
	}

	drained := results.Drain()
	out := make([]*feature.Record, len(drained))
	for i, item := range drained {
		out[i] = item.Payload.(*feature.Record)
	}
	return out, nil
}
