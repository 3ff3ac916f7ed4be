// Package balltree implements a hierarchical ball-tree partition over
// feature.Records (farthest-pair split) and a branch-and-bound nearest
// neighbor searcher.
package balltree

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/bellorr/imagevec/pkg/feature"
	"github.com/bellorr/imagevec/pkg/index"
	"github.com/bellorr/imagevec/pkg/vector"
)

// ErrDimensionMismatch is returned when Build receives records whose
// vectors do not all share the same dimension.
var ErrDimensionMismatch = errors.New("balltree: dimension mismatch")

// DefaultLeafSize is the leaf size used by NewDefault.
const DefaultLeafSize = 50

// Node is one node of a ball tree. Every node carries a centroid and a
// non-negative radius such that every feature reachable from the node
// lies within Euclidean distance Radius of Centroid. A leaf node owns a
// non-empty Records slice; an internal node owns two non-nil children.
type Node struct {
	Centroid []float64
	Radius   float64

	// Records is non-empty only on leaf nodes.
	Records []*feature.Record
	// Left and Right are non-nil only on internal nodes.
	Left  *Node
	Right *Node
}

// IsLeaf reports whether n is a leaf node.
func (n *Node) IsLeaf() bool {
	return n.Left == nil && n.Right == nil
}

// Tree is an immutable ball tree produced by Build.
type Tree struct {
	Root       *Node
	Dimensions int
	Size       int
}

// Build constructs a ball tree over records using leafSize as the
// maximum number of records per leaf. leafSize must be positive. rng
// drives the farthest-pair heuristic and the degenerate-split fallback;
// pass a seeded *rand.Rand for determinism.
func Build(records []*feature.Record, leafSize int, rng *rand.Rand) (*Tree, error) {
	if leafSize <= 0 {
		return nil, fmt.Errorf("%w: leaf size must be positive, got %d", index.ErrInvalidArgument, leafSize)
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	if len(records) == 0 {
		return &Tree{}, nil
	}
	dims := records[0].Dimensions()
	for _, r := range records {
		if r.Dimensions() != dims {
			return nil, ErrDimensionMismatch
		}
	}

	working := make([]*feature.Record, len(records))
	copy(working, records)

	root, err := buildNode(working, leafSize, rng)
	if err != nil {
		return nil, err
	}
	return &Tree{Root: root, Dimensions: dims, Size: len(records)}, nil
}

func buildNode(records []*feature.Record, leafSize int, rng *rand.Rand) (*Node, error) {
	centroid, radius, err := boundingSphere(records)
	if err != nil {
		return nil, err
	}

	if len(records) <= leafSize {
		return &Node{Centroid: centroid, Radius: radius, Records: records}, nil
	}

	left, right, err := split(records, rng)
	if err != nil {
		return nil, err
	}

	leftNode, err := buildNode(left, leafSize, rng)
	if err != nil {
		return nil, err
	}
	rightNode, err := buildNode(right, leafSize, rng)
	if err != nil {
		return nil, err
	}
	return &Node{Centroid: centroid, Radius: radius, Left: leftNode, Right: rightNode}, nil
}

func boundingSphere(records []*feature.Record) ([]float64, float64, error) {
	dims := records[0].Dimensions()
	centroid := make([]float64, dims)
	for _, r := range records {
		v := r.RawVector()
		for i := 0; i < dims; i++ {
			centroid[i] += v[i]
		}
	}
	for i := range centroid {
		centroid[i] /= float64(len(records))
	}

	var radius float64
	for _, r := range records {
		d, err := vector.EuclideanDistance(centroid, r.RawVector())
		if err != nil {
			return nil, 0, err
		}
		if d > radius {
			radius = d
		}
	}
	return centroid, radius, nil
}

// split partitions records into a left/right pair around an approximate
// diameter pair; it falls back to a seeded-shuffle balanced split if
// either partition would be empty.
func split(records []*feature.Record, rng *rand.Rand) ([]*feature.Record, []*feature.Record, error) {
	p1 := records[rng.Intn(len(records))]

	p2, err := farthestFrom(records, p1)
	if err != nil {
		return nil, nil, err
	}
	p1, err = farthestFrom(records, p2)
	if err != nil {
		return nil, nil, err
	}

	var left, right []*feature.Record
	for _, r := range records {
		d1, err := vector.EuclideanDistance(r.RawVector(), p1.RawVector())
		if err != nil {
			return nil, nil, err
		}
		d2, err := vector.EuclideanDistance(r.RawVector(), p2.RawVector())
		if err != nil {
			return nil, nil, err
		}
		if d1 <= d2 {
			left = append(left, r)
		} else {
			right = append(right, r)
		}
	}

	if len(left) == 0 || len(right) == 0 {
		return balancedShuffleSplit(records, rng)
	}
	return left, right, nil
}

func farthestFrom(records []*feature.Record, from *feature.Record) (*feature.Record, error) {
	var best *feature.Record
	var bestDist float64 = -1
	for _, r := range records {
		d, err := vector.EuclideanDistance(r.RawVector(), from.RawVector())
		if err != nil {
			return nil, err
		}
		if d > bestDist {
			bestDist = d
			best = r
		}
	}
	return best, nil
}

// balancedShuffleSplit handles the degenerate case (every record
// equidistant from both poles): shuffle and cut at the midpoint instead
// of trying to find a meaningful partition.
func balancedShuffleSplit(records []*feature.Record, rng *rand.Rand) ([]*feature.Record, []*feature.Record, error) {
	shuffled := make([]*feature.Record, len(records))
	copy(shuffled, records)
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	mid := len(shuffled) / 2
	return shuffled[:mid], shuffled[mid:], nil
}
