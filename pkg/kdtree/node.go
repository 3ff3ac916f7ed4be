// Package kdtree implements a median-split KD-tree over feature.Records
// and a bounded best-bin-first searcher.
package kdtree

import (
	"sort"

	"github.com/bellorr/imagevec/pkg/feature"
)

// Node holds one feature.Record, the axis it was split on, and optional
// left/right children. Invariant: every descendant reachable via Left
// has vector[Axis] <= Node.Record.vector[Axis]; every descendant via
// Right has vector[Axis] >= Node.Record.vector[Axis]. Records equal to
// the node on Axis can appear on either side.
type Node struct {
	Record *feature.Record
	Axis   int
	Left   *Node
	Right  *Node
}

// Tree is an immutable KD-tree produced by Build.
type Tree struct {
	Root       *Node
	Dimensions int
	Size       int
}

// Build constructs a KD-tree over records, cycling the split axis by
// depth (axis = depth mod D). The median is index len/2 of a stable sort
// on the split coordinate, so records tied with the median keep their
// input order: those sorted before it go left, those after it go right.
// An empty input produces a Tree with a nil Root.
func Build(records []*feature.Record) (*Tree, error) {
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

	root := buildNode(working, 0, dims)
	return &Tree{Root: root, Dimensions: dims, Size: len(records)}, nil
}

func buildNode(records []*feature.Record, depth, dims int) *Node {
	if len(records) == 0 {
		return nil
	}
	axis := depth % dims

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].RawVector()[axis] < records[j].RawVector()[axis]
	})

	mid := len(records) / 2
	node := &Node{Record: records[mid], Axis: axis}
	node.Left = buildNode(records[:mid], depth+1, dims)
	node.Right = buildNode(records[mid+1:], depth+1, dims)
	return node
}
