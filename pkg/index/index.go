// Package index defines the uniform operation set every imagevec index
// strategy implements, plus a compile-time capability descriptor so
// callers can pick a strategy without trial-and-error or reflection.
package index

import (
	"errors"

	"github.com/bellorr/imagevec/pkg/feature"
)

var (
	// ErrInvalidArgument covers malformed input: empty/missing vector,
	// non-positive k, non-positive constructor parameters, a nil record.
	ErrInvalidArgument = errors.New("index: invalid argument")
	// ErrIndexNotReady is returned by query on a tree/LSH index that has
	// not yet been built. The linear index never returns this error.
	ErrIndexNotReady = errors.New("index: not ready")
)

// Searchable answers k-nearest-neighbor queries.
type Searchable interface {
	// Query returns up to k FeatureRecords ascending by the index's
	// configured distance.
	Query(q []float64, k int) ([]*feature.Record, error)
}

// Buildable (re)builds an index from a batch of records, atomically
// replacing any prior contents.
type Buildable interface {
	Build(records []*feature.Record) error
}

// Insertable appends a single record without a full rebuild. Not every
// index supports this; see Capabilities.
type Insertable interface {
	Insert(record *feature.Record) error
}

// Capabilities is a static descriptor of which operations a concrete
// index type supports, letting callers select a strategy at runtime
// without probing via type assertions.
type Capabilities struct {
	Insertable bool
	Buildable  bool
	Searchable bool
}

// Descriptor is implemented by every concrete index type to expose its
// static Capabilities.
type Descriptor interface {
	Capabilities() Capabilities
}

// Select returns the first candidate whose Capabilities satisfy want.
// Used by callers that hold a slice of heterogeneous index strategies
// and need one with a specific capability (e.g. insertability).
func Select(candidates []Descriptor, want Capabilities) (Descriptor, bool) {
	for _, c := range candidates {
		got := c.Capabilities()
		if want.Insertable && !got.Insertable {
			continue
		}
		if want.Buildable && !got.Buildable {
			continue
		}
		if want.Searchable && !got.Searchable {
			continue
		}
		return c, true
	}
	return nil, false
}
