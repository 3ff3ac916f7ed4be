// Package linearindex implements the exact linear (brute-force) index:
// an append-only ordered sequence of feature.Records guarded by a
// read-write lock, ranked by cosine distance.
//
// Performance:
//   - Build/Insert: O(n) / O(1)
//   - Query: O(n*d), optionally evaluated across a worker pool
//   - Thread-safe: readers and writers use a sync.RWMutex
package linearindex

import (
	"fmt"
	"runtime"
	"sort"
	"sync"

	"github.com/bellorr/imagevec/pkg/feature"
	"github.com/bellorr/imagevec/pkg/index"
	"github.com/bellorr/imagevec/pkg/vector"
)

// Index is the exact linear index. Ordering of features is insertion
// order; it has no semantic meaning for queries beyond breaking distance
// ties deterministically.
type Index struct {
	mu       sync.RWMutex
	features []*feature.Record
}

// New returns an empty linear index.
func New() *Index {
	return &Index{}
}

// Capabilities reports that the linear index supports build, insert, and
// search.
func (idx *Index) Capabilities() index.Capabilities {
	return index.Capabilities{Insertable: true, Buildable: true, Searchable: true}
}

// Build atomically replaces the index's contents with records. A
// nil/empty slice is permitted and results in an empty index.
func (idx *Index) Build(records []*feature.Record) error {
	next := make([]*feature.Record, len(records))
	copy(next, records)

	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.features = next
	return nil
}

// Insert appends a single record without a full rebuild.
func (idx *Index) Insert(record *feature.Record) error {
	if record == nil {
		return fmt.Errorf("%w: nil record", index.ErrInvalidArgument)
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.features = append(idx.features, record)
	return nil
}

// Clear removes all records from the index.
func (idx *Index) Clear() {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.features = nil
}

// Size returns the number of records currently indexed.
func (idx *Index) Size() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.features)
}

type scored struct {
	record   *feature.Record
	distance float64
}

// Query returns up to k records ascending by cosine distance to q. Ties
// break by insertion order (stable sort over the snapshot taken at the
// start of the query). An empty index returns an empty, non-error result.
func (idx *Index) Query(q []float64, k int) ([]*feature.Record, error) {
	if len(q) == 0 {
		return nil, fmt.Errorf("%w: empty query vector", index.ErrInvalidArgument)
	}
	if k <= 0 {
		return nil, fmt.Errorf("%w: k must be positive, got %d", index.ErrInvalidArgument, k)
	}

	idx.mu.RLock()
	snapshot := idx.features
	idx.mu.RUnlock()

	if len(snapshot) == 0 {
		return []*feature.Record{}, nil
	}

	scores, err := scoreParallel(q, snapshot)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].distance < scores[j].distance
	})

	if k > len(scores) {
		k = len(scores)
	}
	out := make([]*feature.Record, k)
	for i := 0; i < k; i++ {
		out[i] = scores[i].record
	}
	return out, nil
}

// scoreParallel computes cosine distance from q to every record in
// snapshot. It may fan work out across GOMAXPROCS workers; semantics are
// identical to a serial scan because each worker only reads immutable
// record vectors.
func scoreParallel(q []float64, snapshot []*feature.Record) ([]scored, error) {
	n := len(snapshot)
	out := make([]scored, n)

	workers := runtime.GOMAXPROCS(0)
	if workers > n {
		workers = n
	}
	if workers < 1 {
		workers = 1
	}

	errs := make([]error, workers)
	var wg sync.WaitGroup
	chunk := (n + workers - 1) / workers

	for w := 0; w < workers; w++ {
		start := w * chunk
		end := start + chunk
		if start >= n {
			break
		}
		if end > n {
			end = n
		}
		wg.Add(1)
		go func(w, start, end int) {
			defer wg.Done()
			for i := start; i < end; i++ {
				d, err := vector.CosineDistance(q, snapshot[i].RawVector())
				if err != nil {
					errs[w] = err
					return
				}
				out[i] = scored{record: snapshot[i], distance: d}
			}
		}(w, start, end)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}
