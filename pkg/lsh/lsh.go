// Package lsh implements a locality-sensitive-hashing index using
// random-projection sign hashing over L tables of K bits.
package lsh

import (
	"errors"
	"fmt"
	"log"
	"math/rand"
	"sort"
	"sync/atomic"

	"github.com/bellorr/imagevec/pkg/envconfig"
	"github.com/bellorr/imagevec/pkg/feature"
	"github.com/bellorr/imagevec/pkg/index"
	"github.com/bellorr/imagevec/pkg/vector"
)

// ErrDimensionMismatch is returned when Build receives records whose
// vectors do not all share the same dimension.
var ErrDimensionMismatch = errors.New("lsh: dimension mismatch")

// DefaultTables and DefaultBits are the table-count and bits-per-table
// values used by NewDefault.
const (
	DefaultTables = 10
	DefaultBits   = 8
)

// table is one of the L projection tables: K normalized projection rows
// plus the bucket map keyed by the K-bit signature string.
type table struct {
	projections [][]float64 // K rows of dimension D, each L2-normalized
	buckets     map[string][]*feature.Record
}

func signature(v []float64, projections [][]float64) (string, error) {
	bits := make([]byte, len(projections))
	for j, proj := range projections {
		dot, err := vector.DotProduct(v, proj)
		if err != nil {
			return "", err
		}
		if dot >= 0 {
			bits[j] = '1'
		} else {
			bits[j] = '0'
		}
	}
	return string(bits), nil
}

// state is the immutable snapshot published by Build. Queries always
// read a single *state via atomic.Pointer, so a concurrent Build can
// never hand a query a half-updated table set.
type state struct {
	dimensions int
	tables     []table
}

// Index is the LSH random-projection index. It does not support Insert:
// random-projection calibration happens at build time, and inserts would
// need re-hashing under the same projections, which this index does not
// offer.
type Index struct {
	l, k  int
	seed  int64
	state atomic.Pointer[state]
}

// New returns an empty, unbuilt LSH index with L tables of K bits each.
// Both l and k must be positive; callers wanting the defaults use
// NewDefault. seed makes the random projections (and therefore every
// build) deterministic.
func New(l, k int, seed int64) (*Index, error) {
	if l <= 0 || k <= 0 {
		return nil, fmt.Errorf("%w: table count and bits per table must be positive, got L=%d K=%d", index.ErrInvalidArgument, l, k)
	}
	return &Index{l: l, k: k, seed: seed}, nil
}

// NewDefault returns an empty, unbuilt LSH index with DefaultTables
// tables of DefaultBits bits each.
func NewDefault(seed int64) *Index {
	return &Index{l: DefaultTables, k: DefaultBits, seed: seed}
}

// NewFromEnv is New with L, K, and seed overridable by IMAGEVEC_LSH_TABLES,
// IMAGEVEC_LSH_BITS, and IMAGEVEC_LSH_SEED.
func NewFromEnv() (*Index, error) {
	l := envconfig.Int("IMAGEVEC_LSH_TABLES", DefaultTables)
	k := envconfig.Int("IMAGEVEC_LSH_BITS", DefaultBits)
	seed := envconfig.Int64("IMAGEVEC_LSH_SEED", 1)
	return New(l, k, seed)
}

// Capabilities reports build and search support only.
func (idx *Index) Capabilities() index.Capabilities {
	return index.Capabilities{Buildable: true, Searchable: true}
}

// Build generates L independent tables of K random projection vectors
// (normal-distributed entries, L2-normalized) and buckets every record
// by its K-bit sign signature in each table, then atomically publishes
// the result.
func (idx *Index) Build(records []*feature.Record) error {
	if len(records) == 0 {
		idx.state.Store(&state{})
		return nil
	}
	dims := records[0].Dimensions()
	for _, r := range records {
		if r.Dimensions() != dims {
			return ErrDimensionMismatch
		}
	}

	rng := rand.New(rand.NewSource(idx.seed))
	tables := make([]table, idx.l)

	normalized := make([][]float64, len(records))
	for i, r := range records {
		nv, err := vector.NormalizedCopy(r.RawVector())
		if err != nil {
			return err
		}
		normalized[i] = nv
	}

	for t := 0; t < idx.l; t++ {
		projections := make([][]float64, idx.k)
		for j := 0; j < idx.k; j++ {
			row := make([]float64, dims)
			for d := 0; d < dims; d++ {
				row[d] = rng.NormFloat64()
			}
			if err := vector.Normalize(row); err != nil {
				return err
			}
			projections[j] = row
		}

		buckets := make(map[string][]*feature.Record)
		for i, r := range records {
			sig, err := signature(normalized[i], projections)
			if err != nil {
				return err
			}
			buckets[sig] = append(buckets[sig], r)
		}
		if len(buckets) == 1 {
			log.Printf("lsh: table %d collapsed to a single bucket for %d records; projections gave no discrimination", t, len(records))
		}
		tables[t] = table{projections: projections, buckets: buckets}
	}

	idx.state.Store(&state{dimensions: dims, tables: tables})
	return nil
}

// Query ranks the union of candidates found across every table's bucket
// for q's signature by exact cosine distance, returning the top k. A
// built-but-empty index, or a query vector landing in no bucket in any
// table, returns an empty result rather than an error.
func (idx *Index) Query(q []float64, k int) ([]*feature.Record, error) {
	if len(q) == 0 {
		return nil, fmt.Errorf("%w: empty query vector", index.ErrInvalidArgument)
	}
	if k <= 0 {
		return nil, fmt.Errorf("%w: k must be positive, got %d", index.ErrInvalidArgument, k)
	}
	st := idx.state.Load()
	if st == nil {
		return nil, index.ErrIndexNotReady
	}
	if len(st.tables) == 0 {
		return []*feature.Record{}, nil
	}
	if len(q) != st.dimensions {
		return nil, fmt.Errorf("%w: query has %d dims, index has %d", index.ErrInvalidArgument, len(q), st.dimensions)
	}

	normalizedQ, err := vector.NormalizedCopy(q)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]*feature.Record)
	for _, t := range st.tables {
		sig, err := signature(normalizedQ, t.projections)
		if err != nil {
			return nil, err
		}
		for _, r := range t.buckets[sig] {
			seen[r.ID()] = r
		}
	}
	if len(seen) == 0 {
		return []*feature.Record{}, nil
	}

	type scored struct {
		record   *feature.Record
		distance float64
	}
	candidates := make([]scored, 0, len(seen))
	for _, r := range seen {
		d, err := vector.CosineDistance(q, r.RawVector())
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, scored{record: r, distance: d})
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].distance != candidates[j].distance {
			return candidates[i].distance < candidates[j].distance
		}
		return candidates[i].record.ID() < candidates[j].record.ID()
	})

	if k > len(candidates) {
		k = len(candidates)
	}
	out := make([]*feature.Record, k)
	for i := 0; i < k; i++ {
		out[i] = candidates[i].record
	}
	return out, nil
}

// BucketSizeSum returns, for the given table index, the sum of bucket
// sizes. Every indexed feature appears in exactly one bucket of every
// table, so this equals the record count for any valid tableIndex.
func (idx *Index) BucketSizeSum(tableIndex int) int {
	st := idx.state.Load()
	if st == nil || tableIndex < 0 || tableIndex >= len(st.tables) {
		return 0
	}
	sum := 0
	for _, bucket := range st.tables[tableIndex].buckets {
		sum += len(bucket)
	}
	return sum
}

// Size returns the number of distinct records indexed, derived from the
// first table's bucket sizes (every table partitions the same record
// set).
func (idx *Index) Size() int {
	return idx.BucketSizeSum(0)
}
