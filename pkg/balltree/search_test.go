package balltree

import (
	"math/rand"
	"testing"

	idxpkg "github.com/bellorr/imagevec/pkg/index"
	"github.com/bellorr/imagevec/pkg/vector"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustNew(t *testing.T, leafSize int, seed int64) *Index {
	t.Helper()
	idx, err := New(leafSize, seed)
	require.NoError(t, err)
	return idx
}

func TestBallTreeQueryBeforeBuildIsNotReady(t *testing.T) {
	idx := mustNew(t, 5, 1)
	_, err := idx.Query([]float64{1, 2}, 1)
	assert.ErrorIs(t, err, idxpkg.ErrIndexNotReady)
}

func TestBallTreeRejectsNonPositiveLeafSize(t *testing.T) {
	for _, leafSize := range []int{0, -3} {
		_, err := New(leafSize, 1)
		assert.ErrorIs(t, err, idxpkg.ErrInvalidArgument)
	}
}

func TestNewDefaultUsesDefaultLeafSize(t *testing.T) {
	idx := NewDefault(1)
	assert.Equal(t, DefaultLeafSize, idx.leafSize)
}

func TestBallTreeInvalidArguments(t *testing.T) {
	idx := mustNew(t, 5, 1)
	records := randomBallRecords(t, rand.New(rand.NewSource(2)), 10, 3)
	require.NoError(t, idx.Build(records))

	_, err := idx.Query(nil, 1)
	assert.ErrorIs(t, err, idxpkg.ErrInvalidArgument)

	_, err = idx.Query([]float64{1, 2, 3}, 0)
	assert.ErrorIs(t, err, idxpkg.ErrInvalidArgument)
}

func TestBallTreeKClampedToSize(t *testing.T) {
	idx := mustNew(t, 5, 3)
	records := randomBallRecords(t, rand.New(rand.NewSource(3)), 5, 4)
	require.NoError(t, idx.Build(records))

	got, err := idx.Query(records[0].Vector(), 100)
	require.NoError(t, err)
	assert.Len(t, got, 5)
}

func TestBallTreeSelfRecall(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	records := randomBallRecords(t, rng, 400, 6)

	idx := mustNew(t, 20, 5)
	require.NoError(t, idx.Build(records))

	hits := 0
	for _, r := range records {
		got, err := idx.Query(r.Vector(), 1)
		require.NoError(t, err)
		require.Len(t, got, 1)
		if got[0].ID() == r.ID() {
			hits++
		}
	}
	assert.Equal(t, len(records), hits, "ball tree branch-and-bound search must be exact for Euclidean distance")
}

func TestBallTreeRankingSortedness(t *testing.T) {
	rng := rand.New(rand.NewSource(6))
	records := randomBallRecords(t, rng, 200, 5)
	idx := mustNew(t, 15, 6)
	require.NoError(t, idx.Build(records))

	q := make([]float64, 5)
	for i := range q {
		q[i] = rng.NormFloat64()
	}
	got, err := idx.Query(q, 10)
	require.NoError(t, err)

	var prev float64
	for i, r := range got {
		d, err := vector.EuclideanDistance(q, r.RawVector())
		require.NoError(t, err)
		if i > 0 {
			assert.GreaterOrEqual(t, d, prev-1e-9)
		}
		prev = d
	}
}

func TestBallTreeNewFromEnvHonorsOverride(t *testing.T) {
	t.Setenv("IMAGEVEC_BALLTREE_LEAF_SIZE", "7")
	records := randomBallRecords(t, rand.New(rand.NewSource(40)), 30, 3)

	idx, err := NewFromEnv(1)
	require.NoError(t, err)
	require.NoError(t, idx.Build(records))
	assert.Equal(t, 7, idx.leafSize)
}

func TestBallTreeCapabilities(t *testing.T) {
	idx := mustNew(t, 5, 1)
	caps := idx.Capabilities()
	assert.True(t, caps.Buildable)
	assert.True(t, caps.Searchable)
	assert.False(t, caps.Insertable)
}
