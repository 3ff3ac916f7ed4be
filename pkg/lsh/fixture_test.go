package lsh

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/bellorr/imagevec/pkg/feature"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
)

// fixtureVector is the msgpack wire shape for one reference-corpus entry.
type fixtureVector struct {
	ID     string    `msgpack:"id"`
	Vector []float64 `msgpack:"vector"`
}

// buildReferenceCorpus generates a small deterministic corpus, round-trips
// it through msgpack exactly as a saved fixture would be loaded, and
// returns the decoded records.
func buildReferenceCorpus(t *testing.T, seed int64, n, dims int) []*feature.Record {
	t.Helper()
	rng := rand.New(rand.NewSource(seed))

	encoded := make([]fixtureVector, n)
	for i := 0; i < n; i++ {
		v := make([]float64, dims)
		for j := range v {
			v[j] = rng.NormFloat64()
		}
		encoded[i] = fixtureVector{ID: fmt.Sprintf("fixture-%d", i), Vector: v}
	}

	blob, err := msgpack.Marshal(encoded)
	require.NoError(t, err)

	var decoded []fixtureVector
	require.NoError(t, msgpack.Unmarshal(blob, &decoded))

	out := make([]*feature.Record, len(decoded))
	for i, fv := range decoded {
		r, err := feature.New(fv.ID, fv.Vector)
		require.NoError(t, err)
		out[i] = r
	}
	return out
}

func TestFixtureRoundTripRecall(t *testing.T) {
	records := buildReferenceCorpus(t, 123, 150, 8)

	idx, err := New(6, 6, 321)
	require.NoError(t, err)
	require.NoError(t, idx.Build(records))

	member := records[17]
	got, err := idx.Query(member.Vector(), 5)
	require.NoError(t, err)

	found := false
	for _, r := range got {
		if r.ID() == member.ID() {
			found = true
			break
		}
	}
	require.True(t, found, "fixture-decoded member should recall itself")
}
