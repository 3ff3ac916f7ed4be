package heap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoundedResultsKeepsSmallest(t *testing.T) {
	b := NewBoundedResults(2)
	b.Offer(ResultItem{Payload: "a", Distance: 5})
	b.Offer(ResultItem{Payload: "b", Distance: 1})
	b.Offer(ResultItem{Payload: "c", Distance: 3})

	items := b.Drain()
	require.Len(t, items, 2)
	assert.Equal(t, "b", items[0].Payload)
	assert.Equal(t, "c", items[1].Payload)
}

func TestBoundedResultsFullAndMax(t *testing.T) {
	b := NewBoundedResults(1)
	assert.False(t, b.Full())
	b.Offer(ResultItem{Payload: "a", Distance: 5})
	assert.True(t, b.Full())
	max, ok := b.MaxDistance()
	require.True(t, ok)
	assert.Equal(t, 5.0, max)

	b.Offer(ResultItem{Payload: "b", Distance: 1})
	max, _ = b.MaxDistance()
	assert.Equal(t, 1.0, max)
}

func TestFrontierOrdersByPriority(t *testing.T) {
	f := NewFrontier()
	f.Push(NodeItem{Payload: "slow", Priority: 3})
	f.Push(NodeItem{Payload: "fast", Priority: 0})
	f.Push(NodeItem{Payload: "mid", Priority: 1})

	var order []string
	for f.Len() > 0 {
		order = append(order, f.Pop().Payload.(string))
	}
	assert.Equal(t, []string{"fast", "mid", "slow"}, order)
}
