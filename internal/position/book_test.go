package position

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBookAddMergesAvgPrice(t *testing.T) {
	b := NewBook()
	b.Add("GGAL", 10, 100, 95, 120)
	b.Add("GGAL", 10, 110, 100, 130)

	pos, ok := b.Get("GGAL")
	require.True(t, ok)
	assert.Equal(t, 20, pos.Quantity)
	assert.InDelta(t, 105, pos.AvgPrice, 1e-9)
	assert.InDelta(t, 100, pos.StopLoss, 1e-9, "levels follow the latest entry")
}

func TestBookReduceRemovesAtZero(t *testing.T) {
	b := NewBook()
	b.Add("GGAL", 10, 100, 95, 120)

	b.Reduce("GGAL", 4)
	pos, ok := b.Get("GGAL")
	require.True(t, ok)
	assert.Equal(t, 6, pos.Quantity)

	b.Reduce("GGAL", 6)
	_, ok = b.Get("GGAL")
	assert.False(t, ok)
	assert.Zero(t, b.Len())
}

func TestBookListSorted(t *testing.T) {
	b := NewBook()
	b.Add("PAMP", 1, 100, 0, 0)
	b.Add("GGAL", 1, 100, 0, 0)

	list := b.List()
	require.Len(t, list, 2)
	assert.Equal(t, "GGAL", list[0].Symbol)
	assert.Equal(t, "PAMP", list[1].Symbol)
}

func TestBookReplace(t *testing.T) {
	b := NewBook()
	b.Add("GGAL", 10, 100, 95, 120)

	b.Replace([]Position{{Symbol: "PAMP", Quantity: 5, AvgPrice: 50}})
	_, ok := b.Get("GGAL")
	assert.False(t, ok)
	pos, ok := b.Get("PAMP")
	require.True(t, ok)
	assert.Equal(t, 5, pos.Quantity)
}
