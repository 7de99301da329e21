package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	lerr "github.com/bigpick/bigpick/internal/errors"
)

func TestGenerate_Deterministic(t *testing.T) {
	g, err := NewGenerator(2, 0)
	require.NoError(t, err)

	a, err := g.Generate(100, 42)
	require.NoError(t, err)

	// A second generator with the same seed produces identical records
	g2, err := NewGenerator(2, 0)
	require.NoError(t, err)
	b, err := g2.Generate(100, 42)
	require.NoError(t, err)

	require.Equal(t, a.Len(), b.Len())
	for i := 0; i < a.Len(); i++ {
		assert.Equal(t, a.Text(i), b.Text(i))
	}
}

func TestGenerate_CachesByKey(t *testing.T) {
	g, err := NewGenerator(4, 0)
	require.NoError(t, err)

	a, err := g.Generate(50, 1)
	require.NoError(t, err)
	b, err := g.Generate(50, 1)
	require.NoError(t, err)

	// Same pointer: served from cache
	assert.Same(t, a, b)
	assert.Equal(t, 1, g.CacheLen())
}

func TestGenerate_CacheIsBounded(t *testing.T) {
	// Given: a cache of capacity 2
	g, err := NewGenerator(2, 0)
	require.NoError(t, err)

	// When: three distinct datasets are generated
	for seed := int64(1); seed <= 3; seed++ {
		_, err := g.Generate(10, seed)
		require.NoError(t, err)
	}

	// Then: the cache never exceeds its capacity
	assert.Equal(t, 2, g.CacheLen())
}

func TestGenerate_RejectsBadSizes(t *testing.T) {
	g, err := NewGenerator(2, 1000)
	require.NoError(t, err)

	_, err = g.Generate(-1, 0)
	require.Error(t, err)
	assert.Equal(t, lerr.ErrCodeInvalidSize, lerr.GetCode(err))

	_, err = g.Generate(1001, 0)
	require.Error(t, err)
	assert.Equal(t, lerr.ErrCodeInvalidSize, lerr.GetCode(err))
}

func TestDataset_RecordAccess(t *testing.T) {
	g, err := NewGenerator(2, 0)
	require.NoError(t, err)
	d, err := g.Generate(10, 7)
	require.NoError(t, err)

	rec := d.Record(3)
	assert.Equal(t, 3, rec.ID)
	assert.Equal(t, rec.Label, d.Text(3))
	assert.NotEmpty(t, rec.Label)
}
