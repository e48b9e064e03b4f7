package types

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSizeAccumulatorAddInt64(t *testing.T) {
	var acc SizeAccumulator

	require.NoError(t, acc.AddInt64(1024))
	require.NoError(t, acc.AddInt64(0))
	require.NoError(t, acc.AddInt64(512))

	assert.Equal(t, uint64(1536), acc.Total())
}

func TestSizeAccumulatorRejectsNegative(t *testing.T) {
	var acc SizeAccumulator

	require.NoError(t, acc.AddInt64(100))

	err := acc.AddInt64(-1)
	require.ErrorIs(t, err, ErrNegativeSize)

	// The total is untouched by the failed addition.
	assert.Equal(t, uint64(100), acc.Total())
}

func TestSizeAccumulatorRejectsOverflow(t *testing.T) {
	var acc SizeAccumulator

	require.NoError(t, acc.AddUint64(math.MaxUint64-10))

	err := acc.AddUint64(11)
	require.ErrorIs(t, err, ErrSizeOverflow)

	// Still room for a smaller addition.
	require.NoError(t, acc.AddUint64(10))
	assert.Equal(t, uint64(math.MaxUint64), acc.Total())
}

func TestSizeAccumulatorAddFloat64(t *testing.T) {
	var acc SizeAccumulator

	require.NoError(t, acc.AddFloat64(100.0))
	require.NoError(t, acc.AddFloat64(50.0))

	assert.Equal(t, uint64(150), acc.Total())

	require.ErrorIs(t, acc.AddFloat64(-0.5), ErrNegativeSize)
	require.ErrorIs(t, acc.AddFloat64(math.MaxUint64), ErrSizeOverflow)
}
