package chart

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAppendAndDrop(t *testing.T) {
	c := New(60, 3)
	require.NoError(t, c.Append(60, 10, 1))
	require.NoError(t, c.Append(120, 20, 1))
	require.NoError(t, c.Append(180, 30, 1))
	require.NoError(t, c.Append(240, 40, 1))

	require.Equal(t, 3, c.Len())
	require.Equal(t, uint64(120), c.candles[0].OpenTime)
	last := c.candles[len(c.candles)-1]
	require.Equal(t, float32(30), last.Open)
	require.Equal(t, float32(40), last.Close)
}

func TestChangePct24h(t *testing.T) {
	c := New(1, 100)
	require.NoError(t, c.Append(0, 100, 1))
	require.NoError(t, c.Append(43200, 120, 1))
	require.NoError(t, c.Append(86400, 150, 1))

	pct, ok := c.GetChangePct24h()
	require.True(t, ok)
	require.InDelta(t, 50.0, pct, 1e-4)
}

func TestEmptyChart(t *testing.T) {
	c := New(60, 10)
	require.Nil(t, c.Query(10, 0))
	_, ok := c.GetChangePct24h()
	require.False(t, ok)
}

func TestChronologyViolation(t *testing.T) {
	c := New(60, 10)
	require.NoError(t, c.Append(120, 10, 1))
	err := c.Append(60, 20, 1)
	require.ErrorIs(t, err, ErrChronologyViolation)
}

func TestQueryAfterInclusiveBeyondNewest(t *testing.T) {
	c := New(60, 10)
	require.NoError(t, c.Append(60, 10, 1))
	require.Nil(t, c.Query(10, 10_000))
}

func TestQueryReturnsChronological(t *testing.T) {
	c := New(60, 10)
	for i, ts := range []uint64{60, 120, 180, 240, 300} {
		require.NoError(t, c.Append(ts, float32(10*(i+1)), 1))
	}
	candles := c.Query(2, 0)
	require.Len(t, candles, 2)
	require.Less(t, candles[0].OpenTime, candles[1].OpenTime)
	require.Equal(t, uint64(300), candles[1].OpenTime)
}

func TestZeroCloseChangeIsInfinite(t *testing.T) {
	c := New(1, 10)
	require.NoError(t, c.Append(0, 0.0000001, 1))
	// force the reference close to read as zero by using a tiny interval
	// and a single candle, exercising the "division by zero yields +Inf"
	// rule directly.
	c.candles[0].Close = 0
	pct, ok := c.GetChangePct24h()
	require.True(t, ok)
	require.True(t, math.IsInf(float64(pct), 1))
}
