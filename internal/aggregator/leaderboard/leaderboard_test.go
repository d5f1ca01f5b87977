package leaderboard

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTopK(t *testing.T) {
	lb := New[string, int]()
	lb.Increment("A", 5)
	lb.Increment("B", 3)
	lb.Increment("C", 10)
	lb.Increment("A", 2)

	top := lb.Range(0, 2)
	require.Len(t, top, 2)
	require.Equal(t, "C", top[0].Key)
	require.Equal(t, 10, top[0].Value)
	require.Equal(t, "A", top[1].Key)
	require.Equal(t, 7, top[1].Value)
}

func TestDuality(t *testing.T) {
	lb := New[string, int]()
	lb.Increment("A", 1)
	lb.Increment("B", 2)
	lb.Update("A", 9)
	lb.Increment("B", 1)

	require.Equal(t, lb.Len(), len(lb.index))
	for _, e := range lb.index {
		v, ok := lb.Get(e.key)
		require.True(t, ok)
		require.Equal(t, v, e.value)
	}
}

func TestRangeSkipAndCount(t *testing.T) {
	lb := New[string, int]()
	lb.Update("A", 1)
	lb.Update("B", 2)
	lb.Update("C", 3)

	out := lb.Range(1, 1)
	require.Len(t, out, 1)
	require.Equal(t, "B", out[0].Key)
}

func TestRangeBeyondLength(t *testing.T) {
	lb := New[string, int]()
	lb.Update("A", 1)
	require.Empty(t, lb.Range(5, 3))
}
