package bitset_test

import (
	"testing"

	"github.com/open-cbgm/cbgm-go/bitset"
	"github.com/stretchr/testify/require"
)

func TestSetClearTest(t *testing.T) {
	s := bitset.New(70) // spans two words
	require.False(t, s.Test(5))
	require.NoError(t, s.Set(5))
	require.NoError(t, s.Set(69))
	require.True(t, s.Test(5))
	require.True(t, s.Test(69))
	require.NoError(t, s.Clear(5))
	require.False(t, s.Test(5))
}

func TestOutOfRange(t *testing.T) {
	s := bitset.New(4)
	require.ErrorIs(t, s.Set(4), bitset.ErrIndexOutOfRange)
	require.ErrorIs(t, s.Set(-1), bitset.ErrIndexOutOfRange)
	require.False(t, s.Test(100))
}

func TestCombinators(t *testing.T) {
	a := bitset.New(8)
	b := bitset.New(8)
	for _, i := range []int{0, 1, 2, 3} {
		require.NoError(t, a.Set(i))
	}
	for _, i := range []int{2, 3, 4, 5} {
		require.NoError(t, b.Set(i))
	}

	and, err := a.And(b)
	require.NoError(t, err)
	require.Equal(t, []int{2, 3}, and.Slice())

	or, err := a.Or(b)
	require.NoError(t, err)
	require.Equal(t, []int{0, 1, 2, 3, 4, 5}, or.Slice())

	andNot, err := a.AndNot(b)
	require.NoError(t, err)
	require.Equal(t, []int{0, 1}, andNot.Slice())

	xor, err := a.Xor(b)
	require.NoError(t, err)
	require.Equal(t, []int{0, 1, 4, 5}, xor.Slice())

	require.Equal(t, 4, a.Count())
	require.False(t, a.IsZero())
	require.True(t, bitset.New(8).IsZero())
}

func TestUniverseMismatch(t *testing.T) {
	a := bitset.New(4)
	b := bitset.New(8)
	_, err := a.And(b)
	require.ErrorIs(t, err, bitset.ErrUniverseMismatch)
}

func TestClone(t *testing.T) {
	a := bitset.New(8)
	require.NoError(t, a.Set(3))
	b := a.Clone()
	require.NoError(t, b.Set(4))
	require.False(t, a.Test(4))
	require.True(t, b.Test(3))
}

func TestIterateEarlyStop(t *testing.T) {
	s := bitset.New(10)
	for _, i := range []int{1, 2, 3, 4} {
		require.NoError(t, s.Set(i))
	}
	var seen []int
	s.Iterate(func(i int) bool {
		seen = append(seen, i)
		return i < 2
	})
	require.Equal(t, []int{1, 2}, seen)
}
