package partition

import (
	"errors"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPartitionRejectsNoWorkers(t *testing.T) {
	for _, w := range []int{0, -1} {
		_, err := Partition(nil, w)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrNoWorkers))
	}
}

func TestPartitionDeterministic(t *testing.T) {
	seed := uint256.NewInt(12345)
	a, err := Partition(seed, 4)
	require.NoError(t, err)
	b, err := Partition(seed, 4)
	require.NoError(t, err)
	assert.Equal(t, a, b)

	for i, r := range a {
		assert.Equal(t, i, r.Index)
		assert.Equal(t, uint64(4), r.Stride)
		assert.Equal(t, uint64(12345+i), r.Start.Uint64())
	}
}

func TestPartitionCoverageAndDisjointness(t *testing.T) {
	const span = 512
	seeds := []*uint256.Int{
		nil,
		uint256.NewInt(7),
		new(uint256.Int).Lsh(uint256.NewInt(1), 200),
	}
	for _, seed := range seeds {
		for w := 1; w <= 8; w++ {
			ranges, err := Partition(seed, w)
			require.NoError(t, err)

			base := new(uint256.Int)
			if seed != nil {
				base.Set(seed)
			}

			// Every candidate in the window belongs to exactly one range.
			for off := uint64(0); off < span; off++ {
				c := new(uint256.Int).Add(base, uint256.NewInt(off))
				owners := 0
				for i := range ranges {
					if ranges[i].Contains(c) {
						owners++
						assert.Equal(t, int(off%uint64(w)), ranges[i].Index)
					}
				}
				require.Equal(t, 1, owners, "w=%d off=%d", w, off)
			}

			// Walking the cursors reproduces the window with no duplicates.
			seen := make(map[uint64]int)
			for i := range ranges {
				cur := ranges[i].Cursor(0)
				var buf [32]byte
				for {
					require.True(t, cur.Next(buf[:]))
					v := new(uint256.Int).SetBytes(buf[:])
					off := new(uint256.Int).Sub(v, base).Uint64()
					if off >= span {
						break
					}
					seen[off]++
					require.True(t, ranges[i].Contains(v))
				}
			}
			require.Len(t, seen, span)
			for off, n := range seen {
				require.Equal(t, 1, n, "candidate %d tested %d times", off, n)
			}
		}
	}
}

func TestCandidateMatchesCursor(t *testing.T) {
	ranges, err := Partition(uint256.NewInt(100), 3)
	require.NoError(t, err)
	r := &ranges[2]
	cur := r.Cursor(0)
	var buf [32]byte
	for k := uint64(0); k < 20; k++ {
		want := r.Candidate(k)
		assert.True(t, want.Eq(cur.Peek()))
		require.True(t, cur.Next(buf[:]))
		assert.Equal(t, want.Bytes32(), buf)
	}
	assert.Equal(t, uint64(20), cur.Produced())
	assert.Equal(t, uint64(100+2+3*5), r.Candidate(5).Uint64())
}

func TestCursorWrapsAroundSpace(t *testing.T) {
	max := new(uint256.Int).SetAllOne()
	seed := new(uint256.Int).Sub(max, uint256.NewInt(1))
	ranges, err := Partition(seed, 2)
	require.NoError(t, err)

	cur := ranges[1].Cursor(0)
	var buf [32]byte
	require.True(t, cur.Next(buf[:]))
	assert.Equal(t, max.Bytes32(), buf)
	require.True(t, cur.Next(buf[:]))
	assert.Equal(t, uint256.NewInt(1).Bytes32(), buf)

	assert.True(t, ranges[1].Contains(uint256.NewInt(1)))
	assert.True(t, ranges[0].Contains(uint256.NewInt(0)))
}

func TestCursorLimit(t *testing.T) {
	ranges, err := Partition(nil, 1)
	require.NoError(t, err)
	cur := ranges[0].Cursor(3)
	var buf [32]byte
	for i := 0; i < 3; i++ {
		require.True(t, cur.Next(buf[:]))
	}
	assert.True(t, cur.Exhausted())
	assert.False(t, cur.Next(buf[:]))
	assert.Equal(t, uint64(3), cur.Produced())
}

func TestRandomSeed(t *testing.T) {
	a, err := RandomSeed()
	require.NoError(t, err)
	b, err := RandomSeed()
	require.NoError(t, err)
	assert.False(t, a.Eq(b))
}
