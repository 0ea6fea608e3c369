// Package partition splits the 256-bit salt space into interleaved strides,
// one per worker.
//
// Worker i of W tests seed+i, seed+i+W, seed+i+2W, ... (mod 2^256). Within one
// lap of the space every candidate belongs to exactly one worker.
package partition

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math"

	"github.com/holiman/uint256"
)

// ErrNoWorkers is returned for a worker count below one.
var ErrNoWorkers = errors.New("worker count must be at least 1")

// Range is the stride assigned to one worker. It is a description, not a
// list; use Cursor to iterate it.
type Range struct {
	Index  int
	Seed   uint256.Int
	Start  uint256.Int // Seed + Index
	Stride uint64
}

// Partition returns workers disjoint ranges over the space starting at seed.
// A nil seed starts at zero. The result depends only on (seed, workers).
func Partition(seed *uint256.Int, workers int) ([]Range, error) {
	if workers < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrNoWorkers, workers)
	}
	var base uint256.Int
	if seed != nil {
		base.Set(seed)
	}
	ranges := make([]Range, workers)
	for i := range ranges {
		r := &ranges[i]
		r.Index = i
		r.Seed.Set(&base)
		r.Start.Add(&base, uint256.NewInt(uint64(i)))
		r.Stride = uint64(workers)
	}
	return ranges, nil
}

// Candidate returns the k-th salt of the range: Start + k*Stride mod 2^256.
func (r *Range) Candidate(k uint64) *uint256.Int {
	c := new(uint256.Int).Mul(uint256.NewInt(k), uint256.NewInt(r.Stride))
	return c.Add(c, &r.Start)
}

// Contains reports whether c falls in this range, i.e. (c - Seed) mod Stride == Index.
func (r *Range) Contains(c *uint256.Int) bool {
	diff := new(uint256.Int).Sub(c, &r.Seed)
	rem := new(uint256.Int).Mod(diff, uint256.NewInt(r.Stride))
	return rem.Eq(uint256.NewInt(uint64(r.Index)))
}

// Cursor returns a lazy iterator over the range. A limit of zero means the
// cursor only stops once its step counter saturates.
func (r *Range) Cursor(limit uint64) *Cursor {
	c := &Cursor{limit: limit}
	c.cur.Set(&r.Start)
	c.step.SetUint64(r.Stride)
	return c
}

// Cursor walks a Range one candidate at a time. Not safe for concurrent use.
type Cursor struct {
	cur   uint256.Int
	step  uint256.Int
	n     uint64
	limit uint64
}

// Next writes the next candidate into dst as 32 big-endian bytes and
// advances. It returns false once the range is exhausted.
func (c *Cursor) Next(dst []byte) bool {
	if c.Exhausted() {
		return false
	}
	c.cur.WriteToSlice(dst)
	c.cur.Add(&c.cur, &c.step)
	c.n++
	return true
}

// Exhausted reports whether Next will return false.
func (c *Cursor) Exhausted() bool {
	if c.limit != 0 && c.n >= c.limit {
		return true
	}
	return c.n == math.MaxUint64
}

// Produced returns how many candidates Next has handed out.
func (c *Cursor) Produced() uint64 {
	return c.n
}

// Peek returns the candidate the next call to Next would produce.
func (c *Cursor) Peek() *uint256.Int {
	return c.cur.Clone()
}

// RandomSeed draws a uniformly random 256-bit seed so restarted sessions do
// not retest the same candidates.
func RandomSeed() (*uint256.Int, error) {
	var buf [32]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return nil, fmt.Errorf("read random seed: %w", err)
	}
	return new(uint256.Int).SetBytes(buf[:]), nil
}
