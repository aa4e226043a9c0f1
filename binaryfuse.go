// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package amqfilter

import (
	"math"
	"math/rand"
	"sort"
	"time"
)

// BinaryFuse is a static AMQ filter built once from a complete key set,
// like Xor but using the segmented, overlapping-block construction of
// Dietzfelbinger & Walzer's binary fuse filters: each key's three
// positions lie in three consecutive blocks instead of three disjoint
// thirds, which peels more reliably and needs fewer bits per key.
type BinaryFuse struct {
	b         []uint8
	s0        uint64
	s1        uint64
	s2        uint64
	blockSize uint64
	numKeys   int
}

// positions returns (h0, h1, h2) for a key's digest h: h0 anywhere in the
// first c-2*blockSize slots, h1 in the block right after h0's block, h2
// in the block after that.
func (f *BinaryFuse) positions(h uint64) (uint64, uint64, uint64) {
	c := uint64(len(f.b))
	h0 := indexFromDigest(h, f.s0, c-2*f.blockSize)
	blk := h0 / f.blockSize
	h1 := indexFromDigest(h, f.s1, f.blockSize) + (blk+1)*f.blockSize
	h2 := indexFromDigest(h, f.s2, f.blockSize) + (blk+2)*f.blockSize
	return h0, h1, h2
}

// NewBinaryFuse builds a BinaryFuse filter from keys, none of which may
// repeat. Seeds are drawn from a thread-local RNG seeded from the current
// time; use NewBinaryFuseWithRNG for reproducible construction.
func NewBinaryFuse(keys [][]byte) (*BinaryFuse, error) {
	return NewBinaryFuseWithRNG(keys, rand.New(rand.NewSource(time.Now().UnixNano())))
}

// NewBinaryFuseWithRNG is like NewBinaryFuse but draws seeds from rng.
func NewBinaryFuseWithRNG(keys [][]byte, rng *rand.Rand) (*BinaryFuse, error) {
	digests := make([]uint64, len(keys))
	for i, k := range keys {
		digests[i] = Digest(k)
	}
	return buildBinaryFuse(digests, rng)
}

func buildBinaryFuse(digests []uint64, rng *rand.Rand) (*BinaryFuse, error) {
	n := len(digests)
	nf := float64(n)
	if nf < 1 {
		nf = 1
	}

	blockSize := uint64(math.Floor(4.8 * math.Pow(nf, 0.58)))
	if blockSize < 1 {
		blockSize = 1
	}
	c := uint64(math.Ceil(1.125*nf/float64(blockSize))) * blockSize
	if c < 3*blockSize {
		c = 3 * blockSize
	}

	f := &BinaryFuse{
		b:         make([]uint8, c),
		blockSize: blockSize,
		numKeys:   n,
	}

	h := make([]xorSet, c)
	stack := make([]uint64, n)
	stackPos := make([]uint8, n)
	alone := make([]uint64, c)

	// Build optimization: sort keys by the block h0 lands in, so the map
	// phase below writes to nearby slots of h in sequence rather than at
	// random. h0 is not precomputed: the sort comparator recomputes it on
	// every comparison, and each phase recomputes (h0, h1, h2) from the
	// digest.
	order := make([]uint64, n)
	copy(order, digests)

	for attempt := 0; attempt < maxBuildRetries; attempt++ {
		f.s0 = newOddSeed(rng)
		f.s1 = newOddSeed(rng)
		f.s2 = newOddSeed(rng)

		sort.Slice(order, func(i, j int) bool {
			h0i := indexFromDigest(order[i], f.s0, c-2*blockSize) / blockSize
			h0j := indexFromDigest(order[j], f.s0, c-2*blockSize) / blockSize
			return h0i < h0j
		})

		for i := range h {
			h[i] = xorSet{}
		}
		for _, d := range order {
			i0, i1, i2 := f.positions(d)
			h[i0].count++
			h[i0].xormask ^= d
			h[i1].count++
			h[i1].xormask ^= d
			h[i2].count++
			h[i2].xormask ^= d
		}

		qsize := 0
		for i := uint64(0); i < c; i++ {
			if h[i].count == 1 {
				alone[qsize] = i
				qsize++
			}
		}

		stackSize := 0
		for qsize > 0 {
			qsize--
			idx := alone[qsize]
			if h[idx].count != 1 {
				continue
			}
			d := h[idx].xormask
			i0, i1, i2 := f.positions(d)

			switch idx {
			case i0:
				stackPos[stackSize] = 0
			case i1:
				stackPos[stackSize] = 1
			default:
				stackPos[stackSize] = 2
			}
			stack[stackSize] = d
			stackSize++

			h[i0].count--
			h[i0].xormask ^= d
			if h[i0].count == 1 {
				alone[qsize] = i0
				qsize++
			}
			h[i1].count--
			h[i1].xormask ^= d
			if h[i1].count == 1 {
				alone[qsize] = i1
				qsize++
			}
			h[i2].count--
			h[i2].xormask ^= d
			if h[i2].count == 1 {
				alone[qsize] = i2
				qsize++
			}
		}

		if stackSize != n {
			continue
		}

		for i := n - 1; i >= 0; i-- {
			d := stack[i]
			fp := xorFingerprint(d)
			i0, i1, i2 := f.positions(d)
			switch stackPos[i] {
			case 0:
				f.b[i0] = fp ^ f.b[i1] ^ f.b[i2]
			case 1:
				f.b[i1] = fp ^ f.b[i0] ^ f.b[i2]
			default:
				f.b[i2] = fp ^ f.b[i0] ^ f.b[i1]
			}
		}
		return f, nil
	}

	return nil, ErrBuildFailed
}

// Contains reports whether key was in the set the filter was built from.
// It may return a false positive at a rate of roughly 2^-7; it never
// returns a false negative for a key that was present at build time.
func (f *BinaryFuse) Contains(key []byte) bool {
	return f.containsDigest(Digest(key))
}

// ContainsString is like Contains but avoids a copy for string keys.
func (f *BinaryFuse) ContainsString(key string) bool {
	return f.containsDigest(DigestString(key))
}

func (f *BinaryFuse) containsDigest(h uint64) bool {
	fp := xorFingerprint(h)
	i0, i1, i2 := f.positions(h)
	return fp == f.b[i0]^f.b[i1]^f.b[i2]
}

// Has implements Filter.
func (f *BinaryFuse) Has(key []byte) bool { return f.Contains(key) }

// BitsPerKey reports 8*len(B)/n, the realized bits-per-key overhead.
func (f *BinaryFuse) BitsPerKey() float64 {
	if f.numKeys == 0 {
		return math.Inf(1)
	}
	return 8 * float64(len(f.b)) / float64(f.numKeys)
}
