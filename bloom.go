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
	"time"

	"github.com/bits-and-blooms/bitset"
)

// DefaultFPRate is the false positive rate used throughout this package's
// examples and tests, matching the reference implementation's target of
// 0.0074.
const DefaultFPRate = 0.0074

// Bloom is a classical Bloom filter: a single bit array tested by k
// independently seeded hashes. It never produces a false negative; its
// false positive rate is bounded by the FPRate it was sized for.
type Bloom struct {
	bits  *bitset.BitSet
	seeds []uint64
	m     uint64 // number of bits
	n     int    // keys inserted so far, for BitsPerKey
}

// NewBloom constructs a Bloom filter sized for expectedKeys distinct keys
// at the given false positive rate. fpRate must be in (0, 1]; expectedKeys
// smaller than 1 is treated as 1 (both as applied by OptimizeBloom).
// Seeds are drawn from a thread-local RNG
// seeded from the current time; use NewBloomWithRNG for reproducible
// construction.
func NewBloom(expectedKeys int, fpRate float64) *Bloom {
	return NewBloomWithRNG(expectedKeys, fpRate, rand.New(rand.NewSource(time.Now().UnixNano())))
}

// NewBloomWithRNG is like NewBloom but draws seeds from rng, making
// construction reproducible when rng is seeded deterministically.
func NewBloomWithRNG(expectedKeys int, fpRate float64, rng *rand.Rand) *Bloom {
	m, k := OptimizeBloom(BloomConfig{NKeys: expectedKeys, FPRate: fpRate})

	seeds := make([]uint64, k)
	for i := range seeds {
		seeds[i] = newOddSeed(rng)
	}
	return &Bloom{
		bits:  bitset.New(uint(m)),
		seeds: seeds,
		m:     m,
	}
}

// Insert adds key to the filter. It cannot fail.
func (f *Bloom) Insert(key []byte) {
	h := Digest(key)
	for _, s := range f.seeds {
		f.bits.Set(uint(indexFromDigest(h, s, f.m)))
	}
	f.n++
}

// InsertString is like Insert but avoids a copy for string keys.
func (f *Bloom) InsertString(key string) {
	h := DigestString(key)
	for _, s := range f.seeds {
		f.bits.Set(uint(indexFromDigest(h, s, f.m)))
	}
	f.n++
}

// Has reports whether key has been added. It may return a false positive;
// it never returns a false negative.
func (f *Bloom) Has(key []byte) bool {
	return f.hasDigest(Digest(key))
}

// HasString is like Has but avoids a copy for string keys.
func (f *Bloom) HasString(key string) bool {
	return f.hasDigest(DigestString(key))
}

func (f *Bloom) hasDigest(h uint64) bool {
	for _, s := range f.seeds {
		if !f.bits.Test(uint(indexFromDigest(h, s, f.m))) {
			return false
		}
	}
	return true
}

// NumBits returns the number of bits in the filter's bit array.
func (f *Bloom) NumBits() uint64 { return f.m }

// NumHashes returns the number of seeded hashes (k) used per operation.
func (f *Bloom) NumHashes() int { return len(f.seeds) }

// BitsPerKey reports m/n for the keys inserted so far. It is +Inf before
// the first insert.
func (f *Bloom) BitsPerKey() float64 {
	if f.n == 0 {
		return math.Inf(1)
	}
	return float64(f.m) / float64(f.n)
}
