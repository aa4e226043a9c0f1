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

// Package amqfilter implements a family of approximate membership query
// (AMQ) filters: Bloom, Blocked Bloom, Cuckoo, Xor and Binary Fuse. All
// five answer "is key k in set S?" with no false negatives and a bounded,
// configurable false positive rate.
//
// Keys are supplied as bytes or strings; each filter hashes the key once
// with a general-purpose 64-bit digest and derives every seeded position
// it needs from that single digest via multiply-shift reduction.
package amqfilter

import (
	"math/rand"

	"github.com/cespare/xxhash/v2"
)

// Digest returns a 64-bit general-purpose hash of key. It is not
// cryptographically strong; it exists purely to spread keys uniformly
// over the index space of a filter.
func Digest(key []byte) uint64 {
	return xxhash.Sum64(key)
}

// DigestString is like Digest but avoids a copy when the key is already a
// string.
func DigestString(key string) uint64 {
	return xxhash.Sum64String(key)
}

// mix combines a seed with a digest. The multiplication wraps, which is
// fine: callers read only its high bits, through reduce or (for Cuckoo
// fingerprints) a right shift.
func mix(seed, h uint64) uint64 {
	return seed * h
}

// reduce maps x into the range [0, r) by taking the high 32 bits of x
// (the well-mixed half of a multiply-shift product) modulo r. r need not
// be a power of two; for r that does not divide 2^32 the modulo leaves a
// slight bias towards small results. It returns 0 when r is 0.
func reduce(x, r uint64) uint64 {
	if r == 0 {
		return 0
	}
	return (x >> 32) % r
}

// indexFromDigest computes index(k, seed, r) = reduce(mix(seed, h), r) for
// a key whose digest is h. seed must be odd to preserve mixing quality.
func indexFromDigest(h, seed, r uint64) uint64 {
	return reduce(mix(seed, h), r)
}

// newOddSeed draws a random nonzero odd 64-bit seed.
func newOddSeed(rng *rand.Rand) uint64 {
	s := rng.Uint64() | 1
	if s == 0 {
		s = 1
	}
	return s
}
