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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestXorNoFalseNegatives(t *testing.T) {
	t.Parallel()

	const n = 20000
	keys := keysFromRange(1, n)

	f, err := NewXorWithRNG(keys, rand.New(rand.NewSource(1)))
	assert.NoError(t, err)

	for _, k := range keys {
		assert.True(t, f.Contains(k))
	}
}

func TestXorFPRBounded(t *testing.T) {
	t.Parallel()

	const n = 20000
	pos := keysFromRange(1, n)
	neg := keysFromRange(n+1, 2*n)

	f, err := NewXorWithRNG(pos, rand.New(rand.NewSource(2)))
	assert.NoError(t, err)

	fp := 0
	for _, k := range neg {
		if f.Contains(k) {
			fp++
		}
	}
	fpr := float64(fp) / float64(len(neg))
	// Fingerprint is 7 bits wide, so expected FPR is ~2^-7 ~= 0.0078.
	assert.Less(t, fpr, 0.02)
}

func TestXorSatisfiesInvariant(t *testing.T) {
	t.Parallel()

	const n = 5000
	keys := keysFromRange(1, n)

	f, err := NewXorWithRNG(keys, rand.New(rand.NewSource(3)))
	assert.NoError(t, err)

	for _, k := range keys {
		h := Digest(k)
		fp := xorFingerprint(h)
		i0, i1, i2 := f.positions(h)
		assert.Equal(t, fp, f.b[i0]^f.b[i1]^f.b[i2])
	}
}

func TestXorDeterministicGivenSeeds(t *testing.T) {
	t.Parallel()

	keys := keysFromRange(1, 3000)

	f1, err1 := NewXorWithRNG(keys, rand.New(rand.NewSource(77)))
	f2, err2 := NewXorWithRNG(keys, rand.New(rand.NewSource(77)))
	assert.NoError(t, err1)
	assert.NoError(t, err2)
	assert.Equal(t, f1.b, f2.b)
	assert.Equal(t, f1.s0, f2.s0)
	assert.Equal(t, f1.s1, f2.s1)
	assert.Equal(t, f1.s2, f2.s2)
}

func TestXorBitsPerKey(t *testing.T) {
	t.Parallel()

	keys := keysFromRange(1, 10000)
	f, err := NewXorWithRNG(keys, rand.New(rand.NewSource(4)))
	assert.NoError(t, err)

	bpk := f.BitsPerKey()
	// Xor filter overhead is close to 1.23*8 ~= 9.8 bits/key at this fingerprint width.
	assert.Greater(t, bpk, 8.0)
	assert.Less(t, bpk, 11.0)
}

func TestXorEmptyKeySetBitsPerKeyIsInf(t *testing.T) {
	t.Parallel()

	f, err := NewXorWithRNG(nil, rand.New(rand.NewSource(5)))
	assert.NoError(t, err)
	assert.True(t, math.IsInf(f.BitsPerKey(), 1))
}
