// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package amqfilter

import "math"

// BloomConfig holds sizing parameters for NewBloomOptimized: m =
// ceil(-n*ln(p)/ln(2)^2) bits and k = ceil((m/n)*ln 2) hash functions.
type BloomConfig struct {
	// NKeys is the expected number of distinct keys.
	NKeys int

	// FPRate is the desired false positive rate once NKeys keys have
	// been inserted.
	FPRate float64

	// Trigger the "contains filtered or unexported fields" message for
	// forward compatibility and force callers to use named fields.
	_ struct{}
}

// NewBloomOptimized is shorthand for NewBloom(cfg.NKeys, cfg.FPRate), an
// entry point for callers that already hold a BloomConfig.
func NewBloomOptimized(cfg BloomConfig) *Bloom {
	return NewBloom(cfg.NKeys, cfg.FPRate)
}

// OptimizeBloom returns the number of bits (m) and hash functions (k)
// NewBloomOptimized would use for cfg, without allocating a filter. This
// is the same formula NewBloom uses internally; it's exposed separately so
// callers can report or log the implied size before committing to it.
func OptimizeBloom(cfg BloomConfig) (m uint64, k int) {
	if cfg.FPRate <= 0 || cfg.FPRate > 1 {
		panic("amqfilter: false positive rate must be in (0, 1]")
	}
	n := cfg.NKeys
	if n < 1 {
		n = 1
	}

	m = uint64(math.Ceil(-float64(n) * math.Log(cfg.FPRate) / (math.Ln2 * math.Ln2)))
	if m < 1 {
		m = 1
	}
	k = int(math.Ceil(float64(m)/float64(n)*math.Ln2))
	if k < 1 {
		k = 1
	}
	return m, k
}
