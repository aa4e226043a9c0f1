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

// Filter is the capability every AMQ filter in this package offers: a
// membership query and an observability hook. Xor and BinaryFuse, which
// are built once from a complete key set, implement only Filter.
type Filter interface {
	// Has reports whether key may have been added. It never returns a
	// false negative; it may return a false positive.
	Has(key []byte) bool

	// BitsPerKey reports the filter's current space usage per key added,
	// for observability. It is only meaningful once keys have been
	// inserted (incremental filters) or the filter has been built
	// (static filters).
	BitsPerKey() float64
}

// Inserter is a Filter that can be grown incrementally. Bloom and
// BlockedBloom implement it; their Insert never fails.
type Inserter interface {
	Filter
	Insert(key []byte)
}

// Deleter is a Filter that supports inserting and removing keys. It does
// not embed Inserter: its Insert reports failure with a bool. Cuckoo is
// the only filter in this package that implements it.
//
// Deleting a key that was never inserted can remove another key's
// fingerprint from a shared bucket, silently corrupting that key's
// membership. This is standard Cuckoo filter behavior, not a bug:
// callers must only delete keys they know were inserted.
type Deleter interface {
	Filter
	Insert(key []byte) bool
	Delete(key []byte) bool
}
