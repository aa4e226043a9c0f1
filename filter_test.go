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

// Compile-time checks that each filter type offers the capability
// interfaces it's meant to.
var (
	_ Filter   = (*Bloom)(nil)
	_ Filter   = (*BlockedBloom)(nil)
	_ Filter   = (*Cuckoo)(nil)
	_ Filter   = (*Xor)(nil)
	_ Filter   = (*BinaryFuse)(nil)
	_ Inserter = (*Bloom)(nil)
	_ Inserter = (*BlockedBloom)(nil)
	_ Deleter  = (*Cuckoo)(nil)
)
