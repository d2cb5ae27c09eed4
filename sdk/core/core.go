// Copyright 2025 Zintix Labs
//
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

package core

// PRNG 是盤面所需的亂數來源，需能取樣也能快照/還原。
type PRNG interface {
	RAND
	Restorable
}

// Restorable 定義可快照與還原的狀態介面。
type Restorable interface {
	Snapshot() ([]byte, error)
	Restore([]byte) error
}

// RAND 定義核心亂數取樣能力。
//
// 有界取樣（UintN / IntN）交給實作自己處理，不同 PRNG 可以選擇最合適的無偏策略。
type RAND interface {
	// Uint64 回傳 uint64 亂數。
	Uint64() uint64
	// Float64 回傳 [0,1) 的浮點亂數。
	Float64() float64
	// UintN 回傳 [0,max) 的 uint 亂數，若 max == 0 回傳 0。
	UintN(uint) uint
	// IntN 回傳 [0,max) 的 int 亂數，若 max <= 0 回傳 -1。
	IntN(int) int
}

// PRNGFactory 以 seed 建立 PRNG。
//
// 合約：同一實作同一版本下 New(seed) 必須是決定性的，
// 相同 seed 產生相同的輸出序列，盤面的填充順序因此可以重現。
type PRNGFactory interface {
	New(int64) PRNG
}

// DefaultPRNG 是預設的 PRNGFactory，產出 PCG64。
type DefaultPRNG struct{}

// New 滿足 PRNGFactory
func (d *DefaultPRNG) New(seed int64) PRNG {
	return NewPCG64WithSeed(seed)
}

func Default() *DefaultPRNG {
	return &DefaultPRNG{}
}

// Core 封裝 PRNG，並提供常用取樣工具。
type Core struct {
	PRNG
}

// New 允許使用外部自實現的 PRNG 建立 Core。
func New(rng PRNG) *Core {
	return &Core{rng}
}

// Pick 從列表中隨機選取一個元素，若列表為空回傳 -1
func (c *Core) Pick(src []int) int {
	if len(src) == 0 {
		return -1
	}
	return src[c.IntN(len(src))]
}

// Chance 以機率 p 回傳 true，p <= 0 永遠 false，p >= 1 永遠 true。
func (c *Core) Chance(p float64) bool {
	if p <= 0 {
		return false
	}
	if p >= 1 {
		return true
	}
	return c.Float64() < p
}

// Shuffle 以 Fisher-Yates 就地重排長度為 n 的序列，swap 負責交換 i 與 j。
func (c *Core) Shuffle(n int, swap func(i, j int)) {
	for i := n - 1; i > 0; i-- {
		swap(i, c.IntN(i+1))
	}
}

// ShuffleInts 對 []int 就地重排。
func (c *Core) ShuffleInts(src []int) {
	c.Shuffle(len(src), func(i, j int) { src[i], src[j] = src[j], src[i] })
}
