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

package board

// CascadeResult 是一次連鎖的結果
type CascadeResult struct {
	// Depth 是有消除發生的輪數
	Depth   int `json:"depth"`
	Removed int `json:"removed"`
	Spawned int `json:"spawned"`
}

// Cascade 反覆「等待靜止、消除」直到某一輪沒有任何連線，最後在 Scheduler 上呼叫 done。
func (b *Board) Cascade(done func(CascadeResult)) {
	start := b.counters
	res := CascadeResult{}
	var step func()
	step = func() {
		if b.busy > 0 || b.refilling {
			b.WhenIdle(step)
			return
		}
		if b.ResolveMatches() > 0 {
			res.Depth++
			b.WhenIdle(step)
			return
		}
		res.Removed = b.counters.Removed - start.Removed
		res.Spawned = b.counters.Spawned - start.Spawned
		if done != nil {
			done(res)
		}
	}
	b.WhenIdle(step)
}
