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

import (
	"log/slog"

	"github.com/zintix-labs/crystalab/sdk/ops"
)

// CollapseMatches 消除目前盤面上所有 >= 3 的連線
func (b *Board) CollapseMatches() {
	b.ResolveMatches()
}

// ResolveMatches 掃描穩定寶石，把所有橫向與縱向 >= 3 的連線標記並淡出，回傳被標記的格數。
//
// 淡出中、移動中的寶石視為空格，不會被重複標記。淡出完成後格子放開寶石，
// 若沒有補盤在進行，就由該完成通知啟動補盤。
func (b *Board) ResolveMatches() int {
	screen := b.Snapshot(b.screen)
	b.hits = ops.FindMatches(screen, b.cols, b.rows, b.mark, b.hits)
	if len(b.hits) == 0 {
		return 0
	}
	for _, idx := range b.hits {
		b.remove(b.cells[idx])
	}
	b.log.Debug("board: matches marked", slog.Int("count", len(b.hits)))
	return len(b.hits)
}

func (b *Board) remove(c *Cell) {
	t := c.token
	b.begin()
	t.AnimateHide(b.timing.Hide(), func() {
		if c.token == t {
			c.ReleaseCrystal()
		}
		b.env.pres.Destroy(t)
		b.counters.Removed++
		b.end()
		if !b.refilling {
			b.SettleAndRefill()
		}
	})
}
