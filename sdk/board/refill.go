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
	"time"

	"github.com/zintix-labs/crystalab/sdk/ops"
	"github.com/zintix-labs/crystalab/spec"
)

// SettleAndRefill 啟動一次補盤：先反覆讓寶石往下掉直到沒有移動，再從上方補滿空格。
//
// 同一時間只會有一個補盤流程；進行中再呼叫不會有任何效果。
// 每一輪下落都會等所有動畫結束才開始下一輪，旗標在補滿的寶石全部出發後才清除。
func (b *Board) SettleAndRefill() {
	if b.refilling {
		return
	}
	b.refilling = true
	b.counters.Refills++
	b.log.Debug("board: refill start")
	b.WhenIdle(b.refillPass)
}

func (b *Board) refillPass() {
	screen := b.occupancy()
	b.moves = ops.PlanGravity(screen, b.cols, b.rows, b.moves)
	if len(b.moves) > 0 {
		b.counters.Passes++
		for _, m := range b.moves {
			b.fall(b.cells[m.From], b.cells[m.To])
		}
		b.WhenIdle(b.refillPass)
		return
	}
	if ops.HasGap(screen, b.cols, b.rows) {
		// 空格上方還有淡出中或尚未抵達的寶石，等它們結束
		b.WhenIdle(b.refillPass)
		return
	}
	n := b.FillBoard(true)
	b.refilling = false
	b.log.Debug("board: refill done", slog.Int("spawned", n))
}

// fall 把 from 的寶石移到 to，抵達時 to 才接收
func (b *Board) fall(from, to *Cell) {
	t := from.ReleaseCrystal()
	to.pending = t
	b.counters.Falls++
	b.dispatch(t, to, b.timing.Move())
}

// FillBoard 以隨機種類補滿所有空格，回傳補入數量。
//
// falling 為 true 時新寶石由格子上方 SpawnOffset 處落下，抵達前格子維持預約狀態；
// 否則直接放進格子。補入順序為行優先、由上而下。
func (b *Board) FillBoard(falling bool) int {
	screen := b.occupancy()
	n := ops.FillScreenByHole(screen, b.cols, b.rows, func() int16 {
		return int16(b.pick.Pick())
	})
	if n == 0 {
		return 0
	}
	for c := 0; c < b.cols; c++ {
		for r := 0; r < b.rows; r++ {
			cell := b.cells[r*b.cols+c]
			if cell.token != nil || cell.pending != nil {
				continue
			}
			k := spec.Kind(screen[r*b.cols+c])
			if !falling {
				cell.AcceptCrystal(b.newToken(k, cell.world))
				continue
			}
			at := Vec2{X: cell.world.X, Y: cell.world.Y - b.timing.SpawnOffset}
			t := b.newToken(k, at)
			cell.pending = t
			b.dispatch(t, cell, b.timing.Fall())
		}
	}
	b.counters.Spawned += n
	return n
}

// dispatch 讓已預約 to 的 t 移過去，抵達後 to 接收
func (b *Board) dispatch(t *Token, to *Cell, d time.Duration) {
	b.begin()
	t.AnimateMove(to.world, d, func() {
		to.AcceptCrystal(t)
		b.end()
	})
}
