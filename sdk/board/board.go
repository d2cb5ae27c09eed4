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

// Package board 是寶石盤面的核心：連線偵測與消除、重力補盤、交換、捲動與改色。
//
// Board 的所有方法都必須在同一個 Scheduler 上呼叫；動畫交給 Presenter，
// 完成通知會被排回同一個 Scheduler，因此盤面狀態永遠只有單一寫入者。
package board

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/zintix-labs/crystalab/errs"
	"github.com/zintix-labs/crystalab/sdk/ops"
	"github.com/zintix-labs/crystalab/sdk/sched"
	"github.com/zintix-labs/crystalab/spec"
)

// Options 組裝 Board 的協作者。Scheduler 與 Picker 為必填。
type Options struct {
	Presenter Presenter
	Scheduler sched.Scheduler
	Picker    Picker
	Timing    spec.TimingSetting
	Logger    *slog.Logger
}

// Counters 是盤面自建立以來的累計數據
type Counters struct {
	Removed int `json:"removed"`
	Spawned int `json:"spawned"`
	Falls   int `json:"falls"`
	Passes  int `json:"passes"`
	Refills int `json:"refills"`
}

// Board 持有 rows*cols 個格子（row-major）。
type Board struct {
	rows   int
	cols   int
	cells  []*Cell
	env    *env
	pick   Picker
	timing spec.TimingSetting
	log    *slog.Logger

	refilling bool
	busy      int
	idle      []func()
	nextID    uint64
	counters  Counters

	// 暫存
	screen []int16
	mark   []bool
	hits   []int16
	moves  []ops.Move
	line   []int
}

// New 以既有的格子建立 Board。cells 必須是 rows*cols 個、座標依 row-major 連續指定。
func New(rows, cols int, cells []*Cell, opt Options) (*Board, error) {
	if rows <= 0 || cols <= 0 {
		return nil, errs.NewFatal(fmt.Sprintf("board: invalid dimensions rows=%d cols=%d", rows, cols))
	}
	if len(cells) != rows*cols {
		return nil, errs.NewFatal(fmt.Sprintf("board: got %d cells, want %d", len(cells), rows*cols))
	}
	for i, c := range cells {
		want := Pos{Col: i % cols, Row: i / cols}
		if c == nil || c.pos != want {
			return nil, errs.NewFatal(fmt.Sprintf("board: cell %d is not addressed %v", i, want))
		}
	}
	if opt.Scheduler == nil {
		return nil, errs.NewFatal("board: nil scheduler")
	}
	if opt.Picker == nil {
		return nil, errs.NewFatal("board: nil picker")
	}
	pres := opt.Presenter
	if pres == nil {
		pres = nopPresenter{}
	}
	timing := opt.Timing
	if err := timing.Normalize(); err != nil {
		return nil, err
	}
	log := opt.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	b := &Board{
		rows:   rows,
		cols:   cols,
		cells:  cells,
		env:    &env{pres: pres, sched: opt.Scheduler},
		pick:   opt.Picker,
		timing: timing,
		log:    log,
		screen: make([]int16, rows*cols),
		mark:   make([]bool, rows*cols),
	}
	if cp, ok := pres.(CellPresenter); ok {
		for _, c := range cells {
			c.notify = cp.CellChanged
		}
	}
	return b, nil
}

func (b *Board) Rows() int { return b.rows }
func (b *Board) Cols() int { return b.cols }
func (b *Board) Cells() []*Cell { return b.cells }
func (b *Board) Timing() spec.TimingSetting { return b.timing }
func (b *Board) Counters() Counters { return b.counters }

// Refilling 回報補盤流程是否進行中
func (b *Board) Refilling() bool { return b.refilling }

// Busy 回傳進行中的動畫數
func (b *Board) Busy() int { return b.busy }

// InBounds 回報 p 是否在盤面內
func (b *Board) InBounds(p Pos) bool {
	return p.Col >= 0 && p.Col < b.cols && p.Row >= 0 && p.Row < b.rows
}

// Cell 回傳 p 的格子，越界時 ok 為 false
func (b *Board) Cell(p Pos) (*Cell, bool) {
	if !b.InBounds(p) {
		return nil, false
	}
	return b.cells[p.Row*b.cols+p.Col], true
}

func (b *Board) index(p Pos) int { return p.Row*b.cols + p.Col }

// Kind 回傳 p 上穩定寶石的種類；空格、淡出中或移動中皆為 None
func (b *Board) Kind(p Pos) spec.Kind {
	c, ok := b.Cell(p)
	if !ok || !c.settled() {
		return spec.None
	}
	return c.token.kind
}

// Snapshot 以平面盤面回傳目前穩定寶石的種類，其餘為 0。
func (b *Board) Snapshot(dst []int16) []int16 {
	dst = dst[:0]
	for _, c := range b.cells {
		if c.settled() {
			dst = append(dst, int16(c.token.kind))
		} else {
			dst = append(dst, 0)
		}
	}
	return dst
}

// occupancy 與 Snapshot 相同，但淡出中與預約中的格子記為 ops.Blocked
func (b *Board) occupancy() []int16 {
	for i, c := range b.cells {
		switch {
		case c.pending != nil, c.token != nil && c.token.phase != phaseSettled:
			b.screen[i] = ops.Blocked
		case c.token != nil:
			b.screen[i] = int16(c.token.kind)
		default:
			b.screen[i] = 0
		}
	}
	return b.screen
}

// Quiet 回報盤面是否完全靜止：沒有動畫、沒有補盤且已填滿
func (b *Board) Quiet() bool {
	if b.busy > 0 || b.refilling {
		return false
	}
	for _, c := range b.cells {
		if c.token == nil {
			return false
		}
	}
	return true
}

// WhenIdle 在所有動畫結束後於 Scheduler 上執行 fn；目前已無動畫時直接排入。
func (b *Board) WhenIdle(fn func()) {
	if fn == nil {
		return
	}
	if b.busy == 0 {
		b.env.sched.Post(fn)
		return
	}
	b.idle = append(b.idle, fn)
}

func (b *Board) begin() { b.busy++ }

func (b *Board) end() {
	b.busy--
	if b.busy > 0 {
		return
	}
	b.busy = 0
	waiters := b.idle
	b.idle = nil
	for _, fn := range waiters {
		b.env.sched.Post(fn)
	}
}

func (b *Board) newToken(k spec.Kind, at Vec2) *Token {
	b.nextID++
	t := &Token{id: b.nextID, kind: k, pos: at, env: b.env}
	b.env.pres.Spawn(t, at)
	return t
}

// Place 直接把一顆 k 放進空格 p，不播動畫（固定版面載入用）。
func (b *Board) Place(p Pos, k spec.Kind) (*Token, error) {
	c, ok := b.Cell(p)
	if !ok {
		return nil, errs.WrapWithExtra(errs.ErrOutOfRange, "board: place", p.String())
	}
	if !k.Valid() {
		return nil, errs.Warnf("board: place invalid kind %d", k)
	}
	if c.token != nil || c.pending != nil {
		return nil, errs.WrapWithExtra(errs.ErrBusy, "board: place on occupied cell", p.String())
	}
	t := b.newToken(k, c.world)
	c.AcceptCrystal(t)
	return t, nil
}

// String 以版面字元輸出盤面，'.' 為空格，'*' 為淡出中，'+' 為等待寶石抵達
func (b *Board) String() string {
	var sb strings.Builder
	for r := 0; r < b.rows; r++ {
		for c := 0; c < b.cols; c++ {
			cell := b.cells[r*b.cols+c]
			switch {
			case cell.pending != nil:
				sb.WriteByte('+')
			case cell.token == nil:
				sb.WriteByte('.')
			case cell.token.phase == phaseFading:
				sb.WriteByte('*')
			default:
				sb.WriteByte(cell.token.kind.Letter())
			}
		}
		if r < b.rows-1 {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}
