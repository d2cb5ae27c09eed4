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

package crystalab

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/zintix-labs/crystalab/corefmt"
	"github.com/zintix-labs/crystalab/dto"
	"github.com/zintix-labs/crystalab/errs"
	"github.com/zintix-labs/crystalab/sdk/anim"
	"github.com/zintix-labs/crystalab/sdk/board"
	"github.com/zintix-labs/crystalab/sdk/core"
	"github.com/zintix-labs/crystalab/sdk/sampler"
	"github.com/zintix-labs/crystalab/sdk/sched"
	"github.com/zintix-labs/crystalab/spec"
)

// Table 封裝一張「可對外操作」的盤面。
//
// 你可以把 Table 視為 Board 的外殼（shell）：
//   - 對外：提供 Swap / Scroll / Recolor / Collapse / Fill / Resolve / Select / View，皆可由任意 goroutine 呼叫。
//   - 對內：持有 RNG（Core）、專屬的 sched.Loop 與動畫呈現層；所有盤面操作都排進 Loop 依序執行。
//
// 動畫完成通知同樣排回 Loop，因此 Board 永遠只有單一寫入者，Table 本身不需要鎖。
// seed 記錄出生時的亂數起點，同一份設定 + 同一個 seed 可重現初始盤面與補入序列。
type Table struct {
	name  string
	id    spec.BID
	seed  int64
	core  *core.Core
	loop  *sched.Loop
	board *board.Board
	pres  board.Presenter
	log   *slog.Logger

	done      chan struct{}
	closeOnce sync.Once
}

func newTimedPresenter(speed float64) *anim.Timed {
	return anim.NewTimed(speed)
}

// newTable 建立 Table 並啟動其 Loop。
//
// 建立流程：
//  1. core.New(cf.New(seed)) 建出 RNG 核心，sampler 依設定建出寶石抽樣器
//  2. 依設定的 rows/cols/cell size 建格子與 Board
//  3. 有固定版面時先依版面放入寶石，其餘空格（或整張盤面）以抽樣器補滿
func newTable(bs *spec.BoardSetting, cf core.PRNGFactory, seed int64, pres board.Presenter, log *slog.Logger) (*Table, error) {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	log = log.With(slog.String("board", bs.Name), slog.Int64("seed", seed))
	c := core.New(cf.New(seed))
	picker, err := sampler.FromSetting(c, bs)
	if err != nil {
		return nil, err
	}
	loop := sched.NewLoop(log)
	b, err := board.New(bs.Rows, bs.Cols, board.NewGrid(bs.Rows, bs.Cols, bs.Timing.CellSize), board.Options{
		Presenter: pres,
		Scheduler: loop,
		Picker:    picker,
		Timing:    bs.Timing,
		Logger:    log,
	})
	if err != nil {
		return nil, err
	}
	if len(bs.Layout) > 0 {
		grid, cols, err := corefmt.DecodeLayout(bs.Layout)
		if err != nil {
			return nil, err
		}
		for i, v := range grid {
			if v <= 0 {
				continue
			}
			if _, err := b.Place(board.Pos{Col: i % cols, Row: i / cols}, spec.Kind(v)); err != nil {
				return nil, err
			}
		}
	}
	// Loop 尚未啟動，這裡是唯一的寫入者
	b.FillBoard(false)

	t := &Table{
		name:  bs.Name,
		id:    bs.ID,
		seed:  seed,
		core:  c,
		loop:  loop,
		board: b,
		pres:  pres,
		log:   log,
		done:  make(chan struct{}),
	}
	loop.Start()
	log.Debug("table opened", slog.Int("rows", bs.Rows), slog.Int("cols", bs.Cols))
	return t, nil
}

func (t *Table) Name() string { return t.name }
func (t *Table) ID() spec.BID { return t.id }
func (t *Table) Seed() int64  { return t.seed }
func (t *Table) Rows() int    { return t.board.Rows() }
func (t *Table) Cols() int    { return t.board.Cols() }

// CellSize 回傳格子中心間距（世界座標），建立後不會改變
func (t *Table) CellSize() float64 { return t.board.Timing().CellSize }

// do 把 fn 排進 Loop 並等待完成
func (t *Table) do(ctx context.Context, fn func()) error {
	select {
	case <-t.done:
		return errs.WrapWithExtra(errs.ErrClosed, "table closed", t.name)
	default:
	}
	if err := t.loop.Do(ctx, fn); err != nil {
		return errs.Wrap(err, "table "+t.name)
	}
	return nil
}

// await 把 start 排進 Loop，start 取得 finish 後於盤面完成時呼叫；await 等待 finish 或 ctx。
func (t *Table) await(ctx context.Context, start func(finish func())) error {
	fin := make(chan struct{})
	var once sync.Once
	if err := t.do(ctx, func() { start(func() { once.Do(func() { close(fin) }) }) }); err != nil {
		return err
	}
	select {
	case <-fin:
		return nil
	case <-t.done:
		return errs.WrapWithExtra(errs.ErrClosed, "table closed", t.name)
	case <-ctx.Done():
		return errs.Wrap(ctx.Err(), "table "+t.name)
	}
}

// Swap 交換相鄰或任意兩格的寶石；不會觸發消除
func (t *Table) Swap(ctx context.Context, a, b board.Pos) error {
	var err error
	if e := t.do(ctx, func() { err = t.board.SwapCrystals(a, b) }); e != nil {
		return e
	}
	return err
}

// Scroll 循環位移一整列或一整行
func (t *Table) Scroll(ctx context.Context, axis spec.Axis, index, delta int) error {
	var err error
	if e := t.do(ctx, func() { err = t.board.ScrollRow(axis, index, delta) }); e != nil {
		return e
	}
	return err
}

// Recolor 套用改色，回傳實際套用的筆數
func (t *Table) Recolor(ctx context.Context, changes []board.ColorChange) (int, error) {
	n := 0
	err := t.do(ctx, func() { n = t.board.ChangeCrystalsColor(changes) })
	return n, err
}

// Collapse 消除目前所有連線，回傳被標記的格數；淡出與補盤在背景依動畫時間進行
func (t *Table) Collapse(ctx context.Context) (int, error) {
	n := 0
	err := t.do(ctx, func() { n = t.board.ResolveMatches() })
	return n, err
}

// Fill 啟動一次下落補盤
func (t *Table) Fill(ctx context.Context) error {
	return t.do(ctx, t.board.SettleAndRefill)
}

// Resolve 反覆消除與補盤直到盤面沒有連線，回傳連鎖結果
func (t *Table) Resolve(ctx context.Context) (board.CascadeResult, error) {
	var res board.CascadeResult
	err := t.await(ctx, func(finish func()) {
		t.board.Cascade(func(r board.CascadeResult) {
			res = r
			finish()
		})
	})
	if err != nil {
		return board.CascadeResult{}, err
	}
	return res, nil
}

// Settle 等待所有動畫與補盤結束
func (t *Table) Settle(ctx context.Context) error {
	return t.await(ctx, func(finish func()) {
		var check func()
		check = func() {
			if t.board.Busy() > 0 || t.board.Refilling() {
				t.board.WhenIdle(check)
				return
			}
			finish()
		}
		check()
	})
}

// Select 選取一格，回傳與它交換後能產生連線的相鄰格
func (t *Table) Select(ctx context.Context, p board.Pos) ([]board.Pos, error) {
	var (
		out []board.Pos
		err error
	)
	if e := t.do(ctx, func() { out, err = t.board.Select(p) }); e != nil {
		return nil, e
	}
	return out, err
}

func (t *Table) ClearSelection(ctx context.Context) error {
	return t.do(ctx, t.board.ClearSelection)
}

// Moves 列出所有能產生連線的交換
func (t *Table) Moves(ctx context.Context) ([][2]board.Pos, error) {
	var out [][2]board.Pos
	err := t.do(ctx, func() { out = t.board.Moves() })
	return out, err
}

// Snapshot 回傳穩定寶石的平面盤面
func (t *Table) Snapshot(ctx context.Context) ([]int16, error) {
	var out []int16
	err := t.do(ctx, func() { out = t.board.Snapshot(nil) })
	return out, err
}

// View 回傳對外輸出的盤面快照
func (t *Table) View(ctx context.Context, withCells bool) (dto.BoardView, error) {
	var v dto.BoardView
	err := t.do(ctx, func() { v = dto.NewBoardView(t.board, withCells) })
	v.Name, v.ID = t.name, t.id
	return v, err
}

// Sprites 回傳 now 時刻的動畫畫面；呈現層不是 anim.Timed 時回傳 nil
func (t *Table) Sprites(now time.Time) []anim.Sprite {
	if tp, ok := t.pres.(*anim.Timed); ok {
		return tp.Sprites(now)
	}
	return nil
}

// Close 停止 Loop；尚未執行的操作與動畫通知都會被捨棄。可重複呼叫。
func (t *Table) Close(ctx context.Context) error {
	var err error
	t.closeOnce.Do(func() {
		close(t.done)
		err = t.loop.Shutdown(ctx)
		t.log.Debug("table closed")
	})
	return err
}

// Closed 回報 Table 是否已關閉
func (t *Table) Closed() bool {
	select {
	case <-t.done:
		return true
	default:
		return false
	}
}
