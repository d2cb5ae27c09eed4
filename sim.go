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
	"errors"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cheggaaa/pb/v3"
	"github.com/zintix-labs/crystalab/corefmt"
	"github.com/zintix-labs/crystalab/errs"
	"github.com/zintix-labs/crystalab/recorder"
	"github.com/zintix-labs/crystalab/sdk/anim"
	"github.com/zintix-labs/crystalab/sdk/board"
	"github.com/zintix-labs/crystalab/sdk/core"
	"github.com/zintix-labs/crystalab/sdk/ops"
	"github.com/zintix-labs/crystalab/sdk/sampler"
	"github.com/zintix-labs/crystalab/sdk/sched"
	"github.com/zintix-labs/crystalab/spec"
	"github.com/zintix-labs/crystalab/stats"
)

// Engine 決定模擬時盤面如何運作
type Engine uint8

const (
	// EngineBoard 使用完整的 Board（Instant 動畫 + Queue 排程），與線上行為一致
	EngineBoard Engine = iota
	// EngineFlat 直接在 []int16 上跑 ops，結果與 EngineBoard 相同但快得多
	EngineFlat
)

func (e Engine) String() string {
	if e == EngineFlat {
		return "flat"
	}
	return "board"
}

func ParseEngine(s string) (Engine, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "board":
		return EngineBoard, nil
	case "flat":
		return EngineFlat, nil
	}
	return 0, errs.NewWarn("unknown engine: " + s)
}

// Strategy 決定每一步選哪一組相鄰交換
type Strategy uint8

const (
	// StrategyRandom 在所有相鄰格子對中均勻抽一組
	StrategyRandom Strategy = iota
	// StrategySmart 只在「交換後會連線」的組合中抽；沒有時退回 StrategyRandom
	StrategySmart
)

func (s Strategy) String() string {
	if s == StrategySmart {
		return "smart"
	}
	return "random"
}

func ParseStrategy(s string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "random":
		return StrategyRandom, nil
	case "smart":
		return StrategySmart, nil
	}
	return 0, errs.NewWarn("unknown strategy: " + s)
}

// Simulator 以固定 seed 建立多張盤面，每一步做一次相鄰交換並跑完連鎖，統計連鎖深度與消除量。
//
// 每張盤面的 seed 都由初始 seed 決定（第一張就是初始 seed），
// 因此同樣的參數不論開幾個 worker，結果都相同。
type Simulator struct {
	Name     string   // 盤面名稱
	ID       spec.BID // 盤面編號
	bs       *spec.BoardSetting
	cf       core.PRNGFactory
	initSeed int64
	engine   Engine
	strategy Strategy
}

func newSimulator(bs *spec.BoardSetting, cf core.PRNGFactory, seed int64) (*Simulator, error) {
	if bs.Rows*bs.Cols < 2 {
		return nil, errs.NewWarn("simulator: board has no adjacent cells")
	}
	// 先試建一次，設定錯誤在這裡就回報
	if _, err := sampler.FromSetting(core.New(cf.New(seed)), bs); err != nil {
		return nil, err
	}
	if len(bs.Layout) > 0 {
		if _, _, err := corefmt.DecodeLayout(bs.Layout); err != nil {
			return nil, err
		}
	}
	return &Simulator{
		Name:     bs.Name,
		ID:       bs.ID,
		bs:       bs,
		cf:       cf,
		initSeed: seed,
	}, nil
}

func (s *Simulator) Seed() int64            { return s.initSeed }
func (s *Simulator) Engine() Engine         { return s.engine }
func (s *Simulator) Strategy() Strategy     { return s.strategy }
func (s *Simulator) SetEngine(e Engine)     { s.engine = e }
func (s *Simulator) SetStrategy(t Strategy) { s.strategy = t }

// Sim 單線模擬器：依序跑 boards 張盤面、每張 moves 步，回傳合併後的統計結果與用時
func (s *Simulator) Sim(boards int, moves int, showpb bool) (*stats.CascadeReport, time.Duration, error) {
	return s.SimMP(boards, moves, 1, showpb)
}

// SimMP 以 mp 個 worker 平行跑 boards 張盤面，合併統計結果後回傳統計結果與用時
func (s *Simulator) SimMP(boards int, moves int, mp int, showpb bool) (*stats.CascadeReport, time.Duration, error) {
	recs, used, err := s.run(boards, moves, mp, showpb)
	if err != nil {
		return nil, 0, err
	}
	merged, err := recorder.MergeCascadeRecorder(recs)
	if err != nil {
		return nil, 0, err
	}
	return merged.Done(), used, nil
}

// SimBoards 與 SimMP 相同，另外回傳「盤面與盤面之間」的差異評估
func (s *Simulator) SimBoards(boards int, moves int, mp int, showpb bool) (*stats.CascadeReport, *stats.BoardSpread, time.Duration, error) {
	recs, used, err := s.run(boards, moves, mp, showpb)
	if err != nil {
		return nil, nil, 0, err
	}
	merged, err := recorder.MergeCascadeRecorder(recs)
	if err != nil {
		return nil, nil, 0, err
	}
	reps := make([]*stats.CascadeReport, len(recs))
	for i, r := range recs {
		reps[i] = r.Done()
	}
	return merged.Done(), stats.EstimateBoards(reps), used, nil
}

func (s *Simulator) run(boards int, moves int, mp int, showpb bool) ([]*recorder.CascadeRecorder, time.Duration, error) {
	if boards < 1 {
		return nil, 0, errs.NewWarn("boards must > 0")
	}
	if moves < 1 {
		return nil, 0, errs.NewWarn("moves must > 0")
	}
	if mp < 1 {
		return nil, 0, errs.NewWarn("workers must > 0")
	}
	mp = min(mp, boards)

	// seed 先全部算好，結果才不會受 worker 排程影響
	seeds := make([]int64, boards)
	seeds[0] = s.initSeed
	sm := newSeedMaker(s.initSeed)
	for i := 1; i < boards; i++ {
		seeds[i] = sm.next()
	}
	recs := make([]*recorder.CascadeRecorder, boards)
	fails := make([]error, boards)

	jobs := make(chan int, boards)
	for i := range seeds {
		jobs <- i
	}
	close(jobs)

	bar := pb.StartNew(boards * moves)
	if !showpb {
		bar.SetWriter(io.Discard)
	}
	wg := new(sync.WaitGroup)
	wg.Add(mp)
	for w := 0; w < mp; w++ {
		go func() {
			defer wg.Done()
			for i := range jobs {
				recs[i], fails[i] = s.play(seeds[i], moves, bar)
			}
		}()
	}
	wg.Wait()
	used := time.Since(bar.StartTime())
	bar.Finish()

	if err := errors.Join(fails...); err != nil {
		return nil, 0, err
	}
	return recs, used, nil
}

// play 以 seed 建一張盤面跑 moves 步
func (s *Simulator) play(seed int64, moves int, bar *pb.ProgressBar) (*recorder.CascadeRecorder, error) {
	f, err := s.newPlayfield(seed)
	if err != nil {
		return nil, err
	}
	rows, cols := s.bs.Rows, s.bs.Cols
	mv := core.New(s.cf.New(int64(mix63(uint64(seed) + 1))))
	rec := recorder.NewCascadeRecorder(s.Name, s.ID, s.engine.String())
	var found []ops.SwapMove
	for range moves {
		found = ops.FindSwapMoves(f.screen(), cols, rows, found)
		if len(found) == 0 {
			rec.RecordStuck()
		}
		var a, b int
		if s.strategy == StrategySmart && len(found) > 0 {
			m := found[mv.IntN(len(found))]
			a, b = m.A, m.B
		} else {
			a, b = randomPair(mv, rows, cols)
		}
		f.swap(a, b)
		rec.Record(f.cascade())
		bar.Increment()
	}
	return rec, nil
}

// randomPair 在所有 rows*(cols-1) + cols*(rows-1) 組相鄰格子中均勻抽一組
func randomPair(c *core.Core, rows, cols int) (int, int) {
	horizontal := rows * (cols - 1)
	k := c.IntN(horizontal + cols*(rows-1))
	if k < horizontal {
		a := (k/(cols-1))*cols + k%(cols-1)
		return a, a + 1
	}
	k -= horizontal
	return k, k + cols
}

// playfield 是模擬用的盤面，screen 為 row-major 的種類值
type playfield interface {
	screen() []int16
	swap(a, b int)
	cascade() board.CascadeResult
}

func (s *Simulator) newPlayfield(seed int64) (playfield, error) {
	picker, err := sampler.FromSetting(core.New(s.cf.New(seed)), s.bs)
	if err != nil {
		return nil, err
	}
	var layout []int16
	if len(s.bs.Layout) > 0 {
		if layout, _, err = corefmt.DecodeLayout(s.bs.Layout); err != nil {
			return nil, err
		}
	}
	if s.engine == EngineFlat {
		return newFlatField(s.bs.Rows, s.bs.Cols, layout, picker), nil
	}
	return newBoardField(s.bs, layout, picker)
}

// boardField 以同步 Queue 驅動真正的 Board，每個操作之後把 Queue 清空
type boardField struct {
	b   *board.Board
	q   *sched.Queue
	buf []int16
}

func newBoardField(bs *spec.BoardSetting, layout []int16, picker board.Picker) (*boardField, error) {
	q := sched.NewQueue()
	b, err := board.New(bs.Rows, bs.Cols, board.NewGrid(bs.Rows, bs.Cols, bs.Timing.CellSize), board.Options{
		Presenter: anim.Instant{},
		Scheduler: q,
		Picker:    picker,
		Timing:    bs.Timing,
	})
	if err != nil {
		return nil, err
	}
	for i, v := range layout {
		if v <= 0 {
			continue
		}
		if _, err := b.Place(board.Pos{Col: i % bs.Cols, Row: i / bs.Cols}, spec.Kind(v)); err != nil {
			return nil, err
		}
	}
	b.FillBoard(false)
	q.Drain()
	return &boardField{b: b, q: q}, nil
}

func (f *boardField) screen() []int16 {
	f.buf = f.b.Snapshot(f.buf)
	return f.buf
}

func (f *boardField) swap(a, b int) {
	cols := f.b.Cols()
	_ = f.b.SwapCrystals(board.Pos{Col: a % cols, Row: a / cols}, board.Pos{Col: b % cols, Row: b / cols})
	f.q.Drain()
}

func (f *boardField) cascade() board.CascadeResult {
	var res board.CascadeResult
	f.b.Cascade(func(r board.CascadeResult) { res = r })
	f.q.Drain()
	return res
}

// flatField 每一輪：找連線、清除、整行壓縮、補滿。補入順序與 Board 相同。
type flatField struct {
	rows, cols int
	grid       []int16
	mark       []bool
	hits       []int16
	pick       func() int16
}

func newFlatField(rows, cols int, layout []int16, picker board.Picker) *flatField {
	f := &flatField{
		rows: rows,
		cols: cols,
		grid: make([]int16, rows*cols),
		mark: make([]bool, rows*cols),
		pick: func() int16 { return int16(picker.Pick()) },
	}
	copy(f.grid, layout)
	ops.FillScreenByHole(f.grid, cols, rows, f.pick)
	return f
}

func (f *flatField) screen() []int16 { return f.grid }

func (f *flatField) swap(a, b int) {
	f.grid[a], f.grid[b] = f.grid[b], f.grid[a]
}

func (f *flatField) cascade() board.CascadeResult {
	var res board.CascadeResult
	for {
		f.hits = ops.FindMatches(f.grid, f.cols, f.rows, f.mark, f.hits)
		if len(f.hits) == 0 {
			return res
		}
		res.Depth++
		res.Removed += len(f.hits)
		ops.Clear(f.grid, f.hits)
		ops.Gravity(f.grid, f.cols, f.rows, nil)
		res.Spawned += ops.FillScreenByHole(f.grid, f.cols, f.rows, f.pick)
	}
}

const mask63 = uint64(1<<63) - 1

type seedMaker struct {
	state atomic.Uint64 // always in [0, 2^63)
}

func newSeedMaker(seed int64) *seedMaker {
	s := &seedMaker{}
	s.state.Store(uint64(seed) & mask63)
	return s
}

// state 走全週期（不重複），再用可逆 mix63 打散
//
// 可能被多個 goroutine 同時呼叫，state 以 CAS 迴圈推進。
func (s *seedMaker) next() int64 {
	for {
		old := s.state.Load()
		next := (old*6364136223846793005 + 1442695040888963407) & mask63 // full-period LCG mod 2^63
		if s.state.CompareAndSwap(old, next) {
			return int64(mix63(next)) // 一定非負
		}
	}
}

// mix63：只用「可逆」的 bit 操作 + 乘奇數（mod 2^63）
func mix63(x uint64) uint64 {
	x &= mask63
	x ^= x >> 30
	x = (x * 0xBF58476D1CE4E5B9) & mask63
	x ^= x >> 27
	x = (x * 0x94D049BB133111EB) & mask63
	x ^= x >> 31
	return x & mask63
}
