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
	"slices"
	"testing"
	"testing/fstest"

	"github.com/zintix-labs/crystalab/dto"
	"github.com/zintix-labs/crystalab/errs"
	"github.com/zintix-labs/crystalab/sdk/board"
	"github.com/zintix-labs/crystalab/sdk/core"
	"github.com/zintix-labs/crystalab/spec"
	"github.com/zintix-labs/crystalab/stats"
)

var testConfigs = fstest.MapFS{
	"tiny.yaml": {Data: []byte(`
name: tiny
id: 7
rows: 3
cols: 3
kinds: [red, green, blue]
layout: ["RRG", "GGR", "BBR"]
`)},
	"square.yaml": {Data: []byte(`
name: Square
id: 8
rows: 6
cols: 6
kinds: [red, green, blue, yellow, purple]
`)},
	"dot.yaml": {Data: []byte(`
name: dot
id: 9
rows: 1
cols: 1
kinds: [red]
`)},
}

func newTestLab(t *testing.T) *Lab {
	t.Helper()
	lab, err := NewAuto(core.Default(), Configs(testConfigs), nil)
	if err != nil {
		t.Fatalf("new lab: %v", err)
	}
	return lab
}

func TestLabLookup(t *testing.T) {
	lab := newTestLab(t)
	if got := lab.IDs(); !slices.Equal(got, []spec.BID{7, 8, 9}) {
		t.Fatalf("ids got %v", got)
	}
	sum, err := lab.Summaries()
	if err != nil || len(sum) != 3 {
		t.Fatalf("summaries got %v err %v", sum, err)
	}
	bs, err := lab.SettingByName("SQUARE")
	if err != nil || bs.ID != 8 {
		t.Fatalf("setting by name got %+v err %v", bs, err)
	}
	if _, err := lab.Setting(99); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("unknown id should be not found, got %v", err)
	}
	if _, err := New(nil, Configs(testConfigs), nil); err == nil {
		t.Fatalf("nil factory should fail")
	}
	if _, err := New(core.Default(), nil, nil); err == nil {
		t.Fatalf("missing configs should fail")
	}
}

func TestTableSwapResolve(t *testing.T) {
	lab := newTestLab(t)
	tbl, err := lab.NewTableWithSeed(7, 1, 0)
	if err != nil {
		t.Fatalf("new table: %v", err)
	}
	ctx := t.Context()
	defer tbl.Close(ctx)

	snap, err := tbl.Snapshot(ctx)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	want := []int16{1, 1, 2, 2, 2, 1, 3, 3, 1}
	if !slices.Equal(snap, want) {
		t.Fatalf("initial snapshot got %v want %v", snap, want)
	}

	if err := tbl.Swap(ctx, board.Pos{Col: 2, Row: 0}, board.Pos{Col: 2, Row: 1}); err != nil {
		t.Fatalf("swap: %v", err)
	}
	if err := tbl.Settle(ctx); err != nil {
		t.Fatalf("settle: %v", err)
	}
	res, err := tbl.Resolve(ctx)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if res.Depth < 1 || res.Removed < 6 || res.Removed != res.Spawned {
		t.Fatalf("cascade got %+v", res)
	}
	snap, err = tbl.Snapshot(ctx)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	for i, v := range snap {
		if v == int16(spec.None) {
			t.Fatalf("cell %d left empty after resolve", i)
		}
	}
	if n, err := tbl.Collapse(ctx); err != nil || n != 0 {
		t.Fatalf("quiet board collapse got %d err %v", n, err)
	}

	if err := tbl.Swap(ctx, board.Pos{Col: 3, Row: 0}, board.Pos{Col: 2, Row: 0}); !errors.Is(err, errs.ErrOutOfRange) {
		t.Fatalf("out of range swap got %v", err)
	}

	if err := tbl.Close(ctx); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := tbl.Close(ctx); err != nil {
		t.Fatalf("second close: %v", err)
	}
	if _, err := tbl.Resolve(ctx); !errors.Is(err, errs.ErrClosed) {
		t.Fatalf("resolve after close got %v", err)
	}
}

func TestTableScrollRecolor(t *testing.T) {
	lab := newTestLab(t)
	tbl, err := lab.NewTableWithSeed(7, 1, 0)
	if err != nil {
		t.Fatalf("new table: %v", err)
	}
	ctx := t.Context()
	defer tbl.Close(ctx)

	if err := tbl.Scroll(ctx, spec.Horizontal, 0, 1); err != nil {
		t.Fatalf("scroll: %v", err)
	}
	if err := tbl.Settle(ctx); err != nil {
		t.Fatalf("settle: %v", err)
	}
	snap, _ := tbl.Snapshot(ctx)
	if !slices.Equal(snap[:3], []int16{2, 1, 1}) {
		t.Fatalf("row 0 after scroll got %v", snap[:3])
	}
	if err := tbl.Scroll(ctx, spec.Vertical, 3, 1); !errors.Is(err, errs.ErrOutOfRange) {
		t.Fatalf("scroll out of range got %v", err)
	}

	n, err := tbl.Recolor(ctx, []board.ColorChange{
		{Pos: board.Pos{Col: 0, Row: 0}, Kind: spec.Blue},
		{Pos: board.Pos{Col: 5, Row: 5}, Kind: spec.Red},
	})
	if err != nil || n != 1 {
		t.Fatalf("recolor got %d err %v", n, err)
	}
	snap, _ = tbl.Snapshot(ctx)
	if snap[0] != int16(spec.Blue) {
		t.Fatalf("recolored cell got %d", snap[0])
	}
}

func TestRuntime(t *testing.T) {
	lab := newTestLab(t)
	rt, err := lab.BuildRuntime(1, 0)
	if err != nil {
		t.Fatalf("build runtime: %v", err)
	}
	ctx := t.Context()

	seed := int64(3)
	id, tbl, err := rt.Open(ctx, &dto.OpenRequest{Preset: " tiny ", Seed: &seed})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if tbl.Seed() != 3 || tbl.ID() != 7 {
		t.Fatalf("table got seed=%d id=%d", tbl.Seed(), tbl.ID())
	}
	if _, _, err := rt.Open(ctx, &dto.OpenRequest{ID: 8}); !errors.Is(err, errs.ErrBusy) {
		t.Fatalf("open over capacity got %v", err)
	}
	if got, err := rt.Get(id); err != nil || got != tbl {
		t.Fatalf("get got %v err %v", got, err)
	}
	if _, err := rt.Get("t404"); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("get unknown got %v", err)
	}
	if err := rt.Drop(ctx, id); err != nil {
		t.Fatalf("drop: %v", err)
	}
	if !tbl.Closed() {
		t.Fatalf("dropped table should be closed")
	}

	id2, tbl2, err := rt.Open(ctx, &dto.OpenRequest{ID: 8})
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if id2 == id {
		t.Fatalf("table ids must not be reused")
	}
	if got := rt.TableIDs(); !slices.Equal(got, []string{id2}) {
		t.Fatalf("table ids got %v", got)
	}

	if err := rt.Shutdown(ctx); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
	<-rt.Done()
	if !tbl2.Closed() {
		t.Fatalf("shutdown should close tables")
	}
	if _, _, err := rt.Open(ctx, &dto.OpenRequest{ID: 8}); !errors.Is(err, errs.ErrClosed) {
		t.Fatalf("open after shutdown got %v", err)
	}
	m := rt.Metrics()
	if m.Opened != 2 || m.Dropped != 1 || !m.Closed || m.CloseReason != "shutdown" {
		t.Fatalf("metrics got %+v", m)
	}
}

func TestSimulatorDeterministic(t *testing.T) {
	lab := newTestLab(t)
	sim, err := lab.NewSimulatorWithSeed(8, 42)
	if err != nil {
		t.Fatalf("new simulator: %v", err)
	}
	sim.SetEngine(EngineFlat)

	one, _, err := sim.Sim(6, 50, false)
	if err != nil {
		t.Fatalf("sim: %v", err)
	}
	many, _, err := sim.SimMP(6, 50, 4, false)
	if err != nil {
		t.Fatalf("sim mp: %v", err)
	}
	assertSameReport(t, one, many)
	if one.Summary.Boards != 6 || one.Summary.Moves != 300 {
		t.Fatalf("summary got %+v", one.Summary)
	}
	if one.Summary.TotalRemoved != one.Summary.TotalSpawned {
		t.Fatalf("removed %d != spawned %d", one.Summary.TotalRemoved, one.Summary.TotalSpawned)
	}

	if _, _, err := sim.Sim(0, 10, false); err == nil {
		t.Fatalf("zero boards should fail")
	}
	if _, _, err := sim.SimMP(1, 10, 0, false); err == nil {
		t.Fatalf("zero workers should fail")
	}
}

// 兩種引擎在同一個 seed 下必須跑出完全相同的統計
func TestEnginesAgree(t *testing.T) {
	lab := newTestLab(t)
	for _, id := range []spec.BID{7, 8} {
		for _, st := range []Strategy{StrategyRandom, StrategySmart} {
			sim, err := lab.NewSimulatorWithSeed(id, 2025)
			if err != nil {
				t.Fatalf("new simulator: %v", err)
			}
			sim.SetStrategy(st)
			sim.SetEngine(EngineBoard)
			boardRep, spread, _, err := sim.SimBoards(3, 40, 2, false)
			if err != nil {
				t.Fatalf("board engine: %v", err)
			}
			if spread.Boards != 3 {
				t.Fatalf("spread boards got %d", spread.Boards)
			}
			sim.SetEngine(EngineFlat)
			flatRep, _, err := sim.SimMP(3, 40, 2, false)
			if err != nil {
				t.Fatalf("flat engine: %v", err)
			}
			if boardRep.Summary.Engine != "board" || flatRep.Summary.Engine != "flat" {
				t.Fatalf("engine names got %q / %q", boardRep.Summary.Engine, flatRep.Summary.Engine)
			}
			assertSameReport(t, boardRep, flatRep)
		}
	}
}

func assertSameReport(t *testing.T, a, b *stats.CascadeReport) {
	t.Helper()
	sa, sb := *a.Summary, *b.Summary
	sa.Engine, sb.Engine = "", ""
	if sa != sb {
		t.Fatalf("summary differs:\n%+v\n%+v", sa, sb)
	}
	if a.Depth.Sum != b.Depth.Sum || a.Depth.SqSum != b.Depth.SqSum || a.Removed.SqSum != b.Removed.SqSum {
		t.Fatalf("moments differ: %+v vs %+v", a.Depth, b.Depth)
	}
	if !slices.Equal(a.Dist.DepthCollect, b.Dist.DepthCollect) {
		t.Fatalf("distribution differs: %v vs %v", a.Dist.DepthCollect, b.Dist.DepthCollect)
	}
}

func TestSimulatorRejects(t *testing.T) {
	lab := newTestLab(t)
	if _, err := lab.NewSimulatorWithSeed(9, 1); err == nil {
		t.Fatalf("1x1 board has no swaps and should be rejected")
	}
	if e, err := ParseEngine(" FLAT "); err != nil || e != EngineFlat {
		t.Fatalf("parse engine got %v err %v", e, err)
	}
	if _, err := ParseEngine("gpu"); errs.Level(err) != errs.Warn {
		t.Fatalf("unknown engine should be a warn, got %v", err)
	}
	if s, err := ParseStrategy("smart"); err != nil || s != StrategySmart {
		t.Fatalf("parse strategy got %v err %v", s, err)
	}
	if _, err := ParseStrategy("greedy"); err == nil {
		t.Fatalf("unknown strategy should fail")
	}
}
