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

package recorder_test

import (
	"testing"

	"github.com/zintix-labs/crystalab/recorder"
	"github.com/zintix-labs/crystalab/sdk/board"
)

func TestRecordAndDone(t *testing.T) {
	r := recorder.NewCascadeRecorder("classic", 1, "board")
	r.Record(board.CascadeResult{})
	r.Record(board.CascadeResult{Depth: 2, Removed: 6, Spawned: 6})
	r.Record(board.CascadeResult{Depth: 1, Removed: 4, Spawned: 4})
	r.RecordStuck()

	rep := r.Done()
	s := rep.Summary
	if s.Moves != 3 || s.Hits != 2 || s.NoopMoves != 1 || s.Stuck != 1 {
		t.Fatalf("summary got %+v", s)
	}
	if s.TotalRemoved != 10 || s.TotalSpawned != 10 || s.MaxDepth != 2 {
		t.Fatalf("totals got %+v", s)
	}
	if rep.Depth.Sum != 3 || rep.Depth.SqSum != 5 {
		t.Fatalf("depth moments got %+v", rep.Depth)
	}
	if rep.Removed.SqSum != 52 {
		t.Fatalf("removed sq sum got %d want 52", rep.Removed.SqSum)
	}
	if rep.Dist.DepthCollect[0] != 1 || rep.Dist.DepthCollect[1] != 1 || rep.Dist.DepthCollect[2] != 1 {
		t.Fatalf("depth collect got %v", rep.Dist.DepthCollect)
	}

	// 報表與紀錄員互不共用底層陣列
	rep.Dist.DepthCollect[0] = 99
	if r.Dist.DepthCollect[0] != 1 {
		t.Fatalf("report aliases recorder buffer")
	}
}

func TestMerge(t *testing.T) {
	a := recorder.NewCascadeRecorder("classic", 1, "flat")
	b := recorder.NewCascadeRecorder("classic", 1, "flat")
	a.Record(board.CascadeResult{Depth: 1, Removed: 3, Spawned: 3})
	b.Record(board.CascadeResult{Depth: 4, Removed: 15, Spawned: 15})
	b.Record(board.CascadeResult{})

	m, err := recorder.MergeCascadeRecorder([]*recorder.CascadeRecorder{a, b})
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if m.Basic.Boards != 2 || m.Basic.Moves != 3 || m.Basic.Hits != 2 || m.Basic.MaxDepth != 4 {
		t.Fatalf("merged basic got %+v", m.Basic)
	}
	sum := 0
	for _, c := range m.Dist.DepthCollect {
		sum += c
	}
	if sum != 3 {
		t.Fatalf("merged dist total got %d want 3", sum)
	}

	other := recorder.NewCascadeRecorder("classic", 1, "board")
	if _, err := recorder.MergeCascadeRecorder([]*recorder.CascadeRecorder{a, other}); err == nil {
		t.Fatalf("merging different engines should fail")
	}
	if _, err := recorder.MergeCascadeRecorder(nil); err == nil {
		t.Fatalf("merging nothing should fail")
	}
}
