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

package dto

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/zintix-labs/crystalab/corefmt"
	"github.com/zintix-labs/crystalab/errs"
	"github.com/zintix-labs/crystalab/sdk/anim"
	"github.com/zintix-labs/crystalab/sdk/board"
	"github.com/zintix-labs/crystalab/sdk/sched"
	"github.com/zintix-labs/crystalab/spec"
)

func post(body string) *http.Request {
	return httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
}

func TestDecodeStrict(t *testing.T) {
	var sw SwapRequest
	if err := Decode(post(`{"a":{"col":0,"row":0},"b":{"col":1,"row":0}}`), &sw); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sw.B.Col != 1 || sw.Valid() != nil {
		t.Fatalf("unexpected request: %+v", sw)
	}

	var bad SwapRequest
	err := Decode(post(`{"a":{"col":0,"row":0},"c":1}`), &bad)
	if err == nil || errs.Level(err) != errs.Warn {
		t.Fatalf("unknown field should be a warn, got %v", err)
	}
	if err := Decode(post(`{} {}`), &bad); err == nil {
		t.Fatalf("trailing data should fail")
	}

	var open OpenRequest
	if err := Decode(post(``), &open); err != nil {
		t.Fatalf("empty body should decode: %v", err)
	}
	if open.Valid() == nil {
		t.Fatalf("open without preset or id should be invalid")
	}
}

func TestSwapRequestAdjacency(t *testing.T) {
	r := SwapRequest{A: board.Pos{Col: 0, Row: 0}, B: board.Pos{Col: 1, Row: 1}}
	if r.Valid() == nil {
		t.Fatalf("diagonal swap should be invalid")
	}
}

func TestScrollAndRecolorParse(t *testing.T) {
	for axis, want := range map[string]spec.Axis{"row": spec.Horizontal, " Vertical ": spec.Vertical, "col": spec.Vertical} {
		r := ScrollRequest{Axis: axis}
		got, err := r.Parse()
		if err != nil || got != want {
			t.Fatalf("axis %q got %v err %v", axis, got, err)
		}
	}
	if _, err := (&ScrollRequest{Axis: "diagonal"}).Parse(); err == nil {
		t.Fatalf("unknown axis should fail")
	}

	rc := RecolorRequest{Changes: []ColorChange{{Col: 1, Row: 2, Kind: "R"}, {Col: 0, Row: 0, Kind: "purple"}}}
	changes, err := rc.Parse()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if changes[0].Kind != spec.Red || changes[0].Pos != (board.Pos{Col: 1, Row: 2}) || changes[1].Kind != spec.Purple {
		t.Fatalf("unexpected changes: %+v", changes)
	}
	if _, err := (&RecolorRequest{Changes: []ColorChange{{Kind: "."}}}).Parse(); err == nil {
		t.Fatalf("none kind should be rejected")
	}
	if _, err := (&RecolorRequest{}).Parse(); err == nil {
		t.Fatalf("empty changes should be rejected")
	}
}

func TestNewBoardView(t *testing.T) {
	q := sched.NewQueue()
	man := anim.NewManual()
	b, err := board.New(2, 2, board.NewGrid(2, 2, 100), board.Options{
		Presenter: man,
		Scheduler: q,
		Picker:    board.PickerFunc(func() spec.Kind { return spec.Blue }),
	})
	if err != nil {
		t.Fatalf("new board: %v", err)
	}
	if _, err := b.Place(board.Pos{Col: 0, Row: 0}, spec.Red); err != nil {
		t.Fatalf("place: %v", err)
	}
	if _, err := b.Place(board.Pos{Col: 1, Row: 0}, spec.Green); err != nil {
		t.Fatalf("place: %v", err)
	}
	if _, err := b.Place(board.Pos{Col: 0, Row: 1}, spec.Yellow); err != nil {
		t.Fatalf("place: %v", err)
	}
	if err := b.SwapCrystals(board.Pos{Col: 0, Row: 0}, board.Pos{Col: 1, Row: 0}); err != nil {
		t.Fatalf("swap: %v", err)
	}

	v := NewBoardView(b, true)
	if got := strings.Join(v.Layout, "/"); got != "##/Y." {
		t.Fatalf("layout got %q", got)
	}
	grid, err := corefmt.UnpackGrid(v.Grid)
	if err != nil || len(grid) != 4 || grid[2] != int16(spec.Yellow) {
		t.Fatalf("grid got %v err %v", grid, err)
	}
	if v.Busy != 2 || !v.Cells[0].Busy || v.Cells[0].Kind != "green" || v.Cells[3].Kind != "none" {
		t.Fatalf("unexpected view: %+v", v)
	}

	man.CompleteAll()
	q.Drain()
	v = NewBoardView(b, false)
	if got := strings.Join(v.Layout, "/"); got != "GR/Y." || v.Cells != nil || v.Busy != 0 {
		t.Fatalf("settled view got %+v", v)
	}
}
