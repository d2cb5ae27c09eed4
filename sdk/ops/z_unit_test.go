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

package ops

import (
	"slices"
	"testing"
)

func seq(vals ...int16) func() int16 {
	i := 0
	return func() int16 {
		v := vals[i%len(vals)]
		i++
		return v
	}
}

func TestFindMatchesRow(t *testing.T) {
	cols, rows := 7, 3
	screen := []int16{
		1, 1, 1, 2, 3, 4, 5,
		2, 3, 4, 5, 2, 3, 4,
		3, 4, 5, 2, 3, 4, 5,
	}
	mark := make([]bool, cols*rows)
	hits := FindMatches(screen, cols, rows, mark, nil)
	if !slices.Equal(hits, []int16{0, 1, 2}) {
		t.Fatalf("unexpected hits: %v", hits)
	}
}

func TestFindMatchesCrossCountsOnce(t *testing.T) {
	cols, rows := 3, 3
	screen := []int16{
		2, 1, 3,
		1, 1, 1,
		4, 1, 5,
	}
	mark := make([]bool, cols*rows)
	hits := FindMatches(screen, cols, rows, mark, nil)
	if !slices.Equal(hits, []int16{1, 3, 4, 5, 7}) {
		t.Fatalf("unexpected hits: %v", hits)
	}
}

func TestFindMatchesEmptyAndBlockedBreakRuns(t *testing.T) {
	cols, rows := 5, 1
	mark := make([]bool, cols*rows)
	if hits := FindMatches([]int16{1, 1, 0, 1, 1}, cols, rows, mark, nil); len(hits) != 0 {
		t.Fatalf("empty cell should break run: %v", hits)
	}
	if hits := FindMatches([]int16{1, 1, Blocked, 1, 1}, cols, rows, mark, nil); len(hits) != 0 {
		t.Fatalf("blocked cell should break run: %v", hits)
	}
	if hits := FindMatches([]int16{0, 0, 0, 0, 0}, cols, rows, mark, nil); len(hits) != 0 {
		t.Fatalf("empty cells never match: %v", hits)
	}
	if hits := FindMatches([]int16{2, 2, 2, 2, 2}, cols, rows, mark, nil); len(hits) != 5 {
		t.Fatalf("long run should be fully marked: %v", hits)
	}
}

func TestHasMatchAgreesWithFindMatches(t *testing.T) {
	cols, rows := 4, 4
	screens := [][]int16{
		{1, 2, 1, 2, 2, 1, 2, 1, 1, 2, 1, 2, 2, 1, 2, 1},
		{1, 2, 1, 2, 1, 1, 2, 1, 1, 2, 1, 2, 2, 1, 2, 1},
		{3, 3, 3, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0},
	}
	mark := make([]bool, cols*rows)
	for i, s := range screens {
		want := len(FindMatches(s, cols, rows, mark, nil)) > 0
		if got := HasMatch(s, cols, rows); got != want {
			t.Fatalf("screen %d: HasMatch=%v FindMatches=%v", i, got, want)
		}
	}
}

func TestFindSwapMoves(t *testing.T) {
	cols, rows := 4, 2
	screen := []int16{
		1, 1, 2, 1,
		3, 4, 3, 4,
	}
	moves := FindSwapMoves(screen, cols, rows, nil)
	if !slices.Contains(moves, SwapMove{A: 2, B: 3}) {
		t.Fatalf("expected swap 2<->3 in %v", moves)
	}
	if !slices.Equal(screen, []int16{1, 1, 2, 1, 3, 4, 3, 4}) {
		t.Fatalf("screen must be restored: %v", screen)
	}
	for _, m := range moves {
		cp := slices.Clone(screen)
		cp[m.A], cp[m.B] = cp[m.B], cp[m.A]
		if !HasMatch(cp, cols, rows) {
			t.Fatalf("move %v does not create a match", m)
		}
	}
}

func TestClear(t *testing.T) {
	screen := []int16{1, 2, 3}
	Clear(screen, []int16{0, 2, 10, -1})
	if !slices.Equal(screen, []int16{0, 2, 0}) {
		t.Fatalf("unexpected clear result: %v", screen)
	}
}

func TestGravityKeepsColumnOrder(t *testing.T) {
	cols, rows := 1, 7
	screen := []int16{1, 0, 2, 0, 3, 0, 0}
	fillIdx := make([]int, cols)
	Gravity(screen, cols, rows, fillIdx)
	if !slices.Equal(screen, []int16{0, 0, 0, 0, 1, 2, 3}) {
		t.Fatalf("unexpected gravity result: %v", screen)
	}
	if fillIdx[0] != 3 {
		t.Fatalf("expected fill idx 3, got %d", fillIdx[0])
	}
	FillScreen(screen, fillIdx, cols, seq(4, 5, 6, 7))
	if !slices.Equal(screen, []int16{4, 5, 6, 7, 1, 2, 3}) {
		t.Fatalf("unexpected fill result: %v", screen)
	}
}

func TestGravityFullColumn(t *testing.T) {
	cols, rows := 2, 2
	screen := []int16{1, 2, 3, 4}
	fillIdx := make([]int, cols)
	Gravity(screen, cols, rows, fillIdx)
	if fillIdx[0] >= 0 || fillIdx[1] >= 0 {
		t.Fatalf("full columns should report negative fill idx: %v", fillIdx)
	}
}

func TestPlanGravityMatchesGravity(t *testing.T) {
	cols, rows := 3, 4
	screen := []int16{
		1, 0, 2,
		0, 3, 0,
		4, 0, 0,
		0, 5, 6,
	}
	want := slices.Clone(screen)
	Gravity(want, cols, rows, nil)
	got := slices.Clone(screen)
	moves := PlanGravity(got, cols, rows, nil)
	if !slices.Equal(got, want) {
		t.Fatalf("plan result %v, want %v", got, want)
	}
	replay := slices.Clone(screen)
	for _, m := range moves {
		if replay[m.From] <= 0 || replay[m.To] != 0 {
			t.Fatalf("invalid move %v on %v", m, replay)
		}
		if m.From%cols != m.To%cols || m.From >= m.To {
			t.Fatalf("move %v must go down in its column", m)
		}
		replay[m.To], replay[m.From] = replay[m.From], 0
	}
	if !slices.Equal(replay, want) {
		t.Fatalf("replay %v, want %v", replay, want)
	}
	if HasGap(got, cols, rows) {
		t.Fatalf("no gap expected after plan")
	}
}

func TestPlanGravityStopsAtBlocked(t *testing.T) {
	cols, rows := 1, 4
	screen := []int16{1, Blocked, 0, 0}
	moves := PlanGravity(screen, cols, rows, nil)
	if len(moves) != 0 {
		t.Fatalf("nothing may pass a blocked cell: %v", moves)
	}
	if !HasGap(screen, cols, rows) {
		t.Fatalf("gap below blocked cell expected")
	}
	screen = []int16{1, 0, Blocked, 0}
	moves = PlanGravity(screen, cols, rows, nil)
	if len(moves) != 1 || moves[0] != (Move{From: 0, To: 1}) {
		t.Fatalf("unexpected moves: %v", moves)
	}
}

func TestFillScreenByHole(t *testing.T) {
	cols, rows := 2, 2
	screen := []int16{1, 0, 0, 2}
	n := FillScreenByHole(screen, cols, rows, seq(5, 6))
	if n != 2 || !slices.Equal(screen, []int16{1, 6, 5, 2}) {
		t.Fatalf("unexpected fill: n=%d %v", n, screen)
	}
}

func TestFillOrderIsShared(t *testing.T) {
	cols, rows := 3, 3
	a := []int16{1, 0, 2, 0, 0, 3, 4, 0, 5}
	b := slices.Clone(a)
	fillIdx := make([]int, cols)
	Gravity(a, cols, rows, fillIdx)
	FillScreen(a, fillIdx, cols, seq(7, 8, 9, 10, 11))
	Gravity(b, cols, rows, nil)
	FillScreenByHole(b, cols, rows, seq(7, 8, 9, 10, 11))
	if !slices.Equal(a, b) {
		t.Fatalf("fill order differs: %v vs %v", a, b)
	}
}

func TestShiftAndRotate(t *testing.T) {
	if ShiftIndex(0, -1, 7) != 6 || ShiftIndex(6, 1, 7) != 0 || ShiftIndex(2, 15, 7) != 3 {
		t.Fatalf("ShiftIndex wrap broken")
	}
	cols, rows := 3, 2
	screen := []int16{1, 2, 3, 4, 5, 6}
	row := LineIndices(cols, rows, false, 0, nil)
	Rotate(screen, row, 1, nil)
	if !slices.Equal(screen, []int16{3, 1, 2, 4, 5, 6}) {
		t.Fatalf("unexpected row rotate: %v", screen)
	}
	Rotate(screen, row, -1, nil)
	if !slices.Equal(screen, []int16{1, 2, 3, 4, 5, 6}) {
		t.Fatalf("rotate inverse broken: %v", screen)
	}
	col := LineIndices(cols, rows, true, 2, nil)
	if !slices.Equal(col, []int{2, 5}) {
		t.Fatalf("unexpected column indices: %v", col)
	}
	Rotate(screen, col, 3, nil)
	if !slices.Equal(screen, []int16{1, 2, 6, 4, 5, 3}) {
		t.Fatalf("unexpected column rotate: %v", screen)
	}
}
