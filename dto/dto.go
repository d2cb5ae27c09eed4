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
	"github.com/zintix-labs/crystalab/corefmt"
	"github.com/zintix-labs/crystalab/sdk/board"
	"github.com/zintix-labs/crystalab/spec"
)

// BoardView 是盤面對外輸出的快照。
//
// Grid 為 corefmt.PackGrid 的 base64url 字串，Layout 為同一份資料的版面字串
// （'.' 空格，'#' 淡出中或等待寶石抵達）。
type BoardView struct {
	Table     string         `json:"table,omitempty"`
	Name      string         `json:"name"`
	ID        spec.BID       `json:"id"`
	Rows      int            `json:"rows"`
	Cols      int            `json:"cols"`
	Grid      string         `json:"grid"`
	Layout    []string       `json:"layout"`
	Cells     []CellView     `json:"cells,omitempty"`
	Busy      int            `json:"busy"`
	Refilling bool           `json:"refilling"`
	Quiet     bool           `json:"quiet"`
	Counters  board.Counters `json:"counters"`
}

// CellView 是單一格子的狀態
type CellView struct {
	Col   int    `json:"col"`
	Row   int    `json:"row"`
	Kind  string `json:"kind"`
	State string `json:"state"`
	Token uint64 `json:"token,omitempty"`
	Busy  bool   `json:"busy,omitempty"`
}

// CascadeView 是一次 resolve 的結果與結束時的盤面
type CascadeView struct {
	Depth   int       `json:"depth"`
	Removed int       `json:"removed"`
	Spawned int       `json:"spawned"`
	Board   BoardView `json:"board"`
}

// ActionView 是 swap / scroll / recolor / collapse / fill 的回應
type ActionView struct {
	Action  string    `json:"action"`
	Applied int       `json:"applied"`
	Board   BoardView `json:"board"`
}

// SelectView 是 select 的回應
type SelectView struct {
	Selected  board.Pos   `json:"selected"`
	Available []board.Pos `json:"available"`
	Board     BoardView   `json:"board"`
}

// NewBoardView 必須在盤面所屬的 Scheduler 上呼叫。withCells 為 false 時省略逐格資料。
func NewBoardView(b *board.Board, withCells bool) BoardView {
	cells := b.Cells()
	grid := make([]int16, len(cells))
	var cv []CellView
	if withCells {
		cv = make([]CellView, len(cells))
	}
	for i, c := range cells {
		t := c.Crystal()
		busy := c.Reserved() || (t != nil && (t.Fading() || t.Moving()))
		switch {
		case busy:
			grid[i] = -1
		case t != nil:
			grid[i] = int16(t.Kind())
		}
		if !withCells {
			continue
		}
		v := CellView{Col: c.Pos().Col, Row: c.Pos().Row, Kind: spec.None.String(), State: c.State().String(), Busy: busy}
		if t == nil {
			t = c.Incoming()
		}
		if t != nil {
			v.Kind = t.Kind().String()
			v.Token = t.ID()
		}
		cv[i] = v
	}
	return BoardView{
		Rows:      b.Rows(),
		Cols:      b.Cols(),
		Grid:      corefmt.PackGrid(grid),
		Layout:    corefmt.EncodeLayout(grid, b.Cols()),
		Cells:     cv,
		Busy:      b.Busy(),
		Refilling: b.Refilling(),
		Quiet:     b.Quiet(),
		Counters:  b.Counters(),
	}
}
