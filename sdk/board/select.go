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
	"github.com/zintix-labs/crystalab/errs"
	"github.com/zintix-labs/crystalab/sdk/ops"
)

// Select 把 p 設為 Selected，並把與 p 交換後能產生連線的相鄰格設為 AvailableForMove，
// 其餘格子回到 Inactive。回傳可交換的格子。
func (b *Board) Select(p Pos) ([]Pos, error) {
	c, ok := b.Cell(p)
	if !ok {
		return nil, errs.WrapWithExtra(errs.ErrOutOfRange, "board: select", p.String())
	}
	b.ClearSelection()
	c.SetState(Selected)

	screen := b.Snapshot(b.screen)
	me := b.index(p)
	var out []Pos
	for _, m := range ops.FindSwapMoves(screen, b.cols, b.rows, nil) {
		other := -1
		switch me {
		case m.A:
			other = m.B
		case m.B:
			other = m.A
		}
		if other < 0 {
			continue
		}
		n := b.cells[other]
		n.SetState(AvailableForMove)
		out = append(out, n.pos)
	}
	return out, nil
}

// ClearSelection 把所有格子設回 Inactive
func (b *Board) ClearSelection() {
	for _, c := range b.cells {
		c.SetState(Inactive)
	}
}

// Moves 列出所有能產生連線的相鄰交換
func (b *Board) Moves() [][2]Pos {
	screen := b.Snapshot(b.screen)
	moves := ops.FindSwapMoves(screen, b.cols, b.rows, nil)
	out := make([][2]Pos, 0, len(moves))
	for _, m := range moves {
		out = append(out, [2]Pos{b.cells[m.A].pos, b.cells[m.B].pos})
	}
	return out
}
