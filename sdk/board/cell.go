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

// CellState 是格子的顯示狀態
type CellState uint8

const (
	Inactive CellState = iota
	Selected
	AvailableForMove
)

var cellStateNames = [...]string{"inactive", "selected", "available"}

func (s CellState) String() string {
	if int(s) < len(cellStateNames) {
		return cellStateNames[s]
	}
	return "unknown"
}

// Cell 是盤面上的一格，最多持有一顆寶石。
type Cell struct {
	pos     Pos
	world   Vec2
	state   CellState
	token   *Token
	pending *Token // 已出發、尚未抵達的寶石
	notify  func(*Cell)
}

// NewCell 建立座標固定的空格
func NewCell(pos Pos, world Vec2) *Cell {
	return &Cell{pos: pos, world: world}
}

func (c *Cell) Pos() Pos { return c.pos }
func (c *Cell) World() Vec2 { return c.world }
func (c *Cell) State() CellState { return c.state }
func (c *Cell) Crystal() *Token { return c.token }
func (c *Cell) Empty() bool { return c.token == nil }
func (c *Cell) Reserved() bool { return c.pending != nil }
func (c *Cell) Incoming() *Token { return c.pending }

// settled 回報格子是否持有一顆可參與連線、可移動的寶石
func (c *Cell) settled() bool {
	return c.token != nil && c.pending == nil && c.token.phase == phaseSettled
}

// AcceptCrystal 讓格子持有 t，並把 t 對齊到格子位置
func (c *Cell) AcceptCrystal(t *Token) {
	if t == nil {
		return
	}
	c.token = t
	if c.pending == t {
		c.pending = nil
	}
	t.pos = c.world
}

// ReleaseCrystal 放開並回傳目前持有的寶石
func (c *Cell) ReleaseCrystal() *Token {
	t := c.token
	c.token = nil
	return t
}

// SetState 設定顯示狀態
func (c *Cell) SetState(s CellState) {
	if c.state == s {
		return
	}
	c.state = s
	if c.notify != nil {
		c.notify(c)
	}
}
