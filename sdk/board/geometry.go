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

import "fmt"

// Pos 是格子座標，Row 0 在最上方
type Pos struct {
	Col int `json:"col"`
	Row int `json:"row"`
}

func (p Pos) String() string { return fmt.Sprintf("(%d,%d)", p.Col, p.Row) }

// Add 回傳 p 位移 (dc, dr) 後的座標
func (p Pos) Add(dc, dr int) Pos { return Pos{Col: p.Col + dc, Row: p.Row + dr} }

// Adjacent 回報兩格是否上下或左右相鄰
func (p Pos) Adjacent(q Pos) bool {
	dc, dr := p.Col-q.Col, p.Row-q.Row
	return dc*dc+dr*dr == 1
}

// Vec2 是呈現層的座標，Y 軸向下
type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Lerp 回傳 a 到 b 之間比例 t 的位置
func Lerp(a, b Vec2, t float64) Vec2 {
	if t <= 0 {
		return a
	}
	if t >= 1 {
		return b
	}
	return Vec2{X: a.X + (b.X-a.X)*t, Y: a.Y + (b.Y-a.Y)*t}
}

// NewGrid 建立 rows*cols 個格子，依 row-major 連續編號，格子中心間距為 cellSize。
func NewGrid(rows, cols int, cellSize float64) []*Cell {
	cells := make([]*Cell, 0, rows*cols)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			cells = append(cells, NewCell(Pos{Col: c, Row: r}, Vec2{X: float64(c) * cellSize, Y: float64(r) * cellSize}))
		}
	}
	return cells
}
