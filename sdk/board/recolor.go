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

import "github.com/zintix-labs/crystalab/spec"

// ColorChange 是一筆改色：把 Pos 上的寶石改成 Kind
type ColorChange struct {
	Pos  Pos       `json:"pos"`
	Kind spec.Kind `json:"kind"`
}

// ChangeCrystalsColor 依序套用改色，回傳實際套用的筆數。
//
// 越界、空格或無效種類的項目直接略過；同一格出現多次時以最後一筆為準。
// 改色不播動畫，也不觸發消除或補盤。
func (b *Board) ChangeCrystalsColor(changes []ColorChange) int {
	n := 0
	for _, ch := range changes {
		c, ok := b.Cell(ch.Pos)
		if !ok || c.token == nil || !ch.Kind.Valid() {
			continue
		}
		c.token.ChangeKind(ch.Kind)
		n++
	}
	return n
}
