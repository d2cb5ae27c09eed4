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
	"fmt"

	"github.com/zintix-labs/crystalab/errs"
	"github.com/zintix-labs/crystalab/sdk/ops"
	"github.com/zintix-labs/crystalab/spec"
)

// SwapCrystals 交換兩格的寶石，不會觸發消除。
//
// 任一格沒有穩定的寶石（空格、淡出中、等待抵達）時不做任何事；座標越界回傳 ErrOutOfRange。
func (b *Board) SwapCrystals(a, c Pos) error {
	ca, ok := b.Cell(a)
	if !ok {
		return errs.WrapWithExtra(errs.ErrOutOfRange, "board: swap", a.String())
	}
	cc, ok := b.Cell(c)
	if !ok {
		return errs.WrapWithExtra(errs.ErrOutOfRange, "board: swap", c.String())
	}
	if a == c || !ca.settled() || !cc.settled() {
		return nil
	}
	ta, tc := ca.ReleaseCrystal(), cc.ReleaseCrystal()
	ca.pending, cc.pending = tc, ta
	b.dispatch(ta, cc, b.timing.Swap())
	b.dispatch(tc, ca, b.timing.Swap())
	return nil
}

// ScrollRow 把一整列 (Horizontal) 或一整行 (Vertical) 循環位移 delta 格。
//
// 原本在第 i 格的寶石移到第 (i+delta) mod n 格；空格跟著位移。
// 該線上有淡出中或等待抵達的格子時回傳 ErrBusy，index 越界回傳 ErrOutOfRange。
func (b *Board) ScrollRow(axis spec.Axis, index int, delta int) error {
	vertical := axis == spec.Vertical
	limit := b.rows
	if vertical {
		limit = b.cols
	}
	if index < 0 || index >= limit {
		return errs.WrapWithExtra(errs.ErrOutOfRange, "board: scroll", fmt.Sprintf("%s index=%d", axis, index))
	}
	b.line = ops.LineIndices(b.cols, b.rows, vertical, index, b.line)
	n := len(b.line)
	if ops.ShiftIndex(0, delta, n) == 0 {
		return nil
	}
	for _, idx := range b.line {
		c := b.cells[idx]
		if c.pending != nil || (c.token != nil && c.token.phase != phaseSettled) {
			return errs.WrapWithExtra(errs.ErrBusy, "board: scroll", c.pos.String())
		}
	}
	tokens := make([]*Token, n)
	for i, idx := range b.line {
		tokens[i] = b.cells[idx].ReleaseCrystal()
	}
	for i, t := range tokens {
		if t == nil {
			continue
		}
		to := b.cells[b.line[ops.ShiftIndex(i, delta, n)]]
		to.pending = t
		b.dispatch(t, to, b.timing.Move())
	}
	return nil
}
