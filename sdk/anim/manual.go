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

package anim

import (
	"sync"
	"time"

	"github.com/zintix-labs/crystalab/sdk/board"
	"github.com/zintix-labs/crystalab/sdk/core"
)

// OpKind 是動畫種類
type OpKind uint8

const (
	OpMove OpKind = iota
	OpHide
)

// Op 是一筆尚未完成的動畫
type Op struct {
	Kind     OpKind
	Token    *board.Token
	From, To board.Vec2
	Duration time.Duration
	done     func()
}

// Manual 記錄所有動畫，由呼叫端決定何時、以何種順序完成。
type Manual struct {
	mu        sync.Mutex
	ops       []*Op
	spawned   int
	destroyed int
	refreshed int
	cells     int
}

func NewManual() *Manual {
	return &Manual{}
}

func (m *Manual) Spawn(*board.Token, board.Vec2) {
	m.mu.Lock()
	m.spawned++
	m.mu.Unlock()
}

func (m *Manual) Move(t *board.Token, from, to board.Vec2, d time.Duration, done func()) {
	m.push(&Op{Kind: OpMove, Token: t, From: from, To: to, Duration: d, done: done})
}

func (m *Manual) Hide(t *board.Token, d time.Duration, done func()) {
	m.push(&Op{Kind: OpHide, Token: t, Duration: d, done: done})
}

func (m *Manual) Refresh(*board.Token) {
	m.mu.Lock()
	m.refreshed++
	m.mu.Unlock()
}

func (m *Manual) Destroy(*board.Token) {
	m.mu.Lock()
	m.destroyed++
	m.mu.Unlock()
}

// CellChanged 實作 board.CellPresenter
func (m *Manual) CellChanged(*board.Cell) {
	m.mu.Lock()
	m.cells++
	m.mu.Unlock()
}

func (m *Manual) push(op *Op) {
	m.mu.Lock()
	m.ops = append(m.ops, op)
	m.mu.Unlock()
}

// Pending 回傳尚未完成的動畫
func (m *Manual) Pending() []Op {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Op, 0, len(m.ops))
	for _, op := range m.ops {
		out = append(out, *op)
	}
	return out
}

// Stats 回傳 Spawn / Destroy / Refresh / CellChanged 的呼叫次數
func (m *Manual) Stats() (spawned, destroyed, refreshed, cells int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.spawned, m.destroyed, m.refreshed, m.cells
}

// CompleteWhere 完成所有符合 keep 的動畫（依登記順序），回傳完成數。
func (m *Manual) CompleteWhere(keep func(Op) bool) int {
	m.mu.Lock()
	var hit []*Op
	rest := m.ops[:0]
	for _, op := range m.ops {
		if keep(*op) {
			hit = append(hit, op)
		} else {
			rest = append(rest, op)
		}
	}
	m.ops = rest
	m.mu.Unlock()
	for _, op := range hit {
		op.done()
	}
	return len(hit)
}

// CompleteAll 依登記順序完成所有動畫
func (m *Manual) CompleteAll() int {
	return m.CompleteWhere(func(Op) bool { return true })
}

// CompleteReverse 以登記的相反順序完成所有動畫
func (m *Manual) CompleteReverse() int {
	ops := m.take()
	for i := len(ops) - 1; i >= 0; i-- {
		ops[i].done()
	}
	return len(ops)
}

// CompleteShuffled 以 rng 打亂順序後完成所有動畫
func (m *Manual) CompleteShuffled(rng *core.Core) int {
	ops := m.take()
	rng.Shuffle(len(ops), func(i, j int) { ops[i], ops[j] = ops[j], ops[i] })
	for _, op := range ops {
		op.done()
	}
	return len(ops)
}

func (m *Manual) take() []*Op {
	m.mu.Lock()
	defer m.mu.Unlock()
	ops := m.ops
	m.ops = nil
	return ops
}
