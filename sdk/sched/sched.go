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

// Package sched 提供盤面所需的單一邏輯執行緒。
//
// 所有盤面狀態的讀寫都必須在同一個 Scheduler 上執行；
// 動畫完成通知可能從任何 goroutine 回來，一律以 Post 排回佇列，依 FIFO 執行。
package sched

import "sync"

// Scheduler 接收要在盤面執行緒上執行的工作。
// Post 必須可被任意 goroutine 呼叫，且永不丟棄工作。
type Scheduler interface {
	Post(fn func())
}

// fifo 是無上限、可多方寫入的工作佇列。
type fifo struct {
	mu    sync.Mutex
	items []func()
	head  int
}

func (q *fifo) push(fn func()) {
	q.mu.Lock()
	q.items = append(q.items, fn)
	q.mu.Unlock()
}

func (q *fifo) pop() (func(), bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.head >= len(q.items) {
		return nil, false
	}
	fn := q.items[q.head]
	q.items[q.head] = nil
	q.head++
	if q.head == len(q.items) {
		q.items = q.items[:0]
		q.head = 0
	}
	return fn, true
}

func (q *fifo) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items) - q.head
}

// Queue 是由呼叫端手動推進的 Scheduler，多用於模擬與測試。
// Step / Drain 應只由單一 goroutine 呼叫。
type Queue struct {
	q fifo
}

func NewQueue() *Queue {
	return &Queue{}
}

func (s *Queue) Post(fn func()) {
	if fn == nil {
		return
	}
	s.q.push(fn)
}

// Step 執行一筆工作，佇列為空時回傳 false。
func (s *Queue) Step() bool {
	fn, ok := s.q.pop()
	if !ok {
		return false
	}
	fn()
	return true
}

// Drain 持續執行直到佇列為空（包含執行期間新加入的工作），回傳執行筆數。
func (s *Queue) Drain() int {
	n := 0
	for s.Step() {
		n++
	}
	return n
}

// Len 回傳尚未執行的工作數。
func (s *Queue) Len() int {
	return s.q.len()
}
