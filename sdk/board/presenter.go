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
	"time"

	"github.com/zintix-labs/crystalab/spec"
)

// Presenter 是盤面的呈現層（畫面、終端機、錄製器...）。
//
// Move / Hide 不可阻塞，動畫結束後必須呼叫 done；done 可由任何 goroutine 呼叫，
// 盤面會把完成通知排回自己的 Scheduler，重複呼叫只會生效一次。
type Presenter interface {
	// Spawn 在 at 建立 t 的外觀
	Spawn(t *Token, at Vec2)
	// Move 把 t 由 from 移到 to
	Move(t *Token, from, to Vec2, d time.Duration, done func())
	// Hide 讓 t 淡出
	Hide(t *Token, d time.Duration, done func())
	// Refresh 同步更新 t 的外觀（種類改變）
	Refresh(t *Token)
	// Destroy 移除 t 的外觀
	Destroy(t *Token)
}

// CellPresenter 是選配介面：Presenter 若實作，格子狀態改變時會被通知。
type CellPresenter interface {
	CellChanged(c *Cell)
}

// Picker 產出新寶石的種類
type Picker interface {
	Pick() spec.Kind
}

// PickerFunc 讓一般函式滿足 Picker
type PickerFunc func() spec.Kind

func (f PickerFunc) Pick() spec.Kind { return f() }

// nopPresenter 沒有畫面，動畫立即完成
type nopPresenter struct{}

func (nopPresenter) Spawn(*Token, Vec2) {}
func (nopPresenter) Move(_ *Token, _, _ Vec2, _ time.Duration, done func()) {
	done()
}
func (nopPresenter) Hide(_ *Token, _ time.Duration, done func()) { done() }
func (nopPresenter) Refresh(*Token) {}
func (nopPresenter) Destroy(*Token) {}
