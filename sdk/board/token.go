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
	"sync/atomic"
	"time"

	"github.com/zintix-labs/crystalab/sdk/sched"
	"github.com/zintix-labs/crystalab/spec"
)

type phase uint8

const (
	phaseSettled phase = iota
	phaseMoving
	phaseFading
)

// Token 是盤面上的一顆寶石。
type Token struct {
	id    uint64
	kind  spec.Kind
	pos   Vec2
	phase phase
	env   *env
}

// env 是寶石共用的呈現層與排程器
type env struct {
	pres  Presenter
	sched sched.Scheduler
}

// once 把 fn 包成只生效一次、且一律排回 Scheduler 執行的完成通知
func (e *env) once(fn func()) func() {
	var fired atomic.Bool
	return func() {
		if fired.CompareAndSwap(false, true) {
			e.sched.Post(fn)
		}
	}
}

func (t *Token) ID() uint64      { return t.id }
func (t *Token) Kind() spec.Kind { return t.kind }

// Position 回傳最後一次動畫完成（或被格子接收）時的位置
func (t *Token) Position() Vec2 { return t.pos }

// Moving 回報寶石是否正在移動途中
func (t *Token) Moving() bool { return t.phase == phaseMoving }

// Fading 回報寶石是否已被消除、正在淡出
func (t *Token) Fading() bool { return t.phase == phaseFading }

// ChangeKind 就地改變種類並同步刷新外觀
func (t *Token) ChangeKind(k spec.Kind) {
	t.kind = k
	t.env.pres.Refresh(t)
}

// AnimateMove 把寶石移到 target，完成後在 Scheduler 上呼叫 onComplete。
func (t *Token) AnimateMove(target Vec2, d time.Duration, onComplete func()) {
	from := t.pos
	t.phase = phaseMoving
	t.env.pres.Move(t, from, target, d, t.env.once(func() {
		t.pos = target
		if t.phase == phaseMoving {
			t.phase = phaseSettled
		}
		if onComplete != nil {
			onComplete()
		}
	}))
}

// AnimateHide 讓寶石淡出，完成後在 Scheduler 上呼叫 onComplete。淡出後不會再回到盤面。
func (t *Token) AnimateHide(d time.Duration, onComplete func()) {
	t.phase = phaseFading
	t.env.pres.Hide(t, d, t.env.once(func() {
		if onComplete != nil {
			onComplete()
		}
	}))
}
