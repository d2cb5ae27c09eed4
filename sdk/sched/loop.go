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

package sched

import (
	"context"
	"log/slog"
	"sync"

	"github.com/zintix-labs/crystalab/errs"
)

// Loop 以一條背景 goroutine 依序執行工作。
//
// Run / Shutdown 的簽章與 server/app.Component 相同，可直接掛進 App 生命週期；
// 單獨使用時呼叫 Start 即可。
type Loop struct {
	q      fifo
	wake   chan struct{}
	done   chan struct{}
	exited chan struct{}
	once   sync.Once
	start  sync.Once
	log    *slog.Logger
}

// NewLoop 建立尚未啟動的 Loop，log 為 nil 時不輸出。
func NewLoop(log *slog.Logger) *Loop {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Loop{
		wake:   make(chan struct{}, 1),
		done:   make(chan struct{}),
		exited: make(chan struct{}),
		log:    log,
	}
}

// Post 排入一筆工作。Loop 關閉後的工作會被忽略。
func (l *Loop) Post(fn func()) {
	if fn == nil {
		return
	}
	select {
	case <-l.done:
		return
	default:
	}
	l.q.push(fn)
	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Do 排入 fn 並等待其在 Loop 上執行完畢。
func (l *Loop) Do(ctx context.Context, fn func()) error {
	fin := make(chan struct{})
	l.Post(func() {
		defer close(fin)
		fn()
	})
	select {
	case <-fin:
		return nil
	case <-l.done:
		return errs.ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Start 在背景啟動 Loop，重複呼叫無作用。
func (l *Loop) Start() {
	l.start.Do(func() {
		go func() { _ = l.run() }()
	})
}

// Run 在目前的 goroutine 上執行 Loop，直到 Shutdown 被呼叫。
func (l *Loop) Run() error {
	var err error = errs.NewWarn("sched: loop already running")
	l.start.Do(func() { err = l.run() })
	return err
}

func (l *Loop) run() error {
	defer close(l.exited)
	for {
		for {
			fn, ok := l.q.pop()
			if !ok {
				break
			}
			l.exec(fn)
		}
		select {
		case <-l.wake:
		case <-l.done:
			return nil
		}
	}
}

func (l *Loop) exec(fn func()) {
	defer func() {
		if rec := recover(); rec != nil {
			l.log.Error("sched: task panic", slog.Any("panic", rec))
		}
	}()
	fn()
}

// Shutdown 停止 Loop 並等待目前的工作結束；尚未執行的工作會被捨棄。
func (l *Loop) Shutdown(ctx context.Context) error {
	l.once.Do(func() { close(l.done) })
	l.start.Do(func() { close(l.exited) })
	select {
	case <-l.exited:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Closed 回報 Loop 是否已關閉。
func (l *Loop) Closed() bool {
	select {
	case <-l.done:
		return true
	default:
		return false
	}
}
