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

package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/zintix-labs/crystalab/errs"
)

// LogMode 決定輸出格式與等級
type LogMode uint8

const (
	ModeDev     LogMode = iota // text、Debug、stderr
	ModeProd                   // JSON、Info、stdout
	ModeSilence                // 全部丟棄
)

func (m LogMode) String() string {
	switch m {
	case ModeProd:
		return "prod"
	case ModeSilence:
		return "silence"
	default:
		return "dev"
	}
}

// ParseMode 接受 dev / prod / silence，也接受舊的 ModeDev 寫法，不分大小寫
func ParseMode(s string) (LogMode, error) {
	switch strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), "mode") {
	case "", "dev":
		return ModeDev, nil
	case "prod":
		return ModeProd, nil
	case "silence":
		return ModeSilence, nil
	}
	return ModeDev, errs.Warnf("unknown log mode %q", s)
}

// NewDefaultLogger 依 LogMode 建立同步 logger
func NewDefaultLogger(mode LogMode) *slog.Logger {
	return slog.New(buildHandler(mode))
}

// NewDefaultAsyncLogger 依 LogMode 建立非同步 logger
func NewDefaultAsyncLogger(mode LogMode) *slog.Logger {
	return slog.New(NewAsyncHandler(buildHandler(mode), 8192))
}

// NewLogger 把自行組裝的 Handler 包成 *slog.Logger，再交給 Lab 與伺服器使用
func NewLogger(h slog.Handler) *slog.Logger {
	if h == nil {
		h = buildHandler(ModeDev)
	}
	return slog.New(h)
}

// NewAsync 依 LogMode 建立非同步 logger，並回傳底層 handler 供 Close 使用
func NewAsync(buf int, mode LogMode) (*slog.Logger, *AsyncHandler) {
	ah := NewAsyncHandler(buildHandler(mode), buf)
	return slog.New(ah), ah
}

// Drain 若 log 底層是 AsyncHandler，關閉並寫完佇列中的紀錄
func Drain(log *slog.Logger) {
	if log == nil {
		return
	}
	if ah, ok := log.Handler().(*AsyncHandler); ok {
		ah.Close()
	}
}

// AsyncHandler 把任何 slog.Handler 變成非阻塞：
// Handle 只把 Record 放進佇列，由背景 goroutine 交給 next 寫出。
// 佇列滿或已 Close 時直接丟棄並計數，不把 I/O 延遲帶回盤面的 Loop 或請求路徑。
//
// WithAttrs / WithGroup 產生的 handler 共用同一個佇列。
type AsyncHandler struct {
	next slog.Handler
	q    *queue
}

type queue struct {
	ch      chan entry
	closed  chan struct{}
	once    sync.Once
	wg      sync.WaitGroup
	dropped atomic.Uint64
	written atomic.Uint64
}

type entry struct {
	ctx context.Context
	rec slog.Record
	h   slog.Handler
}

// NewAsyncHandler buf <= 0 時使用 1024
func NewAsyncHandler(next slog.Handler, buf int) *AsyncHandler {
	if next == nil {
		next = buildHandler(ModeDev)
	}
	if buf <= 0 {
		buf = 1024
	}
	q := &queue{
		ch:     make(chan entry, buf),
		closed: make(chan struct{}),
	}
	q.wg.Add(1)
	go q.run()
	return &AsyncHandler{next: next, q: q}
}

func (q *queue) write(e entry) {
	_ = e.h.Handle(e.ctx, e.rec)
	q.written.Add(1)
}

// run 收到 closed 後把佇列寫完才離開
func (q *queue) run() {
	defer q.wg.Done()
	for {
		select {
		case e := <-q.ch:
			q.write(e)
		case <-q.closed:
			for {
				select {
				case e := <-q.ch:
					q.write(e)
				default:
					return
				}
			}
		}
	}
}

func (h *AsyncHandler) Ready() bool {
	return h != nil && h.q != nil
}

// Dropped 回傳因佇列滿或已關閉而丟棄的筆數
func (h *AsyncHandler) Dropped() uint64 {
	if !h.Ready() {
		return 0
	}
	return h.q.dropped.Load()
}

// Written 回傳已交給 next 的筆數
func (h *AsyncHandler) Written() uint64 {
	if !h.Ready() {
		return 0
	}
	return h.q.written.Load()
}

// Close 停止收件並等待佇列寫完；可重複呼叫
func (h *AsyncHandler) Close() {
	if !h.Ready() {
		return
	}
	h.q.once.Do(func() { close(h.q.closed) })
	h.q.wg.Wait()
}

func (h *AsyncHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *AsyncHandler) Handle(ctx context.Context, r slog.Record) error {
	if !h.Ready() {
		return nil
	}
	select {
	case <-h.q.closed:
		h.q.dropped.Add(1)
		return nil
	default:
	}
	// Record 的 attrs 可能被呼叫端重用，跨 goroutine 前先 Clone
	select {
	case h.q.ch <- entry{ctx: ctx, rec: r.Clone(), h: h.next}:
	default:
		h.q.dropped.Add(1)
	}
	return nil
}

func (h *AsyncHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &AsyncHandler{next: h.next.WithAttrs(attrs), q: h.q}
}

func (h *AsyncHandler) WithGroup(name string) slog.Handler {
	return &AsyncHandler{next: h.next.WithGroup(name), q: h.q}
}

func buildHandler(mode LogMode) slog.Handler {
	switch mode {
	case ModeProd:
		// JSON 給 Loki / Promtail 收
		return slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	case ModeSilence:
		return slog.NewTextHandler(io.Discard, nil)
	default:
		return slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})
	}
}
