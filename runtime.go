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

package crystalab

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/zintix-labs/crystalab/catalog"
	"github.com/zintix-labs/crystalab/dto"
	"github.com/zintix-labs/crystalab/errs"
	"github.com/zintix-labs/crystalab/sdk/core"
	"github.com/zintix-labs/crystalab/spec"
)

// Runtime 管理伺服器上所有開啟中的 Table。
//
// 每張 Table 各自有 Loop，Runtime 只負責登記、查找與生命週期；
// 容量達上限時 Open 回傳 ErrBusy，關閉後所有操作回傳 ErrClosed。
type Runtime struct {
	// build-time 來源（只讀引用）
	lab *Lab

	mu       sync.RWMutex
	tables   map[string]*Table
	seq      atomic.Uint64
	capacity int
	speed    float64

	opened  atomic.Int64
	dropped atomic.Int64

	// lifecycle
	done      chan struct{}
	closeOnce sync.Once
	closed    atomic.Bool
	reason    atomic.Value // string
}

func newRuntime(lab *Lab, capacity int, speed float64) *Runtime {
	rt := &Runtime{
		lab:      lab,
		tables:   make(map[string]*Table),
		capacity: max(1, capacity),
		speed:    speed,
		done:     make(chan struct{}),
	}
	rt.reason.Store("")
	return rt
}

func (rt *Runtime) check() error {
	select {
	case <-rt.done:
		rt.closed.Store(true)
		return errs.WrapWithExtra(errs.ErrClosed, "runtime closed", rt.ClosedReason())
	default:
		return nil
	}
}

// Presets 回傳可開啟的盤面摘要
func (rt *Runtime) Presets() ([]catalog.Summary, error) {
	return rt.lab.Summaries()
}

// Open 依 preset 名稱或 id 開一張新 Table，回傳其 table id。
func (rt *Runtime) Open(ctx context.Context, req *dto.OpenRequest) (string, *Table, error) {
	if err := rt.check(); err != nil {
		return "", nil, err
	}
	if err := ctx.Err(); err != nil {
		return "", nil, errs.Wrap(err, "open table")
	}
	if err := req.Valid(); err != nil {
		return "", nil, err
	}
	var (
		bs  *spec.BoardSetting
		err error
	)
	if name := strings.TrimSpace(req.Preset); name != "" {
		bs, err = rt.lab.SettingByName(name)
	} else {
		bs, err = rt.lab.Setting(req.ID)
	}
	if err != nil {
		return "", nil, err
	}
	seed := core.NewSeed()
	if req.Seed != nil {
		seed = *req.Seed
	}

	rt.mu.Lock()
	defer rt.mu.Unlock()
	if len(rt.tables) >= rt.capacity {
		return "", nil, errs.WrapWithExtra(errs.ErrBusy, "runtime at capacity", fmt.Sprint(rt.capacity))
	}
	t, err := newTable(bs, rt.lab.cf, seed, newTimedPresenter(rt.speed), rt.lab.log)
	if err != nil {
		return "", nil, err
	}
	id := fmt.Sprintf("t%d", rt.seq.Add(1))
	rt.tables[id] = t
	rt.opened.Add(1)
	rt.lab.log.Info("table open", slog.String("table", id), slog.String("board", bs.Name), slog.Int64("seed", seed))
	return id, t, nil
}

// Get 查找 Table
func (rt *Runtime) Get(id string) (*Table, error) {
	if err := rt.check(); err != nil {
		return nil, err
	}
	rt.mu.RLock()
	t, ok := rt.tables[id]
	rt.mu.RUnlock()
	if !ok {
		return nil, errs.WrapWithExtra(errs.ErrNotFound, "table not found", id)
	}
	return t, nil
}

// Drop 關閉並移除 Table
func (rt *Runtime) Drop(ctx context.Context, id string) error {
	if err := rt.check(); err != nil {
		return err
	}
	rt.mu.Lock()
	t, ok := rt.tables[id]
	delete(rt.tables, id)
	rt.mu.Unlock()
	if !ok {
		return errs.WrapWithExtra(errs.ErrNotFound, "table not found", id)
	}
	rt.dropped.Add(1)
	rt.lab.log.Info("table drop", slog.String("table", id))
	return t.Close(ctx)
}

// TableIDs 回傳所有 table id，依字典序排序
func (rt *Runtime) TableIDs() []string {
	rt.mu.RLock()
	ids := make([]string, 0, len(rt.tables))
	for id := range rt.tables {
		ids = append(ids, id)
	}
	rt.mu.RUnlock()
	slices.Sort(ids)
	return ids
}

func (rt *Runtime) Len() int {
	rt.mu.RLock()
	defer rt.mu.RUnlock()
	return len(rt.tables)
}

func (rt *Runtime) Capacity() int { return rt.capacity }

// Run 阻塞直到 Runtime 關閉，讓 Runtime 可以註冊成 app.Component。
func (rt *Runtime) Run() error {
	<-rt.done
	return nil
}

// Done 在 Runtime 關閉時被 close
func (rt *Runtime) Done() <-chan struct{} { return rt.done }

// Shutdown 關閉 Runtime 與所有 Table
func (rt *Runtime) Shutdown(ctx context.Context) error {
	return rt.closeWithReason(ctx, "shutdown")
}

// Close transitions the runtime into a closed state. It is safe to call multiple times.
func (rt *Runtime) Close(ctx context.Context) error {
	return rt.closeWithReason(ctx, "closed")
}

// closeWithReason closes the runtime, records the reason (written once) and closes every table.
func (rt *Runtime) closeWithReason(ctx context.Context, reason string) error {
	var err error
	rt.closeOnce.Do(func() {
		if reason == "" {
			reason = "closed"
		}
		rt.reason.Store(reason)
		rt.closed.Store(true)
		close(rt.done)

		rt.mu.Lock()
		tables := rt.tables
		rt.tables = make(map[string]*Table)
		rt.mu.Unlock()
		var all []error
		for _, t := range tables {
			all = append(all, t.Close(ctx))
		}
		err = errors.Join(all...)
	})
	return err
}

// Closed reports whether the runtime has been closed.
func (rt *Runtime) Closed() bool {
	return rt.closed.Load()
}

func (rt *Runtime) ClosedReason() string {
	if v := rt.reason.Load(); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// RuntimeMetrics 是「拉取式（pull）」觀測快照，不綁任何 metrics SDK。
type RuntimeMetrics struct {
	Tables      int    `json:"tables"`
	Capacity    int    `json:"capacity"`
	Opened      int64  `json:"opened"`
	Dropped     int64  `json:"dropped"`
	Closed      bool   `json:"closed"`
	CloseReason string `json:"close_reason"`
}

func (rt *Runtime) Metrics() RuntimeMetrics {
	return RuntimeMetrics{
		Tables:      rt.Len(),
		Capacity:    rt.capacity,
		Opened:      rt.opened.Load(),
		Dropped:     rt.dropped.Load(),
		Closed:      rt.Closed(),
		CloseReason: rt.ClosedReason(),
	}
}
