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

package v1

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/zintix-labs/crystalab"
	"github.com/zintix-labs/crystalab/dto"
	"github.com/zintix-labs/crystalab/errs"
	"github.com/zintix-labs/crystalab/sdk/board"
	"github.com/zintix-labs/crystalab/server/httperr"
	"github.com/zintix-labs/crystalab/server/netsvr"
)

const (
	opTimeout      = 5 * time.Second
	resolveTimeout = 9 * time.Second
)

// TableHandler 提供 /v1/tables 底下的所有操作
type TableHandler struct {
	rt  *crystalab.Runtime
	log *slog.Logger
}

func NewTableHandler(rt *crystalab.Runtime, log *slog.Logger) (*TableHandler, error) {
	if rt == nil {
		return nil, errs.NewFatal("runtime is required")
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &TableHandler{rt: rt, log: log}, nil
}

func (h *TableHandler) reply(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Warn("encode response failed", slog.Any("err", err))
	}
}

func (h *TableHandler) fail(w http.ResponseWriter, msg string, err error) {
	httperr.Log(h.log, msg, err)
	httperr.Errs(w, err)
}

// table 取出路由上的 Table，失敗時已寫回錯誤
func (h *TableHandler) table(w http.ResponseWriter, r *http.Request) (string, *crystalab.Table, bool) {
	id := netsvr.Param(r, "id")
	t, err := h.rt.Get(id)
	if err != nil {
		h.fail(w, "get table", err)
		return "", nil, false
	}
	return id, t, true
}

func (h *TableHandler) view(ctx context.Context, id string, t *crystalab.Table, withCells bool) (dto.BoardView, error) {
	v, err := t.View(ctx, withCells)
	v.Table = id
	return v, err
}

func withCells(r *http.Request) bool {
	switch r.URL.Query().Get("cells") {
	case "1", "true", "yes":
		return true
	}
	return false
}

// Presets GET /v1/presets
func (h *TableHandler) Presets(w http.ResponseWriter, r *http.Request) {
	sum, err := h.rt.Presets()
	if err != nil {
		h.fail(w, "presets", err)
		return
	}
	h.reply(w, http.StatusOK, sum)
}

// Metrics GET /v1/metrics
func (h *TableHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	h.reply(w, http.StatusOK, h.rt.Metrics())
}

// Open POST /v1/tables
func (h *TableHandler) Open(w http.ResponseWriter, r *http.Request) {
	req := new(dto.OpenRequest)
	if err := dto.Decode(r, req); err != nil {
		h.fail(w, "open table", err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), opTimeout)
	defer cancel()

	id, t, err := h.rt.Open(ctx, req)
	if err != nil {
		h.fail(w, "open table", err)
		return
	}
	v, err := h.view(ctx, id, t, withCells(r))
	if err != nil {
		h.fail(w, "open table", err)
		return
	}
	h.reply(w, http.StatusCreated, v)
}

// Get GET /v1/tables/{id}
func (h *TableHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, t, ok := h.table(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), opTimeout)
	defer cancel()
	v, err := h.view(ctx, id, t, withCells(r))
	if err != nil {
		h.fail(w, "view table", err)
		return
	}
	h.reply(w, http.StatusOK, v)
}

// Drop DELETE /v1/tables/{id}
func (h *TableHandler) Drop(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), opTimeout)
	defer cancel()
	if err := h.rt.Drop(ctx, netsvr.Param(r, "id")); err != nil {
		h.fail(w, "drop table", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// act 執行一個不等待動畫的操作，回傳操作後的盤面
func (h *TableHandler) act(w http.ResponseWriter, r *http.Request, action string, fn func(ctx context.Context, t *crystalab.Table) (int, error)) {
	id, t, ok := h.table(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), opTimeout)
	defer cancel()
	n, err := fn(ctx, t)
	if err != nil {
		h.fail(w, action, err)
		return
	}
	v, err := h.view(ctx, id, t, withCells(r))
	if err != nil {
		h.fail(w, action, err)
		return
	}
	h.reply(w, http.StatusOK, dto.ActionView{Action: action, Applied: n, Board: v})
}

// Swap POST /v1/tables/{id}/swap
func (h *TableHandler) Swap(w http.ResponseWriter, r *http.Request) {
	req := new(dto.SwapRequest)
	if err := dto.Decode(r, req); err != nil {
		h.fail(w, "swap", err)
		return
	}
	if err := req.Valid(); err != nil {
		h.fail(w, "swap", err)
		return
	}
	h.act(w, r, "swap", func(ctx context.Context, t *crystalab.Table) (int, error) {
		if err := t.Swap(ctx, req.A, req.B); err != nil {
			return 0, err
		}
		return 1, nil
	})
}

// Scroll POST /v1/tables/{id}/scroll
func (h *TableHandler) Scroll(w http.ResponseWriter, r *http.Request) {
	req := new(dto.ScrollRequest)
	if err := dto.Decode(r, req); err != nil {
		h.fail(w, "scroll", err)
		return
	}
	axis, err := req.Parse()
	if err != nil {
		h.fail(w, "scroll", err)
		return
	}
	h.act(w, r, "scroll", func(ctx context.Context, t *crystalab.Table) (int, error) {
		if err := t.Scroll(ctx, axis, req.Index, req.Delta); err != nil {
			return 0, err
		}
		return 1, nil
	})
}

// Recolor POST /v1/tables/{id}/recolor
func (h *TableHandler) Recolor(w http.ResponseWriter, r *http.Request) {
	req := new(dto.RecolorRequest)
	if err := dto.Decode(r, req); err != nil {
		h.fail(w, "recolor", err)
		return
	}
	changes, err := req.Parse()
	if err != nil {
		h.fail(w, "recolor", err)
		return
	}
	h.act(w, r, "recolor", func(ctx context.Context, t *crystalab.Table) (int, error) {
		return t.Recolor(ctx, changes)
	})
}

// Collapse POST /v1/tables/{id}/collapse
func (h *TableHandler) Collapse(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, "collapse", func(ctx context.Context, t *crystalab.Table) (int, error) {
		return t.Collapse(ctx)
	})
}

// Fill POST /v1/tables/{id}/fill
func (h *TableHandler) Fill(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, "fill", func(ctx context.Context, t *crystalab.Table) (int, error) {
		return 0, t.Fill(ctx)
	})
}

// Resolve POST /v1/tables/{id}/resolve
//
// 等待整個連鎖結束才回應，耗時取決於動畫倍率。
func (h *TableHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	id, t, ok := h.table(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), resolveTimeout)
	defer cancel()
	res, err := t.Resolve(ctx)
	if err != nil {
		h.fail(w, "resolve", err)
		return
	}
	v, err := h.view(ctx, id, t, withCells(r))
	if err != nil {
		h.fail(w, "resolve", err)
		return
	}
	h.reply(w, http.StatusOK, dto.CascadeView{Depth: res.Depth, Removed: res.Removed, Spawned: res.Spawned, Board: v})
}

// Select POST /v1/tables/{id}/select
func (h *TableHandler) Select(w http.ResponseWriter, r *http.Request) {
	req := new(dto.SelectRequest)
	if err := dto.Decode(r, req); err != nil {
		h.fail(w, "select", err)
		return
	}
	id, t, ok := h.table(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), opTimeout)
	defer cancel()
	avail, err := t.Select(ctx, req.Pos)
	if err != nil {
		h.fail(w, "select", err)
		return
	}
	v, err := h.view(ctx, id, t, withCells(r))
	if err != nil {
		h.fail(w, "select", err)
		return
	}
	if avail == nil {
		avail = []board.Pos{}
	}
	h.reply(w, http.StatusOK, dto.SelectView{Selected: req.Pos, Available: avail, Board: v})
}
