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

package dto

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/zintix-labs/crystalab/errs"
	"github.com/zintix-labs/crystalab/sdk/board"
	"github.com/zintix-labs/crystalab/spec"
)

// maxBody 是請求 body 的上限（1MiB）
const maxBody = 1 << 20

// OpenRequest 開一張新盤面。Preset 與 ID 擇一；Seed 省略時由伺服器產生。
type OpenRequest struct {
	Preset string   `json:"preset,omitempty"`
	ID     spec.BID `json:"id,omitempty"`
	Seed   *int64   `json:"seed,omitempty"`
}

type SwapRequest struct {
	A board.Pos `json:"a"`
	B board.Pos `json:"b"`
}

// ScrollRequest 的 Axis 為 "horizontal"/"row" 或 "vertical"/"col"
type ScrollRequest struct {
	Axis  string `json:"axis"`
	Index int    `json:"index"`
	Delta int    `json:"delta"`
}

type RecolorRequest struct {
	Changes []ColorChange `json:"changes"`
}

// ColorChange 的 Kind 可為種類名稱（"red"）或版面字元（"R"）
type ColorChange struct {
	Col  int    `json:"col"`
	Row  int    `json:"row"`
	Kind string `json:"kind"`
}

type SelectRequest struct {
	Pos board.Pos `json:"pos"`
}

// Decode 以嚴格模式把 JSON body 解到 dst：未知欄位、多餘內容與過大 body 都視為請求錯誤。
// 空 body 視為空物件。
func Decode[T any](r *http.Request, dst *T) error {
	if r == nil || r.Body == nil {
		return nil
	}
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return errs.NewWarn(fmt.Sprintf("invalid json: %v", err))
	}
	if dec.More() {
		return errs.NewWarn("invalid json: trailing data")
	}
	return nil
}

func (r *OpenRequest) Valid() error {
	if strings.TrimSpace(r.Preset) == "" && r.ID == 0 {
		return errs.NewWarn("preset or id required")
	}
	if r.Seed != nil && *r.Seed < 0 {
		return errs.NewWarn("seed must not be negative")
	}
	return nil
}

func (r *SwapRequest) Valid() error {
	if !r.A.Adjacent(r.B) {
		return errs.NewWarn(fmt.Sprintf("swap cells %v and %v are not adjacent", r.A, r.B))
	}
	return nil
}

// Parse 回傳捲動軸向
func (r *ScrollRequest) Parse() (spec.Axis, error) {
	ax, ok := spec.ParseAxis(strings.TrimSpace(r.Axis))
	if !ok {
		return 0, errs.NewWarn(fmt.Sprintf("unknown axis %q", r.Axis))
	}
	return ax, nil
}

// Parse 轉成盤面的改色清單；未知的種類直接回錯，越界與空格交給盤面略過
func (r *RecolorRequest) Parse() ([]board.ColorChange, error) {
	if len(r.Changes) == 0 {
		return nil, errs.NewWarn("changes required")
	}
	out := make([]board.ColorChange, 0, len(r.Changes))
	for i, c := range r.Changes {
		k, ok := spec.ParseKind(c.Kind)
		if !ok || !k.Valid() {
			return nil, errs.NewWarn(fmt.Sprintf("changes[%d]: unknown kind %q", i, c.Kind))
		}
		out = append(out, board.ColorChange{Pos: board.Pos{Col: c.Col, Row: c.Row}, Kind: k})
	}
	return out, nil
}
