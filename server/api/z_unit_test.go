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

package api_test

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/zintix-labs/crystalab"
	"github.com/zintix-labs/crystalab/dto"
	"github.com/zintix-labs/crystalab/sdk/board"
	"github.com/zintix-labs/crystalab/sdk/core"
	"github.com/zintix-labs/crystalab/server/api"
	"github.com/zintix-labs/crystalab/server/netsvr"
	"github.com/zintix-labs/crystalab/server/svrcfg"
)

// 第一列與第二列只差一次交換就各成一條線
const tinyYAML = `
name: tiny
id: 7
rows: 3
cols: 3
kinds: [red, green, blue]
layout: ["RRG", "GGR", "BBR"]
`

func newTestServer(t *testing.T, tables int) (*httptest.Server, *crystalab.Runtime) {
	t.Helper()
	fsys := fstest.MapFS{"tiny.yaml": {Data: []byte(tinyYAML)}}
	log := slog.New(slog.DiscardHandler)
	lab, err := crystalab.NewAuto(core.Default(), crystalab.Configs(fsys), log)
	if err != nil {
		t.Fatalf("new lab: %v", err)
	}
	cfg := &svrcfg.SvrCfg{Log: log, Tables: tables, Speed: 0, Lab: lab}
	if err := cfg.Vaild(); err != nil {
		t.Fatalf("config: %v", err)
	}
	rt, err := lab.BuildRuntime(cfg.Tables, cfg.Speed)
	if err != nil {
		t.Fatalf("build runtime: %v", err)
	}
	svr := netsvr.NewChiServer(":0")
	if err := api.RegisterRoutes(svr, cfg, rt); err != nil {
		t.Fatalf("register routes: %v", err)
	}
	ts := httptest.NewServer(svr.Handler())
	t.Cleanup(func() {
		ts.Close()
		_ = rt.Close(t.Context())
	})
	return ts, rt
}

func call(t *testing.T, method, url, body string, out any) int {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)
	if out != nil && resp.StatusCode < 300 {
		if err := json.Unmarshal(raw, out); err != nil {
			t.Fatalf("%s %s: decode %q: %v", method, url, raw, err)
		}
	}
	return resp.StatusCode
}

func TestTableLifecycle(t *testing.T) {
	ts, rt := newTestServer(t, 4)

	var presets []map[string]any
	if code := call(t, http.MethodGet, ts.URL+"/v1/presets", "", &presets); code != http.StatusOK || len(presets) != 1 {
		t.Fatalf("presets got %d %v", code, presets)
	}

	var opened dto.BoardView
	if code := call(t, http.MethodPost, ts.URL+"/v1/tables", `{"preset":"tiny","seed":1}`, &opened); code != http.StatusCreated {
		t.Fatalf("open got %d", code)
	}
	if opened.Table == "" || opened.Rows != 3 || strings.Join(opened.Layout, "/") != "RRG/GGR/BBR" {
		t.Fatalf("unexpected opened view: %+v", opened)
	}
	base := ts.URL + "/v1/tables/" + opened.Table

	var swapped dto.ActionView
	code := call(t, http.MethodPost, base+"/swap", `{"a":{"col":2,"row":0},"b":{"col":2,"row":1}}`, &swapped)
	if code != http.StatusOK || swapped.Applied != 1 {
		t.Fatalf("swap got %d %+v", code, swapped)
	}
	if got := strings.Join(swapped.Board.Layout, "/"); got != "RRR/GGG/BBR" {
		t.Fatalf("layout after swap got %q", got)
	}

	var res dto.CascadeView
	if code := call(t, http.MethodPost, base+"/resolve", "", &res); code != http.StatusOK {
		t.Fatalf("resolve got %d", code)
	}
	if res.Depth < 1 || res.Removed < 6 || res.Removed != res.Spawned {
		t.Fatalf("unexpected cascade: %+v", res)
	}
	if !res.Board.Quiet || strings.Contains(strings.Join(res.Board.Layout, ""), ".") {
		t.Fatalf("board should be full and quiet after resolve: %+v", res.Board)
	}

	var got dto.BoardView
	if code := call(t, http.MethodGet, base+"?cells=1", "", &got); code != http.StatusOK || len(got.Cells) != 9 {
		t.Fatalf("get got %d cells=%d", code, len(got.Cells))
	}

	if code := call(t, http.MethodDelete, base, "", nil); code != http.StatusNoContent {
		t.Fatalf("drop got %d", code)
	}
	if code := call(t, http.MethodGet, base, "", nil); code != http.StatusNotFound {
		t.Fatalf("get after drop got %d", code)
	}
	if m := rt.Metrics(); m.Opened != 1 || m.Dropped != 1 || m.Tables != 0 {
		t.Fatalf("metrics got %+v", m)
	}
}

func TestRequestErrors(t *testing.T) {
	ts, _ := newTestServer(t, 1)

	var opened dto.BoardView
	if code := call(t, http.MethodPost, ts.URL+"/v1/tables", `{"id":7}`, &opened); code != http.StatusCreated {
		t.Fatalf("open got %d", code)
	}
	base := ts.URL + "/v1/tables/" + opened.Table

	cases := []struct {
		name   string
		method string
		url    string
		body   string
		want   int
	}{
		{"capacity", http.MethodPost, ts.URL + "/v1/tables", `{"preset":"tiny"}`, http.StatusConflict},
		{"unknown preset", http.MethodPost, ts.URL + "/v1/tables", `{"preset":"nope"}`, http.StatusNotFound},
		{"unknown field", http.MethodPost, base + "/swap", `{"a":{"col":0,"row":0},"z":1}`, http.StatusBadRequest},
		{"not adjacent", http.MethodPost, base + "/swap", `{"a":{"col":0,"row":0},"b":{"col":2,"row":2}}`, http.StatusBadRequest},
		{"swap out of range", http.MethodPost, base + "/swap", `{"a":{"col":2,"row":2},"b":{"col":3,"row":2}}`, http.StatusUnprocessableEntity},
		{"bad axis", http.MethodPost, base + "/scroll", `{"axis":"diag","index":0,"delta":1}`, http.StatusBadRequest},
		{"scroll out of range", http.MethodPost, base + "/scroll", `{"axis":"row","index":5,"delta":1}`, http.StatusUnprocessableEntity},
		{"bad kind", http.MethodPost, base + "/recolor", `{"changes":[{"col":0,"row":0,"kind":"pink"}]}`, http.StatusBadRequest},
		{"missing table", http.MethodPost, ts.URL + "/v1/tables/t999/fill", "", http.StatusNotFound},
	}
	for _, c := range cases {
		if code := call(t, c.method, c.url, c.body, nil); code != c.want {
			t.Fatalf("%s: got %d want %d", c.name, code, c.want)
		}
	}
}

func TestActions(t *testing.T) {
	ts, _ := newTestServer(t, 1)

	var opened dto.BoardView
	if code := call(t, http.MethodPost, ts.URL+"/v1/tables", `{"preset":"TINY","seed":3}`, &opened); code != http.StatusCreated {
		t.Fatalf("open got %d", code)
	}
	base := ts.URL + "/v1/tables/" + opened.Table

	var sel dto.SelectView
	if code := call(t, http.MethodPost, base+"/select", `{"pos":{"col":2,"row":0}}`, &sel); code != http.StatusOK {
		t.Fatalf("select got %d", code)
	}
	// 與左邊交換成一直行，與下方交換成一橫列
	if len(sel.Available) != 2 || sel.Available[0] != (board.Pos{Col: 1, Row: 0}) || sel.Available[1] != (board.Pos{Col: 2, Row: 1}) {
		t.Fatalf("select available got %v", sel.Available)
	}

	var act dto.ActionView
	if code := call(t, http.MethodPost, base+"/scroll", `{"axis":"row","index":0,"delta":1}`, &act); code != http.StatusOK {
		t.Fatalf("scroll got %d", code)
	}
	if got := act.Board.Layout[0]; got != "GRR" {
		t.Fatalf("row after scroll got %q", got)
	}

	if code := call(t, http.MethodPost, base+"/recolor", `{"changes":[{"col":0,"row":2,"kind":"red"},{"col":9,"row":9,"kind":"red"}]}`, &act); code != http.StatusOK {
		t.Fatalf("recolor got %d", code)
	}
	if act.Applied != 1 || act.Board.Layout[2] != "RBR" {
		t.Fatalf("recolor got applied=%d layout=%v", act.Applied, act.Board.Layout)
	}

	// 捲動後最右一行成為 RRR
	if code := call(t, http.MethodPost, base+"/collapse", "", &act); code != http.StatusOK || act.Applied != 3 {
		t.Fatalf("collapse got %d applied=%d", code, act.Applied)
	}
	if code := call(t, http.MethodPost, base+"/fill", "", &act); code != http.StatusOK {
		t.Fatalf("fill got %d", code)
	}

	var m map[string]any
	if code := call(t, http.MethodGet, ts.URL+"/v1/metrics", "", &m); code != http.StatusOK || m["tables"] != float64(1) {
		t.Fatalf("metrics got %d %v", code, m)
	}
}
