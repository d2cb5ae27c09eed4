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

package api

import (
	"log/slog"
	"net/http"

	"github.com/zintix-labs/crystalab"
	v1 "github.com/zintix-labs/crystalab/server/api/v1"
	"github.com/zintix-labs/crystalab/server/netsvr"
	"github.com/zintix-labs/crystalab/server/netsvr/middleware"
	"github.com/zintix-labs/crystalab/server/svrcfg"
)

func RegisterRoutes(svr netsvr.NetSvr, sCfg *svrcfg.SvrCfg, rt *crystalab.Runtime) error {
	registerMiddleware(svr, sCfg.Log)   // 1. 註冊 middleware
	registerHealth(svr)                 // 2. 健康檢查
	return registerV1API(svr, sCfg, rt) // 3. 註冊 v1 api
}

func registerMiddleware(svr netsvr.NetSvr, log *slog.Logger) {
	svr.Use(middleware.RequestID)
	svr.Use(middleware.AccessLog(log))
	svr.Use(middleware.Recover)
	svr.Use(middleware.Compression)
}

func registerHealth(svr netsvr.NetSvr) {
	svr.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})
}

func registerV1API(svr netsvr.NetSvr, sCfg *svrcfg.SvrCfg, rt *crystalab.Runtime) error {
	h, err := v1.NewTableHandler(rt, sCfg.Log)
	if err != nil {
		return err
	}
	svr.Group("/v1", func(vOne netsvr.NetRouter) {
		vOne.Get("/presets", h.Presets)
		vOne.Get("/metrics", h.Metrics)

		vOne.Post("/tables", h.Open)
		vOne.Get("/tables/{id}", h.Get)
		vOne.Delete("/tables/{id}", h.Drop)
		vOne.Post("/tables/{id}/swap", h.Swap)
		vOne.Post("/tables/{id}/scroll", h.Scroll)
		vOne.Post("/tables/{id}/recolor", h.Recolor)
		vOne.Post("/tables/{id}/collapse", h.Collapse)
		vOne.Post("/tables/{id}/fill", h.Fill)
		vOne.Post("/tables/{id}/resolve", h.Resolve)
		vOne.Post("/tables/{id}/select", h.Select)
	})
	return nil
}
