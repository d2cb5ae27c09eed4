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

package server

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/zintix-labs/crystalab/errs"
	"github.com/zintix-labs/crystalab/server/api"
	"github.com/zintix-labs/crystalab/server/app"
	"github.com/zintix-labs/crystalab/server/logger"
	"github.com/zintix-labs/crystalab/server/netsvr"
	"github.com/zintix-labs/crystalab/server/svrcfg"
)

func Run(sCfg *svrcfg.SvrCfg) {
	if err := sCfg.Vaild(); err != nil {
		// 防止外層傳入的logger不可用
		fmt.Fprintln(os.Stderr, err)
		return
	}
	RunWithSvr(sCfg, netsvr.NewChiServer(sCfg.Addr))
}

func RunWithSvr(sCfg *svrcfg.SvrCfg, svr netsvr.NetSvr) {
	if err := sCfg.Vaild(); err != nil {
		// 防止外層傳入的logger不可用
		fmt.Fprintln(os.Stderr, err)
		return
	}
	if svr == nil {
		sCfg.Log.Error(errs.NewFatal("svr is required").Error())
		return
	}
	if s, ok := svr.(*netsvr.ChiAdapter); ok && !s.Ready() {
		sCfg.Log.Error(errs.NewFatal("default server is not ready").Error())
		return
	}

	// 盤面管理
	rt, err := sCfg.Lab.BuildRuntime(sCfg.Tables, sCfg.Speed)
	if err != nil {
		sCfg.Log.Error("build runtime failed", slog.Any("err", err))
		return
	}

	// 註冊 Api
	if err := api.RegisterRoutes(svr, sCfg, rt); err != nil {
		sCfg.Log.Error("register routes failed", slog.Any("err", err))
		return
	}

	// 運行：http 先關，再關閉所有 Table
	app := app.NewWith(svr, rt)
	if s, ok := svr.(*netsvr.ChiAdapter); ok {
		sCfg.Log.Info("[crystalab] listening on http://localhost" + s.Address())
	} else {
		sCfg.Log.Info("[crystalab] listening")
	}
	if err := app.Run(); err != nil {
		sCfg.Log.Error("app stopped:", slog.Any("err", err))
	}
	logger.Drain(sCfg.Log)
}
