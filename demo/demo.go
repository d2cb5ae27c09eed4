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

package demo

import (
	"log/slog"

	"github.com/zintix-labs/crystalab"
	"github.com/zintix-labs/crystalab/catalog"
	"github.com/zintix-labs/crystalab/demo/demo_configs"
	"github.com/zintix-labs/crystalab/errs"
	"github.com/zintix-labs/crystalab/sdk/core"
	"github.com/zintix-labs/crystalab/server/logger"
	"github.com/zintix-labs/crystalab/server/svrcfg"
)

func New() (*catalog.Catalog, error) {
	return catalog.New(demo_configs.FS)
}

// NewServerConfig 以內建盤面建立伺服器設定
func NewServerConfig() (*svrcfg.SvrCfg, error) {
	log := logger.NewDefaultAsyncLogger(logger.ModeDev)
	lab, err := NewLab(log)
	if err != nil {
		return nil, errs.NewFatal("new crystalab failed:" + err.Error())
	}
	scfg := &svrcfg.SvrCfg{
		Log:      log,
		Tables:   svrcfg.DefaultTables,
		Speed:    1,
		Lab:      lab,
	}
	return scfg, nil
}

// NewLab 以內建盤面建立 Lab；log 為 nil 時不輸出
func NewLab(log *slog.Logger) (*crystalab.Lab, error) {
	return crystalab.NewAuto(
		core.Default(),
		crystalab.Configs(demo_configs.FS),
		log,
	)
}
