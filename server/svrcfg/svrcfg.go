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

package svrcfg

import (
	"log/slog"

	"github.com/zintix-labs/crystalab"
	"github.com/zintix-labs/crystalab/errs"
	"github.com/zintix-labs/crystalab/server/logger"
)

const (
	DefaultAddr   = ":5808"
	DefaultTables = 64
	maxTables     = 4096
)

type SvrCfg struct {
	Log    *slog.Logger
	Addr   string         // 監聽位址，空字串時為 DefaultAddr
	Tables int            // 同時開啟的 Table 上限
	Speed  float64        // 動畫倍率，<= 0 時動畫立即完成
	Lab    *crystalab.Lab
}

func (sc *SvrCfg) Vaild() error {
	if sc.Log != nil {
		if ah, ok := sc.Log.Handler().(*logger.AsyncHandler); ok && !ah.Ready() {
			return errs.NewFatal("nil default log handler: async handler is nil")
		}
	} else {
		// 保持安靜、合法
		sc.Log, _ = logger.NewAsync(1024, logger.ModeDev)
	}
	if sc.Addr == "" {
		sc.Addr = DefaultAddr
	}

	// 1 <= sc.Tables <= maxTables
	// for 資源管理
	if sc.Tables <= 0 {
		sc.Tables = DefaultTables
	}
	sc.Tables = min(maxTables, sc.Tables)
	if sc.Lab == nil {
		return errs.NewFatal("crystalab is required")
	}
	return nil
}
