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

// Package perf 包住一次執行並寫出 pprof 檔，給 cmd/sim 做效能分析或 PGO 的 profile 來源。
//
//	go run ./cmd/sim -engine board -p cpu
//	go tool pprof build/profiling/cpu.pprof
package perf

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"runtime/pprof"

	"github.com/zintix-labs/crystalab/errs"
)

// DefaultDir pprof 檔案寫入路徑
const DefaultDir = "build/profiling"

// Modes 列出支援的 profile 種類
var Modes = []string{"cpu", "heap", "allocs", "block", "mutex"}

// Profile 依 mode 執行 exe 並把 profile 寫到 dir/<mode>.pprof，回傳寫出的路徑。
//
// mode 為空字串時只執行 exe，回傳空路徑。
//   - cpu : 執行期間取樣
//   - heap : 執行後先 GC 再拍 in-use 快照
//   - allocs : 執行後寫出累積配置
//   - block / mutex : 執行期間開啟取樣，用來看 Table 排程迴圈與 worker 的等待
func Profile(dir, mode string, exe func()) (string, error) {
	if mode == "" {
		exe()
		return "", nil
	}
	switch mode {
	case "cpu", "heap", "allocs", "block", "mutex":
	default:
		return "", errs.Warnf("unknown pprof mode %q, want one of %v", mode, Modes)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errs.Wrap(err, "create pprof dir")
	}
	path := filepath.Join(dir, mode+".pprof")
	f, err := os.Create(path)
	if err != nil {
		return "", errs.Wrap(err, "create "+path)
	}
	defer f.Close()

	switch mode {
	case "cpu":
		if err := pprof.StartCPUProfile(f); err != nil {
			return "", errs.Wrap(err, "start cpu profile")
		}
		exe()
		pprof.StopCPUProfile()
		return path, nil
	case "block":
		runtime.SetBlockProfileRate(1)
		defer runtime.SetBlockProfileRate(0)
	case "mutex":
		prev := runtime.SetMutexProfileFraction(1)
		defer runtime.SetMutexProfileFraction(prev)
	}

	exe()
	if mode == "heap" {
		runtime.GC()
	}
	prof := pprof.Lookup(mode)
	if prof == nil {
		return "", errs.Fatalf("pprof profile %q not found", mode)
	}
	if err := prof.WriteTo(f, 0); err != nil {
		return "", errs.Wrap(err, fmt.Sprintf("write %s profile", mode))
	}
	return path, nil
}
