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

// ops 是開發用的任務腳本：go run ./scripts <task>
//
//	test      清 cache 後跑全部測試，只顯示 ok / FAIL
//	detail    verbose 測試，略過沒有測試檔的套件
//	race      以 -race 跑盤面核心、排程與執行期
//	engines   以同一個 seed 各跑一次 board 與 flat 引擎，比對統計是否一致
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
)

var (
	green  = color.New(color.FgGreen).PrintlnFunc()
	red    = color.New(color.FgRed).PrintlnFunc()
	yellow = color.New(color.FgYellow).PrintlnFunc()
)

var tasks = map[string]func() error{
	"test":    runTest,
	"detail":  runTestDetail,
	"race":    runRace,
	"engines": runEngines,
}

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: go run ./scripts [test|detail|race|engines]")
		os.Exit(1)
	}
	task, ok := tasks[os.Args[1]]
	if !ok {
		yellow(fmt.Sprintf("Unknown task: %s", os.Args[1]))
		os.Exit(1)
	}
	if err := task(); err != nil {
		red(err.Error())
		os.Exit(1)
	}
}
