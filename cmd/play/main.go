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

// play 以 tcell 在終端機上操作一張盤面。
//
//	方向鍵 / hjkl  移動游標
//	space / enter  選取；已選取時選相鄰格即交換
//	< >            捲動游標所在的列
//	^ v            捲動游標所在的行
//	c f r          消除 / 補盤 / 連鎖
//	q esc          離開
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/gdamore/tcell/v2"
	"github.com/zintix-labs/crystalab/demo"
	"github.com/zintix-labs/crystalab/sdk/core"
	"github.com/zintix-labs/crystalab/spec"
)

// playExtra 是盤面設定 extra.play 底下的選項
type playExtra struct {
	AutoCascade bool `yaml:"auto_cascade"`
	TickMs      int  `yaml:"tick_ms"`
}

func main() {
	preset := flag.String("preset", "classic", "board preset name")
	seed := flag.Int64("seed", -1, "int64 seed, < 0 for random")
	speed := flag.Float64("speed", 1, "animation speed multiplier")
	flag.Parse()

	if err := run(*preset, *seed, *speed); err != nil {
		fmt.Fprintf(os.Stderr, "play: %v\n", err)
		os.Exit(1)
	}
}

func run(preset string, seed int64, speed float64) error {
	lab, err := demo.NewLab(nil)
	if err != nil {
		return err
	}
	bs, err := lab.SettingByName(preset)
	if err != nil {
		return err
	}
	extra := playExtra{AutoCascade: true, TickMs: 16}
	if _, err := spec.DecodeExtra(bs, "play", &extra); err != nil {
		return err
	}
	if seed < 0 {
		seed = core.NewSeed()
	}
	tbl, err := lab.NewTableWithSeed(bs.ID, seed, speed)
	if err != nil {
		return err
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	g := newGame(screen, tbl, extra)
	defer g.cleanup()
	g.run()
	return nil
}
