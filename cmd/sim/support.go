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

package main

import (
	"flag"
	"log"
	"os"

	"github.com/fatih/color"
	"github.com/zintix-labs/crystalab"
	"github.com/zintix-labs/crystalab/demo"
	"github.com/zintix-labs/crystalab/sdk/core"
	"github.com/zintix-labs/crystalab/stats"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var cfg *config = new(config)

type config struct {
	preset    string
	boards    int
	moves     int
	worker    int
	seed      int64
	engine    string
	strategy  string
	format    string
	pprofmode string
}

func bindVar() {
	flag.StringVar(&cfg.preset, "preset", "classic", "board preset name")
	flag.IntVar(&cfg.boards, "boards", 1, "number of boards (one seed each)")
	flag.IntVar(&cfg.moves, "moves", 100000, "swaps per board")
	flag.IntVar(&cfg.worker, "worker", 1, "number of workers")
	flag.Int64Var(&cfg.seed, "seed", -1, "int64 seed for random number generator")
	flag.StringVar(&cfg.engine, "engine", "flat", "engine: board|flat")
	flag.StringVar(&cfg.strategy, "strategy", "random", "move strategy: random|smart")
	flag.StringVar(&cfg.format, "o", "table", "output: table|json|yaml")
	flag.StringVar(&cfg.pprofmode, "p", "", "pprof: cpu|heap|allocs|block|mutex")

	flag.Parse()

	// given seed illegal -> random seed
	if cfg.seed < 0 {
		cfg.seed = core.NewSeed()
	}
}

func executeSimulator() {
	cfg.valid() // 基本檢查

	lab, err := demo.NewLab(nil)
	if err != nil {
		log.Fatal(err)
	}
	ent, ok := lab.EntryByName(cfg.preset)
	if !ok {
		log.Fatalf("preset not found: %s", cfg.preset)
	}
	s, err := lab.NewSimulatorWithSeed(ent.ID, cfg.seed)
	if err != nil {
		log.Fatal(err)
	}
	engine, err := crystalab.ParseEngine(cfg.engine)
	if err != nil {
		log.Fatal(err)
	}
	strategy, err := crystalab.ParseStrategy(cfg.strategy)
	if err != nil {
		log.Fatal(err)
	}
	s.SetEngine(engine)
	s.SetStrategy(strategy)
	// 至此確保可執行
	p := message.NewPrinter(language.English)
	table := cfg.format == "table"
	if table {
		banner := color.New(color.FgGreen, color.Bold).SprintFunc()
		p.Println(banner(p.Sprintf("[WORKERS:%d] [BOARD:%s] [ENGINE:%s] [STRATEGY:%s] [BOARDS:%d] [MOVES:%d] [SEED:%d]",
			cfg.worker, ent.Name, engine, strategy, cfg.boards, cfg.boards*cfg.moves, cfg.seed)))
	}

	st, spread, used, err := s.SimBoards(cfg.boards, cfg.moves, cfg.worker, table)
	if err != nil {
		log.Fatal(err)
	}
	switch cfg.format {
	case "json":
		err = st.WriteWith(os.Stdout, &stats.JsonCascadeReportRender{})
	case "yaml":
		err = st.WriteWith(os.Stdout, &stats.YAMLCascadeReportRender{})
	default:
		st.StdOut(used)
		if cfg.boards > 1 {
			spread.Out()
		}
	}
	if err != nil {
		log.Fatal(err)
	}
}

func (cfg *config) valid() {
	p := message.NewPrinter(language.English)

	// 工作協程檢查(併發數)
	if cfg.worker < 1 {
		log.Fatal("value err : workers must > 0")
	}
	if cfg.boards < 1 {
		log.Fatal("value err : boards must > 0")
	}
	// 盤面太多 resize
	if cfg.boards > 100000 {
		p.Printf("too many boards: %d resized to 100k boards\n", cfg.boards)
		cfg.boards = 100000
	}
	if cfg.moves < 1 {
		log.Fatal("value err : moves must > 0")
	}
	switch cfg.format {
	case "table", "json", "yaml":
	default:
		log.Fatalf("value err : unknown output %q", cfg.format)
	}
}
