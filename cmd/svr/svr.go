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
	"fmt"
	"os"

	"github.com/zintix-labs/crystalab/demo"
	"github.com/zintix-labs/crystalab/server"
	"github.com/zintix-labs/crystalab/server/logger"
	"github.com/zintix-labs/crystalab/server/svrcfg"
)

func main() {
	cfg, err := loadConfigFromFlags()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	server.Run(cfg)
}

type config struct {
	LogMode string
	Addr    string
	Tables  int
	Speed   float64
}

func loadConfigFromFlags() (*svrcfg.SvrCfg, error) {
	cfg := new(config)
	flag.StringVar(&cfg.LogMode, "log-mode", "dev", "log mode: dev|prod|silence")
	flag.StringVar(&cfg.Addr, "addr", svrcfg.DefaultAddr, "listen address")
	flag.IntVar(&cfg.Tables, "tables", svrcfg.DefaultTables, "max number of open tables")
	flag.Float64Var(&cfg.Speed, "speed", 1, "animation speed multiplier, <= 0 finishes animations instantly")

	flag.Parse()

	mode, err := logger.ParseMode(cfg.LogMode)
	if err != nil {
		return nil, err
	}
	log, _ := logger.NewAsync(4096, mode)

	lab, err := demo.NewLab(log)
	if err != nil {
		return nil, err
	}
	sCfg := &svrcfg.SvrCfg{
		Log:    log,
		Addr:   cfg.Addr,
		Tables: cfg.Tables,
		Speed:  cfg.Speed,
		Lab:    lab,
	}
	return sCfg, nil
}
