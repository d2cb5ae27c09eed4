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

// Package crystalab 提供寶石盤面實驗室的「組裝入口（assembler）」與「運行入口（runtime entry）」。
//
// Lab 把下列地基組裝在一起，並提供建立 Table 與 Simulator 的入口：
//  1. Catalog：盤面目錄（Single Source of Truth / SSOT），定義有哪些盤面設定、各自對應的設定檔。
//  2. PRNGFactory：亂數工廠，同一個 seed 產生同一串寶石，盤面因此可以重現。
//  3. Logger：結構化日誌（log/slog），由呼叫端決定輸出格式。
//
// 設計重點：
//   - Lab 本身不綁定任何「檔案路徑」概念：設定檔來源一律以 fs.FS 的形式注入。
//   - Table 是對外操作的最小單位：一張盤面、一條專屬的排程迴圈與一個動畫呈現層。
//   - Simulator 用同樣的盤面核心（或等價的平面引擎）大量模擬隨機交換後的連鎖。
//
// 典型使用情境：
//   - 後端服務（HTTP）：由 Runtime 管理多張 Table，對外提供 swap / scroll / resolve。
//   - 模擬器（sim）：由 Lab 建立 Simulator，統計連鎖深度分布。
//   - 終端機（play）：單一 Table 搭配 tcell 畫面。
package crystalab

import (
	"io/fs"
	"log/slog"

	"github.com/zintix-labs/crystalab/catalog"
	"github.com/zintix-labs/crystalab/errs"
	"github.com/zintix-labs/crystalab/sdk/core"
	"github.com/zintix-labs/crystalab/spec"
)

// Configs 用來把一或多個設定檔來源（fs.FS）打包成 New() 需要的參數。
//
// 你可以用 go:embed 把 configs 直接編進 binary，也可以用 os.DirFS 在本機開發時讀取目錄。
func Configs(cfgs ...fs.FS) []fs.FS {
	return cfgs
}

// Lab 是「組裝器（assembler）」與「運行入口（runtime entry）」。
//
// 使用流程通常分成兩階段：
//   - 註冊階段：建立 catalog、登記設定檔（Register / RegisterAll）。
//   - 執行階段：Freeze 後依盤面 ID 建立 Table 或 Simulator。
//
// Catalog 的 ID 唯一性只保證在同一個 Lab instance 內。
//
//	lab, _ := crystalab.NewAuto(core.Default(), crystalab.Configs(cfgFS), nil)
//	tbl, _ := lab.NewTableWithSeed(1, 42, 1)
//	defer tbl.Close(ctx)
//	res, _ := tbl.Resolve(ctx)
type Lab struct {
	cat *catalog.Catalog
	cf  core.PRNGFactory
	log *slog.Logger
	sum []catalog.Summary
}

// New 建立一個 Lab instance。cf 不能為 nil，cfgs 至少一個；log 為 nil 時不輸出。
func New(cf core.PRNGFactory, cfgs []fs.FS, log *slog.Logger) (*Lab, error) {
	if cf == nil {
		return nil, errs.NewFatal("prng factory required")
	}
	if len(cfgs) == 0 {
		return nil, errs.NewFatal("configs required")
	}
	cata, err := catalog.New(cfgs...)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Lab{cat: cata, cf: cf, log: log}, nil
}

// NewAuto 登記所有設定檔並 Freeze，直接進入執行階段。
func NewAuto(cf core.PRNGFactory, cfgs []fs.FS, log *slog.Logger) (*Lab, error) {
	lab, err := New(cf, cfgs, log)
	if err != nil {
		return nil, err
	}
	if err := lab.RegisterAll(); err != nil {
		return nil, err
	}
	lab.Freeze()
	return lab, nil
}

func (l *Lab) Register(ents ...catalog.Entry) error {
	return l.cat.Register(ents...)
}

// RegisterAll 解析所有尚未登記的設定檔，以檔內宣告的 id / name 批次登記。
//
// Fail-fast 且具原子性：任何一個檔案失敗就整批不生效。
func (l *Lab) RegisterAll() error {
	if err := l.cat.Discover(); err != nil {
		return err
	}
	if len(l.cat.IDs()) == 0 {
		return errs.NewFatal("no config files found to register")
	}
	return nil
}

func (l *Lab) Freeze() {
	l.cat.Freeze()
}

func (l *Lab) Logger() *slog.Logger {
	return l.log
}

func (l *Lab) EntryByID(id spec.BID) (catalog.Entry, bool) {
	return l.cat.GetByID(id)
}

func (l *Lab) EntryByName(name string) (catalog.Entry, bool) {
	return l.cat.GetByName(name)
}

func (l *Lab) IDs() []spec.BID {
	return l.cat.IDs()
}

func (l *Lab) All() []catalog.Entry {
	return l.cat.All()
}

// Summaries 回傳所有盤面摘要；Freeze 之後才可呼叫，結果會被快取。
func (l *Lab) Summaries() ([]catalog.Summary, error) {
	if !l.cat.IsFrozen() {
		return nil, errs.NewFatal("catalog is not frozen yet")
	}
	if l.sum != nil {
		return l.sum, nil
	}
	sum, err := l.cat.Summaries()
	if err != nil {
		return nil, err
	}
	l.sum = sum
	return l.sum, nil
}

// Setting 讀取盤面設定；每次呼叫都回傳新的副本
func (l *Lab) Setting(id spec.BID) (*spec.BoardSetting, error) {
	if !l.cat.IsFrozen() {
		return nil, errs.NewFatal("catalog is not frozen yet")
	}
	return l.cat.SettingByID(id)
}

// SettingByName 依名稱（不分大小寫）讀取盤面設定
func (l *Lab) SettingByName(name string) (*spec.BoardSetting, error) {
	if !l.cat.IsFrozen() {
		return nil, errs.NewFatal("catalog is not frozen yet")
	}
	return l.cat.SettingByName(name)
}

// NewTable 依盤面 ID 建立 Table，seed 由 crypto/rand 產生。
//
// speed 為動畫播放倍率：1 為原速，<= 0 時動畫立即完成。
func (l *Lab) NewTable(id spec.BID, speed float64) (*Table, error) {
	return l.NewTableWithSeed(id, core.NewSeed(), speed)
}

// NewTableWithSeed 與 NewTable 相同，但由呼叫端指定 seed。
// 同一份設定 + 同一個 seed，初始盤面與之後補入的寶石序列都相同。
func (l *Lab) NewTableWithSeed(id spec.BID, seed int64, speed float64) (*Table, error) {
	bs, err := l.Setting(id)
	if err != nil {
		return nil, err
	}
	return newTable(bs, l.cf, seed, newTimedPresenter(speed), l.log)
}

// NewTableByYAML 以外部提供的設定建立 Table；設定的 id 與 name 必須已在 catalog 內且互相對應。
func (l *Lab) NewTableByYAML(raw []byte, seed int64, speed float64) (*Table, error) {
	bs, err := spec.GetBoardSettingByYAML(raw)
	if err != nil {
		return nil, err
	}
	if err := l.validCfg(bs); err != nil {
		return nil, err
	}
	return newTable(bs, l.cf, seed, newTimedPresenter(speed), l.log)
}

func (l *Lab) validCfg(bs *spec.BoardSetting) error {
	if !l.cat.IsFrozen() {
		return errs.NewFatal("catalog is not frozen yet")
	}
	ent, ok := l.cat.GetByID(bs.ID)
	if !ok {
		return errs.WrapWithExtra(errs.ErrNotFound, "board id not exist", bs.Name)
	}
	ent2, ok := l.cat.GetByName(bs.Name)
	if !ok {
		return errs.WrapWithExtra(errs.ErrNotFound, "board name not exist", bs.Name)
	}
	if ent.ID != ent2.ID {
		return errs.NewWarn("board id is not matched board name")
	}
	return nil
}

// NewSimulator 依盤面 ID 建立 Simulator，seed 由 crypto/rand 產生。
func (l *Lab) NewSimulator(id spec.BID) (*Simulator, error) {
	return l.NewSimulatorWithSeed(id, core.NewSeed())
}

func (l *Lab) NewSimulatorWithSeed(id spec.BID, seed int64) (*Simulator, error) {
	bs, err := l.Setting(id)
	if err != nil {
		return nil, err
	}
	return newSimulator(bs, l.cf, seed)
}

func (l *Lab) NewSimulatorByYAML(raw []byte, seed int64) (*Simulator, error) {
	bs, err := spec.GetBoardSettingByYAML(raw)
	if err != nil {
		return nil, err
	}
	if err := l.validCfg(bs); err != nil {
		return nil, err
	}
	return newSimulator(bs, l.cf, seed)
}

// BuildRuntime 凍結 catalog 並建立 Runtime。capacity 為同時存在的 Table 上限，speed 為動畫倍率。
func (l *Lab) BuildRuntime(capacity int, speed float64) (*Runtime, error) {
	l.Freeze()
	if len(l.cat.IDs()) == 0 {
		return nil, errs.NewFatal("no boards registered")
	}
	return newRuntime(l, capacity, speed), nil
}
