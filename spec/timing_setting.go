package spec

import (
	"fmt"
	"time"

	"github.com/zintix-labs/crystalab/errs"
)

// 預設動畫參數
const (
	DefaultHideMs      = 300
	DefaultMoveMs      = 300
	DefaultSwapMs      = 300
	DefaultFallMs      = 500
	DefaultSpawnOffset = 100
	DefaultCellSize    = 100
)

// TimingSetting 描述盤面動畫時長與幾何尺寸。未填的欄位在 init 時補上預設值。
type TimingSetting struct {
	HideMs      int     `yaml:"hide_ms"       json:"hide_ms"`
	MoveMs      int     `yaml:"move_ms"       json:"move_ms"`
	SwapMs      int     `yaml:"swap_ms"       json:"swap_ms"`
	FallMs      int     `yaml:"fall_ms"       json:"fall_ms"`
	SpawnOffset float64 `yaml:"spawn_offset"  json:"spawn_offset"`
	CellSize    float64 `yaml:"cell_size"     json:"cell_size"`
}

// DefaultTiming 回傳預設的動畫參數。
func DefaultTiming() TimingSetting {
	ts := TimingSetting{}
	_ = ts.Normalize()
	return ts
}

// Normalize 補上預設值並檢查負值，可重複呼叫
func (ts *TimingSetting) Normalize() error {
	fill := func(p *int, def int, name string) error {
		if *p < 0 {
			return errs.NewFatal(fmt.Sprintf("timing: negative %s", name))
		}
		if *p == 0 {
			*p = def
		}
		return nil
	}
	if err := fill(&ts.HideMs, DefaultHideMs, "hide_ms"); err != nil {
		return err
	}
	if err := fill(&ts.MoveMs, DefaultMoveMs, "move_ms"); err != nil {
		return err
	}
	if err := fill(&ts.SwapMs, DefaultSwapMs, "swap_ms"); err != nil {
		return err
	}
	if err := fill(&ts.FallMs, DefaultFallMs, "fall_ms"); err != nil {
		return err
	}
	if ts.SpawnOffset < 0 || ts.CellSize < 0 {
		return errs.NewFatal("timing: negative geometry")
	}
	if ts.SpawnOffset == 0 {
		ts.SpawnOffset = DefaultSpawnOffset
	}
	if ts.CellSize == 0 {
		ts.CellSize = DefaultCellSize
	}
	return nil
}

func (ts TimingSetting) Hide() time.Duration { return ms(ts.HideMs) }
func (ts TimingSetting) Move() time.Duration { return ms(ts.MoveMs) }
func (ts TimingSetting) Swap() time.Duration { return ms(ts.SwapMs) }
func (ts TimingSetting) Fall() time.Duration { return ms(ts.FallMs) }

func ms(v int) time.Duration { return time.Duration(v) * time.Millisecond }
