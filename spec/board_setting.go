package spec

import (
	"fmt"

	"github.com/zintix-labs/crystalab/errs"
)

// BID 是盤面設定的編號
type BID uint

const (
	DefaultRows = 7
	DefaultCols = 7
)

// BoardSetting 是建立一張盤面所需的完整設定。
type BoardSetting struct {
	Name    string         `yaml:"name"     json:"name"`
	ID      BID            `yaml:"id"       json:"id"`
	Rows    int            `yaml:"rows"     json:"rows"`
	Cols    int            `yaml:"cols"     json:"cols"`
	Kinds   []string       `yaml:"kinds"    json:"kinds"`
	Weights []int          `yaml:"weights"  json:"weights"`
	Layout  []string       `yaml:"layout"   json:"layout"`
	Timing  TimingSetting  `yaml:"timing"   json:"timing"`
	Extra   map[string]any `yaml:"extra"    json:"extra"`

	// KindsUsed 為 Kinds 解析後的結果，空設定時為全部種類
	KindsUsed []Kind `yaml:"-" json:"-"`
}

// Size 回傳格子總數。
func (bs *BoardSetting) Size() int { return bs.Rows * bs.Cols }

// init 補預設值並檢查
func (bs *BoardSetting) init() error {
	if bs.Rows == 0 && bs.Cols == 0 {
		bs.Rows, bs.Cols = DefaultRows, DefaultCols
	}
	if err := bs.Timing.Normalize(); err != nil {
		return err
	}
	bs.KindsUsed = bs.KindsUsed[:0]
	if len(bs.Kinds) == 0 {
		bs.KindsUsed = AllKinds()
	}
	for _, s := range bs.Kinds {
		k, ok := ParseKind(s)
		if !ok || !k.Valid() {
			return errs.NewFatal(fmt.Sprintf("board %q: unknown kind %q", bs.Name, s))
		}
		bs.KindsUsed = append(bs.KindsUsed, k)
	}
	return bs.valid()
}

// valid 執行最基本的設定檔檢查
func (bs *BoardSetting) valid() error {
	if bs.Name == "" {
		return errs.NewFatal("board setting: empty name")
	}
	if bs.Rows <= 0 || bs.Cols <= 0 {
		return errs.NewFatal(fmt.Sprintf("board %q: invalid dimensions rows=%d cols=%d", bs.Name, bs.Rows, bs.Cols))
	}
	if bs.Rows > 64 || bs.Cols > 64 {
		return errs.NewFatal(fmt.Sprintf("board %q: dimensions exceed 64", bs.Name))
	}
	seen := make(map[Kind]bool, len(bs.KindsUsed))
	for _, k := range bs.KindsUsed {
		if seen[k] {
			return errs.NewFatal(fmt.Sprintf("board %q: duplicated kind %s", bs.Name, k))
		}
		seen[k] = true
	}
	if len(bs.Weights) > 0 {
		if len(bs.Weights) != len(bs.KindsUsed) {
			return errs.NewFatal(fmt.Sprintf("board %q: len(weights)=%d != len(kinds)=%d", bs.Name, len(bs.Weights), len(bs.KindsUsed)))
		}
		total := 0
		for _, w := range bs.Weights {
			if w < 0 {
				return errs.NewFatal(fmt.Sprintf("board %q: negative weight", bs.Name))
			}
			total += w
		}
		if total == 0 {
			return errs.NewFatal(fmt.Sprintf("board %q: all weights are zero", bs.Name))
		}
	}
	if len(bs.Layout) > 0 {
		if len(bs.Layout) != bs.Rows {
			return errs.NewFatal(fmt.Sprintf("board %q: layout has %d rows, want %d", bs.Name, len(bs.Layout), bs.Rows))
		}
		for r, line := range bs.Layout {
			if len(line) != bs.Cols {
				return errs.NewFatal(fmt.Sprintf("board %q: layout row %d has %d cells, want %d", bs.Name, r, len(line), bs.Cols))
			}
			for i := 0; i < len(line); i++ {
				if _, ok := KindByLetter(line[i]); !ok {
					return errs.NewFatal(fmt.Sprintf("board %q: layout row %d has unknown letter %q", bs.Name, r, line[i]))
				}
			}
		}
	}
	return nil
}
