// Package corefmt 是平面盤面（[]int16）的文字編碼：
// 版面字串（每格一個字元，供設定檔與除錯輸出）與 base64url 壓縮格式（供 JSON 傳輸）。
package corefmt

import (
	"encoding/base64"
	"fmt"

	"github.com/zintix-labs/crystalab/errs"
	"github.com/zintix-labs/crystalab/spec"
)

// blockedLetter 是 <0 的格子（佔用中、不可移動）的版面字元
const blockedLetter = '#'

// EncodeLayout 把 grid 依 cols 切成版面字串
func EncodeLayout(grid []int16, cols int) []string {
	if cols <= 0 {
		return nil
	}
	out := make([]string, 0, (len(grid)+cols-1)/cols)
	line := make([]byte, 0, cols)
	for i, v := range grid {
		if v < 0 {
			line = append(line, blockedLetter)
		} else {
			line = append(line, spec.Kind(v).Letter())
		}
		if (i+1)%cols == 0 || i == len(grid)-1 {
			out = append(out, string(line))
			line = line[:0]
		}
	}
	return out
}

// DecodeLayout 把版面字串還原成 grid，所有列長度必須相同
func DecodeLayout(rows []string) ([]int16, int, error) {
	if len(rows) == 0 {
		return nil, 0, errs.NewWarn("decode layout failed: empty layout")
	}
	cols := len(rows[0])
	grid := make([]int16, 0, cols*len(rows))
	for r, line := range rows {
		if len(line) != cols {
			return nil, 0, errs.NewWarn(fmt.Sprintf("decode layout failed: row %d has %d cells, want %d", r, len(line), cols))
		}
		for i := 0; i < len(line); i++ {
			if line[i] == blockedLetter {
				grid = append(grid, -1)
				continue
			}
			k, ok := spec.KindByLetter(line[i])
			if !ok {
				return nil, 0, errs.NewWarn(fmt.Sprintf("decode layout failed: unknown letter %q", line[i]))
			}
			grid = append(grid, int16(k))
		}
	}
	return grid, cols, nil
}

// PackGrid 以每格一個 byte 編成 base64url（無 padding），負值記為 0xFF
func PackGrid(grid []int16) string {
	b := make([]byte, len(grid))
	for i, v := range grid {
		if v < 0 || v > 0xFE {
			b[i] = 0xFF
			continue
		}
		b[i] = byte(v)
	}
	return base64.RawURLEncoding.EncodeToString(b)
}

// UnpackGrid 是 PackGrid 的反向
func UnpackGrid(s string) ([]int16, error) {
	b, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return nil, errs.Wrap(err, "decode base64url failed")
	}
	grid := make([]int16, len(b))
	for i, v := range b {
		if v == 0xFF {
			grid[i] = -1
			continue
		}
		grid[i] = int16(v)
	}
	return grid, nil
}
