// Package sampler 提供寶石種類的抽樣工具。
//
// 本檔案實作 Vose's Alias Method 的整數版本：建表 O(N)、抽樣 O(1)（固定兩次 IntN），
// 全程整數運算，避免浮點誤差讓權重總和不等於 1。

package sampler

import (
	"math"
	"math/bits"

	"github.com/zintix-labs/crystalab/errs"
	"github.com/zintix-labs/crystalab/sdk/core"
)

// AliasTable 每個槽位只存「自己」與「別名」兩個選項。
//
//   - Prob: 經過 n 倍 scaling 的機率，與 Total 比較決定取自己或別名
//   - Aliases: 別名索引
type AliasTable struct {
	Prob    []int
	Aliases []int
	Size    int
	Total   int
}

// BuildAliasTable 由非負整數權重建立 AliasTable，權重不需正規化。
// 負權重、全為零或 w*n 溢位時回傳錯誤。
func BuildAliasTable(weights []int) (*AliasTable, error) {
	n := len(weights)
	if n == 0 {
		return &AliasTable{}, nil
	}
	total := 0
	for _, w := range weights {
		if w < 0 {
			return nil, errs.NewFatal("alias table: negative weight")
		}
		if total > math.MaxInt-w {
			return nil, errs.NewFatal("alias table: total weight overflow")
		}
		total += w
	}
	if total == 0 {
		return nil, errs.NewFatal("alias table: all weights are zero")
	}
	if hi, lo := bits.Mul64(uint64(total), uint64(n)); hi != 0 || lo > math.MaxInt64 {
		return nil, errs.NewFatal("alias table: weights too large")
	}

	prob := make([]int, n)
	aliases := make([]int, n)
	small := make([]int, 0, n)
	large := make([]int, 0, n)
	for i, w := range weights {
		prob[i] = w * n
		if prob[i] < total {
			small = append(small, i)
		} else {
			large = append(large, i)
		}
	}
	for len(small) > 0 && len(large) > 0 {
		s := small[len(small)-1]
		small = small[:len(small)-1]
		l := large[len(large)-1]
		large = large[:len(large)-1]

		aliases[s] = l
		prob[l] += prob[s] - total // sum(prob) 維持為 total*n
		if prob[l] < total {
			small = append(small, l)
		} else {
			large = append(large, l)
		}
	}
	// 剩下的槽位機率視為滿格
	for _, i := range large {
		prob[i] = total
	}
	for _, i := range small {
		prob[i] = total
	}
	return &AliasTable{Prob: prob, Aliases: aliases, Size: n, Total: total}, nil
}

// Pick 抽出一個索引，空表回傳 -1。
func (at *AliasTable) Pick(c *core.Core) int {
	if at.Size == 0 {
		return -1
	}
	idx := c.IntN(at.Size)
	if c.IntN(at.Total) < at.Prob[idx] {
		return idx
	}
	return at.Aliases[idx]
}
