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

package stats

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/stat/distuv"
)

// ============================================================
// ** 結構宣告 **
// ============================================================

// BoardSpread 盤面之間的差異評估
//
// 每張盤面（不同 seed）各自有一份 CascadeReport，這裡看的是「盤面與盤面之間」的分布
type BoardSpread struct {
	Boards    int          `json:"Boards"    yaml:"Boards"`
	MeanDepth QuantileStat `json:"MeanDepth" yaml:"MeanDepth"` // 每張盤面平均連鎖深度的分位數
	HitRate   QuantileStat `json:"HitRate"   yaml:"HitRate"`   // 每張盤面命中率的分位數
	Deep      PointStat    `json:"Deep"      yaml:"Deep"`      // 至少出現一次深度 >= DeepDepth 連鎖的盤面比例
	Stuck     PointStat    `json:"Stuck"     yaml:"Stuck"`     // 至少遇過一次無解盤面的比例
	DeepDepth int          `json:"DeepDepth" yaml:"DeepDepth"`
}

// QuantileStat 分位數視角：P10 / 中位數 / P90
type QuantileStat struct {
	P10    PointStat `json:"P10"    yaml:"P10"`
	Median PointStat `json:"Median" yaml:"Median"`
	P90    PointStat `json:"P90"    yaml:"P90"`
}

// PointStat 點估計 回傳 估計值 以及信賴區間
type PointStat struct {
	Hat float64 `json:"Hat" yaml:"Hat"`
	CI  CI      `json:"CI"  yaml:"CI"`
}

// DeepDepth 是 BoardSpread 判定「深連鎖」的門檻
const DeepDepth = 3

// ============================================================
// ** 對外 : 盤面差異評估 **
// ============================================================

// EstimateBoards 盤面差異評估
//
// 1. 深度敘事 : 各盤面平均連鎖深度的 P10 / 中位數 / P90 與 95% CI
//
// 2. 命中敘事 : 各盤面隨機交換命中率的 P10 / 中位數 / P90 與 95% CI
//
// 3. 事件敘事 : 出現深連鎖、遇到無解盤面的盤面比例（Clopper-Pearson 95% CI）
func EstimateBoards(reps []*CascadeReport) *BoardSpread {
	n := len(reps)
	out := &BoardSpread{Boards: n, DeepDepth: DeepDepth}
	if n == 0 {
		return out
	}

	depth := make([]float64, n)
	hit := make([]float64, n)
	deepK, stuckK := 0, 0
	for i, r := range reps {
		r.Done()
		depth[i] = r.Depth.Mean
		hit[i] = r.Summary.HitRate
		if r.Deep(DeepDepth) > 0 {
			deepK++
		}
		if r.Summary.Stuck > 0 {
			stuckK++
		}
	}
	out.MeanDepth = quantiles(depth)
	out.HitRate = quantiles(hit)

	deepHat, deepCI := proportionCICP(deepK, n, 0.95)
	stuckHat, stuckCI := proportionCICP(stuckK, n, 0.95)
	out.Deep = PointStat{Hat: deepHat, CI: deepCI}
	out.Stuck = PointStat{Hat: stuckHat, CI: stuckCI}
	return out
}

func quantiles(data []float64) QuantileStat {
	point := func(q float64) PointStat {
		lo, hi := quantileCI(data, q, 0.95)
		return PointStat{Hat: quantilePoint(data, q), CI: CI{Lo: lo, Hi: hi}}
	}
	return QuantileStat{P10: point(0.10), Median: point(0.5), P90: point(0.90)}
}

// ============================================================
// ** 內部統計函數 **
// ============================================================

// Clopper–Pearson exact CI for binomial proportion (k successes out of n)
func proportionCICP(k int, n int, confidence float64) (pHat float64, ci CI) {
	if n == 0 {
		return 0, CI{0, 1}
	}
	alpha := 1 - confidence
	pHat = float64(k) / float64(n)

	// Beta PPF 映射，處理邊界
	if k == 0 {
		ci.Lo = 0
	} else {
		b := distuv.Beta{Alpha: float64(k), Beta: float64(n - k + 1)}
		ci.Lo = b.Quantile(alpha / 2)
	}
	if k == n {
		ci.Hi = 1
	} else {
		b := distuv.Beta{Alpha: float64(k + 1), Beta: float64(n - k)}
		ci.Hi = b.Quantile(1 - alpha/2)
	}
	return
}

// 估「第 q 分位」的上下界：把 order statistic 的秩視為二項，以 Beta 反推 p 範圍，再轉回樣本索引。
func quantileCI(data []float64, q, confidence float64) (float64, float64) {
	n := len(data)
	if n == 0 {
		return 0, 0
	}
	cp := make([]float64, n)
	copy(cp, data)
	sort.Float64s(cp)
	if n == 1 {
		return cp[0], cp[0]
	}

	alpha := 1 - confidence
	k := int(q * float64(n))
	if k < 1 {
		k = 1
	} else if k > n-1 {
		k = n - 1
	}

	bLo := distuv.Beta{Alpha: float64(k), Beta: float64(n - k + 1)}
	bHi := distuv.Beta{Alpha: float64(k + 1), Beta: float64(n - k)}
	pLo := bLo.Quantile(alpha / 2)
	pHi := bHi.Quantile(1 - alpha/2)

	li := min(max(int(pLo*float64(n)), 0), n-1)
	ui := int(pHi * float64(n))
	if ui > 0 {
		ui -= 1
	}
	ui = min(max(ui, 0), n-1)
	return cp[li], cp[ui]
}

// quantilePoint returns the empirical quantile point estimate at q.
func quantilePoint(data []float64, q float64) float64 {
	n := len(data)
	if n == 0 {
		return 0
	}
	cp := make([]float64, n)
	copy(cp, data)
	sort.Float64s(cp)
	// 最近秩法
	idx := min(max(int(q*float64(n)), 0), n-1)
	return cp[idx]
}

// ============================================================
// ** 輸出函數 **
// ============================================================

func (bs *BoardSpread) Out() {
	fmt.Printf("=== Board Spread (%d boards) ===\n", bs.Boards)
	keys := []string{
		"P10 mean depth",
		"Median mean depth",
		"P90 mean depth",
		"P10 hit rate",
		"Median hit rate",
		"P90 hit rate",
		fmt.Sprintf("Depth >= %d (boards)", bs.DeepDepth),
		"Stuck (boards)",
	}
	msg := map[string]string{
		keys[0]: fmtHatCI(bs.MeanDepth.P10),
		keys[1]: fmtHatCI(bs.MeanDepth.Median),
		keys[2]: fmtHatCI(bs.MeanDepth.P90),
		keys[3]: fmtHatCIpct01(bs.HitRate.P10),
		keys[4]: fmtHatCIpct01(bs.HitRate.Median),
		keys[5]: fmtHatCIpct01(bs.HitRate.P90),
		keys[6]: fmtHatCIpct01(bs.Deep),
		keys[7]: fmtHatCIpct01(bs.Stuck),
	}
	printTable(keys, msg)
}

func printTable(keys []string, msg map[string]string) {
	maxKeyLen := 0
	for _, k := range keys {
		if len(k) > maxKeyLen {
			maxKeyLen = len(k)
		}
	}
	for _, k := range keys {
		fmt.Printf("  %-*s : %s\n", maxKeyLen, k, msg[k])
	}
}

func fmtPct01(x float64) string {
	return fmt.Sprintf("%.2f%%", x*100)
}

func fmtHatCIpct01(ps PointStat) string {
	return fmt.Sprintf("%s [%s, %s]", fmtPct01(ps.Hat), fmtPct01(ps.CI.Lo), fmtPct01(ps.CI.Hi))
}

func fmtHatCI(ps PointStat) string {
	return fmt.Sprintf("%.4f [%.4f, %.4f]", ps.Hat, ps.CI.Lo, ps.CI.Hi)
}
