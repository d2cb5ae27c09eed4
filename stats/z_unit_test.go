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

package stats_test

import (
	"bytes"
	"encoding/json"
	"math"
	"strings"
	"testing"

	"github.com/zintix-labs/crystalab/stats"
)

// buildReport constructs a CascadeReport from per-move cascade depths.
// Every hit removes three cells per depth level.
func buildReport(depths []int) *stats.CascadeReport {
	L := stats.Depths.Len()
	collect := make([]int, L)
	var sum, sq, hits, maxDepth int
	for _, d := range depths {
		collect[stats.Depths.Index(d)]++
		sum += d
		sq += d * d
		if d > 0 {
			hits++
		}
		maxDepth = max(maxDepth, d)
	}
	report := &stats.CascadeReport{
		Summary: &stats.SummaryReport{
			BoardName:    "test",
			Engine:       "flat",
			Boards:       1,
			Moves:        len(depths),
			Hits:         hits,
			TotalRemoved: 3 * sum,
			MaxDepth:     maxDepth,
		},
		Depth:   &stats.MomentReport{Sum: sum, SqSum: sq},
		Removed: &stats.MomentReport{Sum: 3 * sum, SqSum: 9 * sq},
		Dist: &stats.DistReport{
			DepthBucket:  stats.Depths.Labels(),
			DepthCollect: collect,
		},
	}
	report.Done()
	return report
}

func TestDepthBuckets(t *testing.T) {
	want := []string{"[0]", "[1]", "[2]", "[3]", "[4,6)", "[6,10)", "[10,+inf)"}
	got := stats.Depths.Labels()
	if strings.Join(got, " ") != strings.Join(want, " ") {
		t.Fatalf("labels got %v want %v", got, want)
	}
	cases := map[int]int{-1: 0, 0: 0, 1: 1, 3: 3, 4: 4, 5: 4, 6: 5, 9: 5, 10: 6, 99: 6}
	for d, idx := range cases {
		if g := stats.Depths.Index(d); g != idx {
			t.Fatalf("Index(%d) got %d want %d", d, g, idx)
		}
	}
}

func TestCascadeReportMoments(t *testing.T) {
	rep := buildReport([]int{0, 1, 2, 0})

	if rep.Summary.NoopMoves != 2 {
		t.Fatalf("noop got %d want 2", rep.Summary.NoopMoves)
	}
	if rep.Summary.HitRate != 0.5 {
		t.Fatalf("hit rate got %.4f want 0.5", rep.Summary.HitRate)
	}
	if rep.Summary.HitRateCI.Lo >= 0.5 || rep.Summary.HitRateCI.Hi <= 0.5 {
		t.Fatalf("hit rate CI %+v does not cover 0.5", rep.Summary.HitRateCI)
	}
	if got := rep.Depth.Mean; math.Abs(got-0.75) > 1e-12 {
		t.Fatalf("mean depth got %.12f want 0.75", got)
	}
	variance := (5.0 - 9.0/4.0) / 3.0
	if got := rep.Depth.Std; math.Abs(got-math.Sqrt(variance)) > 1e-12 {
		t.Fatalf("std got %.12f want %.12f", got, math.Sqrt(variance))
	}
	if rep.Depth.CI.Lo > rep.Depth.Mean || rep.Depth.CI.Hi < rep.Depth.Mean {
		t.Fatalf("depth CI %+v does not cover mean", rep.Depth.CI)
	}
	// Student-t 區間比常態 1.96 寬
	z := 1.96 * rep.Depth.Std / 2
	if rep.Depth.CI.Hi-rep.Depth.Mean <= z {
		t.Fatalf("t interval %.6f not wider than normal %.6f", rep.Depth.CI.Hi-rep.Depth.Mean, z)
	}
	if got := rep.Removed.Mean; math.Abs(got-2.25) > 1e-12 {
		t.Fatalf("mean removed got %.12f want 2.25", got)
	}

	total := 0
	for _, c := range rep.Dist.DepthCollect {
		total += c
	}
	if total != rep.Summary.Moves {
		t.Fatalf("distribution total %d != moves %d", total, rep.Summary.Moves)
	}
	if rep.Deep(2) != 1 || rep.Deep(1) != 2 {
		t.Fatalf("deep counts got %d/%d", rep.Deep(1), rep.Deep(2))
	}

	rep.Done() // idempotent
	if rep.MeanDepth() != 0.75 {
		t.Fatalf("mean depth changed after second Done")
	}
}

func TestCascadeReportEmpty(t *testing.T) {
	rep := buildReport(nil)
	if rep.Depth.Mean != 0 || rep.Summary.HitRate != 0 {
		t.Fatalf("empty report should be zero, got %+v", rep.Summary)
	}
}

func TestRenders(t *testing.T) {
	rep := buildReport([]int{1, 0, 3})

	var js bytes.Buffer
	if err := rep.WriteWith(&js, &stats.JsonCascadeReportRender{}); err != nil {
		t.Fatalf("json render: %v", err)
	}
	var back map[string]any
	if err := json.Unmarshal(js.Bytes(), &back); err != nil {
		t.Fatalf("json output not valid: %v", err)
	}
	if _, ok := back["Depth"]; !ok {
		t.Fatalf("json output missing Depth: %s", js.String())
	}

	var ym bytes.Buffer
	if err := rep.WriteWith(&ym, &stats.YAMLCascadeReportRender{}); err != nil {
		t.Fatalf("yaml render: %v", err)
	}
	if !strings.Contains(ym.String(), "DepthCollect: [") {
		t.Fatalf("yaml sequences should be flow style:\n%s", ym.String())
	}
}

func TestEstimateBoards(t *testing.T) {
	// 100 張盤面，平均深度 0.00 ~ 0.99
	reports := make([]*stats.CascadeReport, 0, 100)
	for i := 0; i < 100; i++ {
		depths := make([]int, 100)
		for j := 0; j < i; j++ {
			depths[j] = 1
		}
		reports = append(reports, buildReport(depths))
	}
	est := stats.EstimateBoards(reports)
	if est.Boards != 100 {
		t.Fatalf("boards got %d", est.Boards)
	}
	if math.Abs(est.MeanDepth.Median.Hat-0.5) > 0.05 {
		t.Fatalf("median mean depth expected ~0.5, got %.3f", est.MeanDepth.Median.Hat)
	}
	if math.Abs(est.HitRate.P90.Hat-0.9) > 0.05 {
		t.Fatalf("P90 hit rate expected ~0.9, got %.3f", est.HitRate.P90.Hat)
	}
	if est.Deep.Hat != 0 {
		t.Fatalf("no board reached depth %d, got %.2f", stats.DeepDepth, est.Deep.Hat)
	}

	deep := make([]*stats.CascadeReport, 10)
	for i := range deep {
		if i < 3 {
			deep[i] = buildReport([]int{4, 0})
		} else {
			deep[i] = buildReport([]int{1, 0})
		}
	}
	est2 := stats.EstimateBoards(deep)
	if est2.Deep.Hat != 0.3 {
		t.Fatalf("deep rate got %.2f want 0.30", est2.Deep.Hat)
	}
	if est2.Deep.CI.Lo > 0.3 || est2.Deep.CI.Hi < 0.3 {
		t.Fatalf("deep CI %+v does not cover 0.3", est2.Deep.CI)
	}

	if e := stats.EstimateBoards(nil); e.Boards != 0 {
		t.Fatalf("empty estimate got %+v", e)
	}
}
