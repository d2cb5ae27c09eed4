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

package recorder

import (
	"github.com/zintix-labs/crystalab/errs"
	"github.com/zintix-labs/crystalab/sdk/board"
	"github.com/zintix-labs/crystalab/spec"
	"github.com/zintix-labs/crystalab/stats"
)

// CascadeRecorder 連鎖紀錄員
//
// CascadeRecorder 負責紀錄每一步交換後的連鎖結果，並透過Done輸出統計報表
type CascadeRecorder struct {
	BoardName string
	BoardID   spec.BID
	Engine    string
	Basic     *BasicRecord
	Dist      *DistRecord
}

// BasicRecord 基本連鎖資料紀錄
type BasicRecord struct {
	Boards       int
	Moves        int
	Hits         int
	Stuck        int
	DepthSum     int
	DepthSqSum   int // 平方和
	RemovedSum   int
	RemovedSqSum int // 平方和
	Spawned      int
	MaxDepth     int
}

// DistRecord 連鎖深度區間落點統計
type DistRecord struct {
	DepthCollect []int
}

func NewCascadeRecorder(name string, id spec.BID, engine string) *CascadeRecorder {
	return &CascadeRecorder{
		BoardName: name,
		BoardID:   id,
		Engine:    engine,
		Basic:     &BasicRecord{Boards: 1},
		Dist:      &DistRecord{DepthCollect: make([]int, stats.Depths.Len())},
	}
}

// MergeCascadeRecorder 合併同一盤面設定、同一引擎的紀錄
func MergeCascadeRecorder(r []*CascadeRecorder) (*CascadeRecorder, error) {
	if len(r) == 0 {
		return nil, errs.NewFatal("merge cascade record err : empty input")
	}
	r0 := r[0]
	s := NewCascadeRecorder(r0.BoardName, r0.BoardID, r0.Engine)
	s.Basic.Boards = 0
	for _, v := range r {
		if v.BoardName != r0.BoardName || v.BoardID != r0.BoardID {
			return nil, errs.NewFatal("merge cascade record err : different board")
		}
		if v.Engine != r0.Engine {
			return nil, errs.NewFatal("merge cascade record err : different engine")
		}
		b := v.Basic
		s.Basic.Boards += b.Boards
		s.Basic.Moves += b.Moves
		s.Basic.Hits += b.Hits
		s.Basic.Stuck += b.Stuck
		s.Basic.DepthSum += b.DepthSum
		s.Basic.DepthSqSum += b.DepthSqSum
		s.Basic.RemovedSum += b.RemovedSum
		s.Basic.RemovedSqSum += b.RemovedSqSum
		s.Basic.Spawned += b.Spawned
		s.Basic.MaxDepth = max(s.Basic.MaxDepth, b.MaxDepth)

		for i := range v.Dist.DepthCollect {
			s.Dist.DepthCollect[i] += v.Dist.DepthCollect[i]
		}
	}
	return s, nil
}

// Record 以一步交換後的連鎖結果更新統計
func (s *CascadeRecorder) Record(res board.CascadeResult) {
	b := s.Basic
	d := res.Depth
	b.Moves++
	if d > 0 {
		b.Hits++
	}
	b.DepthSum += d
	b.DepthSqSum += d * d
	b.RemovedSum += res.Removed
	b.RemovedSqSum += res.Removed * res.Removed
	b.Spawned += res.Spawned
	if d > b.MaxDepth {
		b.MaxDepth = d
	}
	s.Dist.DepthCollect[stats.Depths.Index(d)]++
}

// RecordStuck 紀錄一次「盤面上沒有任何可連線交換」
func (s *CascadeRecorder) RecordStuck() {
	s.Basic.Stuck++
}

func (s *CascadeRecorder) Done() *stats.CascadeReport {
	b := s.Basic
	report := &stats.CascadeReport{
		Summary: &stats.SummaryReport{
			BoardName:    s.BoardName,
			BoardID:      s.BoardID,
			Engine:       s.Engine,
			Boards:       b.Boards,
			Moves:        b.Moves,
			Hits:         b.Hits,
			Stuck:        b.Stuck,
			TotalRemoved: b.RemovedSum,
			TotalSpawned: b.Spawned,
			MaxDepth:     b.MaxDepth,
		},
		Depth:   &stats.MomentReport{Sum: b.DepthSum, SqSum: b.DepthSqSum},
		Removed: &stats.MomentReport{Sum: b.RemovedSum, SqSum: b.RemovedSqSum},
		Dist: &stats.DistReport{
			DepthBucket:  stats.Depths.Labels(),
			DepthCollect: append([]int(nil), s.Dist.DepthCollect...),
		},
	}
	report.Done()
	return report
}
