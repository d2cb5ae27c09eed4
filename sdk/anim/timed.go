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

package anim

import (
	"slices"
	"sync"
	"time"

	"github.com/zintix-labs/crystalab/sdk/board"
	"github.com/zintix-labs/crystalab/spec"
)

// Sprite 是某一時刻寶石在畫面上的樣子
type Sprite struct {
	ID    uint64     `json:"id"`
	Kind  spec.Kind  `json:"kind"`
	Pos   board.Vec2 `json:"pos"`
	Alpha float64    `json:"alpha"`
}

type track struct {
	kind  spec.Kind
	from  board.Vec2
	to    board.Vec2
	start time.Time
	dur   time.Duration
	fade  bool
}

// Timed 以真實時間完成動畫，並保存每顆寶石的軌跡供畫面插值。
//
// Speed 為播放倍率：1 為原速，2 為兩倍速，<= 0 時動畫立即完成。
type Timed struct {
	mu     sync.Mutex
	speed  float64
	now    func() time.Time
	tracks map[uint64]*track
}

func NewTimed(speed float64) *Timed {
	return &Timed{speed: speed, now: time.Now, tracks: make(map[uint64]*track)}
}

func (p *Timed) scale(d time.Duration) time.Duration {
	if p.speed <= 0 {
		return 0
	}
	return time.Duration(float64(d) / p.speed)
}

func (p *Timed) after(d time.Duration, done func()) {
	if d <= 0 {
		done()
		return
	}
	time.AfterFunc(d, done)
}

func (p *Timed) Spawn(t *board.Token, at board.Vec2) {
	p.mu.Lock()
	p.tracks[t.ID()] = &track{kind: t.Kind(), from: at, to: at, start: p.now()}
	p.mu.Unlock()
}

func (p *Timed) Move(t *board.Token, from, to board.Vec2, d time.Duration, done func()) {
	d = p.scale(d)
	p.mu.Lock()
	tr, ok := p.tracks[t.ID()]
	if !ok {
		tr = &track{kind: t.Kind()}
		p.tracks[t.ID()] = tr
	}
	tr.from, tr.to, tr.start, tr.dur = from, to, p.now(), d
	p.mu.Unlock()
	p.after(d, done)
}

func (p *Timed) Hide(t *board.Token, d time.Duration, done func()) {
	d = p.scale(d)
	p.mu.Lock()
	if tr, ok := p.tracks[t.ID()]; ok {
		tr.from = tr.to
		tr.start, tr.dur, tr.fade = p.now(), d, true
	}
	p.mu.Unlock()
	p.after(d, done)
}

func (p *Timed) Refresh(t *board.Token) {
	p.mu.Lock()
	if tr, ok := p.tracks[t.ID()]; ok {
		tr.kind = t.Kind()
	}
	p.mu.Unlock()
}

func (p *Timed) Destroy(t *board.Token) {
	p.mu.Lock()
	delete(p.tracks, t.ID())
	p.mu.Unlock()
}

// Sprites 回傳 now 時刻所有寶石插值後的位置，依 ID 排序。
func (p *Timed) Sprites(now time.Time) []Sprite {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Sprite, 0, len(p.tracks))
	for id, tr := range p.tracks {
		prog := 1.0
		if tr.dur > 0 {
			prog = float64(now.Sub(tr.start)) / float64(tr.dur)
		}
		s := Sprite{ID: id, Kind: tr.kind, Alpha: 1}
		if tr.fade {
			s.Pos = tr.to
			s.Alpha = 1 - min(max(prog, 0), 1)
		} else {
			s.Pos = board.Lerp(tr.from, tr.to, prog)
		}
		out = append(out, s)
	}
	slices.SortFunc(out, func(a, b Sprite) int {
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		}
		return 0
	})
	return out
}
