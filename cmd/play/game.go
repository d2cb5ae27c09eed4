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
	"context"
	"fmt"
	"math"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/zintix-labs/crystalab"
	"github.com/zintix-labs/crystalab/dto"
	"github.com/zintix-labs/crystalab/sdk/anim"
	"github.com/zintix-labs/crystalab/sdk/board"
	"github.com/zintix-labs/crystalab/spec"
)

const (
	originX = 2
	originY = 1
	cellW   = 2 // 每格佔兩個終端機欄位
	opLimit = time.Second
)

var kindColors = map[spec.Kind]tcell.Color{
	spec.Red:    tcell.ColorRed,
	spec.Green:  tcell.ColorGreen,
	spec.Blue:   tcell.ColorBlue,
	spec.Yellow: tcell.ColorYellow,
	spec.Purple: tcell.ColorPurple,
	spec.Orange: tcell.ColorOrange,
}

type game struct {
	screen tcell.Screen
	tbl    *crystalab.Table
	extra  playExtra

	cursor   board.Pos
	selected *board.Pos
	status   string

	// 背景連鎖的結果
	results  chan string
	cascades int
}

func newGame(screen tcell.Screen, tbl *crystalab.Table, extra playExtra) *game {
	if extra.TickMs <= 0 {
		extra.TickMs = 16
	}
	return &game{
		screen:  screen,
		tbl:     tbl,
		extra:   extra,
		results: make(chan string, 8),
		status:  fmt.Sprintf("%s seed=%d", tbl.Name(), tbl.Seed()),
	}
}

func (g *game) cleanup() {
	ctx, cancel := context.WithTimeout(context.Background(), opLimit)
	defer cancel()
	_ = g.tbl.Close(ctx)
	g.screen.Fini()
}

func (g *game) run() {
	ticker := time.NewTicker(time.Duration(g.extra.TickMs) * time.Millisecond)
	defer ticker.Stop()

	eventChan := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := g.screen.PollEvent()
			if ev == nil {
				close(eventChan)
				return
			}
			eventChan <- ev
		}
	}()

	for {
		select {
		case ev, ok := <-eventChan:
			if !ok || !g.handleInput(ev) {
				return
			}
		case msg := <-g.results:
			g.cascades--
			g.status = msg
		case now := <-ticker.C:
			g.draw(now)
		}
	}
}

func (g *game) handleInput(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC:
			return false
		case tcell.KeyUp:
			g.moveCursor(0, -1)
		case tcell.KeyDown:
			g.moveCursor(0, 1)
		case tcell.KeyLeft:
			g.moveCursor(-1, 0)
		case tcell.KeyRight:
			g.moveCursor(1, 0)
		case tcell.KeyEnter:
			g.pick()
		case tcell.KeyRune:
			return g.handleRune(ev.Rune())
		}
	case *tcell.EventResize:
		g.screen.Sync()
	}
	return true
}

func (g *game) handleRune(r rune) bool {
	switch r {
	case 'q':
		return false
	case 'k':
		g.moveCursor(0, -1)
	case 'j':
		g.moveCursor(0, 1)
	case 'h':
		g.moveCursor(-1, 0)
	case 'l':
		g.moveCursor(1, 0)
	case ' ':
		g.pick()
	case '<':
		g.scroll(spec.Horizontal, g.cursor.Row, -1)
	case '>':
		g.scroll(spec.Horizontal, g.cursor.Row, 1)
	case '^':
		g.scroll(spec.Vertical, g.cursor.Col, -1)
	case 'v':
		g.scroll(spec.Vertical, g.cursor.Col, 1)
	case 'c':
		g.op(func(ctx context.Context) (string, error) {
			n, err := g.tbl.Collapse(ctx)
			return fmt.Sprintf("collapse: %d marked", n), err
		})
	case 'f':
		g.op(func(ctx context.Context) (string, error) {
			return "fill", g.tbl.Fill(ctx)
		})
	case 'r':
		g.cascade()
	}
	return true
}

func (g *game) moveCursor(dc, dr int) {
	p := g.cursor.Add(dc, dr)
	if p.Col < 0 || p.Row < 0 || p.Col >= g.tbl.Cols() || p.Row >= g.tbl.Rows() {
		return
	}
	g.cursor = p
}

// pick 選取游標所在格；已選取且游標在相鄰格時交換兩格
func (g *game) pick() {
	cur := g.cursor
	if g.selected != nil && g.selected.Adjacent(cur) {
		from := *g.selected
		g.selected = nil
		g.op(func(ctx context.Context) (string, error) {
			if err := g.tbl.ClearSelection(ctx); err != nil {
				return "", err
			}
			return fmt.Sprintf("swap %v <-> %v", from, cur), g.tbl.Swap(ctx, from, cur)
		})
		if g.extra.AutoCascade {
			g.cascade()
		}
		return
	}
	if g.selected != nil && *g.selected == cur {
		g.selected = nil
		g.op(func(ctx context.Context) (string, error) {
			return "selection cleared", g.tbl.ClearSelection(ctx)
		})
		return
	}
	g.selected = &cur
	g.op(func(ctx context.Context) (string, error) {
		avail, err := g.tbl.Select(ctx, cur)
		return fmt.Sprintf("select %v: %d moves", cur, len(avail)), err
	})
}

func (g *game) scroll(axis spec.Axis, index, delta int) {
	g.op(func(ctx context.Context) (string, error) {
		return fmt.Sprintf("scroll %s %d by %d", axis, index, delta), g.tbl.Scroll(ctx, axis, index, delta)
	})
	if g.extra.AutoCascade {
		g.cascade()
	}
}

func (g *game) op(fn func(ctx context.Context) (string, error)) {
	ctx, cancel := context.WithTimeout(context.Background(), opLimit)
	defer cancel()
	msg, err := fn(ctx)
	if err != nil {
		g.status = err.Error()
		return
	}
	g.status = msg
}

// cascade 在背景等待動畫結束後跑完整個連鎖，結果送回主迴圈
func (g *game) cascade() {
	g.cascades++
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if err := g.tbl.Settle(ctx); err != nil {
			g.results <- err.Error()
			return
		}
		res, err := g.tbl.Resolve(ctx)
		if err != nil {
			g.results <- err.Error()
			return
		}
		g.results <- fmt.Sprintf("cascade depth=%d removed=%d spawned=%d", res.Depth, res.Removed, res.Spawned)
	}()
}

func (g *game) draw(now time.Time) {
	ctx, cancel := context.WithTimeout(context.Background(), opLimit)
	defer cancel()
	view, err := g.tbl.View(ctx, true)
	if err != nil {
		g.status = err.Error()
		return
	}
	g.screen.Clear()
	g.drawCells(view)
	g.drawSprites(g.tbl.Sprites(now), view.Rows, view.Cols)
	g.drawStatus(view)
	g.screen.Show()
}

func (g *game) drawCells(view dto.BoardView) {
	for _, c := range view.Cells {
		style := tcell.StyleDefault
		switch c.State {
		case board.Selected.String():
			style = style.Background(tcell.ColorDarkSlateGray)
		case board.AvailableForMove.String():
			style = style.Background(tcell.ColorDarkGreen)
		}
		if c.Col == g.cursor.Col && c.Row == g.cursor.Row {
			style = style.Background(tcell.ColorGray)
		}
		x, y := originX+c.Col*cellW, originY+c.Row
		for dx := 0; dx < cellW; dx++ {
			g.screen.SetContent(x+dx, y, ' ', nil, style)
		}
	}
}

func (g *game) drawSprites(sprites []anim.Sprite, rows, cols int) {
	for _, s := range sprites {
		col, row, ok := spriteCell(s.Pos, g.tbl.CellSize(), rows, cols)
		if !ok {
			continue
		}
		x, y := originX+col*cellW, originY+row
		_, _, base, _ := g.screen.GetContent(x, y)
		style := base.Foreground(kindColors[s.Kind]).Bold(true)
		if s.Alpha < 0.5 {
			style = style.Dim(true).Bold(false)
		}
		g.screen.SetContent(x, y, rune(s.Kind.Letter()), nil, style)
	}
}

func (g *game) drawStatus(view dto.BoardView) {
	y := originY + view.Rows + 1
	line := fmt.Sprintf("busy=%d refilling=%v removed=%d spawned=%d", view.Busy, view.Refilling, view.Counters.Removed, view.Counters.Spawned)
	if g.cascades > 0 {
		line += " (cascading)"
	}
	drawText(g.screen, originX, y, line, tcell.StyleDefault)
	drawText(g.screen, originX, y+1, g.status, tcell.StyleDefault.Foreground(tcell.ColorSilver))
}

func drawText(s tcell.Screen, x, y int, text string, style tcell.Style) {
	for i, r := range []rune(text) {
		s.SetContent(x+i, y, r, nil, style)
	}
}

// spriteCell 把世界座標換成最近的格子；還在盤面上方落下中的寶石不畫
func spriteCell(p board.Vec2, cellSize float64, rows, cols int) (int, int, bool) {
	if cellSize <= 0 {
		return 0, 0, false
	}
	col := int(math.Round(p.X / cellSize))
	row := int(math.Round(p.Y / cellSize))
	if col < 0 || row < 0 || col >= cols || row >= rows {
		return 0, 0, false
	}
	return col, row, true
}
