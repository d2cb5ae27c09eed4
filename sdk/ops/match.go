package ops

// MinRun 是構成消除的最短連續長度
const MinRun = 3

// FindMatches 找出所有橫向或縱向連續 >= MinRun 個相同種類的位置
//
//   - screen: 盤面數據 (唯讀)，<= 0 的值視為空格，會中斷連線
//   - mark: 長度為 cols*rows 的暫存，會被覆寫；同一格在兩個方向都命中時只記一次
//   - hits: 回傳命中的 index (row-major 由小到大)，append 至 hits[:0]
func FindMatches(screen []int16, cols int, rows int, mark []bool, hits []int16) []int16 {
	clear(mark)
	found := false
	// 橫向：每列由左至右
	for r := 0; r < rows; r++ {
		base := r * cols
		run := 1
		for c := 1; c <= cols; c++ {
			if c < cols && same(screen[base+c-1], screen[base+c]) {
				run++
				continue
			}
			if run >= MinRun {
				found = true
				for k := c - run; k < c; k++ {
					mark[base+k] = true
				}
			}
			run = 1
		}
	}
	// 縱向：每行由上至下
	for c := 0; c < cols; c++ {
		run := 1
		for r := 1; r <= rows; r++ {
			if r < rows && same(screen[(r-1)*cols+c], screen[r*cols+c]) {
				run++
				continue
			}
			if run >= MinRun {
				found = true
				for k := r - run; k < r; k++ {
					mark[k*cols+c] = true
				}
			}
			run = 1
		}
	}
	hits = hits[:0]
	if !found {
		return hits
	}
	for i, m := range mark {
		if m {
			hits = append(hits, int16(i))
		}
	}
	return hits
}

// HasMatch 回報盤面上是否存在任何可消除的連線
func HasMatch(screen []int16, cols int, rows int) bool {
	for r := 0; r < rows; r++ {
		for c := 0; c+MinRun <= cols; c++ {
			i := r*cols + c
			if same(screen[i], screen[i+1]) && same(screen[i+1], screen[i+2]) {
				return true
			}
		}
	}
	for c := 0; c < cols; c++ {
		for r := 0; r+MinRun <= rows; r++ {
			i := r*cols + c
			if same(screen[i], screen[i+cols]) && same(screen[i+cols], screen[i+2*cols]) {
				return true
			}
		}
	}
	return false
}

// SwapMove 是一次相鄰交換（A < B，皆為 row-major index）
type SwapMove struct {
	A, B int
}

// FindSwapMoves 列出所有交換後會產生連線的相鄰交換
//
// screen 會被暫時修改後還原；空格或 <= 0 的格子不參與交換。
func FindSwapMoves(screen []int16, cols int, rows int, dst []SwapMove) []SwapMove {
	dst = dst[:0]
	try := func(a, b int) {
		if screen[a] <= 0 || screen[b] <= 0 || screen[a] == screen[b] {
			return
		}
		screen[a], screen[b] = screen[b], screen[a]
		if matchThrough(screen, cols, rows, a) || matchThrough(screen, cols, rows, b) {
			dst = append(dst, SwapMove{A: a, B: b})
		}
		screen[a], screen[b] = screen[b], screen[a]
	}
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			i := r*cols + c
			if c+1 < cols {
				try(i, i+1)
			}
			if r+1 < rows {
				try(i, i+cols)
			}
		}
	}
	return dst
}

// matchThrough 回報經過 idx 的橫向或縱向連線是否 >= MinRun
func matchThrough(screen []int16, cols int, rows int, idx int) bool {
	v := screen[idx]
	if v <= 0 {
		return false
	}
	r, c := idx/cols, idx%cols
	n := 1
	for k := c - 1; k >= 0 && screen[r*cols+k] == v; k-- {
		n++
	}
	for k := c + 1; k < cols && screen[r*cols+k] == v; k++ {
		n++
	}
	if n >= MinRun {
		return true
	}
	n = 1
	for k := r - 1; k >= 0 && screen[k*cols+c] == v; k-- {
		n++
	}
	for k := r + 1; k < rows && screen[k*cols+c] == v; k++ {
		n++
	}
	return n >= MinRun
}

func same(a, b int16) bool {
	return a > 0 && a == b
}
