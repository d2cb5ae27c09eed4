package ops

// FillScreen 堆疊補盤：配合 Gravity 使用
//
// 每行由頂端 (row 0) 往下補到 fillIdxBuf[c] 為止，fillIdxBuf[c] < 0 表示該行已滿。
// pick 每被呼叫一次產出一個寶石；行優先、由上而下的呼叫順序是固定的，
// 與 FillScreenByHole 相同，相同亂數序列會得到相同盤面。
func FillScreen(screen []int16, fillIdxBuf []int, cols int, pick func() int16) {
	for c, last := range fillIdxBuf {
		if last < 0 {
			continue
		}
		for w := c; w <= last; w += cols {
			screen[w] = pick()
		}
	}
}

// FillScreenByHole 穿透補盤：掃描全盤，見縫插針
//
// 相較 FillScreen 不需要 fillIdxBuf，直接補滿所有 0 的格子 (行優先、由上而下)。
// 回傳補入的數量。
func FillScreenByHole(screen []int16, cols int, rows int, pick func() int16) int {
	n := 0
	for c := 0; c < cols; c++ {
		for r := 0; r < rows; r++ {
			idx := r*cols + c
			if screen[idx] == 0 {
				screen[idx] = pick()
				n++
			}
		}
	}
	return n
}
