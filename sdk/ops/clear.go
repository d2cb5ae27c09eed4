package ops

// Clear 消除標記位置的寶石(改為0)
//
//   - screen: 盤面數據 (將被原地修改)
//   - hits: 消除位置，通常由 FindMatches 回傳
func Clear(screen []int16, hits []int16) {
	for _, v := range hits {
		if v >= 0 && int(v) < len(screen) {
			screen[v] = 0
		}
	}
}
