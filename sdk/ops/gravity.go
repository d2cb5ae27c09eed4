package ops

// Blocked 代表「佔用中但不可移動」的格子（淡出中或即將有寶石抵達）
const Blocked int16 = -1

// Gravity 執行單次壓縮的下落 (Column-wise compact)
//
//   - screen: 盤面數據 (將被原地修改)
//   - cols, rows: 盤面維度
//   - fillIdxBuf: (選用) 回傳每行最下方的空格 index，該行已滿時為負值
//
// 同一行內寶石的相對順序不變。
func Gravity(screen []int16, cols int, rows int, fillIdxBuf []int) {
	for c := 0; c < cols; c++ {
		wp := (rows-1)*cols + c // 寫入位置，從底開始
		for r := rows - 1; r >= 0; r-- {
			rp := r*cols + c
			if screen[rp] != 0 {
				if rp != wp {
					screen[wp] = screen[rp]
				}
				wp -= cols
			}
		}
		if fillIdxBuf != nil && c < len(fillIdxBuf) {
			fillIdxBuf[c] = wp
		}
		for w := wp; w >= 0; w -= cols {
			screen[w] = 0
		}
	}
}

// Move 是一次下落：寶石由 From 移到 To (row-major index)
type Move struct {
	From, To int
}

// PlanGravity 規劃一輪下落，並把結果套用到 screen
//
// 每行由下往上：遇到空格就取同一行上方最近的寶石補入，來源因此變成空格，
// 之後可再被更上方的寶石補入。Blocked 視為已佔用且不可移動，
// 往上搜尋遇到它即停止，避免寶石越過它。
// 回傳的 moves 依行、由下往上排列，append 至 moves[:0]。
func PlanGravity(screen []int16, cols int, rows int, moves []Move) []Move {
	moves = moves[:0]
	for c := 0; c < cols; c++ {
		for r := rows - 1; r > 0; r-- {
			to := r*cols + c
			if screen[to] != 0 {
				continue
			}
			for k := r - 1; k >= 0; k-- {
				from := k*cols + c
				v := screen[from]
				if v == 0 {
					continue
				}
				if v > 0 {
					screen[to] = v
					screen[from] = 0
					moves = append(moves, Move{From: from, To: to})
				}
				break
			}
		}
	}
	return moves
}

// HasGap 回報是否有空格位於任一寶石（或 Blocked）的正下方
func HasGap(screen []int16, cols int, rows int) bool {
	for c := 0; c < cols; c++ {
		filled := false
		for r := 0; r < rows; r++ {
			v := screen[r*cols+c]
			if v != 0 {
				filled = true
			} else if filled {
				return true
			}
		}
	}
	return false
}
