package ops

// ShiftIndex 回傳 i 位移 delta 後在長度 n 的環上的位置，結果落在 [0,n)
func ShiftIndex(i int, delta int, n int) int {
	if n <= 0 {
		return 0
	}
	j := (i + delta) % n
	if j < 0 {
		j += n
	}
	return j
}

// LineIndices 回傳一整列 (vertical=false) 或一整行 (vertical=true) 的 row-major index
func LineIndices(cols int, rows int, vertical bool, index int, dst []int) []int {
	dst = dst[:0]
	if vertical {
		for r := 0; r < rows; r++ {
			dst = append(dst, r*cols+index)
		}
		return dst
	}
	for c := 0; c < cols; c++ {
		dst = append(dst, index*cols+c)
	}
	return dst
}

// Rotate 把 screen 上 line 所列的位置循環位移 delta：原第 i 格的值移到第 ShiftIndex(i,delta) 格
func Rotate(screen []int16, line []int, delta int, tmp []int16) []int16 {
	tmp = tmp[:0]
	for _, idx := range line {
		tmp = append(tmp, screen[idx])
	}
	n := len(line)
	for i, v := range tmp {
		screen[line[ShiftIndex(i, delta, n)]] = v
	}
	return tmp
}
