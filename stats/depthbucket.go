package stats

import "fmt"

// DepthBuckets
//
// 用來快速定位連鎖深度 -> DistRecord 位置 O(1)
//
// 請勿修改預設值
//   - 深度區間: [0], [1], [2], [3], [4,6), [6,10), [10,+inf)
type DepthBuckets struct {
	bounds []int
	labels []string
	lut    []int
}

// Depths 是所有報表共用的連鎖深度分桶
var Depths = newDepthBuckets([]int{0, 1, 2, 3, 4, 6, 10})

// newDepthBuckets 以遞增的下界建立分桶，最後一個下界以上全部歸入最後一桶
func newDepthBuckets(bounds []int) *DepthBuckets {
	b := &DepthBuckets{bounds: bounds}
	for i, lo := range bounds {
		switch {
		case i == len(bounds)-1:
			b.labels = append(b.labels, fmt.Sprintf("[%d,+inf)", lo))
		case bounds[i+1] == lo+1:
			b.labels = append(b.labels, fmt.Sprintf("[%d]", lo))
		default:
			b.labels = append(b.labels, fmt.Sprintf("[%d,%d)", lo, bounds[i+1]))
		}
	}
	// LUT 反查表：lut[depth] = idx
	last := bounds[len(bounds)-1]
	b.lut = make([]int, last)
	idx := 0
	for d := 0; d < last; d++ {
		for idx+1 < len(bounds) && d >= bounds[idx+1] {
			idx++
		}
		b.lut[d] = idx
	}
	return b
}

func (b *DepthBuckets) Labels() []string {
	return b.labels
}

func (b *DepthBuckets) Len() int {
	return len(b.labels)
}

// Index 回傳 depth 所屬的分桶，負值視為 0
func (b *DepthBuckets) Index(depth int) int {
	if depth < 0 {
		return 0
	}
	if depth >= len(b.lut) {
		return len(b.labels) - 1
	}
	return b.lut[depth]
}
