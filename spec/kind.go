package spec

import "strings"

// Kind 是寶石種類。0 保留給「無寶石」，平面盤面（[]int16）以 0 表示空格。
type Kind int16

const (
	None Kind = iota
	Red
	Green
	Blue
	Yellow
	Purple
	Orange

	kindEnd
)

var kindNames = [...]string{"none", "red", "green", "blue", "yellow", "purple", "orange"}

// 版面字元：每種寶石一個大寫字母，'.' 代表空格
var kindLetters = [...]byte{'.', 'R', 'G', 'B', 'Y', 'P', 'O'}

// AllKinds 回傳所有可出現在盤面上的種類（不含 None）。
func AllKinds() []Kind {
	out := make([]Kind, 0, kindEnd-1)
	for k := Red; k < kindEnd; k++ {
		out = append(out, k)
	}
	return out
}

// Valid 回報 k 是否為盤面上可出現的種類。
func (k Kind) Valid() bool { return k > None && k < kindEnd }

func (k Kind) String() string {
	if k < None || k >= kindEnd {
		return "unknown"
	}
	return kindNames[k]
}

// Letter 回傳版面字元，未知種類回傳 '?'。
func (k Kind) Letter() byte {
	if k < None || k >= kindEnd {
		return '?'
	}
	return kindLetters[k]
}

// ParseKind 依名稱（不分大小寫）或單一版面字元解析種類。
func ParseKind(s string) (Kind, bool) {
	if len(s) == 1 {
		return KindByLetter(s[0])
	}
	ls := strings.ToLower(s)
	for i, n := range kindNames {
		if n == ls {
			return Kind(i), true
		}
	}
	return None, false
}

// KindByLetter 依版面字元解析種類，'.' 解析為 None。
func KindByLetter(b byte) (Kind, bool) {
	if b >= 'a' && b <= 'z' {
		b -= 'a' - 'A'
	}
	for i, l := range kindLetters {
		if l == b {
			return Kind(i), true
		}
	}
	return None, false
}

// Axis 表示捲動的方向。
type Axis uint8

const (
	// Horizontal 捲動一整列（row），沿 col 方向位移
	Horizontal Axis = iota
	// Vertical 捲動一整行（column），沿 row 方向位移
	Vertical
)

func (a Axis) String() string {
	if a == Vertical {
		return "vertical"
	}
	return "horizontal"
}

// ParseAxis 接受 "row"/"horizontal" 與 "col"/"column"/"vertical"。
func ParseAxis(s string) (Axis, bool) {
	switch strings.ToLower(s) {
	case "row", "horizontal", "h":
		return Horizontal, true
	case "col", "column", "vertical", "v":
		return Vertical, true
	}
	return Horizontal, false
}
