package stats

import (
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"
	"github.com/zintix-labs/crystalab/spec"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gonum.org/v1/gonum/stat/distuv"
)

var lang language.Tag = language.English

// 信賴區間
type CI struct {
	Lo float64 `json:"Lo" yaml:"Lo"`
	Hi float64 `json:"Hi" yaml:"Hi"`
}

// CascadeReport 連鎖模擬統計報告
type CascadeReport struct {
	Summary *SummaryReport `json:"Summary" yaml:"Summary"`
	Depth   *MomentReport  `json:"Depth"   yaml:"Depth"`
	Removed *MomentReport  `json:"Removed" yaml:"Removed"`
	Dist    *DistReport    `json:"Dist"    yaml:"Dist"`
	isDone  bool
}

type SummaryReport struct {
	BoardName    string   `json:"BoardName"    yaml:"BoardName"`
	BoardID      spec.BID `json:"BoardID"      yaml:"BoardID"`
	Engine       string   `json:"Engine"       yaml:"Engine"`
	Boards       int      `json:"Boards"       yaml:"Boards"`
	Moves        int      `json:"Moves"        yaml:"Moves"`
	Hits         int      `json:"Hits"         yaml:"Hits"`
	NoopMoves    int      `json:"NoopMoves"    yaml:"NoopMoves"`
	Stuck        int      `json:"Stuck"        yaml:"Stuck"`
	HitRate      float64  `json:"HitRate"      yaml:"HitRate"`
	HitRateCI    CI       `json:"HitRateCI"    yaml:"HitRateCI"`
	TotalRemoved int      `json:"TotalRemoved" yaml:"TotalRemoved"`
	TotalSpawned int      `json:"TotalSpawned" yaml:"TotalSpawned"`
	MaxDepth     int      `json:"MaxDepth"     yaml:"MaxDepth"`
}

// MomentReport 單一計數（每步連鎖深度、每步消除數）的一階二階統計
//
// 紀錄時只累加 Sum 與 SqSum，Done() 才計算 Mean / Std / CI
type MomentReport struct {
	Sum   int     `json:"Sum"   yaml:"Sum"`
	SqSum int     `json:"SqSum" yaml:"SqSum"` // 平方和
	Mean  float64 `json:"Mean"  yaml:"Mean"`
	Std   float64 `json:"Std"   yaml:"Std"`
	CI    CI      `json:"CI"    yaml:"CI"`
}

// DistReport 連鎖深度分桶統計
type DistReport struct {
	DepthBucket  []string  `json:"DepthBucket"  yaml:"DepthBucket"`
	DepthCollect []int     `json:"DepthCollect" yaml:"DepthCollect"`
	DepthDist    []float64 `json:"DepthDist"    yaml:"DepthDist"`
}

// ============================================================
// ** 公開方法 **
// ============================================================

// Done 將累積計數轉換為最終統計結果並鎖定 isDone 標記。
//
// 模擬過程因為性能原因只累加 int，統計完成後請呼叫 Done 一次性計算結果
func (s *CascadeReport) Done() {
	if s.isDone {
		return
	}
	n := s.Summary.Moves
	s.Summary.NoopMoves = n - s.Summary.Hits
	s.Summary.HitRate, s.Summary.HitRateCI = proportionCICP(s.Summary.Hits, n, 0.95)
	s.Depth.done(n)
	s.Removed.done(n)

	L := len(s.Dist.DepthCollect)
	s.Dist.DepthDist = make([]float64, L)
	if n > 0 {
		for i, c := range s.Dist.DepthCollect {
			s.Dist.DepthDist[i] = float64(c) / float64(n)
		}
	}
	s.isDone = true
}

// MeanDepth 回傳每步平均連鎖深度
func (s *CascadeReport) MeanDepth() float64 {
	if s.Summary.Moves == 0 {
		return 0
	}
	return float64(s.Depth.Sum) / float64(s.Summary.Moves)
}

// Deep 回傳連鎖深度 >= depth 的步數
func (s *CascadeReport) Deep(depth int) int {
	from := Depths.Index(depth)
	k := 0
	for i := from; i < len(s.Dist.DepthCollect); i++ {
		k += s.Dist.DepthCollect[i]
	}
	return k
}

func (s *CascadeReport) WriteWith(w io.Writer, rep CascadeReportRender) error {
	s.Done()
	return rep.Write(w, s)
}

func (s *CascadeReport) StdOut(ut time.Duration) {
	s.Done()
	formatDuration(ut, s.Summary.Moves)
	sk, sm := s.fmtBasic()
	fmt.Println(fmtTable(s.Summary.BoardName, sk, sm))
	dk, dm := s.fmtDist()
	fmt.Println(fmtTable("Depth Distribution", dk, dm))
}

// ============================================================
// ** 內部方法 **
// ============================================================

// done 以 n 個樣本計算平均、樣本標準差與 Student-t 95% 信賴區間
func (m *MomentReport) done(n int) {
	if n == 0 {
		return
	}
	rounds := float64(n)
	sum := float64(m.Sum)
	m.Mean = sum / rounds
	if n < 2 {
		m.CI = CI{Lo: m.Mean, Hi: m.Mean}
		return
	}
	variance := (float64(m.SqSum) - sum*sum/rounds) / (rounds - 1)
	if variance < 0 {
		variance = 0
	}
	m.Std = math.Sqrt(variance)
	t := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: rounds - 1}.Quantile(0.975)
	se := m.Std / math.Sqrt(rounds)
	m.CI = CI{Lo: max(m.Mean-t*se, 0.0), Hi: m.Mean + t*se}
}

func formatDuration(d time.Duration, moves int) {
	p := message.NewPrinter(lang)
	if d < 0 {
		d = -d
	}
	sec := d.Seconds()
	if sec <= 0 {
		sec = 1e-9
	}
	mps := int(float64(moves) / sec)
	if sec < 60.0 {
		p.Printf("used: %.2f seconds\nmps : %d moves/sec\n", sec, mps)
		return
	}
	s := int(d.Seconds()) % 60
	m := int(d.Minutes()) % 60
	h := int(d.Hours())
	if h == 0 {
		p.Printf("used: %dm %ds\nmps : %d moves/sec\n", m, s, mps)
		return
	}
	p.Printf("used: %dh:%dm:%ds\nmps : %d moves/sec\n", h, m, s, mps)
}

func (s *CascadeReport) fmtBasic() ([]string, map[string]string) {
	p := message.NewPrinter(lang)
	basic := map[string]string{
		"Board Name":    p.Sprintf("%s", s.Summary.BoardName),
		"Board ID":      fmt.Sprintf("%d", s.Summary.BoardID),
		"Engine":        s.Summary.Engine,
		"Boards":        p.Sprintf("%d", s.Summary.Boards),
		"Total Moves":   p.Sprintf("%d", s.Summary.Moves),
		"Hit Rate":      p.Sprintf("%.2f %%", 100.0*s.Summary.HitRate),
		"Hit 95% CI":    p.Sprintf("[%.2f%%,%.2f%%]", 100.0*s.Summary.HitRateCI.Lo, 100.0*s.Summary.HitRateCI.Hi),
		"Noop Moves":    p.Sprintf("%d", s.Summary.NoopMoves),
		"Stuck":         p.Sprintf("%d", s.Summary.Stuck),
		"Mean Depth":    p.Sprintf("%.4f", s.Depth.Mean),
		"Depth 95% CI":  p.Sprintf("[%.4f,%.4f]", s.Depth.CI.Lo, s.Depth.CI.Hi),
		"Depth STD":     p.Sprintf("%.3f", s.Depth.Std),
		"Max Depth":     p.Sprintf("%d", s.Summary.MaxDepth),
		"Mean Removed":  p.Sprintf("%.3f", s.Removed.Mean),
		"Total Removed": p.Sprintf("%d", s.Summary.TotalRemoved),
		"Total Spawned": p.Sprintf("%d", s.Summary.TotalSpawned),
	}
	keys := []string{"Board Name", "Board ID", "Engine", "Boards", "Total Moves", "Hit Rate", "Hit 95% CI", "Noop Moves", "Stuck", "Mean Depth", "Depth 95% CI", "Depth STD", "Max Depth", "Mean Removed", "Total Removed", "Total Spawned"}
	return keys, basic
}

func (s *CascadeReport) fmtDist() ([]string, map[string]string) {
	p := message.NewPrinter(lang)
	keys := make([]string, 0, len(s.Dist.DepthBucket))
	msg := make(map[string]string, len(s.Dist.DepthBucket))
	for i, label := range s.Dist.DepthBucket {
		keys = append(keys, label)
		msg[label] = p.Sprintf("%d (%.2f%%)", s.Dist.DepthCollect[i], 100.0*s.Dist.DepthDist[i])
	}
	return keys, msg
}

func fmtTable(title string, keys []string, msg map[string]string) string {
	p := message.NewPrinter(lang)
	maxKeyLen := 0
	maxValLen := 0
	for k, m := range msg {
		if w := runewidth.StringWidth(k); w > maxKeyLen {
			maxKeyLen = w
		}
		if w := runewidth.StringWidth(m); w > maxValLen {
			maxValLen = w
		}
	}
	maxKeyLen += 2
	maxValLen += 2

	divider := "+" + strings.Repeat("-", maxKeyLen) + "+" + strings.Repeat("-", maxValLen) + "+\n"
	top := "+" + strings.Repeat("-", maxKeyLen+1+maxValLen) + "+\n"

	totalInner := maxKeyLen + maxValLen + 1
	titleW := runewidth.StringWidth(title)
	left := max((totalInner-titleW)/2, 0)
	right := max(totalInner-titleW-left, 0)

	var sb strings.Builder
	sb.WriteString(top)
	sb.WriteString(p.Sprintf("|%s%s%s|\n", blank(left), title, blank(right)))
	sb.WriteString(divider)
	for _, k := range keys {
		sb.WriteString(p.Sprintf("| %s%s | %s%s |\n", k, blank(maxKeyLen-2-runewidth.StringWidth(k)), msg[k], blank(maxValLen-2-runewidth.StringWidth(msg[k]))))
	}
	sb.WriteString(divider)
	return sb.String()
}

func blank(w int) string {
	if w < 1 {
		return ""
	}
	return strings.Repeat(" ", w)
}
