package middleware

import (
	"bufio"
	"errors"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// CompressConfig 壓縮等級設定
type CompressConfig struct {
	GzipLevel int
	ZstdLevel zstd.EncoderLevel
}

// 盤面回應多半是小 JSON，取最快的等級
var DefaultCompressConfig = CompressConfig{
	GzipLevel: gzip.BestSpeed,
	ZstdLevel: zstd.SpeedFastest,
}

// compressor 是 gzip.Writer 與 zstd.Encoder 共同的操作
type compressor interface {
	io.Writer
	Flush() error
	Close() error
	Reset(w io.Writer)
}

// codec 依 Content-Encoding 名稱持有一組可重用的壓縮器
type codec struct {
	name string
	pool sync.Pool
}

func (c *codec) get(w io.Writer) compressor {
	cw := c.pool.Get().(compressor)
	cw.Reset(w)
	return cw
}

// put 收尾並歸還；discard 時 footer 寫到 io.Discard，不污染 204/304 回應
func (c *codec) put(cw compressor, discard bool) {
	if discard {
		cw.Reset(io.Discard)
	}
	_ = cw.Close()
	c.pool.Put(cw)
}

// newCodecs 依偏好順序回傳：zstd 優先，其次 gzip
func newCodecs(cfg CompressConfig) []*codec {
	zs := &codec{name: "zstd"}
	zs.pool.New = func() any {
		zw, err := zstd.NewWriter(nil,
			zstd.WithEncoderLevel(cfg.ZstdLevel),
			zstd.WithEncoderConcurrency(1),
		)
		if err != nil {
			panic(err)
		}
		return zw
	}
	gz := &codec{name: "gzip"}
	gz.pool.New = func() any {
		gw, err := gzip.NewWriterLevel(nil, cfg.GzipLevel)
		if err != nil {
			return gzip.NewWriter(nil)
		}
		return gw
	}
	return []*codec{zs, gz}
}

// accepts 判斷 Accept-Encoding 是否接受 name；q=0 視為拒絕
func accepts(header, name string) bool {
	for _, part := range strings.Split(header, ",") {
		token, params, _ := strings.Cut(strings.TrimSpace(part), ";")
		if !strings.EqualFold(strings.TrimSpace(token), name) {
			continue
		}
		for _, p := range strings.Split(params, ";") {
			k, v, ok := strings.Cut(strings.TrimSpace(p), "=")
			if !ok || strings.TrimSpace(k) != "q" {
				continue
			}
			if q, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil && q <= 0 {
				return false
			}
		}
		return true
	}
	return false
}

func isUpgrade(r *http.Request) bool {
	return r.Header.Get("Upgrade") != "" ||
		strings.Contains(strings.ToLower(r.Header.Get("Connection")), "upgrade")
}

// 1xx / 204 / 304 沒有 body
func isNoBodyStatus(code int) bool {
	return (code >= 100 && code < 200) || code == http.StatusNoContent || code == http.StatusNotModified
}

type compressResponseWriter struct {
	http.ResponseWriter
	w        compressor
	disabled bool // 回應沒有 body 時改為直寫
}

func (cw *compressResponseWriter) Write(b []byte) (int, error) {
	if cw.disabled {
		return cw.ResponseWriter.Write(b)
	}
	h := cw.Header()
	h.Del("Content-Length")
	if h.Get("Content-Type") == "" {
		h.Set("Content-Type", http.DetectContentType(b))
	}
	return cw.w.Write(b)
}

func (cw *compressResponseWriter) WriteHeader(code int) {
	h := cw.Header()
	h.Del("Content-Length")
	if isNoBodyStatus(code) {
		cw.disabled = true
		h.Del("Content-Encoding")
		h.Del("Vary")
	}
	cw.ResponseWriter.WriteHeader(code)
}

func (cw *compressResponseWriter) Flush() {
	if !cw.disabled {
		_ = cw.w.Flush()
	}
	if f, ok := cw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (cw *compressResponseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := cw.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("underlying response writer does not support Hijacker")
	}
	return hj.Hijack()
}

// CompressionWith 依 cfg 建立壓縮 middleware；HEAD、Upgrade 與已編碼的回應不處理
func CompressionWith(cfg CompressConfig) func(http.Handler) http.Handler {
	codecs := newCodecs(cfg)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodHead || isUpgrade(r) || w.Header().Get("Content-Encoding") != "" {
				next.ServeHTTP(w, r)
				return
			}
			ae := r.Header.Get("Accept-Encoding")
			for _, c := range codecs {
				if !accepts(ae, c.name) {
					continue
				}
				w.Header().Set("Content-Encoding", c.name)
				w.Header().Add("Vary", "Accept-Encoding")
				cw := &compressResponseWriter{ResponseWriter: w, w: c.get(w)}
				defer func() { c.put(cw.w, cw.disabled) }()
				next.ServeHTTP(cw, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

var defaultCompression = CompressionWith(DefaultCompressConfig)

// Compression 以 DefaultCompressConfig 壓縮回應
func Compression(next http.Handler) http.Handler {
	return defaultCompression(next)
}
