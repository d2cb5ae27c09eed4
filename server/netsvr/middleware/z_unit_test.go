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

package middleware

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

var payload = strings.Repeat(`{"layout":["RGBYP","GBYPR"]}`, 64)

func jsonHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = io.WriteString(w, payload)
}

func TestCompressionZstd(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Encoding", "zstd, gzip")
	rec := httptest.NewRecorder()
	Compression(http.HandlerFunc(jsonHandler)).ServeHTTP(rec, req)

	if rec.Header().Get("Content-Encoding") != "zstd" {
		t.Fatalf("expected zstd, got %q", rec.Header().Get("Content-Encoding"))
	}
	dec, err := zstd.NewReader(rec.Body)
	if err != nil {
		t.Fatalf("zstd reader: %v", err)
	}
	defer dec.Close()
	got, err := io.ReadAll(dec)
	if err != nil || string(got) != payload {
		t.Fatalf("zstd round trip failed: err=%v len=%d", err, len(got))
	}
}

func TestCompressionGzip(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	rec := httptest.NewRecorder()
	Compression(http.HandlerFunc(jsonHandler)).ServeHTTP(rec, req)

	if rec.Header().Get("Content-Encoding") != "gzip" {
		t.Fatalf("expected gzip, got %q", rec.Header().Get("Content-Encoding"))
	}
	gr, err := gzip.NewReader(rec.Body)
	if err != nil {
		t.Fatalf("gzip reader: %v", err)
	}
	got, err := io.ReadAll(gr)
	if err != nil || string(got) != payload {
		t.Fatalf("gzip round trip failed: err=%v len=%d", err, len(got))
	}
}

func TestCompressionNoContent(t *testing.T) {
	req := httptest.NewRequest(http.MethodDelete, "/", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	rec := httptest.NewRecorder()
	Compression(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})).ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent || rec.Body.Len() != 0 || rec.Header().Get("Content-Encoding") != "" {
		t.Fatalf("204 should stay empty: code=%d len=%d enc=%q", rec.Code, rec.Body.Len(), rec.Header().Get("Content-Encoding"))
	}
}

func TestAccessLogFields(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&buf, nil))
	h := RequestID(AccessLog(log)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = io.WriteString(w, "busy")
	})))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/v1/tables", nil))

	out := buf.String()
	for _, want := range []string{`"msg":"http.access"`, `"status":409`, `"bytes":4`, `"level":"WARN"`, `"req_id":"`} {
		if !strings.Contains(out, want) {
			t.Fatalf("access log missing %s: %s", want, out)
		}
	}
}

func TestAcceptsEncoding(t *testing.T) {
	cases := []struct {
		header, name string
		want         bool
	}{
		{"gzip, deflate, br", "gzip", true},
		{"zstd;q=0.5, gzip", "zstd", true},
		{"zstd;q=0, gzip", "zstd", false},
		{"GZIP", "gzip", true},
		{"xgzip", "gzip", false},
		{"", "gzip", false},
	}
	for _, c := range cases {
		if got := accepts(c.header, c.name); got != c.want {
			t.Fatalf("accepts(%q, %q) got %v", c.header, c.name, got)
		}
	}

	// zstd 被明確拒絕時退回 gzip
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Encoding", "zstd;q=0, gzip")
	rec := httptest.NewRecorder()
	Compression(http.HandlerFunc(jsonHandler)).ServeHTTP(rec, req)
	if rec.Header().Get("Content-Encoding") != "gzip" {
		t.Fatalf("expected gzip fallback, got %q", rec.Header().Get("Content-Encoding"))
	}
}
