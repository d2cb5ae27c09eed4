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

package logger

import (
	"bytes"
	"log/slog"
	"strings"
	"sync"
	"testing"
)

type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestAsyncHandlerDrainsOnClose(t *testing.T) {
	out := new(lockedBuffer)
	ah := NewAsyncHandler(slog.NewTextHandler(out, nil), 64)
	log := slog.New(ah).With(slog.String("table", "t1"))

	for i := 0; i < 10; i++ {
		log.Info("swap", slog.Int("n", i))
	}
	Drain(log)
	Drain(log)

	if got := strings.Count(out.String(), "msg=swap"); got != 10 {
		t.Fatalf("expected 10 records, got %d:\n%s", got, out.String())
	}
	if !strings.Contains(out.String(), "table=t1") {
		t.Fatalf("attrs lost:\n%s", out.String())
	}
	if ah.Written() != 10 || ah.Dropped() != 0 {
		t.Fatalf("written=%d dropped=%d", ah.Written(), ah.Dropped())
	}

	log.Info("late")
	if ah.Dropped() != 1 || strings.Contains(out.String(), "late") {
		t.Fatalf("records after Close should be dropped")
	}
}

func TestParseMode(t *testing.T) {
	cases := map[string]LogMode{
		"":            ModeDev,
		"dev":         ModeDev,
		"ModeProd":    ModeProd,
		" PROD ":      ModeProd,
		"silence":     ModeSilence,
		"modeSilence": ModeSilence,
	}
	for in, want := range cases {
		got, err := ParseMode(in)
		if err != nil || got != want {
			t.Fatalf("ParseMode(%q) got %v err %v", in, got, err)
		}
	}
	if _, err := ParseMode("verbose"); err == nil {
		t.Fatalf("unknown mode should fail")
	}
	if ModeProd.String() != "prod" {
		t.Fatalf("mode name got %q", ModeProd.String())
	}
}
