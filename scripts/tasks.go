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

package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"reflect"
	"strings"
)

func cleanCache() error {
	cmd := exec.Command("go", "clean", "-testcache")
	cmd.Stdout, cmd.Stderr = os.Stdout, os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("go clean -testcache failed: %w", err)
	}
	return nil
}

// stream 執行指令並把 stdout/stderr 合併後逐行交給 line
func stream(line func(string), name string, args ...string) error {
	cmd := exec.Command(name, args...)
	out, err := cmd.StdoutPipe()
	if err != nil {
		return err
	}
	cmd.Stderr = cmd.Stdout
	if err := cmd.Start(); err != nil {
		return err
	}
	sc := bufio.NewScanner(out)
	for sc.Scan() {
		line(sc.Text())
	}
	if err := sc.Err(); err != nil && err != io.EOF {
		red(fmt.Sprintf("scanner error: %v", err))
	}
	return cmd.Wait()
}

func colorize(l string) bool {
	switch {
	case strings.HasPrefix(l, "ok"):
		green(l)
	case strings.HasPrefix(l, "FAIL"), strings.Contains(l, "build failed"), strings.Contains(l, "setup failed"):
		red(l)
	default:
		return false
	}
	return true
}

func runTest() error {
	green("running tests")
	if err := cleanCache(); err != nil {
		return err
	}
	if err := stream(func(l string) { colorize(l) }, "go", "test", "./...", "-cover", "-count=1"); err != nil {
		return fmt.Errorf("tests finished with errors: %w", err)
	}
	return nil
}

func runTestDetail() error {
	green("running tests (detail)")
	if err := cleanCache(); err != nil {
		return err
	}
	err := stream(func(l string) {
		if strings.Contains(l, "[no test files]") {
			return
		}
		if !colorize(l) {
			fmt.Println(l)
		}
	}, "go", "test", "./...", "-v", "-count=1")
	if err != nil {
		return fmt.Errorf("tests (detail) finished with errors: %w", err)
	}
	return nil
}

func runRace() error {
	green("running race tests")
	pkgs := []string{".", "./sdk/board/...", "./sdk/sched/...", "./sdk/anim/...", "./server/..."}
	args := append([]string{"test", "-race", "-count=1"}, pkgs...)
	if err := stream(func(l string) { colorize(l) }, "go", args...); err != nil {
		return fmt.Errorf("race tests finished with errors: %w", err)
	}
	return nil
}

// runEngines 以兩種引擎跑同一批盤面，Summary 除了 Engine 以外必須完全相同
func runEngines() error {
	green("comparing board / flat engines")
	sim := func(engine string) (map[string]any, error) {
		var buf bytes.Buffer
		cmd := exec.Command("go", "run", "./cmd/sim",
			"-preset", "classic", "-boards", "20", "-moves", "200", "-seed", "20251018",
			"-engine", engine, "-o", "json")
		cmd.Stdout, cmd.Stderr = &buf, os.Stderr
		if err := cmd.Run(); err != nil {
			return nil, fmt.Errorf("sim %s: %w", engine, err)
		}
		var rep struct {
			Summary map[string]any
			Dist    map[string]any
		}
		if err := json.Unmarshal(buf.Bytes(), &rep); err != nil {
			return nil, fmt.Errorf("sim %s output: %w", engine, err)
		}
		delete(rep.Summary, "Engine")
		rep.Summary["Dist"] = rep.Dist
		return rep.Summary, nil
	}
	b, err := sim("board")
	if err != nil {
		return err
	}
	f, err := sim("flat")
	if err != nil {
		return err
	}
	if !reflect.DeepEqual(b, f) {
		return fmt.Errorf("engines disagree:\n board: %v\n flat:  %v", b, f)
	}
	green("engines agree")
	return nil
}
