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

// Package app 提供應用程式生命週期管理（App），負責統一啟動與關閉多個 Component。
package app

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"
)

const defaultGrace = 5 * time.Second

// App 是一個簡單的生命週期管理器，負責啟動所有註冊的 Component，並在收到 OS 信號、
// ctx 結束或任一 Component 發生錯誤時，協調優雅關閉。
// 關閉順序與註冊順序相同：先停 http，再停盤面。
type App struct {
	comps []Component
	grace time.Duration
}

// New 建立一個新的 App 實例。
func New() *App { return &App{grace: defaultGrace} }

// NewWith 是 New 的語法糖，允許在建立時直接註冊多個 Component。
func NewWith(comps ...Component) *App {
	app := New()
	for _, c := range comps {
		app.Register(c)
	}
	return app
}

// Register 註冊一個新的 Component。
func (a *App) Register(c Component) {
	a.comps = append(a.comps, c)
}

// SetGrace 設定優雅關閉的等待上限
func (a *App) SetGrace(d time.Duration) {
	if d > 0 {
		a.grace = d
	}
}

// Run 啟動所有 Component，直到收到 SIGINT / SIGTERM 或任一 Component 返回。
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return a.RunContext(ctx)
}

// RunContext 與 Run 相同，但由 ctx 決定何時結束。
func (a *App) RunContext(ctx context.Context) error {
	// errCh 用於收集任一 Component 首次返回的錯誤
	errCh := make(chan error, len(a.comps))
	for _, c := range a.comps {
		go func(c Component) {
			errCh <- c.Run()
		}(c)
	}

	var err error
	select {
	case <-ctx.Done():
	case err = <-errCh:
		// http.Server 被 Shutdown 時回傳 ErrServerClosed，不算錯誤
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
	}
	return errors.Join(err, a.gracefulShutdown(a.grace))
}

func (a *App) gracefulShutdown(td time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), td)
	defer cancel()
	var all []error
	for _, c := range a.comps {
		if err := c.Shutdown(ctx); err != nil {
			all = append(all, err)
		}
	}
	return errors.Join(all...)
}
