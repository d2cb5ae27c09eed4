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

// Package anim 提供 board.Presenter 的幾種實作。
package anim

import (
	"time"

	"github.com/zintix-labs/crystalab/sdk/board"
)

// Instant 沒有畫面，所有動畫立即完成。模擬器使用。
type Instant struct{}

func (Instant) Spawn(*board.Token, board.Vec2) {}

func (Instant) Move(_ *board.Token, _, _ board.Vec2, _ time.Duration, done func()) {
	done()
}

func (Instant) Hide(_ *board.Token, _ time.Duration, done func()) {
	done()
}

func (Instant) Refresh(*board.Token) {}

func (Instant) Destroy(*board.Token) {}
