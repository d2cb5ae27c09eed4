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

package sampler

import (
	"github.com/zintix-labs/crystalab/errs"
	"github.com/zintix-labs/crystalab/sdk/core"
	"github.com/zintix-labs/crystalab/spec"
)

// KindPicker 依設定抽出新寶石的種類，實作 board.Picker。
// 沒有權重時均勻抽樣（一次 IntN），有權重時走 AliasTable。
type KindPicker struct {
	core  *core.Core
	kinds []spec.Kind
	table *AliasTable
}

// NewKindPicker 建立 KindPicker；weights 可為 nil，否則長度需與 kinds 相同。
func NewKindPicker(c *core.Core, kinds []spec.Kind, weights []int) (*KindPicker, error) {
	if c == nil {
		return nil, errs.NewFatal("kind picker: nil core")
	}
	if len(kinds) == 0 {
		return nil, errs.NewFatal("kind picker: empty kinds")
	}
	for _, k := range kinds {
		if !k.Valid() {
			return nil, errs.Fatalf("kind picker: invalid kind %d", k)
		}
	}
	kp := &KindPicker{core: c, kinds: append([]spec.Kind(nil), kinds...)}
	if len(weights) == 0 {
		return kp, nil
	}
	if len(weights) != len(kinds) {
		return nil, errs.Fatalf("kind picker: len(weights)=%d != len(kinds)=%d", len(weights), len(kinds))
	}
	table, err := BuildAliasTable(weights)
	if err != nil {
		return nil, errs.Wrap(err, "kind picker: build alias table")
	}
	kp.table = table
	return kp, nil
}

// FromSetting 依盤面設定建立 KindPicker
func FromSetting(c *core.Core, bs *spec.BoardSetting) (*KindPicker, error) {
	return NewKindPicker(c, bs.KindsUsed, bs.Weights)
}

// Pick 實作 board.Picker
func (kp *KindPicker) Pick() spec.Kind {
	if kp.table != nil {
		return kp.kinds[kp.table.Pick(kp.core)]
	}
	return kp.kinds[kp.core.IntN(len(kp.kinds))]
}

// Kinds 回傳可能抽出的種類
func (kp *KindPicker) Kinds() []spec.Kind {
	return kp.kinds
}
