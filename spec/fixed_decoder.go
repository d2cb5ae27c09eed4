package spec

import (
	"bytes"

	"github.com/zintix-labs/crystalab/errs"
	"gopkg.in/yaml.v3"
)

// DecodeExtra 把 bs.Extra[key] 由 map[string]any 轉成呼叫端自訂的型別。
// 鍵不存在時 out 保持原值並回傳 false。
func DecodeExtra[T any](bs *BoardSetting, key string, out *T) (bool, error) {
	raw, ok := bs.Extra[key]
	if !ok {
		return false, nil
	}
	b, err := yaml.Marshal(raw)
	if err != nil {
		return false, errs.Wrap(err, "spec.fixed_decoder : marshal failed")
	}
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true) // 嚴格檢查：多寫/拼錯欄位就報錯
	if err = dec.Decode(out); err != nil {
		return false, errs.Wrap(err, "spec.fixed_decoder : decode failed")
	}
	return true, nil
}
