package spec

import (
	"bytes"
	"encoding/json"

	"github.com/zintix-labs/crystalab/errs"
	"gopkg.in/yaml.v3"
)

// GetBoardSettingByYAML
// 嚴格讀取 YAML 設定（拼錯欄位即報錯）、補預設值並執行基本檢查後回傳。
func GetBoardSettingByYAML(data []byte) (*BoardSetting, error) {
	bs := &BoardSetting{}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(bs); err != nil {
		return nil, errs.Wrap(err, "failed to unmarshall yaml")
	}
	if err := bs.init(); err != nil {
		return nil, errs.Wrap(err, "board setting initialized err")
	}
	return bs, nil
}

// GetBoardSettingByJSON
// 會讀取 Json 設定、補預設值並執行基本檢查後回傳
func GetBoardSettingByJSON(data []byte) (*BoardSetting, error) {
	bs := &BoardSetting{}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(bs); err != nil {
		return nil, errs.Wrap(err, "can not unmarshall json byte")
	}
	if err := bs.init(); err != nil {
		return nil, errs.Wrap(err, "board setting initialized err")
	}
	return bs, nil
}

// DefaultBoardSetting 回傳 7x7、全種類、預設動畫參數的設定。
func DefaultBoardSetting() *BoardSetting {
	bs := &BoardSetting{Name: "default"}
	if err := bs.init(); err != nil {
		panic(err)
	}
	return bs
}
