package catalog

import (
	"fmt"
	"io/fs"
	"path"
	"slices"
	"strings"

	"github.com/zintix-labs/crystalab/errs"
	"github.com/zintix-labs/crystalab/spec"
)

var (
	ErrDupID   = errs.NewFatal("duplicate board id")
	ErrDupName = errs.NewFatal("duplicate board name")
)

// Entry 對應一份盤面設定檔
type Entry struct {
	ID   spec.BID
	Name string
	File string
}

// Summary 是對外列出的盤面摘要
type Summary struct {
	ID    spec.BID `json:"id"     yaml:"id"`
	Name  string   `json:"name"   yaml:"name"`
	Rows  int      `json:"rows"   yaml:"rows"`
	Cols  int      `json:"cols"   yaml:"cols"`
	Kinds []string `json:"kinds"  yaml:"kinds"`
	Fixed bool     `json:"fixed"  yaml:"fixed"`
}

// Catalog 是盤面設定的索引。設定檔可來自多個平面 fs.FS（embed 或 os.DirFS）。
type Catalog struct {
	byID   map[spec.BID]Entry
	byName map[string]Entry
	files  map[string]struct{}
	ids    []spec.BID
	src    *multiFS
	frozen bool
}

func New(cfg ...fs.FS) (*Catalog, error) {
	m, err := newMultiFS(cfg...)
	if err != nil {
		return nil, errs.Wrap(err, "can not create catalog")
	}
	return &Catalog{
		byID:   map[spec.BID]Entry{},
		byName: map[string]Entry{},
		files:  map[string]struct{}{},
		src:    m,
	}, nil
}

func normName(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

// Register 登記 entries，任何一筆失敗則整批不生效。
func (c *Catalog) Register(entries ...Entry) error {
	if c.frozen {
		return errs.NewWarn("can not register when catalog already frozen")
	}
	seenID := map[spec.BID]struct{}{}
	seenName := map[string]struct{}{}
	for i := range entries {
		e := &entries[i]
		e.Name = normName(e.Name)
		if e.Name == "" {
			return errs.NewFatal("board name required")
		}
		if err := validFileName(e.File); err != nil {
			return err
		}
		if _, ok := c.src.index[e.File]; !ok {
			return errs.NewFatal(fmt.Sprintf("config file not found: %s", e.File))
		}
		if _, ok := c.files[e.File]; ok {
			return errs.NewFatal(fmt.Sprintf("duplicate config name: %s", e.File))
		}
		_, dupID := c.byID[e.ID]
		_, dupBatch := seenID[e.ID]
		if dupID || dupBatch {
			return ErrDupID
		}
		_, dupName := c.byName[e.Name]
		_, dupBatchName := seenName[e.Name]
		if dupName || dupBatchName {
			return ErrDupName
		}
		seenID[e.ID] = struct{}{}
		seenName[e.Name] = struct{}{}
	}
	for _, e := range entries {
		c.files[e.File] = struct{}{}
		c.byID[e.ID] = e
		c.byName[e.Name] = e
		c.ids = append(c.ids, e.ID)
	}
	slices.Sort(c.ids)
	return nil
}

// Discover 解析所有尚未登記的設定檔，以檔內的 id / name 登記。
func (c *Catalog) Discover() error {
	var entries []Entry
	for _, file := range c.src.names() {
		if _, ok := c.files[file]; ok {
			continue
		}
		bs, err := c.load(file)
		if err != nil {
			return errs.WrapWithExtra(err, "catalog discover failed", file)
		}
		entries = append(entries, Entry{ID: bs.ID, Name: bs.Name, File: file})
	}
	if len(entries) == 0 {
		return nil
	}
	return c.Register(entries...)
}

func (c *Catalog) GetByID(id spec.BID) (Entry, bool) {
	e, ok := c.byID[id]
	return e, ok
}

func (c *Catalog) GetByName(name string) (Entry, bool) {
	e, ok := c.byName[normName(name)]
	return e, ok
}

func (c *Catalog) IDs() []spec.BID {
	return slices.Clone(c.ids)
}

func (c *Catalog) All() []Entry {
	out := make([]Entry, 0, len(c.ids))
	for _, id := range c.ids {
		out = append(out, c.byID[id])
	}
	return out
}

func (c *Catalog) Freeze() { c.frozen = true }

func (c *Catalog) IsFrozen() bool { return c.frozen }

// SettingByID 讀取並解析設定檔
func (c *Catalog) SettingByID(id spec.BID) (*spec.BoardSetting, error) {
	e, ok := c.GetByID(id)
	if !ok {
		return nil, errs.WrapWithExtra(errs.ErrNotFound, "board id not in catalog", fmt.Sprint(id))
	}
	return c.load(e.File)
}

// SettingByName 讀取並解析設定檔
func (c *Catalog) SettingByName(name string) (*spec.BoardSetting, error) {
	e, ok := c.GetByName(name)
	if !ok {
		return nil, errs.WrapWithExtra(errs.ErrNotFound, "board name not in catalog", name)
	}
	return c.load(e.File)
}

// Summaries 依 id 排序回傳所有盤面摘要
func (c *Catalog) Summaries() ([]Summary, error) {
	out := make([]Summary, 0, len(c.ids))
	for _, id := range c.ids {
		bs, err := c.SettingByID(id)
		if err != nil {
			return nil, err
		}
		kinds := make([]string, 0, len(bs.KindsUsed))
		for _, k := range bs.KindsUsed {
			kinds = append(kinds, k.String())
		}
		out = append(out, Summary{ID: id, Name: bs.Name, Rows: bs.Rows, Cols: bs.Cols, Kinds: kinds, Fixed: len(bs.Layout) > 0})
	}
	return out, nil
}

func (c *Catalog) load(file string) (*spec.BoardSetting, error) {
	src, ok := c.src.get(file)
	if !ok {
		return nil, errs.WrapWithExtra(errs.ErrNotFound, "config file not in catalog", file)
	}
	raw, err := fs.ReadFile(src, file)
	if err != nil {
		return nil, errs.Wrap(err, "catalog read file error")
	}
	switch strings.ToLower(path.Ext(file)) {
	case ".yaml", ".yml":
		return spec.GetBoardSettingByYAML(raw)
	case ".json":
		return spec.GetBoardSettingByJSON(raw)
	}
	return nil, errs.NewFatal(fmt.Sprintf("unsupported config format: %q", file))
}

func isConfig(name string) bool {
	switch strings.ToLower(path.Ext(name)) {
	case ".yaml", ".yml", ".json":
		return true
	}
	return false
}

func validFileName(file string) error {
	switch {
	case file == "":
		return errs.NewFatal("empty config filename")
	case strings.ContainsAny(file, `/\:`):
		return errs.NewFatal(fmt.Sprintf("invalid config filename: %q (must be a basename)", file))
	case strings.HasPrefix(file, "."):
		return errs.NewFatal(fmt.Sprintf("invalid config filename: %q (cannot start with '.')", file))
	case !isConfig(file):
		return errs.NewFatal(fmt.Sprintf("invalid config filename: %q (must end with .yaml, .yml, or .json)", file))
	}
	return nil
}

// multiFS 把多個平面 fs.FS 合成一個以檔名索引的來源
type multiFS struct {
	src   []fs.FS
	index map[string]int
}

func newMultiFS(src ...fs.FS) (*multiFS, error) {
	if len(src) == 0 {
		return nil, errs.NewFatal("no fs provided")
	}
	m := &multiFS{src: src, index: make(map[string]int)}
	for i, s := range src {
		if s == nil {
			return nil, errs.NewFatal(fmt.Sprintf("fs[%d] is nil", i))
		}
		ents, err := fs.ReadDir(s, ".")
		if err != nil {
			return nil, errs.Wrap(err, fmt.Sprintf("read fs[%d]", i))
		}
		for _, d := range ents {
			if d.IsDir() {
				return nil, errs.NewFatal(fmt.Sprintf("config FS must be flat (no subdirectories): %q", d.Name()))
			}
			if !isConfig(d.Name()) {
				continue
			}
			if prev, ok := m.index[d.Name()]; ok {
				return nil, errs.NewFatal(fmt.Sprintf("duplicate config %q in fs[%d] and fs[%d]", d.Name(), prev, i))
			}
			m.index[d.Name()] = i
		}
	}
	return m, nil
}

func (m *multiFS) get(name string) (fs.FS, bool) {
	i, ok := m.index[name]
	if !ok {
		return nil, false
	}
	return m.src[i], true
}

func (m *multiFS) names() []string {
	out := make([]string, 0, len(m.index))
	for n := range m.index {
		out = append(out, n)
	}
	slices.Sort(out)
	return out
}
