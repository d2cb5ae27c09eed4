package catalog

import (
	"errors"
	"testing"
	"testing/fstest"

	"github.com/zintix-labs/crystalab/errs"
)

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"classic.yaml": {Data: []byte("name: Classic\nid: 1\n")},
		"tiny.json":    {Data: []byte(`{"name":"tiny","id":2,"rows":3,"cols":3,"kinds":["red","green","blue"]}`)},
		"README.md":    {Data: []byte("ignored")},
	}
}

func TestDiscoverAndLookup(t *testing.T) {
	c, err := New(testFS())
	if err != nil {
		t.Fatalf("new catalog: %v", err)
	}
	if err := c.Discover(); err != nil {
		t.Fatalf("discover: %v", err)
	}
	if ids := c.IDs(); len(ids) != 2 || ids[0] != 1 || ids[1] != 2 {
		t.Fatalf("unexpected ids: %v", ids)
	}
	e, ok := c.GetByName("  CLASSIC ")
	if !ok || e.File != "classic.yaml" {
		t.Fatalf("lookup by name failed: %+v %v", e, ok)
	}
	bs, err := c.SettingByID(2)
	if err != nil || bs.Rows != 3 || len(bs.KindsUsed) != 3 {
		t.Fatalf("unexpected setting: %+v %v", bs, err)
	}
	sums, err := c.Summaries()
	if err != nil || len(sums) != 2 || sums[0].Rows != 7 {
		t.Fatalf("unexpected summaries: %+v %v", sums, err)
	}
	if _, err := c.SettingByID(9); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := c.Discover(); err != nil {
		t.Fatalf("second discover should be a no-op: %v", err)
	}
}

func TestRegisterConflicts(t *testing.T) {
	c, err := New(testFS())
	if err != nil {
		t.Fatalf("new catalog: %v", err)
	}
	if err := c.Register(Entry{ID: 1, Name: "a", File: "classic.yaml"}, Entry{ID: 1, Name: "b", File: "tiny.json"}); !errors.Is(err, ErrDupID) {
		t.Fatalf("expected ErrDupID, got %v", err)
	}
	if len(c.IDs()) != 0 {
		t.Fatalf("failed batch must not register anything")
	}
	if err := c.Register(Entry{ID: 1, Name: "a", File: "missing.yaml"}); err == nil {
		t.Fatalf("expected missing file error")
	}
	if err := c.Register(Entry{ID: 1, Name: "a", File: "../x.yaml"}); err == nil {
		t.Fatalf("expected invalid filename error")
	}
	if err := c.Register(Entry{ID: 1, Name: "a", File: "classic.yaml"}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := c.Register(Entry{ID: 2, Name: "A", File: "tiny.json"}); !errors.Is(err, ErrDupName) {
		t.Fatalf("expected ErrDupName, got %v", err)
	}
	c.Freeze()
	if err := c.Register(Entry{ID: 3, Name: "c", File: "tiny.json"}); err == nil {
		t.Fatalf("frozen catalog must reject registration")
	}
}

func TestFlatFSOnly(t *testing.T) {
	fsys := fstest.MapFS{"sub/a.yaml": {Data: []byte("name: a\n")}}
	if _, err := New(fsys); err == nil {
		t.Fatalf("expected flat fs error")
	}
	if _, err := New(testFS(), fstest.MapFS{"classic.yaml": {Data: []byte("name: x\n")}}); err == nil {
		t.Fatalf("expected duplicate file error")
	}
}
