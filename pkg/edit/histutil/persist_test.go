package histutil_test

import (
	"path/filepath"
	"reflect"
	"testing"

	. "github.com/uconsole/uconsole/pkg/edit/histutil"
	"github.com/uconsole/uconsole/pkg/must"
	"github.com/uconsole/uconsole/pkg/store"
	"github.com/uconsole/uconsole/pkg/testutil"
)

func TestHistory_PersistAndReload(t *testing.T) {
	for _, backend := range []string{store.TextBackend, store.BoltBackend} {
		t.Run(backend, func(t *testing.T) {
			path := filepath.Join(testutil.TempDir(t), "history")

			h1 := New()
			h1.AttachWriter(must.OK1(store.Open(backend, path)), true, false)
			for _, line := range []string{"first", "second", "third"} {
				h1.Add(line, true)
			}
			must.OK(h1.Close())

			s := must.OK1(store.Open(backend, path))
			h2 := New()
			h2.Load(must.OK1(store.AllCmds(s)))
			h2.AttachWriter(s, true, true)
			defer h2.Close()

			for _, want := range []string{"third", "second", "first"} {
				if got := h2.Previous(); got != want {
					t.Errorf("Previous() -> %q, want %q", got, want)
				}
			}
		})
	}
}

func TestHistory_MultilineEntryKeepsPersisting(t *testing.T) {
	path := filepath.Join(testutil.TempDir(t), "history")
	h := New()
	h.AttachWriter(must.OK1(store.Open(store.TextBackend, path)), true, false)
	h.Add("one", true)
	h.Add("a\nb", true)
	h.Add("two", true)
	if !h.Persisting() {
		t.Errorf("history stopped persisting after a multi-line entry")
	}
	must.OK(h.Close())

	s := must.OK1(store.Open(store.TextBackend, path))
	defer s.Close()
	got := must.OK1(store.AllCmds(s))
	if want := []string{"one", "a", "b", "two"}; !reflect.DeepEqual(got, want) {
		t.Errorf("reloaded %q, want %q", got, want)
	}
}
