package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/uconsole/uconsole/pkg/env"
	"github.com/uconsole/uconsole/pkg/must"
)

func TestTempDir(t *testing.T) {
	c := &cleanuper{}
	dir := TempDir(c)

	if stat, err := os.Stat(dir); err != nil || !stat.IsDir() {
		t.Fatalf("TempDir returns %q, which is not a directory", dir)
	}
	if resolved := must.OK1(filepath.EvalSymlinks(dir)); resolved != dir {
		t.Errorf("TempDir returns %q, but it resolves to %q", dir, resolved)
	}
	must.WriteFile(filepath.Join(dir, "a"), "test")

	c.runCleanups()
	if _, err := os.Stat(dir); err == nil {
		t.Errorf("dir %q still exists after cleanup", dir)
	}
}

func TestInTempDir(t *testing.T) {
	original := getWd()

	c := &cleanuper{}
	dir := InTempDir(c)
	if wd := getWd(); wd != dir {
		t.Errorf("working directory is %q, want %q", wd, dir)
	}

	c.runCleanups()
	if wd := getWd(); wd != original {
		t.Errorf("working directory restored to %q, want %q", wd, original)
	}
}

func TestTempHome(t *testing.T) {
	home := TempHome(t)
	if got := os.Getenv(env.HOME); got != home {
		t.Errorf("$HOME is %q, want %q", got, home)
	}
}

func TestSetenv(t *testing.T) {
	const name = "UCONSOLE_TESTUTIL_VAR"
	for _, initial := range []*string{nil, ptr("old")} {
		if initial == nil {
			os.Unsetenv(name)
		} else {
			os.Setenv(name, *initial)
		}
		c := &cleanuper{}
		Setenv(c, name, "foo")
		if v := os.Getenv(name); v != "foo" {
			t.Errorf("after Setenv, value is %q", v)
		}
		c.runCleanups()
		v, ok := os.LookupEnv(name)
		if initial == nil && ok {
			t.Errorf("variable still set after cleanup")
		} else if initial != nil && v != *initial {
			t.Errorf("variable restored to %q, want %q", v, *initial)
		}
	}
	os.Unsetenv(name)
}

func TestSet(t *testing.T) {
	c := &cleanuper{}
	x := 1
	Set(c, &x, 2)
	if x != 2 {
		t.Errorf("after Set, x = %d", x)
	}
	c.runCleanups()
	if x != 1 {
		t.Errorf("after cleanup, x = %d", x)
	}
}

func ptr(s string) *string { return &s }

func getWd() string {
	return must.OK1(filepath.EvalSymlinks(must.OK1(os.Getwd())))
}

type cleanuper struct{ fns []func() }

func (c *cleanuper) Cleanup(fn func()) { c.fns = append(c.fns, fn) }

func (c *cleanuper) runCleanups() {
	for i := len(c.fns) - 1; i >= 0; i-- {
		c.fns[i]()
	}
}
