// Package testutil contains common test utilities.
package testutil

import (
	"os"
	"path/filepath"

	"github.com/uconsole/uconsole/pkg/env"
	"github.com/uconsole/uconsole/pkg/must"
)

// Cleanuper wraps the Cleanup method. It is a subset of [testing.TB], thus
// satisfied by [*testing.T] and [*testing.B].
type Cleanuper interface {
	Cleanup(func())
}

// Set sets *p to v, and restores the old value when the test finishes.
func Set[T any](c Cleanuper, p *T, v T) {
	old := *p
	*p = v
	c.Cleanup(func() { *p = old })
}

// Setenv sets an environment variable, and restores or removes it when the
// test finishes. It returns value.
func Setenv(c Cleanuper, name, value string) string {
	old, existed := os.LookupEnv(name)
	c.Cleanup(func() {
		if existed {
			os.Setenv(name, old)
		} else {
			os.Unsetenv(name)
		}
	})
	os.Setenv(name, value)
	return value
}

// TempDir creates a directory that is removed when the test finishes. Unlike
// testing.TB.TempDir, the returned path has symlinks resolved, so that it can
// be compared with paths derived from the working directory.
func TempDir(c Cleanuper) string {
	dir := must.OK1(filepath.EvalSymlinks(must.OK1(os.MkdirTemp("", "uconsoletest"))))
	c.Cleanup(func() { must.OK(os.RemoveAll(dir)) })
	return dir
}

// TempHome points $HOME at a new TempDir and returns it.
func TempHome(c Cleanuper) string {
	return Setenv(c, env.HOME, TempDir(c))
}

// InTempDir changes into a new TempDir, and changes back when the test
// finishes. It returns the directory.
func InTempDir(c Cleanuper) string {
	dir := TempDir(c)
	oldWd := must.OK1(os.Getwd())
	must.OK(os.Chdir(dir))
	c.Cleanup(func() { must.OK(os.Chdir(oldWd)) })
	return dir
}
