//go:build unix

package console

import (
	"os"

	"golang.org/x/term"
)

// Setup puts the terminal into raw mode, and returns a function that restores
// the original mode.
func Setup(in, out *os.File) (func() error, error) {
	fd := int(in.Fd())
	state, err := term.MakeRaw(fd)
	if err != nil {
		return nil, err
	}
	return func() error { return term.Restore(fd, state) }, nil
}
