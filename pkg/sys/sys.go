// Package sys provides system utilities with the same API across OSes.
//
// The subpackage ewindows provides Windows-specific utilities.
package sys

import (
	"os"

	"github.com/mattn/go-isatty"
)

// TermSize returns the width and height of the terminal referenced by file,
// in cells. A zero dimension, which some serial consoles report, makes ok
// false, as does a file that is not a terminal.
func TermSize(file *os.File) (width, height int, ok bool) {
	width, height, ok = termSize(file)
	return width, height, ok && width > 0 && height > 0
}

// IsATTY determines whether the given file is a terminal.
func IsATTY(fd uintptr) bool {
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
