//go:build unix

package sys

import (
	"os"

	"golang.org/x/sys/unix"
)

func termSize(file *os.File) (width, height int, ok bool) {
	ws, err := unix.IoctlGetWinsize(int(file.Fd()), unix.TIOCGWINSZ)
	if err != nil {
		return 0, 0, false
	}
	return int(ws.Col), int(ws.Row), true
}
