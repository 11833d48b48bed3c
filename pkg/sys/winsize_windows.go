package sys

import (
	"os"

	"golang.org/x/sys/windows"
)

// The size of the visible window, not of the whole screen buffer.
func termSize(file *os.File) (width, height int, ok bool) {
	var info windows.ConsoleScreenBufferInfo
	err := windows.GetConsoleScreenBufferInfo(windows.Handle(file.Fd()), &info)
	if err != nil {
		return 0, 0, false
	}
	w := info.Window
	return int(w.Right-w.Left) + 1, int(w.Bottom-w.Top) + 1, true
}
