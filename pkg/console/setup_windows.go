package console

import (
	"errors"
	"os"

	"golang.org/x/sys/windows"
)

const (
	// Ctrl-C is delivered as a key rather than a signal.
	inMode  = windows.ENABLE_WINDOW_INPUT
	outMode = windows.ENABLE_PROCESSED_OUTPUT | windows.ENABLE_WRAP_AT_EOL_OUTPUT
)

// Setup switches the console into the modes expected by Terminal, and returns
// a function that restores the original modes.
func Setup(in, out *os.File) (func() error, error) {
	hIn := windows.Handle(in.Fd())
	hOut := windows.Handle(out.Fd())

	var oldInMode, oldOutMode uint32
	err := windows.GetConsoleMode(hIn, &oldInMode)
	if err != nil {
		return nil, err
	}
	err = windows.GetConsoleMode(hOut, &oldOutMode)
	if err != nil {
		return nil, err
	}

	errSetIn := windows.SetConsoleMode(hIn, inMode)
	errSetOut := windows.SetConsoleMode(hOut, outMode)

	return func() error {
		return errors.Join(
			windows.SetConsoleMode(hOut, oldOutMode),
			windows.SetConsoleMode(hIn, oldInMode))
	}, errors.Join(errSetIn, errSetOut)
}
