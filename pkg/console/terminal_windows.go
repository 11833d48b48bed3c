package console

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"unicode/utf16"

	"golang.org/x/sys/windows"

	"github.com/uconsole/uconsole/pkg/env"
	"github.com/uconsole/uconsole/pkg/sys/ewindows"
	"github.com/uconsole/uconsole/pkg/ui"
)

// Terminal is a Device backed by the Windows console.
type Terminal struct {
	out         *os.File
	hIn, hOut   windows.Handle
	stopEvent   windows.Handle
	defaultAttr uint16
	colors      bool
	// Held during ReadKey.
	mutex sync.Mutex
}

var _ Device = (*Terminal)(nil)

// NewTerminal creates a Terminal reading keys from in and writing to out. Both
// must refer to the console.
func NewTerminal(in, out *os.File) (*Terminal, error) {
	hIn := windows.Handle(in.Fd())
	hOut := windows.Handle(out.Fd())
	var info windows.ConsoleScreenBufferInfo
	if err := windows.GetConsoleScreenBufferInfo(hOut, &info); err != nil {
		return nil, fmt.Errorf("GetConsoleScreenBufferInfo: %w", err)
	}
	stopEvent, err := windows.CreateEvent(nil, 0, 0, nil)
	if err != nil {
		return nil, fmt.Errorf("CreateEvent: %w", err)
	}
	return &Terminal{
		out: out, hIn: hIn, hOut: hOut, stopEvent: stopEvent,
		defaultAttr: info.Attributes,
		colors:      os.Getenv(env.NO_COLOR) == ""}, nil
}

func (t *Terminal) ReadKey() (KeyEvent, error) {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	handles := []windows.Handle{t.hIn, t.stopEvent}
	var leadingSurrogate rune
	for {
		triggered, err := windows.WaitForMultipleObjects(handles, false, windows.INFINITE)
		if err != nil {
			return KeyEvent{}, err
		}
		if triggered == windows.WAIT_OBJECT_0+1 {
			return KeyEvent{}, ErrStopped
		}

		var buf [1]ewindows.InputRecord
		nr, err := ewindows.ReadConsoleInput(t.hIn, buf[:])
		if nr == 0 {
			return KeyEvent{}, io.ErrNoProgress
		}
		if err != nil {
			return KeyEvent{}, err
		}
		kev := buf[0].KeyEvent()
		if kev == nil {
			// Mouse, focus and resize events are ignored.
			continue
		}
		ev, surrogate, ok := convertKeyEvent(kev)
		if surrogate != 0 {
			if leadingSurrogate == 0 {
				leadingSurrogate = surrogate
				continue
			}
			r := utf16.DecodeRune(leadingSurrogate, surrogate)
			return K(r), nil
		}
		if ok {
			return ev, nil
		}
	}
}

func (t *Terminal) bufferInfo() (windows.ConsoleScreenBufferInfo, error) {
	var info windows.ConsoleScreenBufferInfo
	err := windows.GetConsoleScreenBufferInfo(t.hOut, &info)
	return info, err
}

func (t *Terminal) Cursor() (Pos, error) {
	info, err := t.bufferInfo()
	if err != nil {
		return Pos{}, err
	}
	return Pos{
		Line: int(info.CursorPosition.Y - info.Window.Top),
		Col:  int(info.CursorPosition.X)}, nil
}

func (t *Terminal) SetCursor(p Pos) error {
	info, err := t.bufferInfo()
	if err != nil {
		return err
	}
	return windows.SetConsoleCursorPosition(t.hOut, windows.Coord{
		X: int16(p.Col), Y: int16(p.Line) + info.Window.Top})
}

func (t *Terminal) Size() (width, height int) {
	info, err := t.bufferInfo()
	if err != nil {
		return DefaultWidth, DefaultHeight
	}
	return int(info.Size.X), int(info.Window.Bottom-info.Window.Top) + 1
}

func (t *Terminal) Write(text string) error {
	_, err := t.out.WriteString(strings.ReplaceAll(text, "\n", "\r\n"))
	return err
}

// Foreground attribute bits of the Windows console.
const (
	fgBlue      = 0x1
	fgGreen     = 0x2
	fgRed       = 0x4
	fgIntensity = 0x8
)

var consoleColors = map[ui.Color]uint16{
	ui.Black:   0,
	ui.Red:     fgRed | fgIntensity,
	ui.Green:   fgGreen | fgIntensity,
	ui.Yellow:  fgRed | fgGreen | fgIntensity,
	ui.Blue:    fgBlue | fgIntensity,
	ui.Magenta: fgRed | fgBlue | fgIntensity,
	ui.Cyan:    fgGreen | fgBlue | fgIntensity,
	ui.White:   fgRed | fgGreen | fgBlue | fgIntensity,
	ui.Gray:    fgRed | fgGreen | fgBlue,
}

func (t *Terminal) SetForeground(c ui.Color) error {
	if !t.colors {
		return nil
	}
	fg, ok := consoleColors[c]
	if !ok {
		return t.ResetColor()
	}
	return ewindows.SetConsoleTextAttribute(t.hOut, t.defaultAttr&^0xf|fg)
}

func (t *Terminal) ResetColor() error {
	if !t.colors {
		return nil
	}
	return ewindows.SetConsoleTextAttribute(t.hOut, t.defaultAttr)
}

func (t *Terminal) Beep() error {
	_, err := t.out.WriteString("\a")
	return err
}

// InjectAbortKeystroke writes Ctrl-Z and Enter into the console input buffer.
func (t *Terminal) InjectAbortKeystroke() error {
	records := []ewindows.InputRecord{
		ewindows.NewKeyRecord(true, 'Z', EOFChar, leftCtrl),
		ewindows.NewKeyRecord(false, 'Z', EOFChar, leftCtrl),
		ewindows.NewKeyRecord(true, vkReturn, '\r', 0),
		ewindows.NewKeyRecord(false, vkReturn, '\r', 0),
	}
	_, err := ewindows.WriteConsoleInput(t.hIn, records)
	return err
}

// Close stops any outstanding ReadKey call, which returns ErrStopped, and
// releases resources. It does not close the underlying files.
func (t *Terminal) Close() error {
	errSet := windows.SetEvent(t.stopEvent)
	t.mutex.Lock()
	//lint:ignore SA2001 Locking only makes sure that ReadKey has exited.
	t.mutex.Unlock()
	return errors.Join(errSet, windows.CloseHandle(t.stopEvent))
}
