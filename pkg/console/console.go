// Package console abstracts the character-cell device the line editor draws
// on.
//
// All implementations share the same cursor semantics: positions are 0-based
// (line, column) pairs relative to the visible window, writing into the last
// column moves the cursor to the first column of the next line, and writing
// past the last line scrolls the window up by one line. In text passed to
// Write, "\n" means carriage return followed by line feed.
package console

import (
	"errors"
	"fmt"

	"github.com/mattn/go-runewidth"

	"github.com/uconsole/uconsole/pkg/logutil"
	"github.com/uconsole/uconsole/pkg/ui"
)

var logger = logutil.GetLogger("[console] ")

// Device is a character-cell console.
type Device interface {
	// ReadKey blocks until a key event is available.
	ReadKey() (KeyEvent, error)
	// Cursor returns the current cursor position.
	Cursor() (Pos, error)
	// SetCursor moves the cursor.
	SetCursor(Pos) error
	// Size returns the current width and height of the device, in cells. It is
	// queried anew on every call.
	Size() (width, height int)
	// Write writes text starting from the current cursor position.
	Write(text string) error
	// SetForeground changes the color of subsequently written text.
	SetForeground(ui.Color) error
	// ResetColor restores the default text color.
	ResetColor() error
	// Beep rings the bell.
	Beep() error
	// InjectAbortKeystroke makes a pending or future ReadKey return the EOF
	// sentinel key followed by Enter. It may be called from any goroutine.
	InjectAbortKeystroke() error
}

// KeyEvent is a key press or release.
type KeyEvent struct {
	Key     ui.Key
	Release bool
}

// K is a shorthand for building a KeyEvent for a key press.
func K(r rune, mods ...ui.Mod) KeyEvent {
	return KeyEvent{Key: ui.K(r, mods...)}
}

func (ev KeyEvent) String() string {
	if ev.Release {
		return "release " + ev.Key.String()
	}
	return ev.Key.String()
}

// Pos is a position on the device.
type Pos struct {
	Line, Col int
}

func (p Pos) String() string { return fmt.Sprintf("(%d, %d)", p.Line, p.Col) }

// ErrStopped is returned by ReadKey when the device has been closed during the
// call.
var ErrStopped = errors.New("stopped")

// Fallback size used when the device cannot report one.
const (
	DefaultWidth  = 80
	DefaultHeight = 24
)

// RuneWidth returns the number of cells r occupies when written.
func RuneWidth(r rune) int {
	return runewidth.RuneWidth(r)
}

// Advance returns the cursor position after writing a character that is w
// cells wide at p, on a device that is width cells wide. A character that
// does not fit on the current line is moved to the next one. The returned
// line is not limited by the height of the device; callers that model
// scrolling clamp it themselves.
func Advance(p Pos, w, width int) Pos {
	if p.Col+w > width && p.Col > 0 {
		p.Line++
		p.Col = 0
	}
	p.Col += w
	if p.Col >= width {
		p.Line++
		p.Col = 0
	}
	return p
}
