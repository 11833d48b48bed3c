//go:build unix

package console

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/muesli/termenv"

	"github.com/uconsole/uconsole/pkg/sys"
	"github.com/uconsole/uconsole/pkg/ui"
)

// Timeout for the reply to a cursor position request.
var cprTimeout = time.Second

var errNoCPR = errors.New("terminal did not report cursor position")

// Terminal is a Device backed by a VT-compatible terminal. It expects the
// terminal to be in raw mode; see Setup.
type Terminal struct {
	in, out *os.File
	fr      *fileReader
	profile termenv.Profile

	// Guards pending and closed, which are also accessed by
	// InjectAbortKeystroke and Close.
	mu      sync.Mutex
	pending []KeyEvent
	closed  bool

	// Where the terminal cursor is believed to be. It is refreshed by Cursor
	// and kept up to date by Write and SetCursor.
	cursor Pos
}

var _ Device = (*Terminal)(nil)

// NewTerminal creates a Terminal reading keys from in and writing to out.
func NewTerminal(in, out *os.File) (*Terminal, error) {
	fr, err := newFileReader(in)
	if err != nil {
		return nil, err
	}
	return &Terminal{
		in: in, out: out, fr: fr,
		profile: termenv.NewOutput(out).EnvColorProfile()}, nil
}

func (t *Terminal) ReadKey() (KeyEvent, error) {
	for {
		if ev, ok := t.popPending(); ok {
			return ev, nil
		}
		if t.isClosed() {
			return KeyEvent{}, ErrStopped
		}
		ev, err := readEvent(t.fr, -1)
		if err == errInterrupted {
			continue
		} else if isBadInput(err) {
			logger.Println("ignoring bad input:", err)
			continue
		} else if err != nil {
			return KeyEvent{}, err
		}
		switch ev := ev.(type) {
		case keyEvent:
			return KeyEvent{Key: ui.Key(ev)}, nil
		case cursorPosition:
			logger.Println("unsolicited cursor position report", Pos(ev))
			t.cursor = Pos(ev)
		}
	}
}

// Cursor asks the terminal for the cursor position. Keys that arrive before
// the reply are kept for subsequent ReadKey calls.
func (t *Terminal) Cursor() (Pos, error) {
	if _, err := t.out.WriteString("\033[6n"); err != nil {
		return Pos{}, err
	}
	deadline := time.Now().Add(cprTimeout)
	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return Pos{}, errNoCPR
		}
		ev, err := readEvent(t.fr, remaining)
		if err == errTimeout {
			return Pos{}, errNoCPR
		} else if err == errInterrupted {
			if t.isClosed() {
				return Pos{}, ErrStopped
			}
			continue
		} else if isBadInput(err) {
			logger.Println("ignoring bad input:", err)
			continue
		} else if err != nil {
			return Pos{}, err
		}
		switch ev := ev.(type) {
		case keyEvent:
			t.pushPending(KeyEvent{Key: ui.Key(ev)})
		case cursorPosition:
			t.cursor = Pos(ev)
			return t.cursor, nil
		}
	}
}

func (t *Terminal) SetCursor(p Pos) error {
	if p.Line < 0 || p.Col < 0 {
		return fmt.Errorf("bad cursor position %v", p)
	}
	_, err := fmt.Fprintf(t.out, "\033[%d;%dH", p.Line+1, p.Col+1)
	if err == nil {
		t.cursor = p
	}
	return err
}

func (t *Terminal) Size() (width, height int) {
	width, height, ok := sys.TermSize(t.out)
	if !ok {
		return DefaultWidth, DefaultHeight
	}
	return width, height
}

func (t *Terminal) Write(text string) error {
	if text == "" {
		return nil
	}
	width, height := t.Size()
	var sb strings.Builder
	for _, r := range text {
		if r == '\n' {
			sb.WriteString("\r\n")
			t.cursor = Pos{t.cursor.Line + 1, 0}
		} else {
			sb.WriteRune(r)
			t.cursor = Advance(t.cursor, RuneWidth(r), width)
		}
		if t.cursor.Line >= height {
			t.cursor.Line = height - 1
		}
	}
	if t.cursor.Col == 0 && !strings.HasSuffix(text, "\n") {
		// The last column was just filled. Terminals only wrap when the next
		// character arrives; move to the next line now.
		sb.WriteString("\r\n")
	}
	_, err := t.out.WriteString(sb.String())
	return err
}

var ansiColors = map[ui.Color]termenv.ANSIColor{
	ui.Black: termenv.ANSIBlack, ui.Red: termenv.ANSIBrightRed,
	ui.Green: termenv.ANSIBrightGreen, ui.Yellow: termenv.ANSIBrightYellow,
	ui.Blue: termenv.ANSIBrightBlue, ui.Magenta: termenv.ANSIBrightMagenta,
	ui.Cyan: termenv.ANSIBrightCyan, ui.White: termenv.ANSIBrightWhite,
	ui.Gray: termenv.ANSIWhite,
}

func (t *Terminal) SetForeground(c ui.Color) error {
	if t.profile == termenv.Ascii {
		return nil
	}
	var seq string
	if ansi, ok := ansiColors[c]; ok {
		seq = t.profile.Convert(ansi).Sequence(false)
	} else {
		seq = "39"
	}
	if seq == "" {
		return nil
	}
	_, err := t.out.WriteString(termenv.CSI + seq + "m")
	return err
}

func (t *Terminal) ResetColor() error {
	if t.profile == termenv.Ascii {
		return nil
	}
	_, err := t.out.WriteString(termenv.CSI + termenv.ResetSeq + "m")
	return err
}

func (t *Terminal) Beep() error {
	_, err := t.out.WriteString("\a")
	return err
}

func (t *Terminal) InjectAbortKeystroke() error {
	t.pushPending(KeyEvent{Key: EOFKey}, K(ui.Enter))
	return t.fr.Interrupt()
}

// Close stops any outstanding ReadKey call, which returns ErrStopped, and
// releases resources. It does not close the underlying files.
func (t *Terminal) Close() error {
	t.mu.Lock()
	t.closed = true
	t.mu.Unlock()
	err := t.fr.Stop()
	t.fr.Close()
	return err
}

func (t *Terminal) pushPending(evs ...KeyEvent) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pending = append(t.pending, evs...)
}

func (t *Terminal) popPending() (KeyEvent, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.pending) == 0 {
		return KeyEvent{}, false
	}
	ev := t.pending[0]
	t.pending = t.pending[1:]
	return ev, true
}

func (t *Terminal) isClosed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.closed
}

func isBadInput(err error) bool {
	_, isSeqError := err.(seqError)
	return isSeqError || err == errBadUTF8
}
