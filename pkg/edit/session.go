package edit

import (
	"io"
	"slices"
	"strings"
	"sync"
	"unicode"

	"github.com/uconsole/uconsole/pkg/console"
	"github.com/uconsole/uconsole/pkg/edit/complete"
	"github.com/uconsole/uconsole/pkg/edit/histutil"
	"github.com/uconsole/uconsole/pkg/ui"
)

// session is the state of one ReadLine call.
type session struct {
	dev       console.Device
	hist      *histutil.History
	completer complete.Source
	tabSize   int
	indent    int

	buf []rune
	pos int
	// Whether the buffer was changed by the user since it was last replaced
	// by a history entry.
	edited bool

	// Where the buffer starts on the device. Line may become negative when
	// the start has scrolled off the top.
	anchor console.Pos
	// Number of cells covered by the last render, counted from anchor.
	rendered int
	// Device width at the last render.
	width int

	// Active completion session, and the text after the cursor when it
	// started.
	completions *complete.List
	tail        []rune

	aborted   chan struct{}
	abortOnce sync.Once
	// Set when the injected Enter of this session's abort has been read.
	abortConsumed bool

	// Abort keystrokes left over from earlier sessions, and whether the
	// EOF key of one of them has just been skipped.
	staleAborts   int
	skippingAbort bool
}

func newSession(dev console.Device, cfg Config, indent int) (*session, error) {
	anchor, err := dev.Cursor()
	if err != nil {
		return nil, err
	}
	if indent < 0 {
		indent = 0
	}
	return &session{
		dev: dev, hist: cfg.History, completer: cfg.Completer,
		tabSize: cfg.TabSize, indent: indent,
		anchor:  anchor,
		aborted: make(chan struct{}),
	}, nil
}

func (s *session) run() (string, error) {
	s.buf = []rune(strings.Repeat(" ", s.indent))
	s.pos = len(s.buf)
	if err := s.render(); err != nil {
		return "", err
	}
	for {
		ev, err := s.dev.ReadKey()
		if err != nil {
			return "", err
		}
		if s.skipStale(ev) {
			continue
		}
		if s.isAborted() {
			if isEnter(ev) {
				s.abortConsumed = true
				s.buf, s.pos = nil, 0
				if err := s.render(); err != nil {
					return "", err
				}
				if err := s.finish(); err != nil {
					return "", err
				}
				return "", io.EOF
			}
			continue
		}
		line, done, err := s.handle(ev)
		if done || err != nil {
			return line, err
		}
	}
}

func (s *session) abort() {
	s.abortOnce.Do(func() {
		close(s.aborted)
		if err := s.dev.InjectAbortKeystroke(); err != nil {
			logger.Println("inject abort keystroke:", err)
		}
	})
}

// skipStale reports whether ev belongs to an abort keystroke pair left over
// from an earlier session, and consumes it if so.
func (s *session) skipStale(ev console.KeyEvent) bool {
	switch {
	case s.staleAborts == 0 || ev.Release:
		return s.skippingAbort && ev.Release
	case !s.skippingAbort && ev.Key == console.EOFKey:
		s.skippingAbort = true
		return true
	case s.skippingAbort && isEnter(ev):
		s.skippingAbort = false
		s.staleAborts--
		return true
	}
	return false
}

func (s *session) isAborted() bool {
	select {
	case <-s.aborted:
		return true
	default:
		return false
	}
}

func isEnter(ev console.KeyEvent) bool {
	return !ev.Release && (ev.Key == ui.K(ui.Enter) || ev.Key == ui.K('M', ui.Ctrl))
}

// handle handles one key event. It returns done = true when the session is
// over.
func (s *session) handle(ev console.KeyEvent) (line string, done bool, err error) {
	if ev.Release {
		return "", false, nil
	}
	k := ev.Key
	if k != ui.K(ui.Tab) && k != ui.K(ui.Tab, ui.Shift) {
		s.completions = nil
	}
	if immediateEOF && k == console.EOFKey && len(s.buf) == 0 {
		return "", true, s.finishWith(io.EOF)
	}

	switch k {
	case ui.K(ui.Enter), ui.K('M', ui.Ctrl):
		line, err := s.commit()
		return line, true, err
	case ui.K('C', ui.Ctrl):
		return "", true, s.finishWith(ErrInterrupted)
	case ui.K(ui.Backspace), ui.K('H', ui.Ctrl):
		err = s.backspace()
	case ui.K(ui.Delete):
		err = s.deleteForward()
	case ui.K(ui.Left):
		err = s.moveTo(s.pos - 1)
	case ui.K(ui.Left, ui.Ctrl):
		err = s.moveTo(wordLeft(s.buf, s.pos))
	case ui.K(ui.Right):
		err = s.moveTo(s.pos + 1)
	case ui.K(ui.Right, ui.Ctrl):
		err = s.moveTo(wordRight(s.buf, s.pos))
	case ui.K(ui.Home):
		err = s.moveTo(0)
	case ui.K(ui.End):
		err = s.moveTo(len(s.buf))
	case ui.K(ui.Up):
		err = s.replace(s.hist.Previous(), false)
	case ui.K(ui.Down):
		err = s.replace(s.hist.Next(), false)
	case ui.K(ui.Tab):
		err = s.complete(false)
	case ui.K(ui.Tab, ui.Shift):
		err = s.complete(true)
	case ui.Escape:
		err = s.replace("", true)
	default:
		if r, ok := insertable(k); ok {
			err = s.insert(r)
		}
	}
	return "", false, err
}

// insertable returns the character a key inserts, if any. Ctrl with one of
// the characters from '@' to '_' inserts the corresponding control character,
// so that the EOF sentinel can be typed.
func insertable(k ui.Key) (rune, bool) {
	r := k.Rune
	switch {
	case k.IsFunctionKey():
		return 0, false
	case k.Mod == ui.Ctrl:
		if 'a' <= r && r <= 'z' {
			r -= 'a' - 'A'
		}
		if '@' < r && r <= '_' {
			return r & 0x1f, true
		}
	case k.Mod&^ui.Shift == 0:
		if r >= 0x20 && r != 0x7f {
			return r, true
		}
	}
	return 0, false
}

func (s *session) commit() (string, error) {
	line := string(s.buf)
	if err := s.finish(); err != nil {
		return "", err
	}
	if line == string(console.EOFChar) {
		return "", io.EOF
	}
	if line != "" {
		s.hist.Add(line, s.edited)
	}
	return line, nil
}

func (s *session) finishWith(err error) error {
	if ferr := s.finish(); ferr != nil {
		return ferr
	}
	return err
}

func (s *session) insert(r rune) error {
	atEnd := s.pos == len(s.buf)
	s.buf = slices.Insert(s.buf, s.pos, r)
	s.pos++
	s.edited = true
	if atEnd {
		return s.appendWrite(caret(r))
	}
	return s.render()
}

// backspace deletes the character before the cursor. When the buffer is no
// longer than the initial indentation and consists only of spaces, it deletes
// back to the previous tab stop instead.
func (s *session) backspace() error {
	if s.pos == 0 {
		return nil
	}
	from := s.pos - 1
	if len(s.buf) <= s.indent && allSpaces(s.buf) {
		from = (s.pos - 1) / s.tabSize * s.tabSize
	}
	s.buf = slices.Delete(s.buf, from, s.pos)
	s.pos = from
	s.edited = true
	return s.render()
}

func (s *session) deleteForward() error {
	if s.pos == len(s.buf) {
		return nil
	}
	s.buf = slices.Delete(s.buf, s.pos, s.pos+1)
	s.edited = true
	return s.render()
}

// replace replaces the whole buffer and puts the cursor at the end.
func (s *session) replace(line string, edited bool) error {
	s.buf = []rune(line)
	s.pos = len(s.buf)
	s.edited = edited
	return s.render()
}

func (s *session) moveTo(i int) error {
	s.pos = max(0, min(i, len(s.buf)))
	return s.placeCursor()
}

func (s *session) complete(backward bool) error {
	if s.completions == nil {
		head := string(s.buf[:s.pos])
		l := complete.Resolve(s.completer, complete.CodeBuffer{Content: head, Dot: len(head)})
		if l == nil {
			if backward {
				return nil
			}
			return s.insertSpaces()
		}
		if l.Len() == 0 {
			return s.dev.Beep()
		}
		s.completions = l
		s.tail = slices.Clone(s.buf[s.pos:])
	}
	l := s.completions
	var candidate string
	if backward {
		candidate = l.Previous()
	} else {
		candidate = l.Next()
	}
	head := []rune(l.Root + candidate)
	s.buf = append(head, s.tail...)
	s.pos = len(head)
	s.edited = true
	if l.Len() == 1 {
		// Nothing to cycle through; the next Tab resolves again.
		s.completions = nil
	}
	return s.render()
}

func (s *session) insertSpaces() error {
	for n := s.tabSize - s.pos%s.tabSize; n > 0; n-- {
		if err := s.insert(' '); err != nil {
			return err
		}
	}
	return nil
}

func allSpaces(rs []rune) bool {
	for _, r := range rs {
		if r != ' ' {
			return false
		}
	}
	return true
}

func isSeparator(r rune) bool { return !unicode.IsLetter(r) }

// wordLeft returns the start of the word before i. Separators immediately
// before i are skipped first.
func wordLeft(buf []rune, i int) int {
	if i == 0 || i > len(buf) {
		return i
	}
	sep := isSeparator(buf[i-1])
	for i > 0 {
		i--
		if isSeparator(buf[i]) != sep {
			if !sep {
				return i + 1
			}
			sep = false
		}
	}
	return i
}

// wordRight returns the start of the word after i: the rest of the word at i
// and the separators after it are skipped.
func wordRight(buf []rune, i int) int {
	if i >= len(buf) {
		return i
	}
	sep := isSeparator(buf[i])
	for i < len(buf) {
		i++
		if i == len(buf) {
			break
		}
		if isSeparator(buf[i]) != sep {
			if sep {
				break
			}
			sep = true
		}
	}
	return i
}
