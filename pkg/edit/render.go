package edit

import (
	"strings"

	"github.com/uconsole/uconsole/pkg/console"
)

// caret returns how r is shown: control characters use caret notation, such
// as ^M for a carriage return, and C1 controls are prefixed with M-, so that
// U+009B shows as M-^[ rather than starting an escape sequence.
func caret(r rune) string {
	switch {
	case r < 0x20:
		return "^" + string(r+0x40)
	case r == 0x7f:
		return "^?"
	case 0x80 <= r && r < 0xa0:
		return "M-" + caret(r-0x80)
	default:
		return string(r)
	}
}

// view is the buffer as shown on the device.
type view struct {
	text []rune
	// idx[i] is the index in text where buf[i] starts; idx[len(buf)] is
	// len(text).
	idx []int
}

func newView(buf []rune) view {
	v := view{idx: make([]int, len(buf)+1)}
	for i, r := range buf {
		v.idx[i] = len(v.text)
		v.text = append(v.text, []rune(caret(r))...)
	}
	v.idx[len(buf)] = len(v.text)
	return v
}

// layout returns where each rune of text is put when written from start on a
// device that is width cells wide, followed by where the cursor ends up.
// Lines are not limited by the height of the device.
func layout(text []rune, start console.Pos, width int) []console.Pos {
	ps := make([]console.Pos, len(text)+1)
	p := start
	for i, r := range text {
		w := console.RuneWidth(r)
		if w > 0 && p.Col+w > width && p.Col > 0 {
			p = console.Pos{Line: p.Line + 1}
		}
		ps[i] = p
		p = console.Advance(p, w, width)
	}
	ps[len(text)] = p
	return ps
}

func (s *session) size() (width, height int) {
	width, height = s.dev.Size()
	return max(width, 1), max(height, 1)
}

// offset returns the number of cells from the anchor to p.
func (s *session) offset(p console.Pos, width int) int {
	return (p.Line-s.anchor.Line)*width + p.Col - s.anchor.Col
}

// posAt is the inverse of offset.
func (s *session) posAt(offset, width int) console.Pos {
	n := s.anchor.Col + offset
	return console.Pos{Line: s.anchor.Line + n/width, Col: n % width}
}

// scrolled moves the anchor up by the number of lines the device scrolled to
// get its cursor to p.
func (s *session) scrolled(p console.Pos, height int) {
	if p.Line >= height {
		s.anchor.Line -= p.Line - (height - 1)
	}
}

// render redraws the whole buffer from the anchor, blanks the cells left over
// from the last render, and places the cursor.
func (s *session) render() error {
	width, height := s.size()
	if s.width != 0 && s.width != width {
		// The old content has been reflowed or cut by the device; the count
		// of cells to blank no longer applies.
		s.rendered = 0
	}
	s.width = width
	s.anchor.Line = min(s.anchor.Line, height-1)
	s.anchor.Col = min(s.anchor.Col, width-1)

	v := newView(s.buf)
	ps := layout(v.text, s.anchor, width)
	end := ps[len(v.text)]

	// Skip what has scrolled off the top.
	first := 0
	for first < len(v.text) && ps[first].Line < 0 {
		first++
	}
	from := ps[first]
	if from.Line < 0 {
		from = console.Pos{}
	}
	if err := s.dev.SetCursor(from); err != nil {
		return err
	}

	newRendered := s.offset(end, width)
	covered := max(newRendered, s.rendered)
	text := string(v.text[first:]) + strings.Repeat(" ", covered-newRendered)
	if text != "" {
		if err := s.dev.Write(text); err != nil {
			return err
		}
	}
	s.rendered = newRendered
	s.scrolled(s.posAt(covered, width), height)
	return s.placeCursor()
}

// appendWrite writes the display form of a character that has just been
// appended to the buffer. The device cursor must be at the end of the
// rendered text.
func (s *session) appendWrite(text string) error {
	width, height := s.size()
	if width != s.width {
		return s.render()
	}
	if err := s.dev.Write(text); err != nil {
		return err
	}
	v := newView(s.buf)
	end := layout(v.text, s.anchor, width)[len(v.text)]
	s.rendered = s.offset(end, width)
	s.scrolled(end, height)
	return nil
}

// placeCursor moves the device cursor to the cell of the logical cursor.
func (s *session) placeCursor() error {
	width, height := s.size()
	v := newView(s.buf)
	p := layout(v.text, s.anchor, width)[v.idx[s.pos]]
	if p.Line < 0 {
		p = console.Pos{}
	}
	p.Line = min(p.Line, height-1)
	return s.dev.SetCursor(p)
}

// finish moves the cursor past the rendered text and onto a new line.
func (s *session) finish() error {
	width, height := s.size()
	end := s.posAt(s.rendered, width)
	end.Line = min(end.Line, height-1)
	if end.Col == 0 && s.rendered > 0 {
		// The device has already moved to a new line after filling the last
		// column.
		if end.Line >= 0 {
			return s.dev.SetCursor(end)
		}
		return nil
	}
	if end.Line < 0 {
		end = console.Pos{}
	}
	if err := s.dev.SetCursor(end); err != nil {
		return err
	}
	return s.dev.Write("\n")
}
