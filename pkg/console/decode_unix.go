//go:build unix

package console

import (
	"errors"
	"fmt"
	"time"

	"github.com/uconsole/uconsole/pkg/ui"
)

// Events decoded from the terminal input stream.
type event interface{ isEvent() }

type keyEvent ui.Key

// A cursor position report, already converted to 0-based coordinates.
type cursorPosition Pos

func (keyEvent) isEvent()       {}
func (cursorPosition) isEvent() {}

var (
	errTimeout     = errors.New("timed out")
	errInterrupted = errors.New("interrupted")
	errBadUTF8     = errors.New("bad UTF-8 sequence")
)

type seqError struct {
	msg string
	seq string
}

func (err seqError) Error() string {
	return fmt.Sprintf("%s: %q", err.msg, err.seq)
}

type byteReaderWithTimeout interface {
	// ReadByteWithTimeout reads a single byte, waiting at most timeout. A
	// negative timeout means no timeout.
	ReadByteWithTimeout(timeout time.Duration) (byte, error)
}

// Used by readRune in readEvent to signal end of current sequence.
const runeEndOfSeq rune = -1

// Timeout for bytes in escape sequences. Modern terminal emulators send escape
// sequences very fast, so 10ms is more than sufficient. SSH connections on a
// slow link might be problematic though.
var keySeqTimeout = 10 * time.Millisecond

// readRune reads one UTF-8 encoded rune. The timeout only applies to the
// first byte.
func readRune(rd byteReaderWithTimeout, timeout time.Duration) (rune, error) {
	leader, err := rd.ReadByteWithTimeout(timeout)
	if err != nil {
		return runeEndOfSeq, err
	}
	var r rune
	pending := 0
	switch {
	case leader>>7 == 0:
		return rune(leader), nil
	case leader>>5 == 0x6:
		r, pending = rune(leader&0x1f), 1
	case leader>>4 == 0xe:
		r, pending = rune(leader&0xf), 2
	case leader>>3 == 0x1e:
		r, pending = rune(leader&0x7), 3
	default:
		return runeEndOfSeq, errBadUTF8
	}
	for i := 0; i < pending; i++ {
		b, err := rd.ReadByteWithTimeout(-1)
		if err != nil {
			return runeEndOfSeq, err
		}
		if b>>6 != 0x2 {
			return runeEndOfSeq, errBadUTF8
		}
		r = r<<6 + rune(b&0x3f)
	}
	return r, nil
}

// readEvent reads and decodes one event. The timeout applies to the first
// rune of the event.
func readEvent(rd byteReaderWithTimeout, timeout time.Duration) (ev event, err error) {
	var r rune
	r, err = readRune(rd, timeout)
	if err != nil {
		return
	}

	currentSeq := string(r)
	// Attempts to read a rune within a timeout of keySeqTimeout. It returns
	// runeEndOfSeq if there is any error; the caller should terminate the
	// current sequence when it sees that value.
	readRune := func() rune {
		r, e := readRune(rd, keySeqTimeout)
		if e != nil {
			return runeEndOfSeq
		}
		currentSeq += string(r)
		return r
	}
	badSeq := func(msg string) {
		err = seqError{msg, currentSeq}
	}

	switch r {
	case 0x1b: // ^[ Escape
		r2 := readRune()
		// rxvt and derivatives prepend another ESC to a CSI-style or G3-style
		// sequence to signal Alt.
		hasTwoLeadingESC := false
		if r2 == 0x1b {
			hasTwoLeadingESC = true
			r2 = readRune()
		}
		if r2 == runeEndOfSeq {
			// Nothing follows. Taken as a lone Escape.
			ev = keyEvent(ui.Escape)
			break
		}
		switch r2 {
		case '[':
			// A '[' follows. CSI style function key sequence.
			r = readRune()
			if r == runeEndOfSeq {
				ev = keyEvent{'[', ui.Alt}
				return
			}

			nums := make([]int, 0, 2)
		CSISeq:
			for {
				switch {
				case r == ';':
					nums = append(nums, 0)
				case '0' <= r && r <= '9':
					if len(nums) == 0 {
						nums = append(nums, 0)
					}
					cur := len(nums) - 1
					nums[cur] = nums[cur]*10 + int(r-'0')
				case r == runeEndOfSeq:
					badSeq("incomplete CSI")
					return
				default: // Treat as a terminator.
					break CSISeq
				}
				r = readRune()
			}
			if r == 'R' {
				// Cursor position report.
				if len(nums) != 2 {
					badSeq("bad CPR")
					return
				}
				ev = cursorPosition{nums[0] - 1, nums[1] - 1}
			} else {
				k := parseCSI(nums, r)
				if k == (ui.Key{}) {
					badSeq("bad CSI")
				} else {
					if hasTwoLeadingESC {
						k.Mod |= ui.Alt
					}
					ev = keyEvent(k)
				}
			}
		case 'O':
			// An 'O' follows. G3 style function key sequence: read one rune.
			r = readRune()
			if r == runeEndOfSeq {
				// Nothing follows after 'O'. Taken as Alt-O.
				ev = keyEvent{'O', ui.Alt}
				return
			}
			k, ok := g3Seq[r]
			if ok {
				if hasTwoLeadingESC {
					k.Mod |= ui.Alt
				}
				ev = keyEvent(k)
			} else {
				badSeq("bad G3")
			}
		default:
			// Something other than '[' or 'O' follows. Taken as an
			// Alt-modified key, possibly also modified by Ctrl.
			k := ctrlModify(r2)
			k.Mod |= ui.Alt
			ev = keyEvent(k)
		}
	default:
		ev = keyEvent(ctrlModify(r))
	}
	return
}

// Determines whether a rune corresponds to a Ctrl-modified key and returns the
// ui.Key the rune represents.
func ctrlModify(r rune) ui.Key {
	switch r {
	case 0x0:
		return ui.K('@', ui.Ctrl) // ^@
	case 0x1e:
		return ui.K('^', ui.Ctrl) // ^^
	case 0x1f:
		return ui.K('_', ui.Ctrl) // ^_
	case ui.Tab, ui.Enter, ui.Backspace: // ^I ^J ^?
		// Ambiguous Ctrl keys; prefer the non-Ctrl form as they are more likely.
		return ui.K(r)
	default:
		if 0x1 <= r && r <= 0x1d {
			return ui.K(r+0x40, ui.Ctrl)
		}
	}
	return ui.K(r)
}

// G3-style key sequences: \eO followed by exactly one character. For instance,
// \eOP is F1.
var g3Seq = map[rune]ui.Key{
	// xterm, tmux
	'A': ui.K(ui.Up), 'B': ui.K(ui.Down), 'C': ui.K(ui.Right), 'D': ui.K(ui.Left),
	'H': ui.K(ui.Home), 'F': ui.K(ui.End), 'M': ui.K(ui.Insert),
	// urxvt
	'a': ui.K(ui.Up, ui.Ctrl), 'b': ui.K(ui.Down, ui.Ctrl),
	'c': ui.K(ui.Right, ui.Ctrl), 'd': ui.K(ui.Left, ui.Ctrl),
	// xterm, urxvt, tmux
	'P': ui.K(ui.F1), 'Q': ui.K(ui.F2), 'R': ui.K(ui.F3), 'S': ui.K(ui.F4),
}

// CSI-style key sequences identified by the last rune. For instance, \e[A is
// Up. When modified, two numerical arguments are added, the first always being
// 1 and the second identifying the modifier. For instance, \e[1;5A is Ctrl-Up.
var csiSeqByLast = map[rune]ui.Key{
	// xterm, urxvt, tmux
	'A': ui.K(ui.Up), 'B': ui.K(ui.Down), 'C': ui.K(ui.Right), 'D': ui.K(ui.Left),
	// urxvt
	'a': ui.K(ui.Up, ui.Shift), 'b': ui.K(ui.Down, ui.Shift),
	'c': ui.K(ui.Right, ui.Shift), 'd': ui.K(ui.Left, ui.Shift),
	// xterm
	'H': ui.K(ui.Home), 'F': ui.K(ui.End),
	// xterm, urxvt, tmux
	'Z': ui.K(ui.Tab, ui.Shift),
}

// CSI-style key sequences ending with '~' with one or two numerical arguments.
// The first argument identifies the key, and the optional second argument
// identifies the modifier. For instance, \e[3~ is Delete, and \e[3;5~ is
// Ctrl-Delete. urxvt instead changes the last rune: '$' for Shift, '^' for
// Ctrl, and '@' for Ctrl+Shift.
var csiSeqTilde = map[int]rune{
	1: ui.Home, 4: ui.End,
	2: ui.Insert,
	3: ui.Delete,
	5: ui.PageUp, 6: ui.PageDown,
	7: ui.Home, 8: ui.End,
	11: ui.F1, 12: ui.F2, 13: ui.F3, 14: ui.F4,
	15: ui.F5, 17: ui.F6, 18: ui.F7, 19: ui.F8,
	20: ui.F9, 21: ui.F10, 23: ui.F11, 24: ui.F12,
}

// CSI-style key sequences ending with '~', with the first argument always 27,
// the second argument identifying the modifier, and the third argument
// identifying the key. For instance, \e[27;5;9~ is Ctrl-Tab.
var csiSeqTilde27 = map[int]rune{
	9: '\t', 13: '\r',
	33: '!', 35: '#', 39: '\'', 40: '(', 41: ')', 43: '+', 44: ',', 45: '-',
	46: '.',
	48: '0', 49: '1', 50: '2', 51: '3', 52: '4', 53: '5', 54: '6', 55: '7',
	56: '8', 57: '9',
	58: ':', 59: ';', 60: '<', 61: '=', 62: '>', 63: ';',
}

func parseCSI(nums []int, last rune) ui.Key {
	if k, ok := csiSeqByLast[last]; ok {
		if len(nums) == 0 {
			return k
		} else if len(nums) == 2 && nums[0] == 1 {
			return xtermModify(k, nums[1])
		}
		return ui.Key{}
	}

	switch last {
	case '~':
		if len(nums) == 1 || len(nums) == 2 {
			if r, ok := csiSeqTilde[nums[0]]; ok {
				k := ui.K(r)
				if len(nums) == 1 {
					return k
				}
				return xtermModify(k, nums[1])
			}
		} else if len(nums) == 3 && nums[0] == 27 {
			if r, ok := csiSeqTilde27[nums[2]]; ok {
				return xtermModify(ui.K(r), nums[1])
			}
		}
	case '$', '^', '@':
		if len(nums) == 1 {
			if r, ok := csiSeqTilde[nums[0]]; ok {
				var mod ui.Mod
				switch last {
				case '$':
					mod = ui.Shift
				case '^':
					mod = ui.Ctrl
				case '@':
					mod = ui.Shift | ui.Ctrl
				}
				return ui.K(r, mod)
			}
		}
	}

	return ui.Key{}
}

func xtermModify(k ui.Key, mod int) ui.Key {
	if mod < 0 || mod > 16 {
		return ui.Key{}
	}
	if mod == 0 {
		return k
	}
	modFlags := mod - 1
	if modFlags&0x1 != 0 {
		k.Mod |= ui.Shift
	}
	if modFlags&0x2 != 0 {
		k.Mod |= ui.Alt
	}
	if modFlags&0x4 != 0 {
		k.Mod |= ui.Ctrl
	}
	if modFlags&0x8 != 0 {
		// Meta is conflated with Alt.
		k.Mod |= ui.Alt
	}
	return k
}
