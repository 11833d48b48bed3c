package console

import (
	"unicode/utf16"

	"github.com/uconsole/uconsole/pkg/sys/ewindows"
	"github.com/uconsole/uconsole/pkg/ui"
)

const vkReturn = 0x0d

// A subset of virtual key codes listed in
// https://learn.microsoft.com/en-us/windows/win32/inputdev/virtual-key-codes
var keyCodeToRune = map[uint16]rune{
	0x08: ui.Backspace, 0x09: ui.Tab,
	0x0d: ui.Enter,
	0x20: ' ',
	0x23: ui.End, 0x24: ui.Home,
	0x25: ui.Left, 0x26: ui.Up, 0x27: ui.Right, 0x28: ui.Down,
	0x2d: ui.Insert, 0x2e: ui.Delete,
	/* 0x30 - 0x39: digits, same with ASCII */
	/* 0x41 - 0x5a: letters, same with ASCII */
	0x70: ui.F1, 0x71: ui.F2, 0x72: ui.F3, 0x73: ui.F4, 0x74: ui.F5, 0x75: ui.F6,
	0x76: ui.F7, 0x77: ui.F8, 0x78: ui.F9, 0x79: ui.F10, 0x7a: ui.F11, 0x7b: ui.F12,
	0xba: ';', 0xbb: '=', 0xbc: ',', 0xbd: '-', 0xbe: '.', 0xbf: '/', 0xc0: '`',
	0xdb: '[', 0xdc: '\\', 0xdd: ']', 0xde: '\'',
}

// Virtual key codes of keys that only modify other keys.
var modifierKeyCodes = map[uint16]bool{
	0x10: true, 0x11: true, 0x12: true, // Shift, Ctrl, Alt
	0x14: true,             // Caps Lock
	0x5b: true, 0x5c: true, // Windows keys
	0xa0: true, 0xa1: true, 0xa2: true, 0xa3: true, 0xa4: true, 0xa5: true,
}

// Bits of KEY_EVENT_RECORD.dwControlKeyState.
const (
	leftAlt   = 0x02
	leftCtrl  = 0x08
	rightAlt  = 0x01
	rightCtrl = 0x04
	shift     = 0x10
)

// convertKeyEvent converts a console key record. If the record carries half of
// a surrogate pair, it is returned as surrogate. The ok result is false for
// records that do not correspond to any key.
func convertKeyEvent(event *ewindows.KeyEvent) (ev KeyEvent, surrogate rune, ok bool) {
	filteredMod := event.DwControlKeyState & (leftAlt | leftCtrl | rightAlt | rightCtrl | shift)
	release := event.BKeyDown == 0
	if modifierKeyCodes[event.WVirtualKeyCode] {
		return KeyEvent{Key: ui.K(ui.ModifierOnly, convertMod(filteredMod)), Release: release}, 0, true
	}
	r := rune(event.UChar[0]) + rune(event.UChar[1])<<8
	if r >= 0x20 && r != 0x7f && !release {
		// This key inputs a character. A lone Shift, or AltGr (reported as
		// left Ctrl plus right Alt), is taken to be part of the character.
		switch filteredMod {
		case 0:
			if utf16.IsSurrogate(r) {
				return KeyEvent{}, r, false
			}
			return K(r), 0, true
		case shift, leftCtrl | rightAlt, leftCtrl | rightAlt | shift:
			return K(r), 0, true
		}
	}
	mod := convertMod(filteredMod)
	if mod == 0 && event.WVirtualKeyCode == 0x1b {
		return KeyEvent{Key: ui.Escape, Release: release}, 0, true
	}
	r = convertRune(event.WVirtualKeyCode, mod)
	if r == 0 {
		return KeyEvent{}, 0, false
	}
	return KeyEvent{Key: ui.K(r, mod), Release: release}, 0, true
}

func convertRune(keyCode uint16, mod ui.Mod) rune {
	r, ok := keyCodeToRune[keyCode]
	if ok {
		return r
	}
	if '0' <= keyCode && keyCode <= '9' {
		return rune(keyCode)
	}
	if 'A' <= keyCode && keyCode <= 'Z' {
		// With Ctrl, use upper case like Unix terminals; otherwise use lower
		// case.
		if mod&ui.Ctrl != 0 {
			return rune(keyCode)
		}
		return rune(keyCode - 'A' + 'a')
	}
	return 0
}

func convertMod(state uint32) ui.Mod {
	mod := ui.Mod(0)
	if state&(leftAlt|rightAlt) != 0 {
		mod |= ui.Alt
	}
	if state&(leftCtrl|rightCtrl) != 0 {
		mod |= ui.Ctrl
	}
	if state&shift != 0 {
		mod |= ui.Shift
	}
	return mod
}
