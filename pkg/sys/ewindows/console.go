//go:build windows

// Package ewindows provides extra Windows console APIs not covered by
// golang.org/x/sys/windows.
package ewindows

import (
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	kernel32                = windows.NewLazySystemDLL("kernel32.dll")
	readConsoleInput        = kernel32.NewProc("ReadConsoleInputW")
	writeConsoleInput       = kernel32.NewProc("WriteConsoleInputW")
	setConsoleTextAttribute = kernel32.NewProc("SetConsoleTextAttribute")
)

// Values for InputRecord.EventType.
const (
	KEY_EVENT                = 0x0001
	MOUSE_EVENT              = 0x0002
	WINDOW_BUFFER_SIZE_EVENT = 0x0004
	MENU_EVENT               = 0x0008
	FOCUS_EVENT              = 0x0010
)

// InputRecord is the INPUT_RECORD struct. Only key events are decoded; the
// other members of the union are kept as raw bytes.
type InputRecord struct {
	EventType uint16
	_         uint16
	Event     [16]byte
}

// KeyEvent is the KEY_EVENT_RECORD struct.
type KeyEvent struct {
	BKeyDown          int32
	WRepeatCount      uint16
	WVirtualKeyCode   uint16
	WVirtualScanCode  uint16
	UChar             [2]byte
	DwControlKeyState uint32
}

// KeyEvent returns the key event stored in the record, or nil if the record
// holds some other kind of event.
func (input *InputRecord) KeyEvent() *KeyEvent {
	if input.EventType != KEY_EVENT {
		return nil
	}
	return (*KeyEvent)(unsafe.Pointer(&input.Event))
}

// NewKeyRecord builds an INPUT_RECORD holding a key event.
func NewKeyRecord(down bool, keyCode uint16, char rune, state uint32) InputRecord {
	var rec InputRecord
	rec.EventType = KEY_EVENT
	ev := (*KeyEvent)(unsafe.Pointer(&rec.Event))
	if down {
		ev.BKeyDown = 1
	}
	ev.WRepeatCount = 1
	ev.WVirtualKeyCode = keyCode
	ev.UChar = [2]byte{byte(char), byte(char >> 8)}
	ev.DwControlKeyState = state
	return rec
}

// ReadConsoleInput wraps the homonymous Windows API call.
func ReadConsoleInput(h windows.Handle, buf []InputRecord) (int, error) {
	var nr uint32
	r, _, err := readConsoleInput.Call(uintptr(h),
		uintptr(unsafe.Pointer(&buf[0])), uintptr(len(buf)), uintptr(unsafe.Pointer(&nr)))
	if r != 0 {
		err = nil
	}
	return int(nr), err
}

// WriteConsoleInput wraps the homonymous Windows API call.
func WriteConsoleInput(h windows.Handle, buf []InputRecord) (int, error) {
	var nw uint32
	r, _, err := writeConsoleInput.Call(uintptr(h),
		uintptr(unsafe.Pointer(&buf[0])), uintptr(len(buf)), uintptr(unsafe.Pointer(&nw)))
	if r != 0 {
		err = nil
	}
	return int(nw), err
}

// SetConsoleTextAttribute wraps the homonymous Windows API call.
func SetConsoleTextAttribute(h windows.Handle, attr uint16) error {
	r, _, err := setConsoleTextAttribute.Call(uintptr(h), uintptr(attr))
	if r != 0 {
		return nil
	}
	return err
}
