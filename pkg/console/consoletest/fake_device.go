// Package consoletest provides a fake console.Device for tests.
package consoletest

import (
	"fmt"
	"strings"
	"sync"

	"github.com/uconsole/uconsole/pkg/console"
	"github.com/uconsole/uconsole/pkg/ui"
)

const (
	// Maximum number of key events the fake device can hold.
	fakeDeviceEvents = 4096
	// Marks the second cell of a wide character.
	continuation = 0
)

// Initial size of the fake device.
const (
	FakeDeviceWidth  = 40
	FakeDeviceHeight = 10
)

// An implementation of console.Device backed by a grid of cells.
type fakeDevice struct {
	// Channel that ReadKey reads from.
	eventCh chan console.KeyEvent
	// Whether eventCh has been closed.
	eventChClosed bool
	// Mutex for synchronizing writing and closing eventCh.
	eventChMutex sync.Mutex

	// Guards all the fields below.
	mutex         sync.Mutex
	width, height int
	cells         [][]rune
	cursor        console.Pos
	fg            ui.Color
	beeps         int
	writes        []Write
	writeErr      error
	cursorErr     error
}

// Write records one call to the Write method of the fake device.
type Write struct {
	Text  string
	Color ui.Color
}

// NewFakeDevice creates a new fake device and a handle for controlling it. The
// device is FakeDeviceWidth cells wide and FakeDeviceHeight cells high.
func NewFakeDevice() (console.Device, DeviceCtrl) {
	d := &fakeDevice{
		eventCh: make(chan console.KeyEvent, fakeDeviceEvents),
		width:   FakeDeviceWidth, height: FakeDeviceHeight,
	}
	d.cells = newGrid(d.width, d.height)
	return d, DeviceCtrl{d}
}

func newGrid(width, height int) [][]rune {
	cells := make([][]rune, height)
	for i := range cells {
		cells[i] = newRow(width)
	}
	return cells
}

func newRow(width int) []rune {
	row := make([]rune, width)
	for i := range row {
		row[i] = ' '
	}
	return row
}

// Returns the next injected event, or console.ErrStopped once the event
// channel has been closed and drained.
func (d *fakeDevice) ReadKey() (console.KeyEvent, error) {
	ev, ok := <-d.eventCh
	if !ok {
		return console.KeyEvent{}, console.ErrStopped
	}
	return ev, nil
}

func (d *fakeDevice) Cursor() (console.Pos, error) {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	if d.cursorErr != nil {
		return console.Pos{}, d.cursorErr
	}
	return d.cursor, nil
}

func (d *fakeDevice) SetCursor(p console.Pos) error {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	if p.Line < 0 || p.Line >= d.height || p.Col < 0 || p.Col >= d.width {
		return fmt.Errorf("cursor position %v out of range", p)
	}
	d.cursor = p
	return nil
}

func (d *fakeDevice) Size() (width, height int) {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	return d.width, d.height
}

// Puts text on the grid, wrapping and scrolling the same way as the real
// devices.
func (d *fakeDevice) Write(text string) error {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	if d.writeErr != nil {
		return d.writeErr
	}
	d.writes = append(d.writes, Write{text, d.fg})
	for _, r := range text {
		if r == '\n' {
			d.cursor = console.Pos{Line: d.cursor.Line + 1}
			d.scroll()
			continue
		}
		w := console.RuneWidth(r)
		if w == 0 {
			continue
		}
		next := console.Advance(d.cursor, w, d.width)
		start := d.cursor
		if next.Line > start.Line && next.Col == w {
			// Moved to the next line before being written.
			start = console.Pos{Line: start.Line + 1}
			d.cursor = start
			d.scroll()
			start = d.cursor
			next = console.Advance(start, w, d.width)
		}
		d.cells[start.Line][start.Col] = r
		for i := 1; i < w && start.Col+i < d.width; i++ {
			d.cells[start.Line][start.Col+i] = continuation
		}
		d.cursor = next
		d.scroll()
	}
	return nil
}

// Scrolls the grid up until the cursor is on a visible line.
func (d *fakeDevice) scroll() {
	for d.cursor.Line >= d.height {
		copy(d.cells, d.cells[1:])
		d.cells[d.height-1] = newRow(d.width)
		d.cursor.Line--
	}
}

func (d *fakeDevice) SetForeground(c ui.Color) error {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	d.fg = c
	return nil
}

func (d *fakeDevice) ResetColor() error {
	return d.SetForeground(ui.DefaultColor)
}

func (d *fakeDevice) Beep() error {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	d.beeps++
	return nil
}

func (d *fakeDevice) InjectAbortKeystroke() error {
	DeviceCtrl{d}.Inject(console.KeyEvent{Key: console.EOFKey}, console.K(ui.Enter))
	return nil
}

// DeviceCtrl is an interface for controlling a fake device.
type DeviceCtrl struct{ *fakeDevice }

// GetDeviceCtrl takes a console.Device and returns a DeviceCtrl and true, if
// the device is a fake device. Otherwise it returns an invalid DeviceCtrl and
// false.
func GetDeviceCtrl(d console.Device) (DeviceCtrl, bool) {
	fake, ok := d.(*fakeDevice)
	return DeviceCtrl{fake}, ok
}

// Inject injects key events.
func (c DeviceCtrl) Inject(events ...console.KeyEvent) {
	c.eventChMutex.Lock()
	defer c.eventChMutex.Unlock()
	if c.eventChClosed {
		return
	}
	for _, event := range events {
		c.eventCh <- event
	}
}

// InjectKeys injects presses of the given keys.
func (c DeviceCtrl) InjectKeys(keys ...ui.Key) {
	for _, k := range keys {
		c.Inject(console.KeyEvent{Key: k})
	}
}

// InjectString injects one key press for each rune of s.
func (c DeviceCtrl) InjectString(s string) {
	for _, r := range s {
		c.Inject(console.K(r))
	}
}

// CloseReader makes ReadKey return console.ErrStopped once all injected events
// have been read.
func (c DeviceCtrl) CloseReader() {
	c.eventChMutex.Lock()
	defer c.eventChMutex.Unlock()
	if !c.eventChClosed {
		close(c.eventCh)
		c.eventChClosed = true
	}
}

// SetSize resizes the device. The content in the overlapping region is kept,
// and the cursor is moved into the new grid.
func (c DeviceCtrl) SetSize(width, height int) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	cells := newGrid(width, height)
	for i := 0; i < height && i < c.height; i++ {
		copy(cells[i], c.cells[i])
	}
	c.cells, c.width, c.height = cells, width, height
	c.cursor.Line = min(c.cursor.Line, height-1)
	c.cursor.Col = min(c.cursor.Col, width-1)
}

// SetCursorPos moves the cursor without any range check against the device
// contract. It is used to simulate output written before a line is edited.
func (c DeviceCtrl) SetCursorPos(p console.Pos) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.cursor = p
}

// FailWrites makes all subsequent Write calls fail with err. A nil err
// restores normal behavior.
func (c DeviceCtrl) FailWrites(err error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.writeErr = err
}

// FailCursor makes all subsequent Cursor calls fail with err.
func (c DeviceCtrl) FailCursor(err error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.cursorErr = err
}

// Line returns the content of a line of the grid, without trailing spaces.
func (c DeviceCtrl) Line(i int) string {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.line(i)
}

func (c DeviceCtrl) line(i int) string {
	var sb strings.Builder
	for _, r := range c.cells[i] {
		if r != continuation {
			sb.WriteRune(r)
		}
	}
	return strings.TrimRight(sb.String(), " ")
}

// Lines returns the content of all lines of the grid, with trailing empty
// lines removed.
func (c DeviceCtrl) Lines() []string {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	lines := make([]string, c.height)
	for i := range lines {
		lines[i] = c.line(i)
	}
	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// CursorPos returns the cursor position.
func (c DeviceCtrl) CursorPos() console.Pos {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.cursor
}

// Beeps returns the number of times the bell was rung.
func (c DeviceCtrl) Beeps() int {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.beeps
}

// Foreground returns the current text color.
func (c DeviceCtrl) Foreground() ui.Color {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.fg
}

// Writes returns all recorded Write calls.
func (c DeviceCtrl) Writes() []Write {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return append([]Write(nil), c.writes...)
}
