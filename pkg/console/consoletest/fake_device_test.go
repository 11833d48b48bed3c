package consoletest

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/uconsole/uconsole/pkg/console"
	"github.com/uconsole/uconsole/pkg/ui"
)

func TestFakeDevice_WriteWraps(t *testing.T) {
	d, ctrl := NewFakeDevice()
	ctrl.SetSize(5, 3)

	d.Write("abcdefg")
	if diff := cmp.Diff([]string{"abcde", "fg"}, ctrl.Lines()); diff != "" {
		t.Errorf("Lines (-want +got):\n%s", diff)
	}
	if pos := ctrl.CursorPos(); pos != (console.Pos{Line: 1, Col: 2}) {
		t.Errorf("cursor at %v, want (1, 2)", pos)
	}
}

func TestFakeDevice_WriteIntoLastColumnMovesToNextLine(t *testing.T) {
	d, ctrl := NewFakeDevice()
	ctrl.SetSize(5, 3)

	d.Write("abcde")
	if pos := ctrl.CursorPos(); pos != (console.Pos{Line: 1, Col: 0}) {
		t.Errorf("cursor at %v, want (1, 0)", pos)
	}
}

func TestFakeDevice_WriteScrolls(t *testing.T) {
	d, ctrl := NewFakeDevice()
	ctrl.SetSize(5, 3)

	d.Write("1\n2\n3\n4")
	if diff := cmp.Diff([]string{"2", "3", "4"}, ctrl.Lines()); diff != "" {
		t.Errorf("Lines (-want +got):\n%s", diff)
	}
	if pos := ctrl.CursorPos(); pos != (console.Pos{Line: 2, Col: 1}) {
		t.Errorf("cursor at %v, want (2, 1)", pos)
	}
}

func TestFakeDevice_WideCharacters(t *testing.T) {
	d, ctrl := NewFakeDevice()
	ctrl.SetSize(5, 3)

	d.Write("abcd好")
	if diff := cmp.Diff([]string{"abcd", "好"}, ctrl.Lines()); diff != "" {
		t.Errorf("Lines (-want +got):\n%s", diff)
	}
	if pos := ctrl.CursorPos(); pos != (console.Pos{Line: 1, Col: 2}) {
		t.Errorf("cursor at %v, want (1, 2)", pos)
	}
}

func TestFakeDevice_SetCursor(t *testing.T) {
	d, ctrl := NewFakeDevice()
	ctrl.SetSize(5, 3)

	if err := d.SetCursor(console.Pos{Line: 2, Col: 3}); err != nil {
		t.Errorf("SetCursor in range -> %v", err)
	}
	d.Write("x")
	if got := ctrl.Line(2); got != "   x" {
		t.Errorf("line 2 is %q", got)
	}
	if err := d.SetCursor(console.Pos{Line: 3, Col: 0}); err == nil {
		t.Errorf("SetCursor out of range -> nil")
	}
}

func TestFakeDevice_ReadKey(t *testing.T) {
	d, ctrl := NewFakeDevice()
	ctrl.InjectString("ab")
	ctrl.InjectKeys(ui.K(ui.Left, ui.Ctrl))
	ctrl.CloseReader()

	for _, want := range []console.KeyEvent{
		console.K('a'), console.K('b'), console.K(ui.Left, ui.Ctrl)} {
		ev, err := d.ReadKey()
		if ev != want || err != nil {
			t.Errorf("ReadKey -> (%v, %v), want (%v, nil)", ev, err, want)
		}
	}
	if _, err := d.ReadKey(); err != console.ErrStopped {
		t.Errorf("ReadKey after close -> %v, want %v", err, console.ErrStopped)
	}
}

func TestFakeDevice_InjectAbortKeystroke(t *testing.T) {
	d, _ := NewFakeDevice()
	d.InjectAbortKeystroke()
	ev1, _ := d.ReadKey()
	ev2, _ := d.ReadKey()
	if ev1.Key != console.EOFKey || ev2.Key != ui.K(ui.Enter) {
		t.Errorf("got %v, %v; want EOF key and Enter", ev1, ev2)
	}
}

func TestFakeDevice_ColorsAndBeeps(t *testing.T) {
	d, ctrl := NewFakeDevice()
	d.SetForeground(ui.Green)
	d.Write("ok")
	d.ResetColor()
	d.Write("plain")
	d.Beep()
	d.Beep()

	want := []Write{{"ok", ui.Green}, {"plain", ui.DefaultColor}}
	if diff := cmp.Diff(want, ctrl.Writes()); diff != "" {
		t.Errorf("Writes (-want +got):\n%s", diff)
	}
	if n := ctrl.Beeps(); n != 2 {
		t.Errorf("Beeps -> %d, want 2", n)
	}
}

func TestFakeDevice_Failures(t *testing.T) {
	d, ctrl := NewFakeDevice()
	errWrite := errors.New("write failed")
	errCursor := errors.New("cursor failed")
	ctrl.FailWrites(errWrite)
	ctrl.FailCursor(errCursor)

	if err := d.Write("x"); err != errWrite {
		t.Errorf("Write -> %v, want %v", err, errWrite)
	}
	if _, err := d.Cursor(); err != errCursor {
		t.Errorf("Cursor -> %v, want %v", err, errCursor)
	}
}

func TestFakeDevice_SetSizeKeepsContent(t *testing.T) {
	d, ctrl := NewFakeDevice()
	d.Write("hello")
	ctrl.SetSize(3, 2)
	if got := ctrl.Line(0); got != "hel" {
		t.Errorf("line 0 after shrinking is %q, want %q", got, "hel")
	}
	if pos := ctrl.CursorPos(); pos != (console.Pos{Line: 0, Col: 2}) {
		t.Errorf("cursor after shrinking is %v, want (0, 2)", pos)
	}
	if w, h := d.Size(); w != 3 || h != 2 {
		t.Errorf("Size -> (%d, %d), want (3, 2)", w, h)
	}
}

func TestGetDeviceCtrl(t *testing.T) {
	d, _ := NewFakeDevice()
	if _, ok := GetDeviceCtrl(d); !ok {
		t.Errorf("GetDeviceCtrl on fake device -> false")
	}
}
