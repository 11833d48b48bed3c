package edit

import (
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/uconsole/uconsole/pkg/console"
	"github.com/uconsole/uconsole/pkg/console/consoletest"
	"github.com/uconsole/uconsole/pkg/edit/histutil"
	"github.com/uconsole/uconsole/pkg/testutil"
	"github.com/uconsole/uconsole/pkg/ui"
)

func setup(cfg Config) (*Editor, consoletest.DeviceCtrl) {
	dev, ctrl := consoletest.NewFakeDevice()
	return New(dev, cfg), ctrl
}

type readResult struct {
	line string
	err  error
}

func startReadLine(ed *Editor, indent int) <-chan readResult {
	ch := make(chan readResult, 1)
	go func() {
		line, err := ed.ReadLine(indent)
		ch <- readResult{line, err}
	}()
	return ch
}

func wait(t *testing.T, ch <-chan readResult) (string, error) {
	t.Helper()
	select {
	case r := <-ch:
		return r.line, r.err
	case <-time.After(testutil.Scaled(2 * time.Second)):
		t.Fatal("ReadLine did not return")
		return "", nil
	}
}

func readLine(t *testing.T, ed *Editor, indent int) (string, error) {
	t.Helper()
	return wait(t, startReadLine(ed, indent))
}

func waitFor(f func() bool) bool {
	deadline := time.Now().Add(testutil.Scaled(2 * time.Second))
	for time.Now().Before(deadline) {
		if f() {
			return true
		}
		time.Sleep(time.Millisecond)
	}
	return false
}

func enter(ctrl consoletest.DeviceCtrl) { ctrl.InjectKeys(ui.K('M', ui.Ctrl)) }

func testReadLine(t *testing.T, ed *Editor, indent int, wantLine string) {
	t.Helper()
	line, err := readLine(t, ed, indent)
	if line != wantLine || err != nil {
		t.Errorf("ReadLine -> (%q, %v), want (%q, nil)", line, err, wantLine)
	}
}

func testLine(t *testing.T, ctrl consoletest.DeviceCtrl, i int, want string) {
	t.Helper()
	if got := ctrl.Line(i); got != want {
		t.Errorf("line %d is %q, want %q", i, got, want)
	}
}

func testCursor(t *testing.T, ctrl consoletest.DeviceCtrl, want console.Pos) {
	t.Helper()
	if got := ctrl.CursorPos(); got != want {
		t.Errorf("cursor at %v, want %v", got, want)
	}
}

func TestReadLine_InsertAtEnd(t *testing.T) {
	ed, ctrl := setup(Config{})
	ctrl.InjectString("print('hi')")
	enter(ctrl)

	testReadLine(t, ed, 0, "print('hi')")
	testLine(t, ctrl, 0, "print('hi')")
	testCursor(t, ctrl, console.Pos{Line: 1})
}

func TestReadLine_AcceptsEnterKey(t *testing.T) {
	ed, ctrl := setup(Config{})
	ctrl.InjectString("x")
	ctrl.InjectKeys(ui.K(ui.Enter))
	testReadLine(t, ed, 0, "x")
}

func TestReadLine_CursorFollowsInsertion(t *testing.T) {
	ed, ctrl := setup(Config{})
	ch := startReadLine(ed, 0)
	ctrl.InjectString("abc")
	if !waitFor(func() bool { return ctrl.Line(0) == "abc" }) {
		t.Fatalf("line 0 is %q, want abc", ctrl.Line(0))
	}
	testCursor(t, ctrl, console.Pos{Col: 3})
	enter(ctrl)
	wait(t, ch)
}

func TestReadLine_InsertInMiddle(t *testing.T) {
	ed, ctrl := setup(Config{})
	ctrl.InjectString("hllo")
	ctrl.InjectKeys(ui.K(ui.Left), ui.K(ui.Left), ui.K(ui.Left))
	ctrl.InjectString("e")
	enter(ctrl)

	testReadLine(t, ed, 0, "hello")
	testLine(t, ctrl, 0, "hello")
}

func TestReadLine_Backspace(t *testing.T) {
	ed, ctrl := setup(Config{})
	ctrl.InjectString("abcdef")
	ctrl.InjectKeys(ui.K(ui.Backspace), ui.K(ui.Backspace), ui.K('H', ui.Ctrl))
	enter(ctrl)

	testReadLine(t, ed, 0, "abc")
	// Stale cells are blanked.
	testLine(t, ctrl, 0, "abc")
}

func TestReadLine_BackspaceAtStart(t *testing.T) {
	ed, ctrl := setup(Config{})
	ctrl.InjectString("ab")
	ctrl.InjectKeys(ui.K(ui.Home), ui.K(ui.Backspace))
	enter(ctrl)
	testReadLine(t, ed, 0, "ab")
}

func TestReadLine_SmartDedent(t *testing.T) {
	ed, ctrl := setup(Config{})
	ctrl.InjectKeys(ui.K(ui.Backspace))
	enter(ctrl)
	testReadLine(t, ed, 4, "")

	ctrl.InjectKeys(ui.K(ui.Backspace))
	enter(ctrl)
	testReadLine(t, ed, 8, "    ")

	// Longer buffers lose one character at a time.
	ctrl.InjectString(" ")
	ctrl.InjectKeys(ui.K(ui.Backspace))
	enter(ctrl)
	testReadLine(t, ed, 4, "    ")
}

func TestReadLine_Delete(t *testing.T) {
	ed, ctrl := setup(Config{})
	ctrl.InjectString("abc")
	ctrl.InjectKeys(ui.K(ui.Delete), ui.K(ui.Home), ui.K(ui.Delete))
	enter(ctrl)
	testReadLine(t, ed, 0, "bc")
	testLine(t, ctrl, 0, "bc")
}

func TestReadLine_HomeEnd(t *testing.T) {
	ed, ctrl := setup(Config{})
	ctrl.InjectString("bc")
	ctrl.InjectKeys(ui.K(ui.Home))
	ctrl.InjectString("a")
	ctrl.InjectKeys(ui.K(ui.End))
	ctrl.InjectString("d")
	enter(ctrl)
	testReadLine(t, ed, 0, "abcd")
}

func TestReadLine_WordMovement(t *testing.T) {
	ed, ctrl := setup(Config{})
	ctrl.InjectString("foo.bar(baz)")
	ctrl.InjectKeys(ui.K(ui.Left, ui.Ctrl), ui.K(ui.Left, ui.Ctrl))
	ctrl.InjectString("_")
	ctrl.InjectKeys(ui.K(ui.Home), ui.K(ui.Right, ui.Ctrl))
	ctrl.InjectString("!")
	enter(ctrl)
	testReadLine(t, ed, 0, "foo._!bar(baz)")
}

func TestReadLine_Escape(t *testing.T) {
	ed, ctrl := setup(Config{})
	ctrl.InjectString("abc")
	ctrl.InjectKeys(ui.Escape)
	ctrl.InjectString("x")
	enter(ctrl)
	testReadLine(t, ed, 0, "x")
	testLine(t, ctrl, 0, "x")
}

func TestReadLine_ControlCharacters(t *testing.T) {
	ed, ctrl := setup(Config{})
	ctrl.InjectString("a")
	ctrl.InjectKeys(ui.K('A', ui.Ctrl), ui.K('@', ui.Ctrl))
	ctrl.InjectString("b")
	enter(ctrl)
	testReadLine(t, ed, 0, "a\x01b")
	testLine(t, ctrl, 0, "a^Ab")
}

func TestReadLine_C1ControlCharacter(t *testing.T) {
	ed, ctrl := setup(Config{})
	ctrl.InjectString("a\u009bb")
	enter(ctrl)
	testReadLine(t, ed, 0, "a\u009bb")
	testLine(t, ctrl, 0, "aM-^[b")
	for _, w := range ctrl.Writes() {
		if strings.ContainsRune(w.Text, 0x9b) {
			t.Errorf("raw U+009B written to device: %q", w.Text)
		}
	}
}

func TestReadLine_IgnoredEvents(t *testing.T) {
	ed, ctrl := setup(Config{})
	ctrl.Inject(console.KeyEvent{Key: ui.K('z'), Release: true})
	ctrl.InjectKeys(ui.K(ui.ModifierOnly, ui.Ctrl), ui.K('x', ui.Alt), ui.K(ui.F1),
		ui.K(ui.PageUp), ui.K(ui.Tab, ui.Ctrl))
	ctrl.InjectString("y")
	enter(ctrl)
	testReadLine(t, ed, 0, "y")
}

func TestReadLine_ShiftedCharacter(t *testing.T) {
	ed, ctrl := setup(Config{})
	ctrl.InjectKeys(ui.K('A', ui.Shift))
	enter(ctrl)
	testReadLine(t, ed, 0, "A")
}

func TestReadLine_EOFSentinel(t *testing.T) {
	h := histutil.New()
	ed, ctrl := setup(Config{History: h})
	ctrl.InjectString("a")
	ctrl.InjectKeys(console.EOFKey, ui.K(ui.Home), ui.K(ui.Delete))
	enter(ctrl)

	line, err := readLine(t, ed, 0)
	if line != "" || err != io.EOF {
		t.Errorf("ReadLine -> (%q, %v), want (\"\", io.EOF)", line, err)
	}
	if h.Len() != 0 {
		t.Errorf("history has %d entries, want 0", h.Len())
	}
	testLine(t, ctrl, 0, "^"+string(console.EOFChar+0x40))
}

func TestReadLine_Interrupt(t *testing.T) {
	h := histutil.New()
	ed, ctrl := setup(Config{History: h})
	ctrl.InjectString("abc")
	ctrl.InjectKeys(ui.K('C', ui.Ctrl))

	line, err := readLine(t, ed, 0)
	if line != "" || err != ErrInterrupted {
		t.Errorf("ReadLine -> (%q, %v), want (\"\", ErrInterrupted)", line, err)
	}
	if h.Len() != 0 {
		t.Errorf("history has %d entries, want 0", h.Len())
	}
	testCursor(t, ctrl, console.Pos{Line: 1})
}

func TestReadLine_AddsToHistory(t *testing.T) {
	h := histutil.New()
	ed, ctrl := setup(Config{History: h})
	ctrl.InjectString("one")
	enter(ctrl)
	testReadLine(t, ed, 0, "one")
	enter(ctrl)
	testReadLine(t, ed, 0, "")

	if got := h.Entries(); len(got) != 1 || got[0] != "one" {
		t.Errorf("history entries = %q, want [one]", got)
	}
}

func TestReadLine_HistoryBrowsing(t *testing.T) {
	h := histutil.New()
	h.Load([]string{"one", "two", "three"})
	ed, ctrl := setup(Config{History: h})

	ctrl.InjectKeys(ui.K(ui.Up))
	enter(ctrl)
	testReadLine(t, ed, 0, "three")

	ctrl.InjectKeys(ui.K(ui.Up), ui.K(ui.Up), ui.K(ui.Up), ui.K(ui.Down))
	enter(ctrl)
	testReadLine(t, ed, 0, "two")
}

func TestReadLine_HistoryReplayKeepsPosition(t *testing.T) {
	h := histutil.New()
	h.Load([]string{"one", "two"})
	ed, ctrl := setup(Config{History: h})

	ctrl.InjectKeys(ui.K(ui.Up), ui.K(ui.Up))
	enter(ctrl)
	testReadLine(t, ed, 0, "one")
	if got := h.Current(); got != "two" {
		t.Errorf("after replaying unedited entry, current = %q, want two", got)
	}

	ctrl.InjectKeys(ui.K(ui.Up))
	ctrl.InjectString("!")
	enter(ctrl)
	testReadLine(t, ed, 0, "one!")
	if got := h.Current(); got != "" {
		t.Errorf("after adding edited entry, current = %q, want empty", got)
	}
}

func TestReadLine_HistoryReplacesDisplay(t *testing.T) {
	h := histutil.New()
	h.Load([]string{"x"})
	ed, ctrl := setup(Config{History: h})
	ctrl.InjectString("a long line")
	ctrl.InjectKeys(ui.K(ui.Up))
	enter(ctrl)
	testReadLine(t, ed, 0, "x")
	testLine(t, ctrl, 0, "x")
}

func TestReadLine_WrapsAtWidth(t *testing.T) {
	ed, ctrl := setup(Config{})
	ch := startReadLine(ed, 0)
	text := strings.Repeat("a", consoletest.FakeDeviceWidth+5)
	ctrl.InjectString(text)
	if !waitFor(func() bool { return ctrl.Line(1) == "aaaaa" }) {
		t.Fatalf("lines are %q", ctrl.Lines())
	}
	testCursor(t, ctrl, console.Pos{Line: 1, Col: 5})

	ctrl.InjectKeys(ui.K(ui.Home))
	ctrl.InjectString("b")
	if !waitFor(func() bool { return ctrl.Line(1) == "aaaaaa" }) {
		t.Fatalf("lines are %q", ctrl.Lines())
	}
	testLine(t, ctrl, 0, "b"+strings.Repeat("a", consoletest.FakeDeviceWidth-1))
	if !waitFor(func() bool { return ctrl.CursorPos() == console.Pos{Col: 1} }) {
		t.Errorf("cursor at %v, want %v", ctrl.CursorPos(), console.Pos{Col: 1})
	}

	enter(ctrl)
	wait(t, ch)
	testCursor(t, ctrl, console.Pos{Line: 2})
}

func TestReadLine_ExactlyFullLine(t *testing.T) {
	ed, ctrl := setup(Config{})
	ctrl.InjectString(strings.Repeat("a", consoletest.FakeDeviceWidth))
	enter(ctrl)
	readLine(t, ed, 0)
	testCursor(t, ctrl, console.Pos{Line: 1})
	testLine(t, ctrl, 1, "")
}

func TestReadLine_ScrollsAnchor(t *testing.T) {
	ed, ctrl := setup(Config{})
	last := consoletest.FakeDeviceHeight - 1
	ctrl.SetCursorPos(console.Pos{Line: last})
	ch := startReadLine(ed, 0)

	ctrl.InjectString(strings.Repeat("a", consoletest.FakeDeviceWidth+5))
	if !waitFor(func() bool { return ctrl.Line(last) == "aaaaa" }) {
		t.Fatalf("lines are %q", ctrl.Lines())
	}
	ctrl.InjectKeys(ui.K(ui.Home))
	if !waitFor(func() bool { return ctrl.CursorPos() == console.Pos{Line: last - 1} }) {
		t.Errorf("cursor at %v after Home, want %v", ctrl.CursorPos(), console.Pos{Line: last - 1})
	}
	ctrl.InjectString("q")
	enter(ctrl)
	line, _ := wait(t, ch)
	if want := "q" + strings.Repeat("a", consoletest.FakeDeviceWidth+5); line != want {
		t.Errorf("ReadLine -> %q, want %q", line, want)
	}
	testLine(t, ctrl, last-2, "q"+strings.Repeat("a", consoletest.FakeDeviceWidth-1))
}

func TestReadLine_WideCharacters(t *testing.T) {
	ed, ctrl := setup(Config{})
	ctrl.SetCursorPos(console.Pos{Col: consoletest.FakeDeviceWidth - 1})
	ch := startReadLine(ed, 0)
	ctrl.InjectString("中")
	if !waitFor(func() bool { return ctrl.Line(1) == "中" }) {
		t.Fatalf("lines are %q", ctrl.Lines())
	}
	testCursor(t, ctrl, console.Pos{Line: 1, Col: 2})
	ctrl.InjectKeys(ui.K(ui.Home))
	if !waitFor(func() bool { return ctrl.CursorPos() == console.Pos{Line: 1} }) {
		t.Errorf("cursor at %v after Home", ctrl.CursorPos())
	}
	enter(ctrl)
	testReadLineResult(t, ch, "中")
}

func testReadLineResult(t *testing.T, ch <-chan readResult, want string) {
	t.Helper()
	line, err := wait(t, ch)
	if line != want || err != nil {
		t.Errorf("ReadLine -> (%q, %v), want (%q, nil)", line, err, want)
	}
}

func TestReadLine_ResizedDevice(t *testing.T) {
	ed, ctrl := setup(Config{})
	ctrl.SetCursorPos(console.Pos{Line: 5, Col: 30})
	ch := startReadLine(ed, 0)
	ctrl.InjectString("abc")
	if !waitFor(func() bool { return strings.HasSuffix(ctrl.Line(5), "abc") }) {
		t.Fatalf("lines are %q", ctrl.Lines())
	}
	ctrl.SetSize(20, 3)
	ctrl.InjectKeys(ui.K(ui.Home))
	ctrl.InjectString("x")
	enter(ctrl)
	testReadLineResult(t, ch, "xabc")
	// The device scrolled once while rendering and once on Enter.
	testLine(t, ctrl, 0, strings.Repeat(" ", 19)+"x")
}

func TestReadLine_Abort(t *testing.T) {
	h := histutil.New()
	ed, ctrl := setup(Config{History: h})
	ch := startReadLine(ed, 0)
	ctrl.InjectString("abc")
	if !waitFor(func() bool { return ctrl.Line(0) == "abc" }) {
		t.Fatalf("line 0 is %q", ctrl.Line(0))
	}
	ed.Abort()
	ed.Abort()

	line, err := wait(t, ch)
	if line != "" || err != io.EOF {
		t.Errorf("ReadLine -> (%q, %v), want (\"\", io.EOF)", line, err)
	}
	testLine(t, ctrl, 0, "")
	if h.Len() != 0 {
		t.Errorf("history has %d entries after abort", h.Len())
	}

	// Only one abort keystroke was injected; the next session works normally.
	ctrl.InjectString("ok")
	enter(ctrl)
	testReadLine(t, ed, 0, "ok")
}

func TestAbort_AfterLastKey(t *testing.T) {
	ed, ctrl := setup(Config{})
	// A session that has read its final key but is not yet detached.
	s, err := newSession(ed.dev, ed.cfg, 0)
	if err != nil {
		t.Fatal(err)
	}
	ed.startSession(s)
	ed.Abort()
	ed.endSession(s)
	if ed.staleAborts != 1 {
		t.Fatalf("staleAborts = %d, want 1", ed.staleAborts)
	}

	// The leftover EOF and Enter are skipped; keys after them are not.
	ctrl.InjectString("ok")
	enter(ctrl)
	testReadLine(t, ed, 0, "ok")
	if ed.staleAborts != 0 {
		t.Errorf("staleAborts = %d after skipping, want 0", ed.staleAborts)
	}
	ctrl.InjectString("next")
	enter(ctrl)
	testReadLine(t, ed, 0, "next")
}

func TestAbort_NoSession(t *testing.T) {
	ed, ctrl := setup(Config{})
	ed.Abort()
	ctrl.InjectString("x")
	enter(ctrl)
	testReadLine(t, ed, 0, "x")
}

func TestReadLine_CursorError(t *testing.T) {
	ed, ctrl := setup(Config{})
	errCursor := errors.New("no cursor")
	ctrl.FailCursor(errCursor)
	_, err := readLine(t, ed, 0)
	if err != errCursor {
		t.Errorf("ReadLine -> error %v, want %v", err, errCursor)
	}
}

func TestReadLine_WriteError(t *testing.T) {
	ed, ctrl := setup(Config{})
	errWrite := errors.New("broken pipe")
	ctrl.FailWrites(errWrite)
	ctrl.InjectString("x")
	_, err := readLine(t, ed, 0)
	if err != errWrite {
		t.Errorf("ReadLine -> error %v, want %v", err, errWrite)
	}

	// A failed session does not affect the next one.
	ctrl.FailWrites(nil)
	ctrl.InjectString("y")
	enter(ctrl)
	testReadLine(t, ed, 0, "y")
}

func TestReadLine_DeviceStopped(t *testing.T) {
	ed, ctrl := setup(Config{})
	ctrl.CloseReader()
	_, err := readLine(t, ed, 0)
	if err != console.ErrStopped {
		t.Errorf("ReadLine -> error %v, want ErrStopped", err)
	}
}
