// Package edit implements the interactive line editor of the console.
//
// The editor reads key events from a console.Device, keeps an edit buffer and
// a cursor, and redraws the buffer on the device after each change. It
// supports word-wise movement, history browsing with Up and Down, and cyclic
// symbol completion with Tab and Shift-Tab.
package edit

import (
	"errors"
	"sync"

	"github.com/uconsole/uconsole/pkg/console"
	"github.com/uconsole/uconsole/pkg/edit/complete"
	"github.com/uconsole/uconsole/pkg/edit/histutil"
	"github.com/uconsole/uconsole/pkg/logutil"
)

var logger = logutil.GetLogger("[edit] ")

// ErrInterrupted is returned by ReadLine when the user presses Ctrl-C.
var ErrInterrupted = errors.New("interrupted")

const defaultTabSize = 4

// Config keeps the configuration of an Editor.
type Config struct {
	// History browsed with Up and Down. Committed lines are added to it. If
	// nil, an empty History is used.
	History *histutil.History
	// Source of completion candidates. If nil, Tab can only indent.
	Completer complete.Source
	// Distance between tab stops, used both by Tab and by smart dedent.
	// Defaults to 4.
	TabSize int
}

// Editor is the line editor. Only one ReadLine call may be active at a time.
type Editor struct {
	dev console.Device
	cfg Config

	sessionMutex sync.Mutex
	session      *session
	// Abort keystrokes injected after a session had read its last key. The
	// next session discards them.
	staleAborts int
}

// New creates a new Editor that uses the given device.
func New(dev console.Device, cfg Config) *Editor {
	if cfg.History == nil {
		cfg.History = histutil.New()
	}
	if cfg.Completer == nil {
		cfg.Completer = noCompletion{}
	}
	if cfg.TabSize <= 0 {
		cfg.TabSize = defaultTabSize
	}
	return &Editor{dev: dev, cfg: cfg}
}

// History returns the history used by the editor.
func (ed *Editor) History() *histutil.History { return ed.cfg.History }

// ReadLine reads one line from the device. The buffer starts out with indent
// spaces, and editing starts at the current cursor position of the device.
//
// When the user commits a line that consists of only console.EOFChar, or the
// session is aborted, ReadLine returns io.EOF. On Unix, Ctrl-D on an empty
// buffer also returns io.EOF. Ctrl-C returns ErrInterrupted. Errors from the
// device are returned as is; the session is then unusable but the Editor
// can start another one.
func (ed *Editor) ReadLine(indent int) (string, error) {
	s, err := newSession(ed.dev, ed.cfg, indent)
	if err != nil {
		return "", err
	}
	ed.startSession(s)
	defer ed.endSession(s)
	return s.run()
}

// Abort makes an active ReadLine call return io.EOF. It is safe to call from
// any goroutine. It does nothing if there is no active ReadLine call, and
// calling it more than once for the same call has no further effect.
func (ed *Editor) Abort() {
	ed.sessionMutex.Lock()
	defer ed.sessionMutex.Unlock()
	if ed.session != nil {
		ed.session.abort()
	}
}

func (ed *Editor) startSession(s *session) {
	ed.sessionMutex.Lock()
	defer ed.sessionMutex.Unlock()
	s.staleAborts = ed.staleAborts
	ed.session = s
}

// endSession detaches s. An Abort that arrived after s stopped reading left
// its keystrokes on the device; they are counted so that the next session
// skips them.
func (ed *Editor) endSession(s *session) {
	ed.sessionMutex.Lock()
	defer ed.sessionMutex.Unlock()
	ed.session = nil
	ed.staleAborts = s.staleAborts
	if s.isAborted() && !s.abortConsumed {
		logger.Println("abort arrived after the session ended")
		ed.staleAborts++
	}
}

type noCompletion struct{}

func (noCompletion) Globals(string) ([]string, error) { return nil, nil }
func (noCompletion) Members(string) ([]string, error) { return nil, nil }
