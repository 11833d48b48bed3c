package shell

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/uconsole/uconsole/pkg/config"
	"github.com/uconsole/uconsole/pkg/console"
	"github.com/uconsole/uconsole/pkg/edit"
	"github.com/uconsole/uconsole/pkg/edit/histutil"
	"github.com/uconsole/uconsole/pkg/script"
	"github.com/uconsole/uconsole/pkg/store"
	"github.com/uconsole/uconsole/pkg/sys"
)

// Prompts of the interactive mode.
const (
	primaryPrompt      = ">>> "
	continuationPrompt = "... "
)

// InteractConfig keeps configuration for the interactive mode.
type InteractConfig struct {
	// If nil, the default configuration is used.
	Config *config.Config
}

// Interact runs an interactive session, reading code from fds[0] until the
// end of input.
func Interact(fds [3]*os.File, cfg *InteractConfig) {
	c := cfg.Config
	if c == nil {
		c = config.Default()
	}
	hist := setupHistory(c, fds[2])
	defer func() {
		if err := hist.Close(); err != nil {
			fmt.Fprintln(fds[2], "Warning: cannot save history:", err)
		}
	}()
	host := script.New(fds[1], fds[2])

	newMin := func() lineEditor { return newMinEditor(fds[0], fds[2], fds[1], fds[2]) }
	var ed lineEditor
	if sys.IsATTY(fds[0].Fd()) && sys.IsATTY(fds[1].Fd()) {
		term, err := console.NewTerminal(fds[0], fds[1])
		if err != nil {
			fmt.Fprintln(fds[2], "Cannot start line editor:", err)
			ed = newMin()
		} else {
			defer term.Close()
			tty := newTTYEditor(term, c, hist, host)
			tty.setup = func() (func() error, error) { return console.Setup(fds[0], fds[1]) }
			ed = tty
		}
	} else {
		ed = newMin()
	}

	r := &repl{ed: ed, newMin: newMin, host: host, indentSize: c.Editor.IndentSize}
	stop := notifySignals(host.Interrupt, r.terminate)
	defer stop()
	r.run()
}

// Opens the history store named by the configuration and loads its content.
// Failures are reported and leave the history in memory only.
func setupHistory(cfg *config.Config, stderr io.Writer) *histutil.History {
	hist := histutil.New()
	if !cfg.History.Persist {
		return hist
	}
	path, err := cfg.HistoryPath()
	if err != nil {
		fmt.Fprintln(stderr, "Warning: cannot determine history file:", err)
		return hist
	}
	s, err := store.Open(cfg.History.Backend, path)
	if err != nil {
		fmt.Fprintln(stderr, "Warning: cannot open history:", err)
		return hist
	}
	lines, err := store.AllCmds(s)
	if err != nil {
		fmt.Fprintln(stderr, "Warning: cannot read history:", err)
	}
	hist.Load(lines)
	hist.AttachWriter(s, cfg.History.AutoFlush, cfg.History.NoDuplicates)
	logger.Printf("loaded %d history entries from %s", len(lines), path)
	return hist
}

// The read-eval-print loop.
type repl struct {
	ed         lineEditor
	newMin     func() lineEditor
	host       *script.Host
	indentSize int

	// Guards ed, which is replaced when falling back to the minimal editor
	// and read by terminate.
	edMutex    sync.Mutex
	terminated atomic.Bool
}

func (r *repl) editor() lineEditor {
	r.edMutex.Lock()
	defer r.edMutex.Unlock()
	return r.ed
}

func (r *repl) setEditor(ed lineEditor) {
	r.edMutex.Lock()
	defer r.edMutex.Unlock()
	r.ed = ed
}

// Called from the signal goroutine.
func (r *repl) terminate() {
	r.terminated.Store(true)
	r.host.Interrupt()
	r.editor().abort()
}

func (r *repl) run() {
	cooldown := time.Second
	for !r.terminated.Load() {
		code, err := r.readCode()
		if r.terminated.Load() || err == io.EOF {
			return
		} else if err == edit.ErrInterrupted {
			continue
		} else if err != nil {
			ed := r.editor()
			ed.print(errorOutput, fmt.Sprint("Editor error: ", err))
			if _, isMinEditor := ed.(*minEditor); !isMinEditor {
				ed.print(errorOutput, "Falling back to basic line editor")
				r.setEditor(r.newMin())
			} else {
				ed.print(errorOutput, fmt.Sprint("Restarting editor in ", cooldown))
				time.Sleep(cooldown)
				if cooldown < time.Minute {
					cooldown *= 2
				}
			}
			continue
		}
		cooldown = time.Second
		if strings.TrimSpace(code) == "" {
			continue
		}
		r.eval(code)
	}
}

// Reads lines until they form a complete piece of code. Continuation lines
// are indented by the number of open brackets.
func (r *repl) readCode() (string, error) {
	var lines []string
	prompt, indent := primaryPrompt, 0
	for {
		line, err := r.editor().readLine(prompt, indent)
		if err != nil {
			return "", err
		}
		lines = append(lines, line)
		code := strings.Join(lines, "\n")
		if !script.Incomplete(script.Check(code)) {
			return code, nil
		}
		prompt = continuationPrompt
		indent = openBrackets(code) * r.indentSize
	}
}

func (r *repl) eval(code string) {
	result, err := r.host.Eval(code)
	ed := r.editor()
	switch {
	case errors.Is(err, script.ErrInterrupted):
		ed.print(warningOutput, "Interrupted")
	case err != nil:
		ed.print(errorOutput, err.Error())
	case result != "":
		ed.print(resultOutput, result)
	}
}
