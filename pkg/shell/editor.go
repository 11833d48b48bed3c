package shell

import (
	"bufio"
	"errors"
	"fmt"
	"io"

	"github.com/uconsole/uconsole/pkg/config"
	"github.com/uconsole/uconsole/pkg/console"
	"github.com/uconsole/uconsole/pkg/edit"
	"github.com/uconsole/uconsole/pkg/edit/complete"
	"github.com/uconsole/uconsole/pkg/edit/histutil"
	"github.com/uconsole/uconsole/pkg/strutil"
	"github.com/uconsole/uconsole/pkg/ui"
)

// The interface that line readers of the interactive mode satisfy.
type lineEditor interface {
	// Shows the prompt and reads one line. The indent is a hint for the
	// initial indentation of the line.
	readLine(prompt string, indent int) (string, error)
	// Makes a pending or future readLine return io.EOF. It may be called from
	// any goroutine.
	abort()
	// Prints the result or the error of an evaluation.
	print(kind outputKind, s string)
}

type outputKind int

const (
	resultOutput outputKind = iota
	errorOutput
	warningOutput
)

// ttyEditor reads lines with the full line editor.
type ttyEditor struct {
	dev    console.Device
	ed     *edit.Editor
	colors config.Colors
	// Puts the terminal into raw mode and returns a function restoring it.
	// Nil when no setup is needed.
	setup func() (func() error, error)
}

func newTTYEditor(dev console.Device, cfg *config.Config, hist *histutil.History, src complete.Source) *ttyEditor {
	ed := edit.New(dev, edit.Config{
		History: hist, Completer: src, TabSize: cfg.Editor.TabSize})
	return &ttyEditor{dev: dev, ed: ed, colors: cfg.Colors}
}

func (t *ttyEditor) readLine(prompt string, indent int) (string, error) {
	if t.setup != nil {
		restore, err := t.setup()
		if err != nil {
			return "", fmt.Errorf("cannot set up terminal: %w", err)
		}
		defer func() {
			if rerr := restore(); rerr != nil {
				logger.Println("restoring terminal:", rerr)
			}
		}()
	}
	if err := t.write(t.colors.Prompt, prompt); err != nil {
		return "", err
	}
	return t.ed.ReadLine(indent)
}

func (t *ttyEditor) abort() { t.ed.Abort() }

func (t *ttyEditor) print(kind outputKind, s string) {
	if err := t.write(t.color(kind), s+"\n"); err != nil {
		logger.Println("printing output:", err)
	}
}

func (t *ttyEditor) color(kind outputKind) ui.Color {
	switch kind {
	case errorOutput:
		return t.colors.Error
	case warningOutput:
		return t.colors.Warning
	default:
		return t.colors.Output
	}
}

func (t *ttyEditor) write(c ui.Color, s string) error {
	if !t.colors.Enabled || c == ui.DefaultColor {
		return t.dev.Write(s)
	}
	if err := t.dev.SetForeground(c); err != nil {
		return err
	}
	return errors.Join(t.dev.Write(s), t.dev.ResetColor())
}

// minEditor reads lines without any editing support. It is used when the
// input is not a terminal, and as a fallback when the line editor fails.
type minEditor struct {
	in     *bufio.Reader
	closer io.Closer
	// Prompts are written to out; results to stdout and errors to stderr.
	out, stdout, stderr io.Writer
}

func newMinEditor(in io.ReadCloser, out, stdout, stderr io.Writer) *minEditor {
	return &minEditor{bufio.NewReader(in), in, out, stdout, stderr}
}

func (ed *minEditor) readLine(prompt string, _ int) (string, error) {
	fmt.Fprint(ed.out, prompt)
	line, err := ed.in.ReadString('\n')
	if err == io.EOF && line != "" {
		// The last line lacks a line ending.
		err = nil
	}
	return strutil.ChopLineEnding(line), err
}

// Closing the input is the only way to interrupt a pending read.
func (ed *minEditor) abort() { ed.closer.Close() }

func (ed *minEditor) print(kind outputKind, s string) {
	w := ed.stdout
	if kind != resultOutput {
		w = ed.stderr
	}
	fmt.Fprintln(w, s)
}
