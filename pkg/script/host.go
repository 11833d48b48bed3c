// Package script embeds a JavaScript interpreter that evaluates the lines
// entered on the console and supplies names for completion.
package script

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/dop251/goja"

	"github.com/uconsole/uconsole/pkg/logutil"
	"github.com/uconsole/uconsole/pkg/strutil"
)

var logger = logutil.GetLogger("[script] ")

// ErrInterrupted is returned by Eval and Run when the evaluation was stopped
// by Interrupt.
var ErrInterrupted = errors.New("interrupted")

// Lists the string property names of a value and its prototypes.
const namesOfSource = `(function (v) {
	var names = [], seen = {};
	for (var o = Object(v); o !== null; o = Object.getPrototypeOf(o)) {
		Object.getOwnPropertyNames(o).forEach(function (n) {
			if (!seen[n]) { seen[n] = true; names.push(n); }
		});
	}
	return names;
})`

// Host is a JavaScript interpreter. Eval, Run, Globals and Members must be
// called from one goroutine at a time; Interrupt may be called from any
// goroutine.
type Host struct {
	vm      *goja.Runtime
	namesOf goja.Callable

	stdout, stderr io.Writer
	// Serializes writes from print and console.*.
	writeMutex sync.Mutex
}

// New creates a Host. Output of print and console.log goes to stdout; output
// of console.error and console.warn goes to stderr.
func New(stdout, stderr io.Writer) *Host {
	h := &Host{vm: goja.New(), stdout: stdout, stderr: stderr}
	namesOf, err := h.vm.RunString(namesOfSource)
	if err != nil {
		panic(err)
	}
	h.namesOf, _ = goja.AssertFunction(namesOf)

	h.vm.Set("print", h.printer(stdout))
	console := h.vm.NewObject()
	console.Set("log", h.printer(stdout))
	console.Set("info", h.printer(stdout))
	console.Set("warn", h.printer(stderr))
	console.Set("error", h.printer(stderr))
	h.vm.Set("console", console)
	return h
}

func (h *Host) printer(w io.Writer) func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		parts := make([]string, len(call.Arguments))
		for i, arg := range call.Arguments {
			parts[i] = arg.String()
		}
		h.writeMutex.Lock()
		defer h.writeMutex.Unlock()
		fmt.Fprintln(w, strings.Join(parts, " "))
		return goja.Undefined()
	}
}

// SetArgs makes args available to scripts as the global "args".
func (h *Host) SetArgs(args []string) {
	items := make([]any, len(args))
	for i, arg := range args {
		items[i] = arg
	}
	h.vm.Set("args", h.vm.NewArray(items...))
}

// Eval evaluates one piece of code entered interactively, and returns the
// value it evaluates to, formatted for display. The result is empty for
// undefined.
func (h *Host) Eval(code string) (string, error) {
	v, err := h.run("<console>", code)
	if err != nil {
		return "", err
	}
	return h.format(v), nil
}

// Run runs a script. The name is used in error messages.
func (h *Host) Run(name, code string) error {
	_, err := h.run(name, code)
	return err
}

func (h *Host) run(name, code string) (goja.Value, error) {
	h.vm.ClearInterrupt()
	v, err := h.vm.RunScript(name, code)
	var interrupted *goja.InterruptedError
	if errors.As(err, &interrupted) {
		return nil, ErrInterrupted
	}
	return v, err
}

// Interrupt stops the current or next evaluation.
func (h *Host) Interrupt() {
	logger.Println("interrupting evaluation")
	h.vm.Interrupt(ErrInterrupted)
}

// Incomplete reports whether err says that the code ended before a complete
// statement, so that more lines should be read.
func Incomplete(err error) bool {
	var syntaxErr *goja.CompilerSyntaxError
	return errors.As(err, &syntaxErr) &&
		strings.Contains(syntaxErr.Error(), "Unexpected end of input")
}

// Check compiles code without running it.
func Check(code string) error {
	_, err := goja.Compile("<console>", code, false)
	return err
}

// Location is the place of a syntax error in the source.
type Location struct {
	File         string
	Line, Column int
}

// SyntaxErrorLocation returns the location of err if it is a syntax error.
func SyntaxErrorLocation(err error) (Location, bool) {
	var syntaxErr *goja.CompilerSyntaxError
	if !errors.As(err, &syntaxErr) || syntaxErr.File == nil {
		return Location{}, false
	}
	p := syntaxErr.File.Position(syntaxErr.Offset)
	return Location{File: p.Filename, Line: p.Line, Column: p.Column}, true
}

// format shows strings quoted, and objects as JSON when possible.
func (h *Host) format(v goja.Value) string {
	if v == nil || goja.IsUndefined(v) {
		return ""
	}
	switch v.Export().(type) {
	case string:
		return fmt.Sprintf("%q", v.String())
	case map[string]any, []any:
		json := h.vm.Get("JSON").ToObject(h.vm)
		stringify, ok := goja.AssertFunction(json.Get("stringify"))
		if ok {
			if s, err := stringify(json, v); err == nil && !goja.IsUndefined(s) {
				return s.String()
			}
		}
	}
	return v.String()
}

// Globals returns the global names that start with prefix, ignoring case,
// sorted.
func (h *Host) Globals(prefix string) ([]string, error) {
	names, err := h.names(h.vm.GlobalObject())
	if err != nil {
		return nil, err
	}
	var matched []string
	for _, name := range names {
		if strutil.HasPrefixFold(name, prefix) {
			matched = append(matched, name)
		}
	}
	sort.Strings(matched)
	return matched, nil
}

// Members evaluates expr and returns the property names of the result,
// including inherited ones, sorted. It fails if expr cannot be evaluated or
// evaluates to null or undefined.
func (h *Host) Members(expr string) ([]string, error) {
	v, err := h.run("<completion>", "("+expr+")")
	if err != nil {
		return nil, err
	}
	if goja.IsUndefined(v) || goja.IsNull(v) {
		return nil, fmt.Errorf("%s is %s", expr, v)
	}
	names, err := h.names(v)
	if err != nil {
		return nil, err
	}
	sort.Strings(names)
	return names, nil
}

func (h *Host) names(v goja.Value) ([]string, error) {
	result, err := h.namesOf(goja.Undefined(), v)
	if err != nil {
		return nil, err
	}
	var names []string
	if err := h.vm.ExportTo(result, &names); err != nil {
		return nil, err
	}
	return names, nil
}
