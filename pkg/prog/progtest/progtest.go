// Package progtest contains utilities for testing subprograms in package prog.
package progtest

import (
	"io"
	"os"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/uconsole/uconsole/pkg/must"
	"github.com/uconsole/uconsole/pkg/prog"
)

// Case is a test case for Test.
type Case struct {
	args  []string
	stdin string
	want  result
}

type result struct {
	exit           int
	stdout, stderr output
}

type output struct {
	content string
	partial bool
	checked bool
}

func (o output) String() string {
	if o.partial {
		return "text containing " + quote(o.content)
	}
	return quote(o.content)
}

func (o output) matches(s string) bool {
	if !o.checked {
		return s == ""
	}
	if o.partial {
		return strings.Contains(s, o.content)
	}
	return s == o.content
}

// ThatUconsole returns a new Case with the specified CLI arguments.
//
// The new Case expects the program run to exit with 0, and write nothing to
// stdout or stderr.
//
// When combined with subsequent method calls, a test case reads like English.
// For example, a test for the fact that "uconsole -c nope" exits with 2 and
// writes to stderr can be written as:
//
//	ThatUconsole("-c", "nope").ExitsWith(2).WritesStderrContaining("nope")
func ThatUconsole(args ...string) Case {
	return Case{args: append([]string{"uconsole"}, args...)}
}

// WithStdin returns an altered Case that provides the given input to stdin of
// the program.
func (c Case) WithStdin(s string) Case {
	c.stdin = s
	return c
}

// DoesNothing returns c itself. It is useful to mark tests that otherwise
// don't have any expectations, for example:
//
//	ThatUconsole("-log", "log").DoesNothing()
func (c Case) DoesNothing() Case {
	return c
}

// ExitsWith returns an altered Case that requires the program run to return
// with the given exit status.
func (c Case) ExitsWith(code int) Case {
	c.want.exit = code
	return c
}

// WritesStdout returns an altered Case that requires the program run to write
// exactly the given text to stdout.
func (c Case) WritesStdout(s string) Case {
	c.want.stdout = output{content: s, checked: true}
	return c
}

// WritesStdoutContaining returns an altered Case that requires the program run
// to write output to stdout that contains the given text as a substring.
func (c Case) WritesStdoutContaining(s string) Case {
	c.want.stdout = output{content: s, partial: true, checked: true}
	return c
}

// WritesStderr returns an altered Case that requires the program run to write
// exactly the given text to stderr.
func (c Case) WritesStderr(s string) Case {
	c.want.stderr = output{content: s, checked: true}
	return c
}

// WritesStderrContaining returns an altered Case that requires the program run
// to write output to stderr that contains the given text as a substring.
func (c Case) WritesStderrContaining(s string) Case {
	c.want.stderr = output{content: s, partial: true, checked: true}
	return c
}

// Test runs test cases against a given program.
func Test(t *testing.T, p prog.Program, cases ...Case) {
	t.Helper()
	for _, c := range cases {
		t.Run(strings.Join(c.args, " "), func(t *testing.T) {
			t.Helper()
			exit, stdout, stderr := run(p, c.args, c.stdin)
			if exit != c.want.exit {
				t.Errorf("got exit %v, want %v", exit, c.want.exit)
			}
			if !c.want.stdout.matches(stdout) {
				t.Errorf("got stdout %v, want %v\n%s",
					quote(stdout), c.want.stdout,
					cmp.Diff(c.want.stdout.content, stdout))
			}
			if !c.want.stderr.matches(stderr) {
				t.Errorf("got stderr %v, want %v\n%s",
					quote(stderr), c.want.stderr,
					cmp.Diff(c.want.stderr.content, stderr))
			}
		})
	}
}

func run(p prog.Program, args []string, stdin string) (int, string, string) {
	r0, w0 := must.Pipe()
	// Write stdin in a separate goroutine so that a large input cannot block
	// before the program starts reading.
	go func() {
		io.WriteString(w0, stdin)
		w0.Close()
	}()
	r1, w1 := must.Pipe()
	r2, w2 := must.Pipe()
	// Drain the pipes while the program runs; a pipe only buffers a limited
	// amount of data.
	outCh := readAllAsync(r1)
	errCh := readAllAsync(r2)

	exit := prog.Run([3]*os.File{r0, w1, w2}, args, p)
	r0.Close()
	w1.Close()
	w2.Close()
	return exit, <-outCh, <-errCh
}

func readAllAsync(r *os.File) <-chan string {
	ch := make(chan string, 1)
	go func() {
		defer r.Close()
		ch <- string(must.OK1(io.ReadAll(r)))
	}()
	return ch
}

func quote(s string) string {
	if len(s) > 200 {
		s = s[:200] + "..."
	}
	return "`" + s + "`"
}
