// Package prog is the entry point of uconsole. It parses the command line,
// sets up logging and hands control to the first subprogram that accepts the
// flags; the subprograms themselves live in other packages.
package prog

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/uconsole/uconsole/pkg/logutil"
)

// Program is a subprogram of uconsole, such as the build information printer
// or the console itself.
type Program interface {
	// Run runs the subprogram with the standard files, the parsed flags and
	// the remaining arguments.
	Run(fds [3]*os.File, f *Flags, args []string) error
}

// ErrNotSuitable is returned by a Program that does not handle the given
// flags. Composite moves on to the next Program when it sees it.
var ErrNotSuitable = errors.New("internal error: no suitable subprogram")

// Composite returns a Program that runs the given programs in order and stops
// at the first one that does not return ErrNotSuitable.
func Composite(programs ...Program) Program { return composite(programs) }

type composite []Program

func (c composite) Run(fds [3]*os.File, f *Flags, args []string) error {
	for _, p := range c {
		if err := p.Run(fds, f, args); err != ErrNotSuitable {
			return err
		}
	}
	return ErrNotSuitable
}

// BadUsage returns an error that makes Run print msg followed by the usage
// text, and exit with status 2.
func BadUsage(msg string) error { return &usageError{msg} }

type usageError struct{ msg string }

func (e *usageError) Error() string { return e.msg }

// Exit returns an error that makes Run exit with the given status without
// printing anything. Exit(0) is nil.
func Exit(status int) error {
	if status == 0 {
		return nil
	}
	return &exitError{status}
}

type exitError struct{ status int }

func (e *exitError) Error() string { return "" }

// Run runs p with the command line in args and returns the exit status.
func Run(fds [3]*os.File, args []string, p Program) int {
	f, fs, ok := parse(fds[2], args[1:])
	if !ok {
		return 2
	}
	if f.Log != "" {
		if err := logutil.SetOutputFile(f.Log); err != nil {
			fmt.Fprintln(fds[2], "cannot open log file:", err)
		}
	}
	if f.Help {
		printUsage(fds[1], fs)
		return 0
	}
	return status(fds[2], fs, p.Run(fds, f, fs.Args()))
}

func parse(stderr io.Writer, args []string) (*Flags, *flag.FlagSet, bool) {
	f := &Flags{}
	fs := newFlagSet(f)
	err := fs.Parse(args)
	switch {
	case err == nil:
		return f, fs, true
	case errors.Is(err, flag.ErrHelp):
		// Only -help is defined; a bare -h is reported like any unknown flag.
		fmt.Fprintln(stderr, "flag provided but not defined: -h")
	default:
		fmt.Fprintln(stderr, err)
	}
	printUsage(stderr, fs)
	return nil, nil, false
}

// status reports err on stderr and maps it to an exit status.
func status(stderr io.Writer, fs *flag.FlagSet, err error) int {
	if err == nil {
		return 0
	}
	var exit *exitError
	if errors.As(err, &exit) {
		return exit.status
	}
	fmt.Fprintln(stderr, err)
	var usage *usageError
	if errors.As(err, &usage) {
		printUsage(stderr, fs)
	}
	return 2
}

func printUsage(out io.Writer, fs *flag.FlagSet) {
	fmt.Fprintln(out, "Usage: uconsole [flags] [script [args...]]")
	fmt.Fprintln(out, "Supported flags:")
	fs.SetOutput(out)
	fs.PrintDefaults()
}
