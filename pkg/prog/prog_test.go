package prog_test

import (
	"os"
	"testing"

	. "github.com/uconsole/uconsole/pkg/prog"
	"github.com/uconsole/uconsole/pkg/prog/progtest"
	"github.com/uconsole/uconsole/pkg/testutil"
)

var (
	Test         = progtest.Test
	ThatUconsole = progtest.ThatUconsole
)

func TestCommonFlagHandling(t *testing.T) {
	testutil.InTempDir(t)

	Test(t, testProgram{},
		ThatUconsole("-bad-flag").
			ExitsWith(2).
			WritesStderrContaining("flag provided but not defined: -bad-flag\nUsage:"),
		// -h is treated as a bad flag
		ThatUconsole("-h").
			ExitsWith(2).
			WritesStderrContaining("flag provided but not defined: -h\nUsage:"),

		ThatUconsole("-help").
			WritesStdoutContaining("Usage: uconsole [flags] [script [args...]]"),

		ThatUconsole("-log", "logfile").DoesNothing(),
		ThatUconsole("-log", "/a/bad/path/log").
			WritesStderrContaining("/a/bad/path/log"),
	)

	if _, err := os.Stat("logfile"); err != nil {
		t.Errorf("log file does not exist: %v", err)
	}
}

func TestFlagsPassedToProgram(t *testing.T) {
	var got Flags
	var gotArgs []string
	p := flagsProgram{&got, &gotArgs}
	Test(t, p,
		ThatUconsole("-c", "-config", "c.yaml", "-history", "h", "-json", "code", "arg").
			DoesNothing(),
	)
	want := Flags{CodeInArg: true, Config: "c.yaml", History: "h", JSON: true}
	if got != want {
		t.Errorf("got flags %+v, want %+v", got, want)
	}
	if len(gotArgs) != 2 || gotArgs[0] != "code" || gotArgs[1] != "arg" {
		t.Errorf("got args %q", gotArgs)
	}
}

func TestNoSuitableSubprogram(t *testing.T) {
	Test(t, testProgram{notSuitable: true},
		ThatUconsole().
			ExitsWith(2).
			WritesStderr("internal error: no suitable subprogram\n"),
	)
}

func TestComposite(t *testing.T) {
	Test(t,
		Composite(testProgram{notSuitable: true}, testProgram{writeOut: "program 2"}),
		ThatUconsole().WritesStdout("program 2"),
	)
}

func TestComposite_NoSuitableSubprogram(t *testing.T) {
	Test(t,
		Composite(testProgram{notSuitable: true}, testProgram{notSuitable: true}),
		ThatUconsole().
			ExitsWith(2).
			WritesStderr("internal error: no suitable subprogram\n"),
	)
}

func TestComposite_PreferEarlierSubprogram(t *testing.T) {
	Test(t,
		Composite(
			testProgram{writeOut: "program 1"}, testProgram{writeOut: "program 2"}),
		ThatUconsole().WritesStdout("program 1"),
	)
}

func TestBadUsageError(t *testing.T) {
	Test(t,
		testProgram{returnErr: BadUsage("lorem ipsum")},
		ThatUconsole().ExitsWith(2).WritesStderrContaining("lorem ipsum\n"),
	)
}

func TestExitError(t *testing.T) {
	Test(t, testProgram{returnErr: Exit(3)},
		ThatUconsole().ExitsWith(3),
	)
}

func TestExitError_0(t *testing.T) {
	Test(t, testProgram{returnErr: Exit(0)},
		ThatUconsole().ExitsWith(0),
	)
}

type testProgram struct {
	notSuitable bool
	writeOut    string
	returnErr   error
}

func (p testProgram) Run(fds [3]*os.File, _ *Flags, args []string) error {
	if p.notSuitable {
		return ErrNotSuitable
	}
	fds[1].WriteString(p.writeOut)
	return p.returnErr
}

type flagsProgram struct {
	flags *Flags
	args  *[]string
}

func (p flagsProgram) Run(fds [3]*os.File, f *Flags, args []string) error {
	*p.flags = *f
	*p.args = args
	return nil
}
