// Uconsole is an interactive JavaScript console. It reads code with a line
// editor that supports history, word-wise movement, smart indentation and
// tab completion of global names and members, and evaluates it with an
// embedded interpreter. It can also run script files non-interactively.
package main

import (
	"os"

	"github.com/uconsole/uconsole/pkg/buildinfo"
	"github.com/uconsole/uconsole/pkg/prog"
	"github.com/uconsole/uconsole/pkg/shell"
)

func main() {
	os.Exit(prog.Run(
		[3]*os.File{os.Stdin, os.Stdout, os.Stderr}, os.Args,
		prog.Composite(buildinfo.Program{}, shell.Program{})))
}
