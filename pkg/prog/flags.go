package prog

import (
	"flag"
	"io"
)

// Flags keeps command-line flags.
type Flags struct {
	Log string

	Help, Version, BuildInfo, JSON bool

	// Path of the configuration file. Empty means the default location.
	Config string
	// Path of the history file. Overrides the configuration and turns on
	// history persistence.
	History string
	// Whether the first argument is code to run rather than a script file.
	CodeInArg bool
}

func newFlagSet(f *Flags) *flag.FlagSet {
	fs := flag.NewFlagSet("uconsole", flag.ContinueOnError)
	// Error and usage will be printed explicitly.
	fs.SetOutput(io.Discard)

	fs.StringVar(&f.Log, "log", "", "a file to write debug log to")

	fs.BoolVar(&f.Help, "help", false, "show usage help and quit")
	fs.BoolVar(&f.Version, "version", false, "show version and quit")
	fs.BoolVar(&f.BuildInfo, "buildinfo", false, "show build info and quit")
	fs.BoolVar(&f.JSON, "json", false, "show output in JSON. Useful with -buildinfo and for script errors")

	fs.StringVar(&f.Config, "config", "", "path to the configuration file")
	fs.StringVar(&f.History, "history", "", "path to the history file; enables history persistence")
	fs.BoolVar(&f.CodeInArg, "c", false, "take first argument as code to execute")

	return fs
}
