// Package shell is the entry point for the console: it runs scripts, or reads
// and evaluates code interactively.
package shell

import (
	"fmt"
	"io"
	"os"

	"github.com/uconsole/uconsole/pkg/config"
	"github.com/uconsole/uconsole/pkg/logutil"
	"github.com/uconsole/uconsole/pkg/prog"
)

var logger = logutil.GetLogger("[shell] ")

// Program is the shell subprogram. It is always suitable, so it should come
// last in prog.Composite.
type Program struct{}

func (Program) Run(fds [3]*os.File, f *prog.Flags, args []string) error {
	if len(args) > 0 {
		exit := runScript(fds, args, &scriptCfg{Cmd: f.CodeInArg, JSON: f.JSON})
		return prog.Exit(exit)
	}
	if f.CodeInArg {
		return prog.BadUsage("-c requires an argument")
	}
	cfg := loadConfig(f, fds[2])
	Interact(fds, &InteractConfig{Config: cfg})
	return nil
}

// Loads the configuration, falling back to the defaults on errors. The
// -history flag overrides the configured history file.
func loadConfig(f *prog.Flags, stderr io.Writer) *config.Config {
	cfg := config.Default()
	path := f.Config
	if path == "" {
		var err error
		path, err = config.Path()
		if err != nil {
			fmt.Fprintln(stderr, "Warning:", err)
		}
	}
	if path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			fmt.Fprintln(stderr, "Warning:", err)
			fmt.Fprintln(stderr, "Using the default configuration.")
		} else {
			cfg = loaded
		}
	}
	if f.History != "" {
		cfg.History.Persist = true
		cfg.History.File = f.History
	}
	return cfg
}
