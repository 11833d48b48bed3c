package shell

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"unicode/utf8"

	"github.com/uconsole/uconsole/pkg/script"
)

// Configuration for the script mode.
type scriptCfg struct {
	Cmd  bool
	JSON bool
}

// Runs a script file, or code from -c. The remaining arguments are exposed
// to the script as "args".
func runScript(fds [3]*os.File, args []string, cfg *scriptCfg) int {
	arg0 := args[0]
	host := script.New(fds[1], fds[2])
	host.SetArgs(args[1:])

	var name, code string
	if cfg.Cmd {
		name = "code from -c"
		code = arg0
	} else {
		var err error
		name, err = filepath.Abs(arg0)
		if err != nil {
			fmt.Fprintf(fds[2],
				"cannot get full path of script %q: %v\n", arg0, err)
			return 2
		}
		code, err = readFileUTF8(name)
		if err != nil {
			fmt.Fprintf(fds[2], "cannot read script %q: %v\n", name, err)
			return 2
		}
	}

	stop := notifySignals(host.Interrupt, host.Interrupt)
	defer stop()
	if err := host.Run(name, code); err != nil {
		if cfg.JSON {
			fmt.Fprintf(fds[1], "%s\n", errorToJSON(err))
		} else {
			fmt.Fprintln(fds[2], err)
		}
		return 2
	}
	return 0
}

var errSourceNotUTF8 = errors.New("source is not UTF-8")

func readFileUTF8(fname string) (string, error) {
	bytes, err := os.ReadFile(fname)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(bytes) {
		return "", errSourceNotUTF8
	}
	return string(bytes), nil
}

// An auxiliary struct for converting errors to JSON. The location fields are
// only present for syntax errors.
type errorInJSON struct {
	FileName string `json:"fileName,omitempty"`
	Line     int    `json:"line,omitempty"`
	Column   int    `json:"column,omitempty"`
	Message  string `json:"message"`
}

func errorToJSON(err error) []byte {
	e := errorInJSON{Message: err.Error()}
	if loc, ok := script.SyntaxErrorLocation(err); ok {
		e.FileName, e.Line, e.Column = loc.File, loc.Line, loc.Column
	}
	jsonError, errMarshal := json.Marshal([]errorInJSON{e})
	if errMarshal != nil {
		return []byte(`[{"message":"Unable to convert the error to JSON"}]`)
	}
	return jsonError
}
