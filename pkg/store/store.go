// Package store implements persistent command history.
//
// Two backends are provided: a plain text file with one command per line, and
// a bbolt database.
package store

import (
	"fmt"
	"math"

	"github.com/uconsole/uconsole/pkg/logutil"
	"github.com/uconsole/uconsole/pkg/store/storedefs"
)

var logger = logutil.GetLogger("[store] ")

// Names of the supported backends.
const (
	TextBackend = "text"
	BoltBackend = "bolt"
)

// Open opens the history store at path using the named backend.
func Open(backend, path string) (storedefs.Store, error) {
	switch backend {
	case TextBackend, "":
		return NewTextStore(path)
	case BoltBackend:
		return NewBoltStore(path)
	default:
		return nil, fmt.Errorf("unknown history backend %q", backend)
	}
}

// AllCmds returns the texts of all commands in s, in order.
func AllCmds(s storedefs.Store) ([]string, error) {
	cmds, err := s.CmdsWithSeq(0, math.MaxInt)
	if err != nil {
		return nil, err
	}
	texts := make([]string, len(cmds))
	for i, cmd := range cmds {
		texts[i] = cmd.Text
	}
	return texts, nil
}
