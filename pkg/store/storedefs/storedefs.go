// Package storedefs contains definitions of the history store API.
//
// It is a separate package so that packages that only depend on the store API
// do not need to depend on the concrete implementations.
package storedefs

import "errors"

// ErrNoMatchingCmd is the error returned when a Cmd query completes with no
// result.
var ErrNoMatchingCmd = errors.New("no matching command line")

// Store is an interface satisfied by history storage backends.
type Store interface {
	// NextCmdSeq returns the sequence number the next added command will get.
	NextCmdSeq() (int, error)
	// AddCmd appends a command and returns its sequence number.
	AddCmd(text string) (int, error)
	// Cmd returns the command with the given sequence number.
	Cmd(seq int) (string, error)
	// CmdsWithSeq returns all commands whose sequence numbers are within
	// [from, upto), in order.
	CmdsWithSeq(from, upto int) ([]Cmd, error)
	// Flush makes sure that all added commands are persisted.
	Flush() error
	// Close flushes and releases the store.
	Close() error
}

// Cmd is an entry in the command history.
type Cmd struct {
	Text string
	Seq  int
}
