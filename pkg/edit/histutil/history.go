// Package histutil keeps the in-memory command history of the line editor and
// forwards new entries to a persistent store.
package histutil

import (
	"github.com/uconsole/uconsole/pkg/logutil"
	"github.com/uconsole/uconsole/pkg/store/storedefs"
)

var logger = logutil.GetLogger("[histutil] ")

// History is an ordered log of committed lines with a browse cursor.
//
// The cursor, current, is always within [0, Len()]. A one-shot flag set by
// Previous decides whether the following Next advances; this keeps the first
// Next after an Add from skipping an entry.
//
// History is not safe for concurrent use.
type History struct {
	entries []string
	current int
	armed   bool

	store     storedefs.Store
	autoFlush bool
	dedupe    bool
	seen      map[string]bool
}

// New returns an empty History.
func New() *History {
	return &History{}
}

// Add appends a line. Empty lines are ignored.
//
// If the line was edited since it was recalled, or the cursor was already past
// the last entry, the cursor moves past the new entry. Otherwise the cursor
// advances by one, so that replaying an unedited entry keeps the browse
// position: pressing Up, Enter, Down, Enter walks a recorded sequence.
func (h *History) Add(line string, edited bool) {
	if line == "" {
		return
	}
	oldCount := len(h.entries)
	h.entries = append(h.entries, line)
	if edited || h.current >= oldCount {
		h.current = len(h.entries)
	} else {
		h.current++
	}
	h.armed = false
	h.write(line)
}

// Previous moves the cursor back by one entry, stopping at the first, and
// returns the entry under the cursor.
func (h *History) Previous() string {
	if h.current > 0 {
		h.current--
	}
	h.armed = true
	return h.Current()
}

// Next moves the cursor forward by one entry, stopping at the last, and
// returns the entry under the cursor. The move only happens if the flag was
// armed by an earlier Previous or Next.
func (h *History) Next() string {
	if h.current+1 < len(h.entries) && h.armed {
		h.current++
	}
	h.armed = true
	return h.Current()
}

// Current returns the entry under the cursor, or "" if the cursor is past the
// last entry.
func (h *History) Current() string {
	if h.current < 0 || h.current >= len(h.entries) {
		return ""
	}
	return h.entries[h.current]
}

// Clear removes all entries. An attached store is not affected.
func (h *History) Clear() {
	h.entries = nil
	h.current = 0
	h.armed = false
}

// Load appends lines without forwarding them to the store, and moves the
// cursor past the last entry. Empty lines are skipped.
func (h *History) Load(lines []string) {
	for _, line := range lines {
		if line != "" {
			h.entries = append(h.entries, line)
		}
	}
	h.current = len(h.entries)
	h.armed = false
}

// Len returns the number of entries.
func (h *History) Len() int { return len(h.entries) }

// Entries returns a copy of all entries in chronological order.
func (h *History) Entries() []string {
	return append([]string(nil), h.entries...)
}

// AttachWriter starts forwarding lines passed to future calls of Add to s. If
// autoFlush is true, s is flushed after every write. If dedupe is true, lines
// already in the history, or already written, are not written again.
//
// A previously attached store is closed.
func (h *History) AttachWriter(s storedefs.Store, autoFlush, dedupe bool) {
	h.Close()
	h.store, h.autoFlush, h.dedupe = s, autoFlush, dedupe
	if dedupe {
		h.seen = make(map[string]bool, len(h.entries))
		for _, line := range h.entries {
			h.seen[line] = true
		}
	}
}

// Persisting reports whether a store is attached.
func (h *History) Persisting() bool { return h.store != nil }

// Close closes the attached store, if any.
func (h *History) Close() error {
	if h.store == nil {
		return nil
	}
	err := h.store.Close()
	h.store, h.seen = nil, nil
	return err
}

func (h *History) write(line string) {
	if h.store == nil {
		return
	}
	if h.dedupe {
		if h.seen[line] {
			return
		}
		h.seen[line] = true
	}
	_, err := h.store.AddCmd(line)
	if err == nil && h.autoFlush {
		err = h.store.Flush()
	}
	if err != nil {
		logger.Println("failed to write history, disabling persistence:", err)
		if err := h.Close(); err != nil {
			logger.Println("failed to close history store:", err)
		}
	}
}
