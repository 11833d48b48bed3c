// Package complete implements symbol completion for the line editor.
package complete

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/uconsole/uconsole/pkg/logutil"
	"github.com/uconsole/uconsole/pkg/strutil"
)

var logger = logutil.GetLogger("[complete] ")

// Source supplies symbol names. Implementations may return errors or even
// panic when an expression cannot be evaluated; Resolve treats both as having
// no candidates.
type Source interface {
	// Globals returns the global names that start with prefix.
	Globals(prefix string) ([]string, error)
	// Members returns the member names of the value expr evaluates to.
	Members(expr string) ([]string, error)
}

// CodeBuffer is the text being completed and the position of the cursor in
// it, as a byte index.
type CodeBuffer struct {
	Content string
	Dot     int
}

// Resolve finds the name ending at the cursor and asks src for candidates. It
// returns nil if there is no name before the cursor.
//
// A name is a run of letters, digits, '.' and '_'. If it contains a dot, it is
// split at the last dot: the part before is passed to src.Members, and
// members matching the part after are candidates, except those starting with
// '_' or '<'. Otherwise globals matching the whole name are candidates.
// Matching is case-insensitive.
func Resolve(src Source, code CodeBuffer) *List {
	head := code.Content[:code.Dot]
	start := nameStart(head)
	name := head[start:]
	if name == "" {
		return nil
	}

	if dot := strings.LastIndexByte(name, '.'); dot >= 0 {
		expr, seed := name[:dot], name[dot+1:]
		root := head[:start+dot+1]
		members := call(func() ([]string, error) { return src.Members(expr) })
		var candidates []string
		for _, m := range members {
			if strings.HasPrefix(m, "_") || strings.HasPrefix(m, "<") {
				continue
			}
			if strutil.HasPrefixFold(m, seed) {
				candidates = append(candidates, m)
			}
		}
		return NewList(root, dedup(candidates))
	}

	globals := call(func() ([]string, error) { return src.Globals(name) })
	var candidates []string
	for _, g := range globals {
		if strutil.HasPrefixFold(g, name) {
			candidates = append(candidates, g)
		}
	}
	return NewList(head[:start], dedup(candidates))
}

func isNameRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '.' || r == '_'
}

// nameStart returns the byte index where the trailing name in s starts.
func nameStart(s string) int {
	i := len(s)
	for i > 0 {
		r, w := utf8.DecodeLastRuneInString(s[:i])
		if !isNameRune(r) {
			break
		}
		i -= w
	}
	return i
}

func dedup(names []string) []string {
	seen := make(map[string]bool, len(names))
	var result []string
	for _, name := range names {
		if !seen[name] {
			seen[name] = true
			result = append(result, name)
		}
	}
	return result
}

// call runs f, turning errors and panics into an empty result.
func call(f func() ([]string, error)) (names []string) {
	defer func() {
		if r := recover(); r != nil {
			logger.Println("completion source panicked:", r)
			names = nil
		}
	}()
	names, err := f()
	if err != nil {
		logger.Println("completion source:", err)
		return nil
	}
	return names
}
