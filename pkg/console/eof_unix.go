//go:build !windows

package console

import "github.com/uconsole/uconsole/pkg/ui"

// EOFChar is the character that, entered as the whole line, signals end of
// input.
const EOFChar = '\x04'

// EOFKey is the key that produces EOFChar.
var EOFKey = ui.K('D', ui.Ctrl)
