package console

import "github.com/uconsole/uconsole/pkg/ui"

// EOFChar is the character that, entered as the whole line, signals end of
// input.
const EOFChar = '\x1a'

// EOFKey is the key that produces EOFChar.
var EOFKey = ui.K('Z', ui.Ctrl)
