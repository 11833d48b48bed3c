//go:build !windows

package edit

// Whether Ctrl-D on an empty buffer ends input without waiting for Enter.
const immediateEOF = true
