package edit

// Ctrl-Z must be followed by Enter, as in the Windows console.
const immediateEOF = false
