//go:build unix

package shell

import (
	"os"
	"syscall"
)

var terminateSignals = []os.Signal{syscall.SIGTERM, syscall.SIGHUP}
