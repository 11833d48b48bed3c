//go:build unix

package sys

import (
	"os"
	"time"

	"golang.org/x/sys/unix"
)

// WaitForRead blocks until at least one of files can be read without
// blocking, or until timeout passes. A negative timeout waits forever. The
// returned slice reports, for each file, whether it is ready. An interrupted
// wait returns unix.EINTR, which callers normally retry.
func WaitForRead(timeout time.Duration, files ...*os.File) ([]bool, error) {
	fds := make([]int, len(files))
	var set unix.FdSet
	nfd := 0
	for i, file := range files {
		fds[i] = int(file.Fd())
		set.Set(fds[i])
		nfd = max(nfd, fds[i]+1)
	}
	var tv *unix.Timeval
	if timeout >= 0 {
		t := unix.NsecToTimeval(timeout.Nanoseconds())
		tv = &t
	}
	_, err := unix.Select(nfd, &set, nil, nil, tv)
	ready := make([]bool, len(files))
	if err != nil {
		return ready, err
	}
	for i, fd := range fds {
		ready[i] = set.IsSet(fd)
	}
	return ready, nil
}
