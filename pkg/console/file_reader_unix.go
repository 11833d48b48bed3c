//go:build unix

package console

import (
	"io"
	"os"
	"sync"
	"syscall"
	"time"

	"github.com/uconsole/uconsole/pkg/sys"
)

// fileReader reads bytes from a file. A blocked read can be interrupted from
// another goroutine.
type fileReader struct {
	file  *os.File
	rStop *os.File
	wStop *os.File
	// Held when a read is in process.
	mutex sync.Mutex
}

func newFileReader(file *os.File) (*fileReader, error) {
	rStop, wStop, err := os.Pipe()
	if err != nil {
		return nil, err
	}
	return &fileReader{file: file, rStop: rStop, wStop: wStop}, nil
}

// ReadByteWithTimeout reads one byte. It returns errInterrupted if Interrupt
// is called while it waits, or was called since the last read.
func (r *fileReader) ReadByteWithTimeout(timeout time.Duration) (byte, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	for {
		ready, err := sys.WaitForRead(timeout, r.file, r.rStop)
		if err != nil {
			if err == syscall.EINTR {
				continue
			}
			return 0, err
		}
		if ready[1] {
			var b [1]byte
			r.rStop.Read(b[:])
			return 0, errInterrupted
		}
		if !ready[0] {
			return 0, errTimeout
		}
		var b [1]byte
		nr, err := r.file.Read(b[:])
		if err != nil {
			return 0, err
		}
		if nr != 1 {
			return 0, io.ErrNoProgress
		}
		return b[0], nil
	}
}

// Interrupt wakes up an outstanding ReadByteWithTimeout call, or the next one
// if there is none. It does not wait for the read to return.
func (r *fileReader) Interrupt() error {
	_, err := r.wStop.Write([]byte{'q'})
	return err
}

// Stop interrupts any outstanding read and blocks until it returns.
func (r *fileReader) Stop() error {
	err := r.Interrupt()
	r.mutex.Lock()
	//lint:ignore SA2001 Locking only makes sure that the read has exited.
	r.mutex.Unlock()
	return err
}

// Close releases the stop pipe. It does not close the underlying file.
func (r *fileReader) Close() {
	r.rStop.Close()
	r.wStop.Close()
}
