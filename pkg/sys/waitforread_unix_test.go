//go:build unix

package sys

import (
	"io"
	"testing"
	"time"

	"github.com/uconsole/uconsole/pkg/must"
	"github.com/uconsole/uconsole/pkg/testutil"
)

func TestWaitForRead(t *testing.T) {
	r0, w0 := must.Pipe()
	r1, w1 := must.Pipe()
	defer closeAll(r0, w0, r1, w1)

	w0.WriteString("x")
	ready, err := WaitForRead(-1, r0, r1)
	if err != nil {
		t.Error("WaitForRead errors:", err)
	}
	if !ready[0] {
		t.Error("Want ready[0]")
	}
	if ready[1] {
		t.Error("Don't want ready[1]")
	}
}

func TestWaitForRead_Timeout(t *testing.T) {
	r, w := must.Pipe()
	defer closeAll(r, w)

	ready, err := WaitForRead(testutil.Scaled(time.Millisecond), r)
	if err != nil {
		t.Error("WaitForRead errors:", err)
	}
	if ready[0] {
		t.Error("Don't want ready[0]")
	}
}

func closeAll(files ...io.Closer) {
	for _, file := range files {
		file.Close()
	}
}
