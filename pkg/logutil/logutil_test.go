package logutil

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestGetLogger_SharesOutput(t *testing.T) {
	t.Cleanup(func() { SetOutput(io.Discard) })
	l1 := GetLogger("[one] ")
	l2 := GetLogger("[two] ")

	var buf bytes.Buffer
	SetOutput(&buf)
	l1.Print("foo")
	l2.Print("bar")

	s := buf.String()
	if !strings.Contains(s, "[one] ") || !strings.Contains(s, "foo") {
		t.Errorf("output %q does not contain first logger's message", s)
	}
	if !strings.Contains(s, "[two] ") || !strings.Contains(s, "bar") {
		t.Errorf("output %q does not contain second logger's message", s)
	}
}

func TestGetLogger_AfterSetOutput(t *testing.T) {
	t.Cleanup(func() { SetOutput(io.Discard) })
	var buf bytes.Buffer
	SetOutput(&buf)
	GetLogger("[late] ").Print("hello")
	if !strings.Contains(buf.String(), "[late] ") {
		t.Errorf("logger created after SetOutput does not use new output")
	}
}

func TestSetOutputFile(t *testing.T) {
	t.Cleanup(func() { SetOutput(io.Discard) })
	fname := filepath.Join(t.TempDir(), "log")
	logger := GetLogger("[file] ")

	err := SetOutputFile(fname)
	if err != nil {
		t.Fatalf("SetOutputFile -> %v", err)
	}
	logger.Print("to file")
	SetOutputFile("")

	content, err := os.ReadFile(fname)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(content), "to file") {
		t.Errorf("log file content %q does not contain message", content)
	}
}

func TestSetOutputFile_BadPath(t *testing.T) {
	err := SetOutputFile(filepath.Join(t.TempDir(), "no", "such", "dir", "log"))
	if err == nil {
		t.Errorf("SetOutputFile with bad path -> nil error")
	}
}
