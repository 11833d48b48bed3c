package store

import (
	"bufio"
	"errors"
	"os"
	"strings"
	"sync"

	. "github.com/uconsole/uconsole/pkg/store/storedefs"
)

// textStore keeps the history in a text file, one command per line. Sequence
// numbers are line numbers among non-empty lines, starting from 1.
//
// Commands are written as is. One that contains a newline therefore comes
// back as several commands when the file is loaded again.
type textStore struct {
	mutex sync.Mutex
	file  *os.File
	w     *bufio.Writer
	cmds  []string
}

// NewTextStore opens the text history file at path, creating it if needed.
// Existing content is loaded; a trailing "\r" is stripped from each line and
// empty lines are skipped.
func NewTextStore(path string) (Store, error) {
	file, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0600)
	if err != nil {
		return nil, err
	}
	var cmds []string
	scanner := bufio.NewScanner(file)
	scanner.Buffer(nil, 1<<20)
	for scanner.Scan() {
		line := strings.TrimSuffix(scanner.Text(), "\r")
		if line != "" {
			cmds = append(cmds, line)
		}
	}
	if err := scanner.Err(); err != nil {
		file.Close()
		return nil, err
	}
	logger.Printf("loaded %d commands from %s", len(cmds), path)
	return &textStore{file: file, w: bufio.NewWriter(file), cmds: cmds}, nil
}

func (s *textStore) NextCmdSeq() (int, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return len(s.cmds) + 1, nil
}

// AddCmd buffers the command; it reaches the file on Flush or Close.
func (s *textStore) AddCmd(cmd string) (int, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if _, err := s.w.WriteString(cmd + "\n"); err != nil {
		return 0, err
	}
	s.cmds = append(s.cmds, cmd)
	return len(s.cmds), nil
}

func (s *textStore) Cmd(seq int) (string, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if seq < 1 || seq > len(s.cmds) {
		return "", ErrNoMatchingCmd
	}
	return s.cmds[seq-1], nil
}

func (s *textStore) CmdsWithSeq(from, upto int) ([]Cmd, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	var cmds []Cmd
	for i, text := range s.cmds {
		seq := i + 1
		if from <= seq && seq < upto {
			cmds = append(cmds, Cmd{Text: text, Seq: seq})
		}
	}
	return cmds, nil
}

func (s *textStore) Flush() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.w.Flush()
}

func (s *textStore) Close() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return errors.Join(s.w.Flush(), s.file.Close())
}
