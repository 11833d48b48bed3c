// Package storetest keeps test suites against storedefs.Store.
package storetest

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/uconsole/uconsole/pkg/store/storedefs"
)

var (
	cmds     = []string{"print(1)", "for x in y:", "    pass", "print(1)"}
	searches = []struct {
		from, upto int
		wantCmds   []storedefs.Cmd
	}{
		{0, 10, []storedefs.Cmd{
			{Text: "print(1)", Seq: 1}, {Text: "for x in y:", Seq: 2},
			{Text: "    pass", Seq: 3}, {Text: "print(1)", Seq: 4}}},
		{2, 4, []storedefs.Cmd{{Text: "for x in y:", Seq: 2}, {Text: "    pass", Seq: 3}}},
		{4, 4, nil},
		{5, 10, nil},
	}
)

// TestCmd tests the command history functionality of a Store. The store must
// be empty.
func TestCmd(t *testing.T, store storedefs.Store) {
	t.Helper()

	startSeq, err := store.NextCmdSeq()
	if startSeq != 1 || err != nil {
		t.Errorf("store.NextCmdSeq() -> (%v, %v), want (1, nil)", startSeq, err)
	}

	for i, cmd := range cmds {
		wantSeq := startSeq + i
		seq, err := store.AddCmd(cmd)
		if seq != wantSeq || err != nil {
			t.Errorf("store.AddCmd(%q) -> (%v, %v), want (%v, nil)",
				cmd, seq, err, wantSeq)
		}
	}

	endSeq, err := store.NextCmdSeq()
	wantedEndSeq := startSeq + len(cmds)
	if endSeq != wantedEndSeq || err != nil {
		t.Errorf("store.NextCmdSeq() -> (%v, %v), want (%v, nil)",
			endSeq, err, wantedEndSeq)
	}

	for i, wantCmd := range cmds {
		seq := i + startSeq
		cmd, err := store.Cmd(seq)
		if cmd != wantCmd || err != nil {
			t.Errorf("store.Cmd(%v) -> (%v, %v), want (%v, nil)",
				seq, cmd, err, wantCmd)
		}
	}

	if _, err := store.Cmd(endSeq); !matchErr(err, storedefs.ErrNoMatchingCmd) {
		t.Errorf("store.Cmd(%v) -> error %v, want %v",
			endSeq, err, storedefs.ErrNoMatchingCmd)
	}

	for _, tc := range searches {
		got, err := store.CmdsWithSeq(tc.from, tc.upto)
		if err != nil {
			t.Errorf("store.CmdsWithSeq(%v, %v) -> error %v", tc.from, tc.upto, err)
		}
		if diff := cmp.Diff(tc.wantCmds, got); diff != "" {
			t.Errorf("store.CmdsWithSeq(%v, %v) (-want +got):\n%s",
				tc.from, tc.upto, diff)
		}
	}

	if err := store.Flush(); err != nil {
		t.Errorf("store.Flush() -> %v", err)
	}
}

func matchErr(e1, e2 error) bool {
	return (e1 == nil && e2 == nil) || (e1 != nil && e2 != nil && e1.Error() == e2.Error())
}
