package undo

import (
	"testing"
	"time"
)

func TestUndoRunsRestoreOnce(t *testing.T) {
	l := NewLedger(time.Minute)
	defer l.Close()

	calls := 0
	l.Record(OpDelete, "notes", func() { calls++ })

	if !l.Undo() {
		t.Fatal("expected undo to apply")
	}
	if calls != 1 {
		t.Fatalf("expected 1 restore call, got %d", calls)
	}
	// The slot is single-use.
	if l.Undo() {
		t.Error("expected second undo to be a no-op")
	}
	if calls != 1 {
		t.Errorf("expected restore untouched by second undo, got %d calls", calls)
	}
}

func TestEmptySlotIsNoOp(t *testing.T) {
	l := NewLedger(time.Minute)
	defer l.Close()

	if l.Undo() {
		t.Error("expected undo with empty slot to report false")
	}
}

func TestRecordDiscardsPrevious(t *testing.T) {
	l := NewLedger(time.Minute)
	defer l.Close()

	var got string
	l.Record(OpDelete, "notes", func() { got = "first" })
	l.Record(OpToggle, "tasks", func() { got = "second" })

	op, coll, ok := l.Pending()
	if !ok || op != OpToggle || coll != "tasks" {
		t.Fatalf("expected pending toggle/tasks, got %s/%s ok=%v", op, coll, ok)
	}

	if !l.Undo() {
		t.Fatal("expected undo to apply")
	}
	if got != "second" {
		t.Errorf("expected latest restore to run, got %q", got)
	}
}

func TestSlotExpires(t *testing.T) {
	l := NewLedger(20 * time.Millisecond)
	defer l.Close()

	l.Record(OpDelete, "tasks", func() { t.Error("restore must not run after expiry") })

	deadline := time.Now().Add(2 * time.Second)
	for {
		if _, _, ok := l.Pending(); !ok {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("slot never expired")
		}
		time.Sleep(5 * time.Millisecond)
	}

	if l.Undo() {
		t.Error("expected undo after expiry to be a no-op")
	}
}

func TestCloseCommitsPending(t *testing.T) {
	l := NewLedger(time.Minute)
	l.Record(OpToggle, "tasks", func() { t.Error("restore must not run after close") })
	l.Close()

	if _, _, ok := l.Pending(); ok {
		t.Error("expected empty slot after close")
	}
	if l.Undo() {
		t.Error("expected undo after close to be a no-op")
	}
}
