// Package undo implements the single-slot undo ledger: at most one pending
// inverse operation with a countdown, committed automatically on expiry.
package undo

import (
	"sync"
	"time"
)

// Op tags the kind of action held in the slot.
type Op string

// Undoable operations.
const (
	OpDelete Op = "delete"
	OpToggle Op = "toggle"
)

// Ledger holds at most one pending action. Recording a new action
// unconditionally discards the previous one; there is no stack.
type Ledger struct {
	grace time.Duration

	mu      sync.Mutex
	op      Op
	coll    string
	restore func()
	timer   *time.Timer
}

// NewLedger creates a ledger whose slot expires after grace.
func NewLedger(grace time.Duration) *Ledger {
	if grace <= 0 {
		grace = 5 * time.Second
	}
	return &Ledger{grace: grace}
}

// Record fills the slot with a new pending action. restore must capture the
// affected entity's last-known value (or prior flag) and re-apply it when
// called. Any previously pending action becomes permanent immediately.
func (l *Ledger) Record(op Op, collection string, restore func()) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.clearLocked()
	l.op = op
	l.coll = collection
	l.restore = restore
	l.timer = time.AfterFunc(l.grace, l.expire)
}

// Undo re-applies the captured inverse and clears the slot. With an empty
// slot (or after the countdown elapsed) it is a no-op and returns false.
func (l *Ledger) Undo() bool {
	l.mu.Lock()
	restore := l.restore
	l.clearLocked()
	l.mu.Unlock()

	if restore == nil {
		return false
	}
	restore()
	return true
}

// Pending reports the slot's operation tag and collection, if any.
func (l *Ledger) Pending() (Op, string, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.op, l.coll, l.restore != nil
}

// Close cancels the countdown and makes any pending action permanent.
func (l *Ledger) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.clearLocked()
}

func (l *Ledger) expire() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.clearLocked()
}

func (l *Ledger) clearLocked() {
	if l.timer != nil {
		l.timer.Stop()
		l.timer = nil
	}
	l.op = ""
	l.coll = ""
	l.restore = nil
}
