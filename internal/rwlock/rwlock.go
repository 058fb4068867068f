// Package rwlock provides the reader/writer lock used to guard accounts and
// their transaction logs.
//
// The lock follows the first-reader/last-reader pattern: the first reader to
// arrive takes the exclusive lock on behalf of every reader, and the last
// reader to leave gives it back. Readers therefore have priority. A writer
// waiting behind a steady stream of overlapping readers can starve; callers
// that need writer progress must not hold read locks indefinitely.
package rwlock

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// MisuseError reports an unbalanced acquire/release on a Lock.
// It is raised with panic: it means a broken invariant, not a transaction failure.
type MisuseError struct {
	Op     string
	Reason string
}

// Error implements the error interface.
func (e *MisuseError) Error() string {
	return fmt.Sprintf("lock misuse in %s: %s", e.Op, e.Reason)
}

// Lock is a reader-priority reader/writer lock.
// The zero value is an unlocked Lock. A Lock must not be copied after first use.
type Lock struct {
	countLock   sync.Mutex // guards readerCount
	writeLock   sync.Mutex // held by one writer or, collectively, by all readers
	readerCount int
	writer      atomic.Bool
}

// New returns an unlocked Lock.
func New() *Lock {
	return &Lock{}
}

// AcquireRead locks l for reading. Many readers may hold l at once.
func (l *Lock) AcquireRead() {
	l.countLock.Lock()
	l.readerCount++
	if l.readerCount == 1 {
		l.writeLock.Lock()
	}
	l.countLock.Unlock()
}

// ReleaseRead undoes one AcquireRead. It panics with *MisuseError when no
// reader holds l.
func (l *Lock) ReleaseRead() {
	l.countLock.Lock()
	if l.readerCount == 0 {
		l.countLock.Unlock()
		panic(&MisuseError{Op: "ReleaseRead", Reason: "lock is not held for reading"})
	}
	l.readerCount--
	if l.readerCount == 0 {
		l.writeLock.Unlock()
	}
	l.countLock.Unlock()
}

// AcquireWrite locks l for exclusive use once no reader and no other writer
// holds it.
func (l *Lock) AcquireWrite() {
	l.writeLock.Lock()
	l.writer.Store(true)
}

// ReleaseWrite undoes AcquireWrite. It panics with *MisuseError when l is not
// held by a writer.
func (l *Lock) ReleaseWrite() {
	if !l.writer.CompareAndSwap(true, false) {
		panic(&MisuseError{Op: "ReleaseWrite", Reason: "lock is not held for writing"})
	}
	l.writeLock.Unlock()
}

// Readers reports how many readers currently hold l.
func (l *Lock) Readers() int {
	l.countLock.Lock()
	defer l.countLock.Unlock()
	return l.readerCount
}

// Idle reports whether l is held by nobody at the moment of the call.
func (l *Lock) Idle() bool {
	return l.Readers() == 0 && !l.writer.Load()
}

// WithRead runs fn while holding l for reading.
func (l *Lock) WithRead(fn func()) {
	l.AcquireRead()
	defer l.ReleaseRead()
	fn()
}

// WithWrite runs fn while holding l for writing.
func (l *Lock) WithWrite(fn func()) {
	l.AcquireWrite()
	defer l.ReleaseWrite()
	fn()
}
