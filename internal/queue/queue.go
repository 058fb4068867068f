// Package queue holds the shared FIFO of pending ledger entries.
//
// The queue is closed-world: it is filled before workers start and only
// drained afterwards, so an empty queue means the work is done and Pop never
// waits.
package queue

import (
	"container/list"
	"sync"

	"ledger-bank/internal/model"
)

type TransactionQueue struct {
	mu      sync.Mutex
	records *list.List
}

// New returns a queue holding records in order.
func New(records []model.TransactionRecord) *TransactionQueue {
	q := &TransactionQueue{records: list.New()}
	for _, r := range records {
		q.records.PushBack(r)
	}
	return q
}

// Push appends r at the tail.
func (q *TransactionQueue) Push(r model.TransactionRecord) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.records.PushBack(r)
}

// Pop removes and returns the head record. ok is false when the queue is
// empty. Each record is returned to exactly one caller.
func (q *TransactionQueue) Pop() (r model.TransactionRecord, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	front := q.records.Front()
	if front == nil {
		return model.TransactionRecord{}, false
	}
	return q.records.Remove(front).(model.TransactionRecord), true
}

// Len returns the number of pending records.
func (q *TransactionQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.records.Len()
}
