package bank

import (
	"context"

	"ledger-bank/internal/interfaces"
	"ledger-bank/internal/model"
	"ledger-bank/internal/rwlock"
)

// Account is one bank account. balance is only touched while lock is held:
// read lock for inspection, write lock for mutation.
type Account struct {
	ID      int
	balance int64
	lock    rwlock.Lock
}

// AccountLog is the transaction history of one account. It has its own lock,
// independent from the account's, so a balance change and its log line are
// not published atomically to concurrent readers.
type AccountLog struct {
	ID   int
	sink interfaces.LogSink
	lock rwlock.Lock
}

func (l *AccountLog) append(ctx context.Context, e model.Entry) error {
	l.lock.AcquireWrite()
	defer l.lock.ReleaseWrite()
	return l.sink.Append(ctx, l.ID, e.Line())
}

// readLine takes the read lock for exactly one line so writers can interleave
// between lines.
func (l *AccountLog) readLine(r interfaces.LineReader) (string, error) {
	l.lock.AcquireRead()
	defer l.lock.ReleaseRead()
	return r.ReadLine()
}
