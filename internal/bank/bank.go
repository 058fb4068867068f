// Package bank holds the account table, the per-account logs and the
// success/failure tally, and runs the five ledger operations against them.
//
// Lock order, outermost first: account locks (ascending account ID), log locks,
// then the bank lock. No code path acquires them in any other order.
//
// A balance change and the matching log line are guarded by different locks,
// so a concurrent reader can observe the new balance before the log line, or,
// for a transfer, the success tally before either log line. This window is
// accepted; the tally is the authoritative record of outcomes.
package bank

import (
	"context"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"ledger-bank/internal/interfaces"
	"ledger-bank/internal/model"
	"ledger-bank/internal/rwlock"
)

// DefaultTopic is the topic outcome events are published on.
const DefaultTopic = "ledger_outcomes"

type Bank struct {
	accounts []*Account
	logs     []*AccountLog

	// bankLock guards the tally and serialises writes to out.
	bankLock sync.Mutex
	success  int
	failure  int
	out      io.Writer

	log       *logrus.Logger
	runID     string
	publisher interfaces.EventPublisher
	topic     string
	closed    atomic.Bool
}

type Option func(*Bank)

// WithReport sets the stream completion messages and balances are written to.
func WithReport(w io.Writer) Option {
	return func(b *Bank) { b.out = w }
}

// WithPublisher publishes an OutcomeEvent for every recorded outcome.
func WithPublisher(p interfaces.EventPublisher, topic string) Option {
	return func(b *Bank) {
		b.publisher = p
		if topic != "" {
			b.topic = topic
		}
	}
}

// WithRunID tags published events with id.
func WithRunID(id string) Option {
	return func(b *Bank) { b.runID = id }
}

// New creates a bank with n accounts, IDs 0..n-1, all with a zero balance.
// Every account log writes through sink; the bank never opens or closes the
// destinations behind it.
func New(n int, sink interfaces.LogSink, log *logrus.Logger, opts ...Option) *Bank {
	if log == nil {
		log = logrus.New()
		log.SetOutput(io.Discard)
	}
	b := &Bank{
		accounts: make([]*Account, n),
		logs:     make([]*AccountLog, n),
		out:      io.Discard,
		log:      log,
		topic:    DefaultTopic,
	}
	for i := 0; i < n; i++ {
		b.accounts[i] = &Account{ID: i}
		b.logs[i] = &AccountLog{ID: i, sink: sink}
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Size returns the number of accounts.
func (b *Bank) Size() int {
	return len(b.accounts)
}

// Balance returns the balance of account id, read under its read lock.
func (b *Bank) Balance(id int) (int64, error) {
	a, err := b.account(id)
	if err != nil {
		return 0, err
	}
	a.lock.AcquireRead()
	defer a.lock.ReleaseRead()
	return a.balance, nil
}

// Balances returns every balance, indexed by account ID. Each account is read
// under its own read lock, so the result is not a single atomic snapshot
// while workers are running.
func (b *Bank) Balances() []int64 {
	out := make([]int64, len(b.accounts))
	for i, a := range b.accounts {
		a.lock.AcquireRead()
		out[i] = a.balance
		a.lock.ReleaseRead()
	}
	return out
}

// Tally returns the success and failure counters.
func (b *Bank) Tally() (success, failure int) {
	b.bankLock.Lock()
	defer b.bankLock.Unlock()
	return b.success, b.failure
}

// PrintAccounts writes one "ID# {id} | {balance}" line per account followed by
// the tally line.
func (b *Bank) PrintAccounts(w io.Writer) {
	for _, a := range b.accounts {
		a.lock.AcquireRead()
		fmt.Fprintf(w, "ID# %d | %d\n", a.ID, a.balance)
		a.lock.ReleaseRead()
	}

	b.bankLock.Lock()
	fmt.Fprintf(w, "Success: %d Fails: %d\n", b.success, b.failure)
	b.bankLock.Unlock()
}

// Close ends the bank's lifetime. Every account and log lock must be idle;
// otherwise a *rwlock.MisuseError naming the first busy lock is returned.
// Operations called after Close return ErrClosed.
func (b *Bank) Close() error {
	if !b.closed.CompareAndSwap(false, true) {
		return nil
	}
	for _, a := range b.accounts {
		if !a.lock.Idle() {
			return &rwlock.MisuseError{Op: "Close", Reason: fmt.Sprintf("account %d lock still held", a.ID)}
		}
	}
	for _, l := range b.logs {
		if !l.lock.Idle() {
			return &rwlock.MisuseError{Op: "Close", Reason: fmt.Sprintf("account %d log lock still held", l.ID)}
		}
	}
	return nil
}

func (b *Bank) account(id int) (*Account, error) {
	if id < 0 || id >= len(b.accounts) {
		return nil, fmt.Errorf("%w: %d", ErrUnknownAccount, id)
	}
	return b.accounts[id], nil
}

// operation identifies the ledger entry being executed, for messages and events.
type operation struct {
	worker  int
	ledger  int
	mode    model.Mode
	account int
	other   int
	amount  int64
}

// emit writes one line to the report stream.
func (b *Bank) emit(line string) {
	b.bankLock.Lock()
	fmt.Fprintln(b.out, line)
	b.bankLock.Unlock()
}

func (b *Bank) recordSuccess(ctx context.Context, op operation, message string) {
	b.bankLock.Lock()
	fmt.Fprintln(b.out, message)
	b.success++
	b.bankLock.Unlock()

	b.publish(ctx, op, message, nil)
}

func (b *Bank) recordFailure(ctx context.Context, op operation, message string, cause error) {
	b.bankLock.Lock()
	fmt.Fprintln(b.out, message)
	b.failure++
	b.bankLock.Unlock()

	b.log.WithFields(logrus.Fields{
		"worker_id":  op.worker,
		"ledger_id":  op.ledger,
		"account_id": op.account,
		"mode":       op.mode.String(),
		"error":      cause,
	}).Debug("transaction failed")

	b.publish(ctx, op, message, cause)
}

func (b *Bank) publish(ctx context.Context, op operation, message string, cause error) {
	if b.publisher == nil {
		return
	}

	event := model.OutcomeEvent{
		RunID:      b.runID,
		WorkerID:   op.worker,
		LedgerID:   op.ledger,
		Mode:       op.mode.String(),
		Account:    op.account,
		Other:      op.other,
		Amount:     op.amount,
		Success:    cause == nil,
		Message:    message,
		OccurredAt: time.Now(),
	}
	if cause != nil {
		event.Error = cause.Error()
	}

	if err := b.publisher.Publish(ctx, b.topic, event); err != nil {
		b.log.WithFields(logrus.Fields{
			"ledger_id": op.ledger,
			"error":     err,
		}).Warn("failed to publish outcome event")
	}
}

// writeLog appends e to the log of account id. A sink error does not change
// the outcome of the operation that produced e; it is logged and dropped.
func (b *Bank) writeLog(ctx context.Context, id int, e model.Entry) {
	if err := b.logs[id].append(ctx, e); err != nil {
		b.log.WithFields(logrus.Fields{
			"account_id": id,
			"error":      err,
		}).Warn("failed to append account log")
	}
}
