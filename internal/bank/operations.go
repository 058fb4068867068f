package bank

import (
	"context"
	"errors"
	"fmt"
	"io"

	"ledger-bank/internal/model"
)

// Execute runs rec as worker, dispatching on its mode. Every call except one
// on a closed bank records exactly one success or failure.
func (b *Bank) Execute(ctx context.Context, worker int, rec model.TransactionRecord) error {
	switch rec.Mode {
	case model.Deposit:
		return b.Deposit(ctx, worker, rec.SequenceID, rec.Account, rec.Amount)
	case model.Withdraw:
		return b.Withdraw(ctx, worker, rec.SequenceID, rec.Account, rec.Amount)
	case model.Transfer:
		return b.Transfer(ctx, worker, rec.SequenceID, rec.Account, rec.Other, rec.Amount)
	case model.CheckBalance:
		return b.CheckBalance(ctx, worker, rec.SequenceID, rec.Account)
	case model.PrintLog:
		return b.PrintAccountLog(ctx, worker, rec.SequenceID, rec.Account)
	default:
		if b.closed.Load() {
			return ErrClosed
		}
		op := operation{worker: worker, ledger: rec.SequenceID, mode: rec.Mode, account: rec.Account, other: rec.Other, amount: rec.Amount}
		err := fmt.Errorf("%w: %d", ErrUnknownMode, int(rec.Mode))
		b.recordFailure(ctx, op, fmt.Sprintf("Worker %d failed to complete ledger %d: %v", worker, rec.SequenceID, err), err)
		return err
	}
}

// rejectUnknown records a failure for an entry naming an account outside the
// table. Nothing is written to any account log.
func (b *Bank) rejectUnknown(ctx context.Context, op operation, message string, err error) error {
	b.recordFailure(ctx, op, message, err)
	return err
}

// Deposit adds amount to account. A negative amount is recorded as a failure.
func (b *Bank) Deposit(ctx context.Context, worker, ledgerID, account int, amount int64) error {
	if b.closed.Load() {
		return ErrClosed
	}
	op := operation{worker: worker, ledger: ledgerID, mode: model.Deposit, account: account, amount: amount}
	done := fmt.Sprintf("Worker %d completed ledger %d: deposit %d into account %d", worker, ledgerID, amount, account)
	failed := fmt.Sprintf("Worker %d failed to complete ledger %d: deposit %d into account %d", worker, ledgerID, amount, account)

	a, err := b.account(account)
	if err != nil {
		return b.rejectUnknown(ctx, op, failed, err)
	}

	a.lock.AcquireWrite()
	defer a.lock.ReleaseWrite()

	if amount < 0 {
		b.writeLog(ctx, account, model.Entry{Type: model.TypeDeposit, Status: model.StatusFailed})
		b.recordFailure(ctx, op, failed, ErrInvalidAmount)
		return ErrInvalidAmount
	}

	a.balance += amount
	b.writeLog(ctx, account, model.Entry{Type: model.TypeDeposit, Amount: amount, Status: model.StatusSuccess})
	b.recordSuccess(ctx, op, done)
	return nil
}

// Withdraw removes amount from account when the balance strictly exceeds it.
func (b *Bank) Withdraw(ctx context.Context, worker, ledgerID, account int, amount int64) error {
	if b.closed.Load() {
		return ErrClosed
	}
	op := operation{worker: worker, ledger: ledgerID, mode: model.Withdraw, account: account, amount: amount}
	done := fmt.Sprintf("Worker %d completed ledger %d: withdraw %d from account %d", worker, ledgerID, amount, account)
	failed := fmt.Sprintf("Worker %d failed to complete ledger %d: withdraw %d from account %d", worker, ledgerID, amount, account)

	a, err := b.account(account)
	if err != nil {
		return b.rejectUnknown(ctx, op, failed, err)
	}

	a.lock.AcquireWrite()
	defer a.lock.ReleaseWrite()

	var cause error
	switch {
	case amount < 0:
		cause = ErrInvalidAmount
	case a.balance <= amount:
		cause = ErrInsufficientFunds
	}
	if cause != nil {
		b.writeLog(ctx, account, model.Entry{Type: model.TypeWithdraw, Status: model.StatusFailed})
		b.recordFailure(ctx, op, failed, cause)
		return cause
	}

	a.balance -= amount
	b.writeLog(ctx, account, model.Entry{Type: model.TypeWithdraw, Amount: amount, Status: model.StatusSuccess})
	b.recordSuccess(ctx, op, done)
	return nil
}

// Transfer moves amount from src to dest when src's balance strictly exceeds
// it. Both account locks are taken in ascending ID order, whichever side is
// the source, so opposite transfers between the same pair cannot deadlock.
// The source's log records dest as receiver; dest's log records src as sender.
func (b *Bank) Transfer(ctx context.Context, worker, ledgerID, src, dest int, amount int64) error {
	if b.closed.Load() {
		return ErrClosed
	}
	op := operation{worker: worker, ledger: ledgerID, mode: model.Transfer, account: src, other: dest, amount: amount}
	done := fmt.Sprintf("Worker %d completed ledger %d: transfer %d from account %d to account %d", worker, ledgerID, amount, src, dest)
	failed := fmt.Sprintf("Worker %d failed to complete ledger %d: transfer %d from account %d to account %d", worker, ledgerID, amount, src, dest)

	from, err := b.account(src)
	if err != nil {
		return b.rejectUnknown(ctx, op, failed, err)
	}
	to, err := b.account(dest)
	if err != nil {
		return b.rejectUnknown(ctx, op, failed, err)
	}

	if src == dest {
		from.lock.AcquireWrite()
		defer from.lock.ReleaseWrite()
		b.failTransfer(ctx, op, failed, ErrSameAccount)
		return ErrSameAccount
	}

	first, second := from, to
	if dest < src {
		first, second = to, from
	}
	first.lock.AcquireWrite()
	second.lock.AcquireWrite()
	defer from.lock.ReleaseWrite()

	var cause error
	switch {
	case amount < 0:
		cause = ErrInvalidAmount
	case from.balance <= amount:
		cause = ErrInsufficientFunds
	}
	if cause != nil {
		to.lock.ReleaseWrite()
		b.failTransfer(ctx, op, failed, cause)
		return cause
	}

	from.balance -= amount
	to.balance += amount
	to.lock.ReleaseWrite()

	b.recordSuccess(ctx, op, done)
	b.writeLog(ctx, src, model.Entry{Type: model.TypeTransfer, Amount: amount, Role: model.RoleReceiver, Counterparty: dest, Status: model.StatusSuccess})
	b.writeLog(ctx, dest, model.Entry{Type: model.TypeTransfer, Amount: amount, Role: model.RoleSender, Counterparty: src, Status: model.StatusSuccess})
	return nil
}

func (b *Bank) failTransfer(ctx context.Context, op operation, message string, cause error) {
	b.recordFailure(ctx, op, message, cause)
	b.writeLog(ctx, op.account, model.Entry{Type: model.TypeTransfer, Role: model.RoleReceiver, Counterparty: op.other, Status: model.StatusFailed})
	b.writeLog(ctx, op.other, model.Entry{Type: model.TypeTransfer, Role: model.RoleSender, Counterparty: op.account, Status: model.StatusFailed})
}

// CheckBalance reports the balance of account under its read lock. It never
// fails for a known account.
func (b *Bank) CheckBalance(ctx context.Context, worker, ledgerID, account int) error {
	if b.closed.Load() {
		return ErrClosed
	}
	op := operation{worker: worker, ledger: ledgerID, mode: model.CheckBalance, account: account}

	a, err := b.account(account)
	if err != nil {
		return b.rejectUnknown(ctx, op, fmt.Sprintf("Worker %d failed to complete ledger %d: check balance of account %d", worker, ledgerID, account), err)
	}

	a.lock.AcquireRead()
	defer a.lock.ReleaseRead()

	b.emit(fmt.Sprintf("Account %d - Balance: %d", account, a.balance))
	b.recordSuccess(ctx, op, fmt.Sprintf("Worker %d completed ledger %d: check balance of account %d", worker, ledgerID, account))
	b.writeLog(ctx, account, model.Entry{Type: model.TypeCheckBalance, Status: model.StatusSuccess})
	return nil
}

// PrintAccountLog copies the log of account to the report stream. The log's
// read lock is held for one line at a time, never across the whole copy.
func (b *Bank) PrintAccountLog(ctx context.Context, worker, ledgerID, account int) error {
	if b.closed.Load() {
		return ErrClosed
	}
	op := operation{worker: worker, ledger: ledgerID, mode: model.PrintLog, account: account}
	done := fmt.Sprintf("Worker %d completed ledger %d: print account log of account %d", worker, ledgerID, account)
	failed := fmt.Sprintf("Worker %d failed to complete ledger %d: print account log of account %d", worker, ledgerID, account)

	if _, err := b.account(account); err != nil {
		return b.rejectUnknown(ctx, op, failed, err)
	}
	l := b.logs[account]

	r, err := l.sink.Open(ctx, account)
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrLogUnavailable, err)
		b.recordFailure(ctx, op, failed, err)
		return err
	}
	defer r.Close()

	for {
		line, err := l.readLine(r)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			err = fmt.Errorf("%w: %w", ErrLogUnavailable, err)
			b.recordFailure(ctx, op, failed, err)
			return err
		}
		b.emit(line)
	}

	b.recordSuccess(ctx, op, done)
	return nil
}
