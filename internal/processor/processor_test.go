package processor

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledger-bank/internal/bank"
	"ledger-bank/internal/model"
	"ledger-bank/internal/queue"
	"ledger-bank/internal/sink"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

type countingExecutor struct {
	mu    sync.Mutex
	calls map[int]int
	fail  bool
}

func (e *countingExecutor) Execute(_ context.Context, _ int, rec model.TransactionRecord) error {
	e.mu.Lock()
	e.calls[rec.SequenceID]++
	e.mu.Unlock()
	if e.fail && rec.SequenceID%2 == 0 {
		return errors.New("rejected")
	}
	return nil
}

func numbered(records []model.TransactionRecord) []model.TransactionRecord {
	model.Number(records)
	return records
}

func TestPool_ExecutesEachRecordOnce(t *testing.T) {
	const n = 2000
	records := numbered(make([]model.TransactionRecord, n))
	exec := &countingExecutor{calls: make(map[int]int), fail: true}

	pool := NewPool(exec, queue.New(records), 8, quietLogger())
	stats := pool.Run(context.Background())

	assert.Equal(t, n, stats.Processed)
	assert.Equal(t, n/2, stats.Failed)
	assert.Len(t, stats.PerWorker, 8)
	require.Len(t, exec.calls, n)
	for id, c := range exec.calls {
		assert.Equalf(t, 1, c, "record %d executed %d times", id, c)
	}
	for _, s := range pool.States() {
		assert.Equal(t, Drained, s)
	}
	assert.Equal(t, n, pool.Processed())
}

func TestPool_EmptyQueue(t *testing.T) {
	exec := &countingExecutor{calls: make(map[int]int)}
	pool := NewPool(exec, queue.New(nil), 4, quietLogger())

	stats := pool.Run(context.Background())
	assert.Zero(t, stats.Processed)
	assert.Equal(t, []State{Drained, Drained, Drained, Drained}, pool.States())
}

func TestPool_CancelledContextStopsFetching(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	records := numbered(make([]model.TransactionRecord, 10))
	q := queue.New(records)
	pool := NewPool(&countingExecutor{calls: make(map[int]int)}, q, 3, quietLogger())

	stats := pool.Run(ctx)
	assert.Zero(t, stats.Processed)
	assert.Equal(t, 10, q.Len())
}

func runBank(t *testing.T, accounts, workers int, records []model.TransactionRecord) (*bank.Bank, Stats) {
	t.Helper()
	b := bank.New(accounts, sink.NewMemorySink(), quietLogger())
	stats := NewPool(b, queue.New(records), workers, quietLogger()).Run(context.Background())
	assert.NoError(t, b.Close())
	return b, stats
}

func TestPool_TallyMatchesProcessed(t *testing.T) {
	var records []model.TransactionRecord
	for i := 0; i < 400; i++ {
		acct := i % 10
		records = append(records,
			model.TransactionRecord{Account: acct, Amount: int64(i), Mode: model.Deposit},
			model.TransactionRecord{Account: acct, Amount: int64(i / 2), Mode: model.Withdraw},
			model.TransactionRecord{Account: acct, Other: (acct + 3) % 10, Amount: 7, Mode: model.Transfer},
			model.TransactionRecord{Account: acct, Mode: model.CheckBalance},
		)
	}
	records = append(records, model.TransactionRecord{Account: 1, Mode: model.PrintLog})
	numbered(records)

	for _, workers := range []int{1, 4, 16} {
		b, stats := runBank(t, 10, workers, records)
		success, failure := b.Tally()
		assert.Equal(t, len(records), stats.Processed)
		assert.Equal(t, len(records), success+failure)
		assert.Equal(t, failure, stats.Failed)
	}
}

func TestPool_DisjointTransactionsCommute(t *testing.T) {
	// No two records touch the same account, so any interleaving gives the
	// same balances and the same outcome per record.
	var records []model.TransactionRecord
	for a := 0; a < 10; a++ {
		records = append(records, model.TransactionRecord{Account: a, Amount: int64(100 * (a + 1)), Mode: model.Deposit})
	}
	records = append(records,
		model.TransactionRecord{Account: 10, Other: 11, Amount: 5, Mode: model.Transfer},
		model.TransactionRecord{Account: 12, Amount: 5, Mode: model.Withdraw},
		model.TransactionRecord{Account: 13, Mode: model.CheckBalance},
		model.TransactionRecord{Account: 14, Amount: -1, Mode: model.Deposit},
	)
	numbered(records)

	single, _ := runBank(t, 15, 1, records)
	multi, _ := runBank(t, 15, 8, records)
	assert.Equal(t, single.Balances(), multi.Balances())

	s1, f1 := single.Tally()
	s2, f2 := multi.Tally()
	assert.Equal(t, []int{11, 3}, []int{s1, f1})
	assert.Equal(t, []int{s1, f1}, []int{s2, f2})
}

func TestPool_OppositeTransfersTerminate(t *testing.T) {
	records := []model.TransactionRecord{
		{Account: 0, Amount: 5000, Mode: model.Deposit},
		{Account: 1, Amount: 5000, Mode: model.Deposit},
	}
	for i := 0; i < 5000; i++ {
		records = append(records,
			model.TransactionRecord{Account: 0, Other: 1, Amount: 3, Mode: model.Transfer},
			model.TransactionRecord{Account: 1, Other: 0, Amount: 3, Mode: model.Transfer},
		)
	}
	numbered(records)

	done := make(chan struct{})
	var b *bank.Bank
	go func() {
		defer close(done)
		b, _ = runBank(t, 2, 16, records)
	}()

	select {
	case <-done:
	case <-time.After(30 * time.Second):
		t.Fatal("worker pool did not terminate: opposite transfers deadlocked")
	}

	balances := b.Balances()
	assert.Equal(t, int64(10000), balances[0]+balances[1])
	success, failure := b.Tally()
	assert.Equal(t, len(records), success+failure)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "fetching", Fetching.String())
	assert.Equal(t, "drained", Drained.String())
	assert.Equal(t, "unknown", State(99).String())
}
