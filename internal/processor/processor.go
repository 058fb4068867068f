package processor

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"ledger-bank/internal/model"
	"ledger-bank/internal/queue"
)

// State is the position of one worker in its fetch/execute loop.
type State int32

const (
	Idle State = iota
	Fetching
	Executing
	Drained
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Fetching:
		return "fetching"
	case Executing:
		return "executing"
	case Drained:
		return "drained"
	default:
		return "unknown"
	}
}

// Executor runs one ledger entry on behalf of a worker.
type Executor interface {
	Execute(ctx context.Context, worker int, rec model.TransactionRecord) error
}

// Stats summarises a finished run.
type Stats struct {
	Processed int
	Failed    int
	PerWorker []int
	Elapsed   time.Duration
}

// Pool runs a fixed number of workers against one closed-world queue.
type Pool struct {
	exec    Executor
	queue   *queue.TransactionQueue
	workers int
	log     *logrus.Logger

	states    []atomic.Int32
	processed atomic.Int64
}

func NewPool(exec Executor, q *queue.TransactionQueue, workers int, log *logrus.Logger) *Pool {
	if workers < 1 {
		workers = 1
	}
	return &Pool{
		exec:    exec,
		queue:   q,
		workers: workers,
		log:     log,
		states:  make([]atomic.Int32, workers),
	}
}

// Run starts the workers and returns once every one of them is Drained.
// Workers stop fetching when the queue is empty or ctx is done; an entry that
// is already executing always runs to completion.
func (p *Pool) Run(ctx context.Context) Stats {
	start := time.Now()
	p.log.WithFields(logrus.Fields{
		"workers": p.workers,
		"pending": p.queue.Len(),
	}).Info("starting worker pool")

	perWorker := make([]int, p.workers)
	failed := make([]int, p.workers)

	var wg sync.WaitGroup
	for i := 0; i < p.workers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			perWorker[id], failed[id] = p.runWorker(ctx, id)
		}(i)
	}
	wg.Wait()

	stats := Stats{PerWorker: perWorker, Elapsed: time.Since(start)}
	for i := range perWorker {
		stats.Processed += perWorker[i]
		stats.Failed += failed[i]
	}

	p.log.WithFields(logrus.Fields{
		"processed": stats.Processed,
		"failed":    stats.Failed,
		"elapsed":   stats.Elapsed,
	}).Info("worker pool drained")

	return stats
}

func (p *Pool) runWorker(ctx context.Context, id int) (processed, failed int) {
	log := p.log.WithField("worker_id", id)
	log.Debug("worker started")

	for {
		p.setState(id, Fetching)
		if ctx.Err() != nil {
			log.Warn("context cancelled, worker stops fetching")
			break
		}
		rec, ok := p.queue.Pop()
		if !ok {
			break
		}

		p.setState(id, Executing)
		if err := p.exec.Execute(ctx, id, rec); err != nil {
			failed++
			log.WithFields(logrus.Fields{
				"ledger_id": rec.SequenceID,
				"mode":      rec.Mode.String(),
				"error":     err,
			}).Debug("ledger entry failed")
		}
		processed++
		p.processed.Add(1)
		p.setState(id, Idle)
	}

	p.setState(id, Drained)
	log.WithField("processed", processed).Debug("worker drained")
	return processed, failed
}

func (p *Pool) setState(id int, s State) {
	p.states[id].Store(int32(s))
}

// States returns the current state of every worker.
func (p *Pool) States() []State {
	out := make([]State, len(p.states))
	for i := range p.states {
		out[i] = State(p.states[i].Load())
	}
	return out
}

// Processed returns how many entries have been executed so far.
func (p *Pool) Processed() int {
	return int(p.processed.Load())
}
