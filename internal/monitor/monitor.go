package monitor

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"ledger-bank/internal/processor"
)

// Tallier reports the success and failure counts of a bank.
type Tallier interface {
	Tally() (success, failure int)
}

// Progress reports the state of a worker pool.
type Progress interface {
	States() []processor.State
	Processed() int
}

// Snapshot is one progress sample of a run
type Snapshot struct {
	Success   int
	Failure   int
	Processed int
	Workers   map[processor.State]int
}

func Take(bank Tallier, pool Progress) Snapshot {
	s := Snapshot{Workers: make(map[processor.State]int)}
	s.Success, s.Failure = bank.Tally()
	s.Processed = pool.Processed()
	for _, st := range pool.States() {
		s.Workers[st]++
	}
	return s
}

// Watch logs a snapshot every interval until ctx is done. A final snapshot is
// logged on return.
func Watch(ctx context.Context, bank Tallier, pool Progress, interval time.Duration, log *logrus.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			report(Take(bank, pool), log)
			log.Debug("stopping progress monitor")
			return
		case <-ticker.C:
			report(Take(bank, pool), log)
		}
	}
}

func report(s Snapshot, log *logrus.Logger) {
	log.WithFields(logrus.Fields{
		"success":   s.Success,
		"failure":   s.Failure,
		"processed": s.Processed,
		"idle":      s.Workers[processor.Idle],
		"fetching":  s.Workers[processor.Fetching],
		"executing": s.Workers[processor.Executing],
		"drained":   s.Workers[processor.Drained],
	}).Info("run progress")
}
