// Package sink provides account log destinations: one append-only text
// stream per account ID.
package sink

import (
	"context"
	"fmt"
	"io"
	"sync"

	"ledger-bank/internal/interfaces"
)

// MemorySink keeps account logs in memory.
type MemorySink struct {
	mu    sync.Mutex
	lines map[int][]string
}

func NewMemorySink() *MemorySink {
	return &MemorySink{lines: make(map[int][]string)}
}

func (s *MemorySink) Append(_ context.Context, account int, line string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines[account] = append(s.lines[account], line)
	return nil
}

// Open returns a reader positioned at the first line of account's log.
func (s *MemorySink) Open(_ context.Context, account int) (interfaces.LineReader, error) {
	if account < 0 {
		return nil, fmt.Errorf("no log for account %d", account)
	}
	return &MemoryReader{sink: s, account: account}, nil
}

// Lines returns a copy of account's log.
func (s *MemorySink) Lines(account int) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.lines[account]))
	copy(out, s.lines[account])
	return out
}

type MemoryReader struct {
	sink    *MemorySink
	account int
	next    int
}

func (r *MemoryReader) ReadLine() (string, error) {
	r.sink.mu.Lock()
	defer r.sink.mu.Unlock()
	lines := r.sink.lines[r.account]
	if r.next >= len(lines) {
		return "", io.EOF
	}
	line := lines[r.next]
	r.next++
	return line, nil
}

func (r *MemoryReader) Close() error {
	return nil
}

var _ interfaces.LogSink = (*MemorySink)(nil)
