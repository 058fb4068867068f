// Package events publishes transaction outcomes to downstream consumers.
package events

import (
	"context"
	"sync"

	"ledger-bank/internal/interfaces"
)

// Recorder keeps published events in memory.
type Recorder struct {
	mu     sync.Mutex
	events map[string][]any
}

func NewRecorder() *Recorder {
	return &Recorder{events: make(map[string][]any)}
}

func (r *Recorder) Publish(_ context.Context, topic string, event any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events[topic] = append(r.events[topic], event)
	return nil
}

// Events returns a copy of everything published on topic.
func (r *Recorder) Events(topic string) []any {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]any, len(r.events[topic]))
	copy(out, r.events[topic])
	return out
}

var _ interfaces.EventPublisher = (*Recorder)(nil)
