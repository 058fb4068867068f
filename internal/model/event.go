package model

import "time"

// OutcomeEvent is published once per recorded success or failure.
type OutcomeEvent struct {
	RunID      string    `json:"run_id"`
	WorkerID   int       `json:"worker_id"`
	LedgerID   int       `json:"ledger_id"`
	Mode       string    `json:"mode"`
	Account    int       `json:"account"`
	Other      int       `json:"other,omitempty"`
	Amount     int64     `json:"amount"`
	Success    bool      `json:"success"`
	Error      string    `json:"error,omitempty"`
	Message    string    `json:"message"`
	OccurredAt time.Time `json:"occurred_at"`
}
