package model

import "fmt"

// Mode selects the bank operation a ledger entry runs.
type Mode int

const (
	Deposit Mode = iota
	Withdraw
	Transfer
	CheckBalance
	PrintLog
)

func (m Mode) String() string {
	switch m {
	case Deposit:
		return "deposit"
	case Withdraw:
		return "withdraw"
	case Transfer:
		return "transfer"
	case CheckBalance:
		return "check balance"
	case PrintLog:
		return "print log"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// Valid reports whether m is one of the known modes.
func (m Mode) Valid() bool {
	return m >= Deposit && m <= PrintLog
}

// TransactionRecord is one ledger entry. Other is only meaningful for transfers.
// SequenceID is assigned at load time and is used in messages, never for ordering.
type TransactionRecord struct {
	Account    int   `json:"account"`
	Other      int   `json:"other"`
	Amount     int64 `json:"amount"`
	Mode       Mode  `json:"mode"`
	SequenceID int   `json:"sequence_id"`
}

// Number assigns sequence IDs 0..n-1 in slice order.
func Number(records []TransactionRecord) {
	for i := range records {
		records[i].SequenceID = i
	}
}
