package model

import (
	"time"
)

// LogLine is one account log line stored by the database log sink
type LogLine struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	RunID     string    `gorm:"index:idx_run_account;size:36;not null" json:"run_id"`
	AccountID int       `gorm:"index:idx_run_account;not null" json:"account_id"`
	Line      string    `gorm:"size:255;not null" json:"line"`
}

// TableName specifies the table name
func (LogLine) TableName() string {
	return "account_log_lines"
}

// AccountBalance is the final balance of one account at the end of a run
type AccountBalance struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	RunID     string    `gorm:"uniqueIndex:idx_run_balance;size:36;not null" json:"run_id"`
	AccountID int       `gorm:"uniqueIndex:idx_run_balance;not null" json:"account_id"`
	Balance   int64     `gorm:"not null;default:0" json:"balance"`
}

// TableName specifies the table name
func (AccountBalance) TableName() string {
	return "account_balances"
}

// RunSummary holds the tally of one run
type RunSummary struct {
	RunID     string    `gorm:"primarykey;size:36" json:"run_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Workers   int       `gorm:"not null" json:"workers"`
	Accounts  int       `gorm:"not null" json:"accounts"`
	Success   int       `gorm:"not null;default:0" json:"success"`
	Failure   int       `gorm:"not null;default:0" json:"failure"`
}

// TableName specifies the table name
func (RunSummary) TableName() string {
	return "run_summaries"
}
