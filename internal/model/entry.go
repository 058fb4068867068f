package model

import (
	"strconv"
	"strings"
)

// Status is the outcome written to an account log line.
type Status string

const (
	StatusSuccess Status = "Success"
	StatusFailed  Status = "Failed"
)

// Role names the counterparty field on transfer entries.
type Role string

const (
	RoleNone     Role = ""
	RoleReceiver Role = "Receiver"
	RoleSender   Role = "Sender"
)

// Entry is one account log record.
type Entry struct {
	Type         string
	Amount       int64
	Role         Role
	Counterparty int
	Status       Status
}

// Transaction types as they appear in log lines.
const (
	TypeDeposit      = "Deposit"
	TypeWithdraw     = "Withdraw"
	TypeTransfer     = "Transfer"
	TypeCheckBalance = "Check Balance"
)

// Line renders e in the account log format, without a trailing newline:
//
//	Transaction Type: Transfer, Amount: 50, Receiver: 1, Status: Success
func (e Entry) Line() string {
	var b strings.Builder
	b.WriteString("Transaction Type: ")
	b.WriteString(e.Type)
	b.WriteString(", Amount: ")
	b.WriteString(strconv.FormatInt(e.Amount, 10))
	if e.Role != RoleNone {
		b.WriteString(", ")
		b.WriteString(string(e.Role))
		b.WriteString(": ")
		b.WriteString(strconv.Itoa(e.Counterparty))
	}
	b.WriteString(", Status: ")
	b.WriteString(string(e.Status))
	return b.String()
}
