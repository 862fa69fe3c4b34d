package domain

import (
	"github.com/shopspring/decimal"
)

// AccountType defines the fundamental accounting type of an account.
type AccountType string

const (
	Asset     AccountType = "ASSET"
	Liability AccountType = "LIABILITY"
	Equity    AccountType = "EQUITY"
	Revenue   AccountType = "REVENUE"
	Expense   AccountType = "EXPENSE"
)

// EntrySide identifies one of the two sides of a journal line.
type EntrySide string

const (
	Debit  EntrySide = "DEBIT"
	Credit EntrySide = "CREDIT"
)

// Account represents a general-ledger account within the core domain.
// Code is human-assigned (e.g. "2000"), globally unique and immutable once
// created; Balance is mutated only through the posting engine's atomic
// balance-update step.
type Account struct {
	AccountID   string          `json:"accountID"` // Primary Key (UUID)
	Code        string          `json:"code"`      // Unique, human-assigned
	Name        string          `json:"name"`
	AccountType AccountType     `json:"accountType"` // ASSET, LIABILITY, etc.
	Description string          `json:"description"` // Nullable user description
	IsActive    bool            `json:"isActive"`
	Balance     decimal.Decimal `json:"balance"` // Persisted running balance
	AuditFields
}
