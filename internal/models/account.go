package models

import (
	"github.com/shopspring/decimal"
)

// AccountType mirrors domain.AccountType at the storage layer.
type AccountType string

// Account is the storage representation of a general-ledger account.
type Account struct {
	AccountID   string          `db:"account_id"`
	Code        string          `db:"code"` // Unique, immutable once created
	Name        string          `db:"name"`
	AccountType AccountType     `db:"account_type"`
	Description string          `db:"description"`
	IsActive    bool            `db:"is_active"`
	Balance     decimal.Decimal `db:"balance"`
	AuditFields
}
