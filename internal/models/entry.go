package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntryStatus mirrors domain.EntryStatus at the storage layer.
type EntryStatus string

// JournalEntry is the storage representation of a journal entry header.
type JournalEntry struct {
	EntryID          string      `db:"entry_id"`
	EntryDate        time.Time   `db:"entry_date"`
	Description      string      `db:"description"`
	Reference        *string     `db:"reference"` // Nullable
	Status           EntryStatus `db:"status"`
	OriginalEntryID  *string     `db:"original_entry_id"`  // Nullable
	ReversingEntryID *string     `db:"reversing_entry_id"` // Nullable
	AuditFields
}

// JournalLine is the storage representation of a single debit or credit
// booking. Position preserves the order lines were submitted in.
type JournalLine struct {
	LineID      string          `db:"line_id"`
	EntryID     string          `db:"entry_id"`
	AccountID   string          `db:"account_id"`
	Debit       decimal.Decimal `db:"debit"`
	Credit      decimal.Decimal `db:"credit"`
	Description string          `db:"description"`
	Position    int             `db:"position"`
	AuditFields
}
