package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntryStatus indicates the state of a journal entry.
type EntryStatus string

const (
	Posted   EntryStatus = "POSTED"
	Reversed EntryStatus = "REVERSED"
)

// JournalEntry represents a single, balanced financial event composed of two
// or more journal lines. Entries are append-only: corrections are made by
// posting a new reversing entry, never by editing a posted one.
type JournalEntry struct {
	EntryID          string      `json:"entryID"`   // Primary Key (UUID)
	EntryDate        time.Time   `json:"entryDate"` // Date the event occurred
	Description      string      `json:"description"`
	Reference        *string     `json:"reference"` // Optional source document number
	Status           EntryStatus `json:"status"`    // Default: Posted
	OriginalEntryID  *string     `json:"originalEntryID"`  // Set on a reversing entry
	ReversingEntryID *string     `json:"reversingEntryID"` // Set on a reversed entry
	Lines            []JournalLine `json:"lines,omitempty"` // Often loaded separately
	AuditFields
}

// JournalLine books exactly one side (debit or credit) against one account
// within a journal entry. Exactly one of Debit/Credit is non-zero.
type JournalLine struct {
	LineID      string          `json:"lineID"`    // Primary Key (UUID)
	EntryID     string          `json:"entryID"`   // FK -> JournalEntry (Not Null)
	AccountID   string          `json:"accountID"` // FK -> Account (reference, not ownership)
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Description string          `json:"description"` // Nullable
	AuditFields
}
