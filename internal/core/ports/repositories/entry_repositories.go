package repositories

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stitchbooks/ledger_backend/internal/core/domain"
)

// EntryReader defines read operations for journal entry data.
type EntryReader interface {
	// FindEntryByID retrieves a specific journal entry by its unique identifier.
	FindEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error)

	// FindLinesByEntryID retrieves all lines of a journal entry, in the order
	// they were posted.
	FindLinesByEntryID(ctx context.Context, entryID string) ([]domain.JournalLine, error)

	// ListEntries retrieves a paginated list of journal entries, newest first.
	ListEntries(ctx context.Context, limit int, offset int) ([]domain.JournalEntry, error)

	// ListLinesByAccountID retrieves a paginated list of lines booked against
	// one account, newest first.
	ListLinesByAccountID(ctx context.Context, accountID string, limit int, offset int) ([]domain.JournalLine, error)
}

// EntryWriter defines write operations for journal entry data.
type EntryWriter interface {
	// SaveEntry persists an entry with its lines and applies the given
	// per-account balance deltas, all within one database transaction. Any
	// failure rolls back the whole unit.
	SaveEntry(ctx context.Context, entry domain.JournalEntry, lines []domain.JournalLine, balanceChanges map[string]decimal.Decimal) error

	// UpdateEntryStatusAndLinks updates the status and reversal linkage
	// (original/reversing IDs) of an entry.
	UpdateEntryStatusAndLinks(ctx context.Context, entryID string, status domain.EntryStatus, reversingEntryID *string, originalEntryID *string, updatedAt time.Time) error
}

// EntryRepositoryFacade combines all entry-related repository interfaces.
type EntryRepositoryFacade interface {
	EntryReader
	EntryWriter
}
