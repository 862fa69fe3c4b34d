package services

import (
	"context"

	"github.com/stitchbooks/ledger_backend/internal/core/domain"
	"github.com/stitchbooks/ledger_backend/internal/dto"
)

// PostingWriterSvc defines write operations of the ledger posting engine.
type PostingWriterSvc interface {
	// Post validates a proposed entry (line shape, account resolution, exact
	// debit/credit balance) and persists it atomically together with the
	// affected account balance updates. Validation failures leave no trace in
	// storage; storage failures inside the atomic unit roll back fully and
	// surface as apperrors.ErrPostingFailed.
	Post(ctx context.Context, req dto.PostingRequest) (*domain.JournalEntry, error)

	// ReverseEntry posts a new entry mirroring an existing POSTED one
	// (debits and credits swapped) and marks the original REVERSED, linking
	// the two. Corrections are always modeled this way; posted entries are
	// never edited in place.
	ReverseEntry(ctx context.Context, entryID string) (*domain.JournalEntry, error)
}

// PostingReaderSvc defines read operations over posted entries.
type PostingReaderSvc interface {
	// GetEntryByID retrieves an entry with its lines.
	GetEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error)

	// ListEntries retrieves a paginated list of entries (without lines).
	ListEntries(ctx context.Context, limit int, offset int) ([]domain.JournalEntry, error)

	// ListLinesByAccount retrieves a paginated list of lines booked against
	// one account.
	ListLinesByAccount(ctx context.Context, accountID string, limit int, offset int) ([]domain.JournalLine, error)
}

// PostingSvcFacade combines the posting engine's service interfaces.
type PostingSvcFacade interface {
	PostingWriterSvc
	PostingReaderSvc
}
