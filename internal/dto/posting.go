package dto

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/stitchbooks/ledger_backend/internal/core/domain"
)

// PostingLineRequest is one proposed journal line, keyed by account code.
// Exactly one of Debit/Credit must be positive; the posting engine enforces
// this beyond what binding can express.
type PostingLineRequest struct {
	AccountCode string          `json:"accountCode" binding:"required,accountcode"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Description string          `json:"description"` // Optional per-line note
}

// PostingRequest is a proposed journal entry as consumed by the posting
// engine. Line order is preserved in the created entry.
type PostingRequest struct {
	Description string               `json:"description" binding:"required"`
	EntryDate   time.Time            `json:"entryDate" binding:"required"`
	Reference   *string              `json:"reference"` // Optional source document number
	Lines       []PostingLineRequest `json:"lines" binding:"required,min=1,dive"`
}

// JournalLineResponse defines the data returned for a journal line.
type JournalLineResponse struct {
	LineID      string          `json:"lineID"`
	EntryID     string          `json:"entryID"`
	AccountID   string          `json:"accountID"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Description string          `json:"description"`
}

// JournalEntryResponse defines the data returned for a journal entry.
type JournalEntryResponse struct {
	EntryID          string                `json:"entryID"`
	EntryDate        time.Time             `json:"entryDate"`
	Description      string                `json:"description"`
	Reference        *string               `json:"reference,omitempty"`
	Status           domain.EntryStatus    `json:"status"`
	OriginalEntryID  *string               `json:"originalEntryID,omitempty"`
	ReversingEntryID *string               `json:"reversingEntryID,omitempty"`
	Lines            []JournalLineResponse `json:"lines,omitempty"`
	CreatedAt        time.Time             `json:"createdAt"`
}

// ToJournalLineResponse converts a domain.JournalLine to its response DTO.
func ToJournalLineResponse(line *domain.JournalLine) JournalLineResponse {
	return JournalLineResponse{
		LineID:      line.LineID,
		EntryID:     line.EntryID,
		AccountID:   line.AccountID,
		Debit:       line.Debit,
		Credit:      line.Credit,
		Description: line.Description,
	}
}

// ToJournalLineResponses converts a slice of domain lines to response DTOs.
func ToJournalLineResponses(lines []domain.JournalLine) []JournalLineResponse {
	responses := make([]JournalLineResponse, len(lines))
	for i, line := range lines {
		responses[i] = ToJournalLineResponse(&line)
	}
	return responses
}

// ToJournalEntryResponse converts a domain.JournalEntry to its response DTO.
func ToJournalEntryResponse(entry *domain.JournalEntry) JournalEntryResponse {
	return JournalEntryResponse{
		EntryID:          entry.EntryID,
		EntryDate:        entry.EntryDate,
		Description:      entry.Description,
		Reference:        entry.Reference,
		Status:           entry.Status,
		OriginalEntryID:  entry.OriginalEntryID,
		ReversingEntryID: entry.ReversingEntryID,
		Lines:            ToJournalLineResponses(entry.Lines),
		CreatedAt:        entry.CreatedAt,
	}
}

// ListEntriesParams defines query parameters for listing journal entries.
type ListEntriesParams struct {
	Limit  int `form:"limit,default=20"`
	Offset int `form:"offset,default=0"`
}

// ListEntriesResponse wraps the list of journal entries.
type ListEntriesResponse struct {
	Entries []JournalEntryResponse `json:"entries"`
}

// ListLinesResponse wraps journal lines listed for one account.
type ListLinesResponse struct {
	Lines []JournalLineResponse `json:"lines"`
}
