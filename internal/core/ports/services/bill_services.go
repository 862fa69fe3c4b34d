package services

import (
	"context"

	"github.com/stitchbooks/ledger_backend/internal/core/domain"
	"github.com/stitchbooks/ledger_backend/internal/dto"
)

// BillTranslator derives a proposed posting from a vendor bill: a debit line
// per item against its mapped (or default) expense account, a debit VAT-input
// line when tax is non-zero, and a single accounts-payable credit line for the
// grand total.
type BillTranslator interface {
	Translate(bill domain.Bill) (dto.PostingRequest, error)
}

// BillReaderSvc defines read operations for vendor bills.
type BillReaderSvc interface {
	// GetBillByID retrieves a bill with its items.
	GetBillByID(ctx context.Context, billID string) (*domain.Bill, error)

	// ListBills retrieves a paginated list of bills.
	ListBills(ctx context.Context, limit int, offset int) ([]domain.Bill, error)
}

// BillWriterSvc defines the bill lifecycle operations driven by this core.
type BillWriterSvc interface {
	// CreateBill records a new vendor bill in DRAFT.
	CreateBill(ctx context.Context, req dto.CreateBillRequest) (*domain.Bill, error)

	// ApproveBill translates a DRAFT bill into a journal entry, posts it, and
	// transitions the bill to ISSUED. A bill not in DRAFT fails fast without
	// touching the translator or the posting engine. If the status write
	// fails after a successful posting, the call returns
	// apperrors.ErrInconsistentState.
	ApproveBill(ctx context.Context, billID string) (*domain.Bill, *domain.JournalEntry, error)
}

// BillSvcFacade combines all bill-related service interfaces.
type BillSvcFacade interface {
	BillReaderSvc
	BillWriterSvc
}
