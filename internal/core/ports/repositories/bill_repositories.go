package repositories

import (
	"context"
	"time"

	"github.com/stitchbooks/ledger_backend/internal/core/domain"
)

// BillReader defines read operations for vendor bill data.
type BillReader interface {
	// FindBillByID retrieves a bill with its items.
	FindBillByID(ctx context.Context, billID string) (*domain.Bill, error)

	// ListBills retrieves a paginated list of bills, newest first (without items).
	ListBills(ctx context.Context, limit int, offset int) ([]domain.Bill, error)
}

// BillWriter defines write operations for vendor bill data.
type BillWriter interface {
	// SaveBill persists a new bill and its items atomically.
	SaveBill(ctx context.Context, bill domain.Bill) error

	// UpdateBillStatus transitions a bill's status, but only if it currently
	// holds the expected status. Returns apperrors.ErrConflict when the bill
	// exists in a different status, apperrors.ErrNotFound when it is absent.
	UpdateBillStatus(ctx context.Context, billID string, from, to domain.BillStatus, now time.Time) error
}

// BillRepositoryFacade combines all bill-related repository interfaces.
type BillRepositoryFacade interface {
	BillReader
	BillWriter
}
