package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/stitchbooks/ledger_backend/internal/apperrors"
	"github.com/stitchbooks/ledger_backend/internal/core/domain"
	portsrepo "github.com/stitchbooks/ledger_backend/internal/core/ports/repositories"
	portssvc "github.com/stitchbooks/ledger_backend/internal/core/ports/services"
	"github.com/stitchbooks/ledger_backend/internal/dto"
	"github.com/stitchbooks/ledger_backend/internal/middleware"
)

// billService drives the bill lifecycle. Approval is its one interesting
// operation: translate the DRAFT bill into a posting, run it through the
// posting engine, then advance the bill to ISSUED.
type billService struct {
	billRepo   portsrepo.BillRepositoryFacade
	translator portssvc.BillTranslator
	postingSvc portssvc.PostingSvcFacade
}

// NewBillService creates a new bill lifecycle service.
func NewBillService(billRepo portsrepo.BillRepositoryFacade, translator portssvc.BillTranslator, postingSvc portssvc.PostingSvcFacade) portssvc.BillSvcFacade {
	return &billService{
		billRepo:   billRepo,
		translator: translator,
		postingSvc: postingSvc,
	}
}

var _ portssvc.BillSvcFacade = (*billService)(nil)

// CreateBill records a new vendor bill in DRAFT.
func (s *billService) CreateBill(ctx context.Context, req dto.CreateBillRequest) (*domain.Bill, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	now := time.Now().UTC()
	billID := uuid.NewString()

	items := make([]domain.BillItem, len(req.Items))
	for i, itemReq := range req.Items {
		if !itemReq.Amount.IsPositive() {
			return nil, fmt.Errorf("%w: bill item %d amount must be positive", apperrors.ErrValidation, i)
		}
		items[i] = domain.BillItem{
			ItemID:             uuid.NewString(),
			BillID:             billID,
			Description:        itemReq.Description,
			Quantity:           itemReq.Quantity,
			UnitPrice:          itemReq.UnitPrice,
			Amount:             itemReq.Amount,
			ExpenseAccountCode: itemReq.ExpenseAccountCode,
		}
	}

	if req.TaxAmount.IsNegative() {
		return nil, fmt.Errorf("%w: tax amount must not be negative", apperrors.ErrValidation)
	}

	bill := domain.Bill{
		BillID:     billID,
		Number:     req.Number,
		VendorName: req.VendorName,
		BillDate:   req.BillDate,
		TaxAmount:  req.TaxAmount,
		Status:     domain.BillDraft,
		Items:      items,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			LastUpdatedAt: now,
		},
	}

	if err := s.billRepo.SaveBill(ctx, bill); err != nil {
		if !errors.Is(err, apperrors.ErrDuplicate) {
			logger.Error("Failed to save bill", slog.String("error", err.Error()), slog.String("bill_number", req.Number))
		}
		return nil, err
	}

	logger.Info("Bill created", slog.String("bill_id", billID), slog.String("bill_number", bill.Number))
	return &bill, nil
}

// GetBillByID retrieves a bill with its items.
func (s *billService) GetBillByID(ctx context.Context, billID string) (*domain.Bill, error) {
	bill, err := s.billRepo.FindBillByID(ctx, billID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get bill %s: %w", billID, err)
	}
	return bill, nil
}

// ListBills retrieves a paginated list of bills.
func (s *billService) ListBills(ctx context.Context, limit int, offset int) ([]domain.Bill, error) {
	bills, err := s.billRepo.ListBills(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list bills: %w", err)
	}
	return bills, nil
}

// ApproveBill translates a DRAFT bill into a journal entry, posts it, and
// transitions the bill to ISSUED.
//
// A bill not in DRAFT fails fast before the translator or the posting engine
// are touched. Before posting, the bill is claimed with a compare-and-set
// into APPROVING: the CAS admits exactly one caller, so concurrent approvals
// of the same bill cannot both post. If posting fails the claim is released
// back to DRAFT. The final ISSUED write happens after the posting commits; if
// it fails the ledger already holds the entry and the call surfaces
// apperrors.ErrInconsistentState rather than pretending nothing happened.
func (s *billService) ApproveBill(ctx context.Context, billID string) (*domain.Bill, *domain.JournalEntry, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	bill, err := s.billRepo.FindBillByID(ctx, billID)
	if err != nil {
		return nil, nil, err
	}

	if bill.Status != domain.BillDraft {
		return nil, nil, fmt.Errorf("%w: bill %s is %s, only DRAFT bills can be approved", apperrors.ErrConflict, billID, bill.Status)
	}

	postingReq, err := s.translator.Translate(*bill)
	if err != nil {
		return nil, nil, err
	}

	// Claim the bill before touching the ledger. A concurrent approval that
	// lost the CAS gets ErrConflict here, with nothing posted on its behalf.
	if err := s.billRepo.UpdateBillStatus(ctx, billID, domain.BillDraft, domain.BillApproving, time.Now().UTC()); err != nil {
		return nil, nil, err
	}

	entry, err := s.postingSvc.Post(ctx, postingReq)
	if err != nil {
		// Nothing was persisted by the posting engine; release the claim so
		// the bill can be approved again once the cause is fixed.
		if relErr := s.billRepo.UpdateBillStatus(ctx, billID, domain.BillApproving, domain.BillDraft, time.Now().UTC()); relErr != nil {
			logger.Error("Failed to release bill claim after posting failure",
				slog.String("bill_id", billID),
				slog.String("error", relErr.Error()))
			return nil, nil, fmt.Errorf("%w: posting failed and bill %s is stuck in %s", apperrors.ErrInconsistentState, billID, domain.BillApproving)
		}
		return nil, nil, err
	}

	now := time.Now().UTC()
	if err := s.billRepo.UpdateBillStatus(ctx, billID, domain.BillApproving, domain.BillIssued, now); err != nil {
		logger.Error("Bill status update failed after successful posting",
			slog.String("bill_id", billID),
			slog.String("entry_id", entry.EntryID),
			slog.String("error", err.Error()))
		return nil, nil, fmt.Errorf("%w: entry %s posted but bill %s not marked issued", apperrors.ErrInconsistentState, entry.EntryID, billID)
	}

	bill.Status = domain.BillIssued
	bill.LastUpdatedAt = now

	logger.Info("Bill approved", slog.String("bill_id", billID), slog.String("entry_id", entry.EntryID))
	return bill, entry, nil
}
