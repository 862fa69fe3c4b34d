package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/stitchbooks/ledger_backend/internal/apperrors"
	"github.com/stitchbooks/ledger_backend/internal/core/domain"
	portsrepo "github.com/stitchbooks/ledger_backend/internal/core/ports/repositories"
	portssvc "github.com/stitchbooks/ledger_backend/internal/core/ports/services"
	"github.com/stitchbooks/ledger_backend/internal/dto"
	"github.com/stitchbooks/ledger_backend/internal/middleware"
	"github.com/stitchbooks/ledger_backend/internal/utils/accounting"
)

const reversalDescriptionPrefix = "Reversal of: "

// postingService is the ledger posting engine. It validates proposed entries
// and persists them atomically together with the account balance updates they
// imply. Validation failures leave no trace in storage.
type postingService struct {
	accountSvc portssvc.AccountSvcFacade
	entryRepo  portsrepo.EntryRepositoryFacade
}

// NewPostingService creates a new posting engine service.
func NewPostingService(entryRepo portsrepo.EntryRepositoryFacade, accountSvc portssvc.AccountSvcFacade) portssvc.PostingSvcFacade {
	return &postingService{
		accountSvc: accountSvc,
		entryRepo:  entryRepo,
	}
}

var _ portssvc.PostingSvcFacade = (*postingService)(nil)

// Post validates a proposed entry and persists it atomically.
func (s *postingService) Post(ctx context.Context, req dto.PostingRequest) (*domain.JournalEntry, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if len(req.Lines) == 0 {
		return nil, fmt.Errorf("%w: entry must contain at least one line", apperrors.ErrValidation)
	}
	if req.Description == "" {
		return nil, fmt.Errorf("%w: entry description is required", apperrors.ErrValidation)
	}

	codes := make([]string, 0, len(req.Lines))
	for i, line := range req.Lines {
		if err := accounting.ValidateLineAmounts(i, line.Debit, line.Credit); err != nil {
			return nil, err
		}
		codes = append(codes, line.AccountCode)
	}

	// All-or-nothing code resolution; unknown codes fail the whole call
	accountsByCode, err := s.accountSvc.ResolveByCodes(ctx, codes)
	if err != nil {
		return nil, err
	}

	for _, acc := range accountsByCode {
		if !acc.IsActive {
			return nil, fmt.Errorf("%w: account %s is inactive", apperrors.ErrValidation, acc.Code)
		}
	}

	now := time.Now().UTC()
	entryID := uuid.NewString()

	lines := make([]domain.JournalLine, len(req.Lines))
	for i, lineReq := range req.Lines {
		account := accountsByCode[lineReq.AccountCode]
		lines[i] = domain.JournalLine{
			LineID:      uuid.NewString(),
			EntryID:     entryID,
			AccountID:   account.AccountID,
			Debit:       lineReq.Debit,
			Credit:      lineReq.Credit,
			Description: lineReq.Description,
			AuditFields: domain.AuditFields{
				CreatedAt:     now,
				LastUpdatedAt: now,
			},
		}
	}

	if err := accounting.ValidateEntryBalance(lines); err != nil {
		return nil, err
	}

	balanceChanges, err := calculateBalanceChanges(lines, accountsByCode)
	if err != nil {
		logger.Error("Failed to calculate balance changes", slog.String("error", err.Error()))
		return nil, fmt.Errorf("internal error calculating balance changes: %w", err)
	}

	entry := domain.JournalEntry{
		EntryID:     entryID,
		EntryDate:   req.EntryDate,
		Description: req.Description,
		Reference:   req.Reference,
		Status:      domain.Posted,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			LastUpdatedAt: now,
		},
	}

	if err := s.entryRepo.SaveEntry(ctx, entry, lines, balanceChanges); err != nil {
		logger.Error("Failed to save journal entry", slog.String("error", err.Error()), slog.String("entry_id", entryID))
		return nil, fmt.Errorf("%w: %v", apperrors.ErrPostingFailed, err)
	}

	logger.Info("Journal entry posted", slog.String("entry_id", entryID), slog.Int("lines", len(lines)))
	entry.Lines = lines
	return &entry, nil
}

// ReverseEntry posts a mirror of an existing POSTED entry and marks the
// original REVERSED, linking the two. Posted entries are never edited in
// place; corrections are always modeled this way.
func (s *postingService) ReverseEntry(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	original, err := s.entryRepo.FindEntryByID(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if original.Status != domain.Posted {
		return nil, fmt.Errorf("%w: entry %s is %s, only POSTED entries can be reversed", apperrors.ErrConflict, entryID, original.Status)
	}
	// A reversal stays POSTED after it is booked; letting it be reversed
	// again would re-post the original entry without limit. Corrections to a
	// reversal are made by posting the original shape anew.
	if original.OriginalEntryID != nil {
		return nil, fmt.Errorf("%w: entry %s is itself a reversal and cannot be reversed", apperrors.ErrConflict, entryID)
	}

	originalLines, err := s.entryRepo.FindLinesByEntryID(ctx, entryID)
	if err != nil {
		return nil, fmt.Errorf("failed to load lines for entry %s: %w", entryID, err)
	}

	now := time.Now().UTC()
	reversingID := uuid.NewString()

	reversingEntry := domain.JournalEntry{
		EntryID:         reversingID,
		EntryDate:       original.EntryDate,
		Description:     reversalDescriptionPrefix + original.Description,
		Reference:       original.Reference,
		Status:          domain.Posted,
		OriginalEntryID: &original.EntryID,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			LastUpdatedAt: now,
		},
	}

	reversingLines := make([]domain.JournalLine, len(originalLines))
	accountIDs := make([]string, 0, len(originalLines))
	for i, origLine := range originalLines {
		accountIDs = append(accountIDs, origLine.AccountID)
		reversingLines[i] = domain.JournalLine{
			LineID:      uuid.NewString(),
			EntryID:     reversingID,
			AccountID:   origLine.AccountID,
			Debit:       origLine.Credit,
			Credit:      origLine.Debit,
			Description: origLine.Description,
			AuditFields: domain.AuditFields{
				CreatedAt:     now,
				LastUpdatedAt: now,
			},
		}
	}

	accountsByID, err := s.accountSvc.GetAccountsByIDs(ctx, accountIDs)
	if err != nil {
		logger.Error("Failed to fetch accounts for reversal", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to get account details for reversal: %w", err)
	}

	balanceChanges := make(map[string]decimal.Decimal)
	for _, revLine := range reversingLines {
		acc, ok := accountsByID[revLine.AccountID]
		if !ok {
			logger.Error("Account missing during reversal balance calculation", slog.String("account_id", revLine.AccountID))
			return nil, fmt.Errorf("internal error: account %s not found during balance calculation", revLine.AccountID)
		}
		delta, err := accounting.BalanceChange(revLine, acc.AccountType)
		if err != nil {
			return nil, fmt.Errorf("failed to calculate balance change for reversal: %w", err)
		}
		balanceChanges[revLine.AccountID] = balanceChanges[revLine.AccountID].Add(delta)
	}

	if err := s.entryRepo.SaveEntry(ctx, reversingEntry, reversingLines, balanceChanges); err != nil {
		logger.Error("Failed to save reversing entry", slog.String("error", err.Error()), slog.String("original_entry_id", entryID))
		return nil, fmt.Errorf("%w: %v", apperrors.ErrPostingFailed, err)
	}

	if err := s.entryRepo.UpdateEntryStatusAndLinks(ctx, original.EntryID, domain.Reversed, &reversingID, original.OriginalEntryID, now); err != nil {
		// The reversing entry is already committed; the link update failing
		// leaves the two entries disagreeing about their relationship.
		logger.Error("Failed to mark original entry reversed after posting reversal",
			slog.String("original_entry_id", original.EntryID),
			slog.String("reversing_entry_id", reversingID),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("%w: reversal posted as %s but original %s not marked reversed", apperrors.ErrInconsistentState, reversingID, original.EntryID)
	}

	logger.Info("Journal entry reversed", slog.String("entry_id", entryID), slog.String("reversing_entry_id", reversingID))
	reversingEntry.Lines = reversingLines
	return &reversingEntry, nil
}

// GetEntryByID retrieves an entry together with its lines.
func (s *postingService) GetEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	entry, err := s.entryRepo.FindEntryByID(ctx, entryID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to find entry %s: %w", entryID, err)
	}

	lines, err := s.entryRepo.FindLinesByEntryID(ctx, entryID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve lines for entry %s: %w", entryID, err)
	}
	entry.Lines = lines
	return entry, nil
}

// ListEntries retrieves a paginated list of entries, without lines.
func (s *postingService) ListEntries(ctx context.Context, limit int, offset int) ([]domain.JournalEntry, error) {
	entries, err := s.entryRepo.ListEntries(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}
	return entries, nil
}

// ListLinesByAccount retrieves a paginated list of lines booked against one account.
func (s *postingService) ListLinesByAccount(ctx context.Context, accountID string, limit int, offset int) ([]domain.JournalLine, error) {
	if _, err := s.accountSvc.GetAccountByID(ctx, accountID); err != nil {
		return nil, err
	}
	lines, err := s.entryRepo.ListLinesByAccountID(ctx, accountID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list lines for account %s: %w", accountID, err)
	}
	return lines, nil
}

// calculateBalanceChanges folds the per-line balance deltas into one signed
// change per account.
func calculateBalanceChanges(lines []domain.JournalLine, accountsByCode map[string]domain.Account) (map[string]decimal.Decimal, error) {
	typesByID := make(map[string]domain.AccountType, len(accountsByCode))
	for _, acc := range accountsByCode {
		typesByID[acc.AccountID] = acc.AccountType
	}

	balanceChanges := make(map[string]decimal.Decimal)
	for _, line := range lines {
		accountType, ok := typesByID[line.AccountID]
		if !ok {
			return nil, fmt.Errorf("account %s not resolved", line.AccountID)
		}
		delta, err := accounting.BalanceChange(line, accountType)
		if err != nil {
			return nil, err
		}
		balanceChanges[line.AccountID] = balanceChanges[line.AccountID].Add(delta)
	}
	return balanceChanges, nil
}
