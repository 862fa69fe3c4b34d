package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/stitchbooks/ledger_backend/internal/apperrors"
	"github.com/stitchbooks/ledger_backend/internal/core/domain"
	portsrepo "github.com/stitchbooks/ledger_backend/internal/core/ports/repositories"
	portssvc "github.com/stitchbooks/ledger_backend/internal/core/ports/services"
	"github.com/stitchbooks/ledger_backend/internal/dto"
	"github.com/stitchbooks/ledger_backend/internal/middleware"
)

// accountService implements the account directory: the registry of postable
// accounts keyed by code.
type accountService struct {
	accountRepo portsrepo.AccountRepositoryFacade
}

// NewAccountService creates a new account directory service.
func NewAccountService(accountRepo portsrepo.AccountRepositoryFacade) portssvc.AccountSvcFacade {
	return &accountService{accountRepo: accountRepo}
}

var _ portssvc.AccountSvcFacade = (*accountService)(nil)

// CreateAccount persists a new account with a zero opening balance. The code
// is immutable once created; duplicates surface as apperrors.ErrDuplicate.
func (s *accountService) CreateAccount(ctx context.Context, req dto.CreateAccountRequest) (*domain.Account, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	now := time.Now().UTC()
	account := domain.Account{
		AccountID:   uuid.NewString(),
		Code:        req.Code,
		Name:        req.Name,
		AccountType: req.AccountType,
		Description: req.Description,
		IsActive:    true,
		Balance:     decimal.Zero,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			LastUpdatedAt: now,
		},
	}

	if err := s.accountRepo.SaveAccount(ctx, account); err != nil {
		if !errors.Is(err, apperrors.ErrDuplicate) {
			logger.Error("Failed to save account", slog.String("error", err.Error()), slog.String("code", req.Code))
		}
		return nil, err
	}

	logger.Info("Account created", slog.String("account_id", account.AccountID), slog.String("code", account.Code))
	return &account, nil
}

// GetAccountByID retrieves a specific account by its unique identifier.
func (s *accountService) GetAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get account %s: %w", accountID, err)
	}
	return account, nil
}

// GetAccountByCode retrieves an account by its human-assigned code.
func (s *accountService) GetAccountByCode(ctx context.Context, code string) (*domain.Account, error) {
	account, err := s.accountRepo.FindAccountByCode(ctx, code)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get account by code %s: %w", code, err)
	}
	return account, nil
}

// GetAccountsByIDs retrieves multiple accounts keyed by ID.
func (s *accountService) GetAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error) {
	accountsMap, err := s.accountRepo.FindAccountsByIDs(ctx, uniqueStrings(accountIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to get accounts by IDs: %w", err)
	}
	return accountsMap, nil
}

// ListAccounts retrieves a paginated list of accounts.
func (s *accountService) ListAccounts(ctx context.Context, limit int, offset int) ([]domain.Account, error) {
	accounts, err := s.accountRepo.ListAccounts(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	return accounts, nil
}

// ResolveByCodes resolves every code to its account. Resolution is
// all-or-nothing: if any code has no account, the whole call fails with
// *apperrors.UnknownAccountError naming all missing codes, and nothing is
// returned for the codes that did match.
func (s *accountService) ResolveByCodes(ctx context.Context, codes []string) (map[string]domain.Account, error) {
	unique := uniqueStrings(codes)
	accountsMap, err := s.accountRepo.FindAccountsByCodes(ctx, unique)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve account codes: %w", err)
	}

	missing := []string{}
	for _, code := range unique {
		if _, found := accountsMap[code]; !found {
			missing = append(missing, code)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, apperrors.NewUnknownAccountError(missing)
	}

	return accountsMap, nil
}

// uniqueStrings returns the unique values of the input, preserving first-seen order.
func uniqueStrings(input []string) []string {
	seen := make(map[string]struct{}, len(input))
	result := make([]string, 0, len(input))
	for _, s := range input {
		if _, ok := seen[s]; !ok {
			seen[s] = struct{}{}
			result = append(result, s)
		}
	}
	return result
}
