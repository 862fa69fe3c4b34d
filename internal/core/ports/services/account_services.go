package services

import (
	"context"

	"github.com/stitchbooks/ledger_backend/internal/core/domain"
	"github.com/stitchbooks/ledger_backend/internal/dto"
)

// AccountResolver is the read-mostly account directory consumed by the
// posting engine.
type AccountResolver interface {
	// ResolveByCodes returns every account whose code is in the input. The
	// resolution is all-or-nothing: any code without a matching account fails
	// the whole call with *apperrors.UnknownAccountError naming the missing
	// codes.
	ResolveByCodes(ctx context.Context, codes []string) (map[string]domain.Account, error)
}

// AccountReaderSvc defines read operations on the account directory.
type AccountReaderSvc interface {
	AccountResolver

	// GetAccountByID retrieves a specific account by its unique identifier.
	GetAccountByID(ctx context.Context, accountID string) (*domain.Account, error)

	// GetAccountByCode retrieves an account by its human-assigned code.
	GetAccountByCode(ctx context.Context, code string) (*domain.Account, error)

	// GetAccountsByIDs retrieves multiple accounts keyed by ID.
	GetAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error)

	// ListAccounts retrieves a paginated list of accounts.
	ListAccounts(ctx context.Context, limit int, offset int) ([]domain.Account, error)
}

// AccountWriterSvc defines the administrative boundary of the directory; the
// posting core itself never creates or edits accounts.
type AccountWriterSvc interface {
	// CreateAccount persists a new account with a zero opening balance.
	CreateAccount(ctx context.Context, req dto.CreateAccountRequest) (*domain.Account, error)
}

// AccountSvcFacade combines all account-related service interfaces.
type AccountSvcFacade interface {
	AccountReaderSvc
	AccountWriterSvc
}
