package repositories

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stitchbooks/ledger_backend/internal/core/domain"
)

// AccountReader defines read operations for account data.
type AccountReader interface {
	// FindAccountByID retrieves a specific account by its unique identifier.
	FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error)

	// FindAccountByCode retrieves an account by its human-assigned code.
	FindAccountByCode(ctx context.Context, code string) (*domain.Account, error)

	// FindAccountsByCodes retrieves multiple accounts keyed by code. Codes with
	// no matching account are simply absent from the map; callers decide
	// whether an incomplete resolution is fatal.
	FindAccountsByCodes(ctx context.Context, codes []string) (map[string]domain.Account, error)

	// FindAccountsByIDs retrieves multiple accounts keyed by ID. IDs with no
	// matching account are simply absent from the map.
	FindAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error)

	// ListAccounts retrieves a paginated list of active accounts.
	ListAccounts(ctx context.Context, limit int, offset int) ([]domain.Account, error)
}

// AccountWriter defines write operations for account data.
type AccountWriter interface {
	// SaveAccount persists a new account.
	SaveAccount(ctx context.Context, account domain.Account) error
}

// AccountTransactionSupport defines operations used inside the posting
// engine's atomic unit.
type AccountTransactionSupport interface {
	// FindAccountsByIDsForUpdate selects accounts and locks their rows for
	// update within the given transaction.
	FindAccountsByIDsForUpdate(ctx context.Context, tx pgx.Tx, accountIDs []string) (map[string]domain.Account, error)

	// ApplyBalanceChangesInTx applies per-account balance deltas as atomic
	// increments within the given transaction.
	ApplyBalanceChangesInTx(ctx context.Context, tx pgx.Tx, balanceChanges map[string]decimal.Decimal, now time.Time) error
}

// AccountRepositoryFacade combines all account-related repository interfaces.
type AccountRepositoryFacade interface {
	AccountReader
	AccountWriter
	AccountTransactionSupport
}
