package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stitchbooks/ledger_backend/internal/apperrors"
	"github.com/stitchbooks/ledger_backend/internal/core/domain"
	portsrepo "github.com/stitchbooks/ledger_backend/internal/core/ports/repositories"
	"github.com/stitchbooks/ledger_backend/internal/middleware"
	"github.com/stitchbooks/ledger_backend/internal/models"
)

type PgxAccountRepository struct {
	BaseRepository
}

// newPgxAccountRepository creates a new repository for account data.
func newPgxAccountRepository(pool *pgxpool.Pool) *PgxAccountRepository {
	return &PgxAccountRepository{BaseRepository{Pool: pool}}
}

// Ensure PgxAccountRepository implements the facade
var _ portsrepo.AccountRepositoryFacade = (*PgxAccountRepository)(nil)

const accountColumns = `account_id, code, name, account_type, description, is_active, balance, created_at, last_updated_at`

func toModelAccount(d domain.Account) models.Account {
	return models.Account{
		AccountID:   d.AccountID,
		Code:        d.Code,
		Name:        d.Name,
		AccountType: models.AccountType(d.AccountType),
		Description: d.Description,
		IsActive:    d.IsActive,
		Balance:     d.Balance,
		AuditFields: models.AuditFields{
			CreatedAt:     d.CreatedAt,
			LastUpdatedAt: d.LastUpdatedAt,
		},
	}
}

func toDomainAccount(m models.Account) domain.Account {
	return domain.Account{
		AccountID:   m.AccountID,
		Code:        m.Code,
		Name:        m.Name,
		AccountType: domain.AccountType(m.AccountType),
		Description: m.Description,
		IsActive:    m.IsActive,
		Balance:     m.Balance,
		AuditFields: domain.AuditFields{
			CreatedAt:     m.CreatedAt,
			LastUpdatedAt: m.LastUpdatedAt,
		},
	}
}

func scanAccountRow(row pgx.Row) (models.Account, error) {
	var m models.Account
	err := row.Scan(
		&m.AccountID,
		&m.Code,
		&m.Name,
		&m.AccountType,
		&m.Description,
		&m.IsActive,
		&m.Balance,
		&m.CreatedAt,
		&m.LastUpdatedAt,
	)
	return m, err
}

// SaveAccount inserts a new account.
func (r *PgxAccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	modelAcc := toModelAccount(account)

	query := `
		INSERT INTO accounts (` + accountColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
	`

	_, err := r.Pool.Exec(ctx, query,
		modelAcc.AccountID,
		modelAcc.Code,
		modelAcc.Name,
		modelAcc.AccountType,
		modelAcc.Description,
		modelAcc.IsActive,
		modelAcc.Balance,
		modelAcc.CreatedAt,
		modelAcc.LastUpdatedAt,
	)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			if pgErr.Code == "23505" { // Unique violation
				return fmt.Errorf("%w: account with code %s already exists", apperrors.ErrDuplicate, modelAcc.Code)
			}
		}
		return fmt.Errorf("failed to save account %s: %w", modelAcc.AccountID, err)
	}
	return nil
}

// FindAccountByID retrieves an account by its ID.
func (r *PgxAccountRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE account_id = $1;
	`
	m, err := scanAccountRow(r.Pool.QueryRow(ctx, query, accountID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find account by ID %s: %w", accountID, err)
	}

	domainAcc := toDomainAccount(m)
	return &domainAcc, nil
}

// FindAccountByCode retrieves an account by its code.
func (r *PgxAccountRepository) FindAccountByCode(ctx context.Context, code string) (*domain.Account, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE code = $1;
	`
	m, err := scanAccountRow(r.Pool.QueryRow(ctx, query, code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find account by code %s: %w", code, err)
	}

	domainAcc := toDomainAccount(m)
	return &domainAcc, nil
}

// FindAccountsByCodes retrieves multiple accounts keyed by code.
// The map will simply not contain codes that were not found; the caller
// decides whether a partial result is acceptable.
func (r *PgxAccountRepository) FindAccountsByCodes(ctx context.Context, codes []string) (map[string]domain.Account, error) {
	if len(codes) == 0 {
		return map[string]domain.Account{}, nil
	}

	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE code = ANY($1);
	`

	rows, err := r.Pool.Query(ctx, query, codes)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts by codes: %w", err)
	}
	defer rows.Close()

	accountsMap := make(map[string]domain.Account)
	for rows.Next() {
		m, err := scanAccountRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account row during batch fetch: %w", err)
		}
		accountsMap[m.Code] = toDomainAccount(m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating account rows during batch fetch: %w", err)
	}

	return accountsMap, nil
}

// FindAccountsByIDs retrieves multiple accounts keyed by ID.
func (r *PgxAccountRepository) FindAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error) {
	if len(accountIDs) == 0 {
		return map[string]domain.Account{}, nil
	}

	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE account_id = ANY($1);
	`

	rows, err := r.Pool.Query(ctx, query, accountIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts by IDs: %w", err)
	}
	defer rows.Close()

	accountsMap := make(map[string]domain.Account)
	for rows.Next() {
		m, err := scanAccountRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account row during batch fetch: %w", err)
		}
		accountsMap[m.AccountID] = toDomainAccount(m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating account rows during batch fetch: %w", err)
	}

	return accountsMap, nil
}

// ListAccounts retrieves a paginated list of accounts ordered by code.
func (r *PgxAccountRepository) ListAccounts(ctx context.Context, limit int, offset int) ([]domain.Account, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		ORDER BY code
		LIMIT $1 OFFSET $2;
	`

	rows, err := r.Pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	defer rows.Close()

	accounts := []domain.Account{}
	for rows.Next() {
		m, err := scanAccountRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account row: %w", err)
		}
		accounts = append(accounts, toDomainAccount(m))
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating account rows: %w", rows.Err())
	}

	return accounts, nil
}

// FindAccountsByIDsForUpdate retrieves multiple accounts by IDs and locks the rows for update.
// Must be called within a transaction.
func (r *PgxAccountRepository) FindAccountsByIDsForUpdate(ctx context.Context, tx pgx.Tx, accountIDs []string) (map[string]domain.Account, error) {
	if len(accountIDs) == 0 {
		return map[string]domain.Account{}, nil
	}

	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE account_id = ANY($1)
		FOR UPDATE;
	`

	rows, err := tx.Query(ctx, query, accountIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts by IDs for update: %w", err)
	}
	defer rows.Close()

	accountsMap := make(map[string]domain.Account)
	for rows.Next() {
		m, err := scanAccountRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan locked account row: %w", err)
		}
		accountsMap[m.AccountID] = toDomainAccount(m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating locked account rows: %w", err)
	}

	if len(accountsMap) != len(accountIDs) {
		missing := []string{}
		for _, id := range accountIDs {
			if _, found := accountsMap[id]; !found {
				missing = append(missing, id)
			}
		}
		logger := middleware.GetLoggerFromCtx(ctx)
		logger.Warn("Some accounts requested for update lock were not found", "missing_accounts", missing)
		return nil, fmt.Errorf("%w: could not find or lock all requested accounts, missing: %v", apperrors.ErrNotFound, missing)
	}

	return accountsMap, nil
}

// ApplyBalanceChangesInTx applies signed balance deltas to multiple accounts within a transaction.
func (r *PgxAccountRepository) ApplyBalanceChangesInTx(ctx context.Context, tx pgx.Tx, balanceChanges map[string]decimal.Decimal, now time.Time) error {
	if len(balanceChanges) == 0 {
		return nil
	}

	// COALESCE guards against rows predating the balance column default
	query := `
		UPDATE accounts
		SET balance = COALESCE(balance, 0) + $2, last_updated_at = $3
		WHERE account_id = $1;
	`

	batch := &pgx.Batch{}
	accountIDs := make([]string, 0, len(balanceChanges))
	for accountID, delta := range balanceChanges {
		if !delta.IsZero() {
			batch.Queue(query, accountID, delta, now)
			accountIDs = append(accountIDs, accountID)
		}
	}

	if batch.Len() == 0 {
		return nil
	}

	br := tx.SendBatch(ctx, batch)
	var batchErr error
	for i := 0; i < batch.Len(); i++ {
		ct, err := br.Exec()
		if err != nil {
			if batchErr == nil {
				batchErr = fmt.Errorf("failed to update balance for account %s: %w", accountIDs[i], err)
			}
		} else if ct.RowsAffected() == 0 {
			if batchErr == nil {
				batchErr = fmt.Errorf("%w: account %s not found during balance update", apperrors.ErrNotFound, accountIDs[i])
			}
		}
	}

	if err := br.Close(); err != nil && batchErr == nil {
		batchErr = fmt.Errorf("failed to close balance update batch: %w", err)
	}

	return batchErr
}
