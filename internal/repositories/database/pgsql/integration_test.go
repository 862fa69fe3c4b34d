package pgsql_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stitchbooks/ledger_backend/internal/apperrors"
	"github.com/stitchbooks/ledger_backend/internal/core/domain"
	portsrepo "github.com/stitchbooks/ledger_backend/internal/core/ports/repositories"
	portssvc "github.com/stitchbooks/ledger_backend/internal/core/ports/services"
	"github.com/stitchbooks/ledger_backend/internal/core/services"
	"github.com/stitchbooks/ledger_backend/internal/dto"
	"github.com/stitchbooks/ledger_backend/internal/repositories/database/pgsql"
	"github.com/stitchbooks/ledger_backend/internal/testutil"
)

func setupRepos(t *testing.T) (*pgxpool.Pool, portsrepo.RepositoryProvider) {
	t.Helper()
	pool := testutil.SetupTestDB(t)
	return pool, pgsql.NewRepositoryProvider(pool)
}

func setupPostingService(repos portsrepo.RepositoryProvider) portssvc.PostingSvcFacade {
	return services.NewPostingService(repos.EntryRepo, services.NewAccountService(repos.AccountRepo))
}

func seedAccount(t *testing.T, repos portsrepo.RepositoryProvider, code string, accountType domain.AccountType) domain.Account {
	t.Helper()
	now := time.Now().UTC()
	account := domain.Account{
		AccountID:   uuid.NewString(),
		Code:        code,
		Name:        "Account " + code,
		AccountType: accountType,
		IsActive:    true,
		Balance:     decimal.Zero,
		AuditFields: domain.AuditFields{CreatedAt: now, LastUpdatedAt: now},
	}
	require.NoError(t, repos.AccountRepo.SaveAccount(context.Background(), account))
	return account
}

func getBalance(t *testing.T, pool *pgxpool.Pool, accountID string) decimal.Decimal {
	t.Helper()
	var balance decimal.Decimal
	err := pool.QueryRow(context.Background(), `SELECT balance FROM accounts WHERE account_id = $1`, accountID).Scan(&balance)
	require.NoError(t, err)
	return balance
}

func countRows(t *testing.T, pool *pgxpool.Pool, table string) int {
	t.Helper()
	var n int
	err := pool.QueryRow(context.Background(), fmt.Sprintf(`SELECT COUNT(*) FROM %s`, table)).Scan(&n)
	require.NoError(t, err)
	return n
}

func TestPost_ConcurrentPostingsSumExactly(t *testing.T) {
	pool, repos := setupRepos(t)
	posting := setupPostingService(repos)
	ctx := context.Background()

	cash := seedAccount(t, repos, "1000", domain.Asset)
	payable := seedAccount(t, repos, "2000", domain.Liability)

	const callers = 50
	amount := decimal.NewFromInt(7)

	var wg sync.WaitGroup
	results := make(chan error, callers)
	wg.Add(callers)
	for i := 0; i < callers; i++ {
		go func(n int) {
			defer wg.Done()
			_, err := posting.Post(ctx, dto.PostingRequest{
				Description: fmt.Sprintf("Concurrent posting %d", n),
				EntryDate:   time.Now().UTC(),
				Lines: []dto.PostingLineRequest{
					{AccountCode: "1000", Debit: amount},
					{AccountCode: "2000", Credit: amount},
				},
			})
			results <- err
		}(i)
	}
	wg.Wait()
	close(results)

	for err := range results {
		require.NoError(t, err)
	}

	// Every delta lands regardless of interleaving
	want := amount.Mul(decimal.NewFromInt(callers))
	assert.True(t, want.Equal(getBalance(t, pool, cash.AccountID)), "cash balance")
	assert.True(t, want.Equal(getBalance(t, pool, payable.AccountID)), "payable balance")
	assert.Equal(t, callers, countRows(t, pool, "journal_entries"))
	assert.Equal(t, 2*callers, countRows(t, pool, "journal_lines"))
}

func TestPost_UnknownAccountLeavesStorageUntouched(t *testing.T) {
	pool, repos := setupRepos(t)
	posting := setupPostingService(repos)
	ctx := context.Background()

	cash := seedAccount(t, repos, "1000", domain.Asset)

	_, err := posting.Post(ctx, dto.PostingRequest{
		Description: "References a code that does not exist",
		EntryDate:   time.Now().UTC(),
		Lines: []dto.PostingLineRequest{
			{AccountCode: "1000", Debit: decimal.NewFromInt(100)},
			{AccountCode: "ACC-ZZZ", Credit: decimal.NewFromInt(100)},
		},
	})

	require.Error(t, err)
	var unknown *apperrors.UnknownAccountError
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, []string{"ACC-ZZZ"}, unknown.MissingCodes)

	assert.Equal(t, 0, countRows(t, pool, "journal_entries"))
	assert.Equal(t, 0, countRows(t, pool, "journal_lines"))
	assert.True(t, getBalance(t, pool, cash.AccountID).IsZero())
}

func TestSaveEntry_RollsBackWhenAccountVanishes(t *testing.T) {
	pool, repos := setupRepos(t)
	ctx := context.Background()

	cash := seedAccount(t, repos, "1000", domain.Asset)
	missingID := uuid.NewString()

	now := time.Now().UTC()
	entry := domain.JournalEntry{
		EntryID:     uuid.NewString(),
		EntryDate:   now,
		Description: "Half of this unit cannot be applied",
		Status:      domain.Posted,
		AuditFields: domain.AuditFields{CreatedAt: now, LastUpdatedAt: now},
	}
	lines := []domain.JournalLine{
		{LineID: uuid.NewString(), EntryID: entry.EntryID, AccountID: cash.AccountID, Debit: decimal.NewFromInt(50), Credit: decimal.Zero, AuditFields: domain.AuditFields{CreatedAt: now, LastUpdatedAt: now}},
		{LineID: uuid.NewString(), EntryID: entry.EntryID, AccountID: missingID, Debit: decimal.Zero, Credit: decimal.NewFromInt(50), AuditFields: domain.AuditFields{CreatedAt: now, LastUpdatedAt: now}},
	}
	changes := map[string]decimal.Decimal{
		cash.AccountID: decimal.NewFromInt(50),
		missingID:      decimal.NewFromInt(50),
	}

	err := repos.EntryRepo.SaveEntry(ctx, entry, lines, changes)

	require.Error(t, err)
	require.ErrorIs(t, err, apperrors.ErrNotFound)

	// The header insert preceded the failed lock; all of it must be gone
	assert.Equal(t, 0, countRows(t, pool, "journal_entries"))
	assert.Equal(t, 0, countRows(t, pool, "journal_lines"))
	assert.True(t, getBalance(t, pool, cash.AccountID).IsZero())
}

func TestUpdateBillStatus_CASAdmitsOneWinner(t *testing.T) {
	_, repos := setupRepos(t)
	ctx := context.Background()

	now := time.Now().UTC()
	bill := domain.Bill{
		BillID:      uuid.NewString(),
		Number:      "INV-CAS-1",
		VendorName:  "Initech",
		BillDate:    now,
		TaxAmount:   decimal.Zero,
		Status:      domain.BillDraft,
		AuditFields: domain.AuditFields{CreatedAt: now, LastUpdatedAt: now},
	}
	require.NoError(t, repos.BillRepo.SaveBill(ctx, bill))

	const callers = 10
	var wg sync.WaitGroup
	results := make(chan error, callers)
	wg.Add(callers)
	for i := 0; i < callers; i++ {
		go func() {
			defer wg.Done()
			results <- repos.BillRepo.UpdateBillStatus(ctx, bill.BillID, domain.BillDraft, domain.BillApproving, time.Now().UTC())
		}()
	}
	wg.Wait()
	close(results)

	var won, lost int
	for err := range results {
		if err == nil {
			won++
		} else {
			require.ErrorIs(t, err, apperrors.ErrConflict)
			lost++
		}
	}

	assert.Equal(t, 1, won)
	assert.Equal(t, callers-1, lost)
}
