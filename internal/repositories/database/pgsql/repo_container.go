package pgsql

import (
	"github.com/jackc/pgx/v5/pgxpool"
	portsrepo "github.com/stitchbooks/ledger_backend/internal/core/ports/repositories"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	accountRepo := newPgxAccountRepository(dbPool)
	entryRepo := newPgxEntryRepository(dbPool, accountRepo)
	billRepo := newPgxBillRepository(dbPool)

	return portsrepo.RepositoryProvider{
		AccountRepo: accountRepo,
		EntryRepo:   entryRepo,
		BillRepo:    billRepo,
	}
}
