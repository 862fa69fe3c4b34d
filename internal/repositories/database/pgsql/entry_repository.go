package pgsql

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stitchbooks/ledger_backend/internal/apperrors"
	"github.com/stitchbooks/ledger_backend/internal/core/domain"
	portsrepo "github.com/stitchbooks/ledger_backend/internal/core/ports/repositories"
	"github.com/stitchbooks/ledger_backend/internal/models"
)

type PgxEntryRepository struct {
	BaseRepository
	accountRepo portsrepo.AccountRepositoryFacade
}

// newPgxEntryRepository creates a new repository for journal entry and line data.
func newPgxEntryRepository(pool *pgxpool.Pool, accountRepo portsrepo.AccountRepositoryFacade) *PgxEntryRepository {
	return &PgxEntryRepository{
		BaseRepository: BaseRepository{Pool: pool},
		accountRepo:    accountRepo,
	}
}

// Ensure PgxEntryRepository implements the facade
var _ portsrepo.EntryRepositoryFacade = (*PgxEntryRepository)(nil)

func toModelLine(d domain.JournalLine, position int) models.JournalLine {
	return models.JournalLine{
		LineID:      d.LineID,
		EntryID:     d.EntryID,
		AccountID:   d.AccountID,
		Debit:       d.Debit,
		Credit:      d.Credit,
		Description: d.Description,
		Position:    position,
		AuditFields: models.AuditFields{
			CreatedAt:     d.CreatedAt,
			LastUpdatedAt: d.LastUpdatedAt,
		},
	}
}

func toDomainLine(m models.JournalLine) domain.JournalLine {
	return domain.JournalLine{
		LineID:      m.LineID,
		EntryID:     m.EntryID,
		AccountID:   m.AccountID,
		Debit:       m.Debit,
		Credit:      m.Credit,
		Description: m.Description,
		AuditFields: domain.AuditFields{
			CreatedAt:     m.CreatedAt,
			LastUpdatedAt: m.LastUpdatedAt,
		},
	}
}

// SaveEntry saves a journal entry, updates account balances, and saves the
// entry lines within a single database transaction. Any failure rolls back
// the whole unit.
func (r *PgxEntryRepository) SaveEntry(ctx context.Context, entry domain.JournalEntry, lines []domain.JournalLine, balanceChanges map[string]decimal.Decimal) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx) // Ignored once the transaction is committed

	now := entry.CreatedAt

	// 1. Insert the entry header
	entryQuery := `
		INSERT INTO journal_entries (
			entry_id, entry_date, description, reference, status,
			original_entry_id, reversing_entry_id,
			created_at, last_updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
	`
	_, err = tx.Exec(ctx, entryQuery,
		entry.EntryID,
		entry.EntryDate,
		entry.Description,
		entry.Reference,
		entry.Status,
		entry.OriginalEntryID,
		entry.ReversingEntryID,
		entry.CreatedAt,
		entry.LastUpdatedAt,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to insert journal entry "+entry.EntryID, err)
	}

	// 2. Lock the touched accounts
	accountIDs := make([]string, 0, len(balanceChanges))
	for accID := range balanceChanges {
		accountIDs = append(accountIDs, accID)
	}

	if _, err := r.accountRepo.FindAccountsByIDsForUpdate(ctx, tx, accountIDs); err != nil {
		return apperrors.NewAppError(500, "failed to lock accounts for update", err)
	}

	// 3. Apply balance deltas
	if err := r.accountRepo.ApplyBalanceChangesInTx(ctx, tx, balanceChanges, now); err != nil {
		return apperrors.NewAppError(500, "failed to update account balances", err)
	}

	// 4. Insert the lines, preserving submitted order
	batch := &pgx.Batch{}
	lineQuery := `
		INSERT INTO journal_lines (line_id, entry_id, account_id, debit, credit, description, position, created_at, last_updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
	`
	for i, line := range lines {
		m := toModelLine(line, i)
		m.CreatedAt = now
		m.LastUpdatedAt = now
		batch.Queue(lineQuery,
			m.LineID,
			m.EntryID,
			m.AccountID,
			m.Debit,
			m.Credit,
			m.Description,
			m.Position,
			m.CreatedAt,
			m.LastUpdatedAt,
		)
	}

	br := tx.SendBatch(ctx, batch)
	if err := br.Close(); err != nil {
		return apperrors.NewAppError(500, "failed to execute line batch for entry "+entry.EntryID, err)
	}

	if err := r.Commit(ctx, tx); err != nil {
		return apperrors.NewAppError(500, "failed to commit transaction for entry "+entry.EntryID, err)
	}

	return nil
}

const entryColumns = `entry_id, entry_date, description, reference, status, original_entry_id, reversing_entry_id, created_at, last_updated_at`

func scanEntryRow(row pgx.Row) (models.JournalEntry, error) {
	var m models.JournalEntry
	var reference, originalID, reversingID sql.NullString

	err := row.Scan(
		&m.EntryID,
		&m.EntryDate,
		&m.Description,
		&reference,
		&m.Status,
		&originalID,
		&reversingID,
		&m.CreatedAt,
		&m.LastUpdatedAt,
	)
	if err != nil {
		return m, err
	}

	if reference.Valid {
		m.Reference = &reference.String
	}
	if originalID.Valid {
		m.OriginalEntryID = &originalID.String
	}
	if reversingID.Valid {
		m.ReversingEntryID = &reversingID.String
	}
	return m, nil
}

func toDomainEntry(m models.JournalEntry) domain.JournalEntry {
	return domain.JournalEntry{
		EntryID:          m.EntryID,
		EntryDate:        m.EntryDate,
		Description:      m.Description,
		Reference:        m.Reference,
		Status:           domain.EntryStatus(m.Status),
		OriginalEntryID:  m.OriginalEntryID,
		ReversingEntryID: m.ReversingEntryID,
		AuditFields: domain.AuditFields{
			CreatedAt:     m.CreatedAt,
			LastUpdatedAt: m.LastUpdatedAt,
		},
	}
}

// FindEntryByID retrieves a journal entry by its ID, without its lines.
func (r *PgxEntryRepository) FindEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	query := `
		SELECT ` + entryColumns + `
		FROM journal_entries
		WHERE entry_id = $1;
	`
	m, err := scanEntryRow(r.Pool.QueryRow(ctx, query, entryID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find entry by ID "+entryID, err)
	}

	domainEntry := toDomainEntry(m)
	return &domainEntry, nil
}

// FindLinesByEntryID retrieves all lines of an entry in submitted order.
func (r *PgxEntryRepository) FindLinesByEntryID(ctx context.Context, entryID string) ([]domain.JournalLine, error) {
	query := `
		SELECT line_id, entry_id, account_id, debit, credit, description, position, created_at, last_updated_at
		FROM journal_lines
		WHERE entry_id = $1
		ORDER BY position;
	`
	rows, err := r.Pool.Query(ctx, query, entryID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query lines for entry "+entryID, err)
	}
	defer rows.Close()

	lines := []domain.JournalLine{}
	for rows.Next() {
		var m models.JournalLine
		err := rows.Scan(
			&m.LineID,
			&m.EntryID,
			&m.AccountID,
			&m.Debit,
			&m.Credit,
			&m.Description,
			&m.Position,
			&m.CreatedAt,
			&m.LastUpdatedAt,
		)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan line row for entry "+entryID, err)
		}
		lines = append(lines, toDomainLine(m))
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating line rows for entry "+entryID, err)
	}

	return lines, nil
}

// ListEntries retrieves a paginated list of journal entries, newest first.
func (r *PgxEntryRepository) ListEntries(ctx context.Context, limit int, offset int) ([]domain.JournalEntry, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	query := `
		SELECT ` + entryColumns + `
		FROM journal_entries
		ORDER BY entry_date DESC, created_at DESC
		LIMIT $1 OFFSET $2;
	`

	rows, err := r.Pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query journal entries", err)
	}
	defer rows.Close()

	entries := []domain.JournalEntry{}
	for rows.Next() {
		m, err := scanEntryRow(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan journal entry row", err)
		}
		entries = append(entries, toDomainEntry(m))
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating journal entry rows", err)
	}

	return entries, nil
}

// ListLinesByAccountID retrieves a paginated list of lines booked against one
// account, newest entry first.
func (r *PgxEntryRepository) ListLinesByAccountID(ctx context.Context, accountID string, limit int, offset int) ([]domain.JournalLine, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	query := `
		SELECT l.line_id, l.entry_id, l.account_id, l.debit, l.credit, l.description, l.position, l.created_at, l.last_updated_at
		FROM journal_lines l
		JOIN journal_entries e ON l.entry_id = e.entry_id
		WHERE l.account_id = $1
		ORDER BY e.entry_date DESC, e.created_at DESC, l.position
		LIMIT $2 OFFSET $3;
	`

	rows, err := r.Pool.Query(ctx, query, accountID, limit, offset)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query lines for account "+accountID, err)
	}
	defer rows.Close()

	lines := []domain.JournalLine{}
	for rows.Next() {
		var m models.JournalLine
		err := rows.Scan(
			&m.LineID,
			&m.EntryID,
			&m.AccountID,
			&m.Debit,
			&m.Credit,
			&m.Description,
			&m.Position,
			&m.CreatedAt,
			&m.LastUpdatedAt,
		)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan line row for account "+accountID, err)
		}
		lines = append(lines, toDomainLine(m))
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating line rows for account "+accountID, err)
	}

	return lines, nil
}

// UpdateEntryStatusAndLinks updates the status and reversal links for an entry.
func (r *PgxEntryRepository) UpdateEntryStatusAndLinks(ctx context.Context, entryID string, status domain.EntryStatus, reversingEntryID *string, originalEntryID *string, updatedAt time.Time) error {
	query := `
		UPDATE journal_entries
		SET status = $2,
		    reversing_entry_id = $3,
		    original_entry_id = $4,
		    last_updated_at = $5
		WHERE entry_id = $1;
	`

	cmdTag, err := r.Pool.Exec(ctx, query,
		entryID,
		status,
		reversingEntryID,
		originalEntryID,
		updatedAt,
	)

	if err != nil {
		return apperrors.NewAppError(500, "failed to update entry status/links for "+entryID, err)
	}

	if cmdTag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("entry " + entryID + " not found for update")
	}

	return nil
}
