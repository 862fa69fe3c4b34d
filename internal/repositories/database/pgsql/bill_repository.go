package pgsql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stitchbooks/ledger_backend/internal/apperrors"
	"github.com/stitchbooks/ledger_backend/internal/core/domain"
	portsrepo "github.com/stitchbooks/ledger_backend/internal/core/ports/repositories"
	"github.com/stitchbooks/ledger_backend/internal/models"
)

type PgxBillRepository struct {
	BaseRepository
}

// newPgxBillRepository creates a new repository for vendor bill data.
func newPgxBillRepository(pool *pgxpool.Pool) *PgxBillRepository {
	return &PgxBillRepository{BaseRepository{Pool: pool}}
}

// Ensure PgxBillRepository implements the facade
var _ portsrepo.BillRepositoryFacade = (*PgxBillRepository)(nil)

func toDomainBill(m models.Bill) domain.Bill {
	return domain.Bill{
		BillID:     m.BillID,
		Number:     m.Number,
		VendorName: m.VendorName,
		BillDate:   m.BillDate,
		TaxAmount:  m.TaxAmount,
		Status:     domain.BillStatus(m.Status),
		AuditFields: domain.AuditFields{
			CreatedAt:     m.CreatedAt,
			LastUpdatedAt: m.LastUpdatedAt,
		},
	}
}

func toDomainBillItem(m models.BillItem) domain.BillItem {
	return domain.BillItem{
		ItemID:             m.ItemID,
		BillID:             m.BillID,
		Description:        m.Description,
		Quantity:           m.Quantity,
		UnitPrice:          m.UnitPrice,
		Amount:             m.Amount,
		ExpenseAccountCode: m.ExpenseAccountCode,
	}
}

// SaveBill persists a new bill and its items within a single transaction.
func (r *PgxBillRepository) SaveBill(ctx context.Context, bill domain.Bill) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	billQuery := `
		INSERT INTO bills (bill_id, bill_number, vendor_name, bill_date, tax_amount, status, created_at, last_updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
	`
	_, err = tx.Exec(ctx, billQuery,
		bill.BillID,
		bill.Number,
		bill.VendorName,
		bill.BillDate,
		bill.TaxAmount,
		bill.Status,
		bill.CreatedAt,
		bill.LastUpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // Unique violation
			return fmt.Errorf("%w: bill with number %s already exists", apperrors.ErrDuplicate, bill.Number)
		}
		return apperrors.NewAppError(500, "failed to insert bill "+bill.BillID, err)
	}

	itemQuery := `
		INSERT INTO bill_items (item_id, bill_id, description, quantity, unit_price, amount, expense_account_code, position)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
	`
	batch := &pgx.Batch{}
	for i, item := range bill.Items {
		var accountCode sql.NullString
		if item.ExpenseAccountCode != "" {
			accountCode = sql.NullString{String: item.ExpenseAccountCode, Valid: true}
		}
		batch.Queue(itemQuery,
			item.ItemID,
			item.BillID,
			item.Description,
			item.Quantity,
			item.UnitPrice,
			item.Amount,
			accountCode,
			i,
		)
	}

	br := tx.SendBatch(ctx, batch)
	if err := br.Close(); err != nil {
		return apperrors.NewAppError(500, "failed to execute item batch for bill "+bill.BillID, err)
	}

	return r.Commit(ctx, tx)
}

// FindBillByID retrieves a bill together with its items.
func (r *PgxBillRepository) FindBillByID(ctx context.Context, billID string) (*domain.Bill, error) {
	billQuery := `
		SELECT bill_id, bill_number, vendor_name, bill_date, tax_amount, status, created_at, last_updated_at
		FROM bills
		WHERE bill_id = $1;
	`
	var m models.Bill
	err := r.Pool.QueryRow(ctx, billQuery, billID).Scan(
		&m.BillID,
		&m.Number,
		&m.VendorName,
		&m.BillDate,
		&m.TaxAmount,
		&m.Status,
		&m.CreatedAt,
		&m.LastUpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find bill by ID "+billID, err)
	}

	itemQuery := `
		SELECT item_id, bill_id, description, quantity, unit_price, amount, expense_account_code, position
		FROM bill_items
		WHERE bill_id = $1
		ORDER BY position;
	`
	rows, err := r.Pool.Query(ctx, itemQuery, billID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query items for bill "+billID, err)
	}
	defer rows.Close()

	bill := toDomainBill(m)
	for rows.Next() {
		var item models.BillItem
		var accountCode sql.NullString
		err := rows.Scan(
			&item.ItemID,
			&item.BillID,
			&item.Description,
			&item.Quantity,
			&item.UnitPrice,
			&item.Amount,
			&accountCode,
			&item.Position,
		)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan item row for bill "+billID, err)
		}
		if accountCode.Valid {
			item.ExpenseAccountCode = accountCode.String
		}
		bill.Items = append(bill.Items, toDomainBillItem(item))
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating item rows for bill "+billID, err)
	}

	return &bill, nil
}

// ListBills retrieves a paginated list of bills, newest first, without items.
func (r *PgxBillRepository) ListBills(ctx context.Context, limit int, offset int) ([]domain.Bill, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	query := `
		SELECT bill_id, bill_number, vendor_name, bill_date, tax_amount, status, created_at, last_updated_at
		FROM bills
		ORDER BY bill_date DESC, created_at DESC
		LIMIT $1 OFFSET $2;
	`

	rows, err := r.Pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query bills", err)
	}
	defer rows.Close()

	bills := []domain.Bill{}
	for rows.Next() {
		var m models.Bill
		err := rows.Scan(
			&m.BillID,
			&m.Number,
			&m.VendorName,
			&m.BillDate,
			&m.TaxAmount,
			&m.Status,
			&m.CreatedAt,
			&m.LastUpdatedAt,
		)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan bill row", err)
		}
		bills = append(bills, toDomainBill(m))
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating bill rows", err)
	}

	return bills, nil
}

// UpdateBillStatus transitions a bill's status with a compare-and-set on the
// expected current status.
func (r *PgxBillRepository) UpdateBillStatus(ctx context.Context, billID string, from, to domain.BillStatus, now time.Time) error {
	query := `
		UPDATE bills
		SET status = $3, last_updated_at = $4
		WHERE bill_id = $1 AND status = $2;
	`

	cmdTag, err := r.Pool.Exec(ctx, query, billID, from, to, now)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update status for bill "+billID, err)
	}

	if cmdTag.RowsAffected() == 0 {
		// Distinguish a missing bill from one in an unexpected status
		var current models.BillStatus
		findErr := r.Pool.QueryRow(ctx, `SELECT status FROM bills WHERE bill_id = $1;`, billID).Scan(&current)
		if errors.Is(findErr, pgx.ErrNoRows) {
			return apperrors.ErrNotFound
		}
		if findErr != nil {
			return apperrors.NewAppError(500, "failed to check status of bill "+billID, findErr)
		}
		return fmt.Errorf("%w: bill %s is %s, expected %s", apperrors.ErrConflict, billID, current, from)
	}

	return nil
}
