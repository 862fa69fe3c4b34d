package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// BillStatus mirrors domain.BillStatus at the storage layer.
type BillStatus string

// Bill is the storage representation of a vendor bill header.
type Bill struct {
	BillID     string          `db:"bill_id"`
	Number     string          `db:"bill_number"` // Unique
	VendorName string          `db:"vendor_name"`
	BillDate   time.Time       `db:"bill_date"`
	TaxAmount  decimal.Decimal `db:"tax_amount"`
	Status     BillStatus      `db:"status"`
	AuditFields
}

// BillItem is the storage representation of a vendor bill line item.
type BillItem struct {
	ItemID             string          `db:"item_id"`
	BillID             string          `db:"bill_id"`
	Description        string          `db:"description"`
	Quantity           decimal.Decimal `db:"quantity"`
	UnitPrice          decimal.Decimal `db:"unit_price"`
	Amount             decimal.Decimal `db:"amount"`
	ExpenseAccountCode string          `db:"expense_account_code"` // Nullable mapping
	Position           int             `db:"position"`
}
