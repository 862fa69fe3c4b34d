package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// BillStatus indicates where a vendor bill is in its lifecycle. Only the
// DRAFT -> APPROVING -> ISSUED transitions are driven by this core; APPROVING
// is the short-lived claim a bill holds while its approval posting is in
// flight, so concurrent approvals cannot both reach the posting engine.
type BillStatus string

const (
	BillDraft     BillStatus = "DRAFT"
	BillApproving BillStatus = "APPROVING"
	BillIssued    BillStatus = "ISSUED"
	BillVoid      BillStatus = "VOID"
)

// Bill is a vendor bill, the source document for an approval posting. The
// core reads it and, on a successful posting, advances its status; item data
// is never mutated here.
type Bill struct {
	BillID     string          `json:"billID"` // Primary Key (UUID)
	Number     string          `json:"number"` // Human-facing bill number, unique
	VendorName string          `json:"vendorName"`
	BillDate   time.Time       `json:"billDate"`
	TaxAmount  decimal.Decimal `json:"taxAmount"`
	Status     BillStatus      `json:"status"`
	Items      []BillItem      `json:"items,omitempty"`
	AuditFields
}

// BillItem is a single line item on a vendor bill. ExpenseAccountCode is the
// optional per-item account mapping; when empty the configured default expense
// account is used at translation time.
type BillItem struct {
	ItemID             string          `json:"itemID"` // Primary Key (UUID)
	BillID             string          `json:"billID"` // FK -> Bill (Not Null)
	Description        string          `json:"description"`
	Quantity           decimal.Decimal `json:"quantity"`
	UnitPrice          decimal.Decimal `json:"unitPrice"`
	Amount             decimal.Decimal `json:"amount"`
	ExpenseAccountCode string          `json:"expenseAccountCode"` // Nullable mapping
}

// ItemTotal returns the sum of all item amounts on the bill.
func (b *Bill) ItemTotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range b.Items {
		total = total.Add(item.Amount)
	}
	return total
}

// GrandTotal returns item total plus tax, the amount payable to the vendor.
func (b *Bill) GrandTotal() decimal.Decimal {
	return b.ItemTotal().Add(b.TaxAmount)
}
