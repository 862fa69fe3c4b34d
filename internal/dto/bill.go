package dto

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/stitchbooks/ledger_backend/internal/core/domain"
)

// CreateBillItemRequest is one line item on a new vendor bill.
type CreateBillItemRequest struct {
	Description        string          `json:"description" binding:"required"`
	Quantity           decimal.Decimal `json:"quantity" binding:"required"`
	UnitPrice          decimal.Decimal `json:"unitPrice" binding:"required"`
	Amount             decimal.Decimal `json:"amount" binding:"required"`
	ExpenseAccountCode string          `json:"expenseAccountCode" binding:"omitempty,accountcode"`
}

// CreateBillRequest defines the data needed to record a new vendor bill.
// Bills are created in DRAFT.
type CreateBillRequest struct {
	Number     string                  `json:"number" binding:"required"`
	VendorName string                  `json:"vendorName" binding:"required"`
	BillDate   time.Time               `json:"billDate" binding:"required"`
	TaxAmount  decimal.Decimal         `json:"taxAmount"`
	Items      []CreateBillItemRequest `json:"items" binding:"required,min=1,dive"`
}

// BillItemResponse defines the data returned for a bill item.
type BillItemResponse struct {
	ItemID             string          `json:"itemID"`
	Description        string          `json:"description"`
	Quantity           decimal.Decimal `json:"quantity"`
	UnitPrice          decimal.Decimal `json:"unitPrice"`
	Amount             decimal.Decimal `json:"amount"`
	ExpenseAccountCode string          `json:"expenseAccountCode,omitempty"`
}

// BillResponse defines the data returned for a vendor bill.
type BillResponse struct {
	BillID     string             `json:"billID"`
	Number     string             `json:"number"`
	VendorName string             `json:"vendorName"`
	BillDate   time.Time          `json:"billDate"`
	TaxAmount  decimal.Decimal    `json:"taxAmount"`
	Status     domain.BillStatus  `json:"status"`
	Items      []BillItemResponse `json:"items,omitempty"`
	CreatedAt  time.Time          `json:"createdAt"`
}

// ApproveBillResponse couples the approved bill with the journal entry its
// approval produced.
type ApproveBillResponse struct {
	Bill  BillResponse         `json:"bill"`
	Entry JournalEntryResponse `json:"entry"`
}

// ToBillResponse converts a domain.Bill to its response DTO.
func ToBillResponse(bill *domain.Bill) BillResponse {
	items := make([]BillItemResponse, len(bill.Items))
	for i, item := range bill.Items {
		items[i] = BillItemResponse{
			ItemID:             item.ItemID,
			Description:        item.Description,
			Quantity:           item.Quantity,
			UnitPrice:          item.UnitPrice,
			Amount:             item.Amount,
			ExpenseAccountCode: item.ExpenseAccountCode,
		}
	}
	return BillResponse{
		BillID:     bill.BillID,
		Number:     bill.Number,
		VendorName: bill.VendorName,
		BillDate:   bill.BillDate,
		TaxAmount:  bill.TaxAmount,
		Status:     bill.Status,
		Items:      items,
		CreatedAt:  bill.CreatedAt,
	}
}

// ListBillsParams defines query parameters for listing bills.
type ListBillsParams struct {
	Limit  int `form:"limit,default=20"`
	Offset int `form:"offset,default=0"`
}

// ListBillsResponse wraps the list of bills.
type ListBillsResponse struct {
	Bills []BillResponse `json:"bills"`
}
