package services

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/stitchbooks/ledger_backend/internal/apperrors"
	"github.com/stitchbooks/ledger_backend/internal/core/domain"
	portssvc "github.com/stitchbooks/ledger_backend/internal/core/ports/services"
	"github.com/stitchbooks/ledger_backend/internal/dto"
	"github.com/stitchbooks/ledger_backend/pkg/config"
)

// billTranslator derives a proposed posting from a vendor bill. It is pure:
// no storage access, no clock, same bill in means same proposal out.
//
// The shape of the proposal is fixed: one debit line per item against its
// mapped (or configured default) expense account, one VAT input debit when
// the bill carries tax, and a single accounts payable credit for the grand
// total. Debits total item sum + tax, the payable credit equals it, so the
// proposal balances by construction.
type billTranslator struct {
	accounts config.PostingAccounts
}

// NewBillTranslator creates a translator bound to the configured posting accounts.
func NewBillTranslator(accounts config.PostingAccounts) portssvc.BillTranslator {
	return &billTranslator{accounts: accounts}
}

var _ portssvc.BillTranslator = (*billTranslator)(nil)

// Translate builds the posting proposal for a bill's approval.
func (t *billTranslator) Translate(bill domain.Bill) (dto.PostingRequest, error) {
	if len(bill.Items) == 0 {
		return dto.PostingRequest{}, fmt.Errorf("%w: bill %s has no items", apperrors.ErrValidation, bill.BillID)
	}
	if bill.TaxAmount.IsNegative() {
		return dto.PostingRequest{}, fmt.Errorf("%w: bill %s has negative tax amount", apperrors.ErrValidation, bill.BillID)
	}

	lines := make([]dto.PostingLineRequest, 0, len(bill.Items)+2)

	for i, item := range bill.Items {
		if !item.Amount.IsPositive() {
			return dto.PostingRequest{}, fmt.Errorf("%w: bill item %d amount must be positive", apperrors.ErrValidation, i)
		}

		expenseCode := item.ExpenseAccountCode
		if expenseCode == "" {
			expenseCode = t.accounts.DefaultExpenseCode
		}
		if expenseCode == "" {
			// An item with no mapping and no configured default cannot be
			// booked anywhere. This fails the whole translation.
			return dto.PostingRequest{}, fmt.Errorf("%w: bill item %d has no expense account mapping and no default is configured", apperrors.ErrValidation, i)
		}

		lines = append(lines, dto.PostingLineRequest{
			AccountCode: expenseCode,
			Debit:       item.Amount,
			Credit:      decimal.Zero,
			Description: item.Description,
		})
	}

	if bill.TaxAmount.IsPositive() {
		lines = append(lines, dto.PostingLineRequest{
			AccountCode: t.accounts.VATInputCode,
			Debit:       bill.TaxAmount,
			Credit:      decimal.Zero,
			Description: "VAT input",
		})
	}

	lines = append(lines, dto.PostingLineRequest{
		AccountCode: t.accounts.PayableCode,
		Debit:       decimal.Zero,
		Credit:      bill.GrandTotal(),
		Description: bill.VendorName,
	})

	reference := bill.Number
	return dto.PostingRequest{
		Description: fmt.Sprintf("Bill Approval #%s - %s", bill.Number, bill.VendorName),
		EntryDate:   bill.BillDate,
		Reference:   &reference,
		Lines:       lines,
	}, nil
}
