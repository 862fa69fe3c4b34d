package accounting

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/stitchbooks/ledger_backend/internal/apperrors"
	"github.com/stitchbooks/ledger_backend/internal/core/domain"
)

// NormalSide returns the side on which an increase is recorded for the given
// account type. ASSET/EXPENSE accounts are debit-normal; LIABILITY/EQUITY/
// REVENUE accounts are credit-normal. The mapping is total over the five
// types; an unknown type is an error, never a fallback.
func NormalSide(accountType domain.AccountType) (domain.EntrySide, error) {
	switch accountType {
	case domain.Asset, domain.Expense:
		return domain.Debit, nil
	case domain.Liability, domain.Equity, domain.Revenue:
		return domain.Credit, nil
	default:
		return "", fmt.Errorf("unknown account type '%s'", accountType)
	}
}

// BalanceChange computes the signed delta a journal line applies to its
// account's stored balance:
//
//	debit-normal  -> debit - credit
//	credit-normal -> credit - debit
//
// This is used in both services and repositories so the polarity rule is
// applied identically everywhere balances are touched.
func BalanceChange(line domain.JournalLine, accountType domain.AccountType) (decimal.Decimal, error) {
	side, err := NormalSide(accountType)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w for account ID %s", err, line.AccountID)
	}
	if side == domain.Debit {
		return line.Debit.Sub(line.Credit), nil
	}
	return line.Credit.Sub(line.Debit), nil
}

// ValidateLineAmounts checks that exactly one of debit/credit is positive.
// Booking both sides on one line is ambiguous and a zero/zero line is
// meaningless; both are rejected.
func ValidateLineAmounts(index int, debit, credit decimal.Decimal) error {
	if debit.IsNegative() || credit.IsNegative() {
		return &apperrors.InvalidLineError{Index: index, Reason: "debit and credit must not be negative"}
	}
	debitSet := debit.IsPositive()
	creditSet := credit.IsPositive()
	if debitSet && creditSet {
		return &apperrors.InvalidLineError{Index: index, Reason: "line books both a debit and a credit"}
	}
	if !debitSet && !creditSet {
		return &apperrors.InvalidLineError{Index: index, Reason: "line books neither a debit nor a credit"}
	}
	return nil
}

// EntryTotals sums debits and credits across the given lines.
func EntryTotals(lines []domain.JournalLine) (totalDebit, totalCredit decimal.Decimal) {
	totalDebit = decimal.Zero
	totalCredit = decimal.Zero
	for _, line := range lines {
		totalDebit = totalDebit.Add(line.Debit)
		totalCredit = totalCredit.Add(line.Credit)
	}
	return totalDebit, totalCredit
}

// ValidateEntryBalance checks the double-entry invariant: the sum of debits
// equals the sum of credits, exactly. No epsilon, no rounding tolerance.
func ValidateEntryBalance(lines []domain.JournalLine) error {
	totalDebit, totalCredit := EntryTotals(lines)
	if !totalDebit.Equal(totalCredit) {
		return &apperrors.UnbalancedEntryError{TotalDebit: totalDebit, TotalCredit: totalCredit}
	}
	return nil
}
