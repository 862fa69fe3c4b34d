package dto

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/stitchbooks/ledger_backend/internal/core/domain"
)

// CreateAccountRequest defines the data needed to create a new account.
type CreateAccountRequest struct {
	Code        string             `json:"code" binding:"required,accountcode"`
	Name        string             `json:"name" binding:"required"`
	AccountType domain.AccountType `json:"accountType" binding:"required,oneof=ASSET LIABILITY EQUITY REVENUE EXPENSE"`
	Description string             `json:"description"` // Optional
}

// AccountResponse defines the data returned for an account.
type AccountResponse struct {
	AccountID     string             `json:"accountID"`
	Code          string             `json:"code"`
	Name          string             `json:"name"`
	AccountType   domain.AccountType `json:"accountType"`
	Description   string             `json:"description"`
	IsActive      bool               `json:"isActive"`
	Balance       decimal.Decimal    `json:"balance"`
	CreatedAt     time.Time          `json:"createdAt"`
	LastUpdatedAt time.Time          `json:"lastUpdatedAt"`
}

// ToAccountResponse converts a domain.Account to AccountResponse DTO.
func ToAccountResponse(acc *domain.Account) AccountResponse {
	return AccountResponse{
		AccountID:     acc.AccountID,
		Code:          acc.Code,
		Name:          acc.Name,
		AccountType:   acc.AccountType,
		Description:   acc.Description,
		IsActive:      acc.IsActive,
		Balance:       acc.Balance,
		CreatedAt:     acc.CreatedAt,
		LastUpdatedAt: acc.LastUpdatedAt,
	}
}

// ToListAccountResponse converts a slice of domain.Account to response DTOs.
func ToListAccountResponse(accounts []domain.Account) []AccountResponse {
	res := make([]AccountResponse, len(accounts))
	for i, acc := range accounts {
		res[i] = ToAccountResponse(&acc)
	}
	return res
}

// ListAccountsParams defines query parameters for listing accounts. Code
// narrows the listing to a single account by its code.
type ListAccountsParams struct {
	Limit  int    `form:"limit,default=20"`
	Offset int    `form:"offset,default=0"`
	Code   string `form:"code"`
}

// ListAccountsResponse wraps the list of accounts.
type ListAccountsResponse struct {
	Accounts []AccountResponse `json:"accounts"`
}
