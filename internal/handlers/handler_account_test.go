package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/stitchbooks/ledger_backend/internal/apperrors"
	"github.com/stitchbooks/ledger_backend/internal/core/domain"
	portssvc "github.com/stitchbooks/ledger_backend/internal/core/ports/services"
	"github.com/stitchbooks/ledger_backend/internal/dto"
	"github.com/stitchbooks/ledger_backend/internal/handlers"
	"github.com/stitchbooks/ledger_backend/pkg/config"
)

type AccountHandlerTestSuite struct {
	suite.Suite
	router         *gin.Engine
	mockAccountSvc *MockAccountService
}

func (suite *AccountHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)

	suite.mockAccountSvc = new(MockAccountService)

	container := &portssvc.ServiceContainer{
		Accounts: suite.mockAccountSvc,
		Posting:  new(MockPostingService),
		Bills:    new(MockBillService),
	}

	suite.router = gin.New()
	handlers.RegisterRoutes(suite.router, &config.Config{}, container)
}

func (suite *AccountHandlerTestSuite) sampleAccount() *domain.Account {
	return &domain.Account{
		AccountID:   uuid.NewString(),
		Code:        "5100",
		Name:        "Office Expenses",
		AccountType: domain.Expense,
		IsActive:    true,
		Balance:     decimal.Zero,
		AuditFields: domain.AuditFields{CreatedAt: time.Now().UTC()},
	}
}

func (suite *AccountHandlerTestSuite) TestCreateAccount_Success() {
	account := suite.sampleAccount()
	suite.mockAccountSvc.On("CreateAccount", mock.Anything, mock.AnythingOfType("dto.CreateAccountRequest")).Return(account, nil).Once()

	body, _ := json.Marshal(map[string]interface{}{
		"code":        "5100",
		"name":        "Office Expenses",
		"accountType": "EXPENSE",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/accounts", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusCreated, w.Code)

	var resp dto.AccountResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal(account.AccountID, resp.AccountID)
	suite.Equal("5100", resp.Code)
	suite.True(resp.Balance.IsZero())
	suite.mockAccountSvc.AssertExpectations(suite.T())
}

func (suite *AccountHandlerTestSuite) TestCreateAccount_DuplicateCode() {
	suite.mockAccountSvc.On("CreateAccount", mock.Anything, mock.Anything).Return(nil, apperrors.ErrDuplicate).Once()

	body, _ := json.Marshal(map[string]interface{}{
		"code":        "5100",
		"name":        "Office Expenses",
		"accountType": "EXPENSE",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/accounts", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusConflict, w.Code)
}

func (suite *AccountHandlerTestSuite) TestCreateAccount_MalformedCodeRejectedByBinding() {
	body, _ := json.Marshal(map[string]interface{}{
		"code":        "has spaces",
		"name":        "Bad Code",
		"accountType": "EXPENSE",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/accounts", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockAccountSvc.AssertNotCalled(suite.T(), "CreateAccount", mock.Anything, mock.Anything)
}

func (suite *AccountHandlerTestSuite) TestGetAccount_NotFound() {
	accountID := uuid.NewString()
	suite.mockAccountSvc.On("GetAccountByID", mock.Anything, accountID).Return(nil, apperrors.ErrNotFound).Once()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/accounts/"+accountID, nil)
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *AccountHandlerTestSuite) TestListAccounts_ByCodeFilter() {
	account := suite.sampleAccount()
	suite.mockAccountSvc.On("GetAccountByCode", mock.Anything, "5100").Return(account, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/accounts?code=5100", nil)
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusOK, w.Code)

	var resp dto.ListAccountsResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Require().Len(resp.Accounts, 1)
	suite.Equal("5100", resp.Accounts[0].Code)
	suite.mockAccountSvc.AssertNotCalled(suite.T(), "ListAccounts", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *AccountHandlerTestSuite) TestListAccounts_Paginated() {
	accounts := []domain.Account{*suite.sampleAccount(), *suite.sampleAccount()}
	suite.mockAccountSvc.On("ListAccounts", mock.Anything, 20, 0).Return(accounts, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/accounts", nil)
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusOK, w.Code)

	var resp dto.ListAccountsResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Len(resp.Accounts, 2)
}

// --- Run Test Suite ---
func TestAccountHandler(t *testing.T) {
	suite.Run(t, new(AccountHandlerTestSuite))
}
