package services_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/stitchbooks/ledger_backend/internal/apperrors"
	"github.com/stitchbooks/ledger_backend/internal/core/domain"
	portsrepo "github.com/stitchbooks/ledger_backend/internal/core/ports/repositories"
	portssvc "github.com/stitchbooks/ledger_backend/internal/core/ports/services"
	"github.com/stitchbooks/ledger_backend/internal/core/services"
	"github.com/stitchbooks/ledger_backend/internal/dto"
)

// --- Mock BillRepository ---
type MockBillRepository struct {
	mock.Mock
}

var _ portsrepo.BillRepositoryFacade = (*MockBillRepository)(nil)

func (m *MockBillRepository) SaveBill(ctx context.Context, bill domain.Bill) error {
	args := m.Called(ctx, bill)
	return args.Error(0)
}

func (m *MockBillRepository) FindBillByID(ctx context.Context, billID string) (*domain.Bill, error) {
	args := m.Called(ctx, billID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Bill), args.Error(1)
}

func (m *MockBillRepository) ListBills(ctx context.Context, limit int, offset int) ([]domain.Bill, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Bill), args.Error(1)
}

func (m *MockBillRepository) UpdateBillStatus(ctx context.Context, billID string, from, to domain.BillStatus, now time.Time) error {
	args := m.Called(ctx, billID, from, to, now)
	return args.Error(0)
}

// --- Mock BillTranslator ---
type MockBillTranslator struct {
	mock.Mock
}

var _ portssvc.BillTranslator = (*MockBillTranslator)(nil)

func (m *MockBillTranslator) Translate(bill domain.Bill) (dto.PostingRequest, error) {
	args := m.Called(bill)
	return args.Get(0).(dto.PostingRequest), args.Error(1)
}

// --- Mock PostingService ---
type MockPostingSvc struct {
	mock.Mock
}

var _ portssvc.PostingSvcFacade = (*MockPostingSvc)(nil)

func (m *MockPostingSvc) Post(ctx context.Context, req dto.PostingRequest) (*domain.JournalEntry, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

func (m *MockPostingSvc) ReverseEntry(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	args := m.Called(ctx, entryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

func (m *MockPostingSvc) GetEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	args := m.Called(ctx, entryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

func (m *MockPostingSvc) ListEntries(ctx context.Context, limit int, offset int) ([]domain.JournalEntry, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.JournalEntry), args.Error(1)
}

func (m *MockPostingSvc) ListLinesByAccount(ctx context.Context, accountID string, limit int, offset int) ([]domain.JournalLine, error) {
	args := m.Called(ctx, accountID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.JournalLine), args.Error(1)
}

// --- Test Suite Setup ---
type BillServiceTestSuite struct {
	suite.Suite
	mockBillRepo   *MockBillRepository
	mockTranslator *MockBillTranslator
	mockPostingSvc *MockPostingSvc
	service        portssvc.BillSvcFacade
	draftBill      domain.Bill
}

func (suite *BillServiceTestSuite) SetupTest() {
	suite.mockBillRepo = new(MockBillRepository)
	suite.mockTranslator = new(MockBillTranslator)
	suite.mockPostingSvc = new(MockPostingSvc)
	suite.service = services.NewBillService(suite.mockBillRepo, suite.mockTranslator, suite.mockPostingSvc)

	billID := uuid.NewString()
	suite.draftBill = domain.Bill{
		BillID:     billID,
		Number:     "INV-77",
		VendorName: "Initech",
		BillDate:   time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC),
		TaxAmount:  decimal.NewFromInt(10),
		Status:     domain.BillDraft,
		Items: []domain.BillItem{
			{ItemID: uuid.NewString(), BillID: billID, Description: "Consulting", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(100), Amount: decimal.NewFromInt(100)},
		},
	}
}

func (suite *BillServiceTestSuite) TestCreateBill_Success() {
	ctx := context.Background()
	req := dto.CreateBillRequest{
		Number:     "INV-100",
		VendorName: "Acme",
		BillDate:   time.Now().UTC(),
		TaxAmount:  decimal.NewFromInt(5),
		Items: []dto.CreateBillItemRequest{
			{Description: "Widgets", Quantity: decimal.NewFromInt(5), UnitPrice: decimal.NewFromInt(10), Amount: decimal.NewFromInt(50)},
		},
	}

	var savedBill domain.Bill
	suite.mockBillRepo.On("SaveBill", ctx, mock.AnythingOfType("domain.Bill")).
		Run(func(args mock.Arguments) {
			savedBill = args.Get(1).(domain.Bill)
		}).
		Return(nil).Once()

	bill, err := suite.service.CreateBill(ctx, req)

	suite.Require().NoError(err)
	suite.Require().NotNil(bill)
	suite.Equal(domain.BillDraft, bill.Status)
	suite.Equal(domain.BillDraft, savedBill.Status)
	suite.Len(savedBill.Items, 1)
	suite.Equal(savedBill.BillID, savedBill.Items[0].BillID)
}

func (suite *BillServiceTestSuite) TestCreateBill_NonPositiveItemAmount() {
	ctx := context.Background()
	req := dto.CreateBillRequest{
		Number:     "INV-101",
		VendorName: "Acme",
		BillDate:   time.Now().UTC(),
		Items: []dto.CreateBillItemRequest{
			{Description: "Freebie", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.Zero, Amount: decimal.Zero},
		},
	}

	_, err := suite.service.CreateBill(ctx, req)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockBillRepo.AssertNotCalled(suite.T(), "SaveBill", mock.Anything, mock.Anything)
}

func (suite *BillServiceTestSuite) TestApproveBill_Success() {
	ctx := context.Background()
	billID := suite.draftBill.BillID

	postingReq := dto.PostingRequest{Description: "Bill Approval #INV-77 - Initech"}
	postedEntry := &domain.JournalEntry{EntryID: uuid.NewString(), Status: domain.Posted}

	suite.mockBillRepo.On("FindBillByID", ctx, billID).Return(&suite.draftBill, nil).Once()
	suite.mockTranslator.On("Translate", suite.draftBill).Return(postingReq, nil).Once()
	suite.mockBillRepo.On("UpdateBillStatus", ctx, billID, domain.BillDraft, domain.BillApproving, mock.AnythingOfType("time.Time")).Return(nil).Once()
	suite.mockPostingSvc.On("Post", ctx, postingReq).Return(postedEntry, nil).Once()
	suite.mockBillRepo.On("UpdateBillStatus", ctx, billID, domain.BillApproving, domain.BillIssued, mock.AnythingOfType("time.Time")).Return(nil).Once()

	bill, entry, err := suite.service.ApproveBill(ctx, billID)

	suite.Require().NoError(err)
	suite.Require().NotNil(bill)
	suite.Require().NotNil(entry)
	suite.Equal(domain.BillIssued, bill.Status)
	suite.Equal(postedEntry.EntryID, entry.EntryID)

	suite.mockBillRepo.AssertExpectations(suite.T())
	suite.mockTranslator.AssertExpectations(suite.T())
	suite.mockPostingSvc.AssertExpectations(suite.T())
}

func (suite *BillServiceTestSuite) TestApproveBill_NotFound() {
	ctx := context.Background()
	billID := uuid.NewString()

	suite.mockBillRepo.On("FindBillByID", ctx, billID).Return(nil, apperrors.ErrNotFound).Once()

	_, _, err := suite.service.ApproveBill(ctx, billID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *BillServiceTestSuite) TestApproveBill_NotDraftFailsFast() {
	ctx := context.Background()
	issued := suite.draftBill
	issued.Status = domain.BillIssued

	suite.mockBillRepo.On("FindBillByID", ctx, issued.BillID).Return(&issued, nil).Once()

	_, _, err := suite.service.ApproveBill(ctx, issued.BillID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrConflict)
	// Neither the translator nor the posting engine may be touched
	suite.mockTranslator.AssertNotCalled(suite.T(), "Translate", mock.Anything)
	suite.mockPostingSvc.AssertNotCalled(suite.T(), "Post", mock.Anything, mock.Anything)
	suite.mockBillRepo.AssertNotCalled(suite.T(), "UpdateBillStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *BillServiceTestSuite) TestApproveBill_TranslationFailure() {
	ctx := context.Background()
	billID := suite.draftBill.BillID

	suite.mockBillRepo.On("FindBillByID", ctx, billID).Return(&suite.draftBill, nil).Once()
	suite.mockTranslator.On("Translate", suite.draftBill).Return(dto.PostingRequest{}, apperrors.ErrValidation).Once()

	_, _, err := suite.service.ApproveBill(ctx, billID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockPostingSvc.AssertNotCalled(suite.T(), "Post", mock.Anything, mock.Anything)
	suite.mockBillRepo.AssertNotCalled(suite.T(), "UpdateBillStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *BillServiceTestSuite) TestApproveBill_ClaimLostReturnsConflict() {
	ctx := context.Background()
	billID := suite.draftBill.BillID

	postingReq := dto.PostingRequest{Description: "Bill Approval #INV-77 - Initech"}
	claimErr := fmt.Errorf("%w: bill %s is %s, expected %s", apperrors.ErrConflict, billID, domain.BillApproving, domain.BillDraft)

	suite.mockBillRepo.On("FindBillByID", ctx, billID).Return(&suite.draftBill, nil).Once()
	suite.mockTranslator.On("Translate", suite.draftBill).Return(postingReq, nil).Once()
	suite.mockBillRepo.On("UpdateBillStatus", ctx, billID, domain.BillDraft, domain.BillApproving, mock.AnythingOfType("time.Time")).Return(claimErr).Once()

	_, _, err := suite.service.ApproveBill(ctx, billID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrConflict)
	// Losing the claim must not post anything
	suite.mockPostingSvc.AssertNotCalled(suite.T(), "Post", mock.Anything, mock.Anything)
}

func (suite *BillServiceTestSuite) TestApproveBill_PostingFailureReleasesClaim() {
	ctx := context.Background()
	billID := suite.draftBill.BillID

	postingReq := dto.PostingRequest{Description: "Bill Approval #INV-77 - Initech"}
	suite.mockBillRepo.On("FindBillByID", ctx, billID).Return(&suite.draftBill, nil).Once()
	suite.mockTranslator.On("Translate", suite.draftBill).Return(postingReq, nil).Once()
	suite.mockBillRepo.On("UpdateBillStatus", ctx, billID, domain.BillDraft, domain.BillApproving, mock.AnythingOfType("time.Time")).Return(nil).Once()
	suite.mockPostingSvc.On("Post", ctx, postingReq).Return(nil, apperrors.ErrPostingFailed).Once()
	suite.mockBillRepo.On("UpdateBillStatus", ctx, billID, domain.BillApproving, domain.BillDraft, mock.AnythingOfType("time.Time")).Return(nil).Once()

	_, _, err := suite.service.ApproveBill(ctx, billID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrPostingFailed)
	suite.mockBillRepo.AssertExpectations(suite.T())
}

func (suite *BillServiceTestSuite) TestApproveBill_ClaimReleaseFailure() {
	ctx := context.Background()
	billID := suite.draftBill.BillID

	postingReq := dto.PostingRequest{Description: "Bill Approval #INV-77 - Initech"}
	suite.mockBillRepo.On("FindBillByID", ctx, billID).Return(&suite.draftBill, nil).Once()
	suite.mockTranslator.On("Translate", suite.draftBill).Return(postingReq, nil).Once()
	suite.mockBillRepo.On("UpdateBillStatus", ctx, billID, domain.BillDraft, domain.BillApproving, mock.AnythingOfType("time.Time")).Return(nil).Once()
	suite.mockPostingSvc.On("Post", ctx, postingReq).Return(nil, apperrors.ErrPostingFailed).Once()
	suite.mockBillRepo.On("UpdateBillStatus", ctx, billID, domain.BillApproving, domain.BillDraft, mock.AnythingOfType("time.Time")).Return(errors.New("connection reset")).Once()

	_, _, err := suite.service.ApproveBill(ctx, billID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrInconsistentState)
	suite.Contains(err.Error(), billID)
}

func (suite *BillServiceTestSuite) TestApproveBill_StatusUpdateFailure() {
	ctx := context.Background()
	billID := suite.draftBill.BillID

	postingReq := dto.PostingRequest{Description: "Bill Approval #INV-77 - Initech"}
	postedEntry := &domain.JournalEntry{EntryID: uuid.NewString(), Status: domain.Posted}

	suite.mockBillRepo.On("FindBillByID", ctx, billID).Return(&suite.draftBill, nil).Once()
	suite.mockTranslator.On("Translate", suite.draftBill).Return(postingReq, nil).Once()
	suite.mockBillRepo.On("UpdateBillStatus", ctx, billID, domain.BillDraft, domain.BillApproving, mock.AnythingOfType("time.Time")).Return(nil).Once()
	suite.mockPostingSvc.On("Post", ctx, postingReq).Return(postedEntry, nil).Once()
	suite.mockBillRepo.On("UpdateBillStatus", ctx, billID, domain.BillApproving, domain.BillIssued, mock.AnythingOfType("time.Time")).Return(errors.New("connection reset")).Once()

	_, _, err := suite.service.ApproveBill(ctx, billID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrInconsistentState)
	// The error names the posted entry so operators can reconcile
	suite.Contains(err.Error(), postedEntry.EntryID)
}

func (suite *BillServiceTestSuite) TestApproveBill_ConcurrentApprovalsPostOnce() {
	ctx := context.Background()
	billID := suite.draftBill.BillID

	postingReq := dto.PostingRequest{Description: "Bill Approval #INV-77 - Initech"}
	postedEntry := &domain.JournalEntry{EntryID: uuid.NewString(), Status: domain.Posted}
	claimErr := fmt.Errorf("%w: bill %s is %s, expected %s", apperrors.ErrConflict, billID, domain.BillApproving, domain.BillDraft)

	// Hold both callers at the read until each has seen the bill in DRAFT,
	// then let them race for the claim.
	var barrier sync.WaitGroup
	barrier.Add(2)
	suite.mockBillRepo.On("FindBillByID", ctx, billID).
		Run(func(mock.Arguments) {
			barrier.Done()
			barrier.Wait()
		}).
		Return(&suite.draftBill, nil).Twice()
	suite.mockTranslator.On("Translate", suite.draftBill).Return(postingReq, nil).Twice()

	// The CAS admits exactly one claim; the second caller loses it.
	suite.mockBillRepo.On("UpdateBillStatus", ctx, billID, domain.BillDraft, domain.BillApproving, mock.AnythingOfType("time.Time")).Return(nil).Once()
	suite.mockBillRepo.On("UpdateBillStatus", ctx, billID, domain.BillDraft, domain.BillApproving, mock.AnythingOfType("time.Time")).Return(claimErr).Once()

	var postCount int32
	suite.mockPostingSvc.On("Post", ctx, postingReq).
		Run(func(mock.Arguments) { atomic.AddInt32(&postCount, 1) }).
		Return(postedEntry, nil)
	suite.mockBillRepo.On("UpdateBillStatus", ctx, billID, domain.BillApproving, domain.BillIssued, mock.AnythingOfType("time.Time")).Return(nil).Once()

	errs := make(chan error, 2)
	var wg sync.WaitGroup
	wg.Add(2)
	for i := 0; i < 2; i++ {
		go func() {
			defer wg.Done()
			_, _, err := suite.service.ApproveBill(ctx, billID)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var succeeded, conflicted int
	for err := range errs {
		if err == nil {
			succeeded++
		} else if errors.Is(err, apperrors.ErrConflict) {
			conflicted++
		} else {
			suite.Failf("unexpected error", "%v", err)
		}
	}

	suite.Equal(1, succeeded)
	suite.Equal(1, conflicted)
	// One bill, one journal entry, no matter the interleaving
	suite.Equal(int32(1), atomic.LoadInt32(&postCount))
}

// --- Run Test Suite ---
func TestBillService(t *testing.T) {
	suite.Run(t, new(BillServiceTestSuite))
}
