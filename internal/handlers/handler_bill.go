package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/stitchbooks/ledger_backend/internal/apperrors"
	portssvc "github.com/stitchbooks/ledger_backend/internal/core/ports/services"
	"github.com/stitchbooks/ledger_backend/internal/dto"
	"github.com/stitchbooks/ledger_backend/internal/middleware"
)

// billHandler handles HTTP requests related to vendor bills.
type billHandler struct {
	billService portssvc.BillSvcFacade
}

func newBillHandler(billService portssvc.BillSvcFacade) *billHandler {
	return &billHandler{billService: billService}
}

// registerBillRoutes registers bill lifecycle routes under the given group.
func registerBillRoutes(rg *gin.RouterGroup, billService portssvc.BillSvcFacade) {
	h := newBillHandler(billService)

	bills := rg.Group("/bills")
	{
		bills.POST("", h.createBill)
		bills.GET("", h.listBills)
		bills.GET("/:billID", h.getBill)
		bills.POST("/:billID/approve", h.approveBill)
	}
}

func (h *billHandler) createBill(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.CreateBillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for createBill", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	bill, err := h.billService.CreateBill(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		if errors.Is(err, apperrors.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		logger.Error("Failed to create bill", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create bill"})
		return
	}

	c.JSON(http.StatusCreated, dto.ToBillResponse(bill))
}

func (h *billHandler) getBill(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	billID := c.Param("billID")

	bill, err := h.billService.GetBillByID(c.Request.Context(), billID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Bill not found"})
			return
		}
		logger.Error("Failed to get bill", slog.String("error", err.Error()), slog.String("bill_id", billID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve bill"})
		return
	}

	c.JSON(http.StatusOK, dto.ToBillResponse(bill))
}

func (h *billHandler) listBills(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var params dto.ListBillsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters"})
		return
	}

	bills, err := h.billService.ListBills(c.Request.Context(), params.Limit, params.Offset)
	if err != nil {
		logger.Error("Failed to list bills", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list bills"})
		return
	}

	responses := make([]dto.BillResponse, len(bills))
	for i, bill := range bills {
		responses[i] = dto.ToBillResponse(&bill)
	}
	c.JSON(http.StatusOK, dto.ListBillsResponse{Bills: responses})
}

func (h *billHandler) approveBill(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	billID := c.Param("billID")

	bill, entry, err := h.billService.ApproveBill(c.Request.Context(), billID)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Bill not found"})
		case errors.Is(err, apperrors.ErrConflict):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrInconsistentState):
			logger.Error("Bill approval left inconsistent state", slog.String("error", err.Error()), slog.String("bill_id", billID))
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		default:
			logger.Error("Failed to approve bill", slog.String("error", err.Error()), slog.String("bill_id", billID))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to approve bill"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ApproveBillResponse{
		Bill:  dto.ToBillResponse(bill),
		Entry: dto.ToJournalEntryResponse(entry),
	})
}
