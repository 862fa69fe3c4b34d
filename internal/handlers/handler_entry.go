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

// entryHandler handles HTTP requests against the posting engine.
type entryHandler struct {
	postingService portssvc.PostingSvcFacade
}

func newEntryHandler(postingService portssvc.PostingSvcFacade) *entryHandler {
	return &entryHandler{postingService: postingService}
}

// registerEntryRoutes registers journal entry routes under the given group.
func registerEntryRoutes(rg *gin.RouterGroup, postingService portssvc.PostingSvcFacade) {
	h := newEntryHandler(postingService)

	entries := rg.Group("/entries")
	{
		entries.POST("", h.postEntry)
		entries.GET("", h.listEntries)
		entries.GET("/:entryID", h.getEntry)
		entries.POST("/:entryID/reverse", h.reverseEntry)
	}

	rg.GET("/accounts/:accountID/lines", h.listLinesByAccount)
}

func (h *entryHandler) postEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.PostingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for postEntry", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	entry, err := h.postingService.Post(c.Request.Context(), req)
	if err != nil {
		h.respondPostingError(c, logger, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToJournalEntryResponse(entry))
}

func (h *entryHandler) reverseEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	entryID := c.Param("entryID")

	entry, err := h.postingService.ReverseEntry(c.Request.Context(), entryID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Entry not found"})
			return
		}
		if errors.Is(err, apperrors.ErrConflict) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		h.respondPostingError(c, logger, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToJournalEntryResponse(entry))
}

func (h *entryHandler) getEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	entryID := c.Param("entryID")

	entry, err := h.postingService.GetEntryByID(c.Request.Context(), entryID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Entry not found"})
			return
		}
		logger.Error("Failed to get entry", slog.String("error", err.Error()), slog.String("entry_id", entryID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve entry"})
		return
	}

	c.JSON(http.StatusOK, dto.ToJournalEntryResponse(entry))
}

func (h *entryHandler) listEntries(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var params dto.ListEntriesParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters"})
		return
	}

	entries, err := h.postingService.ListEntries(c.Request.Context(), params.Limit, params.Offset)
	if err != nil {
		logger.Error("Failed to list entries", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list entries"})
		return
	}

	responses := make([]dto.JournalEntryResponse, len(entries))
	for i, entry := range entries {
		responses[i] = dto.ToJournalEntryResponse(&entry)
	}
	c.JSON(http.StatusOK, dto.ListEntriesResponse{Entries: responses})
}

func (h *entryHandler) listLinesByAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	accountID := c.Param("accountID")

	var params dto.ListEntriesParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters"})
		return
	}

	lines, err := h.postingService.ListLinesByAccount(c.Request.Context(), accountID, params.Limit, params.Offset)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Account not found"})
			return
		}
		logger.Error("Failed to list lines for account", slog.String("error", err.Error()), slog.String("account_id", accountID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list lines"})
		return
	}

	c.JSON(http.StatusOK, dto.ListLinesResponse{Lines: dto.ToJournalLineResponses(lines)})
}

// respondPostingError maps posting engine failures onto HTTP statuses. The
// typed validation errors carry structured detail worth echoing back.
func (h *entryHandler) respondPostingError(c *gin.Context, logger *slog.Logger, err error) {
	var unknownAccErr *apperrors.UnknownAccountError
	if errors.As(err, &unknownAccErr) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":        unknownAccErr.Error(),
			"missingCodes": unknownAccErr.MissingCodes,
		})
		return
	}

	var unbalancedErr *apperrors.UnbalancedEntryError
	if errors.As(err, &unbalancedErr) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":       unbalancedErr.Error(),
			"totalDebit":  unbalancedErr.TotalDebit,
			"totalCredit": unbalancedErr.TotalCredit,
		})
		return
	}

	if errors.Is(err, apperrors.ErrValidation) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if errors.Is(err, apperrors.ErrPostingFailed) {
		logger.Error("Posting failed", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Posting failed, no changes were applied"})
		return
	}

	if errors.Is(err, apperrors.ErrInconsistentState) {
		logger.Error("Inconsistent state after posting", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	logger.Error("Unexpected posting error", slog.String("error", err.Error()))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to post entry"})
}
