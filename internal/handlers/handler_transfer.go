package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/finvault/ledgersvc/internal/apperrors"
	portssvc "github.com/finvault/ledgersvc/internal/core/ports/services"
	"github.com/finvault/ledgersvc/internal/dto"
	"github.com/finvault/ledgersvc/internal/middleware"
	"github.com/gin-gonic/gin"
)

// transferHandler handles HTTP requests related to transfers.
type transferHandler struct {
	transferService portssvc.TransferSvcFacade
}

// newTransferHandler creates a new transferHandler.
func newTransferHandler(ts portssvc.TransferSvcFacade) *transferHandler {
	return &transferHandler{
		transferService: ts,
	}
}

// registerTransferRoutes registers routes related to transfers.
func registerTransferRoutes(rg *gin.RouterGroup, transferService portssvc.TransferSvcFacade) {
	h := newTransferHandler(transferService)

	transfers := rg.Group("/transfers")
	{
		transfers.POST("/validate", h.validateTransfer)
		transfers.POST("", h.processTransfer)
		transfers.GET("/:id", h.getTransaction)
		transfers.POST("/:id/reverse", h.reverseTransaction)
	}
}

// validateTransfer godoc
// @Summary Validate a proposed transfer
// @Description Runs all transfer validation rules without moving money. Returns every failed rule, the estimated fee and the current limit usage.
// @Tags transfers
// @Accept  json
// @Produce  json
// @Param   transfer body dto.TransferRequest true "Transfer details"
// @Success 200 {object} dto.ValidationResult
// @Failure 400 {object} map[string]string "Invalid request format"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to validate transfer"
// @Security BearerAuth
// @Router /transfers/validate [post]
func (h *transferHandler) validateTransfer(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for ValidateTransfer", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	result, err := h.transferService.ValidateTransfer(c.Request.Context(), req, userID)
	if err != nil {
		logger.Error("Failed to validate transfer", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to validate transfer"})
		return
	}

	c.JSON(http.StatusOK, result)
}

// processTransfer godoc
// @Summary Execute a transfer
// @Description Validates and executes a transfer between two accounts as one atomic operation. Supports an optional idempotency key for safe client retries.
// @Tags transfers
// @Accept  json
// @Produce  json
// @Param   transfer body dto.TransferRequest true "Transfer details"
// @Success 201 {object} dto.TransactionResponse
// @Failure 400 {object} map[string]string "Validation failed"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 422 {object} map[string]string "Insufficient funds"
// @Failure 500 {object} map[string]string "Failed to process transfer"
// @Security BearerAuth
// @Router /transfers [post]
func (h *transferHandler) processTransfer(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for ProcessTransfer", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	txn, err := h.transferService.ProcessTransfer(c.Request.Context(), req, userID)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrValidation):
			logger.Warn("Transfer rejected by validation", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrInsufficientFunds):
			logger.Warn("Transfer rejected for insufficient funds", slog.String("error", err.Error()))
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		default:
			logger.Error("Failed to process transfer", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process transfer"})
		}
		return
	}

	logger.Info("Transfer processed", slog.String("transaction_id", txn.TransactionID))
	c.JSON(http.StatusCreated, dto.ToTransactionResponse(txn))
}

// getTransaction godoc
// @Summary Get a transaction by ID
// @Description Retrieves details for a specific transaction
// @Tags transfers
// @Produce  json
// @Param   id path string true "Transaction ID"
// @Success 200 {object} dto.TransactionResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Transaction not found"
// @Failure 500 {object} map[string]string "Failed to retrieve transaction"
// @Security BearerAuth
// @Router /transfers/{id} [get]
func (h *transferHandler) getTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	transactionID := c.Param("id")

	if _, ok := middleware.GetUserIDFromContext(c); !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	txn, err := h.transferService.GetTransactionByID(c.Request.Context(), transactionID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Transaction not found"})
		} else {
			logger.Error("Failed to get transaction", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve transaction"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToTransactionResponse(txn))
}

// reverseTransaction godoc
// @Summary Reverse a completed transaction
// @Description Creates the inverse transaction and restores both balances, including the original fee. Admin only; each transaction can be reversed at most once.
// @Tags transfers
// @Accept  json
// @Produce  json
// @Param   id path string true "Transaction ID"
// @Param   reversal body dto.ReverseRequest true "Reversal reason"
// @Success 201 {object} dto.TransactionResponse
// @Failure 400 {object} map[string]string "Invalid request format"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden (admin role required)"
// @Failure 404 {object} map[string]string "Transaction not found"
// @Failure 409 {object} map[string]string "Transaction not reversible or already reversed"
// @Failure 500 {object} map[string]string "Failed to reverse transaction"
// @Security BearerAuth
// @Router /transfers/{id}/reverse [post]
func (h *transferHandler) reverseTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	transactionID := c.Param("id")

	var req dto.ReverseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for ReverseTransaction", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	logger = logger.With(slog.String("target_transaction_id", transactionID))

	reversal, err := h.transferService.ReverseTransaction(c.Request.Context(), transactionID, req.Reason, userID)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrForbidden):
			logger.Warn("Reversal forbidden", slog.String("error", err.Error()))
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Transaction not found"})
		case errors.Is(err, apperrors.ErrNotReversible), errors.Is(err, apperrors.ErrAlreadyReversed):
			logger.Warn("Reversal rejected", slog.String("error", err.Error()))
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrInsufficientFunds):
			logger.Warn("Reversal rejected for insufficient funds", slog.String("error", err.Error()))
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		default:
			logger.Error("Failed to reverse transaction", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reverse transaction"})
		}
		return
	}

	logger.Info("Transaction reversed", slog.String("reversal_transaction_id", reversal.TransactionID))
	c.JSON(http.StatusCreated, dto.ToTransactionResponse(reversal))
}
