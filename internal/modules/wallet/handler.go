package wallet

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"parkly/internal/domain"
	"parkly/internal/middleware"
	"parkly/internal/pkg/response"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) GetMyWallet(c *gin.Context) {
	caller, ok := middleware.CallerFrom(c)
	if !ok {
		return
	}

	w, err := h.service.GetWallet(c.Request.Context(), caller.UserID)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"wallet": ToWalletResponse(w)})
}

func (h *Handler) Deposit(c *gin.Context) {
	h.move(c, h.service.Deposit)
}

func (h *Handler) Withdraw(c *gin.Context) {
	h.move(c, h.service.Withdraw)
}

type moveFunc func(ctx context.Context, userID int64, amount decimal.Decimal, description string) (*domain.Wallet, *domain.Transaction, error)

func (h *Handler) move(c *gin.Context, fn moveFunc) {
	caller, ok := middleware.CallerFrom(c)
	if !ok {
		return
	}

	var req AmountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	w, txn, err := fn(c.Request.Context(), caller.UserID, req.Amount, req.Description)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"wallet":      ToWalletResponse(w),
		"transaction": ToTransactionResponse(txn),
	})
}

func (h *Handler) ListMyTransactions(c *gin.Context) {
	caller, ok := middleware.CallerFrom(c)
	if !ok {
		return
	}

	var q ListTransactionsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid query parameters")
		return
	}

	page, err := h.service.ListTransactions(c.Request.Context(), caller.UserID, q)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, page)
}

func (h *Handler) GetMyTransaction(c *gin.Context) {
	caller, ok := middleware.CallerFrom(c)
	if !ok {
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid transaction ID")
		return
	}

	txn, err := h.service.GetTransaction(c.Request.Context(), caller.UserID, id)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"transaction": ToTransactionResponse(txn)})
}
