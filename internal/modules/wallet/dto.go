package wallet

import (
	"time"

	"github.com/shopspring/decimal"

	"parkly/internal/domain"
)

type AmountRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description" binding:"max=255"`
}

type ListTransactionsQuery struct {
	Type    string `form:"type" binding:"omitempty,oneof=deposit payment refund withdrawal"`
	Page    int    `form:"page" binding:"omitempty,min=1"`
	PerPage int    `form:"per_page" binding:"omitempty,min=1,max=100"`
}

type WalletResponse struct {
	ID       int64               `json:"id"`
	Balance  string              `json:"balance"`
	Currency string              `json:"currency"`
	Status   domain.WalletStatus `json:"status"`
}

type TransactionResponse struct {
	ID            int64                  `json:"id"`
	BookingID     *int64                 `json:"booking_id,omitempty"`
	Type          domain.TransactionType `json:"type"`
	Amount        string                 `json:"amount"`
	BalanceBefore string                 `json:"balance_before"`
	BalanceAfter  string                 `json:"balance_after"`
	Description   string                 `json:"description"`
	CreatedAt     time.Time              `json:"created_at"`
}

type Pagination struct {
	Total       int64 `json:"total"`
	PerPage     int   `json:"per_page"`
	CurrentPage int   `json:"current_page"`
	LastPage    int   `json:"last_page"`
}

type TransactionPage struct {
	Transactions []TransactionResponse `json:"transactions"`
	Pagination   Pagination            `json:"pagination"`
}

func ToWalletResponse(w *domain.Wallet) WalletResponse {
	return WalletResponse{
		ID:       w.ID,
		Balance:  w.Balance.StringFixed(2),
		Currency: w.Currency,
		Status:   w.Status,
	}
}

func ToTransactionResponse(t *domain.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:            t.ID,
		BookingID:     t.BookingID,
		Type:          t.Type,
		Amount:        t.Amount.StringFixed(2),
		BalanceBefore: t.BalanceBefore.StringFixed(2),
		BalanceAfter:  t.BalanceAfter.StringFixed(2),
		Description:   t.Description,
		CreatedAt:     t.CreatedAt,
	}
}
