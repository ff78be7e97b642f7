package wallet

import "parkly/internal/pkg/errs"

var (
	ErrInvalidAmount     = errs.Define(errs.ErrValidation, "INVALID_AMOUNT", "amount must be positive with at most two decimals")
	ErrAmountTooLarge    = errs.Define(errs.ErrValidation, "AMOUNT_TOO_LARGE", "amount exceeds the per-operation limit")
	ErrInvalidEntryType  = errs.Define(errs.ErrValidation, "INVALID_ENTRY_TYPE", "transaction type does not match the operation")
	ErrWalletNotFound    = errs.Define(errs.ErrNotFound, "WALLET_NOT_FOUND", "wallet not found")
	ErrWalletInactive    = errs.Define(errs.ErrConflict, "WALLET_INACTIVE", "wallet is not active")
	ErrWalletExists      = errs.Define(errs.ErrConflict, "WALLET_EXISTS", "wallet already exists")
	ErrInsufficientFunds = errs.Define(errs.ErrInsufficientFunds, "INSUFFICIENT_FUNDS", "insufficient wallet balance")
	ErrTxnNotFound       = errs.Define(errs.ErrNotFound, "TRANSACTION_NOT_FOUND", "transaction not found")
)
