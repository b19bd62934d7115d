package db

import "errors"

// Reservation failure modes, each mapped to a distinct HTTP status by the
// API layer.
var (
	ErrProductNotFound      = errors.New("product not found")
	ErrInsufficientStock    = errors.New("insufficient stock")
	ErrWalletNotFound       = errors.New("wallet not found")
	ErrInsufficientBalance  = errors.New("insufficient balance")
	ErrSlotCapacityExceeded = errors.New("slot capacity exceeded")
	ErrOrderNotFound        = errors.New("order not found")
	ErrInvalidState         = errors.New("invalid order state")
)
