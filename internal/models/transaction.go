package models

import (
	"time"

	"github.com/uptrace/bun"
)

type TransactionType string

const (
	TxDebit  TransactionType = "debit"
	TxRefund TransactionType = "refund"
	TxBonus  TransactionType = "bonus"
	TxRefill TransactionType = "refill"
)

// Transaction is an append-only wallet ledger entry. BalanceAfter is a
// snapshot taken inside the mutating transaction, never recomputed.
type Transaction struct {
	bun.BaseModel `bun:"table:transactions"`

	ID             string          `bun:"id,pk" json:"id"`
	UserID         string          `bun:"user_id,notnull" json:"userId"`
	Type           TransactionType `bun:"type,notnull" json:"type"`
	Amount         int64           `bun:"amount,notnull" json:"amount"`
	Description    string          `bun:"description,nullzero" json:"description,omitempty"`
	RelatedOrderID string          `bun:"related_order_id,nullzero" json:"relatedOrderId,omitempty"`
	BalanceAfter   int64           `bun:"balance_after,notnull" json:"balanceAfter"`
	CreatedAt      time.Time       `bun:"created_at,notnull" json:"createdAt"`
}
