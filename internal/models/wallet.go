package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Wallet struct {
	bun.BaseModel `bun:"table:wallets"`

	ID             string    `bun:"id,pk" json:"id"`
	UserID         string    `bun:"user_id,notnull,unique" json:"user_id"`
	CurrentBalance int64     `bun:"current_balance,notnull" json:"current_balance"`
	MonthlyCredit  int64     `bun:"monthly_credit,notnull" json:"monthly_credit"`
	Spent          int64     `bun:"spent,notnull" json:"spent"`
	BonusEarned    int64     `bun:"bonus_earned,notnull" json:"bonus_earned"`
	RefillDate     time.Time `bun:"refill_date,nullzero" json:"refill_date"`
	CreatedAt      time.Time `bun:"created_at,notnull" json:"created_at"`
}

// WalletSummary is the balance payload returned to clients, with the refill
// countdown precomputed.
type WalletSummary struct {
	CurrentBalance  int64     `json:"currentBalance"`
	MonthlyCredit   int64     `json:"monthlyCredit"`
	Spent           int64     `json:"spent"`
	BonusEarned     int64     `json:"bonusEarned"`
	RefillDate      time.Time `json:"refillDate"`
	DaysUntilRefill int       `json:"daysUntilRefill"`
}
