package wallet

import (
	"grosave/internal/models"
	"grosave/internal/utils"
	walletdb "grosave/internal/wallet/db"
)

type DBLayer interface {
	GetWalletByUserID(userID string) (*models.Wallet, error)
	ListTransactions(userID string, limit, offset int) ([]models.Transaction, int, error)
	RefillIfDue(userID string) (*models.Wallet, error)
}

var ErrWalletNotFound = walletdb.ErrWalletNotFound

type WalletService struct {
	DB DBLayer
}

func NewWalletService(dbLayer DBLayer) *WalletService {
	return &WalletService{DB: dbLayer}
}

// Balance returns the wallet summary, applying any due monthly refill first.
func (s *WalletService) Balance(userID string) (*models.WalletSummary, error) {
	wallet, err := s.DB.RefillIfDue(userID)
	if err != nil {
		return nil, err
	}

	return &models.WalletSummary{
		CurrentBalance:  wallet.CurrentBalance,
		MonthlyCredit:   wallet.MonthlyCredit,
		Spent:           wallet.Spent,
		BonusEarned:     wallet.BonusEarned,
		RefillDate:      wallet.RefillDate,
		DaysUntilRefill: utils.DaysUntil(wallet.RefillDate),
	}, nil
}

type TransactionPage struct {
	Transactions []models.Transaction `json:"transactions"`
	Total        int                  `json:"total"`
	Page         int                  `json:"page"`
	PageSize     int                  `json:"pageSize"`
}

func (s *WalletService) Transactions(userID string, page, pageSize int) (*TransactionPage, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	txns, total, err := s.DB.ListTransactions(userID, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, err
	}

	return &TransactionPage{
		Transactions: txns,
		Total:        total,
		Page:         page,
		PageSize:     pageSize,
	}, nil
}
