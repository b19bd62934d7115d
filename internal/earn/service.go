package earn

import (
	"errors"
	"fmt"
)

// Bonus amounts per earn action.
const (
	AdReward       = 10
	SurveyReward   = 25
	ReferralReward = 50
)

var ErrUnknownAction = errors.New("unknown earn action")

type WalletDB interface {
	CreditBonus(userID string, amount, ceiling int64, earnType, title, message string) (int64, error)
}

type EarnService struct {
	Wallet       WalletDB
	MonthlyBonus int64
}

func NewEarnService(walletDB WalletDB, monthlyBonus int64) *EarnService {
	return &EarnService{Wallet: walletDB, MonthlyBonus: monthlyBonus}
}

type Result struct {
	Action    string `json:"action"`
	Requested int64  `json:"requested"`
	Credited  int64  `json:"credited"`
}

// Earn credits the reward for an action, clamped to the monthly bonus
// ceiling. Hitting the ceiling is not an error; the caller sees how much
// actually landed.
func (s *EarnService) Earn(userID, action string) (*Result, error) {
	var amount int64
	var title string
	switch action {
	case "ad":
		amount, title = AdReward, "Ad reward"
	case "survey":
		amount, title = SurveyReward, "Survey reward"
	case "referral":
		amount, title = ReferralReward, "Referral reward"
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownAction, action)
	}

	message := fmt.Sprintf("You earned %d GroCoins", amount)
	credited, err := s.Wallet.CreditBonus(userID, amount, s.MonthlyBonus, action, title, message)
	if err != nil {
		return nil, err
	}

	return &Result{Action: action, Requested: amount, Credited: credited}, nil
}
