package auth

import (
	"context"
	"errors"
	"fmt"

	authdb "grosave/internal/auth/db"
	"grosave/internal/models"
	"grosave/internal/utils"
)

// ErrInvalidOTP is returned when the submitted code is wrong, expired, or
// already consumed.
var ErrInvalidOTP = errors.New("invalid or expired OTP")

type UserDBLayer interface {
	GetUserByPhone(phone string) (*models.User, error)
	GetUserByID(id string) (*models.User, error)
	CreateUserWithWallet(phone string, allocation int64) (*models.User, error)
	UpdateProfile(userID string, upd models.ProfileUpdate, verify bool) (*models.User, error)
}

// Service runs the phone-OTP login flow: issue a code, verify it, and mint a
// session token. First-time logins create the user and seed their wallet.
type Service struct {
	DB                UserDBLayer
	OTP               OTPStore
	Tokens            *TokenIssuer
	MonthlyAllocation int64
}

func NewService(db UserDBLayer, otp OTPStore, tokens *TokenIssuer, monthlyAllocation int64) *Service {
	return &Service{DB: db, OTP: otp, Tokens: tokens, MonthlyAllocation: monthlyAllocation}
}

// SendOTP generates and stores a one-time code for the phone number. The
// code is returned so the demo flow can surface it without an SMS gateway.
func (s *Service) SendOTP(ctx context.Context, phone string) (string, error) {
	otp := utils.GenerateOTP()
	if err := s.OTP.Put(ctx, phone, otp); err != nil {
		return "", fmt.Errorf("store otp: %w", err)
	}
	return otp, nil
}

// VerifyOTPAndLogin consumes the code and returns a session token, creating
// the user and wallet on first login.
func (s *Service) VerifyOTPAndLogin(ctx context.Context, phone, otp string) (string, *models.User, error) {
	ok, err := s.OTP.Verify(ctx, phone, otp)
	if err != nil {
		return "", nil, fmt.Errorf("verify otp: %w", err)
	}
	if !ok {
		return "", nil, ErrInvalidOTP
	}

	user, err := s.DB.GetUserByPhone(phone)
	if errors.Is(err, authdb.ErrUserNotFound) {
		user, err = s.DB.CreateUserWithWallet(phone, s.MonthlyAllocation)
	}
	if err != nil {
		return "", nil, fmt.Errorf("load user: %w", err)
	}

	token, err := s.Tokens.Issue(user.ID, user.Phone)
	if err != nil {
		return "", nil, fmt.Errorf("sign token: %w", err)
	}
	return token, user, nil
}

func (s *Service) Profile(userID string) (*models.User, error) {
	return s.DB.GetUserByID(userID)
}

func (s *Service) UpdateProfile(userID string, upd models.ProfileUpdate) (*models.User, error) {
	return s.DB.UpdateProfile(userID, upd, false)
}

// Register completes the profile and marks the user verified and approved.
func (s *Service) Register(userID string, upd models.ProfileUpdate) (*models.User, error) {
	return s.DB.UpdateProfile(userID, upd, true)
}
