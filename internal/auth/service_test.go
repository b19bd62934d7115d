package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	authdb "grosave/internal/auth/db"
	"grosave/internal/models"
)

type MockUserDB struct {
	mock.Mock
}

func (m *MockUserDB) GetUserByPhone(phone string) (*models.User, error) {
	args := m.Called(phone)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserDB) GetUserByID(id string) (*models.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserDB) CreateUserWithWallet(phone string, allocation int64) (*models.User, error) {
	args := m.Called(phone, allocation)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserDB) UpdateProfile(userID string, upd models.ProfileUpdate, verify bool) (*models.User, error) {
	args := m.Called(userID, upd, verify)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func newTestAuthService(userDB *MockUserDB) *Service {
	tokens := NewTokenIssuer("test-secret", time.Hour)
	return NewService(userDB, NewMemoryOTPStore(5*time.Minute), tokens, 4000)
}

func TestVerifyOTPFirstLoginCreatesUserAndWallet(t *testing.T) {
	userDB := &MockUserDB{}
	svc := newTestAuthService(userDB)
	ctx := context.Background()

	otp, err := svc.SendOTP(ctx, "9999900001")
	require.NoError(t, err)
	require.Regexp(t, `^\d{6}$`, otp)

	created := &models.User{ID: "user-1", Phone: "9999900001"}
	userDB.On("GetUserByPhone", "9999900001").Return(nil, authdb.ErrUserNotFound)
	userDB.On("CreateUserWithWallet", "9999900001", int64(4000)).Return(created, nil)

	token, user, err := svc.VerifyOTPAndLogin(ctx, "9999900001", otp)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, "user-1", user.ID)
	userDB.AssertExpectations(t)
}

func TestVerifyOTPExistingUserSkipsCreation(t *testing.T) {
	userDB := &MockUserDB{}
	svc := newTestAuthService(userDB)
	ctx := context.Background()

	otp, err := svc.SendOTP(ctx, "9999900001")
	require.NoError(t, err)

	existing := &models.User{ID: "user-1", Phone: "9999900001"}
	userDB.On("GetUserByPhone", "9999900001").Return(existing, nil)

	_, user, err := svc.VerifyOTPAndLogin(ctx, "9999900001", otp)
	require.NoError(t, err)
	assert.Equal(t, "user-1", user.ID)
	userDB.AssertNotCalled(t, "CreateUserWithWallet", mock.Anything, mock.Anything)
}

func TestVerifyOTPWrongCode(t *testing.T) {
	userDB := &MockUserDB{}
	svc := newTestAuthService(userDB)
	ctx := context.Background()

	_, err := svc.SendOTP(ctx, "9999900001")
	require.NoError(t, err)

	_, _, err = svc.VerifyOTPAndLogin(ctx, "9999900001", "000000")
	assert.ErrorIs(t, err, ErrInvalidOTP)
}

func TestVerifyOTPCannotBeReplayed(t *testing.T) {
	userDB := &MockUserDB{}
	svc := newTestAuthService(userDB)
	ctx := context.Background()

	otp, err := svc.SendOTP(ctx, "9999900001")
	require.NoError(t, err)

	existing := &models.User{ID: "user-1", Phone: "9999900001"}
	userDB.On("GetUserByPhone", "9999900001").Return(existing, nil)

	_, _, err = svc.VerifyOTPAndLogin(ctx, "9999900001", otp)
	require.NoError(t, err)

	_, _, err = svc.VerifyOTPAndLogin(ctx, "9999900001", otp)
	assert.ErrorIs(t, err, ErrInvalidOTP)
}
