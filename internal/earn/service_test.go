package earn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockWalletDB struct {
	mock.Mock
}

func (m *MockWalletDB) CreditBonus(userID string, amount, ceiling int64, earnType, title, message string) (int64, error) {
	args := m.Called(userID, amount, ceiling, earnType, title, message)
	return args.Get(0).(int64), args.Error(1)
}

func TestEarnAmountsPerAction(t *testing.T) {
	cases := []struct {
		action string
		amount int64
	}{
		{"ad", 10},
		{"survey", 25},
		{"referral", 50},
	}

	for _, tc := range cases {
		t.Run(tc.action, func(t *testing.T) {
			walletDB := &MockWalletDB{}
			walletDB.On("CreditBonus", "user-1", tc.amount, int64(500), tc.action,
				mock.AnythingOfType("string"), mock.AnythingOfType("string")).
				Return(tc.amount, nil)

			svc := NewEarnService(walletDB, 500)
			result, err := svc.Earn("user-1", tc.action)
			require.NoError(t, err)
			assert.Equal(t, tc.amount, result.Requested)
			assert.Equal(t, tc.amount, result.Credited)
			walletDB.AssertExpectations(t)
		})
	}
}

func TestEarnReportsClampedCredit(t *testing.T) {
	walletDB := &MockWalletDB{}
	walletDB.On("CreditBonus", "user-1", int64(50), int64(500), "referral",
		mock.AnythingOfType("string"), mock.AnythingOfType("string")).
		Return(int64(20), nil)

	svc := NewEarnService(walletDB, 500)
	result, err := svc.Earn("user-1", "referral")
	require.NoError(t, err)
	assert.EqualValues(t, 50, result.Requested)
	assert.EqualValues(t, 20, result.Credited)
}

func TestEarnUnknownAction(t *testing.T) {
	svc := NewEarnService(&MockWalletDB{}, 500)
	_, err := svc.Earn("user-1", "lottery")
	assert.ErrorIs(t, err, ErrUnknownAction)
}
