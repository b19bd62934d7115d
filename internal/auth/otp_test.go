package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryOTPVerifyConsumesCode(t *testing.T) {
	store := NewMemoryOTPStore(5 * time.Minute)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "9999900001", "123456"))

	ok, err := store.Verify(ctx, "9999900001", "123456")
	require.NoError(t, err)
	assert.True(t, ok)

	// Single use: the same code fails the second time.
	ok, err = store.Verify(ctx, "9999900001", "123456")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryOTPWrongCode(t *testing.T) {
	store := NewMemoryOTPStore(5 * time.Minute)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "9999900001", "123456"))

	ok, err := store.Verify(ctx, "9999900001", "654321")
	require.NoError(t, err)
	assert.False(t, ok)

	// Any attempt consumes the code, so the right one no longer works.
	ok, err = store.Verify(ctx, "9999900001", "123456")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryOTPExpiry(t *testing.T) {
	store := NewMemoryOTPStore(10 * time.Millisecond)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "9999900001", "123456"))
	time.Sleep(20 * time.Millisecond)

	ok, err := store.Verify(ctx, "9999900001", "123456")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryOTPNewCodeReplacesOld(t *testing.T) {
	store := NewMemoryOTPStore(5 * time.Minute)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "9999900001", "111111"))
	require.NoError(t, store.Put(ctx, "9999900001", "222222"))

	ok, err := store.Verify(ctx, "9999900001", "111111")
	require.NoError(t, err)
	assert.False(t, ok)
}
