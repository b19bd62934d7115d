package auth

import (
	"context"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

// OTPStore holds one-time passwords keyed by phone number. Codes expire
// after a TTL and are consumed on first successful verification.
type OTPStore interface {
	Put(ctx context.Context, phone, otp string) error
	// Verify reports whether otp matches the stored code for phone. The
	// stored code is consumed by the first verification attempt, matching
	// or not.
	Verify(ctx context.Context, phone, otp string) (bool, error)
}

const otpKeyPrefix = "otp:"

// RedisOTPStore keeps codes in Redis so login survives process restarts and
// works across instances.
type RedisOTPStore struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewRedisOTPStore(client *redis.Client, ttl time.Duration) *RedisOTPStore {
	return &RedisOTPStore{Client: client, TTL: ttl}
}

func (s *RedisOTPStore) Put(ctx context.Context, phone, otp string) error {
	return s.Client.Set(ctx, otpKeyPrefix+phone, otp, s.TTL).Err()
}

func (s *RedisOTPStore) Verify(ctx context.Context, phone, otp string) (bool, error) {
	// GETDEL makes consumption atomic: two concurrent attempts cannot both
	// see the code.
	val, err := s.Client.GetDel(ctx, otpKeyPrefix+phone).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return val == otp, nil
}

// MemoryOTPStore is the single-process fallback used in tests and local dev.
type MemoryOTPStore struct {
	TTL time.Duration

	mu    sync.Mutex
	codes map[string]memoryOTP
}

type memoryOTP struct {
	otp       string
	expiresAt time.Time
}

func NewMemoryOTPStore(ttl time.Duration) *MemoryOTPStore {
	return &MemoryOTPStore{TTL: ttl, codes: make(map[string]memoryOTP)}
}

func (s *MemoryOTPStore) Put(_ context.Context, phone, otp string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.codes[phone] = memoryOTP{otp: otp, expiresAt: time.Now().Add(s.TTL)}
	return nil
}

func (s *MemoryOTPStore) Verify(_ context.Context, phone, otp string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.codes[phone]
	if !ok {
		return false, nil
	}
	delete(s.codes, phone)
	if time.Now().After(stored.expiresAt) {
		return false, nil
	}
	return stored.otp == otp, nil
}
