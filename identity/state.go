package identity

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	stateAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	stateLength   = 32
)

// StateStore keeps anti-forgery state tokens between the login page and the
// provider callback. Consume succeeds at most once per issued state.
type StateStore interface {
	Issue(ctx context.Context) (string, error)
	Consume(ctx context.Context, state string) (bool, error)
}

// GenerateState returns a random 32 character token of upper-case letters
// and digits.
func GenerateState() (string, error) {
	buf := make([]byte, stateLength)
	limit := big.NewInt(int64(len(stateAlphabet)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", fmt.Errorf("generate state: %w", err)
		}
		buf[i] = stateAlphabet[n.Int64()]
	}
	return string(buf), nil
}

type MemoryStateStore struct {
	mu     sync.Mutex
	ttl    time.Duration
	states map[string]time.Time
	now    func() time.Time
}

func NewMemoryStateStore(ttl time.Duration) *MemoryStateStore {
	return &MemoryStateStore{
		ttl:    ttl,
		states: make(map[string]time.Time),
		now:    time.Now,
	}
}

func (s *MemoryStateStore) Issue(_ context.Context) (string, error) {
	state, err := GenerateState()
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for k, exp := range s.states {
		if now.After(exp) {
			delete(s.states, k)
		}
	}
	s.states[state] = now.Add(s.ttl)
	return state, nil
}

func (s *MemoryStateStore) Consume(_ context.Context, state string) (bool, error) {
	if state == "" {
		return false, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	exp, ok := s.states[state]
	if !ok {
		return false, nil
	}
	delete(s.states, state)
	return !s.now().After(exp), nil
}

type RedisStateStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStateStore(redisURL string, ttl time.Duration) (*RedisStateStore, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return &RedisStateStore{client: redis.NewClient(opt), ttl: ttl}, nil
}

func (s *RedisStateStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStateStore) Issue(ctx context.Context) (string, error) {
	state, err := GenerateState()
	if err != nil {
		return "", err
	}
	if err := s.client.Set(ctx, stateKey(state), 1, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("store state: %w", err)
	}
	return state, nil
}

// Consume deletes the key; only the caller that removed it wins.
func (s *RedisStateStore) Consume(ctx context.Context, state string) (bool, error) {
	if state == "" {
		return false, nil
	}
	n, err := s.client.Del(ctx, stateKey(state)).Result()
	if err != nil {
		return false, fmt.Errorf("consume state: %w", err)
	}
	return n == 1, nil
}

func (s *RedisStateStore) Close() error {
	return s.client.Close()
}

func stateKey(state string) string {
	return "login_state:" + state
}
