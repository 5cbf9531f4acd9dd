package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/layer-3/tipgate/core"
	"github.com/layer-3/tipgate/ports"
	"github.com/redis/go-redis/v9"
)

// RedisStore is a Redis implementation of the Store interface. Account and
// page creation rely on SETNX, so concurrent creators are serialised by
// Redis rather than by this process.
type RedisStore struct {
	client *redis.Client
	prefix string
	now    func() time.Time
}

var _ ports.Store = (*RedisStore)(nil)

// NewRedisStore creates a new Redis store
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{
		client: client,
		prefix: "tipgate:",
		now:    time.Now,
	}
}

func (s *RedisStore) accountKey(walletAddress string) string {
	return s.prefix + "account:" + walletAddress
}

func (s *RedisStore) pageKey(pageWalletID string) string {
	return s.prefix + "page:" + pageWalletID
}

func (s *RedisStore) challengeKey(walletAddress string) string {
	return s.prefix + "challenge:" + walletAddress
}

// GetAccount reads an account from Redis
func (s *RedisStore) GetAccount(ctx context.Context, walletAddress string) (*core.Account, error) {
	var account core.Account
	if err := s.getJSON(ctx, s.accountKey(walletAddress), &account); err != nil {
		return nil, err
	}
	return &account, nil
}

// CreateAccountIfAbsent writes the account with SETNX
func (s *RedisStore) CreateAccountIfAbsent(ctx context.Context, account *core.Account) (bool, error) {
	return s.setNX(ctx, s.accountKey(account.WalletAddress), account)
}

// GetPage reads a page from Redis
func (s *RedisStore) GetPage(ctx context.Context, pageWalletID string) (*core.Page, error) {
	var page core.Page
	if err := s.getJSON(ctx, s.pageKey(pageWalletID), &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// PutPage stores or replaces a page
func (s *RedisStore) PutPage(ctx context.Context, page *core.Page) error {
	payload, err := json.Marshal(page)
	if err != nil {
		return fmt.Errorf("failed to marshal page: %w", err)
	}

	if err := s.client.Set(ctx, s.pageKey(page.PageWalletID), payload, 0).Err(); err != nil {
		return fmt.Errorf("failed to store page: %w", err)
	}
	return nil
}

// CreatePageIfAbsent writes the page with SETNX
func (s *RedisStore) CreatePageIfAbsent(ctx context.Context, page *core.Page) (bool, error) {
	return s.setNX(ctx, s.pageKey(page.PageWalletID), page)
}

// SaveChallenge stores the challenge until it expires
func (s *RedisStore) SaveChallenge(ctx context.Context, challenge *core.Challenge) error {
	ttl := challenge.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		return fmt.Errorf("challenge already expired")
	}

	payload, err := json.Marshal(challenge)
	if err != nil {
		return fmt.Errorf("failed to marshal challenge: %w", err)
	}

	if err := s.client.Set(ctx, s.challengeKey(challenge.Address), payload, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store challenge: %w", err)
	}
	return nil
}

// ConsumeChallenge removes the challenge with GETDEL and compares its message
func (s *RedisStore) ConsumeChallenge(ctx context.Context, walletAddress, message string) (bool, error) {
	payload, err := s.client.GetDel(ctx, s.challengeKey(walletAddress)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to consume challenge: %w", err)
	}

	var challenge core.Challenge
	if err := json.Unmarshal(payload, &challenge); err != nil {
		return false, fmt.Errorf("failed to decode challenge: %w", err)
	}

	return challenge.Message == message && s.now().Before(challenge.ExpiresAt), nil
}

// Close closes the Redis connection
func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) getJSON(ctx context.Context, key string, v any) error {
	payload, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return core.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", key, err)
	}

	if err := json.Unmarshal(payload, v); err != nil {
		return fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return nil
}

func (s *RedisStore) setNX(ctx context.Context, key string, v any) (bool, error) {
	payload, err := json.Marshal(v)
	if err != nil {
		return false, fmt.Errorf("failed to marshal %s: %w", key, err)
	}

	created, err := s.client.SetNX(ctx, key, payload, 0).Result()
	if err != nil {
		return false, fmt.Errorf("failed to create %s: %w", key, err)
	}
	return created, nil
}
