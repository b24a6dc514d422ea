package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"financial-mirror/internal/models"

	"github.com/redis/go-redis/v9"
)

const (
	accountKeyPrefix = "account_email:"
	inviteKeyPrefix  = "signup_invite:"
)

// RedisService caches email to account resolutions and throttles signup invites.
type RedisService struct {
	client     *redis.Client
	accountTTL time.Duration
}

// NewRedisService wraps an already connected client.
func NewRedisService(client *redis.Client, accountTTL time.Duration) *RedisService {
	return &RedisService{client: client, accountTTL: accountTTL}
}

// GetAccountID returns the cached account id for an email.
func (r *RedisService) GetAccountID(ctx context.Context, email string) (string, bool, error) {
	id, err := r.client.Get(ctx, accountKey(email)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to read account cache: %w", err)
	}
	return id, true, nil
}

// SetAccountID stores a positive resolution. Misses are never cached, so a
// buyer who signs up later is found on the next delivery.
func (r *RedisService) SetAccountID(ctx context.Context, email, accountID string) error {
	if err := r.client.Set(ctx, accountKey(email), accountID, r.accountTTL).Err(); err != nil {
		return fmt.Errorf("failed to write account cache: %w", err)
	}
	return nil
}

// AcquireInviteSlot reports whether an invite may be sent to email now.
// The first caller within cooldown wins.
func (r *RedisService) AcquireInviteSlot(ctx context.Context, email string, cooldown time.Duration) (bool, error) {
	ok, err := r.client.SetNX(ctx, inviteKeyPrefix+models.NormalizeEmail(email), time.Now().Unix(), cooldown).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire invite slot: %w", err)
	}
	return ok, nil
}

// ReleaseInviteSlot frees the slot taken for email so a later delivery may
// retry the invite.
func (r *RedisService) ReleaseInviteSlot(ctx context.Context, email string) error {
	if err := r.client.Del(ctx, inviteKeyPrefix+models.NormalizeEmail(email)).Err(); err != nil {
		return fmt.Errorf("failed to release invite slot: %w", err)
	}
	return nil
}

func accountKey(email string) string {
	return accountKeyPrefix + models.NormalizeEmail(email)
}
