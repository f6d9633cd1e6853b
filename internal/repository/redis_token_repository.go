package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"seungpyo.lee/BlogBoard/internal/domain"
	"seungpyo.lee/BlogBoard/internal/util"
)

// redisTokenRepository keeps refresh tokens in redis. Each token lives under
// its own key whose TTL equals the token lifetime, and a per-user set indexes
// the token hashes so all of a user's tokens can be revoked at once.
type redisTokenRepository struct {
	client *redis.Client
	now    func() time.Time
}

type redisTokenRecord struct {
	UserID    uint      `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// NewRedisTokenRepository creates a redis-backed refresh token store.
func NewRedisTokenRepository(client *redis.Client, now func() time.Time) domain.TokenRepository {
	if now == nil {
		now = time.Now
	}
	return &redisTokenRepository{client: client, now: now}
}

func (r *redisTokenRepository) Create(ctx context.Context, token string, userID uint, expiresAt time.Time) error {
	now := r.now()
	ttl := expiresAt.Sub(now)
	if ttl <= 0 {
		return nil // already expired
	}
	hash := util.HashToken(token)
	payload, err := json.Marshal(redisTokenRecord{UserID: userID, ExpiresAt: expiresAt.UTC(), CreatedAt: now.UTC()})
	if err != nil {
		return fmt.Errorf("failed to encode refresh token: %w", err)
	}
	var stored *redis.BoolCmd
	var indexed *redis.IntCmd
	_, _ = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		stored = pipe.SetNX(ctx, r.tokenKey(hash), payload, ttl)
		indexed = pipe.SAdd(ctx, r.userKey(userID), hash)
		return nil
	})
	if err := stored.Err(); err != nil {
		return fmt.Errorf("failed to store refresh token: %w", err)
	}
	if !stored.Val() {
		return fmt.Errorf("refresh token %w", domain.ErrConflict)
	}
	if err := indexed.Err(); err != nil {
		// EXEC does not roll back; an unindexed token would escape DeleteByUserID.
		if delErr := r.client.Del(ctx, r.tokenKey(hash)).Err(); delErr != nil {
			return fmt.Errorf("failed to index refresh token: %w (cleanup: %v)", err, delErr)
		}
		return fmt.Errorf("failed to index refresh token: %w", err)
	}
	return nil
}

func (r *redisTokenRepository) GetByToken(ctx context.Context, token string) (*domain.RefreshToken, error) {
	hash := util.HashToken(token)
	record, err := r.get(ctx, hash)
	if err != nil {
		return nil, err
	}
	return &domain.RefreshToken{
		TokenHash: hash,
		UserID:    record.UserID,
		ExpiresAt: record.ExpiresAt,
		CreatedAt: record.CreatedAt,
	}, nil
}

func (r *redisTokenRepository) get(ctx context.Context, hash string) (*redisTokenRecord, error) {
	raw, err := r.client.Get(ctx, r.tokenKey(hash)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("refresh token %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get refresh token: %w", err)
	}
	var record redisTokenRecord
	if err := json.Unmarshal(raw, &record); err != nil {
		return nil, fmt.Errorf("failed to decode refresh token: %w", err)
	}
	return &record, nil
}

func (r *redisTokenRepository) Delete(ctx context.Context, token string) error {
	hash := util.HashToken(token)
	record, err := r.get(ctx, hash)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		return err
	}
	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, r.tokenKey(hash))
		pipe.SRem(ctx, r.userKey(record.UserID), hash)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to delete refresh token: %w", err)
	}
	return nil
}

func (r *redisTokenRepository) DeleteByUserID(ctx context.Context, userID uint) error {
	hashes, err := r.client.SMembers(ctx, r.userKey(userID)).Result()
	if err != nil {
		return fmt.Errorf("failed to list refresh tokens: %w", err)
	}
	keys := make([]string, 0, len(hashes)+1)
	for _, hash := range hashes {
		keys = append(keys, r.tokenKey(hash))
	}
	keys = append(keys, r.userKey(userID))
	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to revoke refresh tokens: %w", err)
	}
	return nil
}

// DeleteExpired drops index entries whose token keys have already been
// expired by redis. It returns the number of entries removed.
func (r *redisTokenRepository) DeleteExpired(ctx context.Context, _ time.Time) (int64, error) {
	var removed int64
	iter := r.client.Scan(ctx, 0, "refresh:user:*", 100).Iterator()
	for iter.Next(ctx) {
		userKey := iter.Val()
		hashes, err := r.client.SMembers(ctx, userKey).Result()
		if err != nil {
			return removed, fmt.Errorf("failed to list refresh tokens: %w", err)
		}
		for _, hash := range hashes {
			exists, err := r.client.Exists(ctx, r.tokenKey(hash)).Result()
			if err != nil {
				return removed, fmt.Errorf("failed to check refresh token: %w", err)
			}
			if exists == 0 {
				if err := r.client.SRem(ctx, userKey, hash).Err(); err != nil {
					return removed, fmt.Errorf("failed to purge refresh token: %w", err)
				}
				removed++
			}
		}
	}
	if err := iter.Err(); err != nil {
		return removed, fmt.Errorf("failed to scan refresh tokens: %w", err)
	}
	return removed, nil
}

func (r *redisTokenRepository) tokenKey(hash string) string {
	return "refresh:token:" + hash
}

func (r *redisTokenRepository) userKey(userID uint) string {
	return "refresh:user:" + strconv.FormatUint(uint64(userID), 10)
}
