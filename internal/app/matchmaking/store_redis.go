package matchmaking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/chess-vn/chessd/internal/domains/entities"
	"github.com/chess-vn/chessd/pkg/logging"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisStore keeps each invitation under its own key with a TTL and indexes expiry times in a sorted set.
type RedisStore struct {
	rdb    *redis.Client
	prefix string
}

func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb, prefix: "chessd:inv:"}
}

func (s *RedisStore) key(code string) string { return s.prefix + code }
func (s *RedisStore) keyExpiry() string      { return s.prefix + "expiry" }

func (s *RedisStore) Add(ctx context.Context, inv entities.Invitation) error {
	raw, err := json.Marshal(inv)
	if err != nil {
		return err
	}
	ttl := inv.ExpiresAt.Sub(inv.CreatedAt)
	if ttl <= 0 {
		ttl = time.Second
	}
	ok, err := s.rdb.SetNX(ctx, s.key(inv.Code), raw, ttl).Result()
	if err != nil {
		return fmt.Errorf("failed to store invitation: %w", err)
	}
	if !ok {
		return errCodeInUse
	}
	return s.rdb.ZAdd(ctx, s.keyExpiry(), redis.Z{
		Score:  float64(inv.ExpiresAt.UnixMilli()),
		Member: inv.Code,
	}).Err()
}

func (s *RedisStore) Get(ctx context.Context, code string) (entities.Invitation, error) {
	raw, err := s.rdb.Get(ctx, s.key(code)).Bytes()
	return s.decode(raw, err)
}

func (s *RedisStore) Take(ctx context.Context, code string) (entities.Invitation, error) {
	raw, err := s.rdb.GetDel(ctx, s.key(code)).Bytes()
	inv, err := s.decode(raw, err)
	if err != nil {
		return inv, err
	}
	_ = s.rdb.ZRem(ctx, s.keyExpiry(), code).Err()
	return inv, nil
}

func (s *RedisStore) Delete(ctx context.Context, code string) error {
	pipe := s.rdb.TxPipeline()
	pipe.Del(ctx, s.key(code))
	pipe.ZRem(ctx, s.keyExpiry(), code)
	_, err := pipe.Exec(ctx)
	return err
}

func (s *RedisStore) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	codes, err := s.rdb.ZRangeByScore(ctx, s.keyExpiry(), &redis.ZRangeBy{
		Min: "-inf",
		Max: strconv.FormatInt(now.UnixMilli(), 10),
	}).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to scan invitation expiry index: %w", err)
	}
	removed := 0
	var errs []error
	for _, code := range codes {
		if err := s.Delete(ctx, code); err != nil {
			logging.Error("failed to delete expired invitation", zap.String("code", code), zap.Error(err))
			errs = append(errs, fmt.Errorf("invitation %s: %w", code, err))
			continue
		}
		removed++
	}
	return removed, errors.Join(errs...)
}

func (s *RedisStore) decode(raw []byte, err error) (entities.Invitation, error) {
	if errors.Is(err, redis.Nil) {
		return entities.Invitation{}, ErrInvitationNotFound
	}
	if err != nil {
		return entities.Invitation{}, err
	}
	var inv entities.Invitation
	if err := json.Unmarshal(raw, &inv); err != nil {
		return entities.Invitation{}, fmt.Errorf("failed to decode invitation: %w", err)
	}
	return inv, nil
}
