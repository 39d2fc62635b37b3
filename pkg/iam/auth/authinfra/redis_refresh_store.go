package authinfra

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/Abraxas-365/authcore/pkg/errx"
	"github.com/Abraxas-365/authcore/pkg/iam/auth"
	"github.com/Abraxas-365/authcore/pkg/kernel"
	"github.com/redis/go-redis/v9"
)

const refreshKeyPrefix = "auth:refresh:"

// RedisRefreshStore keeps refresh tokens in Redis under the SHA-256 of the
// token, so a dump of the keyspace does not reveal usable tokens.
type RedisRefreshStore struct {
	client redis.UniversalClient
}

func NewRedisRefreshStore(client redis.UniversalClient) *RedisRefreshStore {
	return &RedisRefreshStore{client: client}
}

var _ auth.RefreshTokenStore = (*RedisRefreshStore)(nil)

func (s *RedisRefreshStore) Save(ctx context.Context, token string, accountID kernel.AccountID, ttl time.Duration) error {
	if err := s.client.Set(ctx, refreshKey(token), accountID.String(), ttl).Err(); err != nil {
		return errx.Wrap(err, "failed to save refresh token", errx.TypeInternal)
	}
	return nil
}

// Consume uses GETDEL so two concurrent refreshes cannot both succeed.
func (s *RedisRefreshStore) Consume(ctx context.Context, token string) (kernel.AccountID, error) {
	id, err := s.client.GetDel(ctx, refreshKey(token)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", auth.ErrInvalidRefreshToken()
		}
		return "", errx.Wrap(err, "failed to consume refresh token", errx.TypeInternal)
	}
	return kernel.AccountID(id), nil
}

func (s *RedisRefreshStore) Delete(ctx context.Context, token string) error {
	if err := s.client.Del(ctx, refreshKey(token)).Err(); err != nil {
		return errx.Wrap(err, "failed to delete refresh token", errx.TypeInternal)
	}
	return nil
}

func refreshKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return refreshKeyPrefix + hex.EncodeToString(sum[:])
}
