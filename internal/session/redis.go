package session

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultRedisPrefix = "repoctl:sessao:"

type redisCommander interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// RedisStorage guarda a sessão no Redis, útil quando vários terminais compartilham o login.
type RedisStorage struct {
	redis  redisCommander
	prefix string
}

// NewRedisStorage usa prefix como namespace; vazio aplica o padrão.
func NewRedisStorage(client redisCommander, prefix string) *RedisStorage {
	if prefix == "" {
		prefix = defaultRedisPrefix
	}
	return &RedisStorage{redis: client, prefix: prefix}
}

func (s *RedisStorage) Get(ctx context.Context, key string) (string, error) {
	value, err := s.redis.Get(ctx, s.prefix+key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrNotFound
		}
		return "", err
	}
	return value, nil
}

func (s *RedisStorage) Set(ctx context.Context, key, value string) error {
	return s.redis.Set(ctx, s.prefix+key, value, 0).Err()
}

func (s *RedisStorage) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	prefixed := make([]string, 0, len(keys))
	for _, key := range keys {
		prefixed = append(prefixed, s.prefix+key)
	}
	return s.redis.Del(ctx, prefixed...).Err()
}

// Close fecha a conexão com o Redis quando o cliente subjacente permite.
func (s *RedisStorage) Close() error {
	if closer, ok := s.redis.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
