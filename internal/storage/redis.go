package storage

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

type RedisStore struct {
	client      *redis.Client
	log         logrus.FieldLogger
	maxAttempts int
	maxBackoff  time.Duration
}

// NewRedisStore accepts either a redis:// URL or a plain host:port.
func NewRedisStore(addr string, log logrus.FieldLogger) *RedisStore {
	opts, err := redis.ParseURL(addr)
	if err != nil {
		opts = &redis.Options{
			Addr:         addr,
			MinIdleConns: 1,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
			PoolSize:     10,
			PoolTimeout:  4 * time.Second,
		}
	}

	return &RedisStore{
		client:      redis.NewClient(opts),
		log:         log,
		maxAttempts: 30,
		maxBackoff:  30 * time.Second,
	}
}

// Initialize pings the server until it answers, backing off exponentially.
func (s *RedisStore) Initialize(ctx context.Context) error {
	for i := 0; i < s.maxAttempts; i++ {
		err := s.Ping(ctx)
		if err == nil {
			s.log.WithField("attempt", i+1).Info("redis store ready")
			return nil
		}

		backoff := time.Duration(1<<uint(i)) * time.Second
		if backoff > s.maxBackoff {
			backoff = s.maxBackoff
		}
		s.log.WithError(err).WithFields(logrus.Fields{
			"attempt": i + 1,
			"backoff": backoff.String(),
		}).Warn("redis ping failed")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
	}
	return errors.Errorf("redis unreachable after %d attempts", s.maxAttempts)
}

func (s *RedisStore) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := s.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.Wrapf(err, "redis GET %s", key)
	}
	return v, true, nil
}

func (s *RedisStore) Set(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, key, value, 0).Err(); err != nil {
		return errors.Wrapf(err, "redis SET %s", key)
	}
	return nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
