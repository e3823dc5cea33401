package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/clinicore/clinic-api/internal/repository"
	"github.com/clinicore/clinic-api/pkg/circuitbreaker"
	"github.com/clinicore/clinic-api/pkg/metrics"
)

type Config struct {
	URL          string
	MaxRetries   int
	PoolSize     int
	MinIdleConns int
}

// TokenStore keeps revoked token IDs until their natural expiry. A key
// that exists means the token was revoked; expiry makes cleanup free.
type TokenStore struct {
	client  *redis.Client
	cb      *circuitbreaker.CircuitBreaker
	logger  *zerolog.Logger
	metrics *metrics.Metrics
}

func NewTokenStore(config Config, logger *zerolog.Logger, m *metrics.Metrics) (repository.TokenRevocationStore, error) {
	opts, err := redis.ParseURL(config.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	opts.MaxRetries = config.MaxRetries
	opts.PoolSize = config.PoolSize
	opts.MinIdleConns = config.MinIdleConns

	client := redis.NewClient(opts)

	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	cb := circuitbreaker.NewCircuitBreaker(circuitbreaker.Settings{
		Name:        "token-store",
		MaxFailures: 5,
		Timeout:     10 * time.Second,
	})

	return &TokenStore{
		client:  client,
		cb:      cb,
		logger:  logger,
		metrics: m,
	}, nil
}

func (s *TokenStore) key(tokenID string) string {
	return "revoked:" + tokenID
}

func (s *TokenStore) Revoke(ctx context.Context, tokenID string, until time.Time) error {
	ttl := time.Until(until)
	if ttl <= 0 {
		return nil
	}

	err := s.cb.Execute(func() error {
		return s.client.Set(ctx, s.key(tokenID), "1", ttl).Err()
	})
	if err != nil {
		s.observe("revoke", "error")
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	s.observe("revoke", "success")
	return nil
}

// IsRevoked fails open: when Redis is unreachable the token is treated
// as valid so an outage does not lock everyone out.
func (s *TokenStore) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	var exists int64
	err := s.cb.Execute(func() error {
		var err error
		exists, err = s.client.Exists(ctx, s.key(tokenID)).Result()
		return err
	})
	if err != nil {
		s.observe("check", "error")
		s.logger.Warn().Err(err).Msg("token revocation check failed, allowing token")
		return false, nil
	}
	s.observe("check", "success")
	return exists > 0, nil
}

func (s *TokenStore) observe(operation, status string) {
	if s.metrics != nil {
		s.metrics.RedisOperations.WithLabelValues(operation, status).Inc()
	}
}

func (s *TokenStore) Close() error {
	return s.client.Close()
}
