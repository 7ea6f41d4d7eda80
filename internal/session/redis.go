package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/careerhub/careerhub/internal/config"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

const redisKeyPrefix = "careerhub:session:"

// NewRedisClient connects to redis, retrying the initial ping a few times.
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	var errPing error
	for attempt := 1; attempt <= 5; attempt++ {
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		errPing = client.Ping(pingCtx).Err()
		cancel()
		if errPing == nil {
			log.WithField("addr", cfg.Addr).Info("redis connected")
			return client, nil
		}
		log.WithError(errPing).WithField("attempt", attempt).Warn("redis not ready, retrying")
		select {
		case <-ctx.Done():
			_ = client.Close()
			return nil, ctx.Err()
		case <-time.After(time.Second):
		}
	}
	_ = client.Close()
	return nil, fmt.Errorf("session: redis ping %s: %w", cfg.Addr, errPing)
}

// RedisStore keeps sessions as JSON values with a TTL.
type RedisStore struct {
	client redis.UniversalClient
	now    func() time.Time
}

// NewRedisStore wraps an existing client.
func NewRedisStore(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client, now: time.Now}
}

// Create implements Store.
func (s *RedisStore) Create(ctx context.Context, sess *Session) error {
	payload, errMarshal := json.Marshal(sess)
	if errMarshal != nil {
		return fmt.Errorf("session: encode: %w", errMarshal)
	}
	ttl := time.Duration(0)
	if !sess.ExpiresAt.IsZero() {
		ttl = sess.ExpiresAt.Sub(s.now())
		if ttl <= 0 {
			return nil
		}
	}
	if errSet := s.client.Set(ctx, redisKeyPrefix+sess.ID, payload, ttl).Err(); errSet != nil {
		return fmt.Errorf("session: redis set: %w", errSet)
	}
	return nil
}

// Get implements Store.
func (s *RedisStore) Get(ctx context.Context, id string) (*Session, error) {
	payload, errGet := s.client.Get(ctx, redisKeyPrefix+id).Bytes()
	if errGet != nil {
		if errors.Is(errGet, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("session: redis get: %w", errGet)
	}
	var sess Session
	if errUnmarshal := json.Unmarshal(payload, &sess); errUnmarshal != nil {
		return nil, fmt.Errorf("session: decode: %w", errUnmarshal)
	}
	if sess.Expired(s.now()) {
		return nil, ErrNotFound
	}
	return &sess, nil
}

// Delete implements Store.
func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if errDel := s.client.Del(ctx, redisKeyPrefix+id).Err(); errDel != nil {
		return fmt.Errorf("session: redis del: %w", errDel)
	}
	return nil
}

var _ Store = (*RedisStore)(nil)
