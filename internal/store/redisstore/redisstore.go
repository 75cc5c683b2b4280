package redisstore

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store caches resolved login sessions so that bearer-token lookups do not hit
// the relational store on every request.
type Store struct {
	rdb *redis.Client
}

func New(addr, password string, db int) *Store {
	return &Store{rdb: redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})}
}

// NewWithClient wraps an existing client (tests, shared pools).
func NewWithClient(rdb *redis.Client) *Store {
	return &Store{rdb: rdb}
}

func (s *Store) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

func (s *Store) Close() error {
	return s.rdb.Close()
}

func sessionKey(tokenID string) string {
	return "wyr:session:" + tokenID
}

// CacheSession remembers that tokenID belongs to userID for ttl.
func (s *Store) CacheSession(ctx context.Context, tokenID string, userID uint64, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return s.rdb.Set(ctx, sessionKey(tokenID), strconv.FormatUint(userID, 10), ttl).Err()
}

// GetSession returns the cached owner of tokenID, or redis.Nil on a miss.
func (s *Store) GetSession(ctx context.Context, tokenID string) (uint64, error) {
	v, err := s.rdb.Get(ctx, sessionKey(tokenID)).Result()
	if err != nil {
		return 0, err
	}
	uid, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("redisstore: bad session value %q: %w", v, err)
	}
	return uid, nil
}

func (s *Store) DeleteSession(ctx context.Context, tokenID string) error {
	err := s.rdb.Del(ctx, sessionKey(tokenID)).Err()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	return err
}
