package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/rueidis"
)

// ErrNotFound reports a missing key. Callers treat it as a cache miss.
var ErrNotFound = fmt.Errorf("redis: key not found")

// Store is a minimal binary key-value view over a Redis connection.
type Store struct {
	client rueidis.Client
}

func NewStore(addr string) (*Store, error) {
	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress: []string{addr},
	})
	if err != nil {
		return nil, fmt.Errorf("redis connect: %w", err)
	}
	return &Store{client: client}, nil
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	resp := s.client.Do(ctx, s.client.B().Get().Key(key).Build())
	data, err := resp.AsBytes()
	if err != nil {
		if rueidis.IsRedisNil(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("redis get: %w", err)
	}
	return data, nil
}

func (s *Store) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	cmd := s.client.B().Set().Key(key).Value(rueidis.BinaryString(value)).Ex(ttl).Build()
	if err := s.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (s *Store) Close() {
	s.client.Close()
}
