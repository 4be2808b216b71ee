// Package redisstore keeps the roll history in a capped Redis list of JSON
// entries, newest at the head.
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/cory-johannsen/rollcontext/internal/game/history"
)

// Config holds the dependencies of a HistoryStore.
type Config struct {
	Client redis.Cmdable
	// Key is the list the entries are pushed to.
	Key string
	// Capacity is the maximum number of entries kept.
	Capacity int
}

// Validate ensures all required dependencies are provided.
func (c *Config) Validate() error {
	if c.Client == nil {
		return errors.New("redis client is required")
	}
	if c.Key == "" {
		return errors.New("history key is required")
	}
	if c.Capacity <= 0 {
		return history.ErrInvalidCapacity
	}
	return nil
}

// HistoryStore is a history.Store backed by a Redis list.
type HistoryStore struct {
	client   redis.Cmdable
	key      string
	capacity int
}

var _ history.Store = (*HistoryStore)(nil)

// NewHistoryStore creates a HistoryStore.
//
// Postcondition: Returns a non-nil error when cfg is invalid.
func NewHistoryStore(cfg *Config) (*HistoryStore, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &HistoryStore{client: cfg.Client, key: cfg.Key, capacity: cfg.Capacity}, nil
}

// Append pushes e onto the head of the list and trims the list to capacity
// in one transaction.
func (s *HistoryStore) Append(ctx context.Context, e history.Entry) error {
	history.Normalize(&e)
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encoding history entry: %w", err)
	}
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.LPush(ctx, s.key, data)
		pipe.LTrim(ctx, s.key, 0, int64(s.capacity-1))
		return nil
	})
	if err != nil {
		return fmt.Errorf("appending history entry: %w", err)
	}
	return nil
}

// Recent returns at most n entries, newest first.
func (s *HistoryStore) Recent(ctx context.Context, n int) ([]history.Entry, error) {
	if n <= 0 {
		return []history.Entry{}, nil
	}
	raw, err := s.client.LRange(ctx, s.key, 0, int64(n-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("reading history: %w", err)
	}
	out := make([]history.Entry, 0, len(raw))
	for i, r := range raw {
		var e history.Entry
		if err := json.Unmarshal([]byte(r), &e); err != nil {
			return nil, fmt.Errorf("decoding history entry %d: %w", i, err)
		}
		out = append(out, e)
	}
	return out, nil
}
