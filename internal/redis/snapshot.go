package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"querychat/internal/models"
)

// SnapshotCache stores the chat history snapshot as JSON under one key
// without expiry.
type SnapshotCache struct {
	client *Client
	key    string
}

func NewSnapshotCache(client *Client, key string) *SnapshotCache {
	return &SnapshotCache{client: client, key: key}
}

// Load returns the cached snapshot, or an empty one if the key is absent.
func (s *SnapshotCache) Load(ctx context.Context) (models.Snapshot, error) {
	raw, err := s.client.Get(ctx, s.key)
	if errors.Is(err, ErrCacheMiss) {
		return models.Snapshot{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get snapshot: %w", err)
	}
	snap := models.Snapshot{}
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return snap, nil
}

// Save overwrites the cached snapshot.
func (s *SnapshotCache) Save(ctx context.Context, snap models.Snapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := s.client.Set(ctx, s.key, payload, 0); err != nil {
		return fmt.Errorf("set snapshot: %w", err)
	}
	return nil
}
