package store

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Key layout: each document lives at "doc:<path>" as a JSON string and
// every collection keeps a set "col:<collection>" of child ids so
// GetAll does not have to SCAN the keyspace.
const (
	docKeyPrefix = "doc:"
	colKeyPrefix = "col:"
)

// RedisStore is the primary document store driver.
type RedisStore struct {
	rdb *redis.Client
}

// NewRedisStore wraps an already-connected Redis client.
func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func (s *RedisStore) Get(ctx context.Context, path string) ([]byte, error) {
	body, err := s.rdb.Get(ctx, docKeyPrefix+path).Bytes()
	if err == redis.Nil {
		return nil, ErrNoDocument
	}
	if err != nil {
		return nil, err
	}
	return body, nil
}

func (s *RedisStore) GetAll(ctx context.Context, collection string) (map[string][]byte, error) {
	collection = strings.TrimSuffix(collection, "/")
	ids, err := s.rdb.SMembers(ctx, colKeyPrefix+collection).Result()
	if err != nil {
		return nil, err
	}
	out := make(map[string][]byte, len(ids))
	for _, id := range ids {
		body, err := s.rdb.Get(ctx, docKeyPrefix+collection+"/"+id).Bytes()
		if err == redis.Nil {
			// Document deleted after the index was read; drop the
			// stale index entry and move on.
			_ = s.rdb.SRem(ctx, colKeyPrefix+collection, id).Err()
			continue
		}
		if err != nil {
			return nil, err
		}
		out[id] = body
	}
	return out, nil
}

func (s *RedisStore) Set(ctx context.Context, path string, doc any) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	if err := s.rdb.Set(ctx, docKeyPrefix+path, body, 0).Err(); err != nil {
		return err
	}
	// Register the document in its parent collection index so GetAll
	// finds documents written by Set as well as by Push.
	if col, id, ok := splitPath(path); ok {
		return s.rdb.SAdd(ctx, colKeyPrefix+col, id).Err()
	}
	return nil
}

func (s *RedisStore) Push(ctx context.Context, collection string, doc any) (string, error) {
	id := uuid.NewString()
	if err := s.Set(ctx, strings.TrimSuffix(collection, "/")+"/"+id, doc); err != nil {
		return "", err
	}
	return id, nil
}

func (s *RedisStore) Delete(ctx context.Context, path string) error {
	if err := s.rdb.Del(ctx, docKeyPrefix+path).Err(); err != nil {
		return err
	}
	if col, id, ok := splitPath(path); ok {
		return s.rdb.SRem(ctx, colKeyPrefix+col, id).Err()
	}
	return nil
}

// splitPath separates "customers/alice" into ("customers", "alice").
// Paths without a slash have no parent collection.
func splitPath(path string) (collection, id string, ok bool) {
	i := strings.LastIndex(path, "/")
	if i <= 0 || i == len(path)-1 {
		return "", "", false
	}
	return path[:i], path[i+1:], true
}
