package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps entries in Redis so several dashboard instances share one cache.
//
// Layout under prefix:
//
//	entry:<key>              JSON encoded Entry, expires with the TTL
//	tag:<scope>:<type>:<id>  set of entry keys providing the tag
//	type:<scope>:<type>      set of entry keys providing any tag of the type
//	gen:<scope>              invalidation counter of the scope
//
// Invalidation deletes the entries, which is how staleness is expressed here.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
}

// generationTTL bounds how long an idle scope keeps its counter. A counter that
// expires reads as zero, which only makes older in-flight reads skip their write.
const generationTTL = 24 * time.Hour

// NewRedisStore builds a store on top of client.
func NewRedisStore(client redis.UniversalClient, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix}
}

// Get implements Store.
func (s *RedisStore) Get(ctx context.Context, key Key) (Entry, bool, error) {
	raw, err := s.client.Get(ctx, s.entryKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, fmt.Errorf("redis get: %w", err)
	}

	var entry Entry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return Entry{}, false, fmt.Errorf("decode cache entry: %w", err)
	}
	return entry, true, nil
}

// Put implements Store.
func (s *RedisStore) Put(ctx context.Context, key Key, entry Entry, ttl time.Duration) error {
	raw, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode cache entry: %w", err)
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		s.queuePut(ctx, pipe, key, entry, raw, ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis put: %w", err)
	}
	return nil
}

// PutIfCurrent implements Store. The generation key is watched, so an
// invalidation landing between the check and the write aborts the write.
func (s *RedisStore) PutIfCurrent(ctx context.Context, key Key, entry Entry, ttl time.Duration, gen uint64) (bool, error) {
	raw, err := json.Marshal(entry)
	if err != nil {
		return false, fmt.Errorf("encode cache entry: %w", err)
	}

	stored := false
	err = s.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := readGeneration(ctx, tx, s.genKey(key.Scope))
		if err != nil {
			return err
		}
		if current != gen {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			s.queuePut(ctx, pipe, key, entry, raw, ttl)
			return nil
		})
		if err != nil {
			return err
		}
		stored = true
		return nil
	}, s.genKey(key.Scope))
	if errors.Is(err, redis.TxFailedErr) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis put: %w", err)
	}
	return stored, nil
}

// Generation implements Store.
func (s *RedisStore) Generation(ctx context.Context, scope string) (uint64, error) {
	gen, err := readGeneration(ctx, s.client, s.genKey(scope))
	if err != nil {
		return 0, fmt.Errorf("redis generation: %w", err)
	}
	return gen, nil
}

func (s *RedisStore) queuePut(ctx context.Context, pipe redis.Pipeliner, key Key, entry Entry, raw []byte, ttl time.Duration) {
	entryKey := s.entryKey(key)
	pipe.Set(ctx, entryKey, raw, ttl)
	for _, tag := range entry.Tags {
		for _, set := range []string{s.tagKey(key.Scope, tag), s.typeKey(key.Scope, tag.Type)} {
			pipe.SAdd(ctx, set, entryKey)
			if ttl > 0 {
				pipe.Expire(ctx, set, ttl)
			}
		}
	}
}

type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func readGeneration(ctx context.Context, c getter, key string) (uint64, error) {
	gen, err := c.Get(ctx, key).Uint64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

// Invalidate implements Store.
func (s *RedisStore) Invalidate(ctx context.Context, scope string, tags []Tag) (int, error) {
	sets := make([]string, 0, len(tags))
	for _, tag := range tags {
		if tag.ID == "" {
			sets = append(sets, s.typeKey(scope, tag.Type))
			continue
		}
		sets = append(sets, s.tagKey(scope, tag))
	}
	if len(sets) == 0 {
		return 0, nil
	}

	genKey := s.genKey(scope)
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, genKey)
		pipe.Expire(ctx, genKey, generationTTL)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("redis bump generation: %w", err)
	}

	members, err := s.client.SUnion(ctx, sets...).Result()
	if err != nil {
		return 0, fmt.Errorf("redis tag lookup: %w", err)
	}
	if len(members) == 0 {
		return 0, nil
	}

	deleted, err := s.client.Del(ctx, members...).Result()
	if err != nil {
		return 0, fmt.Errorf("redis invalidate: %w", err)
	}
	return int(deleted), nil
}

func (s *RedisStore) entryKey(key Key) string {
	return s.prefix + "entry:" + key.String()
}

func (s *RedisStore) tagKey(scope string, tag Tag) string {
	return s.prefix + "tag:" + scope + ":" + tag.Type + ":" + tag.ID
}

func (s *RedisStore) genKey(scope string) string {
	return s.prefix + "gen:" + scope
}

func (s *RedisStore) typeKey(scope, resourceType string) string {
	return s.prefix + "type:" + scope + ":" + resourceType
}
