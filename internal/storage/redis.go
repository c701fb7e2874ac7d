package storage

import (
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"
)

const redisKeyPrefix = "densify:seq:"

type RedisStore struct {
	client      *redis.Client
	ctx         context.Context
	compression Compression
}

func NewRedisStore(addr, password string, db int, compression Compression) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	ctx := context.Background()
	_, err := client.Ping(ctx).Result()
	if err != nil {
		client.Close()
		return nil, err
	}

	return &RedisStore{client: client, ctx: ctx, compression: compression}, nil
}

func (s *RedisStore) SaveSequence(snap *Snapshot) error {
	data, err := encodeSnapshot(snap, s.compression)
	if err != nil {
		return err
	}
	return s.client.Set(s.ctx, sequenceKey(snap.Name), data, 0).Err()
}

func (s *RedisStore) GetSequence(name string) (*Snapshot, error) {
	data, err := s.client.Get(s.ctx, sequenceKey(name)).Bytes()
	if err == redis.Nil {
		return nil, nil
	} else if err != nil {
		return nil, err
	}
	return decodeSnapshot(data)
}

func (s *RedisStore) DeleteSequence(name string) error {
	return s.client.Del(s.ctx, sequenceKey(name)).Err()
}

func (s *RedisStore) ListSequences() ([]*Snapshot, error) {
	var snaps []*Snapshot
	var cursor uint64

	for {
		keys, nextCursor, err := s.client.Scan(s.ctx, cursor, redisKeyPrefix+"*", 100).Result()
		if err != nil {
			return nil, err
		}
		for _, key := range keys {
			data, err := s.client.Get(s.ctx, key).Bytes()
			if err == redis.Nil {
				// deleted between SCAN and GET
				continue
			} else if err != nil {
				return nil, err
			}
			snap, err := decodeSnapshot(data)
			if err != nil {
				return nil, fmt.Errorf("key %s: %w", key, err)
			}
			snaps = append(snaps, snap)
		}
		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}
	return snaps, nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

func sequenceKey(name string) string {
	return redisKeyPrefix + name
}
