package redis

import (
	"context"
	"fmt"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/notegraph/internal/db"
)

// HSet writes the given hash fields, leaving other fields untouched.
func (s *Store) HSet(ctx context.Context, key string, fields map[string]string) error {
	return s.run(ctx, db.OpHSet, s.hsetCmd(key, fields))
}

// hsetCmd is shared with ExecAtomic so batched and direct writes encode alike.
func (s *Store) hsetCmd(key string, fields map[string]string) rueidis.Completed {
	cmd := s.b().Hset().Key(key).FieldValue()
	for k, v := range fields {
		cmd = cmd.FieldValue(k, v)
	}
	return cmd.Build()
}

// HGetAll returns all fields of a hash. Redis answers an empty map for a missing key,
// which is reported as db.ErrKeyNotFound.
func (s *Store) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	m, err := s.do(ctx, s.b().Hgetall().Key(key).Build()).AsStrMap()
	if err != nil {
		return nil, failed(db.OpHGetAll, err)
	}
	if len(m) == 0 {
		return nil, db.ErrKeyNotFound
	}
	return m, nil
}

// HGetAllMulti pipelines HGETALL for every key in one round trip. The result is
// positional; missing keys yield nil.
func (s *Store) HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error) {
	if len(keys) == 0 {
		return nil, nil
	}

	cmds := make([]rueidis.Completed, 0, len(keys))
	for _, key := range keys {
		cmds = append(cmds, s.b().Hgetall().Key(key).Build())
	}

	out := make([]map[string]string, len(keys))
	for i, res := range s.client.DoMulti(ctx, cmds...) {
		m, err := res.AsStrMap()
		if err != nil {
			return nil, failed(db.OpHGetAll, fmt.Errorf("key %s: %w", keys[i], err))
		}
		if len(m) != 0 {
			out[i] = m
		}
	}
	return out, nil
}

// Del removes keys. Calling it without keys is a no-op.
func (s *Store) Del(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return s.run(ctx, db.OpDel, s.b().Del().Key(keys...).Build())
}

// Exists reports whether key is present.
func (s *Store) Exists(ctx context.Context, key string) (bool, error) {
	n, err := s.do(ctx, s.b().Exists().Key(key).Build()).AsInt64()
	if err != nil {
		return false, failed(db.OpExists, err)
	}
	return n > 0, nil
}
