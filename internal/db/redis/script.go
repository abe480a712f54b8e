package redis

import (
	"context"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/notegraph/internal/db"
)

// hsetUnlessScript: KEYS[1]=hash, ARGV[1]=guard field, ARGV[2]=guard value, ARGV[3..]=field/value pairs.
var hsetUnlessScript = rueidis.NewLuaScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
  return false
end
if redis.call('HGET', KEYS[1], ARGV[1]) ~= ARGV[2] then
  for i = 3, #ARGV, 2 do
    redis.call('HSET', KEYS[1], ARGV[i], ARGV[i + 1])
  end
end
return redis.call('HGETALL', KEYS[1])
`)

// HSetUnless runs the guarded update as one server-side script, so concurrent callers
// cannot both pass the guard.
func (s *Store) HSetUnless(
	ctx context.Context, key, guard, guardValue string, fields map[string]string,
) (map[string]string, error) {
	args := make([]string, 0, 2+2*len(fields))
	args = append(args, guard, guardValue)
	for k, v := range fields {
		args = append(args, k, v)
	}

	m, err := hsetUnlessScript.Exec(ctx, s.client, []string{key}, args).AsStrMap()
	if err != nil {
		if rueidis.IsRedisNil(err) {
			return nil, db.ErrKeyNotFound
		}
		return nil, failed(db.OpEval, err)
	}
	return m, nil
}

// hsetIfEqualScript: KEYS[1]=hash, ARGV[1]=guard field, ARGV[2]=expected value, ARGV[3..]=field/value pairs.
// Returns nil for a missing key, 0 on guard mismatch, 1 after writing.
var hsetIfEqualScript = rueidis.NewLuaScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
  return false
end
if redis.call('HGET', KEYS[1], ARGV[1]) ~= ARGV[2] then
  return 0
end
for i = 3, #ARGV, 2 do
  redis.call('HSET', KEYS[1], ARGV[i], ARGV[i + 1])
end
return 1
`)

// HSetIfEqual is a compare-and-set on one hash field. The existence check, the
// comparison and the write run as one script.
func (s *Store) HSetIfEqual(ctx context.Context, key, guard, expected string, fields map[string]string) error {
	args := make([]string, 0, 2+2*len(fields))
	args = append(args, guard, expected)
	for k, v := range fields {
		args = append(args, k, v)
	}

	n, err := hsetIfEqualScript.Exec(ctx, s.client, []string{key}, args).AsInt64()
	if err != nil {
		if rueidis.IsRedisNil(err) {
			return db.ErrKeyNotFound
		}
		return failed(db.OpEval, err)
	}
	if n == 0 {
		return db.ErrGuardFailed
	}
	return nil
}
