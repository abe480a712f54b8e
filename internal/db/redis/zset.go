package redis

import (
	"context"
	"strconv"

	"github.com/kailas-cloud/notegraph/internal/db"
)

// ZAdd adds or rescores a member.
func (s *Store) ZAdd(ctx context.Context, key string, score float64, member string) error {
	return s.run(ctx, db.OpZAdd, s.b().Zadd().Key(key).ScoreMember().ScoreMember(score, member).Build())
}

// ZRangeByScore returns members with min <= score < max, lowest score first.
func (s *Store) ZRangeByScore(ctx context.Context, key string, min, max float64) ([]string, error) {
	cmd := s.b().Arbitrary(db.OpZRangeByScore).Keys(key).
		Args(formatScore(min), "("+formatScore(max)).Build()
	members, err := s.do(ctx, cmd).AsStrSlice()
	if err != nil {
		return nil, failed(db.OpZRangeByScore, err)
	}
	return members, nil
}

// ZRevRange returns all members, highest score first.
func (s *Store) ZRevRange(ctx context.Context, key string) ([]string, error) {
	cmd := s.b().Arbitrary(db.OpZRevRange).Keys(key).Args("0", "-1").Build()
	members, err := s.do(ctx, cmd).AsStrSlice()
	if err != nil {
		return nil, failed(db.OpZRevRange, err)
	}
	return members, nil
}

// SMembers returns all members of a set.
func (s *Store) SMembers(ctx context.Context, key string) ([]string, error) {
	cmd := s.b().Smembers().Key(key).Build()
	members, err := s.do(ctx, cmd).AsStrSlice()
	if err != nil {
		return nil, failed(db.OpSMembers, err)
	}
	return members, nil
}

func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
