package redis

import (
	"context"
	"fmt"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/notegraph/internal/db"
)

// ExecAtomic sends the batch wrapped in MULTI/EXEC in a single DoMulti round-trip,
// so the server applies every write or none.
func (s *Store) ExecAtomic(ctx context.Context, batch *db.WriteBatch) error {
	if batch == nil || batch.Len() == 0 {
		return nil
	}

	cmds := make([]rueidis.Completed, 0, batch.Len()+2)
	cmds = append(cmds, s.b().Multi().Build())
	for _, op := range batch.Ops() {
		cmd, err := s.batchCmd(op)
		if err != nil {
			return err
		}
		cmds = append(cmds, cmd)
	}
	cmds = append(cmds, s.b().Exec().Build())

	results := s.client.DoMulti(ctx, cmds...)
	for i, res := range results[:len(results)-1] {
		if err := res.Error(); err != nil {
			return failed(db.OpMulti, fmt.Errorf("command %d: %w", i, err))
		}
	}

	exec := results[len(results)-1]
	if err := exec.Error(); err != nil {
		if rueidis.IsRedisNil(err) {
			return failed(db.OpExec, db.ErrTxAborted)
		}
		return failed(db.OpExec, err)
	}
	replies, err := exec.ToArray()
	if err != nil {
		return failed(db.OpExec, err)
	}
	for i, r := range replies {
		if err := r.Error(); err != nil {
			return failed(db.OpExec, fmt.Errorf("command %d: %w", i, err))
		}
	}
	return nil
}

func (s *Store) batchCmd(op db.BatchOp) (rueidis.Completed, error) {
	switch op.Kind {
	case db.BatchHSet:
		return s.hsetCmd(op.Key, op.Fields), nil
	case db.BatchDel:
		return s.b().Del().Key(op.Keys...).Build(), nil
	case db.BatchZAdd:
		return s.b().Zadd().Key(op.Key).ScoreMember().ScoreMember(op.Score, op.Members[0]).Build(), nil
	case db.BatchZRem:
		return s.b().Zrem().Key(op.Key).Member(op.Members...).Build(), nil
	case db.BatchSAdd:
		return s.b().Sadd().Key(op.Key).Member(op.Members...).Build(), nil
	case db.BatchSRem:
		return s.b().Srem().Key(op.Key).Member(op.Members...).Build(), nil
	default:
		return rueidis.Completed{}, fmt.Errorf("unknown batch op kind %d", op.Kind)
	}
}
