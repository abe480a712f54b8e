package db

import "errors"

// Sentinel errors for database operations.
var (
	ErrKeyNotFound = errors.New("db: key not found")
	ErrTxAborted   = errors.New("db: transaction aborted")
	ErrGuardFailed = errors.New("db: guard field mismatch")
)

// Op constants map to Valkey/Redis command names for error context.
const (
	OpPing          = "PING"
	OpDel           = "DEL"
	OpHGetAll       = "HGETALL"
	OpHSet          = "HSET"
	OpExists        = "EXISTS"
	OpGet           = "GET"
	OpSet           = "SET"
	OpZAdd          = "ZADD"
	OpZRangeByScore = "ZRANGEBYSCORE"
	OpZRevRange     = "ZREVRANGE"
	OpSMembers      = "SMEMBERS"
	OpMulti         = "MULTI"
	OpExec          = "EXEC"
	OpEval          = "EVAL"
)

// Error wraps an underlying error with the operation name for diagnostics.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }
