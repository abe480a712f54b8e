package db

// BatchOpKind identifies a write inside a WriteBatch.
type BatchOpKind int

const (
	// BatchHSet sets hash fields.
	BatchHSet BatchOpKind = iota + 1
	// BatchDel deletes keys.
	BatchDel
	// BatchZAdd adds a scored member to a sorted set.
	BatchZAdd
	// BatchZRem removes members from a sorted set.
	BatchZRem
	// BatchSAdd adds members to a set.
	BatchSAdd
	// BatchSRem removes members from a set.
	BatchSRem
)

// BatchOp is a single write.
type BatchOp struct {
	Kind    BatchOpKind
	Key     string
	Keys    []string
	Fields  map[string]string
	Score   float64
	Members []string
}

// WriteBatch collects writes that must land together.
type WriteBatch struct {
	ops []BatchOp
}

// NewWriteBatch creates an empty batch.
func NewWriteBatch() *WriteBatch {
	return &WriteBatch{}
}

// HSet queues a hash write.
func (b *WriteBatch) HSet(key string, fields map[string]string) *WriteBatch {
	b.ops = append(b.ops, BatchOp{Kind: BatchHSet, Key: key, Fields: fields})
	return b
}

// Del queues deletion of keys.
func (b *WriteBatch) Del(keys ...string) *WriteBatch {
	if len(keys) == 0 {
		return b
	}
	b.ops = append(b.ops, BatchOp{Kind: BatchDel, Keys: keys})
	return b
}

// ZAdd queues a sorted set insert.
func (b *WriteBatch) ZAdd(key string, score float64, member string) *WriteBatch {
	b.ops = append(b.ops, BatchOp{Kind: BatchZAdd, Key: key, Score: score, Members: []string{member}})
	return b
}

// ZRem queues sorted set removals.
func (b *WriteBatch) ZRem(key string, members ...string) *WriteBatch {
	if len(members) == 0 {
		return b
	}
	b.ops = append(b.ops, BatchOp{Kind: BatchZRem, Key: key, Members: members})
	return b
}

// SAdd queues set inserts.
func (b *WriteBatch) SAdd(key string, members ...string) *WriteBatch {
	if len(members) == 0 {
		return b
	}
	b.ops = append(b.ops, BatchOp{Kind: BatchSAdd, Key: key, Members: members})
	return b
}

// SRem queues set removals.
func (b *WriteBatch) SRem(key string, members ...string) *WriteBatch {
	if len(members) == 0 {
		return b
	}
	b.ops = append(b.ops, BatchOp{Kind: BatchSRem, Key: key, Members: members})
	return b
}

// Ops returns the queued writes in order.
func (b *WriteBatch) Ops() []BatchOp { return b.ops }

// Len returns the number of queued writes.
func (b *WriteBatch) Len() int { return len(b.ops) }
