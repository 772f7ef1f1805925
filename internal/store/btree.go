package store

import (
	"encoding/binary"
)

// BoundMode is the openness of one end of an rget range.
type BoundMode uint8

const (
	BoundClosed BoundMode = iota
	BoundOpen
	BoundUnbounded
)

type RangeBound struct {
	Mode BoundMode
	Key  Key
}

// Cursor is the lazy, in-order sequence a Btree's RGet returns. Next
// returns false once exhausted; the underlying iterator is released on
// Close, which callers must always do.
type Cursor interface {
	Next() bool
	Key() Key
	Value() Value
	Close()
}

// Btree is the collaborator spec.md §1 treats as out of scope beyond
// this interface: the on-disk structure for one shard. Mutation, the
// replication-metadata accessors, and delete-all-for-backfill are the
// only write surfaces; everything else is read-only.
type Btree interface {
	Get(key Key) (Value, bool, error)
	RGet(lo, hi RangeBound) (Cursor, error)
	Mutate(m Mutation, ct CasTime) (MutationResult, error)
	DeleteAllForBackfill() error
	Size() (int64, error)

	GetReplicationClock() (uint32, error)
	SetReplicationClock(uint32) error
	GetLastSync() (int64, error)
	SetLastSync(int64) error
	GetReplicationMasterID() (string, error)
	SetReplicationMasterID(string) error
	GetReplicationSlaveID() (string, error)
	SetReplicationSlaveID(string) error
}

const (
	metaKeyReplClock   = "\x00meta:repl_clock"
	metaKeyLastSync    = "\x00meta:last_sync"
	metaKeyReplMasterID = "\x00meta:repl_master_id"
	metaKeyReplSlaveID  = "\x00meta:repl_slave_id"
	userDataPrefix      = "\x01d:"
)

// LevelBtree is the goleveldb-backed realization of Btree, one per
// pseudo-serializer slice, grounded on internal/replica/level_db.go's
// LevelStore and server_shard.go's metadata key conventions.
type LevelBtree struct {
	proxy *PseudoSerializer
}

func CreateBtree(proxy *PseudoSerializer, _ StaticConfig) error {
	return proxy.Clear()
}

func OpenBtree(proxy *PseudoSerializer, _ CacheConfig, _ uint64) *LevelBtree {
	return &LevelBtree{proxy: proxy}
}

func userKey(k Key) []byte {
	return append([]byte(userDataPrefix), k...)
}

func (b *LevelBtree) Get(key Key) (Value, bool, error) {
	val, err := b.proxy.Get(userKey(key))
	if err != nil {
		return Value{}, false, err
	}
	if val == nil {
		return Value{}, false, nil
	}
	return ValueOf(val[8:]), true, nil
}

// GetCastime is Get plus the CAS id stamped on the stored record, used
// by ShardStore.GetWithCastime to read back what a plain Get strips.
func (b *LevelBtree) GetCastime(key Key) (Value, uint64, bool, error) {
	val, err := b.proxy.Get(userKey(key))
	if err != nil || val == nil {
		return Value{}, 0, false, err
	}
	return ValueOf(val[8:]), binary.BigEndian.Uint64(val[:8]), true, nil
}

// RGet scans the user-data key range [lo, hi] (open/closed per bound
// mode), translating onto the byte-prefixed leveldb range the standard
// way: an exclusive lower bound is realized as the zero-extended
// successor of the key, an exclusive upper bound as the bare key, and a
// closed upper bound as the zero-extended successor of the key.
func (b *LevelBtree) RGet(lo, hi RangeBound) (Cursor, error) {
	var loKey []byte
	if lo.Key == nil {
		loKey = []byte(userDataPrefix)
	} else {
		loKey = userKey(lo.Key)
		if lo.Mode == BoundOpen {
			loKey = append(loKey, 0x00)
		}
	}

	var hiKey []byte
	switch hi.Mode {
	case BoundUnbounded:
		hiKey = prefixUpperBound([]byte(userDataPrefix))
	case BoundOpen:
		hiKey = userKey(hi.Key)
	case BoundClosed:
		hiKey = append(userKey(hi.Key), 0x00)
	}

	iter := b.proxy.IterateRange(loKey, hiKey)
	return &levelCursor{iter: iter, keyOffset: len(b.proxy.prefix) + len(userDataPrefix)}, nil
}

// prefixUpperBound returns the smallest byte string greater than every
// string with prefix p, i.e. the exclusive upper bound of a prefix scan.
func prefixUpperBound(p []byte) []byte {
	out := append([]byte{}, p...)
	for i := len(out) - 1; i >= 0; i-- {
		if out[i] != 0xff {
			out[i]++
			return out[:i+1]
		}
	}
	return nil
}

type levelCursor struct {
	iter interface {
		Next() bool
		Key() []byte
		Value() []byte
		Release()
	}
	keyOffset int
}

func (c *levelCursor) Next() bool {
	return c.iter.Next()
}

func (c *levelCursor) Key() Key {
	k := c.iter.Key()
	return Key(append([]byte{}, k[c.keyOffset:]...))
}

func (c *levelCursor) Value() Value {
	v := c.iter.Value()
	return ValueOf(append([]byte{}, v[8:]...))
}

func (c *levelCursor) Close() {
	c.iter.Release()
}

func (b *LevelBtree) Mutate(m Mutation, ct CasTime) (MutationResult, error) {
	key := userKey(m.Key)
	existing, err := b.proxy.Get(key)
	if err != nil {
		return MutationResult{}, err
	}
	exists := existing != nil

	if m.DataProviderErr != nil {
		return MutationResult{Code: ResultDataProviderFailed, Castime: ct}, nil
	}

	switch m.Op {
	case OpAdd:
		if exists {
			return MutationResult{Code: ResultNotStored, Castime: ct, NewValue: ValueOf(existing[8:])}, nil
		}
	case OpReplace:
		if !exists {
			return MutationResult{Code: ResultNotStored, Castime: ct}, nil
		}
	case OpCas:
		if !exists {
			return MutationResult{Code: ResultNotFound, Castime: ct}, nil
		}
		curCas := binary.BigEndian.Uint64(existing[:8])
		if curCas != m.CasUnique {
			return MutationResult{Code: ResultExists, Castime: ct, NewValue: ValueOf(existing[8:])}, nil
		}
	case OpAppend, OpPrepend:
		if !exists {
			return MutationResult{Code: ResultNotStored, Castime: ct}, nil
		}
	case OpDelete:
		if !exists {
			return MutationResult{Code: ResultNotFound, Castime: ct}, nil
		}
		if err := b.proxy.Delete(key); err != nil {
			return MutationResult{}, err
		}
		return MutationResult{Code: ResultStored, Castime: ct}, nil
	case OpIncr, OpDecr:
		if !exists {
			return MutationResult{Code: ResultNotFound, Castime: ct}, nil
		}
	}

	newVal := m.Value.Bytes()
	switch m.Op {
	case OpAppend:
		newVal = append(append([]byte{}, existing[8:]...), newVal...)
	case OpPrepend:
		newVal = append(append([]byte{}, newVal...), existing[8:]...)
	case OpIncr, OpDecr:
		cur := decodeUint(existing[8:])
		if m.Op == OpIncr {
			cur += m.Delta
		} else if cur < m.Delta {
			cur = 0
		} else {
			cur -= m.Delta
		}
		newVal = encodeUint(cur)
	}

	stored := make([]byte, 8+len(newVal))
	binary.BigEndian.PutUint64(stored[:8], ct.CasID)
	copy(stored[8:], newVal)

	if err := b.proxy.Put(key, stored); err != nil {
		return MutationResult{}, err
	}
	return MutationResult{Code: ResultStored, Castime: ct, NewValue: ValueOf(newVal)}, nil
}

func decodeUint(b []byte) uint64 {
	if len(b) < 8 {
		return 0
	}
	return binary.BigEndian.Uint64(b)
}

func encodeUint(v uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, v)
	return b
}

func (b *LevelBtree) DeleteAllForBackfill() error {
	return b.proxy.serializer.clearPrefix(b.proxy.prefix + userDataPrefix)
}

// Size counts the user-data keys stored in this slice.
func (b *LevelBtree) Size() (int64, error) {
	iter := b.proxy.IterateRange([]byte(userDataPrefix), prefixUpperBound([]byte(userDataPrefix)))
	defer iter.Release()
	n := int64(0)
	for iter.Next() {
		n++
	}
	return n, iter.Error()
}

func (b *LevelBtree) GetReplicationClock() (uint32, error) {
	v, err := b.proxy.Get([]byte(metaKeyReplClock))
	if err != nil || v == nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(v), nil
}

func (b *LevelBtree) SetReplicationClock(t uint32) error {
	buf := make([]byte, 4)
	binary.BigEndian.PutUint32(buf, t)
	return b.proxy.Put([]byte(metaKeyReplClock), buf)
}

func (b *LevelBtree) GetLastSync() (int64, error) {
	v, err := b.proxy.Get([]byte(metaKeyLastSync))
	if err != nil || v == nil {
		return 0, err
	}
	return int64(binary.BigEndian.Uint64(v)), nil
}

func (b *LevelBtree) SetLastSync(t int64) error {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, uint64(t))
	return b.proxy.Put([]byte(metaKeyLastSync), buf)
}

func (b *LevelBtree) GetReplicationMasterID() (string, error) {
	v, err := b.proxy.Get([]byte(metaKeyReplMasterID))
	return string(v), err
}

func (b *LevelBtree) SetReplicationMasterID(id string) error {
	return b.proxy.Put([]byte(metaKeyReplMasterID), []byte(id))
}

func (b *LevelBtree) GetReplicationSlaveID() (string, error) {
	v, err := b.proxy.Get([]byte(metaKeyReplSlaveID))
	return string(v), err
}

func (b *LevelBtree) SetReplicationSlaveID(id string) error {
	return b.proxy.Put([]byte(metaKeyReplSlaveID), []byte(id))
}
