package store

import "github.com/sirupsen/logrus"

// ShardStore is one logical shard: a B-tree, a dispatching store, a
// timestamper, and the order-token machinery that serializes access to
// them, pinned to a home worker thread per spec.md §4.3.
type ShardStore struct {
	Idx    int
	log    *logrus.Logger
	worker *Worker

	btree    Btree
	dispatch *DispatchingStore
	ts       *Timestamper

	sink *OrderSink

	cache            CacheConfig
	deleteQueueLimit uint64
}

func NewShardStore(idx int, log *logrus.Logger, worker *Worker, btree Btree, sinks []ReplicationSink, cache CacheConfig, deleteQueueLimit uint64) *ShardStore {
	dispatch := NewDispatchingStore(log, btree, sinks)
	return &ShardStore{
		Idx:              idx,
		log:              log,
		worker:           worker,
		btree:            btree,
		dispatch:         dispatch,
		ts:               NewTimestamper(dispatch),
		sink:             NewOrderSink(),
		cache:            cache,
		deleteQueueLimit: deleteQueueLimit,
	}
}

// Budget reports the cache and delete-queue shares this shard was opened
// with, for the admin status surface.
func (s *ShardStore) Budget() (CacheConfig, uint64) {
	return s.cache, s.deleteQueueLimit
}

// Get satisfies spec.md §4.3's get row: check out the caller's token at
// this shard's sink, then read on the home worker. No separate substore
// token is issued.
func (s *ShardStore) Get(key Key, tok OrderToken) (Value, bool, error) {
	release := s.sink.CheckOut(tok)
	defer release()

	var val Value
	var found bool
	var err error
	s.worker.Run(func() {
		val, found, err = s.btree.Get(key)
	})
	return val, found, err
}

// GetWithCastime is Get plus the stored CasTime, the collaborator a
// memcached-style "gets" command needs to hand a client the CAS unique
// it must echo back on a later cas mutation. It requires the concrete
// LevelBtree, the only Btree implementation this repo has.
func (s *ShardStore) GetWithCastime(key Key, tok OrderToken) (Value, CasTime, bool, error) {
	release := s.sink.CheckOut(tok)
	defer release()

	lb := s.btree.(*LevelBtree)
	var val Value
	var casID uint64
	var found bool
	var err error
	s.worker.Run(func() {
		val, casID, found, err = lb.GetCastime(key)
	})
	return val, CasTime{CasID: casID}, found, err
}

func (s *ShardStore) RGet(lo, hi RangeBound, tok OrderToken) (Cursor, error) {
	release := s.sink.CheckOut(tok)
	defer release()

	var cur Cursor
	var err error
	s.worker.Run(func() {
		cur, err = s.btree.RGet(lo, hi)
	})
	return cur, err
}

// Change is the timestamped write path: the shard's own Timestamper
// assigns the CasTime. Strict FIFO within the shard.
func (s *ShardStore) Change(m Mutation, tok OrderToken) (MutationResult, error) {
	release := s.sink.CheckOut(tok)
	defer release()

	var res MutationResult
	var err error
	s.worker.Run(func() {
		res, err = s.ts.Change(m)
	})
	return res, err
}

// ChangeWithCastime is the replication write path: the caller supplies
// the CasTime directly and the timestamper is bypassed, per spec.md
// §4.3.
func (s *ShardStore) ChangeWithCastime(m Mutation, ct CasTime, tok OrderToken) (MutationResult, error) {
	release := s.sink.CheckOut(tok)
	defer release()

	var res MutationResult
	var err error
	s.worker.Run(func() {
		res, err = s.dispatch.Change(m, ct)
	})
	return res, err
}

func (s *ShardStore) DeleteAllKeysForBackfill() error {
	var err error
	s.worker.Run(func() {
		err = s.btree.DeleteAllForBackfill()
	})
	return err
}

func (s *ShardStore) Size() (int64, error) {
	var n int64
	var err error
	s.worker.Run(func() {
		n, err = s.btree.Size()
	})
	return n, err
}

// SetTimestamper broadcasts a new starting clock value to this shard's
// timestamper. It runs on the home thread and blocks until the hop
// completes, so the caller knows every mutation admitted after this
// call returns will see the advanced clock. See spec.md §9's resolved
// open question.
func (s *ShardStore) SetTimestamper(t uint32) {
	s.worker.Run(func() {
		s.ts.SetTimestamp(t)
	})
}

func (s *ShardStore) GetReplicationClock() (uint32, error) {
	var v uint32
	var err error
	s.worker.Run(func() { v, err = s.btree.GetReplicationClock() })
	return v, err
}

func (s *ShardStore) SetReplicationClock(t uint32) error {
	var err error
	s.worker.Run(func() { err = s.btree.SetReplicationClock(t) })
	return err
}

func (s *ShardStore) GetLastSync() (int64, error) {
	var v int64
	var err error
	s.worker.Run(func() { v, err = s.btree.GetLastSync() })
	return v, err
}

func (s *ShardStore) SetLastSync(t int64) error {
	var err error
	s.worker.Run(func() { err = s.btree.SetLastSync(t) })
	return err
}

func (s *ShardStore) GetReplicationMasterID() (string, error) {
	var v string
	var err error
	s.worker.Run(func() { v, err = s.btree.GetReplicationMasterID() })
	return v, err
}

func (s *ShardStore) SetReplicationMasterID(id string) error {
	var err error
	s.worker.Run(func() { err = s.btree.SetReplicationMasterID(id) })
	return err
}

func (s *ShardStore) GetReplicationSlaveID() (string, error) {
	var v string
	var err error
	s.worker.Run(func() { v, err = s.btree.GetReplicationSlaveID() })
	return v, err
}

func (s *ShardStore) SetReplicationSlaveID(id string) error {
	var err error
	s.worker.Run(func() { err = s.btree.SetReplicationSlaveID(id) })
	return err
}
