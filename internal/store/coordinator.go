package store

import (
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"github.com/gofastkv/shardstore/pkg/common"
)

// StoreCoordinator is the public collaborator of spec.md §1: it owns the
// multiplexer, the data shards, the metadata shard, and the
// stat-persistence task, and routes every request to the shard SliceIndex
// names. Construction follows the same format/serve split as the
// multiplexer it sits on top of.
type StoreCoordinator struct {
	log     *logrus.Logger
	static  StaticConfig
	dynamic DynamicConfig

	mux     *Multiplexer
	workers *WorkerPool

	shards    []*ShardStore
	metaShard *ShardStore
	meta      *MetadataShard
	stat      *StatTask

	orderSource *OrderSource

	killed int32
}

// Create formats nFiles backing files and lays down NSlices+1 empty
// logical slices (one per data shard plus one for the metadata shard),
// the destructive half of spec.md §4's bring-up. Callers should run the
// existence checker first; Create does not refuse to overwrite existing
// data.
func Create(static StaticConfig, dynamic DynamicConfig) error {
	if dynamic.NFiles() < 1 || dynamic.NFiles() > MaxSerializers {
		return common.ErrBadFileCount
	}
	if static.NSlices < 1 {
		return common.ErrZeroSlices
	}

	paths := make([]string, dynamic.NFiles())
	for i, f := range dynamic.Files {
		paths[i] = f.Path
	}
	nProxies := static.NSlices + 1
	if err := CreateMultiplexer(paths, nProxies); err != nil {
		return common.ErrFormatFailed
	}

	mux, err := OpenMultiplexer(paths, nProxies)
	if err != nil {
		return common.ErrFormatFailed
	}
	defer mux.Close()

	errs := Fanout(nProxies, func(i int) error {
		return CreateBtree(mux.Proxies[i], static)
	})
	if err := firstErr(errs); err != nil {
		return common.ErrFormatFailed
	}
	return nil
}

// Open attaches a StoreCoordinator to an already-formatted set of backing
// files, the non-destructive half of spec.md §4's bring-up. numWorkers
// fixes the size of the worker pool every shard is pinned to; it need not
// equal NSlices+1, since WorkerPool.Home assigns shards to workers round
// robin.
func Open(static StaticConfig, dynamic DynamicConfig, numWorkers int, log *logrus.Logger, sinks []ReplicationSink) (*StoreCoordinator, error) {
	if dynamic.NFiles() < 1 || dynamic.NFiles() > MaxSerializers {
		return nil, common.ErrBadFileCount
	}
	if static.NSlices < 1 {
		return nil, common.ErrZeroSlices
	}

	paths := make([]string, dynamic.NFiles())
	for i, f := range dynamic.Files {
		paths[i] = f.Path
	}
	nProxies := static.NSlices + 1
	mux, err := OpenMultiplexer(paths, nProxies)
	if err != nil {
		return nil, common.ErrOpenFailed
	}

	shardShare, metaShare := ShardShares(static.NSlices)
	shardCache := PartitionCache(dynamic.Cache, shardShare)
	metaCache := PartitionCache(dynamic.Cache, metaShare)
	shardDeleteQueue := PartitionDeleteQueue(dynamic.DeleteQueueLimit, shardShare)
	metaDeleteQueue := PartitionDeleteQueue(dynamic.DeleteQueueLimit, metaShare)

	workers := NewWorkerPool(numWorkers)

	shards := make([]*ShardStore, static.NSlices)
	for i := 0; i < static.NSlices; i++ {
		btree := OpenBtree(mux.Proxies[i], shardCache, uint64(i))
		shards[i] = NewShardStore(i, log, workers.Home(i), btree, sinks, shardCache, shardDeleteQueue)
	}
	metaBtree := OpenBtree(mux.Proxies[static.NSlices], metaCache, uint64(static.NSlices))
	metaShard := NewShardStore(static.NSlices, log, workers.Home(static.NSlices), metaBtree, nil, metaCache, metaDeleteQueue)

	c := &StoreCoordinator{
		log:         log,
		static:      static,
		dynamic:     dynamic,
		mux:         mux,
		workers:     workers,
		shards:      shards,
		metaShard:   metaShard,
		meta:        NewMetadataShard(metaShard),
		orderSource: NewOrderSource(),
	}

	// Seed every shard's timestamper from shard 0's persisted replication
	// clock before serving any request, so a freshly opened coordinator
	// never stamps a mutation with a castime older than what was already
	// on disk before the process last stopped.
	replClock, err := c.shards[0].GetReplicationClock()
	if err != nil {
		mux.Close()
		return nil, err
	}
	c.SetTimestampers(replClock)

	c.stat = NewStatTask(log, c.meta, static.NSlices, func(i int) (int64, error) {
		return c.shards[i].Size()
	})
	if err := c.stat.Start(); err != nil {
		mux.Close()
		return nil, err
	}

	return c, nil
}

func (c *StoreCoordinator) shardFor(key Key) *ShardStore {
	return c.shards[SliceIndex(key, c.static.NSlices)]
}

// NewToken hands out the next token in this coordinator's global issue
// order, for callers that need to coordinate ordering across several
// operations themselves (e.g. a read-your-writes session).
func (c *StoreCoordinator) NewToken() OrderToken     { return c.orderSource.Next() }
func (c *StoreCoordinator) NewReadToken() OrderToken { return c.orderSource.NextReadMode() }

func (c *StoreCoordinator) Get(key Key, tok OrderToken) (Value, bool, error) {
	return c.shardFor(key).Get(key, tok)
}

func (c *StoreCoordinator) GetWithCastime(key Key, tok OrderToken) (Value, CasTime, bool, error) {
	return c.shardFor(key).GetWithCastime(key, tok)
}

func (c *StoreCoordinator) RGet(lo, hi RangeBound, tok OrderToken) (Cursor, error) {
	cursors := make([]Cursor, len(c.shards))
	errs := Fanout(len(c.shards), func(i int) error {
		cur, err := c.shards[i].RGet(lo, hi, tok)
		if err != nil {
			return err
		}
		cursors[i] = cur
		return nil
	})
	if err := firstErr(errs); err != nil {
		for _, cur := range cursors {
			if cur != nil {
				cur.Close()
			}
		}
		return nil, err
	}
	return newMergeCursor(cursors), nil
}

func (c *StoreCoordinator) Change(m Mutation, tok OrderToken) (MutationResult, error) {
	return c.shardFor(m.Key).Change(m, tok)
}

func (c *StoreCoordinator) ChangeWithCastime(m Mutation, ct CasTime, tok OrderToken) (MutationResult, error) {
	return c.shardFor(m.Key).ChangeWithCastime(m, ct, tok)
}

// DeleteAllKeysForBackfill wipes every data shard, but never the metadata
// shard, per spec.md §4.4's isolation requirement: the coordinator's own
// bookkeeping must survive a backfill reset of user data.
func (c *StoreCoordinator) DeleteAllKeysForBackfill() error {
	errs := Fanout(len(c.shards), func(i int) error {
		return c.shards[i].DeleteAllKeysForBackfill()
	})
	return firstErr(errs)
}

func (c *StoreCoordinator) GetMeta(name string) ([]byte, bool, error) {
	return c.meta.GetMeta(name)
}

func (c *StoreCoordinator) SetMeta(name string, value []byte) error {
	return c.meta.SetMeta(name, value)
}

// SetTimestampers broadcasts a new starting clock value to every data
// shard's timestamper, used after replication catch-up establishes a new
// floor for the repli-timestamp.
func (c *StoreCoordinator) SetTimestampers(t uint32) {
	FanoutVoid(len(c.shards), func(i int) {
		c.shards[i].SetTimestamper(t)
	})
}

// Replication clock, last-sync time, and peer identity are tracked
// per-coordinator, not per-shard; they are routed exclusively to shard 0
// by convention, per spec.md §4's replication bookkeeping.
func (c *StoreCoordinator) GetReplicationClock() (uint32, error) { return c.shards[0].GetReplicationClock() }
func (c *StoreCoordinator) SetReplicationClock(t uint32) error   { return c.shards[0].SetReplicationClock(t) }
func (c *StoreCoordinator) GetLastSync() (int64, error)          { return c.shards[0].GetLastSync() }
func (c *StoreCoordinator) SetLastSync(t int64) error            { return c.shards[0].SetLastSync(t) }
func (c *StoreCoordinator) GetReplicationMasterID() (string, error) {
	return c.shards[0].GetReplicationMasterID()
}
func (c *StoreCoordinator) SetReplicationMasterID(id string) error {
	return c.shards[0].SetReplicationMasterID(id)
}
func (c *StoreCoordinator) GetReplicationSlaveID() (string, error) {
	return c.shards[0].GetReplicationSlaveID()
}
func (c *StoreCoordinator) SetReplicationSlaveID(id string) error {
	return c.shards[0].SetReplicationSlaveID(id)
}

func (c *StoreCoordinator) NumShards() int { return len(c.shards) }

// FilePaths returns the backing file paths this coordinator was opened
// over, in file order, for the admin surface's per-file disk usage
// report.
func (c *StoreCoordinator) FilePaths() []string {
	paths := make([]string, len(c.dynamic.Files))
	for i, f := range c.dynamic.Files {
		paths[i] = f.Path
	}
	return paths
}

func (c *StoreCoordinator) ShardSize(i int) (int64, error) { return c.shards[i].Size() }

func (c *StoreCoordinator) ShardBudget(i int) (CacheConfig, uint64) { return c.shards[i].Budget() }

func (c *StoreCoordinator) Killed() bool {
	return atomic.LoadInt32(&c.killed) != 0
}

// Kill tears the coordinator down in the reverse order of Open: stop the
// stat task so it can't observe shards mid-teardown, stop the worker
// pool so no shard is mid-operation, then close the multiplexer's
// backing files.
func (c *StoreCoordinator) Kill() {
	if !atomic.CompareAndSwapInt32(&c.killed, 0, 1) {
		return
	}
	c.stat.Stop()
	c.workers.Stop()
	if err := c.mux.Close(); err != nil {
		c.log.Warnf("error closing backing files: %v", err)
	}
}
