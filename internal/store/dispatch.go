package store

import (
	"github.com/sirupsen/logrus"
)

// DispatchingStore wraps a Btree and fans a successful write out to every
// configured replication sink after it has been applied locally. Fan-out
// failures are logged, not surfaced to the caller: the mutation already
// succeeded against the authoritative local B-tree, and a follower that
// missed an update is a replication-catch-up concern, never a reason to
// fail the request that triggered it.
type DispatchingStore struct {
	log    *logrus.Logger
	btree  Btree
	sinks  []ReplicationSink
}

func NewDispatchingStore(log *logrus.Logger, btree Btree, sinks []ReplicationSink) *DispatchingStore {
	return &DispatchingStore{log: log, btree: btree, sinks: sinks}
}

func (d *DispatchingStore) Change(m Mutation, ct CasTime) (MutationResult, error) {
	res, err := d.btree.Mutate(m, ct)
	if err != nil || res.Code != ResultStored {
		return res, err
	}
	for _, sink := range d.sinks {
		sink := sink
		go func() {
			if err := sink.Replicate(m.Key, m, ct); err != nil {
				d.log.Warnf("replication to %s failed for key %q: %v", sink.Name(), m.Key, err)
			}
		}()
	}
	return res, nil
}

func (d *DispatchingStore) Get(key Key) (Value, bool, error) {
	return d.btree.Get(key)
}

func (d *DispatchingStore) RGet(lo, hi RangeBound) (Cursor, error) {
	return d.btree.RGet(lo, hi)
}
