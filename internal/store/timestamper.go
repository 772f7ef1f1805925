package store

// Timestamper wraps a DispatchingStore and assigns each incoming
// mutation a CasTime by reading a monotonically non-decreasing clock
// before forwarding to the dispatching store. SetTimestamp seeds or
// advances the clock at startup or after replication catch-up; per
// spec.md §9's resolved open question, SetTimestamp is synchronous and
// visible to every subsequent mutation on this shard before it returns,
// since the clock is only ever touched from the shard's home thread.
type Timestamper struct {
	clock    Clock
	dispatch *DispatchingStore
}

func NewTimestamper(dispatch *DispatchingStore) *Timestamper {
	return &Timestamper{dispatch: dispatch}
}

func (t *Timestamper) SetTimestamp(repl uint32) {
	t.clock.Set(repl)
}

func (t *Timestamper) Change(m Mutation) (MutationResult, error) {
	ct := CasTime{CasID: nextCasID(), ReplTimestamp: t.clock.Tick()}
	return t.dispatch.Change(m, ct)
}
