package store

// MetadataShard is the string-keyed facade spec.md §4.4 puts in front of
// the dedicated metadata shard: coordinator-internal bookkeeping (e.g.
// backfill watermarks, admin flags) shares the same ShardStore machinery
// as user data but is never routed by SliceIndex and never exposed to
// user-facing get/set.
type MetadataShard struct {
	shard *ShardStore
}

func NewMetadataShard(shard *ShardStore) *MetadataShard {
	return &MetadataShard{shard: shard}
}

// GetMeta reads a metadata entry by name. Name is translated through
// KeyFromString, same precondition as any other store key (spec.md §4's
// key_from_string). It uses IgnoreToken: metadata reads never
// participate in a caller's ordering domain, per spec.md §4.4.
func (m *MetadataShard) GetMeta(name string) ([]byte, bool, error) {
	key, err := KeyFromString(name)
	if err != nil {
		return nil, false, err
	}
	val, found, err := m.shard.Get(key, IgnoreToken)
	if err != nil || !found {
		return nil, found, err
	}
	return val.Bytes(), true, nil
}

// SetMeta writes a metadata entry unconditionally, with no flags, no
// expiry, and no CAS check — an always-succeeds OpSet. A metadata write
// returning NotAllowed is a defect: nothing about the metadata shard's
// mutation path is supposed to depend on access control.
func (m *MetadataShard) SetMeta(name string, value []byte) error {
	key, err := KeyFromString(name)
	if err != nil {
		return err
	}
	res, err := m.shard.Change(Mutation{
		Key:     key,
		Op:      OpSet,
		Value:   ValueOf(value),
		Exptime: NeverExpires(),
	}, IgnoreToken)
	if err != nil {
		return err
	}
	if res.NotAllowed {
		panic("metadata shard rejected an unconditional set as not allowed")
	}
	if res.Code != ResultStored {
		panic("metadata shard rejected an unconditional set: " + res.Code.String())
	}
	return nil
}

func (m *MetadataShard) DeleteMeta(name string) error {
	key, err := KeyFromString(name)
	if err != nil {
		return err
	}
	_, err = m.shard.Change(Mutation{Key: key, Op: OpDelete}, IgnoreToken)
	return err
}
