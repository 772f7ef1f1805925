package store

// CacheConfig is the recognized set of per-shard cache/IO budgets, per
// spec.md §3. All fields are non-negative numeric budgets.
type CacheConfig struct {
	MaxSize         uint64
	MaxDirtySize    uint64
	FlushDirtySize  uint64
	IoPriorityReads int
	IoPriorityWrites int
}

// StaticConfig is immutable once construction begins.
type StaticConfig struct {
	NSlices int
	// BtreeBlockSize and similar B-tree creation parameters are opaque
	// to the coordinator; they are threaded straight through to the
	// B-tree collaborator's Create call.
	BtreeBlockSize int
}

// PrivateSerializerConfig is per-backing-file configuration, one entry
// per file.
type PrivateSerializerConfig struct {
	Path string
}

// DynamicConfig is the per-file serializer settings, the aggregate cache
// config, the aggregate delete-queue limit, and one private config entry
// per backing file.
type DynamicConfig struct {
	Cache            CacheConfig
	DeleteQueueLimit uint64
	Files            []PrivateSerializerConfig
}

func (c DynamicConfig) NFiles() int {
	return len(c.Files)
}
