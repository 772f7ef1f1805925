package store

import "time"

const (
	// MaxSerializers bounds how many backing files a coordinator may be
	// opened over.
	MaxSerializers = 32

	// MaxKeySize bounds the length of a store key.
	MaxKeySize = 250

	// MetadataShardResourceQuotient sets the metadata shard's share of a
	// single data shard's resources, independent of n_slices.
	MetadataShardResourceQuotient = 0.01

	// StatPersistFrequency is the wake period of the stat-persist task.
	StatPersistFrequency = 10 * time.Second
)
