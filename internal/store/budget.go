package store

import "math"

// PartitionCache scales an aggregate cache config by share, flooring
// every field to at least 1 so that even a tiny share yields a minimum
// viable configuration, per spec.md §4.2.
func PartitionCache(agg CacheConfig, share float64) CacheConfig {
	return CacheConfig{
		MaxSize:          floorShare(agg.MaxSize, share),
		MaxDirtySize:     floorShare(agg.MaxDirtySize, share),
		FlushDirtySize:   floorShare(agg.FlushDirtySize, share),
		IoPriorityReads:  int(floorShare(uint64(agg.IoPriorityReads), share)),
		IoPriorityWrites: int(floorShare(uint64(agg.IoPriorityWrites), share)),
	}
}

func floorShare(field uint64, share float64) uint64 {
	v := uint64(math.Floor(float64(field) * share))
	if v < 1 {
		return 1
	}
	return v
}

// ShardShares computes the per-shard and metadata-shard resource shares
// for a store with nSlices data shards, per spec.md §4.2: the metadata
// shard gets a fixed *fraction* (MetadataShardResourceQuotient) of one
// data shard's resources regardless of nSlices, while total usage stays
// bounded by the aggregate budget.
func ShardShares(nSlices int) (shardShare, metadataShare float64) {
	resourceTotal := 1 + MetadataShardResourceQuotient/float64(nSlices)
	shardShare = 1 / (float64(nSlices) * resourceTotal)
	metadataShare = MetadataShardResourceQuotient / (float64(nSlices) * resourceTotal)
	return
}

// PartitionDeleteQueue scales the aggregate delete-queue limit by share.
// Unlike cache fields, it is not floored to a minimum of 1 — a share of
// zero pending deletes is a legitimate limit.
func PartitionDeleteQueue(agg uint64, share float64) uint64 {
	return uint64(float64(agg) * share)
}
