package store

import "testing"

func TestPartitionCache_Floors(t *testing.T) {
	agg := CacheConfig{
		MaxSize:          1000,
		MaxDirtySize:     500,
		FlushDirtySize:   250,
		IoPriorityReads:  10,
		IoPriorityWrites: 10,
	}
	got := PartitionCache(agg, 0.25)
	want := CacheConfig{
		MaxSize:          250,
		MaxDirtySize:     125,
		FlushDirtySize:   62,
		IoPriorityReads:  2,
		IoPriorityWrites: 2,
	}
	if got != want {
		t.Errorf("PartitionCache(%+v, 0.25) = %+v, want %+v", agg, got, want)
	}
}

func TestPartitionCache_MinimumOne(t *testing.T) {
	agg := CacheConfig{MaxSize: 1, MaxDirtySize: 1, FlushDirtySize: 1, IoPriorityReads: 1, IoPriorityWrites: 1}
	got := PartitionCache(agg, 0.001)
	if got.MaxSize != 1 || got.MaxDirtySize != 1 || got.FlushDirtySize != 1 || got.IoPriorityReads != 1 || got.IoPriorityWrites != 1 {
		t.Errorf("PartitionCache with a tiny share should floor every field to >= 1, got %+v", got)
	}
}

func TestShardShares_SumBoundedByOne(t *testing.T) {
	for _, n := range []int{1, 2, 4, 8, 32} {
		shardShare, metaShare := ShardShares(n)
		total := shardShare*float64(n) + metaShare
		if total > 1.0+1e-9 {
			t.Errorf("ShardShares(%d): n*shardShare + metaShare = %f, want <= 1", n, total)
		}
		if shardShare <= 0 || metaShare <= 0 {
			t.Errorf("ShardShares(%d) returned non-positive share: shard=%f meta=%f", n, shardShare, metaShare)
		}
	}
}

func TestShardShares_MetadataIndependentOfNSlices(t *testing.T) {
	// The metadata shard's share of a single data shard's resources is a
	// fixed fraction (MetadataShardResourceQuotient), not a function of
	// n_slices, per spec.md §4.2. Compare metaShare/shardShare across
	// several n_slices values.
	var ratios []float64
	for _, n := range []int{1, 2, 4, 8} {
		shardShare, metaShare := ShardShares(n)
		ratios = append(ratios, metaShare/shardShare)
	}
	for i := 1; i < len(ratios); i++ {
		if diff := ratios[i] - ratios[0]; diff > 1e-9 || diff < -1e-9 {
			t.Errorf("metaShare/shardShare ratio drifted with n_slices: %v", ratios)
			break
		}
	}
}

func TestPartitionDeleteQueue_NotFloored(t *testing.T) {
	if got := PartitionDeleteQueue(10, 0.01); got != 0 {
		t.Errorf("PartitionDeleteQueue(10, 0.01) = %d, want 0 (no flooring)", got)
	}
}
