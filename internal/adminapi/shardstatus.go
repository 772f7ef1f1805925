// Package adminapi is the wire shape shared between shardstored's admin
// HTTP endpoint and shardctl, the status CLI that reads it.
package adminapi

// ShardStatus is one row of /debug/shards: a data shard's key count and
// the cache/delete-queue budget it was opened with.
type ShardStatus struct {
	Shard       int    `json:"shard"`
	Keys        int64  `json:"keys"`
	CacheMax    uint64 `json:"cache_max"`
	DeleteQueue uint64 `json:"delete_queue"`
	Err         string `json:"err,omitempty"`
}

// FileStatus is one row of /debug/files: a backing file's path and its
// on-disk footprint, as measured by walking the serializer's directory.
type FileStatus struct {
	Path      string `json:"path"`
	SizeBytes int64  `json:"size_bytes"`
}
