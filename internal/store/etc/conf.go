package etc

import (
	"encoding/json"
	"io/ioutil"

	log "github.com/sirupsen/logrus"
)

// StoreConf is the on-disk JSON configuration for a single store
// coordinator process, grounded on internal/replica/etc's ReplicaConf.
type StoreConf struct {
	NSlices        int          `json:"n_slices"`
	BtreeBlockSize int          `json:"btree_block_size"`
	Files          []string     `json:"files"`
	Cache          CacheConf    `json:"cache"`
	DeleteQueueLimit uint64     `json:"delete_queue_limit"`
	NumWorkerThreads int        `json:"num_worker_threads"`
	LogLevel       string       `json:"log_level"`
	AdminAddr      string       `json:"admin_addr"`
	Followers      []FollowerConf `json:"followers"`
}

type CacheConf struct {
	MaxSize          uint64 `json:"max_size"`
	MaxDirtySize     uint64 `json:"max_dirty_size"`
	FlushDirtySize   uint64 `json:"flush_dirty_size"`
	IoPriorityReads  int    `json:"io_priority_reads"`
	IoPriorityWrites int    `json:"io_priority_writes"`
}

type FollowerConf struct {
	Name string `json:"name"`
	Addr string `json:"addr"`
}

func ParseStoreConf(confPath string) StoreConf {
	confBytes, err := ioutil.ReadFile(confPath)
	if err != nil {
		log.Fatalf("failed to open config file: %v", err)
	}
	conf := StoreConf{}
	if err := json.Unmarshal(confBytes, &conf); err != nil {
		log.Fatalf("failed to parse config file: %v", err)
	}
	return conf
}
