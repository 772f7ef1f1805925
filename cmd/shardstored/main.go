package main

import (
	"encoding/json"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"github.com/gofastkv/shardstore/internal/adminapi"
	"github.com/gofastkv/shardstore/internal/store"
	"github.com/gofastkv/shardstore/internal/store/etc"
	"github.com/gofastkv/shardstore/pkg/common"
	"github.com/gofastkv/shardstore/pkg/common/utils"
)

func main() {
	conf, format, force := makeConfig()

	logger, err := common.InitLogger(conf.LogLevel, "shardstored")
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}

	static, dynamic := toStoreConfig(conf)

	// CheckExistingAll aggregates with AND (spec.md §4.6): it only reports
	// true once every configured backing file already holds a database.
	existed, err := store.CheckExistingAll(conf.Files)
	if err != nil {
		log.Fatalf("existence check failed: %v", err)
	}
	if format {
		if existed && !force {
			log.Fatalf("backing files already hold a complete database; pass -force to overwrite")
		}
		if err := store.Create(static, dynamic); err != nil {
			log.Fatalf("format failed: %v", err)
		}
	} else if !existed {
		log.Fatalf("no existing database at the configured backing files; pass -format to initialize")
	}

	sinks := makeSinks(conf.Followers)
	coord, err := store.Open(static, dynamic, conf.NumWorkerThreads, logger, sinks)
	if err != nil {
		log.Fatalf("failed to open store coordinator: %v", err)
	}

	startAdminServer(conf.AdminAddr, coord, logger)

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)
	<-shutdown
	logger.Infof("shutting down")
	coord.Kill()
}

func makeConfig() (etc.StoreConf, bool, bool) {
	var confPath string
	var format, force bool
	flag.StringVar(&confPath, "conf", "", "config file path")
	flag.BoolVar(&format, "format", false, "format the backing files before serving")
	flag.BoolVar(&force, "force", false, "allow -format to overwrite existing data")
	flag.Parse()

	if confPath == "" {
		log.Fatalf("no config file path provided")
	}
	return etc.ParseStoreConf(confPath), format, force
}

func toStoreConfig(conf etc.StoreConf) (store.StaticConfig, store.DynamicConfig) {
	static := store.StaticConfig{
		NSlices:        conf.NSlices,
		BtreeBlockSize: conf.BtreeBlockSize,
	}
	files := make([]store.PrivateSerializerConfig, len(conf.Files))
	for i, p := range conf.Files {
		files[i] = store.PrivateSerializerConfig{Path: p}
	}
	dynamic := store.DynamicConfig{
		Cache: store.CacheConfig{
			MaxSize:          conf.Cache.MaxSize,
			MaxDirtySize:     conf.Cache.MaxDirtySize,
			FlushDirtySize:   conf.Cache.FlushDirtySize,
			IoPriorityReads:  conf.Cache.IoPriorityReads,
			IoPriorityWrites: conf.Cache.IoPriorityWrites,
		},
		DeleteQueueLimit: conf.DeleteQueueLimit,
		Files:            files,
	}
	return static, dynamic
}

func makeSinks(followers []etc.FollowerConf) []store.ReplicationSink {
	if len(followers) == 0 {
		return nil
	}
	sinks := make([]store.ReplicationSink, len(followers))
	for i, f := range followers {
		sinks[i] = store.NewRPCReplicationSink(f.Name, f.Addr)
	}
	return sinks
}

// startAdminServer exposes Prometheus metrics and JSON shard and file
// status endpoints, the admin HTTP surface SPEC_FULL.md adds alongside
// the data path, grounded on internal/master's promhttp.Handler wiring.
func startAdminServer(addr string, coord *store.StoreCoordinator, logger *log.Logger) {
	if addr == "" {
		return
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/debug/shards", func(w http.ResponseWriter, r *http.Request) {
		rows := make([]adminapi.ShardStatus, coord.NumShards())
		for i := 0; i < coord.NumShards(); i++ {
			rows[i].Shard = i
			size, err := coord.ShardSize(i)
			if err != nil {
				rows[i].Err = err.Error()
				continue
			}
			cache, dq := coord.ShardBudget(i)
			rows[i].Keys = size
			rows[i].CacheMax = cache.MaxSize
			rows[i].DeleteQueue = dq
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(rows)
	})
	mux.HandleFunc("/debug/files", func(w http.ResponseWriter, r *http.Request) {
		paths := coord.FilePaths()
		rows := make([]adminapi.FileStatus, len(paths))
		for i, p := range paths {
			rows[i] = adminapi.FileStatus{Path: p, SizeBytes: utils.SizeOfDir(p)}
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(rows)
	})
	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil {
			logger.Warnf("admin server stopped: %v", err)
		}
	}()
}
