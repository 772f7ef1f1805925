package store

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sirupsen/logrus"

	"github.com/gofastkv/shardstore/pkg/common"
)

var (
	statPersistRuns = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "shardstore",
		Name:      "stat_persist_runs_total",
		Help:      "The total number of completed stat-persistence cycles.",
	})
	statPersistFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "shardstore",
		Name:      "stat_persist_failures_total",
		Help:      "The total number of stat-persistence cycles that failed to write.",
	})
	shardKeyCount = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "shardstore",
		Name:      "shard_keys",
		Help:      "The number of keys on each data shard as of the last persistence cycle.",
	}, []string{"shard"})
)

const (
	statKeyPrefix = "stat:"
)

// StatTask is the long-lived background goroutine of spec.md §4.7: it
// periodically reads each shard's key count and persists it through the
// metadata shard, and before its first run reads the previously persisted
// counts back into the in-memory gauges.
type StatTask struct {
	log   *logrus.Logger
	meta  *MetadataShard
	sizeF func(i int) (int64, error)
	n     int

	jitter common.ThreadSafeRand
	period time.Duration

	stop chan struct{}
	done chan struct{}
}

func NewStatTask(log *logrus.Logger, meta *MetadataShard, n int, sizeF func(i int) (int64, error)) *StatTask {
	return &StatTask{
		log:    log,
		meta:   meta,
		sizeF:  sizeF,
		n:      n,
		jitter: common.MakeThreadSafeRand(time.Now().UnixNano()),
		period: StatPersistFrequency,
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
}

// Start reads back every previously persisted shard stat into the
// in-memory Prometheus gauges, then enters the periodic persist loop on
// its own goroutine. Reading back must complete before the loop's first
// tick per spec.md §4.7's ordering requirement — otherwise the first
// persistAll could clobber an unread disk value with a freshly zeroed
// in-memory counter.
func (t *StatTask) Start() error {
	if err := t.unpersistAll(); err != nil {
		return err
	}
	go t.run()
	return nil
}

func (t *StatTask) Stop() {
	close(t.stop)
	<-t.done
}

func (t *StatTask) run() {
	defer close(t.done)
	jitterMs := t.jitter.Intn(1000)
	timer := time.NewTimer(t.period + time.Duration(jitterMs)*time.Millisecond)
	defer timer.Stop()
	for {
		select {
		case <-t.stop:
			return
		case <-timer.C:
			if err := t.persistAll(); err != nil {
				statPersistFailures.Inc()
				t.log.Warnf("stat persist cycle failed: %v", err)
			} else {
				statPersistRuns.Inc()
			}
			timer.Reset(t.period)
		}
	}
}

func (t *StatTask) persistAll() error {
	for i := 0; i < t.n; i++ {
		size, err := t.sizeF(i)
		if err != nil {
			return err
		}
		shardKeyCount.WithLabelValues(shardLabel(i)).Set(float64(size))
		if err := t.meta.SetMeta(statKey(i), encodeUint(uint64(size))); err != nil {
			return err
		}
	}
	return nil
}

func (t *StatTask) unpersistAll() error {
	for i := 0; i < t.n; i++ {
		val, found, err := t.meta.GetMeta(statKey(i))
		if err != nil {
			return err
		}
		if !found {
			continue
		}
		shardKeyCount.WithLabelValues(shardLabel(i)).Set(float64(decodeUint(val)))
	}
	return nil
}

func statKey(i int) string {
	return statKeyPrefix + shardLabel(i)
}

func shardLabel(i int) string {
	return strconv.Itoa(i)
}
