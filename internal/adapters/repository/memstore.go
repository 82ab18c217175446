package repository

import (
	"context"
	"hash/fnv"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/taper/internal/domain/model"
	"github.com/okian/taper/internal/domain/timeline"
	"github.com/okian/taper/pkg/metrics"
)

// Sharded, in-memory Store implementation.
//
// Athletes are hashed across shards so that ingestion for different athletes
// never contends on the same lock. Within an athlete, samples are keyed by
// canonical calendar day, so re-sent or corrected samples replace the old
// value instead of accumulating.

const (
	defaultShardCount           = 32
	defaultMetricsFlushInterval = 10 * time.Second
)

// athleteState is everything stored for one athlete. Guarded by its shard's
// lock.
type athleteState struct {
	loads      map[string]model.DailyLoad
	biometrics map[string]model.BiometricRecord
	genetics   []model.GeneticProfileEntry
}

type shard struct {
	mu       sync.RWMutex
	athletes map[string]*athleteState
	records  atomic.Int64
}

// MemStore implements Store with sharded in-memory maps.
type MemStore struct {
	shards               []*shard
	shardCount           int
	metricsFlushInterval time.Duration

	athleteCount atomic.Int64
}

// NewMemStore creates a sharded in-memory store.
func NewMemStore(opts ...Option) *MemStore {
	s := &MemStore{
		shardCount:           defaultShardCount,
		metricsFlushInterval: defaultMetricsFlushInterval,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.shards = make([]*shard, s.shardCount)
	for i := range s.shards {
		s.shards[i] = &shard{athletes: make(map[string]*athleteState)}
	}

	metrics.UpdateRepositoryShardCount(s.shardCount)
	metrics.UpdateRepositoryAthletesTotal(0)
	metrics.UpdateRepositoryRecordsTotal(0)

	return s
}

// StartMetricsUpdater refreshes repository gauges until ctx is canceled.
func (s *MemStore) StartMetricsUpdater(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(s.metricsFlushInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.flushGauges()
			}
		}
	}()
}

func (s *MemStore) flushGauges() {
	total := 0
	for i, sh := range s.shards {
		n := int(sh.records.Load())
		total += n
		metrics.UpdateRepositoryRecordsPerShard(strconv.Itoa(i), n)
	}
	metrics.UpdateRepositoryRecordsTotal(total)
	metrics.UpdateRepositoryAthletesTotal(int(s.athleteCount.Load()))
}

func (s *MemStore) shardFor(athleteID string) *shard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(athleteID))
	return s.shards[h.Sum32()%uint32(s.shardCount)]
}

// state returns the athlete's state, creating it if needed.
// Caller must hold sh.mu for writing.
func (s *MemStore) state(sh *shard, athleteID string) *athleteState {
	st, ok := sh.athletes[athleteID]
	if !ok {
		st = &athleteState{
			loads:      make(map[string]model.DailyLoad),
			biometrics: make(map[string]model.BiometricRecord),
		}
		sh.athletes[athleteID] = st
		s.athleteCount.Add(1)
	}
	return st
}

// UpsertLoad records a training-load sample, replacing any sample already
// stored for the same calendar day.
func (s *MemStore) UpsertLoad(_ context.Context, athleteID string, load model.DailyLoad) error {
	start := time.Now()
	defer func() {
		metrics.RecordRepositoryUpdateLatency(float64(time.Since(start).Milliseconds()))
	}()

	key, err := timeline.DayKey(load.Date)
	if err != nil {
		return err
	}

	sh := s.shardFor(athleteID)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	st := s.state(sh, athleteID)
	if _, exists := st.loads[key]; !exists {
		sh.records.Add(1)
	}
	st.loads[key] = load
	return nil
}

// UpsertBiometric records a wearable sample, keyed like UpsertLoad.
func (s *MemStore) UpsertBiometric(_ context.Context, athleteID string, rec model.BiometricRecord) error {
	start := time.Now()
	defer func() {
		metrics.RecordRepositoryUpdateLatency(float64(time.Since(start).Milliseconds()))
	}()

	key, err := timeline.DayKey(rec.Date)
	if err != nil {
		return err
	}

	sh := s.shardFor(athleteID)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	st := s.state(sh, athleteID)
	if _, exists := st.biometrics[key]; !exists {
		sh.records.Add(1)
	}
	st.biometrics[key] = rec
	return nil
}

// SetGenetics replaces the athlete's genetic profile.
func (s *MemStore) SetGenetics(_ context.Context, athleteID string, entries []model.GeneticProfileEntry) error {
	start := time.Now()
	defer func() {
		metrics.RecordRepositoryUpdateLatency(float64(time.Since(start).Milliseconds()))
	}()

	sh := s.shardFor(athleteID)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	st := s.state(sh, athleteID)
	st.genetics = append([]model.GeneticProfileEntry(nil), entries...)
	return nil
}

// History returns everything known about an athlete, samples in ascending
// date order.
func (s *MemStore) History(_ context.Context, athleteID string) (History, error) {
	start := time.Now()
	defer func() {
		metrics.RecordRepositoryQueryLatency(float64(time.Since(start).Milliseconds()))
	}()

	sh := s.shardFor(athleteID)
	sh.mu.RLock()
	defer sh.mu.RUnlock()

	st, ok := sh.athletes[athleteID]
	if !ok {
		return History{}, ErrNotFound
	}

	h := History{
		AthleteID:  athleteID,
		Loads:      make([]model.DailyLoad, 0, len(st.loads)),
		Biometrics: make([]model.BiometricRecord, 0, len(st.biometrics)),
		Genetics:   append([]model.GeneticProfileEntry(nil), st.genetics...),
	}
	for key, load := range st.loads {
		load.Date = key
		h.Loads = append(h.Loads, load)
	}
	for key, rec := range st.biometrics {
		rec.Date = key
		h.Biometrics = append(h.Biometrics, rec)
	}
	sort.Slice(h.Loads, func(i, j int) bool { return h.Loads[i].Date < h.Loads[j].Date })
	sort.Slice(h.Biometrics, func(i, j int) bool { return h.Biometrics[i].Date < h.Biometrics[j].Date })

	return h, nil
}

// Count returns the number of athletes tracked.
func (s *MemStore) Count(_ context.Context) int {
	return int(s.athleteCount.Load())
}

// RecordCount returns the total number of stored samples.
func (s *MemStore) RecordCount(_ context.Context) int {
	total := int64(0)
	for _, sh := range s.shards {
		total += sh.records.Load()
	}
	return int(total)
}
