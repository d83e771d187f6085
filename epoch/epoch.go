// Copyright (c) 2016 Arista Networks, Inc.
// Use of this source code is governed by the Apache License 2.0
// that can be found in the COPYING file.

// Package epoch owns the per-epoch orchestration of the top-k filter,
// the fan-out estimator and the scoring/queue pipeline, and handles the
// candidate/persistence rotation between epochs. Callers drive epoch
// boundaries themselves; the core has no notion of wall-clock time.
package epoch

import (
	"github.com/leosat-net/satshield/fanout"
	"github.com/leosat-net/satshield/queue"
	"github.com/leosat-net/satshield/score"
	"github.com/leosat-net/satshield/topk"
)

// Config bundles the four component configs plus the epoch-level
// knobs (epoch length and persistence clamp) that the manager itself
// consumes directly.
type Config struct {
	TopK    topk.Config
	Fanout  fanout.Config
	Score   score.Config
	Queue   queue.Config
	EpochMs int
	PersistK int
}

// DefaultConfig returns reasonable defaults across every component.
func DefaultConfig() Config {
	return Config{
		TopK:     topk.DefaultConfig(),
		Fanout:   fanout.DefaultConfig(),
		Score:    score.DefaultConfig(),
		Queue:    queue.DefaultConfig(),
		EpochMs:  1000,
		PersistK: 3,
	}
}

// Result is what end_epoch returns: the deduplicated heavy key records
// from this epoch, each key's suspicion score, and each key's assigned
// mitigation queue. The core retains nothing from this value past the
// call that produced it.
type Result struct {
	HeavyKeys []topk.Record         `json:"heavy_keys"`
	Scores    map[uint64]float64    `json:"scores"`
	QueueMap  map[uint64]int        `json:"queue_map"`
}

// Manager exclusively owns one detector, one fan-out estimator, one
// score model, one queue mapper, and the persistence/candidate/bytes
// state that survives across epoch rotations. Nothing here is shared
// with any other Manager.
type Manager struct {
	cfg     Config
	filter  *topk.Filter
	fo      fanout.Estimator
	scorer  *score.Model
	qmapper *queue.Mapper

	candidates map[uint64]struct{}
	persist    map[uint64]int
	bytesSeen  map[uint64]uint64
}

// New constructs a Manager from cfg. It returns no error: enum fields
// fall back to a default in the component they configure (see
// fanout.New, queue.Mapper.MapScore). It panics if cfg.TopK has a
// non-positive Stages or BucketsPerStage (see topk.New) or cfg.Queue a
// non-positive NumQueues (see queue.New).
func New(cfg Config) *Manager {
	return &Manager{
		cfg:        cfg,
		filter:     topk.New(cfg.TopK),
		fo:         fanout.New(cfg.Fanout),
		scorer:     score.New(cfg.Score),
		qmapper:    queue.New(cfg.Queue),
		candidates: make(map[uint64]struct{}),
		persist:    make(map[uint64]int),
		bytesSeen:  make(map[uint64]uint64),
	}
}

// OnPacket folds one packet into the current epoch. size is always
// forwarded to the top-k filter; fan-out and byte accounting only
// happen for keys that were promoted to candidate status by the
// previous EndEpoch.
func (m *Manager) OnPacket(key, other, size uint64) {
	m.filter.Update(key, size)
	if _, isCandidate := m.candidates[key]; isCandidate {
		m.fo.Update(key, other)
		m.bytesSeen[key] += size
	}
}

// EndEpoch closes out the current epoch: it snapshots the detector,
// builds per-key features, scores every heavy key, assigns mitigation
// queues, rotates persistence and the candidate set, and clears all
// per-epoch state. The returned Result is the caller's to keep; the
// Manager retains nothing from it.
func (m *Manager) EndEpoch() Result {
	heavy := dedupeHeavy(m.filter.Snapshot())

	rates := make(map[uint64]float64, len(heavy))
	fanouts := make(map[uint64]float64, len(heavy))
	persists := make(map[uint64]float64, len(heavy))

	epochSeconds := float64(m.cfg.EpochMs) / 1000.0
	if epochSeconds < 1.0 {
		epochSeconds = 1.0
	}

	rateVals := make([]float64, 0, len(heavy))
	fanoutVals := make([]float64, 0, len(heavy))
	persistVals := make([]float64, 0, len(heavy))

	for _, rec := range heavy {
		rate := float64(m.bytesSeen[rec.Key]) / epochSeconds
		fo := m.fo.Estimate(rec.Key)
		persist := float64(m.persist[rec.Key])

		rates[rec.Key] = rate
		fanouts[rec.Key] = fo
		persists[rec.Key] = persist

		rateVals = append(rateVals, rate)
		fanoutVals = append(fanoutVals, fo)
		persistVals = append(persistVals, persist)
	}

	stats := m.scorer.ComputeStats(rateVals, fanoutVals, persistVals)

	scores := make(map[uint64]float64, len(heavy))
	scoreVals := make([]float64, 0, len(heavy))
	for _, rec := range heavy {
		s := m.scorer.Score(rates[rec.Key], fanouts[rec.Key], persists[rec.Key], stats)
		scores[rec.Key] = s
		scoreVals = append(scoreVals, s)
	}

	m.qmapper.Update(scoreVals)
	queueMap := make(map[uint64]int, len(heavy))
	for _, rec := range heavy {
		queueMap[rec.Key] = m.qmapper.MapScore(scores[rec.Key])
	}

	heavyKeySet := make(map[uint64]struct{}, len(heavy))
	for _, rec := range heavy {
		heavyKeySet[rec.Key] = struct{}{}
	}
	m.rotate(heavyKeySet)

	return Result{HeavyKeys: heavy, Scores: scores, QueueMap: queueMap}
}

// dedupeHeavy collapses duplicate keys across stages, keeping the
// maximum count seen for each key. The order of the returned slice is
// stable for a given snapshot ordering but is not otherwise meaningful.
func dedupeHeavy(records []topk.Record) []topk.Record {
	best := make(map[uint64]topk.Record, len(records))
	order := make([]uint64, 0, len(records))
	for _, rec := range records {
		cur, ok := best[rec.Key]
		if !ok {
			order = append(order, rec.Key)
			best[rec.Key] = rec
			continue
		}
		if rec.Count > cur.Count {
			best[rec.Key] = rec
		}
	}
	out := make([]topk.Record, 0, len(order))
	for _, key := range order {
		out = append(out, best[key])
	}
	return out
}

// rotate implements the load-bearing rotation order: persistence is
// updated from the just-closed heavy set before the candidate set is
// replaced, and the candidate set is replaced before the per-epoch
// byte/fanout/detector state is cleared.
func (m *Manager) rotate(heavy map[uint64]struct{}) {
	for key := range heavy {
		m.persist[key] = minInt(m.cfg.PersistK, m.persist[key]+1)
	}
	for key, count := range m.persist {
		if _, ok := heavy[key]; ok {
			continue
		}
		count--
		if count <= 0 {
			delete(m.persist, key)
		} else {
			m.persist[key] = count
		}
	}

	m.candidates = make(map[uint64]struct{}, len(heavy))
	for key := range heavy {
		m.candidates[key] = struct{}{}
	}

	m.bytesSeen = make(map[uint64]uint64)
	m.fo.Reset()
	m.filter.Reset()
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// Persist returns the current persistence count for key (0 if absent);
// exported for tests and for dashboards that want to show persistence
// without waiting on the next EndEpoch.
func (m *Manager) Persist(key uint64) int {
	return m.persist[key]
}

// Candidates returns a snapshot of the current candidate set.
func (m *Manager) Candidates() map[uint64]struct{} {
	out := make(map[uint64]struct{}, len(m.candidates))
	for k := range m.candidates {
		out[k] = struct{}{}
	}
	return out
}
