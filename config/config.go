// Copyright (c) 2017 Arista Networks, Inc.
// Use of this source code is governed by the Apache License 2.0
// that can be found in the COPYING file.

// Package config loads MS-SatShield's YAML configuration file into the
// component Config structs, applying sane defaults for any field the
// file omits and validating the enum-valued knobs (key_mode, fanout
// mode, queue mapping) at load time. This mirrors the YAML-driven
// config pattern of cmd/ocprometheus's own Config type: plain exported
// fields decoded with gopkg.in/yaml.v2, defaults filled in after
// Unmarshal rather than via struct tags.
package config

import (
	"fmt"
	"io/ioutil"

	"github.com/aristanetworks/glog"
	"gopkg.in/yaml.v2"

	"github.com/leosat-net/satshield/epoch"
	"github.com/leosat-net/satshield/fanout"
	"github.com/leosat-net/satshield/queue"
	"github.com/leosat-net/satshield/score"
	"github.com/leosat-net/satshield/topk"
)

// TopKFile is the YAML shape of the `topk:` block.
type TopKFile struct {
	Stages              int    `yaml:"stages"`
	BucketsPerStage     int    `yaml:"buckets_per_stage"`
	HeavyThresholdBytes uint64 `yaml:"heavy_threshold_bytes"`
	KeyMode             string `yaml:"key_mode"`
}

// FanoutFile is the YAML shape of the `fanout:` block.
type FanoutFile struct {
	Mode       string `yaml:"mode"`
	BitmapBits int    `yaml:"bitmap_bits"`
	HLLP       int    `yaml:"hll_p"`
	HLLRegBits int    `yaml:"hll_reg_bits"`
}

// ScoreFile is the YAML shape of the `score:` block.
type ScoreFile struct {
	Alpha    float64 `yaml:"alpha"`
	Beta     float64 `yaml:"beta"`
	Gamma    float64 `yaml:"gamma"`
	PersistK int     `yaml:"persist_k"`
	NormMode string  `yaml:"norm_mode"`
}

// QueueFile is the YAML shape of the `queue:` block.
type QueueFile struct {
	NumQueues int    `yaml:"num_queues"`
	Mapping   string `yaml:"mapping"`
}

// EpochFile is the YAML shape of the `epoch:` block.
type EpochFile struct {
	EpochMs  int `yaml:"epoch_ms"`
	PersistK int `yaml:"persist_k"`
}

// KafkaFile is the YAML shape of the optional `kafka:` block
// consumed by cmd/satshield-server's mitigation-event publisher.
type KafkaFile struct {
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
}

// MetricsFile is the YAML shape of the optional `metrics:` block.
type MetricsFile struct {
	ListenAddr string `yaml:"listen_addr"`
}

// File is the top-level YAML document.
type File struct {
	TopK    TopKFile    `yaml:"topk"`
	Fanout  FanoutFile  `yaml:"fanout"`
	Score   ScoreFile   `yaml:"score"`
	Queue   QueueFile   `yaml:"queue"`
	Epoch   EpochFile   `yaml:"epoch"`
	Kafka   KafkaFile   `yaml:"kafka"`
	Metrics MetricsFile `yaml:"metrics"`
}

// defaultHeavyThresholdBytes is the operational default: config.Load
// opinionates toward a non-zero threshold for deployments, while the
// bare topk.Config{} zero value keeps defaulting to 0 so library users
// constructing a Config by hand get "every occupied bucket is heavy"
// unless they ask otherwise.
const defaultHeavyThresholdBytes = 64

// applyDefaults fills in any zero-valued field with its operational
// default.
func (f *File) applyDefaults() {
	if f.TopK.Stages == 0 {
		f.TopK.Stages = 8
	}
	if f.TopK.BucketsPerStage == 0 {
		f.TopK.BucketsPerStage = 2048
	}
	if f.TopK.KeyMode == "" {
		f.TopK.KeyMode = "src+dst"
	}
	if f.TopK.HeavyThresholdBytes == 0 {
		f.TopK.HeavyThresholdBytes = defaultHeavyThresholdBytes
	}
	if f.Fanout.Mode == "" {
		f.Fanout.Mode = "bitmap"
	}
	if f.Fanout.BitmapBits == 0 {
		f.Fanout.BitmapBits = 256
	}
	if f.Fanout.HLLP == 0 {
		f.Fanout.HLLP = 6
	}
	if f.Fanout.HLLRegBits == 0 {
		f.Fanout.HLLRegBits = 6
	}
	if f.Score.Alpha == 0 && f.Score.Beta == 0 && f.Score.Gamma == 0 {
		f.Score.Alpha, f.Score.Beta, f.Score.Gamma = 0.6, 0.3, 0.1
	}
	if f.Score.PersistK == 0 {
		f.Score.PersistK = 3
	}
	if f.Score.NormMode == "" {
		f.Score.NormMode = "p99"
	}
	if f.Queue.NumQueues == 0 {
		f.Queue.NumQueues = 4
	}
	if f.Queue.Mapping == "" {
		f.Queue.Mapping = "sigmoid"
	}
	if f.Epoch.EpochMs == 0 {
		f.Epoch.EpochMs = 1000
	}
	if f.Epoch.PersistK == 0 {
		f.Epoch.PersistK = f.Score.PersistK
	}
}

// validate checks the enum-valued knobs and returns a configuration
// error for any unsupported value.
func (f *File) validate() error {
	switch f.TopK.KeyMode {
	case "src", "dst", "src+dst":
	default:
		return fmt.Errorf("config: unsupported key_mode %q", f.TopK.KeyMode)
	}
	switch f.Fanout.Mode {
	case "bitmap", "hll-lite":
	default:
		return fmt.Errorf("config: unsupported fanout mode %q", f.Fanout.Mode)
	}
	switch f.Queue.Mapping {
	case "sigmoid", "quantile":
	default:
		return fmt.Errorf("config: unsupported queue mapping %q", f.Queue.Mapping)
	}
	if f.Score.NormMode != "p99" {
		glog.Warningf("config: norm_mode %q is not implemented, falling back to p99", f.Score.NormMode)
	}
	return nil
}

// Load reads and decodes the YAML file at path, applies defaults and
// validates it.
func Load(path string) (*File, error) {
	raw, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}
	var f File
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	f.applyDefaults()
	if err := f.validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

// EpochConfig converts the decoded File into an epoch.Config ready to
// build a Manager or MultiKeyManager from.
func (f *File) EpochConfig() epoch.Config {
	return epoch.Config{
		TopK: topk.Config{
			Stages:              f.TopK.Stages,
			BucketsPerStage:     f.TopK.BucketsPerStage,
			HeavyThresholdBytes: f.TopK.HeavyThresholdBytes,
		},
		Fanout: fanout.Config{
			Mode:       fanout.Mode(f.Fanout.Mode),
			BitmapBits: f.Fanout.BitmapBits,
			HLLP:       f.Fanout.HLLP,
			HLLRegBits: f.Fanout.HLLRegBits,
		},
		Score: score.Config{
			Alpha:    f.Score.Alpha,
			Beta:     f.Score.Beta,
			Gamma:    f.Score.Gamma,
			PersistK: f.Score.PersistK,
			NormMode: f.Score.NormMode,
		},
		Queue: queue.Config{
			NumQueues: f.Queue.NumQueues,
			Mapping:   queue.Mapping(f.Queue.Mapping),
		},
		EpochMs:  f.Epoch.EpochMs,
		PersistK: f.Epoch.PersistK,
	}
}

// KeyMode returns the validated key_mode as an epoch.KeyMode.
func (f *File) KeyMode() epoch.KeyMode {
	return epoch.KeyMode(f.TopK.KeyMode)
}

// DefaultHeavyThresholdBytes exposes the operational default applied
// when a config file leaves heavy_threshold_bytes unset.
func DefaultHeavyThresholdBytes() uint64 {
	return defaultHeavyThresholdBytes
}
