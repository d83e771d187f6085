// Copyright (c) 2018 Arista Networks, Inc.
// Use of this source code is governed by the Apache License 2.0
// that can be found in the COPYING file.

// Package sink writes epoch results to long-term storage backends.
// The InfluxDB writer follows influxlib's connect-then-write-point
// shape: a thin wrapper around the official v2 HTTP client building
// one batch of points per call.
package sink

import (
	"fmt"
	"time"

	influxdb "github.com/influxdata/influxdb1-client/v2"

	"github.com/leosat-net/satshield/epoch"
)

// InfluxConfig configures the connection to an InfluxDB v1 server.
type InfluxConfig struct {
	Addr            string
	Database        string
	RetentionPolicy string
}

// InfluxSink writes per-key epoch measurements to InfluxDB.
type InfluxSink struct {
	client influxdb.Client
	cfg    InfluxConfig
}

// NewInfluxSink dials addr over HTTP with a 1-second timeout, the
// same timeout influxlib.Connect uses for its HTTP client.
func NewInfluxSink(cfg InfluxConfig) (*InfluxSink, error) {
	client, err := influxdb.NewHTTPClient(influxdb.HTTPConfig{
		Addr:    cfg.Addr,
		Timeout: 1 * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("sink: connecting to influxdb at %s: %w", cfg.Addr, err)
	}
	return &InfluxSink{client: client, cfg: cfg}, nil
}

// WriteResult stores one measurement per heavy key in result under the
// "satshield_epoch" measurement, tagged by key and carrying score,
// queue and count as fields.
func (s *InfluxSink) WriteResult(result epoch.Result) error {
	bp, err := influxdb.NewBatchPoints(influxdb.BatchPointsConfig{
		Database:        s.cfg.Database,
		Precision:       "ns",
		RetentionPolicy: s.cfg.RetentionPolicy,
	})
	if err != nil {
		return err
	}

	now := time.Now()
	for _, rec := range result.HeavyKeys {
		tags := map[string]string{"key": fmt.Sprintf("%d", rec.Key)}
		fields := map[string]interface{}{
			"score": result.Scores[rec.Key],
			"queue": result.QueueMap[rec.Key],
			"count": rec.Count,
		}
		pt, err := influxdb.NewPoint("satshield_epoch", tags, fields, now)
		if err != nil {
			return err
		}
		bp.AddPoint(pt)
	}
	return s.client.Write(bp)
}

// Close releases the underlying HTTP client's resources.
func (s *InfluxSink) Close() error {
	return s.client.Close()
}
