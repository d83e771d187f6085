// Copyright (c) 2017 Arista Networks, Inc.
// Use of this source code is governed by the Apache License 2.0
// that can be found in the COPYING file.

// The satshield-server command runs MS-SatShield against a live or
// replayed packet stream, exposing per-epoch detection results as
// Prometheus metrics and, optionally, publishing mitigation events to
// Kafka.
package main

import (
	"context"
	"flag"
	"net/http"
	"time"

	"github.com/Shopify/sarama"
	"github.com/aristanetworks/glog"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/leosat-net/satshield/config"
	"github.com/leosat-net/satshield/epoch"
	"github.com/leosat-net/satshield/ingest"
	"github.com/leosat-net/satshield/metrics"
	"github.com/leosat-net/satshield/monitor"
	"github.com/leosat-net/satshield/publish"
	"github.com/leosat-net/satshield/traffic"
)

var (
	configFlag  = flag.String("config", "", "Path to the satshield YAML config file")
	ingestFlag  = flag.String("ingest", "", "Address of a trace-replay source to connect to")
	listenAddr  = flag.String("listenaddr", ":9108", "Address on which to expose Prometheus metrics")
	metricsURL  = flag.String("metricsurl", "/metrics", "URL path at which metrics are exposed")
)

func main() {
	flag.Parse()
	if *configFlag == "" {
		glog.Fatal("You need to specify a config file using -config")
	}
	if *ingestFlag == "" {
		glog.Fatal("You need to specify a trace-replay source using -ingest")
	}

	cfg, err := config.Load(*configFlag)
	if err != nil {
		glog.Fatal(err)
	}

	detector, err := epoch.NewMultiKeyManager(cfg.EpochConfig(), cfg.KeyMode())
	if err != nil {
		glog.Fatal(err)
	}

	coll := metrics.NewCollector()
	prometheus.MustRegister(coll)

	var kafkaProducer publish.Producer
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaProducer, err = publish.New(cfg.Kafka.Brokers, cfg.Kafka.Topic, sarama.NewConfig())
		if err != nil {
			glog.Fatalf("Can't create kafka producer: %v", err)
		}
		kafkaProducer.Start()
		defer kafkaProducer.Stop()
	}

	client := ingest.New(*ingestFlag, 10*time.Second)
	packets := make(chan traffic.Packet, 4096)

	g, ctx := errgroup.WithContext(context.Background())
	g.Go(func() error {
		client.Run(packets)
		return nil
	})
	g.Go(func() error {
		return runEpochLoop(ctx, detector, packets, time.Duration(cfg.Epoch.EpochMs)*time.Millisecond, coll, kafkaProducer)
	})

	http.Handle(*metricsURL, promhttp.Handler())
	monitor.RegisterDebugHandlers(http.DefaultServeMux)
	go func() {
		if err := http.ListenAndServe(*listenAddr, nil); err != nil {
			glog.Errorf("metrics server stopped: %v", err)
		}
	}()

	if err := g.Wait(); err != nil {
		glog.Fatal(err)
	}
}

// runEpochLoop feeds packets into detector as they arrive and closes
// out an epoch every tick, pushing each epoch's result to coll and,
// if configured, to the Kafka producer.
func runEpochLoop(ctx context.Context, detector *epoch.MultiKeyManager, packets <-chan traffic.Packet,
	epochDuration time.Duration, coll *metrics.Collector, producer publish.Producer) error {
	ticker := time.NewTicker(epochDuration)
	defer ticker.Stop()

	var epochIndex int64
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case p, open := <-packets:
			if !open {
				return nil
			}
			detector.OnPacket(p.Src, p.Dst, p.Size)
		case <-ticker.C:
			result := detector.EndEpoch()
			if src, ok := result.Results["src"]; ok {
				coll.Observe(src)
				publishResult(producer, epochIndex, src)
			}
			if dst, ok := result.Results["dst"]; ok {
				publishResult(producer, epochIndex, dst)
			}
			epochIndex++
		}
	}
}

func publishResult(producer publish.Producer, epochIndex int64, result epoch.Result) {
	if producer == nil {
		return
	}
	for _, rec := range result.HeavyKeys {
		ev := publish.EventFromResult(epochIndex, rec.Key, result.Scores[rec.Key], result.QueueMap[rec.Key])
		producer.Write(ev)
	}
}
