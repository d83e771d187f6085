// Copyright (C) 2016  Arista Networks, Inc.
// Use of this source code is governed by the Apache License 2.0
// that can be found in the COPYING file.

// Package publish forwards mitigation decisions to Kafka, using the
// same start/run/stop goroutine shape as kafka/producer: a buffered
// channel feeds a single run loop, separate goroutines drain the
// underlying sarama.AsyncProducer's Successes()/Errors() channels, and
// Stop closes the done channel and waits for all three to exit.
package publish

import (
	"encoding/json"
	"os"
	"strconv"
	"sync"

	"github.com/Shopify/sarama"
	"github.com/aristanetworks/glog"
)

// Event is one key's mitigation decision, published as a JSON message
// keyed by the string form of Key so consumers can partition on it.
type Event struct {
	Epoch int64   `json:"epoch"`
	Key   uint64  `json:"key"`
	Score float64 `json:"score"`
	Queue int     `json:"queue"`
}

// Producer forwards mitigation events to Kafka.
type Producer interface {
	Start()
	Write(Event)
	Stop()
}

type producer struct {
	topic      string
	eventsChan chan Event
	kproducer  sarama.AsyncProducer
	done       chan struct{}
	wg         sync.WaitGroup
}

// New creates a Kafka producer publishing to topic on brokers. A nil
// kafkaConfig gets the same conservative defaults kafka/producer uses:
// snappy compression, acks from all ISR replicas, success tracking on.
func New(brokers []string, topic string, kafkaConfig *sarama.Config) (Producer, error) {
	if kafkaConfig == nil {
		kafkaConfig = sarama.NewConfig()
		hostname, err := os.Hostname()
		if err != nil {
			hostname = ""
		}
		kafkaConfig.ClientID = hostname
		kafkaConfig.Producer.Compression = sarama.CompressionSnappy
		kafkaConfig.Producer.Return.Successes = true
		kafkaConfig.Producer.RequiredAcks = sarama.WaitForAll
	}

	kproducer, err := sarama.NewAsyncProducer(brokers, kafkaConfig)
	if err != nil {
		return nil, err
	}

	p := &producer{
		topic:      topic,
		eventsChan: make(chan Event, 1024),
		kproducer:  kproducer,
		done:       make(chan struct{}),
	}
	return p, nil
}

// Start makes the producer begin processing writes. Non-blocking.
func (p *producer) Start() {
	p.wg.Add(3)
	go p.handleSuccesses()
	go p.handleErrors()
	go p.run()
}

func (p *producer) run() {
	defer p.wg.Done()
	for {
		select {
		case ev, open := <-p.eventsChan:
			if !open {
				return
			}
			if err := p.produce(ev); err != nil {
				glog.Errorf("publish: encoding mitigation event: %v", err)
			}
		case <-p.done:
			return
		}
	}
}

// Write enqueues ev for publishing. Blocks if the internal buffer is
// full; callers on the epoch hot path should size their buffer or
// drop events rather than stall ingestion indefinitely.
func (p *producer) Write(ev Event) {
	p.eventsChan <- ev
}

func (p *producer) Stop() {
	close(p.done)
	p.kproducer.Close()
	p.wg.Wait()
}

func (p *producer) produce(ev Event) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	message := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(strconv.FormatUint(ev.Key, 10)),
		Value: sarama.ByteEncoder(body),
	}
	select {
	case p.kproducer.Input() <- message:
		glog.V(9).Infof("publish: produced mitigation event for key %d", ev.Key)
		return nil
	case <-p.done:
		return nil
	}
}

func (p *producer) handleSuccesses() {
	defer p.wg.Done()
	for msg := range p.kproducer.Successes() {
		glog.V(9).Infof("publish: kafka ack for partition %d offset %d", msg.Partition, msg.Offset)
	}
}

func (p *producer) handleErrors() {
	defer p.wg.Done()
	for err := range p.kproducer.Errors() {
		glog.Errorf("publish: kafka producer error: %v", err)
	}
}

// EventFromResult converts one key's epoch.Result fields into an
// Event ready to publish.
func EventFromResult(epochIndex int64, key uint64, score float64, queue int) Event {
	return Event{Epoch: epochIndex, Key: key, Score: score, Queue: queue}
}
