// Copyright (C) 2016  Arista Networks, Inc.
// Use of this source code is governed by the Apache License 2.0
// that can be found in the COPYING file.

package sink

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/aristanetworks/glog"
	"github.com/garyburd/redigo/redis"

	"github.com/leosat-net/satshield/epoch"
)

// dialRedis connects to server and authenticates if password is set,
// the same connect-then-auth shape as cmd/ocredis's dialRedis.
func dialRedis(server, password string) (redis.Conn, error) {
	c, err := redis.Dial("tcp", server)
	if err != nil {
		return nil, fmt.Errorf("sink: connecting to redis server %s: %w", server, err)
	}
	if password != "" {
		if _, err := c.Do("AUTH", password); err != nil {
			c.Close()
			return nil, fmt.Errorf("sink: authenticating to redis: %w", err)
		}
	}
	return c, nil
}

// newPool builds a redis.Pool against server, the same shape as
// cmd/ocredis's newPool: small idle pool, PING on borrow.
func newPool(server, password string) *redis.Pool {
	return &redis.Pool{
		MaxIdle:     3,
		IdleTimeout: 300 * time.Second,
		Dial: func() (redis.Conn, error) {
			return dialRedis(server, password)
		},
		TestOnBorrow: func(c redis.Conn, t time.Time) error {
			_, err := c.Do("PING")
			return err
		},
	}
}

// RedisSink publishes mitigation events over a Redis pub/sub channel
// and caches the latest per-key state in a hash, mirroring ocredis's
// PUBLISH-plus-HSET pattern.
type RedisSink struct {
	pool    *redis.Pool
	channel string
}

// NewRedisSink builds a RedisSink dialing server, publishing under
// channel.
func NewRedisSink(server, password, channel string) *RedisSink {
	return &RedisSink{pool: newPool(server, password), channel: channel}
}

// Publish pushes result onto the configured pub/sub channel as JSON
// and caches each heavy key's score/queue/count in the Redis hash named
// "<channel>:cache", so a late-joining subscriber can still read current
// state with HGETALL.
func (s *RedisSink) Publish(result epoch.Result) error {
	conn := s.pool.Get()
	defer conn.Close()

	body, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("sink: marshaling epoch result: %w", err)
	}
	if _, err := conn.Do("PUBLISH", s.channel, body); err != nil {
		return fmt.Errorf("sink: redis PUBLISH: %w", err)
	}

	for _, rec := range result.HeavyKeys {
		key := fmt.Sprintf("%d", rec.Key)
		val, err := json.Marshal(map[string]interface{}{
			"score": result.Scores[rec.Key],
			"queue": result.QueueMap[rec.Key],
			"count": rec.Count,
		})
		if err != nil {
			glog.Errorf("sink: marshaling cache entry for key %s: %v", key, err)
			continue
		}
		if _, err := conn.Do("HSET", s.channel+":cache", key, val); err != nil {
			return fmt.Errorf("sink: redis HSET: %w", err)
		}
	}
	return nil
}

// Close releases the underlying connection pool.
func (s *RedisSink) Close() error {
	return s.pool.Close()
}
