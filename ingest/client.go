// Copyright (c) 2016 Arista Networks, Inc.
// Use of this source code is governed by the Apache License 2.0
// that can be found in the COPYING file.

// Package ingest implements a trace-replay client that connects to a
// streaming packet source, decodes length-prefixed JSON-encoded
// traffic.Packet records, and forwards them over a channel. It
// follows the same connect/read/reconnect loop shape as lanz.Client,
// swapping lanz's fixed-interval retry for an exponential backoff
// from cenkalti/backoff/v4.
package ingest

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"io"
	"net"
	"sync"
	"time"

	"github.com/aristanetworks/glog"
	"github.com/cenkalti/backoff/v4"

	"github.com/leosat-net/satshield/dscp"
	"github.com/leosat-net/satshield/traffic"
)

// Client is the trace-replay client interface.
type Client interface {
	// Run connects to the configured address and streams decoded
	// packets to ch, reconnecting automatically on any error until
	// Stop is called.
	Run(ch chan<- traffic.Packet)
	// Stop tears down the client; Run's goroutine will close ch and
	// return once any in-flight read unblocks.
	Stop()
}

// expeditedForwardingTOS is the DSCP Expedited Forwarding codepoint
// (RFC 3246), shifted into the IPv4 ToS byte's 6 DSCP bits.
const expeditedForwardingTOS = 0x2e << 2

type client struct {
	sync.Mutex
	addr      string
	timeout   time.Duration
	tos       byte
	stop      chan struct{}
	connected bool
	conn      net.Conn
}

// New creates a client dialing addr with the given connect timeout.
// The connection is marked with the Expedited Forwarding DSCP
// codepoint so telemetry ingest keeps priority over best-effort
// traffic on a link a volumetric attack is saturating.
func New(addr string, timeout time.Duration) Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &client{
		addr:    addr,
		timeout: timeout,
		tos:     expeditedForwardingTOS,
		stop:    make(chan struct{}),
	}
}

func (c *client) setConnected(connected bool) {
	c.Lock()
	defer c.Unlock()
	if c.connected && !connected && c.conn != nil {
		c.conn.Close()
	}
	c.connected = connected
}

// Run connects, reads, and reconnects with exponential backoff until
// Stop is called.
func (c *client) Run(ch chan<- traffic.Packet) {
	defer func() {
		close(ch)
		c.setConnected(false)
	}()

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = 0 // retry forever; only Stop ends the loop

	for {
		select {
		case <-c.stop:
			return
		default:
		}

		conn, err := dscp.DialTimeoutWithTOS("tcp", c.addr, c.timeout, c.tos)
		if err != nil {
			wait := bo.NextBackOff()
			glog.V(1).Infof("ingest: can't connect to %s: %v, retrying in %v", c.addr, err, wait)
			select {
			case <-c.stop:
				return
			case <-time.After(wait):
				continue
			}
		}
		bo.Reset()
		glog.V(1).Infof("ingest: connected to %s", c.addr)
		c.Lock()
		c.conn = conn
		c.Unlock()
		c.setConnected(true)

		if err := c.read(bufio.NewReader(conn), ch); err != nil {
			select {
			case <-c.stop:
				return
			default:
				if err != io.EOF && err != io.ErrUnexpectedEOF {
					glog.Errorf("ingest: error reading from %s: %v", c.addr, err)
				}
				c.setConnected(false)
			}
		}
	}
}

// read decodes length-prefixed JSON-encoded traffic.Packet records
// until the connection errors or Stop is called.
func (c *client) read(r *bufio.Reader, ch chan<- traffic.Packet) error {
	for {
		select {
		case <-c.stop:
			return nil
		default:
			length, err := binary.ReadUvarint(r)
			if err != nil {
				return err
			}
			buf := make([]byte, length)
			if _, err := io.ReadFull(r, buf); err != nil {
				return err
			}
			var p traffic.Packet
			if err := json.Unmarshal(buf, &p); err != nil {
				return err
			}
			ch <- p
		}
	}
}

func (c *client) Stop() {
	close(c.stop)
	c.setConnected(false)
}
