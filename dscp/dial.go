// Copyright (C) 2017  Arista Networks, Inc.
// Use of this source code is governed by the Apache License 2.0
// that can be found in the COPYING file.

// Package dscp provides helper functions to apply DSCP / ECN / CoS flags to sockets.
package dscp

import (
	"context"
	"net"
	"syscall"
	"time"

	"github.com/leosat-net/satshield/glog"
)

// DialTCPWithTOS is similar to net.DialTCP but with the socket configured
// to the use the given ToS (Type of Service), to specify DSCP / ECN / class
// of service flags to use for the outgoing connection.
func DialTCPWithTOS(laddr, raddr *net.TCPAddr, tos byte) (*net.TCPConn, error) {
	conn, err := dialWithTOS("tcp", laddrString(laddr), raddr.String(), 0, tos)
	if err != nil {
		return nil, err
	}
	return conn.(*net.TCPConn), nil
}

// DialTimeoutWithTOS is similar to net.DialTimeout but with the socket configured
// to the use the given ToS (Type of Service), to specify DSCP / ECN / class
// of service flags to use for the outgoing connection.
func DialTimeoutWithTOS(network, address string, timeout time.Duration, tos byte) (net.Conn,
	error) {
	return dialWithTOS(network, "", address, timeout, tos)
}

func dialWithTOS(network, localAddr, address string, timeout time.Duration,
	tos byte) (net.Conn, error) {
	l := &glog.Glog{}
	d := net.Dialer{
		Timeout: timeout,
		Control: func(network string, address string, c syscall.RawConn) error {
			return SetTOSLogger(network, c, tos, l)
		},
	}
	if localAddr != "" {
		laddr, err := net.ResolveTCPAddr(network, localAddr)
		if err != nil {
			return nil, err
		}
		d.LocalAddr = laddr
	}
	return d.DialContext(context.Background(), network, address)
}

func laddrString(laddr *net.TCPAddr) string {
	if laddr == nil {
		return ""
	}
	return laddr.String()
}
