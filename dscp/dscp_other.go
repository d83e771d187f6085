// Copyright (c) 2021 Arista Networks, Inc.
// Use of this source code is governed by the Apache License 2.0
// that can be found in the COPYING file.

//go:build !linux && !darwin
// +build !linux,!darwin

package dscp

import (
	"errors"
	"net"
	"syscall"

	"github.com/leosat-net/satshield/logger"
)

// ListenTCPWithTOS is similar to net.ListenTCP but with the socket configured
// to the use the given ToS (Type of Service), to specify DSCP / ECN / class
// of service flags to use for incoming connections.
func ListenTCPWithTOS(address *net.TCPAddr, tos byte) (*net.TCPListener, error) {
	if tos != 0 {
		return nil, errors.New("TOS is not supported by this library on this platform")
	}
	return net.ListenTCP("tcp", address)
}

// ListenTCPWithTOSLogger is similar to net.ListenTCP but with the
// socket configured to the use the given ToS (Type of Service), to
// specify DSCP / ECN / class of service flags to use for incoming
// connections. Allows passing in a Logger.
func ListenTCPWithTOSLogger(address *net.TCPAddr, tos byte, l logger.Logger) (*net.TCPListener,
	error) {
	return ListenTCPWithTOS(address, tos)
}

// SetTOS is the non-unix stub of the TOS setter: it sets nothing and
// returns an error for any non-zero tos.
func SetTOS(network string, c syscall.RawConn, tos byte) error {
	return SetTOSLogger(network, c, tos, logger.Std)
}

// SetTOSLogger is the non-unix stub of SetTOS; l is unused since there
// is nothing to log on a platform that can't set the socket option.
func SetTOSLogger(network string, c syscall.RawConn, tos byte, l logger.Logger) error {
	if tos != 0 {
		return errors.New("TOS is not supported by this library on this platform")
	}
	return nil
}
