//
//
// Tencent is pleased to support the open source community by making tRPC available.
//
// Copyright (C) 2023 THL A29 Limited, a Tencent company.
// All rights reserved.
//
// If you have downloaded a copy of the tRPC source code from Tencent,
// please note that tRPC source code is licensed under the  Apache 2.0 License,
// A copy of the Apache 2.0 License is included in this file.
//
//

//go:build linux || freebsd || dragonfly || darwin
// +build linux freebsd dragonfly darwin

// Package netutil provides socket level helpers for udp handles.
package netutil

import (
	"net"
	"os"
	"syscall"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// GetFD returns the integer Unix file descriptor referencing the udp socket.
// The descriptor stays owned by socket, callers must not close it.
func GetFD(socket interface{}) (int, error) {
	conn, ok := socket.(syscall.Conn)
	if !ok {
		return -1, errors.Errorf("type %T doesn't implement syscall.Conn interface", socket)
	}
	rawConn, err := conn.SyscallConn()
	if err != nil {
		return -1, errors.Wrap(err, "get raw connection fail")
	}

	fd := -1
	err = rawConn.Control(func(sysfd uintptr) {
		fd = int(sysfd)
	})
	if err != nil {
		return -1, err
	}
	if fd == -1 {
		return -1, errors.New("invalid file descriptor")
	}
	return fd, nil
}

// DupUDP duplicates the file descriptor behind conn and wraps the duplicate
// in a new *net.UDPConn. Both conns refer to the same socket: they share the
// receive queue and bound address, but each one is closed independently.
// Conn must stay open for the duration of the call.
func DupUDP(conn *net.UDPConn) (*net.UDPConn, error) {
	fd, err := GetFD(conn)
	if err != nil {
		return nil, err
	}
	nfd, err := unix.FcntlInt(uintptr(fd), unix.F_DUPFD_CLOEXEC, 0)
	if err != nil {
		return nil, errors.Wrapf(err, "dup udp socket fd %d fail", fd)
	}

	// net.FilePacketConn dups once more, f only lives for the call.
	f := os.NewFile(uintptr(nfd), "udp-dup")
	defer f.Close()
	pc, err := net.FilePacketConn(f)
	if err != nil {
		return nil, errors.Wrap(err, "wrap duplicated socket fail")
	}
	uc, ok := pc.(*net.UDPConn)
	if !ok {
		pc.Close()
		return nil, errors.Errorf("duplicated socket is %T, not *net.UDPConn", pc)
	}
	return uc, nil
}

// Truncated reports whether the recvmsg flags say the datagram was larger
// than the buffer it was read into.
func Truncated(flags int) bool {
	return flags&unix.MSG_TRUNC != 0
}
