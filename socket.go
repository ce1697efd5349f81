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

package udpecho

import (
	"net"

	"github.com/netlab/udpecho/metrics"
	"go.uber.org/atomic"
)

// socket is the reference counted core shared by a handle and its duplicates.
// Sends and receives go straight to conn, which is safe for concurrent use,
// so the counter is the only state that needs synchronizing.
type socket struct {
	conn *net.UDPConn
	refs atomic.Int32
}

func newSocket(conn *net.UDPConn) *socket {
	s := &socket{conn: conn}
	s.refs.Store(1)
	return s
}

// acquire takes one more reference. It fails once the last reference is gone,
// a released socket never comes back.
func (s *socket) acquire() bool {
	for {
		n := s.refs.Load()
		if n <= 0 {
			return false
		}
		if s.refs.CompareAndSwap(n, n+1) {
			return true
		}
	}
}

// release drops one reference and closes conn with the last one.
func (s *socket) release() error {
	if s.refs.Dec() != 0 {
		return nil
	}
	metrics.Add(metrics.SocketsReleased, 1)
	return s.conn.Close()
}

func (s *socket) references() int {
	return int(s.refs.Load())
}
