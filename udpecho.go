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

// Package udpecho provides a concurrent udp echo server that hands every
// received datagram to its own worker task, and the duplicable socket
// handle the server is built on.
package udpecho

import (
	"context"
	"net"
)

const (
	// DefaultMaxDatagramSize is the size of the receive buffer. Larger datagrams are truncated.
	DefaultMaxDatagramSize = 1024
	// DefaultReplyPrefix is put in front of the decoded text of every reply.
	DefaultReplyPrefix = "Echo: "
	// DefaultAddress is the address the echo server binds when none is configured.
	DefaultAddress = "127.0.0.1:5555"
)

// Service provides startup method to udp server.
type Service interface {
	// Serve runs the receive loop blockingly until ctx is done or the
	// handle it owns is closed.
	Serve(ctx context.Context) error
}

// Datagram is one received udp message.
type Datagram struct {
	// Payload holds the received bytes. Payloads returned by Handle.ReceiveDatagram
	// alias the caller's buffer, use Clone before handing them to another goroutine.
	Payload []byte
	// Addr is the sender address.
	Addr net.Addr
	// Truncated is set when the datagram did not fit into the receive buffer
	// and the kernel discarded its tail.
	Truncated bool
}

// Err returns ErrTruncated for a truncated datagram and nil otherwise.
func (d Datagram) Err() error {
	if d.Truncated {
		return ErrTruncated
	}
	return nil
}

// Clone returns a copy of d that owns its payload.
func (d Datagram) Clone() Datagram {
	p := make([]byte, len(d.Payload))
	copy(p, d.Payload)
	d.Payload = p
	return d
}
