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
	"testing"
	"time"

	"github.com/netlab/udpecho/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSocketReferences(t *testing.T) {
	h, err := Bind("udp", "127.0.0.1:0", false)
	require.Nil(t, err)
	assert.Equal(t, 1, h.sock.references())

	dup1, err := h.Duplicate()
	require.Nil(t, err)
	dup2, err := dup1.Duplicate()
	require.Nil(t, err)
	assert.Same(t, h.sock, dup2.sock)
	assert.Equal(t, 3, h.sock.references())

	require.Nil(t, h.Close())
	require.Nil(t, h.Close())
	assert.Equal(t, 2, h.sock.references())
	require.Nil(t, dup1.Close())
	assert.Equal(t, 1, h.sock.references())
	require.Nil(t, dup2.Close())
	assert.Equal(t, 0, h.sock.references())
	assert.False(t, h.sock.acquire())
}

func TestSocketDuplicateFDOwnsItsCore(t *testing.T) {
	h, err := Bind("udp", "127.0.0.1:0", false)
	require.Nil(t, err)
	defer h.Close()

	dup, err := h.DuplicateFD()
	require.Nil(t, err)
	assert.NotSame(t, h.sock, dup.sock)
	assert.Equal(t, 1, h.sock.references())
	assert.Equal(t, 1, dup.sock.references())
	require.Nil(t, dup.Close())
	assert.True(t, h.IsActive())
}

func TestTaskReplies(t *testing.T) {
	client, err := Bind("udp", "127.0.0.1:0", false)
	require.Nil(t, err)
	defer client.Close()
	server, err := Bind("udp", "127.0.0.1:0", false)
	require.Nil(t, err)
	defer server.Close()
	dup, err := server.Duplicate()
	require.Nil(t, err)

	done := make(chan error, 1)
	opts := &options{}
	opts.setDefault()
	opts.replyTimeout = time.Second
	opts.onTaskDone = func(peer net.Addr, reply []byte, err error) {
		assert.Equal(t, client.LocalAddr().String(), peer.String())
		assert.Equal(t, "Echo: hi", string(reply))
		done <- err
	}
	sent := metrics.Get(metrics.RepliesSent)
	newTask(dup, Datagram{Payload: []byte("hi"), Addr: client.LocalAddr()}, opts).run()
	assert.Nil(t, <-done)
	assert.False(t, dup.IsActive())
	assert.True(t, server.IsActive())
	assert.Equal(t, sent+1, metrics.Get(metrics.RepliesSent))

	require.Nil(t, client.SetReadDeadline(time.Now().Add(time.Second)))
	b := make([]byte, 64)
	n, _, err := client.ReceiveFrom(b)
	require.Nil(t, err)
	assert.Equal(t, "Echo: hi", string(b[:n]))
}

func TestTaskSendFailureEndsTask(t *testing.T) {
	server, err := Bind("udp", "127.0.0.1:0", false)
	require.Nil(t, err)
	defer server.Close()
	dup, err := server.Duplicate()
	require.Nil(t, err)
	// A closed handle makes the send fail without touching the network.
	require.Nil(t, dup.Close())

	done := make(chan error, 1)
	opts := &options{}
	opts.setDefault()
	opts.onTaskDone = func(_ net.Addr, _ []byte, err error) { done <- err }
	fails := metrics.Get(metrics.ReplySendFails)
	peer := &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 9}
	newTask(dup, Datagram{Payload: []byte("x"), Addr: peer}, opts).run()
	assert.ErrorIs(t, <-done, ErrHandleClosed)
	assert.Equal(t, fails+1, metrics.Get(metrics.ReplySendFails))
}

func TestTaskPoolRecoversPanic(t *testing.T) {
	pool, err := newTaskPool(0)
	require.Nil(t, err)
	defer pool.Release()

	h, err := Bind("udp", "127.0.0.1:0", false)
	require.Nil(t, err)
	defer h.Close()
	dup, err := h.Duplicate()
	require.Nil(t, err)

	panicked := metrics.Get(metrics.TasksPanicked)
	opts := &options{}
	opts.setDefault()
	opts.onTaskDone = func(net.Addr, []byte, error) { panic("boom") }
	require.Nil(t, pool.Invoke(newTask(dup, Datagram{Payload: []byte("x"), Addr: h.LocalAddr()}, opts)))
	assert.Eventually(t, func() bool {
		return metrics.Get(metrics.TasksPanicked) == panicked+1
	}, time.Second, 5*time.Millisecond)
	assert.False(t, dup.IsActive())
}

func TestNextRetryDelay(t *testing.T) {
	var d time.Duration
	var got []time.Duration
	for i := 0; i < 10; i++ {
		d = nextRetryDelay(d)
		got = append(got, d)
	}
	assert.Equal(t, minRetryDelay, got[0])
	assert.Equal(t, 2*minRetryDelay, got[1])
	assert.Equal(t, maxRetryDelay, got[len(got)-1])
	for i := 1; i < len(got); i++ {
		assert.GreaterOrEqual(t, got[i], got[i-1])
		assert.LessOrEqual(t, got[i], maxRetryDelay)
	}
}

func TestServerRejectReleasesDuplicate(t *testing.T) {
	h, err := Bind("udp", "127.0.0.1:0", false)
	require.Nil(t, err)
	release := make(chan struct{})
	started := make(chan struct{}, 1)
	s, err := NewServer(h,
		WithMaxWorkers(1),
		WithOnTaskDone(func(net.Addr, []byte, error) {
			started <- struct{}{}
			<-release
		}),
	)
	require.Nil(t, err)
	defer close(release)

	peer := &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 9}
	s.dispatch(Datagram{Payload: []byte("first"), Addr: peer})
	<-started
	assert.Equal(t, 1, h.sock.references())

	rejected := metrics.Get(metrics.TasksRejected)
	s.dispatch(Datagram{Payload: []byte("second"), Addr: peer})
	assert.Equal(t, rejected+1, metrics.Get(metrics.TasksRejected))
	// Only the primary handle still holds the socket.
	assert.Equal(t, 1, h.sock.references())
	assert.True(t, h.IsActive())
	s.pool.Release()
	require.Nil(t, h.Close())
}
