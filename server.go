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
	"context"
	"net"
	"time"

	"github.com/netlab/udpecho/internal/bufpool"
	"github.com/netlab/udpecho/log"
	"github.com/netlab/udpecho/metrics"
	"github.com/panjf2000/ants/v2"
	"github.com/pkg/errors"
	"go.uber.org/atomic"
)

// aLongTimeAgo is a deadline in the past, setting it wakes a blocked receive.
var aLongTimeAgo = time.Unix(1, 0)

// Server is the echo server. It owns the primary handle, receives datagrams
// one at a time and spawns a worker task for each of them.
type Server struct {
	h       *Handle
	opts    options
	pool    *ants.PoolWithFunc
	serving atomic.Bool
}

var _ Service = (*Server)(nil)

// NewServer creates an echo server on the primary handle h. The server takes
// ownership of h and closes it when Serve returns.
func NewServer(h *Handle, opt ...Option) (*Server, error) {
	if h == nil || !h.IsActive() {
		return nil, errors.New("udpecho: server needs an open handle")
	}
	var opts options
	opts.setDefault()
	for _, o := range opt {
		o.f(&opts)
	}
	if opts.maxDatagramSize <= 0 {
		return nil, errors.Errorf("udpecho: invalid max datagram size %d", opts.maxDatagramSize)
	}
	switch opts.truncation {
	case TruncateAccept, TruncateDrop:
	default:
		return nil, errors.Errorf("udpecho: invalid truncation policy %d", opts.truncation)
	}
	pool, err := newTaskPool(opts.maxWorkers)
	if err != nil {
		return nil, errors.Wrap(err, "udpecho: create task pool")
	}
	return &Server{h: h, opts: opts, pool: pool}, nil
}

// ListenAndServe binds address and serves on it until ctx is done.
// A bind failure is returned as a *BindError before any datagram is read.
func ListenAndServe(ctx context.Context, network, address string, opt ...Option) error {
	h, err := Bind(network, address, false)
	if err != nil {
		return err
	}
	s, err := NewServer(h, opt...)
	if err != nil {
		h.Close()
		return err
	}
	return s.Serve(ctx)
}

// Addr returns the address the server receives on.
func (s *Server) Addr() net.Addr {
	return s.h.LocalAddr()
}

// Running returns the number of worker tasks currently running.
func (s *Server) Running() int {
	return s.pool.Running()
}

// Serve runs the receive loop. It returns ctx.Err() once ctx is done and
// ErrHandleClosed when the primary handle is closed by someone else. A close
// from elsewhere ends a blocked receive only once no task holds the socket.
// Worker tasks still running when Serve returns finish on their own, the
// socket is released when the last of them closes its handle.
func (s *Server) Serve(ctx context.Context) error {
	if !s.serving.CompareAndSwap(false, true) {
		return errors.New("udpecho: server is already serving")
	}
	defer s.pool.Release()
	defer s.h.Close()

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			s.h.SetReadDeadline(aLongTimeAgo)
		case <-stop:
		}
	}()

	log.Infof("udpecho server listening on %s, max datagram size %d, max workers %d",
		s.h.LocalAddr(), s.opts.maxDatagramSize, s.opts.maxWorkers)

	buf := make([]byte, s.opts.maxDatagramSize)
	var retryDelay time.Duration
	for {
		d, err := s.h.ReceiveDatagram(buf)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if errors.Is(err, ErrHandleClosed) {
				return err
			}
			metrics.Add(metrics.ReceiveFails, 1)
			retryDelay = nextRetryDelay(retryDelay)
			log.Warnf("udpecho receive on %s failed, retrying in %v: %v", s.h.LocalAddr(), retryDelay, err)
			if err := sleepCtx(ctx, retryDelay); err != nil {
				return err
			}
			continue
		}
		retryDelay = 0
		s.dispatch(d)
	}
}

const (
	minRetryDelay = 5 * time.Millisecond
	maxRetryDelay = time.Second
)

// nextRetryDelay doubles the delay after consecutive receive failures.
func nextRetryDelay(d time.Duration) time.Duration {
	if d == 0 {
		return minRetryDelay
	}
	if d *= 2; d > maxRetryDelay {
		d = maxRetryDelay
	}
	return d
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// dispatch hands d to a new worker task without waiting for it. buf is
// reused by the next receive, so the payload is copied into a pooled slice
// the task gives back once decoded.
func (s *Server) dispatch(d Datagram) {
	metrics.Add(metrics.DatagramsReceived, 1)
	metrics.Add(metrics.DatagramBytesReceived, uint64(len(d.Payload)))
	if d.Truncated {
		metrics.Add(metrics.DatagramsTruncated, 1)
		if s.opts.truncation == TruncateDrop {
			metrics.Add(metrics.DatagramsDropped, 1)
			log.Warnf("udpecho drop datagram from %s: %v", addrString(d.Addr), d.Err())
			return
		}
		log.Debugf("udpecho datagram from %s truncated to %d bytes", addrString(d.Addr), len(d.Payload))
	}
	p := bufpool.Get(len(d.Payload))
	copy(p, d.Payload)
	d.Payload = p

	dup, err := s.duplicate()
	if err != nil {
		bufpool.Put(p)
		metrics.Add(metrics.DatagramsDropped, 1)
		log.Errorf("udpecho duplicate handle, drop datagram from %s: %v", addrString(d.Addr), err)
		return
	}
	if err := s.pool.Invoke(newTask(dup, d, &s.opts)); err != nil {
		metrics.Add(metrics.TasksRejected, 1)
		metrics.Add(metrics.DatagramsDropped, 1)
		log.Warnf("udpecho no worker for datagram from %s, dropped: %v", addrString(d.Addr), err)
		bufpool.Put(p)
		dup.Close()
		return
	}
	metrics.Add(metrics.TasksSpawned, 1)
}

func (s *Server) duplicate() (*Handle, error) {
	if s.opts.osDuplicate {
		return s.h.DuplicateFD()
	}
	return s.h.Duplicate()
}
