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
	"time"

	"github.com/google/uuid"
	"github.com/netlab/udpecho/internal/bufpool"
	"github.com/netlab/udpecho/log"
	"github.com/netlab/udpecho/metrics"
)

// task answers one datagram. It owns its handle and payload, nothing in it
// is shared with the receive loop or with other tasks.
type task struct {
	id           string
	h            *Handle
	payload      []byte
	peer         net.Addr
	prefix       string
	replyTimeout time.Duration
	onDone       OnTaskDone
}

func newTask(h *Handle, d Datagram, opts *options) *task {
	return &task{
		id:           uuid.NewString(),
		h:            h,
		payload:      d.Payload,
		peer:         d.Addr,
		prefix:       opts.replyPrefix,
		replyTimeout: opts.replyTimeout,
		onDone:       opts.onTaskDone,
	}
}

// run sends exactly one reply attempt and always closes the handle.
// A failed send is logged and never retried.
func (t *task) run() {
	var (
		reply   []byte
		sendErr error
	)
	defer func() {
		if err := t.h.Close(); err != nil {
			log.Warnf("udpecho task %s close handle: %v", t.id, err)
		}
		metrics.Add(metrics.TasksFinished, 1)
		if t.onDone != nil {
			t.onDone(t.peer, reply, sendErr)
		}
	}()

	text := DecodeLossy(t.payload)
	bufpool.Put(t.payload)
	t.payload = nil
	log.Debugf("udpecho task %s received from %s: %s", t.id, addrString(t.peer), text)
	reply = BuildReply(t.prefix, text)

	if t.replyTimeout > 0 {
		if err := t.h.SetWriteDeadline(time.Now().Add(t.replyTimeout)); err != nil {
			log.Warnf("udpecho task %s set reply deadline: %v", t.id, err)
		}
	}
	n, err := t.h.SendTo(reply, t.peer)
	if err != nil {
		sendErr = err
		metrics.Add(metrics.ReplySendFails, 1)
		log.Errorf("udpecho task %s reply to %s failed: %v", t.id, addrString(t.peer), err)
		return
	}
	metrics.Add(metrics.RepliesSent, 1)
	metrics.Add(metrics.ReplyBytesSent, uint64(n))
}
