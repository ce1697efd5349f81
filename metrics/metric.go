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

// Package metrics provides udpecho runtime monitoring data,
// such as how many datagrams were received, how many worker tasks
// were spawned and how many replies failed to send.
package metrics

import (
	"time"

	"github.com/netlab/udpecho/log"
	"go.uber.org/atomic"
)

// All metrics definitions.
const (
	// The following constants are receive side metrics.

	DatagramsReceived = iota
	DatagramBytesReceived
	DatagramsTruncated
	DatagramsDropped
	ReceiveFails

	// The following constants are handle metrics.

	HandlesOpened
	HandlesDuplicated
	HandlesClosed
	SocketsReleased

	// The following constants are worker task metrics.

	TasksSpawned
	TasksRejected
	TasksFinished
	TasksPanicked
	RepliesSent
	ReplyBytesSent
	ReplySendFails

	// Keep it last.

	Max
)

// names are the exported names of all metrics, indexed by metric id.
var names = [Max]string{
	DatagramsReceived:     "datagrams_received_total",
	DatagramBytesReceived: "datagram_bytes_received_total",
	DatagramsTruncated:    "datagrams_truncated_total",
	DatagramsDropped:      "datagrams_dropped_total",
	ReceiveFails:          "receive_fails_total",
	HandlesOpened:         "handles_opened_total",
	HandlesDuplicated:     "handles_duplicated_total",
	HandlesClosed:         "handles_closed_total",
	SocketsReleased:       "sockets_released_total",
	TasksSpawned:          "tasks_spawned_total",
	TasksRejected:         "tasks_rejected_total",
	TasksFinished:         "tasks_finished_total",
	TasksPanicked:         "tasks_panicked_total",
	RepliesSent:           "replies_sent_total",
	ReplyBytesSent:        "reply_bytes_sent_total",
	ReplySendFails:        "reply_send_fails_total",
}

var (
	metrics [Max]atomic.Uint64
)

// Add metrics counter.
func Add(name int, delta uint64) {
	if name < 0 || name >= Max {
		return
	}
	metrics[name].Add(delta)
}

// Get one metric counter.
func Get(name int) uint64 {
	if name < 0 || name >= Max {
		return 0
	}
	return metrics[name].Load()
}

// Name returns the exported name of a metric, or "" when it is unknown.
func Name(name int) string {
	if name < 0 || name >= Max {
		return ""
	}
	return names[name]
}

// GetAll get all metrics.
func GetAll() [Max]uint64 {
	var m [Max]uint64
	for i := range metrics {
		m[i] = metrics[i].Load()
	}
	return m
}

// InFlight returns the number of spawned tasks that have not finished yet.
func InFlight() uint64 {
	spawned, finished := Get(TasksSpawned), Get(TasksFinished)
	if finished > spawned {
		return 0
	}
	return spawned - finished
}

// ShowMetricsOfPeriod shows metric info of duration d from now on.
// It will block d duration, and then prints metrics info.
func ShowMetricsOfPeriod(d time.Duration) {
	old := GetAll()
	<-time.After(d)
	cur := GetAll()
	var m [Max]uint64
	for i := range metrics {
		m[i] = cur[i] - old[i]
	}
	showAll(m)
}

// ShowMetrics shows metric info in console.
func ShowMetrics() {
	showAll(GetAll())
}

func showAll(m [Max]uint64) {
	log.Debug("######### udpecho metrics (", time.Now().Format("2006-01-02 15:04:05"), ") ###########")
	showReceiveMetrics(m)
	showHandleMetrics(m)
	showTaskMetrics(m)
}

func showReceiveMetrics(m [Max]uint64) {
	log.Debugf("%-52s: %d", "# RECV - number of datagrams received", m[DatagramsReceived])
	log.Debugf("%-52s: %d", "# RECV - number of failed receive calls", m[ReceiveFails])
	log.Debugf("%-52s: %d", "# RECV - number of truncated datagrams", m[DatagramsTruncated])
	log.Debugf("%-52s: %d", "# RECV - number of dropped datagrams", m[DatagramsDropped])
	if m[DatagramsReceived] > 0 {
		log.Debugf("%-52s: %dB", "# RECV - average datagram size", m[DatagramBytesReceived]/m[DatagramsReceived])
	}
}

func showHandleMetrics(m [Max]uint64) {
	log.Debugf("%-52s: %d", "# HANDLE - number of handles opened", m[HandlesOpened])
	log.Debugf("%-52s: %d", "# HANDLE - number of handles duplicated", m[HandlesDuplicated])
	log.Debugf("%-52s: %d", "# HANDLE - number of handles closed", m[HandlesClosed])
	log.Debugf("%-52s: %d", "# HANDLE - number of sockets released", m[SocketsReleased])
}

func showTaskMetrics(m [Max]uint64) {
	log.Debugf("%-52s: %d", "# TASK - number of tasks spawned", m[TasksSpawned])
	log.Debugf("%-52s: %d", "# TASK - number of tasks rejected by the pool", m[TasksRejected])
	log.Debugf("%-52s: %d", "# TASK - number of tasks finished", m[TasksFinished])
	log.Debugf("%-52s: %d", "# TASK - number of tasks panicked", m[TasksPanicked])
	log.Debugf("%-52s: %d", "# TASK - number of replies sent", m[RepliesSent])
	log.Debugf("%-52s: %d", "# TASK - number of failed reply sends", m[ReplySendFails])
	if m[RepliesSent] > 0 {
		log.Debugf("%-52s: %dB", "# TASK - average reply size", m[ReplyBytesSent]/m[RepliesSent])
	}
}
