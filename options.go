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
)

// TruncationPolicy decides what the server does with a datagram larger than
// its receive buffer.
type TruncationPolicy int

const (
	// TruncateAccept replies to the part of the datagram that fit into the buffer.
	TruncateAccept TruncationPolicy = iota
	// TruncateDrop drops truncated datagrams without a reply.
	TruncateDrop
)

// String implements fmt.Stringer.
func (p TruncationPolicy) String() string {
	switch p {
	case TruncateAccept:
		return "accept"
	case TruncateDrop:
		return "drop"
	default:
		return "invalid"
	}
}

// OnTaskDone fires in the worker task after its handle is closed.
// Reply is what the task tried to send and err is the send error, if any.
type OnTaskDone func(peer net.Addr, reply []byte, err error)

// Option udpecho server option.
type Option struct {
	f func(*options)
}

type options struct {
	onTaskDone      OnTaskDone
	replyPrefix     string
	maxDatagramSize int
	maxWorkers      int
	replyTimeout    time.Duration
	truncation      TruncationPolicy
	osDuplicate     bool
}

func (o *options) setDefault() {
	o.replyPrefix = DefaultReplyPrefix
	o.maxDatagramSize = DefaultMaxDatagramSize
	o.truncation = TruncateAccept
}

// WithMaxDatagramSize sets the size of the receive buffer. Datagrams larger than
// size are truncated, see WithTruncationPolicy.
func WithMaxDatagramSize(size int) Option {
	return Option{func(op *options) {
		op.maxDatagramSize = size
	}}
}

// WithReplyPrefix sets the text put in front of every reply.
func WithReplyPrefix(prefix string) Option {
	return Option{func(op *options) {
		op.replyPrefix = prefix
	}}
}

// WithMaxWorkers bounds the number of worker tasks running at once.
// Zero or less, the default, spawns a task for every datagram without limit.
// A bounded server drops datagrams that arrive while all workers are busy.
func WithMaxWorkers(n int) Option {
	return Option{func(op *options) {
		op.maxWorkers = n
	}}
}

// WithOSDuplicate makes the server give every task a handle on a duplicated
// file descriptor instead of a shared reference to the primary socket.
func WithOSDuplicate(enable bool) Option {
	return Option{func(op *options) {
		op.osDuplicate = enable
	}}
}

// WithTruncationPolicy sets what happens to datagrams larger than the receive buffer.
func WithTruncationPolicy(p TruncationPolicy) Option {
	return Option{func(op *options) {
		op.truncation = p
	}}
}

// WithReplyTimeout bounds how long a task may block sending its reply.
// Zero, the default, never times out. Tasks holding shared handles share one
// write deadline, each task pushes it forward right before its send.
func WithReplyTimeout(d time.Duration) Option {
	return Option{func(op *options) {
		op.replyTimeout = d
	}}
}

// WithOnTaskDone registers the OnTaskDone method that is fired when a worker task ends.
func WithOnTaskDone(onTaskDone OnTaskDone) Option {
	return Option{func(op *options) {
		op.onTaskDone = onTaskDone
	}}
}
