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

	"github.com/stretchr/testify/assert"
)

func TestOptions(t *testing.T) {
	opts := &options{}
	opts.setDefault()
	assert.Equal(t, DefaultMaxDatagramSize, opts.maxDatagramSize)
	assert.Equal(t, DefaultReplyPrefix, opts.replyPrefix)
	assert.Equal(t, TruncateAccept, opts.truncation)
	assert.Equal(t, 0, opts.maxWorkers)
	assert.False(t, opts.osDuplicate)

	WithMaxDatagramSize(2048).f(opts)
	assert.Equal(t, 2048, opts.maxDatagramSize)

	WithReplyPrefix("Re: ").f(opts)
	assert.Equal(t, "Re: ", opts.replyPrefix)

	WithMaxWorkers(8).f(opts)
	assert.Equal(t, 8, opts.maxWorkers)

	WithOSDuplicate(true).f(opts)
	assert.True(t, opts.osDuplicate)

	WithTruncationPolicy(TruncateDrop).f(opts)
	assert.Equal(t, TruncateDrop, opts.truncation)

	WithReplyTimeout(time.Second).f(opts)
	assert.Equal(t, time.Second, opts.replyTimeout)

	var called bool
	WithOnTaskDone(func(net.Addr, []byte, error) { called = true }).f(opts)
	opts.onTaskDone(nil, nil, nil)
	assert.True(t, called)
}

func TestTruncationPolicyString(t *testing.T) {
	assert.Equal(t, "accept", TruncateAccept.String())
	assert.Equal(t, "drop", TruncateDrop.String())
	assert.Equal(t, "invalid", TruncationPolicy(7).String())
}
