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

package metrics_test

import (
	"testing"
	"time"

	"github.com/netlab/udpecho/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics(t *testing.T) {
	before := metrics.Get(metrics.DatagramsReceived)
	metrics.Add(metrics.DatagramsReceived, 1)
	assert.Equal(t, before+1, metrics.Get(metrics.DatagramsReceived))
	metrics.Add(metrics.DatagramsReceived, 1)
	assert.Equal(t, before+2, metrics.Get(metrics.DatagramsReceived))

	metrics.Add(metrics.Max+1, 1)
	metrics.Add(-1, 1)
	assert.Equal(t, uint64(0), metrics.Get(metrics.Max+1))
	assert.Equal(t, uint64(0), metrics.Get(-1))

	metrics.Add(metrics.DatagramBytesReceived, 1024)
	metrics.Add(metrics.RepliesSent, 3)
	metrics.Add(metrics.ReplyBytesSent, 30)
	metrics.ShowMetrics()
	metrics.ShowMetricsOfPeriod(time.Millisecond)
}

func TestName(t *testing.T) {
	assert.Equal(t, "datagrams_received_total", metrics.Name(metrics.DatagramsReceived))
	assert.Equal(t, "reply_send_fails_total", metrics.Name(metrics.ReplySendFails))
	assert.Equal(t, "", metrics.Name(metrics.Max))
	for i := 0; i < metrics.Max; i++ {
		assert.NotEmpty(t, metrics.Name(i), "metric %d has no name", i)
	}
}

func TestInFlight(t *testing.T) {
	base := metrics.InFlight()
	metrics.Add(metrics.TasksSpawned, 2)
	assert.Equal(t, base+2, metrics.InFlight())
	metrics.Add(metrics.TasksFinished, 2)
	assert.Equal(t, base, metrics.InFlight())
}

func TestCollector(t *testing.T) {
	c := metrics.NewCollector()
	reg := prometheus.NewPedanticRegistry()
	require.Nil(t, reg.Register(c))

	n, err := testutil.GatherAndCount(reg)
	require.Nil(t, err)
	assert.Equal(t, metrics.Max+1, n)
	assert.Equal(t, metrics.Max+1, testutil.CollectAndCount(c))
}
