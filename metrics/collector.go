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

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "udpecho"

// Collector exports the process wide counters to prometheus.
// Counters are read at scrape time.
type Collector struct {
	counters [Max]*prometheus.Desc
	inFlight *prometheus.Desc
}

// NewCollector creates a Collector for all metrics.
func NewCollector() *Collector {
	c := &Collector{
		inFlight: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "tasks_in_flight"),
			"Number of worker tasks spawned but not finished.",
			nil, nil,
		),
	}
	for i := 0; i < Max; i++ {
		c.counters[i] = prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", names[i]),
			"udpecho counter "+names[i]+".",
			nil, nil,
		)
	}
	return c
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	for _, d := range c.counters {
		ch <- d
	}
	ch <- c.inFlight
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	m := GetAll()
	for i, d := range c.counters {
		ch <- prometheus.MustNewConstMetric(d, prometheus.CounterValue, float64(m[i]))
	}
	ch <- prometheus.MustNewConstMetric(c.inFlight, prometheus.GaugeValue, float64(InFlight()))
}
