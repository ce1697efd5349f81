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
	"github.com/netlab/udpecho/log"
	"github.com/netlab/udpecho/metrics"
	"github.com/panjf2000/ants/v2"
)

const unboundedWorkers = 0 // meaning no limit.

// newTaskPool creates the pool worker tasks run on. A bounded pool never
// blocks the caller, Invoke fails with ants.ErrPoolOverload when it is full.
func newTaskPool(maxWorkers int) (*ants.PoolWithFunc, error) {
	opts := []ants.Option{ants.WithPanicHandler(taskPanicHandler)}
	size := unboundedWorkers
	if maxWorkers > 0 {
		size = maxWorkers
		opts = append(opts, ants.WithNonblocking(true))
	}
	return ants.NewPoolWithFunc(size, taskHandler, opts...)
}

func taskHandler(v any) {
	if t, ok := v.(*task); ok {
		t.run()
	}
}

func taskPanicHandler(v any) {
	metrics.Add(metrics.TasksPanicked, 1)
	log.Errorf("udpecho worker task panic: %v", v)
}
