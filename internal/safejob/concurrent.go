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

package safejob

import (
	"sync"

	"go.uber.org/atomic"
)

// ConcurrentJob lets any number of callers run at once.
// Close waits until every running caller has called End.
type ConcurrentJob struct {
	mu      sync.RWMutex
	closed  atomic.Bool
	running atomic.Int32
}

// Begin enters the job unless it is closed.
func (j *ConcurrentJob) Begin() bool {
	j.mu.RLock()
	if j.closed.Load() {
		j.mu.RUnlock()
		return false
	}
	j.running.Inc()
	return true
}

// End leaves the job.
func (j *ConcurrentJob) End() {
	j.running.Dec()
	j.mu.RUnlock()
}

// Close closes the job after the running callers are done.
func (j *ConcurrentJob) Close() {
	j.mu.Lock()
	j.closed.Store(true)
	j.mu.Unlock()
}

// Closed returns whether the job is closed.
func (j *ConcurrentJob) Closed() bool {
	return j.closed.Load()
}

// Running returns the number of callers inside the job.
func (j *ConcurrentJob) Running() int {
	return int(j.running.Load())
}
