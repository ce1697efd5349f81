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
	"go.uber.org/atomic"
)

// OnceJob begins exactly once. The first Begin wins and closes the job.
type OnceJob struct {
	closed atomic.Bool
}

// Begin reports whether this caller is the one that closed the job.
func (j *OnceJob) Begin() bool {
	return j.closed.CompareAndSwap(false, true)
}

// End is a no-op, OnceJob holds nothing between Begin and End.
func (j *OnceJob) End() {}

// Close closes the job without winning it.
func (j *OnceJob) Close() {
	j.closed.Store(true)
}

// Closed returns whether the job is closed.
func (j *OnceJob) Closed() bool {
	return j.closed.Load()
}
