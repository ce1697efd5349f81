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

// Package safejob guards the operations of a handle against its own closing.
// A job that has been closed never begins again.
package safejob

// Job is an operation that may run many times until it is closed.
type Job interface {
	// Begin enters the job. It reports false once the job is closed,
	// in which case End must not be called.
	Begin() bool

	// End leaves a job entered by a successful Begin.
	End()

	// Close closes the job. Close waits for jobs in progress where the
	// implementation says so.
	Close()

	// Closed returns whether the job is closed.
	Closed() bool
}
