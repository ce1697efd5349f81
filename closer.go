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

import "github.com/netlab/udpecho/internal/safejob"

type key int

const (
	apiSend key = iota
	apiCtrl
	closeAll
)

// closer ensures that once a handle is closed no send or control job
// starts on it, and that Close waits for the ones already running before
// the socket reference is dropped.
//
// Receives are not guarded: a receive may block forever, and waiting for
// it would make Close block with it.
type closer struct {
	apiSendJob  safejob.ConcurrentJob
	apiCtrlJob  safejob.ConcurrentJob
	closeAllJob safejob.OnceJob
}

func (c *closer) closed() bool {
	return c.closeAllJob.Closed()
}

func (c *closer) getJob(k key) safejob.Job {
	switch k {
	case apiSend:
		return &c.apiSendJob
	case apiCtrl:
		return &c.apiCtrlJob
	case closeAll:
		return &c.closeAllJob
	default:
		return nil
	}
}

func (c *closer) beginJobSafely(k key) bool {
	if k < 0 || k > closeAll {
		return false
	}
	return c.getJob(k).Begin()
}

func (c *closer) endJobSafely(k key) {
	if k < 0 || k > closeAll {
		return
	}
	c.getJob(k).End()
}

func (c *closer) closeAllJobs() {
	c.apiSendJob.Close()
	c.apiCtrlJob.Close()
}
