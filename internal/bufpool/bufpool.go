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

// Package bufpool recycles the payload copies handed from the receive loop
// to worker tasks.
package bufpool

import (
	"math/bits"
	"sync"
)

// MaxSize is the largest slice kept by the pool, the largest udp payload fits.
const MaxSize = 1 << maxClass

const maxClass = 16

// classes[i] holds slices with capacity 1<<i.
var classes [maxClass + 1]sync.Pool

func init() {
	for i := range classes {
		size := 1 << i
		classes[i].New = func() any {
			return make([]byte, 0, size)
		}
	}
}

// Get returns a slice of length size. Slices larger than MaxSize are
// allocated directly and never pooled.
func Get(size int) []byte {
	c := class(size)
	if c > maxClass {
		return make([]byte, size)
	}
	return classes[c].Get().([]byte)[:size]
}

// Put gives b back to the pool. b must not be used afterwards.
// Slices that did not come from Get are dropped.
func Put(b []byte) {
	c := cap(b)
	if c == 0 || c&(c-1) != 0 {
		return
	}
	i := bits.TrailingZeros(uint(c))
	if i > maxClass {
		return
	}
	classes[i].Put(b[:0])
}

// class returns the index of the smallest power of two not below size.
func class(size int) int {
	if size <= 1 {
		return 0
	}
	return bits.Len(uint(size - 1))
}
