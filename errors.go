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
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrHandleClosed is returned by every operation on a closed handle.
	ErrHandleClosed = errors.New("udp handle is closed")
	// ErrTruncated reports a datagram larger than the receive buffer.
	ErrTruncated = errors.New("datagram truncated to receive buffer")
	// ErrNotConnected is returned by Send on a handle that was not created by Dial.
	ErrNotConnected = errors.New("udp handle is not connected")
)

// BindError is returned when a handle can't be bound to its local address,
// because the address is in use, invalid, or not permitted.
type BindError struct {
	Network string
	Address string
	Err     error
}

// Error implements error.
func (e *BindError) Error() string {
	return fmt.Sprintf("bind %s %s: %v", e.Network, e.Address, e.Err)
}

// Unwrap returns the cause.
func (e *BindError) Unwrap() error {
	return e.Err
}
