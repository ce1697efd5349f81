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

// Package main receives datagrams in a loop and prints them without replying.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/netlab/udpecho"
	"github.com/netlab/udpecho/log"
	"github.com/pkg/errors"
)

func main() {
	addr := flag.String("addr", "127.0.0.1:4444", "udp address to bind")
	size := flag.Int("size", udpecho.DefaultMaxDatagramSize, "receive buffer size")
	flag.Parse()

	h, err := udpecho.Bind("udp", *addr, false)
	if err != nil {
		log.Errorf("%v", err)
		os.Exit(1)
	}
	defer h.Close()
	fmt.Printf("Server listening on %s\n", h.LocalAddr())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		h.SetReadDeadline(time.Unix(1, 0))
	}()

	buf := make([]byte, *size)
	for {
		d, err := h.ReceiveDatagram(buf)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, udpecho.ErrHandleClosed) {
				return
			}
			log.Warnf("receive: %v", err)
			continue
		}
		if d.Truncated {
			log.Warnf("datagram from %s truncated to %d bytes", d.Addr, len(d.Payload))
		}
		fmt.Printf("Received Message from %s: %s\n", d.Addr, udpecho.DecodeLossy(d.Payload))
	}
}
