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

// Package main receives a single datagram, prints it and exits.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/netlab/udpecho"
	"github.com/netlab/udpecho/log"
)

func main() {
	addr := flag.String("addr", "127.0.0.1:3333", "udp address to bind")
	timeout := flag.Duration("timeout", 0, "give up after this long, 0 waits forever")
	flag.Parse()

	h, err := udpecho.Bind("udp", *addr, false)
	if err != nil {
		log.Errorf("%v", err)
		os.Exit(1)
	}
	defer h.Close()
	fmt.Printf("Server listening on %s\n", h.LocalAddr())

	if *timeout > 0 {
		if err := h.SetReadDeadline(time.Now().Add(*timeout)); err != nil {
			log.Errorf("set deadline: %v", err)
			os.Exit(1)
		}
	}
	b := make([]byte, udpecho.DefaultMaxDatagramSize)
	n, from, err := h.ReceiveFrom(b)
	if err != nil {
		log.Errorf("receive: %v", err)
		os.Exit(1)
	}
	fmt.Printf("Received Message from %s: %s\n", from, udpecho.DecodeLossy(b[:n]))
}
