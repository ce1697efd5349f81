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

// Package main sends numbered messages to an echo server and prints the replies.
package main

import (
	"flag"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/netlab/udpecho"
	"github.com/netlab/udpecho/log"
)

func main() {
	var (
		addr      = flag.String("addr", udpecho.DefaultAddress, "address of the echo server")
		n         = flag.Int("n", 5, "number of messages to send")
		interval  = flag.Duration("interval", 500*time.Millisecond, "pause between messages")
		connected = flag.Bool("connected", true, "connect the socket to the server before sending")
		wait      = flag.Duration("wait", 2*time.Second, "how long to wait for each reply, 0 sends without waiting")
	)
	flag.Parse()

	c, err := newClient(*addr, *connected)
	if err != nil {
		log.Errorf("%v", err)
		os.Exit(1)
	}
	defer c.Close()
	fmt.Printf("Client bound to %s\n", c.LocalAddr())

	b := make([]byte, udpecho.DefaultMaxDatagramSize)
	for i := 1; i <= *n; i++ {
		if err := c.send([]byte(fmt.Sprintf("Message #%d", i))); err != nil {
			log.Errorf("send: %v", err)
			os.Exit(1)
		}
		if *wait > 0 {
			if err := c.SetReadDeadline(time.Now().Add(*wait)); err != nil {
				log.Errorf("set deadline: %v", err)
				os.Exit(1)
			}
			m, _, err := c.ReceiveFrom(b)
			if err != nil {
				log.Warnf("no reply to message #%d: %v", i, err)
			} else {
				fmt.Printf("Server replied: %s\n", udpecho.DecodeLossy(b[:m]))
			}
		}
		if i < *n {
			time.Sleep(*interval)
		}
	}
}

type client struct {
	*udpecho.Handle
	server net.Addr
}

func newClient(addr string, connected bool) (*client, error) {
	if connected {
		h, err := udpecho.Dial("udp", addr, time.Second)
		if err != nil {
			return nil, err
		}
		return &client{Handle: h}, nil
	}
	server, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, err
	}
	h, err := udpecho.Bind("udp", "127.0.0.1:0", false)
	if err != nil {
		return nil, err
	}
	return &client{Handle: h, server: server}, nil
}

func (c *client) send(b []byte) error {
	var err error
	if c.server == nil {
		_, err = c.Send(b)
	} else {
		_, err = c.SendTo(b, c.server)
	}
	return err
}
